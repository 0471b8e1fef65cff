package domain

import "time"

// CREATE TABLE public.catalog_products (
//     id              BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     market_id       BIGINT NOT NULL,
//     category_id     BIGINT,
//     product_name    TEXT,
//     is_active       BOOLEAN DEFAULT TRUE,
//     current_stock   NUMERIC,
//     reorder_point   NUMERIC,
//     unit_price      NUMERIC,
//     on_promotion    BOOLEAN DEFAULT FALSE,
//     created_at      TIMESTAMPTZ DEFAULT NOW()
// );

// CatalogProduct is the engines' read-only view of product and stock
// state, populated by the upload/import pipeline.
type CatalogProduct struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	MarketID     uint64    `gorm:"column:market_id" json:"market_id"`
	CategoryID   uint64    `gorm:"column:category_id" json:"category_id"`
	ProductName  string    `gorm:"column:product_name;type:text" json:"product_name"`
	IsActive     bool      `gorm:"column:is_active;default:true" json:"is_active"`
	CurrentStock float64   `gorm:"column:current_stock;type:numeric" json:"current_stock"`
	ReorderPoint float64   `gorm:"column:reorder_point;type:numeric" json:"reorder_point"`
	UnitPrice    float64   `gorm:"column:unit_price;type:numeric" json:"unit_price"`
	OnPromotion  bool      `gorm:"column:on_promotion;default:false" json:"on_promotion"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
}

func (CatalogProduct) TableName() string {
	return "catalog_products"
}
