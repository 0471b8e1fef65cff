package domain

import "time"

// PeakHour is one (weekday, hour) activity bucket.
type PeakHour struct {
	Weekday   time.Weekday `json:"weekday"`
	Hour      int          `json:"hour"`
	Frequency int          `json:"frequency"`
}

type CategoryAffinity struct {
	CategoryID uint64    `json:"category_id"`
	Frequency  int       `json:"frequency"`
	LastSeen   time.Time `json:"last_seen"`
}

type FrequentProduct struct {
	ProductID    uint64    `json:"product_id"`
	Frequency    int       `json:"frequency"`
	LastPurchase time.Time `json:"last_purchase"`
}

type PurchaseCadence struct {
	AvgDaysBetween float64 `json:"avg_days_between"`
	AvgOrderValue  float64 `json:"avg_order_value"`
	AvgItemCount   float64 `json:"avg_item_count"`
}

type PurchaseIntent struct {
	Score               float64  `json:"score"`
	ContributingFactors []string `json:"contributing_factors"`
	Confidence          float64  `json:"confidence"`
}

// BehaviorProfile is derived per request from an event slice and never
// persisted.
type BehaviorProfile struct {
	ActorID          uint64             `json:"actor_id"`
	MarketID         uint64             `json:"market_id"`
	PeakHours        []PeakHour         `json:"peak_hours"`
	CategoryAffinity []CategoryAffinity `json:"category_affinity"`
	FrequentProducts []FrequentProduct  `json:"frequent_products"`
	Cadence          PurchaseCadence    `json:"cadence"`
	Intent           PurchaseIntent     `json:"intent"`
	EventCount       int                `json:"event_count"`
}
