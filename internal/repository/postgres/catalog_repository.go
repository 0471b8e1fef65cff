package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"mercadolens/domain"
)

// CatalogRepository is the engines' read-only view over products and
// stock maintained by the upload pipeline.
type CatalogRepository struct {
	DB *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{
		DB: db,
	}
}

func (r *CatalogRepository) FindActive(ctx context.Context, marketID uint64, limit int) ([]domain.CatalogProduct, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if limit <= 0 {
		limit = 100
	}

	products := []domain.CatalogProduct{}
	err := r.DB.WithContext(ctx).
		Where("market_id = ? AND is_active = ?", marketID, true).
		Order("id ASC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find active products: %w", err)
	}

	return products, nil
}

func (r *CatalogRepository) FindByProductID(ctx context.Context, marketID, productID uint64) (domain.CatalogProduct, error) {
	if err := ctx.Err(); err != nil {
		return domain.CatalogProduct{}, fmt.Errorf("context error: %w", err)
	}

	var product domain.CatalogProduct
	err := r.DB.WithContext(ctx).
		Where("market_id = ? AND id = ?", marketID, productID).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.CatalogProduct{}, errors.New("product not found")
		}
		return domain.CatalogProduct{}, fmt.Errorf("failed to find product: %w", err)
	}

	return product, nil
}

func (r *CatalogRepository) CountActive(ctx context.Context, marketID uint64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}

	var count int64
	err := r.DB.WithContext(ctx).Model(&domain.CatalogProduct{}).
		Where("market_id = ? AND is_active = ?", marketID, true).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active products: %w", err)
	}

	return count, nil
}

func (r *CatalogRepository) CountOnPromotion(ctx context.Context, marketID uint64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}

	var count int64
	err := r.DB.WithContext(ctx).Model(&domain.CatalogProduct{}).
		Where("market_id = ? AND is_active = ? AND on_promotion = ?", marketID, true, true).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count promoted products: %w", err)
	}

	return count, nil
}
