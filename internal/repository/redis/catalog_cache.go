package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"mercadolens/domain"
	"mercadolens/pkg/logger"
)

// CatalogSource is the repository being decorated.
type CatalogSource interface {
	FindActive(ctx context.Context, marketID uint64, limit int) ([]domain.CatalogProduct, error)
	FindByProductID(ctx context.Context, marketID, productID uint64) (domain.CatalogProduct, error)
	CountActive(ctx context.Context, marketID uint64) (int64, error)
	CountOnPromotion(ctx context.Context, marketID uint64) (int64, error)
}

// CachedCatalogRepository is a cache-aside layer over the catalog for
// the promotion/gondola product loops, which re-read the same sample
// for every analysed product. Only source data is cached, never
// computed scores.
type CachedCatalogRepository struct {
	source CatalogSource
	client *redis.Client
	ttl    time.Duration
}

func NewCachedCatalogRepository(source CatalogSource, client *redis.Client, ttl time.Duration) *CachedCatalogRepository {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedCatalogRepository{
		source: source,
		client: client,
		ttl:    ttl,
	}
}

func (r *CachedCatalogRepository) FindActive(ctx context.Context, marketID uint64, limit int) ([]domain.CatalogProduct, error) {
	key := fmt.Sprintf("catalog:active:%d:%d", marketID, limit)

	val, err := r.client.Get(ctx, key).Result()
	if err == nil {
		var products []domain.CatalogProduct
		if err := json.Unmarshal([]byte(val), &products); err == nil {
			return products, nil
		}
		// corrupt entry, fall through to source
	} else if err != redis.Nil {
		logger.Warn("catalog cache read failed", "key", key, "error", err)
	}

	products, err := r.source.FindActive(ctx, marketID, limit)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(products); err == nil {
		if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
			logger.Warn("catalog cache write failed", "key", key, "error", err)
		}
	}

	return products, nil
}

func (r *CachedCatalogRepository) FindByProductID(ctx context.Context, marketID, productID uint64) (domain.CatalogProduct, error) {
	key := fmt.Sprintf("catalog:product:%d:%d", marketID, productID)

	val, err := r.client.Get(ctx, key).Result()
	if err == nil {
		var product domain.CatalogProduct
		if err := json.Unmarshal([]byte(val), &product); err == nil {
			return product, nil
		}
	} else if err != redis.Nil {
		logger.Warn("catalog cache read failed", "key", key, "error", err)
	}

	product, err := r.source.FindByProductID(ctx, marketID, productID)
	if err != nil {
		return domain.CatalogProduct{}, err
	}

	if data, err := json.Marshal(product); err == nil {
		if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
			logger.Warn("catalog cache write failed", "key", key, "error", err)
		}
	}

	return product, nil
}

func (r *CachedCatalogRepository) CountActive(ctx context.Context, marketID uint64) (int64, error) {
	return r.source.CountActive(ctx, marketID)
}

func (r *CachedCatalogRepository) CountOnPromotion(ctx context.Context, marketID uint64) (int64, error) {
	return r.source.CountOnPromotion(ctx, marketID)
}
