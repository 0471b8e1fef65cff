package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"mercadolens/domain"
)

type fakeEventRepo struct {
	events []domain.Event
	err    error
}

func (f *fakeEventRepo) QueryByMarket(ctx context.Context, marketID uint64, from, to time.Time, eventType *domain.EventType) ([]domain.Event, error) {
	return f.events, f.err
}

type fakeCatalogRepo struct {
	products    []domain.CatalogProduct
	activeTotal int64
	promoted    int64
	err         error
}

// FindActive returns the bounded sample; CountActive the market-wide
// total, which may be far larger.
func (f *fakeCatalogRepo) FindActive(ctx context.Context, marketID uint64, limit int) ([]domain.CatalogProduct, error) {
	return f.products, f.err
}

func (f *fakeCatalogRepo) CountActive(ctx context.Context, marketID uint64) (int64, error) {
	if f.activeTotal > 0 {
		return f.activeTotal, f.err
	}
	return int64(len(f.products)), f.err
}

func (f *fakeCatalogRepo) CountOnPromotion(ctx context.Context, marketID uint64) (int64, error) {
	return f.promoted, f.err
}

var testNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func newTestService(events *fakeEventRepo, catalog *fakeCatalogRepo) *HealthService {
	svc := NewHealthService(events, catalog)
	svc.now = func() time.Time { return testNow }
	return svc
}

func marketEv(actorID uint64, t domain.EventType, ts time.Time, meta datatypes.JSONMap) domain.Event {
	return domain.Event{ID: "test", ActorID: actorID, MarketID: 1, Type: t, Timestamp: ts, Metadata: meta}
}

func TestCalculateHealthScore_EmptyMarket(t *testing.T) {
	svc := newTestService(&fakeEventRepo{}, &fakeCatalogRepo{})

	res, err := svc.CalculateHealthScore(context.Background(), 1, 30)
	require.NoError(t, err)

	// no events means every impact stays neutral
	assert.Equal(t, 50.0, res.Data.Score)
	assert.Empty(t, res.Data.Recommendations)
	assert.Equal(t, sparseConfidence, res.Confidence)
	assert.NotEmpty(t, res.Explanation)
	assert.Contains(t, res.Factors[len(res.Factors)-1], "no events")
}

func TestCalculateHealthScore_FullWindowConfidence(t *testing.T) {
	events := []domain.Event{
		marketEv(1, domain.EventPurchaseCompleted, testNow.AddDate(0, 0, -3), datatypes.JSONMap{"quantity": 2.0}),
	}
	svc := newTestService(&fakeEventRepo{events: events}, &fakeCatalogRepo{})

	res, err := svc.CalculateHealthScore(context.Background(), 1, 30)
	require.NoError(t, err)

	assert.Equal(t, fullConfidence, res.Confidence)
	assert.Len(t, res.Factors, 5)
}

func TestCalculateHealthScore_StockoutsDriveHighPriorityRecommendation(t *testing.T) {
	products := []domain.CatalogProduct{
		{ID: 1, MarketID: 1, CurrentStock: 5, ReorderPoint: 20},
		{ID: 2, MarketID: 1, CurrentStock: 0, ReorderPoint: 10},
		{ID: 3, MarketID: 1, CurrentStock: 2, ReorderPoint: 15},
	}
	events := []domain.Event{
		marketEv(1, domain.EventPurchaseCompleted, testNow.AddDate(0, 0, -2), datatypes.JSONMap{"quantity": 1.0}),
	}

	svc := newTestService(&fakeEventRepo{events: events}, &fakeCatalogRepo{products: products})

	res, err := svc.CalculateHealthScore(context.Background(), 1, 30)
	require.NoError(t, err)

	// every product below its reorder point: impact -10, weighted -2.5
	assert.InDelta(t, -10.0, res.Data.Metrics.StockoutRate.Impact, 0.001)

	require.NotEmpty(t, res.Data.Recommendations)
	first := res.Data.Recommendations[0]
	assert.Equal(t, domain.PriorityHigh, first.Priority)
	assert.Contains(t, first.Action, "Restock")
	assert.InDelta(t, 2.5, first.ExpectedScoreGain, 0.001)
}

func TestPromotionUsage_MarketWideDenominator(t *testing.T) {
	// The sample is capped, so the promoted count can exceed it; the
	// fraction must still be computed against the market-wide total.
	products := make([]domain.CatalogProduct, 10)
	for i := range products {
		products[i] = domain.CatalogProduct{ID: uint64(i + 1), MarketID: 1, CurrentStock: 100, ReorderPoint: 10}
	}
	events := []domain.Event{
		marketEv(1, domain.EventPurchaseCompleted, testNow.AddDate(0, 0, -2), datatypes.JSONMap{"quantity": 1.0}),
	}
	catalog := &fakeCatalogRepo{products: products, activeTotal: 80, promoted: 20}

	svc := newTestService(&fakeEventRepo{events: events}, catalog)

	res, err := svc.CalculateHealthScore(context.Background(), 1, 30)
	require.NoError(t, err)

	assert.InDelta(t, 0.25, res.Data.Metrics.PromotionUsage.Value, 0.001)
	assert.GreaterOrEqual(t, res.Data.Metrics.PromotionUsage.Value, 0.0)
	assert.LessOrEqual(t, res.Data.Metrics.PromotionUsage.Value, 1.0)
}

func TestCalculateHealthScore_BoundedBetweenZeroAndHundred(t *testing.T) {
	events := []domain.Event{}
	// a torrent of purchases from one user pushes turnover and engagement to the top of their ranges
	for i := 0; i < 200; i++ {
		events = append(events, marketEv(1, domain.EventPurchaseCompleted, testNow.AddDate(0, 0, -(i%30)), datatypes.JSONMap{"quantity": 10.0}))
	}
	svc := newTestService(&fakeEventRepo{events: events}, &fakeCatalogRepo{})

	res, err := svc.CalculateHealthScore(context.Background(), 1, 30)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, res.Data.Score, 0.0)
	assert.LessOrEqual(t, res.Data.Score, 100.0)
}

func TestListConversion_CountsPurchasesAfterFirstList(t *testing.T) {
	events := []domain.Event{
		marketEv(1, domain.EventListCreated, testNow.AddDate(0, 0, -5), nil),
		marketEv(1, domain.EventPurchaseCompleted, testNow.AddDate(0, 0, -4), nil),
		marketEv(2, domain.EventListCreated, testNow.AddDate(0, 0, -5), nil),
		// actor 3 purchased before ever creating a list: not a conversion
		marketEv(3, domain.EventPurchaseCompleted, testNow.AddDate(0, 0, -6), nil),
		marketEv(3, domain.EventListCreated, testNow.AddDate(0, 0, -5), nil),
	}

	assert.InDelta(t, 1.0/3.0, listConversion(events), 0.001)
}

func TestEngagementRate_PerUserPerDay(t *testing.T) {
	events := []domain.Event{
		marketEv(1, domain.EventProductViewed, testNow, nil),
		marketEv(1, domain.EventProductViewed, testNow, nil),
		marketEv(2, domain.EventProductViewed, testNow, nil),
	}

	// 3 events, 2 users, 30 days
	assert.InDelta(t, 3.0/2.0/30.0, engagementRate(events, 30), 0.001)
}

func TestImpact_ClampsAndInverts(t *testing.T) {
	assert.InDelta(t, 10.0, impact(25, 0, 20, false), 0.001)
	assert.InDelta(t, -10.0, impact(-3, 0, 20, false), 0.001)
	assert.InDelta(t, 0.0, impact(10, 0, 20, false), 0.001)
	assert.InDelta(t, -10.0, impact(0.5, 0, 0.4, true), 0.001)
}

func TestCalculateHealthScore_Deterministic(t *testing.T) {
	events := []domain.Event{
		marketEv(1, domain.EventListCreated, testNow.AddDate(0, 0, -5), nil),
		marketEv(1, domain.EventPurchaseCompleted, testNow.AddDate(0, 0, -4), datatypes.JSONMap{"quantity": 3.0}),
	}
	svc := newTestService(&fakeEventRepo{events: events}, &fakeCatalogRepo{promoted: 1})

	first, err := svc.CalculateHealthScore(context.Background(), 1, 30)
	require.NoError(t, err)
	second, err := svc.CalculateHealthScore(context.Background(), 1, 30)
	require.NoError(t, err)

	assert.Equal(t, first.Data.Score, second.Data.Score)
	assert.Equal(t, first.Data.Explanation, second.Data.Explanation)
	assert.Equal(t, first.Factors, second.Factors)
}

func TestCalculateHealthScore_RepoError(t *testing.T) {
	svc := newTestService(&fakeEventRepo{err: errors.New("db down")}, &fakeCatalogRepo{})

	_, err := svc.CalculateHealthScore(context.Background(), 1, 30)
	assert.Error(t, err)
}
