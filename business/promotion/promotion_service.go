package promotion

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"mercadolens/domain"
	"mercadolens/pkg/logger"
)

// LifecycleAnalyzer is the behavior engine's public lifecycle API.
type LifecycleAnalyzer interface {
	AnalyzeProductLifecycle(ctx context.Context, productID, marketID uint64, lookbackMonths int) (domain.AnalysisResult[domain.ProductLifecycle], error)
}

// EventRepository contract interface
type EventRepository interface {
	QueryByMarket(ctx context.Context, marketID uint64, from, to time.Time, eventType *domain.EventType) ([]domain.Event, error)
}

// CatalogRepository contract interface
type CatalogRepository interface {
	FindActive(ctx context.Context, marketID uint64, limit int) ([]domain.CatalogProduct, error)
}

const (
	DefaultLimit = 10

	turnoverWindowDays = 30
	lifecycleMonths    = 6

	defaultSampleLimit = 100
	defaultWorkers     = 8

	// Fixed elasticity assumption: each discount point buys 1.5 points
	// of sales lift.
	elasticity = 1.5

	fullConfidence   = 75.0
	sparseConfidence = 20.0
)

type PromotionService struct {
	lifecycle   LifecycleAnalyzer
	eventRepo   EventRepository
	catalogRepo CatalogRepository
	sampleLimit int
	workers     int
	now         func() time.Time
}

func NewPromotionService(lifecycle LifecycleAnalyzer, eventRepo EventRepository, catalogRepo CatalogRepository, sampleLimit, workers int) *PromotionService {
	if sampleLimit <= 0 {
		sampleLimit = defaultSampleLimit
	}
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &PromotionService{
		lifecycle:   lifecycle,
		eventRepo:   eventRepo,
		catalogRepo: catalogRepo,
		sampleLimit: sampleLimit,
		workers:     workers,
		now:         time.Now,
	}
}

// GeneratePromotionSuggestions scans a bounded product sample and
// suggests promotions with expected impact and an optional A/B plan.
func (s *PromotionService) GeneratePromotionSuggestions(ctx context.Context, marketID uint64, limit int) (domain.AnalysisResult[[]domain.PromotionSuggestion], error) {
	var zero domain.AnalysisResult[[]domain.PromotionSuggestion]

	if err := ctx.Err(); err != nil {
		return zero, fmt.Errorf("context error: %w", err)
	}

	if limit <= 0 {
		limit = DefaultLimit
	}

	products, err := s.catalogRepo.FindActive(ctx, marketID, s.sampleLimit)
	if err != nil {
		logger.Error("failed to load catalog sample", "market_id", marketID, "error", err)
		return zero, fmt.Errorf("load catalog sample: %w", err)
	}

	to := s.now().UTC()
	from := to.AddDate(0, 0, -turnoverWindowDays)
	purchaseType := domain.EventPurchaseCompleted
	purchases, err := s.eventRepo.QueryByMarket(ctx, marketID, from, to, &purchaseType)
	if err != nil {
		logger.Error("failed to load purchase events", "market_id", marketID, "error", err)
		return zero, fmt.Errorf("load purchase events: %w", err)
	}

	turnoverByProduct := turnoverPerDay(purchases, float64(turnoverWindowDays))

	// Per-product analyses are independent; fan out and collect by
	// index so completion order never changes the result.
	results := make([]*domain.PromotionSuggestion, len(products))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, product := range products {
		i, product := i, product
		g.Go(func() error {
			lc, err := s.lifecycle.AnalyzeProductLifecycle(gctx, product.ID, marketID, lifecycleMonths)
			if err != nil {
				return fmt.Errorf("lifecycle for product %d: %w", product.ID, err)
			}

			suggestion := buildSuggestion(product, lc.Data, turnoverByProduct[product.ID])
			results[i] = suggestion
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return zero, err
	}

	suggestions := make([]domain.PromotionSuggestion, 0, len(results))
	for _, sg := range results {
		if sg != nil {
			suggestions = append(suggestions, *sg)
		}
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].ExpectedImpact.SalesLiftPct != suggestions[j].ExpectedImpact.SalesLiftPct {
			return suggestions[i].ExpectedImpact.SalesLiftPct > suggestions[j].ExpectedImpact.SalesLiftPct
		}
		return suggestions[i].ProductID < suggestions[j].ProductID
	})
	if len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}

	confidence := fullConfidence
	factors := []string{
		fmt.Sprintf("%d active products sampled", len(products)),
		fmt.Sprintf("%d purchase events in the %d-day turnover window", len(purchases), turnoverWindowDays),
		fmt.Sprintf("%d products met a promotion rule", len(suggestions)),
	}
	if len(products) == 0 || len(purchases) == 0 {
		confidence = sparseConfidence
		factors = append(factors, "sparse catalog or event data, suggestions are weakly supported")
	}

	explanation := fmt.Sprintf(
		"Scanned %d active products: %d merit a promotion based on stock pressure, lifecycle phase and 30-day turnover, ranked by expected sales lift.",
		len(products), len(suggestions),
	)

	return domain.NewAnalysisResult(suggestions, explanation, confidence, factors), nil
}

func turnoverPerDay(purchases []domain.Event, windowDays float64) map[uint64]float64 {
	units := make(map[uint64]float64)
	for _, ev := range purchases {
		productID, ok := ev.MetaUint64("product_id")
		if !ok || productID == 0 {
			continue
		}
		if qty, ok := ev.MetaFloat("quantity"); ok {
			units[productID] += qty
		} else {
			units[productID]++
		}
	}

	out := make(map[uint64]float64, len(units))
	for id, u := range units {
		out[id] = u / windowDays
	}
	return out
}

// buildSuggestion applies the promotion decision table, first match
// wins. Nil means the product does not merit a promotion.
func buildSuggestion(product domain.CatalogProduct, lc domain.ProductLifecycle, turnover float64) *domain.PromotionSuggestion {
	stockRatio := math.Inf(1)
	if product.ReorderPoint > 0 {
		stockRatio = product.CurrentStock / product.ReorderPoint
	} else if product.CurrentStock <= 0 {
		stockRatio = 0
	}

	var (
		discount   float64
		reason     string
		confidence float64
		factors    []string
	)

	switch {
	case stockRatio > 2 && turnover < 0.5:
		discount = 30
		confidence = 80
		reason = "overstocked with very low turnover"
		factors = []string{
			fmt.Sprintf("stock at %.1fx the reorder point", stockRatio),
			fmt.Sprintf("turnover of %.2f units/day over 30 days", turnover),
		}
	case lc.Phase == domain.PhaseDecline:
		discount = 20
		confidence = 70
		reason = "product is in the decline phase"
		factors = []string{
			fmt.Sprintf("lifecycle phase: %s", lc.Phase),
			fmt.Sprintf("event trend: %s", lc.Trend),
		}
	case lc.Phase == domain.PhaseIntroduction && turnover < 1:
		discount = 10
		confidence = 60
		reason = "newly introduced product still building volume"
		factors = []string{
			fmt.Sprintf("lifecycle phase: %s", lc.Phase),
			fmt.Sprintf("turnover of %.2f units/day over 30 days", turnover),
		}
	case stockRatio <= 1.2:
		discount = 5
		confidence = 65
		reason = "stock near the reorder point, light promotion to steer demand"
		factors = []string{
			fmt.Sprintf("stock at %.1fx the reorder point", stockRatio),
		}
	default:
		return nil
	}

	lift := discount * elasticity

	durationDays := 3
	switch {
	case stockRatio > 3:
		durationDays = 14
	case stockRatio > 2:
		durationDays = 7
	}

	suggestion := &domain.PromotionSuggestion{
		ID:           uuid.NewString(),
		ProductID:    product.ID,
		MarketID:     product.MarketID,
		Kind:         domain.PromotionPercentOff,
		Value:        discount,
		DurationDays: durationDays,
		Reason:       reason,
		ExpectedImpact: domain.PromotionImpact{
			SalesLiftPct:       lift,
			MarginImpactPct:    -discount,
			TurnoverDeltaUnits: turnover * lift / 100,
		},
		Confidence: confidence,
		Factors:    factors,
	}

	// Mid-range discounts are worth validating against a deeper cut.
	if discount >= 10 && discount <= 20 {
		suggestion.ABTest = &domain.ABTestPlan{
			GroupAPct:      50,
			GroupBPct:      50,
			GroupADiscount: discount,
			GroupBDiscount: discount + 5,
			DurationDays:   7,
		}
	}

	return suggestion
}
