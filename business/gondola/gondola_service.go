package gondola

import (
	"context"
	"fmt"
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

// CatalogRepository contract interface
type CatalogRepository interface {
	FindActive(ctx context.Context, marketID uint64, limit int) ([]domain.CatalogProduct, error)
}

const (
	lifecycleMonths = 6

	defaultSampleLimit = 100
	defaultWorkers     = 8

	minLiftPct = 5.0
	maxLiftPct = 15.0

	fullConfidence   = 75.0
	sparseConfidence = 20.0
)

type GondolaService struct {
	lifecycle   LifecycleAnalyzer
	catalogRepo CatalogRepository
	sampleLimit int
	workers     int
	now         func() time.Time
}

func NewGondolaService(lifecycle LifecycleAnalyzer, catalogRepo CatalogRepository, sampleLimit, workers int) *GondolaService {
	if sampleLimit <= 0 {
		sampleLimit = defaultSampleLimit
	}
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &GondolaService{
		lifecycle:   lifecycle,
		catalogRepo: catalogRepo,
		sampleLimit: sampleLimit,
		workers:     workers,
		now:         time.Now,
	}
}

type rankedProduct struct {
	productID uint64
	turnover  float64
	trend     domain.TrendDirection
}

// GenerateLayoutSuggestion ranks a bounded product sample into a
// tiered shelf layout and quantifies the expected sales lift.
func (s *GondolaService) GenerateLayoutSuggestion(ctx context.Context, marketID, unitID uint64, sector string) (domain.AnalysisResult[domain.GondolaLayoutSuggestion], error) {
	var zero domain.AnalysisResult[domain.GondolaLayoutSuggestion]

	if err := ctx.Err(); err != nil {
		return zero, fmt.Errorf("context error: %w", err)
	}

	products, err := s.catalogRepo.FindActive(ctx, marketID, s.sampleLimit)
	if err != nil {
		logger.Error("failed to load catalog sample", "market_id", marketID, "error", err)
		return zero, fmt.Errorf("load catalog sample: %w", err)
	}

	ranked := make([]rankedProduct, len(products))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, product := range products {
		i, product := i, product
		g.Go(func() error {
			lc, err := s.lifecycle.AnalyzeProductLifecycle(gctx, product.ID, marketID, lifecycleMonths)
			if err != nil {
				return fmt.Errorf("lifecycle for product %d: %w", product.ID, err)
			}
			ranked[i] = rankedProduct{
				productID: product.ID,
				turnover:  lc.Data.TurnoverPerDay,
				trend:     lc.Data.Trend,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return zero, err
	}

	suggestion := buildLayout(marketID, unitID, sector, ranked)

	confidence := fullConfidence
	factors := []string{
		fmt.Sprintf("%d products ranked by turnover and trend", len(ranked)),
		fmt.Sprintf("%d products change tier", len(suggestion.ExpectedImpact.Improvements)),
	}
	if len(ranked) == 0 {
		confidence = sparseConfidence
		factors = append(factors, "no active products in the sector sample")
	}

	return domain.NewAnalysisResult(suggestion, suggestion.Explanation, confidence, factors), nil
}

// quintileTier maps a descending-turnover rank into the 5..1 baseline.
func quintileTier(rank, total int) int {
	if total == 0 {
		return 1
	}
	tier := 5 - rank*5/total
	if tier < 1 {
		tier = 1
	}
	if tier > 5 {
		tier = 5
	}
	return tier
}

// suggestedTier applies the placement rules in order, first match wins.
func suggestedTier(turnover float64, trend domain.TrendDirection) (int, string) {
	switch {
	case turnover > 2 && trend == domain.TrendGrowing:
		return 5, "high turnover and growing, maximum visibility"
	case turnover > 1 && trend == domain.TrendStable:
		return 4, "steady seller, keep near eye level"
	case turnover > 0.5 && turnover <= 1:
		return 3, "moderate turnover, mid-shelf placement"
	case trend == domain.TrendDeclining:
		return 1, "declining demand, lowest visibility"
	default:
		return 2, "low turnover, below eye level"
	}
}

func buildLayout(marketID, unitID uint64, sector string, ranked []rankedProduct) domain.GondolaLayoutSuggestion {
	// Current layout baseline: descending turnover, tiers by quintile.
	byTurnover := make([]rankedProduct, len(ranked))
	copy(byTurnover, ranked)
	sort.SliceStable(byTurnover, func(i, j int) bool {
		if byTurnover[i].turnover != byTurnover[j].turnover {
			return byTurnover[i].turnover > byTurnover[j].turnover
		}
		return byTurnover[i].productID < byTurnover[j].productID
	})

	current := make([]domain.GondolaSlot, len(byTurnover))
	currentPos := make(map[uint64]int, len(byTurnover))
	currentTier := make(map[uint64]int, len(byTurnover))
	for i, p := range byTurnover {
		slot := domain.GondolaSlot{
			ProductID: p.productID,
			Position:  i + 1,
			Tier:      quintileTier(i, len(byTurnover)),
		}
		current[i] = slot
		currentPos[p.productID] = slot.Position
		currentTier[p.productID] = slot.Tier
	}

	// Suggested layout: placement rules in evaluation order, then
	// positions assigned sequentially from the most visible tier down.
	type placement struct {
		product rankedProduct
		tier    int
		reason  string
	}
	placementsByTier := map[int][]placement{}
	for _, p := range byTurnover {
		tier, reason := suggestedTier(p.turnover, p.trend)
		placementsByTier[tier] = append(placementsByTier[tier], placement{product: p, tier: tier, reason: reason})
	}

	suggested := make([]domain.GondolaSlot, 0, len(byTurnover))
	suggestedPos := make(map[uint64]int, len(byTurnover))
	pos := 1
	for tier := 5; tier >= 1; tier-- {
		for _, pl := range placementsByTier[tier] {
			suggested = append(suggested, domain.GondolaSlot{
				ProductID: pl.product.productID,
				Position:  pos,
				Tier:      pl.tier,
				Reason:    pl.reason,
			})
			suggestedPos[pl.product.productID] = pos
			pos++
		}
	}

	// Per-product delta: tier movement weighted by turnover plus a
	// position term favouring moves toward the front.
	var aggregate float64
	improvements := []string{}
	for _, p := range byTurnover {
		curT := currentTier[p.productID]
		curP := currentPos[p.productID]
		sugT := 0
		sugP := 0
		for _, slot := range suggested {
			if slot.ProductID == p.productID {
				sugT = slot.Tier
				sugP = slot.Position
				break
			}
		}

		delta := float64(sugT-curT)*p.turnover + (1/float64(curP)-1/float64(sugP))*p.turnover*10
		aggregate += delta

		if sugT > curT {
			improvements = append(improvements, fmt.Sprintf(
				"move product %d from tier %d to tier %d (%.2f units/day, trend %s)",
				p.productID, curT, sugT, p.turnover, p.trend,
			))
		}
	}

	lift := aggregate
	if lift < minLiftPct {
		lift = minLiftPct
	}
	if lift > maxLiftPct {
		lift = maxLiftPct
	}
	if len(ranked) == 0 {
		lift = 0
	}

	out := domain.GondolaLayoutSuggestion{
		ID:              uuid.NewString(),
		MarketID:        marketID,
		UnitID:          unitID,
		Sector:          sector,
		CurrentLayout:   current,
		SuggestedLayout: suggested,
		ExpectedImpact: domain.GondolaImpact{
			SalesLiftPct: lift,
			Improvements: improvements,
		},
	}
	out.Explanation = fmt.Sprintf(
		"Reorganized %d products in sector %q into visibility tiers by turnover and trend; %d products move up, estimated sales lift %.1f%%.",
		len(ranked), sector, len(improvements), lift,
	)

	return out
}
