package health

import (
	"context"
	"fmt"
	"sort"
	"time"

	"mercadolens/domain"
	"mercadolens/pkg/logger"
)

// EventRepository contract interface
type EventRepository interface {
	QueryByMarket(ctx context.Context, marketID uint64, from, to time.Time, eventType *domain.EventType) ([]domain.Event, error)
}

// CatalogRepository contract interface (read-only product/stock view)
type CatalogRepository interface {
	FindActive(ctx context.Context, marketID uint64, limit int) ([]domain.CatalogProduct, error)
	CountActive(ctx context.Context, marketID uint64) (int64, error)
	CountOnPromotion(ctx context.Context, marketID uint64) (int64, error)
}

const DefaultLookbackDays = 30

// Fixed metric weights.
const (
	weightStockout   = 0.25
	weightTurnover   = 0.20
	weightConversion = 0.25
	weightPromoUsage = 0.15
	weightEngagement = 0.15
)

// Normalization ranges for the impact mapping. The midpoint of each
// range is the neutral operating point for a market of this size.
const (
	stockoutMin, stockoutMax     = 0.0, 0.4
	turnoverMin, turnoverMax     = 0.0, 20.0
	conversionMin, conversionMax = 0.0, 0.5
	promoMin, promoMax           = 0.0, 0.3
	engagementMin, engagementMax = 0.0, 6.0
)

const (
	fullConfidence   = 85.0
	sparseConfidence = 20.0

	catalogSampleLimit = 500
)

type HealthService struct {
	eventRepo   EventRepository
	catalogRepo CatalogRepository
	now         func() time.Time
}

func NewHealthService(eventRepo EventRepository, catalogRepo CatalogRepository) *HealthService {
	return &HealthService{
		eventRepo:   eventRepo,
		catalogRepo: catalogRepo,
		now:         time.Now,
	}
}

// CalculateHealthScore combines five weighted metrics into one 0-100
// score. Metrics are deterministic aggregates, so confidence is fixed
// except on an empty window.
func (s *HealthService) CalculateHealthScore(ctx context.Context, marketID uint64, lookbackDays int) (domain.AnalysisResult[domain.MarketHealthScore], error) {
	var zero domain.AnalysisResult[domain.MarketHealthScore]

	if err := ctx.Err(); err != nil {
		return zero, fmt.Errorf("context error: %w", err)
	}

	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}

	to := s.now().UTC()
	from := to.AddDate(0, 0, -lookbackDays)

	score, eventCount, err := s.computeScore(ctx, marketID, from, to, lookbackDays)
	if err != nil {
		return zero, err
	}

	confidence := fullConfidence
	factors := []string{
		fmt.Sprintf("stockout rate %.1f%% (impact %+.1f)", score.Metrics.StockoutRate.Value*100, score.Metrics.StockoutRate.Impact),
		fmt.Sprintf("turnover %.1f units/day (impact %+.1f)", score.Metrics.Turnover.Value, score.Metrics.Turnover.Impact),
		fmt.Sprintf("list-to-purchase conversion %.1f%% (impact %+.1f)", score.Metrics.ConversionRate.Value*100, score.Metrics.ConversionRate.Impact),
		fmt.Sprintf("promotion usage %.1f%% (impact %+.1f)", score.Metrics.PromotionUsage.Value*100, score.Metrics.PromotionUsage.Impact),
		fmt.Sprintf("engagement %.2f events/user/day (impact %+.1f)", score.Metrics.Engagement.Value, score.Metrics.Engagement.Impact),
	}
	if eventCount == 0 {
		confidence = sparseConfidence
		factors = append(factors, "no events recorded in the window")
	}

	return domain.NewAnalysisResult(score, score.Explanation, confidence, factors), nil
}

// ComputeScoreForWindow exposes the raw score for a caller-chosen
// window (the weekly report compares two adjacent weeks).
func (s *HealthService) ComputeScoreForWindow(ctx context.Context, marketID uint64, from, to time.Time) (domain.MarketHealthScore, error) {
	days := int(to.Sub(from).Hours() / 24)
	if days < 1 {
		days = 1
	}
	score, _, err := s.computeScore(ctx, marketID, from, to, days)
	return score, err
}

func (s *HealthService) computeScore(ctx context.Context, marketID uint64, from, to time.Time, lookbackDays int) (domain.MarketHealthScore, int, error) {
	events, err := s.eventRepo.QueryByMarket(ctx, marketID, from, to, nil)
	if err != nil {
		logger.Error("failed to load market events", "market_id", marketID, "error", err)
		return domain.MarketHealthScore{}, 0, fmt.Errorf("load market events: %w", err)
	}

	products, err := s.catalogRepo.FindActive(ctx, marketID, catalogSampleLimit)
	if err != nil {
		logger.Error("failed to load catalog", "market_id", marketID, "error", err)
		return domain.MarketHealthScore{}, 0, fmt.Errorf("load catalog: %w", err)
	}

	promoted, err := s.catalogRepo.CountOnPromotion(ctx, marketID)
	if err != nil {
		return domain.MarketHealthScore{}, 0, fmt.Errorf("count promoted products: %w", err)
	}

	// Denominator is the market-wide active count, not the bounded
	// sample, so the fraction stays in [0, 1].
	activeCount, err := s.catalogRepo.CountActive(ctx, marketID)
	if err != nil {
		return domain.MarketHealthScore{}, 0, fmt.Errorf("count active products: %w", err)
	}

	windowDays := float64(lookbackDays)

	stockoutRate := stockoutRate(products)
	turnover := marketTurnover(events, windowDays)
	conversion := listConversion(events)
	promoUsage := 0.0
	if activeCount > 0 {
		promoUsage = float64(promoted) / float64(activeCount)
	}
	engagement := engagementRate(events, windowDays)

	sparse := len(events) == 0

	metrics := domain.HealthMetrics{
		StockoutRate:   metric(stockoutRate, weightStockout, stockoutMin, stockoutMax, true, sparse),
		Turnover:       metric(turnover, weightTurnover, turnoverMin, turnoverMax, false, sparse),
		ConversionRate: metric(conversion, weightConversion, conversionMin, conversionMax, false, sparse),
		PromotionUsage: metric(promoUsage, weightPromoUsage, promoMin, promoMax, false, sparse),
		Engagement:     metric(engagement, weightEngagement, engagementMin, engagementMax, false, sparse),
	}

	total := 50.0 +
		metrics.StockoutRate.Impact*metrics.StockoutRate.Weight +
		metrics.Turnover.Impact*metrics.Turnover.Weight +
		metrics.ConversionRate.Impact*metrics.ConversionRate.Weight +
		metrics.PromotionUsage.Impact*metrics.PromotionUsage.Weight +
		metrics.Engagement.Impact*metrics.Engagement.Weight
	if total < 0 {
		total = 0
	}
	if total > 100 {
		total = 100
	}

	score := domain.MarketHealthScore{
		MarketID:        marketID,
		Score:           total,
		ComputedAt:      s.now().UTC(),
		Metrics:         metrics,
		Recommendations: recommendations(metrics, sparse),
	}
	score.Explanation = fmt.Sprintf(
		"Market health is %.1f/100 over the last %d days. Stockout rate %.1f%%, turnover %.1f units/day, list-to-purchase conversion %.1f%%, promotion usage %.1f%%, engagement %.2f events/user/day.",
		total, lookbackDays, stockoutRate*100, turnover, conversion*100, promoUsage*100, engagement,
	)

	return score, len(events), nil
}

// impact maps a raw metric value into [-10, 10]. A sparse window
// yields neutral impacts so an idle market reads as 50, not as broken.
func impact(value, min, max float64, invert bool) float64 {
	ratio := (value - min) / (max - min)
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	out := (ratio - 0.5) * 20
	if invert {
		out = -out
	}
	return out
}

func metric(value, weight, min, max float64, invert, sparse bool) domain.HealthMetric {
	m := domain.HealthMetric{Value: value, Weight: weight}
	if !sparse {
		m.Impact = impact(value, min, max, invert)
	}
	return m
}

func stockoutRate(products []domain.CatalogProduct) float64 {
	if len(products) == 0 {
		return 0
	}
	stockouts := 0
	for _, p := range products {
		if p.CurrentStock <= p.ReorderPoint {
			stockouts++
		}
	}
	return float64(stockouts) / float64(len(products))
}

func marketTurnover(events []domain.Event, windowDays float64) float64 {
	var units float64
	for _, ev := range events {
		if ev.Type != domain.EventPurchaseCompleted {
			continue
		}
		if qty, ok := ev.MetaFloat("quantity"); ok {
			units += qty
		} else {
			units++
		}
	}
	return units / windowDays
}

// listConversion is the fraction of list-creating users that purchased
// after creating their first list in the window.
func listConversion(events []domain.Event) float64 {
	firstList := make(map[uint64]time.Time)
	for _, ev := range events {
		if ev.Type != domain.EventListCreated {
			continue
		}
		if t, ok := firstList[ev.ActorID]; !ok || ev.Timestamp.Before(t) {
			firstList[ev.ActorID] = ev.Timestamp
		}
	}
	if len(firstList) == 0 {
		return 0
	}

	converted := make(map[uint64]bool)
	for _, ev := range events {
		if ev.Type != domain.EventPurchaseCompleted {
			continue
		}
		if t, ok := firstList[ev.ActorID]; ok && !ev.Timestamp.Before(t) {
			converted[ev.ActorID] = true
		}
	}

	return float64(len(converted)) / float64(len(firstList))
}

func engagementRate(events []domain.Event, windowDays float64) float64 {
	actors := make(map[uint64]struct{})
	for _, ev := range events {
		actors[ev.ActorID] = struct{}{}
	}
	if len(actors) == 0 {
		return 0
	}
	return float64(len(events)) / float64(len(actors)) / windowDays
}

var priorityRank = map[domain.RecommendationPriority]int{
	domain.PriorityHigh:   0,
	domain.PriorityMedium: 1,
	domain.PriorityLow:    2,
}

// recommendations applies threshold rules over the computed impacts.
func recommendations(m domain.HealthMetrics, sparse bool) []domain.HealthRecommendation {
	recs := []domain.HealthRecommendation{}
	if sparse {
		return recs
	}

	if m.StockoutRate.Impact < -5 {
		recs = append(recs, domain.HealthRecommendation{
			Priority:          domain.PriorityHigh,
			Action:            "Restock products at or below their reorder point",
			Reason:            fmt.Sprintf("stockout rate of %.1f%% is dragging the score down", m.StockoutRate.Value*100),
			ExpectedScoreGain: -m.StockoutRate.Impact * m.StockoutRate.Weight,
		})
	}

	if m.ConversionRate.Impact < -3 {
		recs = append(recs, domain.HealthRecommendation{
			Priority:          domain.PriorityMedium,
			Action:            "Nudge list creators toward checkout with reminders or list-based offers",
			Reason:            fmt.Sprintf("only %.1f%% of list creators go on to purchase", m.ConversionRate.Value*100),
			ExpectedScoreGain: -m.ConversionRate.Impact * m.ConversionRate.Weight,
		})
	}

	if m.Turnover.Impact < -3 {
		recs = append(recs, domain.HealthRecommendation{
			Priority:          domain.PriorityMedium,
			Action:            "Review pricing on slow movers against nearby markets",
			Reason:            fmt.Sprintf("turnover of %.1f units/day is below the neutral band", m.Turnover.Value),
			ExpectedScoreGain: -m.Turnover.Impact * m.Turnover.Weight,
		})
	}

	if m.Engagement.Impact < -3 {
		recs = append(recs, domain.HealthRecommendation{
			Priority:          domain.PriorityMedium,
			Action:            "Run re-engagement campaigns for inactive users",
			Reason:            fmt.Sprintf("engagement of %.2f events/user/day is below the neutral band", m.Engagement.Value),
			ExpectedScoreGain: -m.Engagement.Impact * m.Engagement.Weight,
		})
	}

	if m.PromotionUsage.Value < 0.05 {
		recs = append(recs, domain.HealthRecommendation{
			Priority:          domain.PriorityLow,
			Action:            "Put a starter set of promotions on high-visibility products",
			Reason:            fmt.Sprintf("only %.1f%% of the catalogue is on promotion", m.PromotionUsage.Value*100),
			ExpectedScoreGain: (10 - m.PromotionUsage.Impact) * m.PromotionUsage.Weight * 0.3,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return priorityRank[recs[i].Priority] < priorityRank[recs[j].Priority]
	})

	return recs
}
