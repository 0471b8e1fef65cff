package behavior

import (
	"context"
	"fmt"
	"time"

	"mercadolens/domain"
	"mercadolens/pkg/logger"
)

const trendThreshold = 0.10

// AnalyzeProductLifecycle classifies a product's sales trajectory from
// its market event slice over the lookback window.
func (s *BehaviorService) AnalyzeProductLifecycle(ctx context.Context, productID, marketID uint64, lookbackMonths int) (domain.AnalysisResult[domain.ProductLifecycle], error) {
	var zero domain.AnalysisResult[domain.ProductLifecycle]

	if err := ctx.Err(); err != nil {
		return zero, fmt.Errorf("context error: %w", err)
	}

	if lookbackMonths <= 0 {
		lookbackMonths = DefaultLookbackMonths
	}

	to := s.now().UTC()
	from := to.AddDate(0, -lookbackMonths, 0)
	windowDays := to.Sub(from).Hours() / 24
	if windowDays < 1 {
		windowDays = 1
	}

	all, err := s.eventRepo.QueryByMarket(ctx, marketID, from, to, nil)
	if err != nil {
		logger.Error("failed to load market events", "market_id", marketID, "error", err)
		return zero, fmt.Errorf("load market events: %w", err)
	}

	events := make([]domain.Event, 0)
	for _, ev := range all {
		id, ok := ev.MetaUint64("product_id")
		if ok && id == productID {
			events = append(events, ev)
		}
	}

	turnover := productTurnover(events, windowDays)
	trend := productTrend(events, from, to)
	phase := classifyPhase(turnover, trend)

	lifecycle := domain.ProductLifecycle{
		ProductID:      productID,
		MarketID:       marketID,
		Phase:          phase,
		TurnoverPerDay: turnover,
		Trend:          trend,
		Seasonality:    seasonality(events, lookbackMonths),
	}
	lifecycle.Explanation = fmt.Sprintf(
		"Product sells %.2f units/day over the last %d months with a %s event trend, placing it in the %s phase.",
		turnover, lookbackMonths, trend, phase,
	)

	confidence := float64(len(events)) / windowDays * 2
	if confidence > 100 {
		confidence = 100
	}

	factors := []string{
		fmt.Sprintf("%d product events in the %d-month window", len(events), lookbackMonths),
		fmt.Sprintf("turnover %.2f units/day", turnover),
		fmt.Sprintf("event trend: %s", trend),
	}
	if len(events) == 0 {
		factors = append(factors, "no recorded activity for this product")
	}

	return domain.NewAnalysisResult(lifecycle, lifecycle.Explanation, confidence, factors), nil
}

func productTurnover(events []domain.Event, windowDays float64) float64 {
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

// productTrend splits the window into two halves and compares the
// per-half average event volume.
func productTrend(events []domain.Event, from, to time.Time) domain.TrendDirection {
	if len(events) == 0 {
		return domain.TrendStable
	}

	mid := from.Add(to.Sub(from) / 2)

	var firstHalf, secondHalf float64
	for _, ev := range events {
		if ev.Timestamp.Before(mid) {
			firstHalf++
		} else {
			secondHalf++
		}
	}

	if firstHalf == 0 {
		if secondHalf > 0 {
			return domain.TrendGrowing
		}
		return domain.TrendStable
	}

	change := (secondHalf - firstHalf) / firstHalf
	switch {
	case change > trendThreshold:
		return domain.TrendGrowing
	case change < -trendThreshold:
		return domain.TrendDeclining
	default:
		return domain.TrendStable
	}
}

// classifyPhase applies the decision table in order, first match wins.
// The turnover floor deliberately precedes the trend checks, so a
// near-zero-volume product classifies as decline even while growing.
func classifyPhase(turnover float64, trend domain.TrendDirection) domain.LifecyclePhase {
	switch {
	case turnover < 0.1:
		return domain.PhaseDecline
	case trend == domain.TrendGrowing && turnover < 1:
		return domain.PhaseIntroduction
	case trend == domain.TrendGrowing:
		return domain.PhaseGrowth
	case trend == domain.TrendStable && turnover >= 0.5:
		return domain.PhaseMaturity
	default:
		return domain.PhaseDecline
	}
}

// seasonality normalizes each calendar month's event count by the
// average over the months the window covers, so a uniform seller reads
// 1.0 in every observed month. Months outside the window stay at 0.
func seasonality(events []domain.Event, windowMonths int) [12]float64 {
	if windowMonths < 1 {
		windowMonths = 1
	}
	if windowMonths > 12 {
		windowMonths = 12
	}

	var counts [12]float64
	for _, ev := range events {
		counts[int(ev.Timestamp.Month())-1]++
	}

	var total float64
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		var flat [12]float64
		for i := range flat {
			flat[i] = 1.0
		}
		return flat
	}

	avg := total / float64(windowMonths)
	var multipliers [12]float64
	for i, c := range counts {
		multipliers[i] = c / avg
	}
	return multipliers
}
