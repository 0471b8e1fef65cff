package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mercadolens/domain"
	"mercadolens/pkg/logger"
)

// HealthEngine is the health engine's public API.
type HealthEngine interface {
	ComputeScoreForWindow(ctx context.Context, marketID uint64, from, to time.Time) (domain.MarketHealthScore, error)
}

// PromotionEngine is the promotion engine's public API.
type PromotionEngine interface {
	GeneratePromotionSuggestions(ctx context.Context, marketID uint64, limit int) (domain.AnalysisResult[[]domain.PromotionSuggestion], error)
}

const (
	weekDays      = 7
	maxInsights   = 5
	maxPromotions = 3

	trendDelta = 5.0
)

type ReportService struct {
	health    HealthEngine
	promotion PromotionEngine
	now       func() time.Time
}

func NewReportService(health HealthEngine, promotion PromotionEngine) *ReportService {
	return &ReportService{
		health:    health,
		promotion: promotion,
		now:       time.Now,
	}
}

// GenerateWeeklyReport compares this week's health against the prior
// week and folds the top promotion opportunities into one narrative.
func (s *ReportService) GenerateWeeklyReport(ctx context.Context, marketID uint64) (domain.AnalysisResult[domain.WeeklyMarketReport], error) {
	var zero domain.AnalysisResult[domain.WeeklyMarketReport]

	if err := ctx.Err(); err != nil {
		return zero, fmt.Errorf("context error: %w", err)
	}

	now := s.now().UTC()
	weekStart := now.AddDate(0, 0, -weekDays)
	prevStart := now.AddDate(0, 0, -2*weekDays)

	currentHealth, err := s.health.ComputeScoreForWindow(ctx, marketID, weekStart, now)
	if err != nil {
		logger.Error("failed to compute current week health", "market_id", marketID, "error", err)
		return zero, fmt.Errorf("current week health: %w", err)
	}

	previousHealth, err := s.health.ComputeScoreForWindow(ctx, marketID, prevStart, weekStart)
	if err != nil {
		logger.Error("failed to compute previous week health", "market_id", marketID, "error", err)
		return zero, fmt.Errorf("previous week health: %w", err)
	}

	promotions, err := s.promotion.GeneratePromotionSuggestions(ctx, marketID, maxPromotions)
	if err != nil {
		logger.Error("failed to generate promotion suggestions", "market_id", marketID, "error", err)
		return zero, fmt.Errorf("promotion suggestions: %w", err)
	}

	delta := currentHealth.Score - previousHealth.Score
	trend := domain.ReportStable
	switch {
	case delta > trendDelta:
		trend = domain.ReportImproving
	case delta < -trendDelta:
		trend = domain.ReportWorsening
	}

	rpt := domain.WeeklyMarketReport{
		MarketID:       marketID,
		GeneratedAt:    now,
		PeriodStart:    weekStart,
		PeriodEnd:      now,
		CurrentHealth:  currentHealth,
		PreviousHealth: previousHealth,
		ScoreDelta:     delta,
		Trend:          trend,
		Insights:       buildInsights(currentHealth, delta, trend, promotions.Data),
		TopPromotions:  promotions.Data,
	}
	rpt.Narrative = renderNarrative(rpt)

	explanation := fmt.Sprintf(
		"Weekly report for market %d: health %.1f (%+.1f vs last week, %s), %d insights, %d promotion opportunities.",
		marketID, currentHealth.Score, delta, trend, len(rpt.Insights), len(rpt.TopPromotions),
	)
	factors := []string{
		fmt.Sprintf("health score this week: %.1f", currentHealth.Score),
		fmt.Sprintf("health score last week: %.1f", previousHealth.Score),
		fmt.Sprintf("week-over-week delta: %+.1f", delta),
	}

	return domain.NewAnalysisResult(rpt, explanation, 80, factors), nil
}

func buildInsights(health domain.MarketHealthScore, delta float64, trend domain.ReportTrend, promotions []domain.PromotionSuggestion) []domain.ReportInsight {
	insights := []domain.ReportInsight{}

	switch trend {
	case domain.ReportImproving:
		insights = append(insights, domain.ReportInsight{
			Title:           "Market health improving",
			Description:     fmt.Sprintf("Health score rose %.1f points week over week to %.1f.", delta, health.Score),
			Impact:          "positive",
			SuggestedAction: "Keep the current assortment and promotion mix",
			Priority:        domain.PriorityLow,
		})
	case domain.ReportWorsening:
		insights = append(insights, domain.ReportInsight{
			Title:           "Market health worsening",
			Description:     fmt.Sprintf("Health score fell %.1f points week over week to %.1f.", -delta, health.Score),
			Impact:          "negative",
			SuggestedAction: "Work through the priority recommendations below",
			Priority:        domain.PriorityHigh,
		})
	default:
		insights = append(insights, domain.ReportInsight{
			Title:           "Market health stable",
			Description:     fmt.Sprintf("Health score held at %.1f (%+.1f week over week).", health.Score, delta),
			Impact:          "neutral",
			SuggestedAction: "No corrective action required",
			Priority:        domain.PriorityLow,
		})
	}

	if health.Metrics.StockoutRate.Impact < -5 {
		insights = append(insights, domain.ReportInsight{
			Title:           "Stockouts are hurting the score",
			Description:     fmt.Sprintf("%.1f%% of active products are at or below their reorder point.", health.Metrics.StockoutRate.Value*100),
			Impact:          "negative",
			SuggestedAction: "Prioritize restocking before the weekend peak",
			Priority:        domain.PriorityHigh,
		})
	}

	if health.Metrics.ConversionRate.Impact < -3 {
		insights = append(insights, domain.ReportInsight{
			Title:           "List-to-purchase conversion is weak",
			Description:     fmt.Sprintf("Only %.1f%% of users who build a list end up purchasing.", health.Metrics.ConversionRate.Value*100),
			Impact:          "negative",
			SuggestedAction: "Target list holders with checkout reminders",
			Priority:        domain.PriorityMedium,
		})
	}

	if len(promotions) > 0 {
		top := promotions[0]
		insights = append(insights, domain.ReportInsight{
			Title:           "Top promotion opportunity",
			Description:     fmt.Sprintf("Product %d: %.0f%% off for %d days, expected sales lift %.0f%% (%s).", top.ProductID, top.Value, top.DurationDays, top.ExpectedImpact.SalesLiftPct, top.Reason),
			Impact:          "opportunity",
			SuggestedAction: "Launch the suggested promotion",
			Priority:        domain.PriorityMedium,
		})
	}

	if health.Metrics.Engagement.Impact < -3 {
		insights = append(insights, domain.ReportInsight{
			Title:           "User engagement below the neutral band",
			Description:     fmt.Sprintf("Engagement sits at %.2f events per active user per day.", health.Metrics.Engagement.Value),
			Impact:          "negative",
			SuggestedAction: "Run a re-engagement campaign for inactive users",
			Priority:        domain.PriorityMedium,
		})
	}

	if len(insights) > maxInsights {
		insights = insights[:maxInsights]
	}
	return insights
}

func renderNarrative(rpt domain.WeeklyMarketReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## Executive summary\n")
	fmt.Fprintf(&b, "Market health is %.1f/100, %+.1f points versus last week (%s).\n\n",
		rpt.CurrentHealth.Score, rpt.ScoreDelta, rpt.Trend)

	fmt.Fprintf(&b, "## Key metrics\n")
	m := rpt.CurrentHealth.Metrics
	fmt.Fprintf(&b, "- Stockout rate: %.1f%%\n", m.StockoutRate.Value*100)
	fmt.Fprintf(&b, "- Turnover: %.1f units/day\n", m.Turnover.Value)
	fmt.Fprintf(&b, "- List-to-purchase conversion: %.1f%%\n", m.ConversionRate.Value*100)
	fmt.Fprintf(&b, "- Promotion usage: %.1f%%\n", m.PromotionUsage.Value*100)
	fmt.Fprintf(&b, "- Engagement: %.2f events/user/day\n\n", m.Engagement.Value)

	fmt.Fprintf(&b, "## Insights\n")
	for _, ins := range rpt.Insights {
		fmt.Fprintf(&b, "- [%s] %s: %s Suggested action: %s\n", ins.Impact, ins.Title, ins.Description, ins.SuggestedAction)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## Promotion opportunities\n")
	if len(rpt.TopPromotions) == 0 {
		b.WriteString("No products currently meet a promotion rule.\n")
	}
	for _, p := range rpt.TopPromotions {
		fmt.Fprintf(&b, "- Product %d: %.0f%% off for %d days, expected lift %.0f%% (%s)\n",
			p.ProductID, p.Value, p.DurationDays, p.ExpectedImpact.SalesLiftPct, p.Reason)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## Priority recommendations\n")
	if len(rpt.CurrentHealth.Recommendations) == 0 {
		b.WriteString("None this week.\n")
	}
	for _, rec := range rpt.CurrentHealth.Recommendations {
		fmt.Fprintf(&b, "- [%s] %s (%s, expected gain %.1f points)\n",
			rec.Priority, rec.Action, rec.Reason, rec.ExpectedScoreGain)
	}

	return b.String()
}
