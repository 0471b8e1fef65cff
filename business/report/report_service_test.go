package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mercadolens/domain"
)

type fakeHealthEngine struct {
	current  domain.MarketHealthScore
	previous domain.MarketHealthScore
	err      error
	calls    int
}

func (f *fakeHealthEngine) ComputeScoreForWindow(ctx context.Context, marketID uint64, from, to time.Time) (domain.MarketHealthScore, error) {
	if f.err != nil {
		return domain.MarketHealthScore{}, f.err
	}
	f.calls++
	if f.calls == 1 {
		return f.current, nil
	}
	return f.previous, nil
}

type fakePromotionEngine struct {
	suggestions []domain.PromotionSuggestion
}

func (f *fakePromotionEngine) GeneratePromotionSuggestions(ctx context.Context, marketID uint64, limit int) (domain.AnalysisResult[[]domain.PromotionSuggestion], error) {
	out := f.suggestions
	if len(out) > limit {
		out = out[:limit]
	}
	return domain.NewAnalysisResult(out, "test", 75, nil), nil
}

var testNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func newTestService(health *fakeHealthEngine, promo *fakePromotionEngine) *ReportService {
	svc := NewReportService(health, promo)
	svc.now = func() time.Time { return testNow }
	return svc
}

func scoreOf(v float64) domain.MarketHealthScore {
	return domain.MarketHealthScore{MarketID: 1, Score: v}
}

func TestGenerateWeeklyReport_TrendClassification(t *testing.T) {
	cases := []struct {
		name     string
		current  float64
		previous float64
		want     domain.ReportTrend
	}{
		{"clear improvement", 70, 60, domain.ReportImproving},
		{"clear decline", 50, 62, domain.ReportWorsening},
		{"within the stable band", 58, 55, domain.ReportStable},
		{"exactly at the threshold", 65, 60, domain.ReportStable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			health := &fakeHealthEngine{current: scoreOf(tc.current), previous: scoreOf(tc.previous)}
			svc := newTestService(health, &fakePromotionEngine{})

			res, err := svc.GenerateWeeklyReport(context.Background(), 1)
			require.NoError(t, err)

			assert.Equal(t, tc.want, res.Data.Trend)
			assert.InDelta(t, tc.current-tc.previous, res.Data.ScoreDelta, 0.001)
		})
	}
}

func TestGenerateWeeklyReport_WindowsAreAdjacentWeeks(t *testing.T) {
	health := &fakeHealthEngine{current: scoreOf(60), previous: scoreOf(60)}
	svc := newTestService(health, &fakePromotionEngine{})

	res, err := svc.GenerateWeeklyReport(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, testNow, res.Data.PeriodEnd)
	assert.Equal(t, testNow.AddDate(0, 0, -7), res.Data.PeriodStart)
	assert.Equal(t, 2, health.calls)
}

func TestGenerateWeeklyReport_WorseningLeadsWithHighPriorityInsight(t *testing.T) {
	health := &fakeHealthEngine{current: scoreOf(45), previous: scoreOf(60)}
	svc := newTestService(health, &fakePromotionEngine{})

	res, err := svc.GenerateWeeklyReport(context.Background(), 1)
	require.NoError(t, err)

	require.NotEmpty(t, res.Data.Insights)
	first := res.Data.Insights[0]
	assert.Equal(t, "Market health worsening", first.Title)
	assert.Equal(t, domain.PriorityHigh, first.Priority)
}

func TestGenerateWeeklyReport_PromotionInsightAndNarrative(t *testing.T) {
	promo := &fakePromotionEngine{suggestions: []domain.PromotionSuggestion{
		{
			ProductID:      42,
			Value:          30,
			DurationDays:   14,
			Reason:         "overstocked with very low turnover",
			ExpectedImpact: domain.PromotionImpact{SalesLiftPct: 45},
		},
	}}
	health := &fakeHealthEngine{current: scoreOf(60), previous: scoreOf(60)}
	svc := newTestService(health, promo)

	res, err := svc.GenerateWeeklyReport(context.Background(), 1)
	require.NoError(t, err)

	var found bool
	for _, ins := range res.Data.Insights {
		if ins.Title == "Top promotion opportunity" {
			found = true
			assert.Contains(t, ins.Description, "Product 42")
		}
	}
	assert.True(t, found)

	assert.Contains(t, res.Data.Narrative, "## Executive summary")
	assert.Contains(t, res.Data.Narrative, "## Key metrics")
	assert.Contains(t, res.Data.Narrative, "## Promotion opportunities")
	assert.Contains(t, res.Data.Narrative, "Product 42: 30% off for 14 days")
}

func TestGenerateWeeklyReport_EmptyMarketNarrative(t *testing.T) {
	health := &fakeHealthEngine{current: scoreOf(50), previous: scoreOf(50)}
	svc := newTestService(health, &fakePromotionEngine{})

	res, err := svc.GenerateWeeklyReport(context.Background(), 1)
	require.NoError(t, err)

	assert.Contains(t, res.Data.Narrative, "No products currently meet a promotion rule.")
	assert.Contains(t, res.Data.Narrative, "None this week.")
	assert.LessOrEqual(t, len(res.Data.Insights), 5)
}

func TestGenerateWeeklyReport_HealthEngineError(t *testing.T) {
	health := &fakeHealthEngine{err: errors.New("db down")}
	svc := newTestService(health, &fakePromotionEngine{})

	_, err := svc.GenerateWeeklyReport(context.Background(), 1)
	assert.Error(t, err)
}

func TestBuildInsights_CappedAtFive(t *testing.T) {
	health := domain.MarketHealthScore{
		Score: 30,
		Metrics: domain.HealthMetrics{
			StockoutRate:   domain.HealthMetric{Value: 0.5, Impact: -10},
			ConversionRate: domain.HealthMetric{Value: 0.05, Impact: -8},
			Engagement:     domain.HealthMetric{Value: 0.1, Impact: -9},
		},
	}
	promotions := []domain.PromotionSuggestion{{ProductID: 1, Value: 20}}

	insights := buildInsights(health, -10, domain.ReportWorsening, promotions)

	assert.Len(t, insights, 5)
}
