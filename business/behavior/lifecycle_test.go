package behavior

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"mercadolens/domain"
)

func purchase(productID uint64, ts time.Time, qty float64) domain.Event {
	return domain.Event{
		ID:        "test",
		ActorID:   1,
		MarketID:  1,
		Type:      domain.EventPurchaseCompleted,
		Timestamp: ts,
		Metadata:  datatypes.JSONMap{"product_id": float64(productID), "quantity": qty},
	}
}

func TestClassifyPhase_DecisionTable(t *testing.T) {
	cases := []struct {
		name     string
		turnover float64
		trend    domain.TrendDirection
		want     domain.LifecyclePhase
	}{
		{"low turnover stable", 0.05, domain.TrendStable, domain.PhaseDecline},
		{"growing low volume", 0.5, domain.TrendGrowing, domain.PhaseIntroduction},
		{"growing high volume", 2.0, domain.TrendGrowing, domain.PhaseGrowth},
		{"stable mid volume", 0.8, domain.TrendStable, domain.PhaseMaturity},
		{"stable low volume", 0.3, domain.TrendStable, domain.PhaseDecline},
		{"declining high volume", 5.0, domain.TrendDeclining, domain.PhaseDecline},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, classifyPhase(tc.turnover, tc.trend))
		})
	}
}

// The turnover floor precedes the trend checks: a rapidly growing
// product below 0.1 units/day still classifies as decline. Intended
// table precedence, kept deliberately.
func TestClassifyPhase_LowTurnoverBeatsGrowingTrend(t *testing.T) {
	assert.Equal(t, domain.PhaseDecline, classifyPhase(0.05, domain.TrendGrowing))
}

func TestProductTrend_Halves(t *testing.T) {
	from := testNow.AddDate(0, -6, 0)
	firstHalf := from.AddDate(0, 1, 0)
	secondHalf := testNow.AddDate(0, -1, 0)

	growing := []domain.Event{
		purchase(1, firstHalf, 1),
		purchase(1, secondHalf, 1),
		purchase(1, secondHalf.AddDate(0, 0, 1), 1),
	}
	assert.Equal(t, domain.TrendGrowing, productTrend(growing, from, testNow))

	declining := []domain.Event{
		purchase(1, firstHalf, 1),
		purchase(1, firstHalf.AddDate(0, 0, 1), 1),
		purchase(1, secondHalf, 1),
	}
	assert.Equal(t, domain.TrendDeclining, productTrend(declining, from, testNow))

	stable := []domain.Event{
		purchase(1, firstHalf, 1),
		purchase(1, secondHalf, 1),
	}
	assert.Equal(t, domain.TrendStable, productTrend(stable, from, testNow))
}

func TestSeasonality_NormalizedByMonthlyAverage(t *testing.T) {
	events := []domain.Event{}
	june := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)
	january := time.Date(2025, time.January, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 11; i++ {
		events = append(events, purchase(1, june.AddDate(0, 0, i), 1))
	}
	events = append(events, purchase(1, january, 1))

	multipliers := seasonality(events, 12)

	// 12 events over a 12-month window: average 1/month, June holds 11.
	assert.InDelta(t, 11.0, multipliers[int(time.June)-1], 0.001)
	assert.InDelta(t, 1.0, multipliers[int(time.January)-1], 0.001)
	assert.Zero(t, multipliers[int(time.March)-1])
}

// The average is taken over the window's months, not a fixed 12, so a
// uniform seller in a short window still reads as baseline.
func TestSeasonality_UniformProductReadsBaseline(t *testing.T) {
	events := []domain.Event{}
	start := time.Date(2025, time.January, 10, 10, 0, 0, 0, time.UTC)
	for m := 0; m < 6; m++ {
		events = append(events, purchase(1, start.AddDate(0, m, 0), 1))
	}

	multipliers := seasonality(events, 6)

	for m := time.January; m <= time.June; m++ {
		assert.InDelta(t, 1.0, multipliers[int(m)-1], 0.001)
	}
	assert.Zero(t, multipliers[int(time.September)-1])
}

func TestSeasonality_EmptyIsFlatBaseline(t *testing.T) {
	multipliers := seasonality(nil, 6)
	for _, m := range multipliers {
		assert.Equal(t, 1.0, m)
	}
}

func TestAnalyzeProductLifecycle_EmptyEvents(t *testing.T) {
	svc := newTestService(&fakeEventRepo{})

	res, err := svc.AnalyzeProductLifecycle(context.Background(), 42, 1, 6)
	require.NoError(t, err)

	assert.Zero(t, res.Data.TurnoverPerDay)
	assert.Equal(t, domain.TrendStable, res.Data.Trend)
	assert.Equal(t, domain.PhaseDecline, res.Data.Phase)
	assert.LessOrEqual(t, res.Confidence, 30.0)
	assert.NotEmpty(t, res.Explanation)
}

func TestAnalyzeProductLifecycle_FiltersByProduct(t *testing.T) {
	events := []domain.Event{
		purchase(42, testNow.AddDate(0, 0, -10), 30),
		purchase(99, testNow.AddDate(0, 0, -10), 500),
	}

	svc := newTestService(&fakeEventRepo{marketEvents: events})

	res, err := svc.AnalyzeProductLifecycle(context.Background(), 42, 1, 6)
	require.NoError(t, err)

	// only product 42's 30 units count toward turnover
	windowDays := testNow.Sub(testNow.AddDate(0, -6, 0)).Hours() / 24
	assert.InDelta(t, 30.0/windowDays, res.Data.TurnoverPerDay, 0.001)
}

func TestAnalyzeProductLifecycle_Deterministic(t *testing.T) {
	events := []domain.Event{
		purchase(42, testNow.AddDate(0, -4, 0), 10),
		purchase(42, testNow.AddDate(0, -1, 0), 20),
	}

	svc := newTestService(&fakeEventRepo{marketEvents: events})

	first, err := svc.AnalyzeProductLifecycle(context.Background(), 42, 1, 6)
	require.NoError(t, err)
	second, err := svc.AnalyzeProductLifecycle(context.Background(), 42, 1, 6)
	require.NoError(t, err)

	assert.Equal(t, first.Data, second.Data)
	assert.Equal(t, first.Explanation, second.Explanation)
}
