package domain

// LifecyclePhase classifies a product's sales trajectory.
type LifecyclePhase string

const (
	PhaseIntroduction LifecyclePhase = "introduction"
	PhaseGrowth       LifecyclePhase = "growth"
	PhaseMaturity     LifecyclePhase = "maturity"
	PhaseDecline      LifecyclePhase = "decline"
)

type TrendDirection string

const (
	TrendGrowing   TrendDirection = "growing"
	TrendStable    TrendDirection = "stable"
	TrendDeclining TrendDirection = "declining"
)

// ProductLifecycle is recomputed per call from the lookback window.
// Seasonality holds one multiplier per calendar month (index 0 =
// January), 1.0 meaning baseline.
type ProductLifecycle struct {
	ProductID      uint64         `json:"product_id"`
	MarketID       uint64         `json:"market_id"`
	Phase          LifecyclePhase `json:"phase"`
	TurnoverPerDay float64        `json:"turnover_per_day"`
	Trend          TrendDirection `json:"trend"`
	Seasonality    [12]float64    `json:"seasonality"`
	Explanation    string         `json:"explanation"`
}
