package domain

import "time"

type HealthMetric struct {
	Value  float64 `json:"value"`
	Weight float64 `json:"weight"`
	Impact float64 `json:"impact"`
}

type HealthMetrics struct {
	StockoutRate   HealthMetric `json:"stockout_rate"`
	Turnover       HealthMetric `json:"turnover"`
	ConversionRate HealthMetric `json:"conversion_rate"`
	PromotionUsage HealthMetric `json:"promotion_usage"`
	Engagement     HealthMetric `json:"engagement"`
}

type RecommendationPriority string

const (
	PriorityHigh   RecommendationPriority = "high"
	PriorityMedium RecommendationPriority = "medium"
	PriorityLow    RecommendationPriority = "low"
)

type HealthRecommendation struct {
	Priority          RecommendationPriority `json:"priority"`
	Action            string                 `json:"action"`
	Reason            string                 `json:"reason"`
	ExpectedScoreGain float64                `json:"expected_score_gain"`
}

// MarketHealthScore composes five weighted metrics into a 0-100 score.
// Score = 50 + sum(impact * weight), clamped.
type MarketHealthScore struct {
	MarketID        uint64                 `json:"market_id"`
	Score           float64                `json:"score"`
	ComputedAt      time.Time              `json:"computed_at"`
	Metrics         HealthMetrics          `json:"metrics"`
	Explanation     string                 `json:"explanation"`
	Recommendations []HealthRecommendation `json:"recommendations"`
}
