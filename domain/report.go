package domain

import "time"

type ReportTrend string

const (
	ReportImproving ReportTrend = "improving"
	ReportWorsening ReportTrend = "worsening"
	ReportStable    ReportTrend = "stable"
)

type ReportInsight struct {
	Title           string                 `json:"title"`
	Description     string                 `json:"description"`
	Impact          string                 `json:"impact"`
	SuggestedAction string                 `json:"suggested_action"`
	Priority        RecommendationPriority `json:"priority"`
}

// WeeklyMarketReport compares this week's health against last week's
// and folds in the top promotion opportunities.
type WeeklyMarketReport struct {
	MarketID       uint64                `json:"market_id"`
	GeneratedAt    time.Time             `json:"generated_at"`
	PeriodStart    time.Time             `json:"period_start"`
	PeriodEnd      time.Time             `json:"period_end"`
	CurrentHealth  MarketHealthScore     `json:"current_health"`
	PreviousHealth MarketHealthScore     `json:"previous_health"`
	ScoreDelta     float64               `json:"score_delta"`
	Trend          ReportTrend           `json:"trend"`
	Insights       []ReportInsight       `json:"insights"`
	TopPromotions  []PromotionSuggestion `json:"top_promotions"`
	Narrative      string                `json:"narrative"`
}
