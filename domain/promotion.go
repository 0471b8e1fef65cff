package domain

type PromotionKind string

const (
	PromotionPercentOff PromotionKind = "percent_off"
	PromotionFixedOff   PromotionKind = "fixed_off"
	PromotionBuyGetFree PromotionKind = "buy_get_free"
	PromotionBundle     PromotionKind = "bundle"
)

type PromotionImpact struct {
	SalesLiftPct       float64 `json:"sales_lift_pct"`
	MarginImpactPct    float64 `json:"margin_impact_pct"`
	TurnoverDeltaUnits float64 `json:"turnover_delta_units"`
}

type ABTestPlan struct {
	GroupAPct      int     `json:"group_a_pct"`
	GroupBPct      int     `json:"group_b_pct"`
	GroupADiscount float64 `json:"group_a_discount"`
	GroupBDiscount float64 `json:"group_b_discount"`
	DurationDays   int     `json:"duration_days"`
}

type PromotionSuggestion struct {
	ID             string          `json:"id"`
	ProductID      uint64          `json:"product_id"`
	MarketID       uint64          `json:"market_id"`
	Kind           PromotionKind   `json:"kind"`
	Value          float64         `json:"value"`
	DurationDays   int             `json:"duration_days"`
	Reason         string          `json:"reason"`
	ExpectedImpact PromotionImpact `json:"expected_impact"`
	Confidence     float64         `json:"confidence"`
	Factors        []string        `json:"factors"`
	ABTest         *ABTestPlan     `json:"ab_test,omitempty"`
}
