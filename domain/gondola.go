package domain

// Tier is shelf visibility, 1 lowest to 5 most visible.

type GondolaSlot struct {
	ProductID uint64 `json:"product_id"`
	Position  int    `json:"position"`
	Tier      int    `json:"tier"`
	Reason    string `json:"reason,omitempty"`
}

type GondolaImpact struct {
	SalesLiftPct float64  `json:"sales_lift_pct"`
	Improvements []string `json:"improvements"`
}

type GondolaLayoutSuggestion struct {
	ID              string        `json:"id"`
	MarketID        uint64        `json:"market_id"`
	UnitID          uint64        `json:"unit_id"`
	Sector          string        `json:"sector"`
	CurrentLayout   []GondolaSlot `json:"current_layout"`
	SuggestedLayout []GondolaSlot `json:"suggested_layout"`
	ExpectedImpact  GondolaImpact `json:"expected_impact"`
	Explanation     string        `json:"explanation"`
}
