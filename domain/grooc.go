package domain

import "time"

// GroocIntent buckets a free-text question.
type GroocIntent string

const (
	IntentHealth    GroocIntent = "health"
	IntentPromotion GroocIntent = "promotion"
	IntentBehavior  GroocIntent = "behavior"
	IntentProduct   GroocIntent = "product"
	IntentGeneral   GroocIntent = "general"
	IntentUnknown   GroocIntent = "unknown"
)

// GroocPayloadType discriminates DadosRelevantes.Valor.
const (
	PayloadHealthScore = "health_score"
	PayloadPromotions  = "promotions"
	PayloadBehavior    = "behavior_profile"
	PayloadLifecycle   = "product_lifecycle"
	PayloadReport      = "weekly_report"
)

// DadosRelevantes carries the engine-specific detail next to the
// conversational answer, keyed so the UI can pick a renderer. Field
// names follow the platform's pt-BR API contract.
type DadosRelevantes struct {
	Tipo  string `json:"tipo"`
	Valor any    `json:"valor"`
}

type GroocSuggestedAction struct {
	Priority RecommendationPriority `json:"priority"`
	Action   string                 `json:"action"`
}

type GroocAnswer struct {
	Question         string                 `json:"question"`
	Intent           GroocIntent            `json:"intent"`
	Answer           string                 `json:"answer"`
	Explanation      string                 `json:"explanation"`
	Confidence       float64                `json:"confidence"`
	Factors          []string               `json:"factors"`
	SuggestedActions []GroocSuggestedAction `json:"suggested_actions"`
	DadosRelevantes  *DadosRelevantes       `json:"dadosRelevantes,omitempty"`
	AnsweredAt       time.Time              `json:"answered_at"`
}
