package grooc

import (
	"strings"
	"unicode"

	"mercadolens/domain"
)

// intentRule binds a keyword set to an intent bucket. Rules are
// evaluated in order and the first match wins, so precedence is
// explicit and testable.
type intentRule struct {
	Intent   domain.GroocIntent
	Keywords []string
}

// The platform's users ask in pt-BR; English synonyms are kept for the
// dashboard's embedded console.
var intentRules = []intentRule{
	{
		Intent: domain.IntentHealth,
		Keywords: []string{
			"saude", "saúde", "health", "score", "pontuacao", "pontuação", "desempenho",
		},
	},
	{
		Intent: domain.IntentPromotion,
		Keywords: []string{
			"promocao", "promoção", "promocoes", "promoções", "promotion", "desconto", "discount", "oferta",
		},
	},
	{
		Intent: domain.IntentBehavior,
		Keywords: []string{
			"comportamento", "behavior", "usuario", "usuário", "cliente", "habito", "hábito", "perfil",
		},
	},
	{
		Intent: domain.IntentProduct,
		Keywords: []string{
			"produto", "product", "ciclo de vida", "lifecycle", "giro", "vendas do produto",
		},
	},
	{
		Intent: domain.IntentGeneral,
		Keywords: []string{
			"relatorio", "relatório", "report", "resumo", "semana", "overview", "geral",
		},
	},
}

// classifyIntent matches the question against the rule table.
func classifyIntent(question string) domain.GroocIntent {
	normalized := strings.ToLower(question)

	for _, rule := range intentRules {
		for _, kw := range rule.Keywords {
			if strings.Contains(normalized, kw) {
				return rule.Intent
			}
		}
	}

	return domain.IntentUnknown
}

// extractID pulls the first integer token out of the question, used
// for product and user references ("como está o produto 42?").
func extractID(question string) (uint64, bool) {
	var current uint64
	inNumber := false

	for _, r := range question {
		if unicode.IsDigit(r) {
			current = current*10 + uint64(r-'0')
			inNumber = true
			continue
		}
		if inNumber {
			return current, true
		}
	}
	if inNumber {
		return current, true
	}
	return 0, false
}
