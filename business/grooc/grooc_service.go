package grooc

import (
	"context"
	"fmt"
	"time"

	"mercadolens/domain"
	"mercadolens/pkg/logger"
)

// Public APIs of the engines Grooc dispatches to. Grooc never reaches
// into their internals, it only reshapes their envelopes.

type HealthEngine interface {
	CalculateHealthScore(ctx context.Context, marketID uint64, lookbackDays int) (domain.AnalysisResult[domain.MarketHealthScore], error)
}

type PromotionEngine interface {
	GeneratePromotionSuggestions(ctx context.Context, marketID uint64, limit int) (domain.AnalysisResult[[]domain.PromotionSuggestion], error)
}

type BehaviorEngine interface {
	AnalyzeUserBehavior(ctx context.Context, actorID, marketID uint64, lookbackDays int) (domain.AnalysisResult[domain.BehaviorProfile], error)
	AnalyzeProductLifecycle(ctx context.Context, productID, marketID uint64, lookbackMonths int) (domain.AnalysisResult[domain.ProductLifecycle], error)
}

type ReportEngine interface {
	GenerateWeeklyReport(ctx context.Context, marketID uint64) (domain.AnalysisResult[domain.WeeklyMarketReport], error)
}

const maxSuggestedActions = 3

type GroocService struct {
	health    HealthEngine
	promotion PromotionEngine
	behavior  BehaviorEngine
	report    ReportEngine
	now       func() time.Time
}

func NewGroocService(health HealthEngine, promotion PromotionEngine, behavior BehaviorEngine, report ReportEngine) *GroocService {
	return &GroocService{
		health:    health,
		promotion: promotion,
		behavior:  behavior,
		report:    report,
		now:       time.Now,
	}
}

// AnswerQuestion classifies the question into an intent bucket and
// dispatches to the owning engine. Questions Grooc cannot resolve get
// a confidence-0 clarification answer, never an error.
func (s *GroocService) AnswerQuestion(ctx context.Context, question string, marketID, actorID uint64) (domain.GroocAnswer, error) {
	if err := ctx.Err(); err != nil {
		return domain.GroocAnswer{}, fmt.Errorf("context error: %w", err)
	}

	intent := classifyIntent(question)
	logger.Info("grooc question classified", "intent", intent, "market_id", marketID)

	switch intent {
	case domain.IntentHealth:
		return s.answerHealth(ctx, question, marketID)
	case domain.IntentPromotion:
		return s.answerPromotion(ctx, question, marketID)
	case domain.IntentBehavior:
		return s.answerBehavior(ctx, question, marketID, actorID)
	case domain.IntentProduct:
		return s.answerProduct(ctx, question, marketID)
	case domain.IntentGeneral:
		return s.answerGeneral(ctx, question, marketID)
	default:
		return s.clarification(question, domain.IntentUnknown,
			"Não entendi a pergunta. Posso falar sobre a saúde do mercado, promoções, comportamento de clientes ou produtos específicos."), nil
	}
}

func (s *GroocService) answerHealth(ctx context.Context, question string, marketID uint64) (domain.GroocAnswer, error) {
	res, err := s.health.CalculateHealthScore(ctx, marketID, 0)
	if err != nil {
		return domain.GroocAnswer{}, fmt.Errorf("health engine: %w", err)
	}

	score := res.Data
	answer := fmt.Sprintf("A saúde do mercado está em %.1f/100.", score.Score)
	switch {
	case score.Score >= 70:
		answer += " O mercado opera bem acima do ponto neutro."
	case score.Score >= 40:
		answer += " O mercado opera perto do ponto neutro, com espaço para melhorar."
	default:
		answer += " O mercado precisa de atenção imediata."
	}

	actions := make([]domain.GroocSuggestedAction, 0, maxSuggestedActions)
	for _, rec := range score.Recommendations {
		if len(actions) == maxSuggestedActions {
			break
		}
		actions = append(actions, domain.GroocSuggestedAction{Priority: rec.Priority, Action: rec.Action})
	}

	return s.wrap(question, domain.IntentHealth, answer, res.Explanation, res.Confidence, res.Factors, actions,
		&domain.DadosRelevantes{Tipo: domain.PayloadHealthScore, Valor: score}), nil
}

func (s *GroocService) answerPromotion(ctx context.Context, question string, marketID uint64) (domain.GroocAnswer, error) {
	res, err := s.promotion.GeneratePromotionSuggestions(ctx, marketID, 5)
	if err != nil {
		return domain.GroocAnswer{}, fmt.Errorf("promotion engine: %w", err)
	}

	suggestions := res.Data
	var answer string
	if len(suggestions) == 0 {
		answer = "Nenhum produto atende aos critérios de promoção no momento."
	} else {
		top := suggestions[0]
		answer = fmt.Sprintf(
			"Encontrei %d oportunidades de promoção. A melhor: %.0f%% de desconto no produto %d por %d dias, com alta esperada de %.0f%% nas vendas.",
			len(suggestions), top.Value, top.ProductID, top.DurationDays, top.ExpectedImpact.SalesLiftPct,
		)
	}

	actions := make([]domain.GroocSuggestedAction, 0, maxSuggestedActions)
	for _, sg := range suggestions {
		if len(actions) == maxSuggestedActions {
			break
		}
		actions = append(actions, domain.GroocSuggestedAction{
			Priority: domain.PriorityMedium,
			Action:   fmt.Sprintf("Aplicar %.0f%% de desconto no produto %d por %d dias", sg.Value, sg.ProductID, sg.DurationDays),
		})
	}

	return s.wrap(question, domain.IntentPromotion, answer, res.Explanation, res.Confidence, res.Factors, actions,
		&domain.DadosRelevantes{Tipo: domain.PayloadPromotions, Valor: suggestions}), nil
}

func (s *GroocService) answerBehavior(ctx context.Context, question string, marketID, actorID uint64) (domain.GroocAnswer, error) {
	if actorID == 0 {
		if id, ok := extractID(question); ok {
			actorID = id
		}
	}
	if actorID == 0 {
		return s.clarification(question, domain.IntentBehavior,
			"Sobre qual cliente você quer saber? Informe o identificador do usuário."), nil
	}

	res, err := s.behavior.AnalyzeUserBehavior(ctx, actorID, marketID, 0)
	if err != nil {
		return domain.GroocAnswer{}, fmt.Errorf("behavior engine: %w", err)
	}

	profile := res.Data
	answer := fmt.Sprintf(
		"O cliente %d tem intenção de compra de %.0f/100, com %d eventos no período.",
		actorID, profile.Intent.Score, profile.EventCount,
	)
	if len(profile.PeakHours) > 0 {
		peak := profile.PeakHours[0]
		answer += fmt.Sprintf(" O horário de maior atividade é %s às %dh.", weekdayPT(peak.Weekday), peak.Hour)
	}

	actions := []domain.GroocSuggestedAction{}
	if profile.Intent.Score >= 70 {
		actions = append(actions, domain.GroocSuggestedAction{
			Priority: domain.PriorityHigh,
			Action:   "Enviar oferta direcionada enquanto a intenção de compra está alta",
		})
	}

	return s.wrap(question, domain.IntentBehavior, answer, res.Explanation, res.Confidence, res.Factors, actions,
		&domain.DadosRelevantes{Tipo: domain.PayloadBehavior, Valor: profile}), nil
}

func (s *GroocService) answerProduct(ctx context.Context, question string, marketID uint64) (domain.GroocAnswer, error) {
	productID, ok := extractID(question)
	if !ok {
		return s.clarification(question, domain.IntentProduct,
			"Sobre qual produto você quer saber? Informe o identificador do produto."), nil
	}

	res, err := s.behavior.AnalyzeProductLifecycle(ctx, productID, marketID, 0)
	if err != nil {
		return domain.GroocAnswer{}, fmt.Errorf("lifecycle analysis: %w", err)
	}

	lc := res.Data
	answer := fmt.Sprintf(
		"O produto %d está na fase de %s, vendendo %.2f unidades/dia com tendência %s.",
		productID, phasePT(lc.Phase), lc.TurnoverPerDay, trendPT(lc.Trend),
	)

	actions := []domain.GroocSuggestedAction{}
	if lc.Phase == domain.PhaseDecline {
		actions = append(actions, domain.GroocSuggestedAction{
			Priority: domain.PriorityMedium,
			Action:   fmt.Sprintf("Avaliar promoção para o produto %d antes de descontinuar", productID),
		})
	}

	return s.wrap(question, domain.IntentProduct, answer, res.Explanation, res.Confidence, res.Factors, actions,
		&domain.DadosRelevantes{Tipo: domain.PayloadLifecycle, Valor: lc}), nil
}

func (s *GroocService) answerGeneral(ctx context.Context, question string, marketID uint64) (domain.GroocAnswer, error) {
	res, err := s.report.GenerateWeeklyReport(ctx, marketID)
	if err != nil {
		return domain.GroocAnswer{}, fmt.Errorf("report engine: %w", err)
	}

	rpt := res.Data
	answer := fmt.Sprintf(
		"Resumo da semana: saúde do mercado em %.1f/100 (%+.1f vs semana anterior), %d oportunidades de promoção identificadas.",
		rpt.CurrentHealth.Score, rpt.ScoreDelta, len(rpt.TopPromotions),
	)

	actions := make([]domain.GroocSuggestedAction, 0, maxSuggestedActions)
	for _, ins := range rpt.Insights {
		if len(actions) == maxSuggestedActions {
			break
		}
		actions = append(actions, domain.GroocSuggestedAction{Priority: ins.Priority, Action: ins.SuggestedAction})
	}

	return s.wrap(question, domain.IntentGeneral, answer, res.Explanation, res.Confidence, res.Factors, actions,
		&domain.DadosRelevantes{Tipo: domain.PayloadReport, Valor: rpt}), nil
}

func (s *GroocService) wrap(question string, intent domain.GroocIntent, answer, explanation string, confidence float64, factors []string, actions []domain.GroocSuggestedAction, dados *domain.DadosRelevantes) domain.GroocAnswer {
	if factors == nil {
		factors = []string{}
	}
	if actions == nil {
		actions = []domain.GroocSuggestedAction{}
	}
	return domain.GroocAnswer{
		Question:         question,
		Intent:           intent,
		Answer:           answer,
		Explanation:      explanation,
		Confidence:       confidence,
		Factors:          factors,
		SuggestedActions: actions,
		DadosRelevantes:  dados,
		AnsweredAt:       s.now().UTC(),
	}
}

func (s *GroocService) clarification(question string, intent domain.GroocIntent, message string) domain.GroocAnswer {
	return domain.GroocAnswer{
		Question:         question,
		Intent:           intent,
		Answer:           message,
		Explanation:      "A pergunta não trouxe informação suficiente para acionar um dos motores de análise.",
		Confidence:       0,
		Factors:          []string{"identificador ou intenção ausente na pergunta"},
		SuggestedActions: []domain.GroocSuggestedAction{},
		AnsweredAt:       s.now().UTC(),
	}
}

func weekdayPT(d time.Weekday) string {
	switch d {
	case time.Sunday:
		return "domingo"
	case time.Monday:
		return "segunda-feira"
	case time.Tuesday:
		return "terça-feira"
	case time.Wednesday:
		return "quarta-feira"
	case time.Thursday:
		return "quinta-feira"
	case time.Friday:
		return "sexta-feira"
	default:
		return "sábado"
	}
}

func phasePT(p domain.LifecyclePhase) string {
	switch p {
	case domain.PhaseIntroduction:
		return "introdução"
	case domain.PhaseGrowth:
		return "crescimento"
	case domain.PhaseMaturity:
		return "maturidade"
	default:
		return "declínio"
	}
}

func trendPT(t domain.TrendDirection) string {
	switch t {
	case domain.TrendGrowing:
		return "de alta"
	case domain.TrendDeclining:
		return "de queda"
	default:
		return "estável"
	}
}
