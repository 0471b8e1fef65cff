package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"mercadolens/domain"
	"mercadolens/pkg/logger"
	"mercadolens/pkg/metrics"
)

type GroocService interface {
	AnswerQuestion(ctx context.Context, question string, marketID, actorID uint64) (domain.GroocAnswer, error)
}

type GroocHandler struct {
	groocService GroocService
	validator    *validator.Validate
	timeout      time.Duration
}

func NewGroocHandler(groocService GroocService) *GroocHandler {
	return &GroocHandler{
		groocService: groocService,
		validator:    validator.New(),
		timeout:      30 * time.Second,
	}
}

type AskRequest struct {
	Question string `json:"question" validate:"required"`
	MarketID uint64 `json:"market_id" validate:"required"`
	ActorID  uint64 `json:"actor_id"`
}

func (h *GroocHandler) Ask(c echo.Context) error {
	var req AskRequest

	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind grooc request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate grooc request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	// Authenticated user is the default actor for behavior questions.
	if req.ActorID == 0 {
		if uid, ok := c.Get("user_id").(uint); ok {
			req.ActorID = uint64(uid)
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	timer := prometheus.NewTimer(metrics.EngineCallDuration.WithLabelValues("grooc"))
	defer timer.ObserveDuration()
	metrics.EngineCallTotal.WithLabelValues("grooc").Inc()

	answer, err := h.groocService.AnswerQuestion(ctx, req.Question, req.MarketID, req.ActorID)
	if err != nil {
		logger.Error("Failed to answer grooc question", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, answer)
}
