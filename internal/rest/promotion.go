package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"mercadolens/domain"
	"mercadolens/pkg/logger"
	"mercadolens/pkg/metrics"
)

type PromotionService interface {
	GeneratePromotionSuggestions(ctx context.Context, marketID uint64, limit int) (domain.AnalysisResult[[]domain.PromotionSuggestion], error)
}

type PromotionHandler struct {
	promotionService PromotionService
	timeout          time.Duration
}

func NewPromotionHandler(promotionService PromotionService) *PromotionHandler {
	return &PromotionHandler{
		promotionService: promotionService,
		timeout:          30 * time.Second,
	}
}

func (h *PromotionHandler) GenerateSuggestions(c echo.Context) error {
	marketID, err := strconv.ParseUint(c.QueryParam("market_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid or missing market_id"})
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	timer := prometheus.NewTimer(metrics.EngineCallDuration.WithLabelValues("promotion"))
	defer timer.ObserveDuration()
	metrics.EngineCallTotal.WithLabelValues("promotion").Inc()

	result, err := h.promotionService.GeneratePromotionSuggestions(ctx, marketID, limit)
	if err != nil {
		logger.Error("Failed to generate promotion suggestions", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, result)
}
