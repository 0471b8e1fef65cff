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

type HealthService interface {
	CalculateHealthScore(ctx context.Context, marketID uint64, lookbackDays int) (domain.AnalysisResult[domain.MarketHealthScore], error)
}

type HealthHandler struct {
	healthService HealthService
	lookbackDays  int
	timeout       time.Duration
}

func NewHealthHandler(healthService HealthService, lookbackDays int) *HealthHandler {
	return &HealthHandler{
		healthService: healthService,
		lookbackDays:  lookbackDays,
		timeout:       15 * time.Second,
	}
}

func (h *HealthHandler) CalculateHealthScore(c echo.Context) error {
	marketID, err := strconv.ParseUint(c.QueryParam("market_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid or missing market_id"})
	}

	lookbackDays, _ := strconv.Atoi(c.QueryParam("lookback_days"))
	if lookbackDays <= 0 {
		lookbackDays = h.lookbackDays
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	timer := prometheus.NewTimer(metrics.EngineCallDuration.WithLabelValues("health"))
	defer timer.ObserveDuration()
	metrics.EngineCallTotal.WithLabelValues("health").Inc()

	result, err := h.healthService.CalculateHealthScore(ctx, marketID, lookbackDays)
	if err != nil {
		logger.Error("Failed to calculate health score", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, result)
}
