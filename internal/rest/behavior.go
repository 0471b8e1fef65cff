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

type BehaviorService interface {
	AnalyzeUserBehavior(ctx context.Context, actorID, marketID uint64, lookbackDays int) (domain.AnalysisResult[domain.BehaviorProfile], error)
	AnalyzeProductLifecycle(ctx context.Context, productID, marketID uint64, lookbackMonths int) (domain.AnalysisResult[domain.ProductLifecycle], error)
}

type BehaviorHandler struct {
	behaviorService BehaviorService
	lookbackDays    int
	lookbackMonths  int
	timeout         time.Duration
}

// Lookback defaults come from the engine config; a query param
// overrides them per request.
func NewBehaviorHandler(behaviorService BehaviorService, lookbackDays, lookbackMonths int) *BehaviorHandler {
	return &BehaviorHandler{
		behaviorService: behaviorService,
		lookbackDays:    lookbackDays,
		lookbackMonths:  lookbackMonths,
		timeout:         15 * time.Second,
	}
}

func (h *BehaviorHandler) AnalyzeUserBehavior(c echo.Context) error {
	actorID, err := strconv.ParseUint(c.Param("actorId"), 10, 64)
	if err != nil {
		logger.Error("Invalid actor id", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

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

	timer := prometheus.NewTimer(metrics.EngineCallDuration.WithLabelValues("behavior"))
	defer timer.ObserveDuration()
	metrics.EngineCallTotal.WithLabelValues("behavior").Inc()

	result, err := h.behaviorService.AnalyzeUserBehavior(ctx, actorID, marketID, lookbackDays)
	if err != nil {
		logger.Error("Failed to analyze user behavior", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, result)
}

func (h *BehaviorHandler) AnalyzeProductLifecycle(c echo.Context) error {
	productID, err := strconv.ParseUint(c.Param("productId"), 10, 64)
	if err != nil {
		logger.Error("Invalid product id", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	marketID, err := strconv.ParseUint(c.QueryParam("market_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid or missing market_id"})
	}

	lookbackMonths, _ := strconv.Atoi(c.QueryParam("lookback_months"))
	if lookbackMonths <= 0 {
		lookbackMonths = h.lookbackMonths
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	timer := prometheus.NewTimer(metrics.EngineCallDuration.WithLabelValues("lifecycle"))
	defer timer.ObserveDuration()
	metrics.EngineCallTotal.WithLabelValues("lifecycle").Inc()

	result, err := h.behaviorService.AnalyzeProductLifecycle(ctx, productID, marketID, lookbackMonths)
	if err != nil {
		logger.Error("Failed to analyze product lifecycle", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, result)
}
