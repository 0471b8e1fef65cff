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

type GondolaService interface {
	GenerateLayoutSuggestion(ctx context.Context, marketID, unitID uint64, sector string) (domain.AnalysisResult[domain.GondolaLayoutSuggestion], error)
}

type GondolaHandler struct {
	gondolaService GondolaService
	timeout        time.Duration
}

func NewGondolaHandler(gondolaService GondolaService) *GondolaHandler {
	return &GondolaHandler{
		gondolaService: gondolaService,
		timeout:        30 * time.Second,
	}
}

func (h *GondolaHandler) GenerateLayout(c echo.Context) error {
	marketID, err := strconv.ParseUint(c.QueryParam("market_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid or missing market_id"})
	}

	unitID, err := strconv.ParseUint(c.QueryParam("unit_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid or missing unit_id"})
	}

	sector := c.QueryParam("sector")
	if sector == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "missing sector"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	timer := prometheus.NewTimer(metrics.EngineCallDuration.WithLabelValues("gondola"))
	defer timer.ObserveDuration()
	metrics.EngineCallTotal.WithLabelValues("gondola").Inc()

	result, err := h.gondolaService.GenerateLayoutSuggestion(ctx, marketID, unitID, sector)
	if err != nil {
		logger.Error("Failed to generate gondola layout", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, result)
}
