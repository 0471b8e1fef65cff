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

type ReportService interface {
	GenerateWeeklyReport(ctx context.Context, marketID uint64) (domain.AnalysisResult[domain.WeeklyMarketReport], error)
}

type ReportHandler struct {
	reportService ReportService
	timeout       time.Duration
}

func NewReportHandler(reportService ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		timeout:       30 * time.Second,
	}
}

func (h *ReportHandler) GenerateWeeklyReport(c echo.Context) error {
	marketID, err := strconv.ParseUint(c.QueryParam("market_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid or missing market_id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	timer := prometheus.NewTimer(metrics.EngineCallDuration.WithLabelValues("report"))
	defer timer.ObserveDuration()
	metrics.EngineCallTotal.WithLabelValues("report").Inc()

	result, err := h.reportService.GenerateWeeklyReport(ctx, marketID)
	if err != nil {
		logger.Error("Failed to generate weekly report", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, result)
}
