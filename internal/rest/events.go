package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"

	"mercadolens/domain"
	"mercadolens/pkg/logger"
	"mercadolens/pkg/response"
)

type EventCollector interface {
	RecordRaw(ctx context.Context, actorID, marketID uint64, eventType domain.EventType, metadata map[string]any) error
	RecordBatch(ctx context.Context, events []domain.Event) error
}

type EventsHandler struct {
	collector EventCollector
	validator *validator.Validate
	timeout   time.Duration
}

func NewEventsHandler(collector EventCollector) *EventsHandler {
	return &EventsHandler{
		collector: collector,
		validator: validator.New(),
		timeout:   10 * time.Second,
	}
}

type RecordEventRequest struct {
	ActorID   uint64         `json:"actor_id" validate:"required"`
	MarketID  uint64         `json:"market_id" validate:"required"`
	EventType string         `json:"event_type" validate:"required"`
	Metadata  map[string]any `json:"metadata"`
}

type RecordBatchRequest struct {
	Events []BatchEventItem `json:"events" validate:"required,min=1,dive"`
}

type BatchEventItem struct {
	ActorID   uint64         `json:"actor_id" validate:"required"`
	MarketID  uint64         `json:"market_id" validate:"required"`
	EventType string         `json:"event_type" validate:"required"`
	Timestamp time.Time      `json:"occurred_at"`
	Metadata  map[string]any `json:"metadata"`
}

// RecordEvent always answers 202: event writes are telemetry and must
// never fail the user action that produced them.
func (h *EventsHandler) RecordEvent(c echo.Context) error {
	var req RecordEventRequest

	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind event request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate event request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	recorded := true
	if err := h.collector.RecordRaw(ctx, req.ActorID, req.MarketID, domain.EventType(req.EventType), req.Metadata); err != nil {
		recorded = false
	}

	return c.JSON(http.StatusAccepted, response.Success("event processed", map[string]any{
		"recorded": recorded,
	}))
}

func (h *EventsHandler) RecordBatch(c echo.Context) error {
	var req RecordBatchRequest

	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind event batch request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validator.Struct(&req); err != nil {
		logger.Error("Failed to validate event batch request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	events := make([]domain.Event, 0, len(req.Events))
	for _, item := range req.Events {
		events = append(events, domain.Event{
			ActorID:   item.ActorID,
			MarketID:  item.MarketID,
			Type:      domain.EventType(item.EventType),
			Timestamp: item.Timestamp,
			Metadata:  datatypes.JSONMap(item.Metadata),
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	recorded := true
	if err := h.collector.RecordBatch(ctx, events); err != nil {
		recorded = false
	}

	return c.JSON(http.StatusAccepted, response.Success("event batch processed", map[string]any{
		"recorded":   recorded,
		"batch_size": len(events),
	}))
}
