package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"mercadolens/domain"
	"mercadolens/pkg/logger"
	"mercadolens/pkg/metrics"
)

// EventRepository contract interface
type EventRepository interface {
	Insert(ctx context.Context, event *domain.Event) error
	InsertBatch(ctx context.Context, events []domain.Event) error
	QueryByActor(ctx context.Context, actorID, marketID uint64, from, to time.Time) ([]domain.Event, error)
	QueryByMarket(ctx context.Context, marketID uint64, from, to time.Time, eventType *domain.EventType) ([]domain.Event, error)
}

type CollectorService struct {
	eventRepo EventRepository
	now       func() time.Time
}

func NewCollectorService(eventRepo EventRepository) *CollectorService {
	return &CollectorService{
		eventRepo: eventRepo,
		now:       time.Now,
	}
}

// Record appends one event. Events are telemetry: a write failure is
// logged and returned as a *domain.TelemetryError that callers ignore
// by convention, so the user action that triggered it never fails.
func (s *CollectorService) Record(ctx context.Context, actorID, marketID uint64, payload domain.EventPayload) error {
	event := domain.Event{
		ID:        uuid.NewString(),
		ActorID:   actorID,
		MarketID:  marketID,
		Type:      payload.EventType(),
		Timestamp: s.now().UTC(),
		Metadata:  payload.Metadata(),
	}

	if err := s.eventRepo.Insert(ctx, &event); err != nil {
		logger.Error("dropping event after write failure", "event_type", event.Type, "market_id", marketID, "error", err)
		metrics.EventWriteFailures.Inc()
		return &domain.TelemetryError{Op: "record", Err: err}
	}

	metrics.EventsRecorded.Inc()
	return nil
}

// RecordRaw appends an event whose metadata arrived untyped, e.g. from
// the ingestion endpoint. Unknown event types are rejected before the
// write.
func (s *CollectorService) RecordRaw(ctx context.Context, actorID, marketID uint64, eventType domain.EventType, metadata map[string]any) error {
	if !eventType.Valid() {
		err := fmt.Errorf("unknown event type: %s", eventType)
		logger.Error("dropping event with unknown type", "event_type", eventType, "market_id", marketID)
		metrics.EventWriteFailures.Inc()
		return &domain.TelemetryError{Op: "record", Err: err}
	}

	event := domain.Event{
		ID:        uuid.NewString(),
		ActorID:   actorID,
		MarketID:  marketID,
		Type:      eventType,
		Timestamp: s.now().UTC(),
		Metadata:  datatypes.JSONMap(metadata),
	}

	if err := s.eventRepo.Insert(ctx, &event); err != nil {
		logger.Error("dropping event after write failure", "event_type", eventType, "market_id", marketID, "error", err)
		metrics.EventWriteFailures.Inc()
		return &domain.TelemetryError{Op: "record", Err: err}
	}

	metrics.EventsRecorded.Inc()
	return nil
}

// RecordBatch ingests pre-built events in bulk (import pipelines).
// Invalid entries are skipped, not fatal.
func (s *CollectorService) RecordBatch(ctx context.Context, events []domain.Event) error {
	valid := make([]domain.Event, 0, len(events))
	skipped := 0

	for _, ev := range events {
		if !ev.Type.Valid() {
			skipped++
			continue
		}
		if ev.ID == "" {
			ev.ID = uuid.NewString()
		}
		if ev.Timestamp.IsZero() {
			ev.Timestamp = s.now().UTC()
		}
		valid = append(valid, ev)
	}

	if skipped > 0 {
		logger.Warn("skipped events with unknown type in batch", "skipped", skipped)
	}

	if len(valid) == 0 {
		return nil
	}

	if err := s.eventRepo.InsertBatch(ctx, valid); err != nil {
		logger.Error("dropping event batch after write failure", "batch_size", len(valid), "error", err)
		metrics.EventWriteFailures.Inc()
		return &domain.TelemetryError{Op: "record_batch", Err: err}
	}

	metrics.EventsRecorded.Add(float64(len(valid)))
	return nil
}

// QueryByActor returns the actor's events in [from, to) ascending by
// timestamp. No data is an empty slice, never an error.
func (s *CollectorService) QueryByActor(ctx context.Context, actorID, marketID uint64, from, to time.Time) ([]domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	events, err := s.eventRepo.QueryByActor(ctx, actorID, marketID, from, to)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []domain.Event{}
	}

	return events, nil
}

// QueryByMarket returns the market's events in [from, to) ascending,
// optionally filtered by type.
func (s *CollectorService) QueryByMarket(ctx context.Context, marketID uint64, from, to time.Time, eventType *domain.EventType) ([]domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	events, err := s.eventRepo.QueryByMarket(ctx, marketID, from, to, eventType)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []domain.Event{}
	}

	return events, nil
}
