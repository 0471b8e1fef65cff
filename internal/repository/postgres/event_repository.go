package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"mercadolens/domain"
)

// EventRepository persists the append-only engine event log. Rows are
// never updated or deleted here; retention is an operational concern.
type EventRepository struct {
	DB *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{
		DB: db,
	}
}

func (r *EventRepository) Insert(ctx context.Context, event *domain.Event) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	return nil
}

func (r *EventRepository) InsertBatch(ctx context.Context, events []domain.Event) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if len(events) == 0 {
		return nil
	}

	if err := r.DB.WithContext(ctx).CreateInBatches(events, 500).Error; err != nil {
		return fmt.Errorf("failed to insert event batch: %w", err)
	}

	return nil
}

func (r *EventRepository) QueryByActor(ctx context.Context, actorID, marketID uint64, from, to time.Time) ([]domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	events := []domain.Event{}
	err := r.DB.WithContext(ctx).
		Where("actor_id = ? AND market_id = ? AND occurred_at >= ? AND occurred_at < ?", actorID, marketID, from, to).
		Order("occurred_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query events by actor: %w", err)
	}

	return events, nil
}

func (r *EventRepository) QueryByMarket(ctx context.Context, marketID uint64, from, to time.Time, eventType *domain.EventType) ([]domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	q := r.DB.WithContext(ctx).
		Where("market_id = ? AND occurred_at >= ? AND occurred_at < ?", marketID, from, to)

	if eventType != nil {
		q = q.Where("event_type = ?", *eventType)
	}

	events := []domain.Event{}
	if err := q.Order("occurred_at ASC").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to query events by market: %w", err)
	}

	return events, nil
}

func (r *EventRepository) CountByMarket(ctx context.Context, marketID uint64, from, to time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context error: %w", err)
	}

	var count int64
	err := r.DB.WithContext(ctx).Model(&domain.Event{}).
		Where("market_id = ? AND occurred_at >= ? AND occurred_at < ?", marketID, from, to).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}

	return count, nil
}
