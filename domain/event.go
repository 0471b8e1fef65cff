package domain

import (
	"time"

	"gorm.io/datatypes"
)

// EventType is the closed set of domain events the engines understand.
type EventType string

const (
	EventListCreated       EventType = "list_created"
	EventItemAddedToList   EventType = "item_added_to_list"
	EventItemRemoved       EventType = "item_removed"
	EventProductSearched   EventType = "product_searched"
	EventProductViewed     EventType = "product_viewed"
	EventPurchaseCompleted EventType = "purchase_completed"
	EventPromotionViewed   EventType = "promotion_viewed"
	EventAccessTime        EventType = "access_time"
)

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	switch t {
	case EventListCreated, EventItemAddedToList, EventItemRemoved,
		EventProductSearched, EventProductViewed, EventPurchaseCompleted,
		EventPromotionViewed, EventAccessTime:
		return true
	}
	return false
}

type Event struct {
	ID        string            `gorm:"column:id;primaryKey;type:text" json:"id"`
	ActorID   uint64            `gorm:"column:actor_id;not null;index:idx_events_actor" json:"actor_id"`
	MarketID  uint64            `gorm:"column:market_id;not null;index:idx_events_market" json:"market_id"`
	Type      EventType         `gorm:"column:event_type;not null" json:"event_type"`
	Timestamp time.Time         `gorm:"column:occurred_at;not null;index:idx_events_occurred" json:"occurred_at"`
	Metadata  datatypes.JSONMap `gorm:"column:metadata;type:jsonb" json:"metadata"`
}

func (Event) TableName() string {
	return "engine_events"
}

// EventPayload is the typed side of the metadata bag: one variant per
// event type, flattened to jsonb on write.
type EventPayload interface {
	EventType() EventType
	Metadata() datatypes.JSONMap
}

type ListCreatedPayload struct {
	ListID string
}

func (ListCreatedPayload) EventType() EventType { return EventListCreated }

func (p ListCreatedPayload) Metadata() datatypes.JSONMap {
	return datatypes.JSONMap{"list_id": p.ListID}
}

type ItemAddedPayload struct {
	ListID     string
	ProductID  uint64
	CategoryID uint64
	Quantity   float64
}

func (ItemAddedPayload) EventType() EventType { return EventItemAddedToList }

func (p ItemAddedPayload) Metadata() datatypes.JSONMap {
	return datatypes.JSONMap{
		"list_id":     p.ListID,
		"product_id":  p.ProductID,
		"category_id": p.CategoryID,
		"quantity":    p.Quantity,
	}
}

type ItemRemovedPayload struct {
	ListID    string
	ProductID uint64
}

func (ItemRemovedPayload) EventType() EventType { return EventItemRemoved }

func (p ItemRemovedPayload) Metadata() datatypes.JSONMap {
	return datatypes.JSONMap{"list_id": p.ListID, "product_id": p.ProductID}
}

type SearchPayload struct {
	Query string
}

func (SearchPayload) EventType() EventType { return EventProductSearched }

func (p SearchPayload) Metadata() datatypes.JSONMap {
	return datatypes.JSONMap{"search_query": p.Query}
}

type ProductViewedPayload struct {
	ProductID  uint64
	CategoryID uint64
}

func (ProductViewedPayload) EventType() EventType { return EventProductViewed }

func (p ProductViewedPayload) Metadata() datatypes.JSONMap {
	return datatypes.JSONMap{"product_id": p.ProductID, "category_id": p.CategoryID}
}

type PurchasePayload struct {
	ProductID  uint64
	CategoryID uint64
	Quantity   float64
	Price      float64
	ListID     string
}

func (PurchasePayload) EventType() EventType { return EventPurchaseCompleted }

func (p PurchasePayload) Metadata() datatypes.JSONMap {
	m := datatypes.JSONMap{
		"product_id":  p.ProductID,
		"category_id": p.CategoryID,
		"quantity":    p.Quantity,
		"price":       p.Price,
	}
	if p.ListID != "" {
		m["list_id"] = p.ListID
	}
	return m
}

type PromotionViewedPayload struct {
	PromotionID string
	ProductID   uint64
}

func (PromotionViewedPayload) EventType() EventType { return EventPromotionViewed }

func (p PromotionViewedPayload) Metadata() datatypes.JSONMap {
	return datatypes.JSONMap{"promotion_id": p.PromotionID, "product_id": p.ProductID}
}

type AccessTimePayload struct {
	Platform string
}

func (AccessTimePayload) EventType() EventType { return EventAccessTime }

func (p AccessTimePayload) Metadata() datatypes.JSONMap {
	return datatypes.JSONMap{"platform": p.Platform}
}

// jsonb round-trips numbers as float64, so the readers are tolerant of
// both the typed write path and raw ingestion.

func (e Event) MetaUint64(key string) (uint64, bool) {
	v, ok := e.Metadata[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case uint64:
		return n, true
	case int:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int64:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	}
	return 0, false
}

func (e Event) MetaFloat(key string) (float64, bool) {
	v, ok := e.Metadata[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func (e Event) MetaString(key string) (string, bool) {
	v, ok := e.Metadata[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// TelemetryError wraps an event-write failure. Recording is telemetry,
// not a commerce action: callers may ignore this error by convention,
// the collector has already logged it.
type TelemetryError struct {
	Op  string
	Err error
}

func (e *TelemetryError) Error() string {
	return "telemetry: " + e.Op + ": " + e.Err.Error()
}

func (e *TelemetryError) Unwrap() error {
	return e.Err
}
