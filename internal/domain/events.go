package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/rodolfodevapp/eventshop-messaging-go/core/primitives"
	"github.com/shopspring/decimal"
)

// =========== Incoming payloads ===========

// OrderPlaced / OrderCancelled (from orders.events)
type OrderLine struct {
	Sku         string          `json:"sku"`
	ProductType string          `json:"productType"`
	Quantity    decimal.Decimal `json:"quantity"`
}

type OrderPlacedPayload struct {
	OrderID     int         `json:"orderId"`
	IncrementID string      `json:"incrementId"`
	StockID     int         `json:"stockId"`
	Lines       []OrderLine `json:"lines"`
}

// OrderCancelledPayload carries the quantities released by the cancellation.
type OrderCancelledPayload struct {
	OrderID     int         `json:"orderId"`
	IncrementID string      `json:"incrementId"`
	StockID     int         `json:"stockId"`
	Lines       []OrderLine `json:"lines"`
}

// SourceItemsUpdated (from catalog.events)
type SourceItemsUpdatedPayload struct {
	SourceItemIDs []int `json:"sourceItemIds"`
}

// CleanCacheByTags (from inventory.events, published by any instance)
type CleanCacheByTagsPayload struct {
	Identities []string `json:"identities"`
}

// =========== Outgoing events ===========

type StockReservationFailedEvent struct {
	primitives.BaseEvent
	OrderID     int       `json:"orderId"`
	IncrementID string    `json:"incrementId"`
	StockID     int       `json:"stockId"`
	Sku         string    `json:"sku"`
	Reasons     []string  `json:"reasons"`
	FailedAtUtc time.Time `json:"failedAtUtc"`
}

func NewStockReservationFailedEvent(orderID int, incrementID string, stockID int, sku string, reasons []string) *StockReservationFailedEvent {
	ev := &StockReservationFailedEvent{
		BaseEvent:   primitives.NewBaseEvent(),
		OrderID:     orderID,
		IncrementID: incrementID,
		StockID:     stockID,
		Sku:         sku,
		Reasons:     reasons,
		FailedAtUtc: time.Now().UTC(),
	}
	ev.SetRoutingKey("StockReservationFailed")
	return ev
}

type ReservationsPlacedEvent struct {
	primitives.BaseEvent
	OrderID     int         `json:"orderId"`
	IncrementID string      `json:"incrementId"`
	StockID     int         `json:"stockId"`
	EventType   string      `json:"eventType"`
	Lines       []OrderLine `json:"lines"`
	PlacedAtUtc time.Time   `json:"placedAtUtc"`
}

func NewReservationsPlacedEvent(orderID int, incrementID string, stockID int, eventType string, lines []OrderLine) *ReservationsPlacedEvent {
	ev := &ReservationsPlacedEvent{
		BaseEvent:   primitives.NewBaseEvent(),
		OrderID:     orderID,
		IncrementID: incrementID,
		StockID:     stockID,
		EventType:   eventType,
		Lines:       lines,
		PlacedAtUtc: time.Now().UTC(),
	}
	ev.SetRoutingKey("ReservationsPlaced")
	return ev
}

// CleanCacheByTagsEvent lets downstream caches (CDN, search, storefront)
// purge the same identities as the local application cache.
type CleanCacheByTagsEvent struct {
	primitives.BaseEvent
	Identities    []string  `json:"identities"`
	OccurredAtUtc time.Time `json:"occurredAtUtc"`
}

func NewCleanCacheByTagsEvent(identities []string) *CleanCacheByTagsEvent {
	ev := &CleanCacheByTagsEvent{
		BaseEvent:     primitives.NewBaseEvent(),
		Identities:    identities,
		OccurredAtUtc: time.Now().UTC(),
	}
	ev.SetRoutingKey("CleanCacheByTags")
	return ev
}

type CompensationLine struct {
	IncrementID string          `json:"incrementId"`
	StockID     int             `json:"stockId"`
	Sku         string          `json:"sku"`
	Quantity    decimal.Decimal `json:"quantity"`
}

type ReservationsCompensatedEvent struct {
	primitives.BaseEvent
	RunID         uuid.UUID          `json:"runId"`
	Lines         []CompensationLine `json:"lines"`
	OccurredAtUtc time.Time          `json:"occurredAtUtc"`
}

func NewReservationsCompensatedEvent(runID uuid.UUID, lines []CompensationLine) *ReservationsCompensatedEvent {
	ev := &ReservationsCompensatedEvent{
		BaseEvent:     primitives.NewBaseEvent(),
		RunID:         runID,
		Lines:         lines,
		OccurredAtUtc: time.Now().UTC(),
	}
	ev.SetRoutingKey("ReservationsCompensated")
	return ev
}
