package application

import (
	"context"
	"encoding/json"

	"github.com/rodolfodevapp/eventshop-messaging-go/core/primitives"
	"go.uber.org/zap"

	"github.com/RodolfoDevApp/eventshop-salability-go/internal/domain"
)

type EventHandler interface {
	Handle(ctx context.Context, ev primitives.Event) error
}

// OrderPlacedHandler

type OrderPlacedHandler struct {
	service *PlaceReservationsService
	logger  *zap.Logger
}

func NewOrderPlacedHandler(s *PlaceReservationsService, logger *zap.Logger) *OrderPlacedHandler {
	return &OrderPlacedHandler{service: s, logger: logger}
}

func (h *OrderPlacedHandler) Handle(ctx context.Context, ev primitives.Event) error {
	env, ok := ev.(*primitives.IntegrationEventEnvelope)
	if !ok {
		h.logger.Warn("OrderPlacedHandler: invalid event type", zap.String("type", typeNameOf(ev)))
		return nil
	}
	if env.Type != "OrderPlacedEvent" {
		return nil
	}

	var payload domain.OrderPlacedPayload
	if err := json.Unmarshal([]byte(env.PayloadJSON), &payload); err != nil {
		h.logger.Error("OrderPlacedHandler: failed to unmarshal payload", zap.Error(err))
		return nil
	}
	normalizeLines(payload.Lines)

	h.logger.Info("OrderPlacedHandler: received",
		zap.Int("order_id", payload.OrderID),
		zap.String("increment_id", payload.IncrementID),
		zap.Int("stock_id", payload.StockID),
	)
	return h.service.HandleOrderPlaced(ctx, payload)
}

// OrderCancelledHandler

type OrderCancelledHandler struct {
	service *PlaceReservationsService
	logger  *zap.Logger
}

func NewOrderCancelledHandler(s *PlaceReservationsService, logger *zap.Logger) *OrderCancelledHandler {
	return &OrderCancelledHandler{service: s, logger: logger}
}

func (h *OrderCancelledHandler) Handle(ctx context.Context, ev primitives.Event) error {
	env, ok := ev.(*primitives.IntegrationEventEnvelope)
	if !ok {
		h.logger.Warn("OrderCancelledHandler: invalid event type", zap.String("type", typeNameOf(ev)))
		return nil
	}
	if env.Type != "OrderCancelledEvent" && env.Type != "OrderRejectedEvent" {
		return nil
	}

	var payload domain.OrderCancelledPayload
	if err := json.Unmarshal([]byte(env.PayloadJSON), &payload); err != nil {
		h.logger.Error("OrderCancelledHandler: failed to unmarshal payload", zap.Error(err))
		return nil
	}
	if payload.OrderID == 0 {
		h.logger.Warn("OrderCancelledHandler: missing orderId")
		return nil
	}
	normalizeLines(payload.Lines)

	h.logger.Info("OrderCancelledHandler: releasing reservations",
		zap.String("increment_id", payload.IncrementID),
		zap.Int("stock_id", payload.StockID),
	)
	return h.service.HandleOrderCancelled(ctx, payload)
}

// normalizeLines treats lines without a product type as simple products.
func normalizeLines(lines []domain.OrderLine) {
	for i := range lines {
		if lines[i].ProductType == "" {
			lines[i].ProductType = domain.ProductTypeSimple
		}
	}
}
