package application

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/RodolfoDevApp/eventshop-salability-go/internal/domain"
)

// PlaceReservationsService turns order lifecycle events into ledger
// entries. Quantities are never updated in place; duplicates left by
// redelivered events are corrected by reconciliation.
type PlaceReservationsService struct {
	salable      IsProductSalableForRequestedQty
	manageable   *IsOrderSourceManageable
	reservations domain.ReservationRepository
	outbox       OutboxWriter
	cache        SkuCacheFlusher
	logger       *zap.Logger
}

func NewPlaceReservationsService(
	salable IsProductSalableForRequestedQty,
	manageable *IsOrderSourceManageable,
	reservations domain.ReservationRepository,
	outbox OutboxWriter,
	cache SkuCacheFlusher,
	logger *zap.Logger,
) *PlaceReservationsService {
	return &PlaceReservationsService{
		salable:      salable,
		manageable:   manageable,
		reservations: reservations,
		outbox:       outbox,
		cache:        cache,
		logger:       logger,
	}
}

func (s *PlaceReservationsService) HandleOrderPlaced(ctx context.Context, payload domain.OrderPlacedPayload) error {
	if err := validateOrderRef(payload.OrderID, payload.IncrementID, payload.StockID); err != nil {
		return err
	}

	if len(payload.Lines) == 0 {
		ev := domain.NewStockReservationFailedEvent(payload.OrderID, payload.IncrementID, payload.StockID, "", []string{"No lines in order"})
		return s.outbox.Enqueue(ctx, ev)
	}

	manageable, err := s.manageable.Execute(ctx, orderFromLines(payload.OrderID, payload.IncrementID, payload.StockID, payload.Lines))
	if err != nil {
		return err
	}
	if !manageable {
		s.logger.Debug("order has no managed stock, skipping reservations",
			zap.String("increment_id", payload.IncrementID))
		return nil
	}

	lines := managedLines(payload.Lines)
	if len(lines) == 0 {
		return nil
	}
	for _, line := range lines {
		res, err := s.salable.Execute(ctx, line.Sku, payload.StockID, line.Quantity)
		if err != nil {
			return errors.Wrapf(err, "salability of %s", line.Sku)
		}
		if !res.IsSalable() {
			reasons := make([]string, 0, len(res.Errors))
			for _, e := range res.Errors {
				reasons = append(reasons, e.Message)
			}
			ev := domain.NewStockReservationFailedEvent(payload.OrderID, payload.IncrementID, payload.StockID, line.Sku, reasons)
			return s.outbox.Enqueue(ctx, ev)
		}
	}

	return s.append(ctx, payload.OrderID, payload.IncrementID, payload.StockID, domain.EventOrderPlaced, lines, true)
}

func (s *PlaceReservationsService) HandleOrderCancelled(ctx context.Context, payload domain.OrderCancelledPayload) error {
	if err := validateOrderRef(payload.OrderID, payload.IncrementID, payload.StockID); err != nil {
		return err
	}
	lines := managedLines(payload.Lines)
	if len(lines) == 0 {
		return nil
	}
	return s.append(ctx, payload.OrderID, payload.IncrementID, payload.StockID, domain.EventOrderCanceled, lines, false)
}

func (s *PlaceReservationsService) append(
	ctx context.Context,
	orderID int,
	incrementID string,
	stockID int,
	eventType string,
	lines []domain.OrderLine,
	deduct bool,
) error {
	builder := domain.NewReservationBuilder()
	reservations := make([]domain.Reservation, 0, len(lines))
	for _, line := range lines {
		qty := line.Quantity
		if deduct {
			qty = qty.Neg()
		}
		r, err := builder.
			SetSku(line.Sku).
			SetStockID(stockID).
			SetQuantity(qty).
			SetMetadata(domain.ReservationMetadata{
				EventType:         eventType,
				ObjectType:        domain.ObjectTypeOrder,
				ObjectID:          strconv.Itoa(orderID),
				ObjectIncrementID: incrementID,
			}).
			Build()
		if err != nil {
			return err
		}
		reservations = append(reservations, r)
	}

	if err := s.reservations.Append(ctx, reservations...); err != nil {
		return errors.Wrap(err, "append reservations")
	}

	s.logger.Info("reservations appended",
		zap.String("increment_id", incrementID),
		zap.Int("stock_id", stockID),
		zap.String("event_type", eventType),
		zap.Int("lines", len(reservations)),
	)
	flushReservedSkus(ctx, s.cache, s.logger, reservations)
	return s.outbox.Enqueue(ctx, domain.NewReservationsPlacedEvent(orderID, incrementID, stockID, eventType, lines))
}

func validateOrderRef(orderID int, incrementID string, stockID int) error {
	if orderID <= 0 {
		return errors.New("missing orderId")
	}
	if incrementID == "" {
		return errors.New("missing incrementId")
	}
	if stockID <= 0 {
		return errors.New("missing stockId")
	}
	return nil
}

// managedLines keeps lines of product types with their own stock and a
// positive quantity.
func managedLines(lines []domain.OrderLine) []domain.OrderLine {
	out := make([]domain.OrderLine, 0, len(lines))
	for _, l := range lines {
		if !domain.IsSourceItemManagementAllowedForProductType(l.ProductType) {
			continue
		}
		if !l.Quantity.GreaterThan(decimal.Zero) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func orderFromLines(orderID int, incrementID string, stockID int, lines []domain.OrderLine) *domain.Order {
	items := make([]domain.OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, domain.OrderItem{
			Sku:         l.Sku,
			ProductType: l.ProductType,
			QtyOrdered:  l.Quantity,
		})
	}
	return &domain.Order{
		EntityID:    orderID,
		IncrementID: incrementID,
		StockID:     stockID,
		Items:       items,
	}
}

// flushReservedSkus drops cached salability answers of the reserved skus.
// A failed flush is logged; cached entries still expire with their ttl.
func flushReservedSkus(ctx context.Context, cache SkuCacheFlusher, logger *zap.Logger, reservations []domain.Reservation) {
	if cache == nil || len(reservations) == 0 {
		return
	}
	skus := make([]string, 0, len(reservations))
	for _, r := range reservations {
		skus = append(skus, r.Sku)
	}
	if err := cache.Execute(ctx, skus); err != nil {
		logger.Warn("cache flush after reservations failed", zap.Strings("skus", skus), zap.Error(err))
	}
}
