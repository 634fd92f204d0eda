package application

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/RodolfoDevApp/eventshop-salability-go/internal/domain"
)

// FilterManagedStockProducts drops skus whose stock is not managed, or
// that are not assigned to the item's stock, and then empty items.
type FilterManagedStockProducts struct {
	configs domain.StockItemConfigurationRepository
}

func NewFilterManagedStockProducts(configs domain.StockItemConfigurationRepository) *FilterManagedStockProducts {
	return &FilterManagedStockProducts{configs: configs}
}

func (f *FilterManagedStockProducts) Execute(
	ctx context.Context,
	items []*SalableQuantityInconsistency,
) ([]*SalableQuantityInconsistency, error) {
	var result []*SalableQuantityInconsistency
	for _, item := range items {
		for _, sku := range item.Skus() {
			cfg, err := f.configs.Get(ctx, sku, item.StockID)
			if errors.Is(err, domain.ErrSkuNotAssignedToStock) {
				delete(item.Items, sku)
				continue
			}
			if err != nil {
				return nil, err
			}
			if !cfg.ManageStock {
				delete(item.Items, sku)
			}
		}
		if len(item.Items) > 0 {
			result = append(result, item)
		}
	}
	return result, nil
}

// FilterUnresolvedReservations keeps the skus whose reservations do not net
// to zero, and the items that still have any.
func FilterUnresolvedReservations(items []*SalableQuantityInconsistency) []*SalableQuantityInconsistency {
	var result []*SalableQuantityInconsistency
	for _, item := range items {
		for sku, qty := range item.Items {
			if qty.IsZero() {
				delete(item.Items, sku)
			}
		}
		if len(item.Items) > 0 {
			result = append(result, item)
		}
	}
	return result
}

// SalableQuantityInconsistencies walks open orders page by page and reports
// the order/stock pairs whose ledger does not match the order. A final
// pass reports ledger groups of orders that were not visited, i.e. orders
// in a final state or no longer present.
type SalableQuantityInconsistencies struct {
	reservations domain.ReservationRepository
	orders       domain.OrderRepository
	addExpected  *AddExpectedReservations
	filter       *FilterManagedStockProducts
	logger       *zap.Logger
}

func NewSalableQuantityInconsistencies(
	reservations domain.ReservationRepository,
	orders domain.OrderRepository,
	configs domain.StockItemConfigurationRepository,
	logger *zap.Logger,
) *SalableQuantityInconsistencies {
	return &SalableQuantityInconsistencies{
		reservations: reservations,
		orders:       orders,
		addExpected:  NewAddExpectedReservations(),
		filter:       NewFilterManagedStockProducts(configs),
		logger:       logger,
	}
}

// Execute runs one reconciliation pass, handing each page's
// inconsistencies to yield. Returning an error from yield stops the pass.
func (s *SalableQuantityInconsistencies) Execute(
	ctx context.Context,
	bunchSize int,
	yield func([]*SalableQuantityInconsistency) error,
) error {
	ctx, span := tracer.Start(ctx, "SalableQuantityInconsistencies.Execute")
	defer span.End()

	ledger := NewReservationLedger(s.reservations, s.orders)
	addExisting := NewAddExistingReservations(ledger)

	cursor := NewOrdersInNotFinalState(s.orders).Execute(bunchSize)
	for cursor.Next(ctx) {
		collector := NewCollector()
		orders := cursor.Orders()
		for i := range orders {
			if err := s.addExpected.Execute(collector, &orders[i]); err != nil {
				return err
			}
		}
		if collector.IsEmpty() {
			continue
		}
		if err := addExisting.Execute(ctx, collector); err != nil {
			return err
		}

		items, err := s.resolve(ctx, collector)
		if err != nil {
			return err
		}
		s.logger.Debug("orders page reconciled",
			zap.Int("page", cursor.Page()),
			zap.Int("orders", len(orders)),
			zap.Int("inconsistencies", len(items)),
		)
		if len(items) > 0 {
			if err := yield(items); err != nil {
				return err
			}
		}
	}
	if err := cursor.Err(); err != nil {
		return err
	}
	span.SetAttributes(attribute.Int("pages", cursor.Page()))

	collector := NewCollector()
	if err := addExisting.Execute(ctx, collector); err != nil {
		return err
	}
	for _, item := range collector.Items() {
		order, err := s.orders.GetByIncrementID(ctx, item.ObjectIncrementID)
		if err != nil {
			return errors.Wrapf(err, "load order %s", item.ObjectIncrementID)
		}
		item.Order = order
	}
	items, err := s.resolve(ctx, collector)
	if err != nil {
		return err
	}
	if len(items) > 0 {
		return yield(items)
	}
	return nil
}

func (s *SalableQuantityInconsistencies) resolve(
	ctx context.Context,
	collector *Collector,
) ([]*SalableQuantityInconsistency, error) {
	items := FilterUnresolvedReservations(collector.Items())
	return s.filter.Execute(ctx, items)
}
