package application

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/RodolfoDevApp/eventshop-salability-go/internal/domain"
)

// CreateCompensations appends, for every inconsistent sku, a reservation
// that brings the order's ledger back to zero.
type CreateCompensations struct {
	reservations domain.ReservationRepository
	outbox       OutboxWriter
	cache        SkuCacheFlusher
	logger       *zap.Logger
}

func NewCreateCompensations(
	reservations domain.ReservationRepository,
	outbox OutboxWriter,
	cache SkuCacheFlusher,
	logger *zap.Logger,
) *CreateCompensations {
	return &CreateCompensations{
		reservations: reservations,
		outbox:       outbox,
		cache:        cache,
		logger:       logger,
	}
}

// Build returns the compensating reservations without storing them.
func (c *CreateCompensations) Build(items []*SalableQuantityInconsistency) ([]domain.Reservation, error) {
	builder := domain.NewReservationBuilder()
	var result []domain.Reservation
	for _, item := range items {
		for _, sku := range item.Skus() {
			qty := item.Items[sku]
			if qty.IsZero() {
				continue
			}
			r, err := builder.
				SetSku(sku).
				SetStockID(item.StockID).
				SetQuantity(qty.Neg()).
				SetMetadata(domain.ReservationMetadata{
					EventType:         domain.EventManualCompensation,
					ObjectType:        domain.ObjectTypeOrder,
					ObjectID:          item.ObjectID,
					ObjectIncrementID: item.ObjectIncrementID,
				}).
				Build()
			if err != nil {
				return nil, errors.Wrapf(err, "compensation for order %s sku %s", item.ObjectIncrementID, sku)
			}
			result = append(result, r)
		}
	}
	return result, nil
}

// Execute stores the compensations and announces them.
func (c *CreateCompensations) Execute(ctx context.Context, items []*SalableQuantityInconsistency) ([]domain.Reservation, error) {
	ctx, span := tracer.Start(ctx, "CreateCompensations.Execute")
	defer span.End()

	compensations, err := c.Build(items)
	if err != nil {
		return nil, err
	}
	if len(compensations) == 0 {
		return nil, nil
	}

	if err := c.reservations.Append(ctx, compensations...); err != nil {
		return nil, errors.Wrap(err, "append compensations")
	}
	flushReservedSkus(ctx, c.cache, c.logger, compensations)

	runID := uuid.New()
	lines := make([]domain.CompensationLine, 0, len(compensations))
	for _, r := range compensations {
		lines = append(lines, domain.CompensationLine{
			IncrementID: r.Metadata.ObjectIncrementID,
			StockID:     r.StockID,
			Sku:         r.Sku,
			Quantity:    r.Quantity,
		})
	}
	if err := c.outbox.Enqueue(ctx, domain.NewReservationsCompensatedEvent(runID, lines)); err != nil {
		return nil, err
	}

	c.logger.Info("compensating reservations created",
		zap.String("run_id", runID.String()),
		zap.Int("count", len(compensations)),
	)
	return compensations, nil
}
