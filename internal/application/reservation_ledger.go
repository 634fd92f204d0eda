package application

import (
	"context"
	"strconv"

	"github.com/pkg/errors"

	"github.com/RodolfoDevApp/eventshop-salability-go/internal/domain"
)

// IncrementIDResolver looks up an order increment id by entity id.
type IncrementIDResolver interface {
	GetIncrementID(ctx context.Context, entityID int) (string, error)
}

// ReservationGroupKey is the key an order's reservations are grouped under.
func ReservationGroupKey(incrementID string, stockID int) string {
	return incrementID + "-" + strconv.Itoa(stockID)
}

// ReservationLedger is a single reconciliation pass view over the ledger.
// It loads order reservations once, groups them by order and stock, and
// hands every group out at most once. Create a new ledger per pass.
type ReservationLedger struct {
	repo     domain.ReservationRepository
	resolver IncrementIDResolver

	loaded       bool
	groups       map[string][]domain.Reservation
	keys         []string
	incrementIDs map[int]string
}

func NewReservationLedger(repo domain.ReservationRepository, resolver IncrementIDResolver) *ReservationLedger {
	return &ReservationLedger{
		repo:         repo,
		resolver:     resolver,
		incrementIDs: map[int]string{},
	}
}

// Consume returns every reservation of the groups accepted by match and
// removes those groups from the ledger. Groups keep their load order.
func (l *ReservationLedger) Consume(
	ctx context.Context,
	match func(key string) bool,
) ([]domain.Reservation, error) {
	if err := l.load(ctx); err != nil {
		return nil, err
	}

	var result []domain.Reservation
	remaining := l.keys[:0]
	for _, key := range l.keys {
		if !match(key) {
			remaining = append(remaining, key)
			continue
		}
		result = append(result, l.groups[key]...)
		delete(l.groups, key)
	}
	l.keys = remaining
	return result, nil
}

// Keys lists the groups not consumed yet.
func (l *ReservationLedger) Keys(ctx context.Context) ([]string, error) {
	if err := l.load(ctx); err != nil {
		return nil, err
	}
	out := make([]string, len(l.keys))
	copy(out, l.keys)
	return out, nil
}

func (l *ReservationLedger) load(ctx context.Context) error {
	if l.loaded {
		return nil
	}

	rows, err := l.repo.List(ctx)
	if err != nil {
		return errors.Wrap(err, "list reservations")
	}

	groups := map[string][]domain.Reservation{}
	var keys []string
	builder := domain.NewReservationBuilder()
	for _, row := range rows {
		metadata, err := domain.ParseReservationMetadata(row.Metadata)
		if err != nil {
			return errors.Wrapf(err, "reservation %d", row.ReservationID)
		}
		if metadata.ObjectType != domain.ObjectTypeOrder {
			continue
		}
		if err := l.resolveIncrementID(ctx, &metadata); err != nil {
			return err
		}

		reservation, err := builder.
			SetSku(row.Sku).
			SetStockID(row.StockID).
			SetQuantity(row.Quantity).
			SetMetadata(metadata).
			Build()
		if err != nil {
			return errors.Wrapf(err, "reservation %d", row.ReservationID)
		}

		key := ReservationGroupKey(metadata.ObjectIncrementID, row.StockID)
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], reservation)
	}

	l.groups = groups
	l.keys = keys
	l.loaded = true
	return nil
}

func (l *ReservationLedger) resolveIncrementID(ctx context.Context, metadata *domain.ReservationMetadata) error {
	if metadata.ObjectIncrementID != "" {
		return nil
	}
	objectID := metadata.ObjectIDInt()
	incrementID, ok := l.incrementIDs[objectID]
	if !ok {
		var err error
		incrementID, err = l.resolver.GetIncrementID(ctx, objectID)
		if err != nil {
			return errors.Wrapf(err, "resolve increment id for order %d", objectID)
		}
		l.incrementIDs[objectID] = incrementID
	}
	metadata.ObjectIncrementID = incrementID
	return nil
}
