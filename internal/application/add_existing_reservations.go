package application

import (
	"context"
)

// AddExistingReservations feeds ledger reservations into a collector.
// An empty collector receives every remaining group; otherwise only the
// groups the collector already tracks.
type AddExistingReservations struct {
	ledger *ReservationLedger
}

func NewAddExistingReservations(ledger *ReservationLedger) *AddExistingReservations {
	return &AddExistingReservations{ledger: ledger}
}

func (a *AddExistingReservations) Execute(ctx context.Context, collector *Collector) error {
	all := collector.IsEmpty()
	reservations, err := a.ledger.Consume(ctx, func(key string) bool {
		return all || collector.Has(key)
	})
	if err != nil {
		return err
	}
	for _, r := range reservations {
		collector.AddReservation(r)
	}
	return nil
}
