package application

import (
	"strconv"

	"github.com/RodolfoDevApp/eventshop-salability-go/internal/domain"
)

// AddExpectedReservations adds, for an open order, the positive quantity
// that balances the reservations the order should still be holding.
type AddExpectedReservations struct{}

func NewAddExpectedReservations() *AddExpectedReservations {
	return &AddExpectedReservations{}
}

func (a *AddExpectedReservations) Execute(collector *Collector, order *domain.Order) error {
	collector.AddOrder(order)

	builder := domain.NewReservationBuilder()
	for _, item := range order.Items {
		if !domain.IsSourceItemManagementAllowedForProductType(item.ProductType) {
			continue
		}
		qty := item.OutstandingQty()
		if !qty.IsPositive() {
			continue
		}
		reservation, err := builder.
			SetSku(item.Sku).
			SetStockID(order.StockID).
			SetQuantity(qty).
			SetMetadata(domain.ReservationMetadata{
				ObjectType:        domain.ObjectTypeOrder,
				ObjectID:          strconv.Itoa(order.EntityID),
				ObjectIncrementID: order.IncrementID,
			}).
			Build()
		if err != nil {
			return err
		}
		collector.AddReservation(reservation)
	}
	return nil
}
