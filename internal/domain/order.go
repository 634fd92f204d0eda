package domain

import (
	"github.com/shopspring/decimal"
)

type OrderState string

const (
	OrderStateNew            OrderState = "new"
	OrderStatePendingPayment OrderState = "pending_payment"
	OrderStateProcessing     OrderState = "processing"
	OrderStateHolded         OrderState = "holded"
	OrderStateComplete       OrderState = "complete"
	OrderStateClosed         OrderState = "closed"
	OrderStateCanceled       OrderState = "canceled"
)

// CompleteOrderStates are the final states: no further inventory movement
// is expected for orders in them.
func CompleteOrderStates() []OrderState {
	return []OrderState{OrderStateComplete, OrderStateClosed, OrderStateCanceled}
}

func (s OrderState) IsFinal() bool {
	for _, st := range CompleteOrderStates() {
		if s == st {
			return true
		}
	}
	return false
}

type Order struct {
	EntityID    int
	IncrementID string
	State       OrderState
	StockID     int
	Items       []OrderItem
}

type OrderItem struct {
	Sku         string
	ProductType string
	QtyOrdered  decimal.Decimal
	QtyShipped  decimal.Decimal
	QtyCanceled decimal.Decimal
}

// OutstandingQty is the quantity still held by the order: ordered minus
// what already left through shipment or cancellation.
func (i OrderItem) OutstandingQty() decimal.Decimal {
	return i.QtyOrdered.Sub(i.QtyShipped).Sub(i.QtyCanceled)
}
