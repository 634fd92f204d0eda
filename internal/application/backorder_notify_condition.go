package application

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/RodolfoDevApp/eventshop-salability-go/internal/domain"
)

// BackOrderNotifyCustomerCondition tells the buyer how much of the request
// will be back ordered when the sku is configured to back order with
// notification. The sale is still allowed; the error is a notice.
type BackOrderNotifyCustomerCondition struct {
	configs      domain.StockItemConfigurationRepository
	data         domain.StockItemDataRepository
	reservations ReservationsQuantity
}

func NewBackOrderNotifyCustomerCondition(
	configs domain.StockItemConfigurationRepository,
	data domain.StockItemDataRepository,
	reservations ReservationsQuantity,
) *BackOrderNotifyCustomerCondition {
	return &BackOrderNotifyCustomerCondition{
		configs:      configs,
		data:         data,
		reservations: reservations,
	}
}

func (c *BackOrderNotifyCustomerCondition) Execute(
	ctx context.Context,
	sku string,
	stockID int,
	requestedQty decimal.Decimal,
) (domain.SalableResult, error) {
	cfg, err := c.configs.Get(ctx, sku, stockID)
	if err != nil {
		return domain.SalableResult{}, err
	}
	if !cfg.ManageStock || cfg.Backorders != domain.BackordersYesNotify {
		return domain.NewSalableResult(), nil
	}

	data, err := c.data.Get(ctx, sku, stockID)
	if err != nil {
		return domain.SalableResult{}, err
	}
	if data == nil {
		return domain.NewSalableResult(), nil
	}

	reserved, err := c.reservations.SumQuantity(ctx, sku, stockID)
	if err != nil {
		return domain.SalableResult{}, errors.Wrap(err, "sum reservations")
	}

	qtyWithReservation := data.Quantity.Add(reserved)
	qtyLeftInStock := qtyWithReservation.Sub(cfg.MinQty)
	backOrderQty := requestedQty.Sub(qtyLeftInStock)

	if !backOrderQty.IsPositive() && qtyLeftInStock.IsPositive() {
		return domain.NewSalableResult(), nil
	}

	displayQty := requestedQty
	if backOrderQty.IsPositive() && qtyLeftInStock.IsPositive() {
		displayQty = backOrderQty
	}
	return domain.NewSalableResult(domain.SalabilityError{
		Code:    domain.CodeBackOrderNotEnough,
		Message: BackOrderMessage(displayQty),
	}), nil
}

func BackOrderMessage(qty decimal.Decimal) string {
	return fmt.Sprintf("We don't have as many quantity as you requested, but we'll back order the remaining %s.", qty.String())
}
