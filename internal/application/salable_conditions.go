package application

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/RodolfoDevApp/eventshop-salability-go/internal/domain"
)

// IsProductSalableForRequestedQty decides whether a quantity of a sku can
// be sold on a stock.
type IsProductSalableForRequestedQty interface {
	Execute(ctx context.Context, sku string, stockID int, requestedQty decimal.Decimal) (domain.SalableResult, error)
}

// SufficientCondition makes the sku salable on its own when satisfied.
type SufficientCondition interface {
	IsSatisfied(ctx context.Context, sku string, stockID int) (bool, error)
}

// ReservationsQuantity sums the ledger for (sku, stock).
type ReservationsQuantity interface {
	SumQuantity(ctx context.Context, sku string, stockID int) (decimal.Decimal, error)
}

// ManageStockCondition is satisfied when inventory is not managed for the sku.
type ManageStockCondition struct {
	configs domain.StockItemConfigurationRepository
}

func NewManageStockCondition(configs domain.StockItemConfigurationRepository) *ManageStockCondition {
	return &ManageStockCondition{configs: configs}
}

func (c *ManageStockCondition) IsSatisfied(ctx context.Context, sku string, stockID int) (bool, error) {
	cfg, err := c.configs.Get(ctx, sku, stockID)
	if err != nil {
		return false, err
	}
	return !cfg.ManageStock, nil
}

// IsSalableWithReservationsCondition requires the quantity left above the
// min qty threshold, reservations included, to cover the request. Skus
// that allow back orders always pass.
type IsSalableWithReservationsCondition struct {
	configs      domain.StockItemConfigurationRepository
	data         domain.StockItemDataRepository
	reservations ReservationsQuantity
}

func NewIsSalableWithReservationsCondition(
	configs domain.StockItemConfigurationRepository,
	data domain.StockItemDataRepository,
	reservations ReservationsQuantity,
) *IsSalableWithReservationsCondition {
	return &IsSalableWithReservationsCondition{
		configs:      configs,
		data:         data,
		reservations: reservations,
	}
}

func (c *IsSalableWithReservationsCondition) Execute(
	ctx context.Context,
	sku string,
	stockID int,
	requestedQty decimal.Decimal,
) (domain.SalableResult, error) {
	cfg, err := c.configs.Get(ctx, sku, stockID)
	if err != nil {
		return domain.SalableResult{}, err
	}
	if !cfg.ManageStock || cfg.Backorders != domain.BackordersNo {
		return domain.NewSalableResult(), nil
	}

	data, err := c.data.Get(ctx, sku, stockID)
	if err != nil {
		return domain.SalableResult{}, err
	}
	if data == nil {
		return domain.NewSalableResult(domain.SalabilityError{
			Code:    "is_salable_with_reservations-no_data",
			Message: "The requested sku is not assigned to given stock.",
		}), nil
	}

	reserved, err := c.reservations.SumQuantity(ctx, sku, stockID)
	if err != nil {
		return domain.SalableResult{}, errors.Wrap(err, "sum reservations")
	}

	qtyLeftInStock := data.Quantity.Add(reserved).Sub(cfg.MinQty)
	if qtyLeftInStock.LessThan(requestedQty) {
		return domain.NewSalableResult(domain.SalabilityError{
			Code:    domain.CodeNotEnoughQtyWithReserves,
			Message: "The requested qty is not available",
		}), nil
	}
	return domain.NewSalableResult(), nil
}

// IsProductSalableForRequestedQtyChain evaluates sufficient conditions
// first; if none is satisfied every required condition runs and their
// errors are concatenated in order.
type IsProductSalableForRequestedQtyChain struct {
	sufficient []SufficientCondition
	required   []IsProductSalableForRequestedQty
}

func NewIsProductSalableForRequestedQtyChain(
	sufficient []SufficientCondition,
	required []IsProductSalableForRequestedQty,
) *IsProductSalableForRequestedQtyChain {
	return &IsProductSalableForRequestedQtyChain{
		sufficient: sufficient,
		required:   required,
	}
}

func (c *IsProductSalableForRequestedQtyChain) Execute(
	ctx context.Context,
	sku string,
	stockID int,
	requestedQty decimal.Decimal,
) (domain.SalableResult, error) {
	for _, cond := range c.sufficient {
		ok, err := cond.IsSatisfied(ctx, sku, stockID)
		if err != nil {
			return notAssignedOrErr(err)
		}
		if ok {
			return domain.NewSalableResult(), nil
		}
	}

	var errs []domain.SalabilityError
	for _, cond := range c.required {
		res, err := cond.Execute(ctx, sku, stockID, requestedQty)
		if err != nil {
			return notAssignedOrErr(err)
		}
		errs = append(errs, res.Errors...)
	}
	return domain.NewSalableResult(errs...), nil
}

func notAssignedOrErr(err error) (domain.SalableResult, error) {
	if errors.Is(err, domain.ErrSkuNotAssignedToStock) {
		return domain.NewSalableResult(domain.SalabilityError{
			Code:    domain.CodeStockNotAssigned,
			Message: "The requested sku is not assigned to given stock.",
		}), nil
	}
	return domain.SalableResult{}, err
}
