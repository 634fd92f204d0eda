package application

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/RodolfoDevApp/eventshop-salability-go/internal/domain"
)

// SalabilityCheck is the answer given to storefront and admin callers.
type SalabilityCheck struct {
	Sku          string                   `json:"sku"`
	StockID      int                      `json:"stockId"`
	RequestedQty decimal.Decimal          `json:"requestedQty"`
	Salable      bool                     `json:"salable"`
	Errors       []domain.SalabilityError `json:"errors"`
	Notices      []domain.SalabilityError `json:"notices"`
}

// CheckSalability runs the salability chain and the advisory back order
// notice for one request.
type CheckSalability struct {
	chain  IsProductSalableForRequestedQty
	notice IsProductSalableForRequestedQty
}

func NewCheckSalability(chain, notice IsProductSalableForRequestedQty) *CheckSalability {
	return &CheckSalability{chain: chain, notice: notice}
}

func (c *CheckSalability) Execute(ctx context.Context, sku string, stockID int, qty decimal.Decimal) (SalabilityCheck, error) {
	res, err := c.chain.Execute(ctx, sku, stockID, qty)
	if err != nil {
		return SalabilityCheck{}, err
	}

	check := SalabilityCheck{
		Sku:          sku,
		StockID:      stockID,
		RequestedQty: qty,
		Salable:      res.IsSalable(),
		Errors:       res.Errors,
		Notices:      []domain.SalabilityError{},
	}
	if !check.Salable {
		return check, nil
	}

	notice, err := c.notice.Execute(ctx, sku, stockID, qty)
	if errors.Is(err, domain.ErrSkuNotAssignedToStock) {
		return check, nil
	}
	if err != nil {
		return SalabilityCheck{}, err
	}
	check.Notices = notice.Errors
	return check, nil
}
