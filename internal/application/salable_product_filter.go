package application

import (
	"context"

	"github.com/pkg/errors"

	"github.com/RodolfoDevApp/eventshop-salability-go/internal/domain"
)

// SalableProductFilter narrows product ids headed for the catalog search
// index to the ones salable in the website's stock.
type SalableProductFilter struct {
	showOutOfStock bool
	defaultStockID int
	stocks         domain.StockRepository
	salable        domain.SalableProductRepository
}

func NewSalableProductFilter(
	showOutOfStock bool,
	defaultStockID int,
	stocks domain.StockRepository,
	salable domain.SalableProductRepository,
) *SalableProductFilter {
	return &SalableProductFilter{
		showOutOfStock: showOutOfStock,
		defaultStockID: defaultStockID,
		stocks:         stocks,
		salable:        salable,
	}
}

// Execute returns productIDs unchanged when out of stock products are shown
// or the website sells from the default stock.
func (f *SalableProductFilter) Execute(ctx context.Context, websiteID int, productIDs []int) ([]int, error) {
	if f.showOutOfStock || len(productIDs) == 0 {
		return productIDs, nil
	}

	stock, err := f.stocks.GetByWebsiteID(ctx, websiteID)
	if err != nil {
		return nil, errors.Wrapf(err, "stock for website %d", websiteID)
	}
	if stock.StockID == f.defaultStockID {
		return productIDs, nil
	}

	salable, err := f.salable.SalableProductIDs(ctx, stock.StockID, productIDs)
	if err != nil {
		return nil, err
	}
	result := make([]int, 0, len(productIDs))
	for _, id := range productIDs {
		if salable[id] {
			result = append(result, id)
		}
	}
	return result, nil
}
