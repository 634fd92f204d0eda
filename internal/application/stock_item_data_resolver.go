package application

import (
	"context"

	"github.com/pkg/errors"

	"github.com/RodolfoDevApp/eventshop-salability-go/internal/domain"
)

// StockItemDataResolver serves stock item data for any stock. The default
// stock is backed by the legacy per-product stock item table, custom
// stocks by their stock index.
type StockItemDataResolver struct {
	defaultStockID int
	products       domain.ProductRepository
	legacy         domain.LegacyStockItemRepository
	custom         domain.StockItemDataRepository
}

var _ domain.StockItemDataRepository = (*StockItemDataResolver)(nil)

func NewStockItemDataResolver(
	defaultStockID int,
	products domain.ProductRepository,
	legacy domain.LegacyStockItemRepository,
	custom domain.StockItemDataRepository,
) *StockItemDataResolver {
	return &StockItemDataResolver{
		defaultStockID: defaultStockID,
		products:       products,
		legacy:         legacy,
		custom:         custom,
	}
}

func (r *StockItemDataResolver) Get(ctx context.Context, sku string, stockID int) (*domain.StockItemData, error) {
	if stockID != r.defaultStockID {
		return r.custom.Get(ctx, sku, stockID)
	}

	productID, err := r.products.GetIDBySku(ctx, sku)
	if errors.Is(err, domain.ErrNoSuchEntity) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	data, err := r.legacy.GetByProductID(ctx, productID)
	if err != nil {
		return nil, errors.Wrap(err, "could not receive stock item data")
	}
	return data, nil
}
