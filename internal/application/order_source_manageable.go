package application

import (
	"context"

	"github.com/pkg/errors"

	"github.com/RodolfoDevApp/eventshop-salability-go/internal/domain"
)

// IsOrderSourceManageable reports whether any item of the order manages
// stock on any stock. Skus not assigned to a stock are skipped.
type IsOrderSourceManageable struct {
	stocks  domain.StockRepository
	configs domain.StockItemConfigurationRepository
}

func NewIsOrderSourceManageable(
	stocks domain.StockRepository,
	configs domain.StockItemConfigurationRepository,
) *IsOrderSourceManageable {
	return &IsOrderSourceManageable{stocks: stocks, configs: configs}
}

func (s *IsOrderSourceManageable) Execute(ctx context.Context, order *domain.Order) (bool, error) {
	stocks, err := s.stocks.List(ctx)
	if err != nil {
		return false, errors.Wrap(err, "list stocks")
	}

	for _, item := range order.Items {
		if !domain.IsSourceItemManagementAllowedForProductType(item.ProductType) {
			continue
		}
		for _, stock := range stocks {
			cfg, err := s.configs.Get(ctx, item.Sku, stock.StockID)
			if errors.Is(err, domain.ErrSkuNotAssignedToStock) {
				continue
			}
			if err != nil {
				return false, err
			}
			if cfg.ManageStock {
				return true, nil
			}
		}
	}
	return false, nil
}
