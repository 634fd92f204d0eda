package application

import (
	"context"

	"github.com/RodolfoDevApp/eventshop-salability-go/internal/domain"
)

// IsProductSalable reads the precomputed salable flag of (sku, stock).
type IsProductSalable struct {
	data domain.StockItemDataRepository
}

func NewIsProductSalable(data domain.StockItemDataRepository) *IsProductSalable {
	return &IsProductSalable{data: data}
}

func (s *IsProductSalable) Execute(ctx context.Context, sku string, stockID int) (bool, error) {
	data, err := s.data.Get(ctx, sku, stockID)
	if err != nil {
		return false, err
	}
	return data != nil && data.IsSalable, nil
}
