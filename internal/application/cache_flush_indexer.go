package application

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/RodolfoDevApp/eventshop-salability-go/internal/domain"
)

// SalableStatusChecker reports the indexed salable flag of (sku, stock).
type SalableStatusChecker interface {
	Execute(ctx context.Context, sku string, stockID int) (bool, error)
}

// salableStatuses maps sku -> stock id -> salable.
type salableStatuses map[string]map[int]bool

// CacheFlushIndexer wraps a source item indexer and flushes the product
// cache of every sku whose salability changed on a custom stock.
type CacheFlushIndexer struct {
	inner          domain.SourceItemIndexer
	skuList        domain.SkuListInStockProvider
	isSalable      SalableStatusChecker
	products       domain.ProductRepository
	flush          *FlushCacheByIDs
	defaultStockID int
	logger         *zap.Logger
}

var _ domain.SourceItemIndexer = (*CacheFlushIndexer)(nil)

func NewCacheFlushIndexer(
	inner domain.SourceItemIndexer,
	skuList domain.SkuListInStockProvider,
	isSalable SalableStatusChecker,
	products domain.ProductRepository,
	flush *FlushCacheByIDs,
	defaultStockID int,
	logger *zap.Logger,
) *CacheFlushIndexer {
	return &CacheFlushIndexer{
		inner:          inner,
		skuList:        skuList,
		isSalable:      isSalable,
		products:       products,
		flush:          flush,
		defaultStockID: defaultStockID,
		logger:         logger,
	}
}

func (c *CacheFlushIndexer) ExecuteList(ctx context.Context, sourceItemIDs []int) error {
	ctx, span := tracer.Start(ctx, "CacheFlushIndexer.ExecuteList")
	defer span.End()

	before, err := c.salableStatuses(ctx, sourceItemIDs)
	if err != nil {
		return errors.Wrap(err, "salable statuses before reindex")
	}
	if err := c.inner.ExecuteList(ctx, sourceItemIDs); err != nil {
		return err
	}
	after, err := c.salableStatuses(ctx, sourceItemIDs)
	if err != nil {
		return errors.Wrap(err, "salable statuses after reindex")
	}

	skus := ChangedSalableSkus(before, after)
	if len(skus) == 0 {
		return nil
	}
	productIDs, err := productIDsBySkus(ctx, c.products, skus)
	if err != nil {
		return err
	}
	c.logger.Info("salability changed after reindex",
		zap.Strings("skus", skus),
		zap.Ints("product_ids", productIDs),
	)
	return c.flush.Execute(ctx, productIDs)
}

func (c *CacheFlushIndexer) salableStatuses(ctx context.Context, sourceItemIDs []int) (salableStatuses, error) {
	lists, err := c.skuList.GetSkuListInStock(ctx, sourceItemIDs)
	if err != nil {
		return nil, err
	}
	result := salableStatuses{}
	for _, list := range lists {
		if list.StockID == c.defaultStockID {
			continue
		}
		for _, sku := range list.Skus {
			ok, err := c.isSalable.Execute(ctx, sku, list.StockID)
			if err != nil {
				return nil, err
			}
			if _, exists := result[sku]; !exists {
				result[sku] = map[int]bool{}
			}
			result[sku][list.StockID] = ok
		}
	}
	return result, nil
}

// ChangedSalableSkus returns, sorted, the skus present in only one snapshot
// and the skus whose salable flag differs on a stock. A stock known to one
// snapshot only counts as not salable on the other side.
func ChangedSalableSkus(before, after map[string]map[int]bool) []string {
	changed := map[string]struct{}{}
	for sku := range before {
		if _, ok := after[sku]; !ok {
			changed[sku] = struct{}{}
		}
	}
	for sku := range after {
		if _, ok := before[sku]; !ok {
			changed[sku] = struct{}{}
		}
	}
	for sku, stocks := range before {
		afterStocks, ok := after[sku]
		if !ok {
			continue
		}
		if statusesDiffer(stocks, afterStocks) {
			changed[sku] = struct{}{}
		}
	}

	out := make([]string, 0, len(changed))
	for sku := range changed {
		out = append(out, sku)
	}
	sort.Strings(out)
	return out
}

func statusesDiffer(a, b map[int]bool) bool {
	for stockID, salable := range a {
		if b[stockID] != salable {
			return true
		}
	}
	for stockID, salable := range b {
		if a[stockID] != salable {
			return true
		}
	}
	return false
}
