package application

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/RodolfoDevApp/eventshop-salability-go/internal/domain"
)

const defaultIndexBatchSize = 100

// StockIndexer rebuilds the salability index of custom stocks. The default
// stock is indexed by the legacy stock item table and is skipped.
type StockIndexer struct {
	stocks         domain.StockRepository
	index          domain.StockIndexRepository
	defaultStockID int
	batchSize      int
	logger         *zap.Logger
}

func NewStockIndexer(
	stocks domain.StockRepository,
	index domain.StockIndexRepository,
	defaultStockID int,
	batchSize int,
	logger *zap.Logger,
) *StockIndexer {
	if batchSize <= 0 {
		batchSize = defaultIndexBatchSize
	}
	return &StockIndexer{
		stocks:         stocks,
		index:          index,
		defaultStockID: defaultStockID,
		batchSize:      batchSize,
		logger:         logger,
	}
}

func (s *StockIndexer) ExecuteFull(ctx context.Context) error {
	stocks, err := s.stocks.List(ctx)
	if err != nil {
		return errors.Wrap(err, "list stocks")
	}
	ids := make([]int, 0, len(stocks))
	for _, st := range stocks {
		ids = append(ids, st.StockID)
	}
	return s.ExecuteList(ctx, ids)
}

func (s *StockIndexer) ExecuteRow(ctx context.Context, stockID int) error {
	return s.ExecuteList(ctx, []int{stockID})
}

func (s *StockIndexer) ExecuteList(ctx context.Context, stockIDs []int) error {
	ctx, span := tracer.Start(ctx, "StockIndexer.ExecuteList")
	defer span.End()

	for _, stockID := range stockIDs {
		if stockID == s.defaultStockID {
			continue
		}
		span.AddEvent("stock", withStockID(stockID))

		if err := s.index.EnsureIndex(ctx, stockID); err != nil {
			return errors.Wrapf(err, "ensure index for stock %d", stockID)
		}
		rows, err := s.index.IndexData(ctx, stockID, nil)
		if err != nil {
			return errors.Wrapf(err, "index data for stock %d", stockID)
		}
		// Full rebuild: rows of skus no longer linked to the stock must go too.
		if err := s.index.CleanIndex(ctx, stockID, nil); err != nil {
			return errors.Wrapf(err, "clean index for stock %d", stockID)
		}
		for _, batch := range batchRows(rows, s.batchSize) {
			if err := s.index.SaveIndex(ctx, stockID, batch); err != nil {
				return errors.Wrapf(err, "save index for stock %d", stockID)
			}
		}
		s.logger.Info("stock reindexed", zap.Int("stock_id", stockID), zap.Int("rows", len(rows)))
	}
	return nil
}

// SourceItemIndexer reindexes only the (stock, sku) pairs touched by a set
// of source items.
type SourceItemIndexer struct {
	skuList        domain.SkuListInStockProvider
	index          domain.StockIndexRepository
	defaultStockID int
	logger         *zap.Logger
}

var _ domain.SourceItemIndexer = (*SourceItemIndexer)(nil)

func NewSourceItemIndexer(
	skuList domain.SkuListInStockProvider,
	index domain.StockIndexRepository,
	defaultStockID int,
	logger *zap.Logger,
) *SourceItemIndexer {
	return &SourceItemIndexer{
		skuList:        skuList,
		index:          index,
		defaultStockID: defaultStockID,
		logger:         logger,
	}
}

func (s *SourceItemIndexer) ExecuteList(ctx context.Context, sourceItemIDs []int) error {
	if len(sourceItemIDs) == 0 {
		return nil
	}
	lists, err := s.skuList.GetSkuListInStock(ctx, sourceItemIDs)
	if err != nil {
		return errors.Wrap(err, "sku list in stock")
	}
	for _, list := range lists {
		if list.StockID == s.defaultStockID || len(list.Skus) == 0 {
			continue
		}
		if err := s.index.EnsureIndex(ctx, list.StockID); err != nil {
			return errors.Wrapf(err, "ensure index for stock %d", list.StockID)
		}
		rows, err := s.index.IndexData(ctx, list.StockID, list.Skus)
		if err != nil {
			return errors.Wrapf(err, "index data for stock %d", list.StockID)
		}
		if err := s.index.CleanIndex(ctx, list.StockID, list.Skus); err != nil {
			return errors.Wrapf(err, "clean index for stock %d", list.StockID)
		}
		if err := s.index.SaveIndex(ctx, list.StockID, rows); err != nil {
			return errors.Wrapf(err, "save index for stock %d", list.StockID)
		}
		s.logger.Debug("source items reindexed",
			zap.Int("stock_id", list.StockID),
			zap.Strings("skus", list.Skus),
		)
	}
	return nil
}

func batchRows(rows []domain.StockIndexRow, size int) [][]domain.StockIndexRow {
	var batches [][]domain.StockIndexRow
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		batches = append(batches, rows[start:end])
	}
	return batches
}
