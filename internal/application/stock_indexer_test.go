package application

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RodolfoDevApp/eventshop-salability-go/internal/domain"
)

func indexRows(n int) []domain.StockIndexRow {
	rows := make([]domain.StockIndexRow, n)
	for i := range rows {
		rows[i] = domain.StockIndexRow{Sku: fmt.Sprintf("SKU-%03d", i), Quantity: dec("1"), IsSalable: true}
	}
	return rows
}

func TestStockIndexer_ExecuteFull(t *testing.T) {
	index := &fakeIndex{data: map[int][]domain.StockIndexRow{
		1: indexRows(3),
		2: indexRows(250),
		3: indexRows(0),
	}}
	stocks := &fakeStocks{stocks: []domain.Stock{{StockID: 1}, {StockID: 2}, {StockID: 3}}}

	indexer := NewStockIndexer(stocks, index, 1, 100, testLogger)
	require.NoError(t, indexer.ExecuteFull(context.Background()))

	for _, c := range index.calls {
		assert.NotEqual(t, 1, c.stockID, "default stock must not be indexed")
	}
	assert.Len(t, index.ops("ensure"), 2)

	saves := index.ops("save")
	require.Len(t, saves, 3)
	assert.Equal(t, []int{100, 100, 50}, []int{saves[0].rows, saves[1].rows, saves[2].rows})

	cleans := index.ops("clean")
	require.Len(t, cleans, 2)
	for _, c := range cleans {
		assert.Nil(t, c.skus, "stock %d must be wiped before rebuilding", c.stockID)
	}
	assert.Equal(t, []int{2, 3}, []int{cleans[0].stockID, cleans[1].stockID})
}

func TestStockIndexer_DropsRowsOfUnlinkedSkus(t *testing.T) {
	index := &fakeIndex{
		data:   map[int][]domain.StockIndexRow{2: indexRows(1)},
		stored: map[int]map[string]domain.StockIndexRow{2: {"SKU-OLD": {Sku: "SKU-OLD", IsSalable: true}}},
	}
	indexer := NewStockIndexer(&fakeStocks{}, index, 1, 100, testLogger)

	require.NoError(t, indexer.ExecuteRow(context.Background(), 2))
	assert.Equal(t, []string{"SKU-000"}, index.storedSkus(2))
}

func TestStockIndexer_DefaultBatchSize(t *testing.T) {
	index := &fakeIndex{data: map[int][]domain.StockIndexRow{2: indexRows(101)}}
	indexer := NewStockIndexer(&fakeStocks{}, index, 1, 0, testLogger)

	require.NoError(t, indexer.ExecuteRow(context.Background(), 2))
	assert.Len(t, index.ops("save"), 2)
}

func TestSourceItemIndexer_ExecuteList(t *testing.T) {
	index := &fakeIndex{data: map[int][]domain.StockIndexRow{
		2: {{Sku: "A", Quantity: dec("2"), IsSalable: true}, {Sku: "Z"}},
	}}
	skuList := &fakeSkuList{lists: []domain.SkuListInStock{
		{StockID: 1, Skus: []string{"A"}},
		{StockID: 2, Skus: []string{"A", "B"}},
	}}

	indexer := NewSourceItemIndexer(skuList, index, 1, testLogger)
	require.NoError(t, indexer.ExecuteList(context.Background(), []int{7}))

	cleans := index.ops("clean")
	require.Len(t, cleans, 1)
	assert.Equal(t, 2, cleans[0].stockID)
	assert.Equal(t, []string{"A", "B"}, cleans[0].skus)

	saves := index.ops("save")
	require.Len(t, saves, 1)
	assert.Equal(t, 1, saves[0].rows)
}

func TestSourceItemIndexer_EmptyInput(t *testing.T) {
	index := &fakeIndex{}
	indexer := NewSourceItemIndexer(&fakeSkuList{}, index, 1, testLogger)
	require.NoError(t, indexer.ExecuteList(context.Background(), nil))
	assert.Empty(t, index.calls)
}
