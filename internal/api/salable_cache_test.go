package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/rodolfodevapp/eventshop-messaging-go/core/primitives"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/RodolfoDevApp/eventshop-salability-go/internal/application"
	"github.com/RodolfoDevApp/eventshop-salability-go/internal/config"
	"github.com/RodolfoDevApp/eventshop-salability-go/internal/domain"
	"github.com/RodolfoDevApp/eventshop-salability-go/internal/infrastructure/cache"
)

type memConfigs map[string]domain.StockItemConfiguration

func (m memConfigs) Get(_ context.Context, sku string, _ int) (domain.StockItemConfiguration, error) {
	cfg, ok := m[sku]
	if !ok {
		return domain.StockItemConfiguration{}, domain.ErrSkuNotAssignedToStock
	}
	return cfg, nil
}

type memData map[string]*domain.StockItemData

func (m memData) Get(_ context.Context, sku string, _ int) (*domain.StockItemData, error) {
	return m[sku], nil
}

type memLedger struct {
	rows []domain.ReservationRow
}

func (l *memLedger) List(context.Context) ([]domain.ReservationRow, error) {
	return l.rows, nil
}

func (l *memLedger) Append(_ context.Context, reservations ...domain.Reservation) error {
	for _, r := range reservations {
		blob, err := r.Metadata.Serialize()
		if err != nil {
			return err
		}
		l.rows = append(l.rows, domain.ReservationRow{
			ReservationID: int64(len(l.rows) + 1),
			StockID:       r.StockID,
			Sku:           r.Sku,
			Quantity:      r.Quantity,
			Metadata:      blob,
		})
	}
	return nil
}

func (l *memLedger) SumQuantity(_ context.Context, sku string, stockID int) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, r := range l.rows {
		if r.Sku == sku && r.StockID == stockID {
			sum = sum.Add(r.Quantity)
		}
	}
	return sum, nil
}

type memStocks []domain.Stock

func (m memStocks) List(context.Context) ([]domain.Stock, error) {
	return m, nil
}

func (m memStocks) GetByWebsiteID(context.Context, int) (domain.Stock, error) {
	return domain.Stock{}, domain.ErrStockNotFound
}

type discardOutbox struct{}

func (discardOutbox) Enqueue(context.Context, primitives.Event) error {
	return nil
}

func TestIsSalable_OrderPlacedBetweenRequestsRefreshesAnswer(t *testing.T) {
	configs := memConfigs{"SKU-A": {Sku: "SKU-A", StockID: 2, ManageStock: true, MinQty: decimal.Zero}}
	data := memData{"SKU-A": {Quantity: decimal.NewFromInt(5), IsSalable: true}}
	ledger := &memLedger{}
	products := productIDs{"SKU-A": 10}
	responseCache := cache.NewTagCache()
	logger := zap.NewNop()

	chain := application.NewIsProductSalableForRequestedQtyChain(
		[]application.SufficientCondition{application.NewManageStockCondition(configs)},
		[]application.IsProductSalableForRequestedQty{
			application.NewIsSalableWithReservationsCondition(configs, data, ledger),
		},
	)
	check := application.NewCheckSalability(chain, application.NewBackOrderNotifyCustomerCondition(configs, data, ledger))
	flush := application.NewFlushCacheByIDs("cat_p", application.NewCacheEventManager(), responseCache, logger)
	placement := application.NewPlaceReservationsService(
		chain,
		application.NewIsOrderSourceManageable(memStocks{{StockID: 2}}, configs),
		ledger,
		discardOutbox{},
		application.NewFlushCacheBySkus(products, flush),
		logger,
	)

	mux := http.NewServeMux()
	cfg := config.Config{DefaultStockID: 1, ProductCacheTag: "cat_p", SalableCacheTTLSec: 300}
	NewServer(cfg, Deps{Salability: check, Reservations: ledger, Products: products, Cache: responseCache}, logger).
		RegisterRoutes(mux)
	ts := &testServer{mux: mux}

	salable := func() bool {
		rec := ts.do(http.MethodGet, "/api/salable/SKU-A?stockId=2&qty=5", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var body application.SalabilityCheck
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		return body.Salable
	}

	require.True(t, salable())
	require.Equal(t, 1, responseCache.Len())

	require.NoError(t, placement.HandleOrderPlaced(context.Background(), domain.OrderPlacedPayload{
		OrderID:     1,
		IncrementID: "100000001",
		StockID:     2,
		Lines:       []domain.OrderLine{{Sku: "SKU-A", ProductType: domain.ProductTypeSimple, Quantity: decimal.NewFromInt(5)}},
	}))

	assert.False(t, salable())
}
