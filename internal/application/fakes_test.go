package application

import (
	"context"
	"sort"
	"strconv"

	"github.com/pkg/errors"
	"github.com/rodolfodevapp/eventshop-messaging-go/core/primitives"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/RodolfoDevApp/eventshop-salability-go/internal/domain"
)

var testLogger = zap.NewNop()

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func key(sku string, stockID int) string {
	return sku + "/" + strconv.Itoa(stockID)
}

// reservations

type fakeReservations struct {
	rows     []domain.ReservationRow
	appended []domain.Reservation
	listErr  error
	lists    int
}

func (f *fakeReservations) add(stockID int, sku, qty, metadata string) {
	f.rows = append(f.rows, domain.ReservationRow{
		ReservationID: int64(len(f.rows) + 1),
		StockID:       stockID,
		Sku:           sku,
		Quantity:      dec(qty),
		Metadata:      metadata,
	})
}

func (f *fakeReservations) List(context.Context) ([]domain.ReservationRow, error) {
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.ReservationRow, len(f.rows))
	copy(out, f.rows)
	return out, nil
}

func (f *fakeReservations) Append(_ context.Context, reservations ...domain.Reservation) error {
	for _, r := range reservations {
		blob, err := r.Metadata.Serialize()
		if err != nil {
			return err
		}
		f.appended = append(f.appended, r)
		f.rows = append(f.rows, domain.ReservationRow{
			ReservationID: int64(len(f.rows) + 1),
			StockID:       r.StockID,
			Sku:           r.Sku,
			Quantity:      r.Quantity,
			Metadata:      blob,
		})
	}
	return nil
}

func (f *fakeReservations) SumQuantity(_ context.Context, sku string, stockID int) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, r := range f.rows {
		if r.Sku == sku && r.StockID == stockID {
			sum = sum.Add(r.Quantity)
		}
	}
	return sum, nil
}

// stock item configuration and data

type fakeConfigs map[string]domain.StockItemConfiguration

func (f fakeConfigs) set(sku string, stockID int, manage bool, backorders domain.BackordersPolicy, minQty string) {
	f[key(sku, stockID)] = domain.StockItemConfiguration{
		Sku:         sku,
		StockID:     stockID,
		ManageStock: manage,
		Backorders:  backorders,
		MinQty:      dec(minQty),
	}
}

func (f fakeConfigs) Get(_ context.Context, sku string, stockID int) (domain.StockItemConfiguration, error) {
	cfg, ok := f[key(sku, stockID)]
	if !ok {
		return domain.StockItemConfiguration{}, errors.WithStack(domain.ErrSkuNotAssignedToStock)
	}
	return cfg, nil
}

type fakeData map[string]*domain.StockItemData

func (f fakeData) set(sku string, stockID int, qty string, salable bool) {
	f[key(sku, stockID)] = &domain.StockItemData{Quantity: dec(qty), IsSalable: salable}
}

func (f fakeData) Get(_ context.Context, sku string, stockID int) (*domain.StockItemData, error) {
	return f[key(sku, stockID)], nil
}

// orders

type fakeOrders struct {
	orders        []domain.Order
	incrementHits int
	pages         []int
}

func (f *fakeOrders) ListNotInStates(_ context.Context, states []domain.OrderState, pageSize, page int) ([]domain.Order, error) {
	f.pages = append(f.pages, page)
	var open []domain.Order
	for _, o := range f.orders {
		excluded := false
		for _, s := range states {
			if o.State == s {
				excluded = true
			}
		}
		if !excluded {
			open = append(open, o)
		}
	}
	start := (page - 1) * pageSize
	if start >= len(open) {
		return nil, nil
	}
	end := start + pageSize
	if end > len(open) {
		end = len(open)
	}
	return open[start:end], nil
}

func (f *fakeOrders) GetByIncrementID(_ context.Context, incrementID string) (*domain.Order, error) {
	for i := range f.orders {
		if f.orders[i].IncrementID == incrementID {
			o := f.orders[i]
			return &o, nil
		}
	}
	return nil, nil
}

func (f *fakeOrders) GetIncrementID(_ context.Context, entityID int) (string, error) {
	f.incrementHits++
	for _, o := range f.orders {
		if o.EntityID == entityID {
			return o.IncrementID, nil
		}
	}
	return "", errors.Wrapf(domain.ErrNoSuchEntity, "order %d", entityID)
}

// catalog

type fakeProducts struct {
	ids     map[string]int
	parents map[int][]int
}

func (f *fakeProducts) GetIDBySku(_ context.Context, sku string) (int, error) {
	id, ok := f.ids[sku]
	if !ok {
		return 0, errors.WithStack(domain.ErrNoSuchEntity)
	}
	return id, nil
}

func (f *fakeProducts) GetParentIDsByChildIDs(_ context.Context, childIDs []int) ([]int, error) {
	var out []int
	for _, id := range childIDs {
		out = append(out, f.parents[id]...)
	}
	return out, nil
}

type fakeStocks struct {
	stocks   []domain.Stock
	websites map[int]int
}

func (f *fakeStocks) List(context.Context) ([]domain.Stock, error) {
	return f.stocks, nil
}

func (f *fakeStocks) GetByWebsiteID(_ context.Context, websiteID int) (domain.Stock, error) {
	stockID, ok := f.websites[websiteID]
	if !ok {
		return domain.Stock{}, errors.WithStack(domain.ErrStockNotFound)
	}
	return domain.Stock{StockID: stockID}, nil
}

// messaging and cache

type fakeOutbox struct {
	events []primitives.Event
}

func (f *fakeOutbox) Enqueue(_ context.Context, ev primitives.Event) error {
	f.events = append(f.events, ev)
	return nil
}

type fakeCache struct {
	cleaned [][]string
}

func (f *fakeCache) Clean(_ context.Context, identities []string) error {
	f.cleaned = append(f.cleaned, identities)
	return nil
}

type recordingFlusher struct {
	skus [][]string
}

func (f *recordingFlusher) Execute(_ context.Context, skus []string) error {
	f.skus = append(f.skus, skus)
	return nil
}

// indexing

type fakeSkuList struct {
	lists []domain.SkuListInStock
}

func (f *fakeSkuList) GetSkuListInStock(context.Context, []int) ([]domain.SkuListInStock, error) {
	return f.lists, nil
}

type indexCall struct {
	op      string
	stockID int
	skus    []string
	rows    int
}

type fakeIndex struct {
	data   map[int][]domain.StockIndexRow
	stored map[int]map[string]domain.StockIndexRow
	calls  []indexCall
}

func (f *fakeIndex) EnsureIndex(_ context.Context, stockID int) error {
	f.calls = append(f.calls, indexCall{op: "ensure", stockID: stockID})
	return nil
}

func (f *fakeIndex) IndexData(_ context.Context, stockID int, skus []string) ([]domain.StockIndexRow, error) {
	f.calls = append(f.calls, indexCall{op: "data", stockID: stockID, skus: skus})
	if skus == nil {
		return f.data[stockID], nil
	}
	wanted := map[string]bool{}
	for _, s := range skus {
		wanted[s] = true
	}
	var out []domain.StockIndexRow
	for _, r := range f.data[stockID] {
		if wanted[r.Sku] {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeIndex) CleanIndex(_ context.Context, stockID int, skus []string) error {
	f.calls = append(f.calls, indexCall{op: "clean", stockID: stockID, skus: skus})
	if skus == nil {
		delete(f.stored, stockID)
		return nil
	}
	for _, sku := range skus {
		delete(f.stored[stockID], sku)
	}
	return nil
}

func (f *fakeIndex) SaveIndex(_ context.Context, stockID int, rows []domain.StockIndexRow) error {
	f.calls = append(f.calls, indexCall{op: "save", stockID: stockID, rows: len(rows)})
	if f.stored == nil {
		f.stored = map[int]map[string]domain.StockIndexRow{}
	}
	if f.stored[stockID] == nil {
		f.stored[stockID] = map[string]domain.StockIndexRow{}
	}
	for _, r := range rows {
		f.stored[stockID][r.Sku] = r
	}
	return nil
}

func (f *fakeIndex) storedSkus(stockID int) []string {
	var skus []string
	for sku := range f.stored[stockID] {
		skus = append(skus, sku)
	}
	sort.Strings(skus)
	return skus
}

func (f *fakeIndex) ops(op string) []indexCall {
	var out []indexCall
	for _, c := range f.calls {
		if c.op == op {
			out = append(out, c)
		}
	}
	return out
}
