package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RodolfoDevApp/eventshop-salability-go/internal/domain"
)

type placementFixture struct {
	*salabilityFixture
	stocks  *fakeStocks
	outbox  *fakeOutbox
	flusher *recordingFlusher
}

func newPlacementFixture() *placementFixture {
	f := &placementFixture{
		salabilityFixture: newSalabilityFixture(),
		stocks:            &fakeStocks{stocks: []domain.Stock{{StockID: 1}, {StockID: 2}}},
		outbox:            &fakeOutbox{},
		flusher:           &recordingFlusher{},
	}
	f.configs.set("SKU-A", 2, true, domain.BackordersNo, "0")
	f.data.set("SKU-A", 2, "10", true)
	f.configs.set("FREE", 2, false, domain.BackordersNo, "0")
	return f
}

func (f *placementFixture) service() *PlaceReservationsService {
	return NewPlaceReservationsService(
		f.chain(),
		NewIsOrderSourceManageable(f.stocks, f.configs),
		f.reservations,
		f.outbox,
		f.flusher,
		testLogger,
	)
}

func orderLine(sku, productType, qty string) domain.OrderLine {
	return domain.OrderLine{Sku: sku, ProductType: productType, Quantity: dec(qty)}
}

func TestPlaceReservations_OrderPlaced(t *testing.T) {
	f := newPlacementFixture()
	err := f.service().HandleOrderPlaced(context.Background(), domain.OrderPlacedPayload{
		OrderID:     5,
		IncrementID: "100000005",
		StockID:     2,
		Lines: []domain.OrderLine{
			orderLine("SKU-A", domain.ProductTypeSimple, "3"),
			orderLine("CONF", domain.ProductTypeConfigurable, "3"),
		},
	})
	require.NoError(t, err)

	require.Len(t, f.reservations.appended, 1)
	r := f.reservations.appended[0]
	assert.Equal(t, "SKU-A", r.Sku)
	assert.True(t, r.Quantity.Equal(dec("-3")))
	assert.Equal(t, domain.EventOrderPlaced, r.Metadata.EventType)
	assert.Equal(t, "5", r.Metadata.ObjectID)
	assert.Equal(t, "100000005", r.Metadata.ObjectIncrementID)

	require.Len(t, f.outbox.events, 1)
	_, ok := f.outbox.events[0].(*domain.ReservationsPlacedEvent)
	assert.True(t, ok)
	assert.Equal(t, [][]string{{"SKU-A"}}, f.flusher.skus)
}

func TestPlaceReservations_NotEnoughStock(t *testing.T) {
	f := newPlacementFixture()
	err := f.service().HandleOrderPlaced(context.Background(), domain.OrderPlacedPayload{
		OrderID:     6,
		IncrementID: "100000006",
		StockID:     2,
		Lines:       []domain.OrderLine{orderLine("SKU-A", domain.ProductTypeSimple, "11")},
	})
	require.NoError(t, err)

	assert.Empty(t, f.reservations.appended)
	require.Len(t, f.outbox.events, 1)
	ev, ok := f.outbox.events[0].(*domain.StockReservationFailedEvent)
	require.True(t, ok)
	assert.Equal(t, "SKU-A", ev.Sku)
	assert.Equal(t, []string{"The requested qty is not available"}, ev.Reasons)
	assert.Empty(t, f.flusher.skus)
}

func TestPlaceReservations_UnmanagedOrderIsSkipped(t *testing.T) {
	f := newPlacementFixture()
	err := f.service().HandleOrderPlaced(context.Background(), domain.OrderPlacedPayload{
		OrderID:     7,
		IncrementID: "100000007",
		StockID:     2,
		Lines:       []domain.OrderLine{orderLine("FREE", domain.ProductTypeSimple, "100")},
	})
	require.NoError(t, err)
	assert.Empty(t, f.reservations.appended)
	assert.Empty(t, f.outbox.events)
}

func TestPlaceReservations_EmptyOrder(t *testing.T) {
	f := newPlacementFixture()
	err := f.service().HandleOrderPlaced(context.Background(), domain.OrderPlacedPayload{
		OrderID: 8, IncrementID: "100000008", StockID: 2,
	})
	require.NoError(t, err)
	require.Len(t, f.outbox.events, 1)
	_, ok := f.outbox.events[0].(*domain.StockReservationFailedEvent)
	assert.True(t, ok)
}

func TestPlaceReservations_InvalidReference(t *testing.T) {
	f := newPlacementFixture()
	err := f.service().HandleOrderPlaced(context.Background(), domain.OrderPlacedPayload{IncrementID: "x", StockID: 2})
	assert.ErrorContains(t, err, "missing orderId")

	err = f.service().HandleOrderCancelled(context.Background(), domain.OrderCancelledPayload{OrderID: 1, IncrementID: "x"})
	assert.ErrorContains(t, err, "missing stockId")
}

func TestPlaceReservations_CancelReturnsQuantity(t *testing.T) {
	f := newPlacementFixture()
	svc := f.service()
	ctx := context.Background()

	require.NoError(t, svc.HandleOrderPlaced(ctx, domain.OrderPlacedPayload{
		OrderID: 9, IncrementID: "100000009", StockID: 2,
		Lines: []domain.OrderLine{orderLine("SKU-A", domain.ProductTypeSimple, "4")},
	}))
	require.NoError(t, svc.HandleOrderCancelled(ctx, domain.OrderCancelledPayload{
		OrderID: 9, IncrementID: "100000009", StockID: 2,
		Lines: []domain.OrderLine{orderLine("SKU-A", domain.ProductTypeSimple, "4")},
	}))

	sum, err := f.reservations.SumQuantity(ctx, "SKU-A", 2)
	require.NoError(t, err)
	assert.True(t, sum.IsZero())
	assert.Equal(t, domain.EventOrderCanceled, f.reservations.appended[1].Metadata.EventType)
	assert.Equal(t, [][]string{{"SKU-A"}, {"SKU-A"}}, f.flusher.skus)
}

func TestIsOrderSourceManageable(t *testing.T) {
	ctx := context.Background()
	f := newPlacementFixture()
	svc := NewIsOrderSourceManageable(f.stocks, f.configs)

	ok, err := svc.Execute(ctx, &domain.Order{Items: []domain.OrderItem{{Sku: "SKU-A", ProductType: domain.ProductTypeSimple}}})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Execute(ctx, &domain.Order{Items: []domain.OrderItem{
		{Sku: "FREE", ProductType: domain.ProductTypeSimple},
		{Sku: "UNASSIGNED", ProductType: domain.ProductTypeSimple},
		{Sku: "SKU-A", ProductType: domain.ProductTypeBundle},
	}})
	require.NoError(t, err)
	assert.False(t, ok)
}
