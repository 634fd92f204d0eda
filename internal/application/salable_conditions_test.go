package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RodolfoDevApp/eventshop-salability-go/internal/domain"
)

type salabilityFixture struct {
	configs      fakeConfigs
	data         fakeData
	reservations *fakeReservations
}

func newSalabilityFixture() *salabilityFixture {
	return &salabilityFixture{
		configs:      fakeConfigs{},
		data:         fakeData{},
		reservations: &fakeReservations{},
	}
}

func (f *salabilityFixture) chain() *IsProductSalableForRequestedQtyChain {
	return NewIsProductSalableForRequestedQtyChain(
		[]SufficientCondition{NewManageStockCondition(f.configs)},
		[]IsProductSalableForRequestedQty{NewIsSalableWithReservationsCondition(f.configs, f.data, f.reservations)},
	)
}

func (f *salabilityFixture) backOrder() *BackOrderNotifyCustomerCondition {
	return NewBackOrderNotifyCustomerCondition(f.configs, f.data, f.reservations)
}

func TestBackOrderNotify_PassThroughWithoutNotifyPolicy(t *testing.T) {
	ctx := context.Background()
	for _, tc := range []struct {
		name       string
		manage     bool
		backorders domain.BackordersPolicy
	}{
		{"stock not managed", false, domain.BackordersYesNotify},
		{"no backorders", true, domain.BackordersNo},
		{"backorders without notify", true, domain.BackordersYesNoNotify},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := newSalabilityFixture()
			f.configs.set("SKU", 1, tc.manage, tc.backorders, "0")
			f.data.set("SKU", 1, "0", false)

			res, err := f.backOrder().Execute(ctx, "SKU", 1, dec("100"))
			require.NoError(t, err)
			assert.True(t, res.IsSalable())
			assert.NotNil(t, res.Errors)
		})
	}
}

func TestBackOrderNotify_Thresholds(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name      string
		rawQty    string
		minQty    string
		reserved  string
		requested string
		display   string
	}{
		{name: "fully covered", rawQty: "5", minQty: "0", requested: "3"},
		{name: "exactly covered", rawQty: "5", minQty: "0", requested: "5"},
		{name: "partially back ordered", rawQty: "5", minQty: "0", requested: "8", display: "3"},
		{name: "nothing available", rawQty: "0", minQty: "0", requested: "4", display: "4"},
		{name: "reservations consume stock", rawQty: "5", minQty: "0", reserved: "-5", requested: "2", display: "2"},
		{name: "min qty threshold", rawQty: "5", minQty: "2", requested: "4", display: "1"},
		{name: "below min qty", rawQty: "1", minQty: "2", requested: "1", display: "1"},
		{name: "fractional stock", rawQty: "2.5", minQty: "0", requested: "4", display: "1.5"},
		{name: "fractional reservation", rawQty: "5", minQty: "0.5", reserved: "-1.25", requested: "4", display: "0.75"},
		{name: "fractional fully covered", rawQty: "2.5", minQty: "0", requested: "2.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSalabilityFixture()
			f.configs.set("SKU", 1, true, domain.BackordersYesNotify, tt.minQty)
			f.data.set("SKU", 1, tt.rawQty, true)
			if tt.reserved != "" {
				f.reservations.add(1, "SKU", tt.reserved, orderMeta(domain.EventOrderPlaced, "1", "100000001"))
			}

			res, err := f.backOrder().Execute(ctx, "SKU", 1, dec(tt.requested))
			require.NoError(t, err)
			if tt.display == "" {
				assert.Empty(t, res.Errors)
				return
			}
			require.Len(t, res.Errors, 1)
			assert.Equal(t, domain.CodeBackOrderNotEnough, res.Errors[0].Code)
			assert.Equal(t, BackOrderMessage(dec(tt.display)), res.Errors[0].Message)
		})
	}
}

func permutations(n int) [][]int {
	if n == 0 {
		return [][]int{{}}
	}
	var out [][]int
	for _, p := range permutations(n - 1) {
		for i := 0; i <= len(p); i++ {
			perm := make([]int, 0, n)
			perm = append(perm, p[:i]...)
			perm = append(perm, n-1)
			perm = append(perm, p[i:]...)
			out = append(out, perm)
		}
	}
	return out
}

func TestSalability_IndependentOfReservationOrder(t *testing.T) {
	ctx := context.Background()
	quantities := []string{"-3", "1.5", "-0.5", "-2"}

	perms := permutations(len(quantities))
	require.Len(t, perms, 24)
	for _, perm := range perms {
		f := newSalabilityFixture()
		f.configs.set("SKU", 1, true, domain.BackordersYesNotify, "0")
		f.configs.set("SKU", 2, true, domain.BackordersNo, "0")
		f.data.set("SKU", 1, "10", true)
		f.data.set("SKU", 2, "10", true)
		for _, i := range perm {
			for _, stockID := range []int{1, 2} {
				f.reservations.add(stockID, "SKU", quantities[i], orderMeta(domain.EventOrderPlaced, "1", "100000001"))
			}
		}

		sum, err := f.reservations.SumQuantity(ctx, "SKU", 1)
		require.NoError(t, err)
		assert.True(t, sum.Equal(dec("-4")), "order %v", perm)

		notice, err := f.backOrder().Execute(ctx, "SKU", 1, dec("7"))
		require.NoError(t, err)
		require.Len(t, notice.Errors, 1, "order %v", perm)
		assert.Equal(t, BackOrderMessage(dec("1")), notice.Errors[0].Message)

		res, err := f.chain().Execute(ctx, "SKU", 2, dec("6"))
		require.NoError(t, err)
		assert.True(t, res.IsSalable(), "order %v", perm)

		res, err = f.chain().Execute(ctx, "SKU", 2, dec("6.01"))
		require.NoError(t, err)
		assert.False(t, res.IsSalable(), "order %v", perm)
	}
}

func TestBackOrderNotify_NoStockDataAccepts(t *testing.T) {
	f := newSalabilityFixture()
	f.configs.set("SKU", 1, true, domain.BackordersYesNotify, "0")

	res, err := f.backOrder().Execute(context.Background(), "SKU", 1, dec("10"))
	require.NoError(t, err)
	assert.True(t, res.IsSalable())
}

func TestBackOrderNotify_UnassignedSkuFails(t *testing.T) {
	f := newSalabilityFixture()
	_, err := f.backOrder().Execute(context.Background(), "SKU", 1, dec("1"))
	assert.ErrorIs(t, err, domain.ErrSkuNotAssignedToStock)
}

func TestBackOrderMessage(t *testing.T) {
	assert.Equal(t,
		"We don't have as many quantity as you requested, but we'll back order the remaining 3.",
		BackOrderMessage(dec("3")))
	assert.Equal(t,
		"We don't have as many quantity as you requested, but we'll back order the remaining 1.5.",
		BackOrderMessage(dec("1.5")))
}

func TestSalabilityChain(t *testing.T) {
	ctx := context.Background()
	f := newSalabilityFixture()
	f.configs.set("FREE", 1, false, domain.BackordersNo, "0")
	f.configs.set("STRICT", 1, true, domain.BackordersNo, "1")
	f.configs.set("BACKORDER", 1, true, domain.BackordersYesNoNotify, "0")
	f.configs.set("NODATA", 1, true, domain.BackordersNo, "0")
	f.data.set("STRICT", 1, "10", true)
	f.reservations.add(1, "STRICT", "-4", orderMeta(domain.EventOrderPlaced, "1", "100000001"))

	tests := []struct {
		sku  string
		qty  string
		code string
	}{
		{sku: "FREE", qty: "1000"},
		{sku: "BACKORDER", qty: "1000"},
		{sku: "STRICT", qty: "5"},
		{sku: "STRICT", qty: "6", code: domain.CodeNotEnoughQtyWithReserves},
		{sku: "NODATA", qty: "1", code: "is_salable_with_reservations-no_data"},
		{sku: "UNKNOWN", qty: "1", code: domain.CodeStockNotAssigned},
	}
	for _, tt := range tests {
		t.Run(tt.sku+"_"+tt.qty, func(t *testing.T) {
			res, err := f.chain().Execute(ctx, tt.sku, 1, dec(tt.qty))
			require.NoError(t, err)
			if tt.code == "" {
				assert.True(t, res.IsSalable())
				return
			}
			require.Len(t, res.Errors, 1)
			assert.Equal(t, tt.code, res.Errors[0].Code)
		})
	}
}

func TestCheckSalability_AddsBackOrderNotice(t *testing.T) {
	ctx := context.Background()
	f := newSalabilityFixture()
	f.configs.set("SKU", 1, true, domain.BackordersYesNotify, "0")
	f.data.set("SKU", 1, "5", true)

	check, err := NewCheckSalability(f.chain(), f.backOrder()).Execute(ctx, "SKU", 1, dec("8"))
	require.NoError(t, err)
	assert.True(t, check.Salable)
	assert.Empty(t, check.Errors)
	require.Len(t, check.Notices, 1)
	assert.Equal(t, domain.CodeBackOrderNotEnough, check.Notices[0].Code)
}

func TestCheckSalability_UnassignedSku(t *testing.T) {
	f := newSalabilityFixture()
	check, err := NewCheckSalability(f.chain(), f.backOrder()).Execute(context.Background(), "NOPE", 2, dec("1"))
	require.NoError(t, err)
	assert.False(t, check.Salable)
	require.Len(t, check.Errors, 1)
	assert.Equal(t, domain.CodeStockNotAssigned, check.Errors[0].Code)
	assert.Empty(t, check.Notices)
}

type fakeLegacy map[int]*domain.StockItemData

func (f fakeLegacy) GetByProductID(_ context.Context, productID int) (*domain.StockItemData, error) {
	return f[productID], nil
}

func TestStockItemDataResolver(t *testing.T) {
	ctx := context.Background()
	products := &fakeProducts{ids: map[string]int{"SKU": 10}}
	legacy := fakeLegacy{10: {Quantity: dec("7"), IsSalable: true}}
	custom := fakeData{}
	custom.set("SKU", 2, "3", false)

	resolver := NewStockItemDataResolver(1, products, legacy, custom)

	data, err := resolver.Get(ctx, "SKU", 1)
	require.NoError(t, err)
	require.NotNil(t, data)
	assert.True(t, data.Quantity.Equal(dec("7")))

	data, err = resolver.Get(ctx, "SKU", 2)
	require.NoError(t, err)
	require.NotNil(t, data)
	assert.False(t, data.IsSalable)

	data, err = resolver.Get(ctx, "MISSING", 1)
	require.NoError(t, err)
	assert.Nil(t, data)
}
