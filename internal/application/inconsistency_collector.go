package application

import (
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/RodolfoDevApp/eventshop-salability-go/internal/domain"
)

// SalableQuantityInconsistency accumulates the net reserved quantity per
// sku of one order on one stock. A consistent order nets to zero.
type SalableQuantityInconsistency struct {
	Order             *domain.Order
	ObjectID          string
	ObjectIncrementID string
	StockID           int
	Items             map[string]decimal.Decimal
}

func (i *SalableQuantityInconsistency) addReservation(r domain.Reservation) {
	current, ok := i.Items[r.Sku]
	if !ok {
		current = decimal.Zero
	}
	i.Items[r.Sku] = current.Add(r.Quantity)
}

// Skus returns the tracked skus in a stable order.
func (i *SalableQuantityInconsistency) Skus() []string {
	skus := make([]string, 0, len(i.Items))
	for sku := range i.Items {
		skus = append(skus, sku)
	}
	sort.Strings(skus)
	return skus
}

// Collector gathers inconsistencies keyed by ReservationGroupKey.
type Collector struct {
	items map[string]*SalableQuantityInconsistency
	keys  []string
}

func NewCollector() *Collector {
	return &Collector{items: map[string]*SalableQuantityInconsistency{}}
}

func (c *Collector) IsEmpty() bool {
	return len(c.items) == 0
}

func (c *Collector) Has(key string) bool {
	_, ok := c.items[key]
	return ok
}

// AddReservation adds the reservation's quantity to its order/stock item.
func (c *Collector) AddReservation(r domain.Reservation) {
	key := ReservationGroupKey(r.Metadata.ObjectIncrementID, r.StockID)
	item := c.item(key)
	item.ObjectIncrementID = r.Metadata.ObjectIncrementID
	item.StockID = r.StockID
	if item.ObjectID == "" {
		item.ObjectID = r.Metadata.ObjectID
	}
	item.addReservation(r)
}

// AddOrder attaches the order to its item, creating it when needed.
func (c *Collector) AddOrder(order *domain.Order) {
	key := ReservationGroupKey(order.IncrementID, order.StockID)
	item := c.item(key)
	item.Order = order
	item.ObjectID = strconv.Itoa(order.EntityID)
	item.ObjectIncrementID = order.IncrementID
	item.StockID = order.StockID
}

// Items returns the collected items in insertion order.
func (c *Collector) Items() []*SalableQuantityInconsistency {
	out := make([]*SalableQuantityInconsistency, 0, len(c.keys))
	for _, key := range c.keys {
		out = append(out, c.items[key])
	}
	return out
}

func (c *Collector) item(key string) *SalableQuantityInconsistency {
	item, ok := c.items[key]
	if !ok {
		item = &SalableQuantityInconsistency{Items: map[string]decimal.Decimal{}}
		c.items[key] = item
		c.keys = append(c.keys, key)
	}
	return item
}
