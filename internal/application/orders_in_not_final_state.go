package application

import (
	"context"

	"github.com/pkg/errors"

	"github.com/RodolfoDevApp/eventshop-salability-go/internal/domain"
)

const defaultOrderBunchSize = 50

// OrdersInNotFinalState pages through orders whose state is not final.
type OrdersInNotFinalState struct {
	repo domain.OrderRepository
}

func NewOrdersInNotFinalState(repo domain.OrderRepository) *OrdersInNotFinalState {
	return &OrdersInNotFinalState{repo: repo}
}

// Execute returns a cursor positioned before the first page.
func (g *OrdersInNotFinalState) Execute(bunchSize int) *OrderCursor {
	if bunchSize <= 0 {
		bunchSize = defaultOrderBunchSize
	}
	return &OrderCursor{
		repo:     g.repo,
		states:   domain.CompleteOrderStates(),
		pageSize: bunchSize,
	}
}

// OrderCursor is a finite lazy sequence of order pages. Only the current
// page is held in memory; it is released before the next one is fetched.
type OrderCursor struct {
	repo     domain.OrderRepository
	states   []domain.OrderState
	pageSize int

	page    int
	current []domain.Order
	done    bool
	err     error
}

// Next fetches the following page. It returns false when the sequence is
// exhausted or a fetch failed; check Err afterwards.
func (c *OrderCursor) Next(ctx context.Context) bool {
	c.Release()
	if c.done || c.err != nil {
		return false
	}

	c.page++
	orders, err := c.repo.ListNotInStates(ctx, c.states, c.pageSize, c.page)
	if err != nil {
		c.err = errors.Wrapf(err, "list orders page %d", c.page)
		return false
	}
	if len(orders) == 0 {
		c.done = true
		return false
	}
	if len(orders) < c.pageSize {
		c.done = true
	}
	c.current = orders
	return true
}

// Orders returns the current page.
func (c *OrderCursor) Orders() []domain.Order {
	return c.current
}

// Page is the 1-based number of the current page.
func (c *OrderCursor) Page() int {
	return c.page
}

func (c *OrderCursor) Err() error {
	return c.err
}

// Release drops the current page.
func (c *OrderCursor) Release() {
	c.current = nil
}

// Restart positions the cursor so the next call to Next returns page.
func (c *OrderCursor) Restart(page int) {
	if page < 1 {
		page = 1
	}
	c.Release()
	c.page = page - 1
	c.done = false
	c.err = nil
}
