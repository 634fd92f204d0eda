package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/RodolfoDevApp/eventshop-salability-go/internal/application"
	"github.com/RodolfoDevApp/eventshop-salability-go/internal/domain"
)

type InconsistencyFinder interface {
	Execute(ctx context.Context, bunchSize int, yield func([]*application.SalableQuantityInconsistency) error) error
}

type Compensator interface {
	Execute(ctx context.Context, items []*application.SalableQuantityInconsistency) ([]domain.Reservation, error)
}

type OrderLookup interface {
	GetByIncrementID(ctx context.Context, incrementID string) (*domain.Order, error)
}

// ListInconsistencies prints every order whose reservations do not net to zero.
type ListInconsistencies struct {
	finder InconsistencyFinder
	out    io.Writer
}

func NewListInconsistencies(finder InconsistencyFinder, out io.Writer) *ListInconsistencies {
	return &ListInconsistencies{finder: finder, out: out}
}

func (c *ListInconsistencies) Execute(ctx context.Context, bunchSize int, raw bool) (int, error) {
	found := 0
	err := c.finder.Execute(ctx, bunchSize, func(items []*application.SalableQuantityInconsistency) error {
		for _, item := range items {
			found++
			for _, line := range compensationLines(item) {
				if raw {
					fmt.Fprintln(c.out, line.String())
					continue
				}
				fmt.Fprintf(c.out, "Order %s: product %s should be compensated by %s on stock %d\n",
					line.IncrementID, line.Sku, line.Quantity.String(), line.StockID)
			}
		}
		return nil
	})
	if err != nil {
		return found, err
	}
	if !raw {
		if found == 0 {
			fmt.Fprintln(c.out, "No salable quantity inconsistencies found.")
		} else {
			fmt.Fprintf(c.out, "Found %d inconsistent order(s).\n", found)
		}
	}
	return found, nil
}

// CreateCompensations appends compensating reservations, either for the
// given raw lines or, with none, for everything a full pass reports.
type CreateCompensations struct {
	finder      InconsistencyFinder
	compensator Compensator
	orders      OrderLookup
	out         io.Writer
}

func NewCreateCompensations(
	finder InconsistencyFinder,
	compensator Compensator,
	orders OrderLookup,
	out io.Writer,
) *CreateCompensations {
	return &CreateCompensations{
		finder:      finder,
		compensator: compensator,
		orders:      orders,
		out:         out,
	}
}

func (c *CreateCompensations) Execute(ctx context.Context, bunchSize int, lines []string) (int, error) {
	if len(lines) == 0 {
		return c.compensateAll(ctx, bunchSize)
	}

	items, err := c.fromLines(ctx, lines)
	if err != nil {
		return 0, err
	}
	return c.compensate(ctx, items)
}

func (c *CreateCompensations) compensateAll(ctx context.Context, bunchSize int) (int, error) {
	total := 0
	err := c.finder.Execute(ctx, bunchSize, func(items []*application.SalableQuantityInconsistency) error {
		n, err := c.compensate(ctx, items)
		total += n
		return err
	})
	return total, err
}

func (c *CreateCompensations) compensate(ctx context.Context, items []*application.SalableQuantityInconsistency) (int, error) {
	created, err := c.compensator.Execute(ctx, items)
	if err != nil {
		return 0, err
	}
	for _, r := range created {
		fmt.Fprintf(c.out, "Compensated %s on stock %d for order %s by %s\n",
			r.Sku, r.StockID, r.Metadata.ObjectIncrementID, r.Quantity.String())
	}
	return len(created), nil
}

// fromLines groups raw lines per order and stock. The stored sums are the
// negated compensations, which is what the compensator expects.
func (c *CreateCompensations) fromLines(ctx context.Context, lines []string) ([]*application.SalableQuantityInconsistency, error) {
	var items []*application.SalableQuantityInconsistency
	byKey := map[string]*application.SalableQuantityInconsistency{}
	orders := map[string]*domain.Order{}

	for _, raw := range lines {
		line, err := ParseCompensationLine(raw)
		if err != nil {
			return nil, err
		}

		order, ok := orders[line.IncrementID]
		if !ok {
			order, err = c.orders.GetByIncrementID(ctx, line.IncrementID)
			if err != nil {
				return nil, errors.Wrapf(err, "load order %s", line.IncrementID)
			}
			if order == nil {
				return nil, errors.Wrapf(domain.ErrNoSuchEntity, "order %s", line.IncrementID)
			}
			orders[line.IncrementID] = order
		}

		key := application.ReservationGroupKey(line.IncrementID, line.StockID)
		item, ok := byKey[key]
		if !ok {
			item = &application.SalableQuantityInconsistency{
				Order:             order,
				ObjectID:          strconv.Itoa(order.EntityID),
				ObjectIncrementID: line.IncrementID,
				StockID:           line.StockID,
				Items:             map[string]decimal.Decimal{},
			}
			byKey[key] = item
			items = append(items, item)
		}
		current := item.Items[line.Sku]
		item.Items[line.Sku] = current.Sub(line.Quantity)
	}
	return items, nil
}

func compensationLines(item *application.SalableQuantityInconsistency) []CompensationLine {
	lines := make([]CompensationLine, 0, len(item.Items))
	for _, sku := range item.Skus() {
		lines = append(lines, CompensationLine{
			IncrementID: item.ObjectIncrementID,
			Sku:         sku,
			Quantity:    item.Items[sku].Neg(),
			StockID:     item.StockID,
		})
	}
	return lines
}
