package db

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/RodolfoDevApp/eventshop-salability-go/internal/domain"
)

type PgOrderRepository struct {
	db *sql.DB
}

var _ domain.OrderRepository = (*PgOrderRepository)(nil)

func NewPgOrderRepository(db *sql.DB) *PgOrderRepository {
	return &PgOrderRepository{db: db}
}

// ListNotInStates returns one page (1-based) of orders outside the given
// states, items included, ordered by entity id.
func (r *PgOrderRepository) ListNotInStates(
	ctx context.Context,
	states []domain.OrderState,
	pageSize, page int,
) ([]domain.Order, error) {
	if page < 1 {
		page = 1
	}
	excluded := make([]string, 0, len(states))
	for _, s := range states {
		excluded = append(excluded, string(s))
	}

	query := `
        select entity_id, increment_id, state, stock_id
        from sales_order
        where state <> all($1)
        order by entity_id
        limit $2 offset $3
    `
	rows, err := r.db.QueryContext(ctx, query, excluded, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, errors.Wrap(err, "query orders")
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		var state string
		if err := rows.Scan(&o.EntityID, &o.IncrementID, &state, &o.StockID); err != nil {
			return nil, errors.Wrap(err, "scan order")
		}
		o.State = domain.OrderState(state)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *PgOrderRepository) GetByIncrementID(
	ctx context.Context,
	incrementID string,
) (*domain.Order, error) {
	query := `
        select entity_id, increment_id, state, stock_id
        from sales_order
        where increment_id = $1
    `
	var o domain.Order
	var state string
	err := r.db.QueryRowContext(ctx, query, incrementID).Scan(&o.EntityID, &o.IncrementID, &state, &o.StockID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get order %s", incrementID)
	}
	o.State = domain.OrderState(state)

	orders := []domain.Order{o}
	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *PgOrderRepository) GetIncrementID(
	ctx context.Context,
	entityID int,
) (string, error) {
	var incrementID string
	err := r.db.QueryRowContext(ctx, `select increment_id from sales_order where entity_id = $1`, entityID).Scan(&incrementID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", errors.Wrapf(domain.ErrNoSuchEntity, "order %d", entityID)
	}
	if err != nil {
		return "", errors.Wrapf(err, "get increment id of order %d", entityID)
	}
	return incrementID, nil
}

func (r *PgOrderRepository) loadItems(
	ctx context.Context,
	orders []domain.Order,
) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int, len(orders))
	pos := make(map[int]int, len(orders))
	for i, o := range orders {
		ids[i] = o.EntityID
		pos[o.EntityID] = i
	}

	query := `
        select order_id, sku, product_type, qty_ordered, qty_shipped, qty_canceled
        from sales_order_item
        where order_id = any($1)
        order by item_id
    `
	rows, err := r.db.QueryContext(ctx, query, ids)
	if err != nil {
		return errors.Wrap(err, "query order items")
	}
	defer rows.Close()

	for rows.Next() {
		var orderID int
		var item domain.OrderItem
		if err := rows.Scan(
			&orderID,
			&item.Sku,
			&item.ProductType,
			&item.QtyOrdered,
			&item.QtyShipped,
			&item.QtyCanceled,
		); err != nil {
			return errors.Wrap(err, "scan order item")
		}
		i := pos[orderID]
		orders[i].Items = append(orders[i].Items, item)
	}
	return rows.Err()
}
