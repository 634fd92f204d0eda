package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"

	"github.com/RodolfoDevApp/eventshop-salability-go/internal/domain"
)

const undefinedTable = "42P01"

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == undefinedTable
}

// PgStockIndexRepository keeps one inventory_stock_<id> table per stock.
type PgStockIndexRepository struct {
	db *sql.DB
}

var (
	_ domain.StockIndexRepository    = (*PgStockIndexRepository)(nil)
	_ domain.StockItemDataRepository = (*PgStockIndexRepository)(nil)
)

func NewPgStockIndexRepository(db *sql.DB) *PgStockIndexRepository {
	return &PgStockIndexRepository{db: db}
}

func (r *PgStockIndexRepository) EnsureIndex(
	ctx context.Context,
	stockID int,
) error {
	ddl := fmt.Sprintf(`
        create table if not exists %s (
            sku        text primary key,
            quantity   numeric(12,4) not null default 0,
            is_salable boolean       not null default false
        )
    `, stockIndexTable(stockID))
	_, err := r.db.ExecContext(ctx, ddl)
	return errors.Wrapf(err, "ensure index for stock %d", stockID)
}

// IndexData aggregates enabled source items of the sources linked to the stock.
func (r *PgStockIndexRepository) IndexData(
	ctx context.Context,
	stockID int,
	skus []string,
) ([]domain.StockIndexRow, error) {
	query := `
        select si.sku,
               coalesce(sum(si.quantity) filter (where si.status = 1), 0) as quantity,
               coalesce(sum(si.quantity) filter (where si.status = 1), 0) > coalesce(max(c.min_qty), 0)
                   or coalesce(bool_or(c.backorders <> 0), false)
                   or coalesce(bool_or(not c.manage_stock), false) as is_salable
        from inventory_source_item si
        join inventory_source_stock_link l on l.source_code = si.source_code
        left join inventory_stock_item_configuration c on c.sku = si.sku and c.stock_id = l.stock_id
        where l.stock_id = $1
          and ($2::text[] is null or si.sku = any($2))
        group by si.sku
        order by si.sku
    `
	var filter any
	if skus != nil {
		filter = skus
	}
	rows, err := r.db.QueryContext(ctx, query, stockID, filter)
	if err != nil {
		return nil, errors.Wrapf(err, "query index data for stock %d", stockID)
	}
	defer rows.Close()

	var result []domain.StockIndexRow
	for rows.Next() {
		var row domain.StockIndexRow
		if err := rows.Scan(&row.Sku, &row.Quantity, &row.IsSalable); err != nil {
			return nil, errors.Wrap(err, "scan index row")
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *PgStockIndexRepository) CleanIndex(
	ctx context.Context,
	stockID int,
	skus []string,
) error {
	table := stockIndexTable(stockID)
	var err error
	if skus == nil {
		_, err = r.db.ExecContext(ctx, fmt.Sprintf(`delete from %s`, table))
	} else {
		_, err = r.db.ExecContext(ctx, fmt.Sprintf(`delete from %s where sku = any($1)`, table), skus)
	}
	return errors.Wrapf(err, "clean index for stock %d", stockID)
}

func (r *PgStockIndexRepository) SaveIndex(
	ctx context.Context,
	stockID int,
	rows []domain.StockIndexRow,
) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
        insert into %s (sku, quantity, is_salable)
        values ($1,$2,$3)
        on conflict (sku) do update
        set quantity = excluded.quantity, is_salable = excluded.is_salable
    `, stockIndexTable(stockID)))
	if err != nil {
		return errors.Wrapf(err, "prepare index insert for stock %d", stockID)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row.Sku, row.Quantity, row.IsSalable); err != nil {
			return errors.Wrapf(err, "save index row %s", row.Sku)
		}
	}
	return tx.Commit()
}

// Get reads indexed stock item data. A missing index table or row yields nil.
func (r *PgStockIndexRepository) Get(
	ctx context.Context,
	sku string,
	stockID int,
) (*domain.StockItemData, error) {
	query := fmt.Sprintf(`select quantity, is_salable from %s where sku = $1`, stockIndexTable(stockID))
	var data domain.StockItemData
	err := r.db.QueryRowContext(ctx, query, sku).Scan(&data.Quantity, &data.IsSalable)
	switch {
	case errors.Is(err, sql.ErrNoRows), isUndefinedTable(err):
		return nil, nil
	case err != nil:
		return nil, errors.Wrapf(err, "get stock item data %s/%d", sku, stockID)
	}
	return &data, nil
}

// PgSalableProductRepository answers salability for catalog products from a
// stock index. Configurable parents also need at least one enabled, salable child.
type PgSalableProductRepository struct {
	db *sql.DB
}

var _ domain.SalableProductRepository = (*PgSalableProductRepository)(nil)

func NewPgSalableProductRepository(db *sql.DB) *PgSalableProductRepository {
	return &PgSalableProductRepository{db: db}
}

func (r *PgSalableProductRepository) SalableProductIDs(
	ctx context.Context,
	stockID int,
	productIDs []int,
) (map[int]bool, error) {
	result := make(map[int]bool)
	if len(productIDs) == 0 {
		return result, nil
	}
	table := stockIndexTable(stockID)
	query := fmt.Sprintf(`
        select p.entity_id
        from catalog_product_entity p
        join %[1]s s on s.sku = p.sku
        where p.entity_id = any($1)
          and s.is_salable
          and (p.type_id <> 'configurable' or exists (
              select 1
              from catalog_product_super_link l
              join catalog_product_entity c on c.entity_id = l.product_id
              join %[1]s cs on cs.sku = c.sku
              where l.parent_id = p.entity_id
                and c.status = 1
                and cs.is_salable
          ))
    `, table)
	rows, err := r.db.QueryContext(ctx, query, productIDs)
	if isUndefinedTable(err) {
		return result, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "query salable products for stock %d", stockID)
	}
	defer rows.Close()

	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "scan salable product")
		}
		result[id] = true
	}
	return result, rows.Err()
}
