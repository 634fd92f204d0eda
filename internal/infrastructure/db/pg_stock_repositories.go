package db

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/RodolfoDevApp/eventshop-salability-go/internal/domain"
)

type PgStockItemConfigurationRepository struct {
	db *sql.DB
}

var _ domain.StockItemConfigurationRepository = (*PgStockItemConfigurationRepository)(nil)

func NewPgStockItemConfigurationRepository(db *sql.DB) *PgStockItemConfigurationRepository {
	return &PgStockItemConfigurationRepository{db: db}
}

func (r *PgStockItemConfigurationRepository) Get(
	ctx context.Context,
	sku string,
	stockID int,
) (domain.StockItemConfiguration, error) {
	query := `
        select manage_stock, backorders, min_qty
        from inventory_stock_item_configuration
        where sku = $1 and stock_id = $2
    `
	cfg := domain.StockItemConfiguration{Sku: sku, StockID: stockID}
	var backorders int
	err := r.db.QueryRowContext(ctx, query, sku, stockID).Scan(&cfg.ManageStock, &backorders, &cfg.MinQty)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.StockItemConfiguration{}, errors.WithStack(domain.ErrSkuNotAssignedToStock)
	}
	if err != nil {
		return domain.StockItemConfiguration{}, errors.Wrapf(err, "get stock item configuration %s/%d", sku, stockID)
	}
	cfg.Backorders = domain.BackordersPolicy(backorders)
	return cfg, nil
}

// PgLegacyStockItemRepository reads cataloginventory_stock_item, which
// backs the default stock.
type PgLegacyStockItemRepository struct {
	db *sql.DB
}

var _ domain.LegacyStockItemRepository = (*PgLegacyStockItemRepository)(nil)

func NewPgLegacyStockItemRepository(db *sql.DB) *PgLegacyStockItemRepository {
	return &PgLegacyStockItemRepository{db: db}
}

func (r *PgLegacyStockItemRepository) GetByProductID(
	ctx context.Context,
	productID int,
) (*domain.StockItemData, error) {
	query := `
        select qty, is_in_stock
        from cataloginventory_stock_item
        where product_id = $1
    `
	var data domain.StockItemData
	err := r.db.QueryRowContext(ctx, query, productID).Scan(&data.Quantity, &data.IsSalable)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get legacy stock item %d", productID)
	}
	return &data, nil
}

type PgStockRepository struct {
	db *sql.DB
}

var _ domain.StockRepository = (*PgStockRepository)(nil)

func NewPgStockRepository(db *sql.DB) *PgStockRepository {
	return &PgStockRepository{db: db}
}

func (r *PgStockRepository) List(ctx context.Context) ([]domain.Stock, error) {
	rows, err := r.db.QueryContext(ctx, `select stock_id, name from inventory_stock order by stock_id`)
	if err != nil {
		return nil, errors.Wrap(err, "query stocks")
	}
	defer rows.Close()

	var result []domain.Stock
	for rows.Next() {
		var s domain.Stock
		if err := rows.Scan(&s.StockID, &s.Name); err != nil {
			return nil, errors.Wrap(err, "scan stock")
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func (r *PgStockRepository) GetByWebsiteID(
	ctx context.Context,
	websiteID int,
) (domain.Stock, error) {
	query := `
        select s.stock_id, s.name
        from inventory_stock s
        join inventory_stock_sales_channel c on c.stock_id = s.stock_id
        where c.website_id = $1
    `
	var s domain.Stock
	err := r.db.QueryRowContext(ctx, query, websiteID).Scan(&s.StockID, &s.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Stock{}, errors.Wrapf(domain.ErrStockNotFound, "website %d", websiteID)
	}
	if err != nil {
		return domain.Stock{}, errors.Wrapf(err, "get stock for website %d", websiteID)
	}
	return s, nil
}

// PgSkuListInStockProvider maps source items to the stocks their sources
// are linked to.
type PgSkuListInStockProvider struct {
	db *sql.DB
}

var _ domain.SkuListInStockProvider = (*PgSkuListInStockProvider)(nil)

func NewPgSkuListInStockProvider(db *sql.DB) *PgSkuListInStockProvider {
	return &PgSkuListInStockProvider{db: db}
}

func (p *PgSkuListInStockProvider) GetSkuListInStock(ctx context.Context, sourceItemIDs []int) ([]domain.SkuListInStock, error) {
	if len(sourceItemIDs) == 0 {
		return nil, nil
	}
	query := `
        select distinct l.stock_id, si.sku
        from inventory_source_item si
        join inventory_source_stock_link l on l.source_code = si.source_code
        where si.source_item_id = any($1)
        order by l.stock_id, si.sku
    `
	rows, err := p.db.QueryContext(ctx, query, sourceItemIDs)
	if err != nil {
		return nil, errors.Wrap(err, "query sku list in stock")
	}
	defer rows.Close()

	var result []domain.SkuListInStock
	for rows.Next() {
		var stockID int
		var sku string
		if err := rows.Scan(&stockID, &sku); err != nil {
			return nil, errors.Wrap(err, "scan sku list in stock")
		}
		if n := len(result); n > 0 && result[n-1].StockID == stockID {
			result[n-1].Skus = append(result[n-1].Skus, sku)
			continue
		}
		result = append(result, domain.SkuListInStock{StockID: stockID, Skus: []string{sku}})
	}
	return result, rows.Err()
}
