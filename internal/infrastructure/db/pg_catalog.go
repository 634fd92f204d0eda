package db

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/RodolfoDevApp/eventshop-salability-go/internal/domain"
)

type PgProductRepository struct {
	db *sql.DB
}

var _ domain.ProductRepository = (*PgProductRepository)(nil)

func NewPgProductRepository(db *sql.DB) *PgProductRepository {
	return &PgProductRepository{db: db}
}

func (r *PgProductRepository) GetIDBySku(
	ctx context.Context,
	sku string,
) (int, error) {
	var id int
	err := r.db.QueryRowContext(ctx, `select entity_id from catalog_product_entity where sku = $1`, sku).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, errors.Wrapf(domain.ErrNoSuchEntity, "sku %s", sku)
	}
	if err != nil {
		return 0, errors.Wrapf(err, "get product id for %s", sku)
	}
	return id, nil
}

// GetParentIDsByChildIDs returns the configurable parents of the given products.
func (r *PgProductRepository) GetParentIDsByChildIDs(
	ctx context.Context,
	childIDs []int,
) ([]int, error) {
	if len(childIDs) == 0 {
		return nil, nil
	}
	query := `
        select distinct parent_id
        from catalog_product_super_link
        where product_id = any($1)
        order by parent_id
    `
	rows, err := r.db.QueryContext(ctx, query, childIDs)
	if err != nil {
		return nil, errors.Wrap(err, "query parent products")
	}
	defer rows.Close()

	var result []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "scan parent product")
		}
		result = append(result, id)
	}
	return result, rows.Err()
}
