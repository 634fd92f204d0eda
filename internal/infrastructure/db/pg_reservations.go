package db

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/RodolfoDevApp/eventshop-salability-go/internal/domain"
)

// PgReservationRepository is the append-only reservation ledger.
type PgReservationRepository struct {
	db *sql.DB
}

var _ domain.ReservationRepository = (*PgReservationRepository)(nil)

func NewPgReservationRepository(db *sql.DB) *PgReservationRepository {
	return &PgReservationRepository{db: db}
}

func (r *PgReservationRepository) List(ctx context.Context) ([]domain.ReservationRow, error) {
	query := `
        select reservation_id, stock_id, sku, quantity, coalesce(metadata, '')
        from inventory_reservation
        order by reservation_id
    `
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "query reservations")
	}
	defer rows.Close()

	var result []domain.ReservationRow
	for rows.Next() {
		var row domain.ReservationRow
		if err := rows.Scan(
			&row.ReservationID,
			&row.StockID,
			&row.Sku,
			&row.Quantity,
			&row.Metadata,
		); err != nil {
			return nil, errors.Wrap(err, "scan reservation")
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *PgReservationRepository) Append(
	ctx context.Context,
	reservations ...domain.Reservation,
) error {
	if len(reservations) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
        insert into inventory_reservation (stock_id, sku, quantity, metadata)
        values ($1,$2,$3,$4)
    `)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, res := range reservations {
		metadata, err := res.Metadata.Serialize()
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, res.StockID, res.Sku, res.Quantity, metadata); err != nil {
			return errors.Wrapf(err, "insert reservation for %s", res.Sku)
		}
	}
	return tx.Commit()
}

func (r *PgReservationRepository) SumQuantity(
	ctx context.Context,
	sku string,
	stockID int,
) (decimal.Decimal, error) {
	query := `
        select coalesce(sum(quantity), 0)
        from inventory_reservation
        where sku = $1 and stock_id = $2
    `
	var sum decimal.Decimal
	if err := r.db.QueryRowContext(ctx, query, sku, stockID).Scan(&sum); err != nil {
		return decimal.Zero, errors.Wrap(err, "sum reservations")
	}
	return sum, nil
}
