package postgres

import (
	"context"
	"errors"
	"fmt"

	"telegram-storefront-bot/internal/domain"
	"telegram-storefront-bot/internal/domain/model"
	"telegram-storefront-bot/internal/domain/ports/repository"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

var _ repository.LocationRepository = (*PostgresLocationRepo)(nil)

type PostgresLocationRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresLocationRepo(pool *pgxpool.Pool) *PostgresLocationRepo {
	return &PostgresLocationRepo{pool: pool}
}

const locationColumns = `id, name, address, created_at, updated_at`

func scanLocation(row pgx.Row) (*model.Location, error) {
	var l model.Location
	if err := row.Scan(&l.ID, &l.Name, &l.Address, &l.CreatedAt, &l.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (r *PostgresLocationRepo) Create(ctx context.Context, tx repository.Tx, l *model.Location) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const sql = `
INSERT INTO locations (name, address, created_at)
VALUES ($1, $2, $3)
RETURNING id, created_at, updated_at;
`
	if err := ex.QueryRow(ctx, sql, l.Name, l.Address, l.CreatedAt).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("create location: %w", err)
	}
	return nil
}

func (r *PostgresLocationRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Location, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	return scanLocation(ex.QueryRow(ctx, `SELECT `+locationColumns+` FROM locations WHERE id = $1;`, id))
}

func (r *PostgresLocationRepo) FindByName(ctx context.Context, tx repository.Tx, name string) (*model.Location, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	return scanLocation(ex.QueryRow(ctx, `SELECT `+locationColumns+` FROM locations WHERE LOWER(name) = LOWER($1);`, name))
}

func (r *PostgresLocationRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.Location, int, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := ex.QueryRow(ctx, `SELECT COUNT(1) FROM locations;`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count locations: %w", err)
	}

	rows, err := ex.Query(ctx, `SELECT `+locationColumns+` FROM locations ORDER BY name LIMIT $1 OFFSET $2;`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	var out []*model.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, l)
	}
	return out, total, rows.Err()
}

func (r *PostgresLocationRepo) Update(ctx context.Context, tx repository.Tx, id int64, upd repository.LocationUpdate) (*model.Location, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const sql = `
UPDATE locations
   SET name       = COALESCE($2, name),
       address    = COALESCE($3, address),
       updated_at = NOW()
 WHERE id = $1
RETURNING ` + locationColumns + `;
`
	l, err := scanLocation(ex.QueryRow(ctx, sql, id, upd.Name, upd.Address))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, err
	}
	return l, nil
}

func (r *PostgresLocationRepo) Delete(ctx context.Context, tx repository.Tx, id int64) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}

	// Refuse while stock rows or order items reference the location.
	var cnt int
	const guard = `
SELECT (SELECT COUNT(1) FROM product_stock WHERE location_id = $1)
     + (SELECT COUNT(1) FROM orders WHERE location_id = $1);
`
	if err := ex.QueryRow(ctx, guard, id).Scan(&cnt); err != nil {
		return fmt.Errorf("count location references: %w", err)
	}
	if cnt > 0 {
		return domain.ErrInUse
	}

	ct, err := ex.Exec(ctx, `DELETE FROM locations WHERE id = $1;`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrInUse
		}
		return fmt.Errorf("delete location: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
