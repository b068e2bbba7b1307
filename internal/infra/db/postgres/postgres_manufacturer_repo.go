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

var _ repository.ManufacturerRepository = (*PostgresManufacturerRepo)(nil)

type PostgresManufacturerRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresManufacturerRepo(pool *pgxpool.Pool) *PostgresManufacturerRepo {
	return &PostgresManufacturerRepo{pool: pool}
}

func (r *PostgresManufacturerRepo) Create(ctx context.Context, tx repository.Tx, m *model.Manufacturer) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const sql = `
INSERT INTO manufacturers (name, created_at)
VALUES ($1, $2)
RETURNING id, created_at, updated_at;
`
	if err := ex.QueryRow(ctx, sql, m.Name, m.CreatedAt).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("create manufacturer: %w", err)
	}
	return nil
}

func (r *PostgresManufacturerRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Manufacturer, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const sql = `SELECT id, name, created_at, updated_at FROM manufacturers WHERE id = $1;`
	var m model.Manufacturer
	if err := ex.QueryRow(ctx, sql, id).Scan(&m.ID, &m.Name, &m.CreatedAt, &m.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find manufacturer: %w", err)
	}
	return &m, nil
}

func (r *PostgresManufacturerRepo) FindByName(ctx context.Context, tx repository.Tx, name string) (*model.Manufacturer, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const sql = `SELECT id, name, created_at, updated_at FROM manufacturers WHERE LOWER(name) = LOWER($1);`
	var m model.Manufacturer
	if err := ex.QueryRow(ctx, sql, name).Scan(&m.ID, &m.Name, &m.CreatedAt, &m.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find manufacturer by name: %w", err)
	}
	return &m, nil
}

func (r *PostgresManufacturerRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.Manufacturer, int, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := ex.QueryRow(ctx, `SELECT COUNT(1) FROM manufacturers;`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count manufacturers: %w", err)
	}

	const sql = `SELECT id, name, created_at, updated_at FROM manufacturers ORDER BY name LIMIT $1 OFFSET $2;`
	rows, err := ex.Query(ctx, sql, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list manufacturers: %w", err)
	}
	defer rows.Close()

	var out []*model.Manufacturer
	for rows.Next() {
		var m model.Manufacturer
		if err := rows.Scan(&m.ID, &m.Name, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, &m)
	}
	return out, total, rows.Err()
}

func (r *PostgresManufacturerRepo) Rename(ctx context.Context, tx repository.Tx, id int64, name string) (*model.Manufacturer, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const sql = `
UPDATE manufacturers SET name = $2, updated_at = NOW()
WHERE id = $1
RETURNING id, name, created_at, updated_at;
`
	var m model.Manufacturer
	if err := ex.QueryRow(ctx, sql, id, name).Scan(&m.ID, &m.Name, &m.CreatedAt, &m.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, fmt.Errorf("rename manufacturer: %w", err)
	}
	return &m, nil
}

func (r *PostgresManufacturerRepo) Delete(ctx context.Context, tx repository.Tx, id int64) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}

	var cnt int
	if err := ex.QueryRow(ctx, `SELECT COUNT(1) FROM products WHERE manufacturer_id = $1;`, id).Scan(&cnt); err != nil {
		return fmt.Errorf("count manufacturer products: %w", err)
	}
	if cnt > 0 {
		return domain.ErrInUse
	}

	ct, err := ex.Exec(ctx, `DELETE FROM manufacturers WHERE id = $1;`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrInUse
		}
		return fmt.Errorf("delete manufacturer: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
