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

var _ repository.CategoryRepository = (*PostgresCategoryRepo)(nil)

type PostgresCategoryRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresCategoryRepo(pool *pgxpool.Pool) *PostgresCategoryRepo {
	return &PostgresCategoryRepo{pool: pool}
}

func (r *PostgresCategoryRepo) Create(ctx context.Context, tx repository.Tx, c *model.Category) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const sql = `
INSERT INTO categories (name, created_at)
VALUES ($1, $2)
RETURNING id, created_at, updated_at;
`
	if err := ex.QueryRow(ctx, sql, c.Name, c.CreatedAt).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (r *PostgresCategoryRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Category, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const sql = `SELECT id, name, created_at, updated_at FROM categories WHERE id = $1;`
	var c model.Category
	if err := ex.QueryRow(ctx, sql, id).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find category: %w", err)
	}
	return &c, nil
}

func (r *PostgresCategoryRepo) FindByName(ctx context.Context, tx repository.Tx, name string) (*model.Category, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const sql = `SELECT id, name, created_at, updated_at FROM categories WHERE LOWER(name) = LOWER($1);`
	var c model.Category
	if err := ex.QueryRow(ctx, sql, name).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find category by name: %w", err)
	}
	return &c, nil
}

func (r *PostgresCategoryRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.Category, int, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := ex.QueryRow(ctx, `SELECT COUNT(1) FROM categories;`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count categories: %w", err)
	}

	const sql = `SELECT id, name, created_at, updated_at FROM categories ORDER BY name LIMIT $1 OFFSET $2;`
	rows, err := ex.Query(ctx, sql, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []*model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, &c)
	}
	return out, total, rows.Err()
}

func (r *PostgresCategoryRepo) Rename(ctx context.Context, tx repository.Tx, id int64, name string) (*model.Category, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const sql = `
UPDATE categories SET name = $2, updated_at = NOW()
WHERE id = $1
RETURNING id, name, created_at, updated_at;
`
	var c model.Category
	if err := ex.QueryRow(ctx, sql, id, name).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, fmt.Errorf("rename category: %w", err)
	}
	return &c, nil
}

func (r *PostgresCategoryRepo) Delete(ctx context.Context, tx repository.Tx, id int64) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}

	// Refuse while products reference the category.
	var cnt int
	if err := ex.QueryRow(ctx, `SELECT COUNT(1) FROM products WHERE category_id = $1;`, id).Scan(&cnt); err != nil {
		return fmt.Errorf("count category products: %w", err)
	}
	if cnt > 0 {
		return domain.ErrInUse
	}

	ct, err := ex.Exec(ctx, `DELETE FROM categories WHERE id = $1;`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrInUse
		}
		return fmt.Errorf("delete category: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
