package postgres

import (
	"context"
	"fmt"

	"telegram-storefront-bot/internal/domain"
	"telegram-storefront-bot/internal/domain/model"
	"telegram-storefront-bot/internal/domain/ports/repository"

	"github.com/jackc/pgx/v4/pgxpool"
)

var _ repository.CartRepository = (*PostgresCartRepo)(nil)

type PostgresCartRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresCartRepo(pool *pgxpool.Pool) *PostgresCartRepo {
	return &PostgresCartRepo{pool: pool}
}

func (r *PostgresCartRepo) AddItem(ctx context.Context, tx repository.Tx, item *model.CartItem) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const sql = `
INSERT INTO cart_items (user_id, product_id, location_id, quantity, added_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (user_id, product_id, location_id) DO UPDATE
  SET quantity = cart_items.quantity + EXCLUDED.quantity,
      added_at = EXCLUDED.added_at
RETURNING id, quantity;
`
	if err := ex.QueryRow(ctx, sql,
		item.UserID, item.ProductID, item.LocationID, item.Quantity, item.AddedAt,
	).Scan(&item.ID, &item.Quantity); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("add cart item: %w", err)
	}
	return nil
}

func (r *PostgresCartRepo) Items(ctx context.Context, tx repository.Tx, userID int64) ([]*model.CartItem, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const sql = `
SELECT id, user_id, product_id, location_id, quantity, added_at
  FROM cart_items
 WHERE user_id = $1
 ORDER BY added_at, id;
`
	rows, err := ex.Query(ctx, sql, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	defer rows.Close()

	var out []*model.CartItem
	for rows.Next() {
		var it model.CartItem
		if err := rows.Scan(&it.ID, &it.UserID, &it.ProductID, &it.LocationID, &it.Quantity, &it.AddedAt); err != nil {
			return nil, err
		}
		out = append(out, &it)
	}
	return out, rows.Err()
}

func (r *PostgresCartRepo) RemoveItem(ctx context.Context, tx repository.Tx, userID, itemID int64) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	ct, err := ex.Exec(ctx, `DELETE FROM cart_items WHERE id = $1 AND user_id = $2;`, itemID, userID)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresCartRepo) Clear(ctx context.Context, tx repository.Tx, userID int64) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	if _, err := ex.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1;`, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
