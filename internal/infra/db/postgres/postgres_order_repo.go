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

var _ repository.OrderRepository = (*PostgresOrderRepo)(nil)

type PostgresOrderRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresOrderRepo(pool *pgxpool.Pool) *PostgresOrderRepo {
	return &PostgresOrderRepo{pool: pool}
}

const orderColumns = `id, reference, user_id, location_id, status, total_minor, comment, created_at, updated_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(&o.ID, &o.Reference, &o.UserID, &o.LocationID, &o.Status,
		&o.TotalMinor, &o.Comment, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *PostgresOrderRepo) Create(ctx context.Context, tx repository.Tx, o *model.Order) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const sql = `
INSERT INTO orders (reference, user_id, location_id, status, total_minor, comment, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, created_at, updated_at;
`
	if err := ex.QueryRow(ctx, sql,
		o.Reference, o.UserID, o.LocationID, o.Status, o.TotalMinor, o.Comment, o.CreatedAt,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		if isForeignKeyViolation(err) {
			return domain.ErrInvalidArgument
		}
		return fmt.Errorf("create order: %w", err)
	}

	const itemSQL = `
INSERT INTO order_items (order_id, product_id, location_id, quantity, unit_price_minor)
VALUES ($1, $2, $3, $4, $5)
RETURNING id;
`
	for i := range o.Items {
		it := &o.Items[i]
		it.OrderID = o.ID
		if err := ex.QueryRow(ctx, itemSQL, o.ID, it.ProductID, it.LocationID, it.Quantity, it.UnitPriceMinor).Scan(&it.ID); err != nil {
			return fmt.Errorf("create order item: %w", err)
		}
	}
	return nil
}

func (r *PostgresOrderRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Order, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	o, err := scanOrder(ex.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1;`, id))
	if err != nil {
		return nil, err
	}
	if o.Items, err = r.loadItems(ctx, ex, id); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *PostgresOrderRepo) loadItems(ctx context.Context, ex executor, orderID int64) ([]model.OrderItem, error) {
	const sql = `
SELECT i.id, i.order_id, i.product_id, i.location_id, i.quantity, i.unit_price_minor
  FROM order_items i
 WHERE i.order_id = $1
 ORDER BY i.id;
`
	rows, err := ex.Query(ctx, sql, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	var out []model.OrderItem
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.LocationID, &it.Quantity, &it.UnitPriceMinor); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *PostgresOrderRepo) ListByUser(ctx context.Context, tx repository.Tx, userID int64, offset, limit int) ([]*model.Order, int, error) {
	return r.list(ctx, tx, `user_id = $1`, []interface{}{userID}, offset, limit)
}

// List returns orders newest first. An empty status skips the filter.
func (r *PostgresOrderRepo) List(ctx context.Context, tx repository.Tx, status model.OrderStatus, offset, limit int) ([]*model.Order, int, error) {
	if status == "" {
		return r.list(ctx, tx, `TRUE`, nil, offset, limit)
	}
	return r.list(ctx, tx, `status = $1`, []interface{}{status}, offset, limit)
}

func (r *PostgresOrderRepo) list(ctx context.Context, tx repository.Tx, where string, args []interface{}, offset, limit int) ([]*model.Order, int, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := ex.QueryRow(ctx, `SELECT COUNT(1) FROM orders WHERE `+where+`;`, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	sql := fmt.Sprintf(`SELECT %s FROM orders WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d;`,
		orderColumns, where, len(args)+1, len(args)+2)
	rows, err := ex.Query(ctx, sql, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []*model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	for _, o := range out {
		if o.Items, err = r.loadItems(ctx, ex, o.ID); err != nil {
			return nil, 0, err
		}
	}
	return out, total, nil
}

// UpdateStatus applies the transition only while the row still holds from.
// A concurrent transition that commits first makes the guard miss, which
// distinguishes a lost race from a missing order.
func (r *PostgresOrderRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id int64, from, to model.OrderStatus, comment string) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const sql = `
UPDATE orders
   SET status = $3,
       comment = CASE WHEN $4 = '' THEN comment ELSE $4 END,
       updated_at = NOW()
 WHERE id = $1 AND status = $2;
`
	ct, err := ex.Exec(ctx, sql, id, from, to, comment)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		var exists bool
		if err := ex.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1);`, id).Scan(&exists); err != nil {
			return fmt.Errorf("update order status: %w", err)
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrInvalidStatusTransition
	}
	return nil
}

func (r *PostgresOrderRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.OrderStatus]int, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, `SELECT status, COUNT(1) FROM orders GROUP BY status;`)
	if err != nil {
		return nil, fmt.Errorf("count orders by status: %w", err)
	}
	defer rows.Close()

	out := make(map[model.OrderStatus]int)
	for rows.Next() {
		var st model.OrderStatus
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, err
		}
		out[st] = n
	}
	return out, rows.Err()
}

func (r *PostgresOrderRepo) CountItemsByProduct(ctx context.Context, tx repository.Tx, productID int64) (int, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	var n int
	if err := ex.QueryRow(ctx, `SELECT COUNT(1) FROM order_items WHERE product_id = $1;`, productID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count order items by product: %w", err)
	}
	return n, nil
}
