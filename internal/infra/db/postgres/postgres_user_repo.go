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

var _ repository.UserRepository = (*PostgresUserRepo)(nil)

type PostgresUserRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresUserRepo(pool *pgxpool.Pool) *PostgresUserRepo {
	return &PostgresUserRepo{pool: pool}
}

const userColumns = `id, telegram_id, username, first_name, language, is_admin, is_blocked, registered_at, last_active_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.TelegramID, &u.Username, &u.FirstName, &u.Language,
		&u.IsAdmin, &u.IsBlocked, &u.RegisteredAt, &u.LastActiveAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *PostgresUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const sql = `
INSERT INTO users (telegram_id, username, first_name, language, is_admin, is_blocked, registered_at, last_active_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (telegram_id) DO UPDATE
  SET username       = EXCLUDED.username,
      first_name     = EXCLUDED.first_name,
      language       = EXCLUDED.language,
      last_active_at = EXCLUDED.last_active_at
RETURNING id;
`
	if err := ex.QueryRow(ctx, sql,
		u.TelegramID, u.Username, u.FirstName, u.Language,
		u.IsAdmin, u.IsBlocked, u.RegisteredAt, u.LastActiveAt,
	).Scan(&u.ID); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (r *PostgresUserRepo) FindByTelegramID(ctx context.Context, tx repository.Tx, tgID int64) (*model.User, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	sql := `SELECT ` + userColumns + ` FROM users WHERE telegram_id = $1;`
	return scanUser(ex.QueryRow(ctx, sql, tgID))
}

func (r *PostgresUserRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.User, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	sql := `SELECT ` + userColumns + ` FROM users WHERE id = $1;`
	return scanUser(ex.QueryRow(ctx, sql, id))
}

func (r *PostgresUserRepo) List(ctx context.Context, tx repository.Tx, filter repository.UserFilter, offset, limit int) ([]*model.User, int, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, 0, err
	}

	where := ""
	switch filter {
	case repository.UsersActive:
		where = ` WHERE is_blocked = false`
	case repository.UsersBlocked:
		where = ` WHERE is_blocked = true`
	}

	var total int
	if err := ex.QueryRow(ctx, `SELECT COUNT(1) FROM users`+where+`;`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	sql := `SELECT ` + userColumns + ` FROM users` + where + ` ORDER BY id LIMIT $1 OFFSET $2;`
	rows, err := ex.Query(ctx, sql, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []*model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

func (r *PostgresUserRepo) Count(ctx context.Context, tx repository.Tx) (int, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	var n int
	if err := ex.QueryRow(ctx, `SELECT COUNT(1) FROM users;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (r *PostgresUserRepo) SetBlocked(ctx context.Context, tx repository.Tx, id int64, blocked bool) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	ct, err := ex.Exec(ctx, `UPDATE users SET is_blocked = $2 WHERE id = $1;`, id, blocked)
	if err != nil {
		return fmt.Errorf("set blocked: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresUserRepo) SetLanguage(ctx context.Context, tx repository.Tx, id int64, lang string) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	ct, err := ex.Exec(ctx, `UPDATE users SET language = $2 WHERE id = $1;`, id, lang)
	if err != nil {
		return fmt.Errorf("set language: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
