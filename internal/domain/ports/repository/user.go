package repository

import (
	"context"

	"telegram-storefront-bot/internal/domain/model"
)

// UserFilter narrows List and Count to a subset of users.
type UserFilter string

const (
	UsersAll     UserFilter = "all"
	UsersActive  UserFilter = "active"
	UsersBlocked UserFilter = "blocked"
)

type UserRepository interface {
	// Save upserts by telegram ID and backfills u.ID on insert.
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByTelegramID(ctx context.Context, tx Tx, tgID int64) (*model.User, error)
	FindByID(ctx context.Context, tx Tx, id int64) (*model.User, error)
	List(ctx context.Context, tx Tx, filter UserFilter, offset, limit int) ([]*model.User, int, error)
	Count(ctx context.Context, tx Tx) (int, error)
	SetBlocked(ctx context.Context, tx Tx, id int64, blocked bool) error
	SetLanguage(ctx context.Context, tx Tx, id int64, lang string) error
}
