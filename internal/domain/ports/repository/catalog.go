package repository

import (
	"context"

	"telegram-storefront-bot/internal/domain/model"
)

// Category, manufacturer and location repositories share the same shape:
// guarded deletes return domain.ErrInUse while products (or stock rows)
// still reference the entity.

type CategoryRepository interface {
	Create(ctx context.Context, tx Tx, c *model.Category) error
	FindByID(ctx context.Context, tx Tx, id int64) (*model.Category, error)
	FindByName(ctx context.Context, tx Tx, name string) (*model.Category, error)
	List(ctx context.Context, tx Tx, offset, limit int) ([]*model.Category, int, error)
	Rename(ctx context.Context, tx Tx, id int64, name string) (*model.Category, error)
	Delete(ctx context.Context, tx Tx, id int64) error
}

type ManufacturerRepository interface {
	Create(ctx context.Context, tx Tx, m *model.Manufacturer) error
	FindByID(ctx context.Context, tx Tx, id int64) (*model.Manufacturer, error)
	FindByName(ctx context.Context, tx Tx, name string) (*model.Manufacturer, error)
	List(ctx context.Context, tx Tx, offset, limit int) ([]*model.Manufacturer, int, error)
	Rename(ctx context.Context, tx Tx, id int64, name string) (*model.Manufacturer, error)
	Delete(ctx context.Context, tx Tx, id int64) error
}

// LocationUpdate carries optional field changes; nil means "leave as is".
// An empty string clears the address.
type LocationUpdate struct {
	Name    *string
	Address *string
}

type LocationRepository interface {
	Create(ctx context.Context, tx Tx, l *model.Location) error
	FindByID(ctx context.Context, tx Tx, id int64) (*model.Location, error)
	FindByName(ctx context.Context, tx Tx, name string) (*model.Location, error)
	List(ctx context.Context, tx Tx, offset, limit int) ([]*model.Location, int, error)
	Update(ctx context.Context, tx Tx, id int64, upd LocationUpdate) (*model.Location, error)
	Delete(ctx context.Context, tx Tx, id int64) error
}
