package repository

import (
	"context"

	"telegram-storefront-bot/internal/domain/model"
)

type OrderRepository interface {
	// Create inserts the order and its items, backfilling IDs.
	Create(ctx context.Context, tx Tx, o *model.Order) error
	FindByID(ctx context.Context, tx Tx, id int64) (*model.Order, error)
	ListByUser(ctx context.Context, tx Tx, userID int64, offset, limit int) ([]*model.Order, int, error)
	// List returns orders newest first; pass "" to skip the status filter.
	List(ctx context.Context, tx Tx, status model.OrderStatus, offset, limit int) ([]*model.Order, int, error)
	// UpdateStatus only applies while the order is still in from, so two
	// racing transitions cannot both succeed. A lost race fails with
	// ErrInvalidStatusTransition, a missing order with ErrNotFound.
	UpdateStatus(ctx context.Context, tx Tx, id int64, from, to model.OrderStatus, comment string) error
	CountByStatus(ctx context.Context, tx Tx) (map[model.OrderStatus]int, error)
	// CountItemsByProduct guards product deletion.
	CountItemsByProduct(ctx context.Context, tx Tx, productID int64) (int, error)
}

type CartRepository interface {
	// AddItem accumulates quantity when the (user, product, location) line
	// already exists.
	AddItem(ctx context.Context, tx Tx, item *model.CartItem) error
	Items(ctx context.Context, tx Tx, userID int64) ([]*model.CartItem, error)
	RemoveItem(ctx context.Context, tx Tx, userID, itemID int64) error
	Clear(ctx context.Context, tx Tx, userID int64) error
}
