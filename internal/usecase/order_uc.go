package usecase

import (
	"context"
	"time"

	"telegram-storefront-bot/internal/domain"
	"telegram-storefront-bot/internal/domain/model"
	"telegram-storefront-bot/internal/domain/ports/repository"
	"telegram-storefront-bot/internal/infra/logging"
	"telegram-storefront-bot/internal/infra/metrics"
	red "telegram-storefront-bot/internal/infra/redis"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

const checkoutLockTTL = 30 * time.Second

var _ OrderUseCase = (*orderUC)(nil)

// OrderUseCase owns the cart and the order lifecycle. Checkout reserves
// stock for every cart line inside one transaction, so an order either
// claims all its units or none of them.
type OrderUseCase interface {
	AddToCart(ctx context.Context, userID, productID, locationID int64, quantity int) error
	Cart(ctx context.Context, userID int64) ([]*model.CartItem, error)
	RemoveCartItem(ctx context.Context, userID, itemID int64) error
	ClearCart(ctx context.Context, userID int64) error

	Checkout(ctx context.Context, userID int64) (*model.Order, error)
	Get(ctx context.Context, orderID int64) (*model.Order, error)
	ListByUser(ctx context.Context, userID int64, offset, limit int) ([]*model.Order, int, error)
	List(ctx context.Context, status model.OrderStatus, offset, limit int) ([]*model.Order, int, error)
	// UpdateStatus enforces the status machine and releases reserved stock
	// when the order moves to a terminal releasing state.
	UpdateStatus(ctx context.Context, orderID int64, to model.OrderStatus, comment string) (*model.Order, error)
	CountByStatus(ctx context.Context) (map[model.OrderStatus]int, error)
	// ReapStale cancels pending orders older than maxAge and returns how
	// many it touched.
	ReapStale(ctx context.Context, maxAge time.Duration) (int, error)
}

type orderUC struct {
	orders   repository.OrderRepository
	cart     repository.CartRepository
	stock    repository.StockRepository
	products repository.ProductRepository
	tm       repository.TransactionManager
	locker   red.Locker
	log      *zerolog.Logger
}

func NewOrderUseCase(
	orders repository.OrderRepository,
	cart repository.CartRepository,
	stock repository.StockRepository,
	products repository.ProductRepository,
	tm repository.TransactionManager,
	locker red.Locker,
	logger *zerolog.Logger,
) *orderUC {
	return &orderUC{
		orders:   orders,
		cart:     cart,
		stock:    stock,
		products: products,
		tm:       tm,
		locker:   locker,
		log:      logger,
	}
}

func (u *orderUC) AddToCart(ctx context.Context, userID, productID, locationID int64, quantity int) error {
	defer logging.TraceDuration(u.log, "OrderUC.AddToCart")()
	if quantity <= 0 {
		return domain.ErrInvalidArgument
	}

	// Advisory availability check. The checkout transaction is the
	// authoritative one; this only keeps obviously oversized requests out
	// of the cart.
	rec, err := u.stock.Get(ctx, repository.NoTX, productID, locationID)
	if err != nil {
		return err
	}
	if rec.Quantity < quantity {
		return domain.ErrInsufficientStock
	}

	item, err := model.NewCartItem(userID, productID, locationID, quantity)
	if err != nil {
		return err
	}
	return u.cart.AddItem(ctx, repository.NoTX, item)
}

func (u *orderUC) Cart(ctx context.Context, userID int64) ([]*model.CartItem, error) {
	defer logging.TraceDuration(u.log, "OrderUC.Cart")()
	return u.cart.Items(ctx, repository.NoTX, userID)
}

func (u *orderUC) RemoveCartItem(ctx context.Context, userID, itemID int64) error {
	defer logging.TraceDuration(u.log, "OrderUC.RemoveCartItem")()
	return u.cart.RemoveItem(ctx, repository.NoTX, userID, itemID)
}

func (u *orderUC) ClearCart(ctx context.Context, userID int64) error {
	defer logging.TraceDuration(u.log, "OrderUC.ClearCart")()
	return u.cart.Clear(ctx, repository.NoTX, userID)
}

func (u *orderUC) Checkout(ctx context.Context, userID int64) (*model.Order, error) {
	defer logging.TraceDuration(u.log, "OrderUC.Checkout")()

	// One checkout at a time per user. A double-tapped button must not
	// reserve the same cart twice.
	lockKey := red.CheckoutKey(userID)
	token, err := u.locker.TryLock(ctx, lockKey, checkoutLockTTL)
	if err != nil {
		return nil, err
	}
	defer u.locker.Unlock(ctx, lockKey, token)

	var order *model.Order
	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		items, err := u.cart.Items(ctx, tx, userID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return domain.ErrEmptyCart
		}

		orderItems := make([]model.OrderItem, 0, len(items))
		for _, it := range items {
			// Row-locked decrement; fails the whole checkout when any
			// line cannot be covered.
			if _, err := u.stock.Adjust(ctx, tx, it.ProductID, it.LocationID, -it.Quantity); err != nil {
				return err
			}
			p, err := u.products.FindByID(ctx, tx, it.ProductID, false)
			if err != nil {
				return err
			}
			orderItems = append(orderItems, model.OrderItem{
				ProductID:      it.ProductID,
				LocationID:     it.LocationID,
				Quantity:       it.Quantity,
				UnitPriceMinor: p.CostMinor,
			})
		}

		// The order header keeps the first line's location for display;
		// stock accounting runs per item.
		o, err := model.NewOrder(userID, items[0].LocationID, orderItems)
		if err != nil {
			return err
		}
		if err := u.orders.Create(ctx, tx, o); err != nil {
			return err
		}
		if err := u.cart.Clear(ctx, tx, userID); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		u.log.Warn().Err(err).Int64("user_id", userID).Msg("checkout failed")
		return nil, err
	}

	metrics.IncOrder(string(model.OrderStatusPending))
	metrics.ObserveOrderValue(order.TotalMinor)
	u.log.Info().
		Int64("user_id", userID).
		Int64("order_id", order.ID).
		Str("reference", order.Reference).
		Int64("total_minor", order.TotalMinor).
		Msg("order created")
	return order, nil
}

func (u *orderUC) Get(ctx context.Context, orderID int64) (*model.Order, error) {
	defer logging.TraceDuration(u.log, "OrderUC.Get")()
	return u.orders.FindByID(ctx, repository.NoTX, orderID)
}

func (u *orderUC) ListByUser(ctx context.Context, userID int64, offset, limit int) ([]*model.Order, int, error) {
	defer logging.TraceDuration(u.log, "OrderUC.ListByUser")()
	return u.orders.ListByUser(ctx, repository.NoTX, userID, offset, limit)
}

func (u *orderUC) List(ctx context.Context, status model.OrderStatus, offset, limit int) ([]*model.Order, int, error) {
	defer logging.TraceDuration(u.log, "OrderUC.List")()
	return u.orders.List(ctx, repository.NoTX, status, offset, limit)
}

func (u *orderUC) UpdateStatus(ctx context.Context, orderID int64, to model.OrderStatus, comment string) (*model.Order, error) {
	defer logging.TraceDuration(u.log, "OrderUC.UpdateStatus")()

	var order *model.Order
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		o, err := u.orders.FindByID(ctx, tx, orderID)
		if err != nil {
			return err
		}
		from := o.Status
		if err := o.Transition(to); err != nil {
			return err
		}
		if to.ReleasesStock() {
			// Restore each line where it was reserved; carts may mix
			// pickup locations.
			for _, it := range o.Items {
				if _, err := u.stock.Adjust(ctx, tx, it.ProductID, it.LocationID, it.Quantity); err != nil {
					return err
				}
			}
		}
		// The status guard fails the transaction when a concurrent
		// transition won the race, rolling back the release above.
		if err := u.orders.UpdateStatus(ctx, tx, orderID, from, to, comment); err != nil {
			return err
		}
		u.log.Info().
			Int64("order_id", orderID).
			Str("from", string(from)).
			Str("to", string(to)).
			Msg("order status changed")
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.IncOrder(string(to))
	return order, nil
}

func (u *orderUC) CountByStatus(ctx context.Context) (map[model.OrderStatus]int, error) {
	defer logging.TraceDuration(u.log, "OrderUC.CountByStatus")()
	return u.orders.CountByStatus(ctx, repository.NoTX)
}

func (u *orderUC) ReapStale(ctx context.Context, maxAge time.Duration) (int, error) {
	defer logging.TraceDuration(u.log, "OrderUC.ReapStale")()

	cutoff := time.Now().Add(-maxAge)
	pending, _, err := u.orders.List(ctx, repository.NoTX, model.OrderStatusPending, 0, 500)
	if err != nil {
		return 0, err
	}

	reaped := 0
	for _, o := range pending {
		if o.CreatedAt.After(cutoff) {
			continue
		}
		if _, err := u.UpdateStatus(ctx, o.ID, model.OrderStatusCancelled, "expired"); err != nil {
			u.log.Error().Err(err).Int64("order_id", o.ID).Msg("failed to reap stale order")
			continue
		}
		reaped++
	}
	if reaped > 0 {
		metrics.AddOrdersReaped(reaped)
		u.log.Info().Int("count", reaped).Msg("stale pending orders cancelled")
	}
	return reaped, nil
}
