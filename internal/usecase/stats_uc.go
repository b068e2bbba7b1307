package usecase

import (
	"context"

	"telegram-storefront-bot/internal/domain/model"
	"telegram-storefront-bot/internal/domain/ports/repository"
	"telegram-storefront-bot/internal/infra/logging"

	"github.com/rs/zerolog"
)

var _ StatsUseCase = (*statsUC)(nil)

// Stats is the aggregate snapshot shown on the dashboard and in the bot's
// admin panel.
type Stats struct {
	Users          int                       `json:"users"`
	Products       int                       `json:"products"`
	StockUnits     int                       `json:"stock_units"`
	OrdersByStatus map[model.OrderStatus]int `json:"orders_by_status"`
}

type StatsUseCase interface {
	Snapshot(ctx context.Context) (*Stats, error)
}

type statsUC struct {
	users    repository.UserRepository
	products repository.ProductRepository
	stock    repository.StockRepository
	orders   repository.OrderRepository
	log      *zerolog.Logger
}

func NewStatsUseCase(
	users repository.UserRepository,
	products repository.ProductRepository,
	stock repository.StockRepository,
	orders repository.OrderRepository,
	logger *zerolog.Logger,
) *statsUC {
	return &statsUC{users: users, products: products, stock: stock, orders: orders, log: logger}
}

func (u *statsUC) Snapshot(ctx context.Context) (*Stats, error) {
	defer logging.TraceDuration(u.log, "StatsUC.Snapshot")()

	users, err := u.users.Count(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	_, products, err := u.products.List(ctx, repository.NoTX, 0, 1)
	if err != nil {
		return nil, err
	}
	units, err := u.stock.TotalUnits(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	byStatus, err := u.orders.CountByStatus(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}

	return &Stats{
		Users:          users,
		Products:       products,
		StockUnits:     units,
		OrdersByStatus: byStatus,
	}, nil
}
