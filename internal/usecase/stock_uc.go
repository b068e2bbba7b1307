package usecase

import (
	"context"

	"telegram-storefront-bot/internal/domain/model"
	"telegram-storefront-bot/internal/domain/ports/repository"
	"telegram-storefront-bot/internal/infra/logging"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

var _ StockUseCase = (*stockUC)(nil)

// StockUseCase owns per-location stock levels and the storefront browse
// queries derived from them.
type StockUseCase interface {
	// Adjust applies a signed delta to a stock record inside its own
	// transaction. The actor is recorded for the audit trail.
	Adjust(ctx context.Context, actorTgID, productID, locationID int64, delta int) (*model.StockRecord, error)
	// Set overwrites the on-hand quantity.
	Set(ctx context.Context, actorTgID, productID, locationID int64, quantity int) (*model.StockRecord, error)
	Get(ctx context.Context, productID, locationID int64) (*model.StockRecord, error)
	ListByProduct(ctx context.Context, productID int64) ([]model.StockRecord, error)
	TotalUnits(ctx context.Context) (int, error)

	LocationsWithStock(ctx context.Context) ([]*model.Location, error)
	ManufacturersByLocation(ctx context.Context, locationID int64) ([]*model.Manufacturer, error)
	ProductsByManufacturerAtLocation(ctx context.Context, manufacturerID, locationID int64) ([]*model.Product, error)
}

type stockUC struct {
	stock repository.StockRepository
	tm    repository.TransactionManager
	log   *zerolog.Logger
}

func NewStockUseCase(stock repository.StockRepository, tm repository.TransactionManager, logger *zerolog.Logger) *stockUC {
	return &stockUC{stock: stock, tm: tm, log: logger}
}

func (u *stockUC) Adjust(ctx context.Context, actorTgID, productID, locationID int64, delta int) (*model.StockRecord, error) {
	defer logging.TraceDuration(u.log, "StockUC.Adjust")()

	var rec *model.StockRecord
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		var err error
		rec, err = u.stock.Adjust(ctx, tx, productID, locationID, delta)
		return err
	})
	if err != nil {
		u.log.Warn().Err(err).
			Int64("actor_tg_id", actorTgID).
			Int64("product_id", productID).
			Int64("location_id", locationID).
			Int("delta", delta).
			Msg("stock adjustment failed")
		return nil, err
	}
	u.log.Info().
		Int64("actor_tg_id", actorTgID).
		Int64("product_id", productID).
		Int64("location_id", locationID).
		Int("delta", delta).
		Int("quantity", rec.Quantity).
		Msg("stock adjusted")
	return rec, nil
}

func (u *stockUC) Set(ctx context.Context, actorTgID, productID, locationID int64, quantity int) (*model.StockRecord, error) {
	defer logging.TraceDuration(u.log, "StockUC.Set")()

	var rec *model.StockRecord
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		var err error
		rec, err = u.stock.Set(ctx, tx, productID, locationID, quantity)
		return err
	})
	if err != nil {
		return nil, err
	}
	u.log.Info().
		Int64("actor_tg_id", actorTgID).
		Int64("product_id", productID).
		Int64("location_id", locationID).
		Int("quantity", quantity).
		Msg("stock set")
	return rec, nil
}

func (u *stockUC) Get(ctx context.Context, productID, locationID int64) (*model.StockRecord, error) {
	defer logging.TraceDuration(u.log, "StockUC.Get")()
	return u.stock.Get(ctx, repository.NoTX, productID, locationID)
}

func (u *stockUC) ListByProduct(ctx context.Context, productID int64) ([]model.StockRecord, error) {
	defer logging.TraceDuration(u.log, "StockUC.ListByProduct")()
	return u.stock.ListByProduct(ctx, repository.NoTX, productID)
}

func (u *stockUC) TotalUnits(ctx context.Context) (int, error) {
	defer logging.TraceDuration(u.log, "StockUC.TotalUnits")()
	return u.stock.TotalUnits(ctx, repository.NoTX)
}

func (u *stockUC) LocationsWithStock(ctx context.Context) ([]*model.Location, error) {
	defer logging.TraceDuration(u.log, "StockUC.LocationsWithStock")()
	return u.stock.LocationsWithStock(ctx, repository.NoTX)
}

func (u *stockUC) ManufacturersByLocation(ctx context.Context, locationID int64) ([]*model.Manufacturer, error) {
	defer logging.TraceDuration(u.log, "StockUC.ManufacturersByLocation")()
	return u.stock.ManufacturersByLocation(ctx, repository.NoTX, locationID)
}

func (u *stockUC) ProductsByManufacturerAtLocation(ctx context.Context, manufacturerID, locationID int64) ([]*model.Product, error) {
	defer logging.TraceDuration(u.log, "StockUC.ProductsByManufacturerAtLocation")()
	return u.stock.ProductsByManufacturerAtLocation(ctx, repository.NoTX, manufacturerID, locationID)
}
