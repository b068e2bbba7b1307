package repository

import (
	"context"

	"telegram-storefront-bot/internal/domain/model"
)

type StockRepository interface {
	// Get returns the record or domain.ErrNotFound.
	Get(ctx context.Context, tx Tx, productID, locationID int64) (*model.StockRecord, error)
	// GetForUpdate locks the row (SELECT ... FOR UPDATE); only meaningful
	// inside a transaction.
	GetForUpdate(ctx context.Context, tx Tx, productID, locationID int64) (*model.StockRecord, error)

	// Adjust applies a delta under a row lock. A missing record is created
	// when delta is positive; decrementing a missing record or driving the
	// quantity negative fails with domain.ErrInsufficientStock.
	Adjust(ctx context.Context, tx Tx, productID, locationID int64, delta int) (*model.StockRecord, error)
	// Set writes an absolute non-negative quantity, creating the record if
	// needed.
	Set(ctx context.Context, tx Tx, productID, locationID int64, quantity int) (*model.StockRecord, error)

	ListByProduct(ctx context.Context, tx Tx, productID int64) ([]model.StockRecord, error)
	TotalUnits(ctx context.Context, tx Tx) (int, error)

	// Shop-front reads: only rows with quantity > 0 count.
	LocationsWithStock(ctx context.Context, tx Tx) ([]*model.Location, error)
	ManufacturersByLocation(ctx context.Context, tx Tx, locationID int64) ([]*model.Manufacturer, error)
	ProductsByManufacturerAtLocation(ctx context.Context, tx Tx, manufacturerID, locationID int64) ([]*model.Product, error)
}
