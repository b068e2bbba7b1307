package repository

import (
	"context"

	"telegram-storefront-bot/internal/domain/model"
)

// ProductUpdate carries optional field changes for a partial update.
type ProductUpdate struct {
	ManufacturerID *int64
	CategoryID     *int64 // pointer-to-zero clears the category
	CostMinor      *int64
	SKU            *string
	ImageURL       *string
	Variation      *string
}

type ProductRepository interface {
	Create(ctx context.Context, tx Tx, p *model.Product) error
	// FindByID loads the product; withDetails also loads localizations,
	// manufacturer, category and stock records with their locations.
	FindByID(ctx context.Context, tx Tx, id int64, withDetails bool) (*model.Product, error)
	List(ctx context.Context, tx Tx, offset, limit int) ([]*model.Product, int, error)
	Update(ctx context.Context, tx Tx, id int64, upd ProductUpdate) (*model.Product, error)
	Delete(ctx context.Context, tx Tx, id int64) error

	UpsertLocalization(ctx context.Context, tx Tx, loc *model.Localization) error
	ListLocalizations(ctx context.Context, tx Tx, productID int64) ([]model.Localization, error)
	FindLocalization(ctx context.Context, tx Tx, productID int64, lang string) (*model.Localization, error)
}
