package usecase

import (
	"context"

	"telegram-storefront-bot/internal/domain/model"
	"telegram-storefront-bot/internal/domain/ports/repository"
	"telegram-storefront-bot/internal/infra/logging"

	"github.com/rs/zerolog"
)

var _ ProductUseCase = (*productUC)(nil)

// ProductUseCase manages the product catalog and its per-language texts.
type ProductUseCase interface {
	Create(ctx context.Context, p *model.Product) (*model.Product, error)
	Get(ctx context.Context, id int64) (*model.Product, error)
	// GetDetailed loads manufacturer, category, localizations and stock.
	GetDetailed(ctx context.Context, id int64) (*model.Product, error)
	List(ctx context.Context, offset, limit int) ([]*model.Product, int, error)
	Update(ctx context.Context, id int64, upd repository.ProductUpdate) (*model.Product, error)
	Delete(ctx context.Context, id int64) error

	SetLocalization(ctx context.Context, productID int64, lang, name, description string) error
	// LocalizedName resolves the product name for lang, falling back to
	// whatever localization exists when the language has none.
	LocalizedName(ctx context.Context, productID int64, lang string) (string, error)
}

type productUC struct {
	products repository.ProductRepository
	log      *zerolog.Logger
}

func NewProductUseCase(products repository.ProductRepository, logger *zerolog.Logger) *productUC {
	return &productUC{products: products, log: logger}
}

func (u *productUC) Create(ctx context.Context, p *model.Product) (*model.Product, error) {
	defer logging.TraceDuration(u.log, "ProductUC.Create")()
	if err := u.products.Create(ctx, repository.NoTX, p); err != nil {
		return nil, err
	}
	for i := range p.Localizations {
		p.Localizations[i].ProductID = p.ID
		if err := u.products.UpsertLocalization(ctx, repository.NoTX, &p.Localizations[i]); err != nil {
			return nil, err
		}
	}
	u.log.Info().Int64("product_id", p.ID).Str("sku", p.SKU).Msg("product created")
	return p, nil
}

func (u *productUC) Get(ctx context.Context, id int64) (*model.Product, error) {
	defer logging.TraceDuration(u.log, "ProductUC.Get")()
	return u.products.FindByID(ctx, repository.NoTX, id, false)
}

func (u *productUC) GetDetailed(ctx context.Context, id int64) (*model.Product, error) {
	defer logging.TraceDuration(u.log, "ProductUC.GetDetailed")()
	return u.products.FindByID(ctx, repository.NoTX, id, true)
}

func (u *productUC) List(ctx context.Context, offset, limit int) ([]*model.Product, int, error) {
	defer logging.TraceDuration(u.log, "ProductUC.List")()
	return u.products.List(ctx, repository.NoTX, offset, limit)
}

func (u *productUC) Update(ctx context.Context, id int64, upd repository.ProductUpdate) (*model.Product, error) {
	defer logging.TraceDuration(u.log, "ProductUC.Update")()
	p, err := u.products.Update(ctx, repository.NoTX, id, upd)
	if err != nil {
		return nil, err
	}
	u.log.Info().Int64("product_id", id).Msg("product updated")
	return p, nil
}

func (u *productUC) Delete(ctx context.Context, id int64) error {
	defer logging.TraceDuration(u.log, "ProductUC.Delete")()
	if err := u.products.Delete(ctx, repository.NoTX, id); err != nil {
		return err
	}
	u.log.Info().Int64("product_id", id).Msg("product deleted")
	return nil
}

func (u *productUC) SetLocalization(ctx context.Context, productID int64, lang, name, description string) error {
	defer logging.TraceDuration(u.log, "ProductUC.SetLocalization")()
	loc, err := model.NewLocalization(productID, lang, name, description)
	if err != nil {
		return err
	}
	return u.products.UpsertLocalization(ctx, repository.NoTX, loc)
}

func (u *productUC) LocalizedName(ctx context.Context, productID int64, lang string) (string, error) {
	defer logging.TraceDuration(u.log, "ProductUC.LocalizedName")()
	p, err := u.products.FindByID(ctx, repository.NoTX, productID, true)
	if err != nil {
		return "", err
	}
	return p.LocalizedName(lang), nil
}
