package usecase

import (
	"context"

	"telegram-storefront-bot/internal/domain/model"
	"telegram-storefront-bot/internal/domain/ports/repository"
	"telegram-storefront-bot/internal/infra/logging"

	"github.com/rs/zerolog"
)

var _ CatalogUseCase = (*catalogUC)(nil)

// CatalogUseCase manages the reference entities products hang off of:
// categories, manufacturers and pickup locations. Deletes are guarded so a
// referenced record cannot disappear under live products or orders.
type CatalogUseCase interface {
	CreateCategory(ctx context.Context, name string) (*model.Category, error)
	ListCategories(ctx context.Context, offset, limit int) ([]*model.Category, int, error)
	RenameCategory(ctx context.Context, id int64, name string) (*model.Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	CreateManufacturer(ctx context.Context, name string) (*model.Manufacturer, error)
	ListManufacturers(ctx context.Context, offset, limit int) ([]*model.Manufacturer, int, error)
	RenameManufacturer(ctx context.Context, id int64, name string) (*model.Manufacturer, error)
	DeleteManufacturer(ctx context.Context, id int64) error

	CreateLocation(ctx context.Context, name, address string) (*model.Location, error)
	GetLocation(ctx context.Context, id int64) (*model.Location, error)
	ListLocations(ctx context.Context, offset, limit int) ([]*model.Location, int, error)
	UpdateLocation(ctx context.Context, id int64, upd repository.LocationUpdate) (*model.Location, error)
	DeleteLocation(ctx context.Context, id int64) error
}

type catalogUC struct {
	categories    repository.CategoryRepository
	manufacturers repository.ManufacturerRepository
	locations     repository.LocationRepository
	log           *zerolog.Logger
}

func NewCatalogUseCase(
	categories repository.CategoryRepository,
	manufacturers repository.ManufacturerRepository,
	locations repository.LocationRepository,
	logger *zerolog.Logger,
) *catalogUC {
	return &catalogUC{
		categories:    categories,
		manufacturers: manufacturers,
		locations:     locations,
		log:           logger,
	}
}

func (c *catalogUC) CreateCategory(ctx context.Context, name string) (*model.Category, error) {
	defer logging.TraceDuration(c.log, "CatalogUC.CreateCategory")()
	cat, err := model.NewCategory(name)
	if err != nil {
		return nil, err
	}
	if err := c.categories.Create(ctx, repository.NoTX, cat); err != nil {
		return nil, err
	}
	c.log.Info().Int64("category_id", cat.ID).Str("name", cat.Name).Msg("category created")
	return cat, nil
}

func (c *catalogUC) ListCategories(ctx context.Context, offset, limit int) ([]*model.Category, int, error) {
	defer logging.TraceDuration(c.log, "CatalogUC.ListCategories")()
	return c.categories.List(ctx, repository.NoTX, offset, limit)
}

func (c *catalogUC) RenameCategory(ctx context.Context, id int64, name string) (*model.Category, error) {
	defer logging.TraceDuration(c.log, "CatalogUC.RenameCategory")()
	return c.categories.Rename(ctx, repository.NoTX, id, name)
}

func (c *catalogUC) DeleteCategory(ctx context.Context, id int64) error {
	defer logging.TraceDuration(c.log, "CatalogUC.DeleteCategory")()
	if err := c.categories.Delete(ctx, repository.NoTX, id); err != nil {
		return err
	}
	c.log.Info().Int64("category_id", id).Msg("category deleted")
	return nil
}

func (c *catalogUC) CreateManufacturer(ctx context.Context, name string) (*model.Manufacturer, error) {
	defer logging.TraceDuration(c.log, "CatalogUC.CreateManufacturer")()
	m, err := model.NewManufacturer(name)
	if err != nil {
		return nil, err
	}
	if err := c.manufacturers.Create(ctx, repository.NoTX, m); err != nil {
		return nil, err
	}
	c.log.Info().Int64("manufacturer_id", m.ID).Str("name", m.Name).Msg("manufacturer created")
	return m, nil
}

func (c *catalogUC) ListManufacturers(ctx context.Context, offset, limit int) ([]*model.Manufacturer, int, error) {
	defer logging.TraceDuration(c.log, "CatalogUC.ListManufacturers")()
	return c.manufacturers.List(ctx, repository.NoTX, offset, limit)
}

func (c *catalogUC) RenameManufacturer(ctx context.Context, id int64, name string) (*model.Manufacturer, error) {
	defer logging.TraceDuration(c.log, "CatalogUC.RenameManufacturer")()
	return c.manufacturers.Rename(ctx, repository.NoTX, id, name)
}

func (c *catalogUC) DeleteManufacturer(ctx context.Context, id int64) error {
	defer logging.TraceDuration(c.log, "CatalogUC.DeleteManufacturer")()
	if err := c.manufacturers.Delete(ctx, repository.NoTX, id); err != nil {
		return err
	}
	c.log.Info().Int64("manufacturer_id", id).Msg("manufacturer deleted")
	return nil
}

func (c *catalogUC) CreateLocation(ctx context.Context, name, address string) (*model.Location, error) {
	defer logging.TraceDuration(c.log, "CatalogUC.CreateLocation")()
	l, err := model.NewLocation(name, address)
	if err != nil {
		return nil, err
	}
	if err := c.locations.Create(ctx, repository.NoTX, l); err != nil {
		return nil, err
	}
	c.log.Info().Int64("location_id", l.ID).Str("name", l.Name).Msg("location created")
	return l, nil
}

func (c *catalogUC) GetLocation(ctx context.Context, id int64) (*model.Location, error) {
	defer logging.TraceDuration(c.log, "CatalogUC.GetLocation")()
	return c.locations.FindByID(ctx, repository.NoTX, id)
}

func (c *catalogUC) ListLocations(ctx context.Context, offset, limit int) ([]*model.Location, int, error) {
	defer logging.TraceDuration(c.log, "CatalogUC.ListLocations")()
	return c.locations.List(ctx, repository.NoTX, offset, limit)
}

func (c *catalogUC) UpdateLocation(ctx context.Context, id int64, upd repository.LocationUpdate) (*model.Location, error) {
	defer logging.TraceDuration(c.log, "CatalogUC.UpdateLocation")()
	return c.locations.Update(ctx, repository.NoTX, id, upd)
}

func (c *catalogUC) DeleteLocation(ctx context.Context, id int64) error {
	defer logging.TraceDuration(c.log, "CatalogUC.DeleteLocation")()
	if err := c.locations.Delete(ctx, repository.NoTX, id); err != nil {
		return err
	}
	c.log.Info().Int64("location_id", id).Msg("location deleted")
	return nil
}
