//go:build !integration

package usecase

import (
	"context"
	"errors"
	"testing"

	"telegram-storefront-bot/internal/domain"
	"telegram-storefront-bot/internal/domain/model"
	"telegram-storefront-bot/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

type stubCategoryRepo struct {
	repository.CategoryRepository
	RenameFunc func(ctx context.Context, tx repository.Tx, id int64, name string) (*model.Category, error)
}

func (s *stubCategoryRepo) Rename(ctx context.Context, tx repository.Tx, id int64, name string) (*model.Category, error) {
	return s.RenameFunc(ctx, tx, id, name)
}

type stubManufacturerRepo struct {
	repository.ManufacturerRepository
	RenameFunc func(ctx context.Context, tx repository.Tx, id int64, name string) (*model.Manufacturer, error)
}

func (s *stubManufacturerRepo) Rename(ctx context.Context, tx repository.Tx, id int64, name string) (*model.Manufacturer, error) {
	return s.RenameFunc(ctx, tx, id, name)
}

func TestCatalogRename(t *testing.T) {
	ctx := context.Background()
	log := zerolog.Nop()

	t.Run("category rename returns the updated entity", func(t *testing.T) {
		cats := &stubCategoryRepo{
			RenameFunc: func(ctx context.Context, tx repository.Tx, id int64, name string) (*model.Category, error) {
				return &model.Category{ID: id, Name: name}, nil
			},
		}
		uc := NewCatalogUseCase(cats, nil, nil, &log)

		got, err := uc.RenameCategory(ctx, 7, "Teas")
		if err != nil {
			t.Fatalf("RenameCategory: %v", err)
		}
		if got.ID != 7 || got.Name != "Teas" {
			t.Errorf("unexpected category: %+v", got)
		}
	})

	t.Run("manufacturer rename propagates not found", func(t *testing.T) {
		mfgs := &stubManufacturerRepo{
			RenameFunc: func(ctx context.Context, tx repository.Tx, id int64, name string) (*model.Manufacturer, error) {
				return nil, domain.ErrNotFound
			},
		}
		uc := NewCatalogUseCase(nil, mfgs, nil, &log)

		if _, err := uc.RenameManufacturer(ctx, 99, "Aurora"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
