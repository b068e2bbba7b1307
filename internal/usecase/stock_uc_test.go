//go:build !integration

package usecase

import (
	"context"
	"errors"
	"testing"

	"telegram-storefront-bot/internal/domain"

	"github.com/rs/zerolog"
)

func newStockUC(stock *memStockRepo) *stockUC {
	log := zerolog.Nop()
	return NewStockUseCase(stock, &fakeTxManager{}, &log)
}

func TestStockAdjust(t *testing.T) {
	ctx := context.Background()

	t.Run("positive delta creates a missing record", func(t *testing.T) {
		stock := newMemStockRepo()
		uc := newStockUC(stock)

		rec, err := uc.Adjust(ctx, 99, 1, 2, 5)
		if err != nil {
			t.Fatalf("Adjust: %v", err)
		}
		if rec.Quantity != 5 {
			t.Errorf("expected quantity 5, got %d", rec.Quantity)
		}
	})

	t.Run("negative delta on a missing record fails", func(t *testing.T) {
		stock := newMemStockRepo()
		uc := newStockUC(stock)

		if _, err := uc.Adjust(ctx, 99, 1, 2, -1); !errors.Is(err, domain.ErrInsufficientStock) {
			t.Fatalf("expected ErrInsufficientStock, got %v", err)
		}
	})

	t.Run("delta below zero on hand fails and leaves the record intact", func(t *testing.T) {
		stock := newMemStockRepo()
		stock.seed(1, 2, 3)
		uc := newStockUC(stock)

		if _, err := uc.Adjust(ctx, 99, 1, 2, -4); !errors.Is(err, domain.ErrInsufficientStock) {
			t.Fatalf("expected ErrInsufficientStock, got %v", err)
		}
		rec, _ := stock.Get(ctx, nil, 1, 2)
		if rec.Quantity != 3 {
			t.Errorf("quantity should be untouched, got %d", rec.Quantity)
		}
	})

	t.Run("decrement to exactly zero is allowed", func(t *testing.T) {
		stock := newMemStockRepo()
		stock.seed(1, 2, 3)
		uc := newStockUC(stock)

		rec, err := uc.Adjust(ctx, 99, 1, 2, -3)
		if err != nil {
			t.Fatalf("Adjust: %v", err)
		}
		if rec.Quantity != 0 {
			t.Errorf("expected quantity 0, got %d", rec.Quantity)
		}
	})
}

func TestStockSet(t *testing.T) {
	ctx := context.Background()
	stock := newMemStockRepo()
	uc := newStockUC(stock)

	if _, err := uc.Set(ctx, 99, 1, 2, -1); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for negative quantity, got %v", err)
	}

	rec, err := uc.Set(ctx, 99, 1, 2, 7)
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if rec.Quantity != 7 {
		t.Errorf("expected quantity 7, got %d", rec.Quantity)
	}

	total, err := uc.TotalUnits(ctx)
	if err != nil {
		t.Fatalf("TotalUnits: %v", err)
	}
	if total != 7 {
		t.Errorf("expected 7 total units, got %d", total)
	}
}
