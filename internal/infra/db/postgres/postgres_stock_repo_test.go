//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"

	"telegram-storefront-bot/internal/domain"
	"telegram-storefront-bot/internal/domain/model"
	"telegram-storefront-bot/internal/domain/ports/repository"
)

// seedCatalog inserts the minimum rows a stock record depends on and returns
// (manufacturerID, locationID, productID).
func seedCatalog(t *testing.T) (int64, int64, int64) {
	t.Helper()
	ctx := context.Background()

	mfgRepo := NewPostgresManufacturerRepo(testPool)
	m, _ := model.NewManufacturer("Acme Goods")
	if err := mfgRepo.Create(ctx, repository.NoTX, m); err != nil {
		t.Fatalf("create manufacturer: %v", err)
	}

	locRepo := NewPostgresLocationRepo(testPool)
	l, _ := model.NewLocation("Main Street", "1 Main St")
	if err := locRepo.Create(ctx, repository.NoTX, l); err != nil {
		t.Fatalf("create location: %v", err)
	}

	prodRepo := NewPostgresProductRepo(testPool)
	p, _ := model.NewProduct(m.ID, 1200)
	p.SKU = "SKU-TEST-1"
	if err := prodRepo.Create(ctx, repository.NoTX, p); err != nil {
		t.Fatalf("create product: %v", err)
	}

	return m.ID, l.ID, p.ID
}

func TestStockRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	repo := NewPostgresStockRepo(testPool)
	ctx := context.Background()
	cleanup(t)
	mfgID, locID, prodID := seedCatalog(t)

	t.Run("positive adjust creates the record", func(t *testing.T) {
		rec, err := repo.Adjust(ctx, repository.NoTX, prodID, locID, 5)
		if err != nil {
			t.Fatalf("Adjust failed: %v", err)
		}
		if rec.Quantity != 5 {
			t.Errorf("expected quantity 5, got %d", rec.Quantity)
		}
	})

	t.Run("negative adjust below zero fails and keeps the row", func(t *testing.T) {
		if _, err := repo.Adjust(ctx, repository.NoTX, prodID, locID, -9); !errors.Is(err, domain.ErrInsufficientStock) {
			t.Fatalf("expected ErrInsufficientStock, got %v", err)
		}
		rec, err := repo.Get(ctx, repository.NoTX, prodID, locID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if rec.Quantity != 5 {
			t.Errorf("quantity changed after failed adjust: %d", rec.Quantity)
		}
	})

	t.Run("decrement to exactly zero is allowed", func(t *testing.T) {
		rec, err := repo.Adjust(ctx, repository.NoTX, prodID, locID, -5)
		if err != nil {
			t.Fatalf("Adjust failed: %v", err)
		}
		if rec.Quantity != 0 {
			t.Errorf("expected quantity 0, got %d", rec.Quantity)
		}
	})

	t.Run("negative adjust on a missing record fails", func(t *testing.T) {
		if _, err := repo.Adjust(ctx, repository.NoTX, prodID+999, locID, -1); !errors.Is(err, domain.ErrInsufficientStock) {
			t.Fatalf("expected ErrInsufficientStock, got %v", err)
		}
	})

	t.Run("set overwrites the quantity", func(t *testing.T) {
		rec, err := repo.Set(ctx, repository.NoTX, prodID, locID, 17)
		if err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		if rec.Quantity != 17 {
			t.Errorf("expected quantity 17, got %d", rec.Quantity)
		}
		total, err := repo.TotalUnits(ctx, repository.NoTX)
		if err != nil {
			t.Fatalf("TotalUnits failed: %v", err)
		}
		if total != 17 {
			t.Errorf("expected 17 total units, got %d", total)
		}
	})

	t.Run("browse queries only see stocked locations", func(t *testing.T) {
		locs, err := repo.LocationsWithStock(ctx, repository.NoTX)
		if err != nil {
			t.Fatalf("LocationsWithStock failed: %v", err)
		}
		if len(locs) != 1 || locs[0].ID != locID {
			t.Fatalf("expected exactly the stocked location, got %v", locs)
		}

		products, err := repo.ProductsByManufacturerAtLocation(ctx, repository.NoTX, mfgID, locID)
		if err != nil {
			t.Fatalf("ProductsByManufacturerAtLocation failed: %v", err)
		}
		if len(products) != 1 {
			t.Fatalf("expected one stocked product, got %d", len(products))
		}
		if products[0].Manufacturer == nil || products[0].Manufacturer.Name != "Acme Goods" {
			t.Errorf("manufacturer not loaded on browse result: %+v", products[0].Manufacturer)
		}

		if _, err := repo.Set(ctx, repository.NoTX, prodID, locID, 0); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		locs, err = repo.LocationsWithStock(ctx, repository.NoTX)
		if err != nil {
			t.Fatalf("LocationsWithStock failed: %v", err)
		}
		if len(locs) != 0 {
			t.Fatalf("expected no stocked locations, got %v", locs)
		}
	})
}

func TestOrderRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	ctx := context.Background()
	cleanup(t)
	_, locID, prodID := seedCatalog(t)

	userRepo := NewPostgresUserRepo(testPool)
	u, err := model.NewUser(42001, "buyer", "Buyer")
	if err != nil {
		t.Fatalf("NewUser failed: %v", err)
	}
	if err := userRepo.Save(ctx, repository.NoTX, u); err != nil {
		t.Fatalf("save user: %v", err)
	}

	orderRepo := NewPostgresOrderRepo(testPool)
	o, err := model.NewOrder(u.TelegramID, locID, []model.OrderItem{
		{ProductID: prodID, LocationID: locID, Quantity: 2, UnitPriceMinor: 1200},
	})
	if err != nil {
		t.Fatalf("NewOrder failed: %v", err)
	}

	t.Run("create assigns ids and persists items", func(t *testing.T) {
		if err := orderRepo.Create(ctx, repository.NoTX, o); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if o.ID == 0 || o.Reference == "" {
			t.Fatalf("order not fully assigned: %+v", o)
		}

		got, err := orderRepo.FindByID(ctx, repository.NoTX, o.ID)
		if err != nil {
			t.Fatalf("FindByID failed: %v", err)
		}
		if len(got.Items) != 1 || got.Items[0].Quantity != 2 {
			t.Fatalf("unexpected items: %+v", got.Items)
		}
		if got.TotalMinor != 2400 {
			t.Errorf("expected total 2400, got %d", got.TotalMinor)
		}
	})

	t.Run("status update persists and guards unknown ids", func(t *testing.T) {
		if err := orderRepo.UpdateStatus(ctx, repository.NoTX, o.ID, model.OrderStatusPending, model.OrderStatusApproved, "ready friday"); err != nil {
			t.Fatalf("UpdateStatus failed: %v", err)
		}
		got, err := orderRepo.FindByID(ctx, repository.NoTX, o.ID)
		if err != nil {
			t.Fatalf("FindByID failed: %v", err)
		}
		if got.Status != model.OrderStatusApproved || got.Comment != "ready friday" {
			t.Fatalf("unexpected state: %+v", got)
		}
		if got.Items[0].LocationID != locID {
			t.Errorf("expected item location %d, got %d", locID, got.Items[0].LocationID)
		}

		// The order is approved now, so a pending-guarded update must miss.
		if err := orderRepo.UpdateStatus(ctx, repository.NoTX, o.ID, model.OrderStatusPending, model.OrderStatusCancelled, ""); !errors.Is(err, domain.ErrInvalidStatusTransition) {
			t.Fatalf("expected ErrInvalidStatusTransition, got %v", err)
		}

		if err := orderRepo.UpdateStatus(ctx, repository.NoTX, 9999, model.OrderStatusPending, model.OrderStatusApproved, ""); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
