//go:build !integration

package application

import (
	"context"
	"strings"
	"testing"
	"time"

	"telegram-storefront-bot/internal/domain"
	"telegram-storefront-bot/internal/domain/model"
	"telegram-storefront-bot/internal/infra/i18n"
)

// stubOrderUC lets each test pin the behavior of the one method it exercises.
type stubOrderUC struct {
	CheckoutFunc   func(ctx context.Context, userID int64) (*model.Order, error)
	CartFunc       func(ctx context.Context, userID int64) ([]*model.CartItem, error)
	ListByUserFunc func(ctx context.Context, userID int64, offset, limit int) ([]*model.Order, int, error)
}

func (s *stubOrderUC) AddToCart(ctx context.Context, userID, productID, locationID int64, quantity int) error {
	return nil
}
func (s *stubOrderUC) Cart(ctx context.Context, userID int64) ([]*model.CartItem, error) {
	if s.CartFunc != nil {
		return s.CartFunc(ctx, userID)
	}
	return nil, nil
}
func (s *stubOrderUC) RemoveCartItem(ctx context.Context, userID, itemID int64) error { return nil }
func (s *stubOrderUC) ClearCart(ctx context.Context, userID int64) error              { return nil }
func (s *stubOrderUC) Checkout(ctx context.Context, userID int64) (*model.Order, error) {
	return s.CheckoutFunc(ctx, userID)
}
func (s *stubOrderUC) Get(ctx context.Context, orderID int64) (*model.Order, error) {
	return nil, domain.ErrNotFound
}
func (s *stubOrderUC) ListByUser(ctx context.Context, userID int64, offset, limit int) ([]*model.Order, int, error) {
	if s.ListByUserFunc != nil {
		return s.ListByUserFunc(ctx, userID, offset, limit)
	}
	return nil, 0, nil
}
func (s *stubOrderUC) List(ctx context.Context, status model.OrderStatus, offset, limit int) ([]*model.Order, int, error) {
	return nil, 0, nil
}
func (s *stubOrderUC) UpdateStatus(ctx context.Context, orderID int64, to model.OrderStatus, comment string) (*model.Order, error) {
	return nil, domain.ErrNotFound
}
func (s *stubOrderUC) CountByStatus(ctx context.Context) (map[model.OrderStatus]int, error) {
	return nil, nil
}
func (s *stubOrderUC) ReapStale(ctx context.Context, maxAge time.Duration) (int, error) {
	return 0, nil
}

func testBundle(t *testing.T) *i18n.Bundle {
	t.Helper()
	bundle, err := i18n.NewBundle(i18n.LocalesFS, "en", "ru", "pl")
	if err != nil {
		t.Fatalf("NewBundle: %v", err)
	}
	return bundle
}

func TestFormatMinor(t *testing.T) {
	cases := map[int64]string{0: "0.00", 5: "0.05", 2500: "25.00", 123456: "1234.56"}
	for in, want := range cases {
		if got := FormatMinor(in); got != want {
			t.Errorf("FormatMinor(%d) = %s, want %s", in, got, want)
		}
	}
}

func TestMainMenu(t *testing.T) {
	facade := &BotFacade{Locales: testBundle(t)}

	_, rows := facade.MainMenu("en", false)
	for _, row := range rows {
		for _, btn := range row {
			if btn.Data == "adm:menu" {
				t.Error("non-admin menu must not contain the admin entry")
			}
		}
	}

	_, adminRows := facade.MainMenu("en", true)
	if len(adminRows) != len(rows)+1 {
		t.Errorf("admin menu should carry one extra row: %d vs %d", len(adminRows), len(rows))
	}
}

func TestLanguageMenu(t *testing.T) {
	facade := &BotFacade{Locales: testBundle(t)}
	_, rows := facade.LanguageMenu("en")
	if len(rows) != 3 {
		t.Fatalf("expected 3 language rows, got %d", len(rows))
	}
	for _, row := range rows {
		if !strings.HasPrefix(row[0].Data, "lang:") {
			t.Errorf("language button data should start with lang:, got %s", row[0].Data)
		}
	}
}

func TestHandleCheckoutErrorMapping(t *testing.T) {
	ctx := context.Background()
	bundle := testBundle(t)
	en := bundle.ForLanguage("en")

	cases := []struct {
		name    string
		err     error
		wantKey string
	}{
		{"empty cart", domain.ErrEmptyCart, "cart_empty"},
		{"insufficient stock", domain.ErrInsufficientStock, "order_stock_insufficient"},
		{"lock busy", domain.ErrCheckoutInProgress, "checkout_in_progress"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			facade := &BotFacade{
				Locales: bundle,
				Orders: &stubOrderUC{
					CheckoutFunc: func(ctx context.Context, userID int64) (*model.Order, error) {
						return nil, tc.err
					},
				},
			}
			got, err := facade.HandleCheckout(ctx, 42, "en")
			if err != nil {
				t.Fatalf("domain errors must map to user text, got %v", err)
			}
			if got != en.T(tc.wantKey) {
				t.Errorf("expected %q, got %q", en.T(tc.wantKey), got)
			}
		})
	}

	t.Run("success includes the order reference", func(t *testing.T) {
		facade := &BotFacade{
			Locales: bundle,
			Orders: &stubOrderUC{
				CheckoutFunc: func(ctx context.Context, userID int64) (*model.Order, error) {
					return &model.Order{Reference: "01J5ZX", Status: model.OrderStatusPending}, nil
				},
			},
		}
		got, err := facade.HandleCheckout(ctx, 42, "en")
		if err != nil {
			t.Fatalf("HandleCheckout: %v", err)
		}
		if !strings.Contains(got, "01J5ZX") {
			t.Errorf("reply should mention the order reference, got %q", got)
		}
	})
}

func TestHandleMyOrders(t *testing.T) {
	ctx := context.Background()
	bundle := testBundle(t)
	facade := &BotFacade{
		Locales: bundle,
		Orders: &stubOrderUC{
			ListByUserFunc: func(ctx context.Context, userID int64, offset, limit int) ([]*model.Order, int, error) {
				return []*model.Order{
					{Reference: "REF1", Status: model.OrderStatusPending, TotalMinor: 1500},
				}, 1, nil
			},
		},
	}

	got, err := facade.HandleMyOrders(ctx, 42, "en")
	if err != nil {
		t.Fatalf("HandleMyOrders: %v", err)
	}
	if !strings.Contains(got, "REF1") || !strings.Contains(got, "15.00") {
		t.Errorf("order listing should show reference and total, got %q", got)
	}
}
