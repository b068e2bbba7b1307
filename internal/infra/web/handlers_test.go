//go:build !integration

package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"telegram-storefront-bot/internal/config"
	"telegram-storefront-bot/internal/domain"
	"telegram-storefront-bot/internal/domain/model"
	"telegram-storefront-bot/internal/usecase"
)

func testServer(t *testing.T, mut func(*Server)) *Server {
	t.Helper()
	logger := zerolog.Nop()
	cfg := &config.WebConfig{
		Port:          0,
		AdminPassword: "hunter2",
		JWTSecret:     "test-secret",
		SessionTTL:    30 * time.Minute,
	}
	s := NewServer(cfg, nil, nil, nil, nil, nil, nil, &logger)
	if mut != nil {
		mut(s)
	}
	return s
}

// login performs the password exchange and returns the session cookie.
func login(t *testing.T, ts *httptest.Server) *http.Cookie {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"password": "hunter2"})
	resp, err := http.Post(ts.URL+"/api/v1/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", resp.StatusCode)
	}
	for _, c := range resp.Cookies() {
		if c.Name == "admin_session" {
			return c
		}
	}
	t.Fatal("login did not set a session cookie")
	return nil
}

func authedRequest(t *testing.T, ts *httptest.Server, cookie *http.Cookie, method, path string, body []byte) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, ts.URL+path, bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestLogin(t *testing.T) {
	s := testServer(t, nil)
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	t.Run("wrong password is rejected", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"password": "nope"})
		resp, err := http.Post(ts.URL+"/api/v1/login", "application/json", bytes.NewReader(body))
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", resp.StatusCode)
		}
	})

	t.Run("correct password mints a session", func(t *testing.T) {
		c := login(t, ts)
		if c.Value == "" {
			t.Fatal("empty session token")
		}
	})

	t.Run("api rejects missing session", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/v1/stats")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", resp.StatusCode)
		}
	})
}

func TestStatsEndpoint(t *testing.T) {
	s := testServer(t, func(s *Server) {
		s.stats = &stubStatsUC{SnapshotFunc: func(context.Context) (*usecase.Stats, error) {
			return &usecase.Stats{
				Users:      5,
				Products:   3,
				StockUnits: 42,
				OrdersByStatus: map[model.OrderStatus]int{
					model.OrderStatusPending: 2,
				},
			}, nil
		}}
	})
	ts := httptest.NewServer(s.Router())
	defer ts.Close()
	cookie := login(t, ts)

	resp := authedRequest(t, ts, cookie, http.MethodGet, "/api/v1/stats", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var got struct {
		Users      int            `json:"users"`
		StockUnits int            `json:"stock_units"`
		ByStatus   map[string]int `json:"orders_by_status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Users != 5 || got.StockUnits != 42 {
		t.Fatalf("unexpected stats payload: %+v", got)
	}
	if got.ByStatus["pending"] != 2 {
		t.Fatalf("expected 2 pending orders, got %d", got.ByStatus["pending"])
	}
}

func TestStockAdjustEndpoint(t *testing.T) {
	var gotDelta int
	s := testServer(t, func(s *Server) {
		s.stock = &stubStockUC{AdjustFunc: func(_ context.Context, actorTgID, productID, locationID int64, delta int) (*model.StockRecord, error) {
			gotDelta = delta
			if delta < -5 {
				return nil, domain.ErrInsufficientStock
			}
			return &model.StockRecord{ProductID: productID, LocationID: locationID, Quantity: 10 + delta}, nil
		}}
	})
	ts := httptest.NewServer(s.Router())
	defer ts.Close()
	cookie := login(t, ts)

	t.Run("applies the delta", func(t *testing.T) {
		body, _ := json.Marshal(stockChangeRequest{ProductID: 1, LocationID: 2, Delta: 3})
		resp := authedRequest(t, ts, cookie, http.MethodPost, "/api/v1/stock/adjust", body)
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		if gotDelta != 3 {
			t.Fatalf("expected delta 3, got %d", gotDelta)
		}
		var rec model.StockRecord
		if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
			t.Fatal(err)
		}
		if rec.Quantity != 13 {
			t.Fatalf("expected quantity 13, got %d", rec.Quantity)
		}
	})

	t.Run("shortfall maps to 409", func(t *testing.T) {
		body, _ := json.Marshal(stockChangeRequest{ProductID: 1, LocationID: 2, Delta: -50})
		resp := authedRequest(t, ts, cookie, http.MethodPost, "/api/v1/stock/adjust", body)
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusConflict {
			t.Fatalf("expected 409, got %d", resp.StatusCode)
		}
	})
}

func TestOrderStatusEndpoint(t *testing.T) {
	s := testServer(t, func(s *Server) {
		s.orders = &stubOrderUC{UpdateStatusFunc: func(_ context.Context, orderID int64, to model.OrderStatus, comment string) (*model.Order, error) {
			if to == model.OrderStatusCompleted {
				return nil, domain.ErrInvalidStatusTransition
			}
			return &model.Order{ID: orderID, Status: to, Comment: comment}, nil
		}}
	})
	ts := httptest.NewServer(s.Router())
	defer ts.Close()
	cookie := login(t, ts)

	t.Run("legal transition succeeds", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"status": "approved"})
		resp := authedRequest(t, ts, cookie, http.MethodPut, "/api/v1/orders/7/status", body)
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
	})

	t.Run("illegal transition maps to 409", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"status": "completed"})
		resp := authedRequest(t, ts, cookie, http.MethodPut, "/api/v1/orders/7/status", body)
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusConflict {
			t.Fatalf("expected 409, got %d", resp.StatusCode)
		}
	})
}

func TestProductEndpoints(t *testing.T) {
	s := testServer(t, func(s *Server) {
		s.prods = &stubProductUC{
			GetDetailedFunc: func(_ context.Context, id int64) (*model.Product, error) {
				if id != 1 {
					return nil, domain.ErrNotFound
				}
				return &model.Product{ID: 1, SKU: "SKU-1", CostMinor: 2500}, nil
			},
			DeleteFunc: func(_ context.Context, id int64) error {
				return domain.ErrInUse
			},
		}
	})
	ts := httptest.NewServer(s.Router())
	defer ts.Close()
	cookie := login(t, ts)

	t.Run("get unknown product is 404", func(t *testing.T) {
		resp := authedRequest(t, ts, cookie, http.MethodGet, "/api/v1/products/99", nil)
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("malformed id is 400", func(t *testing.T) {
		resp := authedRequest(t, ts, cookie, http.MethodGet, "/api/v1/products/abc", nil)
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("delete of referenced product is 409", func(t *testing.T) {
		resp := authedRequest(t, ts, cookie, http.MethodDelete, "/api/v1/products/1", nil)
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusConflict {
			t.Fatalf("expected 409, got %d", resp.StatusCode)
		}
	})
}
