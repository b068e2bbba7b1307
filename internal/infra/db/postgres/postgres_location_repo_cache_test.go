//go:build !integration

package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"telegram-storefront-bot/internal/domain/model"
	"telegram-storefront-bot/internal/domain/ports/repository"
)

func TestLocationRepoCacheDecorator(t *testing.T) {
	ctx := context.Background()
	loc := &model.Location{ID: 3, Name: "Warsaw", Address: "Main St 1"}
	locJSON, _ := json.Marshal(loc)

	t.Run("FindByID returns from cache on hit", func(t *testing.T) {
		mockRedis := &mockRedisClient{
			GetFunc: func(ctx context.Context, key string) (string, error) {
				return string(locJSON), nil
			},
		}
		innerCalled := false
		inner := &mockInnerLocationRepo{
			FindByIDFunc: func(ctx context.Context, tx repository.Tx, id int64) (*model.Location, error) {
				innerCalled = true
				return nil, nil
			},
		}

		decorator := NewLocationRepoCacheDecorator(inner, mockRedis, time.Hour)

		result, err := decorator.FindByID(ctx, nil, 3)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if innerCalled {
			t.Error("inner repository should not be called on a cache hit")
		}
		if result == nil || result.Name != "Warsaw" {
			t.Errorf("wrong location from cache: %+v", result)
		}
	})

	t.Run("Update invalidates item and list keys", func(t *testing.T) {
		var deleted []string
		mockRedis := &mockRedisClient{
			DelFunc: func(ctx context.Context, keys ...string) error {
				deleted = append(deleted, keys...)
				return nil
			},
		}
		name := "Krakow"
		inner := &mockInnerLocationRepo{
			UpdateFunc: func(ctx context.Context, tx repository.Tx, id int64, upd repository.LocationUpdate) (*model.Location, error) {
				return &model.Location{ID: id, Name: *upd.Name}, nil
			},
		}

		decorator := NewLocationRepoCacheDecorator(inner, mockRedis, time.Hour)

		if _, err := decorator.Update(ctx, nil, 3, repository.LocationUpdate{Name: &name}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(deleted) != 2 {
			t.Fatalf("expected 2 keys deleted, got %d (%v)", len(deleted), deleted)
		}
	})

	t.Run("Delete invalidates before delegating", func(t *testing.T) {
		var deleted []string
		mockRedis := &mockRedisClient{
			DelFunc: func(ctx context.Context, keys ...string) error {
				deleted = append(deleted, keys...)
				return nil
			},
		}
		inner := &mockInnerLocationRepo{
			DeleteFunc: func(ctx context.Context, tx repository.Tx, id int64) error {
				return nil
			},
		}

		decorator := NewLocationRepoCacheDecorator(inner, mockRedis, time.Hour)

		if err := decorator.Delete(ctx, nil, 3); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(deleted) != 2 {
			t.Fatalf("expected 2 keys deleted, got %d (%v)", len(deleted), deleted)
		}
	})
}
