//go:build !integration

package postgres

import (
	"context"
	"time"

	"telegram-storefront-bot/internal/domain/model"
	"telegram-storefront-bot/internal/domain/ports/repository"
	red "telegram-storefront-bot/internal/infra/redis"

	"github.com/go-redis/redis/v8"
)

// --- Mocks for Cache Decorator Tests ---

type mockInnerCategoryRepo struct {
	CreateFunc     func(ctx context.Context, tx repository.Tx, c *model.Category) error
	FindByIDFunc   func(ctx context.Context, tx repository.Tx, id int64) (*model.Category, error)
	FindByNameFunc func(ctx context.Context, tx repository.Tx, name string) (*model.Category, error)
	ListFunc       func(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.Category, int, error)
	RenameFunc     func(ctx context.Context, tx repository.Tx, id int64, name string) (*model.Category, error)
	DeleteFunc     func(ctx context.Context, tx repository.Tx, id int64) error
}

func (m *mockInnerCategoryRepo) Create(ctx context.Context, tx repository.Tx, c *model.Category) error {
	return m.CreateFunc(ctx, tx, c)
}
func (m *mockInnerCategoryRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Category, error) {
	return m.FindByIDFunc(ctx, tx, id)
}
func (m *mockInnerCategoryRepo) FindByName(ctx context.Context, tx repository.Tx, name string) (*model.Category, error) {
	return m.FindByNameFunc(ctx, tx, name)
}
func (m *mockInnerCategoryRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.Category, int, error) {
	return m.ListFunc(ctx, tx, offset, limit)
}
func (m *mockInnerCategoryRepo) Rename(ctx context.Context, tx repository.Tx, id int64, name string) (*model.Category, error) {
	return m.RenameFunc(ctx, tx, id, name)
}
func (m *mockInnerCategoryRepo) Delete(ctx context.Context, tx repository.Tx, id int64) error {
	return m.DeleteFunc(ctx, tx, id)
}

type mockInnerLocationRepo struct {
	CreateFunc     func(ctx context.Context, tx repository.Tx, l *model.Location) error
	FindByIDFunc   func(ctx context.Context, tx repository.Tx, id int64) (*model.Location, error)
	FindByNameFunc func(ctx context.Context, tx repository.Tx, name string) (*model.Location, error)
	ListFunc       func(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.Location, int, error)
	UpdateFunc     func(ctx context.Context, tx repository.Tx, id int64, upd repository.LocationUpdate) (*model.Location, error)
	DeleteFunc     func(ctx context.Context, tx repository.Tx, id int64) error
}

func (m *mockInnerLocationRepo) Create(ctx context.Context, tx repository.Tx, l *model.Location) error {
	return m.CreateFunc(ctx, tx, l)
}
func (m *mockInnerLocationRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Location, error) {
	return m.FindByIDFunc(ctx, tx, id)
}
func (m *mockInnerLocationRepo) FindByName(ctx context.Context, tx repository.Tx, name string) (*model.Location, error) {
	return m.FindByNameFunc(ctx, tx, name)
}
func (m *mockInnerLocationRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.Location, int, error) {
	return m.ListFunc(ctx, tx, offset, limit)
}
func (m *mockInnerLocationRepo) Update(ctx context.Context, tx repository.Tx, id int64, upd repository.LocationUpdate) (*model.Location, error) {
	return m.UpdateFunc(ctx, tx, id, upd)
}
func (m *mockInnerLocationRepo) Delete(ctx context.Context, tx repository.Tx, id int64) error {
	return m.DeleteFunc(ctx, tx, id)
}

// mockRedisClient mocks our Redis client wrapper. Nil function fields make
// the corresponding call a no-op so tests only wire what they assert on.
type mockRedisClient struct {
	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DelFunc    func(ctx context.Context, keys ...string) error
	PingFunc   func(ctx context.Context) error
	IncrFunc   func(ctx context.Context, key string) (int64, error)
	ExpireFunc func(ctx context.Context, key string, expiration time.Duration) error
	CloseFunc  func() error
}

var _ red.RedisClient = &mockRedisClient{}

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc == nil {
		return "", redis.Nil
	}
	return m.GetFunc(ctx, key)
}
func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if m.SetFunc == nil {
		return nil
	}
	return m.SetFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	if m.DelFunc == nil {
		return nil
	}
	return m.DelFunc(ctx, keys...)
}
func (m *mockRedisClient) Ping(ctx context.Context) error {
	if m.PingFunc == nil {
		return nil
	}
	return m.PingFunc(ctx)
}
func (m *mockRedisClient) Incr(ctx context.Context, key string) (int64, error) {
	if m.IncrFunc == nil {
		return 0, nil
	}
	return m.IncrFunc(ctx, key)
}
func (m *mockRedisClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	if m.ExpireFunc == nil {
		return nil
	}
	return m.ExpireFunc(ctx, key, expiration)
}
func (m *mockRedisClient) Close() error {
	if m.CloseFunc == nil {
		return nil
	}
	return m.CloseFunc()
}
