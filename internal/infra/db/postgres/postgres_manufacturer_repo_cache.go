package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"telegram-storefront-bot/internal/domain/model"
	"telegram-storefront-bot/internal/domain/ports/repository"
	"telegram-storefront-bot/internal/infra/metrics"
	red "telegram-storefront-bot/internal/infra/redis"
)

var _ repository.ManufacturerRepository = (*manufacturerRepoCacheDecorator)(nil)

type manufacturerRepoCacheDecorator struct {
	inner repository.ManufacturerRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewManufacturerRepoCacheDecorator(inner repository.ManufacturerRepository, cache red.RedisClient, ttl time.Duration) repository.ManufacturerRepository {
	return &manufacturerRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

type cachedManufacturerList struct {
	Items []*model.Manufacturer `json:"items"`
	Total int                   `json:"total"`
	Limit int                   `json:"limit"`
}

func (d *manufacturerRepoCacheDecorator) Create(ctx context.Context, tx repository.Tx, m *model.Manufacturer) error {
	d.cache.Del(ctx, "manufacturers:all")
	return d.inner.Create(ctx, tx, m)
}

func (d *manufacturerRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Manufacturer, error) {
	key := fmt.Sprintf("manufacturer:%d", id)
	if val, err := d.cache.Get(ctx, key); err == nil {
		metrics.IncCacheRequest("manufacturer", "hit")
		var m model.Manufacturer
		if json.Unmarshal([]byte(val), &m) == nil {
			return &m, nil
		}
	}

	metrics.IncCacheRequest("manufacturer", "miss")
	m, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if bytes, err := json.Marshal(m); err == nil {
		d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return m, nil
}

func (d *manufacturerRepoCacheDecorator) FindByName(ctx context.Context, tx repository.Tx, name string) (*model.Manufacturer, error) {
	return d.inner.FindByName(ctx, tx, name)
}

func (d *manufacturerRepoCacheDecorator) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.Manufacturer, int, error) {
	if offset != 0 {
		return d.inner.List(ctx, tx, offset, limit)
	}
	const key = "manufacturers:all"
	if val, err := d.cache.Get(ctx, key); err == nil {
		var cached cachedManufacturerList
		if json.Unmarshal([]byte(val), &cached) == nil && cached.Limit == limit {
			metrics.IncCacheRequest("manufacturer_list", "hit")
			return cached.Items, cached.Total, nil
		}
	}

	metrics.IncCacheRequest("manufacturer_list", "miss")
	items, total, err := d.inner.List(ctx, tx, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	if bytes, err := json.Marshal(cachedManufacturerList{Items: items, Total: total, Limit: limit}); err == nil {
		d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return items, total, nil
}

func (d *manufacturerRepoCacheDecorator) Rename(ctx context.Context, tx repository.Tx, id int64, name string) (*model.Manufacturer, error) {
	d.cache.Del(ctx, fmt.Sprintf("manufacturer:%d", id))
	d.cache.Del(ctx, "manufacturers:all")
	return d.inner.Rename(ctx, tx, id, name)
}

func (d *manufacturerRepoCacheDecorator) Delete(ctx context.Context, tx repository.Tx, id int64) error {
	d.cache.Del(ctx, fmt.Sprintf("manufacturer:%d", id))
	d.cache.Del(ctx, "manufacturers:all")
	return d.inner.Delete(ctx, tx, id)
}
