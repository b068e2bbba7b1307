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

var _ repository.LocationRepository = (*locationRepoCacheDecorator)(nil)

type locationRepoCacheDecorator struct {
	inner repository.LocationRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewLocationRepoCacheDecorator(inner repository.LocationRepository, cache red.RedisClient, ttl time.Duration) repository.LocationRepository {
	return &locationRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

type cachedLocationList struct {
	Items []*model.Location `json:"items"`
	Total int               `json:"total"`
	Limit int               `json:"limit"`
}

func (d *locationRepoCacheDecorator) Create(ctx context.Context, tx repository.Tx, l *model.Location) error {
	d.cache.Del(ctx, "locations:all")
	return d.inner.Create(ctx, tx, l)
}

func (d *locationRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Location, error) {
	key := fmt.Sprintf("location:%d", id)
	if val, err := d.cache.Get(ctx, key); err == nil {
		metrics.IncCacheRequest("location", "hit")
		var l model.Location
		if json.Unmarshal([]byte(val), &l) == nil {
			return &l, nil
		}
	}

	metrics.IncCacheRequest("location", "miss")
	l, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if bytes, err := json.Marshal(l); err == nil {
		d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return l, nil
}

func (d *locationRepoCacheDecorator) FindByName(ctx context.Context, tx repository.Tx, name string) (*model.Location, error) {
	return d.inner.FindByName(ctx, tx, name)
}

func (d *locationRepoCacheDecorator) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.Location, int, error) {
	if offset != 0 {
		return d.inner.List(ctx, tx, offset, limit)
	}
	const key = "locations:all"
	if val, err := d.cache.Get(ctx, key); err == nil {
		var cached cachedLocationList
		if json.Unmarshal([]byte(val), &cached) == nil && cached.Limit == limit {
			metrics.IncCacheRequest("location_list", "hit")
			return cached.Items, cached.Total, nil
		}
	}

	metrics.IncCacheRequest("location_list", "miss")
	items, total, err := d.inner.List(ctx, tx, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	if bytes, err := json.Marshal(cachedLocationList{Items: items, Total: total, Limit: limit}); err == nil {
		d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return items, total, nil
}

func (d *locationRepoCacheDecorator) Update(ctx context.Context, tx repository.Tx, id int64, upd repository.LocationUpdate) (*model.Location, error) {
	d.cache.Del(ctx, fmt.Sprintf("location:%d", id))
	d.cache.Del(ctx, "locations:all")
	return d.inner.Update(ctx, tx, id, upd)
}

func (d *locationRepoCacheDecorator) Delete(ctx context.Context, tx repository.Tx, id int64) error {
	d.cache.Del(ctx, fmt.Sprintf("location:%d", id))
	d.cache.Del(ctx, "locations:all")
	return d.inner.Delete(ctx, tx, id)
}
