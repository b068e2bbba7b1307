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

var _ repository.CategoryRepository = (*categoryRepoCacheDecorator)(nil)

// categoryRepoCacheDecorator serves reads from Redis and invalidates on every
// write. Only first-page lists are cached; the payload remembers the limit it
// was cached with so a different page size falls through to the inner repo.
type categoryRepoCacheDecorator struct {
	inner repository.CategoryRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewCategoryRepoCacheDecorator(inner repository.CategoryRepository, cache red.RedisClient, ttl time.Duration) repository.CategoryRepository {
	return &categoryRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

type cachedCategoryList struct {
	Items []*model.Category `json:"items"`
	Total int               `json:"total"`
	Limit int               `json:"limit"`
}

func (d *categoryRepoCacheDecorator) Create(ctx context.Context, tx repository.Tx, c *model.Category) error {
	d.cache.Del(ctx, "categories:all")
	return d.inner.Create(ctx, tx, c)
}

func (d *categoryRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Category, error) {
	key := fmt.Sprintf("category:%d", id)
	if val, err := d.cache.Get(ctx, key); err == nil {
		metrics.IncCacheRequest("category", "hit")
		var c model.Category
		if json.Unmarshal([]byte(val), &c) == nil {
			return &c, nil
		}
	}

	metrics.IncCacheRequest("category", "miss")
	c, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if bytes, err := json.Marshal(c); err == nil {
		d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return c, nil
}

func (d *categoryRepoCacheDecorator) FindByName(ctx context.Context, tx repository.Tx, name string) (*model.Category, error) {
	return d.inner.FindByName(ctx, tx, name)
}

func (d *categoryRepoCacheDecorator) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.Category, int, error) {
	if offset != 0 {
		return d.inner.List(ctx, tx, offset, limit)
	}
	const key = "categories:all"
	if val, err := d.cache.Get(ctx, key); err == nil {
		var cached cachedCategoryList
		if json.Unmarshal([]byte(val), &cached) == nil && cached.Limit == limit {
			metrics.IncCacheRequest("category_list", "hit")
			return cached.Items, cached.Total, nil
		}
	}

	metrics.IncCacheRequest("category_list", "miss")
	items, total, err := d.inner.List(ctx, tx, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	if bytes, err := json.Marshal(cachedCategoryList{Items: items, Total: total, Limit: limit}); err == nil {
		d.cache.Set(ctx, key, bytes, d.ttl)
	}
	return items, total, nil
}

func (d *categoryRepoCacheDecorator) Rename(ctx context.Context, tx repository.Tx, id int64, name string) (*model.Category, error) {
	d.cache.Del(ctx, fmt.Sprintf("category:%d", id))
	d.cache.Del(ctx, "categories:all")
	return d.inner.Rename(ctx, tx, id, name)
}

func (d *categoryRepoCacheDecorator) Delete(ctx context.Context, tx repository.Tx, id int64) error {
	d.cache.Del(ctx, fmt.Sprintf("category:%d", id))
	d.cache.Del(ctx, "categories:all")
	return d.inner.Delete(ctx, tx, id)
}
