// Package cache stores JSON-encoded values under string keys with a TTL.
//
// Two drivers exist: Redis for deployments and an in-process map for tests
// and single-node runs. Connect picks Redis and falls back to memory when the
// server cannot be reached:
//
//	store := cache.Connect(ctx, config.RedisAddr(), config.RedisPassword())
//	var categories []models.Category
//	if !store.Get(ctx, "categories:all", &categories) {
//	    categories = load()
//	    _ = store.Set(ctx, "categories:all", categories, 5*time.Minute)
//	}
package cache

import (
	"context"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// Store is implemented by every cache driver.
type Store interface {
	// Get decodes the value under key into dest. It reports false on a miss
	// or on any driver error; callers just load from the source of truth.
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Forget(ctx context.Context, keys ...string) error
	Driver() string
}

// Connect returns a Redis store when addr answers a ping and a memory store
// otherwise.
func Connect(ctx context.Context, addr, password string) Store {
	rs, err := NewRedis(ctx, addr, password)
	if err != nil {
		logger.Warn("cache: redis unavailable, using in-memory cache", "addr", addr, "error", err)
		return NewMemory()
	}
	return rs
}
