// Package cache is a small JSON read-through cache over a key/value driver.
//
// Production uses Redis; tests and single-process deployments use the
// in-memory driver. A nil *Cache is valid and caches nothing.
//
//	c := cache.New(cache.NewRedisDriver(rdb), "storefront")
//	products, err := cache.Remember(ctx, c, "products:all", time.Minute, func() ([]models.Product, error) {
//	    return repo.List(ctx, "")
//	})
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

// ErrMiss is returned by a Driver when the key does not exist.
var ErrMiss = errors.New("cache: miss")

// Driver is the storage behind a Cache.
type Driver interface {
	Name() string
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Incr(ctx context.Context, key string) (int64, error)
}

// Cache namespaces keys under a prefix and encodes values as JSON.
type Cache struct {
	driver Driver
	prefix string
}

// New returns a Cache over driver. Keys are stored as "<prefix>:<key>".
func New(driver Driver, prefix string) *Cache {
	return &Cache{driver: driver, prefix: prefix}
}

func (c *Cache) key(k string) string {
	if c.prefix == "" {
		return k
	}
	return c.prefix + ":" + k
}

// Get unmarshals the cached value into dest and reports a hit.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	if c == nil || c.driver == nil {
		return false
	}

	raw, err := c.driver.Get(ctx, c.key(key))
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			logger.WithCtx(ctx).Warn("cache: get failed", "key", key, "error", err)
		}
		metrics.CacheMisses.WithLabelValues(c.driver.Name()).Inc()
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		metrics.CacheMisses.WithLabelValues(c.driver.Name()).Inc()
		return false
	}

	metrics.CacheHits.WithLabelValues(c.driver.Name()).Inc()
	return true
}

// Set stores value under key for ttl.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if c == nil || c.driver == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: marshal %s: %w", key, err)
	}
	return c.driver.Set(ctx, c.key(key), data, ttl)
}

// Forget removes keys.
func (c *Cache) Forget(ctx context.Context, keys ...string) error {
	if c == nil || c.driver == nil || len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(k)
	}
	return c.driver.Del(ctx, full...)
}

// Version returns the current generation of namespace ns. Keys built with it
// go stale together when Bump is called.
func (c *Cache) Version(ctx context.Context, ns string) int64 {
	if c == nil || c.driver == nil {
		return 0
	}
	raw, err := c.driver.Get(ctx, c.key(ns+":version"))
	if err != nil {
		return 0
	}
	v, _ := strconv.ParseInt(string(raw), 10, 64)
	return v
}

// Bump invalidates every key derived from namespace ns.
func (c *Cache) Bump(ctx context.Context, ns string) error {
	if c == nil || c.driver == nil {
		return nil
	}
	_, err := c.driver.Incr(ctx, c.key(ns+":version"))
	return err
}

// Remember returns the cached value for key, or calls fn and caches its
// result. Driver failures fall through to fn.
func Remember[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fn func() (T, error)) (T, error) {
	var out T
	if c.Get(ctx, key, &out) {
		return out, nil
	}

	out, err := fn()
	if err != nil {
		return out, err
	}
	if err := c.Set(ctx, key, out, ttl); err != nil {
		logger.WithCtx(ctx).Warn("cache: set failed", "key", key, "error", err)
	}
	return out, nil
}
