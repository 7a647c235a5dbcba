package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connect opens a Redis client and verifies it with a ping. The client is
// shared by the cache and the redis queue driver.
func Connect(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("cache: redis ping %s: %w", addr, err)
	}
	return rdb, nil
}

// RedisDriver stores values in Redis.
type RedisDriver struct {
	rdb *redis.Client
}

func NewRedisDriver(rdb *redis.Client) *RedisDriver {
	return &RedisDriver{rdb: rdb}
}

func (d *RedisDriver) Name() string { return "redis" }

func (d *RedisDriver) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := d.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return b, err
}

func (d *RedisDriver) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return d.rdb.Set(ctx, key, value, ttl).Err()
}

func (d *RedisDriver) Del(ctx context.Context, keys ...string) error {
	return d.rdb.Del(ctx, keys...).Err()
}

func (d *RedisDriver) Incr(ctx context.Context, key string) (int64, error) {
	return d.rdb.Incr(ctx, key).Result()
}
