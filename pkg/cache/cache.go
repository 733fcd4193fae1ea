// Package cache stores JSON-encoded values with a TTL. Redis backs it when
// reachable; otherwise a no-op store keeps callers on the database path.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agromap/agromap/pkg/metrics"
)

// Store is the cache surface services depend on.
type Store interface {
	// Get unmarshals the value under key into dest and reports a hit.
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Remember returns the cached value under key, or calls fn, caches its
// result for ttl and returns it. Cache failures never fail the call.
func Remember[T any](ctx context.Context, s Store, key string, ttl time.Duration, fn func() (T, error)) (T, error) {
	var cached T
	if s.Get(ctx, key, &cached) {
		return cached, nil
	}
	fresh, err := fn()
	if err != nil {
		return fresh, err
	}
	_ = s.Set(ctx, key, fresh, ttl)
	return fresh, nil
}

// Redis is a Store over a go-redis client.
type Redis struct {
	rdb *redis.Client
}

// Connect dials Redis and verifies the connection with a ping.
func Connect(ctx context.Context, addr, password string) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("cache: redis ping: %w", err)
	}
	return &Redis{rdb: rdb}, nil
}

func (r *Redis) Get(ctx context.Context, key string, dest interface{}) bool {
	val, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil || json.Unmarshal(val, dest) != nil {
		metrics.CacheMisses.WithLabelValues("redis").Inc()
		return false
	}
	metrics.CacheHits.WithLabelValues("redis").Inc()
	return true
}

func (r *Redis) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, key, data, ttl).Err()
}

func (r *Redis) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.rdb.Del(ctx, keys...).Err()
}

func (r *Redis) Close() error { return r.rdb.Close() }

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string, interface{}) bool {
	metrics.CacheMisses.WithLabelValues("none").Inc()
	return false
}

func (Noop) Set(context.Context, string, interface{}, time.Duration) error { return nil }
func (Noop) Del(context.Context, ...string) error                          { return nil }
