// Package cache stores JSON-encoded values in Redis, falling back to an
// in-process map when Redis is not reachable.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/uniformhub/config"
	"github.com/shashiranjanraj/uniformhub/pkg/metrics"
)

// Store is what services depend on.
type Store interface {
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// RDB is the shared Redis client once Connect succeeds. The queue's Redis
// driver reuses it.
var RDB *redis.Client

// Connect pings Redis and returns a Redis-backed store. On failure it
// returns an in-memory store together with the ping error so the caller
// can log a warning and carry on.
func Connect(ctx context.Context) (Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.RedisAddr(),
		Password: config.RedisPassword(),
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return NewMemory(), fmt.Errorf("cache: redis ping: %w", err)
	}
	RDB = client
	return NewRedis(client), nil
}

// Remember returns the cached value under key or calls load, caching its
// result for ttl.
func Remember[T any](ctx context.Context, s Store, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	var v T
	if s != nil && s.Get(ctx, key, &v) {
		return v, nil
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	if s != nil {
		_ = s.Set(ctx, key, v, ttl)
	}
	return v, nil
}

type redisStore struct {
	rdb *redis.Client
}

func NewRedis(rdb *redis.Client) Store { return &redisStore{rdb: rdb} }

func (s *redisStore) Get(ctx context.Context, key string, dest any) bool {
	val, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		metrics.CacheMisses.WithLabelValues("redis").Inc()
		return false
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false
	}
	metrics.CacheHits.WithLabelValues("redis").Inc()
	return true
}

func (s *redisStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, data, ttl).Err()
}

func (s *redisStore) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	err := s.rdb.Del(ctx, keys...).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

type entry struct {
	data    []byte
	expires time.Time
}

type memoryStore struct {
	mu    sync.RWMutex
	items map[string]entry
}

// NewMemory returns a process-local store with the same JSON semantics as
// the Redis one.
func NewMemory() Store { return &memoryStore{items: map[string]entry{}} }

func (s *memoryStore) Get(_ context.Context, key string, dest any) bool {
	s.mu.RLock()
	e, ok := s.items[key]
	s.mu.RUnlock()
	if !ok || (!e.expires.IsZero() && time.Now().After(e.expires)) {
		metrics.CacheMisses.WithLabelValues("memory").Inc()
		return false
	}
	if json.Unmarshal(e.data, dest) != nil {
		return false
	}
	metrics.CacheHits.WithLabelValues("memory").Inc()
	return true
}

func (s *memoryStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	e := entry{data: data}
	if ttl > 0 {
		e.expires = time.Now().Add(ttl)
	}
	s.mu.Lock()
	s.items[key] = e
	s.mu.Unlock()
	return nil
}

func (s *memoryStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	for _, k := range keys {
		delete(s.items, k)
	}
	s.mu.Unlock()
	return nil
}
