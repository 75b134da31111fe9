package galaxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
)

// Cache stores generated bodies keyed by CacheKey.
type Cache interface {
	Get(ctx context.Context, key string) ([]BodyInit, bool, error)
	Set(ctx context.Context, key string, bodies []BodyInit, ttl time.Duration) error
}

// CacheKey identifies the output of one deterministic generation.
func CacheKey(p Params, seed uint64) string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	return fmt.Sprintf("galaxy:bodies:%s:%s:%d:%s:%d", f(p.ScaleRadius), f(p.TotalMass), p.Count, f(p.Cutoff), seed)
}

type RedisCache struct {
	client redis.UniversalClient
}

func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]BodyInit, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached bodies: %w", err)
	}

	var bodies []BodyInit
	if err := json.Unmarshal(data, &bodies); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached bodies: %w", err)
	}
	return bodies, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, bodies []BodyInit, ttl time.Duration) error {
	data, err := json.Marshal(bodies)
	if err != nil {
		return fmt.Errorf("failed to encode bodies: %w", err)
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache bodies: %w", err)
	}
	return nil
}

// MemoryCache is the in-process fallback used when Redis is disabled. It
// holds at most size generations, each for the TTL given at construction;
// the per-call ttl of Set is ignored.
type MemoryCache struct {
	lru *expirable.LRU[string, []BodyInit]
}

func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	return &MemoryCache{lru: expirable.NewLRU[string, []BodyInit](size, nil, ttl)}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]BodyInit, bool, error) {
	bodies, ok := c.lru.Get(key)
	return bodies, ok, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, bodies []BodyInit, _ time.Duration) error {
	c.lru.Add(key, bodies)
	return nil
}
