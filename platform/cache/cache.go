// Package cache provides a small JSON read-through cache on top of Redis.
// This is part of the platform layer and contains no business logic.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when the key is absent.
var ErrMiss = errors.New("cache miss")

// JSONCache stores values as JSON under a key prefix.
// A nil *JSONCache is valid and behaves as an always-empty cache.
type JSONCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// New creates a cache. A non-positive ttl disables caching.
func New(client *redis.Client, prefix string, ttl time.Duration) *JSONCache {
	if client == nil || ttl <= 0 {
		return nil
	}
	return &JSONCache{client: client, prefix: prefix, ttl: ttl}
}

// NewClient parses a redis:// URL into a go-redis client.
func NewClient(redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opt), nil
}

// Get decodes the cached value for key into dest.
func (c *JSONCache) Get(ctx context.Context, key string, dest any) error {
	if c == nil {
		return ErrMiss
	}
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// Set stores value under key with the configured TTL.
func (c *JSONCache) Set(ctx context.Context, key string, value any) error {
	if c == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.prefix+key, raw, c.ttl).Err()
}

// Delete removes key. Deleting an absent key is not an error.
func (c *JSONCache) Delete(ctx context.Context, key string) error {
	if c == nil {
		return nil
	}
	return c.client.Del(ctx, c.prefix+key).Err()
}
