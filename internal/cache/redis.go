// Package cache keeps computed roster statistics in Redis so that several
// server instances share them between writes.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/JonMunkholm/entrydesk/internal/config"
	"github.com/JonMunkholm/entrydesk/internal/core"
	"github.com/JonMunkholm/entrydesk/internal/logging"
)

const statsKeyPrefix = "entrydesk:stats:"

// StatsCache implements core.StatsCache. Cache failures are logged and
// treated as misses.
type StatsCache struct {
	client *redis.Client
}

// New connects to cfg.URL. It returns nil when Redis is not configured.
func New(ctx context.Context, cfg config.RedisConfig) (*StatsCache, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return NewWithClient(client), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client) *StatsCache {
	return &StatsCache{client: client}
}

// GetStats implements core.StatsCache.
func (c *StatsCache) GetStats(ctx context.Context, key string) (*core.Stats, bool) {
	raw, err := c.client.Get(ctx, statsKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		logging.FromContext(ctx).Warn("stats cache read failed", "key", key, "error", err)
		return nil, false
	}

	var s core.Stats
	if err := json.Unmarshal(raw, &s); err != nil {
		logging.FromContext(ctx).Warn("stats cache entry unreadable", "key", key, "error", err)
		return nil, false
	}
	return &s, true
}

// SetStats implements core.StatsCache.
func (c *StatsCache) SetStats(ctx context.Context, key string, s *core.Stats, ttl time.Duration) {
	raw, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, statsKeyPrefix+key, raw, ttl).Err(); err != nil {
		logging.FromContext(ctx).Warn("stats cache write failed", "key", key, "error", err)
	}
}

// InvalidateStats implements core.StatsCache.
func (c *StatsCache) InvalidateStats(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, statsKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logging.FromContext(ctx).Warn("stats cache scan failed", "error", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Unlink(ctx, keys...).Err(); err != nil {
		logging.FromContext(ctx).Warn("stats cache invalidation failed", "error", err)
	}
}

// Health checks the Redis connection.
func (c *StatsCache) Health(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *StatsCache) Close() error {
	return c.client.Close()
}
