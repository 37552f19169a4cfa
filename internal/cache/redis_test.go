//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/JonMunkholm/entrydesk/internal/core"
)

func newTestCache(t *testing.T) *StatsCache {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)

	c := NewWithClient(redis.NewClient(opts))
	t.Cleanup(func() { c.Close() })
	require.NoError(t, c.Health(ctx))
	return c
}

func TestStatsCache(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	_, ok := c.GetStats(ctx, "all")
	assert.False(t, ok)

	want := &core.Stats{Total: 3, Saturday: 2, Sunday: 1, ByBelt: map[string]int{"White": 3}, ByGender: map[string]int{"Male": 3}}
	c.SetStats(ctx, "all", want, time.Minute)
	c.SetStats(ctx, "coach:1", want, time.Minute)

	got, ok := c.GetStats(ctx, "all")
	require.True(t, ok)
	assert.Equal(t, want, got)

	c.InvalidateStats(ctx)
	_, ok = c.GetStats(ctx, "all")
	assert.False(t, ok)
	_, ok = c.GetStats(ctx, "coach:1")
	assert.False(t, ok)
}

func TestStatsCache_Expiry(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	c.SetStats(ctx, "all", &core.Stats{Total: 1}, 50*time.Millisecond)
	time.Sleep(200 * time.Millisecond)

	_, ok := c.GetStats(ctx, "all")
	assert.False(t, ok)
}
