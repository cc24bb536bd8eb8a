package redis

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/gamebuddy-app/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *CatalogCache {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not available at %s: %v", addr, err)
	}
	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewCatalogCacheWithClient(client, time.Minute, logger)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "catalog:games:popular", listingKey("games:popular"))
	assert.Equal(t, "catalog:meta", metaKey())
}

func TestCacheRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	var games []domain.Game
	hit, err := c.Get(ctx, "games", &games)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, "games", []domain.Game{{ID: "g1", Name: "Chess", Popular: true}}))

	hit, err = c.Get(ctx, "games", &games)
	require.NoError(t, err)
	assert.True(t, hit)
	require.Len(t, games, 1)
	assert.Equal(t, "Chess", games[0].Name)

	removed, err := c.Invalidate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}

func TestWarmBookkeeping(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	last, err := c.LastWarmed(ctx)
	require.NoError(t, err)
	assert.True(t, last.IsZero())

	at := time.Unix(1700000000, 0)
	require.NoError(t, c.MarkWarmed(ctx, 6, at))

	last, err = c.LastWarmed(ctx)
	require.NoError(t, err)
	assert.True(t, last.Equal(at))

	_, err = c.Invalidate(ctx)
	require.NoError(t, err)
	last, err = c.LastWarmed(ctx)
	require.NoError(t, err)
	assert.True(t, last.IsZero())
}
