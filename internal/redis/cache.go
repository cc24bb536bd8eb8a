package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/gamebuddy-app/internal/config"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "catalog:"

// CatalogCache caches catalog listings as JSON strings
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCatalogCache creates a new Redis catalog cache
func NewCatalogCache(cfg *config.RedisConfig, ttl time.Duration, logger *slog.Logger) (*CatalogCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	// Test connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return NewCatalogCacheWithClient(client, ttl, logger), nil
}

// NewCatalogCacheWithClient wraps an existing client
func NewCatalogCacheWithClient(client *redis.Client, ttl time.Duration, logger *slog.Logger) *CatalogCache {
	return &CatalogCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Close closes the Redis connection
func (c *CatalogCache) Close() error {
	return c.client.Close()
}

// Ping checks the connection
func (c *CatalogCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// listingKey returns the Redis key for a cached listing
func listingKey(name string) string {
	return keyPrefix + name
}

// metaKey returns the Redis key for warmer bookkeeping
func metaKey() string {
	return keyPrefix + "meta"
}

// Get decodes the cached listing into dest. It reports false on a miss.
func (c *CatalogCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, listingKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("getting %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, nil
}

// Set stores value under key with the configured TTL
func (c *CatalogCache) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := c.client.Set(ctx, listingKey(key), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	return nil
}

// Invalidate drops every cached listing
func (c *CatalogCache) Invalidate(ctx context.Context) (int, error) {
	var keys []string
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("scanning catalog keys: %w", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	pipe := c.client.Pipeline()
	for _, key := range keys {
		pipe.Del(ctx, key)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("deleting catalog keys: %w", err)
	}
	return len(keys), nil
}

// MarkWarmed records a completed warm run
func (c *CatalogCache) MarkWarmed(ctx context.Context, listings int, at time.Time) error {
	err := c.client.HSet(ctx, metaKey(), map[string]interface{}{
		"warmed_at": at.Unix(),
		"listings":  listings,
	}).Err()
	if err != nil {
		return fmt.Errorf("recording warm run: %w", err)
	}
	return nil
}

// LastWarmed returns when the cache was last warmed, zero if never
func (c *CatalogCache) LastWarmed(ctx context.Context) (time.Time, error) {
	values, err := c.client.HGetAll(ctx, metaKey()).Result()
	if err != nil {
		return time.Time{}, fmt.Errorf("reading warm run: %w", err)
	}
	raw, ok := values["warmed_at"]
	if !ok {
		return time.Time{}, nil
	}
	unix, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing warm time: %w", err)
	}
	return time.Unix(unix, 0), nil
}
