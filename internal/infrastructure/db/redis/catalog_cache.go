package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bookxchange/marketplace/internal/api/metrics"
	"github.com/bookxchange/marketplace/internal/core/ports"
)

const (
	defaultCatalogTTL = 5 * time.Minute
	catalogVersionKey = "catalog:version"
)

// CatalogCache caches public catalog pages in Redis.
// Key format: catalog:v<version>:<page key>
//
// Invalidation bumps catalog:version so every previously written page becomes
// unreachable and simply expires.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCatalogCache creates a CatalogCache. ttl <= 0 selects defaultCatalogTTL.
func NewCatalogCache(client *redis.Client, ttl time.Duration) *CatalogCache {
	if ttl <= 0 {
		ttl = defaultCatalogTTL
	}
	return &CatalogCache{client: client, ttl: ttl}
}

func (c *CatalogCache) Get(ctx context.Context, key string) (*ports.BookPage, bool, error) {
	k, err := c.key(ctx, key)
	if err != nil {
		metrics.CatalogCacheTotal.WithLabelValues("error").Inc()
		return nil, false, err
	}

	raw, err := c.client.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CatalogCacheTotal.WithLabelValues("miss").Inc()
		return nil, false, nil
	}
	if err != nil {
		metrics.CatalogCacheTotal.WithLabelValues("error").Inc()
		return nil, false, fmt.Errorf("catalog cache get: %w", err)
	}

	var page ports.BookPage
	if err := json.Unmarshal(raw, &page); err != nil {
		metrics.CatalogCacheTotal.WithLabelValues("error").Inc()
		return nil, false, fmt.Errorf("catalog cache decode: %w", err)
	}
	metrics.CatalogCacheTotal.WithLabelValues("hit").Inc()
	return &page, true, nil
}

func (c *CatalogCache) Set(ctx context.Context, key string, page *ports.BookPage) error {
	k, err := c.key(ctx, key)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("catalog cache encode: %w", err)
	}
	return c.client.Set(ctx, k, raw, c.ttl).Err()
}

// Invalidate makes every cached page stale.
func (c *CatalogCache) Invalidate(ctx context.Context) error {
	if err := c.client.Incr(ctx, catalogVersionKey).Err(); err != nil {
		return fmt.Errorf("catalog cache invalidate: %w", err)
	}
	return nil
}

func (c *CatalogCache) key(ctx context.Context, key string) (string, error) {
	v, err := c.client.Get(ctx, catalogVersionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("catalog cache version: %w", err)
	}
	return fmt.Sprintf("catalog:v%d:%s", v, key), nil
}
