// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// catalog.go provides a Valkey-backed cache for rendered catalog JSON.
// Category listings fan out into several batched queries plus color
// clustering, so the encoded response is stored and served directly until
// it expires or the catalog changes.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// catalogKeyPrefix is the Valkey key prefix for cached catalog responses.
	catalogKeyPrefix = "catalog:"

	// DefaultCatalogTTL is how long a catalog response stays cached.
	DefaultCatalogTTL = 5 * time.Minute
)

// CatalogCache manages catalog response caching in Valkey. A nil
// *CatalogCache is valid and never hits, so callers can run without Valkey.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCatalogCache creates a new catalog cache backed by the given Valkey client.
func NewCatalogCache(client *redis.Client, ttl time.Duration) *CatalogCache {
	if ttl == 0 {
		ttl = DefaultCatalogTTL
	}
	return &CatalogCache{client: client, ttl: ttl}
}

// Get retrieves a cached response. Returns false on miss or error.
func (cc *CatalogCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if cc == nil {
		return nil, false
	}
	val, err := cc.client.Get(ctx, catalogKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("catalog cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("catalog cache hit", "key", key)
	return val, true
}

// Set stores a response with the configured TTL. Errors are logged only.
func (cc *CatalogCache) Set(ctx context.Context, key string, body []byte) {
	if cc == nil {
		return
	}
	if err := cc.client.Set(ctx, catalogKeyPrefix+key, body, cc.ttl).Err(); err != nil {
		slog.Warn("catalog cache set error", "key", key, "error", err)
	}
}

// InvalidateAll removes every cached catalog response by scanning for the
// prefix. Any change to categories or button colors can affect every
// listing through inheritance and subtree pooling.
func (cc *CatalogCache) InvalidateAll(ctx context.Context) int {
	if cc == nil {
		return 0
	}
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := cc.client.Scan(ctx, cursor, catalogKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("catalog cache scan error", "error", err)
			return deleted
		}
		if len(keys) > 0 {
			if err := cc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("catalog cache bulk delete error", "error", err)
			} else {
				deleted += len(keys)
			}
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("catalog cache cleared", "deleted", deleted)
	}
	return deleted
}

// RootsKey returns the cache key for the root category listing.
func RootsKey() string {
	return "roots"
}

// CategoryKey returns the cache key for a category page by slug path.
func CategoryKey(slugs []string) string {
	return "category:" + strings.Join(slugs, "/")
}

// ButtonsKey returns the cache key for a category's button listing.
func ButtonsKey(slugs []string, subtree bool) string {
	key := "buttons:" + strings.Join(slugs, "/")
	if subtree {
		key += ":subtree"
	}
	return key
}
