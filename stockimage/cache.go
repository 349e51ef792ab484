package stockimage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"json2video/config"
)

const cacheKeyPrefix = "json2video:image:"

// Cache is the subset of the redis client the search cache uses
type Cache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// CachedSearcher remembers prompt -> URL answers in Redis so repeated renders of
// the same document do not spend provider quota. Cache failures never fail a search.
type CachedSearcher struct {
	next  Searcher
	cache Cache
	ttl   time.Duration
}

func NewCachedSearcher(next Searcher, cache Cache, ttl time.Duration) *CachedSearcher {
	if ttl <= 0 {
		ttl = config.ImageSearchCacheTTL
	}
	return &CachedSearcher{next: next, cache: cache, ttl: ttl}
}

func (c *CachedSearcher) Search(ctx context.Context, query string) (string, error) {
	key := cacheKey(query)

	url, err := c.cache.Get(ctx, key).Result()
	switch {
	case err == nil && url != "":
		return url, nil
	case err != nil && !errors.Is(err, redis.Nil):
		log.Printf("Image cache read failed for %q: %v", query, err)
	}

	url, err = c.next.Search(ctx, query)
	if err != nil || url == "" {
		return url, err
	}
	if err := c.cache.Set(ctx, key, url, c.ttl).Err(); err != nil {
		log.Printf("Image cache write failed for %q: %v", query, err)
	}
	return url, nil
}

func cacheKey(query string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.Join(strings.Fields(query), " "))))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}
