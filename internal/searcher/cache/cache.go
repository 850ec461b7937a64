// Package cache is the Redis-backed query result cache of the search
// service. Concurrent misses for the same key collapse into one engine
// call via singleflight.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/mkraev/ranked-search-platform/internal/engine"
	"github.com/mkraev/ranked-search-platform/pkg/config"
	pkgredis "github.com/mkraev/ranked-search-platform/pkg/redis"
)

const keyPrefix = "search:"

// QueryCache caches ranked result sets per query and status filter.
type QueryCache struct {
	client *pkgredis.Client
	cfg    config.RedisConfig
	group  singleflight.Group
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a QueryCache over an established Redis client.
func New(client *pkgredis.Client, cfg config.RedisConfig) *QueryCache {
	return &QueryCache{
		client: client,
		cfg:    cfg,
		logger: slog.Default().With("component", "query-cache"),
	}
}

// Get returns the cached result set for the query, if present.
func (c *QueryCache) Get(ctx context.Context, rawQuery string, status engine.Status) ([]engine.Document, bool) {
	key := c.buildKey(rawQuery, status)
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}
	var docs []engine.Document
	if err := json.Unmarshal([]byte(data), &docs); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	c.logger.Debug("cache hit", "query", rawQuery, "key", key)
	return docs, true
}

// Set stores a result set with the configured TTL.
func (c *QueryCache) Set(ctx context.Context, rawQuery string, status engine.Status, docs []engine.Document) {
	key := c.buildKey(rawQuery, status)
	data, err := json.Marshal(docs)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.cfg.CacheTTL); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached result set or computes, stores, and
// returns it. The boolean reports a cache hit.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	rawQuery string,
	status engine.Status,
	computeFn func() ([]engine.Document, error),
) ([]engine.Document, bool, error) {
	if docs, ok := c.Get(ctx, rawQuery, status); ok {
		return docs, true, nil
	}
	key := c.buildKey(rawQuery, status)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if docs, ok := c.Get(ctx, rawQuery, status); ok {
			return docs, nil
		}
		docs, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, rawQuery, status, docs)
		return docs, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.([]engine.Document), false, nil
}

// Invalidate drops every cached result set. Called after duplicate
// sweeps that removed documents and on explicit invalidation requests;
// document add/remove events do not invalidate, so cached result sets
// live until their TTL.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return nil
}

// Stats returns the hit and miss counters.
func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *QueryCache) buildKey(rawQuery string, status engine.Status) string {
	raw := fmt.Sprintf("%s|status=%s", normalizeQuery(rawQuery), status)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}

// normalizeQuery canonicalises word order and duplicates so trivially
// reordered queries share a cache entry. Classification against stop
// words happens in the engine; the key only needs to be stable.
func normalizeQuery(rawQuery string) string {
	words := strings.Fields(rawQuery)
	sort.Strings(words)
	out := words[:0]
	for i, w := range words {
		if i == 0 || w != words[i-1] {
			out = append(out, w)
		}
	}
	return strings.Join(out, " ")
}
