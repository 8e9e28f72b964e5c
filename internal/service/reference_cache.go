package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/edutrack-mx/sira-api/pkg/errors"
)

type cacheStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Cache keys for reference-data lists.
const (
	CacheKeyPrograms       = "reference:programs"
	CacheKeySubjects       = "reference:subjects"
	CacheKeyRiskCategories = "reference:risk_categories"
)

// ReferenceCache memoises reference-data lists in redis. A nil receiver is a
// valid no-op cache so services can run without redis.
type ReferenceCache struct {
	store   cacheStore
	ttl     time.Duration
	metrics *MetricsService
	logger  *zap.Logger
}

// NewReferenceCache constructs a ReferenceCache.
func NewReferenceCache(store cacheStore, ttl time.Duration, metrics *MetricsService, logger *zap.Logger) *ReferenceCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReferenceCache{store: store, ttl: ttl, metrics: metrics, logger: logger}
}

// Fetch loads a cached list into dest and reports whether it was a hit.
// Cache failures degrade to a miss; the caller falls back to the database.
func (c *ReferenceCache) Fetch(ctx context.Context, key string, dest interface{}) bool {
	if c == nil || c.store == nil {
		return false
	}
	start := time.Now()
	err := c.store.Get(ctx, key, dest)
	hit := err == nil
	c.metrics.RecordCacheOperation(hit, time.Since(start))
	if err != nil && !errors.Is(err, appErrors.ErrCacheMiss) {
		c.logger.Warn("reference cache read failed", zap.String("key", key), zap.Error(err))
	}
	return hit
}

// Store writes a list into the cache. Failures are logged and swallowed.
func (c *ReferenceCache) Store(ctx context.Context, key string, value interface{}) {
	if c == nil || c.store == nil {
		return
	}
	start := time.Now()
	if err := c.store.Set(ctx, key, value, c.ttl); err != nil {
		c.logger.Warn("reference cache write failed", zap.String("key", key), zap.Error(err))
		return
	}
	c.metrics.ObserveCacheWrite(time.Since(start))
}

// Invalidate drops a cached list after a mutation.
func (c *ReferenceCache) Invalidate(ctx context.Context, key string) {
	if c == nil || c.store == nil {
		return
	}
	if err := c.store.Delete(ctx, key); err != nil {
		c.logger.Warn("reference cache invalidation failed", zap.String("key", key), zap.Error(err))
	}
}
