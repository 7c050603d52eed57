// Package cache provides the two-tier response cache: a remote Redis
// tier and a local in-process fallback, grounded on cache.py's
// CacheManager (Redis primary, local dict fallback, purge-then-evict
// local eviction).
package cache

import (
	"context"

	"github.com/briefcasebrain/uir-gateway/request"
)

// Cache is implemented by both the local and remote tiers, and by
// Tiered, which composes them.
type Cache interface {
	Get(ctx context.Context, key string) (*request.SearchResponse, bool)
	Set(ctx context.Context, key string, resp *request.SearchResponse, ttlSeconds int)
	Delete(ctx context.Context, key string)
	InvalidatePattern(ctx context.Context, pattern string)
	Len(ctx context.Context) int
	Clear(ctx context.Context)
}

var (
	_ Cache = (*Memory)(nil)
	_ Cache = (*Redis)(nil)
	_ Cache = (*Tiered)(nil)
)
