package cache

import (
	"context"

	"github.com/briefcasebrain/uir-gateway/internal/logging"
	"github.com/briefcasebrain/uir-gateway/internal/metrics"
	"github.com/briefcasebrain/uir-gateway/request"
)

// Tiered composes a remote cache (optional) with a local in-process
// fallback, matching CacheManager's try-Redis-then-local-dict behavior.
// Remote is nil when no Redis URL is configured; Tiered then behaves as
// a plain local cache.
type Tiered struct {
	remote *Redis
	local  *Memory
}

// NewTiered builds a two-tier cache. remote may be nil.
func NewTiered(remote *Redis, local *Memory) *Tiered {
	return &Tiered{remote: remote, local: local}
}

// Get tries the remote tier first, falling back to local on a miss or
// remote error, and backfilling local from a remote hit.
func (t *Tiered) Get(ctx context.Context, key string) (*request.SearchResponse, bool) {
	if t.remote != nil {
		if resp, ok := t.remote.Get(ctx, key); ok {
			logging.FromContext(ctx).Debug("remote cache hit", "key", key)
			metrics.CacheLookupsTotal.WithLabelValues("remote", "hit").Inc()
			t.local.Set(ctx, key, resp, 0)
			return resp, true
		}
		metrics.CacheLookupsTotal.WithLabelValues("remote", "miss").Inc()
	}
	if resp, ok := t.local.Get(ctx, key); ok {
		logging.FromContext(ctx).Debug("local cache hit", "key", key)
		metrics.CacheLookupsTotal.WithLabelValues("local", "hit").Inc()
		return resp, true
	}
	metrics.CacheLookupsTotal.WithLabelValues("local", "miss").Inc()
	return nil, false
}

// Set writes through to both tiers; a remote write failure never blocks
// the local write.
func (t *Tiered) Set(ctx context.Context, key string, resp *request.SearchResponse, ttlSeconds int) {
	if t.remote != nil {
		t.remote.Set(ctx, key, resp, ttlSeconds)
	}
	t.local.Set(ctx, key, resp, ttlSeconds)
}

func (t *Tiered) Delete(ctx context.Context, key string) {
	if t.remote != nil {
		t.remote.Delete(ctx, key)
	}
	t.local.Delete(ctx, key)
}

func (t *Tiered) InvalidatePattern(ctx context.Context, pattern string) {
	if t.remote != nil {
		t.remote.InvalidatePattern(ctx, pattern)
	}
	t.local.InvalidatePattern(ctx, pattern)
}

// Len reports the local tier's size; the remote tier's size is reported
// separately via Stats since DBSIZE counts unrelated keys too.
func (t *Tiered) Len(ctx context.Context) int {
	return t.local.Len(ctx)
}

func (t *Tiered) Clear(ctx context.Context) {
	if t.remote != nil {
		t.remote.Clear(ctx)
	}
	t.local.Clear(ctx)
}

// Stats reports both tiers' sizes and whether the remote tier is configured.
type Stats struct {
	LocalEntries  int
	RemoteEntries int
	RemoteEnabled bool
}

func (t *Tiered) Stats(ctx context.Context) Stats {
	s := Stats{LocalEntries: t.local.Len(ctx)}
	if t.remote != nil {
		s.RemoteEnabled = true
		s.RemoteEntries = t.remote.Len(ctx)
	}
	return s
}
