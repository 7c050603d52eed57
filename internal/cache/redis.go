package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/briefcasebrain/uir-gateway/internal/logging"
	"github.com/briefcasebrain/uir-gateway/request"
)

// Redis is the remote cache tier, a thin JSON-serializing wrapper around
// go-redis, grounded on CacheManager's Redis-backed get/set/invalidate.
type Redis struct {
	client     *redis.Client
	defaultTTL time.Duration
}

// NewRedis dials a Redis client from a connection URL (redis://host:port/db).
func NewRedis(url string, defaultTTL time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &Redis{client: redis.NewClient(opts), defaultTTL: defaultTTL}, nil
}

// Get returns the cached response for key, or false on miss, decode
// failure, or Redis error (a Redis outage degrades to a cache miss rather
// than surfacing an error to the caller).
func (r *Redis) Get(ctx context.Context, key string) (*request.SearchResponse, bool) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logging.Logger.Warn("redis cache get failed", "key", key, "error", err)
		}
		return nil, false
	}
	var resp request.SearchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		logging.Logger.Warn("redis cache decode failed", "key", key, "error", err)
		return nil, false
	}
	return &resp, true
}

// Set stores resp as JSON under key with the given ttlSeconds (or the
// configured default if ttlSeconds <= 0). Errors are logged, not returned,
// matching the source's fire-and-forget cache writes.
func (r *Redis) Set(ctx context.Context, key string, resp *request.SearchResponse, ttlSeconds int) {
	ttl := r.defaultTTL
	if ttlSeconds > 0 {
		ttl = time.Duration(ttlSeconds) * time.Second
	}
	data, err := json.Marshal(resp)
	if err != nil {
		logging.Logger.Warn("redis cache encode failed", "key", key, "error", err)
		return
	}
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		logging.Logger.Warn("redis cache set failed", "key", key, "error", err)
	}
}

func (r *Redis) Delete(ctx context.Context, key string) {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		logging.Logger.Warn("redis cache delete failed", "key", key, "error", err)
	}
}

// InvalidatePattern scans for and deletes every key matching a glob
// pattern, matching the source's invalidate() using redis SCAN+DELETE
// rather than the blocking KEYS command.
func (r *Redis) InvalidatePattern(ctx context.Context, pattern string) {
	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logging.Logger.Warn("redis cache scan failed", "pattern", pattern, "error", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		logging.Logger.Warn("redis cache pattern delete failed", "pattern", pattern, "error", err)
	}
}

// Len reports the size of the currently selected Redis database. Used
// only for stats reporting; not load-bearing for eviction since Redis
// expires keys on its own.
func (r *Redis) Len(ctx context.Context) int {
	n, err := r.client.DBSize(ctx).Result()
	if err != nil {
		return 0
	}
	return int(n)
}

// Clear flushes the currently selected Redis database.
func (r *Redis) Clear(ctx context.Context) {
	if err := r.client.FlushDB(ctx).Err(); err != nil {
		logging.Logger.Warn("redis cache flush failed", "error", err)
	}
}

// Ping reports whether Redis is reachable.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the underlying Redis connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}
