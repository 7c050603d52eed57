// Package ratelimit provides the token-bucket and sliding-window limiters
// used by each provider adapter (per-operation limiting, via Limiter), plus
// Store for per-key limiting (by IP or API key), which no HTTP middleware
// in this repository uses.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/briefcasebrain/uir-gateway/kinderror"
)

// TokenBucket is a single token-bucket rate limiter. The mutex protects
// only refill+deduct; any sleep a caller performs on rejection happens
// outside the lock.
type TokenBucket struct {
	mu         sync.Mutex
	capacity   float64
	refillRate float64 // tokens added per second
	tokens     float64
	lastRefill time.Time
}

// NewTokenBucket creates a bucket with the given capacity and refill rate
// (tokens/sec), starting full.
func NewTokenBucket(capacity, refillRate float64) *TokenBucket {
	if capacity <= 0 {
		capacity = refillRate
	}
	return &TokenBucket{
		capacity:   capacity,
		refillRate: refillRate,
		tokens:     capacity,
		lastRefill: time.Now(),
	}
}

// refill must be called with b.mu held.
func (b *TokenBucket) refill() {
	now := time.Now()
	elapsed := now.Sub(b.lastRefill).Seconds()
	b.tokens = min(b.capacity, b.tokens+elapsed*b.refillRate)
	b.lastRefill = now
}

// TryAcquire deducts n tokens without blocking, returning false if
// insufficient tokens are currently available.
func (b *TokenBucket) TryAcquire(n float64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refill()
	if b.tokens >= n {
		b.tokens -= n
		return true
	}
	return false
}

// Allow is TryAcquire(1), kept for call sites that only ever need a single
// token (HTTP request admission).
func (b *TokenBucket) Allow() bool {
	return b.TryAcquire(1)
}

// Acquire blocks until n tokens are available or ctx is done, looping on
// the wait time computed from the shortfall and the refill rate.
func (b *TokenBucket) Acquire(ctx context.Context, n float64) error {
	for {
		b.mu.Lock()
		b.refill()
		if b.tokens >= n {
			b.tokens -= n
			b.mu.Unlock()
			return nil
		}
		shortfall := n - b.tokens
		wait := time.Duration(shortfall / b.refillRate * float64(time.Second))
		b.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return kinderror.Wrap(kinderror.RateLimited, "acquire canceled", ctx.Err())
		case <-timer.C:
		}
	}
}

// SlidingWindow admits at most maxRequests within any trailing window
// duration, tracked as an ordered sequence of admission timestamps.
type SlidingWindow struct {
	mu          sync.Mutex
	maxRequests int
	window      time.Duration
	requests    []time.Time
}

// NewSlidingWindow creates a limiter admitting at most maxRequests per
// window.
func NewSlidingWindow(maxRequests int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{maxRequests: maxRequests, window: window}
}

// evict must be called with w.mu held; drops timestamps older than now-window.
func (w *SlidingWindow) evict(now time.Time) {
	cutoff := now.Add(-w.window)
	i := 0
	for i < len(w.requests) && w.requests[i].Before(cutoff) {
		i++
	}
	if i > 0 {
		w.requests = w.requests[i:]
	}
}

// TryAcquire admits the caller without blocking if the window isn't full.
func (w *SlidingWindow) TryAcquire() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	now := time.Now()
	w.evict(now)
	if len(w.requests) < w.maxRequests {
		w.requests = append(w.requests, now)
		return true
	}
	return false
}

// Acquire blocks until the window has room or ctx is done.
func (w *SlidingWindow) Acquire(ctx context.Context) error {
	for {
		w.mu.Lock()
		now := time.Now()
		w.evict(now)
		if len(w.requests) < w.maxRequests {
			w.requests = append(w.requests, now)
			w.mu.Unlock()
			return nil
		}
		oldest := w.requests[0]
		wait := oldest.Add(w.window).Sub(now)
		w.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return kinderror.Wrap(kinderror.RateLimited, "acquire canceled", ctx.Err())
		case <-timer.C:
		}
	}
}

// Limiter aggregates named token buckets, one per adapter operation
// ("search", "vector_search", "index", "health_check", ...). Unknown
// operation names fall through to the "default" bucket.
type Limiter struct {
	mu      sync.RWMutex
	buckets map[string]*TokenBucket
}

// NewLimiter builds a Limiter from an operation→requests-per-second map.
// Each named rate gets its own full-capacity bucket; a "default" entry,
// if present, is used for operations not otherwise named.
func NewLimiter(rates map[string]int) *Limiter {
	l := &Limiter{buckets: make(map[string]*TokenBucket, len(rates))}
	for op, rate := range rates {
		l.buckets[op] = NewTokenBucket(float64(rate), float64(rate))
	}
	return l
}

func (l *Limiter) bucket(operation string) *TokenBucket {
	l.mu.RLock()
	b, ok := l.buckets[operation]
	if !ok {
		b, ok = l.buckets["default"]
	}
	l.mu.RUnlock()
	if !ok {
		return nil
	}
	return b
}

// TryAcquire attempts to admit one call for the named operation without
// blocking. An operation with no configured bucket and no "default" is
// always admitted.
func (l *Limiter) TryAcquire(operation string) bool {
	b := l.bucket(operation)
	if b == nil {
		return true
	}
	return b.TryAcquire(1)
}

// Acquire blocks until the named operation's bucket admits one call, or
// returns a RateLimited kinderror if ctx is canceled first.
func (l *Limiter) Acquire(ctx context.Context, operation string) error {
	b := l.bucket(operation)
	if b == nil {
		return nil
	}
	return b.Acquire(ctx, 1)
}

// Store maintains per-key TokenBucket instances sharing one rate/burst.
// It keys limiters by an arbitrary string such as an IP or API key,
// independent of the per-adapter Limiter above.
type Store struct {
	mu       sync.RWMutex
	limiters map[string]*TokenBucket
	rate     float64
	burst    float64
}

// NewStore creates a Store whose per-key limiters share the same rate/burst.
func NewStore(ratePerSecond, burst float64) *Store {
	return &Store{
		limiters: make(map[string]*TokenBucket),
		rate:     ratePerSecond,
		burst:    burst,
	}
}

// Allow checks (and creates if needed) the limiter for key.
func (s *Store) Allow(key string) bool {
	s.mu.RLock()
	l, ok := s.limiters[key]
	s.mu.RUnlock()
	if ok {
		return l.Allow()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok = s.limiters[key]; ok {
		return l.Allow()
	}
	l = NewTokenBucket(s.burst, s.rate)
	s.limiters[key] = l
	return l.Allow()
}
