// Package adapter defines the uniform interface every provider backend
// implements, and the Invoker wrapper that applies rate limiting, circuit
// breaking, and retry around a single call in that fixed order, grounded
// on the source's ProviderAdapter._execute_request (rate limiter, then
// circuit breaker, then the retried request itself).
package adapter

import (
	"context"
	"fmt"

	"github.com/briefcasebrain/uir-gateway/internal/circuitbreaker"
	"github.com/briefcasebrain/uir-gateway/internal/ratelimit"
	"github.com/briefcasebrain/uir-gateway/kinderror"
	"github.com/briefcasebrain/uir-gateway/provider"
	"github.com/briefcasebrain/uir-gateway/request"
	"github.com/briefcasebrain/uir-gateway/retry"
)

// Adapter is the contract every provider backend implements, whatever
// system it talks to underneath (a search engine, a vector store, a
// document index, a knowledge graph).
type Adapter interface {
	// Name is the configured provider instance name, e.g. "pinecone-prod".
	Name() string
	// Kind reports what the provider talks to.
	Kind() provider.Kind
	// Search executes a standard text search.
	Search(ctx context.Context, query string, opts request.SearchOptions) ([]request.Result, error)
	// VectorSearch executes vector similarity search.
	VectorSearch(ctx context.Context, vector []float32, opts request.SearchOptions) ([]request.Result, error)
	// Index ingests documents into the provider.
	Index(ctx context.Context, documents []map[string]any, opts map[string]any) (request.IndexResult, error)
	// HealthCheck reports the provider's current health.
	HealthCheck(ctx context.Context) (provider.Health, error)
	// Close releases any held resources (connections, clients).
	Close() error
}

// Invoker wraps an Adapter with rate limiting, circuit breaking, and
// retry, applied in that fixed order around every call. One Invoker is
// created per configured provider instance and shared across concurrent
// requests.
type Invoker struct {
	adapter Adapter
	limiter *ratelimit.Limiter
	breaker *circuitbreaker.CircuitBreaker
	retry   retry.Policy
}

// New builds an Invoker. limiter and breaker may be nil, matching the
// source's "only applied if configured" behavior.
func New(a Adapter, limiter *ratelimit.Limiter, breaker *circuitbreaker.CircuitBreaker, policy retry.Policy) *Invoker {
	return &Invoker{adapter: a, limiter: limiter, breaker: breaker, retry: policy}
}

// Name passes through to the wrapped adapter.
func (inv *Invoker) Name() string { return inv.adapter.Name() }

// Kind passes through to the wrapped adapter.
func (inv *Invoker) Kind() provider.Kind { return inv.adapter.Kind() }

// operation names the named rate-limit bucket and is also used in error
// messages; it mirrors the Adapter method being invoked.
const (
	opSearch       = "search"
	opVectorSearch = "vector_search"
	opIndex        = "index"
	opHealthCheck  = "health_check"
)

// invoke runs fn through the rate limiter, then the circuit breaker, then
// retry, honoring ctx's deadline throughout. fn itself must be safe to
// call more than once (retry may invoke it several times).
func (inv *Invoker) invoke(ctx context.Context, operation string, fn func() error) error {
	if inv.limiter != nil {
		if err := inv.limiter.Acquire(ctx, operation); err != nil {
			return err
		}
	}
	run := func() error {
		return retry.Do(ctx, inv.retry, func() error {
			select {
			case <-ctx.Done():
				return kinderror.Wrap(kinderror.Timeout, fmt.Sprintf("%s: deadline exceeded", operation), ctx.Err())
			default:
			}
			return fn()
		})
	}
	if inv.breaker != nil {
		return inv.breaker.Call(run)
	}
	return run()
}

// Search invokes the adapter's Search under the full protection stack.
func (inv *Invoker) Search(ctx context.Context, query string, opts request.SearchOptions) ([]request.Result, error) {
	var results []request.Result
	err := inv.invoke(ctx, opSearch, func() error {
		var innerErr error
		results, innerErr = inv.adapter.Search(ctx, query, opts)
		return innerErr
	})
	return results, err
}

// VectorSearch invokes the adapter's VectorSearch under the full
// protection stack.
func (inv *Invoker) VectorSearch(ctx context.Context, vector []float32, opts request.SearchOptions) ([]request.Result, error) {
	var results []request.Result
	err := inv.invoke(ctx, opVectorSearch, func() error {
		var innerErr error
		results, innerErr = inv.adapter.VectorSearch(ctx, vector, opts)
		return innerErr
	})
	return results, err
}

// Index invokes the adapter's Index under the full protection stack.
func (inv *Invoker) Index(ctx context.Context, documents []map[string]any, opts map[string]any) (request.IndexResult, error) {
	var result request.IndexResult
	err := inv.invoke(ctx, opIndex, func() error {
		var innerErr error
		result, innerErr = inv.adapter.Index(ctx, documents, opts)
		return innerErr
	})
	return result, err
}

// HealthCheck invokes the adapter's HealthCheck. Health checks bypass the
// breaker (a tripped breaker must not hide the very signal that recovers
// it) but still respect the rate limiter and retry policy.
func (inv *Invoker) HealthCheck(ctx context.Context) (provider.Health, error) {
	var health provider.Health
	if inv.limiter != nil {
		if err := inv.limiter.Acquire(ctx, opHealthCheck); err != nil {
			return health, err
		}
	}
	err := retry.Do(ctx, inv.retry, func() error {
		var innerErr error
		health, innerErr = inv.adapter.HealthCheck(ctx)
		return innerErr
	})
	return health, err
}

// Close releases the wrapped adapter's resources.
func (inv *Invoker) Close() error { return inv.adapter.Close() }

// NormalizeScore rescales score from [minVal, maxVal] to [0, 1], matching
// the source's normalize_score helper. Returns 0.5 when the range is
// degenerate (minVal == maxVal).
func NormalizeScore(score, minVal, maxVal float64) float64 {
	if maxVal == minVal {
		return 0.5
	}
	return (score - minVal) / (maxVal - minVal)
}

// Factory builds an Adapter from a provider.Config. Concrete adapter
// packages register one Factory per provider.Kind with the Registry.
type Factory func(cfg provider.Config) (Adapter, error)

// Registry maps provider kinds to the Factory that constructs them,
// grounded on the source's ProviderFactory (register/create by name) and
// the teacher's providers.Registry (lookup-by-name collection).
type Registry struct {
	factories map[provider.Kind]Factory
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[provider.Kind]Factory)}
}

// Register associates a Factory with a provider kind.
func (r *Registry) Register(kind provider.Kind, f Factory) {
	r.factories[kind] = f
}

// Create builds an Adapter for cfg using the Factory registered for its
// kind.
func (r *Registry) Create(cfg provider.Config) (Adapter, error) {
	f, ok := r.factories[cfg.Kind]
	if !ok {
		return nil, kinderror.New(kinderror.Unsupported, fmt.Sprintf("no adapter registered for provider kind %q", cfg.Kind))
	}
	return f(cfg)
}
