package adapter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/briefcasebrain/uir-gateway/internal/circuitbreaker"
	"github.com/briefcasebrain/uir-gateway/internal/ratelimit"
	"github.com/briefcasebrain/uir-gateway/kinderror"
	"github.com/briefcasebrain/uir-gateway/provider"
	"github.com/briefcasebrain/uir-gateway/request"
	"github.com/briefcasebrain/uir-gateway/retry"
)

type fakeAdapter struct {
	name       string
	kind       provider.Kind
	searchErrs []error
	calls      int
}

func (f *fakeAdapter) Name() string        { return f.name }
func (f *fakeAdapter) Kind() provider.Kind { return f.kind }

func (f *fakeAdapter) Search(ctx context.Context, query string, opts request.SearchOptions) ([]request.Result, error) {
	idx := f.calls
	f.calls++
	if idx < len(f.searchErrs) && f.searchErrs[idx] != nil {
		return nil, f.searchErrs[idx]
	}
	return []request.Result{{ID: "1", Title: "ok", Provider: f.name}}, nil
}

func (f *fakeAdapter) VectorSearch(ctx context.Context, vector []float32, opts request.SearchOptions) ([]request.Result, error) {
	return nil, nil
}

func (f *fakeAdapter) Index(ctx context.Context, documents []map[string]any, opts map[string]any) (request.IndexResult, error) {
	return request.IndexResult{IndexedCount: len(documents)}, nil
}

func (f *fakeAdapter) HealthCheck(ctx context.Context) (provider.Health, error) {
	return provider.Health{Provider: f.name, Status: provider.StatusHealthy}, nil
}

func (f *fakeAdapter) Close() error { return nil }

func fastPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: 3, Base: time.Millisecond, Cap: 5 * time.Millisecond}
}

func TestInvokerSearchSucceeds(t *testing.T) {
	fa := &fakeAdapter{name: "p1", kind: provider.KindSearchEngine}
	inv := New(fa, nil, nil, fastPolicy())
	results, err := inv.Search(context.Background(), "q", request.NewSearchOptions())
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
}

func TestInvokerRetriesUpstreamFailures(t *testing.T) {
	fa := &fakeAdapter{
		name: "p1", kind: provider.KindSearchEngine,
		searchErrs: []error{
			kinderror.Wrap(kinderror.Upstream, "boom", errors.New("conn reset")),
			nil,
		},
	}
	inv := New(fa, nil, nil, fastPolicy())
	_, err := inv.Search(context.Background(), "q", request.NewSearchOptions())
	if err != nil {
		t.Fatalf("expected eventual success, got %v", err)
	}
	if fa.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", fa.calls)
	}
}

func TestInvokerBreakerRejectsWhenOpen(t *testing.T) {
	fa := &fakeAdapter{name: "p1", kind: provider.KindSearchEngine}
	cb := circuitbreaker.New(1, 1, time.Minute)
	cb.RecordFailure()
	inv := New(fa, nil, cb, fastPolicy())
	_, err := inv.Search(context.Background(), "q", request.NewSearchOptions())
	if !kinderror.Is(err, kinderror.CircuitOpen) {
		t.Fatalf("expected CircuitOpen, got %v", err)
	}
	if fa.calls != 0 {
		t.Fatalf("expected the adapter never to be called while breaker is open, got %d calls", fa.calls)
	}
}

func TestInvokerRateLimiterRejectsBeforeBreaker(t *testing.T) {
	fa := &fakeAdapter{name: "p1", kind: provider.KindSearchEngine}
	limiter := ratelimit.NewLimiter(map[string]int{"default": 1})
	limiter.TryAcquire("default") // exhaust the single token
	inv := New(fa, limiter, circuitbreaker.New(1, 1, time.Minute), fastPolicy())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	_, err := inv.Search(ctx, "q", request.NewSearchOptions())
	if err == nil {
		t.Fatal("expected rate limiter to block and ctx to cancel the acquire")
	}
	if fa.calls != 0 {
		t.Fatalf("expected the adapter never to be called, got %d calls", fa.calls)
	}
}

func TestInvokerHealthCheckBypassesBreaker(t *testing.T) {
	fa := &fakeAdapter{name: "p1", kind: provider.KindSearchEngine}
	cb := circuitbreaker.New(1, 1, time.Minute)
	cb.RecordFailure()
	inv := New(fa, nil, cb, fastPolicy())
	health, err := inv.HealthCheck(context.Background())
	if err != nil {
		t.Fatalf("expected health check to bypass the open breaker, got %v", err)
	}
	if health.Status != provider.StatusHealthy {
		t.Fatalf("expected healthy status, got %v", health.Status)
	}
}

func TestNormalizeScore(t *testing.T) {
	if got := NormalizeScore(5, 0, 10); got != 0.5 {
		t.Fatalf("expected 0.5, got %f", got)
	}
	if got := NormalizeScore(1, 1, 1); got != 0.5 {
		t.Fatalf("expected degenerate range to return 0.5, got %f", got)
	}
}

func TestRegistryCreateUnknownKind(t *testing.T) {
	r := NewRegistry()
	_, err := r.Create(provider.Config{Kind: provider.KindVectorDB})
	if !kinderror.Is(err, kinderror.Unsupported) {
		t.Fatalf("expected Unsupported, got %v", err)
	}
}

func TestRegistryCreateRegisteredKind(t *testing.T) {
	r := NewRegistry()
	r.Register(provider.KindSearchEngine, func(cfg provider.Config) (Adapter, error) {
		return &fakeAdapter{name: cfg.Name, kind: cfg.Kind}, nil
	})
	a, err := r.Create(provider.Config{Name: "p1", Kind: provider.KindSearchEngine})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if a.Name() != "p1" {
		t.Fatalf("expected name p1, got %s", a.Name())
	}
}
