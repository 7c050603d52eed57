package router

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/briefcasebrain/uir-gateway/adapter"
	"github.com/briefcasebrain/uir-gateway/internal/cache"
	"github.com/briefcasebrain/uir-gateway/manager"
	"github.com/briefcasebrain/uir-gateway/provider"
	"github.com/briefcasebrain/uir-gateway/queryproc"
	"github.com/briefcasebrain/uir-gateway/request"
)

type fakeAdapter struct {
	name    string
	kind    provider.Kind
	results []request.Result
	err     error
}

func (f *fakeAdapter) Name() string        { return f.name }
func (f *fakeAdapter) Kind() provider.Kind { return f.kind }
func (f *fakeAdapter) Search(ctx context.Context, query string, opts request.SearchOptions) ([]request.Result, error) {
	return f.results, f.err
}
func (f *fakeAdapter) VectorSearch(ctx context.Context, vector []float32, opts request.SearchOptions) ([]request.Result, error) {
	return f.results, f.err
}
func (f *fakeAdapter) Index(ctx context.Context, documents []map[string]any, opts map[string]any) (request.IndexResult, error) {
	return request.IndexResult{}, nil
}
func (f *fakeAdapter) HealthCheck(ctx context.Context) (provider.Health, error) {
	return provider.Health{Provider: f.name, Status: provider.StatusHealthy}, nil
}
func (f *fakeAdapter) Close() error { return nil }

func testManager(adapters ...*fakeAdapter) *manager.Manager {
	r := adapter.NewRegistry()
	byName := map[string]*fakeAdapter{}
	configs := map[string]provider.Config{}
	for _, a := range adapters {
		byName[a.name] = a
		configs[a.name] = provider.Config{Name: a.name, Kind: a.kind}
	}
	r.Register(provider.KindSearchEngine, func(cfg provider.Config) (adapter.Adapter, error) {
		return byName[cfg.Name], nil
	})
	r.Register(provider.KindVectorDB, func(cfg provider.Config) (adapter.Adapter, error) {
		return byName[cfg.Name], nil
	})
	return manager.New(r, configs)
}

func TestSearchAggregatesAcrossProviders(t *testing.T) {
	m := testManager(
		&fakeAdapter{name: "a", kind: provider.KindSearchEngine, results: []request.Result{{ID: "1", URL: "http://x/1", Score: 0.5}}},
		&fakeAdapter{name: "b", kind: provider.KindSearchEngine, results: []request.Result{{ID: "2", URL: "http://x/2", Score: 0.9}}},
	)
	r := New(m, queryproc.New(), nil)
	resp := r.Search(context.Background(), request.SearchRequest{Providers: []string{"a", "b"}, Query: "machine learning"})

	if resp.Status != request.StatusSuccess {
		t.Fatalf("expected success status, got %q", resp.Status)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("expected 2 aggregated results, got %d", len(resp.Results))
	}
	if resp.Results[0].Score != 0.9 {
		t.Fatalf("expected highest score first, got %+v", resp.Results)
	}
}

func TestSearchPartialStatusWhenOneProviderFails(t *testing.T) {
	m := testManager(
		&fakeAdapter{name: "ok", kind: provider.KindSearchEngine, results: []request.Result{{ID: "1", URL: "http://x/1", Score: 0.5}}},
		&fakeAdapter{name: "bad", kind: provider.KindSearchEngine, err: errors.New("provider unavailable")},
	)
	r := New(m, queryproc.New(), nil)
	resp := r.Search(context.Background(), request.SearchRequest{Providers: []string{"ok", "bad"}, Query: "query"})

	if resp.Status != request.StatusPartial {
		t.Fatalf("expected partial status, got %q", resp.Status)
	}
	if len(resp.Metadata.ProvidersFailed) != 1 || resp.Metadata.ProvidersFailed[0] != "bad" {
		t.Fatalf("expected bad provider recorded as failed, got %+v", resp.Metadata)
	}
}

func TestSearchErrorResponseWhenNoProvidersAvailable(t *testing.T) {
	m := testManager()
	r := New(m, queryproc.New(), nil)
	resp := r.Search(context.Background(), request.SearchRequest{Providers: []string{"missing"}, Query: "query"})

	if resp.Status != request.StatusError {
		t.Fatalf("expected error status, got %q", resp.Status)
	}
	if len(resp.Errors) != 1 {
		t.Fatalf("expected one error detail, got %+v", resp.Errors)
	}
}

func TestSearchAppliesMinScoreAndLimit(t *testing.T) {
	m := testManager(&fakeAdapter{name: "a", kind: provider.KindSearchEngine, results: []request.Result{
		{ID: "1", URL: "http://x/1", Score: 0.1},
		{ID: "2", URL: "http://x/2", Score: 0.8},
		{ID: "3", URL: "http://x/3", Score: 0.6},
	}})
	r := New(m, queryproc.New(), nil)
	minScore := 0.5
	resp := r.Search(context.Background(), request.SearchRequest{
		Providers: []string{"a"},
		Query:     "query",
		Options:   request.SearchOptions{MinScore: &minScore, Limit: 1},
	})

	if len(resp.Results) != 1 {
		t.Fatalf("expected limit to truncate to 1 result, got %d", len(resp.Results))
	}
	if resp.Results[0].Score != 0.8 {
		t.Fatalf("expected the highest-scoring result above threshold, got %+v", resp.Results)
	}
}

func TestSearchUsesCache(t *testing.T) {
	m := testManager(&fakeAdapter{name: "a", kind: provider.KindSearchEngine, results: []request.Result{{ID: "1", URL: "http://x/1", Score: 0.5}}})
	c := cache.NewTiered(nil, cache.NewMemory(100, time.Minute))
	r := New(m, queryproc.New(), c)

	req := request.SearchRequest{Providers: []string{"a"}, Query: "query"}
	first := r.Search(context.Background(), req)
	if first.Metadata.CacheHit {
		t.Fatal("expected first call to be a cache miss")
	}
	second := r.Search(context.Background(), req)
	if !second.Metadata.CacheHit {
		t.Fatal("expected second call to be a cache hit")
	}
}

func TestVectorSearchEmbedsTextWhenNoVectorProvided(t *testing.T) {
	m := testManager(&fakeAdapter{name: "v", kind: provider.KindVectorDB, results: []request.Result{{ID: "1", URL: "http://x/1", Score: 0.7}}})
	r := New(m, queryproc.New(), nil)
	resp := r.VectorSearch(context.Background(), request.VectorSearchRequest{Providers: []string{"v"}, Text: "machine learning"})

	if resp.Status != request.StatusSuccess {
		t.Fatalf("expected success, got %q: %+v", resp.Status, resp.Errors)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(resp.Results))
	}
}

func TestVectorSearchErrorsWithoutVectorOrText(t *testing.T) {
	m := testManager(&fakeAdapter{name: "v", kind: provider.KindVectorDB})
	r := New(m, queryproc.New(), nil)
	resp := r.VectorSearch(context.Background(), request.VectorSearchRequest{Providers: []string{"v"}})

	if resp.Status != request.StatusError {
		t.Fatalf("expected error status, got %q", resp.Status)
	}
}

func TestHybridSearchAppliesWeightBeforeFusion(t *testing.T) {
	m := testManager(
		&fakeAdapter{name: "kw", kind: provider.KindSearchEngine, results: []request.Result{{ID: "1", URL: "http://x/1", Score: 1.0}}},
		&fakeAdapter{name: "vec", kind: provider.KindVectorDB, results: []request.Result{{ID: "1", URL: "http://x/1", Score: 1.0}}},
	)
	r := New(m, queryproc.New(), nil)
	resp := r.HybridSearch(context.Background(), request.HybridSearchRequest{
		Strategies: []request.HybridStrategy{
			{Type: request.StrategyKeyword, Provider: "kw", Query: "query", Weight: 0.5},
			{Type: request.StrategyVector, Provider: "vec", Text: "query", Weight: 1.5},
		},
		FusionMethod: request.FusionMaxScore,
	})

	if len(resp.Results) != 1 {
		t.Fatalf("expected the shared fingerprint to fuse into 1 result, got %d", len(resp.Results))
	}
	if resp.Results[0].Score != 1.5 {
		t.Fatalf("expected max-score fusion to keep the higher weighted score, got %v", resp.Results[0].Score)
	}
}
