package manager

import (
	"context"
	"testing"
	"time"

	"github.com/briefcasebrain/uir-gateway/adapter"
	"github.com/briefcasebrain/uir-gateway/kinderror"
	"github.com/briefcasebrain/uir-gateway/provider"
	"github.com/briefcasebrain/uir-gateway/request"
)

type fakeAdapter struct {
	name      string
	kind      provider.Kind
	latencyMS time.Duration
	healthErr error
}

func (f *fakeAdapter) Name() string        { return f.name }
func (f *fakeAdapter) Kind() provider.Kind { return f.kind }
func (f *fakeAdapter) Search(ctx context.Context, query string, opts request.SearchOptions) ([]request.Result, error) {
	return nil, nil
}
func (f *fakeAdapter) VectorSearch(ctx context.Context, vector []float32, opts request.SearchOptions) ([]request.Result, error) {
	return nil, nil
}
func (f *fakeAdapter) Index(ctx context.Context, documents []map[string]any, opts map[string]any) (request.IndexResult, error) {
	return request.IndexResult{}, nil
}
func (f *fakeAdapter) HealthCheck(ctx context.Context) (provider.Health, error) {
	if f.latencyMS > 0 {
		time.Sleep(f.latencyMS)
	}
	if f.healthErr != nil {
		return provider.Health{}, f.healthErr
	}
	return provider.Health{Provider: f.name, Status: provider.StatusHealthy}, nil
}
func (f *fakeAdapter) Close() error { return nil }

func testRegistry(adapters ...*fakeAdapter) *adapter.Registry {
	r := adapter.NewRegistry()
	byName := map[string]*fakeAdapter{}
	for _, a := range adapters {
		byName[a.name] = a
	}
	r.Register(provider.KindSearchEngine, func(cfg provider.Config) (adapter.Adapter, error) {
		return byName[cfg.Name], nil
	})
	return r
}

func TestNewSkipsFailedConstruction(t *testing.T) {
	r := adapter.NewRegistry()
	configs := map[string]provider.Config{
		"unknown-kind-provider": {Name: "unknown-kind-provider", Kind: provider.KindVectorDB},
	}
	m := New(r, configs)
	if _, ok := m.Get("unknown-kind-provider"); ok {
		t.Fatal("expected provider construction failure to be skipped, not present")
	}
}

func TestAvailableProvidersAssumedAvailableBeforeHealthCheck(t *testing.T) {
	r := testRegistry(&fakeAdapter{name: "p1", kind: provider.KindSearchEngine})
	m := New(r, map[string]provider.Config{"p1": {Name: "p1", Kind: provider.KindSearchEngine}})
	avail := m.AvailableProviders(nil, "")
	if len(avail) != 1 || avail[0] != "p1" {
		t.Fatalf("expected p1 available before any health check, got %v", avail)
	}
}

func TestRecordHealthStoresAsIsAndFastCheckStaysHealthy(t *testing.T) {
	r := testRegistry(&fakeAdapter{name: "slow", kind: provider.KindSearchEngine, latencyMS: 1 * time.Millisecond})
	m := New(r, map[string]provider.Config{"slow": {Name: "slow", Kind: provider.KindSearchEngine}})
	// Inject a healthy snapshot with latency above the threshold: recordHealth
	// keeps it unchanged, since only CheckHealth reclassifies by latency.
	h := provider.Health{Provider: "slow", Status: provider.StatusHealthy, LatencyMS: degradedLatencyMS + 1}
	m.recordHealth("slow", h)
	got, ok := m.Health("slow")
	if !ok {
		t.Fatal("expected recorded health")
	}
	if got.Status != provider.StatusHealthy {
		t.Fatalf("recordHealth should store as-is; reclassification happens in CheckHealth, got %v", got.Status)
	}

	checked := m.CheckHealth(context.Background(), "slow")
	if checked.Status != provider.StatusHealthy {
		t.Fatalf("expected fast fake adapter to report healthy, got %v", checked.Status)
	}
}

func TestCheckHealthUnknownProviderIsUnhealthy(t *testing.T) {
	m := New(adapter.NewRegistry(), map[string]provider.Config{})
	h := m.CheckHealth(context.Background(), "missing")
	if h.Status != provider.StatusUnhealthy {
		t.Fatalf("expected unhealthy for unknown provider, got %v", h.Status)
	}
}

func TestFailoverPicksLowestLatencyAlternative(t *testing.T) {
	r := testRegistry(
		&fakeAdapter{name: "a", kind: provider.KindSearchEngine},
		&fakeAdapter{name: "b", kind: provider.KindSearchEngine},
	)
	m := New(r, map[string]provider.Config{
		"a": {Name: "a", Kind: provider.KindSearchEngine},
		"b": {Name: "b", Kind: provider.KindSearchEngine},
	})
	m.recordHealth("a", provider.Health{Provider: "a", Status: provider.StatusHealthy, LatencyMS: 500})
	m.recordHealth("b", provider.Health{Provider: "b", Status: provider.StatusHealthy, LatencyMS: 50})

	alt, ok := m.Failover("a")
	if !ok || alt != "b" {
		t.Fatalf("expected failover to b (lower latency), got %q ok=%v", alt, ok)
	}
}

func TestFailoverReturnsFalseWhenNoAlternatives(t *testing.T) {
	r := testRegistry(&fakeAdapter{name: "only", kind: provider.KindSearchEngine})
	m := New(r, map[string]provider.Config{"only": {Name: "only", Kind: provider.KindSearchEngine}})
	_, ok := m.Failover("only")
	if ok {
		t.Fatal("expected no alternatives for the sole provider of its kind")
	}
}

func TestMustGetReturnsNoProvidersAvailable(t *testing.T) {
	m := New(adapter.NewRegistry(), map[string]provider.Config{})
	_, err := m.MustGet("missing")
	if !kinderror.Is(err, kinderror.NoProvidersAvailable) {
		t.Fatalf("expected NoProvidersAvailable, got %v", err)
	}
}

func TestShutdownStopsHealthLoop(t *testing.T) {
	r := testRegistry(&fakeAdapter{name: "p1", kind: provider.KindSearchEngine})
	m := New(r, map[string]provider.Config{"p1": {Name: "p1", Kind: provider.KindSearchEngine}})
	m.interval = time.Millisecond
	ctx := context.Background()
	m.Start(ctx)
	time.Sleep(5 * time.Millisecond)
	if err := m.Shutdown(); err != nil {
		t.Fatalf("expected clean shutdown, got %v", err)
	}
}
