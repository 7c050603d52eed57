package cache

import (
	"testing"
	"time"

	"github.com/briefcasebrain/uir-gateway/request"
)

func TestTieredWithoutRemoteBehavesAsLocal(t *testing.T) {
	tc := NewTiered(nil, NewMemory(10, time.Minute))
	tc.Set(bg, "k", &request.SearchResponse{RequestID: "r1"}, 0)

	got, ok := tc.Get(bg, "k")
	if !ok || got.RequestID != "r1" {
		t.Fatalf("expected local-only tier to serve the cached value, got %+v ok=%v", got, ok)
	}
	if tc.Len(bg) != 1 {
		t.Fatalf("expected len 1, got %d", tc.Len(bg))
	}
}

func TestTieredDeleteAndClear(t *testing.T) {
	tc := NewTiered(nil, NewMemory(10, time.Minute))
	tc.Set(bg, "a", &request.SearchResponse{RequestID: "a"}, 0)
	tc.Delete(bg, "a")
	if _, ok := tc.Get(bg, "a"); ok {
		t.Fatal("expected delete to remove the entry")
	}

	tc.Set(bg, "b", &request.SearchResponse{RequestID: "b"}, 0)
	tc.Clear(bg)
	if tc.Len(bg) != 0 {
		t.Fatalf("expected 0 entries after clear, got %d", tc.Len(bg))
	}
}

func TestTieredStatsReportsRemoteDisabled(t *testing.T) {
	tc := NewTiered(nil, NewMemory(10, time.Minute))
	stats := tc.Stats(bg)
	if stats.RemoteEnabled {
		t.Fatal("expected RemoteEnabled false with no remote tier configured")
	}
}
