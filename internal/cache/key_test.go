package cache

import (
	"strings"
	"testing"

	"github.com/briefcasebrain/uir-gateway/request"
)

func TestSearchKeyDeterministicAndProviderOrderIndependent(t *testing.T) {
	opts := request.SearchOptions{Limit: 10}
	k1 := SearchKey([]string{"google", "elasticsearch"}, "golang", opts)
	k2 := SearchKey([]string{"elasticsearch", "google"}, "golang", opts)
	if k1 != k2 {
		t.Fatalf("expected provider order to not affect the key, got %q vs %q", k1, k2)
	}
	if !strings.HasPrefix(k1, "uir:v1:elasticsearch,google:") {
		t.Fatalf("expected sorted provider prefix, got %q", k1)
	}
}

func TestSearchKeyHonorsCustomKey(t *testing.T) {
	opts := request.SearchOptions{Cache: &request.CacheOptions{Key: "my-key"}}
	k := SearchKey([]string{"google"}, "golang", opts)
	if k != "uir:custom:my-key" {
		t.Fatalf("expected custom key to take precedence, got %q", k)
	}
}

func TestVectorKeyHashesOnlyFirstTenDimensions(t *testing.T) {
	base := make([]float32, 10)
	for i := range base {
		base[i] = float32(i)
	}
	withTail := append(append([]float32(nil), base...), 999, 998, 997)

	k1 := VectorKey([]string{"pinecone"}, base, "", request.SearchOptions{})
	k2 := VectorKey([]string{"pinecone"}, withTail, "", request.SearchOptions{})
	if k1 != k2 {
		t.Fatalf("expected vectors differing only past dimension 10 to collide, got %q vs %q", k1, k2)
	}
}

func TestVectorKeyPrefersTextOverVector(t *testing.T) {
	k1 := VectorKey([]string{"pinecone"}, []float32{1, 2, 3}, "same text", request.SearchOptions{})
	k2 := VectorKey([]string{"pinecone"}, []float32{9, 9, 9}, "same text", request.SearchOptions{})
	if k1 != k2 {
		t.Fatalf("expected text to take precedence over vector content, got %q vs %q", k1, k2)
	}
}

func TestHybridKeyDistinctFromSearchKey(t *testing.T) {
	opts := request.SearchOptions{}
	if SearchKey([]string{"google"}, "q", opts) == HybridKey([]string{"google"}, "q", opts) {
		t.Fatal("expected hybrid keys to never collide with plain search keys")
	}
}
