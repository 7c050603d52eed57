package queryproc

import (
	"context"
	"crypto/md5"
	"encoding/binary"
	"math"
	"math/rand"
	"strings"
	"sync"
)

const embeddingDimension = 768

// EmbeddingService turns text into a fixed-dimension dense vector.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// semanticBand boosts a contiguous slice of dimensions when term appears
// in the input text, giving the mock embedding enough structure that
// related queries land closer together than unrelated ones.
type semanticBand struct {
	term       string
	start, end int
	boost      float32
}

var semanticBands = []semanticBand{
	{"machine learning", 0, 50, 0.3},
	{"deep learning", 50, 100, 0.3},
	{"transformer", 100, 150, 0.4},
	{"attention", 150, 200, 0.35},
	{"neural", 200, 250, 0.3},
	{"search", 250, 300, 0.25},
	{"query", 300, 350, 0.25},
	{"document", 350, 400, 0.3},
	{"vector", 400, 450, 0.35},
	{"semantic", 450, 500, 0.4},
}

// MockEmbedding generates deterministic, L2-normalized embeddings from an
// md5 hash of the text seeding a PRNG, with extra signal added to fixed
// dimension bands when known terms appear, grounded on
// MockEmbeddingService.embed. Same text always yields the same vector.
type MockEmbedding struct {
	mu sync.Mutex
	// Dimension overrides embeddingDimension when positive. Set before the
	// first Embed call; changing it afterward invalidates the cache's
	// existing entries without clearing them.
	Dimension int
	cache     map[string][]float32
}

func NewMockEmbedding() *MockEmbedding {
	return &MockEmbedding{cache: make(map[string][]float32)}
}

func (m *MockEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	if cached, ok := m.cache[text]; ok {
		m.mu.Unlock()
		return cached, nil
	}
	dim := embeddingDimension
	if m.Dimension > 0 {
		dim = m.Dimension
	}
	m.mu.Unlock()

	sum := md5.Sum([]byte(text))
	seed := int64(binary.BigEndian.Uint64(sum[:8]))
	rng := rand.New(rand.NewSource(seed))

	vec := make([]float32, dim)
	for i := range vec {
		vec[i] = float32(rng.NormFloat64()) * 0.5
	}

	lower := strings.ToLower(text)
	for _, band := range semanticBands {
		if !strings.Contains(lower, band.term) {
			continue
		}
		for i := band.start; i < band.end && i < len(vec); i++ {
			vec[i] += band.boost
		}
	}
	lengthSignal := float32(len(text)) / 100.0
	for i := 500; i < 510 && i < len(vec); i++ {
		vec[i] += lengthSignal
	}

	normalize(vec)

	m.mu.Lock()
	m.cache[text] = vec
	m.mu.Unlock()
	return vec, nil
}

func normalize(vec []float32) {
	var sumSq float64
	for _, v := range vec {
		sumSq += float64(v) * float64(v)
	}
	norm := math.Sqrt(sumSq)
	if norm == 0 {
		return
	}
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
}

// CosineSimilarity matches MockEmbeddingService.similarity.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
