// Package request holds the canonical request, result, and response shapes
// the router, aggregator, and adapters exchange. All three request kinds
// (text search, vector search, hybrid search) share a common SearchOptions.
package request

import "time"

// ProviderKind classifies what an adapter talks to.
type ProviderKind string

const (
	KindSearchEngine   ProviderKind = "search_engine"
	KindVectorDB       ProviderKind = "vector_db"
	KindDocumentStore  ProviderKind = "document_store"
	KindKnowledgeGraph ProviderKind = "knowledge_graph"
	KindEnterprise     ProviderKind = "enterprise"
	KindAcademic       ProviderKind = "academic"
	KindDataWarehouse  ProviderKind = "data_warehouse"
)

// FilterOpKind is the tagged-sum operator for a structured filter clause.
// Replaces the source's ad-hoc dynamic filter dictionaries.
type FilterOpKind string

const (
	OpEq       FilterOpKind = "eq"
	OpNe       FilterOpKind = "ne"
	OpGt       FilterOpKind = "gt"
	OpGte      FilterOpKind = "gte"
	OpLt       FilterOpKind = "lt"
	OpLte      FilterOpKind = "lte"
	OpIn       FilterOpKind = "in"
	OpContains FilterOpKind = "contains"
	OpRange    FilterOpKind = "range"
)

// Filter is one structured clause: Field Op Value.
type Filter struct {
	Field string       `json:"field"`
	Op    FilterOpKind `json:"operator"`
	Value any          `json:"value"`
}

// DateRange bounds a result's date field, both ends optional.
type DateRange struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// CacheOptions controls whether and how a request's response is cached.
type CacheOptions struct {
	Enabled    bool   `json:"enabled"`
	TTLSeconds int    `json:"ttl_seconds"`
	Key        string `json:"key,omitempty"`
}

// DefaultCacheOptions mirrors the source's CacheOptions field defaults.
func DefaultCacheOptions() CacheOptions {
	return CacheOptions{Enabled: true, TTLSeconds: 3600}
}

// SearchOptions carries every tunable shared by text, vector, and hybrid
// search. Zero-value fields are filled in by Normalize.
type SearchOptions struct {
	Limit              int            `json:"limit,omitempty"`
	Offset             int            `json:"offset,omitempty"`
	TimeoutMS          int            `json:"timeout_ms,omitempty"`
	Filters            []Filter       `json:"filters,omitempty"`
	DateRange          *DateRange     `json:"date_range,omitempty"`
	IncludeMetadata    bool           `json:"include_metadata"`
	IncludeExplanation bool           `json:"include_explanation"`
	Rerank             bool           `json:"rerank"`
	Cache              *CacheOptions  `json:"cache,omitempty"`
	FallbackProviders  []string       `json:"fallback_providers,omitempty"`
	MinScore           *float64       `json:"min_score,omitempty"`
	Deduplicate        bool           `json:"deduplicate"`
	Extra              map[string]any `json:"extra,omitempty"`
}

// Normalize fills a zero Limit and TimeoutMS with their spec defaults.
// Deduplicate and IncludeMetadata default true, which the zero value cannot
// express; Normalize leaves them as they are, so only options built via
// NewSearchOptions carry those two defaults.
func (o *SearchOptions) Normalize() {
	if o.Limit == 0 {
		o.Limit = 10
	}
	if o.TimeoutMS == 0 {
		o.TimeoutMS = 5000
	}
}

// NewSearchOptions returns options carrying every spec default.
func NewSearchOptions() SearchOptions {
	return SearchOptions{
		Limit:           10,
		Offset:          0,
		TimeoutMS:       5000,
		IncludeMetadata: true,
		Deduplicate:     true,
	}
}

// Timeout returns TimeoutMS as a time.Duration.
func (o SearchOptions) Timeout() time.Duration {
	return time.Duration(o.TimeoutMS) * time.Millisecond
}

// SearchRequest is a text-search request against one or more providers.
type SearchRequest struct {
	Providers []string       `json:"providers"`
	Query     string         `json:"query"`
	Options   SearchOptions  `json:"options"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// VectorSearchRequest is a vector-similarity request. At least one of
// Vector or Text must be set; Text is embedded by the query processor if
// Vector is absent.
type VectorSearchRequest struct {
	Providers []string       `json:"providers"`
	Vector    []float32      `json:"vector,omitempty"`
	Text      string         `json:"text,omitempty"`
	Index     string         `json:"index,omitempty"`
	Namespace string         `json:"namespace,omitempty"`
	Options   SearchOptions  `json:"options"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// HybridStrategyType selects how one hybrid-search strategy is executed.
type HybridStrategyType string

const (
	StrategyKeyword HybridStrategyType = "keyword"
	StrategyVector  HybridStrategyType = "vector"
	StrategyGraph   HybridStrategyType = "graph"
)

// FusionMethod selects how hybrid strategy results are combined.
type FusionMethod string

const (
	FusionReciprocalRank FusionMethod = "reciprocal_rank"
	FusionWeightedSum    FusionMethod = "weighted_sum"
	FusionMaxScore       FusionMethod = "max_score"
)

// HybridStrategy is one leg of a hybrid search.
type HybridStrategy struct {
	Type       HybridStrategyType `json:"type"`
	Provider   string             `json:"provider"`
	Weight     float64            `json:"weight"`
	Query      string             `json:"query,omitempty"`
	Text       string             `json:"text,omitempty"`
	Vector     []float32          `json:"vector,omitempty"`
	GraphQuery string             `json:"graph_query,omitempty"`
	Options    SearchOptions      `json:"options"`
}

// HybridSearchRequest fans a query out across multiple strategies and
// fuses their results.
type HybridSearchRequest struct {
	Strategies   []HybridStrategy `json:"strategies"`
	FusionMethod FusionMethod     `json:"fusion_method"`
	Options      SearchOptions    `json:"options"`
}

// Result is one unified search result, normalized to a provider-agnostic
// shape. Score is rescaled to [0,1] by the adapter before it reaches the
// aggregator.
type Result struct {
	ID          string         `json:"id"`
	Title       string         `json:"title,omitempty"`
	Content     string         `json:"content,omitempty"`
	URL         string         `json:"url,omitempty"`
	Snippet     string         `json:"snippet,omitempty"`
	Score       float64        `json:"score"`
	Provider    string         `json:"provider"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Highlights  []string       `json:"highlights,omitempty"`
	Explanation string         `json:"explanation,omitempty"`
	Vector      []float32      `json:"vector,omitempty"`
}

// Status is the outcome classification of a SearchResponse.
type Status string

const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusError   Status = "error"
)

// ResponseMetadata describes how a response was produced.
type ResponseMetadata struct {
	TotalResults           int      `json:"total_results,omitempty"`
	QueryTimeMS            int64    `json:"query_time_ms"`
	ProvidersUsed          []string `json:"providers_used"`
	ProvidersFailed        []string `json:"providers_failed,omitempty"`
	CacheHit               bool     `json:"cache_hit"`
	TransformationsApplied []string `json:"transformations_applied,omitempty"`
	FiltersApplied         []string `json:"filters_applied,omitempty"`
	SpellCorrected         bool     `json:"spell_corrected"`
}

// ErrorDetail carries a taxonomy kind and message for one failure.
type ErrorDetail struct {
	Kind     string `json:"kind"`
	Message  string `json:"message"`
	Provider string `json:"provider,omitempty"`
}

// SearchResponse is the unified shape returned by every router operation.
type SearchResponse struct {
	Status       Status           `json:"status"`
	RequestID    string           `json:"request_id"`
	Results      []Result         `json:"results"`
	Metadata     ResponseMetadata `json:"metadata"`
	Errors       []ErrorDetail    `json:"errors,omitempty"`
	ProviderUsed string           `json:"provider_used,omitempty"`
	QueryID      string           `json:"query_id,omitempty"`
}

// IndexRequest submits documents for indexing into a provider.
type IndexRequest struct {
	Provider  string           `json:"provider"`
	Documents []map[string]any `json:"documents"`
	IndexName string           `json:"index_name,omitempty"`
	Options   map[string]any   `json:"options,omitempty"`
}

// IndexResult reports the outcome of an IndexRequest.
type IndexResult struct {
	IndexedCount int      `json:"indexed_count"`
	Errors       []string `json:"errors,omitempty"`
}

// QueryAnalysis is the standalone result of /query/analyze, mirroring
// ProcessedQuery but addressed to an external caller.
type QueryAnalysis struct {
	OriginalQuery    string         `json:"original_query"`
	CorrectedQuery   string         `json:"corrected_query,omitempty"`
	ExpandedQuery    string         `json:"expanded_query,omitempty"`
	Entities         []Entity       `json:"entities,omitempty"`
	Intent           *Intent        `json:"intent,omitempty"`
	SuggestedFilters []Filter       `json:"suggested_filters,omitempty"`
	Keywords         []string       `json:"keywords,omitempty"`
}

// Entity is one extracted named entity.
type Entity struct {
	Text       string  `json:"text"`
	Type       string  `json:"type"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
}

// Intent is the classifier's best guess at query intent.
type Intent struct {
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}
