// Package metrics registers the Prometheus metrics used by the gateway.
// Import this package (via blank import) from the server entry point to
// register all metrics before the /metrics handler is mounted.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request-level counters and histograms.
var (
	// SearchRequestsTotal counts completed search/vector/hybrid requests
	// labelled by operation ("search", "vector_search", "hybrid_search")
	// and outcome ("success", "partial", "error").
	SearchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uir_search_requests_total",
			Help: "Total number of retrieval requests processed by the gateway.",
		},
		[]string{"operation", "status"},
	)

	// SearchDuration observes end-to-end request latency in seconds.
	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "uir_search_duration_seconds",
			Help:    "End-to-end retrieval request duration in seconds.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation"},
	)

	// ResultsReturned observes how many results a request returned after
	// aggregation, dedup, and limit/offset.
	ResultsReturned = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "uir_results_returned",
			Help:    "Number of results returned per request.",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		},
		[]string{"operation"},
	)

	// ProviderErrors counts errors broken down by provider and kinderror
	// kind ("upstream", "timeout", "circuit_open", "rate_limited", ...).
	ProviderErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uir_provider_errors_total",
			Help: "Total provider errors by kind.",
		},
		[]string{"provider", "kind"},
	)

	// CircuitBreakerState tracks per-provider circuit breaker state as a
	// gauge: 0 = closed, 1 = open, 2 = half_open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "uir_circuit_breaker_state",
			Help: "Circuit breaker state per provider (0=closed 1=open 2=half_open).",
		},
		[]string{"provider"},
	)

	// RateLimitRejections counts adapter calls rejected by the per-provider
	// token bucket, labelled by provider.
	RateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uir_rate_limit_rejections_total",
			Help: "Total adapter calls rejected by rate limiting.",
		},
		[]string{"provider"},
	)

	// CacheLookupsTotal counts cache reads labelled by tier ("remote",
	// "local") and outcome ("hit", "miss").
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uir_cache_lookups_total",
			Help: "Total cache lookups by tier and outcome.",
		},
		[]string{"tier", "outcome"},
	)
)
