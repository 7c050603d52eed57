// Package provider holds the provider-level configuration and health
// types shared by the Manager and every adapter. Adapter behavior itself
// lives in package adapter and the concrete adapters/* packages.
package provider

import "time"

// RetryPolicy configures the exponential-backoff retry wrapping every
// adapter call.
type RetryPolicy struct {
	MaxAttempts int           `json:"max_attempts" yaml:"max_attempts"`
	Base        time.Duration `json:"base" yaml:"base"`
	Cap         time.Duration `json:"cap" yaml:"cap"`
}

// DefaultRetryPolicy matches the source's three-attempt, 2s-10s backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Base: 2 * time.Second, Cap: 10 * time.Second}
}

// CircuitBreakerConfig configures the per-adapter breaker.
type CircuitBreakerConfig struct {
	FailureThreshold int           `json:"failure_threshold" yaml:"failure_threshold"`
	RecoveryTimeout  time.Duration `json:"recovery_timeout" yaml:"recovery_timeout"`
	HalfOpenMaxCalls int           `json:"half_open_max_calls" yaml:"half_open_max_calls"`
}

// DefaultCircuitBreakerConfig matches the source's failure_threshold=5,
// recovery_timeout=60s, half_open_max_calls=3.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{FailureThreshold: 5, RecoveryTimeout: 60 * time.Second, HalfOpenMaxCalls: 3}
}

// Kind classifies what a provider talks to; mirrors request.ProviderKind
// but is re-declared here to keep package provider import-free of
// package request (config loading happens before any request exists).
type Kind string

const (
	KindSearchEngine   Kind = "search_engine"
	KindVectorDB       Kind = "vector_db"
	KindDocumentStore  Kind = "document_store"
	KindKnowledgeGraph Kind = "knowledge_graph"
	KindEnterprise     Kind = "enterprise"
	KindAcademic       Kind = "academic"
	KindDataWarehouse  Kind = "data_warehouse"
)

// Config describes one configured provider instance.
type Config struct {
	Name            string               `json:"name" yaml:"name"`
	Kind            Kind                 `json:"kind" yaml:"kind"`
	AuthMethod      string               `json:"auth_method" yaml:"auth_method"`
	Credentials     map[string]string    `json:"credentials" yaml:"credentials"`
	Endpoints       map[string]string    `json:"endpoints" yaml:"endpoints"`
	RateLimits      map[string]int       `json:"rate_limits" yaml:"rate_limits"`
	Retry           RetryPolicy          `json:"retry" yaml:"retry"`
	TimeoutMS       int                  `json:"timeout_ms" yaml:"timeout_ms"`
	CircuitBreaker  CircuitBreakerConfig `json:"circuit_breaker" yaml:"circuit_breaker"`
}

// Status is a provider's coarse health classification.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// Health is the latest known health snapshot for one provider.
type Health struct {
	Provider     string    `json:"provider"`
	Status       Status    `json:"status"`
	LatencyMS    float64   `json:"latency_ms,omitempty"`
	SuccessRate  float64   `json:"success_rate,omitempty"`
	LastCheck    time.Time `json:"last_check"`
	ErrorMessage string    `json:"error_message,omitempty"`
}
