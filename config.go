// Package uirgateway wires the retrieval gateway's components — provider
// manager, query processor, cache, router, admin store — into a single
// runnable Gateway, the way the teacher's Gateway type wired providers,
// plugins, and a routing strategy into one LLM request pipeline.
package uirgateway

import (
	"time"

	"github.com/briefcasebrain/uir-gateway/provider"
)

// Config holds every setting needed to construct a Gateway: the provider
// catalog, cache backend, health-check cadence, bind address, and admin
// persistence settings.
type Config struct {
	// Providers maps a configured provider instance name to its settings.
	Providers map[string]provider.Config `json:"providers" yaml:"providers"`

	// Cache configures the two-tier cache's remote and local settings.
	Cache CacheConfig `json:"cache" yaml:"cache"`

	// HealthCheckInterval overrides manager.DefaultHealthCheckInterval
	// when positive.
	HealthCheckInterval time.Duration `json:"health_check_interval" yaml:"health_check_interval"`

	// EmbeddingDimension overrides the mock embedder's default dimension
	// (768) when positive; ignored when a real embedding backend is wired.
	EmbeddingDimension int `json:"embedding_dimension" yaml:"embedding_dimension"`

	// Bind configures the HTTP server's listen address.
	Bind BindConfig `json:"bind" yaml:"bind"`

	// WorkerCount is loaded from config or WORKER_COUNT and must not be
	// negative; no gateway component reads it.
	WorkerCount int `json:"worker_count" yaml:"worker_count"`

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `json:"log_level" yaml:"log_level"`

	// Admin configures provider-config persistence and the admin API.
	Admin AdminConfig `json:"admin" yaml:"admin"`
}

// CacheConfig configures internal/cache's two tiers.
type CacheConfig struct {
	// RemoteURL is a redis://host:port/db URL. Empty disables the remote
	// tier; the cache then behaves as a local-only cache.
	RemoteURL string `json:"remote_url" yaml:"remote_url"`
	// DefaultTTL is used when a request doesn't set options.cache.ttl_seconds.
	DefaultTTL time.Duration `json:"default_ttl" yaml:"default_ttl"`
	// LocalCapacity bounds the in-memory fallback tier's entry count.
	LocalCapacity int `json:"local_capacity" yaml:"local_capacity"`
}

// DefaultCacheConfig matches the source's 3600-second default TTL and a
// 1000-entry local cache.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{DefaultTTL: time.Hour, LocalCapacity: 1000}
}

// BindConfig configures the HTTP listen address.
type BindConfig struct {
	Host string `json:"host" yaml:"host"`
	Port int    `json:"port" yaml:"port"`
}

// DefaultBindConfig matches the teacher's cmd entry point default.
func DefaultBindConfig() BindConfig {
	return BindConfig{Host: "0.0.0.0", Port: 8080}
}

// AdminConfig configures internal/admin's provider-config store and API.
type AdminConfig struct {
	// Driver selects the SQL backend: "sqlite" or "postgres". Defaults to
	// "sqlite" when empty.
	Driver string `json:"driver" yaml:"driver"`
	// DSN is the driver-specific connection string. For sqlite this is a
	// file path (or ":memory:"); for postgres, a libpq connection string.
	DSN string `json:"dsn" yaml:"dsn"`
	// BearerToken gates every /admin/* request. Empty disables the admin
	// API entirely (cmd/retrievalgw does not mount it).
	BearerToken string `json:"bearer_token" yaml:"bearer_token"`
	// EncryptionKey encrypts provider credentials at rest: any non-empty
	// string, hashed with SHA-256 into the AES-256-GCM key. ValidateConfig
	// requires it whenever DSN is set.
	EncryptionKey string `json:"encryption_key" yaml:"encryption_key"`
}
