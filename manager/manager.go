// Package manager owns the live set of provider adapters: construction
// from configuration, a background health-check loop, and failover
// selection when a provider fails mid-request. Grounded on
// providers/manager.py's ProviderManager.
package manager

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/briefcasebrain/uir-gateway/adapter"
	"github.com/briefcasebrain/uir-gateway/internal/circuitbreaker"
	"github.com/briefcasebrain/uir-gateway/internal/logging"
	"github.com/briefcasebrain/uir-gateway/internal/ratelimit"
	"github.com/briefcasebrain/uir-gateway/kinderror"
	"github.com/briefcasebrain/uir-gateway/provider"
	"github.com/briefcasebrain/uir-gateway/retry"
)

// DefaultHealthCheckInterval matches the source's 60-second loop.
const DefaultHealthCheckInterval = 60 * time.Second

// degradedLatencyMS is the latency above which a healthy provider is
// reclassified as degraded, matching the source's 5000ms threshold.
const degradedLatencyMS = 5000

// Manager owns every configured provider's adapter and latest health
// snapshot, and runs the background health-check loop.
type Manager struct {
	mu       sync.RWMutex
	adapters map[string]*adapter.Invoker
	configs  map[string]provider.Config
	health   map[string]provider.Health

	interval time.Duration
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// BuildInvoker wraps a freshly-created adapter with the rate limiter,
// circuit breaker, and retry policy described by its config, following
// the same bucket→breaker→retry ordering Invoker enforces.
func BuildInvoker(a adapter.Adapter, cfg provider.Config) *adapter.Invoker {
	var limiter *ratelimit.Limiter
	if len(cfg.RateLimits) > 0 {
		limiter = ratelimit.NewLimiter(cfg.RateLimits)
	}
	breaker := circuitbreaker.New(
		cfg.CircuitBreaker.FailureThreshold,
		cfg.CircuitBreaker.HalfOpenMaxCalls,
		cfg.CircuitBreaker.RecoveryTimeout,
	)
	policy := retry.Policy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		Base:        cfg.Retry.Base,
		Cap:         cfg.Retry.Cap,
	}
	if policy.MaxAttempts == 0 {
		policy = retry.DefaultPolicy()
	}
	return adapter.New(a, limiter, breaker, policy)
}

// New constructs a Manager, building one Invoker per config via registry.
// A construction failure for one provider is logged and that provider is
// simply omitted, matching the source's try/except-per-provider loop; it
// never fails the whole Manager.
func New(registry *adapter.Registry, configs map[string]provider.Config) *Manager {
	m := &Manager{
		adapters: make(map[string]*adapter.Invoker, len(configs)),
		configs:  make(map[string]provider.Config, len(configs)),
		health:   make(map[string]provider.Health, len(configs)),
		interval: DefaultHealthCheckInterval,
	}
	for name, cfg := range configs {
		a, err := registry.Create(cfg)
		if err != nil {
			logging.Logger.Error("failed to initialize provider", "provider", name, "error", err)
			continue
		}
		m.adapters[name] = BuildInvoker(a, cfg)
		m.configs[name] = cfg
		logging.Logger.Info("initialized provider", "provider", name)
	}
	return m
}

// SetHealthCheckInterval overrides DefaultHealthCheckInterval. Call before
// Start; changing it afterward has no effect on an already-running loop.
func (m *Manager) SetHealthCheckInterval(d time.Duration) {
	m.interval = d
}

// Start launches the background health-check loop. Call once; Shutdown
// stops it.
func (m *Manager) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.wg.Add(1)
	go m.healthMonitor(ctx)
}

// Get returns the named provider's Invoker, or false if unconfigured.
func (m *Manager) Get(name string) (*adapter.Invoker, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inv, ok := m.adapters[name]
	return inv, ok
}

// AvailableProviders lists configured providers that are healthy or
// degraded (not unhealthy), optionally filtered to requestedProviders
// and/or a specific kind. A provider with no health check yet is assumed
// available, matching the source.
func (m *Manager) AvailableProviders(requestedProviders []string, kind provider.Kind) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var requestedSet map[string]bool
	if len(requestedProviders) > 0 {
		requestedSet = make(map[string]bool, len(requestedProviders))
		for _, p := range requestedProviders {
			requestedSet[p] = true
		}
	}

	var available []string
	for name := range m.adapters {
		if requestedSet != nil && !requestedSet[name] {
			continue
		}
		if kind != "" && m.configs[name].Kind != kind {
			continue
		}
		health, checked := m.health[name]
		if !checked || health.Status == provider.StatusHealthy || health.Status == provider.StatusDegraded {
			available = append(available, name)
		}
	}
	return available
}

// CheckHealth runs one provider's health check, records the result
// (reclassifying Healthy as Degraded above degradedLatencyMS), and
// returns it.
func (m *Manager) CheckHealth(ctx context.Context, name string) provider.Health {
	inv, ok := m.Get(name)
	if !ok {
		h := provider.Health{Provider: name, Status: provider.StatusUnhealthy, LastCheck: time.Now(), ErrorMessage: "provider not found"}
		m.recordHealth(name, h)
		return h
	}

	start := time.Now()
	health, err := inv.HealthCheck(ctx)
	latency := float64(time.Since(start).Milliseconds())
	health.LatencyMS = latency
	health.LastCheck = time.Now()
	if err != nil {
		health.Status = provider.StatusUnhealthy
		health.ErrorMessage = err.Error()
		logging.Logger.Error("health check failed", "provider", name, "error", err)
	} else if health.Status == provider.StatusHealthy && latency > degradedLatencyMS {
		health.Status = provider.StatusDegraded
	}
	m.recordHealth(name, health)
	return health
}

func (m *Manager) recordHealth(name string, h provider.Health) {
	m.mu.Lock()
	m.health[name] = h
	m.mu.Unlock()
}

// Health returns the last known health snapshot for a provider.
func (m *Manager) Health(name string) (provider.Health, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.health[name]
	return h, ok
}

// healthMonitor checks every configured provider's health once per
// interval, each check isolated from the others (one provider's failure
// doesn't cancel the rest), mirroring asyncio.gather(..., return_exceptions=True).
func (m *Manager) healthMonitor(ctx context.Context) {
	defer m.wg.Done()
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.runHealthSweep(ctx)
		}
	}
}

func (m *Manager) runHealthSweep(ctx context.Context) {
	m.mu.RLock()
	names := make([]string, 0, len(m.adapters))
	for name := range m.adapters {
		names = append(names, name)
	}
	m.mu.RUnlock()

	var wg sync.WaitGroup
	for _, name := range names {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			m.CheckHealth(ctx, name)
		}(name)
	}
	wg.Wait()

	var healthy, degraded, unhealthy int
	m.mu.RLock()
	for _, h := range m.health {
		switch h.Status {
		case provider.StatusHealthy:
			healthy++
		case provider.StatusDegraded:
			degraded++
		default:
			unhealthy++
		}
	}
	m.mu.RUnlock()
	logging.Logger.Info("health check completed", "healthy", healthy, "degraded", degraded, "unhealthy", unhealthy)
}

// Failover returns the best alternative to failedProvider: an available
// provider of the same kind, excluding failedProvider itself, preferring
// the lowest recorded latency and falling back to the first available
// candidate if no latency data exists.
func (m *Manager) Failover(failedProvider string) (string, bool) {
	m.mu.RLock()
	cfg, ok := m.configs[failedProvider]
	m.mu.RUnlock()
	if !ok {
		return "", false
	}

	alternatives := m.AvailableProviders(nil, cfg.Kind)
	var candidates []string
	for _, p := range alternatives {
		if p != failedProvider {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return "", false
	}

	best := candidates[0]
	bestLatency := -1.0
	m.mu.RLock()
	for _, p := range candidates {
		h, ok := m.health[p]
		if ok && (bestLatency < 0 || h.LatencyMS < bestLatency) {
			bestLatency = h.LatencyMS
			best = p
		}
	}
	m.mu.RUnlock()
	return best, true
}

// Stats summarizes the current health distribution, grounded on
// get_provider_stats.
type Stats struct {
	TotalProviders int
	Healthy        int
	Degraded       int
	Unhealthy      int
	Providers      map[string]provider.Health
}

// Stats returns a snapshot of provider counts and health.
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := Stats{TotalProviders: len(m.adapters), Providers: make(map[string]provider.Health, len(m.health))}
	for name, h := range m.health {
		s.Providers[name] = h
		switch h.Status {
		case provider.StatusHealthy:
			s.Healthy++
		case provider.StatusDegraded:
			s.Degraded++
		default:
			s.Unhealthy++
		}
	}
	return s
}

// Shutdown stops the health-check loop and closes every adapter.
func (m *Manager) Shutdown() error {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()

	m.mu.RLock()
	defer m.mu.RUnlock()
	var firstErr error
	for name, inv := range m.adapters {
		if err := inv.Close(); err != nil {
			logging.Logger.Error("error closing adapter", "provider", name, "error", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("closing %s: %w", name, err)
			}
		}
	}
	return firstErr
}

// errNotFound is returned by MustGet, for call sites that need a kinderror
// rather than a bool ok.
var errNotFound = func(name string) error {
	return kinderror.New(kinderror.NoProvidersAvailable, fmt.Sprintf("provider %q not found", name))
}

// MustGet is Get but returning a kinderror.NoProvidersAvailable instead
// of a bare bool, for call sites that need to propagate the taxonomy.
func (m *Manager) MustGet(name string) (*adapter.Invoker, error) {
	inv, ok := m.Get(name)
	if !ok {
		return nil, errNotFound(name)
	}
	return inv, nil
}
