// Package uirgateway provides the unified information retrieval gateway: a
// single entry point that fans a search, vector search, hybrid search, or
// RAG retrieval request out across heterogeneous provider backends (search
// engines, vector databases, document stores, knowledge graphs) and
// aggregates the results.
//
// Gateway is the main entry point: build one with New from a [Config],
// call Start to launch the background health-check loop, then drive
// requests through Router, Processor, or the convenience Search/
// VectorSearch/HybridSearch methods. Call Shutdown to release adapters.
package uirgateway

import (
	"context"
	"fmt"

	"github.com/briefcasebrain/uir-gateway/adapter"
	"github.com/briefcasebrain/uir-gateway/adapters/docstoreadapter"
	"github.com/briefcasebrain/uir-gateway/adapters/graphadapter"
	"github.com/briefcasebrain/uir-gateway/adapters/vectoradapter"
	"github.com/briefcasebrain/uir-gateway/adapters/websearchadapter"
	"github.com/briefcasebrain/uir-gateway/internal/admin"
	"github.com/briefcasebrain/uir-gateway/internal/cache"
	"github.com/briefcasebrain/uir-gateway/internal/logging"
	"github.com/briefcasebrain/uir-gateway/internal/requestlog"
	"github.com/briefcasebrain/uir-gateway/manager"
	"github.com/briefcasebrain/uir-gateway/provider"
	"github.com/briefcasebrain/uir-gateway/queryproc"
	"github.com/briefcasebrain/uir-gateway/request"
	"github.com/briefcasebrain/uir-gateway/router"
)

// Gateway wires the provider manager, query processor, cache, and router
// into one runnable unit. It is the retrieval-domain analog of the
// teacher's Gateway, which wired providers, plugins, and a routing
// strategy into a single LLM request pipeline.
type Gateway struct {
	Config     Config
	Registry   *adapter.Registry
	Manager    *manager.Manager
	Processor  *queryproc.Processor
	Cache      *cache.Tiered
	Router     *router.Router
	RequestLog requestlog.Reader // nil unless cfg.Admin.DSN is set
	Admin      *admin.Handlers   // nil unless cfg.Admin.DSN is set
}

// NewRegistry builds an adapter.Registry with every concrete provider
// backend this build ships registered under its kind. A provider.Config
// naming a kind with no registered factory (e.g. KindEnterprise,
// KindAcademic, KindDataWarehouse) still passes ValidateConfig, but
// Registry.Create returns a kinderror.Unsupported for it and manager.New
// logs that error and leaves the provider out.
func NewRegistry() *adapter.Registry {
	reg := adapter.NewRegistry()
	reg.Register(provider.KindSearchEngine, func(cfg provider.Config) (adapter.Adapter, error) {
		return websearchadapter.New(cfg)
	})
	reg.Register(provider.KindVectorDB, func(cfg provider.Config) (adapter.Adapter, error) {
		return vectoradapter.New(cfg)
	})
	reg.Register(provider.KindDocumentStore, func(cfg provider.Config) (adapter.Adapter, error) {
		return docstoreadapter.New(cfg)
	})
	reg.Register(provider.KindKnowledgeGraph, func(cfg provider.Config) (adapter.Adapter, error) {
		return graphadapter.New(cfg)
	})
	return reg
}

// New builds a Gateway from cfg: a provider manager over every configured
// provider, a query processor, a two-tier cache, and a router tying them
// together. New runs ValidateConfig on cfg first and returns its error.
func New(cfg Config) (*Gateway, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	logging.Setup(cfg.LogLevel, "")

	registry := NewRegistry()
	mgr := manager.New(registry, cfg.Providers)
	if cfg.HealthCheckInterval > 0 {
		mgr.SetHealthCheckInterval(cfg.HealthCheckInterval)
	}

	proc := queryproc.New()
	if cfg.EmbeddingDimension > 0 {
		if me, ok := proc.Embedding.(*queryproc.MockEmbedding); ok {
			me.Dimension = cfg.EmbeddingDimension
		}
	}

	local := cache.NewMemory(cfg.Cache.LocalCapacity, cfg.Cache.DefaultTTL)
	var remote *cache.Redis
	if cfg.Cache.RemoteURL != "" {
		r, err := cache.NewRedis(cfg.Cache.RemoteURL, cfg.Cache.DefaultTTL)
		if err != nil {
			return nil, fmt.Errorf("connecting to remote cache: %w", err)
		}
		remote = r
	}
	tiered := cache.NewTiered(remote, local)
	rtr := router.New(mgr, proc, tiered)

	gw := &Gateway{
		Config:    cfg,
		Registry:  registry,
		Manager:   mgr,
		Processor: proc,
		Cache:     tiered,
		Router:    rtr,
	}

	if cfg.Admin.DSN != "" {
		logWriter, err := openRequestLog(cfg.Admin)
		if err != nil {
			return nil, fmt.Errorf("opening request log store: %w", err)
		}
		rtr.RequestLog = logWriter
		gw.RequestLog = logWriter

		providerStore, err := openProviderStore(cfg.Admin)
		if err != nil {
			return nil, fmt.Errorf("opening provider config store: %w", err)
		}
		gw.Admin = &admin.Handlers{Store: providerStore, Manager: mgr, Logs: logWriter}
	}

	return gw, nil
}

// openRequestLog opens a SQL-backed request log writer/reader using the
// same driver/DSN as the admin config store.
func openRequestLog(cfg AdminConfig) (*requestlog.SQLWriter, error) {
	if cfg.Driver == "postgres" {
		return requestlog.NewPostgresWriter(cfg.DSN)
	}
	return requestlog.NewSQLiteWriter(cfg.DSN)
}

// openProviderStore opens the admin API's persisted provider-config store,
// encrypting credentials at rest with cfg.EncryptionKey. ValidateConfig
// requires EncryptionKey whenever DSN is set, so this only fails on a bad
// driver/DSN combination, not a missing key.
func openProviderStore(cfg AdminConfig) (*admin.SQLStore, error) {
	crypt, err := admin.NewEncryptor(cfg.EncryptionKey)
	if err != nil {
		return nil, err
	}
	if cfg.Driver == "postgres" {
		return admin.NewPostgresStore(cfg.DSN, crypt)
	}
	return admin.NewSQLiteStore(cfg.DSN, crypt)
}

// Start launches the manager's background health-check loop. Call once
// before serving traffic.
func (g *Gateway) Start(ctx context.Context) {
	g.Manager.Start(ctx)
}

// Shutdown stops the health-check loop and closes every provider adapter.
func (g *Gateway) Shutdown() error {
	return g.Manager.Shutdown()
}

// Search runs a text search request through the router.
func (g *Gateway) Search(ctx context.Context, req request.SearchRequest) *request.SearchResponse {
	return g.Router.Search(ctx, req)
}

// VectorSearch runs a vector similarity search request through the router.
func (g *Gateway) VectorSearch(ctx context.Context, req request.VectorSearchRequest) *request.SearchResponse {
	return g.Router.VectorSearch(ctx, req)
}

// HybridSearch runs a combined text+vector search request through the router.
func (g *Gateway) HybridSearch(ctx context.Context, req request.HybridSearchRequest) *request.SearchResponse {
	return g.Router.HybridSearch(ctx, req)
}

// ProviderStats summarizes the health of every configured provider.
func (g *Gateway) ProviderStats() manager.Stats {
	return g.Manager.Stats()
}
