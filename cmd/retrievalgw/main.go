// Command retrievalgw serves the unified information retrieval gateway's
// HTTP surface: POST /search, /vector/search, /hybrid/search,
// /query/analyze, /rag/retrieve, GET /providers, /metrics, /health,
// /ready, and (when configured) an authenticated /admin/* provider-config
// API.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	uirgateway "github.com/briefcasebrain/uir-gateway"
	"github.com/briefcasebrain/uir-gateway/internal/admin"
	"github.com/briefcasebrain/uir-gateway/internal/logging"
	_ "github.com/briefcasebrain/uir-gateway/internal/metrics"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Printf("configuration error: %v", err)
		os.Exit(1)
	}

	gw, err := uirgateway.New(*cfg)
	if err != nil {
		log.Printf("failed to build gateway: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gw.Start(ctx)
	defer func() {
		if err := gw.Shutdown(); err != nil {
			logging.FromContext(ctx).Error("gateway shutdown error", "error", err)
		}
	}()

	addr := cfg.Bind.Host + ":" + strconv.Itoa(cfg.Bind.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           newRouter(gw, cfg.Admin),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logging.Logger.Info("retrievalgw listening", "addr", addr)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("server error: %v", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logging.Logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Logger.Error("graceful shutdown failed", "error", err)
	}
}

// loadConfig reads GATEWAY_CONFIG if set, otherwise builds a minimal
// default config from BIND_HOST/BIND_PORT/REMOTE_CACHE_URL/LOG_LEVEL,
// mirroring the teacher's env-driven startup.
func loadConfig() (*uirgateway.Config, error) {
	if path := os.Getenv("GATEWAY_CONFIG"); path != "" {
		cfg, err := uirgateway.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		applyEnvOverrides(cfg)
		if err := uirgateway.ValidateConfig(*cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	cfg := &uirgateway.Config{
		Cache: uirgateway.DefaultCacheConfig(),
		Bind:  uirgateway.DefaultBindConfig(),
	}
	applyEnvOverrides(cfg)
	if err := uirgateway.ValidateConfig(*cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *uirgateway.Config) {
	if v := os.Getenv("REMOTE_CACHE_URL"); v != "" {
		cfg.Cache.RemoteURL = v
	}
	if v := os.Getenv("BIND_HOST"); v != "" {
		cfg.Bind.Host = v
	}
	if v := os.Getenv("BIND_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Bind.Port = port
		}
	}
	if v := os.Getenv("WORKER_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.WorkerCount = n
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

func newRouter(gw *uirgateway.Gateway, adminCfg uirgateway.AdminConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(logging.Middleware)
	r.Use(middleware.Logger)

	r.Get("/health", (&server{gw: gw}).handleHealth)
	r.Get("/ready", (&server{gw: gw}).handleReady)

	s := &server{gw: gw}
	r.Post("/search", s.handleSearch)
	r.Post("/vector/search", s.handleVectorSearch)
	r.Post("/hybrid/search", s.handleHybridSearch)
	r.Post("/query/analyze", s.handleQueryAnalyze)
	r.Post("/rag/retrieve", s.handleRAGRetrieve)
	r.Get("/providers", s.handleListProviders)
	r.Handle("/metrics", promhttp.Handler())

	if gw.Admin != nil && adminCfg.BearerToken != "" {
		r.Route("/admin", func(r chi.Router) {
			r.Use(admin.BearerAuth(adminCfg.BearerToken))
			r.Mount("/", gw.Admin.Routes())
		})
	}

	return r
}
