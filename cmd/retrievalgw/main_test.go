package main

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	uirgateway "github.com/briefcasebrain/uir-gateway"
)

func TestNewRouter_PublicRoutesServedWithoutAuth(t *testing.T) {
	gw := newTestGateway(t)
	router := newRouter(gw, uirgateway.AdminConfig{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d for /health", rr.Code)
	}
}

func TestNewRouter_AdminRoutesNotMountedWithoutBearerToken(t *testing.T) {
	gw := newTestGateway(t)
	router := newRouter(gw, uirgateway.AdminConfig{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/providers", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("got status %d, want 404 when admin is not configured", rr.Code)
	}
}

func TestNewRouter_AdminRoutesRequireBearerToken(t *testing.T) {
	cfg := uirgateway.Config{
		Providers: newTestGateway(t).Config.Providers,
		Cache:     uirgateway.DefaultCacheConfig(),
		Bind:      uirgateway.DefaultBindConfig(),
		Admin: uirgateway.AdminConfig{
			DSN:           filepath.Join(t.TempDir(), "admin.db"),
			EncryptionKey: "test-key",
			BearerToken:   "s3cr3t",
		},
	}
	gw, err := uirgateway.New(cfg)
	if err != nil {
		t.Fatalf("new gateway: %v", err)
	}
	router := newRouter(gw, cfg.Admin)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/providers", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("got status %d without a bearer token, want 401", rr.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/providers", nil)
	req.Header.Set("Authorization", "Bearer s3cr3t")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d with a valid bearer token, want 200", rr.Code)
	}
}
