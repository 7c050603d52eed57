package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/briefcasebrain/uir-gateway/adapter"
	"github.com/briefcasebrain/uir-gateway/internal/requestlog"
	"github.com/briefcasebrain/uir-gateway/manager"
	"github.com/briefcasebrain/uir-gateway/provider"
)

func newTestHandlers(t *testing.T) *Handlers {
	t.Helper()
	store := newSQLiteTestStore(t, "test-key")
	mgr := manager.New(adapter.NewRegistry(), map[string]provider.Config{})
	w, err := requestlog.NewSQLiteWriter(filepath.Join(t.TempDir(), "requests.db"))
	if err != nil {
		t.Fatalf("new request log writer: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })
	return &Handlers{Store: store, Manager: mgr, Logs: w}
}

func TestHandlers_CreateGetListDeleteProvider(t *testing.T) {
	h := newTestHandlers(t)
	router := h.Routes()

	body, _ := json.Marshal(provider.Config{
		Name:        "web-a",
		Kind:        provider.KindSearchEngine,
		Credentials: map[string]string{"api_key": "secret"},
	})
	req := httptest.NewRequest(http.MethodPost, "/providers", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: got status %d, body %s", rr.Code, rr.Body.String())
	}

	var created provider.Config
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created response: %v", err)
	}
	if created.Credentials["api_key"] != "***" {
		t.Errorf("expected credentials to be redacted in response, got %v", created.Credentials)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/providers/web-a", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("get: got status %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/providers", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("list: got status %d", rr.Code)
	}
	var listed []provider.Config
	if err := json.Unmarshal(rr.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 provider, got %d", len(listed))
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/providers/web-a", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete: got status %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/providers/web-a", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("get after delete: got status %d, want 404", rr.Code)
	}
}

func TestHandlers_CreateProvider_MissingName(t *testing.T) {
	h := newTestHandlers(t)
	router := h.Routes()

	body, _ := json.Marshal(provider.Config{Kind: provider.KindSearchEngine})
	req := httptest.NewRequest(http.MethodPost, "/providers", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestHandlers_Usage(t *testing.T) {
	h := newTestHandlers(t)
	if err := h.Logs.(*requestlog.SQLWriter).Write(context.Background(), requestlog.Entry{
		RequestID: "r1", Operation: "search", Status: "success", ResultCount: 3,
	}); err != nil {
		t.Fatalf("seed request log: %v", err)
	}
	if err := h.Logs.(*requestlog.SQLWriter).Write(context.Background(), requestlog.Entry{
		RequestID: "r2", Operation: "search", Status: "error",
	}); err != nil {
		t.Fatalf("seed request log: %v", err)
	}

	router := h.Routes()
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/usage", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d, body %s", rr.Code, rr.Body.String())
	}

	var resp usageResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode usage response: %v", err)
	}
	if resp.TotalRequests != 2 {
		t.Errorf("got total_requests %d, want 2", resp.TotalRequests)
	}
	if resp.ErrorCount != 1 {
		t.Errorf("got error_count %d, want 1", resp.ErrorCount)
	}
}
