package main

import (
	"encoding/json"
	"net/http"

	uirgateway "github.com/briefcasebrain/uir-gateway"
	"github.com/briefcasebrain/uir-gateway/internal/version"
	"github.com/briefcasebrain/uir-gateway/provider"
	"github.com/briefcasebrain/uir-gateway/request"
)

// server holds the dependencies every HTTP handler needs: the fully wired
// gateway built from the loaded config.
type server struct {
	gw *uirgateway.Gateway
}

func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req request.SearchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.gw.Search(r.Context(), req))
}

func (s *server) handleVectorSearch(w http.ResponseWriter, r *http.Request) {
	var req request.VectorSearchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.gw.VectorSearch(r.Context(), req))
}

func (s *server) handleHybridSearch(w http.ResponseWriter, r *http.Request) {
	var req request.HybridSearchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.gw.HybridSearch(r.Context(), req))
}

// queryAnalyzeRequest is the body of POST /query/analyze.
type queryAnalyzeRequest struct {
	Query string `json:"query"`
}

func (s *server) handleQueryAnalyze(w http.ResponseWriter, r *http.Request) {
	var req queryAnalyzeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	processed := s.gw.Processor.Process(r.Context(), req.Query)
	writeJSON(w, http.StatusOK, request.QueryAnalysis{
		OriginalQuery:    processed.Original,
		CorrectedQuery:   processed.Corrected,
		ExpandedQuery:    processed.Expanded,
		Entities:         processed.Entities,
		Intent:           processed.Intent,
		SuggestedFilters: processed.Filters,
		Keywords:         processed.Keywords,
	})
}

// ragRetrieveRequest is the body of POST /rag/retrieve: a single natural
// language query fanned out as a keyword strategy against every named
// provider, plus a vector strategy against every configured vector_db
// provider, fused by reciprocal-rank.
type ragRetrieveRequest struct {
	Query     string                `json:"query"`
	Providers []string              `json:"providers"`
	Options   request.SearchOptions `json:"options"`
}

func (s *server) handleRAGRetrieve(w http.ResponseWriter, r *http.Request) {
	var req ragRetrieveRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	strategies := make([]request.HybridStrategy, 0, len(req.Providers)+1)
	for _, name := range req.Providers {
		strategies = append(strategies, request.HybridStrategy{
			Type:     request.StrategyKeyword,
			Provider: name,
			Weight:   1,
			Query:    req.Query,
			Options:  req.Options,
		})
	}
	for name, cfg := range s.gw.Config.Providers {
		if cfg.Kind != provider.KindVectorDB {
			continue
		}
		strategies = append(strategies, request.HybridStrategy{
			Type:     request.StrategyVector,
			Provider: name,
			Weight:   1,
			Text:     req.Query,
			Options:  req.Options,
		})
	}

	resp := s.gw.HybridSearch(r.Context(), request.HybridSearchRequest{
		Strategies:   strategies,
		FusionMethod: request.FusionReciprocalRank,
		Options:      req.Options,
	})
	writeJSON(w, http.StatusOK, resp)
}

// providerSummary is the public GET /providers response shape: health, not
// credentials. Provider configuration CRUD lives under /admin/providers.
type providerSummary struct {
	Name   string          `json:"name"`
	Status provider.Status `json:"status"`
}

func (s *server) handleListProviders(w http.ResponseWriter, _ *http.Request) {
	stats := s.gw.ProviderStats()
	out := make([]providerSummary, 0, len(stats.Providers))
	for name, h := range stats.Providers {
		out = append(out, providerSummary{Name: name, Status: h.Status})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": version.Short()})
}

func (s *server) handleReady(w http.ResponseWriter, _ *http.Request) {
	stats := s.gw.ProviderStats()
	if stats.TotalProviders > 0 && stats.Healthy == 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "no healthy providers"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
