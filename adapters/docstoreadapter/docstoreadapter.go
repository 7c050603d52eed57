// Package docstoreadapter implements the "elasticsearch"-kind provider
// adapter. No Elasticsearch Go client exists among the reference repos
// this gateway was built from, so the adapter talks plain REST with
// net/http against the _search and _bulk endpoints, following the same
// request/response shape the teacher's own REST-based providers use for
// vendors without a Go SDK.
package docstoreadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/briefcasebrain/uir-gateway/kinderror"
	"github.com/briefcasebrain/uir-gateway/provider"
	"github.com/briefcasebrain/uir-gateway/request"
)

// Adapter talks to an Elasticsearch (or compatible) REST endpoint.
type Adapter struct {
	name       string
	baseURL    string
	index      string
	apiKey     string
	httpClient *http.Client
}

// New builds an Adapter from the provider's configured endpoint, index,
// and credentials.
func New(cfg provider.Config) (*Adapter, error) {
	baseURL := cfg.Endpoints["default"]
	if baseURL == "" {
		return nil, kinderror.New(kinderror.Validation, fmt.Sprintf("provider %s: no endpoint configured", cfg.Name))
	}
	baseURL = strings.TrimRight(baseURL, "/")
	index := cfg.Credentials["index"]
	if index == "" {
		index = "documents"
	}
	timeout := time.Duration(cfg.TimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{
		name:       cfg.Name,
		baseURL:    baseURL,
		index:      index,
		apiKey:     cfg.Credentials["api_key"],
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Name implements adapter.Adapter.
func (a *Adapter) Name() string { return a.name }

// Kind implements adapter.Adapter.
func (a *Adapter) Kind() provider.Kind { return provider.KindDocumentStore }

func (a *Adapter) authHeader(req *http.Request) {
	if a.apiKey != "" {
		req.Header.Set("Authorization", "ApiKey "+a.apiKey)
	}
}

type esSearchRequest struct {
	Query esQuery `json:"query"`
	From  int     `json:"from,omitempty"`
	Size  int     `json:"size,omitempty"`
}

type esQuery struct {
	Match map[string]string `json:"match"`
}

type esSearchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string         `json:"_id"`
			Score  float64        `json:"_score"`
			Source map[string]any `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
	Error *struct {
		Reason string `json:"reason"`
		Type   string `json:"type"`
	} `json:"error"`
}

// Search runs a simple match query against the configured index.
func (a *Adapter) Search(ctx context.Context, query string, opts request.SearchOptions) ([]request.Result, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}
	reqBody := esSearchRequest{
		Query: esQuery{Match: map[string]string{"content": query}},
		From:  opts.Offset,
		Size:  limit,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, kinderror.Wrap(kinderror.Internal, "failed to marshal request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/%s/_search", a.baseURL, a.index), bytes.NewReader(body))
	if err != nil {
		return nil, kinderror.Wrap(kinderror.Internal, "failed to build request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	a.authHeader(httpReq)

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, kinderror.Wrap(kinderror.Upstream, "request failed", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, kinderror.Wrap(kinderror.Upstream, "failed to read response", err)
	}

	if httpResp.StatusCode == http.StatusUnauthorized || httpResp.StatusCode == http.StatusForbidden {
		return nil, kinderror.New(kinderror.AuthError, "elasticsearch rejected credentials")
	}
	if httpResp.StatusCode >= 500 {
		return nil, kinderror.New(kinderror.Upstream, fmt.Sprintf("elasticsearch error (%d): %s", httpResp.StatusCode, string(respBody)))
	}
	if httpResp.StatusCode >= 400 {
		return nil, kinderror.New(kinderror.Validation, fmt.Sprintf("elasticsearch rejected query (%d): %s", httpResp.StatusCode, string(respBody)))
	}

	var parsed esSearchResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, kinderror.Wrap(kinderror.Upstream, "failed to unmarshal response", err)
	}
	if parsed.Error != nil {
		return nil, kinderror.New(kinderror.Upstream, parsed.Error.Reason)
	}

	results := make([]request.Result, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		r := request.Result{
			ID:       hit.ID,
			Score:    hit.Score,
			Provider: a.name,
		}
		if title, ok := hit.Source["title"].(string); ok {
			r.Title = title
		}
		if content, ok := hit.Source["content"].(string); ok {
			r.Content = content
		}
		if url, ok := hit.Source["url"].(string); ok {
			r.URL = url
		}
		if opts.IncludeMetadata {
			r.Metadata = hit.Source
		}
		results = append(results, r)
	}
	return results, nil
}

// VectorSearch is unsupported by the plain-REST document store adapter;
// the source catalog treats vector search as the dedicated vector
// provider's job.
func (a *Adapter) VectorSearch(ctx context.Context, vector []float32, opts request.SearchOptions) ([]request.Result, error) {
	return nil, kinderror.New(kinderror.Unsupported, "document store provider does not support vector search")
}

type bulkMeta struct {
	Index bulkIndexMeta `json:"index"`
}

type bulkIndexMeta struct {
	Index string `json:"_index"`
	ID    string `json:"_id,omitempty"`
}

// Index bulk-ingests documents via the _bulk endpoint.
func (a *Adapter) Index(ctx context.Context, documents []map[string]any, opts map[string]any) (request.IndexResult, error) {
	if len(documents) == 0 {
		return request.IndexResult{}, nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, doc := range documents {
		id, _ := doc["id"].(string)
		if err := enc.Encode(bulkMeta{Index: bulkIndexMeta{Index: a.index, ID: id}}); err != nil {
			return request.IndexResult{}, kinderror.Wrap(kinderror.Internal, "failed to encode bulk meta", err)
		}
		if err := enc.Encode(doc); err != nil {
			return request.IndexResult{}, kinderror.Wrap(kinderror.Internal, "failed to encode document", err)
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/_bulk", &buf)
	if err != nil {
		return request.IndexResult{}, kinderror.Wrap(kinderror.Internal, "failed to build request", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-ndjson")
	a.authHeader(httpReq)

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return request.IndexResult{}, kinderror.Wrap(kinderror.Upstream, "bulk index failed", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	if httpResp.StatusCode >= 400 {
		body, _ := io.ReadAll(httpResp.Body)
		return request.IndexResult{}, kinderror.New(kinderror.Upstream, fmt.Sprintf("bulk index error (%d): %s", httpResp.StatusCode, string(body)))
	}
	return request.IndexResult{IndexedCount: len(documents)}, nil
}

// HealthCheck hits the cluster health endpoint.
func (a *Adapter) HealthCheck(ctx context.Context) (provider.Health, error) {
	start := time.Now()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/_cluster/health", nil)
	if err != nil {
		return provider.Health{}, kinderror.Wrap(kinderror.Internal, "failed to build request", err)
	}
	a.authHeader(httpReq)

	httpResp, err := a.httpClient.Do(httpReq)
	latency := float64(time.Since(start).Milliseconds())
	if err != nil {
		return provider.Health{
			Provider: a.name, Status: provider.StatusUnhealthy,
			LatencyMS: latency, LastCheck: time.Now(), ErrorMessage: err.Error(),
		}, kinderror.Wrap(kinderror.Upstream, "health check failed", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	if httpResp.StatusCode != http.StatusOK {
		return provider.Health{
			Provider: a.name, Status: provider.StatusUnhealthy,
			LatencyMS: latency, LastCheck: time.Now(),
			ErrorMessage: fmt.Sprintf("cluster health returned %d", httpResp.StatusCode),
		}, nil
	}
	status := provider.StatusHealthy
	if latency > 5000 {
		status = provider.StatusDegraded
	}
	return provider.Health{Provider: a.name, Status: status, LatencyMS: latency, LastCheck: time.Now()}, nil
}

// Close is a no-op; the adapter holds no persistent connection.
func (a *Adapter) Close() error { return nil }
