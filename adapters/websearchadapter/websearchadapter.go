// Package websearchadapter implements the "google"-kind provider adapter
// over Google's Custom Search JSON API. No Google search SDK exists among
// the reference repos this gateway was built from, so the adapter talks
// plain REST with net/http, following the same request/response shape the
// teacher's own REST-based providers (cohere.go, groq.go, ...) use for
// vendors without a Go SDK.
package websearchadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/briefcasebrain/uir-gateway/kinderror"
	"github.com/briefcasebrain/uir-gateway/provider"
	"github.com/briefcasebrain/uir-gateway/request"
)

// Adapter talks to the Google Custom Search JSON API.
type Adapter struct {
	name       string
	apiKey     string
	cx         string
	baseURL    string
	httpClient *http.Client
}

// New builds an Adapter from the provider's configured credentials
// (api_key, cx) and endpoint override.
func New(cfg provider.Config) (*Adapter, error) {
	apiKey := cfg.Credentials["api_key"]
	cx := cfg.Credentials["cx"]
	if apiKey == "" || cx == "" {
		return nil, kinderror.New(kinderror.Validation, fmt.Sprintf("provider %s: api_key and cx are required", cfg.Name))
	}
	baseURL := cfg.Endpoints["default"]
	if baseURL == "" {
		baseURL = "https://www.googleapis.com/customsearch/v1"
	}
	timeout := time.Duration(cfg.TimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{
		name:       cfg.Name,
		apiKey:     apiKey,
		cx:         cx,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Name implements adapter.Adapter.
func (a *Adapter) Name() string { return a.name }

// Kind implements adapter.Adapter.
func (a *Adapter) Kind() provider.Kind { return provider.KindSearchEngine }

type googleSearchResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Search issues a GET against the Custom Search endpoint and maps the
// results into the unified Result shape, highest-ranked first getting the
// highest normalized score.
func (a *Adapter) Search(ctx context.Context, query string, opts request.SearchOptions) ([]request.Result, error) {
	limit := opts.Limit
	if limit <= 0 || limit > 10 {
		limit = 10 // Custom Search API caps num at 10 per call
	}

	q := url.Values{}
	q.Set("key", a.apiKey)
	q.Set("cx", a.cx)
	q.Set("q", query)
	q.Set("num", strconv.Itoa(limit))
	if opts.Offset > 0 {
		q.Set("start", strconv.Itoa(opts.Offset+1))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, kinderror.Wrap(kinderror.Internal, "failed to build request", err)
	}

	httpResp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, kinderror.Wrap(kinderror.Upstream, "request failed", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, kinderror.Wrap(kinderror.Upstream, "failed to read response", err)
	}

	if httpResp.StatusCode == http.StatusTooManyRequests {
		return nil, kinderror.New(kinderror.RateLimited, "google search API rate limited")
	}
	if httpResp.StatusCode == http.StatusUnauthorized || httpResp.StatusCode == http.StatusForbidden {
		return nil, kinderror.New(kinderror.AuthError, "google search API rejected credentials")
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, kinderror.New(kinderror.Upstream, fmt.Sprintf("google search API error (%d): %s", httpResp.StatusCode, string(body)))
	}

	var parsed googleSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, kinderror.Wrap(kinderror.Upstream, "failed to unmarshal response", err)
	}
	if parsed.Error != nil {
		return nil, kinderror.New(kinderror.Upstream, parsed.Error.Message)
	}

	results := make([]request.Result, 0, len(parsed.Items))
	n := len(parsed.Items)
	for i, item := range parsed.Items {
		results = append(results, request.Result{
			ID:       item.Link,
			Title:    item.Title,
			URL:      item.Link,
			Snippet:  item.Snippet,
			Score:    float64(n-i) / float64(n),
			Provider: a.name,
		})
	}
	return results, nil
}

// VectorSearch is unsupported by a web search engine.
func (a *Adapter) VectorSearch(ctx context.Context, vector []float32, opts request.SearchOptions) ([]request.Result, error) {
	return nil, kinderror.New(kinderror.Unsupported, "web search provider does not support vector search")
}

// Index is unsupported; Google Custom Search indexes the public web, not
// caller-submitted documents.
func (a *Adapter) Index(ctx context.Context, documents []map[string]any, opts map[string]any) (request.IndexResult, error) {
	return request.IndexResult{}, kinderror.New(kinderror.Unsupported, "web search provider does not support indexing")
}

// HealthCheck issues a minimal query to confirm credentials and reachability.
func (a *Adapter) HealthCheck(ctx context.Context) (provider.Health, error) {
	start := time.Now()
	_, err := a.Search(ctx, "healthcheck", request.SearchOptions{Limit: 1})
	latency := float64(time.Since(start).Milliseconds())
	if err != nil {
		return provider.Health{
			Provider:     a.name,
			Status:       provider.StatusUnhealthy,
			LatencyMS:    latency,
			LastCheck:    time.Now(),
			ErrorMessage: err.Error(),
		}, err
	}
	return provider.Health{
		Provider:  a.name,
		Status:    provider.StatusHealthy,
		LatencyMS: latency,
		LastCheck: time.Now(),
	}, nil
}

// Close is a no-op; the adapter holds no persistent connection.
func (a *Adapter) Close() error { return nil }
