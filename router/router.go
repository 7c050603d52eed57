// Package router orchestrates a single search request end to end: cache
// lookup, query enhancement, provider fan-out with per-provider failure
// isolation, result aggregation or rerank, filtering, and cache write-back.
// Grounded on router.py's RouterService.
package router

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/briefcasebrain/uir-gateway/aggregator"
	"github.com/briefcasebrain/uir-gateway/internal/cache"
	"github.com/briefcasebrain/uir-gateway/internal/logging"
	"github.com/briefcasebrain/uir-gateway/internal/metrics"
	"github.com/briefcasebrain/uir-gateway/internal/requestlog"
	"github.com/briefcasebrain/uir-gateway/kinderror"
	"github.com/briefcasebrain/uir-gateway/manager"
	"github.com/briefcasebrain/uir-gateway/provider"
	"github.com/briefcasebrain/uir-gateway/queryproc"
	"github.com/briefcasebrain/uir-gateway/request"
)

// Router ties the provider manager, query processor, aggregator, and
// cache together behind the three public search operations.
type Router struct {
	Manager    *manager.Manager
	Processor  *queryproc.Processor
	Cache      cache.Cache // nil disables caching entirely
	RequestLog requestlog.Writer
}

func New(mgr *manager.Manager, proc *queryproc.Processor, c cache.Cache) *Router {
	return &Router{Manager: mgr, Processor: proc, Cache: c, RequestLog: requestlog.NoopWriter{}}
}

// audit writes a best-effort request log entry; a logging failure never
// affects the response already computed for the caller.
func (r *Router) audit(ctx context.Context, operation, query string, providersUsed []string, resp *request.SearchResponse, start time.Time) {
	if r.RequestLog == nil {
		return
	}
	entry := requestlog.Entry{
		RequestID:   resp.RequestID,
		Operation:   operation,
		Query:       query,
		Providers:   strings.Join(providersUsed, ","),
		Status:      string(resp.Status),
		ResultCount: len(resp.Results),
		DurationMS:  time.Since(start).Milliseconds(),
	}
	if len(resp.Errors) > 0 {
		entry.ErrorMessage = resp.Errors[0].Message
	}
	if err := r.RequestLog.Write(ctx, entry); err != nil {
		logging.FromContext(ctx).Warn("request log write failed", "error", err)
	}
}

type providerResult struct {
	provider string
	results  []request.Result
	err      error
}

// Search handles a text search request: the single deadline derived from
// options.TimeoutMS is computed once here and threaded through every
// downstream call (cache, query processing, every provider fan-out leg),
// so a slow stage can't silently extend the caller's total budget.
func (r *Router) Search(ctx context.Context, req request.SearchRequest) *request.SearchResponse {
	requestID := uuid.NewString()
	start := time.Now()
	req.Options.Normalize()
	ctx, cancel := context.WithTimeout(ctx, req.Options.Timeout())
	defer cancel()
	log := logging.FromContext(ctx)

	cacheKey := ""
	if r.Cache != nil && cachingEnabled(req.Options) {
		cacheKey = cache.SearchKey(req.Providers, req.Query, req.Options)
		if cached, ok := r.Cache.Get(ctx, cacheKey); ok {
			log.Info("cache hit", "request_id", requestID)
			cached.RequestID = requestID
			cached.Metadata.CacheHit = true
			r.audit(ctx, "search", req.Query, cached.Metadata.ProvidersUsed, cached, start)
			return cached
		}
	}

	processed := r.Processor.Process(ctx, req.Query)
	query := req.Query
	if processed.Corrected != "" {
		query = processed.Corrected
	}

	available := r.Manager.AvailableProviders(req.Providers, "")
	if len(available) == 0 && len(req.Options.FallbackProviders) > 0 {
		available = r.Manager.AvailableProviders(req.Options.FallbackProviders, "")
	}
	if len(available) == 0 {
		resp := errorResponse("search", requestID, start, kinderror.New(kinderror.NoProvidersAvailable, "no available providers"))
		r.audit(ctx, "search", req.Query, nil, resp, start)
		return resp
	}

	outcomes := fanOutSearch(ctx, r.Manager, available, query, req.Options)
	var allResults []request.Result
	var succeeded, failed []string
	for _, o := range outcomes {
		if o.err != nil {
			log.Error("provider search failed", "provider", o.provider, "error", o.err)
			metrics.ProviderErrors.WithLabelValues(o.provider, string(kinderror.KindOf(o.err))).Inc()
			failed = append(failed, o.provider)
			continue
		}
		allResults = append(allResults, o.results...)
		succeeded = append(succeeded, o.provider)
	}

	var final []request.Result
	if req.Options.Rerank {
		final = aggregator.Rerank(allResults, query)
	} else {
		final = aggregator.Aggregate(allResults, req.Options.Deduplicate)
	}
	final = applyMinScore(final, req.Options.MinScore)
	final = limitOffset(final, req.Options.Limit, req.Options.Offset)

	status := request.StatusSuccess
	if len(failed) > 0 {
		status = request.StatusPartial
	}
	resp := &request.SearchResponse{
		Status:    status,
		RequestID: requestID,
		Results:   final,
		Metadata: request.ResponseMetadata{
			TotalResults:    len(final),
			QueryTimeMS:     time.Since(start).Milliseconds(),
			ProvidersUsed:   succeeded,
			ProvidersFailed: emptyToNil(failed),
			CacheHit:        false,
			SpellCorrected:  processed.Corrected != "",
		},
		QueryID: requestID,
	}
	if len(succeeded) == 1 {
		resp.ProviderUsed = succeeded[0]
	}

	if r.Cache != nil && cacheKey != "" {
		ttl := 0
		if req.Options.Cache != nil {
			ttl = req.Options.Cache.TTLSeconds
		}
		r.Cache.Set(ctx, cacheKey, resp, ttl)
	}

	metrics.SearchRequestsTotal.WithLabelValues("search", string(status)).Inc()
	metrics.SearchDuration.WithLabelValues("search").Observe(time.Since(start).Seconds())
	metrics.ResultsReturned.WithLabelValues("search").Observe(float64(len(final)))
	r.audit(ctx, "search", req.Query, succeeded, resp, start)
	return resp
}

// fanOutSearch runs one Search call per provider concurrently, each
// isolated from the others' failures (sync.WaitGroup, not errgroup,
// mirroring asyncio.gather(..., return_exceptions=True)).
func fanOutSearch(ctx context.Context, mgr *manager.Manager, providers []string, query string, opts request.SearchOptions) []providerResult {
	outcomes := make([]providerResult, len(providers))
	var wg sync.WaitGroup
	for i, name := range providers {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			inv, ok := mgr.Get(name)
			if !ok {
				outcomes[i] = providerResult{provider: name, err: kinderror.New(kinderror.NoProvidersAvailable, fmt.Sprintf("provider %q not found", name))}
				return
			}
			results, err := inv.Search(ctx, query, opts)
			outcomes[i] = providerResult{provider: name, results: results, err: err}
		}(i, name)
	}
	wg.Wait()
	return outcomes
}

// VectorSearch handles a vector search request, embedding request.Text
// via the query processor if no vector was supplied directly.
func (r *Router) VectorSearch(ctx context.Context, req request.VectorSearchRequest) *request.SearchResponse {
	requestID := uuid.NewString()
	start := time.Now()
	req.Options.Normalize()
	ctx, cancel := context.WithTimeout(ctx, req.Options.Timeout())
	defer cancel()
	log := logging.FromContext(ctx)

	vector := req.Vector
	if len(vector) == 0 && req.Text != "" && r.Processor.Embedding != nil {
		embedded, err := r.Processor.Embedding.Embed(ctx, req.Text)
		if err != nil {
			resp := errorResponse("vector_search", requestID, start, kinderror.Wrap(kinderror.Internal, "embedding generation failed", err))
			r.audit(ctx, "vector_search", req.Text, nil, resp, start)
			return resp
		}
		vector = embedded
	}
	if len(vector) == 0 {
		resp := errorResponse("vector_search", requestID, start, kinderror.New(kinderror.Validation, "no vector or text provided"))
		r.audit(ctx, "vector_search", req.Text, nil, resp, start)
		return resp
	}

	cacheKey := ""
	if r.Cache != nil && cachingEnabled(req.Options) {
		cacheKey = cache.VectorKey(req.Providers, vector, req.Text, req.Options)
		if cached, ok := r.Cache.Get(ctx, cacheKey); ok {
			cached.RequestID = requestID
			cached.Metadata.CacheHit = true
			r.audit(ctx, "vector_search", req.Text, cached.Metadata.ProvidersUsed, cached, start)
			return cached
		}
	}

	available := r.Manager.AvailableProviders(req.Providers, provider.KindVectorDB)
	if len(available) == 0 {
		resp := errorResponse("vector_search", requestID, start, kinderror.New(kinderror.NoProvidersAvailable, "no available vector providers"))
		r.audit(ctx, "vector_search", req.Text, nil, resp, start)
		return resp
	}

	outcomes := make([]providerResult, len(available))
	var wg sync.WaitGroup
	for i, name := range available {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			inv, ok := r.Manager.Get(name)
			if !ok {
				outcomes[i] = providerResult{provider: name, err: kinderror.New(kinderror.NoProvidersAvailable, fmt.Sprintf("provider %q not found", name))}
				return
			}
			results, err := inv.VectorSearch(ctx, vector, req.Options)
			outcomes[i] = providerResult{provider: name, results: results, err: err}
		}(i, name)
	}
	wg.Wait()

	var allResults []request.Result
	var succeeded, failed []string
	for _, o := range outcomes {
		if o.err != nil {
			log.Error("provider vector search failed", "provider", o.provider, "error", o.err)
			metrics.ProviderErrors.WithLabelValues(o.provider, string(kinderror.KindOf(o.err))).Inc()
			failed = append(failed, o.provider)
			continue
		}
		allResults = append(allResults, o.results...)
		succeeded = append(succeeded, o.provider)
	}

	final := aggregator.Aggregate(allResults, req.Options.Deduplicate)
	final = limitOffset(final, req.Options.Limit, req.Options.Offset)

	status := request.StatusSuccess
	if len(failed) > 0 {
		status = request.StatusPartial
	}
	resp := &request.SearchResponse{
		Status:    status,
		RequestID: requestID,
		Results:   final,
		Metadata: request.ResponseMetadata{
			TotalResults:    len(final),
			QueryTimeMS:     time.Since(start).Milliseconds(),
			ProvidersUsed:   succeeded,
			ProvidersFailed: emptyToNil(failed),
			CacheHit:        false,
		},
		QueryID: requestID,
	}

	if r.Cache != nil && cacheKey != "" {
		ttl := 0
		if req.Options.Cache != nil {
			ttl = req.Options.Cache.TTLSeconds
		}
		r.Cache.Set(ctx, cacheKey, resp, ttl)
	}

	metrics.SearchRequestsTotal.WithLabelValues("vector_search", string(status)).Inc()
	metrics.SearchDuration.WithLabelValues("vector_search").Observe(time.Since(start).Seconds())
	metrics.ResultsReturned.WithLabelValues("vector_search").Observe(float64(len(final)))
	r.audit(ctx, "vector_search", req.Text, succeeded, resp, start)
	return resp
}

// HybridSearch runs every strategy leg concurrently, multiplies each
// leg's scores by its configured weight before fusion (matching the
// source's r.score *= weight loop), then fuses by the requested method.
func (r *Router) HybridSearch(ctx context.Context, req request.HybridSearchRequest) *request.SearchResponse {
	requestID := uuid.NewString()
	start := time.Now()
	req.Options.Normalize()
	ctx, cancel := context.WithTimeout(ctx, req.Options.Timeout())
	defer cancel()
	log := logging.FromContext(ctx)

	type legOutcome struct {
		provider string
		weight   float64
		results  []request.Result
		err      error
	}
	outcomes := make([]legOutcome, len(req.Strategies))
	var wg sync.WaitGroup
	for i, strategy := range req.Strategies {
		wg.Add(1)
		go func(i int, s request.HybridStrategy) {
			defer wg.Done()
			inv, ok := r.Manager.Get(s.Provider)
			if !ok {
				outcomes[i] = legOutcome{provider: s.Provider, weight: s.Weight, err: kinderror.New(kinderror.NoProvidersAvailable, fmt.Sprintf("provider %q not found", s.Provider))}
				return
			}
			switch s.Type {
			case request.StrategyVector:
				vector := s.Vector
				if len(vector) == 0 && s.Text != "" && r.Processor.Embedding != nil {
					embedded, err := r.Processor.Embedding.Embed(ctx, s.Text)
					if err != nil {
						outcomes[i] = legOutcome{provider: s.Provider, weight: s.Weight, err: err}
						return
					}
					vector = embedded
				}
				results, err := inv.VectorSearch(ctx, vector, s.Options)
				outcomes[i] = legOutcome{provider: s.Provider, weight: s.Weight, results: results, err: err}
			default:
				results, err := inv.Search(ctx, s.Query, s.Options)
				outcomes[i] = legOutcome{provider: s.Provider, weight: s.Weight, results: results, err: err}
			}
		}(i, strategy)
	}
	wg.Wait()

	var lists [][]request.Result
	var providersUsed []string
	for _, o := range outcomes {
		providersUsed = append(providersUsed, o.provider)
		if o.err != nil {
			log.Error("hybrid strategy failed", "provider", o.provider, "error", o.err)
			metrics.ProviderErrors.WithLabelValues(o.provider, string(kinderror.KindOf(o.err))).Inc()
			continue
		}
		weighted := make([]request.Result, len(o.results))
		for i, res := range o.results {
			res.Score *= o.weight
			weighted[i] = res
		}
		lists = append(lists, weighted)
	}

	var final []request.Result
	switch req.FusionMethod {
	case request.FusionReciprocalRank:
		final = aggregator.ReciprocalRankFusion(lists, 0)
	case request.FusionWeightedSum:
		final = aggregator.WeightedSumFusion(lists)
	default:
		final = aggregator.MaxScoreFusion(lists)
	}
	final = limitOffset(final, req.Options.Limit, req.Options.Offset)

	metrics.SearchRequestsTotal.WithLabelValues("hybrid_search", string(request.StatusSuccess)).Inc()
	metrics.SearchDuration.WithLabelValues("hybrid_search").Observe(time.Since(start).Seconds())
	metrics.ResultsReturned.WithLabelValues("hybrid_search").Observe(float64(len(final)))
	resp := &request.SearchResponse{
		Status:    request.StatusSuccess,
		RequestID: requestID,
		Results:   final,
		Metadata: request.ResponseMetadata{
			TotalResults:  len(final),
			QueryTimeMS:   time.Since(start).Milliseconds(),
			ProvidersUsed: providersUsed,
			CacheHit:      false,
		},
		QueryID: requestID,
	}
	r.audit(ctx, "hybrid_search", "", providersUsed, resp, start)
	return resp
}

func cachingEnabled(opts request.SearchOptions) bool {
	return opts.Cache == nil || opts.Cache.Enabled
}

func applyMinScore(results []request.Result, minScore *float64) []request.Result {
	if minScore == nil {
		return results
	}
	out := results[:0:0]
	for _, r := range results {
		if r.Score >= *minScore {
			out = append(out, r)
		}
	}
	return out
}

func limitOffset(results []request.Result, limit, offset int) []request.Result {
	if offset > 0 {
		if offset >= len(results) {
			return nil
		}
		results = results[offset:]
	}
	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}
	return results
}

func emptyToNil(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}

func errorResponse(operation, requestID string, start time.Time, err error) *request.SearchResponse {
	metrics.SearchRequestsTotal.WithLabelValues(operation, string(request.StatusError)).Inc()
	metrics.SearchDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	return &request.SearchResponse{
		Status:    request.StatusError,
		RequestID: requestID,
		Results:   []request.Result{},
		Metadata: request.ResponseMetadata{
			QueryTimeMS:   time.Since(start).Milliseconds(),
			ProvidersUsed: []string{},
			CacheHit:      false,
		},
		Errors: []request.ErrorDetail{{Kind: string(kinderror.KindOf(err)), Message: err.Error()}},
	}
}
