// Package queryproc understands, corrects, and enriches a raw query
// before it reaches the provider fan-out: spellcheck, entity extraction,
// intent classification, keyword extraction, and (optionally) embedding
// generation run concurrently, then synonym expansion and filter
// derivation run on their combined output, grounded on
// query_processor.py's QueryProcessor.process and its
// asyncio.gather(..., return_exceptions=True) isolation.
package queryproc

import (
	"context"
	"sync"

	"github.com/briefcasebrain/uir-gateway/internal/logging"
	"github.com/briefcasebrain/uir-gateway/request"
)

// Processed mirrors ProcessedQuery: the original query plus every
// enhancement stage's output, each individually allowed to fail without
// aborting the others.
type Processed struct {
	Original  string
	Corrected string
	Expanded  string
	Entities  []request.Entity
	Intent    *request.Intent
	Embedding []float32
	Filters   []request.Filter
	Keywords  []string
}

// Processor runs the enhancement pipeline. Embedding is nil to skip
// embedding generation entirely (e.g. for a pure-text search request).
type Processor struct {
	Embedding EmbeddingService
}

// New builds a Processor using the deterministic mock embedding backend.
func New() *Processor {
	return &Processor{Embedding: NewMockEmbedding()}
}

// Process runs every enhancement stage concurrently, isolates individual
// stage failures (logged, not propagated), then expands the corrected
// query and derives filters from whatever entities/intent succeeded.
func (p *Processor) Process(ctx context.Context, query string) *Processed {
	var (
		wg                    sync.WaitGroup
		corrected             string
		entities              []request.Entity
		intent                request.Intent
		keywords              []string
		embedding             []float32
		correctedOK, intentOK bool
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		defer recoverStage(ctx, "spellcheck")
		corrected = SpellCheck(query)
		correctedOK = true
	}()
	go func() {
		defer wg.Done()
		defer recoverStage(ctx, "extract_entities")
		entities = ExtractEntities(query)
	}()
	go func() {
		defer wg.Done()
		defer recoverStage(ctx, "classify_intent")
		intent = ClassifyIntent(query)
		intentOK = true
	}()
	go func() {
		defer wg.Done()
		defer recoverStage(ctx, "extract_keywords")
		keywords = ExtractKeywords(query)
	}()

	if p.Embedding != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer recoverStage(ctx, "generate_embedding")
			vec, err := p.Embedding.Embed(ctx, query)
			if err != nil {
				logging.FromContext(ctx).Warn("embedding generation failed", "error", err)
				return
			}
			embedding = vec
		}()
	}

	wg.Wait()

	result := &Processed{Original: query, Entities: entities, Keywords: keywords, Embedding: embedding}
	if correctedOK && corrected != query {
		result.Corrected = corrected
	}
	if intentOK {
		result.Intent = &intent
	}

	base := query
	if result.Corrected != "" {
		base = result.Corrected
	}
	result.Expanded = ExpandQuery(base, entities)
	result.Filters = GenerateFilters(entities, result.Intent)

	return result
}

// recoverStage isolates one stage's panic the way asyncio.gather's
// return_exceptions=True isolates one task's exception: logged, the
// other stages still complete.
func recoverStage(ctx context.Context, stage string) {
	if r := recover(); r != nil {
		logging.FromContext(ctx).Error("query processing stage panicked", "stage", stage, "panic", r)
	}
}
