// Package graphadapter implements the "neo4j"-kind knowledge-graph
// provider adapter using the official neo4j-go-driver/v5, the only real
// graph-database client among the reference repos this gateway was
// built from.
package graphadapter

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/briefcasebrain/uir-gateway/kinderror"
	"github.com/briefcasebrain/uir-gateway/provider"
	"github.com/briefcasebrain/uir-gateway/request"
)

// Adapter queries a Neo4j graph via Cypher.
type Adapter struct {
	name     string
	driver   neo4j.DriverWithContext
	database string
}

// New dials the Neo4j instance configured for this provider.
func New(cfg provider.Config) (*Adapter, error) {
	uri := cfg.Endpoints["default"]
	if uri == "" {
		return nil, kinderror.New(kinderror.Validation, fmt.Sprintf("provider %s: no endpoint configured", cfg.Name))
	}
	username := cfg.Credentials["username"]
	password := cfg.Credentials["password"]
	database := cfg.Credentials["database"]
	if database == "" {
		database = "neo4j"
	}

	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, kinderror.Wrap(kinderror.Upstream, "failed to create neo4j driver", err)
	}
	return &Adapter{name: cfg.Name, driver: driver, database: database}, nil
}

// Name implements adapter.Adapter.
func (a *Adapter) Name() string { return a.name }

// Kind implements adapter.Adapter.
func (a *Adapter) Kind() provider.Kind { return provider.KindKnowledgeGraph }

// Search runs a full-text node search; query is matched against each
// node's "name" and "description" properties via CONTAINS, since a
// generic catalog cannot assume a full-text index exists on every graph.
func (a *Adapter) Search(ctx context.Context, query string, opts request.SearchOptions) ([]request.Result, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}
	session := a.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: a.database, AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	cypher := `
		MATCH (n)
		WHERE toLower(coalesce(n.name, '')) CONTAINS toLower($query)
		   OR toLower(coalesce(n.description, '')) CONTAINS toLower($query)
		RETURN n, labels(n) AS labels
		SKIP $offset LIMIT $limit`

	result, err := session.Run(ctx, cypher, map[string]any{
		"query": query, "offset": int64(opts.Offset), "limit": int64(limit),
	})
	if err != nil {
		return nil, kinderror.Wrap(kinderror.Upstream, "graph search failed", err)
	}

	var results []request.Result
	for result.Next(ctx) {
		rec := result.Record()
		node, ok := rec.Get("n")
		if !ok {
			continue
		}
		n, ok := node.(neo4j.Node)
		if !ok {
			continue
		}
		results = append(results, nodeToResult(a.name, n, opts.IncludeMetadata))
	}
	if err := result.Err(); err != nil {
		return nil, kinderror.Wrap(kinderror.Upstream, "graph search cursor error", err)
	}
	return results, nil
}

func nodeToResult(provider string, n neo4j.Node, includeMetadata bool) request.Result {
	r := request.Result{ID: fmt.Sprintf("%d", n.Id), Provider: provider, Score: 1}
	if name, ok := n.Props["name"].(string); ok {
		r.Title = name
	}
	if desc, ok := n.Props["description"].(string); ok {
		r.Content = desc
	}
	if includeMetadata {
		r.Metadata = n.Props
	}
	return r
}

// VectorSearch is unsupported; graph traversal is not a vector index.
func (a *Adapter) VectorSearch(ctx context.Context, vector []float32, opts request.SearchOptions) ([]request.Result, error) {
	return nil, kinderror.New(kinderror.Unsupported, "knowledge graph provider does not support vector search")
}

// Index merges each document in as a node, keyed by its "id" field.
func (a *Adapter) Index(ctx context.Context, documents []map[string]any, opts map[string]any) (request.IndexResult, error) {
	if len(documents) == 0 {
		return request.IndexResult{}, nil
	}
	session := a.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: a.database, AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	indexed := 0
	var errs []string
	for _, doc := range documents {
		id, _ := doc["id"].(string)
		if id == "" {
			errs = append(errs, "document missing required id field")
			continue
		}
		_, err := session.Run(ctx, `MERGE (n:Document {id: $id}) SET n += $props`, map[string]any{
			"id": id, "props": doc,
		})
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		indexed++
	}
	return request.IndexResult{IndexedCount: indexed, Errors: errs}, nil
}

// HealthCheck verifies connectivity via the driver's built-in check.
func (a *Adapter) HealthCheck(ctx context.Context) (provider.Health, error) {
	start := time.Now()
	err := a.driver.VerifyConnectivity(ctx)
	latency := float64(time.Since(start).Milliseconds())
	if err != nil {
		return provider.Health{
			Provider: a.name, Status: provider.StatusUnhealthy,
			LatencyMS: latency, LastCheck: time.Now(), ErrorMessage: err.Error(),
		}, kinderror.Wrap(kinderror.Upstream, "connectivity check failed", err)
	}
	return provider.Health{Provider: a.name, Status: provider.StatusHealthy, LatencyMS: latency, LastCheck: time.Now()}, nil
}

// Close shuts down the driver.
func (a *Adapter) Close() error {
	return a.driver.Close(context.Background())
}
