// Package vectoradapter implements the "pinecone"-kind provider adapter.
// The catalog keeps the source system's provider name for compatibility,
// but no Pinecone Go client exists among the reference repos this gateway
// was built from, so the wire transport underneath is qdrant/go-client
// (the one real vector-store client available), grounded on rago's
// QdrantStore.
package vectoradapter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/briefcasebrain/uir-gateway/adapter"
	"github.com/briefcasebrain/uir-gateway/kinderror"
	"github.com/briefcasebrain/uir-gateway/provider"
	"github.com/briefcasebrain/uir-gateway/request"
)

const (
	defaultDistance   = pb.Distance_Cosine
	defaultCollection = "uir_documents"
)

// Adapter talks to a qdrant collection behind the "pinecone" provider kind.
type Adapter struct {
	name           string
	conn           *grpc.ClientConn
	points         pb.PointsClient
	collections    pb.CollectionsClient
	collectionName string
	vectorSize     uint64
}

// New dials the qdrant endpoint configured for this provider and ensures
// the target collection exists.
func New(cfg provider.Config) (*Adapter, error) {
	endpoint, ok := cfg.Endpoints["default"]
	if !ok {
		return nil, kinderror.New(kinderror.Validation, fmt.Sprintf("provider %s: no endpoint configured", cfg.Name))
	}
	endpoint = strings.TrimPrefix(endpoint, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")

	collection := cfg.Credentials["index"]
	if collection == "" {
		collection = defaultCollection
	}
	vectorSize := uint64(768)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := grpc.DialContext(ctx, endpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, kinderror.Wrap(kinderror.Upstream, "failed to connect to vector store", err)
	}

	a := &Adapter{
		name:           cfg.Name,
		conn:           conn,
		points:         pb.NewPointsClient(conn),
		collections:    pb.NewCollectionsClient(conn),
		collectionName: collection,
		vectorSize:     vectorSize,
	}
	if err := a.ensureCollection(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return a, nil
}

func (a *Adapter) ensureCollection(ctx context.Context) error {
	listResp, err := a.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return kinderror.Wrap(kinderror.Upstream, "failed to list collections", err)
	}
	for _, col := range listResp.Collections {
		if col.Name == a.collectionName {
			return nil
		}
	}
	_, err = a.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: a.collectionName,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{Size: a.vectorSize, Distance: defaultDistance},
			},
		},
	})
	if err != nil {
		return kinderror.Wrap(kinderror.Upstream, "failed to create collection", err)
	}
	return nil
}

// Name implements adapter.Adapter.
func (a *Adapter) Name() string { return a.name }

// Kind implements adapter.Adapter.
func (a *Adapter) Kind() provider.Kind { return provider.KindVectorDB }

// Search is unsupported on a pure vector store; callers embed the query
// text first and call VectorSearch instead.
func (a *Adapter) Search(ctx context.Context, query string, opts request.SearchOptions) ([]request.Result, error) {
	return nil, kinderror.New(kinderror.Unsupported, "vector provider does not support text search directly")
}

// VectorSearch runs nearest-neighbor search against the configured
// collection and normalizes scores into [0,1].
func (a *Adapter) VectorSearch(ctx context.Context, vector []float32, opts request.SearchOptions) ([]request.Result, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}
	filter := buildFilter(opts.Filters)

	resp, err := a.points.Search(ctx, &pb.SearchPoints{
		CollectionName: a.collectionName,
		Vector:         vector,
		Filter:         filter,
		Limit:          uint64(limit),
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, kinderror.Wrap(kinderror.Upstream, "vector search failed", err)
	}

	results := make([]request.Result, 0, len(resp.Result))
	for _, point := range resp.Result {
		r := request.Result{
			ID:       point.Id.GetUuid(),
			Score:    adapter.NormalizeScore(float64(point.Score), 0, 1),
			Provider: a.name,
		}
		if payload := point.Payload; payload != nil {
			if v, ok := payload["content"]; ok {
				r.Content = v.GetStringValue()
			}
			if v, ok := payload["title"]; ok {
				r.Title = v.GetStringValue()
			}
			if v, ok := payload["url"]; ok {
				r.URL = v.GetStringValue()
			}
			if opts.IncludeMetadata {
				r.Metadata = make(map[string]any, len(payload))
				for k, v := range payload {
					r.Metadata[k] = v.GetStringValue()
				}
			}
		}
		results = append(results, r)
	}
	return results, nil
}

// buildFilter translates request.Filter equality clauses into a qdrant
// field-match filter. Only eq and contains clauses with a string value are
// representable this way; other clauses are not applied.
func buildFilter(filters []request.Filter) *pb.Filter {
	var conditions []*pb.Condition
	for _, f := range filters {
		strVal, ok := f.Value.(string)
		if !ok {
			continue
		}
		switch f.Op {
		case request.OpEq, request.OpContains:
			conditions = append(conditions, &pb.Condition{
				ConditionOneOf: &pb.Condition_Field{
					Field: &pb.FieldCondition{
						Key:   f.Field,
						Match: &pb.Match{MatchValue: &pb.Match_Text{Text: strVal}},
					},
				},
			})
		}
	}
	if len(conditions) == 0 {
		return nil
	}
	return &pb.Filter{Must: conditions}
}

var waitTrue = true

// Index upserts documents as points, embedding is assumed to already be
// present on each document under the "vector" key.
func (a *Adapter) Index(ctx context.Context, documents []map[string]any, opts map[string]any) (request.IndexResult, error) {
	points := make([]*pb.PointStruct, 0, len(documents))
	for _, doc := range documents {
		id, _ := doc["id"].(string)
		if id == "" {
			id = uuid.New().String()
		} else if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewSHA1(uuid.NameSpaceOID, []byte(id)).String()
		}

		rawVec, _ := doc["vector"].([]float32)
		payload := map[string]*pb.Value{}
		for k, v := range doc {
			if k == "vector" {
				continue
			}
			if strVal, ok := v.(string); ok {
				payload[k] = &pb.Value{Kind: &pb.Value_StringValue{StringValue: strVal}}
			}
		}

		points = append(points, &pb.PointStruct{
			Id: &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: id}},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: rawVec}},
			},
			Payload: payload,
		})
	}

	_, err := a.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: a.collectionName,
		Points:         points,
		Wait:           &waitTrue,
	})
	if err != nil {
		return request.IndexResult{}, kinderror.Wrap(kinderror.Upstream, "index upsert failed", err)
	}
	return request.IndexResult{IndexedCount: len(points)}, nil
}

// HealthCheck reports healthy if the collection list call succeeds.
func (a *Adapter) HealthCheck(ctx context.Context) (provider.Health, error) {
	start := time.Now()
	_, err := a.collections.List(ctx, &pb.ListCollectionsRequest{})
	latency := float64(time.Since(start).Milliseconds())
	if err != nil {
		return provider.Health{
			Provider:     a.name,
			Status:       provider.StatusUnhealthy,
			LatencyMS:    latency,
			LastCheck:    time.Now(),
			ErrorMessage: err.Error(),
		}, kinderror.Wrap(kinderror.Upstream, "health check failed", err)
	}
	return provider.Health{
		Provider:  a.name,
		Status:    provider.StatusHealthy,
		LatencyMS: latency,
		LastCheck: time.Now(),
	}, nil
}

// Close tears down the gRPC connection.
func (a *Adapter) Close() error { return a.conn.Close() }
