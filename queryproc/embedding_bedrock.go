package queryproc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
)

// BedrockEmbedding embeds text via Amazon Titan Embeddings on AWS
// Bedrock, an alternate EmbeddingService backend to MockEmbedding for
// deployments with real embedding infrastructure.
type BedrockEmbedding struct {
	client  *bedrockruntime.Client
	modelID string
}

const defaultTitanEmbeddingModel = "amazon.titan-embed-text-v2:0"

// NewBedrockEmbedding creates a Bedrock-backed embedding service. region
// defaults to us-east-1; modelID defaults to Titan's text embedding v2.
func NewBedrockEmbedding(ctx context.Context, region, modelID string) (*BedrockEmbedding, error) {
	if region == "" {
		region = "us-east-1"
	}
	if modelID == "" {
		modelID = defaultTitanEmbeddingModel
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &BedrockEmbedding{client: bedrockruntime.NewFromConfig(cfg), modelID: modelID}, nil
}

type titanEmbeddingRequest struct {
	InputText string `json:"inputText"`
}

type titanEmbeddingResponse struct {
	Embedding           []float32 `json:"embedding"`
	InputTextTokenCount int       `json:"inputTextTokenCount"`
}

// Embed invokes the Titan embedding model and returns its output vector.
func (b *BedrockEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(titanEmbeddingRequest{InputText: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding request: %w", err)
	}

	output, err := b.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(b.modelID),
		ContentType: aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return nil, fmt.Errorf("bedrock embedding invoke failed: %w", err)
	}

	var resp titanEmbeddingResponse
	if err := json.Unmarshal(output.Body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal embedding response: %w", err)
	}
	return resp.Embedding, nil
}
