package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"

	"github.com/shopgraph/backend/pkg/common"
)

// GenerateEmbedding creates a vector embedding for the given input text
// using the configured embedding model.
func (c *Client) GenerateEmbedding(ctx context.Context, input string) ([]float32, error) {
	client := c.EmbeddingClient
	if client == nil {
		return nil, fmt.Errorf("%w: no embedding endpoint configured", common.ErrExternalService)
	}
	if strings.TrimSpace(input) == "" {
		return nil, fmt.Errorf("%w: empty embedding input", common.ErrValidation)
	}

	body := openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(input)},
		Model: c.embeddingModel,
	}

	response, err := client.Embeddings.New(ctx, body)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding: %v", common.ErrExternalService, err)
	}
	if len(response.Data) != 1 {
		return nil, fmt.Errorf("%w: unexpected embedding result size: got %d want 1", common.ErrExternalService, len(response.Data))
	}

	embedding := response.Data[0].Embedding
	vec := make([]float32, len(embedding))
	for i, v := range embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}
