package retrieval

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/observability"
)

// OpenAIEmbedder embeds text through an OpenAI-compatible embeddings
// endpoint.
type OpenAIEmbedder struct {
	client openai.EmbeddingService
	model  string
}

// NewOpenAIEmbedder creates an embedder against the given endpoint and
// model. apiKey may be empty for endpoints that do not authenticate.
func NewOpenAIEmbedder(endpoint, apiKey, model string) *OpenAIEmbedder {
	opts := []option.RequestOption{option.WithBaseURL(endpoint)}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	return &OpenAIEmbedder{
		client: openai.NewEmbeddingService(opts...),
		model:  model,
	}
}

// Embed returns the embedding vector for a single input.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	res, err := e.client.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: []string{text}},
		Model: e.model,
	})
	if err != nil {
		observability.Errorf("Error creating embedding: %s", err)
		return nil, err
	}
	if len(res.Data) == 0 {
		return nil, fmt.Errorf("embedding response contained no data")
	}

	vec := make([]float32, len(res.Data[0].Embedding))
	for i, v := range res.Data[0].Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}
