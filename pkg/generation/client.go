package generation

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// ChatClient is the LLM collaborator. Complete sends a system and user
// prompt and returns the raw model text.
type ChatClient interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// OpenAIChatClient talks to an OpenAI-compatible chat completions endpoint
// (a local Ollama server exposes one at /v1).
type OpenAIChatClient struct {
	client openai.Client
	model  string
}

// NewOpenAIChatClient creates a client for the given endpoint and model.
func NewOpenAIChatClient(endpoint, apiKey, model string) *OpenAIChatClient {
	opts := []option.RequestOption{option.WithBaseURL(endpoint)}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	return &OpenAIChatClient{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

// Complete runs one deterministic chat completion in JSON mode.
func (c *OpenAIChatClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Temperature: openai.Float(0),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return "", fmt.Errorf("error calling chat completions: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}
