// DeepSeek backend implementation using go-openai library.
//
// Information Hiding:
// - Uses OpenAI-compatible API with different base URL
// - deepseek-reasoner returns its chain of thought as reasoning_content

package llm

import (
	"context"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const deepseekBaseURL = "https://api.deepseek.com/v1"

// DeepSeekBackend implements Backend for DeepSeek.
type DeepSeekBackend struct {
	client *openai.Client
	model  string
	apiKey string
}

// NewDeepSeekBackend creates a new DeepSeek backend. An empty baseURL uses
// the public endpoint.
func NewDeepSeekBackend(apiKey, model, baseURL string, timeout time.Duration) *DeepSeekBackend {
	if baseURL == "" {
		baseURL = deepseekBaseURL
	}
	return &DeepSeekBackend{
		client: openai.NewClientWithConfig(compatConfig(apiKey, baseURL, timeout)),
		model:  model,
		apiKey: apiKey,
	}
}

// Name returns the provider name.
func (b *DeepSeekBackend) Name() string {
	return "deepseek"
}

// Generate sends a chat completion request.
func (b *DeepSeekBackend) Generate(ctx context.Context, prompt string, cfg ModelConfig) (Result, error) {
	req := chatRequest(prompt, cfg, compatDefaults{model: b.model, temperature: 0.1, maxTokens: 4000})
	return chatCompletion(ctx, b.client, b.Name(), b.apiKey, req, cfg.IncludeReasoning)
}

var _ Backend = (*DeepSeekBackend)(nil)
