// Anthropic backend implementation using official anthropic-sdk-go.
//
// Information Hiding:
// - API endpoint and authentication
// - Request/response format for Anthropic Messages API
// - Extended thinking when reasoning is requested

package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// minThinkingBudget is the smallest budget the Messages API accepts.
const minThinkingBudget = 1024

// AnthropicBackend implements Backend for Anthropic Claude.
type AnthropicBackend struct {
	client anthropic.Client
	model  string
	apiKey string
}

// NewAnthropicBackend creates a new Anthropic backend.
func NewAnthropicBackend(apiKey, model, baseURL string, timeout time.Duration) *AnthropicBackend {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if timeout > 0 {
		opts = append(opts, option.WithHTTPClient(&http.Client{Timeout: timeout}))
	}
	return &AnthropicBackend{
		client: anthropic.NewClient(opts...),
		model:  model,
		apiKey: apiKey,
	}
}

// Name returns the provider name.
func (b *AnthropicBackend) Name() string {
	return "anthropic"
}

// Generate sends a single user message.
func (b *AnthropicBackend) Generate(ctx context.Context, prompt string, cfg ModelConfig) (Result, error) {
	maxTokens := int64(cfg.maxTokens(4096))
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(cfg.model(b.model)),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	if cfg.IncludeReasoning && maxTokens > minThinkingBudget {
		budget := maxTokens / 2
		if budget < minThinkingBudget {
			budget = minThinkingBudget
		}
		params.Thinking = anthropic.ThinkingConfigParamOfEnabled(budget)
	} else {
		params.Temperature = anthropic.Float(float64(cfg.temperature(0.7)))
		if cfg.TopP != nil {
			params.TopP = anthropic.Float(float64(*cfg.TopP))
		}
	}

	message, err := b.client.Messages.New(ctx, params)
	if err != nil {
		return Result{}, classifyAnthropicError(b.Name(), b.apiKey, err)
	}

	var answer, reasoning strings.Builder
	for _, block := range message.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			answer.WriteString(variant.Text)
		case anthropic.ThinkingBlock:
			reasoning.WriteString(variant.Thinking)
		}
	}
	if answer.Len() == 0 {
		return Result{}, &APIError{Provider: b.Name(), Kind: KindResponse, Err: ErrEmptyResponse}
	}

	return Result{
		Answer:    answer.String(),
		Reasoning: reasoning.String(),
		Model:     string(message.Model),
		Usage: &TokenUsage{
			PromptTokens:     uint32(message.Usage.InputTokens),
			CompletionTokens: uint32(message.Usage.OutputTokens),
			TotalTokens:      uint32(message.Usage.InputTokens + message.Usage.OutputTokens),
		},
	}, nil
}

func classifyAnthropicError(provider, apiKey string, err error) error {
	var apiErr *anthropic.Error
	kind := KindUnknown
	if errors.As(err, &apiErr) {
		kind = kindFromStatus(apiErr.StatusCode)
	} else {
		kind = kindFromTransport(err)
	}
	return newAPIError(provider, kind, err, apiKey)
}

var _ Backend = (*AnthropicBackend)(nil)
