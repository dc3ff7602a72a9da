// OpenAI backend implementation using go-openai library.
//
// Information Hiding:
// - API endpoint and authentication
// - Request/response format for the Chat Completions API
// - Shared request building for OpenAI-compatible servers

package llm

import (
	"context"
	"errors"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIBackend implements Backend for OpenAI.
type OpenAIBackend struct {
	client *openai.Client
	model  string
	apiKey string
}

// NewOpenAIBackend creates a new OpenAI backend. baseURL and timeout are
// optional.
func NewOpenAIBackend(apiKey, model, baseURL string, timeout time.Duration) *OpenAIBackend {
	return &OpenAIBackend{
		client: openai.NewClientWithConfig(compatConfig(apiKey, baseURL, timeout)),
		model:  model,
		apiKey: apiKey,
	}
}

// Name returns the provider name.
func (b *OpenAIBackend) Name() string {
	return "openai"
}

// Generate sends a chat completion request.
func (b *OpenAIBackend) Generate(ctx context.Context, prompt string, cfg ModelConfig) (Result, error) {
	req := chatRequest(prompt, cfg, compatDefaults{model: b.model, temperature: 0.7, maxTokens: 4096})
	return chatCompletion(ctx, b.client, b.Name(), b.apiKey, req, false)
}

var _ Backend = (*OpenAIBackend)(nil)

// compatDefaults fill ModelConfig gaps for an OpenAI-compatible server.
type compatDefaults struct {
	model       string
	temperature float32
	maxTokens   int
}

func compatConfig(apiKey, baseURL string, timeout time.Duration) openai.ClientConfig {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if timeout > 0 {
		config.HTTPClient = &http.Client{Timeout: timeout}
	}
	return config
}

func chatRequest(prompt string, cfg ModelConfig, def compatDefaults) openai.ChatCompletionRequest {
	req := openai.ChatCompletionRequest{
		Model: cfg.model(def.model),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   cfg.maxTokens(def.maxTokens),
		Temperature: cfg.temperature(def.temperature),
	}
	if cfg.TopP != nil {
		req.TopP = *cfg.TopP
	}
	if cfg.FrequencyPenalty != nil {
		req.FrequencyPenalty = *cfg.FrequencyPenalty
	}
	if cfg.PresencePenalty != nil {
		req.PresencePenalty = *cfg.PresencePenalty
	}
	return req
}

// chatCompletion runs req and converts the first choice. reasoning_content
// is surfaced as Reasoning only when withReasoning is set.
func chatCompletion(ctx context.Context, client *openai.Client, provider, apiKey string, req openai.ChatCompletionRequest, withReasoning bool) (Result, error) {
	resp, err := client.CreateChatCompletion(ctx, req)
	if err != nil {
		return Result{}, classifyOpenAIError(provider, apiKey, err)
	}
	if len(resp.Choices) == 0 {
		return Result{}, &APIError{Provider: provider, Kind: KindResponse, Err: ErrEmptyResponse}
	}

	msg := resp.Choices[0].Message
	res := Result{
		Answer: msg.Content,
		Model:  resp.Model,
		Usage: &TokenUsage{
			PromptTokens:     uint32(resp.Usage.PromptTokens),
			CompletionTokens: uint32(resp.Usage.CompletionTokens),
			TotalTokens:      uint32(resp.Usage.TotalTokens),
		},
	}
	if withReasoning {
		res.Reasoning = msg.ReasoningContent
	}
	if res.Model == "" {
		res.Model = req.Model
	}
	return res, nil
}

func classifyOpenAIError(provider, apiKey string, err error) error {
	var apiErr *openai.APIError
	var reqErr *openai.RequestError

	kind := KindUnknown
	switch {
	case errors.As(err, &apiErr):
		kind = kindFromStatus(apiErr.HTTPStatusCode)
		if kind == KindResponse || kind == KindUnknown {
			if byMsg := kindFromMessage(apiErr.Message); byMsg != KindUnknown {
				kind = byMsg
			}
		}
	case errors.As(err, &reqErr):
		kind = kindFromStatus(reqErr.HTTPStatusCode)
		if kind == KindUnknown {
			kind = kindFromTransport(reqErr.Err)
		}
	default:
		kind = kindFromTransport(err)
	}
	return newAPIError(provider, kind, err, apiKey)
}
