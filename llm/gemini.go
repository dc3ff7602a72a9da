// Google Gemini backend implementation using official google.golang.org/genai SDK.
//
// Information Hiding:
// - API authentication and client creation
// - Thinking configuration (disabled unless reasoning is requested)
// - Separation of thought parts from answer text
// - Message-based error classification

package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

// GeminiBackend implements Backend for Google Gemini.
type GeminiBackend struct {
	client  *genai.Client
	model   string
	apiKey  string
	initErr error // Stores client initialization error for deferred reporting
}

// NewGeminiBackend creates a new Gemini backend.
// If client initialization fails, the error is stored and returned on first use.
func NewGeminiBackend(apiKey, model, baseURL string, timeout time.Duration) *GeminiBackend {
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cc.HTTPOptions.BaseURL = baseURL
	}
	if timeout > 0 {
		cc.HTTPClient = &http.Client{Timeout: timeout}
	}

	client, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return &GeminiBackend{
			model:   model,
			apiKey:  apiKey,
			initErr: fmt.Errorf("failed to initialize Gemini client: %w", err),
		}
	}
	return &GeminiBackend{client: client, model: model, apiKey: apiKey}
}

// Name returns the provider name.
func (b *GeminiBackend) Name() string {
	return "gemini"
}

// Generate sends a single-turn GenerateContent request.
func (b *GeminiBackend) Generate(ctx context.Context, prompt string, cfg ModelConfig) (Result, error) {
	if b.initErr != nil {
		return Result{}, newAPIError(b.Name(), KindAuth, b.initErr, b.apiKey)
	}
	if b.client == nil {
		return Result{}, fmt.Errorf("gemini client not initialized")
	}

	model := cfg.model(b.model)
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(cfg.temperature(0.1)),
		MaxOutputTokens:  int32(cfg.maxTokens(8000)),
		TopP:             cfg.TopP,
		FrequencyPenalty: cfg.FrequencyPenalty,
		PresencePenalty:  cfg.PresencePenalty,
		ThinkingConfig: &genai.ThinkingConfig{
			ThinkingBudget: genai.Ptr[int32](0),
		},
	}
	if cfg.IncludeReasoning {
		config.ThinkingConfig = &genai.ThinkingConfig{IncludeThoughts: true}
	}

	response, err := b.client.Models.GenerateContent(ctx, model, genai.Text(prompt), config)
	if err != nil {
		return Result{}, classifyGeminiError(b.Name(), b.apiKey, err)
	}

	var answer, reasoning strings.Builder
	if len(response.Candidates) > 0 && response.Candidates[0].Content != nil {
		for _, part := range response.Candidates[0].Content.Parts {
			if part == nil || part.Text == "" {
				continue
			}
			if part.Thought {
				reasoning.WriteString(part.Text)
			} else {
				answer.WriteString(part.Text)
			}
		}
	}
	if answer.Len() == 0 {
		return Result{}, &APIError{Provider: b.Name(), Kind: KindResponse, Err: ErrEmptyResponse}
	}

	res := Result{
		Answer:    answer.String(),
		Reasoning: reasoning.String(),
		Model:     model,
	}
	if response.ModelVersion != "" {
		res.Model = response.ModelVersion
	}
	if response.UsageMetadata != nil {
		res.Usage = &TokenUsage{
			PromptTokens:     uint32(response.UsageMetadata.PromptTokenCount),
			CompletionTokens: uint32(response.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      uint32(response.UsageMetadata.TotalTokenCount),
		}
	}
	return res, nil
}

func classifyGeminiError(provider, apiKey string, err error) error {
	kind := kindFromMessage(err.Error())

	var apiErr genai.APIError
	if kind == KindUnknown && errors.As(err, &apiErr) {
		kind = kindFromStatus(apiErr.Code)
	}
	if kind == KindUnknown {
		kind = kindFromTransport(err)
	}
	return newAPIError(provider, kind, err, apiKey)
}

var _ Backend = (*GeminiBackend)(nil)
