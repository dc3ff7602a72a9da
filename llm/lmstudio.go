// LM Studio backend - a local OpenAI-compatible server.
//
// Information Hiding:
// - Default local endpoint
// - Discovery of the currently loaded model via /v1/models
// - Reachability probe with a fixed timeout

package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const lmStudioBaseURL = "http://127.0.0.1:1234/v1"

// ErrNoModelLoaded is returned when LM Studio reports no loaded model.
var ErrNoModelLoaded = errors.New("no model is currently loaded in LM Studio")

// LMStudioBackend implements Backend for a local LM Studio server. When
// no model is configured the loaded model is discovered per call.
type LMStudioBackend struct {
	client *openai.Client
	model  string
}

// NewLMStudioBackend creates a backend for the server at baseURL (empty
// uses http://127.0.0.1:1234/v1).
func NewLMStudioBackend(model, baseURL string, timeout time.Duration) *LMStudioBackend {
	if baseURL == "" {
		baseURL = lmStudioBaseURL
	}
	return &LMStudioBackend{
		client: openai.NewClientWithConfig(compatConfig("lm-studio", baseURL, timeout)),
		model:  model,
	}
}

// Name returns the provider name.
func (b *LMStudioBackend) Name() string {
	return "lmstudio"
}

// Generate sends a chat completion request to the local server.
func (b *LMStudioBackend) Generate(ctx context.Context, prompt string, cfg ModelConfig) (Result, error) {
	model := cfg.model(b.model)
	if model == "" {
		current, err := b.CurrentModel(ctx)
		if err != nil {
			return Result{}, err
		}
		model = current
	}
	cfg.Model = model

	req := chatRequest(prompt, cfg, compatDefaults{model: model, temperature: 0.6, maxTokens: 8000})
	return chatCompletion(ctx, b.client, b.Name(), "", req, cfg.IncludeReasoning)
}

// Status reports whether the server answers the models endpoint.
func (b *LMStudioBackend) Status(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()

	if _, err := b.client.ListModels(ctx); err != nil {
		return classifyOpenAIError(b.Name(), "", fmt.Errorf("cannot reach LM Studio server: %w", err))
	}
	return nil
}

// CurrentModel returns the id of the first model the server reports.
func (b *LMStudioBackend) CurrentModel(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()

	list, err := b.client.ListModels(ctx)
	if err != nil {
		return "", classifyOpenAIError(b.Name(), "", fmt.Errorf("checking loaded models: %w", err))
	}
	if len(list.Models) == 0 {
		return "", &APIError{Provider: b.Name(), Kind: KindResponse, Err: ErrNoModelLoaded}
	}
	return list.Models[0].ID, nil
}

var (
	_ Backend       = (*LMStudioBackend)(nil)
	_ StatusChecker = (*LMStudioBackend)(nil)
	_ ModelLister   = (*LMStudioBackend)(nil)
)
