// OpenRouter backend - plain JSON over HTTP.
//
// Information Hiding:
// - Request body with optional sampling fields and include_reasoning
// - Attribution headers required by OpenRouter
// - Decoding of message.reasoning and polymorphic error payloads

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	openRouterBaseURL = "https://openrouter.ai/api/v1"
	openRouterReferer = "https://github.com/richinex/replica"
	openRouterTitle   = "Replication CLI"
)

// OpenRouterBackend implements Backend for the OpenRouter chat API.
type OpenRouterBackend struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewOpenRouterBackend creates a new OpenRouter backend. An empty baseURL
// uses the public endpoint; a zero timeout means none.
func NewOpenRouterBackend(apiKey, model, baseURL string, timeout time.Duration) *OpenRouterBackend {
	if baseURL == "" {
		baseURL = openRouterBaseURL
	}
	return &OpenRouterBackend{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

// Name returns the provider name.
func (b *OpenRouterBackend) Name() string {
	return "openrouter"
}

type openRouterMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openRouterRequest struct {
	Model            string              `json:"model"`
	Messages         []openRouterMessage `json:"messages"`
	Temperature      float32             `json:"temperature"`
	MaxTokens        int                 `json:"max_tokens"`
	Stream           bool                `json:"stream"`
	TopP             *float32            `json:"top_p,omitempty"`
	FrequencyPenalty *float32            `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float32            `json:"presence_penalty,omitempty"`
	IncludeReasoning bool                `json:"include_reasoning,omitempty"`
}

// Generate posts a chat completion request.
func (b *OpenRouterBackend) Generate(ctx context.Context, prompt string, cfg ModelConfig) (Result, error) {
	body, err := json.Marshal(openRouterRequest{
		Model:            cfg.model(b.model),
		Messages:         []openRouterMessage{{Role: "user", Content: prompt}},
		Temperature:      cfg.temperature(0.6),
		MaxTokens:        cfg.maxTokens(8000),
		TopP:             cfg.TopP,
		FrequencyPenalty: cfg.FrequencyPenalty,
		PresencePenalty:  cfg.PresencePenalty,
		IncludeReasoning: cfg.IncludeReasoning,
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.apiKey)
	req.Header.Set("HTTP-Referer", openRouterReferer)
	req.Header.Set("X-Title", openRouterTitle)

	resp, err := b.client.Do(req)
	if err != nil {
		return Result{}, newAPIError(b.Name(), kindFromTransport(err), fmt.Errorf("request failed: %w", err), b.apiKey)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, newAPIError(b.Name(), KindNetwork, fmt.Errorf("failed to read response: %w", err), b.apiKey)
	}
	return b.decode(resp.StatusCode, raw, cfg)
}

func (b *OpenRouterBackend) decode(status int, raw []byte, cfg ModelConfig) (Result, error) {
	if !gjson.ValidBytes(raw) {
		kind := kindFromStatus(status)
		if kind == KindUnknown {
			kind = KindResponse
		}
		return Result{}, newAPIError(b.Name(), kind,
			fmt.Errorf("failed to parse response (status %d)", status), b.apiKey)
	}

	doc := gjson.ParseBytes(raw)
	if errVal := doc.Get("error"); errVal.Exists() {
		msg := errVal.Get("message").String()
		if msg == "" {
			msg = errVal.String()
		}
		code := status
		if c := errVal.Get("code"); c.Type == gjson.Number {
			code = int(c.Int())
		}
		kind := kindFromStatus(code)
		if kind == KindUnknown || kind == KindResponse {
			if byMsg := kindFromMessage(msg); byMsg != KindUnknown {
				kind = byMsg
			}
		}
		if kind == KindUnknown {
			kind = KindResponse
		}
		return Result{}, newAPIError(b.Name(), kind, fmt.Errorf("%s", msg), b.apiKey)
	}
	if status < 200 || status >= 300 {
		return Result{}, newAPIError(b.Name(), kindFromStatus(status),
			fmt.Errorf("unexpected status %d", status), b.apiKey)
	}

	choice := doc.Get("choices.0.message")
	if !choice.Exists() {
		return Result{}, &APIError{Provider: b.Name(), Kind: KindResponse, Err: ErrEmptyResponse}
	}

	res := Result{
		Answer: choice.Get("content").String(),
		Raw:    string(raw),
		Model:  doc.Get("model").String(),
	}
	if cfg.IncludeReasoning {
		res.Reasoning = choice.Get("reasoning").String()
	}
	if res.Model == "" {
		res.Model = cfg.model(b.model)
	}
	if usage := doc.Get("usage"); usage.Exists() {
		res.Usage = &TokenUsage{
			PromptTokens:     uint32(usage.Get("prompt_tokens").Uint()),
			CompletionTokens: uint32(usage.Get("completion_tokens").Uint()),
			TotalTokens:      uint32(usage.Get("total_tokens").Uint()),
		}
	}
	return res, nil
}

var _ Backend = (*OpenRouterBackend)(nil)
