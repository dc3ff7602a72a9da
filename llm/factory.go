// Backend Factory - builder-first API for creating generation backends.
//
// Quick Start:
//
//	// Simplest: use defaults, read API key from environment
//	gemini, err := llm.ProviderGemini.FromEnv()       // Uses gemini-2.5-flash
//	local, err := llm.ProviderLMStudio.FromEnv()      // No key, model discovered
//
//	// With custom model and endpoint
//	phi, err := llm.ProviderOpenRouter.
//	    Model(llm.ModelOpenRouterPhi4ReasoningPlus).
//	    Timeout(5 * time.Minute).
//	    FromEnv()
//
//	// With explicit API key
//	backend, err := llm.ProviderDeepSeek.Model(llm.ModelDeepSeekReasoner).APIKey("sk-...")

package llm

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// ProviderType represents supported generation providers.
type ProviderType int

const (
	// ProviderOpenAI is the OpenAI provider (GPT models).
	ProviderOpenAI ProviderType = iota
	// ProviderAnthropic is the Anthropic provider (Claude models).
	ProviderAnthropic
	// ProviderDeepSeek is the DeepSeek provider.
	ProviderDeepSeek
	// ProviderGemini is the Google Gemini provider.
	ProviderGemini
	// ProviderOpenRouter is the OpenRouter model router.
	ProviderOpenRouter
	// ProviderLMStudio is a local LM Studio server.
	ProviderLMStudio
)

// AllProviders lists every provider type in declaration order.
var AllProviders = []ProviderType{
	ProviderOpenAI, ProviderAnthropic, ProviderDeepSeek,
	ProviderGemini, ProviderOpenRouter, ProviderLMStudio,
}

// String returns the string representation of the provider type.
func (p ProviderType) String() string {
	switch p {
	case ProviderOpenAI:
		return "openai"
	case ProviderAnthropic:
		return "anthropic"
	case ProviderDeepSeek:
		return "deepseek"
	case ProviderGemini:
		return "gemini"
	case ProviderOpenRouter:
		return "openrouter"
	case ProviderLMStudio:
		return "lmstudio"
	default:
		return "unknown"
	}
}

// EnvVar returns the environment variable name for this provider's API key.
// Providers that need no key return "".
func (p ProviderType) EnvVar() string {
	switch p {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case ProviderDeepSeek:
		return "DEEPSEEK_API_KEY"
	case ProviderGemini:
		return "GEMINI_API_KEY"
	case ProviderOpenRouter:
		return "OPENROUTER_API_KEY"
	default:
		return ""
	}
}

// NeedsAPIKey reports whether the provider authenticates with a key.
func (p ProviderType) NeedsAPIKey() bool {
	return p.EnvVar() != ""
}

// DefaultModel returns the default model for this provider. LM Studio
// returns "" and discovers the loaded model at call time.
func (p ProviderType) DefaultModel() string {
	switch p {
	case ProviderOpenAI:
		return ModelOpenAIGPT4o
	case ProviderAnthropic:
		return ModelAnthropicClaudeSonnet4
	case ProviderDeepSeek:
		return ModelDeepSeekReasoner
	case ProviderGemini:
		return ModelGeminiFlash25
	case ProviderOpenRouter:
		return ModelOpenRouterLlama31_70B
	default:
		return ""
	}
}

// DefaultBaseURL returns the endpoint used when none is configured.
func (p ProviderType) DefaultBaseURL() string {
	switch p {
	case ProviderOpenAI:
		return "https://api.openai.com/v1"
	case ProviderAnthropic:
		return "https://api.anthropic.com"
	case ProviderDeepSeek:
		return deepseekBaseURL
	case ProviderGemini:
		return "https://generativelanguage.googleapis.com/"
	case ProviderOpenRouter:
		return openRouterBaseURL
	case ProviderLMStudio:
		return lmStudioBaseURL
	default:
		return ""
	}
}

// ParseProviderType parses a provider from string (case-insensitive).
func ParseProviderType(s string) (ProviderType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "openai", "gpt":
		return ProviderOpenAI, nil
	case "anthropic", "claude":
		return ProviderAnthropic, nil
	case "deepseek":
		return ProviderDeepSeek, nil
	case "gemini", "google":
		return ProviderGemini, nil
	case "openrouter":
		return ProviderOpenRouter, nil
	case "lmstudio", "lm-studio", "local":
		return ProviderLMStudio, nil
	default:
		return 0, fmt.Errorf("unknown provider: %s", s)
	}
}

// FromEnv creates a backend with defaults, reading API key from environment.
func (p ProviderType) FromEnv() (Backend, error) {
	return NewBackendBuilder(p).FromEnv()
}

// Model starts configuring this provider with a specific default model.
func (p ProviderType) Model(model string) *BackendBuilder {
	return NewBackendBuilder(p).Model(model)
}

// APIKey creates a backend with an explicit API key (uses defaults for everything else).
func (p ProviderType) APIKey(key string) (Backend, error) {
	return NewBackendBuilder(p).APIKey(key)
}

// BackendBuilder is a builder for configuring backends.
type BackendBuilder struct {
	providerType ProviderType
	model        string
	baseURL      string
	timeout      time.Duration
}

// NewBackendBuilder creates a new builder for the given provider.
func NewBackendBuilder(providerType ProviderType) *BackendBuilder {
	return &BackendBuilder{
		providerType: providerType,
	}
}

// Model sets the model used when a request does not name one.
func (b *BackendBuilder) Model(model string) *BackendBuilder {
	b.model = model
	return b
}

// BaseURL overrides the provider endpoint.
func (b *BackendBuilder) BaseURL(url string) *BackendBuilder {
	b.baseURL = url
	return b
}

// Timeout bounds each HTTP exchange. Zero means no client-side limit.
func (b *BackendBuilder) Timeout(d time.Duration) *BackendBuilder {
	b.timeout = d
	return b
}

// FromEnv builds the backend, reading API key from environment.
func (b *BackendBuilder) FromEnv() (Backend, error) {
	if !b.providerType.NeedsAPIKey() {
		return b.build("")
	}
	envVar := b.providerType.EnvVar()
	apiKey := os.Getenv(envVar)
	if apiKey == "" {
		return nil, fmt.Errorf("%s: %s environment variable not set", b.providerType, envVar)
	}
	return b.build(apiKey)
}

// APIKey builds the backend with an explicit API key.
func (b *BackendBuilder) APIKey(key string) (Backend, error) {
	return b.build(key)
}

func (b *BackendBuilder) build(apiKey string) (Backend, error) {
	model := b.model
	if model == "" {
		model = b.providerType.DefaultModel()
	}

	switch b.providerType {
	case ProviderOpenAI:
		return NewOpenAIBackend(apiKey, model, b.baseURL, b.timeout), nil
	case ProviderAnthropic:
		return NewAnthropicBackend(apiKey, model, b.baseURL, b.timeout), nil
	case ProviderDeepSeek:
		return NewDeepSeekBackend(apiKey, model, b.baseURL, b.timeout), nil
	case ProviderGemini:
		return NewGeminiBackend(apiKey, model, b.baseURL, b.timeout), nil
	case ProviderOpenRouter:
		return NewOpenRouterBackend(apiKey, model, b.baseURL, b.timeout), nil
	case ProviderLMStudio:
		return NewLMStudioBackend(model, b.baseURL, b.timeout), nil
	default:
		return nil, fmt.Errorf("unknown provider type: %v", b.providerType)
	}
}

// Model identifier constants for the providers' common targets.

// OpenAI model identifiers
const (
	ModelOpenAIGPT4o     = "gpt-4o"
	ModelOpenAIGPT4oMini = "gpt-4o-mini"
	ModelOpenAIO3Mini    = "o3-mini"
)

// Anthropic model identifiers
const (
	ModelAnthropicClaudeSonnet4 = "claude-sonnet-4-20250514"
	ModelAnthropicClaudeHaiku4  = "claude-haiku-4-20250514"
)

// DeepSeek model identifiers
const (
	// ModelDeepSeekReasoner returns reasoning_content alongside the answer.
	ModelDeepSeekReasoner = "deepseek-reasoner"
	ModelDeepSeekChat     = "deepseek-chat"
)

// Gemini model identifiers
const (
	ModelGeminiFlash25 = "gemini-2.5-flash"
	ModelGeminiPro25   = "gemini-2.5-pro"
)

// OpenRouter model identifiers
const (
	ModelOpenRouterLlama31_70B       = "meta-llama/llama-3.1-70b-instruct"
	ModelOpenRouterPhi4ReasoningPlus = "microsoft/phi-4-reasoning-plus"
)
