// Package llm shared data models for generation backends.
package llm

// ModelConfig carries per-request generation settings. Pointer fields
// distinguish an explicit zero from "use the backend default".
type ModelConfig struct {
	Model            string   `mapstructure:"model" json:"model,omitempty"`
	Temperature      *float32 `mapstructure:"temperature" json:"temperature,omitempty"`
	MaxTokens        int      `mapstructure:"max_tokens" json:"max_tokens,omitempty"`
	Stream           bool     `mapstructure:"stream" json:"stream,omitempty"`
	TopP             *float32 `mapstructure:"top_p" json:"top_p,omitempty"`
	FrequencyPenalty *float32 `mapstructure:"frequency_penalty" json:"frequency_penalty,omitempty"`
	PresencePenalty  *float32 `mapstructure:"presence_penalty" json:"presence_penalty,omitempty"`
	IncludeReasoning bool     `mapstructure:"include_reasoning" json:"include_reasoning,omitempty"`
}

func (c ModelConfig) model(def string) string {
	if c.Model != "" {
		return c.Model
	}
	return def
}

func (c ModelConfig) temperature(def float32) float32 {
	if c.Temperature != nil {
		return *c.Temperature
	}
	return def
}

func (c ModelConfig) maxTokens(def int) int {
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return def
}

// Float returns a pointer to v, for ModelConfig literals.
func Float(v float32) *float32 {
	return &v
}

// Result is the outcome of a generation call. Backends without a separate
// reasoning channel leave Reasoning empty.
type Result struct {
	Answer    string
	Reasoning string
	// Raw is the undecoded response body when the transport exposes it.
	Raw   string
	Model string
	Usage *TokenUsage
}

// HasReasoning reports whether the backend returned a reasoning channel.
func (r Result) HasReasoning() bool {
	return r.Reasoning != ""
}

// TokenUsage contains token usage statistics.
type TokenUsage struct {
	PromptTokens     uint32
	CompletionTokens uint32
	TotalTokens      uint32
}
