package llm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProviderType(t *testing.T) {
	tests := map[string]ProviderType{
		"openai":     ProviderOpenAI,
		"GPT":        ProviderOpenAI,
		"claude":     ProviderAnthropic,
		"deepseek":   ProviderDeepSeek,
		"google":     ProviderGemini,
		"OpenRouter": ProviderOpenRouter,
		"local":      ProviderLMStudio,
		"lm-studio":  ProviderLMStudio,
	}
	for in, want := range tests {
		got, err := ParseProviderType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseProviderType("unknown_provider")
	assert.Error(t, err)
}

func TestProviderRoundTrip(t *testing.T) {
	for _, p := range AllProviders {
		got, err := ParseProviderType(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
		assert.NotEmpty(t, p.DefaultBaseURL(), p.String())
	}
}

func TestProviderDefaults(t *testing.T) {
	assert.Equal(t, "gemini-2.5-flash", ProviderGemini.DefaultModel())
	assert.Equal(t, "deepseek-reasoner", ProviderDeepSeek.DefaultModel())
	assert.Equal(t, "", ProviderLMStudio.DefaultModel())
	assert.Equal(t, "http://127.0.0.1:1234/v1", ProviderLMStudio.DefaultBaseURL())
	assert.False(t, ProviderLMStudio.NeedsAPIKey())
	assert.Equal(t, "OPENROUTER_API_KEY", ProviderOpenRouter.EnvVar())
}

func TestFromEnvRequiresKey(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	_, err := ProviderOpenRouter.FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENROUTER_API_KEY")

	t.Setenv("OPENROUTER_API_KEY", "or-key")
	backend, err := ProviderOpenRouter.Model("x/y").FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "openrouter", backend.Name())
	assert.Equal(t, "x/y", backend.(*OpenRouterBackend).model)
}

func TestLMStudioBuildsWithoutKey(t *testing.T) {
	backend, err := NewBackendBuilder(ProviderLMStudio).
		BaseURL("http://localhost:9999/v1").
		Timeout(time.Second).
		FromEnv()
	require.NoError(t, err)
	_, ok := backend.(StatusChecker)
	assert.True(t, ok)
}

func TestBuilderProducesEveryBackend(t *testing.T) {
	for _, p := range AllProviders {
		backend, err := NewBackendBuilder(p).APIKey("test-key")
		require.NoError(t, err, p.String())
		assert.Equal(t, p.String(), backend.Name())
	}
}
