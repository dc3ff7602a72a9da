package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richinex/replica/llm"
	"github.com/richinex/replica/regen"
)

// isolate points config discovery at an empty directory.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "codebase", s.Paths.Codebase)
	assert.Equal(t, filepath.Join("parsedCodebase", "original", "codebase_parsed.txt"), s.Paths.Snapshot)
	assert.Equal(t, filepath.Join("parsedCodebase", "removed"), s.Paths.Records)
	assert.Equal(t, "generation_output", s.Paths.Output)
	assert.Equal(t, "logs", s.Paths.Logs)
	assert.Contains(t, s.Walk.SkipDirs, "node_modules")
	assert.Contains(t, s.Walk.IncludeExtensions, ".jsx")
	assert.Equal(t, "info", s.Logging.Level)
	assert.False(t, s.Generation.StripFences)
	assert.Len(t, s.Targets, len(DefaultTargets()))
}

func TestLoadFromFile(t *testing.T) {
	dir := isolate(t)
	yaml := `
paths:
  output: out
generation:
  strip_fences: true
  timeout: 90s
targets:
  - key: fast
    provider: gpt
    folder: fast
    model: gpt-4o-mini
    temperature: 0
    max_tokens: 100
    include_reasoning: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "replica.yaml"), []byte(yaml), 0644))

	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "out", s.Paths.Output)
	assert.Equal(t, "codebase", s.Paths.Codebase)
	assert.True(t, s.Generation.StripFences)
	assert.Equal(t, 90*time.Second, s.Generation.Timeout)

	require.Len(t, s.Targets, 1)
	tc := s.Targets[0]
	assert.Equal(t, "fast", tc.Key)
	assert.Equal(t, "gpt-4o-mini", tc.Model)
	require.NotNil(t, tc.Temperature)
	assert.Equal(t, float32(0), *tc.Temperature)
	assert.Equal(t, 100, tc.MaxTokens)
	assert.True(t, tc.IncludeReasoning)
}

func TestLoadExplicitFileMustExist(t *testing.T) {
	dir := isolate(t)
	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadEnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("REPLICA_PATHS_OUTPUT", "elsewhere")
	t.Setenv("REPLICA_GENERATION_STRIP_FENCES", "true")

	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "elsewhere", s.Paths.Output)
	assert.True(t, s.Generation.StripFences)
}

func TestLoadInvalidEnvValue(t *testing.T) {
	isolate(t)
	t.Setenv("REPLICA_GENERATION_TIMEOUT", "not-a-duration")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadRejectsBadTargets(t *testing.T) {
	cases := map[string]string{
		"duplicate": "targets:\n  - {key: a, provider: openai}\n  - {key: a, provider: gemini}\n",
		"no key":    "targets:\n  - {provider: openai}\n",
		"provider":  "targets:\n  - {key: a, provider: nope}\n",
	}
	for name, yaml := range cases {
		t.Run(name, func(t *testing.T) {
			dir := isolate(t)
			path := filepath.Join(dir, "c.yaml")
			require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestDefaultTargetsMatchTable(t *testing.T) {
	byKey := map[string]TargetConfig{}
	for _, tc := range DefaultTargets() {
		byKey[tc.Key] = tc
	}

	llama := byKey["openrouter-llama"]
	assert.Equal(t, "openrouter/llama-3.1-70b", llama.Folder)
	assert.Equal(t, "openrouter_llama-3.1-70b", llama.LogName)
	require.NotNil(t, llama.Temperature)
	assert.Equal(t, float32(0), *llama.Temperature)

	phi := byKey["openrouter-phi4"]
	assert.Equal(t, 12000, phi.MaxTokens)
	assert.False(t, phi.IncludeReasoning)

	assert.Equal(t, "lmstudio", byKey["local"].Provider)
	assert.Equal(t, 8000, byKey["gemini"].MaxTokens)
	assert.Equal(t, 4000, byKey["deepseek"].MaxTokens)
	for key, tc := range byKey {
		assert.False(t, tc.IncludeReasoning, key)
	}
}

func TestBuildTargetsSplitsUnavailable(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("GEMINI_API_KEY", "")

	s := Settings{Targets: []TargetConfig{
		{Key: "o", Provider: "openai", Folder: "o"},
		{Key: "g", Provider: "gemini"},
		{Key: "l", Provider: "lmstudio", Folder: "local", ModelConfig: llm.ModelConfig{MaxTokens: 10}},
	}}

	targets, unavailable := s.BuildTargets()
	require.Len(t, targets, 2)
	assert.Equal(t, "o", targets[0].Key)
	assert.Equal(t, "openai", targets[0].Backend.Name())
	assert.Equal(t, llm.ModelOpenAIGPT4o, targets[0].Config.Model)
	assert.Equal(t, 10, targets[1].Config.MaxTokens)

	require.Len(t, unavailable, 1)
	assert.Equal(t, "g", unavailable[0].Key)
	assert.ErrorContains(t, unavailable[0].Err, "GEMINI_API_KEY")
}

func TestTemplate(t *testing.T) {
	s := Settings{}
	tmpl, err := s.Template()
	require.NoError(t, err)
	assert.Equal(t, regen.Template(regen.DefaultTemplate), tmpl)

	path := filepath.Join(t.TempDir(), "prompt.txt")
	require.NoError(t, os.WriteFile(path, []byte("make {filename}"), 0644))
	s.Generation.TemplateFile = path
	tmpl, err = s.Template()
	require.NoError(t, err)
	assert.Equal(t, regen.Template("make {filename}"), tmpl)
}

func TestWalkOptions(t *testing.T) {
	s := Settings{Walk: WalkConfig{SkipDirs: []string{"x"}, Patterns: []string{"**/*.min.js"}}}
	opts := s.WalkOptions()
	assert.Equal(t, []string{"x"}, opts.Dirs)
	assert.Equal(t, []string{"**/*.min.js"}, opts.Patterns)
}

func TestAPIKeyForValidProvider(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-key")

	key, err := APIKeyFor("openai")
	require.NoError(t, err)
	assert.Equal(t, "test-key", key)
}

func TestAPIKeyForMissing(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := APIKeyFor("openai")
	assert.Error(t, err)
}

func TestAPIKeyForKeylessProvider(t *testing.T) {
	key, err := APIKeyFor("local")
	require.NoError(t, err)
	assert.Empty(t, key)
}

func TestAPIKeyForUnknownProvider(t *testing.T) {
	_, err := APIKeyFor("unknown")
	assert.Error(t, err)
}

func TestModelFor(t *testing.T) {
	t.Setenv("DEEPSEEK_MODEL", "")
	model, err := ModelFor("deepseek")
	require.NoError(t, err)
	assert.Equal(t, llm.ModelDeepSeekReasoner, model)

	t.Setenv("DEEPSEEK_MODEL", "deepseek-chat")
	model, err = ModelFor("deepseek")
	require.NoError(t, err)
	assert.Equal(t, "deepseek-chat", model)
}

func TestSupportedProviders(t *testing.T) {
	assert.ElementsMatch(t,
		[]string{"openai", "anthropic", "deepseek", "gemini", "openrouter", "lmstudio"},
		SupportedProviders())
}
