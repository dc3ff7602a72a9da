// Package config provides application settings loaded from an optional
// replica.yaml, REPLICA_* environment variables and built-in defaults.
//
// Settings are created via Load() which handles:
// - Config file discovery (explicit path, working directory, XDG config home)
// - Environment overrides with validation
// - Provider-specific key and model lookup

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/richinex/replica/llm"
	"github.com/richinex/replica/regen"
	"github.com/richinex/replica/walker"
)

const (
	appName    = "replica"
	envPrefix  = "REPLICA"
	configName = "replica"
)

// Settings holds all application configuration.
type Settings struct {
	Paths      PathsConfig      `mapstructure:"paths"`
	Walk       WalkConfig       `mapstructure:"walk"`
	Generation GenerationConfig `mapstructure:"generation"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Targets    []TargetConfig   `mapstructure:"targets"`
}

// PathsConfig locates every input and output of a run.
type PathsConfig struct {
	Codebase string `mapstructure:"codebase"`
	Snapshot string `mapstructure:"snapshot"`
	Records  string `mapstructure:"records"`
	Output   string `mapstructure:"output"`
	Logs     string `mapstructure:"logs"`
}

// WalkConfig holds traversal skip rules.
type WalkConfig struct {
	SkipDirs          []string `mapstructure:"skip_dirs"`
	SkipFiles         []string `mapstructure:"skip_files"`
	SkipExtensions    []string `mapstructure:"skip_extensions"`
	IncludeExtensions []string `mapstructure:"include_extensions"`
	Patterns          []string `mapstructure:"patterns"`
}

// GenerationConfig holds settings shared by every target.
type GenerationConfig struct {
	// TemplateFile replaces the built-in prompt when set.
	TemplateFile string        `mapstructure:"template_file"`
	StripFences  bool          `mapstructure:"strip_fences"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// LoggingConfig configures the log file and console output.
type LoggingConfig struct {
	Level        string `mapstructure:"level"`
	Path         string `mapstructure:"path"`
	ConsoleLevel string `mapstructure:"console_level"`
}

// TargetConfig describes one generation target.
type TargetConfig struct {
	Key         string        `mapstructure:"key"`
	DisplayName string        `mapstructure:"display_name"`
	Provider    string        `mapstructure:"provider"`
	Folder      string        `mapstructure:"folder"`
	LogName     string        `mapstructure:"log_name"`
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`

	llm.ModelConfig `mapstructure:",squash"`
}

// Load reads settings. cfgFile, when non-empty, must exist; otherwise
// replica.yaml is looked up in the working directory and then in
// $XDG_CONFIG_HOME/replica. A missing file is not an error.
//
// Environment variables are prefixed with REPLICA_ (e.g. REPLICA_PATHS_OUTPUT).
func Load(cfgFile string) (Settings, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(ConfigDir())
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if len(s.Targets) == 0 {
		s.Targets = DefaultTargets()
	}
	if err := s.validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("paths.codebase", "codebase")
	v.SetDefault("paths.snapshot", filepath.Join("parsedCodebase", "original", "codebase_parsed.txt"))
	v.SetDefault("paths.records", filepath.Join("parsedCodebase", "removed"))
	v.SetDefault("paths.output", "generation_output")
	v.SetDefault("paths.logs", "logs")

	walk := walker.DefaultOptions()
	v.SetDefault("walk.skip_dirs", walk.Dirs)
	v.SetDefault("walk.skip_files", walk.Files)
	v.SetDefault("walk.skip_extensions", walk.Extensions)
	v.SetDefault("walk.include_extensions", walk.IncludeExtensions)
	v.SetDefault("walk.patterns", walk.Patterns)

	v.SetDefault("generation.template_file", "")
	v.SetDefault("generation.strip_fences", false)
	v.SetDefault("generation.timeout", time.Duration(0))

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "") // empty means logging.DefaultLogPath
	v.SetDefault("logging.console_level", "warn")
}

func (s Settings) validate() error {
	seen := make(map[string]bool, len(s.Targets))
	for i, t := range s.Targets {
		if t.Key == "" {
			return fmt.Errorf("targets[%d]: key is required", i)
		}
		if seen[t.Key] {
			return fmt.Errorf("targets[%d]: duplicate key %q", i, t.Key)
		}
		seen[t.Key] = true
		if _, err := llm.ParseProviderType(t.Provider); err != nil {
			return fmt.Errorf("target %s: %w", t.Key, err)
		}
	}
	return nil
}

// ConfigDir returns $XDG_CONFIG_HOME/replica.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, appName)
}

// WalkOptions converts the walk section into traversal options.
func (s Settings) WalkOptions() walker.Options {
	return walker.Options{
		Dirs:              s.Walk.SkipDirs,
		Files:             s.Walk.SkipFiles,
		Extensions:        s.Walk.SkipExtensions,
		IncludeExtensions: s.Walk.IncludeExtensions,
		Patterns:          s.Walk.Patterns,
	}
}

// Template returns the prompt template, reading TemplateFile when set.
func (s Settings) Template() (regen.Template, error) {
	if s.Generation.TemplateFile == "" {
		return regen.DefaultTemplate, nil
	}
	data, err := os.ReadFile(s.Generation.TemplateFile)
	if err != nil {
		return "", fmt.Errorf("reading template: %w", err)
	}
	return regen.Template(data), nil
}

// DefaultTargets returns the stock target table.
func DefaultTargets() []TargetConfig {
	return []TargetConfig{
		{
			Key:         "gemini",
			DisplayName: "Gemini 2.5 Flash (Google)",
			Provider:    "gemini",
			Folder:      "gemini",
			LogName:     "gemini",
			ModelConfig: llm.ModelConfig{
				Model:       llm.ModelGeminiFlash25,
				Temperature: llm.Float(0.1),
				MaxTokens:   8000,
			},
		},
		{
			Key:         "deepseek",
			DisplayName: "DeepSeek R1",
			Provider:    "deepseek",
			Folder:      "deepseek",
			LogName:     "deepseek",
			ModelConfig: llm.ModelConfig{
				Model:       llm.ModelDeepSeekReasoner,
				Temperature: llm.Float(0.1),
				MaxTokens:   4000,
			},
		},
		{
			Key:         "openrouter-llama",
			DisplayName: "Llama 3.1 70B Instruct (OpenRouter)",
			Provider:    "openrouter",
			Folder:      "openrouter/llama-3.1-70b",
			LogName:     "openrouter_llama-3.1-70b",
			ModelConfig: llm.ModelConfig{
				Model:            llm.ModelOpenRouterLlama31_70B,
				Temperature:      llm.Float(0),
				MaxTokens:        8000,
				TopP:             llm.Float(0.9),
				FrequencyPenalty: llm.Float(0),
				PresencePenalty:  llm.Float(0),
			},
		},
		{
			Key:         "openrouter-phi4",
			DisplayName: "Phi-4 Reasoning Plus (OpenRouter)",
			Provider:    "openrouter",
			Folder:      "openrouter/phi-4-reasoning-plus",
			LogName:     "openrouter_phi-4-reasoning-plus",
			ModelConfig: llm.ModelConfig{
				Model:            llm.ModelOpenRouterPhi4ReasoningPlus,
				Temperature:      llm.Float(0.1),
				MaxTokens:        12000,
				TopP:             llm.Float(0.95),
				FrequencyPenalty: llm.Float(0.1),
				PresencePenalty:  llm.Float(0.1),
			},
		},
		{
			Key:         "local",
			DisplayName: "LM Studio (local)",
			Provider:    "lmstudio",
			Folder:      "local",
			LogName:     "local",
		},
		{
			Key:         "openai",
			DisplayName: "GPT-4o (OpenAI)",
			Provider:    "openai",
			Folder:      "openai",
			LogName:     "openai",
			ModelConfig: llm.ModelConfig{Model: llm.ModelOpenAIGPT4o, Temperature: llm.Float(0.1), MaxTokens: 8000},
		},
		{
			Key:         "anthropic",
			DisplayName: "Claude Sonnet 4 (Anthropic)",
			Provider:    "anthropic",
			Folder:      "anthropic",
			LogName:     "anthropic",
			ModelConfig: llm.ModelConfig{Model: llm.ModelAnthropicClaudeSonnet4, Temperature: llm.Float(0.1), MaxTokens: 8000},
		},
	}
}

// Unavailable is a configured target whose backend could not be built.
type Unavailable struct {
	Key         string
	DisplayName string
	Err         error
}

// BuildTargets constructs a backend for every configured target. Targets
// whose provider has no API key in the environment are returned as
// unavailable rather than failing the whole set.
func (s Settings) BuildTargets() ([]regen.Target, []Unavailable) {
	var targets []regen.Target
	var unavailable []Unavailable
	for _, tc := range s.Targets {
		t, err := tc.build()
		if err != nil {
			unavailable = append(unavailable, Unavailable{Key: tc.Key, DisplayName: tc.DisplayName, Err: err})
			continue
		}
		targets = append(targets, t)
	}
	return targets, unavailable
}

func (tc TargetConfig) build() (regen.Target, error) {
	provider, err := llm.ParseProviderType(tc.Provider)
	if err != nil {
		return regen.Target{}, err
	}
	model := tc.Model
	if model == "" {
		model, _ = ModelFor(provider.String())
	}

	builder := llm.NewBackendBuilder(provider).
		Model(model).
		BaseURL(tc.BaseURL).
		Timeout(tc.Timeout)

	var backend llm.Backend
	if provider.NeedsAPIKey() {
		key, err := APIKeyFor(provider.String())
		if err != nil {
			return regen.Target{}, err
		}
		backend, err = builder.APIKey(key)
		if err != nil {
			return regen.Target{}, err
		}
	} else {
		backend, err = builder.FromEnv()
		if err != nil {
			return regen.Target{}, err
		}
	}

	cfg := tc.ModelConfig
	cfg.Model = model
	return regen.Target{
		Key:         tc.Key,
		DisplayName: tc.DisplayName,
		Folder:      tc.Folder,
		LogName:     tc.LogName,
		Backend:     backend,
		Config:      cfg,
	}, nil
}

// APIKeyFor returns the API key for a provider from environment variables.
// Providers that need no key return "".
func APIKeyFor(provider string) (string, error) {
	p, err := llm.ParseProviderType(provider)
	if err != nil {
		return "", err
	}
	if !p.NeedsAPIKey() {
		return "", nil
	}
	key := os.Getenv(p.EnvVar())
	if key == "" {
		return "", fmt.Errorf("%s environment variable not set", p.EnvVar())
	}
	return key, nil
}

// ModelFor returns the model for a provider, checking <PROVIDER>_MODEL first.
func ModelFor(provider string) (string, error) {
	p, err := llm.ParseProviderType(provider)
	if err != nil {
		return "", err
	}
	if val := os.Getenv(modelEnv(p)); val != "" {
		return val, nil
	}
	return p.DefaultModel(), nil
}

func modelEnv(p llm.ProviderType) string {
	return strings.ToUpper(p.String()) + "_MODEL"
}

// SupportedProviders returns the list of supported provider names.
func SupportedProviders() []string {
	result := make([]string, 0, len(llm.AllProviders))
	for _, p := range llm.AllProviders {
		result = append(result, p.String())
	}
	return result
}
