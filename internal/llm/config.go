package llm

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Provider names accepted by Config.Provider.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderMock      = "mock"
)

// DefaultPerMinuteLimit caps remote requests in any sliding minute.
const DefaultPerMinuteLimit = 15

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which provider to use: "gemini", "openai", "anthropic" or "mock".
	Provider string

	Anthropic AnthropicConfig
	OpenAI    OpenAIConfig
	Gemini    GeminiConfig
	Retry     RetryConfig

	// Timeout bounds a single request including retries.
	Timeout time.Duration

	// PerMinuteLimit is the local request budget per sliding minute.
	PerMinuteLimit int
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string // Optional, for OpenAI-compatible APIs.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with defaults and no credentials.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderGemini,
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash-latest",
		},
		Retry: RetryConfig{
			MaxAttempts: 2,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     4 * time.Second,
			Multiplier:  2.0,
		},
		Timeout:        20 * time.Second,
		PerMinuteLimit: DefaultPerMinuteLimit,
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values. The provider is not validated.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	cfg.Gemini.APIKey = readEnv("GEMINI_API_KEY", "API_KEY")
	if m := readEnv("GEMINI_MODEL"); m != "" {
		cfg.Gemini.Model = m
	}
	cfg.OpenAI.APIKey = readEnv("OPENAI_API_KEY")
	if u := readEnv("OPENAI_BASE_URL"); u != "" {
		cfg.OpenAI.BaseURL = u
	}
	cfg.Anthropic.APIKey = readEnv("ANTHROPIC_API_KEY")

	if n, err := strconv.Atoi(readEnv("GEMINI_PER_MINUTE_LIMIT", "GEMINI_RATE_LIMIT_PER_MINUTE")); err == nil && n > 0 {
		cfg.PerMinuteLimit = n
	}
	if n, err := strconv.Atoi(readEnv("TYPEMASTER_LLM_PER_MINUTE_LIMIT")); err == nil && n > 0 {
		cfg.PerMinuteLimit = n
	}

	if p := readEnv("TYPEMASTER_LLM_PROVIDER"); p != "" {
		cfg.Provider = strings.ToLower(p)
	}
	if m := readEnv("TYPEMASTER_LLM_MODEL"); m != "" {
		cfg.SetModel(m)
	}
	if d, err := time.ParseDuration(readEnv("TYPEMASTER_LLM_TIMEOUT")); err == nil && d > 0 {
		cfg.Timeout = d
	}
	return cfg
}

// DiscoverConfig reads the environment and picks a provider. An explicit
// TYPEMASTER_LLM_PROVIDER wins; otherwise the first key found in the order
// Gemini, OpenAI, Anthropic selects the provider. It reports false when the
// selected provider has no credentials.
func DiscoverConfig() (Config, bool) {
	cfg := ConfigFromEnv()
	if readEnv("TYPEMASTER_LLM_PROVIDER") != "" {
		return cfg, cfg.Validate() == nil
	}
	switch {
	case cfg.Gemini.APIKey != "":
		cfg.Provider = ProviderGemini
	case cfg.OpenAI.APIKey != "":
		cfg.Provider = ProviderOpenAI
	case cfg.Anthropic.APIKey != "":
		cfg.Provider = ProviderAnthropic
	default:
		return cfg, false
	}
	if m := readEnv("TYPEMASTER_LLM_MODEL"); m != "" {
		cfg.SetModel(m)
	}
	return cfg, true
}

// SetModel overrides the model of the selected provider.
func (c *Config) SetModel(model string) {
	switch c.Provider {
	case ProviderGemini:
		c.Gemini.Model = model
	case ProviderOpenAI:
		c.OpenAI.Model = model
	case ProviderAnthropic:
		c.Anthropic.Model = model
	}
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for the gemini provider")
		}
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
	case ProviderAnthropic:
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case ProviderMock:
		// No API key needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}

func readEnv(keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return ""
}
