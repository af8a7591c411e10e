// Package llm provides integration with LLM APIs (Gemini, Groq, and Cerebras)
// for curriculum content generation and evaluation.
//
// Architecture:
// - Gemini: Uses google.golang.org/genai (official SDK)
// - Groq/Cerebras: Uses github.com/openai/openai-go/v3 (OpenAI-compatible API)
//
// Fallback Strategy (3-layer):
// 1. Model Retry: Same model retried with exponential backoff
// 2. Model Chain: Next model in same provider's model list
// 3. Provider Chain: Next provider in LLM_PROVIDERS list
package llm

import (
	"context"
	"time"
)

// Provider represents an LLM provider.
type Provider string

const (
	// ProviderGemini represents Google's Gemini API (non-OpenAI-compatible).
	ProviderGemini Provider = "gemini"
	// ProviderGroq represents Groq's API (OpenAI-compatible, fast inference).
	ProviderGroq Provider = "groq"
	// ProviderCerebras represents Cerebras's API (OpenAI-compatible, ultra-fast inference).
	ProviderCerebras Provider = "cerebras"
)

// ProviderEndpoint defines the base URL for OpenAI-compatible providers.
// Gemini is not included as it uses a different SDK.
var ProviderEndpoint = map[Provider]string{
	ProviderGroq:     "https://api.groq.com/openai/v1/",
	ProviderCerebras: "https://api.cerebras.ai/v1/",
}

// IsOpenAICompatible returns true if the provider uses OpenAI-compatible API.
func (p Provider) IsOpenAICompatible() bool {
	_, ok := ProviderEndpoint[p]
	return ok
}

// String returns the string representation of the provider.
func (p Provider) String() string {
	return string(p)
}

// Invoker is a single prompt-in, text-out completion call.
// Implementations include Gemini (native SDK) and OpenAI-compatible
// providers (Groq, Cerebras).
type Invoker interface {
	// Invoke sends the prompt and returns the model's text response.
	// Returns an error wrapping errors.ErrEmptyResponse when the model
	// produced no usable text.
	Invoke(ctx context.Context, prompt string) (string, error)
	// Provider returns the provider type for metrics.
	Provider() Provider
	// Model returns the model name for metrics.
	Model() string
	// Close releases any resources held by the invoker.
	Close() error
}

// Params holds sampling parameters for completion calls.
// Generation and evaluation run with different temperatures, so each
// pipeline constructs its own invoker chain with its own Params.
type Params struct {
	// Temperature controls sampling randomness (0 = deterministic).
	Temperature float32

	// MaxTokens caps the completion length.
	MaxTokens int
}

// RetryConfig defines retry behavior for LLM API calls.
// Uses AWS-recommended Full Jitter exponential backoff.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial).
	// Default: 2 (1 initial + 1 retry)
	MaxAttempts int

	// InitialDelay is the base delay before first retry.
	// Default: 500ms
	InitialDelay time.Duration

	// MaxDelay is the maximum delay between retries.
	// Default: 3s
	MaxDelay time.Duration
}

// ProviderConfig holds configuration for a single LLM provider.
type ProviderConfig struct {
	// APIKey is the API key for the provider.
	APIKey string

	// Models is the ordered list of models.
	// First model is primary, rest are fallbacks tried in order.
	Models []string
}

// Config holds configuration for all LLM providers.
type Config struct {
	// Providers is the ordered list of providers to try.
	// Fallback happens in order: first provider's models, then second, etc.
	Providers []Provider

	// Gemini configuration
	Gemini ProviderConfig

	// Groq configuration (OpenAI-compatible)
	Groq ProviderConfig

	// Cerebras configuration (OpenAI-compatible)
	Cerebras ProviderConfig

	// Retry configures retry behavior per model.
	Retry RetryConfig
}

// Default model configurations.
// First element is primary model, subsequent elements are fallbacks.
var (
	// DefaultGeminiModels is the default model chain for Gemini.
	// gemini-2.5-flash handles long structured documents well;
	// gemini-2.5-flash-lite provides a faster, cost-efficient fallback.
	DefaultGeminiModels = []string{"gemini-2.5-flash", "gemini-2.5-flash-lite"}

	// DefaultGroqModels is the default model chain for Groq.
	// llama-3.3-70b-versatile is the production workhorse for long-form
	// curriculum documents; llama-3.1-8b-instant is the fast fallback.
	DefaultGroqModels = []string{"llama-3.3-70b-versatile", "llama-3.1-8b-instant"}

	// DefaultCerebrasModels is the default model chain for Cerebras.
	DefaultCerebrasModels = []string{"llama-3.3-70b", "llama3.1-8b"}

	// DefaultProviders is the default provider order for fallback.
	DefaultProviders = []Provider{ProviderGroq, ProviderCerebras, ProviderGemini}
)

// Retry configuration defaults
const (
	DefaultMaxRetryAttempts  = 2
	DefaultInitialRetryDelay = 500 * time.Millisecond
	DefaultMaxRetryDelay     = 3 * time.Second
)

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  DefaultMaxRetryAttempts,
		InitialDelay: DefaultInitialRetryDelay,
		MaxDelay:     DefaultMaxRetryDelay,
	}
}

// HasAnyProvider returns true if at least one provider is configured.
func (c *Config) HasAnyProvider() bool {
	return c.Gemini.APIKey != "" || c.Groq.APIKey != "" || c.Cerebras.APIKey != ""
}

// HasProvider returns true if the specified provider is configured with an API key.
func (c *Config) HasProvider(p Provider) bool {
	switch p {
	case ProviderGemini:
		return c.Gemini.APIKey != ""
	case ProviderGroq:
		return c.Groq.APIKey != ""
	case ProviderCerebras:
		return c.Cerebras.APIKey != ""
	default:
		return false
	}
}

// GetProviderConfig returns the configuration for a specific provider.
func (c *Config) GetProviderConfig(p Provider) *ProviderConfig {
	switch p {
	case ProviderGemini:
		return &c.Gemini
	case ProviderGroq:
		return &c.Groq
	case ProviderCerebras:
		return &c.Cerebras
	default:
		return nil
	}
}

// ConfiguredProviders returns the list of providers with configured API keys,
// in the order specified by c.Providers.
func (c *Config) ConfiguredProviders() []Provider {
	result := make([]Provider, 0, len(c.Providers))
	for _, p := range c.Providers {
		if c.HasProvider(p) {
			result = append(result, p)
		}
	}
	return result
}

// ModelsFor returns the model chain for a provider, falling back to the
// package defaults when the configuration leaves it empty.
func (c *Config) ModelsFor(p Provider) []string {
	pc := c.GetProviderConfig(p)
	if pc != nil && len(pc.Models) > 0 {
		return pc.Models
	}
	switch p {
	case ProviderGemini:
		return DefaultGeminiModels
	case ProviderGroq:
		return DefaultGroqModels
	case ProviderCerebras:
		return DefaultCerebrasModels
	default:
		return nil
	}
}
