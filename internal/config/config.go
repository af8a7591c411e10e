// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// LLM providers, the record store, retrieval, and server behavior.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends selectable via STORE_BACKEND.
const (
	StoreBackendMemory = "memory"
	StoreBackendSQLite = "sqlite"
)

// Config holds all application configuration
type Config struct {
	// LLM Configuration
	GeminiAPIKey   string // Gemini API key (also required for embeddings/retrieval)
	GroqAPIKey     string // Groq API key
	CerebrasAPIKey string // Cerebras API key

	// LLMProviders is the provider fallback order, e.g. ["groq", "cerebras", "gemini"].
	// Providers without an API key are skipped at construction time.
	LLMProviders []string

	// Model chains per provider (empty = defaults from the llm package)
	GeminiModels   []string
	GroqModels     []string
	CerebrasModels []string

	// Sampling parameters. Generation runs warmer than evaluation, which
	// needs deterministic scoring output.
	GenerationTemperature float64
	EvaluationTemperature float64
	LLMMaxTokens          int

	// LLMRequestsPerMinute throttles outbound model calls across all providers.
	LLMRequestsPerMinute float64

	// Retrieval Configuration
	RetrievalTopK          int     // maximum curriculum chunks returned per query
	RetrievalMinSimilarity float64 // cosine similarity cutoff for matches

	// Metrics Authentication
	MetricsUsername string // Username for /metrics endpoint Basic Auth (default: "prometheus")
	MetricsPassword string // Password for /metrics endpoint Basic Auth (empty = no auth)

	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Data Configuration
	DataDir      string        // Data directory for SQLite database and vector store
	StoreBackend string        // "memory" or "sqlite"
	StoreTTL     time.Duration // absolute expiration for stored generation records

	// Better Stack log shipping (optional)
	BetterstackToken    string
	BetterstackEndpoint string

	// Sentry error tracking (optional)
	SentryDSN              string
	SentryEnvironment      string
	SentrySampleRate       float64
	SentryTracesSampleRate float64
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		// LLM Configuration
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GroqAPIKey:     getEnv("GROQ_API_KEY", ""),
		CerebrasAPIKey: getEnv("CEREBRAS_API_KEY", ""),

		LLMProviders: getListEnv("LLM_PROVIDERS", []string{"groq", "cerebras", "gemini"}),

		// Model chains (empty = use defaults from the llm package)
		GeminiModels:   getListEnv("GEMINI_MODELS", nil),
		GroqModels:     getListEnv("GROQ_MODELS", nil),
		CerebrasModels: getListEnv("CEREBRAS_MODELS", nil),

		GenerationTemperature: getFloatEnv("GENERATION_TEMPERATURE", 0.5),
		EvaluationTemperature: getFloatEnv("EVALUATION_TEMPERATURE", 0.1),
		LLMMaxTokens:          getIntEnv("LLM_MAX_TOKENS", 4096),
		LLMRequestsPerMinute:  getFloatEnv("LLM_REQUESTS_PER_MINUTE", 30),

		// Retrieval Configuration
		RetrievalTopK:          getIntEnv("RETRIEVAL_TOP_K", 5),
		RetrievalMinSimilarity: getFloatEnv("RETRIEVAL_MIN_SIMILARITY", 0.25),

		// Metrics Authentication
		MetricsUsername: getEnv("METRICS_USERNAME", "prometheus"),
		MetricsPassword: getEnv("METRICS_PASSWORD", ""),

		// Server Configuration
		Port:            getEnv("PORT", "10000"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", GracefulShutdown),

		// Data Configuration
		DataDir:      getEnv("DATA_DIR", "./data"),
		StoreBackend: getEnv("STORE_BACKEND", StoreBackendSQLite),
		StoreTTL:     getDurationEnv("STORE_TTL", 168*time.Hour), // 7 days

		// Better Stack
		BetterstackToken:    getEnv("BETTERSTACK_TOKEN", ""),
		BetterstackEndpoint: getEnv("BETTERSTACK_ENDPOINT", ""),

		// Sentry
		SentryDSN:              getEnv("SENTRY_DSN", ""),
		SentryEnvironment:      getEnv("SENTRY_ENVIRONMENT", "production"),
		SentrySampleRate:       getFloatEnv("SENTRY_SAMPLE_RATE", 1.0),
		SentryTracesSampleRate: getFloatEnv("SENTRY_TRACES_SAMPLE_RATE", 0.1),
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if !c.HasLLMProvider() {
		errs = append(errs, errors.New("at least one of GEMINI_API_KEY, GROQ_API_KEY, CEREBRAS_API_KEY is required"))
	}
	if len(c.LLMProviders) == 0 {
		errs = append(errs, errors.New("LLM_PROVIDERS must not be empty"))
	}
	for _, p := range c.LLMProviders {
		switch p {
		case "gemini", "groq", "cerebras":
		default:
			errs = append(errs, fmt.Errorf("unknown LLM provider %q in LLM_PROVIDERS", p))
		}
	}
	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("DATA_DIR is required"))
	}
	if c.StoreBackend != StoreBackendMemory && c.StoreBackend != StoreBackendSQLite {
		errs = append(errs, fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", StoreBackendMemory, StoreBackendSQLite, c.StoreBackend))
	}
	if c.StoreTTL <= 0 {
		errs = append(errs, fmt.Errorf("STORE_TTL must be positive, got %v", c.StoreTTL))
	}
	if c.GenerationTemperature < 0 || c.GenerationTemperature > 2 {
		errs = append(errs, fmt.Errorf("GENERATION_TEMPERATURE must be in [0, 2], got %v", c.GenerationTemperature))
	}
	if c.EvaluationTemperature < 0 || c.EvaluationTemperature > 2 {
		errs = append(errs, fmt.Errorf("EVALUATION_TEMPERATURE must be in [0, 2], got %v", c.EvaluationTemperature))
	}
	if c.LLMMaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("LLM_MAX_TOKENS must be positive, got %d", c.LLMMaxTokens))
	}
	if c.LLMRequestsPerMinute <= 0 {
		errs = append(errs, fmt.Errorf("LLM_REQUESTS_PER_MINUTE must be positive, got %v", c.LLMRequestsPerMinute))
	}
	if c.RetrievalTopK <= 0 {
		errs = append(errs, fmt.Errorf("RETRIEVAL_TOP_K must be positive, got %d", c.RetrievalTopK))
	}
	if c.RetrievalMinSimilarity < 0 || c.RetrievalMinSimilarity > 1 {
		errs = append(errs, fmt.Errorf("RETRIEVAL_MIN_SIMILARITY must be in [0, 1], got %v", c.RetrievalMinSimilarity))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getListEnv retrieves a comma-separated environment variable as a slice,
// with fallback to default value. Empty items are dropped.
func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}

// SQLitePath returns the full path to the SQLite database file
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "curriculum.db")
}

// ChromemPath returns the directory used by the persistent vector store.
func (c *Config) ChromemPath() string {
	return filepath.Join(c.DataDir, "chromem")
}

// HasLLMProvider returns true if at least one LLM provider is configured.
func (c *Config) HasLLMProvider() bool {
	return c.GeminiAPIKey != "" || c.GroqAPIKey != "" || c.CerebrasAPIKey != ""
}

// RetrievalEnabled reports whether semantic retrieval can run.
// Embeddings are served by the Gemini API, so retrieval degrades to
// empty curriculum context when no Gemini key is configured.
func (c *Config) RetrievalEnabled() bool {
	return c.GeminiAPIKey != ""
}
