package config

import (
	"path/filepath"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		GroqAPIKey:             "test-key",
		LLMProviders:           []string{"groq", "gemini"},
		GenerationTemperature:  0.5,
		EvaluationTemperature:  0.1,
		LLMMaxTokens:           4096,
		LLMRequestsPerMinute:   30,
		RetrievalTopK:          5,
		RetrievalMinSimilarity: 0.25,
		Port:                   "10000",
		LogLevel:               "info",
		ShutdownTimeout:        30 * time.Second,
		DataDir:                "/data",
		StoreBackend:           StoreBackendSQLite,
		StoreTTL:               168 * time.Hour,
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "test-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != "10000" {
		t.Errorf("Port = %q, want %q", cfg.Port, "10000")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.StoreBackend != StoreBackendSQLite {
		t.Errorf("StoreBackend = %q, want %q", cfg.StoreBackend, StoreBackendSQLite)
	}
	if cfg.StoreTTL != 168*time.Hour {
		t.Errorf("StoreTTL = %v, want %v", cfg.StoreTTL, 168*time.Hour)
	}
	if cfg.GenerationTemperature != 0.5 {
		t.Errorf("GenerationTemperature = %v, want 0.5", cfg.GenerationTemperature)
	}
	if cfg.EvaluationTemperature != 0.1 {
		t.Errorf("EvaluationTemperature = %v, want 0.1", cfg.EvaluationTemperature)
	}
	if cfg.LLMMaxTokens != 4096 {
		t.Errorf("LLMMaxTokens = %d, want 4096", cfg.LLMMaxTokens)
	}
	wantProviders := []string{"groq", "cerebras", "gemini"}
	if len(cfg.LLMProviders) != len(wantProviders) {
		t.Fatalf("LLMProviders = %v, want %v", cfg.LLMProviders, wantProviders)
	}
	for i, p := range wantProviders {
		if cfg.LLMProviders[i] != p {
			t.Errorf("LLMProviders[%d] = %q, want %q", i, cfg.LLMProviders[i], p)
		}
	}
}

func TestLoad_NoLLMKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("CEREBRAS_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Error("Load() without any LLM key should fail validation")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("LLM_PROVIDERS", "gemini, groq")
	t.Setenv("GROQ_MODELS", "llama-3.3-70b-versatile,llama-3.1-8b-instant")
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("STORE_TTL", "24h")
	t.Setenv("PORT", "8080")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.StoreBackend != StoreBackendMemory {
		t.Errorf("StoreBackend = %q, want %q", cfg.StoreBackend, StoreBackendMemory)
	}
	if cfg.StoreTTL != 24*time.Hour {
		t.Errorf("StoreTTL = %v, want %v", cfg.StoreTTL, 24*time.Hour)
	}
	if len(cfg.LLMProviders) != 2 || cfg.LLMProviders[0] != "gemini" || cfg.LLMProviders[1] != "groq" {
		t.Errorf("LLMProviders = %v, want [gemini groq]", cfg.LLMProviders)
	}
	if len(cfg.GroqModels) != 2 || cfg.GroqModels[0] != "llama-3.3-70b-versatile" {
		t.Errorf("GroqModels = %v", cfg.GroqModels)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid config", mutate: func(c *Config) {}, wantErr: false},
		{name: "missing all LLM keys", mutate: func(c *Config) { c.GroqAPIKey = "" }, wantErr: true},
		{name: "empty provider list", mutate: func(c *Config) { c.LLMProviders = nil }, wantErr: true},
		{name: "unknown provider", mutate: func(c *Config) { c.LLMProviders = []string{"openrouter"} }, wantErr: true},
		{name: "missing port", mutate: func(c *Config) { c.Port = "" }, wantErr: true},
		{name: "missing data dir", mutate: func(c *Config) { c.DataDir = "" }, wantErr: true},
		{name: "bad store backend", mutate: func(c *Config) { c.StoreBackend = "redis" }, wantErr: true},
		{name: "zero store TTL", mutate: func(c *Config) { c.StoreTTL = 0 }, wantErr: true},
		{name: "temperature out of range", mutate: func(c *Config) { c.GenerationTemperature = 3 }, wantErr: true},
		{name: "negative temperature", mutate: func(c *Config) { c.EvaluationTemperature = -0.1 }, wantErr: true},
		{name: "zero max tokens", mutate: func(c *Config) { c.LLMMaxTokens = 0 }, wantErr: true},
		{name: "zero top k", mutate: func(c *Config) { c.RetrievalTopK = 0 }, wantErr: true},
		{name: "similarity above one", mutate: func(c *Config) { c.RetrievalMinSimilarity = 1.5 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPaths(t *testing.T) {
	cfg := validConfig()
	cfg.DataDir = "/var/lib/curriculum"

	if got := cfg.SQLitePath(); got != filepath.Join("/var/lib/curriculum", "curriculum.db") {
		t.Errorf("SQLitePath() = %q", got)
	}
	if got := cfg.ChromemPath(); got != filepath.Join("/var/lib/curriculum", "chromem") {
		t.Errorf("ChromemPath() = %q", got)
	}
}

func TestRetrievalEnabled(t *testing.T) {
	cfg := validConfig()
	if cfg.RetrievalEnabled() {
		t.Error("RetrievalEnabled() should be false without a Gemini key")
	}
	cfg.GeminiAPIKey = "gem-key"
	if !cfg.RetrievalEnabled() {
		t.Error("RetrievalEnabled() should be true with a Gemini key")
	}
}
