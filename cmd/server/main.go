// Package main provides the curriculum builder server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/edukits/curriculum-builder-go/internal/buildinfo"
	"github.com/edukits/curriculum-builder-go/internal/config"
	"github.com/edukits/curriculum-builder-go/internal/evaluate"
	"github.com/edukits/curriculum-builder-go/internal/generate"
	"github.com/edukits/curriculum-builder-go/internal/llm"
	"github.com/edukits/curriculum-builder-go/internal/logger"
	"github.com/edukits/curriculum-builder-go/internal/metrics"
	"github.com/edukits/curriculum-builder-go/internal/ratelimit"
	"github.com/edukits/curriculum-builder-go/internal/retrieval"
	"github.com/edukits/curriculum-builder-go/internal/sentry"
	"github.com/edukits/curriculum-builder-go/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewWithOptions(cfg.LogLevel, logger.Options{
		BetterstackToken:    cfg.BetterstackToken,
		BetterstackEndpoint: cfg.BetterstackEndpoint,
	})
	log.WithFields(map[string]any{
		"version": buildinfo.Version,
		"commit":  buildinfo.Commit,
	}).Info("Starting curriculum builder server")

	// Missing API credentials are the only non-recoverable startup error.
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}

	if err := sentry.Initialize(sentry.Config{
		DSN:              cfg.SentryDSN,
		Environment:      cfg.SentryEnvironment,
		SampleRate:       cfg.SentrySampleRate,
		TracesSampleRate: cfg.SentryTracesSampleRate,
	}); err != nil {
		log.WithError(err).Warn("Failed to initialize Sentry, error reporting disabled")
	} else if sentry.IsEnabled() {
		log.Info("Sentry error reporting enabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(collectors.NewBuildInfoCollector())
	m := metrics.New(registry)
	log.Info("Metrics initialized")

	st, err := newStore(cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to open record store")
	}
	st = store.WithMetrics(st, m)
	defer func() { _ = st.Close() }()
	log.WithField("backend", cfg.StoreBackend).
		WithField("ttl", cfg.StoreTTL.String()).
		Info("Record store ready")

	retriever, err := retrieval.New(retrieval.Options{
		PersistDir:    cfg.ChromemPath(),
		APIKey:        cfg.GeminiAPIKey,
		TopK:          cfg.RetrievalTopK,
		MinSimilarity: float32(cfg.RetrievalMinSimilarity),
		Logger:        log,
		Recorder:      m,
	})
	if err != nil {
		log.WithError(err).Warn("Failed to create curriculum retriever, generating without grounding")
		retriever = nil
	}
	if retriever.IsEnabled() {
		log.WithField("chunks", retriever.Count()).Info("Curriculum retriever ready")
	}

	ctx := context.Background()
	llmCfg := buildLLMConfig(cfg)
	limiter := ratelimit.NewPerMinute(cfg.LLMRequestsPerMinute)

	generationInvoker, err := llm.NewInvoker(ctx, llmCfg, llm.Params{
		Temperature: float32(cfg.GenerationTemperature),
		MaxTokens:   cfg.LLMMaxTokens,
	}, limiter, m)
	if err != nil || generationInvoker == nil {
		log.WithError(err).Fatal("Failed to build generation model chain")
	}
	defer func() { _ = generationInvoker.Close() }()

	evaluationInvoker, err := llm.NewInvoker(ctx, llmCfg, llm.Params{
		Temperature: float32(cfg.EvaluationTemperature),
		MaxTokens:   cfg.LLMMaxTokens,
	}, limiter, m)
	if err != nil || evaluationInvoker == nil {
		log.WithError(err).Fatal("Failed to build evaluation model chain")
	}
	defer func() { _ = evaluationInvoker.Close() }()
	log.WithField("chain_size", generationInvoker.Size()).Info("Model chains configured")

	engine := generate.NewEngine(generationInvoker, log, m)
	pipeline := generate.NewService(engine, st, retriever, log)
	evaluator := evaluate.New(evaluationInvoker, st, log, m)

	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(securityHeadersMiddleware())
	router.Use(loggingMiddleware(log))
	router.Use(sentryMiddleware())

	clientLimiter := ratelimit.NewPerKeyLimiter(ratelimit.PerKeyLimiterConfig{
		MaxTokens:     10,
		RefillRate:    0.5, // 1 request per 2 seconds sustained
		CleanupPeriod: 5 * time.Minute,
	})
	clientLimiter.OnDrop(func() { m.RecordRateLimiterDrop("per_client") })
	defer clientLimiter.Stop()

	api := &apiHandler{
		pipeline:  pipeline,
		evaluator: evaluator,
		retriever: retriever,
		store:     st,
		logger:    log,
		metrics:   m,
	}
	setupRoutes(router, api, registry, cfg, clientLimiter)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  config.HTTPRead,
		WriteTimeout: config.HTTPWrite,
		IdleTimeout:  config.HTTPIdle,
	}

	jobCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.WithField("panic", r).Error("Panic in store cleanup goroutine")
			}
		}()
		runStoreCleanup(jobCtx, st, log)
	}()

	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	cancel()

	jobsDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(jobsDone)
	}()

	select {
	case <-jobsDone:
		log.Info("Background jobs stopped")
	case <-time.After(5 * time.Second):
		log.Warn("Timeout waiting for background jobs to stop")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	sentry.Flush(2 * time.Second)
	if err := log.Flush(shutdownCtx); err != nil {
		log.WithError(err).Warn("Failed to flush log buffer")
	}

	log.Info("Server stopped")
}

// newStore selects the record store implementation at construction time.
func newStore(cfg *config.Config) (store.Store, error) {
	if cfg.StoreBackend == config.StoreBackendMemory {
		return store.NewMemoryStore(cfg.StoreTTL), nil
	}
	return store.NewSQLiteStore(cfg.SQLitePath(), cfg.StoreTTL)
}

// buildLLMConfig maps the environment configuration onto the provider
// chain configuration.
func buildLLMConfig(cfg *config.Config) llm.Config {
	providers := make([]llm.Provider, 0, len(cfg.LLMProviders))
	for _, p := range cfg.LLMProviders {
		providers = append(providers, llm.Provider(p))
	}

	return llm.Config{
		Providers: providers,
		Gemini:    llm.ProviderConfig{APIKey: cfg.GeminiAPIKey, Models: cfg.GeminiModels},
		Groq:      llm.ProviderConfig{APIKey: cfg.GroqAPIKey, Models: cfg.GroqModels},
		Cerebras:  llm.ProviderConfig{APIKey: cfg.CerebrasAPIKey, Models: cfg.CerebrasModels},
		Retry:     llm.DefaultRetryConfig(),
	}
}
