// Package config provides centralized timeout constants for the application.
//
// These values are tuned around two realities: LLM completion calls for a
// full scheme of work can run close to a minute, and embedding lookups are
// comparatively fast but still cross the network. HTTP server timeouts must
// leave room for the slowest generation stage plus response serialization.
package config

import "time"

// LLM timeouts
const (
	// LLMRequest is the timeout for a single model completion call.
	// Generating a full term scheme of work at 4096 max tokens can take
	// 30-60s on slower providers, so this sits above that ceiling.
	LLMRequest = 90 * time.Second

	// LLMRetryInitial is the initial delay before retrying a failed call.
	// Uses exponential backoff with full jitter.
	LLMRetryInitial = 1 * time.Second
)

// HTTP server timeouts
const (
	// HTTPRead is the server read timeout. Request bodies are small JSON
	// payloads, so this stays short.
	HTTPRead = 10 * time.Second

	// HTTPWrite must accommodate the slowest generation pipeline stage
	// plus evaluation, so it sits above LLMRequest.
	HTTPWrite = 120 * time.Second

	// HTTPIdle is the keep-alive idle timeout.
	HTTPIdle = 120 * time.Second
)

// Database timeouts
const (
	// DatabaseBusyTimeout is SQLite busy_timeout pragma value.
	// Handles concurrent write contention from parallel generation requests.
	DatabaseBusyTimeout = 30 * time.Second

	// DatabaseConnMaxLifetime is the maximum lifetime of database connections.
	// Prevents stale connections and allows connection pool refresh.
	DatabaseConnMaxLifetime = time.Hour
)

// Retrieval timeouts
const (
	// RetrievalQuery is the timeout for a curriculum context lookup.
	// Covers the Gemini embedding call plus the vector similarity search.
	RetrievalQuery = 30 * time.Second
)

// Background job intervals
const (
	// StoreCleanupInterval is how often expired generation records are deleted.
	StoreCleanupInterval = 12 * time.Hour

	// StoreCleanupInitialDelay is the delay before first store cleanup.
	// Allows server to stabilize before running cleanup.
	StoreCleanupInitialDelay = 5 * time.Minute
)

// Graceful shutdown
const (
	// GracefulShutdown is the timeout for graceful server shutdown.
	// Allows in-flight requests to complete before forceful termination.
	GracefulShutdown = 30 * time.Second
)
