package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Generation metrics
	GenerationTotal           *prometheus.CounterVec
	GenerationDurationSeconds *prometheus.HistogramVec

	// Evaluation metrics
	EvaluationTotal       *prometheus.CounterVec
	EvaluationDecodeLayer *prometheus.CounterVec

	// Retrieval metrics
	RetrievalTotal *prometheus.CounterVec

	// LLM provider metrics
	LLMRequestsTotal  *prometheus.CounterVec
	LLMRetriesTotal   *prometheus.CounterVec
	LLMFallbacksTotal *prometheus.CounterVec

	// Store metrics
	StoreOpsTotal *prometheus.CounterVec

	// HTTP metrics
	HTTPErrorsTotal *prometheus.CounterVec

	// Rate limiter metrics
	RateLimiterWaitDuration *prometheus.HistogramVec
	RateLimiterDropped      *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		// Generation metrics
		GenerationTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "curriculum_generation_total",
				Help: "Total number of content generation requests by stage and status",
			},
			[]string{"stage", "status"}, // stage: scheme_of_work, lesson_plan, lesson_notes; status: success, error
		),

		GenerationDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "curriculum_generation_duration_seconds",
				Help:    "Content generation duration in seconds by stage",
				Buckets: []float64{1, 5, 10, 20, 30, 60, 90, 120}, // Matches 90s LLM timeout + retries
			},
			[]string{"stage"},
		),

		// Evaluation metrics
		EvaluationTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "curriculum_evaluation_total",
				Help: "Total number of content evaluations by content type and status",
			},
			[]string{"content_type", "status"}, // status: success, partial, error
		),

		EvaluationDecodeLayer: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "curriculum_evaluation_decode_layer_total",
				Help: "Evaluation responses decoded per fallback layer",
			},
			[]string{"layer"}, // layer: direct, repaired, extracted, partial, failed
		),

		// Retrieval metrics
		RetrievalTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "curriculum_retrieval_total",
				Help: "Total number of curriculum context lookups by status",
			},
			[]string{"status"}, // status: valid, invalid, error
		),

		// LLM provider metrics
		LLMRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "curriculum_llm_requests_total",
				Help: "Total number of LLM completion calls by provider, model and status",
			},
			[]string{"provider", "model", "status"}, // status: success, error
		),

		LLMRetriesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "curriculum_llm_retries_total",
				Help: "Total number of LLM call retries by provider",
			},
			[]string{"provider"},
		),

		LLMFallbacksTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "curriculum_llm_fallbacks_total",
				Help: "Total number of provider fallbacks by source provider",
			},
			[]string{"from_provider"},
		),

		// Store metrics
		StoreOpsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "curriculum_store_ops_total",
				Help: "Total number of record store operations by operation and status",
			},
			[]string{"op", "status"}, // op: save, get, list, delete, cleanup
		),

		// HTTP metrics
		HTTPErrorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "curriculum_http_errors_total",
				Help: "Total HTTP errors by type and route",
			},
			[]string{"error_type", "route"}, // error_type: not_found, validation, rate_limit, upstream, internal
		),

		// Rate limiter metrics
		RateLimiterWaitDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "curriculum_rate_limiter_wait_duration_seconds",
				Help:    "Time spent waiting for rate limiter token by limiter type",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5}, // 1ms to 5s
			},
			[]string{"limiter_type"}, // limiter_type: llm, global
		),

		RateLimiterDropped: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "curriculum_rate_limiter_dropped_total",
				Help: "Total number of requests dropped by rate limiter",
			},
			[]string{"limiter_type"},
		),
	}

	return m
}

// RecordGeneration records a content generation attempt with status
func (m *Metrics) RecordGeneration(stage, status string, duration float64) {
	m.GenerationTotal.WithLabelValues(stage, status).Inc()
	m.GenerationDurationSeconds.WithLabelValues(stage).Observe(duration)
}

// RecordEvaluation records an evaluation outcome
func (m *Metrics) RecordEvaluation(contentType, status string) {
	m.EvaluationTotal.WithLabelValues(contentType, status).Inc()
}

// RecordDecodeLayer records which fallback layer decoded an evaluation response
func (m *Metrics) RecordDecodeLayer(layer string) {
	m.EvaluationDecodeLayer.WithLabelValues(layer).Inc()
}

// RecordRetrieval records a curriculum context lookup
func (m *Metrics) RecordRetrieval(status string) {
	m.RetrievalTotal.WithLabelValues(status).Inc()
}

// RecordLLMRequest records an LLM completion call
func (m *Metrics) RecordLLMRequest(provider, model, status string) {
	m.LLMRequestsTotal.WithLabelValues(provider, model, status).Inc()
}

// RecordLLMRetry records a retried LLM call
func (m *Metrics) RecordLLMRetry(provider string) {
	m.LLMRetriesTotal.WithLabelValues(provider).Inc()
}

// RecordLLMFallback records a provider fallback
func (m *Metrics) RecordLLMFallback(fromProvider string) {
	m.LLMFallbacksTotal.WithLabelValues(fromProvider).Inc()
}

// RecordStoreOp records a record store operation
func (m *Metrics) RecordStoreOp(op, status string) {
	m.StoreOpsTotal.WithLabelValues(op, status).Inc()
}

// RecordHTTPError records HTTP error metrics
func (m *Metrics) RecordHTTPError(errorType, route string) {
	m.HTTPErrorsTotal.WithLabelValues(errorType, route).Inc()
}

// RecordRateLimiterWait records time spent waiting for rate limiter
func (m *Metrics) RecordRateLimiterWait(limiterType string, duration float64) {
	m.RateLimiterWaitDuration.WithLabelValues(limiterType).Observe(duration)
}

// RecordRateLimiterDrop records a request dropped by rate limiter
func (m *Metrics) RecordRateLimiterDrop(limiterType string) {
	m.RateLimiterDropped.WithLabelValues(limiterType).Inc()
}
