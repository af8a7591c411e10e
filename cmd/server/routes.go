package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/edukits/curriculum-builder-go/internal/buildinfo"
	"github.com/edukits/curriculum-builder-go/internal/config"
	"github.com/edukits/curriculum-builder-go/internal/ratelimit"
)

// setupRoutes configures all HTTP routes.
func setupRoutes(router *gin.Engine, api *apiHandler, registry *prometheus.Registry, cfg *config.Config, clientLimiter *ratelimit.PerKeyLimiter) {
	// Root endpoint with service info
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "curriculum-builder",
			"status":  "running",
			"version": buildinfo.Version,
			"commit":  buildinfo.Commit,
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	// Liveness probe: no dependency checks, always OK while the process runs.
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Readiness probe: verifies the store answers and reports retrieval state.
	router.GET("/ready", api.handleReady)

	// Prometheus metrics, behind basic auth when credentials are configured.
	metricsHandler := gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	if cfg.MetricsUsername != "" && cfg.MetricsPassword != "" {
		authorized := router.Group("/", gin.BasicAuth(gin.Accounts{
			cfg.MetricsUsername: cfg.MetricsPassword,
		}))
		authorized.GET("/metrics", metricsHandler)
	} else {
		router.GET("/metrics", metricsHandler)
	}

	apiGroup := router.Group("/api")
	apiGroup.Use(clientRateLimitMiddleware(clientLimiter))
	{
		content := apiGroup.Group("/content")
		{
			content.POST("/scheme-of-work", api.handleGenerateScheme)
			content.GET("/scheme-of-work/:id/weeks", api.handleListWeeks)
			content.POST("/lesson-plan", api.handleGenerateLessonPlan)
			content.POST("/lesson-notes", api.handleGenerateLessonNotes)
		}

		apiGroup.POST("/evaluation/:type", api.handleEvaluate)
		apiGroup.POST("/embeddings/chunks", api.handleAddChunks)
	}
}
