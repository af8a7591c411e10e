package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/edukits/curriculum-builder-go/internal/errors"
	"github.com/edukits/curriculum-builder-go/internal/evaluate"
	"github.com/edukits/curriculum-builder-go/internal/generate"
	"github.com/edukits/curriculum-builder-go/internal/logger"
	"github.com/edukits/curriculum-builder-go/internal/metrics"
	"github.com/edukits/curriculum-builder-go/internal/retrieval"
	"github.com/edukits/curriculum-builder-go/internal/store"
)

// apiHandler holds the dependencies shared by all HTTP handlers.
type apiHandler struct {
	pipeline  *generate.Service
	evaluator *evaluate.Evaluator
	retriever *retrieval.Retriever
	store     store.Store
	logger    *logger.Logger
	metrics   *metrics.Metrics
}

type schemeRequest struct {
	Subject    string `json:"subject" binding:"required"`
	GradeLevel string `json:"grade_level" binding:"required"`
	Topic      string `json:"topic" binding:"required"`
}

type lessonPlanRequest struct {
	SchemeID            string `json:"scheme_id" binding:"required"`
	Week                string `json:"week" binding:"required"`
	TeachingConstraints string `json:"teaching_constraints"`
}

// lessonNotesRequest carries no week field: the week comes from the
// referenced lesson plan, so a request cannot contradict the plan it names.
type lessonNotesRequest struct {
	SchemeID       string `json:"scheme_id" binding:"required"`
	LessonPlanID   string `json:"lesson_plan_id" binding:"required"`
	TeachingMethod string `json:"teaching_method"`
}

type evaluationRequest struct {
	ContextID string `json:"context_id" binding:"required"`
}

type chunksRequest struct {
	Chunks []retrieval.Chunk `json:"chunks" binding:"required"`
}

// handleReady reports readiness: the store must answer a lookup, and the
// retrieval index state is included for visibility.
func (h *apiHandler) handleReady(c *gin.Context) {
	if _, err := h.store.GetContext(c.Request.Context(), "readiness-probe"); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"store":  err.Error(),
		})
		return
	}

	response := gin.H{
		"status":    "ready",
		"retrieval": h.retriever.IsEnabled(),
	}
	if h.retriever.IsEnabled() {
		response["chunks"] = h.retriever.Count()
	}
	c.JSON(http.StatusOK, response)
}

func (h *apiHandler) handleGenerateScheme(c *gin.Context) {
	var req schemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	result, err := h.pipeline.GenerateScheme(c.Request.Context(), req.Subject, req.GradeLevel, req.Topic)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *apiHandler) handleGenerateLessonPlan(c *gin.Context) {
	var req lessonPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	result, err := h.pipeline.GenerateLessonPlan(c.Request.Context(), req.SchemeID, req.Week, req.TeachingConstraints)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *apiHandler) handleGenerateLessonNotes(c *gin.Context) {
	var req lessonNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	result, err := h.pipeline.GenerateLessonNotes(c.Request.Context(), req.SchemeID, req.LessonPlanID, req.TeachingMethod)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *apiHandler) handleListWeeks(c *gin.Context) {
	weeks, err := h.pipeline.ListSchemeWeeks(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"weeks": weeks})
}

// contentTypeFromPath maps URL segments onto stored content types.
var contentTypeFromPath = map[string]string{
	"scheme-of-work": evaluate.ContentSchemeOfWork,
	"scheme":         evaluate.ContentSchemeOfWork,
	"lesson-plan":    evaluate.ContentLessonPlan,
	"lesson-notes":   evaluate.ContentLessonNotes,
}

func (h *apiHandler) handleEvaluate(c *gin.Context) {
	contentType, ok := contentTypeFromPath[c.Param("type")]
	if !ok {
		h.respondError(c, apperrors.NewValidationError("type", "unknown content type"))
		return
	}

	var req evaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	result, err := h.evaluator.Evaluate(c.Request.Context(), contentType, req.ContextID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *apiHandler) handleAddChunks(c *gin.Context) {
	if !h.retriever.IsEnabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "retrieval is not enabled"})
		return
	}

	var req chunksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	added, err := h.retriever.AddChunks(c.Request.Context(), req.Chunks)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"added": added})
}

func (h *apiHandler) respondBindError(c *gin.Context, err error) {
	h.metrics.RecordHTTPError("bad_request", c.FullPath())
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// respondError maps domain errors onto HTTP statuses: missing records are
// 404, validation failures 400, model-side failures 502, the rest 500.
func (h *apiHandler) respondError(c *gin.Context, err error) {
	var decodeErr *evaluate.DecodeError
	var genErr *apperrors.GenerationError

	status := http.StatusInternalServerError
	errorType := "internal"

	switch {
	case apperrors.IsNotFound(err):
		status = http.StatusNotFound
		errorType = "not_found"
	case apperrors.IsInvalidInput(err):
		status = http.StatusBadRequest
		errorType = "validation"
	case errors.As(err, &decodeErr):
		status = http.StatusBadGateway
		errorType = "decode"
	case errors.As(err, &genErr):
		status = http.StatusBadGateway
		errorType = "generation"
	case apperrors.IsEmptyResponse(err):
		status = http.StatusBadGateway
		errorType = "empty_response"
	case apperrors.IsRateLimitExceeded(err):
		status = http.StatusTooManyRequests
		errorType = "rate_limited"
	}

	if status >= http.StatusInternalServerError {
		h.logger.WithError(err).WithField("path", c.FullPath()).Error("Request handling failed")
	}
	h.metrics.RecordHTTPError(errorType, c.FullPath())
	c.JSON(status, gin.H{"error": apperrors.GetUserMessage(err)})
}
