package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/edukits/curriculum-builder-go/internal/errors"
	"github.com/edukits/curriculum-builder-go/internal/evaluate"
	"github.com/edukits/curriculum-builder-go/internal/logger"
	"github.com/edukits/curriculum-builder-go/internal/store"
)

func testHandler(t *testing.T) *apiHandler {
	t.Helper()
	return &apiHandler{
		store:   store.NewMemoryStore(0),
		logger:  logger.NewWithWriter("error", io.Discard),
		metrics: testMetrics(),
	}
}

func TestHandleReady(t *testing.T) {
	h := testHandler(t)
	router := gin.New()
	router.GET("/ready", h.handleReady)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ready"`)
	// No API key configured, so retrieval reports disabled.
	assert.Contains(t, w.Body.String(), `"retrieval":false`)
}

func TestHandleAddChunks_RetrievalDisabled(t *testing.T) {
	h := testHandler(t)
	router := gin.New()
	router.POST("/api/embeddings/chunks", h.handleAddChunks)

	body := strings.NewReader(`{"chunks": [{"subject": "Mathematics", "grade_level": "Primary 4", "topic": "Fractions", "content": "x"}]}`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/embeddings/chunks", body))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHandleEvaluate_UnknownType(t *testing.T) {
	h := testHandler(t)
	router := gin.New()
	router.POST("/api/evaluation/:type", h.handleEvaluate)

	body := strings.NewReader(`{"context_id": "abc"}`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/evaluation/essay", body))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGenerateScheme_MissingFields(t *testing.T) {
	h := testHandler(t)
	router := gin.New()
	router.POST("/api/content/scheme-of-work", h.handleGenerateScheme)

	body := strings.NewReader(`{"subject": "Mathematics"}`)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/content/scheme-of-work", body))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRespondError_StatusMapping(t *testing.T) {
	h := testHandler(t)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", apperrors.NewNotFoundError("scheme", "abc"), http.StatusNotFound},
		{"validation", apperrors.NewValidationError("week", "no digits"), http.StatusBadRequest},
		{"decode failure", &evaluate.DecodeError{Message: "undecodable"}, http.StatusBadGateway},
		{"generation failure", &apperrors.GenerationError{Stage: "lesson_plan", Err: io.ErrUnexpectedEOF}, http.StatusBadGateway},
		{"empty response", apperrors.ErrEmptyResponse, http.StatusBadGateway},
		{"rate limited", apperrors.ErrRateLimitExceeded, http.StatusTooManyRequests},
		{"unknown", io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/test", nil)

			h.respondError(c, tt.err)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
