// Package retrieval wraps a chromem-go vector store of Nigerian
// curriculum chunks. Given {subject, grade_level, topic} it returns a
// concatenated text context for generation plus ranked alternative
// matches, using Gemini embeddings.
package retrieval

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	chromem "github.com/philippgille/chromem-go"
	"golang.org/x/sync/singleflight"

	"github.com/edukits/curriculum-builder-go/internal/config"
	"github.com/edukits/curriculum-builder-go/internal/llm"
	"github.com/edukits/curriculum-builder-go/internal/logger"
)

// CollectionName is the name of the curriculum collection in chromem.
const CollectionName = "curriculum"

// Result statuses. A retrieval that finds nothing usable is "invalid",
// not an error; callers degrade to an empty context.
const (
	StatusValid   = "valid"
	StatusInvalid = "invalid"
	StatusError   = "error"
)

// Match is one ranked curriculum chunk returned by a query.
type Match struct {
	ID         string  `json:"id"`
	Subject    string  `json:"subject"`
	GradeLevel string  `json:"grade_level"`
	Topic      string  `json:"topic"`
	Content    string  `json:"content"`
	Similarity float32 `json:"similarity"`
}

// Result is the outcome of a retrieval query. Context concatenates the
// accepted match contents; Alternatives lists the remaining ranked
// matches that did not make the context.
type Result struct {
	Status       string  `json:"status"`
	Context      string  `json:"context"`
	Matches      []Match `json:"matches"`
	Alternatives []Match `json:"alternatives"`
}

// MetricsRecorder records retrieval outcomes. Implemented by
// *metrics.Metrics; a nil recorder disables recording.
type MetricsRecorder interface {
	RecordRetrieval(status string)
}

// Options configures a Retriever. PersistDir is the vector store
// directory, normally config.ChromemPath().
type Options struct {
	PersistDir    string
	APIKey        string
	TopK          int
	MinSimilarity float32
	Logger        *logger.Logger
	Recorder      MetricsRecorder
}

// Retriever is a thin query layer over one chromem collection.
type Retriever struct {
	db            *chromem.DB
	collection    *chromem.Collection
	embeddingFunc chromem.EmbeddingFunc
	topK          int
	minSimilarity float32
	logger        *logger.Logger
	recorder      MetricsRecorder
	flight        singleflight.Group
	mu            sync.RWMutex
}

// New creates a persistent retriever backed by Gemini embeddings.
// Returns (nil, nil) when no API key is configured; a nil *Retriever is
// safe to use and reports every query as invalid.
func New(opts Options) (*Retriever, error) {
	if opts.APIKey == "" {
		if opts.Logger != nil {
			opts.Logger.Info("Gemini API key not configured, curriculum retrieval disabled")
		}
		return nil, nil
	}

	db, err := chromem.NewPersistentDB(filepath.Join(opts.PersistDir, CollectionName), false)
	if err != nil {
		return nil, fmt.Errorf("failed to create chromem database: %w", err)
	}

	return newRetriever(db, llm.NewEmbeddingFunc(opts.APIKey), opts)
}

// newRetriever wires an existing chromem DB and embedding function.
// Split out so tests can substitute an in-memory DB and fake embeddings.
func newRetriever(db *chromem.DB, embeddingFunc chromem.EmbeddingFunc, opts Options) (*Retriever, error) {
	collection, err := db.GetOrCreateCollection(CollectionName, nil, embeddingFunc)
	if err != nil {
		return nil, fmt.Errorf("failed to get/create collection: %w", err)
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = 5
	}

	return &Retriever{
		db:            db,
		collection:    collection,
		embeddingFunc: embeddingFunc,
		topK:          topK,
		minSimilarity: opts.MinSimilarity,
		logger:        opts.Logger,
		recorder:      opts.Recorder,
	}, nil
}

// Retrieve queries the curriculum collection for chunks matching the
// given subject, grade level and topic. Never returns an error for an
// empty or unusable result; that is reported in Result.Status so the
// pipeline can degrade to an empty context. Concurrent queries for the
// same subject/grade/topic collapse into a single embedding call.
func (r *Retriever) Retrieve(ctx context.Context, subject, gradeLevel, topic string) *Result {
	if r == nil || r.collection == nil {
		return &Result{Status: StatusInvalid}
	}

	query := buildQuery(subject, gradeLevel, topic)
	v, _, _ := r.flight.Do(query, func() (any, error) {
		return r.retrieve(ctx, query), nil
	})
	return v.(*Result)
}

func (r *Retriever) retrieve(ctx context.Context, query string) *Result {
	r.mu.RLock()
	defer r.mu.RUnlock()

	docCount := r.collection.Count()
	if docCount == 0 {
		r.record(StatusInvalid)
		return &Result{Status: StatusInvalid}
	}

	// Over-query so alternatives survive the similarity filter.
	queryLimit := r.topK * 3
	if queryLimit > docCount {
		queryLimit = docCount
	}

	queryCtx, cancel := context.WithTimeout(ctx, config.RetrievalQuery)
	defer cancel()

	results, err := r.collection.Query(queryCtx, query, queryLimit, nil, nil)
	if err != nil {
		r.record(StatusError)
		if r.logger != nil {
			r.logger.WithError(err).WithField("query", query).Error("curriculum retrieval query failed")
		}
		return &Result{Status: StatusError}
	}

	var accepted, alternatives []Match
	for _, res := range results {
		match := Match{
			ID:         res.ID,
			Subject:    res.Metadata["subject"],
			GradeLevel: res.Metadata["grade_level"],
			Topic:      res.Metadata["topic"],
			Content:    res.Content,
			Similarity: res.Similarity,
		}
		if res.Similarity >= r.minSimilarity && len(accepted) < r.topK {
			accepted = append(accepted, match)
		} else {
			alternatives = append(alternatives, match)
		}
	}

	if len(accepted) == 0 {
		r.record(StatusInvalid)
		return &Result{Status: StatusInvalid, Alternatives: alternatives}
	}

	parts := make([]string, len(accepted))
	for i, m := range accepted {
		parts[i] = m.Content
	}

	r.record(StatusValid)
	if r.logger != nil {
		r.logger.WithFields(map[string]any{
			"matches":      len(accepted),
			"alternatives": len(alternatives),
			"top_score":    accepted[0].Similarity,
		}).Debug("curriculum retrieval succeeded")
	}

	return &Result{
		Status:       StatusValid,
		Context:      strings.Join(parts, "\n\n"),
		Matches:      accepted,
		Alternatives: alternatives,
	}
}

// Count returns the number of chunks in the collection.
func (r *Retriever) Count() int {
	if r == nil || r.collection == nil {
		return 0
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collection.Count()
}

// IsEnabled reports whether the retriever can serve queries.
func (r *Retriever) IsEnabled() bool {
	return r != nil && r.collection != nil
}

// Close is a no-op; chromem persists on every operation.
func (r *Retriever) Close() error {
	return nil
}

func (r *Retriever) record(status string) {
	if r.recorder != nil {
		r.recorder.RecordRetrieval(status)
	}
}

func buildQuery(subject, gradeLevel, topic string) string {
	return strings.TrimSpace(strings.Join([]string{subject, gradeLevel, topic}, " "))
}
