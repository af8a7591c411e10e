// Package store persists generated curriculum records. Two
// implementations exist: a SQLite-backed store for deployments and an
// in-memory store for tests and ephemeral runs; both are selected at
// construction time behind the Store interface.
//
// All lookups return (nil, nil) when the record is absent. Callers must
// check for nil before use; absence is not an error at this layer.
package store

import "context"

// Store is the narrow persistence interface the pipeline depends on.
// Records are append-only; expiry is handled by Cleanup, not by the
// pipeline.
type Store interface {
	CreateContext(ctx context.Context, record *CurriculumContext) (string, error)
	GetContext(ctx context.Context, id string) (*CurriculumContext, error)

	CreateScheme(ctx context.Context, record *Scheme) (string, error)
	GetScheme(ctx context.Context, id string) (*Scheme, error)
	GetSchemeByContext(ctx context.Context, contextID string) (*Scheme, error)

	CreateLessonPlan(ctx context.Context, record *LessonPlan) (string, error)
	GetLessonPlan(ctx context.Context, id string) (*LessonPlan, error)
	GetLessonPlanByContext(ctx context.Context, contextID string) (*LessonPlan, error)

	CreateLessonNotes(ctx context.Context, record *LessonNotes) (string, error)
	GetLessonNotes(ctx context.Context, id string) (*LessonNotes, error)
	GetLessonNotesByContext(ctx context.Context, contextID string) (*LessonNotes, error)

	// Cleanup removes records older than the store's TTL and returns how
	// many were deleted. A store with no TTL deletes nothing.
	Cleanup(ctx context.Context) (int64, error)

	Close() error
}
