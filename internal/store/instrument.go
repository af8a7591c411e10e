package store

import "context"

// OpRecorder records store operation outcomes. Implemented by
// *metrics.Metrics.
type OpRecorder interface {
	RecordStoreOp(op, status string)
}

// WithMetrics wraps a Store so every operation is counted by op name and
// outcome. A nil recorder returns the store unwrapped.
func WithMetrics(inner Store, recorder OpRecorder) Store {
	if recorder == nil {
		return inner
	}
	return &instrumentedStore{inner: inner, recorder: recorder}
}

type instrumentedStore struct {
	inner    Store
	recorder OpRecorder
}

func (s *instrumentedStore) record(op string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	s.recorder.RecordStoreOp(op, status)
}

func (s *instrumentedStore) CreateContext(ctx context.Context, record *CurriculumContext) (string, error) {
	id, err := s.inner.CreateContext(ctx, record)
	s.record("create_context", err)
	return id, err
}

func (s *instrumentedStore) GetContext(ctx context.Context, id string) (*CurriculumContext, error) {
	record, err := s.inner.GetContext(ctx, id)
	s.record("get_context", err)
	return record, err
}

func (s *instrumentedStore) CreateScheme(ctx context.Context, record *Scheme) (string, error) {
	id, err := s.inner.CreateScheme(ctx, record)
	s.record("create_scheme", err)
	return id, err
}

func (s *instrumentedStore) GetScheme(ctx context.Context, id string) (*Scheme, error) {
	record, err := s.inner.GetScheme(ctx, id)
	s.record("get_scheme", err)
	return record, err
}

func (s *instrumentedStore) GetSchemeByContext(ctx context.Context, contextID string) (*Scheme, error) {
	record, err := s.inner.GetSchemeByContext(ctx, contextID)
	s.record("get_scheme_by_context", err)
	return record, err
}

func (s *instrumentedStore) CreateLessonPlan(ctx context.Context, record *LessonPlan) (string, error) {
	id, err := s.inner.CreateLessonPlan(ctx, record)
	s.record("create_lesson_plan", err)
	return id, err
}

func (s *instrumentedStore) GetLessonPlan(ctx context.Context, id string) (*LessonPlan, error) {
	record, err := s.inner.GetLessonPlan(ctx, id)
	s.record("get_lesson_plan", err)
	return record, err
}

func (s *instrumentedStore) GetLessonPlanByContext(ctx context.Context, contextID string) (*LessonPlan, error) {
	record, err := s.inner.GetLessonPlanByContext(ctx, contextID)
	s.record("get_lesson_plan_by_context", err)
	return record, err
}

func (s *instrumentedStore) CreateLessonNotes(ctx context.Context, record *LessonNotes) (string, error) {
	id, err := s.inner.CreateLessonNotes(ctx, record)
	s.record("create_lesson_notes", err)
	return id, err
}

func (s *instrumentedStore) GetLessonNotes(ctx context.Context, id string) (*LessonNotes, error) {
	record, err := s.inner.GetLessonNotes(ctx, id)
	s.record("get_lesson_notes", err)
	return record, err
}

func (s *instrumentedStore) GetLessonNotesByContext(ctx context.Context, contextID string) (*LessonNotes, error) {
	record, err := s.inner.GetLessonNotesByContext(ctx, contextID)
	s.record("get_lesson_notes_by_context", err)
	return record, err
}

func (s *instrumentedStore) Cleanup(ctx context.Context) (int64, error) {
	removed, err := s.inner.Cleanup(ctx)
	s.record("cleanup", err)
	return removed, err
}

func (s *instrumentedStore) Close() error {
	return s.inner.Close()
}
