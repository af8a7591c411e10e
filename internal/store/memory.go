package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps all records in process memory. Used for tests and
// for deployments that do not need persistence across restarts.
type MemoryStore struct {
	mu  sync.RWMutex
	ttl time.Duration

	contexts    map[string]*CurriculumContext
	schemes     map[string]*Scheme
	lessonPlans map[string]*LessonPlan
	lessonNotes map[string]*LessonNotes
}

// NewMemoryStore creates an empty in-memory store. ttl <= 0 disables
// expiry.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:         ttl,
		contexts:    make(map[string]*CurriculumContext),
		schemes:     make(map[string]*Scheme),
		lessonPlans: make(map[string]*LessonPlan),
		lessonNotes: make(map[string]*LessonNotes),
	}
}

func (s *MemoryStore) expired(createdAt time.Time) bool {
	return s.ttl > 0 && time.Since(createdAt) > s.ttl
}

// CreateContext stores a curriculum context and returns its id.
func (s *MemoryStore) CreateContext(_ context.Context, record *CurriculumContext) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *record
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	s.contexts[stored.ID] = &stored
	return stored.ID, nil
}

// GetContext returns the context with the given id, or (nil, nil) if it
// is absent or expired.
func (s *MemoryStore) GetContext(_ context.Context, id string) (*CurriculumContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.contexts[id]
	if !ok || s.expired(record.CreatedAt) {
		return nil, nil
	}
	copied := *record
	return &copied, nil
}

// CreateScheme stores a scheme and returns its id.
func (s *MemoryStore) CreateScheme(_ context.Context, record *Scheme) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *record
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	s.schemes[stored.ID] = &stored
	return stored.ID, nil
}

func (s *MemoryStore) GetScheme(_ context.Context, id string) (*Scheme, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.schemes[id]
	if !ok || s.expired(record.CreatedAt) {
		return nil, nil
	}
	copied := *record
	return &copied, nil
}

// GetSchemeByContext returns the most recent scheme referencing the
// given context id.
func (s *MemoryStore) GetSchemeByContext(_ context.Context, contextID string) (*Scheme, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *Scheme
	for _, record := range s.schemes {
		if record.ContextID != contextID || s.expired(record.CreatedAt) {
			continue
		}
		if latest == nil || record.CreatedAt.After(latest.CreatedAt) {
			latest = record
		}
	}
	if latest == nil {
		return nil, nil
	}
	copied := *latest
	return &copied, nil
}

func (s *MemoryStore) CreateLessonPlan(_ context.Context, record *LessonPlan) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *record
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	s.lessonPlans[stored.ID] = &stored
	return stored.ID, nil
}

func (s *MemoryStore) GetLessonPlan(_ context.Context, id string) (*LessonPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.lessonPlans[id]
	if !ok || s.expired(record.CreatedAt) {
		return nil, nil
	}
	copied := *record
	return &copied, nil
}

func (s *MemoryStore) GetLessonPlanByContext(_ context.Context, contextID string) (*LessonPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *LessonPlan
	for _, record := range s.lessonPlans {
		if record.ContextID != contextID || s.expired(record.CreatedAt) {
			continue
		}
		if latest == nil || record.CreatedAt.After(latest.CreatedAt) {
			latest = record
		}
	}
	if latest == nil {
		return nil, nil
	}
	copied := *latest
	return &copied, nil
}

func (s *MemoryStore) CreateLessonNotes(_ context.Context, record *LessonNotes) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *record
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	s.lessonNotes[stored.ID] = &stored
	return stored.ID, nil
}

func (s *MemoryStore) GetLessonNotes(_ context.Context, id string) (*LessonNotes, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.lessonNotes[id]
	if !ok || s.expired(record.CreatedAt) {
		return nil, nil
	}
	copied := *record
	return &copied, nil
}

func (s *MemoryStore) GetLessonNotesByContext(_ context.Context, contextID string) (*LessonNotes, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *LessonNotes
	for _, record := range s.lessonNotes {
		if record.ContextID != contextID || s.expired(record.CreatedAt) {
			continue
		}
		if latest == nil || record.CreatedAt.After(latest.CreatedAt) {
			latest = record
		}
	}
	if latest == nil {
		return nil, nil
	}
	copied := *latest
	return &copied, nil
}

// Cleanup drops every expired record and returns the number removed.
func (s *MemoryStore) Cleanup(_ context.Context) (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for id, record := range s.contexts {
		if s.expired(record.CreatedAt) {
			delete(s.contexts, id)
			removed++
		}
	}
	for id, record := range s.schemes {
		if s.expired(record.CreatedAt) {
			delete(s.schemes, id)
			removed++
		}
	}
	for id, record := range s.lessonPlans {
		if s.expired(record.CreatedAt) {
			delete(s.lessonPlans, id)
			removed++
		}
	}
	for id, record := range s.lessonNotes {
		if s.expired(record.CreatedAt) {
			delete(s.lessonNotes, id)
			removed++
		}
	}
	return removed, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
