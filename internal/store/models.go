package store

import "time"

// CurriculumContext is the retrieved background text a generation run is
// grounded on. Created once per scheme generation and never mutated;
// later records reference it by id.
type CurriculumContext struct {
	ID          string    `json:"id"`
	Subject     string    `json:"subject"`
	GradeLevel  string    `json:"grade_level"`
	Topic       string    `json:"topic"`
	ContextText string    `json:"context_text"`
	CreatedAt   time.Time `json:"created_at"`
}

// SchemePayload captures the request that produced a scheme of work.
type SchemePayload struct {
	Subject    string `json:"subject"`
	GradeLevel string `json:"grade_level"`
	Topic      string `json:"topic"`
}

// Scheme is a generated scheme of work. Root of the dependency chain:
// lesson plans and lesson notes must reference a valid scheme id.
type Scheme struct {
	ID        string        `json:"id"`
	Payload   SchemePayload `json:"payload"`
	Content   string        `json:"content"`
	ContextID string        `json:"context_id"`
	CreatedAt time.Time     `json:"created_at"`
}

// LessonPlanPayload captures the request that produced a lesson plan.
// Topic is the week-scoped topic extracted from the scheme.
type LessonPlanPayload struct {
	Subject     string `json:"subject"`
	GradeLevel  string `json:"grade_level"`
	Topic       string `json:"topic"`
	Limitations string `json:"limitations"`
	Week        string `json:"week"`
}

// LessonPlan is a generated lesson plan belonging to one scheme week.
type LessonPlan struct {
	ID        string            `json:"id"`
	SchemeID  string            `json:"scheme_id"`
	Payload   LessonPlanPayload `json:"payload"`
	Content   string            `json:"content"`
	ContextID string            `json:"context_id"`
	CreatedAt time.Time         `json:"created_at"`
}

// LessonNotesPayload captures the request that produced lesson notes.
type LessonNotesPayload struct {
	Topic          string `json:"topic"`
	Week           string `json:"week"`
	TeachingMethod string `json:"teaching_method"`
}

// LessonNotes is the expanded teaching content for one lesson plan.
type LessonNotes struct {
	ID           string             `json:"id"`
	SchemeID     string             `json:"scheme_id"`
	LessonPlanID string             `json:"lesson_plan_id"`
	Payload      LessonNotesPayload `json:"payload"`
	Content      string             `json:"content"`
	ContextID    string             `json:"context_id"`
	CreatedAt    time.Time          `json:"created_at"`
}
