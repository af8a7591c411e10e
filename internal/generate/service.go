package generate

import (
	"context"
	"strings"

	apperrors "github.com/edukits/curriculum-builder-go/internal/errors"
	"github.com/edukits/curriculum-builder-go/internal/extract"
	"github.com/edukits/curriculum-builder-go/internal/logger"
	"github.com/edukits/curriculum-builder-go/internal/retrieval"
	"github.com/edukits/curriculum-builder-go/internal/store"
)

// SchemeResult is the outcome of stage 1.
type SchemeResult struct {
	SchemeID        string            `json:"scheme_id"`
	ContextID       string            `json:"context_id"`
	Content         string            `json:"content"`
	RetrievalStatus string            `json:"retrieval_status"`
	Alternatives    []retrieval.Match `json:"alternatives,omitempty"`
}

// LessonPlanResult is the outcome of stage 2.
type LessonPlanResult struct {
	LessonPlanID string `json:"lesson_plan_id"`
	SchemeID     string `json:"scheme_id"`
	ContextID    string `json:"context_id"`
	Week         string `json:"week"`
	Topic        string `json:"topic"`
	Content      string `json:"content"`
}

// LessonNotesResult is the outcome of stage 3.
type LessonNotesResult struct {
	LessonNotesID string `json:"lesson_notes_id"`
	LessonPlanID  string `json:"lesson_plan_id"`
	SchemeID      string `json:"scheme_id"`
	ContextID     string `json:"context_id"`
	Week          string `json:"week"`
	Topic         string `json:"topic"`
	Content       string `json:"content"`
}

// Service orchestrates the pipeline: retrieval, validation, generation
// and persistence. Referenced records are always resolved and validated
// before any model call is made.
type Service struct {
	engine    *Engine
	store     store.Store
	retriever *retrieval.Retriever
	logger    *logger.Logger
}

// NewService wires the pipeline dependencies. retriever may be nil, in
// which case schemes are generated against an empty curriculum context.
func NewService(engine *Engine, st store.Store, retriever *retrieval.Retriever, log *logger.Logger) *Service {
	return &Service{engine: engine, store: st, retriever: retriever, logger: log}
}

// GenerateScheme runs stage 1: retrieve curriculum context, persist it,
// generate the scheme of work and persist the result.
func (s *Service) GenerateScheme(ctx context.Context, subject, gradeLevel, topic string) (*SchemeResult, error) {
	if err := requireFields(map[string]string{
		"subject":     subject,
		"grade_level": gradeLevel,
		"topic":       topic,
	}); err != nil {
		return nil, err
	}

	result := s.retriever.Retrieve(ctx, subject, gradeLevel, topic)
	if result.Status != retrieval.StatusValid && s.logger != nil {
		s.logger.WithFields(map[string]any{
			"status":  result.Status,
			"subject": subject,
			"topic":   topic,
		}).Warn("curriculum retrieval returned no context, generating without grounding")
	}

	contextID, err := s.store.CreateContext(ctx, &store.CurriculumContext{
		Subject:     subject,
		GradeLevel:  gradeLevel,
		Topic:       topic,
		ContextText: result.Context,
	})
	if err != nil {
		return nil, err
	}

	content, err := s.engine.Generate(ctx, StageSchemeOfWork, Request{
		Subject:           subject,
		GradeLevel:        gradeLevel,
		Topic:             topic,
		CurriculumContext: result.Context,
	})
	if err != nil {
		return nil, err
	}

	schemeID, err := s.store.CreateScheme(ctx, &store.Scheme{
		Payload:   store.SchemePayload{Subject: subject, GradeLevel: gradeLevel, Topic: topic},
		Content:   content,
		ContextID: contextID,
	})
	if err != nil {
		return nil, err
	}

	return &SchemeResult{
		SchemeID:        schemeID,
		ContextID:       contextID,
		Content:         content,
		RetrievalStatus: result.Status,
		Alternatives:    result.Alternatives,
	}, nil
}

// GenerateLessonPlan runs stage 2 for one week of an existing scheme.
// The scheme id must resolve before any model call is attempted.
func (s *Service) GenerateLessonPlan(ctx context.Context, schemeID, week, constraints string) (*LessonPlanResult, error) {
	if err := requireFields(map[string]string{"scheme_id": schemeID, "week": week}); err != nil {
		return nil, err
	}

	scheme, err := s.store.GetScheme(ctx, schemeID)
	if err != nil {
		return nil, err
	}
	if scheme == nil {
		return nil, apperrors.NewNotFoundError("scheme", schemeID)
	}

	week = extract.NormalizeWeek(week)
	if week == "" {
		return nil, apperrors.NewValidationError("week", "week must contain a number")
	}
	topic := extract.WeekTopic(scheme.Content, week)

	content, err := s.engine.Generate(ctx, StageLessonPlan, Request{
		Subject:             scheme.Payload.Subject,
		GradeLevel:          scheme.Payload.GradeLevel,
		Topic:               topic,
		CurriculumContext:   scheme.Content,
		TeachingConstraints: constraints,
	})
	if err != nil {
		return nil, err
	}

	planID, err := s.store.CreateLessonPlan(ctx, &store.LessonPlan{
		SchemeID: schemeID,
		Payload: store.LessonPlanPayload{
			Subject:     scheme.Payload.Subject,
			GradeLevel:  scheme.Payload.GradeLevel,
			Topic:       topic,
			Limitations: constraints,
			Week:        week,
		},
		Content:   content,
		ContextID: scheme.ContextID,
	})
	if err != nil {
		return nil, err
	}

	return &LessonPlanResult{
		LessonPlanID: planID,
		SchemeID:     schemeID,
		ContextID:    scheme.ContextID,
		Week:         week,
		Topic:        topic,
		Content:      content,
	}, nil
}

// GenerateLessonNotes runs stage 3. Both referenced records must resolve
// and the lesson plan must belong to the supplied scheme; a mismatch is
// a validation error, not a lookup failure.
func (s *Service) GenerateLessonNotes(ctx context.Context, schemeID, lessonPlanID, teachingMethod string) (*LessonNotesResult, error) {
	if err := requireFields(map[string]string{"scheme_id": schemeID, "lesson_plan_id": lessonPlanID}); err != nil {
		return nil, err
	}

	scheme, err := s.store.GetScheme(ctx, schemeID)
	if err != nil {
		return nil, err
	}
	if scheme == nil {
		return nil, apperrors.NewNotFoundError("scheme", schemeID)
	}

	plan, err := s.store.GetLessonPlan(ctx, lessonPlanID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, apperrors.NewNotFoundError("lesson plan", lessonPlanID)
	}

	if plan.SchemeID != schemeID {
		return nil, apperrors.NewValidationError("scheme_id",
			"lesson plan belongs to a different scheme")
	}
	if plan.Payload.Subject != scheme.Payload.Subject || plan.Payload.GradeLevel != scheme.Payload.GradeLevel {
		return nil, apperrors.NewValidationError("lesson_plan_id",
			"lesson plan subject or grade level does not match the scheme")
	}

	week := plan.Payload.Week
	schemeContext := extract.WeekContent(scheme.Content, week)
	if schemeContext == "" {
		// Schemes are weekly tables without WEEK headings, so the slice is
		// usually empty; ground the notes in the whole scheme instead.
		schemeContext = scheme.Content
	}
	planContext := extract.WeekContent(plan.Content, week)
	if planContext == "" {
		// Plans without a week heading are used whole.
		planContext = plan.Content
	}

	content, err := s.engine.Generate(ctx, StageLessonNotes, Request{
		Subject:           plan.Payload.Subject,
		GradeLevel:        plan.Payload.GradeLevel,
		Topic:             plan.Payload.Topic,
		SchemeContext:     schemeContext,
		LessonPlanContext: planContext,
	})
	if err != nil {
		return nil, err
	}

	notesID, err := s.store.CreateLessonNotes(ctx, &store.LessonNotes{
		SchemeID:     schemeID,
		LessonPlanID: lessonPlanID,
		Payload: store.LessonNotesPayload{
			Topic:          plan.Payload.Topic,
			Week:           week,
			TeachingMethod: teachingMethod,
		},
		Content:   content,
		ContextID: plan.ContextID,
	})
	if err != nil {
		return nil, err
	}

	return &LessonNotesResult{
		LessonNotesID: notesID,
		LessonPlanID:  lessonPlanID,
		SchemeID:      schemeID,
		ContextID:     plan.ContextID,
		Week:          week,
		Topic:         plan.Payload.Topic,
		Content:       content,
	}, nil
}

// ListSchemeWeeks returns the week numbers present in a stored scheme.
func (s *Service) ListSchemeWeeks(ctx context.Context, schemeID string) ([]string, error) {
	scheme, err := s.store.GetScheme(ctx, schemeID)
	if err != nil {
		return nil, err
	}
	if scheme == nil {
		return nil, apperrors.NewNotFoundError("scheme", schemeID)
	}
	return extract.SchemeWeeks(scheme.Content), nil
}

func requireFields(fields map[string]string) error {
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			return apperrors.NewValidationError(name, name+" is required")
		}
	}
	return nil
}
