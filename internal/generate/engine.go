// Package generate implements the three-stage content pipeline:
// scheme of work, then lesson plan, then lesson notes. Each stage builds
// a prompt from accumulated context, invokes the model chain and returns
// raw markdown. Failures are returned as errors, never folded into the
// generated text.
package generate

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/edukits/curriculum-builder-go/internal/errors"
	"github.com/edukits/curriculum-builder-go/internal/llm"
	"github.com/edukits/curriculum-builder-go/internal/logger"
	"github.com/edukits/curriculum-builder-go/internal/prompt"
)

// Stage identifies one step of the pipeline.
type Stage string

const (
	StageSchemeOfWork Stage = "scheme_of_work"
	StageLessonPlan   Stage = "lesson_plan"
	StageLessonNotes  Stage = "lesson_notes"
)

// Request carries the accumulated context for one generation call.
// Stage-specific fields left empty are substituted with safe defaults.
type Request struct {
	Subject    string
	GradeLevel string
	Topic      string

	// Scheme and lesson-plan stages.
	CurriculumContext string

	// Lesson-plan stage only.
	TeachingConstraints string

	// Lesson-notes stage only; both are week-scoped slices.
	SchemeContext     string
	LessonPlanContext string
}

// MetricsRecorder records generation outcomes. Implemented by
// *metrics.Metrics; nil disables recording.
type MetricsRecorder interface {
	RecordGeneration(stage, status string, duration float64)
}

// Engine invokes the model for a single stage.
type Engine struct {
	invoker  llm.Invoker
	logger   *logger.Logger
	recorder MetricsRecorder
}

// NewEngine wires the generation model chain.
func NewEngine(invoker llm.Invoker, log *logger.Logger, recorder MetricsRecorder) *Engine {
	return &Engine{invoker: invoker, logger: log, recorder: recorder}
}

// Generate builds the stage prompt and invokes the model. The returned
// text is the raw model output; errors are tagged with the stage so
// callers can attribute the failure.
func (e *Engine) Generate(ctx context.Context, stage Stage, req Request) (string, error) {
	var p string
	switch stage {
	case StageSchemeOfWork:
		p = prompt.SchemeOfWork(req.Subject, req.GradeLevel, req.Topic, req.CurriculumContext)
	case StageLessonPlan:
		p = prompt.LessonPlan(req.Subject, req.GradeLevel, req.Topic, req.CurriculumContext, req.TeachingConstraints)
	case StageLessonNotes:
		p = prompt.LessonNotes(req.Subject, req.GradeLevel, req.Topic, req.SchemeContext, req.LessonPlanContext)
	default:
		return "", apperrors.NewValidationError("stage", fmt.Sprintf("unknown generation stage %q", stage))
	}

	start := time.Now()
	content, err := e.invoker.Invoke(ctx, p)
	duration := time.Since(start)

	if err != nil {
		e.record(stage, "error", duration)
		if e.logger != nil {
			e.logger.WithError(err).WithFields(map[string]any{
				"stage":       string(stage),
				"duration_ms": duration.Milliseconds(),
			}).Error("generation stage failed")
		}
		return "", &apperrors.GenerationError{Stage: string(stage), Err: err}
	}

	e.record(stage, "success", duration)
	if e.logger != nil {
		e.logger.WithFields(map[string]any{
			"stage":       string(stage),
			"duration_ms": duration.Milliseconds(),
			"chars":       len(content),
		}).Info("generation stage completed")
	}
	return content, nil
}

func (e *Engine) record(stage Stage, status string, duration time.Duration) {
	if e.recorder != nil {
		e.recorder.RecordGeneration(string(stage), status, duration.Seconds())
	}
}
