package evaluate

import (
	"context"
	"fmt"

	apperrors "github.com/edukits/curriculum-builder-go/internal/errors"
	"github.com/edukits/curriculum-builder-go/internal/llm"
	"github.com/edukits/curriculum-builder-go/internal/logger"
	"github.com/edukits/curriculum-builder-go/internal/prompt"
	"github.com/edukits/curriculum-builder-go/internal/store"
)

// Content types the evaluator can score.
const (
	ContentSchemeOfWork = "scheme_of_work"
	ContentLessonPlan   = "lesson_plan"
	ContentLessonNotes  = "lesson_notes"
)

// Evaluation is a decoded report plus the decode layer that produced
// it, so callers can see when regex recovery was needed.
type Evaluation struct {
	Result      *Result `json:"result"`
	DecodeLayer Layer   `json:"decode_layer"`
	ContextID   string  `json:"context_id"`
	ContentType string  `json:"content_type"`
}

// MetricsRecorder records evaluation outcomes. Implemented by
// *metrics.Metrics; nil disables recording.
type MetricsRecorder interface {
	RecordEvaluation(contentType, status string)
	RecordDecodeLayer(layer string)
}

// Evaluator resolves stored content by context id and scores it with a
// single model call through the low-temperature chain.
type Evaluator struct {
	invoker  llm.Invoker
	store    store.Store
	logger   *logger.Logger
	recorder MetricsRecorder
}

// New wires the evaluator dependencies.
func New(invoker llm.Invoker, st store.Store, log *logger.Logger, recorder MetricsRecorder) *Evaluator {
	return &Evaluator{invoker: invoker, store: st, logger: log, recorder: recorder}
}

// Evaluate scores the stored content of the given type for a context.
// Both the context and the content must resolve before any model call;
// absence is a NotFound error naming the missing entity.
func (e *Evaluator) Evaluate(ctx context.Context, contentType, contextID string) (*Evaluation, error) {
	if contentType != ContentSchemeOfWork && contentType != ContentLessonPlan && contentType != ContentLessonNotes {
		e.record(contentType, "error")
		return nil, apperrors.NewValidationError("content_type",
			fmt.Sprintf("unknown content type %q", contentType))
	}

	contextRecord, err := e.store.GetContext(ctx, contextID)
	if err != nil {
		e.record(contentType, "error")
		return nil, err
	}
	if contextRecord == nil {
		e.record(contentType, "error")
		return nil, apperrors.NewNotFoundError("context", contextID)
	}

	content, err := e.resolveContent(ctx, contentType, contextID)
	if err != nil {
		e.record(contentType, "error")
		return nil, err
	}

	p := prompt.Evaluation(contentType,
		contextRecord.Subject, contextRecord.GradeLevel, contextRecord.Topic,
		contextRecord.ContextText, content)

	response, err := e.invoker.Invoke(ctx, p)
	if err != nil {
		e.record(contentType, "error")
		if apperrors.IsEmptyResponse(err) {
			return nil, fmt.Errorf("evaluation model returned no content: %w", err)
		}
		return nil, fmt.Errorf("evaluation model invocation failed: %w", err)
	}

	result, layer, err := Decode(response)
	if e.recorder != nil {
		e.recorder.RecordDecodeLayer(string(layer))
	}
	if err != nil {
		e.record(contentType, "error")
		if e.logger != nil {
			e.logger.WithError(err).WithFields(map[string]any{
				"content_type": contentType,
				"context_id":   contextID,
				"decode_layer": string(layer),
			}).Error("evaluation response undecodable")
		}
		return nil, err
	}

	if layer == LayerPartial && e.logger != nil {
		e.logger.WithFields(map[string]any{
			"content_type": contentType,
			"context_id":   contextID,
		}).Warn("evaluation decoded via regex recovery, model output drifted from schema")
	}

	e.record(contentType, "success")
	return &Evaluation{
		Result:      result,
		DecodeLayer: layer,
		ContextID:   contextID,
		ContentType: contentType,
	}, nil
}

// resolveContent fetches the stored content text for a context id.
func (e *Evaluator) resolveContent(ctx context.Context, contentType, contextID string) (string, error) {
	switch contentType {
	case ContentSchemeOfWork:
		record, err := e.store.GetSchemeByContext(ctx, contextID)
		if err != nil {
			return "", err
		}
		if record == nil {
			return "", apperrors.NewNotFoundError("scheme of work", contextID)
		}
		return record.Content, nil
	case ContentLessonPlan:
		record, err := e.store.GetLessonPlanByContext(ctx, contextID)
		if err != nil {
			return "", err
		}
		if record == nil {
			return "", apperrors.NewNotFoundError("lesson plan", contextID)
		}
		return record.Content, nil
	default:
		record, err := e.store.GetLessonNotesByContext(ctx, contextID)
		if err != nil {
			return "", err
		}
		if record == nil {
			return "", apperrors.NewNotFoundError("lesson notes", contextID)
		}
		return record.Content, nil
	}
}

func (e *Evaluator) record(contentType, status string) {
	if e.recorder != nil {
		e.recorder.RecordEvaluation(contentType, status)
	}
}
