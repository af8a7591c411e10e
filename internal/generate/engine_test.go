package generate

import (
	"context"
	"errors"
	"strings"
	"testing"

	apperrors "github.com/edukits/curriculum-builder-go/internal/errors"
	"github.com/edukits/curriculum-builder-go/internal/llm"
)

// fakeInvoker captures prompts and returns scripted responses.
type fakeInvoker struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeInvoker) Invoke(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func (f *fakeInvoker) Provider() llm.Provider { return llm.ProviderGroq }
func (f *fakeInvoker) Model() string          { return "fake-model" }
func (f *fakeInvoker) Close() error           { return nil }

type captureRecorder struct {
	stages   []string
	statuses []string
}

func (c *captureRecorder) RecordGeneration(stage, status string, _ float64) {
	c.stages = append(c.stages, stage)
	c.statuses = append(c.statuses, status)
}

func TestEngine_Generate_PromptPerStage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		stage      Stage
		wantInside string
	}{
		{name: "scheme", stage: StageSchemeOfWork, wantInside: "scheme of work"},
		{name: "lesson plan", stage: StageLessonPlan, wantInside: "lesson plan"},
		{name: "lesson notes", stage: StageLessonNotes, wantInside: "lesson notes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			invoker := &fakeInvoker{response: "generated"}
			engine := NewEngine(invoker, nil, nil)

			got, err := engine.Generate(context.Background(), tt.stage, Request{
				Subject:    "Mathematics",
				GradeLevel: "Primary 4",
				Topic:      "Fractions",
			})
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if got != "generated" {
				t.Errorf("Generate() = %q", got)
			}
			if len(invoker.prompts) != 1 || !strings.Contains(invoker.prompts[0], tt.wantInside) {
				t.Errorf("prompt missing %q", tt.wantInside)
			}
		})
	}
}

func TestEngine_Generate_UnknownStage(t *testing.T) {
	t.Parallel()

	invoker := &fakeInvoker{response: "x"}
	engine := NewEngine(invoker, nil, nil)

	_, err := engine.Generate(context.Background(), Stage("bogus"), Request{})
	if !apperrors.IsInvalidInput(err) {
		t.Errorf("Generate() error = %v, want validation error", err)
	}
	if len(invoker.prompts) != 0 {
		t.Error("unknown stage must not reach the model")
	}
}

func TestEngine_Generate_ErrorIsTagged(t *testing.T) {
	t.Parallel()

	invoker := &fakeInvoker{err: errors.New("model blew up")}
	recorder := &captureRecorder{}
	engine := NewEngine(invoker, nil, recorder)

	content, err := engine.Generate(context.Background(), StageLessonPlan, Request{
		Subject: "English", GradeLevel: "Primary 5", Topic: "Nouns",
	})
	if err == nil {
		t.Fatal("Generate() error = nil, want generation error")
	}
	// Failures must stay errors; the content result never carries error text.
	if content != "" {
		t.Errorf("Generate() content = %q, want empty on failure", content)
	}

	var genErr *apperrors.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("Generate() error type = %T, want *GenerationError", err)
	}
	if genErr.Stage != string(StageLessonPlan) {
		t.Errorf("GenerationError.Stage = %q", genErr.Stage)
	}

	if len(recorder.statuses) != 1 || recorder.statuses[0] != "error" {
		t.Errorf("recorded statuses = %v, want [error]", recorder.statuses)
	}
}

func TestEngine_Generate_RecordsSuccess(t *testing.T) {
	t.Parallel()

	recorder := &captureRecorder{}
	engine := NewEngine(&fakeInvoker{response: "ok"}, nil, recorder)

	if _, err := engine.Generate(context.Background(), StageSchemeOfWork, Request{
		Subject: "s", GradeLevel: "g", Topic: "t",
	}); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(recorder.stages) != 1 || recorder.stages[0] != "scheme_of_work" || recorder.statuses[0] != "success" {
		t.Errorf("recorded = %v / %v", recorder.stages, recorder.statuses)
	}
}
