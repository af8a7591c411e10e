package evaluate

import (
	"errors"
	"strings"
	"testing"

	apperrors "github.com/edukits/curriculum-builder-go/internal/errors"
)

const wellFormedReport = `{"accuracy": {` +
	`"curriculum_compliance": {"score": 5, "reason": "follows curriculum"}, ` +
	`"topic_relevance": {"score": 4, "reason": "on topic"}, ` +
	`"content_consistency": {"score": 4, "reason": "consistent"}, ` +
	`"quality_readability": {"score": 3, "reason": "readable"}, ` +
	`"cultural_relevance": {"score": 4, "reason": "relevant"}}, ` +
	`"bias": {"score": 5, "reason": "no bias detected"}}`

func TestDecode_DirectLayer(t *testing.T) {
	t.Parallel()

	result, layer, err := Decode(wellFormedReport)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if layer != LayerDirect {
		t.Errorf("layer = %q, want direct", layer)
	}
	if result.Accuracy.CurriculumCompliance.Score != 5 {
		t.Errorf("curriculum_compliance = %+v", result.Accuracy.CurriculumCompliance)
	}
	if result.Bias.Score != 5 || result.Bias.Reason != "no bias detected" {
		t.Errorf("bias = %+v", result.Bias)
	}
	// (5+4+4+3+4)/5 when the model omits overall_accuracy.
	if result.OverallAccuracy != 4.0 {
		t.Errorf("overall_accuracy = %v, want 4.0", result.OverallAccuracy)
	}
}

func TestDecode_ExplicitOverallAccuracy(t *testing.T) {
	t.Parallel()

	response := strings.TrimSuffix(wellFormedReport, "}") + `, "overall_accuracy": 3.8}`
	result, layer, err := Decode(response)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if layer != LayerDirect {
		t.Errorf("layer = %q, want direct", layer)
	}
	if result.OverallAccuracy != 3.8 {
		t.Errorf("overall_accuracy = %v, want the model's value", result.OverallAccuracy)
	}
}

func TestDecode_FencedLayer(t *testing.T) {
	t.Parallel()

	response := "Here is my evaluation of the content:\n\n```json\n" + wellFormedReport + "\n```\n\nLet me know if you need more."
	result, layer, err := Decode(response)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if layer != LayerFenced {
		t.Errorf("layer = %q, want fenced", layer)
	}
	if result.Accuracy.TopicRelevance.Score != 4 {
		t.Errorf("topic_relevance = %+v", result.Accuracy.TopicRelevance)
	}
}

func TestDecode_ExtractedLayerRepairsArtifacts(t *testing.T) {
	t.Parallel()

	broken := `{"accuracy": {` +
		`"curriculum_compliance": {"score": 5, "reason": "good"}, ` +
		`"topic_relevance": {"score": 4, "reason": "fine"}, ` +
		`"content_consistency": {"score": 4, "reason": "ok"}, ` +
		`"quality_readability": {"score": 3, "reason": "fair"}, ` +
		`"cultural_relevance": {"score": 4, "reason": "good"}}, ` +
		"\"bias\": {\"score\": 5, \"reason\": \"none\"},\n}"
	response := "The evaluation follows. " + broken

	result, layer, err := Decode(response)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if layer != LayerExtracted {
		t.Errorf("layer = %q, want extracted", layer)
	}
	if result.Bias.Score != 5 {
		t.Errorf("bias = %+v", result.Bias)
	}
}

func TestDecode_PartialLayer(t *testing.T) {
	t.Parallel()

	response := `The model rambled. "curriculum_compliance": {"score": 4, "reason": "aligned"} and then ` +
		`"topic relevance": {"score": 3, "reason": "mostly on topic"} plus ` +
		`"Bias": {"score": 5, "reason": "none found"}`

	result, layer, err := Decode(response)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if layer != LayerPartial {
		t.Errorf("layer = %q, want partial", layer)
	}
	if result.Accuracy.CurriculumCompliance.Score != 4 {
		t.Errorf("curriculum_compliance = %+v", result.Accuracy.CurriculumCompliance)
	}
	// "topic relevance" normalizes to the topic_relevance field.
	if result.Accuracy.TopicRelevance.Score != 3 {
		t.Errorf("topic_relevance = %+v", result.Accuracy.TopicRelevance)
	}
	if result.Bias.Score != 5 || result.Bias.Reason != "none found" {
		t.Errorf("bias = %+v", result.Bias)
	}
	// Recomputed over the two recovered accuracy scores only.
	if result.OverallAccuracy != 3.5 {
		t.Errorf("overall_accuracy = %v, want 3.5", result.OverallAccuracy)
	}
}

func TestDecode_OutOfRangeScoreIsRejected(t *testing.T) {
	t.Parallel()

	response := strings.Replace(wellFormedReport, `"score": 5, "reason": "follows curriculum"`, `"score": 9, "reason": "follows curriculum"`, 1)

	_, layer, err := Decode(response)
	if !apperrors.IsInvalidInput(err) {
		t.Fatalf("Decode() error = %v, want validation error", err)
	}
	// Out-of-range values in well-formed JSON never reach regex recovery.
	if layer == LayerPartial || layer == LayerFailed {
		t.Errorf("layer = %q, want rejection at the structured layer", layer)
	}
}

func TestDecode_OutOfRangeInFencedBlock(t *testing.T) {
	t.Parallel()

	bad := strings.Replace(wellFormedReport, `"score": 5, "reason": "no bias detected"`, `"score": 7, "reason": "no bias detected"`, 1)
	response := "Result:\n```json\n" + bad + "\n```"

	_, layer, err := Decode(response)
	if !apperrors.IsInvalidInput(err) {
		t.Fatalf("Decode() error = %v, want validation error", err)
	}
	if layer != LayerFenced {
		t.Errorf("layer = %q, want fenced", layer)
	}
}

func TestDecode_MalformedSchemaValues(t *testing.T) {
	t.Parallel()

	_, _, err := Decode(`{"accuracy": "not an object", "bias": {"score": 1, "reason": "x"}}`)
	if !apperrors.IsInvalidInput(err) {
		t.Errorf("Decode() error = %v, want validation error for malformed schema values", err)
	}
}

func TestDecode_AllLayersFail(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("nothing decodable here ", 40)
	_, layer, err := Decode(long)
	if layer != LayerFailed {
		t.Errorf("layer = %q, want failed", layer)
	}

	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("Decode() error type = %T, want *DecodeError", err)
	}
	if !strings.HasSuffix(decodeErr.ResponseSample, "...") {
		t.Error("long responses should be truncated with an ellipsis")
	}
	if len(decodeErr.ResponseSample) > 503 {
		t.Errorf("sample length = %d, want at most 500 chars plus ellipsis", len(decodeErr.ResponseSample))
	}
}

func TestDecode_Idempotent(t *testing.T) {
	t.Parallel()

	a, layerA, _ := Decode(wellFormedReport)
	b, layerB, _ := Decode(wellFormedReport)
	if layerA != layerB || *a != *b {
		t.Error("Decode() is not deterministic")
	}
}
