// Package evaluate scores generated curriculum content against its
// originating context. The model is asked for a strict JSON report;
// decoding tolerates the usual LLM formatting drift through a bounded
// cascade of parse strategies.
package evaluate

import (
	"fmt"

	apperrors "github.com/edukits/curriculum-builder-go/internal/errors"
)

// MetricScore is one scored dimension with its justification.
type MetricScore struct {
	Score  int    `json:"score"`
	Reason string `json:"reason"`
}

// AccuracyMetrics are the five accuracy dimensions of a report.
type AccuracyMetrics struct {
	CurriculumCompliance MetricScore `json:"curriculum_compliance"`
	TopicRelevance       MetricScore `json:"topic_relevance"`
	ContentConsistency   MetricScore `json:"content_consistency"`
	QualityReadability   MetricScore `json:"quality_readability"`
	CulturalRelevance    MetricScore `json:"cultural_relevance"`
}

// Result is a full evaluation report. OverallAccuracy is the mean of
// the accuracy scores when the model does not supply it.
type Result struct {
	Accuracy        AccuracyMetrics `json:"accuracy"`
	Bias            MetricScore     `json:"bias"`
	OverallAccuracy float64         `json:"overall_accuracy"`
}

// accuracyScores returns the five accuracy scores in declaration order.
func (a AccuracyMetrics) accuracyScores() []int {
	return []int{
		a.CurriculumCompliance.Score,
		a.TopicRelevance.Score,
		a.ContentConsistency.Score,
		a.QualityReadability.Score,
		a.CulturalRelevance.Score,
	}
}

// Validate checks numeric ranges. Out-of-range scores in an otherwise
// well-formed report are rejected, never clamped.
func (r *Result) Validate() error {
	named := map[string]MetricScore{
		"curriculum_compliance": r.Accuracy.CurriculumCompliance,
		"topic_relevance":       r.Accuracy.TopicRelevance,
		"content_consistency":   r.Accuracy.ContentConsistency,
		"quality_readability":   r.Accuracy.QualityReadability,
		"cultural_relevance":    r.Accuracy.CulturalRelevance,
		"bias":                  r.Bias,
	}
	for name, metric := range named {
		if metric.Score < 0 || metric.Score > 5 {
			return apperrors.NewValidationError(name,
				fmt.Sprintf("score %d is outside [0,5]", metric.Score))
		}
	}
	if r.OverallAccuracy < 0 || r.OverallAccuracy > 5 {
		return apperrors.NewValidationError("overall_accuracy",
			fmt.Sprintf("value %.2f is outside [0,5]", r.OverallAccuracy))
	}
	return nil
}

// meanAccuracy computes the mean of the five accuracy scores.
func (r *Result) meanAccuracy() float64 {
	scores := r.Accuracy.accuracyScores()
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return float64(sum) / float64(len(scores))
}
