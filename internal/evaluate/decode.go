package evaluate

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	apperrors "github.com/edukits/curriculum-builder-go/internal/errors"
)

// Layer names the decode strategy that produced a result. Surfaced for
// observability so regex recovery never silently masks schema drift.
type Layer string

const (
	LayerDirect    Layer = "direct"    // whole response parsed as the schema
	LayerFenced    Layer = "fenced"    // ```json block extracted and parsed
	LayerExtracted Layer = "extracted" // brace span extracted, repaired, parsed
	LayerPartial   Layer = "partial"   // regex-recovered score/reason pairs
	LayerFailed    Layer = "failed"    // nothing decodable
)

const responseSampleLimit = 500

var (
	fencedBlockRe  = regexp.MustCompile("(?s)```json\\n(.*?)\\n```")
	braceSpanRe    = regexp.MustCompile(`\{[\s\S]*\}`)
	trailingComma  = regexp.MustCompile(`,\s*\n\s*}`)
	controlCharsRe = regexp.MustCompile(`[\x00-\x1f]`)
	scoreReasonRe  = regexp.MustCompile(`(?i)"([\w\s]+)"\s*:\s*\{\s*"score"\s*:\s*(\d)\s*,\s*"reason"\s*:\s*"([^"]+)"`)
)

// DecodeError reports an undecodable response, carrying a truncated
// sample of the raw text for diagnosis.
type DecodeError struct {
	Message        string `json:"message"`
	ResponseSample string `json:"response_sample"`
}

func (e *DecodeError) Error() string {
	return e.Message
}

// Decode turns a raw model response into a Result, attempting in strict
// order: direct parse, fenced-block parse, repaired brace-span parse,
// and finally regex pair extraction. A response that parses as the
// schema but fails range validation is rejected immediately; layer 4
// recovers content from unstructured text, it does not repair invalid
// structured values.
func Decode(response string) (*Result, Layer, error) {
	// Layer 1: the whole response is the JSON report.
	if result, ok, err := parseSchema(response); ok || err != nil {
		return result, LayerDirect, err
	}

	// Layer 2: report wrapped in a fenced code block with prose around it.
	if m := fencedBlockRe.FindStringSubmatch(response); m != nil {
		if result, ok, err := parseSchema(m[1]); ok || err != nil {
			return result, LayerFenced, err
		}
	}

	// Layer 3: first brace-delimited span, with common artifacts repaired.
	if span := braceSpanRe.FindString(response); span != "" {
		repaired := trailingComma.ReplaceAllString(span, "}")
		repaired = controlCharsRe.ReplaceAllString(repaired, "")
		if result, ok, err := parseSchema(repaired); ok || err != nil {
			return result, LayerExtracted, err
		}
	}

	// Layer 4: recover (name, score, reason) triples from free text.
	if result := extractPairs(response); result != nil {
		return result, LayerPartial, nil
	}

	return nil, LayerFailed, &DecodeError{
		Message:        "could not parse evaluation response",
		ResponseSample: truncate(response, responseSampleLimit),
	}
}

// parseSchema attempts to read text as the evaluation report. Returns
// ok=false when the text is not the target schema (caller tries the
// next layer); returns a non-nil error only for range violations in a
// correctly shaped report, which must not fall through.
func parseSchema(text string) (*Result, bool, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &probe); err != nil {
		return nil, false, nil
	}
	if _, hasAccuracy := probe["accuracy"]; !hasAccuracy {
		if _, hasBias := probe["bias"]; !hasBias {
			return nil, false, nil
		}
	}

	var wire struct {
		Accuracy        AccuracyMetrics `json:"accuracy"`
		Bias            MetricScore     `json:"bias"`
		OverallAccuracy *float64        `json:"overall_accuracy"`
	}
	if err := json.Unmarshal([]byte(text), &wire); err != nil {
		// The accuracy/bias keys are present, so this is the target
		// schema with malformed values, not a different payload.
		return nil, true, apperrors.NewValidationError("schema", err.Error())
	}

	result := &Result{Accuracy: wire.Accuracy, Bias: wire.Bias}
	if wire.OverallAccuracy != nil {
		result.OverallAccuracy = *wire.OverallAccuracy
	} else {
		result.OverallAccuracy = result.meanAccuracy()
	}

	if err := result.Validate(); err != nil {
		return nil, true, err
	}
	return result, true, nil
}

// extractPairs scans free text for "name": {"score": n, "reason": "…"}
// fragments. Names containing "bias" fill the bias field; the rest map
// onto the accuracy metrics by normalized name. Returns nil when no
// pairs are found.
func extractPairs(response string) *Result {
	pairs := scoreReasonRe.FindAllStringSubmatch(response, -1)
	if len(pairs) == 0 {
		return nil
	}

	result := &Result{}
	var accuracySum, accuracyCount int
	matched := false

	for _, pair := range pairs {
		name := strings.TrimSpace(strings.ToLower(pair[1]))
		name = strings.ReplaceAll(name, " ", "_")
		score, err := strconv.Atoi(pair[2])
		if err != nil {
			continue
		}
		metric := MetricScore{Score: score, Reason: pair[3]}

		if strings.Contains(name, "bias") {
			result.Bias = metric
			matched = true
			continue
		}

		if setAccuracyMetric(&result.Accuracy, name, metric) {
			accuracySum += score
			accuracyCount++
			matched = true
		}
	}

	if !matched {
		return nil
	}
	if accuracyCount > 0 {
		result.OverallAccuracy = float64(accuracySum) / float64(accuracyCount)
	}
	return result
}

func setAccuracyMetric(a *AccuracyMetrics, name string, metric MetricScore) bool {
	switch name {
	case "curriculum_compliance":
		a.CurriculumCompliance = metric
	case "topic_relevance":
		a.TopicRelevance = metric
	case "content_consistency":
		a.ContentConsistency = metric
	case "quality_readability":
		a.QualityReadability = metric
	case "cultural_relevance":
		a.CulturalRelevance = metric
	default:
		return false
	}
	return true
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return fmt.Sprintf("%s...", s[:limit])
}
