package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/Nephrolytics-ai/auralex/pkg/model"
)

// UnverifiedAccuracyNote replaces the accuracy note whenever the confidence
// score cannot be trusted.
const UnverifiedAccuracyNote = "Could not verify accuracy."

var codeFencePattern = regexp.MustCompile("(?i)```(?:json)?")

// ParseContent turns raw model output into GeneratedContent. Only the
// confidence score and theses are repaired; any other missing or mistyped
// field is a malformed-output failure.
func ParseContent(raw string, strictQuiz bool) (model.GeneratedContent, error) {
	cleaned := stripCodeFences(raw)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		return model.GeneratedContent{}, malformed(fmt.Errorf("JSON parse: %w", err))
	}
	if fields == nil {
		return model.GeneratedContent{}, malformed(errors.New("JSON payload is not an object"))
	}

	var content model.GeneratedContent
	score, scoreOK := parseConfidence(fields["confidenceScore"])

	decoders := []struct {
		name     string
		target   any
		required bool
	}{
		{name: "title", target: &content.Title, required: true},
		{name: "accuracyNote", target: &content.AccuracyNote, required: scoreOK},
		{name: "summary", target: &content.Summary, required: true},
		{name: "theses", target: &content.Theses, required: false},
		{name: "examples", target: &content.Examples, required: true},
		{name: "runningNotes", target: &content.RunningNotes, required: true},
		{name: "quiz", target: &content.Quiz, required: true},
	}
	for _, d := range decoders {
		if err := decodeField(fields, d.name, d.target, d.required); err != nil {
			return model.GeneratedContent{}, malformed(err)
		}
	}

	if scoreOK {
		content.ConfidenceScore = score
	} else {
		content.ConfidenceScore = 0
		content.AccuracyNote = UnverifiedAccuracyNote
	}

	if strictQuiz {
		for i, item := range content.Quiz {
			if !item.Valid() {
				return model.GeneratedContent{}, malformed(fmt.Errorf(
					"quiz[%d] correctAnswer %d does not index %d options", i, item.CorrectAnswer, len(item.Options),
				))
			}
		}
	}

	return Normalize(content), nil
}

// Normalize applies the defaults every consumer relies on. It is idempotent.
func Normalize(content model.GeneratedContent) model.GeneratedContent {
	if !validConfidence(content.ConfidenceScore) {
		content.ConfidenceScore = 0
		content.AccuracyNote = UnverifiedAccuracyNote
	}
	if content.Theses == nil {
		content.Theses = []string{}
	}
	if content.Summary == nil {
		content.Summary = []string{}
	}
	if content.Examples == nil {
		content.Examples = []string{}
	}
	if content.Quiz == nil {
		content.Quiz = []model.QuizItem{}
	}
	return content
}

func stripCodeFences(text string) string {
	return strings.TrimSpace(codeFencePattern.ReplaceAllString(text, ""))
}

func parseConfidence(raw json.RawMessage) (float64, bool) {
	if isJSONNull(raw) {
		return 0, false
	}
	var score float64
	if err := json.Unmarshal(raw, &score); err != nil {
		return 0, false
	}
	return score, validConfidence(score)
}

func validConfidence(score float64) bool {
	return !math.IsNaN(score) && score >= 0 && score <= 100
}

func decodeField(fields map[string]json.RawMessage, name string, target any, required bool) error {
	raw, ok := fields[name]
	if !ok || isJSONNull(raw) {
		if required {
			return fmt.Errorf("required field %q is missing", name)
		}
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("field %q: %w", name, err)
	}
	return nil
}

func isJSONNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func malformed(err error) error {
	return model.NewFailure(model.FailureMalformedOutput, err)
}
