package scoring

import (
	"encoding/json"
	"strings"

	"quiz-score/internal/domain"
)

// Evaluate scores a student's submitted answer against a question's
// reference answer. Scoring is all-or-nothing: the result is either
// maxScore or 0, never partial credit.
//
// The function fails closed: an empty submission, a malformed payload or a
// corrupt reference answer scores 0 instead of returning an error. Callers
// that need to distinguish "wrong" from "corrupt" must validate the
// question up front.
func Evaluate(qType domain.QuestionType, correctAnswer []string, maxScore float64, studentAnswer string) float64 {
	if maxScore <= 0 {
		return 0
	}
	if strings.TrimSpace(studentAnswer) == "" {
		return 0
	}

	switch qType {
	case domain.QuestionTypeMultipleChoice:
		return evaluateMultipleChoice(correctAnswer, maxScore, studentAnswer)
	case domain.QuestionTypeTrueFalse:
		return evaluateTrueFalse(correctAnswer, maxScore, studentAnswer)
	case domain.QuestionTypeShortAnswer:
		return evaluateShortAnswer(correctAnswer, maxScore, studentAnswer)
	default:
		return 0
	}
}

// evaluateMultipleChoice awards full marks iff every reference answer is
// present in the student's selection set. Extra selections do not cost
// marks; the containment check runs in one direction only.
func evaluateMultipleChoice(correctAnswer []string, maxScore float64, studentAnswer string) float64 {
	if len(correctAnswer) == 0 {
		return 0
	}

	selected := toSelectionSet(studentAnswer)
	for _, want := range correctAnswer {
		if _, ok := selected[strings.TrimSpace(want)]; !ok {
			return 0
		}
	}
	return maxScore
}

func evaluateTrueFalse(correctAnswer []string, maxScore float64, studentAnswer string) float64 {
	if len(correctAnswer) == 0 {
		return 0
	}
	want := normalize(correctAnswer[0])
	if want == "" {
		return 0
	}
	if normalize(studentAnswer) == want {
		return maxScore
	}
	return 0
}

// evaluateShortAnswer compares the normalized submission against each
// reference value; any match earns full marks.
func evaluateShortAnswer(correctAnswer []string, maxScore float64, studentAnswer string) float64 {
	got := normalize(studentAnswer)
	if got == "" {
		return 0
	}
	for _, want := range correctAnswer {
		if got == normalize(want) {
			return maxScore
		}
	}
	return 0
}

// toSelectionSet parses the opaque student answer into a set of option
// strings. A JSON string array is treated as a multi-select; anything else
// is a bare string forming a singleton set.
func toSelectionSet(studentAnswer string) map[string]struct{} {
	set := make(map[string]struct{})

	trimmed := strings.TrimSpace(studentAnswer)
	if strings.HasPrefix(trimmed, "[") {
		var selections []string
		if err := json.Unmarshal([]byte(trimmed), &selections); err != nil {
			// Malformed payload: fail closed with an empty set.
			return set
		}
		for _, s := range selections {
			s = strings.TrimSpace(s)
			if s != "" {
				set[s] = struct{}{}
			}
		}
		return set
	}

	set[trimmed] = struct{}{}
	return set
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
