package scoring

import (
	"testing"

	"quiz-score/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateMultipleChoice(t *testing.T) {
	tests := []struct {
		name          string
		correct       []string
		studentAnswer string
		expected      float64
	}{
		{
			name:          "single correct option selected",
			correct:       []string{"Option A"},
			studentAnswer: "Option A",
			expected:      2.5,
		},
		{
			name:          "wrong option selected",
			correct:       []string{"Option A"},
			studentAnswer: "Option B",
			expected:      0,
		},
		{
			name:          "json array with all correct options",
			correct:       []string{"Option A", "Option C"},
			studentAnswer: `["Option C", "Option A"]`,
			expected:      2.5,
		},
		{
			name:          "json array missing one correct option",
			correct:       []string{"Option A", "Option C"},
			studentAnswer: `["Option A"]`,
			expected:      0,
		},
		{
			// Containment runs one way only: extra wrong selections do
			// not cost marks. See DESIGN.md.
			name:          "extra wrong option alongside all correct ones",
			correct:       []string{"Option A"},
			studentAnswer: `["Option A", "Option B"]`,
			expected:      2.5,
		},
		{
			name:          "malformed json payload",
			correct:       []string{"Option A"},
			studentAnswer: `["Option A"`,
			expected:      0,
		},
		{
			name:          "empty answer",
			correct:       []string{"Option A"},
			studentAnswer: "",
			expected:      0,
		},
		{
			name:          "empty reference answer fails closed",
			correct:       nil,
			studentAnswer: "Option A",
			expected:      0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(domain.QuestionTypeMultipleChoice, tt.correct, 2.5, tt.studentAnswer)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestEvaluateTrueFalse(t *testing.T) {
	tests := []struct {
		name          string
		correct       []string
		studentAnswer string
		expected      float64
	}{
		{"exact match", []string{"True"}, "True", 1.0},
		{"case insensitive match", []string{"True"}, "true", 1.0},
		{"whitespace trimmed", []string{"False"}, "  false  ", 1.0},
		{"wrong answer", []string{"True"}, "False", 0},
		{"empty answer", []string{"True"}, "", 0},
		{"empty reference answer", nil, "True", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(domain.QuestionTypeTrueFalse, tt.correct, 1.0, tt.studentAnswer)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestEvaluateShortAnswer(t *testing.T) {
	tests := []struct {
		name          string
		correct       []string
		studentAnswer string
		expected      float64
	}{
		{"exact match", []string{"goroutine"}, "goroutine", 3.5},
		{"case and whitespace normalized", []string{"Goroutine"}, "  goroutine ", 3.5},
		{"any reference value matches", []string{"goroutine", "green thread"}, "green thread", 3.5},
		{"no match", []string{"goroutine"}, "thread", 0},
		{"whitespace only answer", []string{"goroutine"}, "   ", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(domain.QuestionTypeShortAnswer, tt.correct, 3.5, tt.studentAnswer)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestEvaluateBounds(t *testing.T) {
	// Zero or negative max score always scores 0.
	assert.Equal(t, 0.0, Evaluate(domain.QuestionTypeShortAnswer, []string{"a"}, 0, "a"))
	assert.Equal(t, 0.0, Evaluate(domain.QuestionTypeShortAnswer, []string{"a"}, -1, "a"))

	// Unknown type falls through to 0 rather than panicking.
	assert.Equal(t, 0.0, Evaluate(domain.QuestionType("essay"), []string{"a"}, 1, "a"))
}
