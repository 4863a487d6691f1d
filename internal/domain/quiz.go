package domain

import (
	"time"
)

// QuestionType is the closed set of gradable question kinds.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "mcq"
	QuestionTypeTrueFalse      QuestionType = "true_false"
	QuestionTypeShortAnswer    QuestionType = "short_answer"
)

// IsValid reports whether the type is one of the known variants.
func (t QuestionType) IsValid() bool {
	switch t {
	case QuestionTypeMultipleChoice, QuestionTypeTrueFalse, QuestionTypeShortAnswer:
		return true
	}
	return false
}

// Question represents a single gradable question. A question may exist
// unattached (QuizID empty) while it is being authored.
type Question struct {
	ID            string
	QuizID        string
	Text          string
	Type          QuestionType
	Options       []string // multiple-choice only
	CorrectAnswer []string // one or more reference values
	MaxScore      float64
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewQuestion creates a new Question instance with the default max score.
func NewQuestion(text string, qType QuestionType, options, correctAnswer []string, createdBy string) *Question {
	now := time.Now()
	return &Question{
		Text:          text,
		Type:          qType,
		Options:       options,
		CorrectAnswer: correctAnswer,
		MaxScore:      1.0,
		CreatedBy:     createdBy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Validate validates the question
func (q *Question) Validate() error {
	if q.Text == "" {
		return NewValidationError("question text is required")
	}
	if !q.Type.IsValid() {
		return NewValidationError("question type must be one of mcq, true_false, short_answer")
	}
	if len(q.CorrectAnswer) == 0 {
		return NewValidationError("at least one correct answer is required")
	}
	if q.MaxScore < 0 {
		return NewValidationError("max score must not be negative")
	}
	switch q.Type {
	case QuestionTypeMultipleChoice:
		if len(q.Options) == 0 {
			return NewValidationError("options are required for multiple-choice questions")
		}
		for _, ans := range q.CorrectAnswer {
			if !contains(q.Options, ans) {
				return NewValidationError("correct answer '" + ans + "' must be one of the options")
			}
		}
	case QuestionTypeTrueFalse:
		if len(q.CorrectAnswer) != 1 {
			return NewValidationError("true/false questions take exactly one correct answer")
		}
	}
	return nil
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

// Quiz represents a quiz whose questions are graded by this engine.
// TotalScore is a derived cache of the sum of its questions' max scores and
// must be recomputed whenever a question is saved or removed.
type Quiz struct {
	ID                  string
	Title               string
	CourseID            string
	QuestionsPerStudent int
	TotalScore          float64
	StartTime           *time.Time
	EndTime             *time.Time
	TimeLimitMinutes    int
	CreatedBy           string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsClosed reports whether the quiz's availability window has passed.
// A quiz without an end time is always open and never auto-finalizes.
func (q *Quiz) IsClosed(now time.Time) bool {
	return q.EndTime != nil && now.After(*q.EndTime)
}

// Validate validates the quiz
func (q *Quiz) Validate() error {
	if q.Title == "" {
		return NewValidationError("title is required")
	}
	if q.QuestionsPerStudent <= 0 {
		return NewValidationError("questions per student must be positive")
	}
	if q.StartTime != nil && q.EndTime != nil && q.EndTime.Before(*q.StartTime) {
		return NewValidationError("end time must not precede start time")
	}
	return nil
}

// QuizAssignment is the unit of grading: one (quiz, student, question)
// triple, unique per triple.
type QuizAssignment struct {
	ID            string
	QuizID        string
	StudentID     string
	QuestionID    string
	StudentAnswer string
	Completed     bool
	Score         *float64
	IsGraded      bool
	AssignedAt    time.Time
	SubmittedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Submit records the student's answer and marks the assignment completed.
func (a *QuizAssignment) Submit(answer string, at time.Time) error {
	if a.Completed {
		return NewAlreadySubmittedError(a.ID)
	}
	a.StudentAnswer = answer
	a.Completed = true
	a.SubmittedAt = &at
	return nil
}
