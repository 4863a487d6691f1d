package models

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// StringSlice stores a string array as a JSON string column.
type StringSlice []string

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	jsonData, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(jsonData), nil
}

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	var bytesToParse []byte
	switch v := value.(type) {
	case []byte:
		bytesToParse = v
	case string:
		bytesToParse = []byte(v)
	default:
		return errors.New("StringSlice Scan: unsupported type " + fmt.Sprintf("%T", value))
	}

	if len(bytesToParse) == 0 || string(bytesToParse) == "null" {
		*s = StringSlice{}
		return nil
	}

	return json.Unmarshal(bytesToParse, s)
}

// Question is the QUESTIONS table row.
type Question struct {
	ID            string         `db:"ID"`
	QuizID        sql.NullString `db:"QUIZ_ID"`
	QuestionText  string         `db:"QUESTION_TEXT"`
	QuestionType  string         `db:"QUESTION_TYPE"`
	Options       StringSlice    `db:"OPTIONS"`
	CorrectAnswer StringSlice    `db:"CORRECT_ANSWER"`
	MaxScore      float64        `db:"MAX_SCORE"`
	CreatedBy     string         `db:"CREATED_BY"`
	CreatedAt     time.Time      `db:"CREATED_AT"`
	UpdatedAt     time.Time      `db:"UPDATED_AT"`
}

// Quiz is the QUIZZES table row. TOTAL_SCORE is the cached sum of the
// attached questions' MAX_SCORE values.
type Quiz struct {
	ID                  string        `db:"ID"`
	Title               string        `db:"TITLE"`
	CourseID            string        `db:"COURSE_ID"`
	QuestionsPerStudent int           `db:"QUESTIONS_PER_STUDENT"`
	TotalScore          float64       `db:"TOTAL_SCORE"`
	StartTime           sql.NullTime  `db:"START_TIME"`
	EndTime             sql.NullTime  `db:"END_TIME"`
	TimeLimitMinutes    sql.NullInt64 `db:"TIME_LIMIT_MINUTES"`
	CreatedBy           string        `db:"CREATED_BY"`
	CreatedAt           time.Time     `db:"CREATED_AT"`
	UpdatedAt           time.Time     `db:"UPDATED_AT"`
}

// QuizAssignment is the QUIZ_ASSIGNMENTS table row, unique per
// (QUIZ_ID, STUDENT_ID, QUESTION_ID).
type QuizAssignment struct {
	ID            string          `db:"ID"`
	QuizID        string          `db:"QUIZ_ID"`
	StudentID     string          `db:"STUDENT_ID"`
	QuestionID    string          `db:"QUESTION_ID"`
	StudentAnswer sql.NullString  `db:"STUDENT_ANSWER"`
	Completed     bool            `db:"COMPLETED"`
	Score         sql.NullFloat64 `db:"SCORE"`
	IsGraded      bool            `db:"IS_GRADED"`
	AssignedAt    time.Time       `db:"ASSIGNED_AT"`
	SubmittedAt   sql.NullTime    `db:"SUBMITTED_AT"`
	CreatedAt     time.Time       `db:"CREATED_AT"`
	UpdatedAt     time.Time       `db:"UPDATED_AT"`
}

// StudentPerformance is the STUDENT_PERFORMANCES table row, unique per
// (QUIZ_ID, STUDENT_ID).
type StudentPerformance struct {
	ID               string          `db:"ID"`
	QuizID           string          `db:"QUIZ_ID"`
	StudentID        string          `db:"STUDENT_ID"`
	TotalScore       float64         `db:"TOTAL_SCORE"`
	MaxPossibleScore float64         `db:"MAX_POSSIBLE_SCORE"`
	Rank             sql.NullInt64   `db:"RANK_POSITION"`
	Percentile       sql.NullFloat64 `db:"PERCENTILE"`
	CreatedAt        time.Time       `db:"CREATED_AT"`
	UpdatedAt        time.Time       `db:"UPDATED_AT"`
}

// QuizResult is the QUIZ_RESULTS table row, unique per (QUIZ_ID, STUDENT_ID).
type QuizResult struct {
	ID               string    `db:"ID"`
	QuizID           string    `db:"QUIZ_ID"`
	StudentID        string    `db:"STUDENT_ID"`
	Score            float64   `db:"SCORE"`
	MaxScore         float64   `db:"MAX_SCORE"`
	Rank             int       `db:"RANK_POSITION"`
	Percentile       float64   `db:"PERCENTILE"`
	TimeTakenMinutes int       `db:"TIME_TAKEN_MINUTES"`
	FinalizedAt      time.Time `db:"FINALIZED_AT"`
	CreatedAt        time.Time `db:"CREATED_AT"`
	UpdatedAt        time.Time `db:"UPDATED_AT"`
}
