package dto

import "time"

// SubmitAnswerRequest is the student-facing submission payload. The answer
// is opaque to the transport: a bare string or a JSON string array for
// multi-select questions.
type SubmitAnswerRequest struct {
	Answer string `json:"answer"`
}

// OverrideScoreRequest is the faculty score-override payload. Score is a
// pointer so a missing field is distinguishable from an explicit zero.
type OverrideScoreRequest struct {
	Score *float64 `json:"score"`
}

// AssignmentResponse reflects an assignment's grading state back to the
// caller.
type AssignmentResponse struct {
	ID          string     `json:"id"`
	QuizID      string     `json:"quiz_id"`
	QuestionID  string     `json:"question_id"`
	StudentID   string     `json:"student_id"`
	Completed   bool       `json:"completed"`
	Score       *float64   `json:"score,omitempty"`
	IsGraded    bool       `json:"is_graded"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
}

// RankingEntry is one row of a quiz's live leaderboard.
type RankingEntry struct {
	StudentID        string  `json:"student_id"`
	TotalScore       float64 `json:"total_score"`
	MaxPossibleScore float64 `json:"max_possible_score"`
	Rank             int     `json:"rank"`
	Percentile       float64 `json:"percentile"`
}

// PerformanceResponse is a single student's live aggregate on a quiz.
type PerformanceResponse struct {
	QuizID           string  `json:"quiz_id"`
	StudentID        string  `json:"student_id"`
	TotalScore       float64 `json:"total_score"`
	MaxPossibleScore float64 `json:"max_possible_score"`
	Rank             int     `json:"rank"`
	Percentile       float64 `json:"percentile"`
}

// ResultResponse is one frozen result snapshot.
type ResultResponse struct {
	StudentID        string    `json:"student_id"`
	Score            float64   `json:"score"`
	MaxScore         float64   `json:"max_score"`
	Rank             int       `json:"rank"`
	Percentile       float64   `json:"percentile"`
	TimeTakenMinutes int       `json:"time_taken_minutes"`
	FinalizedAt      time.Time `json:"finalized_at"`
}

// QuizTotalResponse carries a recomputed quiz total back to the caller.
type QuizTotalResponse struct {
	QuizID     string  `json:"quiz_id"`
	TotalScore float64 `json:"total_score"`
}

// GenerateResultsResponse reports the outcome of a finalization request.
type GenerateResultsResponse struct {
	QuizID    string `json:"quiz_id"`
	Finalized bool   `json:"finalized"`
	Results   int    `json:"results"`
}
