package domain

import "time"

// StudentPerformance is the live aggregate for one (student, quiz) pair.
// It is a derived projection: always recomputable from the graded
// assignments for the pair plus the rest of the quiz's cohort. Never treat
// it as a source of truth.
type StudentPerformance struct {
	ID               string
	QuizID           string
	StudentID        string
	TotalScore       float64
	MaxPossibleScore float64
	Rank             int     // 1-based, dense: ties share a rank
	Percentile       float64 // 0-100, fraction of cohort strictly below
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// QuizResult is the frozen snapshot of a student's performance, produced
// once the quiz's availability window has closed. Rows are upserted keyed
// by (quiz, student) and never mutated afterwards except by re-running the
// idempotent finalization.
type QuizResult struct {
	ID               string
	QuizID           string
	StudentID        string
	Score            float64
	MaxScore         float64
	Rank             int // positional: distinct even on ties
	Percentile       float64
	TimeTakenMinutes int
	FinalizedAt      time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
