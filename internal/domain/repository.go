package domain

import (
	"context"
	"time"
)

// QuestionRepository defines the interface for question persistence
type QuestionRepository interface {
	// GetByID retrieves a question by its ID
	GetByID(ctx context.Context, id string) (*Question, error)

	// ListByQuiz returns all questions currently attached to a quiz
	ListByQuiz(ctx context.Context, quizID string) ([]*Question, error)

	// SumMaxScores returns the live sum of max scores over a quiz's questions
	SumMaxScores(ctx context.Context, quizID string) (float64, error)
}

// QuizRepository defines the interface for quiz persistence
type QuizRepository interface {
	// GetByID retrieves a quiz by its ID
	GetByID(ctx context.Context, id string) (*Quiz, error)

	// UpdateTotalScore writes the recomputed cached total
	UpdateTotalScore(ctx context.Context, quizID string, total float64) error
}

// AssignmentRepository defines the interface for quiz assignment persistence
type AssignmentRepository interface {
	// GetByID retrieves an assignment by its ID
	GetByID(ctx context.Context, id string) (*QuizAssignment, error)

	// Update persists answer, score and grading state changes
	Update(ctx context.Context, assignment *QuizAssignment) error

	// SumGradedScores sums scores over graded, completed assignments for
	// one (quiz, student) pair
	SumGradedScores(ctx context.Context, quizID, studentID string) (float64, error)

	// LatestSubmission returns the most recent submitted_at among a
	// student's completed assignments on a quiz, or nil when none exists
	LatestSubmission(ctx context.Context, quizID, studentID string) (*time.Time, error)
}

// PerformanceRepository defines the interface for the derived aggregate rows
type PerformanceRepository interface {
	// Get retrieves the performance row for one (quiz, student) pair
	Get(ctx context.Context, quizID, studentID string) (*StudentPerformance, error)

	// ListByQuiz returns every performance row on a quiz, ordered by
	// total score descending
	ListByQuiz(ctx context.Context, quizID string) ([]*StudentPerformance, error)

	// Upsert inserts or replaces the row keyed by (quiz, student)
	Upsert(ctx context.Context, performance *StudentPerformance) error

	// UpdateRanking writes the recomputed rank and percentile for one row
	UpdateRanking(ctx context.Context, performance *StudentPerformance) error

	// SyncMaxPossibleScore propagates a recomputed quiz total to every
	// performance row on the quiz
	SyncMaxPossibleScore(ctx context.Context, quizID string, total float64) error
}

// ResultRepository defines the interface for the immutable result snapshots
type ResultRepository interface {
	// ListByQuiz returns the finalized results for a quiz, best score first
	ListByQuiz(ctx context.Context, quizID string) ([]*QuizResult, error)

	// Upsert inserts or replaces the snapshot keyed by (quiz, student)
	Upsert(ctx context.Context, result *QuizResult) error
}

// TransactionManager runs a function within a database transaction. The
// transaction is stored in the context so repositories participate
// transparently.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Cache abstracts the key-value cache used for leaderboard reads.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}
