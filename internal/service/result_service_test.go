package service

import (
	"context"
	"testing"
	"time"

	"quiz-score/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newResultFixture() (*MockQuizRepository, *MockAssignmentRepository, *MockPerformanceRepository, *MockResultRepository, *MockTransactionManager, *resultService) {
	quizzes := new(MockQuizRepository)
	assignments := new(MockAssignmentRepository)
	performances := new(MockPerformanceRepository)
	results := new(MockResultRepository)
	txManager := new(MockTransactionManager)
	svc := NewResultService(quizzes, assignments, performances, results, txManager).(*resultService)
	return quizzes, assignments, performances, results, txManager, svc
}

func closedQuiz(start, end time.Time) *domain.Quiz {
	return &domain.Quiz{
		ID:                  "quiz1",
		Title:               "Databases 101",
		CourseID:            "course1",
		QuestionsPerStudent: 5,
		TotalScore:          10.0,
		StartTime:           &start,
		EndTime:             &end,
	}
}

func TestGenerateResults(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	now := end.Add(time.Hour)

	t.Run("SnapshotsClosedQuiz", func(t *testing.T) {
		quizzes, assignments, performances, results, txManager, svc := newResultFixture()
		svc.now = func() time.Time { return now }

		quiz := closedQuiz(start, end)
		cohort := []*domain.StudentPerformance{
			{QuizID: "quiz1", StudentID: "student1", TotalScore: 9.0, MaxPossibleScore: 10.0},
			{QuizID: "quiz1", StudentID: "student2", TotalScore: 9.0, MaxPossibleScore: 10.0},
			{QuizID: "quiz1", StudentID: "student3", TotalScore: 4.0, MaxPossibleScore: 10.0},
		}
		lastSubmission := start.Add(45 * time.Minute)

		quizzes.On("GetByID", ctx, "quiz1").Return(quiz, nil)
		txManager.On("WithTransaction", ctx).Return(nil)
		performances.On("ListByQuiz", ctx, "quiz1").Return(cohort, nil)
		assignments.On("LatestSubmission", ctx, "quiz1", mock.Anything).Return(&lastSubmission, nil)

		var captured []*domain.QuizResult
		results.On("Upsert", ctx, mock.AnythingOfType("*domain.QuizResult")).
			Run(func(args mock.Arguments) {
				captured = append(captured, args.Get(1).(*domain.QuizResult))
			}).Return(nil)

		resp, err := svc.GenerateResults(ctx, "quiz1")

		assert.NoError(t, err)
		assert.True(t, resp.Finalized)
		assert.Equal(t, 3, resp.Results)
		assert.Len(t, captured, 3)

		// Positional ranks stay distinct even for the tied leaders.
		assert.Equal(t, 1, captured[0].Rank)
		assert.Equal(t, 2, captured[1].Rank)
		assert.Equal(t, 3, captured[2].Rank)
		assert.Equal(t, "student3", captured[2].StudentID)
		assert.Equal(t, 45, captured[0].TimeTakenMinutes)
		for _, r := range captured {
			assert.Equal(t, now, r.FinalizedAt)
			assert.Equal(t, 10.0, r.MaxScore)
		}
	})

	t.Run("OpenQuizIsNoOp", func(t *testing.T) {
		quizzes, _, performances, results, _, svc := newResultFixture()
		svc.now = func() time.Time { return start.Add(time.Hour) }

		quizzes.On("GetByID", ctx, "quiz1").Return(closedQuiz(start, end), nil)

		resp, err := svc.GenerateResults(ctx, "quiz1")

		assert.NoError(t, err)
		assert.False(t, resp.Finalized)
		assert.Zero(t, resp.Results)
		performances.AssertNotCalled(t, "ListByQuiz", mock.Anything, mock.Anything)
		results.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("QuizWithoutEndTimeIsNoOp", func(t *testing.T) {
		quizzes, _, _, results, _, svc := newResultFixture()
		svc.now = func() time.Time { return now }

		quiz := closedQuiz(start, end)
		quiz.EndTime = nil
		quizzes.On("GetByID", ctx, "quiz1").Return(quiz, nil)

		resp, err := svc.GenerateResults(ctx, "quiz1")

		assert.NoError(t, err)
		assert.False(t, resp.Finalized)
		results.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("EmptyCohortFinalizesZeroRows", func(t *testing.T) {
		quizzes, _, performances, results, txManager, svc := newResultFixture()
		svc.now = func() time.Time { return now }

		quizzes.On("GetByID", ctx, "quiz1").Return(closedQuiz(start, end), nil)
		txManager.On("WithTransaction", ctx).Return(nil)
		performances.On("ListByQuiz", ctx, "quiz1").Return([]*domain.StudentPerformance{}, nil)

		resp, err := svc.GenerateResults(ctx, "quiz1")

		assert.NoError(t, err)
		assert.True(t, resp.Finalized)
		assert.Zero(t, resp.Results)
		results.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("NoSubmissionMeansZeroMinutes", func(t *testing.T) {
		quizzes, assignments, performances, results, txManager, svc := newResultFixture()
		svc.now = func() time.Time { return now }

		cohort := []*domain.StudentPerformance{
			{QuizID: "quiz1", StudentID: "student1", TotalScore: 0.0, MaxPossibleScore: 10.0},
		}
		quizzes.On("GetByID", ctx, "quiz1").Return(closedQuiz(start, end), nil)
		txManager.On("WithTransaction", ctx).Return(nil)
		performances.On("ListByQuiz", ctx, "quiz1").Return(cohort, nil)
		assignments.On("LatestSubmission", ctx, "quiz1", "student1").Return(nil, nil)

		var captured *domain.QuizResult
		results.On("Upsert", ctx, mock.AnythingOfType("*domain.QuizResult")).
			Run(func(args mock.Arguments) {
				captured = args.Get(1).(*domain.QuizResult)
			}).Return(nil)

		_, err := svc.GenerateResults(ctx, "quiz1")

		assert.NoError(t, err)
		assert.Equal(t, 0, captured.TimeTakenMinutes)
	})

	t.Run("QuizNotFound", func(t *testing.T) {
		quizzes, _, _, _, _, svc := newResultFixture()
		svc.now = func() time.Time { return now }

		quizzes.On("GetByID", ctx, "missing").Return(nil, nil)

		_, err := svc.GenerateResults(ctx, "missing")

		var domainErr *domain.DomainError
		assert.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.CodeQuizNotFound, domainErr.Code)
	})
}

func TestGetResults(t *testing.T) {
	ctx := context.Background()

	t.Run("ReturnsFinalizedRows", func(t *testing.T) {
		_, _, _, results, _, svc := newResultFixture()

		finalizedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		results.On("ListByQuiz", ctx, "quiz1").Return([]*domain.QuizResult{
			{QuizID: "quiz1", StudentID: "student1", Score: 9.0, MaxScore: 10.0, Rank: 1, Percentile: 50.0, TimeTakenMinutes: 45, FinalizedAt: finalizedAt},
			{QuizID: "quiz1", StudentID: "student2", Score: 4.0, MaxScore: 10.0, Rank: 2, Percentile: 0.0, TimeTakenMinutes: 90, FinalizedAt: finalizedAt},
		}, nil)

		rows, err := svc.GetResults(ctx, "quiz1")

		assert.NoError(t, err)
		assert.Len(t, rows, 2)
		assert.Equal(t, 1, rows[0].Rank)
		assert.Equal(t, 90, rows[1].TimeTakenMinutes)
	})

	t.Run("NoResultsYet", func(t *testing.T) {
		_, _, _, results, _, svc := newResultFixture()

		results.On("ListByQuiz", ctx, "quiz1").Return([]*domain.QuizResult{}, nil)

		rows, err := svc.GetResults(ctx, "quiz1")

		assert.NoError(t, err)
		assert.Empty(t, rows)
	})
}
