package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"quiz-score/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
)

// setupAssignmentTestDB creates a new sqlx.DB instance and sqlmock for
// assignment repository testing.
func setupAssignmentTestDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	sqlxDB := sqlx.NewDb(mockDB, "sqlmock")
	return sqlxDB, mock
}

func assignmentRows(submittedAt sql.NullTime, score sql.NullFloat64, completed, graded bool) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"ID", "QUIZ_ID", "STUDENT_ID", "QUESTION_ID", "STUDENT_ANSWER",
		"COMPLETED", "SCORE", "IS_GRADED", "ASSIGNED_AT", "SUBMITTED_AT",
		"CREATED_AT", "UPDATED_AT",
	}).AddRow(
		"assignment1", "quiz1", "student1", "question1",
		sql.NullString{String: "Paris", Valid: true},
		completed, score, graded, now.Add(-time.Hour), submittedAt, now, now,
	)
}

func TestAssignmentRepository_GetByID(t *testing.T) {
	db, mock := setupAssignmentTestDB(t)
	defer db.Close()
	repo := NewSQLXAssignmentRepository(db)
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		submitted := sql.NullTime{Time: time.Now().Add(-time.Minute), Valid: true}
		score := sql.NullFloat64{Float64: 1.5, Valid: true}
		mock.ExpectQuery(`SELECT (.+) FROM quiz_assignments WHERE id = :1`).
			WithArgs("assignment1").
			WillReturnRows(assignmentRows(submitted, score, true, true))

		assignment, err := repo.GetByID(ctx, "assignment1")

		assert.NoError(t, err)
		assert.NotNil(t, assignment)
		assert.Equal(t, "quiz1", assignment.QuizID)
		assert.Equal(t, "Paris", assignment.StudentAnswer)
		assert.True(t, assignment.Completed)
		assert.True(t, assignment.IsGraded)
		assert.NotNil(t, assignment.Score)
		assert.Equal(t, 1.5, *assignment.Score)
		assert.NotNil(t, assignment.SubmittedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UngradedHasNilScore", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM quiz_assignments WHERE id = :1`).
			WithArgs("assignment1").
			WillReturnRows(assignmentRows(sql.NullTime{}, sql.NullFloat64{}, false, false))

		assignment, err := repo.GetByID(ctx, "assignment1")

		assert.NoError(t, err)
		assert.Nil(t, assignment.Score)
		assert.Nil(t, assignment.SubmittedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFoundReturnsNil", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM quiz_assignments WHERE id = :1`).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		assignment, err := repo.GetByID(ctx, "missing")

		assert.NoError(t, err)
		assert.Nil(t, assignment)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAssignmentRepository_Update(t *testing.T) {
	db, mock := setupAssignmentTestDB(t)
	defer db.Close()
	repo := NewSQLXAssignmentRepository(db)
	ctx := context.Background()

	score := 2.0
	submittedAt := time.Now()
	assignment := &domain.QuizAssignment{
		ID:            "assignment1",
		QuizID:        "quiz1",
		StudentID:     "student1",
		QuestionID:    "question1",
		StudentAnswer: "Paris",
		Completed:     true,
		Score:         &score,
		IsGraded:      true,
		SubmittedAt:   &submittedAt,
	}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`UPDATE quiz_assignments SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Update(ctx, assignment)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("MissingRowBecomesNotFound", func(t *testing.T) {
		mock.ExpectExec(`UPDATE quiz_assignments SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(ctx, assignment)

		var domainErr *domain.DomainError
		assert.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.CodeAssignmentNotFound, domainErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAssignmentRepository_SumGradedScores(t *testing.T) {
	db, mock := setupAssignmentTestDB(t)
	defer db.Close()
	repo := NewSQLXAssignmentRepository(db)
	ctx := context.Background()

	t.Run("SumsGradedCompletedOnly", func(t *testing.T) {
		mock.ExpectQuery(`SELECT SUM\(score\) FROM quiz_assignments`).
			WithArgs("quiz1", "student1").
			WillReturnRows(sqlmock.NewRows([]string{"SUM"}).AddRow(5.5))

		total, err := repo.SumGradedScores(ctx, "quiz1", "student1")

		assert.NoError(t, err)
		assert.Equal(t, 5.5, total)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NoRowsSumsZero", func(t *testing.T) {
		// Oracle returns a NULL sum over zero rows.
		mock.ExpectQuery(`SELECT SUM\(score\) FROM quiz_assignments`).
			WithArgs("quiz1", "student1").
			WillReturnRows(sqlmock.NewRows([]string{"SUM"}).AddRow(nil))

		total, err := repo.SumGradedScores(ctx, "quiz1", "student1")

		assert.NoError(t, err)
		assert.Equal(t, 0.0, total)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAssignmentRepository_LatestSubmission(t *testing.T) {
	db, mock := setupAssignmentTestDB(t)
	defer db.Close()
	repo := NewSQLXAssignmentRepository(db)
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		last := time.Date(2026, 3, 1, 9, 45, 0, 0, time.UTC)
		mock.ExpectQuery(`SELECT MAX\(submitted_at\) FROM quiz_assignments`).
			WithArgs("quiz1", "student1").
			WillReturnRows(sqlmock.NewRows([]string{"MAX"}).AddRow(last))

		latest, err := repo.LatestSubmission(ctx, "quiz1", "student1")

		assert.NoError(t, err)
		assert.NotNil(t, latest)
		assert.True(t, last.Equal(*latest))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NoSubmissions", func(t *testing.T) {
		mock.ExpectQuery(`SELECT MAX\(submitted_at\) FROM quiz_assignments`).
			WithArgs("quiz1", "student1").
			WillReturnRows(sqlmock.NewRows([]string{"MAX"}).AddRow(nil))

		latest, err := repo.LatestSubmission(ctx, "quiz1", "student1")

		assert.NoError(t, err)
		assert.Nil(t, latest)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
