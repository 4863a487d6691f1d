package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"quiz-score/internal/domain"
	"quiz-score/internal/repository/models"
	"quiz-score/internal/util"

	"github.com/jmoiron/sqlx"
)

// sqlxQuizRepository implements domain.QuizRepository using sqlx.
type sqlxQuizRepository struct {
	db DBTX
}

func NewSQLXQuizRepository(db *sqlx.DB) domain.QuizRepository {
	return &sqlxQuizRepository{db: db}
}

func toDomainQuiz(m *models.Quiz) *domain.Quiz {
	if m == nil {
		return nil
	}
	quiz := &domain.Quiz{
		ID:                  m.ID,
		Title:               m.Title,
		CourseID:            m.CourseID,
		QuestionsPerStudent: m.QuestionsPerStudent,
		TotalScore:          m.TotalScore,
		StartTime:           util.NullTimeToPtr(m.StartTime),
		EndTime:             util.NullTimeToPtr(m.EndTime),
		CreatedBy:           m.CreatedBy,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
	if m.TimeLimitMinutes.Valid {
		quiz.TimeLimitMinutes = int(m.TimeLimitMinutes.Int64)
	}
	return quiz
}

func (r *sqlxQuizRepository) GetByID(ctx context.Context, id string) (*domain.Quiz, error) {
	executor := GetExecutor(ctx, r.db)

	var m models.Quiz
	query := `SELECT ID, TITLE, COURSE_ID, QUESTIONS_PER_STUDENT, TOTAL_SCORE, START_TIME, END_TIME, TIME_LIMIT_MINUTES, CREATED_BY, CREATED_AT, UPDATED_AT
	          FROM quizzes WHERE id = :1`
	err := executor.GetContext(ctx, &m, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quiz %s: %w", id, err)
	}
	return toDomainQuiz(&m), nil
}

func (r *sqlxQuizRepository) UpdateTotalScore(ctx context.Context, quizID string, total float64) error {
	executor := GetExecutor(ctx, r.db)

	query := `UPDATE quizzes SET total_score = :1, updated_at = :2 WHERE id = :3`
	result, err := executor.ExecContext(ctx, query, total, time.Now(), quizID)
	if err != nil {
		return fmt.Errorf("failed to update total score for quiz %s: %w", quizID, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return domain.NewQuizNotFoundError(quizID)
	}
	return nil
}
