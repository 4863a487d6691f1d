package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"quiz-score/internal/domain"
	"quiz-score/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

const questionColumns = `ID, QUIZ_ID, QUESTION_TEXT, QUESTION_TYPE, OPTIONS, CORRECT_ANSWER, MAX_SCORE, CREATED_BY, CREATED_AT, UPDATED_AT`

// sqlxQuestionRepository implements domain.QuestionRepository using sqlx.
type sqlxQuestionRepository struct {
	db DBTX
}

func NewSQLXQuestionRepository(db *sqlx.DB) domain.QuestionRepository {
	return &sqlxQuestionRepository{db: db}
}

func toDomainQuestion(m *models.Question) *domain.Question {
	if m == nil {
		return nil
	}
	return &domain.Question{
		ID:            m.ID,
		QuizID:        m.QuizID.String,
		Text:          m.QuestionText,
		Type:          domain.QuestionType(m.QuestionType),
		Options:       m.Options,
		CorrectAnswer: m.CorrectAnswer,
		MaxScore:      m.MaxScore,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func (r *sqlxQuestionRepository) GetByID(ctx context.Context, id string) (*domain.Question, error) {
	executor := GetExecutor(ctx, r.db)

	var m models.Question
	query := fmt.Sprintf(`SELECT %s FROM questions WHERE id = :1`, questionColumns)
	err := executor.GetContext(ctx, &m, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get question %s: %w", id, err)
	}
	return toDomainQuestion(&m), nil
}

func (r *sqlxQuestionRepository) ListByQuiz(ctx context.Context, quizID string) ([]*domain.Question, error) {
	executor := GetExecutor(ctx, r.db)

	var rows []models.Question
	query := fmt.Sprintf(`SELECT %s FROM questions WHERE quiz_id = :1 ORDER BY created_at`, questionColumns)
	if err := executor.SelectContext(ctx, &rows, query, quizID); err != nil {
		return nil, fmt.Errorf("failed to list questions for quiz %s: %w", quizID, err)
	}

	questions := make([]*domain.Question, 0, len(rows))
	for i := range rows {
		questions = append(questions, toDomainQuestion(&rows[i]))
	}
	return questions, nil
}

// SumMaxScores computes the live total in the database rather than in Go so
// the cached quiz total is derived from exactly what is attached right now.
func (r *sqlxQuestionRepository) SumMaxScores(ctx context.Context, quizID string) (float64, error) {
	executor := GetExecutor(ctx, r.db)

	var total sql.NullFloat64
	query := `SELECT SUM(max_score) FROM questions WHERE quiz_id = :1`
	if err := executor.GetContext(ctx, &total, query, quizID); err != nil {
		return 0, fmt.Errorf("failed to sum max scores for quiz %s: %w", quizID, err)
	}
	return total.Float64, nil
}
