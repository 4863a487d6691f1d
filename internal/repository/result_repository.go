package repository

import (
	"context"
	"fmt"
	"time"

	"quiz-score/internal/domain"
	"quiz-score/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

// sqlxResultRepository implements domain.ResultRepository using sqlx.
type sqlxResultRepository struct {
	db DBTX
}

func NewSQLXResultRepository(db *sqlx.DB) domain.ResultRepository {
	return &sqlxResultRepository{db: db}
}

func toDomainResult(m *models.QuizResult) *domain.QuizResult {
	if m == nil {
		return nil
	}
	return &domain.QuizResult{
		ID:               m.ID,
		QuizID:           m.QuizID,
		StudentID:        m.StudentID,
		Score:            m.Score,
		MaxScore:         m.MaxScore,
		Rank:             m.Rank,
		Percentile:       m.Percentile,
		TimeTakenMinutes: m.TimeTakenMinutes,
		FinalizedAt:      m.FinalizedAt,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func (r *sqlxResultRepository) ListByQuiz(ctx context.Context, quizID string) ([]*domain.QuizResult, error) {
	executor := GetExecutor(ctx, r.db)

	var rows []models.QuizResult
	query := `SELECT ID, QUIZ_ID, STUDENT_ID, SCORE, MAX_SCORE, RANK_POSITION, PERCENTILE, TIME_TAKEN_MINUTES, FINALIZED_AT, CREATED_AT, UPDATED_AT
	          FROM quiz_results WHERE quiz_id = :1 ORDER BY rank_position`
	if err := executor.SelectContext(ctx, &rows, query, quizID); err != nil {
		return nil, fmt.Errorf("failed to list results for quiz %s: %w", quizID, err)
	}

	results := make([]*domain.QuizResult, 0, len(rows))
	for i := range rows {
		results = append(results, toDomainResult(&rows[i]))
	}
	return results, nil
}

// Upsert keys on (quiz, student) so re-running finalization replaces the
// snapshot instead of duplicating it.
func (r *sqlxResultRepository) Upsert(ctx context.Context, res *domain.QuizResult) error {
	executor := GetExecutor(ctx, r.db)

	now := time.Now()
	if res.CreatedAt.IsZero() {
		res.CreatedAt = now
	}
	res.UpdatedAt = now

	query := `MERGE INTO quiz_results qr
	          USING (SELECT :1 AS quiz_id, :2 AS student_id FROM dual) src
	            ON (qr.quiz_id = src.quiz_id AND qr.student_id = src.student_id)
	          WHEN MATCHED THEN UPDATE SET
	            qr.score = :3, qr.max_score = :4, qr.rank_position = :5, qr.percentile = :6,
	            qr.time_taken_minutes = :7, qr.finalized_at = :8, qr.updated_at = :9
	          WHEN NOT MATCHED THEN INSERT
	            (id, quiz_id, student_id, score, max_score, rank_position, percentile, time_taken_minutes, finalized_at, created_at, updated_at)
	          VALUES (:10, :11, :12, :13, :14, :15, :16, :17, :18, :19, :20)`
	_, err := executor.ExecContext(ctx, query,
		res.QuizID, res.StudentID,
		res.Score, res.MaxScore, res.Rank, res.Percentile, res.TimeTakenMinutes, res.FinalizedAt, res.UpdatedAt,
		res.ID, res.QuizID, res.StudentID, res.Score, res.MaxScore, res.Rank, res.Percentile, res.TimeTakenMinutes, res.FinalizedAt, res.CreatedAt, res.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert result for quiz %s student %s: %w", res.QuizID, res.StudentID, err)
	}
	return nil
}
