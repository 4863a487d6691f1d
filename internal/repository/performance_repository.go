package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"quiz-score/internal/domain"
	"quiz-score/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

// sqlxPerformanceRepository implements domain.PerformanceRepository using sqlx.
type sqlxPerformanceRepository struct {
	db DBTX
}

func NewSQLXPerformanceRepository(db *sqlx.DB) domain.PerformanceRepository {
	return &sqlxPerformanceRepository{db: db}
}

func toDomainPerformance(m *models.StudentPerformance) *domain.StudentPerformance {
	if m == nil {
		return nil
	}
	return &domain.StudentPerformance{
		ID:               m.ID,
		QuizID:           m.QuizID,
		StudentID:        m.StudentID,
		TotalScore:       m.TotalScore,
		MaxPossibleScore: m.MaxPossibleScore,
		Rank:             int(m.Rank.Int64),
		Percentile:       m.Percentile.Float64,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

const performanceColumns = `ID, QUIZ_ID, STUDENT_ID, TOTAL_SCORE, MAX_POSSIBLE_SCORE, RANK_POSITION, PERCENTILE, CREATED_AT, UPDATED_AT`

func (r *sqlxPerformanceRepository) Get(ctx context.Context, quizID, studentID string) (*domain.StudentPerformance, error) {
	executor := GetExecutor(ctx, r.db)

	var m models.StudentPerformance
	query := fmt.Sprintf(`SELECT %s FROM student_performances WHERE quiz_id = :1 AND student_id = :2`, performanceColumns)
	err := executor.GetContext(ctx, &m, query, quizID, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get performance for quiz %s student %s: %w", quizID, studentID, err)
	}
	return toDomainPerformance(&m), nil
}

func (r *sqlxPerformanceRepository) ListByQuiz(ctx context.Context, quizID string) ([]*domain.StudentPerformance, error) {
	executor := GetExecutor(ctx, r.db)

	var rows []models.StudentPerformance
	query := fmt.Sprintf(`SELECT %s FROM student_performances WHERE quiz_id = :1 ORDER BY total_score DESC, student_id`, performanceColumns)
	if err := executor.SelectContext(ctx, &rows, query, quizID); err != nil {
		return nil, fmt.Errorf("failed to list performances for quiz %s: %w", quizID, err)
	}

	performances := make([]*domain.StudentPerformance, 0, len(rows))
	for i := range rows {
		performances = append(performances, toDomainPerformance(&rows[i]))
	}
	return performances, nil
}

func (r *sqlxPerformanceRepository) Upsert(ctx context.Context, p *domain.StudentPerformance) error {
	executor := GetExecutor(ctx, r.db)

	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	query := `MERGE INTO student_performances sp
	          USING (SELECT :1 AS quiz_id, :2 AS student_id FROM dual) src
	            ON (sp.quiz_id = src.quiz_id AND sp.student_id = src.student_id)
	          WHEN MATCHED THEN UPDATE SET
	            sp.total_score = :3, sp.max_possible_score = :4, sp.updated_at = :5
	          WHEN NOT MATCHED THEN INSERT
	            (id, quiz_id, student_id, total_score, max_possible_score, created_at, updated_at)
	          VALUES (:6, :7, :8, :9, :10, :11, :12)`
	_, err := executor.ExecContext(ctx, query,
		p.QuizID, p.StudentID,
		p.TotalScore, p.MaxPossibleScore, p.UpdatedAt,
		p.ID, p.QuizID, p.StudentID, p.TotalScore, p.MaxPossibleScore, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert performance for quiz %s student %s: %w", p.QuizID, p.StudentID, err)
	}
	return nil
}

func (r *sqlxPerformanceRepository) UpdateRanking(ctx context.Context, p *domain.StudentPerformance) error {
	executor := GetExecutor(ctx, r.db)

	query := `UPDATE student_performances SET rank_position = :1, percentile = :2, updated_at = :3
	          WHERE quiz_id = :4 AND student_id = :5`
	result, err := executor.ExecContext(ctx, query, p.Rank, p.Percentile, time.Now(), p.QuizID, p.StudentID)
	if err != nil {
		return fmt.Errorf("failed to update ranking for quiz %s student %s: %w", p.QuizID, p.StudentID, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return domain.NewPerformanceNotFoundError(p.QuizID, p.StudentID)
	}
	return nil
}

func (r *sqlxPerformanceRepository) SyncMaxPossibleScore(ctx context.Context, quizID string, total float64) error {
	executor := GetExecutor(ctx, r.db)

	query := `UPDATE student_performances SET max_possible_score = :1, updated_at = :2 WHERE quiz_id = :3`
	if _, err := executor.ExecContext(ctx, query, total, time.Now(), quizID); err != nil {
		return fmt.Errorf("failed to sync max possible score for quiz %s: %w", quizID, err)
	}
	return nil
}
