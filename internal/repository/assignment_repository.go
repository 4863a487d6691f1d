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

// sqlxAssignmentRepository implements domain.AssignmentRepository using sqlx.
type sqlxAssignmentRepository struct {
	db DBTX
}

func NewSQLXAssignmentRepository(db *sqlx.DB) domain.AssignmentRepository {
	return &sqlxAssignmentRepository{db: db}
}

func toDomainAssignment(m *models.QuizAssignment) *domain.QuizAssignment {
	if m == nil {
		return nil
	}
	return &domain.QuizAssignment{
		ID:            m.ID,
		QuizID:        m.QuizID,
		StudentID:     m.StudentID,
		QuestionID:    m.QuestionID,
		StudentAnswer: m.StudentAnswer.String,
		Completed:     m.Completed,
		Score:         util.NullFloat64ToPtr(m.Score),
		IsGraded:      m.IsGraded,
		AssignedAt:    m.AssignedAt,
		SubmittedAt:   util.NullTimeToPtr(m.SubmittedAt),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func (r *sqlxAssignmentRepository) GetByID(ctx context.Context, id string) (*domain.QuizAssignment, error) {
	executor := GetExecutor(ctx, r.db)

	var m models.QuizAssignment
	query := `SELECT ID, QUIZ_ID, STUDENT_ID, QUESTION_ID, STUDENT_ANSWER, COMPLETED, SCORE, IS_GRADED, ASSIGNED_AT, SUBMITTED_AT, CREATED_AT, UPDATED_AT
	          FROM quiz_assignments WHERE id = :1`
	err := executor.GetContext(ctx, &m, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get assignment %s: %w", id, err)
	}
	return toDomainAssignment(&m), nil
}

func (r *sqlxAssignmentRepository) Update(ctx context.Context, a *domain.QuizAssignment) error {
	executor := GetExecutor(ctx, r.db)

	a.UpdatedAt = time.Now()
	query := `UPDATE quiz_assignments SET
	            student_answer = :1, completed = :2, score = :3, is_graded = :4,
	            submitted_at = :5, updated_at = :6
	          WHERE id = :7`
	result, err := executor.ExecContext(ctx, query,
		util.StringToNullString(a.StudentAnswer),
		a.Completed,
		util.Float64PtrToNullFloat64(a.Score),
		a.IsGraded,
		util.TimePtrToNullTime(a.SubmittedAt),
		a.UpdatedAt,
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update assignment %s: %w", a.ID, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return domain.NewAssignmentNotFoundError(a.ID)
	}
	return nil
}

// SumGradedScores only counts assignments that are both graded and
// completed, which is exactly the set the live aggregate is derived from.
func (r *sqlxAssignmentRepository) SumGradedScores(ctx context.Context, quizID, studentID string) (float64, error) {
	executor := GetExecutor(ctx, r.db)

	var total sql.NullFloat64
	query := `SELECT SUM(score) FROM quiz_assignments
	          WHERE quiz_id = :1 AND student_id = :2 AND is_graded = 1 AND completed = 1`
	if err := executor.GetContext(ctx, &total, query, quizID, studentID); err != nil {
		return 0, fmt.Errorf("failed to sum graded scores for quiz %s student %s: %w", quizID, studentID, err)
	}
	return total.Float64, nil
}

func (r *sqlxAssignmentRepository) LatestSubmission(ctx context.Context, quizID, studentID string) (*time.Time, error) {
	executor := GetExecutor(ctx, r.db)

	var latest sql.NullTime
	query := `SELECT MAX(submitted_at) FROM quiz_assignments
	          WHERE quiz_id = :1 AND student_id = :2 AND completed = 1`
	if err := executor.GetContext(ctx, &latest, query, quizID, studentID); err != nil {
		return nil, fmt.Errorf("failed to get latest submission for quiz %s student %s: %w", quizID, studentID, err)
	}
	return util.NullTimeToPtr(latest), nil
}
