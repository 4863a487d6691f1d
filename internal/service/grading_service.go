package service

import (
	"context"
	"math"
	"time"

	"quiz-score/internal/domain"
	"quiz-score/internal/dto"
	"quiz-score/internal/logger"
	"quiz-score/internal/scoring"

	"go.uber.org/zap"
)

// GradingService turns submitted answers into scores and keeps the
// per-student aggregates current.
type GradingService interface {
	// SubmitAnswer records a student's answer, auto-grades it and
	// refreshes the student's aggregate.
	SubmitAnswer(ctx context.Context, assignmentID, studentID, answer string) (*dto.AssignmentResponse, error)

	// GradeAssignment grades a submitted assignment. Already-graded
	// assignments are left untouched; use OverrideScore to re-grade.
	GradeAssignment(ctx context.Context, assignmentID string) (*dto.AssignmentResponse, error)

	// OverrideScore sets a faculty-supplied score, re-marking the
	// assignment graded even when it already was.
	OverrideScore(ctx context.Context, assignmentID string, score float64) (*dto.AssignmentResponse, error)
}

type gradingService struct {
	assignments domain.AssignmentRepository
	questions   domain.QuestionRepository
	performance PerformanceService
}

func NewGradingService(
	assignments domain.AssignmentRepository,
	questions domain.QuestionRepository,
	performance PerformanceService,
) GradingService {
	return &gradingService{
		assignments: assignments,
		questions:   questions,
		performance: performance,
	}
}

func (s *gradingService) SubmitAnswer(ctx context.Context, assignmentID, studentID, answer string) (*dto.AssignmentResponse, error) {
	assignment, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	// Students only see their own assignments; anything else reads as
	// absent rather than forbidden.
	if assignment.StudentID != studentID {
		return nil, domain.NewAssignmentNotFoundError(assignmentID)
	}
	if answer == "" {
		return nil, domain.NewValidationError("answer is required")
	}

	if err := assignment.Submit(answer, time.Now()); err != nil {
		return nil, err
	}

	if err := s.gradeLocked(ctx, assignment); err != nil {
		return nil, err
	}
	return toAssignmentResponse(assignment), nil
}

func (s *gradingService) GradeAssignment(ctx context.Context, assignmentID string) (*dto.AssignmentResponse, error) {
	assignment, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	// Grading is idempotent: repeated non-override calls are no-ops.
	if assignment.IsGraded || assignment.StudentAnswer == "" {
		return toAssignmentResponse(assignment), nil
	}

	if err := s.gradeLocked(ctx, assignment); err != nil {
		return nil, err
	}
	return toAssignmentResponse(assignment), nil
}

func (s *gradingService) OverrideScore(ctx context.Context, assignmentID string, score float64) (*dto.AssignmentResponse, error) {
	assignment, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	question, err := s.loadQuestion(ctx, assignment.QuestionID)
	if err != nil {
		return nil, err
	}

	// Out-of-range overrides are rejected, never clamped, and the prior
	// score stays untouched.
	if math.IsNaN(score) || math.IsInf(score, 0) || score < 0 || score > question.MaxScore {
		return nil, domain.NewInvalidScoreError(question.MaxScore)
	}

	assignment.Score = &score
	assignment.IsGraded = true
	if err := s.assignments.Update(ctx, assignment); err != nil {
		return nil, domain.NewInternalError("failed to persist override", err)
	}

	logger.Get().Info("Score overridden",
		zap.String("assignmentID", assignment.ID),
		zap.String("quizID", assignment.QuizID),
		zap.Float64("score", score))

	if err := s.performance.Refresh(ctx, assignment.QuizID, assignment.StudentID); err != nil {
		return nil, err
	}
	return toAssignmentResponse(assignment), nil
}

// gradeLocked evaluates and persists the assignment, then refreshes the
// aggregate. The evaluator fails closed, so a malformed stored answer is a
// zero, not an error.
func (s *gradingService) gradeLocked(ctx context.Context, assignment *domain.QuizAssignment) error {
	question, err := s.loadQuestion(ctx, assignment.QuestionID)
	if err != nil {
		return err
	}

	score := scoring.Evaluate(question.Type, question.CorrectAnswer, question.MaxScore, assignment.StudentAnswer)
	assignment.Score = &score
	assignment.IsGraded = true

	if err := s.assignments.Update(ctx, assignment); err != nil {
		return domain.NewInternalError("failed to persist grading", err)
	}

	logger.Get().Debug("Assignment graded",
		zap.String("assignmentID", assignment.ID),
		zap.String("questionType", string(question.Type)),
		zap.Float64("score", score))

	return s.performance.Refresh(ctx, assignment.QuizID, assignment.StudentID)
}

func (s *gradingService) loadAssignment(ctx context.Context, id string) (*domain.QuizAssignment, error) {
	assignment, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("failed to load assignment", err)
	}
	if assignment == nil {
		return nil, domain.NewAssignmentNotFoundError(id)
	}
	return assignment, nil
}

func (s *gradingService) loadQuestion(ctx context.Context, id string) (*domain.Question, error) {
	question, err := s.questions.GetByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("failed to load question", err)
	}
	if question == nil {
		return nil, domain.NewNotFoundError("Question not found with ID: " + id)
	}
	return question, nil
}

func toAssignmentResponse(a *domain.QuizAssignment) *dto.AssignmentResponse {
	return &dto.AssignmentResponse{
		ID:          a.ID,
		QuizID:      a.QuizID,
		QuestionID:  a.QuestionID,
		StudentID:   a.StudentID,
		Completed:   a.Completed,
		Score:       a.Score,
		IsGraded:    a.IsGraded,
		SubmittedAt: a.SubmittedAt,
	}
}
