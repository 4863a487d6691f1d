package service

import (
	"context"
	"time"

	"quiz-score/internal/domain"
	"quiz-score/internal/dto"
	"quiz-score/internal/logger"
	"quiz-score/internal/scoring"
	"quiz-score/internal/util"

	"go.uber.org/zap"
)

// ResultService freezes per-student results once a quiz's availability
// window has closed.
type ResultService interface {
	// GenerateResults snapshots the current aggregates into result rows.
	// It is a no-op while the quiz is still open and idempotent once it
	// has closed.
	GenerateResults(ctx context.Context, quizID string) (*dto.GenerateResultsResponse, error)

	// GetResults returns the finalized results, best rank first.
	GetResults(ctx context.Context, quizID string) ([]*dto.ResultResponse, error)
}

type resultService struct {
	quizzes      domain.QuizRepository
	assignments  domain.AssignmentRepository
	performances domain.PerformanceRepository
	results      domain.ResultRepository
	txManager    domain.TransactionManager
	locks        *quizLocks

	// now is swappable so the window check is testable.
	now func() time.Time
}

func NewResultService(
	quizzes domain.QuizRepository,
	assignments domain.AssignmentRepository,
	performances domain.PerformanceRepository,
	results domain.ResultRepository,
	txManager domain.TransactionManager,
) ResultService {
	return &resultService{
		quizzes:      quizzes,
		assignments:  assignments,
		performances: performances,
		results:      results,
		txManager:    txManager,
		locks:        newQuizLocks(),
		now:          time.Now,
	}
}

func (s *resultService) GenerateResults(ctx context.Context, quizID string) (*dto.GenerateResultsResponse, error) {
	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load quiz", err)
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(quizID)
	}

	// Quizzes without an end time never finalize; open quizzes are left
	// alone so re-invoking the finalizer early loses nothing.
	if !quiz.IsClosed(s.now()) {
		logger.Get().Info("Skipping result generation for open quiz",
			zap.String("quizID", quizID))
		return &dto.GenerateResultsResponse{QuizID: quizID, Finalized: false}, nil
	}

	unlock := s.locks.Lock(quizID)
	defer unlock()

	finalizedAt := s.now()
	var count int

	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		cohort, err := s.performances.ListByQuiz(ctx, quizID)
		if err != nil {
			return domain.NewInternalError("failed to list cohort", err)
		}

		standings := make([]scoring.Standing, len(cohort))
		byStudent := make(map[string]*domain.StudentPerformance, len(cohort))
		for i, row := range cohort {
			standings[i] = scoring.Standing{StudentID: row.StudentID, Score: row.TotalScore}
			byStudent[row.StudentID] = row
		}

		// Final ranks are positional: tied students still get distinct
		// ranks, unlike the live leaderboard.
		for _, st := range scoring.RankFinal(standings) {
			row := byStudent[st.StudentID]
			minutes, err := s.timeTakenMinutes(ctx, quiz, row.StudentID)
			if err != nil {
				return err
			}
			result := &domain.QuizResult{
				ID:               util.NewULID(),
				QuizID:           quizID,
				StudentID:        row.StudentID,
				Score:            row.TotalScore,
				MaxScore:         row.MaxPossibleScore,
				Rank:             st.Rank,
				Percentile:       st.Percentile,
				TimeTakenMinutes: minutes,
				FinalizedAt:      finalizedAt,
			}
			if err := s.results.Upsert(ctx, result); err != nil {
				return domain.NewInternalError("failed to upsert result", err)
			}
			count++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Get().Info("Quiz results finalized",
		zap.String("quizID", quizID),
		zap.Int("results", count))

	return &dto.GenerateResultsResponse{
		QuizID:    quizID,
		Finalized: true,
		Results:   count,
	}, nil
}

func (s *resultService) GetResults(ctx context.Context, quizID string) ([]*dto.ResultResponse, error) {
	rows, err := s.results.ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, domain.NewInternalError("failed to list results", err)
	}
	responses := make([]*dto.ResultResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, &dto.ResultResponse{
			StudentID:        row.StudentID,
			Score:            row.Score,
			MaxScore:         row.MaxScore,
			Rank:             row.Rank,
			Percentile:       row.Percentile,
			TimeTakenMinutes: row.TimeTakenMinutes,
			FinalizedAt:      row.FinalizedAt,
		})
	}
	return responses, nil
}

// timeTakenMinutes is the whole minutes between the quiz opening and the
// student's last submission. Without a start time or any submission there
// is nothing to measure and it reports zero.
func (s *resultService) timeTakenMinutes(ctx context.Context, quiz *domain.Quiz, studentID string) (int, error) {
	if quiz.StartTime == nil {
		return 0, nil
	}
	last, err := s.assignments.LatestSubmission(ctx, quiz.ID, studentID)
	if err != nil {
		return 0, domain.NewInternalError("failed to load latest submission", err)
	}
	if last == nil {
		return 0, nil
	}
	minutes := int(last.Sub(*quiz.StartTime).Minutes())
	if minutes < 0 {
		return 0, nil
	}
	return minutes, nil
}
