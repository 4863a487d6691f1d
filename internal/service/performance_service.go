package service

import (
	"context"
	"encoding/json"
	"time"

	"quiz-score/internal/cache"
	"quiz-score/internal/domain"
	"quiz-score/internal/dto"
	"quiz-score/internal/logger"
	"quiz-score/internal/scoring"
	"quiz-score/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// PerformanceService maintains the derived per-student aggregates and the
// cohort-relative order statistics for each quiz.
type PerformanceService interface {
	// Refresh recomputes one student's total and then re-ranks the whole
	// cohort of the quiz, atomically.
	Refresh(ctx context.Context, quizID, studentID string) error

	// RecomputeQuizTotal re-derives the quiz's cached total from its
	// attached questions and returns the new total.
	RecomputeQuizTotal(ctx context.Context, quizID string) (float64, error)

	// QuestionSaved and QuestionRemoved are the hooks the authoring
	// collaborator invokes so the cached total never goes stale.
	QuestionSaved(ctx context.Context, quizID string) error
	QuestionRemoved(ctx context.Context, quizID string) error

	// GetRankings returns the quiz's live leaderboard, best score first.
	GetRankings(ctx context.Context, quizID string) ([]*dto.RankingEntry, error)

	// GetStudentPerformance returns one student's aggregate row.
	GetStudentPerformance(ctx context.Context, quizID, studentID string) (*dto.PerformanceResponse, error)
}

type performanceService struct {
	quizzes      domain.QuizRepository
	questions    domain.QuestionRepository
	assignments  domain.AssignmentRepository
	performances domain.PerformanceRepository
	txManager    domain.TransactionManager
	cache        domain.Cache
	cacheTTL     time.Duration
	locks        *quizLocks
	sfGroup      singleflight.Group
}

func NewPerformanceService(
	quizzes domain.QuizRepository,
	questions domain.QuestionRepository,
	assignments domain.AssignmentRepository,
	performances domain.PerformanceRepository,
	txManager domain.TransactionManager,
	cacheAdapter domain.Cache,
	cacheTTL time.Duration,
) PerformanceService {
	return &performanceService{
		quizzes:      quizzes,
		questions:    questions,
		assignments:  assignments,
		performances: performances,
		txManager:    txManager,
		cache:        cacheAdapter,
		cacheTTL:     cacheTTL,
		locks:        newQuizLocks(),
	}
}

// Refresh runs the full cohort recompute as one unit of work: either every
// performance row on the quiz reflects the new ranking, or none do.
func (s *performanceService) Refresh(ctx context.Context, quizID, studentID string) error {
	unlock := s.locks.Lock(quizID)
	defer unlock()

	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		quiz, err := s.quizzes.GetByID(ctx, quizID)
		if err != nil {
			return domain.NewInternalError("failed to load quiz", err)
		}
		if quiz == nil {
			return domain.NewQuizNotFoundError(quizID)
		}

		total, err := s.assignments.SumGradedScores(ctx, quizID, studentID)
		if err != nil {
			return domain.NewInternalError("failed to sum graded scores", err)
		}

		perf, err := s.performances.Get(ctx, quizID, studentID)
		if err != nil {
			return domain.NewInternalError("failed to load performance", err)
		}
		if perf == nil {
			perf = &domain.StudentPerformance{
				ID:        util.NewULID(),
				QuizID:    quizID,
				StudentID: studentID,
			}
		}
		perf.TotalScore = total
		perf.MaxPossibleScore = quiz.TotalScore
		if err := s.performances.Upsert(ctx, perf); err != nil {
			return domain.NewInternalError("failed to upsert performance", err)
		}

		// Ranking is a cohort-relative property: re-rank everyone on the
		// quiz, not just the student whose score changed.
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

		for _, st := range scoring.RankCohort(standings) {
			row := byStudent[st.StudentID]
			row.Rank = st.Rank
			row.Percentile = st.Percentile
			if err := s.performances.UpdateRanking(ctx, row); err != nil {
				return domain.NewInternalError("failed to update ranking", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidateRankings(ctx, quizID)
	return nil
}

func (s *performanceService) RecomputeQuizTotal(ctx context.Context, quizID string) (float64, error) {
	var total float64
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		quiz, err := s.quizzes.GetByID(ctx, quizID)
		if err != nil {
			return domain.NewInternalError("failed to load quiz", err)
		}
		if quiz == nil {
			return domain.NewQuizNotFoundError(quizID)
		}

		total, err = s.questions.SumMaxScores(ctx, quizID)
		if err != nil {
			return domain.NewInternalError("failed to sum question max scores", err)
		}
		if err := s.quizzes.UpdateTotalScore(ctx, quizID, total); err != nil {
			return domain.NewInternalError("failed to write quiz total", err)
		}
		// Keep max_possible_score in sync on every aggregate row.
		if err := s.performances.SyncMaxPossibleScore(ctx, quizID, total); err != nil {
			return domain.NewInternalError("failed to sync max possible score", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.Get().Info("Recomputed quiz total",
		zap.String("quizID", quizID),
		zap.Float64("total", total))
	s.invalidateRankings(ctx, quizID)
	return total, nil
}

func (s *performanceService) QuestionSaved(ctx context.Context, quizID string) error {
	_, err := s.RecomputeQuizTotal(ctx, quizID)
	return err
}

func (s *performanceService) QuestionRemoved(ctx context.Context, quizID string) error {
	_, err := s.RecomputeQuizTotal(ctx, quizID)
	return err
}

func (s *performanceService) GetRankings(ctx context.Context, quizID string) ([]*dto.RankingEntry, error) {
	key := cache.GenerateCacheKey("performance", "rankings", quizID)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		if err == nil {
			var entries []*dto.RankingEntry
			if jsonErr := json.Unmarshal([]byte(cached), &entries); jsonErr == nil {
				return entries, nil
			}
			logger.Get().Warn("Discarding unreadable rankings cache entry",
				zap.String("quizID", quizID))
		} else if err != domain.ErrCacheMiss {
			logger.Get().Warn("Rankings cache read failed",
				zap.Error(err), zap.String("quizID", quizID))
		}
	}

	// Collapse concurrent fills for the same quiz into one query.
	v, err, _ := s.sfGroup.Do(key, func() (interface{}, error) {
		rows, err := s.performances.ListByQuiz(ctx, quizID)
		if err != nil {
			return nil, domain.NewInternalError("failed to list rankings", err)
		}
		entries := make([]*dto.RankingEntry, 0, len(rows))
		for _, row := range rows {
			entries = append(entries, &dto.RankingEntry{
				StudentID:        row.StudentID,
				TotalScore:       row.TotalScore,
				MaxPossibleScore: row.MaxPossibleScore,
				Rank:             row.Rank,
				Percentile:       row.Percentile,
			})
		}

		if s.cache != nil {
			if payload, jsonErr := json.Marshal(entries); jsonErr == nil {
				if cacheErr := s.cache.Set(ctx, key, string(payload), s.cacheTTL); cacheErr != nil {
					logger.Get().Warn("Rankings cache write failed",
						zap.Error(cacheErr), zap.String("quizID", quizID))
				}
			}
		}
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*dto.RankingEntry), nil
}

func (s *performanceService) GetStudentPerformance(ctx context.Context, quizID, studentID string) (*dto.PerformanceResponse, error) {
	perf, err := s.performances.Get(ctx, quizID, studentID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load performance", err)
	}
	if perf == nil {
		return nil, domain.NewPerformanceNotFoundError(quizID, studentID)
	}
	return &dto.PerformanceResponse{
		QuizID:           perf.QuizID,
		StudentID:        perf.StudentID,
		TotalScore:       perf.TotalScore,
		MaxPossibleScore: perf.MaxPossibleScore,
		Rank:             perf.Rank,
		Percentile:       perf.Percentile,
	}, nil
}

// invalidateRankings drops the cached leaderboard; a failed delete only
// shortens freshness, so it is logged and not surfaced.
func (s *performanceService) invalidateRankings(ctx context.Context, quizID string) {
	if s.cache == nil {
		return
	}
	key := cache.GenerateCacheKey("performance", "rankings", quizID)
	if err := s.cache.Delete(ctx, key); err != nil {
		logger.Get().Warn("Failed to invalidate rankings cache",
			zap.Error(err), zap.String("quizID", quizID))
	}
}
