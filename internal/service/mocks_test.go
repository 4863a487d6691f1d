package service

import (
	"context"
	"os"
	"testing"
	"time"

	"quiz-score/internal/config"
	"quiz-score/internal/domain"
	"quiz-score/internal/dto"
	"quiz-score/internal/logger"

	"github.com/stretchr/testify/mock"
)

// TestMain initializes the logger for all tests in this package.
func TestMain(m *testing.M) {
	if err := logger.Initialize(config.LoggerConfig{Level: "debug"}); err != nil {
		panic("Failed to initialize logger for tests: " + err.Error())
	}

	exitVal := m.Run()

	_ = logger.Sync()
	os.Exit(exitVal)
}

// --- Mocks ---

type MockQuizRepository struct {
	mock.Mock
}

func (m *MockQuizRepository) GetByID(ctx context.Context, id string) (*domain.Quiz, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quiz), args.Error(1)
}

func (m *MockQuizRepository) UpdateTotalScore(ctx context.Context, quizID string, total float64) error {
	args := m.Called(ctx, quizID, total)
	return args.Error(0)
}

type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, id string) (*domain.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Question), args.Error(1)
}

func (m *MockQuestionRepository) ListByQuiz(ctx context.Context, quizID string) ([]*domain.Question, error) {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Question), args.Error(1)
}

func (m *MockQuestionRepository) SumMaxScores(ctx context.Context, quizID string) (float64, error) {
	args := m.Called(ctx, quizID)
	return args.Get(0).(float64), args.Error(1)
}

type MockAssignmentRepository struct {
	mock.Mock
}

func (m *MockAssignmentRepository) GetByID(ctx context.Context, id string) (*domain.QuizAssignment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QuizAssignment), args.Error(1)
}

func (m *MockAssignmentRepository) Update(ctx context.Context, assignment *domain.QuizAssignment) error {
	args := m.Called(ctx, assignment)
	return args.Error(0)
}

func (m *MockAssignmentRepository) SumGradedScores(ctx context.Context, quizID, studentID string) (float64, error) {
	args := m.Called(ctx, quizID, studentID)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockAssignmentRepository) LatestSubmission(ctx context.Context, quizID, studentID string) (*time.Time, error) {
	args := m.Called(ctx, quizID, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

type MockPerformanceRepository struct {
	mock.Mock
}

func (m *MockPerformanceRepository) Get(ctx context.Context, quizID, studentID string) (*domain.StudentPerformance, error) {
	args := m.Called(ctx, quizID, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StudentPerformance), args.Error(1)
}

func (m *MockPerformanceRepository) ListByQuiz(ctx context.Context, quizID string) ([]*domain.StudentPerformance, error) {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.StudentPerformance), args.Error(1)
}

func (m *MockPerformanceRepository) Upsert(ctx context.Context, performance *domain.StudentPerformance) error {
	args := m.Called(ctx, performance)
	return args.Error(0)
}

func (m *MockPerformanceRepository) UpdateRanking(ctx context.Context, performance *domain.StudentPerformance) error {
	args := m.Called(ctx, performance)
	return args.Error(0)
}

func (m *MockPerformanceRepository) SyncMaxPossibleScore(ctx context.Context, quizID string, total float64) error {
	args := m.Called(ctx, quizID, total)
	return args.Error(0)
}

type MockResultRepository struct {
	mock.Mock
}

func (m *MockResultRepository) ListByQuiz(ctx context.Context, quizID string) ([]*domain.QuizResult, error) {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.QuizResult), args.Error(1)
}

func (m *MockResultRepository) Upsert(ctx context.Context, result *domain.QuizResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

// MockTransactionManager runs the function directly so repository mocks see
// the same context the service passed in.
type MockTransactionManager struct {
	mock.Mock
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockPerformanceService is used by grading tests to observe refreshes.
type MockPerformanceService struct {
	mock.Mock
}

func (m *MockPerformanceService) Refresh(ctx context.Context, quizID, studentID string) error {
	args := m.Called(ctx, quizID, studentID)
	return args.Error(0)
}

func (m *MockPerformanceService) RecomputeQuizTotal(ctx context.Context, quizID string) (float64, error) {
	args := m.Called(ctx, quizID)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockPerformanceService) QuestionSaved(ctx context.Context, quizID string) error {
	args := m.Called(ctx, quizID)
	return args.Error(0)
}

func (m *MockPerformanceService) QuestionRemoved(ctx context.Context, quizID string) error {
	args := m.Called(ctx, quizID)
	return args.Error(0)
}

func (m *MockPerformanceService) GetRankings(ctx context.Context, quizID string) ([]*dto.RankingEntry, error) {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*dto.RankingEntry), args.Error(1)
}

func (m *MockPerformanceService) GetStudentPerformance(ctx context.Context, quizID, studentID string) (*dto.PerformanceResponse, error) {
	args := m.Called(ctx, quizID, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PerformanceResponse), args.Error(1)
}
