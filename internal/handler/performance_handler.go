package handler

import (
	"quiz-score/internal/domain"
	"quiz-score/internal/dto"
	"quiz-score/internal/logger"
	"quiz-score/internal/middleware"
	"quiz-score/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// PerformanceHandler serves leaderboards, per-student aggregates and
// finalized results.
type PerformanceHandler struct {
	performanceService service.PerformanceService
	resultService      service.ResultService
}

func NewPerformanceHandler(performanceService service.PerformanceService, resultService service.ResultService) *PerformanceHandler {
	return &PerformanceHandler{
		performanceService: performanceService,
		resultService:      resultService,
	}
}

// GetRankings handles GET /api/quizzes/:id/rankings
func (h *PerformanceHandler) GetRankings(c *fiber.Ctx) error {
	quizID := c.Params("id")
	if quizID == "" {
		return domain.NewValidationError("quiz id is required")
	}

	entries, err := h.performanceService.GetRankings(c.Context(), quizID)
	if err != nil {
		return err
	}
	return c.JSON(entries)
}

// GetMyPerformance handles GET /api/quizzes/:id/performance/me
func (h *PerformanceHandler) GetMyPerformance(c *fiber.Ctx) error {
	quizID := c.Params("id")
	if quizID == "" {
		return domain.NewValidationError("quiz id is required")
	}

	studentID, ok := c.Locals(middleware.UserIDKey).(string)
	if !ok || studentID == "" {
		logger.Get().Warn("User ID not found in context for GetMyPerformance", zap.String("path", c.Path()))
		return domain.NewError(domain.CodeUnauthorized, "User ID not found in context", nil)
	}

	resp, err := h.performanceService.GetStudentPerformance(c.Context(), quizID, studentID)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// RecomputeTotal handles POST /api/quizzes/:id/total/recompute
func (h *PerformanceHandler) RecomputeTotal(c *fiber.Ctx) error {
	quizID := c.Params("id")
	if quizID == "" {
		return domain.NewValidationError("quiz id is required")
	}

	total, err := h.performanceService.RecomputeQuizTotal(c.Context(), quizID)
	if err != nil {
		return err
	}
	return c.JSON(dto.QuizTotalResponse{QuizID: quizID, TotalScore: total})
}

// GenerateResults handles POST /api/quizzes/:id/results
func (h *PerformanceHandler) GenerateResults(c *fiber.Ctx) error {
	quizID := c.Params("id")
	if quizID == "" {
		return domain.NewValidationError("quiz id is required")
	}

	resp, err := h.resultService.GenerateResults(c.Context(), quizID)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GetResults handles GET /api/quizzes/:id/results
func (h *PerformanceHandler) GetResults(c *fiber.Ctx) error {
	quizID := c.Params("id")
	if quizID == "" {
		return domain.NewValidationError("quiz id is required")
	}

	rows, err := h.resultService.GetResults(c.Context(), quizID)
	if err != nil {
		return err
	}
	return c.JSON(rows)
}
