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

// GradingHandler handles answer submission and score overrides.
type GradingHandler struct {
	gradingService service.GradingService
}

func NewGradingHandler(gradingService service.GradingService) *GradingHandler {
	return &GradingHandler{gradingService: gradingService}
}

// SubmitAnswer handles POST /api/assignments/:id/submit
func (h *GradingHandler) SubmitAnswer(c *fiber.Ctx) error {
	assignmentID := c.Params("id")
	if assignmentID == "" {
		return domain.NewValidationError("assignment id is required")
	}

	studentID, ok := c.Locals(middleware.UserIDKey).(string)
	if !ok || studentID == "" {
		logger.Get().Warn("User ID not found in context for SubmitAnswer", zap.String("path", c.Path()))
		return domain.NewError(domain.CodeUnauthorized, "User ID not found in context", nil)
	}

	var req dto.SubmitAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError("invalid request body")
	}

	resp, err := h.gradingService.SubmitAnswer(c.Context(), assignmentID, studentID, req.Answer)
	if err != nil {
		return err
	}

	logger.Get().Info("Answer submitted",
		zap.String("assignmentID", assignmentID),
		zap.String("studentID", studentID))
	return c.JSON(resp)
}

// OverrideScore handles POST /api/assignments/:id/score
func (h *GradingHandler) OverrideScore(c *fiber.Ctx) error {
	assignmentID := c.Params("id")
	if assignmentID == "" {
		return domain.NewValidationError("assignment id is required")
	}

	var req dto.OverrideScoreRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError("invalid request body")
	}
	if req.Score == nil {
		return domain.NewValidationError("score is required")
	}

	resp, err := h.gradingService.OverrideScore(c.Context(), assignmentID, *req.Score)
	if err != nil {
		return err
	}

	return c.JSON(resp)
}

// GradeAssignment handles POST /api/assignments/:id/grade
func (h *GradingHandler) GradeAssignment(c *fiber.Ctx) error {
	assignmentID := c.Params("id")
	if assignmentID == "" {
		return domain.NewValidationError("assignment id is required")
	}

	resp, err := h.gradingService.GradeAssignment(c.Context(), assignmentID)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
