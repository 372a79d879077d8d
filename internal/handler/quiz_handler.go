package handler

import (
	"quiz-tube/internal/domain"
	"quiz-tube/internal/dto"
	"quiz-tube/internal/logger"
	"quiz-tube/internal/middleware"
	"quiz-tube/internal/service"
	"quiz-tube/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// QuizHandler handles quiz-related HTTP requests
type QuizHandler struct {
	generation service.GenerationService
	quizzes    service.QuizService
	validator  *validation.Validator
}

// NewQuizHandler creates a new QuizHandler instance
func NewQuizHandler(generation service.GenerationService, quizzes service.QuizService, validator *validation.Validator) *QuizHandler {
	return &QuizHandler{
		generation: generation,
		quizzes:    quizzes,
		validator:  validator,
	}
}

// CreateQuiz godoc
// @Summary Generate a quiz from a video
// @Description Downloads the video's audio, transcribes it and generates a ten question quiz
// @Tags quiz
// @Accept json
// @Produce json
// @Param request body dto.CreateQuizRequest true "Video URL"
// @Security BearerAuth
// @Success 201 {object} dto.QuizResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 422 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /quizzes [post]
func (h *QuizHandler) CreateQuiz(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	var req dto.CreateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("request body is not valid JSON")
	}
	if err := h.validator.ValidateCreateQuizRequest(&req); err != nil {
		return err
	}

	quiz, err := h.generation.GenerateQuiz(c.Context(), req.URL, userID)
	if err != nil {
		logger.Get().Error("quiz generation failed",
			zap.Error(err),
			zap.String("userID", userID),
		)
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(quiz)
}

// GetQuiz godoc
// @Summary Get a quiz
// @Description Returns a quiz with its questions
// @Tags quiz
// @Produce json
// @Param id path string true "Quiz ID"
// @Security BearerAuth
// @Success 200 {object} dto.QuizResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{id} [get]
func (h *QuizHandler) GetQuiz(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	quizID := c.Params("id")
	if err := h.validator.ValidateQuizID(quizID); err != nil {
		return err
	}

	quiz, err := h.quizzes.GetQuiz(c.Context(), quizID, userID)
	if err != nil {
		return err
	}
	return c.JSON(quiz)
}

// ListQuizzes godoc
// @Summary List the caller's quizzes
// @Description Returns every quiz owned by the authenticated user, newest first
// @Tags quiz
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.QuizListResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /quizzes [get]
func (h *QuizHandler) ListQuizzes(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}

	quizzes, err := h.quizzes.ListQuizzes(c.Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(quizzes)
}

// UpdateQuiz godoc
// @Summary Update a quiz
// @Description Updates the title or description of an owned quiz
// @Tags quiz
// @Accept json
// @Produce json
// @Param id path string true "Quiz ID"
// @Param request body dto.UpdateQuizRequest true "Fields to update"
// @Security BearerAuth
// @Success 200 {object} dto.QuizResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{id} [patch]
func (h *QuizHandler) UpdateQuiz(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	quizID := c.Params("id")
	if err := h.validator.ValidateQuizID(quizID); err != nil {
		return err
	}

	var req dto.UpdateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("request body is not valid JSON")
	}
	if err := h.validator.ValidateUpdateQuizRequest(&req); err != nil {
		return err
	}

	quiz, err := h.quizzes.UpdateQuiz(c.Context(), quizID, userID, &req)
	if err != nil {
		return err
	}
	return c.JSON(quiz)
}

// DeleteQuiz godoc
// @Summary Delete a quiz
// @Description Soft-deletes an owned quiz and its questions
// @Tags quiz
// @Param id path string true "Quiz ID"
// @Security BearerAuth
// @Success 204
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{id} [delete]
func (h *QuizHandler) DeleteQuiz(c *fiber.Ctx) error {
	userID, err := requireUserID(c)
	if err != nil {
		return err
	}
	quizID := c.Params("id")
	if err := h.validator.ValidateQuizID(quizID); err != nil {
		return err
	}

	if err := h.quizzes.DeleteQuiz(c.Context(), quizID, userID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func requireUserID(c *fiber.Ctx) (string, error) {
	userID, ok := c.Locals(middleware.UserIDKey).(string)
	if !ok || userID == "" {
		return "", domain.NewUnauthorizedError("user identity is missing")
	}
	return userID, nil
}
