package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hw-eval-api/internal/dto"
	"github.com/noah-isme/hw-eval-api/internal/middleware"
	"github.com/noah-isme/hw-eval-api/internal/service"
	"github.com/noah-isme/hw-eval-api/internal/utils"
)

// ExamGradeHandler serves exam grades of a user.
type ExamGradeHandler struct {
	service service.ExamGradeService
	logger  zerolog.Logger
}

// NewExamGradeHandler constructs the handler.
func NewExamGradeHandler(service service.ExamGradeService, logger zerolog.Logger) *ExamGradeHandler {
	return &ExamGradeHandler{
		service: service,
		logger:  logger.With().Str("component", "exam_grade_handler").Logger(),
	}
}

// Register attaches exam grade routes under /users.
func (h *ExamGradeHandler) Register(router fiber.Router) {
	router.Get("/:id/exam-grades", h.list)
	router.Put("/:id/exam-grades/:number", h.set)
}

func (h *ExamGradeHandler) list(c *fiber.Ctx) error {
	viewer, err := middleware.UserFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	userID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	grades, err := h.service.List(c.UserContext(), viewer, userID)
	if err != nil {
		return handleError(h.logger, c, err)
	}
	return utils.SendSuccess(c, "exam grades retrieved", grades)
}

func (h *ExamGradeHandler) set(c *fiber.Ctx) error {
	actor, err := middleware.UserFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	userID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	number, err := parseIntParam(c, "number")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ExamGradeRequest
	if err := bind(c, &payload); err != nil {
		return handleError(h.logger, c, err)
	}

	grade, err := h.service.Set(c.UserContext(), actor, userID, number, payload)
	if err != nil {
		return handleError(h.logger, c, err)
	}
	return utils.SendSuccess(c, "exam grade saved", grade)
}
