package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hw-eval-api/internal/middleware"
	"github.com/noah-isme/hw-eval-api/internal/service"
	"github.com/noah-isme/hw-eval-api/internal/utils"
)

// GradebookHandler serves per-user grade listings.
type GradebookHandler struct {
	service service.GradebookService
	logger  zerolog.Logger
}

// NewGradebookHandler constructs the handler.
func NewGradebookHandler(service service.GradebookService, logger zerolog.Logger) *GradebookHandler {
	return &GradebookHandler{
		service: service,
		logger:  logger.With().Str("component", "gradebook_handler").Logger(),
	}
}

// Register attaches the caller's gradebook.
func (h *GradebookHandler) Register(router fiber.Router) {
	router.Get("/gradebook", h.mine)
}

// RegisterUserRoutes attaches gradebooks of other users under /users.
func (h *GradebookHandler) RegisterUserRoutes(router fiber.Router) {
	router.Get("/:id/gradebook", h.forUser)
}

func (h *GradebookHandler) mine(c *fiber.Ctx) error {
	viewer, err := middleware.UserFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	return h.respond(c, viewer.ID)
}

func (h *GradebookHandler) forUser(c *fiber.Ctx) error {
	userID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	return h.respond(c, userID)
}

func (h *GradebookHandler) respond(c *fiber.Ctx, userID uint) error {
	viewer, err := middleware.UserFrom(c)
	if err != nil {
		return unauthorized(c)
	}

	gradebook, err := h.service.Get(c.UserContext(), viewer, userID)
	if err != nil {
		return handleError(h.logger, c, err)
	}
	return utils.SendSuccess(c, "gradebook retrieved", gradebook)
}
