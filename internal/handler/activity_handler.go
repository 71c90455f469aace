package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hw-eval-api/internal/dto"
	"github.com/noah-isme/hw-eval-api/internal/middleware"
	"github.com/noah-isme/hw-eval-api/internal/service"
	"github.com/noah-isme/hw-eval-api/internal/utils"
)

// ActivityHandler serves the evaluation audit feed.
type ActivityHandler struct {
	service service.ActivityService
	logger  zerolog.Logger
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(service service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		service: service,
		logger:  logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register attaches the feed.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Get("", h.list)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
	viewer, err := middleware.UserFrom(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.ActivityListRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	activity, err := h.service.List(c.UserContext(), viewer, req)
	if err != nil {
		return handleError(h.logger, c, err)
	}
	return utils.SendSuccess(c, "activity retrieved", activity)
}
