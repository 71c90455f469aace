package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hw-eval-api/internal/dto"
	"github.com/noah-isme/hw-eval-api/internal/middleware"
	"github.com/noah-isme/hw-eval-api/internal/service"
	"github.com/noah-isme/hw-eval-api/internal/utils"
)

// AssignmentHandler wires assignment HTTP routes.
type AssignmentHandler struct {
	service service.AssignmentService
	logger  zerolog.Logger
}

// NewAssignmentHandler constructs the handler.
func NewAssignmentHandler(service service.AssignmentService, logger zerolog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		service: service,
		logger:  logger.With().Str("component", "assignment_handler").Logger(),
	}
}

// Register attaches assignment endpoints to the router group.
func (h *AssignmentHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Get("/:number", h.get)
}

func (h *AssignmentHandler) list(c *fiber.Ctx) error {
	assignments, err := h.service.List(c.UserContext())
	if err != nil {
		return handleError(h.logger, c, err)
	}
	return utils.SendSuccess(c, "assignments retrieved", assignments)
}

func (h *AssignmentHandler) get(c *fiber.Ctx) error {
	number, err := parseIntParam(c, "number")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	assignment, err := h.service.Get(c.UserContext(), number)
	if err != nil {
		return handleError(h.logger, c, err)
	}
	return utils.SendSuccess(c, "assignment retrieved", assignment)
}

func (h *AssignmentHandler) create(c *fiber.Ctx) error {
	user, err := middleware.UserFrom(c)
	if err != nil {
		return unauthorized(c)
	}

	var payload dto.AssignmentCreateRequest
	if err := bind(c, &payload); err != nil {
		return handleError(h.logger, c, err)
	}

	assignment, err := h.service.Create(c.UserContext(), user, payload)
	if err != nil {
		return handleError(h.logger, c, err)
	}
	return utils.SendCreated(c, "assignment created", assignment)
}
