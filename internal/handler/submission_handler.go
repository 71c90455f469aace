package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hw-eval-api/internal/dto"
	"github.com/noah-isme/hw-eval-api/internal/middleware"
	"github.com/noah-isme/hw-eval-api/internal/service"
	"github.com/noah-isme/hw-eval-api/internal/utils"
)

// SubmissionHandler exposes submission lifecycle endpoints.
type SubmissionHandler struct {
	service service.SubmissionService
	logger  zerolog.Logger
}

// NewSubmissionHandler constructs the handler.
func NewSubmissionHandler(service service.SubmissionService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service: service,
		logger:  logger.With().Str("component", "submission_handler").Logger(),
	}
}

// RegisterAssignmentRoutes attaches the caller's submission of an assignment.
func (h *SubmissionHandler) RegisterAssignmentRoutes(router fiber.Router) {
	router.Get("/:number/submission", h.start)
}

// Register attaches submission endpoints to the router group.
func (h *SubmissionHandler) Register(router fiber.Router) {
	router.Get("/:id", h.get)
	router.Patch("/:id/extension", h.extend)
	router.Post("/:id/files", h.addFile)
}

func (h *SubmissionHandler) start(c *fiber.Ctx) error {
	user, err := middleware.UserFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	number, err := parseIntParam(c, "number")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submission, created, err := h.service.Start(c.UserContext(), user, number)
	if err != nil {
		return handleError(h.logger, c, err)
	}
	if created {
		return utils.SendCreated(c, "submission created", submission)
	}
	return utils.SendSuccess(c, "submission retrieved", submission)
}

func (h *SubmissionHandler) get(c *fiber.Ctx) error {
	user, err := middleware.UserFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submission, err := h.service.Get(c.UserContext(), user, id)
	if err != nil {
		return handleError(h.logger, c, err)
	}
	return utils.SendSuccess(c, "submission retrieved", submission)
}

func (h *SubmissionHandler) extend(c *fiber.Ctx) error {
	user, err := middleware.UserFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SubmissionExtensionRequest
	if err := bind(c, &payload); err != nil {
		return handleError(h.logger, c, err)
	}

	submission, err := h.service.Extend(c.UserContext(), user, id, payload)
	if err != nil {
		return handleError(h.logger, c, err)
	}
	return utils.SendSuccess(c, "submission updated", submission)
}

func (h *SubmissionHandler) addFile(c *fiber.Ctx) error {
	user, err := middleware.UserFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SourceFileCreateRequest
	if err := bind(c, &payload); err != nil {
		return handleError(h.logger, c, err)
	}

	submission, err := h.service.AddFile(c.UserContext(), user, id, payload)
	if err != nil {
		return handleError(h.logger, c, err)
	}
	return utils.SendCreated(c, "file added", submission)
}
