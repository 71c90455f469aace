package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hw-eval-api/internal/dto"
	"github.com/noah-isme/hw-eval-api/internal/middleware"
	"github.com/noah-isme/hw-eval-api/internal/service"
	"github.com/noah-isme/hw-eval-api/internal/utils"
)

// UserHandler exposes account endpoints.
type UserHandler struct {
	service service.UserService
	logger  zerolog.Logger
}

// NewUserHandler constructs the handler.
func NewUserHandler(service service.UserService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger.With().Str("component", "user_handler").Logger(),
	}
}

// Register attaches /me.
func (h *UserHandler) Register(router fiber.Router) {
	router.Get("/me", h.me)
}

// RegisterUserRoutes attaches account management under /users.
func (h *UserHandler) RegisterUserRoutes(router fiber.Router) {
	router.Post("", h.create)
}

func (h *UserHandler) me(c *fiber.Ctx) error {
	user, err := middleware.UserFrom(c)
	if err != nil {
		return unauthorized(c)
	}
	return utils.SendSuccess(c, "user retrieved", dto.NewUserResponse(user))
}

func (h *UserHandler) create(c *fiber.Ctx) error {
	actor, err := middleware.UserFrom(c)
	if err != nil {
		return unauthorized(c)
	}

	var payload dto.UserCreateRequest
	if err := bind(c, &payload); err != nil {
		return handleError(h.logger, c, err)
	}

	user, err := h.service.Create(c.UserContext(), actor, payload)
	if err != nil {
		return handleError(h.logger, c, err)
	}
	return utils.SendCreated(c, "user created", user)
}
