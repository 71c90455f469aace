package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hw-eval-api/internal/evaluation"
	"github.com/noah-isme/hw-eval-api/internal/middleware"
	"github.com/noah-isme/hw-eval-api/internal/service"
	"github.com/noah-isme/hw-eval-api/internal/utils"
)

var errInvalidBody = errors.New("invalid request body")

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	parsed, err := strconv.ParseUint(strings.TrimSpace(c.Params(name)), 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid " + name)
	}
	return uint(parsed), nil
}

func parseIntParam(c *fiber.Ctx, name string) (int, error) {
	parsed, err := strconv.Atoi(strings.TrimSpace(c.Params(name)))
	if err != nil || parsed < 0 {
		return 0, errors.New("invalid " + name)
	}
	return parsed, nil
}

func unauthorized(c *fiber.Ctx) error {
	return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) zerolog.Logger {
	if correlation := middleware.GetCorrelationID(c); correlation != "" {
		return base.With().Str("correlation_id", correlation).Logger()
	}
	return base
}

func validationDetails(errs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, fieldErr := range errs {
		details[fieldErr.Field()] = fieldErr.Tag()
	}
	return details
}

// handleError maps service and core errors onto the response envelope.
func handleError(logger zerolog.Logger, c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrors):
		return utils.SendErrorWithDetails(c, fiber.StatusBadRequest, "validation failed", validationDetails(validationErrors))
	case errors.Is(err, errInvalidBody):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidScore), errors.Is(err, service.ErrInvalidRubric):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrForbidden):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrAssignmentNotFound),
		errors.Is(err, service.ErrSubmissionNotFound),
		errors.Is(err, service.ErrEvalItemNotFound),
		errors.Is(err, service.ErrSelfEvalNotFound),
		errors.Is(err, service.ErrGraderEvalNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAssignmentExists),
		errors.Is(err, service.ErrUserExists),
		errors.Is(err, evaluation.ErrNotGradable),
		errors.Is(err, evaluation.ErrInvalidState),
		errors.Is(err, evaluation.ErrItemNotInRubric):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	default:
		logger := requestLogger(logger, c)
		logger.Error().Err(err).Str("path", c.Path()).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}

func bind(c *fiber.Ctx, target interface{}) error {
	if err := c.BodyParser(target); err != nil {
		return errInvalidBody
	}
	return nil
}
