package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hw-eval-api/internal/dto"
	"github.com/noah-isme/hw-eval-api/internal/middleware"
	"github.com/noah-isme/hw-eval-api/internal/models"
	"github.com/noah-isme/hw-eval-api/internal/service"
	"github.com/noah-isme/hw-eval-api/internal/utils"
)

// EvaluationHandler serves self and grader evaluations of a submission.
type EvaluationHandler struct {
	service service.EvaluationService
	logger  zerolog.Logger
}

// NewEvaluationHandler constructs the handler.
func NewEvaluationHandler(service service.EvaluationService, logger zerolog.Logger) *EvaluationHandler {
	return &EvaluationHandler{
		service: service,
		logger:  logger.With().Str("component", "evaluation_handler").Logger(),
	}
}

// Register attaches evaluation routes under /submissions. writeGuards run
// before every mutating route.
func (h *EvaluationHandler) Register(router fiber.Router, writeGuards ...fiber.Handler) {
	router.Get("/:id/evaluation", h.get)

	write := func(handler fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, writeGuards...), handler)
	}
	router.Put("/:id/evaluation/:sequence", write(h.saveSelf)...)
	router.Delete("/:id/evaluation/:sequence", write(h.retractSelf)...)
	router.Put("/:id/evaluation/:sequence/grader", write(h.saveGrader)...)
	router.Delete("/:id/evaluation/:sequence/grader", write(h.retractGrader)...)
}

// target parses the caller, submission id and, when withSequence is set, the
// rubric sequence. A non-nil response error means a reply was already sent.
func (h *EvaluationHandler) target(c *fiber.Ctx, withSequence bool) (models.User, uint, int, bool, error) {
	user, err := middleware.UserFrom(c)
	if err != nil {
		return models.User{}, 0, 0, false, unauthorized(c)
	}
	id, err := parseUintParam(c, "id")
	if err != nil {
		return models.User{}, 0, 0, false, utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	if !withSequence {
		return user, id, 0, true, nil
	}
	sequence, err := parseIntParam(c, "sequence")
	if err != nil {
		return models.User{}, 0, 0, false, utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	return user, id, sequence, true, nil
}

func (h *EvaluationHandler) get(c *fiber.Ctx) error {
	user, id, _, ok, err := h.target(c, false)
	if !ok {
		return err
	}

	evaluation, err := h.service.Get(c.UserContext(), user, id)
	if err != nil {
		return handleError(h.logger, c, err)
	}
	return utils.SendSuccess(c, "evaluation retrieved", evaluation)
}

func (h *EvaluationHandler) saveSelf(c *fiber.Ctx) error {
	user, id, sequence, ok, err := h.target(c, true)
	if !ok {
		return err
	}

	var payload dto.SelfEvalRequest
	if err := bind(c, &payload); err != nil {
		return handleError(h.logger, c, err)
	}

	result, err := h.service.SaveSelfEval(c.UserContext(), user, id, sequence, payload)
	if err != nil {
		return handleError(h.logger, c, err)
	}
	return utils.SendSuccess(c, "self evaluation saved", result)
}

func (h *EvaluationHandler) retractSelf(c *fiber.Ctx) error {
	user, id, sequence, ok, err := h.target(c, true)
	if !ok {
		return err
	}

	evaluation, err := h.service.RetractSelfEval(c.UserContext(), user, id, sequence)
	if err != nil {
		return handleError(h.logger, c, err)
	}
	return utils.SendSuccess(c, "self evaluation retracted", evaluation)
}

func (h *EvaluationHandler) saveGrader(c *fiber.Ctx) error {
	user, id, sequence, ok, err := h.target(c, true)
	if !ok {
		return err
	}

	var payload dto.GraderEvalRequest
	if err := bind(c, &payload); err != nil {
		return handleError(h.logger, c, err)
	}

	result, err := h.service.SaveGraderEval(c.UserContext(), user, id, sequence, payload)
	if err != nil {
		return handleError(h.logger, c, err)
	}
	return utils.SendSuccess(c, "grader evaluation saved", result)
}

func (h *EvaluationHandler) retractGrader(c *fiber.Ctx) error {
	user, id, sequence, ok, err := h.target(c, true)
	if !ok {
		return err
	}

	evaluation, err := h.service.RetractGraderEval(c.UserContext(), user, id, sequence)
	if err != nil {
		return handleError(h.logger, c, err)
	}
	return utils.SendSuccess(c, "grader evaluation retracted", evaluation)
}
