package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/hw-eval-api/internal/dto"
	"github.com/noah-isme/hw-eval-api/internal/models"
	"github.com/noah-isme/hw-eval-api/internal/repository"
)

// AssignmentService handles assignments and their rubrics.
type AssignmentService interface {
	Create(ctx context.Context, user models.User, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error)
	Get(ctx context.Context, number int) (dto.AssignmentResponse, error)
	List(ctx context.Context) ([]dto.AssignmentResponse, error)
}

type assignmentService struct {
	repo      repository.AssignmentRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAssignmentService constructs the assignment service.
func NewAssignmentService(repo repository.AssignmentRepository, validator *validator.Validate, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		repo:      repo,
		validator: validator,
		logger:    logger.With().Str("component", "assignment_service").Logger(),
	}
}

func (s *assignmentService) Create(ctx context.Context, user models.User, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	if !user.CanAdmin() {
		return dto.AssignmentResponse{}, ErrForbidden
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	if _, err := s.repo.GetByNumber(ctx, payload.Number); err == nil {
		return dto.AssignmentResponse{}, ErrAssignmentExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.AssignmentResponse{}, err
	}

	items := make([]models.EvalItem, 0, len(payload.EvalItems))
	for i, item := range payload.EvalItems {
		kind := models.EvalItemType(strings.ToLower(item.Type))
		if !kind.Valid() {
			return dto.AssignmentResponse{}, ErrInvalidRubric
		}
		items = append(items, models.EvalItem{
			Sequence:      i,
			Type:          kind,
			RelativeValue: item.RelativeValue,
			Prompt:        strings.TrimSpace(item.Prompt),
		})
	}

	assignment := models.Assignment{
		Number:    payload.Number,
		Title:     strings.TrimSpace(payload.Title),
		OpenDate:  payload.OpenDate,
		DueDate:   payload.DueDate,
		EvalDate:  payload.EvalDate,
		EvalItems: items,
	}
	if err := s.repo.Create(ctx, &assignment); err != nil {
		s.logger.Error().Err(err).Int("number", payload.Number).Msg("failed to create assignment")
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().
		Int("number", assignment.Number).
		Int("eval_items", len(items)).
		Float64("point_value", assignment.PointValue()).
		Msg("assignment created")

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Get(ctx context.Context, number int) (dto.AssignmentResponse, error) {
	assignment, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		return dto.AssignmentResponse{}, notFound(err, ErrAssignmentNotFound)
	}
	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) List(ctx context.Context) ([]dto.AssignmentResponse, error) {
	assignments, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, dto.NewAssignmentResponse(assignment))
	}
	return responses, nil
}
