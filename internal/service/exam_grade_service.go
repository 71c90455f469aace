package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hw-eval-api/internal/dto"
	"github.com/noah-isme/hw-eval-api/internal/models"
	"github.com/noah-isme/hw-eval-api/internal/repository"
)

// ExamGradeService records and lists exam grades.
type ExamGradeService interface {
	List(ctx context.Context, viewer models.User, userID uint) ([]dto.ExamGradeResponse, error)
	Set(ctx context.Context, actor models.User, userID uint, number int, payload dto.ExamGradeRequest) (dto.ExamGradeResponse, error)
}

type examGradeService struct {
	repo      repository.ExamGradeRepository
	users     repository.UserRepository
	gradebook GradebookInvalidator
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewExamGradeService constructs the exam grade service. gradebook may be nil.
func NewExamGradeService(repo repository.ExamGradeRepository, users repository.UserRepository, gradebook GradebookInvalidator, validator *validator.Validate, logger zerolog.Logger) ExamGradeService {
	return &examGradeService{
		repo:      repo,
		users:     users,
		gradebook: gradebook,
		validator: validator,
		logger:    logger.With().Str("component", "exam_grade_service").Logger(),
	}
}

func (s *examGradeService) List(ctx context.Context, viewer models.User, userID uint) ([]dto.ExamGradeResponse, error) {
	if viewer.ID != userID && !viewer.CanGrade() {
		return nil, ErrForbidden
	}

	grades, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ExamGradeResponse, 0, len(grades))
	for _, grade := range grades {
		responses = append(responses, dto.NewExamGradeResponse(grade))
	}
	return responses, nil
}

// Set records points and possible points for an exam, creating the grade on first use.
func (s *examGradeService) Set(ctx context.Context, actor models.User, userID uint, number int, payload dto.ExamGradeRequest) (dto.ExamGradeResponse, error) {
	if !actor.CanAdmin() {
		return dto.ExamGradeResponse{}, ErrForbidden
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.ExamGradeResponse{}, err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return dto.ExamGradeResponse{}, notFound(err, ErrUserNotFound)
	}

	grade, created, err := s.repo.GetOrCreate(ctx, userID, number)
	if err != nil {
		return dto.ExamGradeResponse{}, err
	}

	grade.Points = payload.Points
	grade.Possible = payload.Possible
	if err := s.repo.Update(ctx, &grade); err != nil {
		return dto.ExamGradeResponse{}, err
	}

	if s.gradebook != nil {
		s.gradebook.Invalidate(ctx, userID)
	}

	s.logger.Info().
		Uint("user_id", userID).
		Int("exam", number).
		Bool("created", created).
		Str("percent", grade.PctString()).
		Msg("exam grade recorded")

	return dto.NewExamGradeResponse(grade), nil
}
