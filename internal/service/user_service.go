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

// ErrUserExists indicates the user name is taken.
var ErrUserExists = errors.New("user already exists")

// UserService resolves and registers users.
type UserService interface {
	Resolve(ctx context.Context, id uint) (models.User, error)
	Create(ctx context.Context, actor models.User, payload dto.UserCreateRequest) (dto.UserResponse, error)
}

type userService struct {
	repo      repository.UserRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewUserService constructs the user service.
func NewUserService(repo repository.UserRepository, validator *validator.Validate, logger zerolog.Logger) UserService {
	return &userService{
		repo:      repo,
		validator: validator,
		logger:    logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *userService) Resolve(ctx context.Context, id uint) (models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return models.User{}, notFound(err, ErrUserNotFound)
	}
	return user, nil
}

func (s *userService) Create(ctx context.Context, actor models.User, payload dto.UserCreateRequest) (dto.UserResponse, error) {
	if !actor.CanAdmin() {
		return dto.UserResponse{}, ErrForbidden
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	name := strings.TrimSpace(payload.Name)
	if _, err := s.repo.GetByName(ctx, name); err == nil {
		return dto.UserResponse{}, ErrUserExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.UserResponse{}, err
	}

	user := models.User{Name: name, Role: strings.ToLower(payload.Role)}
	if err := s.repo.Create(ctx, &user); err != nil {
		return dto.UserResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Str("role", user.Role).Msg("user created")
	return dto.NewUserResponse(user), nil
}
