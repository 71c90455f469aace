package dto

import "github.com/noah-isme/hw-eval-api/internal/models"

// UserCreateRequest registers a user.
type UserCreateRequest struct {
	Name string `json:"name" validate:"required,min=1,max=64"`
	Role string `json:"role" validate:"required,oneof=student grader admin"`
}

// UserResponse serializes a user.
type UserResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// NewUserResponse converts a User model into a DTO.
func NewUserResponse(model models.User) UserResponse {
	return UserResponse{ID: model.ID, Name: model.Name, Role: model.Role}
}
