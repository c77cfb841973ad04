package dto

import (
	"time"

	"github.com/openlearn/lms-go-api/internal/models"
)

// RegisterRequest is the payload for account registration.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=1,max=255"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin teacher"`
}

// LoginRequest carries login credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse is returned on successful login.
type TokenResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// UserResponse serializes an account without credential material.
type UserResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUserResponse converts a User model into a DTO.
func NewUserResponse(model models.User) UserResponse {
	return UserResponse{
		ID:        model.ID,
		Email:     model.Email,
		Name:      model.Name,
		Role:      model.Role,
		CreatedAt: model.CreatedAt,
	}
}
