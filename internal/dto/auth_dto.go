package dto

import (
	"github.com/carebridgehq/carebridge-backend/internal/models"
	"github.com/google/uuid"
)

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ResendVerificationRequest struct {
	Email string `json:"email"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// OAuthRequest carries the provider credential material delivered by the
// client after the external redirect flow. Google sends an ID token,
// Facebook an access token. The email is always taken from the verified
// provider assertion, never from the request body.
type OAuthRequest struct {
	IDToken     string `json:"id_token,omitempty"`
	AccessToken string `json:"access_token,omitempty"`
	FullName    string `json:"full_name,omitempty"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type UserResponse struct {
	ID         uuid.UUID       `json:"id"`
	Email      string          `json:"email"`
	FullName   string          `json:"full_name,omitempty"`
	Role       models.UserRole `json:"role"`
	IsVerified bool            `json:"is_verified"`
	IsApproved bool            `json:"is_approved"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		FullName:   u.FullName,
		Role:       u.Role,
		IsVerified: u.IsVerified,
		IsApproved: u.IsApproved,
	}
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}
