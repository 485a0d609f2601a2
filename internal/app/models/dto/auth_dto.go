package dto

import "github.com/eston/admissions/internal/app/models"

// RegisterRequest represents a self-service student registration
type RegisterRequest struct {
	Email     string  `json:"email" binding:"required,email"`
	Password  string  `json:"password" binding:"required,min=6"`
	FirstName string  `json:"first_name" binding:"required,notblank"`
	LastName  string  `json:"last_name" binding:"required,notblank"`
	Phone     *string `json:"phone"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ForgotPasswordRequest resets the password of the account registered under Email
type ForgotPasswordRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// UpdateProfileRequest carries the profile fields to change; nil fields are left untouched
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,notblank"`
	LastName  *string `json:"last_name" binding:"omitempty,notblank"`
	Phone     *string `json:"phone"`
}

// IsEmpty reports whether the request changes nothing
func (r *UpdateProfileRequest) IsEmpty() bool {
	return r.FirstName == nil && r.LastName == nil && r.Phone == nil
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type" example:"Bearer"`
	ExpiresIn   int64  `json:"expires_in" example:"86400"`
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token TokenResponse `json:"token"`
	User  *models.User  `json:"user"`
}
