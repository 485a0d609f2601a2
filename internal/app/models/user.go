package models

import (
	"strings"
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID        int64     `json:"id" db:"id" example:"1"`
	Email     string    `json:"email" db:"email" example:"ama.mensah@example.com"`
	Password  string    `json:"-" db:"password"`
	FirstName string    `json:"first_name" db:"first_name" example:"Ama"`
	LastName  string    `json:"last_name" db:"last_name" example:"Mensah"`
	Phone     *string   `json:"phone,omitempty" db:"phone" example:"+233201234567"`
	Role      RoleType  `json:"role" db:"role" example:"student"`
	IsActive  bool      `json:"is_active" db:"is_active" example:"true"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// FullName joins first and last name
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// AuthUser is the minimal projection of the caller attached to each authenticated request
type AuthUser struct {
	ID        int64    `json:"id"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Role      RoleType `json:"role"`
}

// IsAdmin reports whether the caller holds the admin role
func (a *AuthUser) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}

// Owns reports whether the caller submitted the application, matched by email
func (a *AuthUser) Owns(app *Application) bool {
	return a != nil && app != nil && strings.EqualFold(strings.TrimSpace(a.Email), strings.TrimSpace(app.Email))
}

// Projection returns the AuthUser view of u
func (u *User) Projection() *AuthUser {
	return &AuthUser{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
	}
}
