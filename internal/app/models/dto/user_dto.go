package dto

// CreateUserRequest is an admin-created account
type CreateUserRequest struct {
	Email     string  `json:"email" binding:"required,email"`
	FirstName string  `json:"first_name" binding:"required,notblank"`
	LastName  string  `json:"last_name" binding:"required,notblank"`
	Role      string  `json:"role" binding:"required,oneof=student admin"`
	Password  string  `json:"password" binding:"required,min=6"`
	Phone     *string `json:"phone"`
}

// UpdateUserRoleRequest reassigns a user's role
type UpdateUserRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=student admin"`
}

// UserFilter narrows user listings
type UserFilter struct {
	Search string
	// Role is empty for all roles
	Role   string
	Limit  int
	Offset uint64
}
