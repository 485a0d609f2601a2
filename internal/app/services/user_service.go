package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/eston/admissions/internal/app/models"
	"github.com/eston/admissions/internal/app/models/dto"
	"github.com/eston/admissions/internal/app/repositories"
	"github.com/eston/admissions/internal/pkg/apperrors"
	"github.com/eston/admissions/internal/pkg/auth"
)

// UserService defines admin user management
type UserService interface {
	List(ctx context.Context, filter dto.UserFilter) ([]*models.User, int64, error)
	Create(ctx context.Context, req *dto.CreateUserRequest) (*models.User, error)
	UpdateRole(ctx context.Context, id int64, role string) (*models.User, error)
	Delete(ctx context.Context, actorID, id int64) error
	ToggleStatus(ctx context.Context, actorID, id int64) (*models.User, error)
}

type userServiceImpl struct {
	userRepo repositories.IUserRepository
	logger   zerolog.Logger
}

// NewUserService creates a new user service instance
func NewUserService(userRepo repositories.IUserRepository, logger zerolog.Logger) UserService {
	return &userServiceImpl{
		userRepo: userRepo,
		logger:   logger,
	}
}

func (s *userServiceImpl) List(ctx context.Context, filter dto.UserFilter) ([]*models.User, int64, error) {
	if filter.Role != "" {
		role, ok := models.ParseRoleType(filter.Role)
		if !ok {
			return nil, 0, apperrors.NewValidationError("role", "role must be one of student, admin")
		}
		filter.Role = string(role)
	}

	users, total, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing users: %w", err)
	}
	return users, total, nil
}

// Create adds an active account with the requested role
func (s *userServiceImpl) Create(ctx context.Context, req *dto.CreateUserRequest) (*models.User, error) {
	role, ok := models.ParseRoleType(req.Role)
	if !ok {
		return nil, apperrors.NewValidationError("role", "role must be one of student, admin")
	}
	if len(req.Password) < auth.MinPasswordLength {
		return nil, apperrors.NewValidationError("password", fmt.Sprintf("password must be at least %d characters", auth.MinPasswordLength))
	}

	email := normalizeEmail(req.Email)
	exists, err := s.userRepo.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("error checking if email exists: %w", err)
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:     email,
		Password:  hashedPassword,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Phone:     trimmed(req.Phone),
		Role:      role,
		IsActive:  true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info().Int64("userID", user.ID).Str("role", string(role)).Msg("User created by admin")
	return user, nil
}

// UpdateRole reassigns the user's role
func (s *userServiceImpl) UpdateRole(ctx context.Context, id int64, role string) (*models.User, error) {
	parsed, ok := models.ParseRoleType(role)
	if !ok {
		return nil, apperrors.NewValidationError("role", "role must be one of student, admin")
	}
	return s.userRepo.UpdateRole(ctx, id, parsed)
}

// Delete removes a user other than the acting admin
func (s *userServiceImpl) Delete(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return apperrors.ErrCannotDeleteSelf
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("userID", id).Int64("actorID", actorID).Msg("User deleted")
	return nil
}

// ToggleStatus activates or deactivates a user other than the acting admin
func (s *userServiceImpl) ToggleStatus(ctx context.Context, actorID, id int64) (*models.User, error) {
	if actorID == id {
		return nil, apperrors.ErrCannotDisableSelf
	}
	user, err := s.userRepo.ToggleActive(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("userID", id).Bool("active", user.IsActive).Msg("User status toggled")
	return user, nil
}
