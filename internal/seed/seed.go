package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/eston/admissions/internal/app/models"
	"github.com/eston/admissions/internal/app/repositories"
	"github.com/eston/admissions/internal/pkg/apperrors"
	"github.com/eston/admissions/internal/pkg/auth"
)

// Options controls what CreateDefaultData creates
type Options struct {
	AdminEmail     string
	AdminPassword  string
	AdminFirstName string
	AdminLastName  string
	Courses        bool
}

// DefaultCourses is the starter catalog created on an empty database
var DefaultCourses = []models.Course{
	{Name: "Diploma in Software Engineering", Code: "DSE", Duration: strPtr("2 years")},
	{Name: "Diploma in Networking & Cybersecurity", Code: "DNC", Duration: strPtr("2 years")},
	{Name: "Diploma in Data Science", Code: "DDS", Duration: strPtr("2 years")},
	{Name: "Diploma in Web Development", Code: "DWD", Duration: strPtr("1 year")},
	{Name: "Diploma in Graphic Design", Code: "DGD", Duration: strPtr("1 year")},
}

// CreateDefaultData creates the default admin and starter courses if they don't exist.
// Every step runs even when an earlier one fails; failures are joined.
func CreateDefaultData(
	ctx context.Context,
	userRepo repositories.IUserRepository,
	courseRepo repositories.ICourseRepository,
	opts Options,
	lgr zerolog.Logger,
) error {
	var finalErr error

	if err := ensureAdmin(ctx, userRepo, opts, lgr); err != nil {
		lgr.Error().Err(err).Msg("Error creating default admin user")
		finalErr = errors.Join(finalErr, err)
	}

	if opts.Courses {
		for i := range DefaultCourses {
			course := DefaultCourses[i]
			course.IsActive = true
			err := courseRepo.Create(ctx, &course)
			switch {
			case err == nil:
				lgr.Info().Str("code", course.Code).Msg("Default course created")
			case errors.Is(err, apperrors.ErrCourseCodeExists):
			default:
				lgr.Error().Err(err).Str("code", course.Code).Msg("Error creating default course")
				finalErr = errors.Join(finalErr, err)
			}
		}
	}

	lgr.Info().Msg("Default data check/creation finished.")
	return finalErr
}

func ensureAdmin(ctx context.Context, userRepo repositories.IUserRepository, opts Options, lgr zerolog.Logger) error {
	if opts.AdminEmail == "" {
		return nil
	}

	exists, err := userRepo.EmailExists(ctx, opts.AdminEmail)
	if err != nil {
		return fmt.Errorf("checking admin user: %w", err)
	}
	if exists {
		lgr.Info().Str("email", opts.AdminEmail).Msg("Admin user already exists, skipping creation")
		return nil
	}

	hash, err := auth.HashPassword(opts.AdminPassword)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}

	admin := &models.User{
		Email:     opts.AdminEmail,
		Password:  hash,
		FirstName: opts.AdminFirstName,
		LastName:  opts.AdminLastName,
		Role:      models.RoleAdmin,
		IsActive:  true,
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		return err
	}
	lgr.Warn().Str("email", admin.Email).Int64("adminID", admin.ID).
		Msg("Default admin user created, change its password")
	return nil
}

func strPtr(s string) *string { return &s }
