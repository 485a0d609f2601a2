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
	"github.com/eston/admissions/internal/pkg/websocket"
)

// ApplicationService defines the admissions workflow
type ApplicationService interface {
	Submit(ctx context.Context, req *dto.SubmitApplicationRequest) (*models.Application, error)
	List(ctx context.Context, filter dto.ApplicationFilter) ([]*models.Application, int64, error)
	ListMine(ctx context.Context, caller *models.AuthUser) ([]*models.Application, error)
	Get(ctx context.Context, caller *models.AuthUser, id int64) (*models.Application, error)
	UpdateStatus(ctx context.Context, id int64, req *dto.UpdateStatusRequest) (*models.Application, error)
	SetDocuments(ctx context.Context, caller *models.AuthUser, id int64, submitted bool) (*models.Application, error)
	Delete(ctx context.Context, caller *models.AuthUser, id int64) error
}

type applicationServiceImpl struct {
	appRepo    repositories.IApplicationRepository
	courseRepo repositories.ICourseRepository
	notifier   Notifier
	logger     zerolog.Logger
}

// NewApplicationService creates a new application service instance
func NewApplicationService(
	appRepo repositories.IApplicationRepository,
	courseRepo repositories.ICourseRepository,
	notifier Notifier,
	logger zerolog.Logger,
) ApplicationService {
	return &applicationServiceImpl{
		appRepo:    appRepo,
		courseRepo: courseRepo,
		notifier:   notifier,
		logger:     logger,
	}
}

// ParseStatusFilter maps the status query parameter to a filter value. Empty and "all"
// mean no filtering.
func ParseStatusFilter(raw string) (models.ApplicationStatus, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "all") {
		return "", nil
	}
	status, ok := models.ParseApplicationStatus(raw)
	if !ok {
		return "", apperrors.NewValidationError("status", "status must be one of all, pending, approved, rejected")
	}
	return status, nil
}

// resolveCourse links app to the catalog. An explicit course id must name an active
// course; a free-text name is matched against active course names and kept verbatim
// when nothing matches.
func (s *applicationServiceImpl) resolveCourse(ctx context.Context, app *models.Application) error {
	if app.CourseID != nil {
		course, err := s.courseRepo.GetByID(ctx, *app.CourseID)
		if err != nil {
			if errors.Is(err, apperrors.ErrCourseNotFound) {
				return apperrors.ErrCourseUnavailable
			}
			return fmt.Errorf("error resolving course: %w", err)
		}
		if !course.IsActive {
			return apperrors.ErrCourseUnavailable
		}
		app.CourseName = course.Name
		return nil
	}

	course, err := s.courseRepo.FindActiveByName(ctx, app.CourseName)
	switch {
	case err == nil:
		app.CourseID = &course.ID
		app.CourseName = course.Name
	case errors.Is(err, apperrors.ErrCourseNotFound):
		app.CourseID = nil
	default:
		return fmt.Errorf("error resolving course: %w", err)
	}
	return nil
}

// Submit stores a new pending application and notifies the applicant and staff
func (s *applicationServiceImpl) Submit(ctx context.Context, req *dto.SubmitApplicationRequest) (*models.Application, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: application is nil", apperrors.ErrValidationFailed)
	}
	if !req.Declaration {
		return nil, apperrors.NewValidationError("declaration", "You must accept the declaration")
	}

	app := req.ToModel()
	if app.DateOfBirth.IsZero() {
		return nil, apperrors.NewValidationError("dateOfBirth", "dateOfBirth must be a date in YYYY-MM-DD format")
	}

	if err := s.resolveCourse(ctx, app); err != nil {
		return nil, err
	}

	if err := s.appRepo.Create(ctx, app); err != nil {
		if errors.Is(err, apperrors.ErrApplicationAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating application: %w", err)
	}

	s.logger.Info().
		Int64("applicationID", app.ID).
		Str("course", app.CourseName).
		Msg("Application submitted")

	s.notifier.ApplicationSubmitted(ctx, app)
	return app, nil
}

// List returns applications matching filter
func (s *applicationServiceImpl) List(ctx context.Context, filter dto.ApplicationFilter) ([]*models.Application, int64, error) {
	apps, total, err := s.appRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing applications: %w", err)
	}
	return apps, total, nil
}

// ListMine returns the applications submitted under the caller's email
func (s *applicationServiceImpl) ListMine(ctx context.Context, caller *models.AuthUser) ([]*models.Application, error) {
	apps, err := s.appRepo.ListByEmail(ctx, caller.Email)
	if err != nil {
		return nil, fmt.Errorf("error listing applications: %w", err)
	}
	return apps, nil
}

// Get returns one application to an admin or its owner
func (s *applicationServiceImpl) Get(ctx context.Context, caller *models.AuthUser, id int64) (*models.Application, error) {
	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && !caller.Owns(app) {
		return nil, apperrors.ErrNotApplicationOwner
	}
	return app, nil
}

// UpdateStatus records a review decision. Decisions are final, and a supplied version
// must match the stored one.
func (s *applicationServiceImpl) UpdateStatus(ctx context.Context, id int64, req *dto.UpdateStatusRequest) (*models.Application, error) {
	status, ok := models.ParseApplicationStatus(req.Status)
	if !ok {
		return nil, apperrors.NewValidationError("status", "status must be one of pending, approved, rejected")
	}

	current, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status.IsTerminal() {
		return nil, apperrors.ErrApplicationDecided
	}
	if !current.Status.CanTransitionTo(status) {
		return nil, apperrors.NewValidationError("status", fmt.Sprintf("application is already %s", current.Status))
	}
	if req.Version != nil && *req.Version != current.Version {
		return nil, apperrors.ErrApplicationStale
	}

	updated, err := s.appRepo.UpdateStatus(ctx, id, status, req.AdminNotes, req.Version)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("applicationID", id).
		Str("status", string(updated.Status)).
		Int("version", updated.Version).
		Msg("Application status updated")

	s.notifier.ApplicationChanged(websocket.EventApplicationStatusChanged, updated)
	return updated, nil
}

// authorizeOwnerChange allows admins at any status and owners while the application is pending
func authorizeOwnerChange(caller *models.AuthUser, app *models.Application) error {
	if caller.IsAdmin() {
		return nil
	}
	if !caller.Owns(app) {
		return apperrors.ErrNotApplicationOwner
	}
	if app.Status != models.StatusPending {
		return apperrors.ErrApplicationNotPending
	}
	return nil
}

// SetDocuments toggles the documents-submitted flag
func (s *applicationServiceImpl) SetDocuments(ctx context.Context, caller *models.AuthUser, id int64, submitted bool) (*models.Application, error) {
	current, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwnerChange(caller, current); err != nil {
		return nil, err
	}

	updated, err := s.appRepo.SetDocuments(ctx, id, submitted, !caller.IsAdmin())
	if err != nil {
		return nil, err
	}

	s.notifier.ApplicationChanged(websocket.EventApplicationDocumentsUpdated, updated)
	return updated, nil
}

// Delete withdraws (owner) or removes (admin) an application
func (s *applicationServiceImpl) Delete(ctx context.Context, caller *models.AuthUser, id int64) error {
	current, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authorizeOwnerChange(caller, current); err != nil {
		return err
	}

	if err := s.appRepo.Delete(ctx, id, !caller.IsAdmin()); err != nil {
		return err
	}

	s.logger.Info().
		Int64("applicationID", id).
		Int64("userID", caller.ID).
		Bool("admin", caller.IsAdmin()).
		Msg("Application deleted")

	s.notifier.ApplicationDeleted(current)
	return nil
}
