package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/eston/admissions/internal/app/models"
	"github.com/eston/admissions/internal/app/models/dto"
	"github.com/eston/admissions/internal/app/repositories"
	"github.com/eston/admissions/internal/pkg/apperrors"
)

// CourseService defines the interface for course catalog operations
type CourseService interface {
	ListPublic(ctx context.Context, filter dto.CourseFilter) ([]*models.Course, int64, error)
	GetPublic(ctx context.Context, id int64) (*dto.CourseDetailResponse, error)
	List(ctx context.Context, filter dto.CourseFilter) ([]*models.Course, int64, error)
	Create(ctx context.Context, req *dto.CreateCourseRequest) (*models.Course, error)
	Update(ctx context.Context, id int64, req *dto.UpdateCourseRequest) (*models.Course, error)
	Delete(ctx context.Context, id int64) error
	ToggleStatus(ctx context.Context, id int64) (*models.Course, error)
}

type courseServiceImpl struct {
	courseRepo repositories.ICourseRepository
	logger     zerolog.Logger
}

// NewCourseService creates a new course service instance
func NewCourseService(courseRepo repositories.ICourseRepository, logger zerolog.Logger) CourseService {
	return &courseServiceImpl{
		courseRepo: courseRepo,
		logger:     logger,
	}
}

// ListPublic lists active courses only
func (s *courseServiceImpl) ListPublic(ctx context.Context, filter dto.CourseFilter) ([]*models.Course, int64, error) {
	filter.ActiveOnly = true
	return s.List(ctx, filter)
}

// GetPublic returns an active course with its application statistics
func (s *courseServiceImpl) GetPublic(ctx context.Context, id int64) (*dto.CourseDetailResponse, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !course.IsActive {
		return nil, apperrors.ErrCourseNotFound
	}

	stats, err := s.courseRepo.Statistics(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error loading course statistics: %w", err)
	}
	return &dto.CourseDetailResponse{Course: course, Statistics: *stats}, nil
}

// List lists courses including inactive ones
func (s *courseServiceImpl) List(ctx context.Context, filter dto.CourseFilter) ([]*models.Course, int64, error) {
	courses, total, err := s.courseRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing courses: %w", err)
	}
	return courses, total, nil
}

// Create adds a course. Codes are stored upper-case and must be unique.
func (s *courseServiceImpl) Create(ctx context.Context, req *dto.CreateCourseRequest) (*models.Course, error) {
	course := req.ToModel()
	if course.Name == "" || course.Code == "" {
		return nil, fmt.Errorf("%w: name and code are required", apperrors.ErrValidationFailed)
	}

	exists, err := s.courseRepo.CodeExists(ctx, course.Code, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.ErrCourseCodeExists
	}

	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("courseID", course.ID).Str("code", course.Code).Msg("Course created")
	return course, nil
}

// Update applies a partial patch. Renaming a course leaves application snapshots untouched.
func (s *courseServiceImpl) Update(ctx context.Context, id int64, req *dto.UpdateCourseRequest) (*models.Course, error) {
	changes := req.Changes()
	if len(changes) == 0 {
		return nil, apperrors.ErrNoFieldsToUpdate
	}

	if _, err := s.courseRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	if code, ok := changes["code"].(string); ok {
		exists, err := s.courseRepo.CodeExists(ctx, code, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperrors.ErrCourseCodeExists
		}
	}

	course, err := s.courseRepo.Update(ctx, id, changes)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("courseID", id).Int("fields", len(changes)).Msg("Course updated")
	return course, nil
}

// Delete removes a course that no application refers to
func (s *courseServiceImpl) Delete(ctx context.Context, id int64) error {
	if _, err := s.courseRepo.GetByID(ctx, id); err != nil {
		return err
	}

	inUse, err := s.courseRepo.HasApplications(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return apperrors.ErrCourseHasApplications
	}

	if err := s.courseRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrCourseHasApplications) || errors.Is(err, apperrors.ErrCourseNotFound) {
			return err
		}
		return fmt.Errorf("error deleting course: %w", err)
	}

	s.logger.Info().Int64("courseID", id).Msg("Course deleted")
	return nil
}

// ToggleStatus flips whether the course accepts applications
func (s *courseServiceImpl) ToggleStatus(ctx context.Context, id int64) (*models.Course, error) {
	course, err := s.courseRepo.ToggleActive(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("courseID", id).Bool("active", course.IsActive).Msg("Course status toggled")
	return course, nil
}
