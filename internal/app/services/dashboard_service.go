package services

import (
	"context"
	"fmt"

	"github.com/eston/admissions/internal/app/models/dto"
	"github.com/eston/admissions/internal/app/repositories"
)

const recentApplicationsLimit = 5

// DashboardService aggregates admin landing page figures
type DashboardService interface {
	Summary(ctx context.Context) (*dto.DashboardResponse, error)
}

type dashboardServiceImpl struct {
	userRepo   repositories.IUserRepository
	courseRepo repositories.ICourseRepository
	appRepo    repositories.IApplicationRepository
}

// NewDashboardService creates a new dashboard service instance
func NewDashboardService(
	userRepo repositories.IUserRepository,
	courseRepo repositories.ICourseRepository,
	appRepo repositories.IApplicationRepository,
) DashboardService {
	return &dashboardServiceImpl{
		userRepo:   userRepo,
		courseRepo: courseRepo,
		appRepo:    appRepo,
	}
}

func (s *dashboardServiceImpl) Summary(ctx context.Context) (*dto.DashboardResponse, error) {
	users, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("error counting users: %w", err)
	}
	courses, err := s.courseRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("error counting courses: %w", err)
	}
	byStatus, err := s.appRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("error counting applications: %w", err)
	}
	recent, err := s.appRepo.Recent(ctx, recentApplicationsLimit)
	if err != nil {
		return nil, fmt.Errorf("error loading recent applications: %w", err)
	}

	return &dto.DashboardResponse{
		TotalUsers:           users,
		TotalCourses:         courses,
		TotalApplications:    byStatus.Total(),
		ApplicationsByStatus: byStatus,
		RecentApplications:   recent,
	}, nil
}
