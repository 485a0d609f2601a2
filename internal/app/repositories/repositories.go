package repositories

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eston/admissions/internal/app/models"
	"github.com/eston/admissions/internal/app/models/dto"
)

// scanner is satisfied by pgx.Row and pgx.Rows
type scanner interface {
	Scan(dest ...any) error
}

// IUserRepository defines the interface for user-related database operations
type IUserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, filter dto.UserFilter) ([]*models.User, int64, error)
	UpdateRole(ctx context.Context, id int64, role models.RoleType) (*models.User, error)
	UpdateProfile(ctx context.Context, id int64, changes map[string]interface{}) (*models.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	ToggleActive(ctx context.Context, id int64) (*models.User, error)
	Delete(ctx context.Context, id int64) error
	ListEmails(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int64, error)
}

// ICourseRepository defines the interface for course catalog operations
type ICourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id int64) (*models.Course, error)
	FindActiveByName(ctx context.Context, name string) (*models.Course, error)
	List(ctx context.Context, filter dto.CourseFilter) ([]*models.Course, int64, error)
	Update(ctx context.Context, id int64, changes map[string]interface{}) (*models.Course, error)
	CodeExists(ctx context.Context, code string, excludeID int64) (bool, error)
	HasApplications(ctx context.Context, id int64) (bool, error)
	ToggleActive(ctx context.Context, id int64) (*models.Course, error)
	Delete(ctx context.Context, id int64) error
	Statistics(ctx context.Context, id int64) (*models.CourseStatistics, error)
	Count(ctx context.Context) (int64, error)
}

// IApplicationRepository defines the interface for admission application storage
type IApplicationRepository interface {
	Create(ctx context.Context, app *models.Application) error
	GetByID(ctx context.Context, id int64) (*models.Application, error)
	List(ctx context.Context, filter dto.ApplicationFilter) ([]*models.Application, int64, error)
	ListByEmail(ctx context.Context, email string) ([]*models.Application, error)
	UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus, notes *string, expectedVersion *int) (*models.Application, error)
	SetDocuments(ctx context.Context, id int64, submitted bool, onlyPending bool) (*models.Application, error)
	Delete(ctx context.Context, id int64, onlyPending bool) error
	CountByStatus(ctx context.Context) (models.ApplicationStatusCounts, error)
	Recent(ctx context.Context, limit uint64) ([]*models.Application, error)
}

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository        *UserRepository
	CourseRepository      *CourseRepository
	ApplicationRepository *ApplicationRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:        NewUserRepository(db),
		CourseRepository:      NewCourseRepository(db),
		ApplicationRepository: NewApplicationRepository(db),
	}
}

// likePattern escapes LIKE wildcards in s and wraps it for a substring match
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(s)) + "%"
}
