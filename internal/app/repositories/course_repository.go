package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eston/admissions/internal/app/models"
	"github.com/eston/admissions/internal/app/models/dto"
	"github.com/eston/admissions/internal/pkg/apperrors"
	"github.com/eston/admissions/internal/pkg/dberrors"
	"github.com/eston/admissions/internal/pkg/logger"
)

const (
	coursesCodeConstraint          = "courses_code_key"
	applicationsCourseFKConstraint = "applications_course_id_fkey"
)

var courseColumns = []string{
	"id", "name", "code", "description", "duration", "requirements",
	"fee", "is_active", "created_at", "updated_at",
}

// CourseRepository handles course catalog database operations
type CourseRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(db *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanCourse(row scanner) (*models.Course, error) {
	course := &models.Course{}
	err := row.Scan(
		&course.ID, &course.Name, &course.Code, &course.Description, &course.Duration, &course.Requirements,
		&course.Fee, &course.IsActive, &course.CreatedAt, &course.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return course, nil
}

func (r *CourseRepository) queryOne(ctx context.Context, builder squirrel.Sqlizer, op string) (*models.Course, error) {
	sql, args, err := builder.ToSql()
	if err != nil {
		logger.Error().Err(err).Str("op", op).Msg("Error building course SQL")
		return nil, fmt.Errorf("failed to build %s query: %w", op, err)
	}

	course, err := scanCourse(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCourseNotFound
		}
		if dberrors.IsDuplicateConstraintError(err, coursesCodeConstraint) {
			return nil, apperrors.ErrCourseCodeExists
		}
		logger.Error().Err(err).Str("op", op).Msg("Error executing course query")
		return nil, fmt.Errorf("error executing %s: %w", op, err)
	}
	return course, nil
}

// Create inserts course and fills in its generated fields
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	query := r.sb.Insert("courses").
		Columns("name", "code", "description", "duration", "requirements", "fee", "is_active").
		Values(course.Name, course.Code, course.Description, course.Duration, course.Requirements, course.Fee, course.IsActive).
		Suffix("RETURNING " + strings.Join(courseColumns, ", "))

	created, err := r.queryOne(ctx, query, "create course")
	if err != nil {
		return err
	}
	*course = *created
	return nil
}

// GetByID retrieves a course by ID
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	return r.queryOne(ctx, r.sb.Select(courseColumns...).From("courses").Where(squirrel.Eq{"id": id}), "get course by id")
}

// FindActiveByName matches an active course by name, ignoring case and surrounding space
func (r *CourseRepository) FindActiveByName(ctx context.Context, name string) (*models.Course, error) {
	query := r.sb.Select(courseColumns...).
		From("courses").
		Where(squirrel.Eq{"is_active": true}).
		Where("LOWER(name) = LOWER(?)", strings.TrimSpace(name)).
		OrderBy("id").
		Limit(1)
	return r.queryOne(ctx, query, "find course by name")
}

func courseFilterConditions(filter dto.CourseFilter) squirrel.And {
	conditions := squirrel.And{}
	if filter.ActiveOnly {
		conditions = append(conditions, squirrel.Eq{"is_active": true})
	}
	if strings.TrimSpace(filter.Search) != "" {
		pattern := likePattern(filter.Search)
		conditions = append(conditions, squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"code": pattern},
			squirrel.ILike{"description": pattern},
		})
	}
	return conditions
}

func (r *CourseRepository) listQuery(filter dto.CourseFilter) squirrel.SelectBuilder {
	query := r.sb.Select(courseColumns...).
		From("courses").
		Where(courseFilterConditions(filter)).
		OrderBy("name ASC", "id ASC")
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit)).Offset(filter.Offset)
	}
	return query
}

// List returns one page of courses matching filter plus the total match count
func (r *CourseRepository) List(ctx context.Context, filter dto.CourseFilter) ([]*models.Course, int64, error) {
	total, err := countRows(ctx, r.db, r.sb.Select("COUNT(*)").From("courses").Where(courseFilterConditions(filter)))
	if err != nil {
		logger.Error().Err(err).Msg("Error counting courses")
		return nil, 0, err
	}

	sql, args, err := r.listQuery(filter).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list courses query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list courses query")
		return nil, 0, fmt.Errorf("error querying courses: %w", err)
	}
	defer rows.Close()

	courses := []*models.Course{}
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning course row: %w", err)
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating course rows: %w", err)
	}

	return courses, total, nil
}

func (r *CourseRepository) update(id int64) squirrel.UpdateBuilder {
	return r.sb.Update("courses").
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(courseColumns, ", "))
}

// Update applies a partial set of column changes
func (r *CourseRepository) Update(ctx context.Context, id int64, changes map[string]interface{}) (*models.Course, error) {
	if len(changes) == 0 {
		return nil, apperrors.ErrNoFieldsToUpdate
	}
	return r.queryOne(ctx, r.update(id).SetMap(changes), "update course")
}

// CodeExists reports whether another course (id != excludeID) already uses code
func (r *CourseRepository) CodeExists(ctx context.Context, code string, excludeID int64) (bool, error) {
	query := r.sb.Select("1").
		Prefix("SELECT EXISTS (").
		From("courses").
		Where(squirrel.Eq{"code": code}).
		Suffix(")")
	if excludeID > 0 {
		query = query.Where(squirrel.NotEq{"id": excludeID})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build code exists query: %w", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		logger.Error().Err(err).Str("code", code).Msg("Error checking course code")
		return false, fmt.Errorf("error checking course code: %w", err)
	}
	return exists, nil
}

// hasApplicationsQuery matches applications linked by id, or by name for rows
// submitted before the course was in the catalog
func (r *CourseRepository) hasApplicationsQuery(id int64) squirrel.SelectBuilder {
	return r.sb.Select("1").
		Prefix("SELECT EXISTS (").
		From("applications a").
		Join("courses c ON c.id = ?", id).
		Where(squirrel.Or{
			squirrel.Expr("a.course_id = c.id"),
			squirrel.Expr("LOWER(a.course_name) = LOWER(c.name)"),
		}).
		Suffix(")")
}

// HasApplications reports whether any application references the course
func (r *CourseRepository) HasApplications(ctx context.Context, id int64) (bool, error) {
	sql, args, err := r.hasApplicationsQuery(id).ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build course applications query: %w", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		logger.Error().Err(err).Int64("courseID", id).Msg("Error checking course applications")
		return false, fmt.Errorf("error checking course applications: %w", err)
	}
	return exists, nil
}

// ToggleActive flips is_active
func (r *CourseRepository) ToggleActive(ctx context.Context, id int64) (*models.Course, error) {
	return r.queryOne(ctx, r.update(id).Set("is_active", squirrel.Expr("NOT is_active")), "toggle course status")
}

// Delete removes a course. The foreign key still guards against a race with a new submission.
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	err := deleteByID(ctx, r.db, r.sb, "courses", id, apperrors.ErrCourseNotFound)
	if dberrors.IsForeignKeyViolation(err, applicationsCourseFKConstraint) {
		return apperrors.ErrCourseHasApplications
	}
	return err
}

func (r *CourseRepository) statisticsQuery(id int64) squirrel.SelectBuilder {
	return r.sb.Select(
		"COUNT(a.id)",
		"COUNT(a.id) FILTER (WHERE a.status = 'pending')",
		"COUNT(a.id) FILTER (WHERE a.status = 'approved')",
		"COUNT(a.id) FILTER (WHERE a.status = 'rejected')",
	).
		From("courses c").
		LeftJoin("applications a ON a.course_id = c.id OR LOWER(a.course_name) = LOWER(c.name)").
		Where(squirrel.Eq{"c.id": id})
}

// Statistics returns per-status application counts for a course
func (r *CourseRepository) Statistics(ctx context.Context, id int64) (*models.CourseStatistics, error) {
	sql, args, err := r.statisticsQuery(id).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build course statistics query: %w", err)
	}

	stats := &models.CourseStatistics{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&stats.TotalApplications, &stats.Pending, &stats.Approved, &stats.Rejected)
	if err != nil {
		logger.Error().Err(err).Int64("courseID", id).Msg("Error loading course statistics")
		return nil, fmt.Errorf("error loading course statistics: %w", err)
	}
	return stats, nil
}

// Count returns the number of courses in the catalog
func (r *CourseRepository) Count(ctx context.Context) (int64, error) {
	return countRows(ctx, r.db, r.sb.Select("COUNT(*)").From("courses"))
}
