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

const applicationsEmailConstraint = "applications_email_key"

var applicationColumns = []string{
	"id", "first_name", "middle_name", "last_name", "email", "phone_number", "gender", "date_of_birth",
	"residential_address", "street_address", "street_address_line2", "city_state_province", "country",
	"course_id", "course_name", "institution_name", "highest_education", "reason_for_course", "how_hear",
	"declaration", "status", "application_date", "review_date", "admin_notes",
	"documents_submitted", "documents_updated_at", "version", "updated_at",
}

var returningApplication = "RETURNING " + strings.Join(applicationColumns, ", ")

// ApplicationRepository handles admission application database operations
type ApplicationRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewApplicationRepository creates a new ApplicationRepository
func NewApplicationRepository(db *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanApplication(row scanner) (*models.Application, error) {
	a := &models.Application{}
	err := row.Scan(
		&a.ID, &a.FirstName, &a.MiddleName, &a.LastName, &a.Email, &a.PhoneNumber, &a.Gender, &a.DateOfBirth,
		&a.ResidentialAddress, &a.StreetAddress, &a.StreetAddressLine2, &a.CityStateProvince, &a.Country,
		&a.CourseID, &a.CourseName, &a.InstitutionName, &a.HighestEducation, &a.ReasonForCourse, &a.HowHear,
		&a.Declaration, &a.Status, &a.ApplicationDate, &a.ReviewDate, &a.AdminNotes,
		&a.DocumentsSubmitted, &a.DocumentsUpdatedAt, &a.Version, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// queryOne runs a statement returning one application; pgx.ErrNoRows is passed through
func (r *ApplicationRepository) queryOne(ctx context.Context, builder squirrel.Sqlizer, op string) (*models.Application, error) {
	sql, args, err := builder.ToSql()
	if err != nil {
		logger.Error().Err(err).Str("op", op).Msg("Error building application SQL")
		return nil, fmt.Errorf("failed to build %s query: %w", op, err)
	}

	app, err := scanApplication(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		if dberrors.IsDuplicateConstraintError(err, applicationsEmailConstraint) {
			return nil, apperrors.ErrApplicationAlreadyExists
		}
		logger.Error().Err(err).Str("op", op).Msg("Error executing application query")
		return nil, fmt.Errorf("error executing %s: %w", op, err)
	}
	return app, nil
}

func (r *ApplicationRepository) insertQuery(app *models.Application) squirrel.InsertBuilder {
	return r.sb.Insert("applications").
		Columns(
			"first_name", "middle_name", "last_name", "email", "phone_number", "gender", "date_of_birth",
			"residential_address", "street_address", "street_address_line2", "city_state_province", "country",
			"course_id", "course_name", "institution_name", "highest_education", "reason_for_course", "how_hear",
			"declaration", "status",
		).
		Values(
			app.FirstName, app.MiddleName, app.LastName, app.Email, app.PhoneNumber, app.Gender, app.DateOfBirth,
			app.ResidentialAddress, app.StreetAddress, app.StreetAddressLine2, app.CityStateProvince, app.Country,
			app.CourseID, app.CourseName, app.InstitutionName, app.HighestEducation, app.ReasonForCourse, app.HowHear,
			app.Declaration, models.StatusPending,
		).
		Suffix(returningApplication)
}

// Create inserts a pending application and fills in its generated fields
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	created, err := r.queryOne(ctx, r.insertQuery(app), "create application")
	if err != nil {
		return err
	}
	*app = *created
	return nil
}

// GetByID retrieves an application by ID
func (r *ApplicationRepository) GetByID(ctx context.Context, id int64) (*models.Application, error) {
	app, err := r.queryOne(ctx, r.sb.Select(applicationColumns...).From("applications").Where(squirrel.Eq{"id": id}), "get application by id")
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrApplicationNotFound
	}
	return app, err
}

func applicationFilterConditions(filter dto.ApplicationFilter) squirrel.And {
	conditions := squirrel.And{}
	if filter.Status != "" {
		conditions = append(conditions, squirrel.Eq{"status": filter.Status})
	}
	if strings.TrimSpace(filter.Search) != "" {
		pattern := likePattern(filter.Search)
		conditions = append(conditions, squirrel.Or{
			squirrel.ILike{"first_name": pattern},
			squirrel.ILike{"last_name": pattern},
			squirrel.ILike{"email": pattern},
			squirrel.ILike{"course_name": pattern},
		})
	}
	return conditions
}

func (r *ApplicationRepository) listQuery(filter dto.ApplicationFilter) squirrel.SelectBuilder {
	query := r.sb.Select(applicationColumns...).
		From("applications").
		Where(applicationFilterConditions(filter)).
		OrderBy("application_date DESC", "id DESC")
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit)).Offset(filter.Offset)
	}
	return query
}

func (r *ApplicationRepository) queryMany(ctx context.Context, builder squirrel.Sqlizer, op string) ([]*models.Application, error) {
	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s query: %w", op, err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("op", op).Msg("Error executing application query")
		return nil, fmt.Errorf("error executing %s: %w", op, err)
	}
	defer rows.Close()

	apps := []*models.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning application row: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating application rows: %w", err)
	}
	return apps, nil
}

// List returns applications matching filter, newest first, plus the total match count.
// A zero Limit returns every match.
func (r *ApplicationRepository) List(ctx context.Context, filter dto.ApplicationFilter) ([]*models.Application, int64, error) {
	total, err := countRows(ctx, r.db, r.sb.Select("COUNT(*)").From("applications").Where(applicationFilterConditions(filter)))
	if err != nil {
		logger.Error().Err(err).Msg("Error counting applications")
		return nil, 0, err
	}

	apps, err := r.queryMany(ctx, r.listQuery(filter), "list applications")
	if err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

// ListByEmail returns the applications submitted with email, ignoring case
func (r *ApplicationRepository) ListByEmail(ctx context.Context, email string) ([]*models.Application, error) {
	query := r.sb.Select(applicationColumns...).
		From("applications").
		Where("LOWER(email) = LOWER(?)", strings.TrimSpace(email)).
		OrderBy("application_date DESC", "id DESC")
	return r.queryMany(ctx, query, "list applications by email")
}

func (r *ApplicationRepository) updateStatusQuery(id int64, status models.ApplicationStatus, notes *string, expectedVersion *int) squirrel.UpdateBuilder {
	query := r.sb.Update("applications").
		Set("status", status).
		Set("review_date", squirrel.Expr("NOW()")).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": models.StatusPending}).
		Suffix(returningApplication)
	if notes != nil {
		query = query.Set("admin_notes", *notes)
	}
	if expectedVersion != nil {
		query = query.Where(squirrel.Eq{"version": *expectedVersion})
	}
	return query
}

// UpdateStatus decides a pending application. The row must still be pending and, when
// expectedVersion is set, still carry that version.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus, notes *string, expectedVersion *int) (*models.Application, error) {
	app, err := r.queryOne(ctx, r.updateStatusQuery(id, status, notes, expectedVersion), "update application status")
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.explainMissedUpdate(ctx, id, expectedVersion)
	}
	return app, err
}

func (r *ApplicationRepository) setDocumentsQuery(id int64, submitted bool, onlyPending bool) squirrel.UpdateBuilder {
	query := r.sb.Update("applications").
		Set("documents_submitted", submitted).
		Set("documents_updated_at", squirrel.Expr("NOW()")).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix(returningApplication)
	if onlyPending {
		query = query.Where(squirrel.Eq{"status": models.StatusPending})
	}
	return query
}

// SetDocuments records whether the physical documents were handed in
func (r *ApplicationRepository) SetDocuments(ctx context.Context, id int64, submitted bool, onlyPending bool) (*models.Application, error) {
	app, err := r.queryOne(ctx, r.setDocumentsQuery(id, submitted, onlyPending), "set application documents")
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.explainMissedOwnerChange(ctx, id)
	}
	return app, err
}

// Delete removes an application; with onlyPending the row must still be pending
func (r *ApplicationRepository) Delete(ctx context.Context, id int64, onlyPending bool) error {
	query := r.sb.Delete("applications").Where(squirrel.Eq{"id": id})
	if onlyPending {
		query = query.Where(squirrel.Eq{"status": models.StatusPending})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete application query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("applicationID", id).Msg("Error deleting application")
		return fmt.Errorf("error deleting application: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return r.explainMissedOwnerChange(ctx, id)
	}
	return nil
}

// explainMissedUpdate re-reads the row after a conditional status update matched nothing
func (r *ApplicationRepository) explainMissedUpdate(ctx context.Context, id int64, expectedVersion *int) error {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current.Status.IsTerminal() {
		return apperrors.ErrApplicationDecided
	}
	if expectedVersion != nil && current.Version != *expectedVersion {
		return apperrors.ErrApplicationStale
	}
	// The row changed between the update and the re-read
	return apperrors.ErrApplicationStale
}

func (r *ApplicationRepository) explainMissedOwnerChange(ctx context.Context, id int64) error {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current.Status != models.StatusPending {
		return apperrors.ErrApplicationNotPending
	}
	return apperrors.ErrApplicationStale
}

// CountByStatus returns the number of applications in each status
func (r *ApplicationRepository) CountByStatus(ctx context.Context) (models.ApplicationStatusCounts, error) {
	var counts models.ApplicationStatusCounts

	sql, args, err := r.sb.Select("status", "COUNT(*)").From("applications").GroupBy("status").ToSql()
	if err != nil {
		return counts, fmt.Errorf("failed to build status count query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error counting applications by status")
		return counts, fmt.Errorf("error counting applications: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status models.ApplicationStatus
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return counts, fmt.Errorf("error scanning status count: %w", err)
		}
		counts.Add(status, n)
	}
	return counts, rows.Err()
}

// Recent returns the newest applications
func (r *ApplicationRepository) Recent(ctx context.Context, limit uint64) ([]*models.Application, error) {
	query := r.sb.Select(applicationColumns...).
		From("applications").
		OrderBy("application_date DESC", "id DESC").
		Limit(limit)
	return r.queryMany(ctx, query, "recent applications")
}
