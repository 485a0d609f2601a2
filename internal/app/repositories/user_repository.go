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

const usersEmailConstraint = "users_email_key"

var userColumns = []string{
	"id", "email", "password", "first_name", "last_name", "phone",
	"role", "is_active", "created_at", "updated_at",
}

// UserRepository handles user database operations
type UserRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func scanUser(row scanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.Email, &user.Password, &user.FirstName, &user.LastName, &user.Phone,
		&user.Role, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// queryOne runs a statement returning a single user row
func (r *UserRepository) queryOne(ctx context.Context, builder squirrel.Sqlizer, op string) (*models.User, error) {
	sql, args, err := builder.ToSql()
	if err != nil {
		logger.Error().Err(err).Str("op", op).Msg("Error building user SQL")
		return nil, fmt.Errorf("failed to build %s query: %w", op, err)
	}

	user, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		if dberrors.IsDuplicateConstraintError(err, usersEmailConstraint) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		logger.Error().Err(err).Str("op", op).Msg("Error executing user query")
		return nil, fmt.Errorf("error executing %s: %w", op, err)
	}
	return user, nil
}

// Create inserts user and fills in its generated fields
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := r.sb.Insert("users").
		Columns("email", "password", "first_name", "last_name", "phone", "role", "is_active").
		Values(strings.ToLower(user.Email), user.Password, user.FirstName, user.LastName, user.Phone, user.Role, user.IsActive).
		Suffix("RETURNING " + strings.Join(userColumns, ", "))

	created, err := r.queryOne(ctx, query, "create user")
	if err != nil {
		return err
	}
	*user = *created
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.queryOne(ctx, r.sb.Select(userColumns...).From("users").Where(squirrel.Eq{"id": id}), "get user by id")
}

// GetByEmail retrieves a user by email, ignoring case
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := r.sb.Select(userColumns...).
		From("users").
		Where("LOWER(email) = LOWER(?)", strings.TrimSpace(email))
	return r.queryOne(ctx, query, "get user by email")
}

// EmailExists checks if an email is already registered
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	sql, args, err := r.sb.Select("1").
		Prefix("SELECT EXISTS (").
		From("users").
		Where("LOWER(email) = LOWER(?)", strings.TrimSpace(email)).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build email exists query: %w", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		logger.Error().Err(err).Msg("Error checking email existence")
		return false, fmt.Errorf("error checking email: %w", err)
	}
	return exists, nil
}

func userFilterConditions(filter dto.UserFilter) squirrel.And {
	conditions := squirrel.And{}
	if filter.Role != "" {
		conditions = append(conditions, squirrel.Eq{"role": filter.Role})
	}
	if strings.TrimSpace(filter.Search) != "" {
		pattern := likePattern(filter.Search)
		conditions = append(conditions, squirrel.Or{
			squirrel.ILike{"email": pattern},
			squirrel.ILike{"first_name": pattern},
			squirrel.ILike{"last_name": pattern},
		})
	}
	return conditions
}

func (r *UserRepository) listQuery(filter dto.UserFilter) squirrel.SelectBuilder {
	query := r.sb.Select(userColumns...).
		From("users").
		Where(userFilterConditions(filter)).
		OrderBy("created_at DESC", "id DESC")
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit)).Offset(filter.Offset)
	}
	return query
}

// List returns one page of users matching filter plus the total match count
func (r *UserRepository) List(ctx context.Context, filter dto.UserFilter) ([]*models.User, int64, error) {
	total, err := countRows(ctx, r.db, r.sb.Select("COUNT(*)").From("users").Where(userFilterConditions(filter)))
	if err != nil {
		logger.Error().Err(err).Msg("Error counting users")
		return nil, 0, err
	}

	sql, args, err := r.listQuery(filter).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list users query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list users query")
		return nil, 0, fmt.Errorf("error querying users: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning user row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating user rows: %w", err)
	}

	return users, total, nil
}

func (r *UserRepository) update(id int64) squirrel.UpdateBuilder {
	return r.sb.Update("users").
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(userColumns, ", "))
}

// UpdateRole assigns a new role
func (r *UserRepository) UpdateRole(ctx context.Context, id int64, role models.RoleType) (*models.User, error) {
	return r.queryOne(ctx, r.update(id).Set("role", role), "update user role")
}

// UpdateProfile applies column changes (first_name, last_name, phone)
func (r *UserRepository) UpdateProfile(ctx context.Context, id int64, changes map[string]interface{}) (*models.User, error) {
	if len(changes) == 0 {
		return nil, apperrors.ErrNoFieldsToUpdate
	}
	return r.queryOne(ctx, r.update(id).SetMap(changes), "update user profile")
}

// UpdatePassword stores a new password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	sql, args, err := r.sb.Update("users").
		Set("password", passwordHash).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update password query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", id).Msg("Error updating password")
		return fmt.Errorf("error updating password: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// ToggleActive flips is_active
func (r *UserRepository) ToggleActive(ctx context.Context, id int64) (*models.User, error) {
	return r.queryOne(ctx, r.update(id).Set("is_active", squirrel.Expr("NOT is_active")), "toggle user status")
}

// Delete removes a user
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, r.sb, "users", id, apperrors.ErrUserNotFound)
}

// ListEmails returns the address of every registered user
func (r *UserRepository) ListEmails(ctx context.Context) ([]string, error) {
	sql, args, err := r.sb.Select("email").From("users").OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list emails query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying user emails: %w", err)
	}
	emails, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("error collecting user emails: %w", err)
	}
	return emails, nil
}

// Count returns the number of users
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	return countRows(ctx, r.db, r.sb.Select("COUNT(*)").From("users"))
}

// countRows runs a single-value COUNT query
func countRows(ctx context.Context, db *pgxpool.Pool, builder squirrel.SelectBuilder) (int64, error) {
	sql, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}
	var total int64
	if err := db.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("error counting rows: %w", err)
	}
	return total, nil
}

// deleteByID deletes one row, returning notFound when nothing matched
func deleteByID(ctx context.Context, db *pgxpool.Pool, sb squirrel.StatementBuilderType, table string, id int64, notFound error) error {
	sql, args, err := sb.Delete(table).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	cmdTag, err := db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("table", table).Int64("id", id).Msg("Error executing delete")
		return fmt.Errorf("error deleting from %s: %w", table, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return notFound
	}
	return nil
}
