package migrations

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Migrator applies the numbered SQL files of a directory once each
type Migrator struct {
	db     *pgxpool.Pool
	logger zerolog.Logger
}

// NewMigrator creates a new migrator
func NewMigrator(db *pgxpool.Pool, logger zerolog.Logger) *Migrator {
	return &Migrator{
		db:     db,
		logger: logger.With().Str("component", "migrator").Logger(),
	}
}

// MigrationStatus reports whether one migration file has been applied
type MigrationStatus struct {
	Version string
	File    string
	Applied bool
}

func (m *Migrator) ensureMigrationTableExists(ctx context.Context) error {
	_, err := m.db.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version VARCHAR(255) PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`)
	if err != nil {
		return fmt.Errorf("failed to create migration tracking table: %w", err)
	}
	return nil
}

func (m *Migrator) appliedVersions(ctx context.Context) (map[string]bool, error) {
	rows, err := m.db.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed to read applied migrations: %w", err)
	}
	versions, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to read applied migrations: %w", err)
	}
	applied := make(map[string]bool, len(versions))
	for _, v := range versions {
		applied[v] = true
	}
	return applied, nil
}

// VersionOf extracts the version prefix of a migration file name ("001_init.sql" => "001")
func VersionOf(filename string) string {
	return strings.SplitN(filepath.Base(filename), "_", 2)[0]
}

// MigrationFiles returns the .sql files of dirPath in execution order
func MigrationFiles(dirPath string) ([]string, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory: %w", err)
	}

	var sqlFiles []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			sqlFiles = append(sqlFiles, entry.Name())
		}
	}
	sort.Strings(sqlFiles)
	return sqlFiles, nil
}

func (m *Migrator) apply(ctx context.Context, filePath string) error {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read migration file: %w", err)
	}

	tx, err := m.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, string(content)); err != nil {
		return fmt.Errorf("migration %s failed: %w", filepath.Base(filePath), err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, VersionOf(filePath)); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// MigrateFromDirectory applies every pending SQL file of dirPath in order and returns
// the number applied
func (m *Migrator) MigrateFromDirectory(ctx context.Context, dirPath string) (int, error) {
	if err := m.ensureMigrationTableExists(ctx); err != nil {
		return 0, err
	}

	files, err := MigrationFiles(dirPath)
	if err != nil {
		return 0, err
	}
	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, file := range files {
		if applied[VersionOf(file)] {
			m.logger.Debug().Str("file", file).Msg("Migration already applied, skipping")
			continue
		}
		if err := m.apply(ctx, filepath.Join(dirPath, file)); err != nil {
			return count, err
		}
		m.logger.Info().Str("file", file).Msg("Migration applied")
		count++
	}
	return count, nil
}

// Status lists the migration files of dirPath with their applied state
func (m *Migrator) Status(ctx context.Context, dirPath string) ([]MigrationStatus, error) {
	if err := m.ensureMigrationTableExists(ctx); err != nil {
		return nil, err
	}
	files, err := MigrationFiles(dirPath)
	if err != nil {
		return nil, err
	}
	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return nil, err
	}

	statuses := make([]MigrationStatus, 0, len(files))
	for _, file := range files {
		v := VersionOf(file)
		statuses = append(statuses, MigrationStatus{Version: v, File: file, Applied: applied[v]})
	}
	return statuses, nil
}
