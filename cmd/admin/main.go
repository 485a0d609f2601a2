package main

import (
	"context"
	"errors"
	"os"

	"github.com/eston/admissions/internal/app/migrations"
	"github.com/eston/admissions/internal/app/repositories"
	"github.com/eston/admissions/internal/bootstrap"
	"github.com/eston/admissions/internal/db"
	"github.com/eston/admissions/internal/pkg/logger"
)

func main() {
	ctx := context.Background()

	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
	if err != nil {
		os.Exit(1)
	}

	database, err := db.NewPostgresDB(ctx, cfg, lgr)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	repos := repositories.NewRepositories(database.Pool)
	cli := commandLine{
		out:           os.Stdout,
		migrator:      migrations.NewMigrator(database.Pool, lgr),
		migrationsDir: cfg.Database.MigrationsDir,
		usrRepo:       repos.UserRepository,
		courseRepo:    repos.CourseRepository,
		appRepo:       repos.ApplicationRepository,
	}
	if err := cli.run(ctx, os.Args); err != nil {
		if !errors.Is(err, errHelp) {
			lgr.Error().Err(err).Msg("Command failed")
		}
		database.Close()
		os.Exit(1)
	}
}
