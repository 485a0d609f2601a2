package main

import (
	"context"
	"os"

	"github.com/eston/admissions/internal/pkg/logger"
	"github.com/eston/admissions/internal/server"
)

// @title Eston IT College Admissions API
// @version 1.0
// @description Admissions portal: public application form, course catalog and admin review.

// @contact.name Admissions Office
// @contact.url http://www.eston.edu.gh
// @contact.email admissions@eston.edu.gh

// @host localhost:5000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token returned by /auth/login

func main() {
	srv, err := server.NewServer(context.Background())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
