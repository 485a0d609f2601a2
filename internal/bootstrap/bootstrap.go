package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/eston/admissions/internal/app/controllers"
	appMigrations "github.com/eston/admissions/internal/app/migrations"
	appRepos "github.com/eston/admissions/internal/app/repositories"
	appRoutes "github.com/eston/admissions/internal/app/routes"
	appServices "github.com/eston/admissions/internal/app/services"
	"github.com/eston/admissions/internal/config"
	"github.com/eston/admissions/internal/db"
	appMiddleware "github.com/eston/admissions/internal/middleware"
	pkgAuth "github.com/eston/admissions/internal/pkg/auth"
	"github.com/eston/admissions/internal/pkg/discord"
	"github.com/eston/admissions/internal/pkg/email"
	"github.com/eston/admissions/internal/pkg/helpers"
	"github.com/eston/admissions/internal/pkg/logger"
	"github.com/eston/admissions/internal/pkg/ratelimit"
	"github.com/eston/admissions/internal/pkg/websocket"
	"github.com/eston/admissions/internal/seed"
)

// DefaultConfigPath is where the YAML configuration is read from
var DefaultConfigPath = filepath.Join("configs", "config.yaml")

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos *appRepos.Repositories

	JWTService   *pkgAuth.JWTService
	Mailer       email.EmailService
	Alerter      discord.Alerter
	Hub          *websocket.Hub
	GlobalLimit  *ratelimit.KeyedLimiter
	LoginLimit   *ratelimit.KeyedLimiter
	AuthService  appServices.AuthService
	Applications appServices.ApplicationService
	Courses      appServices.CourseService
	Users        appServices.UserService
	Dashboard    appServices.DashboardService

	AuthMiddleware *appMiddleware.AuthMiddleware
	Handlers       appRoutes.Handlers
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(DefaultConfigPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.ConfigFromStrings(cfg.Logging.Level, cfg.Logging.Format))
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SeedOptions maps the seed section of the configuration
func SeedOptions(cfg *config.Config) seed.Options {
	return seed.Options{
		AdminEmail:     cfg.Seed.AdminEmail,
		AdminPassword:  cfg.Seed.AdminPassword,
		AdminFirstName: cfg.Seed.AdminFirstName,
		AdminLastName:  cfg.Seed.AdminLastName,
		Courses:        cfg.Seed.Courses,
	}
}

// SetupDatabase establishes the database connection, runs migrations and seeds default data.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	migrator := appMigrations.NewMigrator(database.Pool, lgr)
	applied, err := migrator.MigrateFromDirectory(ctx, cfg.Database.MigrationsDir)
	if err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Int("applied", applied).Msg("Database migrations up to date.")

	repos := appRepos.NewRepositories(database.Pool)
	if err := seed.CreateDefaultData(ctx, repos.UserRepository, repos.CourseRepository, SeedOptions(cfg), lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return database, nil
}

// NewEmailService builds the configured mail provider
func NewEmailService(cfg *config.Config, lgr zerolog.Logger) (email.EmailService, error) {
	return email.NewEmailService(email.Config{
		Provider:       cfg.Email.Provider,
		Host:           cfg.Email.Host,
		Port:           cfg.Email.Port,
		Username:       cfg.Email.Username,
		Password:       cfg.Email.Password,
		UseTLS:         cfg.Email.UseTLS,
		SendGridAPIKey: cfg.Email.SendGridAPIKey,
		FromName:       cfg.Email.FromName,
		FromEmail:      cfg.Email.FromEmail,
	}, logger.Component("email"))
}

// Branding maps the institution details used in outgoing mail
func Branding(cfg *config.Config) email.Branding {
	return email.Branding{
		CollegeName:     cfg.Email.CollegeName,
		Website:         cfg.Email.Website,
		AdmissionsDesk:  cfg.Email.AdmissionsDesk,
		RegistrationFee: cfg.Email.RegistrationFee,
	}
}

// BuildDependencies initializes repositories, services and controllers.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}
	deps.Repos = appRepos.NewRepositories(database.Pool)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 24*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	mailer, err := NewEmailService(cfg, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize email service: %w", err)
	}
	deps.Mailer = mailer

	deps.Alerter = discord.NopAlerter{}
	if cfg.DiscordEnabled() {
		alerter, err := discord.NewAlerter(cfg.Discord.BotToken, cfg.Discord.ChannelID, logger.Component("discord"))
		if err != nil {
			// Alerts are optional; the portal runs without them
			lgr.Error().Err(err).Msg("Failed to initialize Discord alerter")
		} else {
			deps.Alerter = alerter
		}
	}

	deps.Hub = websocket.NewHub(logger.Component("events"))
	deps.GlobalLimit = ratelimit.NewKeyedLimiter(cfg.RateLimit.GlobalRequests,
		helpers.ParseDuration(cfg.RateLimit.GlobalWindow, 15*time.Minute))
	deps.LoginLimit = ratelimit.NewKeyedLimiter(cfg.RateLimit.LoginRequests,
		helpers.ParseDuration(cfg.RateLimit.LoginWindow, 15*time.Minute))

	notifier := appServices.NewNotifier(
		deps.Mailer,
		deps.Repos.UserRepository,
		deps.Alerter,
		deps.Hub,
		Branding(cfg),
		helpers.ParseDuration(cfg.Email.SendTimeout, 10*time.Second),
		logger.Component("notifier"),
	)

	deps.AuthService = appServices.NewAuthService(deps.Repos.UserRepository, deps.JWTService, lgr)
	deps.Applications = appServices.NewApplicationService(
		deps.Repos.ApplicationRepository,
		deps.Repos.CourseRepository,
		notifier,
		lgr,
	)
	deps.Courses = appServices.NewCourseService(deps.Repos.CourseRepository, lgr)
	deps.Users = appServices.NewUserService(deps.Repos.UserRepository, lgr)
	deps.Dashboard = appServices.NewDashboardService(
		deps.Repos.UserRepository,
		deps.Repos.CourseRepository,
		deps.Repos.ApplicationRepository,
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.AuthService)

	deps.Handlers = appRoutes.Handlers{
		Health:      appControllers.NewHealthController(database, lgr),
		Auth:        appControllers.NewAuthController(deps.AuthService),
		Application: appControllers.NewApplicationController(deps.Applications),
		Course:      appControllers.NewCourseController(deps.Courses),
		User:        appControllers.NewUserController(deps.Users),
		Dashboard:   appControllers.NewDashboardController(deps.Dashboard),
		Events: websocket.NewHandler(
			deps.Hub,
			websocket.NewUpgrader(strings.Split(cfg.Server.ClientURL, ",")...),
			logger.Component("events"),
		),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		appMiddleware.RequestID(),
		appMiddleware.RequestLogger(lgr),
		appMiddleware.SecurityHeaders(),
		appMiddleware.CORS(cfg.Server.ClientURL),
		appMiddleware.BodyLimit(cfg.Server.BodyLimitBytes),
		appMiddleware.RateLimit(deps.GlobalLimit, "Too many requests from this IP, please try again later"),
	)

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.Handlers, deps.AuthMiddleware, deps.LoginLimit)

	return router
}
