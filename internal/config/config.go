package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Email providers understood by the notification layer
const (
	EmailProviderLog      = "log"
	EmailProviderSMTP     = "smtp"
	EmailProviderSendGrid = "sendgrid"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port           string `yaml:"port" env:"SERVER_PORT"`
		Mode           string `yaml:"mode" env:"SERVER_MODE"`
		ClientURL      string `yaml:"client_url" env:"CLIENT_URL"`
		BodyLimitBytes int64  `yaml:"body_limit_bytes" env:"SERVER_BODY_LIMIT_BYTES"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrationsDir   string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR"`
	} `yaml:"database"`

	JWT struct {
		Secret                string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration string `yaml:"access_token_expiration" env:"JWT_EXPIRE"`
		Issuer                string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Email struct {
		Provider        string `yaml:"provider" env:"EMAIL_PROVIDER"`
		Host            string `yaml:"host" env:"EMAIL_HOST"`
		Port            int    `yaml:"port" env:"EMAIL_PORT"`
		Username        string `yaml:"username" env:"EMAIL_USER"`
		Password        string `yaml:"password" env:"EMAIL_PASS"`
		UseTLS          bool   `yaml:"use_tls" env:"EMAIL_USE_TLS"`
		SendGridAPIKey  string `yaml:"sendgrid_api_key" env:"SENDGRID_API_KEY"`
		FromName        string `yaml:"from_name" env:"EMAIL_FROM_NAME"`
		FromEmail       string `yaml:"from_email" env:"EMAIL_FROM"`
		CollegeName     string `yaml:"college_name" env:"COLLEGE_NAME"`
		Website         string `yaml:"website" env:"COLLEGE_WEBSITE"`
		AdmissionsDesk  string `yaml:"admissions_desk" env:"ADMISSIONS_DESK_ADDRESS"`
		RegistrationFee string `yaml:"registration_fee" env:"REGISTRATION_FEE"`
		SendTimeout     string `yaml:"send_timeout" env:"EMAIL_SEND_TIMEOUT"`
	} `yaml:"email"`

	Discord struct {
		BotToken  string `yaml:"bot_token" env:"DISCORD_BOT_TOKEN"`
		ChannelID string `yaml:"channel_id" env:"DISCORD_CHANNEL_ID"`
	} `yaml:"discord"`

	RateLimit struct {
		GlobalRequests int    `yaml:"global_requests" env:"RATE_LIMIT_GLOBAL_REQUESTS"`
		GlobalWindow   string `yaml:"global_window" env:"RATE_LIMIT_GLOBAL_WINDOW"`
		LoginRequests  int    `yaml:"login_requests" env:"RATE_LIMIT_LOGIN_REQUESTS"`
		LoginWindow    string `yaml:"login_window" env:"RATE_LIMIT_LOGIN_WINDOW"`
	} `yaml:"rate_limit"`

	Seed struct {
		AdminEmail     string `yaml:"admin_email" env:"SEED_ADMIN_EMAIL"`
		AdminPassword  string `yaml:"admin_password" env:"SEED_ADMIN_PASSWORD"`
		AdminFirstName string `yaml:"admin_first_name" env:"SEED_ADMIN_FIRST_NAME"`
		AdminLastName  string `yaml:"admin_last_name" env:"SEED_ADMIN_LAST_NAME"`
		Courses        bool   `yaml:"courses" env:"SEED_COURSES"`
	} `yaml:"seed"`
}

// LoadConfig loads configuration from a file, an optional .env file and environment variables.
// Precedence, lowest first: defaults, YAML file, .env, process environment.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// godotenv.Load never overrides variables that are already set
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if err := processStructFields(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "5000"
	config.Server.Mode = "development"
	config.Server.ClientURL = "http://localhost:3000"
	config.Server.BodyLimitBytes = 10 << 20

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "admissions"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 2
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsDir = "migrations"

	config.JWT.AccessTokenExpiration = "24h"
	config.JWT.Issuer = "admissions.eston.edu.gh"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Email.Provider = EmailProviderLog
	config.Email.Port = 587
	config.Email.FromName = "Eston College Admissions"
	config.Email.FromEmail = "admissions@eston.edu.gh"
	config.Email.CollegeName = "Eston IT College"
	config.Email.Website = "http://www.eston.edu.gh"
	config.Email.AdmissionsDesk = "Admissions Desk, Eston College, Main Campus"
	config.Email.RegistrationFee = "GHS150.00"
	config.Email.SendTimeout = "10s"

	config.RateLimit.GlobalRequests = 100
	config.RateLimit.GlobalWindow = "15m"
	config.RateLimit.LoginRequests = 5
	config.RateLimit.LoginWindow = "15m"

	config.Seed.AdminEmail = "admin@eston.edu.gh"
	config.Seed.AdminPassword = "admin123"
	config.Seed.AdminFirstName = "System"
	config.Seed.AdminLastName = "Administrator"
	config.Seed.Courses = true
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if strings.TrimSpace(config.Server.ClientURL) == "" {
		return fmt.Errorf("client url is required")
	}

	durations := map[string]string{
		"JWT access token expiration": config.JWT.AccessTokenExpiration,
		"database conn max lifetime":  config.Database.ConnMaxLifetime,
		"rate limit global window":    config.RateLimit.GlobalWindow,
		"rate limit login window":     config.RateLimit.LoginWindow,
		"email send timeout":          config.Email.SendTimeout,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s format: %w", name, err)
		}
	}

	switch strings.ToLower(config.Email.Provider) {
	case EmailProviderLog:
	case EmailProviderSMTP:
		if config.Email.Host == "" {
			return fmt.Errorf("email host is required for the smtp provider")
		}
	case EmailProviderSendGrid:
		if config.Email.SendGridAPIKey == "" {
			return fmt.Errorf("sendgrid api key is required for the sendgrid provider")
		}
	default:
		return fmt.Errorf("unknown email provider %q", config.Email.Provider)
	}

	if config.RateLimit.GlobalRequests <= 0 || config.RateLimit.LoginRequests <= 0 {
		return fmt.Errorf("rate limit request counts must be positive")
	}

	if (config.Discord.BotToken == "") != (config.Discord.ChannelID == "") {
		return fmt.Errorf("discord bot token and channel id must be set together")
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     c.Database.Host + ":" + c.Database.Port,
		Path:     "/" + c.Database.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(sslMode),
	}
	return dsn.String()
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Mode, "production")
}

// DiscordEnabled reports whether new-application alerts go to Discord
func (c *Config) DiscordEnabled() bool {
	return c.Discord.BotToken != "" && c.Discord.ChannelID != ""
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
