package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/3dmm/site/pkg/auth"
)

// DefaultPointCloudURL is the pre-built streaming octree shown in the hero viewer.
const DefaultPointCloudURL = "https://assets.3dmodelmanagement.co/pointclouds/hero/metadata.json"

var (
	// ErrMissingDatabaseURL is returned by Load when DATABASE_URL is not set.
	ErrMissingDatabaseURL = errors.New("DATABASE_URL environment variable is not set")
	// ErrWeakAdminSecret is returned when ADMIN_JWT_SECRET is set but too short to sign with.
	ErrWeakAdminSecret = fmt.Errorf("ADMIN_JWT_SECRET must be at least %d bytes", auth.MinSecretLen)
)

// Config holds the server configuration read from the environment.
type Config struct {
	Addr            string        `env:"ADDR" envDefault:":8080"`
	DatabaseURL     string        `env:"DATABASE_URL"`
	DatabaseName    string        `env:"DATABASE_NAME" envDefault:"3dmm"`
	FrontendURL     string        `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"json"`
	SiteContentFile string        `env:"SITE_CONTENT_FILE"`
	ContactRate     int           `env:"CONTACT_RATE_LIMIT" envDefault:"5"`
	RedisURL        string        `env:"REDIS_URL"`
	AMQPURL         string        `env:"AMQP_URL"`
	AdminJWTSecret  string        `env:"ADMIN_JWT_SECRET"`
	PointCloudURL   string        `env:"POINTCLOUD_URL"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// Load reads an optional .env file and parses the environment into a Config.
// A missing DATABASE_URL is reported as ErrMissingDatabaseURL; callers treat it as fatal.
func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse parses the current environment without touching .env files.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)
	if cfg.DatabaseURL == "" {
		return Config{}, ErrMissingDatabaseURL
	}
	if cfg.ContactRate <= 0 {
		cfg.ContactRate = 5
	}
	if cfg.AdminJWTSecret != "" && len(cfg.AdminJWTSecret) < auth.MinSecretLen {
		return Config{}, ErrWeakAdminSecret
	}
	if cfg.PointCloudURL == "" {
		cfg.PointCloudURL = DefaultPointCloudURL
	}
	return cfg, nil
}

// AdminEnabled reports whether the admin listing routes should be mounted.
func (c Config) AdminEnabled() bool {
	return c.AdminJWTSecret != ""
}
