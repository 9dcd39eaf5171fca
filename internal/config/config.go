package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/INOCcent-afk/productly-server/pkg/config"
	"github.com/INOCcent-afk/productly-server/pkg/database"
)

const defaultJWTSecret = "change-this-to-a-secure-secret"

// Config holds all configuration for the productly server.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"5001"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"productly"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"productly_secret"`
	PostgresDB   string `env:"POSTGRES_DB_NAME" envDefault:"productly"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// JWT
	JWTSecret string        `env:"JWT_SECRET" envDefault:"change-this-to-a-secure-secret"`
	JWTExpiry time.Duration `env:"JWT_EXPIRY" envDefault:"1h"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Object storage for profile images
	StorageDriver   string `env:"STORAGE_DRIVER" envDefault:"memory"`
	S3Region        string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Bucket        string `env:"S3_BUCKET" envDefault:"productly-images"`
	S3Endpoint      string `env:"S3_ENDPOINT"`
	S3AccessKey     string `env:"S3_ACCESS_KEY"`
	S3SecretKey     string `env:"S3_SECRET_KEY"`
	S3PublicBaseURL string `env:"S3_PUBLIC_BASE_URL"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load productly config: %w", err)
	}
	if cfg.HTTPPort < 1 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP port: %d", cfg.HTTPPort)
	}

	if cfg.StorageDriver != "memory" && cfg.StorageDriver != "s3" {
		return nil, fmt.Errorf("invalid storage driver: %q", cfg.StorageDriver)
	}

	if cfg.JWTExpiry <= 0 {
		return nil, fmt.Errorf("JWT_EXPIRY must be positive, got %s", cfg.JWTExpiry)
	}

	// In non-development environments, require an explicitly set, strong JWT secret.
	if cfg.Environment != "development" {
		if cfg.JWTSecret == defaultJWTSecret {
			return nil, fmt.Errorf("JWT_SECRET must be explicitly set via environment variable in %q mode", cfg.Environment)
		}
		if len(cfg.JWTSecret) < 32 {
			return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters long, got %d", len(cfg.JWTSecret))
		}
	}

	return cfg, nil
}

// PostgresConfig returns the pool configuration for the configured database.
func (c *Config) PostgresConfig() database.PostgresConfig {
	pg := database.DefaultPostgresConfig()
	pg.Host = c.PostgresHost
	pg.Port = c.PostgresPort
	pg.User = c.PostgresUser
	pg.Password = c.PostgresPass
	pg.DBName = c.PostgresDB
	pg.SSLMode = c.PostgresSSL
	return pg
}
