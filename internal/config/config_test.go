package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setEnvs is a helper that sets multiple env vars for the test's lifetime.
func setEnvs(t *testing.T, envs map[string]string) {
	t.Helper()
	for k, v := range envs {
		t.Setenv(k, v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT": "development",
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 5001, cfg.HTTPPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "memory", cfg.StorageDriver)
	assert.Equal(t, "1h0m0s", cfg.JWTExpiry.String())
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
}

func TestLoad_Development_AcceptsDefaultSecret(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT": "development",
		"JWT_SECRET":  "change-this-to-a-secure-secret",
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "change-this-to-a-secure-secret", cfg.JWTSecret)
}

func TestLoad_Production_RejectsDefaultSecret(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT": "production",
		"JWT_SECRET":  "change-this-to-a-secure-secret",
	})

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET must be explicitly set")
}

func TestLoad_Production_RejectsShortSecret(t *testing.T) {
	setEnvs(t, map[string]string{
		"ENVIRONMENT": "production",
		"JWT_SECRET":  "short-but-not-default-secret",
	})

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET must be at least 32 characters")
}

func TestLoad_Production_AcceptsStrongSecret(t *testing.T) {
	strongSecret := "this-is-a-very-secure-secret-key-for-production-use-1234"
	setEnvs(t, map[string]string{
		"ENVIRONMENT": "production",
		"JWT_SECRET":  strongSecret,
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, strongSecret, cfg.JWTSecret)
}

func TestLoad_RejectsInvalidPort(t *testing.T) {
	setEnvs(t, map[string]string{
		"HTTP_PORT": "70000",
	})

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid HTTP port")
}

func TestLoad_RejectsUnknownStorageDriver(t *testing.T) {
	setEnvs(t, map[string]string{
		"STORAGE_DRIVER": "gcs",
	})

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid storage driver")
}

func TestLoad_RejectsNonPositiveExpiry(t *testing.T) {
	setEnvs(t, map[string]string{
		"JWT_EXPIRY": "0s",
	})

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_EXPIRY must be positive")
}

func TestPostgresConfig_UsesConfiguredValues(t *testing.T) {
	setEnvs(t, map[string]string{
		"POSTGRES_HOST":    "db.internal",
		"POSTGRES_PORT":    "5433",
		"POSTGRES_DB_NAME": "productly_test",
	})

	cfg, err := Load()
	require.NoError(t, err)

	pg := cfg.PostgresConfig()
	assert.Equal(t, "db.internal", pg.Host)
	assert.Equal(t, 5433, pg.Port)
	assert.Equal(t, "productly_test", pg.DBName)
	assert.Contains(t, pg.DSN(), "db.internal:5433/productly_test")
}
