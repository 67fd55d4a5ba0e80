package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"SERVER_PORT", "SERVER_HOST", "CORS_ORIGINS",
	"DB_DRIVER", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSL_MODE",
	"SQLITE_PATH", "MIGRATIONS_DIR",
	"REDIS_URL", "REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD",
	"JWT_SECRET", "JWT_TTL",
	"STORAGE_BACKEND", "MEDIA_ROOT", "MEDIA_URL", "S3_BUCKET_NAME", "AWS_REGION",
	"LOG_LEVEL", "LOG_FORMAT", "RATE_LIMIT_PER_HOUR",
}

// cleanEnv isolates a test from the host environment and any real secrets.
func cleanEnv(t *testing.T) string {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Setenv("CI", "")
	t.Setenv("ENV", "test")
	dir := t.TempDir()
	t.Setenv("SECRETS_DIR", dir)
	return dir
}

func TestLoadConfig(t *testing.T) {
	cleanEnv(t)
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PASSWORD", "postgres")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000, https://foodgram.example")
	t.Setenv("MEDIA_URL", "/uploads/")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, Test, cfg.Environment)
	assert.Equal(t, "db.internal", cfg.DBHost)
	assert.Equal(t, "postgres", cfg.DBPassword)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.Equal(t, []string{"http://localhost:3000", "https://foodgram.example"}, cfg.CORSOrigins)
	assert.Equal(t, "/uploads", cfg.MediaURL)
}

func TestLoadConfigWithDefaults(t *testing.T) {
	cleanEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, "foodgram", cfg.DBName)
	assert.Equal(t, "disable", cfg.DBSSLMode)
	assert.Equal(t, "local", cfg.StorageBackend)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 100, cfg.RateLimitPerHour)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.False(t, cfg.RedisEnabled())
	assert.Equal(t, "0.0.0.0:8080", cfg.Address())
}

func TestLoadConfigFromSecrets(t *testing.T) {
	dir := cleanEnv(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "db_password"), []byte("from-secret\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jwt_secret"), []byte("secret-jwt"), 0o600))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-secret", cfg.DBPassword)
	assert.Equal(t, "secret-jwt", cfg.JWTSecret)

	// The environment wins over the secret file.
	t.Setenv("DB_PASSWORD", "from-env")
	cfg, err = LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.DBPassword)
}

func TestLoadConfigProductionRequiresSecrets(t *testing.T) {
	cleanEnv(t)
	t.Setenv("ENV", "production")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "DB_PASSWORD")

	t.Setenv("JWT_SECRET", "prod-secret")
	t.Setenv("DB_DRIVER", "sqlite")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, Production, cfg.Environment)
}

func TestValidateConfigRejectsUnknownValues(t *testing.T) {
	cleanEnv(t)
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("STORAGE_BACKEND", "s3")

	_, err := LoadConfig()
	require.Error(t, err)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := make([]string, len(verrs))
	for i, v := range verrs {
		fields[i] = v.Field
	}
	assert.ElementsMatch(t, []string{"DB_DRIVER", "S3_BUCKET_NAME"}, fields)
}

func TestGetEnvironment(t *testing.T) {
	t.Setenv("CI", "true")
	t.Setenv("ENV", "production")
	assert.Equal(t, CI, GetEnvironment())

	t.Setenv("CI", "")
	assert.Equal(t, Production, GetEnvironment())
	assert.True(t, IsProduction())

	t.Setenv("ENV", "")
	assert.Equal(t, Development, GetEnvironment())
}
