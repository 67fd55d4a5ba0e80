package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort  string
	ServerHost  string
	CORSOrigins []string

	// Database configuration
	DBDriver      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	SQLitePath    string
	MigrationsDir string

	// Redis configuration. Redis is optional; when neither RedisURL nor
	// RedisHost is set the rate limiter and token revocation are disabled.
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// JWT configuration
	JWTSecret string
	JWTTTL    time.Duration

	// Image storage
	StorageBackend string
	MediaRoot      string
	MediaURL       string
	S3BucketName   string
	AWSRegion      string

	// Logging
	LogLevel  string
	LogFormat string

	RateLimitPerHour int
}

// LoadConfig builds a Config from environment variables, Docker secrets and
// defaults, in that order of precedence.
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	if env == Development {
		// A missing .env file is fine.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Environment: env,

		ServerPort:  lookup("SERVER_PORT", "8080"),
		ServerHost:  lookup("SERVER_HOST", "0.0.0.0"),
		CORSOrigins: splitList(lookup("CORS_ORIGINS", "*")),

		DBDriver:      strings.ToLower(lookup("DB_DRIVER", "postgres")),
		DBHost:        lookup("DB_HOST", "localhost"),
		DBPort:        lookup("DB_PORT", "5432"),
		DBUser:        lookup("DB_USER", "postgres"),
		DBPassword:    lookup("DB_PASSWORD", ""),
		DBName:        lookup("DB_NAME", "foodgram"),
		DBSSLMode:     lookup("DB_SSL_MODE", "disable"),
		SQLitePath:    lookup("SQLITE_PATH", "foodgram.db"),
		MigrationsDir: lookup("MIGRATIONS_DIR", "migrations"),

		RedisURL:      lookup("REDIS_URL", ""),
		RedisHost:     lookup("REDIS_HOST", ""),
		RedisPort:     lookup("REDIS_PORT", "6379"),
		RedisPassword: lookup("REDIS_PASSWORD", ""),
		RedisDB:       0, // This is a constant, not a secret

		JWTSecret: lookup("JWT_SECRET", ""),

		StorageBackend: strings.ToLower(lookup("STORAGE_BACKEND", "local")),
		MediaRoot:      lookup("MEDIA_ROOT", "media"),
		MediaURL:       strings.TrimRight(lookup("MEDIA_URL", "/media"), "/"),
		S3BucketName:   lookup("S3_BUCKET_NAME", ""),
		AWSRegion:      lookup("AWS_REGION", ""),

		LogLevel:  strings.ToLower(lookup("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(lookup("LOG_FORMAT", "json")),
	}

	ttl, err := time.ParseDuration(lookup("JWT_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	cfg.JWTTTL = ttl

	limit, err := strconv.Atoi(lookup("RATE_LIMIT_PER_HOUR", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PER_HOUR: %w", err)
	}
	cfg.RateLimitPerHour = limit

	if cfg.JWTSecret == "" && env != Production {
		cfg.JWTSecret = "insecure-development-secret"
	}

	// Validate the configuration
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Address returns the host:port the HTTP server listens on.
func (c *Config) Address() string {
	return c.ServerHost + ":" + c.ServerPort
}

// RedisEnabled reports whether a Redis endpoint was configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// PostgresDSN returns the key/value connection string for PostgreSQL.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// lookup returns the environment variable, else the Docker secret named
// after the lowercased key, else def.
func lookup(key, def string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	if value := readSecret(strings.ToLower(key)); value != "" {
		return value
	}
	return def
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
