package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in one pass.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "\n")
}

var (
	supportedDrivers  = map[string]bool{"postgres": true, "sqlite": true}
	supportedBackends = map[string]bool{"local": true, "s3": true}
	supportedFormats  = map[string]bool{"json": true, "console": true}
)

// ValidateConfig checks the configuration against the requirements of its
// environment.
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors

	if cfg.ServerPort == "" {
		errs = append(errs, ValidationError{"SERVER_PORT", "is required"})
	}
	if !supportedDrivers[cfg.DBDriver] {
		errs = append(errs, ValidationError{"DB_DRIVER", fmt.Sprintf("unsupported driver %q", cfg.DBDriver)})
	}
	if cfg.DBDriver == "sqlite" && cfg.SQLitePath == "" {
		errs = append(errs, ValidationError{"SQLITE_PATH", "is required for the sqlite driver"})
	}
	if !supportedBackends[cfg.StorageBackend] {
		errs = append(errs, ValidationError{"STORAGE_BACKEND", fmt.Sprintf("unsupported backend %q", cfg.StorageBackend)})
	}
	if cfg.StorageBackend == "s3" && cfg.S3BucketName == "" {
		errs = append(errs, ValidationError{"S3_BUCKET_NAME", "is required for the s3 backend"})
	}
	if !supportedFormats[cfg.LogFormat] {
		errs = append(errs, ValidationError{"LOG_FORMAT", fmt.Sprintf("unsupported format %q", cfg.LogFormat)})
	}
	if cfg.JWTTTL <= 0 {
		errs = append(errs, ValidationError{"JWT_TTL", "must be positive"})
	}
	if cfg.RateLimitPerHour < 0 {
		errs = append(errs, ValidationError{"RATE_LIMIT_PER_HOUR", "must not be negative"})
	}

	// In production sensitive values must come from the environment or secrets
	if cfg.Environment == Production {
		if cfg.JWTSecret == "" {
			errs = append(errs, ValidationError{"JWT_SECRET", "is required in production"})
		}
		if cfg.DBDriver == "postgres" && cfg.DBPassword == "" {
			errs = append(errs, ValidationError{"DB_PASSWORD", "is required in production"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
