package app

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	JWTSecret                string        // Required: HMAC secret for access tokens
	TokenLifetime            time.Duration // Optional: session token lifetime (default: 24h)
	ImpersonationLifetime    time.Duration // Optional: default impersonation token lifetime (default: 60m)
	ImpersonationMaxLifetime time.Duration // Optional: ceiling for impersonation tokens (default: 120m)
	ExchangeCodeTTL          time.Duration // Optional: exchange code lifetime (default: 5m)
	DatabaseFile             string        // Optional: path to SQLite database file (default: ./auth.db)
	RedisAddr                string        // Optional: store exchange codes in Redis instead of SQLite
	BootstrapAdminEmail      string        // Optional: create this admin on first start
	Env                      string        // Environment (dev, staging, prod) (default: dev)
	LogLevel                 string        // Log level (debug, info, warn, error) (default: info)
	LogFormat                string        // Log format (json, text) (default: json)
	Port                     int           // HTTP server port (default: 8080)
	ShutdownGracePeriod      time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval     time.Duration // Housekeeping interval (default: 1h)
}

var ErrMissingJWTSecret = errors.New("AUTH_JWT_SECRET is required")

// LoadConfig reads the environment, after loading files (default ".env")
// into it. Missing files are skipped; variables already set win.
func LoadConfig(files ...string) Config {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("failed to load env file", "file", f, "error", err)
		}
	}

	return Config{
		JWTSecret:                os.Getenv("AUTH_JWT_SECRET"),
		TokenLifetime:            getEnvDurationOrDefault("AUTH_TOKEN_LIFETIME", 24*time.Hour),
		ImpersonationLifetime:    getEnvDurationOrDefault("AUTH_IMPERSONATION_LIFETIME", 60*time.Minute),
		ImpersonationMaxLifetime: getEnvDurationOrDefault("AUTH_IMPERSONATION_MAX_LIFETIME", 120*time.Minute),
		ExchangeCodeTTL:          getEnvDurationOrDefault("AUTH_EXCHANGE_CODE_TTL", 5*time.Minute),
		DatabaseFile:             getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		RedisAddr:                os.Getenv("AUTH_REDIS_ADDR"),
		BootstrapAdminEmail:      os.Getenv("BOOTSTRAP_ADMIN_EMAIL"),
		Env:                      getEnvOrDefault("ENV", "dev"),
		LogLevel:                 getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:                getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                     getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:      getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval:     getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

// Validate reports configuration the service cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, ErrMissingJWTSecret)
	}
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Port))
	}
	if c.DatabaseFile == "" {
		errs = append(errs, errors.New("AUTH_DATABASE_FILE must not be empty"))
	}
	for name, d := range map[string]time.Duration{
		"AUTH_TOKEN_LIFETIME":             c.TokenLifetime,
		"AUTH_IMPERSONATION_LIFETIME":     c.ImpersonationLifetime,
		"AUTH_IMPERSONATION_MAX_LIFETIME": c.ImpersonationMaxLifetime,
		"AUTH_EXCHANGE_CODE_TTL":          c.ExchangeCodeTTL,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}
	if c.ImpersonationLifetime > c.ImpersonationMaxLifetime {
		errs = append(errs, errors.New("AUTH_IMPERSONATION_LIFETIME exceeds AUTH_IMPERSONATION_MAX_LIFETIME"))
	}
	return errors.Join(errs...)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
