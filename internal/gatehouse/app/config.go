package app

import (
	"errors"
	"os"
	"strconv"
	"time"
)

type Config struct {
	TokenSecret string // Required: HMAC signing secret for session tokens

	AccessTokenTTL  time.Duration // Optional: access token lifetime (default: 15m)
	RefreshTokenTTL time.Duration // Optional: refresh token lifetime (default: 168h)

	DatabaseFile        string        // Optional: path to SQLite database file (default: ./gatehouse.db)
	SecureCookies       bool          // Optional: mark session cookies Secure (default: true outside dev)
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

// ErrMissingTokenSecret aborts startup: without the signing secret no
// token the service mints could ever be verified across restarts.
var ErrMissingTokenSecret = errors.New("app: GATEHOUSE_TOKEN_SECRET is required")

func LoadConfig() (Config, error) {
	cfg := Config{
		TokenSecret:         os.Getenv("GATEHOUSE_TOKEN_SECRET"),
		AccessTokenTTL:      getEnvDurationOrDefault("GATEHOUSE_ACCESS_TTL", 15*time.Minute),
		RefreshTokenTTL:     getEnvDurationOrDefault("GATEHOUSE_REFRESH_TTL", 7*24*time.Hour),
		DatabaseFile:        getEnvOrDefault("GATEHOUSE_DATABASE_FILE", "gatehouse.db"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	if cfg.TokenSecret == "" {
		return Config{}, ErrMissingTokenSecret
	}

	// Local dev talks plain HTTP, so Secure cookies would never be sent.
	cfg.SecureCookies = cfg.Env != "dev"
	if v := os.Getenv("GATEHOUSE_SECURE_COOKIES"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.SecureCookies = b
		}
	}

	return cfg, nil
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

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Integer values are taken as minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
