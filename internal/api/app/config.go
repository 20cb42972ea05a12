package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	JWTSecret    string        // Required: HMAC secret for session tokens (min 32 bytes)
	JWTExpiresIn time.Duration // Optional: session token lifetime (default: 7 days)
	Issuer       string        // Optional: issuer claim for tokens (default: couplet)

	InviteTTL    time.Duration // Optional: invitation lifetime (default: 7 days)
	FrontendURL  string        // Optional: allowed CORS origin for the browser frontend
	DatabaseFile string        // Optional: path to SQLite database file (default: ./couplet.db)
	PepperFile   string        // Optional: path to file containing pepper for password hashing (default: ./pepper)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Invitation expiry sweep interval (default: 1h)
}

func LoadConfig() Config {
	cfg := Config{
		JWTSecret:            os.Getenv("JWT_SECRET"),
		JWTExpiresIn:         getEnvDurationOrDefault("JWT_EXPIRES_IN", 7*24*time.Hour),
		Issuer:               getEnvOrDefault("ISSUER", "couplet"),
		InviteTTL:            getEnvDurationOrDefault("INVITE_TTL", 7*24*time.Hour),
		FrontendURL:          os.Getenv("FRONTEND_URL"),
		DatabaseFile:         getEnvOrDefault("DATABASE_FILE", "couplet.db"),
		PepperFile:           getEnvOrDefault("PEPPER_FILE", "pepper"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	return cfg
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

	// Try parsing as duration (e.g., "1h", "30m", "168h")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer days, matching the "7d"-style configs common
	// in frontend tooling that Go's ParseDuration rejects.
	if days, err := strconv.Atoi(strings.TrimSuffix(value, "d")); err == nil && strings.HasSuffix(value, "d") {
		return time.Duration(days) * 24 * time.Hour
	}

	return defaultValue
}
