package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	DatabaseFile string // Optional: path to SQLite database file (default: ./portal.db)
	PepperFile   string // Optional: path to file containing pepper for password hashing (default: ./pepper)

	SMTPHost     string // Optional: SMTP relay host for login code emails (default: localhost)
	SMTPPort     int    // Optional: SMTP relay port (default: 1025)
	SMTPFrom     string // Optional: sender address for login code emails (default: no-reply@fastlan.local)
	SMTPFromName string // Optional: sender display name (default: FastLAN Portal)

	AdminEmail    string // Optional: seed admin account email (seeded only when the user table is empty)
	AdminPassword string // Optional: seed admin account password
	AdminName     string // Optional: seed admin display name (default: Portal Administrator)

	CodeTTL       time.Duration // Optional: login code lifetime (default: 10m)
	NotifyTimeout time.Duration // Optional: deadline for code delivery (default: 10s)
	SessionTTL    time.Duration // Optional: session lifetime (default: 1h)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 15m)
}

func LoadConfig() Config {
	return Config{
		DatabaseFile: getEnvOrDefault("PORTAL_DATABASE_FILE", "portal.db"),
		PepperFile:   getEnvOrDefault("PORTAL_PEPPER_FILE", "pepper"),

		SMTPHost:     getEnvOrDefault("SMTP_HOST", "localhost"),
		SMTPPort:     getEnvIntOrDefault("SMTP_PORT", 1025),
		SMTPFrom:     getEnvOrDefault("SMTP_FROM", "no-reply@fastlan.local"),
		SMTPFromName: getEnvOrDefault("SMTP_FROM_NAME", "FastLAN Portal"),

		AdminEmail:    os.Getenv("PORTAL_ADMIN_EMAIL"),
		AdminPassword: os.Getenv("PORTAL_ADMIN_PASSWORD"),
		AdminName:     getEnvOrDefault("PORTAL_ADMIN_NAME", "Portal Administrator"),

		CodeTTL:       getEnvDurationOrDefault("PORTAL_CODE_TTL", 10*time.Minute),
		NotifyTimeout: getEnvDurationOrDefault("PORTAL_NOTIFY_TIMEOUT", 10*time.Second),
		SessionTTL:    getEnvDurationOrDefault("PORTAL_SESSION_TTL", 1*time.Hour),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 15*time.Minute),
	}
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

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
