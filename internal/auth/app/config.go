package app

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Issuer string // Required: issuer claim for session tokens

	// DeviceSalt is folded into every incoming device hash before it is
	// stored or compared. Changing it orphans all existing sessions, so
	// treat it like key material. When unset, a salt is loaded from or
	// generated at DeviceSaltFile.
	DeviceSalt     string
	DeviceSaltFile string

	SigningKeyFile  string        // Optional: path to Ed25519 PKCS8 PEM key (default: ./signing.pem, generated if missing)
	DatabaseFile    string        // Optional: path to SQLite database file (default: ./tether.db)
	PepperFile      string        // Optional: path to file containing pepper for password hashing (default: ./pepper)
	SessionTTL      time.Duration // Session token lifetime (default: 24h)
	FreshnessWindow time.Duration // Accepted device hash timestamp drift (default: 5m)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
	StaleRetention       time.Duration // How long dead session rows are kept (default: 168h)
}

func LoadConfig() Config {
	// A .env file is optional; real environments set variables directly.
	_ = godotenv.Load()

	cfg := Config{
		Issuer:               getEnvOrDefault("TETHER_ISSUER", "tether-auth"),
		DeviceSalt:           os.Getenv("TETHER_DEVICE_SALT"),
		DeviceSaltFile:       getEnvOrDefault("TETHER_DEVICE_SALT_FILE", "device.salt"),
		SigningKeyFile:       getEnvOrDefault("TETHER_SIGNING_KEY_FILE", "signing.pem"),
		DatabaseFile:         getEnvOrDefault("TETHER_DATABASE_FILE", "tether.db"),
		PepperFile:           getEnvOrDefault("TETHER_PEPPER_FILE", "pepper"),
		SessionTTL:           getEnvDurationOrDefault("TETHER_SESSION_TTL", 24*time.Hour),
		FreshnessWindow:      getEnvDurationOrDefault("TETHER_FRESHNESS_WINDOW", 5*time.Minute),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
		StaleRetention:       getEnvDurationOrDefault("TETHER_STALE_RETENTION", 7*24*time.Hour),
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

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
