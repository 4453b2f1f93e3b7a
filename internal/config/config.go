package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all process configuration, loaded once at startup.
type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	DatabaseURL string
	RedisURL    string

	// Kafka brokers for the event publisher; empty means in-process events only
	KafkaBrokers []string

	// Admin bootstrap (the sole tutor account)
	AdminEmail    string
	AdminName     string
	AdminPassword string
}

// LoadConfig reads configuration from the environment (and .env if present).
// Missing required values fail fast.
func LoadConfig() (*Config, error) {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		LogLevel:      parseLogLevel(getEnv("LOG_LEVEL", "info")),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisURL:      os.Getenv("REDIS_URL"),
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@tutorhub.local"),
		AdminName:     getEnv("ADMIN_NAME", "Tutor"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	// Assemble DATABASE_URL from the DB_* parts when it is not set directly
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = assembleDatabaseURL()
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL (or DB_USER/DB_PASSWORD/DB_HOST/DB_PORT/DB_NAME) is required")
	}

	return cfg, nil
}

func assembleDatabaseURL() string {
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	host := os.Getenv("DB_HOST")
	port := getEnv("DB_PORT", "5432")
	name := os.Getenv("DB_NAME")

	if user == "" || host == "" || name == "" {
		return ""
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s", user, password, host, port, name)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsProduction reports whether the service runs in production mode. Session
// cookies are only marked Secure in production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
