package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration. It is built once at startup
// and never mutated afterwards.
type Config struct {
	ServerPort      int
	DatabasePath    string
	JWTSecret       string
	JWTAlgorithm    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	AllowedOrigins  []string
	LogLevel        string
}

// Load loads configuration from a .env file (if present) and environment
// variables. A missing JWT secret or an unsupported signing algorithm is a
// startup-fatal condition, reported as an error here.
func Load() (*Config, error) {
	// A missing .env file just means plain env vars.
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	algorithm := getEnv("JWT_ALGORITHM", "HS256")
	if algorithm != "HS256" {
		return nil, fmt.Errorf("unsupported JWT_ALGORITHM %q", algorithm)
	}

	accessTTLMinutes, err := strconv.Atoi(getEnv("ACCESS_TOKEN_TTL_MINUTES", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid ACCESS_TOKEN_TTL_MINUTES: %w", err)
	}

	refreshTTLDays, err := strconv.Atoi(getEnv("REFRESH_TOKEN_TTL_DAYS", "7"))
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_TOKEN_TTL_DAYS: %w", err)
	}

	var origins []string
	for _, origin := range strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:4200"), ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}

	return &Config{
		ServerPort:      port,
		DatabasePath:    getEnv("DATABASE_PATH", "./fintrack.db"),
		JWTSecret:       secret,
		JWTAlgorithm:    algorithm,
		AccessTokenTTL:  time.Duration(accessTTLMinutes) * time.Minute,
		RefreshTokenTTL: time.Duration(refreshTTLDays) * 24 * time.Hour,
		AllowedOrigins:  origins,
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
