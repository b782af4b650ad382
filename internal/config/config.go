package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort     string
	DatabaseType   string // sqlite (default), postgres, mysql
	DatabasePath   string // sqlite only
	DatabaseURL    string // postgres/mysql
	MigrationsPath string

	JWTSecret     string
	TokenDuration time.Duration

	GoogleClientID     string
	GoogleClientSecret string
	GoogleAudience     []string // accepted ID token audiences

	OAuthRedirectBaseURL string
	FrontendBaseURL      string
	CORSOrigins          []string

	AWSRegion    string
	SESFromEmail string
	SESFromName  string
	AppBaseURL   string

	AuthRateLimit  int // credential attempts per window per IP
	AuthRateWindow time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first if present.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:     getEnv("PORT", "8080"),
		DatabaseType:   getEnv("DB_TYPE", "sqlite"),
		DatabasePath:   getEnv("DB_PATH", "./nestling.db"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),

		JWTSecret:     getEnv("JWT_SECRET", "change-me"),
		TokenDuration: getEnvDuration("TOKEN_DURATION", 24*time.Hour),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleAudience:     splitCSV(getEnv("GOOGLE_AUDIENCE", "")),

		OAuthRedirectBaseURL: getEnv("OAUTH_REDIRECT_BASE_URL", ""),
		FrontendBaseURL:      getEnv("FRONTEND_BASE_URL", "http://localhost:3000"),
		CORSOrigins:          splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000")),

		AWSRegion:    getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail: getEnv("SES_FROM_EMAIL", ""),
		SESFromName:  getEnv("SES_FROM_NAME", "Nestling"),
		AppBaseURL:   getEnv("APP_BASE_URL", "http://localhost:8080"),

		AuthRateLimit:  getEnvInt("AUTH_RATE_LIMIT", 10),
		AuthRateWindow: getEnvDuration("AUTH_RATE_WINDOW", time.Minute),
	}

	// The Google OAuth client is always a valid token audience
	if cfg.GoogleClientID != "" && len(cfg.GoogleAudience) == 0 {
		cfg.GoogleAudience = []string{cfg.GoogleClientID}
	}

	return cfg
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt reads an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration reads a duration environment variable (e.g. "30m") or returns a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// splitCSV splits a comma-separated value list, dropping empty entries
func splitCSV(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
