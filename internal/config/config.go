package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port        string
	Environment string

	// Database
	DatabaseURL string

	// JWT
	JWTSecret string

	// Background Workers
	WorkerCount           int
	RecurringTickInterval time.Duration
	DailyTickHour         int
	// RecurringStrictCatchUp loops a due obligation until its next-due date is in the future.
	RecurringStrictCatchUp bool

	// Calendar
	Timezone string
	Location *time.Location

	// CORS
	AllowedOrigins []string

	// Email (Resend)
	EnableEmailNotifications bool
	ResendAPIKey             string
	FromEmail                string

	// Payment links
	PaymentProviderURL     string
	PaymentCallbackURL     string
	PaymentProviderTimeout time.Duration
	DefaultCurrency        string
	// CallbackRateLimit bounds gateway callbacks per client IP, e.g. "60-M"
	CallbackRateLimit string

	// Sentry
	SentryDSN string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:                     getEnv("PORT", "8080"),
		Environment:              getEnv("ENVIRONMENT", "development"),
		DatabaseURL:              getEnv("DATABASE_URL", ""),
		JWTSecret:                getEnv("JWT_SECRET", ""),
		WorkerCount:              getEnvAsInt("WORKER_COUNT", 5),
		RecurringTickInterval:    getEnvAsDuration("RECURRING_TICK_INTERVAL", time.Hour),
		DailyTickHour:            getEnvAsInt("DAILY_TICK_HOUR", 6),
		RecurringStrictCatchUp:   getEnvAsBool("RECURRING_STRICT_CATCH_UP", false),
		Timezone:                 getEnv("TIMEZONE", "UTC"),
		AllowedOrigins:           getEnvAsSlice("ALLOWED_ORIGINS", []string{"*"}),
		EnableEmailNotifications: getEnvAsBool("ENABLE_EMAIL_NOTIFICATIONS", true),
		ResendAPIKey:             getEnv("RESEND_API_KEY", ""),
		FromEmail:                getEnv("FROM_EMAIL", "noreply@fintera.app"),
		PaymentProviderURL:       getEnv("PAYMENT_PROVIDER_URL", ""),
		PaymentCallbackURL:       getEnv("PAYMENT_CALLBACK_URL", ""),
		PaymentProviderTimeout:   getEnvAsDuration("PAYMENT_PROVIDER_TIMEOUT", 15*time.Second),
		DefaultCurrency:          getEnv("DEFAULT_CURRENCY", "USD"),
		CallbackRateLimit:        getEnv("CALLBACK_RATE_LIMIT", "60-M"),
		SentryDSN:                getEnv("SENTRY_DSN", ""),
	}

	// Validate required configuration
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" && cfg.Environment == "production" {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}

	// Set default JWT secret for development
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-change-in-production"
	}

	if cfg.DailyTickHour < 0 || cfg.DailyTickHour > 23 {
		return nil, fmt.Errorf("DAILY_TICK_HOUR must be between 0 and 23, got %d", cfg.DailyTickHour)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc

	return cfg, nil
}

// EmailConfigured reports whether outgoing email can be sent
func (c *Config) EmailConfigured() bool {
	return c.EnableEmailNotifications && c.ResendAPIKey != "" && c.FromEmail != ""
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt reads an environment variable as integer
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go duration strings ("90s", "1h")
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

// getEnvAsSlice reads an environment variable as comma-separated slice
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
