package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	Enabled       bool
	LoginRequests int
	LoginWindow   time.Duration
}

// Config holds application configuration.
type Config struct {
	// Server
	ServerAddr string
	ServerPort int

	// Storage
	DataDir string

	// Session tokens
	JWTSecret       string
	JWTIssuer       string
	SessionTokenTTL time.Duration

	// Rate limiting
	RateLimit RateLimitConfig
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		// Server defaults
		ServerAddr: getEnv("SERVER_ADDR", "0.0.0.0"),
		ServerPort: getEnvInt("SERVER_PORT", 8080),

		// Storage defaults
		DataDir: getEnv("DATA_DIR", "tenant_shards"),

		// Session token defaults
		JWTSecret:       getEnv("JWT_SECRET", ""),
		JWTIssuer:       getEnv("JWT_ISSUER", "fleettenant"),
		SessionTokenTTL: getEnvDuration("SESSION_TOKEN_TTL", 24*time.Hour),

		RateLimit: RateLimitConfig{
			Enabled:       getEnvBool("RATE_LIMIT_ENABLED", true),
			LoginRequests: getEnvInt("RATE_LIMIT_LOGIN_REQUESTS", 10),
			LoginWindow:   getEnvDuration("RATE_LIMIT_LOGIN_WINDOW", time.Minute),
		},
	}

	// Validate required fields
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
