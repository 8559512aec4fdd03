package config

import (
	"os"
	"strconv"
	"time"
)

// DefaultBaseURL is the public Loopy Loyalty API endpoint.
const DefaultBaseURL = "https://api.loopyloyalty.com/v1"

// Config holds all configuration for the application
type Config struct {
	APIKey      string
	APISecret   string
	Username    string
	BaseURL     string
	DatabaseURL string
	RedisURL    string
	TokenTTL    time.Duration
	ServerPort  string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		APIKey:      getEnv("LOOPY_API_KEY", ""),
		APISecret:   getEnv("LOOPY_API_SECRET", ""),
		Username:    getEnv("LOOPY_USERNAME", ""),
		BaseURL:     getEnv("LOOPY_BASE_URL", DefaultBaseURL),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),
		TokenTTL:    getDurationEnv("TOKEN_TTL", 3600*time.Second),
		ServerPort:  getEnv("SERVER_PORT", "8080"),
	}

	if cfg.APIKey == "" || cfg.APISecret == "" || cfg.Username == "" {
		return nil, &ConfigError{Message: "LOOPY_API_KEY, LOOPY_API_SECRET and LOOPY_USERNAME must be set"}
	}
	if cfg.DatabaseURL == "" {
		return nil, &ConfigError{Message: "DATABASE_URL must be set"}
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}

// ConfigError represents a configuration error
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return e.Message
}
