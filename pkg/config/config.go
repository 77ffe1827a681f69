// Package config loads application configuration from the environment.
package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv    string
	LogLevel  string
	LogFormat string

	// HTTP server
	HTTPAddr        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", ""),

		HTTPAddr:        getEnv("TASKHIVE_HTTP_ADDR", "0.0.0.0:8080"),
		ReadTimeout:     getDurationEnv("TASKHIVE_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getDurationEnv("TASKHIVE_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getDurationEnv("TASKHIVE_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getDurationEnv("TASKHIVE_SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
