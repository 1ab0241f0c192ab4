package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DatabasePath      string
	LogLevel          string
	Port              int
	DevMode           bool
	AlertDeadlineDays int // deadline alerts fire when due within this many days
	AlertApprovalDays int // approval alerts fire after this many days without movement
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnvAsInt("PORT", 8080),
		DevMode:           getEnvAsBool("DEV_MODE", false),
		DatabasePath:      getEnv("DATABASE_PATH", "./data/synccenter.db"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		AlertDeadlineDays: getEnvAsInt("ALERT_DEADLINE_DAYS", 7),
		AlertApprovalDays: getEnvAsInt("ALERT_APPROVAL_DAYS", 14),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.AlertDeadlineDays < 0 {
		return fmt.Errorf("ALERT_DEADLINE_DAYS must be >= 0, got %d", c.AlertDeadlineDays)
	}
	if c.AlertApprovalDays < 0 {
		return fmt.Errorf("ALERT_APPROVAL_DAYS must be >= 0, got %d", c.AlertApprovalDays)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
