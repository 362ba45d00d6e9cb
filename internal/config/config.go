package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	DBPath            string
	APIPort           string
	LogLevel          slog.Level
	LogFormat         string // "text" or "json"
	AutosaveDelay     time.Duration
	TemplatesPath     string // Custom template catalog, empty for the built-in one
	AutoApplyTemplate bool   // Apply a project's writing template on first open
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates the ones that are set.
// If a .env file exists in the current directory or a parent, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load() // Try current directory

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break // Reached filesystem root
			}
			dir = parent
		}
	}

	cfg := &Config{
		DBPath:        getEnv("DB_PATH", "./data/inkwell.db"),
		APIPort:       getEnv("API_PORT", "9000"),
		LogFormat:     strings.ToLower(getEnv("LOG_FORMAT", "text")),
		TemplatesPath: getEnv("TEMPLATES_PATH", ""),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error: %w", err)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	delay, err := time.ParseDuration(getEnv("AUTOSAVE_DELAY", "2s"))
	if err != nil {
		return nil, fmt.Errorf("AUTOSAVE_DELAY must be a valid duration: %w", err)
	}
	if delay <= 0 {
		return nil, fmt.Errorf("AUTOSAVE_DELAY must be greater than 0")
	}
	cfg.AutosaveDelay = delay

	autoApply, err := strconv.ParseBool(getEnv("AUTO_APPLY_TEMPLATE", "true"))
	if err != nil {
		return nil, fmt.Errorf("AUTO_APPLY_TEMPLATE must be a boolean: %w", err)
	}
	cfg.AutoApplyTemplate = autoApply

	if cfg.TemplatesPath != "" {
		if _, err := os.Stat(cfg.TemplatesPath); err != nil {
			return nil, fmt.Errorf("TEMPLATES_PATH: %w", err)
		}
	}

	// Create the database directory if it doesn't exist
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// NewLogger builds the process logger from the configured level and format.
func (c *Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
