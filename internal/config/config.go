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

// DefaultInferenceURL is the hosted text-generation model used when
// INFERENCE_URL is not set.
const DefaultInferenceURL = "https://api-inference.huggingface.co/models/facebook/blenderbot-400M-distill"

// Config holds all configuration for the application.
type Config struct {
	APIKey       string
	InferenceURL string
	DBPath       string
	APIPort      string
	CORSOrigin   string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	LogLevel  slog.Level
	LogFormat string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or a parent directory, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

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
		APIKey:       getEnv("HUGGINGFACE_API_KEY", ""),
		InferenceURL: getEnv("INFERENCE_URL", DefaultInferenceURL),
		DBPath:       getEnv("DB_PATH", "./data/qa_history.db"),
		APIPort:      getEnv("API_PORT", "8000"),
		CORSOrigin:   getEnv("CORS_ORIGIN", "http://localhost:5173"),
		LogFormat:    strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("HUGGINGFACE_API_KEY is required")
	}

	requests, err := strconv.Atoi(getEnv("RATE_LIMIT_REQUESTS", "5"))
	if err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_REQUESTS must be a valid integer: %w", err)
	}
	if requests <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_REQUESTS must be greater than 0")
	}
	cfg.RateLimitRequests = requests

	window, err := time.ParseDuration(getEnv("RATE_LIMIT_WINDOW", "60s"))
	if err != nil {
		return nil, fmt.Errorf("RATE_LIMIT_WINDOW must be a valid duration: %w", err)
	}
	if window <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_WINDOW must be greater than 0")
	}
	cfg.RateLimitWindow = window

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error: %w", err)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	// Create the database directory if it doesn't exist
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
