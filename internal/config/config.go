package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the client.
type Config struct {
	App     AppConfig
	API     APIConfig
	Session SessionConfig
	Logger  LoggerConfig
}

// AppConfig controls process level behavior.
type AppConfig struct {
	Env     string `validate:"required,oneof=development staging production test"`
	DataDir string `validate:"required"`
}

// APIConfig points the client at the backend.
type APIConfig struct {
	BaseURL               string `validate:"required,url"`
	RequestTimeoutSeconds int    `validate:"gte=1,lte=600"`
}

// SessionConfig selects where the session token lives.
type SessionConfig struct {
	// Token, when set, is used for this run only and never persisted.
	Token    string
	RedisURL string `validate:"omitempty,url"`
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
	// File is a path, or "stdout"/"stderr". Empty means <DataDir>/veterimap.log.
	File string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dataDir := os.Getenv("VETERIMAP_DATA_DIR")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		dataDir = filepath.Join(home, ".veterimap")
	}

	timeout, err := strconv.Atoi(getEnv("VETERIMAP_REQUEST_TIMEOUT_SECONDS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid VETERIMAP_REQUEST_TIMEOUT_SECONDS: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Env:     getEnv("APP_ENV", "development"),
			DataDir: dataDir,
		},
		API: APIConfig{
			BaseURL:               getEnv("VETERIMAP_API_URL", "http://localhost:8080"),
			RequestTimeoutSeconds: timeout,
		},
		Session: SessionConfig{
			Token:    os.Getenv("VETERIMAP_TOKEN"),
			RedisURL: os.Getenv("VETERIMAP_SESSION_REDIS_URL"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  os.Getenv("LOG_FILE"),
		},
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// RequestTimeout returns the configured request timeout duration.
func (a APIConfig) RequestTimeout() time.Duration {
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// LogPath returns where logs are written.
func (c *Config) LogPath() string {
	if c.Logger.File != "" {
		return c.Logger.File
	}
	return filepath.Join(c.App.DataDir, "veterimap.log")
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
