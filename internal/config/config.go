// Package config provides configuration management for focusd.
// It loads settings from environment variables with the FOCUSD_ prefix
// and provides sensible defaults for all configuration options.
//
// Tracker settings (intervals, similarity threshold, model provider) are
// persisted to the settings table in the database. LoadConfigFromStore
// reads from the database first and falls back to environment variables.
// SaveConfig writes tracker settings back to the database.
package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/scrypster/focusd/internal/storage"
	"github.com/scrypster/focusd/pkg/types"
)

// trackerSettingsKey is the settings-table key for persisted tracker
// settings, stored as one JSON document.
const trackerSettingsKey = "tracker_settings"

// Config holds all configuration settings for the focusd daemon.
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Security SecurityConfig
	Tracker  types.TrackerSettings
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port int    // Server port (default: 6767)
	Host string // Server host (default: 127.0.0.1)
}

// StorageConfig contains database and storage configuration.
type StorageConfig struct {
	StorageEngine string // Storage engine type: sqlite, postgres (default: sqlite)
	DataPath      string // Path to data directory (default: ./data)
	PostgresDSN   string // Connection string when engine is postgres
}

// SecurityConfig contains security and authentication settings.
type SecurityConfig struct {
	SecurityMode string // Security mode: development, production (default: development)
	APIToken     string // API authentication token
}

// LoadConfig loads configuration from environment variables with
// sensible defaults. All environment variables use the FOCUSD_ prefix.
// Use LoadConfigFromStore to also read persisted tracker settings.
func LoadConfig() (*Config, error) {
	return buildBaseConfig(), nil
}

// LoadConfigFromStore loads configuration from both environment
// variables and the database. Persisted tracker settings take precedence
// over environment variables; when no DB entry exists the environment
// values stand.
func LoadConfigFromStore(ctx context.Context, settings storage.SettingsStore) (*Config, error) {
	if settings == nil {
		return nil, errors.New("config: settings store is required")
	}

	cfg := buildBaseConfig()

	raw, err := settings.GetSetting(ctx, trackerSettingsKey)
	if errors.Is(err, storage.ErrNotFound) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: failed to load tracker settings from database: %w", err)
	}

	stored := cfg.Tracker
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, fmt.Errorf("config: failed to decode tracker settings: %w", err)
	}
	if err := stored.Validate(); err != nil {
		return nil, fmt.Errorf("config: stored tracker settings invalid: %w", err)
	}
	cfg.Tracker = stored

	return cfg, nil
}

// SaveConfig persists tracker settings to the settings table using
// upsert semantics, so settings survive daemon restarts.
func (c *Config) SaveConfig(ctx context.Context, settings storage.SettingsStore) error {
	if settings == nil {
		return errors.New("config: settings store is required")
	}
	if err := c.Tracker.Validate(); err != nil {
		return fmt.Errorf("config: invalid tracker settings: %w", err)
	}

	raw, err := json.Marshal(c.Tracker)
	if err != nil {
		return fmt.Errorf("config: failed to encode tracker settings: %w", err)
	}
	if err := settings.SetSetting(ctx, trackerSettingsKey, string(raw)); err != nil {
		return fmt.Errorf("config: failed to save tracker settings: %w", err)
	}
	return nil
}

// buildBaseConfig constructs a Config from environment variables and
// defaults. Shared base for LoadConfig and LoadConfigFromStore.
func buildBaseConfig() *Config {
	tracker := types.DefaultTrackerSettings()
	tracker.CaptureIntervalSeconds = getEnvInt("FOCUSD_CAPTURE_INTERVAL", tracker.CaptureIntervalSeconds)
	tracker.AnalysisIntervalSeconds = getEnvInt("FOCUSD_ANALYSIS_INTERVAL", tracker.AnalysisIntervalSeconds)
	tracker.SimilarityThreshold = getEnvFloat("FOCUSD_SIMILARITY_THRESHOLD", tracker.SimilarityThreshold)
	tracker.TrackingEnabled = getEnvBool("FOCUSD_TRACKING_ENABLED", tracker.TrackingEnabled)
	tracker.Provider = getEnv("FOCUSD_PROVIDER", tracker.Provider)
	tracker.ModelEndpoint = getEnv("FOCUSD_MODEL_ENDPOINT", tracker.ModelEndpoint)
	tracker.ModelName = getEnv("FOCUSD_MODEL_NAME", tracker.ModelName)
	tracker.APIKey = getEnv("FOCUSD_API_KEY", tracker.APIKey)

	return &Config{
		Server: ServerConfig{
			Port: getEnvInt("FOCUSD_PORT", 6767),
			Host: getEnv("FOCUSD_HOST", "127.0.0.1"),
		},
		Storage: StorageConfig{
			StorageEngine: getEnv("FOCUSD_STORAGE_ENGINE", "sqlite"),
			DataPath:      getEnv("FOCUSD_DATA_PATH", "./data"),
			PostgresDSN:   getEnv("FOCUSD_POSTGRES_DSN", ""),
		},
		Security: SecurityConfig{
			SecurityMode: getEnv("FOCUSD_SECURITY_MODE", "development"),
			APIToken:     getEnv("FOCUSD_API_TOKEN", ""),
		},
		Tracker: tracker,
	}
}

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default
// value. Unparseable values fall back to the default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns a default
// value. Unparseable values fall back to the default.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a default
// value. Recognizes "true", "1", "yes" and "false", "0", "no".
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch value {
		case "true", "1", "yes", "True", "TRUE", "Yes", "YES":
			return true
		case "false", "0", "no", "False", "FALSE", "No", "NO":
			return false
		}
	}
	return defaultValue
}
