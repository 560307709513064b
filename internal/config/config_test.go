package config

import (
	"context"
	"testing"

	"github.com/scrypster/focusd/internal/storage/sqlite"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Server.Port != 6767 {
		t.Errorf("default port = %d, want 6767", cfg.Server.Port)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("default host = %q", cfg.Server.Host)
	}
	if cfg.Storage.StorageEngine != "sqlite" {
		t.Errorf("default engine = %q", cfg.Storage.StorageEngine)
	}
	if cfg.Security.SecurityMode != "development" {
		t.Errorf("default security mode = %q", cfg.Security.SecurityMode)
	}
	if cfg.Tracker.CaptureIntervalSeconds != 30 {
		t.Errorf("default capture interval = %d, want 30", cfg.Tracker.CaptureIntervalSeconds)
	}
	if cfg.Tracker.AnalysisIntervalSeconds != 300 {
		t.Errorf("default analysis interval = %d, want 300", cfg.Tracker.AnalysisIntervalSeconds)
	}
	if cfg.Tracker.SimilarityThreshold != 95 {
		t.Errorf("default threshold = %v, want 95", cfg.Tracker.SimilarityThreshold)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("FOCUSD_PORT", "7878")
	t.Setenv("FOCUSD_CAPTURE_INTERVAL", "10")
	t.Setenv("FOCUSD_SIMILARITY_THRESHOLD", "80.5")
	t.Setenv("FOCUSD_TRACKING_ENABLED", "true")
	t.Setenv("FOCUSD_PROVIDER", "ollama")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Server.Port != 7878 {
		t.Errorf("port = %d, want 7878", cfg.Server.Port)
	}
	if cfg.Tracker.CaptureIntervalSeconds != 10 {
		t.Errorf("capture interval = %d, want 10", cfg.Tracker.CaptureIntervalSeconds)
	}
	if cfg.Tracker.SimilarityThreshold != 80.5 {
		t.Errorf("threshold = %v, want 80.5", cfg.Tracker.SimilarityThreshold)
	}
	if !cfg.Tracker.TrackingEnabled {
		t.Error("tracking enabled flag not read from env")
	}
	if cfg.Tracker.Provider != "ollama" {
		t.Errorf("provider = %q, want ollama", cfg.Tracker.Provider)
	}
}

func TestLoadConfigBadEnvValuesFallBack(t *testing.T) {
	t.Setenv("FOCUSD_PORT", "not-a-number")
	t.Setenv("FOCUSD_SIMILARITY_THRESHOLD", "high")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != 6767 {
		t.Errorf("port = %d, want default on bad env value", cfg.Server.Port)
	}
	if cfg.Tracker.SimilarityThreshold != 95 {
		t.Errorf("threshold = %v, want default on bad env value", cfg.Tracker.SimilarityThreshold)
	}
}

func TestSaveAndLoadConfigFromStore(t *testing.T) {
	store, err := sqlite.NewStore(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	// No persisted settings yet: environment defaults stand.
	cfg, err := LoadConfigFromStore(ctx, store)
	if err != nil {
		t.Fatalf("LoadConfigFromStore: %v", err)
	}
	if cfg.Tracker.CaptureIntervalSeconds != 30 {
		t.Errorf("capture interval = %d, want default", cfg.Tracker.CaptureIntervalSeconds)
	}

	cfg.Tracker.CaptureIntervalSeconds = 15
	cfg.Tracker.Provider = "ollama"
	if err := cfg.SaveConfig(ctx, store); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	// Persisted values take precedence on reload.
	reloaded, err := LoadConfigFromStore(ctx, store)
	if err != nil {
		t.Fatalf("LoadConfigFromStore after save: %v", err)
	}
	if reloaded.Tracker.CaptureIntervalSeconds != 15 {
		t.Errorf("capture interval = %d, want persisted 15", reloaded.Tracker.CaptureIntervalSeconds)
	}
	if reloaded.Tracker.Provider != "ollama" {
		t.Errorf("provider = %q, want persisted ollama", reloaded.Tracker.Provider)
	}
}

func TestSaveConfigRejectsInvalidSettings(t *testing.T) {
	store, err := sqlite.NewStore(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	defer store.Close()

	cfg, _ := LoadConfig()
	cfg.Tracker.CaptureIntervalSeconds = -1
	if err := cfg.SaveConfig(context.Background(), store); err == nil {
		t.Error("expected error saving invalid settings")
	}
}

func TestLoadConfigFromStoreNilStore(t *testing.T) {
	if _, err := LoadConfigFromStore(context.Background(), nil); err == nil {
		t.Error("expected error for nil store")
	}
}
