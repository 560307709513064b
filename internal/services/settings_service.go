// Package services contains application services that sit between the
// HTTP handlers and the storage layer.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/scrypster/focusd/internal/config"
	"github.com/scrypster/focusd/internal/llm"
	"github.com/scrypster/focusd/internal/storage"
	"github.com/scrypster/focusd/pkg/types"
)

// testImagePNG is a 1x1 transparent PNG used to probe vision endpoints
// without sending a real screen capture.
var testImagePNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x62, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

// SettingsService manages persisted tracker settings and connection
// testing for the configured vision provider.
type SettingsService struct {
	settings storage.SettingsStore
}

// NewSettingsService creates a new SettingsService instance.
func NewSettingsService(settings storage.SettingsStore) *SettingsService {
	return &SettingsService{settings: settings}
}

// Load returns the effective tracker settings: persisted values when
// present, environment and defaults otherwise.
func (s *SettingsService) Load(ctx context.Context) (types.TrackerSettings, error) {
	cfg, err := config.LoadConfigFromStore(ctx, s.settings)
	if err != nil {
		return types.TrackerSettings{}, err
	}
	return cfg.Tracker, nil
}

// Save validates and persists tracker settings.
func (s *SettingsService) Save(ctx context.Context, settings types.TrackerSettings) error {
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
	}

	cfg, err := config.LoadConfigFromStore(ctx, s.settings)
	if err != nil {
		return err
	}
	cfg.Tracker = settings
	return cfg.SaveConfig(ctx, s.settings)
}

// TestConnection verifies the given settings can reach the vision
// provider by sending a throwaway one-pixel request. Returns nil when
// the provider answered, the classified failure otherwise.
func (s *SettingsService) TestConnection(ctx context.Context, settings types.TrackerSettings) error {
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
	}

	completer, err := llm.NewVisionCompleter(settings)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := completer.Complete(ctx, "Reply with the single word: ok", testImagePNG); err != nil {
		return fmt.Errorf("connection test failed (%s): %w", llm.ErrorStatus(err), err)
	}
	return nil
}
