// Package storage provides composable storage interfaces for the focusd
// daemon.
//
// The storage layer is split into small, focused interfaces that the
// SQLite and Postgres backends implement independently. Callers depend
// on the narrowest interface that serves them.
package storage

import (
	"context"
	"time"

	"github.com/scrypster/focusd/pkg/types"
)

// EventStore persists classification events. Events are append-only;
// the timeline is rebuilt from them on demand.
type EventStore interface {
	// AppendEvent stores one event. Returns ErrInvalidInput when the
	// event is nil or has no ID.
	AppendEvent(ctx context.Context, event *types.ClassificationEvent) error

	// ListEvents returns events with from <= occurred_at < to, ordered
	// by occurred_at ascending. Zero from/to mean unbounded.
	ListEvents(ctx context.Context, from, to time.Time) ([]*types.ClassificationEvent, error)

	// CountEvents returns the total number of stored events.
	CountEvents(ctx context.Context) (int64, error)
}

// ThemeStore manages the classification taxonomy.
type ThemeStore interface {
	// ListThemes returns all themes ordered by category, subcategory,
	// specific.
	ListThemes(ctx context.Context) ([]types.Theme, error)

	// AddTheme inserts a theme and assigns its ID.
	AddTheme(ctx context.Context, theme *types.Theme) error

	// UpdateTheme modifies an existing theme.
	// Returns ErrNotFound if the theme doesn't exist.
	UpdateTheme(ctx context.Context, theme types.Theme) error

	// DeleteTheme removes a theme by ID.
	// Returns ErrNotFound if the theme doesn't exist.
	DeleteTheme(ctx context.Context, id int64) error

	// ReplaceThemes atomically swaps the full taxonomy. Used by import.
	ReplaceThemes(ctx context.Context, themes []types.Theme) error
}

// SettingsStore is simple key/value persistence for runtime settings
// that survive restarts.
type SettingsStore interface {
	// GetSetting returns the value for key.
	// Returns ErrNotFound if the key has never been set.
	GetSetting(ctx context.Context, key string) (string, error)

	// SetSetting upserts a key/value pair.
	SetSetting(ctx context.Context, key, value string) error
}

// Store is the full backend surface the daemon wires up.
type Store interface {
	EventStore
	ThemeStore
	SettingsStore

	Close() error
}
