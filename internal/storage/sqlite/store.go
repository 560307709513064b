// Package sqlite implements the storage interfaces on SQLite via the
// pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/scrypster/focusd/internal/storage"
	"github.com/scrypster/focusd/pkg/types"
)

// Store implements storage.Store using SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database, configures WAL mode, and creates the
// schema.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one concurrent writer. A single open
	// connection serialises writes and avoids SQLITE_BUSY errors under
	// concurrent load; WAL mode lets readers proceed without blocking
	// the writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Wait instead of returning SQLITE_BUSY when the connection is held
	// by another goroutine.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// DB exposes the underlying handle for config persistence.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

// AppendEvent stores one classification event.
func (s *Store) AppendEvent(ctx context.Context, event *types.ClassificationEvent) error {
	if event == nil {
		return storage.ErrInvalidInput
	}
	if event.ID == "" {
		return fmt.Errorf("%w: event ID is required", storage.ErrInvalidInput)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (id, theme_category, theme_subcategory, theme_specific, analysis, confidence, degraded, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.Theme.Category,
		event.Theme.Subcategory,
		event.Theme.Specific,
		event.Analysis,
		event.Confidence,
		boolToInt(event.Degraded),
		event.OccurredAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

// ListEvents returns events in [from, to) ordered by occurred_at.
func (s *Store) ListEvents(ctx context.Context, from, to time.Time) ([]*types.ClassificationEvent, error) {
	query := `
		SELECT id, theme_category, theme_subcategory, theme_specific, analysis, confidence, degraded, occurred_at
		FROM events WHERE 1=1`
	args := []interface{}{}

	if !from.IsZero() {
		query += " AND occurred_at >= ?"
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		query += " AND occurred_at < ?"
		args = append(args, to.UTC())
	}
	query += " ORDER BY occurred_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*types.ClassificationEvent
	for rows.Next() {
		var ev types.ClassificationEvent
		var degraded int
		if err := rows.Scan(
			&ev.ID,
			&ev.Theme.Category,
			&ev.Theme.Subcategory,
			&ev.Theme.Specific,
			&ev.Analysis,
			&ev.Confidence,
			&degraded,
			&ev.OccurredAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		ev.Degraded = degraded != 0
		events = append(events, &ev)
	}
	return events, rows.Err()
}

// CountEvents returns the total number of stored events.
func (s *Store) CountEvents(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM events").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}

// ListThemes returns all themes ordered by path.
func (s *Store) ListThemes(ctx context.Context) ([]types.Theme, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category, subcategory, specific
		FROM themes ORDER BY category, subcategory, specific`)
	if err != nil {
		return nil, fmt.Errorf("failed to list themes: %w", err)
	}
	defer rows.Close()

	var themes []types.Theme
	for rows.Next() {
		var t types.Theme
		if err := rows.Scan(&t.ID, &t.Category, &t.Subcategory, &t.Specific); err != nil {
			return nil, fmt.Errorf("failed to scan theme: %w", err)
		}
		themes = append(themes, t)
	}
	return themes, rows.Err()
}

// AddTheme inserts a theme and assigns its ID.
func (s *Store) AddTheme(ctx context.Context, theme *types.Theme) error {
	if theme == nil {
		return storage.ErrInvalidInput
	}
	if err := theme.Validate(); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO themes (category, subcategory, specific) VALUES (?, ?, ?)`,
		theme.Category, theme.Subcategory, theme.Specific)
	if err != nil {
		return fmt.Errorf("failed to add theme: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read theme id: %w", err)
	}
	theme.ID = id
	return nil
}

// UpdateTheme modifies an existing theme.
func (s *Store) UpdateTheme(ctx context.Context, theme types.Theme) error {
	if err := theme.Validate(); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE themes SET category = ?, subcategory = ?, specific = ? WHERE id = ?`,
		theme.Category, theme.Subcategory, theme.Specific, theme.ID)
	if err != nil {
		return fmt.Errorf("failed to update theme: %w", err)
	}
	return requireRowAffected(result)
}

// DeleteTheme removes a theme by ID.
func (s *Store) DeleteTheme(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM themes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete theme: %w", err)
	}
	return requireRowAffected(result)
}

// ReplaceThemes atomically swaps the full taxonomy.
func (s *Store) ReplaceThemes(ctx context.Context, themes []types.Theme) error {
	for _, t := range themes {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM themes"); err != nil {
		return fmt.Errorf("failed to clear themes: %w", err)
	}
	for _, t := range themes {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO themes (category, subcategory, specific) VALUES (?, ?, ?)`,
			t.Category, t.Subcategory, t.Specific); err != nil {
			return fmt.Errorf("failed to insert theme: %w", err)
		}
	}
	return tx.Commit()
}

// GetSetting returns the value for key.
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get setting %q: %w", key, err)
	}
	return value, nil
}

// SetSetting upserts a key/value pair.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("%w: setting key is required", storage.ErrInvalidInput)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value)
	if err != nil {
		return fmt.Errorf("failed to set setting %q: %w", key, err)
	}
	return nil
}

func requireRowAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Compile-time interface check.
var _ storage.Store = (*Store)(nil)
