package main

import (
	"context"
	"strings"
	"testing"

	"github.com/scrypster/focusd/internal/config"
)

func TestOpenStoreSQLiteAndSeed(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.StorageEngine = "sqlite"
	cfg.Storage.DataPath = t.TempDir()

	store, err := openStore(cfg)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := seedThemes(ctx, store); err != nil {
		t.Fatalf("failed to seed themes: %v", err)
	}

	themes, err := store.ListThemes(ctx)
	if err != nil {
		t.Fatalf("failed to list themes: %v", err)
	}
	if len(themes) == 0 {
		t.Fatal("expected seeded themes, got none")
	}

	// Seeding is first-run only.
	before := len(themes)
	if err := seedThemes(ctx, store); err != nil {
		t.Fatalf("second seed failed: %v", err)
	}
	themes, err = store.ListThemes(ctx)
	if err != nil {
		t.Fatalf("failed to list themes: %v", err)
	}
	if len(themes) != before {
		t.Errorf("second seed changed theme count: %d -> %d", before, len(themes))
	}
}

func TestOpenStoreRejectsUnknownEngine(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.StorageEngine = "flatfile"

	if _, err := openStore(cfg); err == nil {
		t.Fatal("expected error for unknown storage engine")
	}
}

func TestOpenStorePostgresRequiresDSN(t *testing.T) {
	cfg := &config.Config{}
	cfg.Storage.StorageEngine = "postgres"

	if _, err := openStore(cfg); err == nil {
		t.Fatal("expected error for missing postgres DSN")
	}
}

func TestRenderTable(t *testing.T) {
	out := renderTable(
		[]string{"THEME", "EVENTS"},
		[][]string{{"Work > Development > Backend", "12"}, {"Entertainment > Video > YouTube", "3"}},
		[]columnAlignment{alignLeft, alignRight},
	)

	for _, want := range []string{"THEME", "EVENTS", "Work > Development > Backend", "12"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered table missing %q:\n%s", want, out)
		}
	}
}

func TestRenderTableEmptyHeaders(t *testing.T) {
	if out := renderTable(nil, nil, nil); out != "" {
		t.Errorf("expected empty output, got %q", out)
	}
}
