package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/scrypster/focusd/internal/capture"
	"github.com/scrypster/focusd/internal/classify"
	"github.com/scrypster/focusd/internal/config"
	"github.com/scrypster/focusd/internal/llm"
	"github.com/scrypster/focusd/internal/notify"
	"github.com/scrypster/focusd/internal/server"
	"github.com/scrypster/focusd/internal/services"
	"github.com/scrypster/focusd/internal/storage"
	"github.com/scrypster/focusd/internal/storage/postgres"
	"github.com/scrypster/focusd/internal/storage/sqlite"
	"github.com/scrypster/focusd/internal/tracker"
	"github.com/scrypster/focusd/pkg/types"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the tracking daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := os.MkdirAll(cfg.Storage.DataPath, 0o700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// Single daemon instance per data directory.
	lock := flock.New(filepath.Join(cfg.Storage.DataPath, "focusd.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another focusd instance is already running for this data directory")
	}
	defer lock.Unlock()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := seedThemes(ctx, store); err != nil {
		return err
	}

	// Persisted settings take precedence over the environment.
	cfg, err = config.LoadConfigFromStore(ctx, store)
	if err != nil {
		return err
	}

	completer, err := llm.NewVisionCompleter(cfg.Tracker)
	if err != nil {
		return fmt.Errorf("configuring vision provider: %w", err)
	}
	classifier := classify.NewClassifier(completer)

	capturer := capture.NewCommandCapturer("")
	trk := tracker.New(capturer, classifier, func(ctx context.Context) ([]types.Theme, error) {
		return store.ListThemes(ctx)
	}, nil)

	// Manual test captures go through a short TTL cache so the UI can
	// poll without hammering the screenshot backend. The tracker loop
	// uses the raw capturer; cached frames would blind the similarity
	// gate.
	cachedCapturer := capture.NewCachedCapturer(capturer, 0)

	addr, hub, err := server.Start(ctx, cfg, store, trk, classifier, cachedCapturer)
	if err != nil {
		return err
	}
	log.Printf("focusd: listening on %s", addr)

	settingsService := services.NewSettingsService(store)
	trk.SetEventSink(func(event *types.ClassificationEvent) {
		if err := store.AppendEvent(context.Background(), event); err != nil {
			log.Printf("focusd: failed to store event: %v", err)
			return
		}
		hub.BroadcastEvent(event)
	})

	watcher := notify.NewCommandWatcher(cfg.Storage.DataPath, func(commandType string) {
		handleControlCommand(ctx, commandType, trk, classifier, settingsService)
	})
	if err := watcher.Start(); err != nil {
		return fmt.Errorf("starting control watcher: %w", err)
	}
	defer watcher.Stop()

	if cfg.Tracker.TrackingEnabled {
		if err := trk.Start(ctx, cfg.Tracker); err != nil {
			log.Printf("focusd: tracking not started: %v", err)
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Printf("focusd: received %s, shutting down", sig)

	trk.Stop()
	cancel()
	return nil
}

// handleControlCommand applies a command dropped into the control
// directory by the CLI.
func handleControlCommand(ctx context.Context, commandType string, trk *tracker.Tracker, classifier *classify.Classifier, settingsService *services.SettingsService) {
	switch commandType {
	case notify.CommandReload:
		settings, err := settingsService.Load(ctx)
		if err != nil {
			log.Printf("focusd: reload failed: %v", err)
			return
		}
		completer, err := llm.NewVisionCompleter(settings)
		if err != nil {
			log.Printf("focusd: reload failed: %v", err)
			return
		}
		classifier.SetCompleter(completer)
		if err := trk.UpdateSettings(ctx, settings); err != nil {
			log.Printf("focusd: reload failed: %v", err)
			return
		}
		log.Printf("focusd: settings reloaded")

	case notify.CommandStart:
		settings, err := settingsService.Load(ctx)
		if err != nil {
			log.Printf("focusd: start failed: %v", err)
			return
		}
		if err := trk.Start(ctx, settings); err != nil && !errors.Is(err, tracker.ErrAlreadyRunning) {
			log.Printf("focusd: start failed: %v", err)
		}

	case notify.CommandStop:
		trk.Stop()

	default:
		log.Printf("focusd: unknown control command %q", commandType)
	}
}

// openStore builds the configured storage backend.
func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.StorageEngine {
	case "sqlite", "":
		dsn := filepath.Join(cfg.Storage.DataPath, "focusd.db")
		store, err := sqlite.NewStore(dsn)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return store, nil
	case "postgres":
		if cfg.Storage.PostgresDSN == "" {
			return nil, errors.New("FOCUSD_POSTGRES_DSN is required for the postgres engine")
		}
		store, err := postgres.NewStore(cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("opening postgres store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage engine %q", cfg.Storage.StorageEngine)
	}
}

// seedThemes installs the default taxonomy on first run.
func seedThemes(ctx context.Context, store storage.Store) error {
	themes, err := store.ListThemes(ctx)
	if err != nil {
		return fmt.Errorf("listing themes: %w", err)
	}
	if len(themes) > 0 {
		return nil
	}

	if err := store.ReplaceThemes(ctx, types.DefaultThemes()); err != nil {
		return fmt.Errorf("seeding default themes: %w", err)
	}
	log.Printf("focusd: seeded default theme taxonomy")
	return nil
}
