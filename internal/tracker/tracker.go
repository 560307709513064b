// Package tracker runs the capture and analysis loops. Capturing and
// analyzing tick on independent cadences: the capture loop grabs frames
// frequently and gates them on similarity to the previous frame, the
// analysis loop consumes the latest retained frame at a slower pace.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/scrypster/focusd/internal/capture"
	"github.com/scrypster/focusd/internal/classify"
	"github.com/scrypster/focusd/pkg/types"
)

var ErrAlreadyRunning = errors.New("tracker: already running")

// ThemeSource supplies the current taxonomy at analysis time, so theme
// edits take effect without restarting the loops.
type ThemeSource func(ctx context.Context) ([]types.Theme, error)

// EventSink receives every classification event the tracker produces.
type EventSink func(event *types.ClassificationEvent)

// Stats is a point-in-time snapshot of loop activity.
type Stats struct {
	Running      bool      `json:"running"`
	StartedAt    time.Time `json:"started_at,omitempty"`
	Captures     uint64    `json:"captures"`
	Skipped      uint64    `json:"skipped"`
	Analyses     uint64    `json:"analyses"`
	Degraded     uint64    `json:"degraded"`
	LastActivity string    `json:"last_activity,omitempty"`
}

// Tracker owns the two loops and the frame slot between them.
type Tracker struct {
	capturer   capture.Capturer
	classifier *classify.Classifier
	themes     ThemeSource

	sinkMu  sync.RWMutex
	onEvent EventSink

	mu         sync.Mutex
	running    bool
	settings   types.TrackerSettings
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	generation uint64

	// baseline is the reference frame for the similarity gate; slot
	// holds the most recent frame that passed the gate and has not been
	// analyzed yet. Both are guarded by frameMu, not mu, so Status
	// never blocks behind a capture.
	frameMu  sync.Mutex
	baseline []byte
	slot     *types.CaptureSample

	inFlight atomic.Bool

	startedAt    time.Time
	captures     atomic.Uint64
	skipped      atomic.Uint64
	analyses     atomic.Uint64
	degraded     atomic.Uint64
	lastActivity atomic.Value // string
}

// New builds a stopped tracker. onEvent may be nil.
func New(capturer capture.Capturer, classifier *classify.Classifier, themes ThemeSource, onEvent EventSink) *Tracker {
	t := &Tracker{
		capturer:   capturer,
		classifier: classifier,
		themes:     themes,
		onEvent:    onEvent,
	}
	t.lastActivity.Store("")
	return t
}

// SetEventSink replaces the event callback. Allows wiring the sink after
// construction, before the loops start.
func (t *Tracker) SetEventSink(sink EventSink) {
	t.sinkMu.Lock()
	defer t.sinkMu.Unlock()
	t.onEvent = sink
}

// Start validates settings and the taxonomy, then launches both loops.
// Returns ErrAlreadyRunning when the loops are already up.
func (t *Tracker) Start(ctx context.Context, settings types.TrackerSettings) error {
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("tracker: invalid settings: %w", err)
	}

	themes, err := t.themes(ctx)
	if err != nil {
		return fmt.Errorf("tracker: loading themes: %w", err)
	}
	if len(themes) == 0 {
		return classify.ErrEmptyTaxonomy
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.settings = settings
	t.running = true
	t.generation++
	t.startedAt = time.Now()
	gen := t.generation

	t.frameMu.Lock()
	t.baseline = nil
	t.slot = nil
	t.frameMu.Unlock()

	t.wg.Add(2)
	go t.captureLoop(runCtx, settings)
	go t.analysisLoop(runCtx, settings, gen)

	log.Printf("Tracker: started (capture every %s, analysis every %s, threshold %.0f%%)",
		settings.CaptureInterval(), settings.AnalysisInterval(), settings.SimilarityThreshold)
	return nil
}

// Stop halts both loops and waits for them to exit. Results from an
// analysis still in flight are discarded. Idempotent.
func (t *Tracker) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	t.generation++
	cancel := t.cancel
	t.cancel = nil
	t.mu.Unlock()

	cancel()
	t.wg.Wait()
	log.Printf("Tracker: stopped")
}

// UpdateSettings restarts the loops with new settings if they are
// running, otherwise just validates.
func (t *Tracker) UpdateSettings(ctx context.Context, settings types.TrackerSettings) error {
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("tracker: invalid settings: %w", err)
	}

	t.mu.Lock()
	wasRunning := t.running
	t.mu.Unlock()

	if !wasRunning {
		return nil
	}
	t.Stop()
	return t.Start(ctx, settings)
}

// Running reports whether the loops are up.
func (t *Tracker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Status returns a snapshot of loop counters.
func (t *Tracker) Status() Stats {
	t.mu.Lock()
	running := t.running
	startedAt := t.startedAt
	t.mu.Unlock()

	stats := Stats{
		Running:      running,
		Captures:     t.captures.Load(),
		Skipped:      t.skipped.Load(),
		Analyses:     t.analyses.Load(),
		Degraded:     t.degraded.Load(),
		LastActivity: t.lastActivity.Load().(string),
	}
	if running {
		stats.StartedAt = startedAt
	}
	return stats
}

func (t *Tracker) captureLoop(ctx context.Context, settings types.TrackerSettings) {
	defer t.wg.Done()

	ticker := time.NewTicker(settings.CaptureInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.captureOnce(ctx, settings)
		}
	}
}

func (t *Tracker) captureOnce(ctx context.Context, settings types.TrackerSettings) {
	sample, err := t.capturer.Capture(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Printf("Tracker: capture failed: %v", err)
		t.lastActivity.Store(fmt.Sprintf("capture failed: %v", err))
		return
	}

	t.captures.Add(1)

	t.frameMu.Lock()
	defer t.frameMu.Unlock()

	sim := capture.Similarity(t.baseline, sample.Data)
	// The baseline always advances to the newest frame so a slow drift
	// across many near-identical frames is still eventually noticed.
	t.baseline = sample.Data

	if capture.ShouldSkip(sim, settings.SimilarityThreshold) {
		t.skipped.Add(1)
		t.lastActivity.Store(fmt.Sprintf("skipped: similarity %.1f%%", sim))
		return
	}

	t.slot = sample
	t.lastActivity.Store(fmt.Sprintf("captured: similarity %.1f%%", sim))
}

func (t *Tracker) analysisLoop(ctx context.Context, settings types.TrackerSettings, gen uint64) {
	defer t.wg.Done()

	ticker := time.NewTicker(settings.AnalysisInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.analyzeOnce(ctx, gen)
		}
	}
}

func (t *Tracker) analyzeOnce(ctx context.Context, gen uint64) {
	// Drop the tick rather than queue behind a slow model call.
	if !t.inFlight.CompareAndSwap(false, true) {
		return
	}
	defer t.inFlight.Store(false)

	t.frameMu.Lock()
	sample := t.slot
	t.slot = nil
	t.frameMu.Unlock()

	if sample == nil {
		return
	}

	themes, err := t.themes(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("Tracker: loading themes: %v", err)
		}
		return
	}
	if len(themes) == 0 {
		log.Printf("Tracker: no themes configured, dropping frame")
		return
	}

	event, err := t.classifier.Classify(ctx, sample, themes)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("Tracker: classification failed: %v", err)
		}
		return
	}

	// Discard results that finished after Stop or a restart.
	t.mu.Lock()
	stale := !t.running || t.generation != gen
	t.mu.Unlock()
	if stale {
		return
	}

	t.analyses.Add(1)
	if event.Degraded {
		t.degraded.Add(1)
	}
	t.lastActivity.Store(fmt.Sprintf("analyzed: %s (%.0f%%)", event.Theme.Path(), event.Confidence))

	t.sinkMu.RLock()
	sink := t.onEvent
	t.sinkMu.RUnlock()
	if sink != nil {
		sink(event)
	}
}
