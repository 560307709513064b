package tracker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/scrypster/focusd/internal/classify"
	"github.com/scrypster/focusd/pkg/types"
)

// scriptedCapturer returns the configured frames in order, repeating the
// last one once the script is exhausted.
type scriptedCapturer struct {
	mu     sync.Mutex
	frames [][]byte
	index  int
}

func (s *scriptedCapturer) Capture(ctx context.Context) (*types.CaptureSample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.frames) == 0 {
		return nil, errors.New("no frames scripted")
	}
	frame := s.frames[s.index]
	if s.index < len(s.frames)-1 {
		s.index++
	}
	return &types.CaptureSample{Data: frame, Format: "png", CapturedAt: time.Now()}, nil
}

type staticCompleter struct{ response string }

func (s *staticCompleter) Complete(ctx context.Context, prompt string, image []byte) (string, error) {
	return s.response, nil
}
func (s *staticCompleter) GetModel() string { return "static" }

func fastSettings() types.TrackerSettings {
	s := types.DefaultTrackerSettings()
	s.CaptureIntervalSeconds = 1
	s.AnalysisIntervalSeconds = 1
	return s
}

func testThemes() []types.Theme {
	return []types.Theme{
		{ID: 1, Category: "Work", Subcategory: "Development", Specific: "Backend"},
	}
}

func themeSource(themes []types.Theme) ThemeSource {
	return func(ctx context.Context) ([]types.Theme, error) { return themes, nil }
}

func newTestTracker(capturer *scriptedCapturer, themes []types.Theme, sink EventSink) *Tracker {
	classifier := classify.NewClassifier(&staticCompleter{
		response: `{"theme": "Work > Development > Backend", "confidence": 90, "analysis": "code"}`,
	})
	return New(capturer, classifier, themeSource(themes), sink)
}

func TestStartValidatesSettings(t *testing.T) {
	trk := newTestTracker(&scriptedCapturer{frames: [][]byte{{1}}}, testThemes(), nil)

	bad := fastSettings()
	bad.CaptureIntervalSeconds = 0
	if err := trk.Start(context.Background(), bad); err == nil {
		t.Error("expected error for zero capture interval")
	}

	bad = fastSettings()
	bad.SimilarityThreshold = 150
	if err := trk.Start(context.Background(), bad); err == nil {
		t.Error("expected error for out-of-range threshold")
	}
}

func TestStartRefusesEmptyTaxonomy(t *testing.T) {
	trk := newTestTracker(&scriptedCapturer{frames: [][]byte{{1}}}, nil, nil)

	err := trk.Start(context.Background(), fastSettings())
	if !errors.Is(err, classify.ErrEmptyTaxonomy) {
		t.Errorf("expected ErrEmptyTaxonomy, got %v", err)
	}
}

func TestStartTwiceReturnsAlreadyRunning(t *testing.T) {
	trk := newTestTracker(&scriptedCapturer{frames: [][]byte{{1}}}, testThemes(), nil)

	if err := trk.Start(context.Background(), fastSettings()); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	defer trk.Stop()

	if err := trk.Start(context.Background(), fastSettings()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("expected ErrAlreadyRunning, got %v", err)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	trk := newTestTracker(&scriptedCapturer{frames: [][]byte{{1}}}, testThemes(), nil)

	if err := trk.Start(context.Background(), fastSettings()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	trk.Stop()
	trk.Stop()

	if trk.Running() {
		t.Error("tracker still running after Stop")
	}
}

func TestSimilarityGateSkipsUnchangedFrames(t *testing.T) {
	// Same frame forever: after the first admitted frame everything
	// should be gated.
	capturer := &scriptedCapturer{frames: [][]byte{{1, 2, 3, 4}}}
	trk := newTestTracker(capturer, testThemes(), nil)

	settings := fastSettings()
	settings.SimilarityThreshold = 95

	if err := trk.Start(context.Background(), settings); err != nil {
		t.Fatalf("Start: %v", err)
	}
	time.Sleep(3500 * time.Millisecond)
	trk.Stop()

	stats := trk.Status()
	if stats.Captures < 2 {
		t.Fatalf("captures = %d, want at least 2", stats.Captures)
	}
	if stats.Skipped != stats.Captures-1 {
		t.Errorf("skipped = %d with %d captures, want all but the first gated",
			stats.Skipped, stats.Captures)
	}
}

func TestAnalysisConsumesAdmittedFrame(t *testing.T) {
	var mu sync.Mutex
	var events []*types.ClassificationEvent

	capturer := &scriptedCapturer{frames: [][]byte{{1, 1, 1, 1}}}
	trk := newTestTracker(capturer, testThemes(), func(event *types.ClassificationEvent) {
		mu.Lock()
		events = append(events, event)
		mu.Unlock()
	})

	settings := fastSettings()
	settings.SimilarityThreshold = 95

	if err := trk.Start(context.Background(), settings); err != nil {
		t.Fatalf("Start: %v", err)
	}
	time.Sleep(2500 * time.Millisecond)
	trk.Stop()

	mu.Lock()
	defer mu.Unlock()
	// Exactly one frame passed the gate (the first), so exactly one
	// analysis can have happened no matter how many ticks fired.
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Theme.ID != 1 {
		t.Errorf("event theme ID = %d, want 1", events[0].Theme.ID)
	}
}

func TestZeroThresholdDisablesGate(t *testing.T) {
	capturer := &scriptedCapturer{frames: [][]byte{{9, 9, 9, 9}}}
	trk := newTestTracker(capturer, testThemes(), nil)

	settings := fastSettings()
	settings.SimilarityThreshold = 0

	if err := trk.Start(context.Background(), settings); err != nil {
		t.Fatalf("Start: %v", err)
	}
	time.Sleep(2500 * time.Millisecond)
	trk.Stop()

	stats := trk.Status()
	if stats.Skipped != 0 {
		t.Errorf("skipped = %d with gate disabled, want 0", stats.Skipped)
	}
}

func TestUpdateSettingsWhileStopped(t *testing.T) {
	trk := newTestTracker(&scriptedCapturer{frames: [][]byte{{1}}}, testThemes(), nil)

	if err := trk.UpdateSettings(context.Background(), fastSettings()); err != nil {
		t.Fatalf("UpdateSettings on stopped tracker: %v", err)
	}
	if trk.Running() {
		t.Error("UpdateSettings must not start a stopped tracker")
	}
}

func TestUpdateSettingsRestartsRunningTracker(t *testing.T) {
	trk := newTestTracker(&scriptedCapturer{frames: [][]byte{{1, 2, 3}}}, testThemes(), nil)

	if err := trk.Start(context.Background(), fastSettings()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer trk.Stop()

	updated := fastSettings()
	updated.SimilarityThreshold = 50
	if err := trk.UpdateSettings(context.Background(), updated); err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	if !trk.Running() {
		t.Error("tracker should still be running after UpdateSettings")
	}
}
