package classify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/scrypster/focusd/internal/llm"
	"github.com/scrypster/focusd/pkg/types"
)

// fakeCompleter returns a canned response or error.
type fakeCompleter struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string, image []byte) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeCompleter) GetModel() string { return "fake" }

func sampleFrame() *types.CaptureSample {
	return &types.CaptureSample{
		Data:       []byte{0x89, 0x50, 0x4e, 0x47},
		Format:     "png",
		CapturedAt: time.Now(),
	}
}

func testThemes() []types.Theme {
	return []types.Theme{
		{ID: 1, Category: "Work", Subcategory: "Development", Specific: "Backend"},
		{ID: 2, Category: "Entertainment", Subcategory: "Video", Specific: "YouTube"},
	}
}

func TestClassifyProducesEvent(t *testing.T) {
	completer := &fakeCompleter{
		response: `{"theme": "Entertainment > Video > YouTube", "confidence": 80, "analysis": "Video player fullscreen"}`,
	}
	classifier := NewClassifier(completer)

	event, err := classifier.Classify(context.Background(), sampleFrame(), testThemes())
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	if event.ID == "" {
		t.Error("event has no ID")
	}
	if event.Theme.ID != 2 {
		t.Errorf("theme ID = %d, want 2", event.Theme.ID)
	}
	if event.Confidence != 80 {
		t.Errorf("confidence = %v, want 80", event.Confidence)
	}
	if event.Degraded {
		t.Error("successful classification must not be degraded")
	}
	if event.OccurredAt.IsZero() {
		t.Error("event has no timestamp")
	}

	// The prompt must enumerate the taxonomy.
	if len(completer.prompts) != 1 || !strings.Contains(completer.prompts[0], "Work > Development > Backend") {
		t.Error("prompt does not enumerate themes")
	}
}

func TestClassifyServiceFailureProducesDegradedEvent(t *testing.T) {
	completer := &fakeCompleter{err: llm.ErrAuth}
	classifier := NewClassifier(completer)

	event, err := classifier.Classify(context.Background(), sampleFrame(), testThemes())
	if err != nil {
		t.Fatalf("Classify should not fail on service errors, got %v", err)
	}

	if !event.Degraded {
		t.Error("event should be degraded")
	}
	if event.Confidence != DegradedConfidence {
		t.Errorf("confidence = %v, want %d", event.Confidence, DegradedConfidence)
	}
	if event.Theme.ID != 1 {
		t.Errorf("degraded event theme ID = %d, want first theme", event.Theme.ID)
	}
	if !strings.Contains(event.Analysis, "invalid API key") {
		t.Errorf("analysis %q does not name the failure", event.Analysis)
	}
}

func TestClassifyInvalidInput(t *testing.T) {
	classifier := NewClassifier(&fakeCompleter{response: "{}"})

	if _, err := classifier.Classify(context.Background(), nil, testThemes()); err == nil {
		t.Error("expected error for nil sample")
	}
	if _, err := classifier.Classify(context.Background(), sampleFrame(), nil); !errors.Is(err, ErrEmptyTaxonomy) {
		t.Errorf("expected ErrEmptyTaxonomy, got %v", err)
	}
}

func TestSetCompleterSwapsProvider(t *testing.T) {
	first := &fakeCompleter{response: `{"theme": "Work > Development > Backend", "confidence": 50, "analysis": "a"}`}
	second := &fakeCompleter{response: `{"theme": "Entertainment > Video > YouTube", "confidence": 50, "analysis": "b"}`}

	classifier := NewClassifier(first)
	classifier.SetCompleter(second)

	event, err := classifier.Classify(context.Background(), sampleFrame(), testThemes())
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if event.Theme.ID != 2 {
		t.Errorf("theme ID = %d, want 2 from swapped completer", event.Theme.ID)
	}
	if len(first.prompts) != 0 {
		t.Error("old completer should not receive calls after swap")
	}
}
