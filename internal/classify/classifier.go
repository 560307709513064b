// Package classify turns captured screen frames into classification
// events by sending them to a vision model and resolving the answer
// against the user's theme taxonomy.
package classify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/scrypster/focusd/internal/llm"
	"github.com/scrypster/focusd/pkg/types"
)

// DegradedConfidence is the fixed confidence assigned to events produced
// when the vision service is unavailable.
const DegradedConfidence = 30

var ErrEmptyTaxonomy = errors.New("classify: theme taxonomy is empty")

// Classifier sends frames to a vision completer and produces events.
// The completer can be swapped at runtime when provider settings change.
type Classifier struct {
	mu        sync.RWMutex
	completer llm.VisionCompleter
}

// NewClassifier builds a classifier around the given completer.
func NewClassifier(completer llm.VisionCompleter) *Classifier {
	return &Classifier{completer: completer}
}

// SetCompleter replaces the vision completer. In-flight calls finish
// against the old one.
func (c *Classifier) SetCompleter(completer llm.VisionCompleter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.completer = completer
}

// Completer returns the active vision completer.
func (c *Classifier) Completer() llm.VisionCompleter {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.completer
}

// Classify analyzes one frame against the taxonomy. A service failure
// does not fail the call: it produces a degraded event attributed to the
// first theme so the timeline keeps a continuous record. The returned
// error is non-nil only for invalid input.
func (c *Classifier) Classify(ctx context.Context, sample *types.CaptureSample, themes []types.Theme) (*types.ClassificationEvent, error) {
	if sample == nil || len(sample.Data) == 0 {
		return nil, errors.New("classify: empty capture sample")
	}
	if len(themes) == 0 {
		return nil, ErrEmptyTaxonomy
	}

	prompt := llm.BuildClassifyPrompt(themes)

	response, err := c.Completer().Complete(ctx, prompt, sample.Data)
	if err != nil {
		log.Printf("Classify: vision request failed (%s): %v", llm.ErrorStatus(err), err)
		return c.degradedEvent(themes, err), nil
	}

	theme, confidence, analysis := llm.ParseClassification(response, themes)

	return &types.ClassificationEvent{
		ID:         uuid.New().String(),
		Theme:      theme,
		Analysis:   analysis,
		Confidence: confidence,
		Degraded:   false,
		OccurredAt: time.Now(),
	}, nil
}

// degradedEvent records that tracking continued while the vision service
// was unreachable. The analysis names the failure class so the timeline
// shows why the slot has low confidence.
func (c *Classifier) degradedEvent(themes []types.Theme, cause error) *types.ClassificationEvent {
	return &types.ClassificationEvent{
		ID:         uuid.New().String(),
		Theme:      themes[0],
		Analysis:   fmt.Sprintf("analysis unavailable: %s", llm.ErrorStatus(cause)),
		Confidence: DegradedConfidence,
		Degraded:   true,
		OccurredAt: time.Now(),
	}
}
