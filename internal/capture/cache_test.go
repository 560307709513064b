package capture

import (
	"context"
	"testing"
	"time"

	"github.com/scrypster/focusd/pkg/types"
)

// countingCapturer returns a fresh sample on every call and counts calls.
type countingCapturer struct {
	calls int
}

func (c *countingCapturer) Capture(ctx context.Context) (*types.CaptureSample, error) {
	c.calls++
	return &types.CaptureSample{
		Data:       []byte{byte(c.calls)},
		Format:     "png",
		CapturedAt: time.Now(),
	}, nil
}

func TestCachedCapturerReusesFreshSample(t *testing.T) {
	inner := &countingCapturer{}
	cached := NewCachedCapturer(inner, time.Minute)
	ctx := context.Background()

	first, err := cached.Capture(ctx)
	if err != nil {
		t.Fatalf("first capture: %v", err)
	}
	second, err := cached.Capture(ctx)
	if err != nil {
		t.Fatalf("second capture: %v", err)
	}

	if inner.calls != 1 {
		t.Errorf("inner capturer called %d times, want 1", inner.calls)
	}
	if first != second {
		t.Error("expected cached sample to be returned")
	}

	hits, misses := cached.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("Stats() = (%d, %d), want (1, 1)", hits, misses)
	}
}

func TestCachedCapturerInvalidate(t *testing.T) {
	inner := &countingCapturer{}
	cached := NewCachedCapturer(inner, time.Minute)
	ctx := context.Background()

	if _, err := cached.Capture(ctx); err != nil {
		t.Fatalf("capture: %v", err)
	}
	cached.Invalidate()
	if _, err := cached.Capture(ctx); err != nil {
		t.Fatalf("capture after invalidate: %v", err)
	}

	if inner.calls != 2 {
		t.Errorf("inner capturer called %d times after invalidate, want 2", inner.calls)
	}
}

func TestCachedCapturerExpiry(t *testing.T) {
	inner := &countingCapturer{}
	cached := NewCachedCapturer(inner, 20*time.Millisecond)
	ctx := context.Background()

	if _, err := cached.Capture(ctx); err != nil {
		t.Fatalf("capture: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if _, err := cached.Capture(ctx); err != nil {
		t.Fatalf("capture after expiry: %v", err)
	}

	if inner.calls != 2 {
		t.Errorf("inner capturer called %d times after TTL expiry, want 2", inner.calls)
	}
}
