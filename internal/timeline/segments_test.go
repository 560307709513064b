package timeline

import (
	"testing"
	"time"

	"github.com/scrypster/focusd/pkg/types"
)

func event(id string, at time.Time, theme types.Theme, confidence float64) *types.ClassificationEvent {
	return &types.ClassificationEvent{
		ID:         id,
		Theme:      theme,
		Analysis:   "analysis " + id,
		Confidence: confidence,
		OccurredAt: at,
	}
}

var (
	workTheme  = types.Theme{ID: 1, Category: "Work", Subcategory: "Development", Specific: "Backend"}
	videoTheme = types.Theme{ID: 2, Category: "Entertainment", Subcategory: "Video", Specific: "YouTube"}
)

func TestBuildSegmentsEmpty(t *testing.T) {
	if got := BuildSegments(nil); got != nil {
		t.Errorf("BuildSegments(nil) = %v, want nil", got)
	}
}

func TestBuildSegmentsContiguous(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)
	events := []*types.ClassificationEvent{
		event("a", base, workTheme, 90),
		event("b", base.Add(10*time.Minute), workTheme, 80),
		event("c", base.Add(25*time.Minute), videoTheme, 70),
	}

	segments := BuildSegments(events)
	if len(segments) != 3 {
		t.Fatalf("got %d segments, want 3", len(segments))
	}

	// Each segment ends where the next begins.
	for i := 0; i < len(segments)-1; i++ {
		if !segments[i].End.Equal(segments[i+1].Start) {
			t.Errorf("segment %d end %v != segment %d start %v",
				i, segments[i].End, i+1, segments[i+1].Start)
		}
	}

	// Final segment gets the default duration.
	last := segments[2]
	if last.Duration() != DefaultSegmentDuration {
		t.Errorf("last segment duration = %v, want %v", last.Duration(), DefaultSegmentDuration)
	}
	if last.Theme.ID != videoTheme.ID {
		t.Errorf("last segment theme = %d, want %d", last.Theme.ID, videoTheme.ID)
	}
}

func TestBuildSegmentsSortsInput(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)
	events := []*types.ClassificationEvent{
		event("late", base.Add(30*time.Minute), videoTheme, 70),
		event("early", base, workTheme, 90),
	}

	segments := BuildSegments(events)
	if len(segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(segments))
	}
	if segments[0].Theme.ID != workTheme.ID {
		t.Error("segments not ordered by start time")
	}
	if segments[0].Duration() != 30*time.Minute {
		t.Errorf("first segment duration = %v, want 30m", segments[0].Duration())
	}
}

func TestBuildSegmentsClipsAtMidnight(t *testing.T) {
	// 23:50 with a 20 minute default would cross into the next day.
	late := time.Date(2026, 3, 10, 23, 50, 0, 0, time.Local)
	segments := BuildSegments([]*types.ClassificationEvent{event("a", late, workTheme, 90)})

	if len(segments) != 1 {
		t.Fatalf("got %d segments, want 1", len(segments))
	}

	midnight := time.Date(2026, 3, 11, 0, 0, 0, 0, time.Local)
	if !segments[0].End.Equal(midnight) {
		t.Errorf("segment end = %v, want clipped to %v", segments[0].End, midnight)
	}
	if segments[0].Duration() != 10*time.Minute {
		t.Errorf("segment duration = %v, want 10m", segments[0].Duration())
	}
}

func TestBuildSegmentsGapBecomesOneLongSegment(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)
	events := []*types.ClassificationEvent{
		event("a", base, workTheme, 90),
		event("b", base.Add(3*time.Hour), videoTheme, 70),
	}

	segments := BuildSegments(events)
	if len(segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(segments))
	}
	if segments[0].Duration() != 3*time.Hour {
		t.Errorf("gap segment duration = %v, want 3h", segments[0].Duration())
	}
}

func TestBuildSegmentsDropsZeroDuration(t *testing.T) {
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)
	events := []*types.ClassificationEvent{
		event("a", at, workTheme, 90),
		event("b", at, videoTheme, 70),
	}

	segments := BuildSegments(events)
	// Two events at the same instant produce one zero-length segment
	// that is dropped and one real segment.
	if len(segments) != 1 {
		t.Fatalf("got %d segments, want 1", len(segments))
	}
}

func TestGroupByDay(t *testing.T) {
	day1 := time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)
	day2 := time.Date(2026, 3, 11, 9, 0, 0, 0, time.Local)
	segments := BuildSegments([]*types.ClassificationEvent{
		event("a", day1, workTheme, 90),
		event("b", day1.Add(time.Hour), workTheme, 90),
		event("c", day2, videoTheme, 70),
	})

	grouped := GroupByDay(segments)
	if len(grouped["2026-03-10"]) != 2 {
		t.Errorf("day 1 has %d segments, want 2", len(grouped["2026-03-10"]))
	}
	if len(grouped["2026-03-11"]) != 1 {
		t.Errorf("day 2 has %d segments, want 1", len(grouped["2026-03-11"]))
	}
}
