// Package timeline reconstructs contiguous activity segments from point
// classification events and maps them onto pixel coordinates for
// rendering.
package timeline

import (
	"sort"
	"time"

	"github.com/scrypster/focusd/pkg/types"
)

// DefaultSegmentDuration bounds the last segment of a run when no later
// event exists to close it.
const DefaultSegmentDuration = 20 * time.Minute

// BuildSegments converts point events into contiguous segments. Each
// segment runs from its event to the next event; the final segment gets
// DefaultSegmentDuration, clipped to local midnight so a segment never
// crosses a day boundary. Events are sorted by time first, so callers
// may pass store results in any order.
func BuildSegments(events []*types.ClassificationEvent) []types.TimeSegment {
	if len(events) == 0 {
		return nil
	}

	sorted := make([]*types.ClassificationEvent, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].OccurredAt.Before(sorted[j].OccurredAt)
	})

	segments := make([]types.TimeSegment, 0, len(sorted))
	for i, ev := range sorted {
		start := ev.OccurredAt

		var end time.Time
		if i+1 < len(sorted) {
			end = sorted[i+1].OccurredAt
		} else {
			end = start.Add(DefaultSegmentDuration)
		}

		if midnight := endOfDay(start); end.After(midnight) {
			end = midnight
		}

		if !end.After(start) {
			continue
		}

		segments = append(segments, types.TimeSegment{
			Start:      start,
			End:        end,
			Theme:      ev.Theme,
			Analysis:   ev.Analysis,
			Confidence: ev.Confidence,
			Degraded:   ev.Degraded,
		})
	}

	return segments
}

// GroupByDay buckets segments by their start date in local time, keyed
// by "2006-01-02".
func GroupByDay(segments []types.TimeSegment) map[string][]types.TimeSegment {
	grouped := make(map[string][]types.TimeSegment)
	for _, seg := range segments {
		key := seg.Start.Local().Format("2006-01-02")
		grouped[key] = append(grouped[key], seg)
	}
	return grouped
}

// endOfDay returns local midnight following t.
func endOfDay(t time.Time) time.Time {
	local := t.Local()
	y, m, d := local.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, local.Location())
}
