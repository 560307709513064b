package types

import "time"

// CaptureSample is one raw screen grab. The tracker owns the sample
// between capture and hand-off to classification; at most one admitted
// sample is retained at a time.
type CaptureSample struct {
	Data       []byte    `json:"-"`
	Width      int       `json:"width,omitempty"`
	Height     int       `json:"height,omitempty"`
	Format     string    `json:"format,omitempty"`
	CapturedAt time.Time `json:"captured_at"`
}

// Size returns the sample payload size in bytes.
func (s *CaptureSample) Size() int {
	if s == nil {
		return 0
	}
	return len(s.Data)
}

// ClassificationEvent is one timestamped output of the classification
// adapter. Theme is a copy of the matched taxonomy node at classification
// time. Confidence is always within [0, 100]. Degraded is set when the
// event was produced from a failed vision call rather than a model answer.
type ClassificationEvent struct {
	ID         string    `json:"id"`
	Theme      Theme     `json:"theme"`
	Analysis   string    `json:"analysis"`
	Confidence float64   `json:"confidence"`
	Degraded   bool      `json:"degraded,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// TimeSegment is a derived, never-persisted interval on the activity
// timeline. Segments built from the same event log are non-overlapping,
// ordered by Start, and clipped to the local calendar day of Start.
type TimeSegment struct {
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Theme      Theme     `json:"theme"`
	Analysis   string    `json:"analysis"`
	Confidence float64   `json:"confidence"`
	Degraded   bool      `json:"degraded,omitempty"`
}

// Duration returns the segment length.
func (s TimeSegment) Duration() time.Duration {
	return s.End.Sub(s.Start)
}
