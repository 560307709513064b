package timeline

import "time"

const (
	// BaseDayWidth is the rendered width of one day at zoom 1.0.
	BaseDayWidth = 1000.0

	MinZoom = 0.2
	MaxZoom = 2.0

	millisPerDay = 24 * 60 * 60 * 1000
)

// Mapper converts times to horizontal pixel positions for a single day
// view. Zoom scales the day width, pan shifts the viewport. Mapping is
// deterministic: the same time under the same zoom and pan always lands
// on the same pixel.
type Mapper struct {
	zoom float64
	pan  float64
}

// NewMapper returns a mapper at zoom 1.0 with no pan.
func NewMapper() *Mapper {
	return &Mapper{zoom: 1.0}
}

// SetZoom clamps and applies z, then re-clamps pan since the pan bound
// depends on the day width.
func (m *Mapper) SetZoom(z float64) {
	if z < MinZoom {
		z = MinZoom
	}
	if z > MaxZoom {
		z = MaxZoom
	}
	m.zoom = z
	m.SetPan(m.pan)
}

// Zoom returns the current zoom factor.
func (m *Mapper) Zoom() float64 { return m.zoom }

// SetPan clamps and applies a horizontal offset in pixels. The viewport
// may shift at most one day width in either direction.
func (m *Mapper) SetPan(p float64) {
	limit := m.DayWidth()
	if p < -limit {
		p = -limit
	}
	if p > limit {
		p = limit
	}
	m.pan = p
}

// Pan returns the current pan offset in pixels.
func (m *Mapper) Pan() float64 { return m.pan }

// DayWidth returns the rendered width of one day in pixels.
func (m *Mapper) DayWidth() float64 {
	return BaseDayWidth * m.zoom
}

// PixelsPerMillisecond returns the horizontal scale.
func (m *Mapper) PixelsPerMillisecond() float64 {
	return m.DayWidth() / millisPerDay
}

// MapToX maps t to a pixel position relative to dayStart. Times before
// dayStart map to negative positions.
func (m *Mapper) MapToX(t, dayStart time.Time) float64 {
	elapsed := float64(t.Sub(dayStart).Milliseconds())
	return elapsed*m.PixelsPerMillisecond() + m.pan
}

// MapSegment returns the left edge and width of a segment in pixels.
// Width is independent of pan.
func (m *Mapper) MapSegment(start, end, dayStart time.Time) (x, width float64) {
	x = m.MapToX(start, dayStart)
	width = float64(end.Sub(start).Milliseconds()) * m.PixelsPerMillisecond()
	return x, width
}
