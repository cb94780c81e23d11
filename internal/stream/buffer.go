// Package stream maintains the canonical live price history for the active
// symbol. The buffer owns the ingestion policy: strict time ordering,
// noise-level tick suppression, and a sliding retention window. It is the
// only input the indicator processor ever sees.
package stream

import "tradeboard/internal/model"

const (
	// DefaultMinDelta is the minimum absolute price move a tick must carry
	// to be stored. Smaller moves are noise and would only churn the chart.
	DefaultMinDelta = 0.01

	// DefaultRetentionSecs is the sliding lookback window. Points older
	// than latest-retention are trimmed after each accepted append.
	DefaultRetentionSecs = 3600
)

// Buffer is the time-ordered, de-duplicated price series for one symbol.
// Single-goroutine usage; reads are snapshot copies and never mutate.
type Buffer struct {
	minDelta  float64
	retention int64
	points    []model.PricePoint
}

// NewBuffer creates a Buffer with the documented default policy.
func NewBuffer() *Buffer {
	return NewBufferWith(DefaultMinDelta, DefaultRetentionSecs)
}

// NewBufferWith creates a Buffer with explicit policy knobs. Non-positive
// values fall back to the defaults.
func NewBufferWith(minDelta float64, retentionSecs int64) *Buffer {
	if minDelta <= 0 {
		minDelta = DefaultMinDelta
	}
	if retentionSecs <= 0 {
		retentionSecs = DefaultRetentionSecs
	}
	return &Buffer{minDelta: minDelta, retention: retentionSecs}
}

// Reset clears all points. Called exactly once per symbol switch, before any
// sample of the new symbol arrives.
func (b *Buffer) Reset() {
	b.points = b.points[:0]
}

// Append applies the ingestion policy to one live sample. Returns true only
// if the point was stored. Rejections are silent and intentional:
//   - time not strictly greater than the last stored point (out of order or
//     duplicate timestamp)
//   - price moved less than minDelta from the last stored value
//
// On acceptance the retention window is trimmed from the front.
func (b *Buffer) Append(p model.PricePoint) bool {
	if n := len(b.points); n > 0 {
		last := b.points[n-1]
		if p.Time <= last.Time {
			return false
		}
		if abs(p.Value-last.Value) < b.minDelta {
			return false
		}
	}
	b.points = append(b.points, p)
	b.trim()
	return true
}

// Load replaces the buffer contents with a bulk historical series: reset
// followed by appending every point. Historical bars are already
// deduplicated, so the min-delta filter is bypassed; strict time ordering is
// still enforced. Returns the number of points stored.
func (b *Buffer) Load(points []model.PricePoint) int {
	b.Reset()
	for _, p := range points {
		if n := len(b.points); n > 0 && p.Time <= b.points[n-1].Time {
			continue
		}
		b.points = append(b.points, p)
	}
	b.trim()
	return len(b.points)
}

// trim drops points older than the retention window behind the latest point.
func (b *Buffer) trim() {
	n := len(b.points)
	if n == 0 {
		return
	}
	cutoff := b.points[n-1].Time - b.retention
	i := 0
	for i < n && b.points[i].Time < cutoff {
		i++
	}
	if i > 0 {
		b.points = append(b.points[:0], b.points[i:]...)
	}
}

// Points returns a snapshot copy of the series; the caller may hold it
// across later appends.
func (b *Buffer) Points() []model.PricePoint {
	out := make([]model.PricePoint, len(b.points))
	copy(out, b.points)
	return out
}

// Len returns the number of stored points.
func (b *Buffer) Len() int { return len(b.points) }

// Last returns the most recent stored point, if any.
func (b *Buffer) Last() (model.PricePoint, bool) {
	if len(b.points) == 0 {
		return model.PricePoint{}, false
	}
	return b.points[len(b.points)-1], true
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
