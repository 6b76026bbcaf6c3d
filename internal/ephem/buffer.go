// Package ephem generates the ordered sub-satellite ground-track sequence
// that the territory labeler and POI selector both consume.
//
// The sample slice is preallocated with make([]T, 0, n) and built with
// append — the natural replacement for a prepend-then-reverse linked list.
package ephem

import (
	"github.com/star/satplanner/internal/transform"
)

// Sample is one ground-track point: the Julian date, its fixed-format
// display timestamp, and the sub-satellite geodetic position. LookAngles is
// populated only when the run carried an observer site.
type Sample struct {
	JD         float64
	TimeStr    string
	LatDeg     float64
	LonDeg     float64
	HasLook    bool
	LookAngles transform.LookAngles
}

// Buffer is the ordered, immutable-once-built ground-track sequence
// produced by one Engine.Generate call. Samples are in chronological
// order; jd is monotonically non-decreasing by construction.
type Buffer struct {
	Samples []Sample
}

// Len reports the number of samples in the buffer.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Samples)
}
