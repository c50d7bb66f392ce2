// Package frame provides frame-accurate span arithmetic for timeline positioning.
//
// A FrameSpan is a half-open interval [Begin, Begin+Duration) measured in
// frames. Spans are values: every operation returns a new span.
package frame

import (
	"fmt"
	"math"
)

// FrameSpan is a half-open frame interval.
type FrameSpan struct {
	// Begin is the first frame covered by the span.
	Begin uint64

	// Duration is the number of frames covered.
	Duration uint64
}

// New creates a span from a begin frame and a duration.
func New(begin, duration uint64) FrameSpan {
	return FrameSpan{Begin: begin, Duration: duration}
}

// FromRange creates a span covering [begin, end).
// An end before begin yields an empty span at begin.
func FromRange(begin, end uint64) FrameSpan {
	if end < begin {
		return FrameSpan{Begin: begin}
	}
	return FrameSpan{Begin: begin, Duration: end - begin}
}

// End returns the exclusive end frame.
func (s FrameSpan) End() uint64 {
	return s.Begin + s.Duration
}

// IsEmpty returns true if the span covers no frames.
func (s FrameSpan) IsEmpty() bool {
	return s.Duration == 0
}

// Contains returns true if frame lies within [Begin, End).
func (s FrameSpan) Contains(frame uint64) bool {
	return frame >= s.Begin && frame < s.End()
}

// ContainsExclusive returns true if frame lies strictly inside the span,
// i.e. Begin < frame < End. This is the valid range for a cut.
func (s FrameSpan) ContainsExclusive(frame uint64) bool {
	return frame > s.Begin && frame < s.End()
}

// Intersects returns true if the two spans share at least one frame.
func (s FrameSpan) Intersects(other FrameSpan) bool {
	return s.Begin < other.End() && other.Begin < s.End()
}

// Intersect returns the overlapping part of two spans.
// The result is empty if they do not intersect.
func (s FrameSpan) Intersect(other FrameSpan) FrameSpan {
	if !s.Intersects(other) {
		return FrameSpan{Begin: max(s.Begin, other.Begin)}
	}
	return FromRange(max(s.Begin, other.Begin), min(s.End(), other.End()))
}

// Union returns the smallest span covering both spans.
func (s FrameSpan) Union(other FrameSpan) FrameSpan {
	return FromRange(min(s.Begin, other.Begin), max(s.End(), other.End()))
}

// Offset moves the span by delta frames. The begin frame is clamped at 0.
func (s FrameSpan) Offset(delta int64) FrameSpan {
	return FrameSpan{Begin: AddClamped(s.Begin, delta), Duration: s.Duration}
}

// WithBegin returns a copy with a different begin frame and the same duration.
func (s FrameSpan) WithBegin(begin uint64) FrameSpan {
	return FrameSpan{Begin: begin, Duration: s.Duration}
}

// WithDuration returns a copy with a different duration.
func (s FrameSpan) WithDuration(duration uint64) FrameSpan {
	return FrameSpan{Begin: s.Begin, Duration: duration}
}

// WithEnd returns a copy whose end frame is end. The begin frame is kept;
// an end before begin yields an empty span.
func (s FrameSpan) WithEnd(end uint64) FrameSpan {
	return FromRange(s.Begin, end)
}

// String implements fmt.Stringer.
func (s FrameSpan) String() string {
	return fmt.Sprintf("[%d, %d)", s.Begin, s.End())
}

// AddClamped adds a signed delta to an unsigned frame, clamping the result
// to [0, MaxUint64].
func AddClamped(frame uint64, delta int64) uint64 {
	if delta < 0 {
		d := uint64(-(delta + 1)) + 1
		if d > frame {
			return 0
		}
		return frame - d
	}
	d := uint64(delta)
	if frame > math.MaxUint64-d {
		return math.MaxUint64
	}
	return frame + d
}
