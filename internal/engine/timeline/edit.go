package timeline

import (
	"github.com/dshills/splice/internal/engine/frame"
)

// TrimLeft moves the clip's left edge by offset frames, keeping its right
// edge fixed. The edge stays at or after frame 0 and at least one frame
// before the right edge. The media offset follows the applied delta so the
// same source frame stays under the right edge. TrimLeft returns the
// applied delta.
func (c *Clip) TrimLeft(offset int64) int64 {
	end := c.End()
	begin := frame.AddClamped(c.span.Begin, offset)
	begin = min(begin, end-1)

	applied := int64(begin) - int64(c.span.Begin)
	c.span = frame.FromRange(begin, end)
	c.mediaOffset += applied
	return applied
}

// TrimRight moves the clip's right edge by offset frames. The clip keeps
// at least one frame. Growing past the timeline's MaxDuration grows the
// timeline.
func (c *Clip) TrimRight(offset int64) int64 {
	oldEnd := c.End()
	end := max(frame.AddClamped(oldEnd, offset), c.span.Begin+1)
	c.span = frame.FromRange(c.span.Begin, end)
	c.growTimeline()
	return int64(end) - int64(oldEnd)
}

// BeginDrag starts a whole-clip drag.
func (c *Clip) BeginDrag() {
	c.dragExcess = 0
}

// DragBy moves the clip by offset frames. Movement past frame 0 is
// remembered so dragging back restores the exact position.
func (c *Clip) DragBy(offset int64) {
	pos := int64(c.span.Begin) + c.dragExcess + offset
	if pos < 0 {
		c.dragExcess = pos
		pos = 0
	} else {
		c.dragExcess = 0
	}
	c.span.Begin = uint64(pos)
	c.growTimeline()
}

// EndDrag finishes a drag and forgets any excess.
func (c *Clip) EndDrag() {
	c.dragExcess = 0
}

// CutAt splits the clip at f. The original keeps [begin, f) and a new
// clip covering [f, end) is inserted after it on the same track. CutAt
// does nothing unless begin < f < end.
func (c *Clip) CutAt(f uint64) (*Clip, bool) {
	if !c.span.ContainsExclusive(f) {
		return nil, false
	}
	right := c.Clone()
	right.span = frame.FromRange(f, c.End())
	right.mediaOffset = c.mediaOffset + int64(f-c.span.Begin)
	c.span.Duration = f - c.span.Begin

	if t := c.track; t != nil {
		if err := t.InsertClip(t.IndexOf(c)+1, right); err != nil {
			// Same kind as the original, so the track accepts it.
			panic(err)
		}
	}
	return right, true
}

// Duplicate places a copy of the clip in the free space right after it.
// The copy is shortened to fit before the next clip; with no free space
// it returns ErrNoRoom.
func (c *Clip) Duplicate() (*Clip, error) {
	t := c.track
	if t == nil {
		return nil, ErrClipNotOnTrack
	}
	span, ok := t.TryGetSpanUntilClip(c.End(), c.Duration())
	if !ok {
		return nil, ErrNoRoom
	}
	dup := c.Clone()
	dup.span = span
	if err := t.InsertClip(t.IndexOf(c)+1, dup); err != nil {
		return nil, err
	}
	dup.growTimeline()
	return dup, nil
}

// MoveToTrack moves the clip to dst, keeping its span. It fails without
// changes if dst does not accept the clip's kind.
func (c *Clip) MoveToTrack(dst *Track) error {
	if c.track == nil {
		return ErrClipNotOnTrack
	}
	if dst == c.track {
		return nil
	}
	if !dst.Accepts(c.kind) {
		return &UnacceptableClipTypeError{Track: dst.kind, Clip: c.kind}
	}
	c.track.RemoveClip(c)
	return dst.AddClip(c)
}
