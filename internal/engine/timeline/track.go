package timeline

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/dshills/splice/internal/engine/frame"
	"github.com/dshills/splice/internal/engine/resource"
)

// TrackKind selects which clip kinds a track accepts.
type TrackKind int

const (
	// TrackVideo accepts video and composition clips.
	TrackVideo TrackKind = iota

	// TrackAudio accepts audio clips.
	TrackAudio
)

// String returns the lower-case kind name.
func (k TrackKind) String() string {
	switch k {
	case TrackVideo:
		return "video"
	case TrackAudio:
		return "audio"
	default:
		return fmt.Sprintf("TrackKind(%d)", int(k))
	}
}

// Track display defaults.
const (
	DefaultTrackHeight = 60.0
	DefaultVideoColor  = "#3a6ea5"
	DefaultAudioColor  = "#3f8f5a"
)

// Track is an ordered list of clips of compatible kinds. Clips may
// overlap; list order is insertion order, not time order.
type Track struct {
	kind     TrackKind
	name     string
	height   float64
	color    string
	clips    []*Clip
	timeline *Timeline
}

// NewTrack creates an empty, detached track.
func NewTrack(kind TrackKind, name string) *Track {
	color := DefaultVideoColor
	if kind == TrackAudio {
		color = DefaultAudioColor
	}
	return &Track{
		kind:   kind,
		name:   name,
		height: DefaultTrackHeight,
		color:  color,
	}
}

// Kind returns the track kind.
func (t *Track) Kind() TrackKind { return t.kind }

// DisplayName returns the track's name.
func (t *Track) DisplayName() string { return t.name }

// SetDisplayName renames the track.
func (t *Track) SetDisplayName(name string) { t.name = name }

// Height returns the display height.
func (t *Track) Height() float64 { return t.height }

// SetHeight sets the display height.
func (t *Track) SetHeight(h float64) { t.height = h }

// Color returns the display color as "#rrggbb".
func (t *Track) Color() string { return t.color }

// SetColor sets the display color.
func (t *Track) SetColor(c string) { t.color = c }

// Timeline returns the owning timeline, or nil when detached.
func (t *Track) Timeline() *Timeline {
	return t.timeline
}

// Accepts returns true if the track can hold clips of kind k.
func (t *Track) Accepts(k ClipKind) bool {
	switch t.kind {
	case TrackVideo:
		return k == KindVideo || k == KindComposition
	case TrackAudio:
		return k == KindAudio
	default:
		return false
	}
}

// Len returns the number of clips.
func (t *Track) Len() int {
	return len(t.clips)
}

// At returns the clip at index i.
func (t *Track) At(i int) *Clip {
	return t.clips[i]
}

// Clips returns a copy of the clip list.
func (t *Track) Clips() []*Clip {
	return slices.Clone(t.clips)
}

// ClipsInOrder returns the clips sorted by begin frame.
func (t *Track) ClipsInOrder() []*Clip {
	out := slices.Clone(t.clips)
	slices.SortStableFunc(out, func(a, b *Clip) int {
		return cmp.Compare(a.span.Begin, b.span.Begin)
	})
	return out
}

// ClipsAt returns the clips covering frame f.
func (t *Track) ClipsAt(f uint64) []*Clip {
	var out []*Clip
	for _, c := range t.clips {
		if c.span.Contains(f) {
			out = append(out, c)
		}
	}
	return out
}

// IndexOf returns the index of c, or -1.
func (t *Track) IndexOf(c *Clip) int {
	return slices.Index(t.clips, c)
}

// AddClip appends c. See InsertClip.
func (t *Track) AddClip(c *Clip) error {
	return t.InsertClip(len(t.clips), c)
}

// InsertClip places c at index i and binds its resource path to the
// timeline's manager. A clip kind the track does not accept is rejected
// with *UnacceptableClipTypeError and the track is left unchanged.
func (t *Track) InsertClip(i int, c *Clip) error {
	if !t.Accepts(c.kind) {
		return &UnacceptableClipTypeError{Track: t.kind, Clip: c.kind}
	}
	if c.track != nil {
		return ErrClipHasTrack
	}
	if i < 0 || i > len(t.clips) {
		return ErrIndexOutOfRange
	}
	t.clips = slices.Insert(t.clips, i, c)
	c.track = t
	c.setManager(t.manager())
	c.growTimeline()
	return nil
}

// RemoveAt detaches and returns the clip at index i. It panics with
// *TrackCorruptionError if the clip's track link is not t.
func (t *Track) RemoveAt(i int) *Clip {
	c := t.clips[i]
	if c.track != t {
		panic(&TrackCorruptionError{Op: "RemoveAt", Reason: "clip track does not match"})
	}
	t.clips = slices.Delete(t.clips, i, i+1)
	c.track = nil
	c.setManager(nil)
	return c
}

// RemoveClip detaches c if it is on the track.
func (t *Track) RemoveClip(c *Clip) bool {
	i := t.IndexOf(c)
	if i < 0 {
		return false
	}
	t.RemoveAt(i)
	return true
}

// TryGetSpanUntilClip returns the free span starting at f, at most want
// frames long and ending at or before the next clip. It returns false if
// a clip covers f or no frame is free.
func (t *Track) TryGetSpanUntilClip(f, want uint64) (frame.FrameSpan, bool) {
	limit := frame.AddClamped(f, int64(min(want, 1<<62)))
	for _, c := range t.clips {
		if c.span.Contains(f) {
			return frame.FrameSpan{}, false
		}
		if c.span.Begin > f {
			limit = min(limit, c.span.Begin)
		}
	}
	if limit <= f {
		return frame.FrameSpan{}, false
	}
	return frame.FromRange(f, limit), true
}

// LargestFrameInUse returns the largest clip end on the track.
func (t *Track) LargestFrameInUse() uint64 {
	var end uint64
	for _, c := range t.clips {
		end = max(end, c.End())
	}
	return end
}

// CloneConfig returns an empty detached track with the same settings.
func (t *Track) CloneConfig() *Track {
	return &Track{
		kind:   t.kind,
		name:   t.name,
		height: t.height,
		color:  t.color,
	}
}

// Clone returns a detached copy of the track and its clips.
func (t *Track) Clone() *Track {
	c := t.CloneConfig()
	for _, clip := range t.clips {
		cc := clip.Clone()
		cc.track = c
		c.clips = append(c.clips, cc)
	}
	return c
}

func (t *Track) manager() *resource.Manager {
	if t.timeline == nil {
		return nil
	}
	return t.timeline.manager
}

func (t *Track) setManager(m *resource.Manager) {
	for _, c := range t.clips {
		c.setManager(m)
	}
}
