package timeline

import (
	"slices"

	"github.com/dshills/splice/internal/engine/resource"
)

const (
	// GrowPadding is added past a clip end that outgrows MaxDuration.
	GrowPadding = 300

	// DefaultMaxDuration is the length of a new timeline in frames.
	DefaultMaxDuration = 1800
)

// Timeline is an ordered list of tracks with a play head.
type Timeline struct {
	tracks      []*Track
	maxDuration uint64
	playHead    uint64
	manager     *resource.Manager
}

// New creates an empty timeline with DefaultMaxDuration.
func New() *Timeline {
	return &Timeline{maxDuration: DefaultMaxDuration}
}

// MaxDuration returns the timeline length in frames.
func (tl *Timeline) MaxDuration() uint64 {
	return tl.maxDuration
}

// SetMaxDuration sets the timeline length. It never cuts off clips: the
// length is at least LargestFrameInUse.
func (tl *Timeline) SetMaxDuration(d uint64) {
	tl.maxDuration = max(d, tl.LargestFrameInUse())
	tl.playHead = min(tl.playHead, tl.maxDuration)
}

// PlayHead returns the current frame.
func (tl *Timeline) PlayHead() uint64 {
	return tl.playHead
}

// SetPlayHead moves the play head, clamped to MaxDuration.
func (tl *Timeline) SetPlayHead(f uint64) {
	tl.playHead = min(f, tl.maxDuration)
}

func (tl *Timeline) ensureFits(end uint64) {
	if end > tl.maxDuration {
		tl.maxDuration = end + GrowPadding
	}
}

// Manager returns the manager clip resources resolve against.
func (tl *Timeline) Manager() *resource.Manager {
	return tl.manager
}

// SetManager binds every clip's resource path to m.
func (tl *Timeline) SetManager(m *resource.Manager) {
	if tl.manager == m {
		return
	}
	tl.manager = m
	for _, t := range tl.tracks {
		t.setManager(m)
	}
}

// Len returns the number of tracks.
func (tl *Timeline) Len() int {
	return len(tl.tracks)
}

// Track returns the track at index i.
func (tl *Timeline) Track(i int) *Track {
	return tl.tracks[i]
}

// Tracks returns a copy of the track list.
func (tl *Timeline) Tracks() []*Track {
	return slices.Clone(tl.tracks)
}

// IndexOf returns the index of t, or -1.
func (tl *Timeline) IndexOf(t *Track) int {
	return slices.Index(tl.tracks, t)
}

// AddTrack appends t.
func (tl *Timeline) AddTrack(t *Track) error {
	return tl.InsertTrack(len(tl.tracks), t)
}

// InsertTrack places t at index i and binds its clips to the manager.
func (tl *Timeline) InsertTrack(i int, t *Track) error {
	if t.timeline != nil {
		return ErrTrackHasTimeline
	}
	if i < 0 || i > len(tl.tracks) {
		return ErrIndexOutOfRange
	}
	tl.tracks = slices.Insert(tl.tracks, i, t)
	t.timeline = tl
	t.setManager(tl.manager)
	tl.ensureFits(t.LargestFrameInUse())
	return nil
}

// RemoveTrack detaches t and unbinds its clips.
func (tl *Timeline) RemoveTrack(t *Track) error {
	i := tl.IndexOf(t)
	if i < 0 {
		return ErrTrackNotFound
	}
	tl.RemoveTrackAt(i)
	return nil
}

// RemoveTrackAt detaches and returns the track at index i.
func (tl *Timeline) RemoveTrackAt(i int) *Track {
	t := tl.tracks[i]
	if t.timeline != tl {
		panic(&TrackCorruptionError{Op: "RemoveTrackAt", Reason: "track timeline does not match"})
	}
	tl.tracks = slices.Delete(tl.tracks, i, i+1)
	t.setManager(nil)
	t.timeline = nil
	return t
}

// MoveTrack moves the track at src to dst, an index into the list after
// removal.
func (tl *Timeline) MoveTrack(src, dst int) error {
	if src < 0 || src >= len(tl.tracks) || dst < 0 || dst >= len(tl.tracks) {
		return ErrIndexOutOfRange
	}
	t := tl.tracks[src]
	tl.tracks = slices.Delete(tl.tracks, src, src+1)
	tl.tracks = slices.Insert(tl.tracks, dst, t)
	return nil
}

// LargestFrameInUse returns the largest clip end over all tracks.
func (tl *Timeline) LargestFrameInUse() uint64 {
	var end uint64
	for _, t := range tl.tracks {
		end = max(end, t.LargestFrameInUse())
	}
	return end
}

// Clips returns every clip, track by track.
func (tl *Timeline) Clips() []*Clip {
	var out []*Clip
	for _, t := range tl.tracks {
		out = append(out, t.clips...)
	}
	return out
}

// ClipsAt returns the clips covering frame f on every track.
func (tl *Timeline) ClipsAt(f uint64) []*Clip {
	var out []*Clip
	for _, t := range tl.tracks {
		out = append(out, t.ClipsAt(f)...)
	}
	return out
}

// Clone returns a detached deep copy with unbound clip paths.
func (tl *Timeline) Clone() *Timeline {
	c := &Timeline{maxDuration: tl.maxDuration, playHead: tl.playHead}
	for _, t := range tl.tracks {
		tc := t.Clone()
		tc.timeline = c
		c.tracks = append(c.tracks, tc)
	}
	return c
}

// Dispose releases every clip's resource subscription.
func (tl *Timeline) Dispose() {
	for _, c := range tl.Clips() {
		c.Dispose()
	}
	tl.manager = nil
}
