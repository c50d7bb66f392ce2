package timeline

import (
	"fmt"

	"github.com/dshills/splice/internal/engine/frame"
	"github.com/dshills/splice/internal/engine/resource"
)

// ClipKind is the closed set of clip variants.
type ClipKind int

const (
	// KindVideo plays a visual resource: an image, a color or a media file.
	KindVideo ClipKind = iota

	// KindAudio plays the audio of a media file.
	KindAudio

	// KindComposition plays the nested timeline of a composition resource.
	KindComposition
)

// String returns the lower-case kind name.
func (k ClipKind) String() string {
	switch k {
	case KindVideo:
		return "video"
	case KindAudio:
		return "audio"
	case KindComposition:
		return "composition"
	default:
		return fmt.Sprintf("ClipKind(%d)", int(k))
	}
}

// Clip is a placement of a resource on a track over a span of frames.
type Clip struct {
	kind ClipKind
	name string
	span frame.FrameSpan

	// mediaOffset is the source frame shown at span.Begin.
	mediaOffset int64

	track *Track
	ref   resource.Reference

	dragExcess int64
}

func newRef(kind ClipKind, id uint64) resource.Reference {
	switch kind {
	case KindAudio:
		return resource.NewPath[*resource.Media](id)
	case KindComposition:
		return resource.NewPath[*Composition](id)
	default:
		return resource.NewPath[resource.Visual](id)
	}
}

// NewClip creates a detached clip of kind referencing resourceID.
// A zero-length span is widened to one frame.
func NewClip(kind ClipKind, name string, resourceID uint64, span frame.FrameSpan) *Clip {
	span.Duration = max(span.Duration, 1)
	return &Clip{
		kind: kind,
		name: name,
		span: span,
		ref:  newRef(kind, resourceID),
	}
}

// NewVideoClip creates a clip showing a color, image or media resource.
func NewVideoClip(name string, resourceID uint64, span frame.FrameSpan) *Clip {
	return NewClip(KindVideo, name, resourceID, span)
}

// NewAudioClip creates a clip playing a media resource.
func NewAudioClip(name string, resourceID uint64, span frame.FrameSpan) *Clip {
	return NewClip(KindAudio, name, resourceID, span)
}

// NewCompositionClip creates a clip playing a composition resource.
func NewCompositionClip(name string, resourceID uint64, span frame.FrameSpan) *Clip {
	return NewClip(KindComposition, name, resourceID, span)
}

// Kind returns the clip variant.
func (c *Clip) Kind() ClipKind { return c.kind }

// DisplayName returns the clip's name.
func (c *Clip) DisplayName() string { return c.name }

// SetDisplayName renames the clip.
func (c *Clip) SetDisplayName(name string) { c.name = name }

// Span returns the frames the clip occupies on its track.
func (c *Clip) Span() frame.FrameSpan { return c.span }

// Begin returns the first frame of the clip.
func (c *Clip) Begin() uint64 { return c.span.Begin }

// Duration returns the clip length in frames.
func (c *Clip) Duration() uint64 { return c.span.Duration }

// End returns the frame just past the clip.
func (c *Clip) End() uint64 { return c.span.End() }

// MediaOffset returns the resource frame shown at Begin.
func (c *Clip) MediaOffset() int64 { return c.mediaOffset }

// SetMediaOffset sets the resource frame shown at Begin.
func (c *Clip) SetMediaOffset(off int64) { c.mediaOffset = off }

// Track returns the owning track, or nil when detached.
func (c *Clip) Track() *Track {
	return c.track
}

// Timeline returns the timeline of the owning track, or nil.
func (c *Clip) Timeline() *Timeline {
	if c.track == nil {
		return nil
	}
	return c.track.timeline
}

// SetSpan moves and resizes the clip. The duration is at least one frame.
func (c *Clip) SetSpan(span frame.FrameSpan) {
	span.Duration = max(span.Duration, 1)
	c.span = span
	c.growTimeline()
}

// Resource returns the clip's resource reference.
func (c *Clip) Resource() resource.Reference {
	return c.ref
}

// ResourceID returns the referenced resource ID.
func (c *Clip) ResourceID() uint64 {
	return c.ref.ResourceID()
}

// SetResourceID points the clip at another resource.
func (c *Clip) SetResourceID(id uint64) error {
	return c.ref.SetResourceID(id)
}

// VisualPath returns the path of a video clip, or nil.
func (c *Clip) VisualPath() *resource.Path[resource.Visual] {
	p, _ := c.ref.(*resource.Path[resource.Visual])
	return p
}

// MediaPath returns the path of an audio clip, or nil.
func (c *Clip) MediaPath() *resource.Path[*resource.Media] {
	p, _ := c.ref.(*resource.Path[*resource.Media])
	return p
}

// CompositionPath returns the path of a composition clip, or nil.
func (c *Clip) CompositionPath() *resource.Path[*Composition] {
	p, _ := c.ref.(*resource.Path[*Composition])
	return p
}

// SourceFrame maps a timeline frame inside the clip to a frame of the
// underlying resource.
func (c *Clip) SourceFrame(f uint64) int64 {
	return c.mediaOffset + int64(f) - int64(c.span.Begin)
}

// Clone returns a detached copy referencing the same resource ID.
func (c *Clip) Clone() *Clip {
	return &Clip{
		kind:        c.kind,
		name:        c.name,
		span:        c.span,
		mediaOffset: c.mediaOffset,
		ref:         newRef(c.kind, c.ref.ResourceID()),
	}
}

// Dispose releases the clip's resource subscription. The clip must not be
// used afterwards.
func (c *Clip) Dispose() {
	c.ref.Dispose()
}

func (c *Clip) setManager(m *resource.Manager) {
	// A clip path is only swapped from here, never re-entrantly.
	_ = c.ref.SetManager(m)
}

func (c *Clip) growTimeline() {
	if tl := c.Timeline(); tl != nil {
		tl.ensureFits(c.End())
	}
}
