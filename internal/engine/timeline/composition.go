package timeline

import (
	"github.com/dshills/splice/internal/engine/frame"
	"github.com/dshills/splice/internal/engine/resource"
	"github.com/dshills/splice/internal/rbe"
)

// FactoryComposition is the persisted kind of composition resources.
const FactoryComposition = "ResourceComposition"

const keyTimeline = "Timeline"

// Composition is resource content owning a nested timeline. The nested
// clips resolve against the manager of the item holding the composition.
type Composition struct {
	timeline *Timeline
}

// NewComposition wraps tl. A nil tl gets an empty timeline.
func NewComposition(tl *Timeline) *Composition {
	if tl == nil {
		tl = New()
	}
	return &Composition{timeline: tl}
}

// Timeline returns the nested timeline.
func (c *Composition) Timeline() *Timeline {
	return c.timeline
}

// Duration returns the nested timeline length.
func (c *Composition) Duration() uint64 {
	return c.timeline.maxDuration
}

// FactoryID returns FactoryComposition.
func (c *Composition) FactoryID() string { return FactoryComposition }

// Clone deep-copies the nested timeline. The copy has no manager.
func (c *Composition) Clone() resource.Content {
	return &Composition{timeline: c.timeline.Clone()}
}

// WriteRBE stores the nested timeline under "Timeline".
func (c *Composition) WriteRBE(d *rbe.Dict) error {
	return c.timeline.WriteRBE(d.CreateDict(keyTimeline))
}

// ReadRBE replaces the nested timeline with the persisted one.
func (c *Composition) ReadRBE(d *rbe.Dict) error {
	td, err := d.GetDict(keyTimeline)
	if err != nil {
		return err
	}
	tl, err := ReadTimeline(td)
	if err != nil {
		return err
	}
	c.timeline.Dispose()
	c.timeline = tl
	return nil
}

// OnManagerChanged binds the nested clips to the item's new manager.
func (c *Composition) OnManagerChanged(_ *resource.Item, _, m *resource.Manager) {
	c.timeline.SetManager(m)
}

// RegisterContent adds the composition kind to a resource factory.
func RegisterContent(f *resource.Factory) error {
	return f.Register(FactoryComposition, func() resource.Content {
		return NewComposition(nil)
	})
}

// CreateComposition moves clips from tl into a new composition resource
// registered in folder, and puts a composition clip in their place.
//
// The nested timeline gets an empty copy of every track involved, in
// timeline order, and the clips keep their relative positions with the
// earliest one starting at frame 0. The composition clip spans the
// selection and goes on the first involved video track, or the first
// video track of tl when only audio clips were selected.
func CreateComposition(tl *Timeline, clips []*Clip, m *resource.Manager, folder *resource.Folder, name string) (*Clip, *resource.Item, error) {
	edit, err := ExtractComposition(tl, clips, m, folder, name)
	if err != nil {
		return nil, nil, err
	}
	return edit.Clip, edit.Item, nil
}

// CompositionEdit records a composition creation so it can be reverted
// and reapplied. Reapplying reuses the same clip, resource and ID.
type CompositionEdit struct {
	// Clip is the composition clip placed on the host track.
	Clip *Clip

	// Item is the registered composition resource.
	Item *resource.Item

	tl        *Timeline
	m         *resource.Manager
	folder    *resource.Folder
	index     int
	id        uint64
	host      *Track
	addedHost bool
	minBegin  uint64
	moved     []clipOrigin
	applied   bool
}

type clipOrigin struct {
	clip  *Clip
	track *Track
	inner *Track
	index int
}

// ExtractComposition is CreateComposition returning the full edit.
func ExtractComposition(tl *Timeline, clips []*Clip, m *resource.Manager, folder *resource.Folder, name string) (*CompositionEdit, error) {
	if len(clips) == 0 {
		return nil, ErrEmptySelection
	}
	if folder.Manager() != m {
		return nil, resource.ErrCrossManager
	}

	selected := make(map[*Clip]bool, len(clips))
	minBegin := clips[0].Begin()
	for _, c := range clips {
		if c.Timeline() != tl {
			return nil, ErrClipNotOnTrack
		}
		selected[c] = true
		minBegin = min(minBegin, c.Begin())
	}
	edit := &CompositionEdit{tl: tl, m: m, folder: folder, minBegin: minBegin, host: hostTrack(tl, selected)}

	nested := New()
	for _, t := range tl.tracks {
		var inner *Track
		for i := 0; i < len(t.clips); {
			c := t.clips[i]
			if !selected[c] {
				i++
				continue
			}
			if inner == nil {
				inner = t.CloneConfig()
				inner.timeline = nested
				nested.tracks = append(nested.tracks, inner)
			}
			o := clipOrigin{clip: c, track: t, inner: inner, index: i}
			edit.nest(o)
			edit.moved = append(edit.moved, o)
		}
	}
	nested.maxDuration = nested.LargestFrameInUse()

	item := resource.NewItem(name, NewComposition(nested))
	edit.index = folder.Len()
	id, err := m.AddItem(folder, item)
	if err != nil {
		edit.restoreClips()
		return nil, err
	}
	edit.Item = item
	edit.id = id

	if edit.host == nil {
		edit.host = NewTrack(TrackVideo, "Video")
		edit.addedHost = true
		if err := tl.InsertTrack(0, edit.host); err != nil {
			return nil, err
		}
	}
	edit.Clip = NewCompositionClip(name, id, frame.New(minBegin, nested.maxDuration))
	if err := edit.host.AddClip(edit.Clip); err != nil {
		return nil, err
	}
	edit.applied = true
	return edit, nil
}

// Revert dissolves the composition: the composition clip and resource are
// removed and the nested clips return to their original tracks and
// positions.
func (e *CompositionEdit) Revert() error {
	if !e.applied || e.Clip.Track() != e.host {
		return ErrClipNotOnTrack
	}
	e.host.RemoveClip(e.Clip)
	if e.addedHost {
		if err := e.tl.RemoveTrack(e.host); err != nil {
			return err
		}
	}
	if parent := e.Item.Parent(); parent != nil {
		e.folder, e.index = parent, parent.IndexOf(e.Item)
		parent.DeleteAt(e.index)
	}
	e.restoreClips()
	e.applied = false
	return nil
}

// Reapply redoes a reverted edit. The same clips move back into the same
// nested timeline, the resource is registered again under its old ID and
// the same composition clip returns to the host track.
func (e *CompositionEdit) Reapply() error {
	if e.applied {
		return ErrClipHasTrack
	}
	for _, o := range e.moved {
		if o.clip.track != o.track {
			return ErrClipNotOnTrack
		}
	}
	if e.folder.Manager() != e.m {
		return resource.ErrCrossManager
	}

	for i := range e.moved {
		e.moved[i].index = e.moved[i].track.IndexOf(e.moved[i].clip)
		e.nest(e.moved[i])
	}

	if err := e.folder.Insert(min(e.index, e.folder.Len()), e.Item); err != nil {
		e.restoreClips()
		return err
	}
	if _, err := e.m.RegisterAs(e.Item, e.id); err != nil {
		e.folder.Remove(e.Item)
		e.restoreClips()
		return err
	}

	if e.addedHost {
		if err := e.tl.InsertTrack(0, e.host); err != nil {
			return err
		}
	}
	if err := e.host.AddClip(e.Clip); err != nil {
		return err
	}
	e.applied = true
	return nil
}

// nest moves a selected clip from its track into the nested track.
func (e *CompositionEdit) nest(o clipOrigin) {
	o.track.RemoveAt(o.index)
	o.clip.span.Begin -= e.minBegin
	o.clip.track = o.inner
	o.inner.clips = append(o.inner.clips, o.clip)
}

func (e *CompositionEdit) restoreClips() {
	for i := len(e.moved) - 1; i >= 0; i-- {
		o := e.moved[i]
		if inner := o.clip.track; inner != nil {
			inner.RemoveAt(inner.IndexOf(o.clip))
		}
		o.clip.span.Begin += e.minBegin
		_ = o.track.InsertClip(o.index, o.clip)
	}
}

// hostTrack picks the track for a new composition clip.
func hostTrack(tl *Timeline, selected map[*Clip]bool) *Track {
	var firstVideo *Track
	for _, t := range tl.tracks {
		if t.kind != TrackVideo {
			continue
		}
		if firstVideo == nil {
			firstVideo = t
		}
		for _, c := range t.clips {
			if selected[c] {
				return t
			}
		}
	}
	return firstVideo
}
