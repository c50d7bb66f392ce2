package timeline

import (
	"fmt"

	"github.com/dshills/splice/internal/engine/frame"
	"github.com/dshills/splice/internal/rbe"
)

// Persisted factory IDs of clip and track kinds.
const (
	FactoryVideoClip       = "VideoClip"
	FactoryAudioClip       = "AudioClip"
	FactoryCompositionClip = "CompositionClip"
	FactoryVideoTrack      = "VideoTrack"
	FactoryAudioTrack      = "AudioTrack"
)

const (
	keyMaxDuration = "MaxDuration"
	keyPlayHead    = "PlayHead"
	keyTracks      = "Tracks"
	keyClips       = "Clips"
	keyFactoryID   = "FactoryId"
	keyData        = "Data"
	keyDisplayName = "DisplayName"
	keyHeight      = "Height"
	keyColor       = "Color"
	keyBegin       = "Begin"
	keyDuration    = "Duration"
	keyMediaOffset = "MediaOffset"
	keyResource    = "Resource"
)

// FactoryID returns the persisted ID of the clip kind.
func (k ClipKind) FactoryID() string {
	switch k {
	case KindAudio:
		return FactoryAudioClip
	case KindComposition:
		return FactoryCompositionClip
	default:
		return FactoryVideoClip
	}
}

// ClipKindOf maps a persisted factory ID to a clip kind.
func ClipKindOf(id string) (ClipKind, error) {
	switch id {
	case FactoryVideoClip:
		return KindVideo, nil
	case FactoryAudioClip:
		return KindAudio, nil
	case FactoryCompositionClip:
		return KindComposition, nil
	}
	return 0, fmt.Errorf("%w: clip %q", ErrUnknownFactoryID, id)
}

// FactoryID returns the persisted ID of the track kind.
func (k TrackKind) FactoryID() string {
	if k == TrackAudio {
		return FactoryAudioTrack
	}
	return FactoryVideoTrack
}

// TrackKindOf maps a persisted factory ID to a track kind.
func TrackKindOf(id string) (TrackKind, error) {
	switch id {
	case FactoryVideoTrack:
		return TrackVideo, nil
	case FactoryAudioTrack:
		return TrackAudio, nil
	}
	return 0, fmt.Errorf("%w: track %q", ErrUnknownFactoryID, id)
}

// WriteRBE stores the timeline, its tracks and clips into d.
func (tl *Timeline) WriteRBE(d *rbe.Dict) error {
	d.SetULong(keyMaxDuration, tl.maxDuration)
	d.SetULong(keyPlayHead, tl.playHead)
	tracks := d.CreateList(keyTracks)
	for _, t := range tl.tracks {
		entry := tracks.AddDict()
		entry.SetString(keyFactoryID, t.kind.FactoryID())
		t.writeRBE(entry.CreateDict(keyData))
	}
	return nil
}

func (t *Track) writeRBE(d *rbe.Dict) {
	d.SetString(keyDisplayName, t.name)
	d.SetDouble(keyHeight, t.height)
	d.SetString(keyColor, t.color)
	clips := d.CreateList(keyClips)
	for _, c := range t.clips {
		entry := clips.AddDict()
		entry.SetString(keyFactoryID, c.kind.FactoryID())
		c.writeRBE(entry.CreateDict(keyData))
	}
}

func (c *Clip) writeRBE(d *rbe.Dict) {
	d.SetString(keyDisplayName, c.name)
	d.SetULong(keyBegin, c.span.Begin)
	d.SetULong(keyDuration, c.span.Duration)
	d.SetLong(keyMediaOffset, c.mediaOffset)
	c.ref.WriteRBE(d.CreateDict(keyResource))
}

// ReadTimeline decodes a timeline written by WriteRBE. Clip paths are
// unbound until the timeline is given a manager.
func ReadTimeline(d *rbe.Dict) (*Timeline, error) {
	tl := New()
	tl.maxDuration = d.GetULongOr(keyMaxDuration, DefaultMaxDuration)
	if list, ok := d.TryGetList(keyTracks); ok {
		for i := range list.Len() {
			t, err := readEntry(list, i, readTrack)
			if err != nil {
				return nil, fmt.Errorf("track %d: %w", i, err)
			}
			t.timeline = tl
			tl.tracks = append(tl.tracks, t)
		}
	}
	tl.maxDuration = max(tl.maxDuration, tl.LargestFrameInUse())
	tl.playHead = min(d.GetULongOr(keyPlayHead, 0), tl.maxDuration)
	return tl, nil
}

func readEntry[T any](list *rbe.List, i int, read func(fid string, d *rbe.Dict) (T, error)) (T, error) {
	var zero T
	entry, err := list.DictAt(i)
	if err != nil {
		return zero, err
	}
	fid, err := entry.GetString(keyFactoryID)
	if err != nil {
		return zero, err
	}
	data, err := entry.GetDict(keyData)
	if err != nil {
		return zero, err
	}
	return read(fid, data)
}

func readTrack(fid string, d *rbe.Dict) (*Track, error) {
	kind, err := TrackKindOf(fid)
	if err != nil {
		return nil, err
	}
	t := NewTrack(kind, d.GetStringOr(keyDisplayName, ""))
	t.height = d.GetDoubleOr(keyHeight, DefaultTrackHeight)
	t.color = d.GetStringOr(keyColor, t.color)

	list, ok := d.TryGetList(keyClips)
	if !ok {
		return t, nil
	}
	for i := range list.Len() {
		c, err := readEntry(list, i, readClip)
		if err != nil {
			return nil, fmt.Errorf("clip %d: %w", i, err)
		}
		if !t.Accepts(c.kind) {
			return nil, &UnacceptableClipTypeError{Track: t.kind, Clip: c.kind}
		}
		c.track = t
		t.clips = append(t.clips, c)
	}
	return t, nil
}

func readClip(fid string, d *rbe.Dict) (*Clip, error) {
	kind, err := ClipKindOf(fid)
	if err != nil {
		return nil, err
	}
	begin, err := d.GetULong(keyBegin)
	if err != nil {
		return nil, err
	}
	dur, err := d.GetULong(keyDuration)
	if err != nil {
		return nil, err
	}
	c := NewClip(kind, d.GetStringOr(keyDisplayName, ""), 0, frame.New(begin, dur))
	c.mediaOffset = d.GetLongOr(keyMediaOffset, 0)
	if rd, ok := d.TryGetDict(keyResource); ok {
		if err := c.ref.ReadRBE(rd); err != nil {
			return nil, err
		}
	}
	return c, nil
}
