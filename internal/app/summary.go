package app

import (
	"github.com/dshills/splice/internal/engine/resource"
	"github.com/dshills/splice/internal/engine/timeline"
	"github.com/dshills/splice/internal/project"
)

// ProjectSummary is a detached, read-only description of a project. It
// holds no pointers into the project and may be used on any goroutine.
type ProjectSummary struct {
	ID       string          `json:"id" yaml:"id"`
	File     string          `json:"file,omitempty" yaml:"file,omitempty"`
	Modified bool            `json:"modified" yaml:"modified"`
	Settings SettingsSummary `json:"settings" yaml:"settings"`

	Duration uint64 `json:"duration" yaml:"duration"`
	Undo     int    `json:"undo" yaml:"undo"`
	Redo     int    `json:"redo" yaml:"redo"`

	Resources []ResourceSummary `json:"resources,omitempty" yaml:"resources,omitempty"`
	Tracks    []TrackSummary    `json:"tracks,omitempty" yaml:"tracks,omitempty"`
}

// SettingsSummary mirrors project.Settings.
type SettingsSummary struct {
	Width     int32   `json:"width" yaml:"width"`
	Height    int32   `json:"height" yaml:"height"`
	FrameRate float64 `json:"frameRate" yaml:"frameRate"`
}

// ResourceSummary is one node of the resource tree. Folders have Kind
// "folder" and no ID.
type ResourceSummary struct {
	Name     string            `json:"name" yaml:"name"`
	Kind     string            `json:"kind" yaml:"kind"`
	ID       uint64            `json:"id,omitempty" yaml:"id,omitempty"`
	Online   bool              `json:"online,omitempty" yaml:"online,omitempty"`
	Path     string            `json:"path,omitempty" yaml:"path,omitempty"`
	Children []ResourceSummary `json:"children,omitempty" yaml:"children,omitempty"`
}

// TrackSummary is one track and its clips in frame order.
type TrackSummary struct {
	Name  string        `json:"name" yaml:"name"`
	Kind  string        `json:"kind" yaml:"kind"`
	Clips []ClipSummary `json:"clips,omitempty" yaml:"clips,omitempty"`
}

// ClipSummary is one clip.
type ClipSummary struct {
	Name     string `json:"name" yaml:"name"`
	Kind     string `json:"kind" yaml:"kind"`
	Begin    uint64 `json:"begin" yaml:"begin"`
	Duration uint64 `json:"duration" yaml:"duration"`
	Resource uint64 `json:"resource" yaml:"resource"`
	Offset   int64  `json:"offset,omitempty" yaml:"offset,omitempty"`
}

// ResourceCount returns the number of items in the summary.
func (s ProjectSummary) ResourceCount() (total, offline int) {
	var walk func([]ResourceSummary)
	walk = func(nodes []ResourceSummary) {
		for _, n := range nodes {
			if n.Kind == "folder" {
				walk(n.Children)
				continue
			}
			total++
			if !n.Online {
				offline++
			}
		}
	}
	walk(s.Resources)
	return total, offline
}

// ClipCount returns the number of clips on all tracks.
func (s ProjectSummary) ClipCount() int {
	n := 0
	for _, t := range s.Tracks {
		n += len(t.Clips)
	}
	return n
}

// Summarize describes p. It must run on the goroutine that owns p.
func Summarize(p *project.Project) ProjectSummary {
	st := p.Settings()
	h := p.History()
	tl := p.Timeline()

	s := ProjectSummary{
		ID:       p.ID().String(),
		File:     p.FilePath(),
		Modified: p.IsModified(),
		Settings: SettingsSummary{Width: st.Width, Height: st.Height, FrameRate: st.FrameRate},
		Duration: tl.LargestFrameInUse(),
		Undo:     h.UndoCount(),
		Redo:     h.RedoCount(),
	}
	for _, n := range p.Manager().Root().Children() {
		s.Resources = append(s.Resources, summarizeNode(n))
	}
	for _, t := range tl.Tracks() {
		s.Tracks = append(s.Tracks, summarizeTrack(t))
	}
	return s
}

func summarizeNode(n resource.Node) ResourceSummary {
	switch n := n.(type) {
	case *resource.Folder:
		rs := ResourceSummary{Name: n.DisplayName(), Kind: "folder"}
		for _, c := range n.Children() {
			rs.Children = append(rs.Children, summarizeNode(c))
		}
		return rs
	case *resource.Item:
		rs := ResourceSummary{
			Name:   n.DisplayName(),
			Kind:   n.FactoryID(),
			ID:     n.ID(),
			Online: n.IsOnline(),
		}
		if fb, ok := n.Content().(resource.FileBacked); ok {
			rs.Path = fb.Path()
		}
		return rs
	default:
		return ResourceSummary{Name: n.DisplayName()}
	}
}

func summarizeTrack(t *timeline.Track) TrackSummary {
	ts := TrackSummary{Name: t.DisplayName(), Kind: t.Kind().String()}
	for _, c := range t.ClipsInOrder() {
		ts.Clips = append(ts.Clips, ClipSummary{
			Name:     c.DisplayName(),
			Kind:     c.Kind().String(),
			Begin:    c.Begin(),
			Duration: c.Duration(),
			Resource: c.ResourceID(),
			Offset:   c.MediaOffset(),
		})
	}
	return ts
}
