package project

import (
	"fmt"

	"github.com/dshills/splice/internal/engine/frame"
	"github.com/dshills/splice/internal/engine/history"
	"github.com/dshills/splice/internal/engine/resource"
	"github.com/dshills/splice/internal/engine/timeline"
)

// AddResource adds item under folder. Redo re-registers the item under
// the ID it got the first time, so clips created in between still
// resolve.
func (p *Project) AddResource(folder *resource.Folder, item *resource.Item) history.Command {
	m := p.manager
	var id uint64
	return history.NewFuncCommand(
		fmt.Sprintf("Add resource %q", item.DisplayName()),
		func() error {
			if id == 0 {
				got, err := m.AddItem(folder, item)
				id = got
				return err
			}
			if err := folder.Add(item); err != nil {
				return err
			}
			if _, err := m.RegisterAs(item, id); err != nil {
				folder.Remove(item)
				return err
			}
			return nil
		},
		func() error {
			if !folder.Remove(item) {
				return ErrNotInTree
			}
			m.Unregister(id)
			return nil
		},
	)
}

type registration struct {
	item *resource.Item
	id   uint64
}

// DeleteResource removes node and its subtree from the tree and the
// index. Undo puts it back with the same IDs; clips referencing it
// resolve again.
func (p *Project) DeleteResource(node resource.Node) history.Command {
	m := p.manager
	var (
		parent *resource.Folder
		index  int
		regs   []registration
	)
	return history.NewFuncCommand(
		fmt.Sprintf("Delete resource %q", node.DisplayName()),
		func() error {
			parent = node.Parent()
			if parent == nil {
				return ErrNotInTree
			}
			index = parent.IndexOf(node)
			regs = regs[:0]
			for _, item := range resource.ItemsOf(node) {
				regs = append(regs, registration{item: item, id: item.ID()})
			}
			parent.DeleteAt(index)
			return nil
		},
		func() error {
			if err := parent.Insert(index, node); err != nil {
				return err
			}
			for _, r := range regs {
				if _, err := m.RegisterAs(r.item, r.id); err != nil {
					return err
				}
			}
			return nil
		},
	)
}

// AddTrack appends track to the root timeline.
func (p *Project) AddTrack(track *timeline.Track) history.Command {
	tl := p.timeline
	return history.NewFuncCommand(
		fmt.Sprintf("Add track %q", track.DisplayName()),
		func() error { return tl.AddTrack(track) },
		func() error { return tl.RemoveTrack(track) },
	)
}

// AddClip places clip on track.
func (p *Project) AddClip(track *timeline.Track, clip *timeline.Clip) history.Command {
	return history.NewFuncCommand(
		fmt.Sprintf("Add clip %q", clip.DisplayName()),
		func() error { return track.AddClip(clip) },
		func() error {
			if !track.RemoveClip(clip) {
				return timeline.ErrClipNotOnTrack
			}
			return nil
		},
	)
}

// RemoveClip takes clip off its track.
func (p *Project) RemoveClip(clip *timeline.Clip) history.Command {
	var (
		track *timeline.Track
		index int
	)
	return history.NewFuncCommand(
		fmt.Sprintf("Remove clip %q", clip.DisplayName()),
		func() error {
			track = clip.Track()
			if track == nil {
				return timeline.ErrClipNotOnTrack
			}
			index = track.IndexOf(clip)
			track.RemoveAt(index)
			return nil
		},
		func() error { return track.InsertClip(index, clip) },
	)
}

// CutClip splits clip at frame f. Redo reinserts the same right half.
func (p *Project) CutClip(clip *timeline.Clip, f uint64) history.Command {
	var (
		right    *timeline.Clip
		original frame.FrameSpan
	)
	return history.NewFuncCommand(
		fmt.Sprintf("Cut clip %q at %d", clip.DisplayName(), f),
		func() error {
			original = clip.Span()
			if right == nil {
				r, ok := clip.CutAt(f)
				if !ok {
					return ErrCutOutside
				}
				right = r
				return nil
			}
			track := clip.Track()
			if track == nil {
				return timeline.ErrClipNotOnTrack
			}
			clip.SetSpan(frame.FromRange(original.Begin, f))
			if err := track.InsertClip(track.IndexOf(clip)+1, right); err != nil {
				clip.SetSpan(original)
				return err
			}
			return nil
		},
		func() error {
			if track := right.Track(); track != nil {
				track.RemoveClip(right)
			}
			clip.SetSpan(original)
			return nil
		},
	)
}

// TrimClip trims the left or right edge of clip by offset frames.
func (p *Project) TrimClip(clip *timeline.Clip, left bool, offset int64) history.Command {
	var (
		span   frame.FrameSpan
		media  int64
		edge   = "right"
		trimFn = clip.TrimRight
	)
	if left {
		edge = "left"
		trimFn = clip.TrimLeft
	}
	return history.NewFuncCommand(
		fmt.Sprintf("Trim %s edge of %q", edge, clip.DisplayName()),
		func() error {
			span, media = clip.Span(), clip.MediaOffset()
			trimFn(offset)
			return nil
		},
		func() error {
			clip.SetSpan(span)
			clip.SetMediaOffset(media)
			return nil
		},
	)
}

// MoveClip shifts clip by delta frames and, when dst is not nil, moves it
// to dst.
func (p *Project) MoveClip(clip *timeline.Clip, dst *timeline.Track, delta int64) history.Command {
	var (
		src   *timeline.Track
		index int
		span  frame.FrameSpan
	)
	return history.NewFuncCommand(
		fmt.Sprintf("Move clip %q", clip.DisplayName()),
		func() error {
			src = clip.Track()
			if src == nil {
				return timeline.ErrClipNotOnTrack
			}
			index = src.IndexOf(clip)
			span = clip.Span()
			if dst != nil && dst != src {
				if err := clip.MoveToTrack(dst); err != nil {
					return err
				}
			}
			clip.SetSpan(span.Offset(delta))
			return nil
		},
		func() error {
			clip.SetSpan(span)
			if cur := clip.Track(); cur != src {
				if cur != nil {
					cur.RemoveClip(clip)
				}
				return src.InsertClip(index, clip)
			}
			return nil
		},
	)
}

// CompositionCommand nests clips into a new composition resource.
// Undo dissolves it; redo creates a new composition.
type CompositionCommand struct {
	*history.FuncCommand
	edit *timeline.CompositionEdit
}

// Clip returns the composition clip placed by Execute, or nil before the
// first Execute. Redo puts the same clip back.
func (c *CompositionCommand) Clip() *timeline.Clip {
	if c.edit == nil {
		return nil
	}
	return c.edit.Clip
}

// Item returns the composition resource created by Execute, or nil
// before the first Execute.
func (c *CompositionCommand) Item() *resource.Item {
	if c.edit == nil {
		return nil
	}
	return c.edit.Item
}

// CreateComposition nests clips into a new composition named name in
// folder. Redo restores the same composition under its original ID.
func (p *Project) CreateComposition(clips []*timeline.Clip, folder *resource.Folder, name string) *CompositionCommand {
	cmd := &CompositionCommand{}
	cmd.FuncCommand = history.NewFuncCommand(
		fmt.Sprintf("Create composition %q", name),
		func() error {
			if cmd.edit != nil {
				return cmd.edit.Reapply()
			}
			e, err := timeline.ExtractComposition(p.timeline, clips, p.manager, folder, name)
			if err != nil {
				return err
			}
			cmd.edit = e
			return nil
		},
		func() error {
			return cmd.edit.Revert()
		},
	)
	return cmd
}
