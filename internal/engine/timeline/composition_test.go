package timeline

import (
	"errors"
	"testing"

	"github.com/dshills/splice/internal/engine/frame"
	"github.com/dshills/splice/internal/engine/resource"
	"github.com/dshills/splice/internal/rbe"
)

type fixture struct {
	m     *resource.Manager
	tl    *Timeline
	video *Track
	audio *Track
	color uint64
	sound uint64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{m: resource.NewManager(), tl: New()}
	var err error
	if f.color, err = f.m.AddItem(f.m.Root(), resource.NewItem("red", resource.NewColor(1, 0, 0))); err != nil {
		t.Fatal(err)
	}
	if f.sound, err = f.m.AddItem(f.m.Root(), resource.NewItem("take", resource.NewMedia("take.wav"))); err != nil {
		t.Fatal(err)
	}
	f.tl.SetManager(f.m)
	f.video = NewTrack(TrackVideo, "V1")
	f.audio = NewTrack(TrackAudio, "A1")
	f.tl.AddTrack(f.video)
	f.tl.AddTrack(f.audio)
	return f
}

func TestCreateComposition(t *testing.T) {
	f := newFixture(t)
	keep := NewVideoClip("keep", f.color, frame.New(0, 50))
	v := NewVideoClip("v", f.color, frame.New(100, 40))
	a := NewAudioClip("a", f.sound, frame.New(120, 60))
	f.video.AddClip(keep)
	f.video.AddClip(v)
	f.audio.AddClip(a)

	clip, item, err := CreateComposition(f.tl, []*Clip{v, a}, f.m, f.m.Root(), "comp")
	if err != nil {
		t.Fatalf("CreateComposition() error: %v", err)
	}

	if clip.Kind() != KindComposition || clip.Track() != f.video {
		t.Fatal("composition clip not on the video track")
	}
	if clip.Span() != frame.New(100, 80) {
		t.Errorf("composition clip span = %v, want [100, 180)", clip.Span())
	}
	if f.video.Len() != 2 || f.audio.Len() != 0 {
		t.Errorf("track lengths = %d, %d, want 2, 0", f.video.Len(), f.audio.Len())
	}

	comp, ok := clip.CompositionPath().TryResolve(true)
	if !ok || item.Content() != comp {
		t.Fatal("composition clip does not resolve to the new item")
	}
	nested := comp.Timeline()
	if nested.Len() != 2 || nested.Track(0).Kind() != TrackVideo || nested.Track(1).Kind() != TrackAudio {
		t.Fatal("nested tracks not cloned in order")
	}
	if nested.Track(0).DisplayName() != "V1" {
		t.Errorf("nested track name = %q", nested.Track(0).DisplayName())
	}
	if v.Span() != frame.New(0, 40) || a.Span() != frame.New(20, 60) {
		t.Errorf("nested spans = %v, %v", v.Span(), a.Span())
	}
	if nested.MaxDuration() != 80 {
		t.Errorf("nested MaxDuration() = %d, want 80", nested.MaxDuration())
	}
	if _, ok := a.MediaPath().TryResolve(true); !ok {
		t.Error("nested clip does not resolve against the manager")
	}
}

func TestCreateComposition_AudioOnlyUsesFirstVideoTrack(t *testing.T) {
	f := newFixture(t)
	a := NewAudioClip("a", f.sound, frame.New(10, 10))
	f.audio.AddClip(a)

	clip, _, err := CreateComposition(f.tl, []*Clip{a}, f.m, f.m.Root(), "comp")
	if err != nil {
		t.Fatal(err)
	}
	if clip.Track() != f.video {
		t.Error("composition clip not on the first video track")
	}
}

func TestCompositionEdit_Revert(t *testing.T) {
	f := newFixture(t)
	keep := NewVideoClip("keep", f.color, frame.New(0, 50))
	v := NewVideoClip("v", f.color, frame.New(100, 40))
	a := NewAudioClip("a", f.sound, frame.New(120, 60))
	f.video.AddClip(keep)
	f.video.AddClip(v)
	f.audio.AddClip(a)
	itemsBefore := f.m.Len()

	edit, err := ExtractComposition(f.tl, []*Clip{v, a}, f.m, f.m.Root(), "comp")
	if err != nil {
		t.Fatal(err)
	}
	if err := edit.Revert(); err != nil {
		t.Fatalf("Revert() error: %v", err)
	}

	if f.m.Len() != itemsBefore || edit.Item.IsRegistered() {
		t.Error("composition resource still registered")
	}
	if f.video.Len() != 2 || f.video.At(1) != v || f.audio.Len() != 1 || f.audio.At(0) != a {
		t.Fatal("clips not restored to their tracks")
	}
	if v.Span() != frame.New(100, 40) || a.Span() != frame.New(120, 60) {
		t.Errorf("restored spans = %v, %v", v.Span(), a.Span())
	}
	if _, ok := a.MediaPath().TryResolve(true); !ok {
		t.Error("restored clip does not resolve")
	}
}

func TestCompositionEdit_RevertRemovesAddedTrack(t *testing.T) {
	m := resource.NewManager()
	id, _ := m.AddItem(m.Root(), resource.NewItem("take", resource.NewMedia("take.wav")))
	tl := New()
	tl.SetManager(m)
	audio := NewTrack(TrackAudio, "A1")
	tl.AddTrack(audio)
	a := NewAudioClip("a", id, frame.New(5, 10))
	audio.AddClip(a)

	edit, err := ExtractComposition(tl, []*Clip{a}, m, m.Root(), "comp")
	if err != nil {
		t.Fatal(err)
	}
	if tl.Len() != 2 || tl.Track(0).Kind() != TrackVideo {
		t.Fatal("expected a new video track at index 0")
	}
	if err := edit.Revert(); err != nil {
		t.Fatal(err)
	}
	if tl.Len() != 1 || tl.Track(0) != audio || audio.At(0) != a {
		t.Error("revert did not restore the original layout")
	}
}

func TestCompositionEdit_Reapply(t *testing.T) {
	m := resource.NewManager()
	id, _ := m.AddItem(m.Root(), resource.NewItem("take", resource.NewMedia("take.wav")))
	tl := New()
	tl.SetManager(m)
	audio := NewTrack(TrackAudio, "A1")
	tl.AddTrack(audio)
	a := NewAudioClip("a", id, frame.New(5, 10))
	audio.AddClip(a)

	edit, err := ExtractComposition(tl, []*Clip{a}, m, m.Root(), "comp")
	if err != nil {
		t.Fatal(err)
	}
	compID := edit.Item.ID()
	host := edit.Clip.Track()

	if err := edit.Reapply(); err == nil {
		t.Error("Reapply() of an applied edit should fail")
	}
	if err := edit.Revert(); err != nil {
		t.Fatal(err)
	}
	if err := edit.Reapply(); err != nil {
		t.Fatalf("Reapply() error: %v", err)
	}

	if edit.Item.ID() != compID || m.Root().IndexOf(edit.Item) != 1 {
		t.Errorf("item id = %d index = %d, want %d at 1", edit.Item.ID(), m.Root().IndexOf(edit.Item), compID)
	}
	if tl.Len() != 2 || tl.Track(0) != host || host.At(0) != edit.Clip {
		t.Fatal("composition clip not back on its host track")
	}
	if audio.Len() != 0 || a.Begin() != 0 {
		t.Errorf("clip not nested again: audio len %d begin %d", audio.Len(), a.Begin())
	}
	if _, ok := edit.Clip.CompositionPath().TryResolve(true); !ok {
		t.Error("composition clip does not resolve")
	}
	if _, ok := a.MediaPath().TryResolve(true); !ok {
		t.Error("nested clip does not resolve")
	}

	if err := edit.Revert(); err != nil {
		t.Fatal(err)
	}
	if tl.Len() != 1 || audio.At(0) != a || a.Begin() != 5 {
		t.Error("second revert did not restore the layout")
	}
}

func TestCreateComposition_Errors(t *testing.T) {
	f := newFixture(t)
	if _, _, err := CreateComposition(f.tl, nil, f.m, f.m.Root(), "x"); !errors.Is(err, ErrEmptySelection) {
		t.Errorf("empty selection error = %v", err)
	}
	loose := NewVideoClip("loose", f.color, frame.New(0, 5))
	if _, _, err := CreateComposition(f.tl, []*Clip{loose}, f.m, f.m.Root(), "x"); !errors.Is(err, ErrClipNotOnTrack) {
		t.Errorf("detached clip error = %v", err)
	}
}

func TestTimeline_RBERoundTrip(t *testing.T) {
	f := newFixture(t)
	v := NewVideoClip("v", f.color, frame.New(10, 40))
	v.SetMediaOffset(-5)
	f.video.AddClip(v)
	a := NewAudioClip("a", f.sound, frame.New(0, 90))
	f.audio.AddClip(a)
	f.audio.SetHeight(42)
	f.tl.SetPlayHead(33)
	if _, _, err := CreateComposition(f.tl, []*Clip{v}, f.m, f.m.Root(), "comp"); err != nil {
		t.Fatal(err)
	}

	rd := rbe.NewDict()
	if err := f.m.WriteRBE(rd); err != nil {
		t.Fatal(err)
	}
	td := rbe.NewDict()
	if err := f.tl.WriteRBE(td); err != nil {
		t.Fatal(err)
	}

	factory := resource.DefaultFactory()
	if err := RegisterContent(factory); err != nil {
		t.Fatal(err)
	}
	m := resource.NewManager()
	if err := m.ReadRBE(rd, factory); err != nil {
		t.Fatalf("manager ReadRBE() error: %v", err)
	}
	tl, err := ReadTimeline(td)
	if err != nil {
		t.Fatalf("ReadTimeline() error: %v", err)
	}
	tl.SetManager(m)

	if tl.Len() != 2 || tl.PlayHead() != 33 || tl.MaxDuration() != f.tl.MaxDuration() {
		t.Fatalf("timeline = %d tracks, head %d, max %d", tl.Len(), tl.PlayHead(), tl.MaxDuration())
	}
	if tl.Track(1).Height() != 42 {
		t.Errorf("Height() = %v, want 42", tl.Track(1).Height())
	}
	cc := tl.Track(0).At(0)
	comp, ok := cc.CompositionPath().TryResolve(false)
	if !ok {
		t.Fatal("composition clip did not resolve after load")
	}
	inner := comp.Timeline().Track(0).At(0)
	if inner.Span() != frame.New(0, 40) || inner.MediaOffset() != -5 {
		t.Errorf("nested clip = %v offset %d", inner.Span(), inner.MediaOffset())
	}
	if _, ok := inner.VisualPath().TryResolve(true); !ok {
		t.Error("nested clip did not resolve after load")
	}
	if _, ok := tl.Track(1).At(0).MediaPath().TryResolve(true); !ok {
		t.Error("audio clip did not resolve after load")
	}
}
