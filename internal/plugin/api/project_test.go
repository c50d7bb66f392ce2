package api

import (
	"context"
	"strings"
	"testing"

	"github.com/dshills/splice/internal/engine/timeline"
	plua "github.com/dshills/splice/internal/plugin/lua"
	"github.com/dshills/splice/internal/project"
)

func run(t *testing.T, p *project.Project, code string) ([]string, error) {
	t.Helper()
	var out []string
	state := plua.NewState(plua.WithOutput(func(line string) { out = append(out, line) }))
	t.Cleanup(func() { state.Close() })
	NewProjectModule(p).Register(state)
	err := state.DoString(context.Background(), "test", code)
	return out, err
}

func TestModule_AddAndCut(t *testing.T) {
	p := project.New()
	out, err := run(t, p, `
		local id = splice.add_color("bg", "#ff0000")
		local c = splice.add_clip(1, id, 100, 120)
		local r = splice.cut(c, 150)
		print(c:begin(), c:duration(), r:begin(), r:duration(), r:kind(), r:track())
		print(splice.cut(c, 100) == nil)
	`)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"100\t50\t150\t70\tvideo\t1", "true"}
	if strings.Join(out, "|") != strings.Join(want, "|") {
		t.Errorf("output = %q, want %q", out, want)
	}

	video := p.Timeline().Track(0)
	if video.Len() != 2 || video.At(1).MediaOffset() != 50 {
		t.Errorf("track has %d clips", video.Len())
	}
	if p.History().UndoCount() != 3 || !p.IsModified() {
		t.Errorf("UndoCount() = %d", p.History().UndoCount())
	}
}

func TestModule_ClipKindFollowsTrack(t *testing.T) {
	p := project.New()
	_, err := run(t, p, `
		local id = splice.add_media("/media/a.mov")
		splice.add_clip(1, id, 0, 10)
		splice.add_clip(2, id, 0, 10, "a audio")
		local res = splice.resource(id)
		print(res.name, res.kind, res.path)
	`)
	if err != nil {
		t.Fatal(err)
	}
	if k := p.Timeline().Track(0).At(0).Kind(); k != timeline.KindVideo {
		t.Errorf("video track clip kind = %v", k)
	}
	audio := p.Timeline().Track(1).At(0)
	if audio.Kind() != timeline.KindAudio || audio.DisplayName() != "a audio" {
		t.Errorf("audio clip = %v %q", audio.Kind(), audio.DisplayName())
	}
}

func TestModule_TracksTrimMoveRemove(t *testing.T) {
	p := project.New()
	out, err := run(t, p, `
		local n = splice.add_track("video", "B roll")
		local id = splice.add_color("c", "#00ff00")
		local c = splice.add_clip(1, id, 10, 100)
		print(n, #splice.tracks(), splice.tracks()[3].name)
		print(splice.trim(c, "left", 20), c:begin())
		splice.move(c, 5, n)
		print(c:track(), c:begin(), #splice.clips(1), #splice.clips(n))
		splice.remove(c)
		print(c:track())
	`)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"3\t3\tB roll", "80\t30", "3\t35\t0\t1", "nil"}
	if strings.Join(out, "|") != strings.Join(want, "|") {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestModule_Compose(t *testing.T) {
	p := project.New()
	out, err := run(t, p, `
		local id = splice.add_color("c", "#0000ff")
		local a = splice.add_clip(1, id, 10, 20)
		local b = splice.add_clip(1, id, 40, 20)
		local comp = splice.compose("nest", {a, b})
		print(comp:kind(), comp:begin(), comp:duration(), #splice.clips(1))
		print(splice.resource(comp:resource()).kind)
	`)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"composition\t10\t50\t1", timeline.FactoryComposition}
	if strings.Join(out, "|") != strings.Join(want, "|") {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestModule_Errors(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{"bad track kind", `splice.add_track("midi")`, "unknown track kind"},
		{"track out of range", `splice.clips(9)`, "out of range"},
		{"bad color", `splice.add_color("x", "nope")`, ""},
		{"missing resource", `splice.add_clip(1, 42, 0, 10)`, "no resource with id 42"},
		{"negative frame", `local id = splice.add_color("x", "#fff") splice.add_clip(1, id, -1, 10)`, "negative"},
		{"bad edge", `local id = splice.add_color("x", "#fff") splice.trim(splice.add_clip(1, id, 0, 10), "top", 1)`, "edge"},
		{"not a clip", `splice.remove(1)`, ""},
		{"empty compose", `splice.compose("n", {})`, "no clips selected"},
		{"compose non-clip", `splice.compose("n", {1})`, "not a clip"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, project.New(), tt.code)
			if err == nil {
				t.Fatal("script should fail")
			}
			if tt.want != "" && !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestModule_SettingsAndEdits(t *testing.T) {
	p := project.New(project.WithSettings(project.Settings{Width: 1280, Height: 720, FrameRate: 25}))
	var out []string
	state := plua.NewState(plua.WithOutput(func(line string) { out = append(out, line) }))
	defer state.Close()
	mod := NewProjectModule(p)
	mod.Register(state)

	code := `local s = splice.settings() print(s.width, s.height, s.frame_rate)`
	if err := state.DoString(context.Background(), "s", code); err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0] != "1280\t720\t25" {
		t.Errorf("output = %q", out)
	}
	if mod.Edits() != 0 {
		t.Errorf("Edits() = %d, want 0", mod.Edits())
	}
}
