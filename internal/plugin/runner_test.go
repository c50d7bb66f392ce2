package plugin

import (
	"context"
	"errors"
	"testing"
	"time"

	plua "github.com/dshills/splice/internal/plugin/lua"
	"github.com/dshills/splice/internal/project"
	"github.com/dshills/splice/internal/project/vfs"
)

func TestRunner_RunFileGroupsEdits(t *testing.T) {
	fsys := vfs.NewMemFS()
	script := `
		local id = splice.add_color("bg", "#101010")
		local c = splice.add_clip(1, id, 0, 100)
		splice.cut(c, 40)
		print("done")
	`
	if err := fsys.AddFile("/scripts/edit.lua", []byte(script)); err != nil {
		t.Fatal(err)
	}

	var out []string
	r := NewRunner(fsys, WithOutput(func(line string) { out = append(out, line) }))
	p := project.New()

	res, err := r.RunFile(context.Background(), p, "/scripts/edit.lua")
	if err != nil {
		t.Fatalf("RunFile() error: %v", err)
	}
	if res.Edits != 3 || res.Calls != 3 || res.Script != "/scripts/edit.lua" {
		t.Errorf("Result = %+v", res)
	}
	if len(out) != 1 || out[0] != "done" {
		t.Errorf("output = %q", out)
	}

	h := p.History()
	if h.UndoCount() != 1 {
		t.Fatalf("UndoCount() = %d, want one grouped entry", h.UndoCount())
	}
	if err := p.Undo(); err != nil {
		t.Fatal(err)
	}
	if p.Timeline().Track(0).Len() != 0 || p.Manager().Len() != 0 {
		t.Error("undo should revert the whole script")
	}
}

func TestRunner_FailureRevertsEdits(t *testing.T) {
	r := NewRunner(vfs.NewMemFS())
	p := project.New()

	_, err := r.Run(context.Background(), p, "bad.lua", `
		local id = splice.add_color("bg", "#101010")
		splice.add_clip(1, id, 0, 100)
		error("stop")
	`)
	var se *ScriptError
	if !errors.As(err, &se) || se.Script != "bad.lua" {
		t.Fatalf("Run() error = %v, want *ScriptError", err)
	}
	if p.Manager().Len() != 0 || p.Timeline().Track(0).Len() != 0 {
		t.Error("failed script should leave the project unchanged")
	}
	if p.History().UndoCount() != 0 || p.History().IsGrouping() {
		t.Error("failed script should leave no history")
	}
}

func TestRunner_Limits(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		code string
		want error
	}{
		{"timeout", []Option{WithTimeout(50 * time.Millisecond)}, `while true do end`, plua.ErrExecutionTimeout},
		{"call limit", []Option{WithCallLimit(2)}, `for i = 1, 5 do splice.tracks() end`, plua.ErrCallLimit},
		{"empty", nil, "  \n", ErrEmptyScript},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRunner(vfs.NewMemFS(), tt.opts...)
			_, err := r.Run(context.Background(), project.New(), tt.name, tt.code)
			if !errors.Is(err, tt.want) {
				t.Errorf("Run() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRunner_MissingFile(t *testing.T) {
	r := NewRunner(vfs.NewMemFS())
	_, err := r.RunFile(context.Background(), project.New(), "/none.lua")
	var se *ScriptError
	if !errors.As(err, &se) {
		t.Errorf("RunFile() error = %v, want *ScriptError", err)
	}
}
