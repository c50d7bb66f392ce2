package plugin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dshills/splice/internal/plugin/api"
	plua "github.com/dshills/splice/internal/plugin/lua"
	"github.com/dshills/splice/internal/project"
	"github.com/dshills/splice/internal/project/vfs"
)

// Runner executes scripts. A Runner may be shared; each run gets its
// own Lua state.
type Runner struct {
	fs        vfs.Reader
	timeout   time.Duration
	callLimit int64
	output    func(string)
}

// Option configures a Runner.
type Option func(*Runner)

// WithTimeout bounds each run.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.timeout = d
	}
}

// WithCallLimit bounds the project API calls of each run.
func WithCallLimit(n int64) Option {
	return func(r *Runner) {
		r.callLimit = n
	}
}

// WithOutput receives the lines scripts print.
func WithOutput(fn func(line string)) Option {
	return func(r *Runner) {
		r.output = fn
	}
}

// NewRunner creates a runner reading scripts from fsys.
func NewRunner(fsys vfs.Reader, opts ...Option) *Runner {
	r := &Runner{
		fs:        fsys,
		timeout:   plua.DefaultExecutionTimeout,
		callLimit: plua.DefaultCallLimit,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Result describes a finished run.
type Result struct {
	Script   string
	Calls    int64
	Edits    int
	Duration time.Duration
}

// RunFile reads the script at path and runs it against p.
func (r *Runner) RunFile(ctx context.Context, p *project.Project, path string) (Result, error) {
	data, err := r.fs.ReadFile(path)
	if err != nil {
		return Result{Script: path}, &ScriptError{Script: path, Err: err}
	}
	return r.Run(ctx, p, path, string(data))
}

// Run runs code against p. The script's edits become one undo entry
// named after it; a failing script leaves p unchanged.
func (r *Runner) Run(ctx context.Context, p *project.Project, name, code string) (Result, error) {
	res := Result{Script: name}
	if strings.TrimSpace(code) == "" {
		return res, &ScriptError{Script: name, Err: ErrEmptyScript}
	}

	state := plua.NewState(
		plua.WithExecutionTimeout(r.timeout),
		plua.WithCallLimit(r.callLimit),
		plua.WithOutput(r.output),
	)
	defer state.Close()
	mod := api.NewProjectModule(p)
	mod.Register(state)

	h := p.History()
	start := time.Now()

	h.BeginGroup(fmt.Sprintf("Script %s", name))
	runErr := state.DoString(ctx, name, code)
	res.Duration = time.Since(start)
	res.Calls = state.Sandbox().CallCount()

	if runErr != nil {
		if err := h.CancelGroup(); err != nil {
			return res, &ScriptError{Script: name, Err: errors.Join(runErr, fmt.Errorf("reverting edits: %w", err))}
		}
		return res, &ScriptError{Script: name, Err: runErr}
	}
	h.EndGroup()
	res.Edits = mod.Edits()
	return res, nil
}
