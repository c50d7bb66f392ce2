// Package app runs one project at a time on a dedicated loop goroutine
// and connects it to configuration, logging, metrics, media probing, file
// watching and scripting.
//
// The project, its resource manager and the event bus they publish on
// are single-owner. Every method of Application that touches them does
// so through Loop.Do; slow work such as file I/O, hashing and waiting on
// the watcher happens on the caller's goroutine, with results handed
// back to the loop.
package app

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/dshills/splice/internal/config"
	"github.com/dshills/splice/internal/event"
	"github.com/dshills/splice/internal/media"
	"github.com/dshills/splice/internal/plugin"
	"github.com/dshills/splice/internal/project"
	"github.com/dshills/splice/internal/project/search"
	"github.com/dshills/splice/internal/project/vfs"
)

// Options configures New.
type Options struct {
	// ConfigPath names a config file that must exist. Empty uses the
	// optional user config file.
	ConfigPath string

	// LogLevel overrides logging.level when set.
	LogLevel string

	// LogOutput defaults to os.Stderr.
	LogOutput io.Writer

	// FS is where projects, scripts, media and the config file are read.
	// Defaults to the OS file system.
	FS vfs.VFS

	// QueueSize is the loop's task buffer.
	QueueSize int
}

// Application owns the loop and the open project.
type Application struct {
	fs       vfs.VFS
	config   *config.Config
	logger   *Logger
	metrics  *Metrics
	registry *project.Registry
	prober   *media.Prober
	runner   *plugin.Runner

	loop    *Loop
	cancel  context.CancelFunc
	stopped chan struct{}
	runErr  error

	// Owned by the loop goroutine.
	bus     event.Bus
	project *project.Project
}

// New loads configuration and starts the loop. No project is open.
func New(ctx context.Context, opts Options) (*Application, error) {
	fsys := opts.FS
	if fsys == nil {
		fsys = vfs.NewOSFS()
	}

	cfg := config.New(config.WithFS(fsys), config.WithFile(opts.ConfigPath))
	if err := cfg.Load(ctx); err != nil {
		return nil, NewComponentError("config", "load", err)
	}
	if opts.LogLevel != "" {
		if err := cfg.Set("logging.level", opts.LogLevel); err != nil {
			return nil, NewComponentError("config", "set log level", err)
		}
	}

	logger := NewLogger(LoggerConfig{
		Level:  ParseLogLevel(cfg.Logging().Level),
		Output: opts.LogOutput,
		Prefix: "splice",
	})
	metrics := NewMetrics()

	rc := cfg.Resources()
	sc := cfg.Script()
	scriptLog := logger.WithComponent("script")

	app := &Application{
		fs:       fsys,
		config:   cfg,
		logger:   logger,
		metrics:  metrics,
		registry: project.DefaultRegistry(),
		prober:   media.NewProber(fsys, media.WithWorkers(rc.LoadWorkers), media.WithCacheTTL(rc.StatCacheTTL)),
		runner: plugin.NewRunner(fsys,
			plugin.WithTimeout(sc.Timeout),
			plugin.WithCallLimit(int64(sc.CallLimit)),
			plugin.WithOutput(func(line string) { scriptLog.Info("%s", line) }),
		),
		loop:    NewLoop(opts.QueueSize, WithTaskObserver(metrics.recordTask)),
		stopped: make(chan struct{}),
		bus:     event.NewBus(),
	}

	// The loop has not started, so the bus is still ours to set up.
	if _, err := metrics.Observe(app.bus); err != nil {
		return nil, NewComponentError("metrics", "subscribe", err)
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	app.cancel = cancel
	go func() {
		app.runErr = app.loop.Run(loopCtx)
		close(app.stopped)
	}()

	logger.Debug("started with config %s", cfg.FilePath())
	return app, nil
}

// Config returns the loaded configuration.
func (app *Application) Config() *config.Config { return app.config }

// Logger returns the application logger.
func (app *Application) Logger() *Logger { return app.logger }

// Metrics returns the application metrics.
func (app *Application) Metrics() *Metrics { return app.metrics }

// Shutdown closes the open project, discarding unsaved changes, and
// stops the loop. It waits for the loop until ctx is done.
func (app *Application) Shutdown(ctx context.Context) error {
	err := app.loop.Do(ctx, func() error {
		if app.project != nil {
			app.project.Close()
			app.project = nil
		}
		return nil
	})
	if errors.Is(err, ErrNotRunning) {
		err = nil
	}

	app.loop.Stop()
	select {
	case <-app.stopped:
	case <-ctx.Done():
		app.cancel()
		return ctx.Err()
	}
	app.cancel()
	if app.runErr != nil {
		err = errors.Join(err, NewComponentError("loop", "run", app.runErr))
	}
	return err
}

func (app *Application) projectOptions() []project.Option {
	return []project.Option{
		project.WithBus(app.bus),
		project.WithHistoryLimit(app.config.History().MaxEntries),
	}
}

// withOpenProject runs fn on the loop with the open project.
func (app *Application) withOpenProject(ctx context.Context, fn func(p *project.Project) error) error {
	return app.loop.Do(ctx, func() error {
		if app.project == nil {
			return ErrNoProject
		}
		return fn(app.project)
	})
}

// WithProject runs fn on the loop with the open project. fn must not
// retain p or anything reachable from it.
func (app *Application) WithProject(ctx context.Context, fn func(p *project.Project) error) error {
	return app.withOpenProject(ctx, fn)
}

// HasProject reports whether a project is open.
func (app *Application) HasProject(ctx context.Context) (bool, error) {
	var open bool
	err := app.loop.Do(ctx, func() error {
		open = app.project != nil
		return nil
	})
	return open, err
}

// NewProject opens an empty project with the configured settings.
func (app *Application) NewProject(ctx context.Context) error {
	pc := app.config.Project()
	settings := project.Settings{
		Width:     int32(pc.Width),
		Height:    int32(pc.Height),
		FrameRate: pc.FrameRate,
	}

	err := app.loop.Do(ctx, func() error {
		if app.project != nil {
			return ErrProjectOpen
		}
		app.project = project.New(append(app.projectOptions(), project.WithSettings(settings))...)
		return nil
	})
	app.metrics.recordProjectOp("new", err)
	if err != nil {
		return NewOperationError("new", "", err)
	}
	app.logger.Info("new project %dx%d at %g fps", settings.Width, settings.Height, settings.FrameRate)
	return nil
}

// OpenProject reads and decodes the project at path.
func (app *Application) OpenProject(ctx context.Context, path string) error {
	err := app.openProject(ctx, path)
	app.metrics.recordProjectOp("open", err)
	if err != nil {
		return NewOperationError("open", path, err)
	}
	app.logger.Info("opened %s", path)
	return nil
}

func (app *Application) openProject(ctx context.Context, path string) error {
	data, err := project.ReadFile(ctx, app.fs, path)
	if err != nil {
		return err
	}
	return app.loop.Do(ctx, func() error {
		if app.project != nil {
			return ErrProjectOpen
		}
		p, err := project.Decode(data, app.registry, app.projectOptions()...)
		if err != nil {
			app.metrics.syncResources(nil)
			return err
		}
		p.MarkSaved(path)
		app.project = p
		app.metrics.syncResources(p.Manager())
		return nil
	})
}

// SaveProject writes the open project to path, or to its current file
// when path is empty. The project is encoded on the loop and written from
// the caller's goroutine.
func (app *Application) SaveProject(ctx context.Context, path string) error {
	target, err := app.saveProject(ctx, path)
	app.metrics.recordProjectOp("save", err)
	if err != nil {
		return NewOperationError("save", target, err)
	}
	app.logger.Info("saved %s", target)
	return nil
}

func (app *Application) saveProject(ctx context.Context, path string) (string, error) {
	var (
		p      *project.Project
		target = path
		data   []byte
		gen    uint64
	)
	err := app.withOpenProject(ctx, func(open *project.Project) error {
		p = open
		if target == "" {
			target = open.FilePath()
		}
		if target == "" {
			return project.ErrNoFilePath
		}
		var err error
		data, err = open.Snapshot()
		gen = app.loop.Processed()
		return err
	})
	if err != nil {
		return target, err
	}

	if err := ctx.Err(); err != nil {
		return target, err
	}
	if err := project.WriteSnapshot(app.fs, target, data); err != nil {
		return target, err
	}

	err = app.loop.Do(ctx, func() error {
		if app.project != p {
			return nil
		}
		p.MarkSaved(target)
		// Tasks ran between the snapshot and now; they may have edited.
		if app.loop.Processed() != gen+1 {
			p.MarkModified()
		}
		return nil
	})
	return target, err
}

// CloseProject closes the open project. A modified project is only
// closed when force is true.
func (app *Application) CloseProject(ctx context.Context, force bool) error {
	var file string
	err := app.withOpenProject(ctx, func(p *project.Project) error {
		file = p.FilePath()
		if p.IsModified() && !force {
			return ErrUnsavedChanges
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		p.Close()
		app.project = nil
		app.metrics.syncResources(nil)
		return nil
	})
	app.metrics.recordProjectOp("close", err)
	if err != nil {
		return NewOperationError("close", file, err)
	}
	app.logger.Debug("closed project %s", file)
	return nil
}

// Undo reverts the last edit of the open project.
func (app *Application) Undo(ctx context.Context) error {
	return app.withOpenProject(ctx, func(p *project.Project) error { return p.Undo() })
}

// Redo reapplies the last undone edit.
func (app *Application) Redo(ctx context.Context) error {
	return app.withOpenProject(ctx, func(p *project.Project) error { return p.Redo() })
}

// Summary describes the open project.
func (app *Application) Summary(ctx context.Context) (ProjectSummary, error) {
	var s ProjectSummary
	err := app.withOpenProject(ctx, func(p *project.Project) error {
		s = Summarize(p)
		return nil
	})
	return s, err
}

// FindResources searches the open project's bin. See search.Resources.
func (app *Application) FindResources(ctx context.Context, query string, opts search.Options) ([]search.Match, error) {
	var matches []search.Match
	err := app.withOpenProject(ctx, func(p *project.Project) error {
		var err error
		matches, err = search.Resources(ctx, p.Manager().Root(), query, opts)
		return err
	})
	if err != nil {
		return nil, NewOperationError("find", query, err)
	}
	return matches, nil
}

// RunScript runs the Lua script at path against the open project. The
// script's edits form one undo entry; a failed script changes nothing.
func (app *Application) RunScript(ctx context.Context, path string) (plugin.Result, error) {
	var res plugin.Result
	err := app.withOpenProject(ctx, func(p *project.Project) error {
		var err error
		res, err = app.runner.RunFile(ctx, p, path)
		return err
	})
	app.metrics.recordScript(res.Edits, err)
	if err != nil {
		return res, NewOperationError("script", path, err)
	}
	app.logger.WithFields(map[string]any{
		"calls": res.Calls,
		"edits": res.Edits,
	}).Info("ran %s in %s", path, res.Duration.Round(time.Millisecond))
	return res, nil
}
