package app

import (
	"context"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/dshills/splice/internal/engine/resource"
	"github.com/dshills/splice/internal/event"
	"github.com/dshills/splice/internal/media"
	"github.com/dshills/splice/internal/project"
	"github.com/dshills/splice/internal/project/watcher"
)

// ResourceChange is a detached copy of a media.Change.
type ResourceChange struct {
	ID   uint64
	Name string
	Path string

	WentOffline    bool
	WentOnline     bool
	ContentChanged bool

	Err error
}

func detachChanges(changes []media.Change) []ResourceChange {
	out := make([]ResourceChange, 0, len(changes))
	for _, c := range changes {
		out = append(out, ResourceChange{
			ID:             c.Item.ID(),
			Name:           c.Item.DisplayName(),
			Path:           c.Path,
			WentOffline:    c.WentOffline,
			WentOnline:     c.WentOnline,
			ContentChanged: c.ContentChanged,
			Err:            c.Err,
		})
	}
	return out
}

func (app *Application) logChange(log *Logger, c ResourceChange) {
	log = log.WithFields(map[string]any{"id": c.ID, "path": c.Path})
	switch {
	case c.Err != nil:
		log.Warn("%s unreadable: %v", c.Name, c.Err)
	case c.WentOffline:
		log.Warn("%s went offline", c.Name)
	case c.WentOnline:
		log.Info("%s back online", c.Name)
	case c.ContentChanged:
		log.Info("%s changed on disk", c.Name)
	}
}

// applyResults applies probe results to p if it is still the open project.
func (app *Application) applyResults(ctx context.Context, p *project.Project, results []media.Result) ([]ResourceChange, error) {
	var changes []ResourceChange
	err := app.loop.Do(ctx, func() error {
		if app.project != p {
			return ErrNoProject
		}
		applied := media.Apply(p.Manager(), results)
		app.metrics.recordChanges(applied)
		changes = detachChanges(applied)
		return nil
	})
	return changes, err
}

// CheckResources probes every file-backed resource of the open project
// and updates online states and fingerprints. Files are read off the
// loop with the configured number of workers.
func (app *Application) CheckResources(ctx context.Context) ([]ResourceChange, error) {
	var (
		p     *project.Project
		paths []string
	)
	err := app.withOpenProject(ctx, func(open *project.Project) error {
		p = open
		paths = media.Paths(open.Manager())
		return nil
	})
	if err != nil {
		return nil, NewOperationError("check", "", err)
	}

	before := app.prober.Stats()
	start := time.Now()
	results := app.prober.ProbeAll(ctx, paths)
	app.metrics.probeDuration.Observe(time.Since(start).Seconds())
	app.metrics.recordProbes(before, app.prober.Stats())
	if err := ctx.Err(); err != nil {
		return nil, NewOperationError("check", "", err)
	}

	changes, err := app.applyResults(ctx, p, results)
	if err != nil {
		return nil, NewOperationError("check", "", err)
	}

	log := app.logger.WithComponent("media")
	for _, c := range changes {
		app.logChange(log, c)
	}
	log.Debug("checked %d files in %s", len(paths), time.Since(start).Round(time.Millisecond))
	return changes, nil
}

// ResourceWatch follows the files of the open project. Resources added
// while it runs are watched too.
type ResourceWatch struct {
	app     *Application
	project *project.Project
	w       *watcher.DebouncedWatcher
	sub     event.Subscription
	log     *Logger

	// paths maps the absolute paths reported by the watcher back to the
	// paths stored in resources.
	mu    sync.Mutex
	paths map[string][]string

	changes chan ResourceChange
	cancel  context.CancelFunc
	done    chan struct{}

	closeOnce sync.Once
	closeErr  error
}

// Watch starts watching the file-backed resources of the open project.
// A file event probes the file and applies the result on the loop; the
// resulting changes are delivered on Changes. Watching stops when ctx is
// done or Close is called. The watcher always observes the OS file
// system, whatever Options.FS is.
func (app *Application) Watch(ctx context.Context) (*ResourceWatch, error) {
	inner, err := watcher.NewFSNotifyWatcher()
	if err != nil {
		return nil, NewComponentError("watcher", "start", err)
	}
	dw := watcher.NewDebouncedWatcher(inner, app.config.Resources().DebounceDelay)

	wctx, cancel := context.WithCancel(ctx)
	rw := &ResourceWatch{
		app:     app,
		w:       dw,
		log:     app.logger.WithComponent("watch"),
		paths:   make(map[string][]string),
		changes: make(chan ResourceChange, 16),
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	err = app.withOpenProject(ctx, func(p *project.Project) error {
		rw.project = p
		for _, path := range media.Paths(p.Manager()) {
			rw.watchPath(path)
		}
		sub, err := app.bus.SubscribeFunc(resource.TopicAdded, rw.handleAdded, event.WithPriority(event.PriorityLow))
		rw.sub = sub
		return err
	})
	if err != nil {
		cancel()
		_ = dw.Close()
		return nil, NewOperationError("watch", "", err)
	}

	go rw.run(wctx)
	rw.log.Info("watching %d files", len(dw.Files()))
	return rw, nil
}

// watchPath may be called from any goroutine.
func (rw *ResourceWatch) watchPath(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		rw.log.Warn("cannot watch %s: %v", path, err)
		return
	}

	rw.mu.Lock()
	defer rw.mu.Unlock()
	if slices.Contains(rw.paths[abs], path) {
		return
	}
	if !rw.w.IsWatching(abs) {
		if err := rw.w.WatchFile(abs); err != nil {
			rw.log.Warn("cannot watch %s: %v", path, err)
			return
		}
	}
	rw.paths[abs] = append(rw.paths[abs], path)
}

func (rw *ResourceWatch) resourcePaths(abs string) []string {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	return slices.Clone(rw.paths[abs])
}

// handleAdded runs on the loop.
func (rw *ResourceWatch) handleAdded(ev any) {
	e, ok := ev.(event.Event[resource.ItemAdded])
	if !ok {
		return
	}
	if fb, ok := e.Payload.Item.Content().(resource.FileBacked); ok && fb.Path() != "" {
		rw.watchPath(fb.Path())
	}
}

func (rw *ResourceWatch) run(ctx context.Context) {
	defer close(rw.done)
	defer close(rw.changes)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-rw.w.Events():
			if !ok {
				return
			}
			if !rw.handle(ctx, ev) {
				return
			}
		case err, ok := <-rw.w.Errors():
			if !ok {
				return
			}
			rw.log.Warn("watcher: %v", err)
		}
	}
}

// handle probes one changed file. It returns false when watching should
// stop.
func (rw *ResourceWatch) handle(ctx context.Context, ev watcher.Event) bool {
	app := rw.app
	paths := rw.resourcePaths(ev.Path)
	if len(paths) == 0 {
		return true
	}

	before := app.prober.Stats()
	results := make([]media.Result, 0, len(paths))
	for _, path := range paths {
		results = append(results, app.prober.Probe(ctx, path))
	}
	app.metrics.recordProbes(before, app.prober.Stats())

	changes, err := app.applyResults(ctx, rw.project, results)
	if err != nil {
		rw.log.Debug("stopping: %v", err)
		return false
	}
	for _, c := range changes {
		app.logChange(rw.log, c)
		select {
		case rw.changes <- c:
		case <-ctx.Done():
			return false
		}
	}
	return true
}

// Changes delivers the changes found by watching. It is closed when
// watching stops.
func (rw *ResourceWatch) Changes() <-chan ResourceChange { return rw.changes }

// Files returns the watched paths.
func (rw *ResourceWatch) Files() []string { return rw.w.Files() }

// Done is closed when watching stops.
func (rw *ResourceWatch) Done() <-chan struct{} { return rw.done }

// Close stops watching and releases the watcher.
func (rw *ResourceWatch) Close() error {
	rw.closeOnce.Do(func() {
		rw.cancel()
		<-rw.done
		rw.closeErr = rw.w.Close()

		// The loop may already be gone during shutdown.
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = rw.app.loop.Do(ctx, func() error {
			return rw.app.bus.Unsubscribe(rw.sub)
		})
	})
	return rw.closeErr
}
