package project

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dshills/splice/internal/engine/history"
	"github.com/dshills/splice/internal/engine/resource"
	"github.com/dshills/splice/internal/engine/timeline"
	"github.com/dshills/splice/internal/event"
	"github.com/dshills/splice/internal/rbe"
)

// Settings are the output properties of a project.
type Settings struct {
	Width     int32
	Height    int32
	FrameRate float64
}

// DefaultSettings returns 1080p at 30 frames per second.
func DefaultSettings() Settings {
	return Settings{Width: 1920, Height: 1080, FrameRate: 30}
}

func (s Settings) writeRBE(d *rbe.Dict) {
	d.SetInt("Width", s.Width)
	d.SetInt("Height", s.Height)
	d.SetDouble("FrameRate", s.FrameRate)
}

func readSettings(d *rbe.Dict) Settings {
	def := DefaultSettings()
	return Settings{
		Width:     d.GetIntOr("Width", def.Width),
		Height:    d.GetIntOr("Height", def.Height),
		FrameRate: d.GetDoubleOr("FrameRate", def.FrameRate),
	}
}

// Registry holds the content constructors used to load projects. Clip
// and track kinds are fixed by the timeline package; resource kinds are
// extensible. Build it once and pass it to every Load.
type Registry struct {
	Resources *resource.Factory
}

// DefaultRegistry returns a registry with every built-in resource kind,
// compositions included.
func DefaultRegistry() *Registry {
	f := resource.DefaultFactory()
	if err := timeline.RegisterContent(f); err != nil {
		panic(fmt.Sprintf("project: register composition content: %v", err))
	}
	return &Registry{Resources: f}
}

// Project is a resource manager and a root timeline edited together.
// Like its parts it is owned by a single goroutine.
type Project struct {
	id       uuid.UUID
	settings Settings
	manager  *resource.Manager
	timeline *timeline.Timeline
	history  *history.History

	filePath     string
	modified     bool
	hasSavedOnce bool
}

type options struct {
	bus          event.Bus
	historyLimit int
	settings     Settings
	emptyTracks  bool
}

// Option configures a new or loaded project.
type Option func(*options)

// WithBus makes the project's manager publish on bus.
func WithBus(bus event.Bus) Option {
	return func(o *options) {
		o.bus = bus
	}
}

// WithHistoryLimit bounds the undo stack.
func WithHistoryLimit(n int) Option {
	return func(o *options) {
		o.historyLimit = n
	}
}

// WithSettings sets the settings of a new project.
func WithSettings(s Settings) Option {
	return func(o *options) {
		o.settings = s
	}
}

// WithoutDefaultTracks creates a new project with no tracks.
func WithoutDefaultTracks() Option {
	return func(o *options) {
		o.emptyTracks = true
	}
}

func buildOptions(opts []Option) options {
	o := options{settings: DefaultSettings()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func newProject(o options, m *resource.Manager, tl *timeline.Timeline) *Project {
	p := &Project{
		id:       uuid.New(),
		settings: o.settings,
		manager:  m,
		timeline: tl,
	}
	p.history = history.NewHistory(o.historyLimit)
	tl.SetManager(m)
	return p
}

func managerOptions(o options) []resource.ManagerOption {
	if o.bus == nil {
		return nil
	}
	return []resource.ManagerOption{resource.WithBus(o.bus)}
}

// New creates an empty project with one video and one audio track.
func New(opts ...Option) *Project {
	o := buildOptions(opts)
	tl := timeline.New()
	if !o.emptyTracks {
		_ = tl.AddTrack(timeline.NewTrack(timeline.TrackVideo, "Video 1"))
		_ = tl.AddTrack(timeline.NewTrack(timeline.TrackAudio, "Audio 1"))
	}
	return newProject(o, resource.NewManager(managerOptions(o)...), tl)
}

// ID returns the project's session identifier.
func (p *Project) ID() uuid.UUID { return p.id }

// Manager returns the project's resource manager.
func (p *Project) Manager() *resource.Manager { return p.manager }

// Timeline returns the root timeline.
func (p *Project) Timeline() *timeline.Timeline { return p.timeline }

// History returns the undo history.
func (p *Project) History() *history.History { return p.history }

// Settings returns the output settings.
func (p *Project) Settings() Settings { return p.settings }

// SetSettings changes the output settings and marks the project modified.
func (p *Project) SetSettings(s Settings) {
	if s == p.settings {
		return
	}
	p.settings = s
	p.modified = true
}

// FilePath returns the path the project was loaded from or last saved to.
func (p *Project) FilePath() string { return p.filePath }

// IsModified returns true if the project changed since it was last saved.
func (p *Project) IsModified() bool { return p.modified }

// MarkModified flags an edit made outside the history.
func (p *Project) MarkModified() { p.modified = true }

// HasSavedOnce returns true if the project has a file on disk.
func (p *Project) HasSavedOnce() bool { return p.hasSavedOnce }

// MarkSaved records a successful write of the project to path.
func (p *Project) MarkSaved(path string) {
	p.filePath = path
	p.modified = false
	p.hasSavedOnce = true
}

// Execute runs cmd through the history.
func (p *Project) Execute(cmd history.Command) error {
	if err := p.history.Execute(cmd); err != nil {
		return err
	}
	p.modified = true
	return nil
}

// Undo reverts the last command.
func (p *Project) Undo() error {
	if err := p.history.Undo(); err != nil {
		return err
	}
	p.modified = true
	return nil
}

// Redo reapplies the last undone command.
func (p *Project) Redo() error {
	if err := p.history.Redo(); err != nil {
		return err
	}
	p.modified = true
	return nil
}

// Close releases the project's subscriptions and unregisters every
// resource. The project must not be used afterwards.
func (p *Project) Close() {
	p.history.Clear()
	p.timeline.Dispose()
	p.manager.Clear()
}
