package resource

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/splice/internal/rbe"
)

// Factory IDs of the built-in resource kinds. They are persisted and must
// not change.
const (
	FactoryFolder = "ResourceFolder"
	FactoryColor  = "ResourceColor"
	FactoryImage  = "ResourceImage"
	FactoryMedia  = "ResourceAVMedia"
)

// Content is the kind-specific payload of an Item.
type Content interface {
	// FactoryID returns the persisted kind key.
	FactoryID() string

	// WriteRBE stores the content's fields into d.
	WriteRBE(d *rbe.Dict) error

	// ReadRBE loads the content's fields from d.
	ReadRBE(d *rbe.Dict) error

	// Clone returns a deep copy.
	Clone() Content
}

// ManagerObserver is implemented by content that holds references of its
// own, such as a composition's nested timeline. OnManagerChanged is called
// after the owning item moves between managers.
type ManagerObserver interface {
	OnManagerChanged(item *Item, old, new *Manager)
}

// FileBacked is implemented by content read from a file on disk.
type FileBacked interface {
	Content
	Path() string
	Fingerprint() uint64
	SetFingerprint(fp uint64)
}

// Visual is content a video clip can display.
type Visual interface {
	Content
	isVisual()
}

// Color is a solid color, RGBA in [0,1].
type Color struct {
	R, G, B, A float64
}

// NewColor creates an opaque color.
func NewColor(r, g, b float64) *Color {
	return &Color{R: r, G: g, B: b, A: 1}
}

// ParseColor parses "#rgb", "#rrggbb" or "#rrggbbaa".
func ParseColor(s string) (*Color, error) {
	alpha := 1.0
	if len(s) == 9 {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return nil, fmt.Errorf("parse color %q: %w", s, err)
		}
		alpha = float64(a) / 255
		s = s[:7]
	}
	if len(s) == 4 {
		s = string([]byte{'#', s[1], s[1], s[2], s[2], s[3], s[3]})
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return nil, fmt.Errorf("parse color %q: %w", s, err)
	}
	return &Color{R: c.R, G: c.G, B: c.B, A: alpha}, nil
}

// Hex formats the color as "#rrggbb", or "#rrggbbaa" when translucent.
func (c *Color) Hex() string {
	h := colorful.Color{R: c.R, G: c.G, B: c.B}.Clamped().Hex()
	if c.A >= 1 {
		return h
	}
	return h + fmt.Sprintf("%02x", uint8(min(max(c.A, 0), 1)*255+0.5))
}

func (c *Color) FactoryID() string { return FactoryColor }
func (c *Color) isVisual()         {}

func (c *Color) Clone() Content {
	cp := *c
	return &cp
}

func (c *Color) WriteRBE(d *rbe.Dict) error {
	d.SetDouble("R", c.R)
	d.SetDouble("G", c.G)
	d.SetDouble("B", c.B)
	d.SetDouble("A", c.A)
	return nil
}

func (c *Color) ReadRBE(d *rbe.Dict) error {
	c.R = d.GetDoubleOr("R", 0)
	c.G = d.GetDoubleOr("G", 0)
	c.B = d.GetDoubleOr("B", 0)
	c.A = d.GetDoubleOr("A", 1)
	return nil
}

// Image is a still image file.
type Image struct {
	FilePath    string
	Width       int32
	Height      int32
	fingerprint uint64
}

// NewImage creates an image resource for a file.
func NewImage(path string) *Image {
	return &Image{FilePath: path}
}

func (m *Image) FactoryID() string        { return FactoryImage }
func (m *Image) Path() string             { return m.FilePath }
func (m *Image) Fingerprint() uint64      { return m.fingerprint }
func (m *Image) SetFingerprint(fp uint64) { m.fingerprint = fp }
func (m *Image) isVisual()                {}

func (m *Image) Clone() Content {
	cp := *m
	return &cp
}

func (m *Image) WriteRBE(d *rbe.Dict) error {
	d.SetString("FilePath", m.FilePath)
	d.SetInt("Width", m.Width)
	d.SetInt("Height", m.Height)
	if m.fingerprint != 0 {
		d.SetULong("Fingerprint", m.fingerprint)
	}
	return nil
}

func (m *Image) ReadRBE(d *rbe.Dict) error {
	path, err := d.GetString("FilePath")
	if err != nil {
		return err
	}
	m.FilePath = path
	m.Width = d.GetIntOr("Width", 0)
	m.Height = d.GetIntOr("Height", 0)
	m.fingerprint = d.GetULongOr("Fingerprint", 0)
	return nil
}

// Media is an audio/video file. It can back both video and audio clips.
type Media struct {
	FilePath string

	// Duration is the length of the media in frames, 0 when unknown.
	Duration    uint64
	fingerprint uint64
}

// NewMedia creates a media resource for a file.
func NewMedia(path string) *Media {
	return &Media{FilePath: path}
}

func (m *Media) FactoryID() string        { return FactoryMedia }
func (m *Media) Path() string             { return m.FilePath }
func (m *Media) Fingerprint() uint64      { return m.fingerprint }
func (m *Media) SetFingerprint(fp uint64) { m.fingerprint = fp }
func (m *Media) isVisual()                {}

func (m *Media) Clone() Content {
	cp := *m
	return &cp
}

func (m *Media) WriteRBE(d *rbe.Dict) error {
	d.SetString("FilePath", m.FilePath)
	if m.Duration != 0 {
		d.SetULong("Duration", m.Duration)
	}
	if m.fingerprint != 0 {
		d.SetULong("Fingerprint", m.fingerprint)
	}
	return nil
}

func (m *Media) ReadRBE(d *rbe.Dict) error {
	path, err := d.GetString("FilePath")
	if err != nil {
		return err
	}
	m.FilePath = path
	m.Duration = d.GetULongOr("Duration", 0)
	m.fingerprint = d.GetULongOr("Fingerprint", 0)
	return nil
}

// Constructor creates empty content of one kind, ready for ReadRBE.
type Constructor func() Content

// Factory maps persisted factory IDs to content constructors.
type Factory struct {
	ctors map[string]Constructor
}

// NewFactory creates an empty factory.
func NewFactory() *Factory {
	return &Factory{ctors: make(map[string]Constructor)}
}

// DefaultFactory returns a factory with the built-in kinds registered.
// Compositions are registered by the timeline package.
func DefaultFactory() *Factory {
	f := NewFactory()
	f.ctors[FactoryColor] = func() Content { return &Color{A: 1} }
	f.ctors[FactoryImage] = func() Content { return &Image{} }
	f.ctors[FactoryMedia] = func() Content { return &Media{} }
	return f
}

// Register adds a constructor for id.
func (f *Factory) Register(id string, ctor Constructor) error {
	if id == "" || id == FactoryFolder || strings.TrimSpace(id) != id {
		return fmt.Errorf("register %q: %w", id, ErrUnknownFactoryID)
	}
	if _, ok := f.ctors[id]; ok {
		return fmt.Errorf("register %q: %w", id, ErrDuplicateFactoryID)
	}
	f.ctors[id] = ctor
	return nil
}

// New creates empty content for id.
func (f *Factory) New(id string) (Content, error) {
	ctor, ok := f.ctors[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFactoryID, id)
	}
	return ctor(), nil
}

// IDs returns the registered factory IDs, sorted.
func (f *Factory) IDs() []string {
	ids := make([]string, 0, len(f.ctors))
	for id := range f.ctors {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
