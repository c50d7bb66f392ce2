package resource

import (
	"github.com/dshills/splice/internal/event"
	"github.com/dshills/splice/internal/rbe"
)

// PathState is the resolution state of a Path.
type PathState int

const (
	// PathUnresolved means no item is cached; the next lookup will query
	// the manager.
	PathUnresolved PathState = iota

	// PathInvalid means the last lookup missed or found an item of the
	// wrong kind.
	PathInvalid

	// PathValid means an item of the right kind is cached.
	PathValid
)

func (s PathState) String() string {
	switch s {
	case PathUnresolved:
		return "unresolved"
	case PathInvalid:
		return "invalid"
	case PathValid:
		return "valid"
	default:
		return "unknown"
	}
}

const keyResourceID = "ResourceId"

// ChangeFunc is called when the item a path resolves to changes. Either
// argument may be nil.
type ChangeFunc func(old, new *Item)

// Reference is the kind-independent view of a Path.
type Reference interface {
	ResourceID() uint64
	SetResourceID(id uint64) error
	State() PathState
	Item() *Item
	TryResolveItem(requireOnline bool) (*Item, bool)
	Manager() *Manager
	SetManager(m *Manager) error
	OnResourceChanged(fn ChangeFunc)
	WriteRBE(d *rbe.Dict)
	ReadRBE(d *rbe.Dict) error
	Dispose()
}

// Path is a typed reference to a resource by ID. It resolves lazily on
// TryResolve and follows additions, removals and replacements of its ID
// on the manager's bus, so it never holds an unregistered item.
type Path[T Content] struct {
	id       uint64
	manager  *Manager
	state    PathState
	item     *Item
	sub      event.Subscription
	swapping bool
	disposed bool
	onChange ChangeFunc
}

var _ Reference = (*Path[Content])(nil)

// NewPath creates a path to id with no manager.
func NewPath[T Content](id uint64) *Path[T] {
	return &Path[T]{id: id}
}

// ResourceID returns the referenced ID.
func (p *Path[T]) ResourceID() uint64 {
	return p.id
}

// State returns the current resolution state.
func (p *Path[T]) State() PathState {
	return p.state
}

// Manager returns the manager the path resolves against.
func (p *Path[T]) Manager() *Manager {
	return p.manager
}

// Item returns the cached item, or nil unless the path is valid.
func (p *Path[T]) Item() *Item {
	if p.state != PathValid {
		return nil
	}
	return p.item
}

// OnResourceChanged registers fn to be called when the resolved item changes.
func (p *Path[T]) OnResourceChanged(fn ChangeFunc) {
	p.onChange = fn
}

// TryResolve returns the referenced content. With requireOnline, an
// offline item resolves to false while the path stays valid.
func (p *Path[T]) TryResolve(requireOnline bool) (T, bool) {
	var zero T
	if p.disposed || p.manager == nil {
		return zero, false
	}
	if p.state == PathUnresolved {
		p.resolve()
	}
	if p.state != PathValid {
		return zero, false
	}
	if requireOnline && !p.item.online {
		return zero, false
	}
	return p.item.content.(T), true
}

// TryResolveItem is TryResolve returning the item rather than its content.
func (p *Path[T]) TryResolveItem(requireOnline bool) (*Item, bool) {
	if _, ok := p.TryResolve(requireOnline); !ok {
		return nil, false
	}
	return p.item, true
}

func (p *Path[T]) resolve() {
	item, ok := p.manager.items[p.id]
	if p.id == 0 || !ok {
		p.state = PathInvalid
		return
	}
	p.accept(item)
	if p.item != nil {
		p.notify(nil, p.item)
	}
}

// accept caches item if its content has kind T.
func (p *Path[T]) accept(item *Item) {
	if _, ok := item.content.(T); !ok {
		p.state = PathInvalid
		p.item = nil
		return
	}
	p.state = PathValid
	p.item = item
}

// SetResourceID points the path at another ID.
func (p *Path[T]) SetResourceID(id uint64) error {
	if p.disposed {
		return ErrPathDisposed
	}
	if id == p.id {
		return nil
	}
	old := p.Item()
	p.unsubscribe()
	p.id = id
	p.state = PathUnresolved
	p.item = nil
	if p.manager != nil {
		p.subscribe()
	}
	if old != nil {
		p.notify(old, nil)
	}
	return nil
}

// SetManager moves the path to another manager, or detaches it when m is
// nil. Changing the manager from within a change callback of the same
// path returns ErrReentrantManagerSwap.
func (p *Path[T]) SetManager(m *Manager) error {
	if p.disposed {
		return ErrPathDisposed
	}
	if p.swapping {
		return ErrReentrantManagerSwap
	}
	if m == p.manager {
		return nil
	}

	p.swapping = true
	defer func() { p.swapping = false }()

	old := p.Item()
	p.unsubscribe()
	p.manager = nil
	p.state = PathUnresolved
	p.item = nil
	if old != nil {
		p.notify(old, nil)
	}

	p.manager = m
	if m != nil {
		p.subscribe()
	}
	return nil
}

// Dispose detaches the path from its manager. A disposed path never
// resolves and rejects further changes.
func (p *Path[T]) Dispose() {
	if p.disposed {
		return
	}
	p.unsubscribe()
	p.manager = nil
	p.item = nil
	p.state = PathUnresolved
	p.onChange = nil
	p.disposed = true
}

// Clone returns a path to the same ID with no manager.
func (p *Path[T]) Clone() *Path[T] {
	return NewPath[T](p.id)
}

// WriteRBE stores the referenced ID.
func (p *Path[T]) WriteRBE(d *rbe.Dict) {
	d.SetULong(keyResourceID, p.id)
}

// ReadRBE loads the referenced ID.
func (p *Path[T]) ReadRBE(d *rbe.Dict) error {
	id, err := d.GetULong(keyResourceID)
	if err != nil {
		return err
	}
	return p.SetResourceID(id)
}

func (p *Path[T]) subscribe() {
	if p.id == 0 {
		return
	}
	sub, err := p.manager.bus.Subscribe(TopicAll, event.HandlerFunc(p.handle),
		event.WithPriority(event.PriorityCritical),
		event.WithFilter(IDFilter(p.id)))
	if err == nil {
		p.sub = sub
	}
}

func (p *Path[T]) unsubscribe() {
	if p.sub != nil && p.manager != nil {
		_ = p.manager.bus.Unsubscribe(p.sub)
	}
	p.sub = nil
}

func (p *Path[T]) handle(ev any) {
	switch e := ev.(type) {
	case event.Event[ItemAdded]:
		if e.Payload.Manager != p.manager || p.state == PathValid {
			return
		}
		p.accept(e.Payload.Item)
		if cur := p.Item(); cur != nil {
			p.notify(nil, cur)
		}
	case event.Event[ItemRemoved]:
		if e.Payload.Manager != p.manager {
			return
		}
		old := p.Item()
		p.state = PathUnresolved
		p.item = nil
		if old != nil {
			p.notify(old, nil)
		}
	case event.Event[ItemReplaced]:
		if e.Payload.Manager != p.manager {
			return
		}
		old := p.Item()
		p.accept(e.Payload.New)
		p.notify(old, p.Item())
	}
}

func (p *Path[T]) notify(old, cur *Item) {
	if p.onChange != nil && old != cur {
		p.onChange(old, cur)
	}
}
