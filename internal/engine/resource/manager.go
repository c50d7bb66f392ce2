package resource

import (
	"maps"
	"slices"

	"github.com/dshills/splice/internal/event"
	"github.com/dshills/splice/internal/event/topic"
)

// RootFolderName is the display name of a new manager's root folder.
const RootFolderName = "Root"

// Manager is the resource registry of one project. It owns the root of
// the resource tree and the id → item index.
type Manager struct {
	root   *Folder
	items  map[uint64]*Item
	currID uint64
	bus    event.Bus
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithBus makes the manager publish on bus instead of a private one.
func WithBus(bus event.Bus) ManagerOption {
	return func(m *Manager) {
		m.bus = bus
	}
}

// NewManager creates an empty manager.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		items: make(map[uint64]*Item),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.bus == nil {
		m.bus = event.NewBus()
	}
	m.root = NewFolder(RootFolderName)
	m.root.manager = m
	return m
}

// Root returns the root folder.
func (m *Manager) Root() *Folder {
	return m.root
}

// Bus returns the bus resource events are published on.
func (m *Manager) Bus() event.Bus {
	return m.bus
}

// CurrentID returns the last ID handed out by NextID.
func (m *Manager) CurrentID() uint64 {
	return m.currID
}

// Len returns the number of registered items.
func (m *Manager) Len() int {
	return len(m.items)
}

// NextID advances the counter to the next value that is neither 0 nor
// registered and returns it.
func (m *Manager) NextID() uint64 {
	for {
		m.currID++
		if m.currID == 0 {
			continue
		}
		if _, taken := m.items[m.currID]; !taken {
			return m.currID
		}
	}
}

// Register indexes item. An item with ID 0 gets a fresh ID; otherwise its
// current ID must be free.
func (m *Manager) Register(item *Item) (uint64, error) {
	return m.RegisterAs(item, item.id)
}

// RegisterAs indexes item under id, or under a fresh ID if id is 0. It is
// used to restore an item under the ID it had before removal.
func (m *Manager) RegisterAs(item *Item, id uint64) (uint64, error) {
	if item.manager != nil && item.manager != m {
		return 0, &CrossManagerError{ID: id, Name: item.name}
	}
	if item.IsRegistered() {
		return 0, &DuplicateIDError{ID: item.id}
	}
	if id == 0 {
		id = m.NextID()
	} else if _, taken := m.items[id]; taken {
		return 0, &DuplicateIDError{ID: id}
	}

	item.id = id
	m.items[id] = item
	publish(m, TopicAdded, ItemAdded{Manager: m, ID: id, Item: item})
	return id, nil
}

// Unregister removes id from the index. The tree is not touched.
func (m *Manager) Unregister(id uint64) (*Item, bool) {
	item, ok := m.items[id]
	if !ok {
		return nil, false
	}
	delete(m.items, id)
	item.id = 0
	publish(m, TopicRemoved, ItemRemoved{Manager: m, ID: id, Item: item})
	return item, true
}

// EntryExists returns true if id is registered.
func (m *Manager) EntryExists(id uint64) bool {
	_, ok := m.items[id]
	return ok
}

// TryGet returns the item registered under id.
func (m *Manager) TryGet(id uint64) (*Item, bool) {
	item, ok := m.items[id]
	return item, ok
}

// IDs returns the registered IDs in ascending order.
func (m *Manager) IDs() []uint64 {
	return slices.Sorted(maps.Keys(m.items))
}

// Items returns the registered items ordered by ID.
func (m *Manager) Items() []*Item {
	ids := m.IDs()
	items := make([]*Item, len(ids))
	for i, id := range ids {
		items[i] = m.items[id]
	}
	return items
}

// AddItem inserts item into folder and registers it.
func (m *Manager) AddItem(folder *Folder, item *Item) (uint64, error) {
	if folder.manager != m {
		return 0, &CrossManagerError{ID: item.id, Name: item.name}
	}
	if err := folder.Add(item); err != nil {
		return 0, err
	}
	id, err := m.Register(item)
	if err != nil {
		folder.Remove(item)
		return 0, err
	}
	return id, nil
}

// ReplaceItem gives replacement old's ID and tree slot. Paths to the ID
// follow the replacement. When old is not in the tree the replacement is
// still bound to m.
func (m *Manager) ReplaceItem(old, replacement *Item) error {
	id := old.id
	if id == 0 || m.items[id] != old {
		return ErrNotRegistered
	}
	if replacement.id != 0 || replacement.parent != nil || replacement.manager != nil {
		return ErrItemAttached
	}

	if parent := old.parent; parent != nil {
		i := parent.IndexOf(old)
		if i < 0 {
			panic(&TreeCorruptionError{Op: "ReplaceItem", Reason: "item missing from its parent"})
		}
		parent.children[i] = replacement
		replacement.setParent(parent)
		replacement.setManager(parent.manager)
		old.setParent(nil)
		old.setManager(nil)
	} else {
		replacement.setManager(m)
		old.setManager(nil)
	}

	old.id = 0
	replacement.id = id
	m.items[id] = replacement
	publish(m, TopicReplaced, ItemReplaced{Manager: m, ID: id, Old: old, New: replacement})
	return nil
}

// Clear unregisters every item and empties the tree.
func (m *Manager) Clear() {
	for _, id := range m.IDs() {
		m.Unregister(id)
	}
	for m.root.Len() > 0 {
		m.root.RemoveAt(m.root.Len() - 1)
	}
	m.currID = 0
}

func publish[T any](m *Manager, t topic.Topic, payload T) {
	// A publish error only means the event was malformed.
	_ = m.bus.Publish(event.NewEvent(t, payload, eventSource))
}
