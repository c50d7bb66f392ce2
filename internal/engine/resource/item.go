package resource

// Item is a registered asset. Its concrete kind is given by Content.
type Item struct {
	nodeBase

	id            uint64
	online        bool
	offlineByUser bool
	content       Content
}

// NewItem creates an online, unregistered item.
func NewItem(name string, content Content) *Item {
	if content == nil {
		panic(ErrNilContent)
	}
	return &Item{
		nodeBase: nodeBase{name: name},
		online:   true,
		content:  content,
	}
}

// ID returns the registered ID, or 0 if the item is not registered.
func (i *Item) ID() uint64 {
	return i.id
}

// Content returns the kind-specific payload.
func (i *Item) Content() Content {
	return i.content
}

// FactoryID returns the serialization key of the item's kind.
func (i *Item) FactoryID() string {
	return i.content.FactoryID()
}

// IsOnline returns true if the item's backing data is usable.
func (i *Item) IsOnline() bool {
	return i.online
}

// IsOfflineByUser returns true if the user, rather than the system,
// took the item offline.
func (i *Item) IsOfflineByUser() bool {
	return i.offlineByUser
}

// IsRegistered returns true if the item's manager indexes it under its ID.
func (i *Item) IsRegistered() bool {
	if i.id == 0 || i.manager == nil {
		return false
	}
	reg, ok := i.manager.items[i.id]
	return ok && reg == i
}

// Disable takes the item offline. Calling it on an offline item is a no-op.
func (i *Item) Disable(byUser bool) {
	if !i.online {
		return
	}
	i.online = false
	i.offlineByUser = byUser
	i.notifyOnline()
}

// Enable brings the item back online. Calling it on an online item is a
// no-op.
func (i *Item) Enable() {
	if i.online {
		return
	}
	i.online = true
	i.offlineByUser = false
	i.notifyOnline()
}

func (i *Item) notifyOnline() {
	if i.manager != nil && i.IsRegistered() {
		publish(i.manager, TopicOnlineChanged, OnlineStateChanged{
			Manager: i.manager,
			Item:    i,
			Online:  i.online,
			ByUser:  i.offlineByUser,
		})
	}
}

func (i *Item) setManager(m *Manager) {
	old := i.manager
	if old == m {
		return
	}
	i.manager = m
	if obs, ok := i.content.(ManagerObserver); ok {
		obs.OnManagerChanged(i, old, m)
	}
}

// Clone returns an unregistered deep copy of the item.
func (i *Item) Clone() *Item {
	c := NewItem(i.name, i.content.Clone())
	c.online = i.online
	c.offlineByUser = i.offlineByUser
	return c
}

func (i *Item) cloneNode() Node {
	return i.Clone()
}
