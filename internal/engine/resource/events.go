package resource

import (
	"github.com/dshills/splice/internal/event"
	"github.com/dshills/splice/internal/event/topic"
)

// Topics published on a manager's bus.
const (
	TopicAdded         topic.Topic = "resource.added"
	TopicRemoved       topic.Topic = "resource.removed"
	TopicReplaced      topic.Topic = "resource.replaced"
	TopicOnlineChanged topic.Topic = "resource.online"

	// TopicAll matches every resource topic.
	TopicAll topic.Topic = "resource.*"
)

// eventSource is the Metadata.Source of events published by a manager.
const eventSource = "resource.manager"

// ItemAdded is published after an item is registered.
type ItemAdded struct {
	Manager *Manager
	ID      uint64
	Item    *Item
}

// ItemRemoved is published after an item is unregistered. Item.ID() is
// already 0; ID carries the ID it had.
type ItemRemoved struct {
	Manager *Manager
	ID      uint64
	Item    *Item
}

// ItemReplaced is published after New takes over Old's ID and tree slot.
type ItemReplaced struct {
	Manager *Manager
	ID      uint64
	Old     *Item
	New     *Item
}

// OnlineStateChanged is published when a registered item goes offline or
// comes back online.
type OnlineStateChanged struct {
	Manager *Manager
	Item    *Item
	Online  bool
	ByUser  bool
}

// resourceID extracts the affected ID from any resource event payload.
func resourceID(ev any) (uint64, bool) {
	switch e := ev.(type) {
	case event.Event[ItemAdded]:
		return e.Payload.ID, true
	case event.Event[ItemRemoved]:
		return e.Payload.ID, true
	case event.Event[ItemReplaced]:
		return e.Payload.ID, true
	case event.Event[OnlineStateChanged]:
		return e.Payload.Item.ID(), true
	}
	return 0, false
}

// IDFilter returns a subscription filter that passes only events about id.
func IDFilter(id uint64) event.FilterFunc {
	return func(ev any) bool {
		got, ok := resourceID(ev)
		return ok && got == id
	}
}
