// Package event provides the synchronous event bus used by domain objects
// to notify observers of structural changes.
//
// Every bus is owned by a single logical actor (for example one
// resource manager). Publish delivers the event to every matching
// subscription before it returns, in priority order and, within the same
// priority, in subscription order. Handlers therefore always observe
// state consistent with the publisher at the moment of the call.
//
// A bus is not safe for concurrent use. All calls must come from the
// goroutine that mutates the owning object.
//
// # Topics
//
// Events use hierarchical dot topics; subscriptions may use wildcards:
//
//	resource.added   - exact topic
//	resource.*       - one segment
//	resource.**      - any depth
//
// # Usage
//
//	bus := event.NewBus()
//	sub, _ := bus.Subscribe("resource.added", event.AsHandler(
//	    func(e event.Event[ItemAdded]) { ... }))
//	defer bus.Unsubscribe(sub)
//
//	bus.Publish(event.NewEvent(topic.Topic("resource.added"), ItemAdded{...}, "manager"))
package event
