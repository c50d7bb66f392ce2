package event

import (
	"github.com/dshills/splice/internal/event/topic"
)

// Bus delivers events synchronously to subscribers.
type Bus interface {
	// Publish delivers event to all matching subscriptions before returning.
	Publish(event any) error

	// Subscribe registers a handler for a topic pattern.
	Subscribe(pattern topic.Topic, h Handler, opts ...SubscriptionOption) (Subscription, error)

	// SubscribeFunc registers a function handler.
	SubscribeFunc(pattern topic.Topic, fn HandlerFunc, opts ...SubscriptionOption) (Subscription, error)

	// Unsubscribe cancels and removes a subscription.
	Unsubscribe(sub Subscription) error

	// Pause drops published events until Resume.
	Pause()
	Resume()
	IsPaused() bool

	Stats() Stats
}

type bus struct {
	registry *registry
	paused   bool

	published uint64
	delivered uint64
}

// NewBus creates an empty bus.
func NewBus() Bus {
	return &bus{registry: newRegistry()}
}

func (b *bus) Publish(event any) error {
	tp, ok := event.(TopicProvider)
	if !ok || tp.EventTopic() == "" {
		return ErrInvalidEvent
	}
	if b.paused {
		return nil
	}

	b.published++

	// The snapshot keeps delivery stable when handlers subscribe or
	// unsubscribe while the event is being delivered.
	for _, sub := range b.registry.match(tp.EventTopic()) {
		if !sub.shouldDeliver(event) {
			continue
		}
		if sub.config.Once {
			sub.Cancel()
			b.registry.remove(sub.id)
		}
		sub.handler.Handle(event)
		b.delivered++
	}
	return nil
}

func (b *bus) Subscribe(pattern topic.Topic, h Handler, opts ...SubscriptionOption) (Subscription, error) {
	if h == nil {
		return nil, ErrNilHandler
	}
	if !pattern.IsValid() {
		return nil, ErrInvalidTopic
	}
	return b.registry.add(pattern, h, opts...), nil
}

func (b *bus) SubscribeFunc(pattern topic.Topic, fn HandlerFunc, opts ...SubscriptionOption) (Subscription, error) {
	if fn == nil {
		return nil, ErrNilHandler
	}
	return b.Subscribe(pattern, fn, opts...)
}

func (b *bus) Unsubscribe(sub Subscription) error {
	if sub == nil {
		return ErrInvalidSubscription
	}
	sub.Cancel()
	if !b.registry.remove(sub.ID()) {
		return ErrSubscriptionNotFound
	}
	return nil
}

func (b *bus) Pause()         { b.paused = true }
func (b *bus) Resume()        { b.paused = false }
func (b *bus) IsPaused() bool { return b.paused }

func (b *bus) Stats() Stats {
	return Stats{
		EventsPublished:   b.published,
		EventsDelivered:   b.delivered,
		ActiveSubscribers: b.registry.countActive(),
	}
}
