package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/dshills/splice/internal/event/topic"
)

// Event is a typed event published on a Bus.
type Event[T any] struct {
	// Type is the event topic.
	Type topic.Topic

	// Payload carries the event data.
	Payload T

	// Metadata carries standard event information.
	Metadata Metadata
}

// Metadata holds information attached to every event.
type Metadata struct {
	// ID uniquely identifies the event instance.
	ID string

	// Timestamp is when the event was created.
	Timestamp time.Time

	// Source names the component that published the event.
	Source string
}

// NewEvent creates an event with fresh metadata.
func NewEvent[T any](t topic.Topic, payload T, source string) Event[T] {
	return Event[T]{
		Type:    t,
		Payload: payload,
		Metadata: Metadata{
			ID:        uuid.NewString(),
			Timestamp: time.Now(),
			Source:    source,
		},
	}
}

// EventTopic returns the event's topic for type-erased handling.
func (e Event[T]) EventTopic() topic.Topic {
	return e.Type
}

// TopicProvider is implemented by anything that can be published.
type TopicProvider interface {
	EventTopic() topic.Topic
}
