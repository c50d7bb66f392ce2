package event

// Priority orders handlers. Lower values run first.
type Priority int

const (
	// PriorityCritical is for handlers that keep domain caches coherent.
	PriorityCritical Priority = 0

	// PriorityHigh runs after critical handlers.
	PriorityHigh Priority = 100

	// PriorityNormal is the default.
	PriorityNormal Priority = 200

	// PriorityLow is for metrics and logging.
	PriorityLow Priority = 300
)

// String returns a human-readable priority name.
func (p Priority) String() string {
	switch {
	case p <= PriorityCritical:
		return "critical"
	case p <= PriorityHigh:
		return "high"
	case p <= PriorityNormal:
		return "normal"
	default:
		return "low"
	}
}

// Handler receives events. The event is type-erased; handlers type-assert.
type Handler interface {
	Handle(event any)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(event any)

// Handle implements Handler.
func (f HandlerFunc) Handle(event any) {
	f(event)
}

// TypedHandlerFunc handles events of one payload type.
type TypedHandlerFunc[T any] func(event Event[T])

// AsHandler converts a typed handler to a Handler. Events with a different
// payload type are skipped.
func AsHandler[T any](fn TypedHandlerFunc[T]) Handler {
	return HandlerFunc(func(event any) {
		if e, ok := event.(Event[T]); ok {
			fn(e)
		}
	})
}

// FilterFunc decides whether an event is delivered to a subscription.
type FilterFunc func(event any) bool

// Stats contains bus counters.
type Stats struct {
	EventsPublished   uint64
	EventsDelivered   uint64
	ActiveSubscribers int
}
