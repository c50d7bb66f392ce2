package event

import (
	"github.com/google/uuid"

	"github.com/dshills/splice/internal/event/topic"
)

// SubscriptionState represents the state of a subscription.
type SubscriptionState int

const (
	// SubscriptionStateActive means the subscription receives events.
	SubscriptionStateActive SubscriptionState = iota

	// SubscriptionStatePaused means delivery is temporarily suspended.
	SubscriptionStatePaused

	// SubscriptionStateCancelled means the subscription is permanently closed.
	SubscriptionStateCancelled
)

// String returns a human-readable state name.
func (s SubscriptionState) String() string {
	switch s {
	case SubscriptionStateActive:
		return "active"
	case SubscriptionStatePaused:
		return "paused"
	case SubscriptionStateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Subscription is a handle to a registered handler.
type Subscription interface {
	// ID returns the unique subscription identifier.
	ID() string

	// Topic returns the subscribed topic pattern.
	Topic() topic.Topic

	// State returns the current state.
	State() SubscriptionState

	// IsActive returns true if the subscription receives events.
	IsActive() bool

	// Pause suspends delivery until Resume.
	Pause()

	// Resume restarts delivery after Pause.
	Resume()

	// Cancel stops delivery permanently. Use Bus.Unsubscribe to also drop
	// the registration.
	Cancel()
}

// SubscriptionConfig holds per-subscription settings.
type SubscriptionConfig struct {
	Priority Priority
	Filter   FilterFunc
	Once     bool
}

// SubscriptionOption configures a subscription.
type SubscriptionOption func(*SubscriptionConfig)

// WithPriority sets the subscription priority.
func WithPriority(p Priority) SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Priority = p
	}
}

// WithFilter sets a delivery predicate.
func WithFilter(f FilterFunc) SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Filter = f
	}
}

// WithOnce cancels the subscription after its first delivery.
func WithOnce() SubscriptionOption {
	return func(c *SubscriptionConfig) {
		c.Once = true
	}
}

type subscription struct {
	id      string
	seq     uint64
	topic   topic.Topic
	handler Handler
	config  SubscriptionConfig
	state   SubscriptionState
}

func newSubscription(seq uint64, t topic.Topic, h Handler, opts ...SubscriptionOption) *subscription {
	cfg := SubscriptionConfig{Priority: PriorityNormal}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &subscription{
		id:      uuid.NewString(),
		seq:     seq,
		topic:   t,
		handler: h,
		config:  cfg,
	}
}

func (s *subscription) ID() string               { return s.id }
func (s *subscription) Topic() topic.Topic       { return s.topic }
func (s *subscription) State() SubscriptionState { return s.state }
func (s *subscription) IsActive() bool           { return s.state == SubscriptionStateActive }
func (s *subscription) Cancel()                  { s.state = SubscriptionStateCancelled }

func (s *subscription) Pause() {
	if s.state == SubscriptionStateActive {
		s.state = SubscriptionStatePaused
	}
}

func (s *subscription) Resume() {
	if s.state == SubscriptionStatePaused {
		s.state = SubscriptionStateActive
	}
}

func (s *subscription) shouldDeliver(event any) bool {
	if !s.IsActive() {
		return false
	}
	return s.config.Filter == nil || s.config.Filter(event)
}
