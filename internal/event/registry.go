package event

import (
	"cmp"
	"slices"

	"github.com/dshills/splice/internal/event/topic"
)

// registry keeps subscriptions ordered by priority, then by the order in
// which they were added.
type registry struct {
	subs []*subscription
	byID map[string]*subscription
	seq  uint64
}

func newRegistry() *registry {
	return &registry{byID: make(map[string]*subscription)}
}

func (r *registry) add(t topic.Topic, h Handler, opts ...SubscriptionOption) *subscription {
	r.seq++
	sub := newSubscription(r.seq, t, h, opts...)

	i, _ := slices.BinarySearchFunc(r.subs, sub, compareSubs)
	r.subs = slices.Insert(r.subs, i, sub)
	r.byID[sub.id] = sub
	return sub
}

func (r *registry) remove(id string) bool {
	sub, ok := r.byID[id]
	if !ok {
		return false
	}
	delete(r.byID, id)
	r.subs = slices.DeleteFunc(r.subs, func(s *subscription) bool { return s == sub })
	return true
}

// match returns a snapshot of the active subscriptions whose pattern
// matches t, in delivery order.
func (r *registry) match(t topic.Topic) []*subscription {
	var out []*subscription
	for _, s := range r.subs {
		if s.IsActive() && t.Matches(s.topic) {
			out = append(out, s)
		}
	}
	return out
}

func (r *registry) countActive() int {
	n := 0
	for _, s := range r.subs {
		if s.IsActive() {
			n++
		}
	}
	return n
}

func compareSubs(a, b *subscription) int {
	if c := cmp.Compare(a.config.Priority, b.config.Priority); c != 0 {
		return c
	}
	return cmp.Compare(a.seq, b.seq)
}
