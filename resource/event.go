package resource

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// EventKind identifies what happened to a resource.
type EventKind int

// Broadcast event kinds.
const (
	// EventLoaded fires when a first-time load commits, successful
	// or not. The new state travels with the event.
	EventLoaded EventKind = iota

	// EventReloaded fires when an explicit reload commits.
	EventReloaded

	// EventRemoved fires when the manager drops an unused handle
	// from its table.
	EventRemoved
)

// String implements fmt.Stringer
func (k EventKind) String() string {
	switch k {
	case EventLoaded:
		return "Loaded"
	case EventReloaded:
		return "Reloaded"
	case EventRemoved:
		return "Removed"
	default:
		return "Unknown"
	}
}

// Event describes one committed state transition.
type Event struct {
	Kind     EventKind
	Identity Identity
	Status   Status
}

// Filter selects the events a subscription wants. A nil filter takes
// everything.
type Filter func(Event) bool

// Subscription is one receiver of broadcast events. Events arrive on
// Events in the order their transitions committed. There is no replay:
// a subscriber that needs the current state of a resource must query
// the handle after subscribing.
type Subscription struct {
	ch     chan Event
	filter Filter
	b      *Broadcaster
}

// Events returns the channel the subscription's events arrive on. The
// channel is closed by Close.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// Close removes the subscription and closes its channel.
func (s *Subscription) Close() {
	s.b.unsubscribe(s)
}

// Broadcaster delivers resource events to any number of subscribers.
// Delivery preserves commit order. A subscriber that does not drain
// its channel loses events rather than stalling load commits.
type Broadcaster struct {
	mu     sync.Mutex
	buffer int
	subs   []*Subscription
}

// NewBroadcaster creates a broadcaster whose subscriber channels hold
// up to buffer undelivered events each.
func NewBroadcaster(buffer int) *Broadcaster {
	if buffer <= 0 {
		buffer = 32
	}
	return &Broadcaster{buffer: buffer}
}

// Subscribe registers a new subscriber. Only events matching the
// filter are delivered; a nil filter matches all events.
func (b *Broadcaster) Subscribe(filter Filter) *Subscription {
	sub := &Subscription{
		ch:     make(chan Event, b.buffer),
		filter: filter,
		b:      b,
	}
	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()
	return sub
}

// Publish delivers an event to every matching subscriber.
func (b *Broadcaster) Publish(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subs {
		if sub.filter != nil && !sub.filter(event) {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			log.Warnf("dropping %s event for %s, subscriber is not keeping up", event.Kind, event.Identity)
		}
	}
}

func (b *Broadcaster) unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, candidate := range b.subs {
		if candidate == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			close(sub.ch)
			return
		}
	}
}
