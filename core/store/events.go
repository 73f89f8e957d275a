package store

import (
	"sync"

	"github.com/ledgerwatch/log/v3"

	"github.com/ksubased/hub/core/message"
)

// Event kinds published by the stores. Delivery is synchronous, in
// subscription order, and strictly after the batch that caused the event
// has committed.
const (
	EventMergeMessage  = "mergeMessage"
	EventRevokeMessage = "revokeMessage"
	EventPruneMessage  = "pruneMessage"
)

// Subscriber receives one event. A returned error is logged; it never undoes
// the commit and does not stop delivery to later subscribers.
type Subscriber func(m *message.Message) error

// EventBus fans out store events to subscribers registered per kind.
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[string][]Subscriber
	log         log.Logger
}

func NewEventBus(logger log.Logger) *EventBus {
	if logger == nil {
		logger = log.New()
	}
	return &EventBus{
		subscribers: map[string][]Subscriber{},
		log:         logger,
	}
}

// Subscribe registers fn for the given event kind. Subscribers for one kind
// are invoked in the order they subscribed.
func (b *EventBus) Subscribe(kind string, fn Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[kind] = append(b.subscribers[kind], fn)
}

func (b *EventBus) publish(kind string, m *message.Message) {
	b.mu.RLock()
	subs := b.subscribers[kind]
	b.mu.RUnlock()
	for _, fn := range subs {
		b.deliver(kind, fn, m)
	}
}

func (b *EventBus) deliver(kind string, fn Subscriber, m *message.Message) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event subscriber panicked", "event", kind, "err", r)
		}
	}()
	if err := fn(m); err != nil {
		b.log.Warn("event subscriber failed", "event", kind, "err", err)
	}
}
