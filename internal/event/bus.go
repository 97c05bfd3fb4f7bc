// Package event provides the pub/sub channel connecting the engine to UI
// sinks, built on watermill's gochannel transport.
package event

import (
	"sync"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Type identifies an event kind.
type Type string

const (
	TurnCreated      Type = "turn.created"
	TurnUpdated      Type = "turn.updated"
	ReasoningUpdated Type = "turn.reasoning"
	ProgressChanged  Type = "progress.changed"
	SessionSaved     Type = "session.saved"
	ResourceChanged  Type = "resource.changed"
)

// Event is one published occurrence.
type Event struct {
	Type Type `json:"type"`
	Data any  `json:"data"`
}

// Subscriber receives published events.
type Subscriber func(Event)

type entry struct {
	id uint64
	fn Subscriber
}

// Bus is a bounded-subscriber pub/sub channel. Subscribers register at
// component construction and unregister on teardown; publishing is
// synchronous so progress and turn updates are observed in order.
type Bus struct {
	mu     sync.RWMutex
	pubsub *gochannel.GoChannel

	byType map[Type][]entry
	all    []entry

	nextID uint64
	closed bool
}

// NewBus creates a bus backed by a watermill gochannel.
func NewBus() *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 64},
			watermill.NopLogger{},
		),
		byType: make(map[Type][]entry),
	}
}

// Subscribe registers fn for one event type and returns its unsubscribe
// function.
func (b *Bus) Subscribe(t Type, fn Subscriber) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return func() {}
	}
	id := atomic.AddUint64(&b.nextID, 1)
	b.byType[t] = append(b.byType[t], entry{id: id, fn: fn})
	return func() { b.unsubscribe(t, id) }
}

// SubscribeAll registers fn for every event type.
func (b *Bus) SubscribeAll(fn Subscriber) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return func() {}
	}
	id := atomic.AddUint64(&b.nextID, 1)
	b.all = append(b.all, entry{id: id, fn: fn})
	return func() { b.unsubscribeAll(id) }
}

func (b *Bus) unsubscribe(t Type, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.byType[t]
	for i, e := range subs {
		if e.id == id {
			b.byType[t] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

func (b *Bus) unsubscribeAll(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, e := range b.all {
		if e.id == id {
			b.all = append(b.all[:i], b.all[i+1:]...)
			return
		}
	}
}

// Publish delivers ev to every matching subscriber in the caller's
// goroutine. Push-only: no acknowledgement is collected.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	subs := make([]Subscriber, 0, len(b.byType[ev.Type])+len(b.all))
	for _, e := range b.byType[ev.Type] {
		subs = append(subs, e.fn)
	}
	for _, e := range b.all {
		subs = append(subs, e.fn)
	}
	b.mu.RUnlock()

	for _, fn := range subs {
		fn(ev)
	}
}

// Close tears the bus down; subsequent publishes are dropped.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.byType = make(map[Type][]entry)
	b.all = nil
	b.mu.Unlock()
	return b.pubsub.Close()
}
