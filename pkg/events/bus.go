// Package events provides the controller's synchronous notification bus
// and an append-only journal of emitted events.
package events

import (
	"sync"

	"github.com/google/uuid"
)

// Well-known event names emitted by the controller core.
const (
	EventStateChange   = "state-change"
	EventRejected      = "rejected"
	EventRegistered    = "registered"
	EventKeyRegistered = "key-registered"
	EventUpdateStaged  = "update-staged"
	EventUpdateApplied = "update-applied"
	EventUpdateFailed  = "update-failed"
	EventReset         = "reset"
)

// Payload is the event payload shape shared by all controller events.
type Payload map[string]interface{}

// Handler receives a dispatched event.
type Handler func(event string, payload Payload)

// Unsubscribe removes the subscription it was returned for. Safe to call
// more than once.
type Unsubscribe func()

type subscription struct {
	token   string
	handler Handler
}

// Bus dispatches named events to subscribers in registration order.
//
// Dispatch is synchronous: handlers run on the emitting goroutine, inside
// the emitting operation's call stack. Handlers must not trigger further
// controller operations; the bus is not reentrancy-safe.
type Bus struct {
	mu   sync.RWMutex
	subs map[string][]subscription
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		subs: make(map[string][]subscription),
	}
}

// On subscribes handler to the named event and returns an unsubscribe
// token.
func (b *Bus) On(event string, handler Handler) Unsubscribe {
	b.mu.Lock()
	defer b.mu.Unlock()

	token := uuid.NewString()
	b.subs[event] = append(b.subs[event], subscription{token: token, handler: handler})
	return func() {
		b.off(event, token)
	}
}

func (b *Bus) off(event, token string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[event]
	for i, s := range subs {
		if s.token == token {
			b.subs[event] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Emit dispatches the event to every subscriber in registration order.
func (b *Bus) Emit(event string, payload Payload) {
	b.mu.RLock()
	subs := make([]subscription, len(b.subs[event]))
	copy(subs, b.subs[event])
	b.mu.RUnlock()

	for _, s := range subs {
		s.handler(event, payload)
	}
}
