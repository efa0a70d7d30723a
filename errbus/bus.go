// Package errbus implements the process-wide error broadcast used by every
// data-access component. It is a single-slot signal: the current error is
// exactly the last published message, and an empty string means "no error".
package errbus

import "sync"

// Handler receives each published message. Handlers are invoked
// synchronously, in subscription order.
type Handler func(message string)

type subscriber struct {
	id int
	fn Handler
}

// Bus broadcasts human-readable failure messages to any number of
// subscribers. There is no buffering: a late subscriber only sees messages
// published during its own subscription window (plus Current on demand).
type Bus struct {
	mu      sync.Mutex
	current string
	subs    []subscriber
	nextID  int
}

// New creates an empty bus with no current error.
func New() *Bus {
	return &Bus{}
}

// Publish stores message as the current error and notifies all subscribers
// in subscription order.
func (b *Bus) Publish(message string) {
	b.mu.Lock()
	b.current = message
	// Snapshot so a handler may unsubscribe (itself or others) mid-delivery.
	subs := make([]subscriber, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, s := range subs {
		s.fn(message)
	}
}

// Clear publishes the empty string, dismissing the current error.
func (b *Bus) Clear() {
	b.Publish("")
}

// Current returns the last published message, or "" when no error is active.
func (b *Bus) Current() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// Subscribe attaches fn and returns the matching unsubscribe function.
// Consumers must unsubscribe when their lifetime ends; the bus itself lives
// for the whole process.
func (b *Bus) Subscribe(fn Handler) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs = append(b.subs, subscriber{id: id, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				return
			}
		}
	}
}
