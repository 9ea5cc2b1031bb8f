// Package events allows for the registering and receiving of events.
package events

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// DefaultBacklog is the number of undelivered events a subscriber can hold
// before new events are dropped for it.
const DefaultBacklog = 100

// Subscription is what a receiver gets back from Acquire. Events are read
// from C, which is closed on Release or Shutdown.
type Subscription[T any] struct {
	ID     string
	C      <-chan T
	ch     chan T
	missed atomic.Uint64
}

// Missed returns the number of events dropped for this subscriber since the
// last call and resets the count.
func (s *Subscription[T]) Missed() uint64 {
	return s.missed.Swap(0)
}

// =============================================================================

// Events maintains a mapping of unique id and subscriptions so goroutines
// can register and receive events.
type Events[T any] struct {
	m       map[string]*Subscription[T]
	mu      sync.RWMutex
	backlog int
}

// New constructs an events for registering and receiving events. Each
// subscriber can fall behind by up to backlog events.
func New[T any](backlog int) *Events[T] {
	if backlog < 1 {
		backlog = DefaultBacklog
	}

	return &Events[T]{
		m:       make(map[string]*Subscription[T]),
		backlog: backlog,
	}
}

// Shutdown closes and removes all subscriptions that were provided by
// the call to Acquire.
func (evt *Events[T]) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, sub := range evt.m {
		delete(evt.m, id)
		close(sub.ch)
	}
}

// Acquire takes a unique id and returns a subscription that can be used
// to receive events. Acquiring an id twice returns the same subscription.
func (evt *Events[T]) Acquire(id string) *Subscription[T] {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	if sub, exists := evt.m[id]; exists {
		return sub
	}

	ch := make(chan T, evt.backlog)
	sub := Subscription[T]{
		ID: id,
		C:  ch,
		ch: ch,
	}
	evt.m[id] = &sub

	return &sub
}

// Release closes and removes the subscription that was provided by
// the call to Acquire.
func (evt *Events[T]) Release(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	sub, exists := evt.m[id]
	if !exists {
		return fmt.Errorf("id %q does not exist", id)
	}

	delete(evt.m, id)
	close(sub.ch)
	return nil
}

// Subscribers returns the number of active subscriptions.
func (evt *Events[T]) Subscribers() int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	return len(evt.m)
}

// Send signals a value to every registered subscription. Send will not
// block waiting for a receiver; a subscriber whose backlog is full misses
// the value. The number of subscribers that missed it is returned.
func (evt *Events[T]) Send(v T) int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	var dropped int
	for _, sub := range evt.m {
		select {
		case sub.ch <- v:
		default:
			sub.missed.Add(1)
			dropped++
		}
	}

	return dropped
}
