// Package event fans out post change notifications to subscribers.
package event

import (
	"sync"

	"github.com/hmans/posts/internal/post"
)

// Type represents the kind of change that happened to a post.
type Type int

const (
	// Created indicates a new post was stored.
	Created Type = iota
	// Updated indicates an existing post was modified.
	Updated
	// Deleted indicates a post was removed.
	Deleted
)

// String returns a human-readable representation of the event type.
func (t Type) String() string {
	switch t {
	case Created:
		return "created"
	case Updated:
		return "updated"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Event represents a change to a post.
type Event struct {
	Type   Type
	Post   *post.Post // nil for Deleted events
	PostID string     // always set
}

// subscriberBuffer is the number of batches a subscriber may fall behind
// before further batches are dropped for it.
const subscriberBuffer = 16

// Broker distributes batches of events to subscribers.
// The zero value is not usable; create one with NewBroker.
type Broker struct {
	mu     sync.RWMutex
	subs   map[uint64]chan []Event
	nextID uint64
	closed bool
}

// NewBroker creates a Broker with no subscribers.
func NewBroker() *Broker {
	return &Broker{subs: make(map[uint64]chan []Event)}
}

// Subscribe registers a new subscriber. It returns the channel batches are
// delivered on and a function that unsubscribes and closes the channel.
// Callers should defer the unsubscribe function.
func (b *Broker) Subscribe() (<-chan []Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan []Event, subscriberBuffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	b.nextID++
	id := b.nextID
	b.subs[id] = ch

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if c, ok := b.subs[id]; ok {
			close(c)
			delete(b.subs, id)
		}
	}
	return ch, unsubscribe
}

// Publish sends a batch to every subscriber without blocking.
// Slow subscribers have the batch dropped rather than stalling others.
func (b *Broker) Publish(events []Event) {
	if len(events) == 0 {
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- events:
		default:
		}
	}
}

// Subscribers returns the number of active subscribers.
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close closes every subscriber channel. Later subscriptions receive an
// already-closed channel.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subs {
		close(ch)
		delete(b.subs, id)
	}
	b.closed = true
}
