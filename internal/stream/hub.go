// Package stream distributes engine state transitions to the rendering
// layer. It implements a fan-out pattern where store mutations are
// broadcast to multiple subscribers via channels.
package stream

import (
	"sync"
	"sync/atomic"
	"time"
)

// EventType classifies a state transition.
type EventType string

const (
	EventEntityUpdated    EventType = "entity_updated"
	EventNewsUpdated      EventType = "news_updated"
	EventCalendarUpdated  EventType = "calendar_updated"
	EventWatchlistChanged EventType = "watchlist_changed"
)

// Event is one observable state transition. EntityID is empty for the
// singleton feeds.
type Event struct {
	Type     EventType
	EntityID string
	At       time.Time
}

// subscriberBuffer is the per-subscriber channel depth. Renders that fall
// behind drop events rather than blocking store mutations.
const subscriberBuffer = 64

// Hub fans out state events to subscribers.
type Hub struct {
	mu          sync.RWMutex
	subscribers []chan Event
	closed      bool

	dropped atomic.Uint64
}

// NewHub creates a new event hub.
func NewHub() *Hub {
	return &Hub{}
}

// Subscribe returns a channel receiving every subsequent event. The
// channel is closed by Close.
func (h *Hub) Subscribe() <-chan Event {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return ch
	}
	h.subscribers = append(h.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (h *Hub) Unsubscribe(ch <-chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i, sub := range h.subscribers {
		if sub == ch {
			close(sub)
			h.subscribers = append(h.subscribers[:i], h.subscribers[i+1:]...)
			return
		}
	}
}

// Publish broadcasts an event to all subscribers. Non-blocking: slow
// consumers lose events instead of stalling the publisher.
func (h *Hub) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}

	for _, sub := range h.subscribers {
		select {
		case sub <- ev:
		default:
			h.dropped.Add(1)
		}
	}
}

// Close closes all subscriber channels. Publish becomes a no-op.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for _, sub := range h.subscribers {
		close(sub)
	}
	h.subscribers = nil
}

// SubscriberCount returns the number of active subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Dropped returns the number of events lost to slow consumers.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}
