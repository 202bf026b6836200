// Package stream fans collection-change notifications out to live
// subscribers. Every subscriber watches exactly one collection and receives
// a signal per change; the HTTP layer turns each signal into a full fresh
// snapshot of that collection.
package stream

import (
	"sync"
	"sync/atomic"
)

// Collection names the three live-subscribable record sets.
type Collection string

const (
	CollectionAlerts   Collection = "flood_alerts"
	CollectionRequests Collection = "resource_requests"
	CollectionOffers   Collection = "resource_offers"
)

type subscriber struct {
	collection Collection
	ch         chan Collection
}

type Broadcaster struct {
	subscribers map[uint64]subscriber
	nextID      atomic.Uint64
	mu          sync.RWMutex
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[uint64]subscriber),
	}
}

// Subscribe registers a watcher for one collection. The returned channel
// carries one value per change; it is closed by Unsubscribe or Close.
func (b *Broadcaster) Subscribe(c Collection) (uint64, chan Collection) {
	id := b.nextID.Add(1)
	ch := make(chan Collection, 16)

	b.mu.Lock()
	b.subscribers[id] = subscriber{collection: c, ch: ch}
	b.mu.Unlock()

	return id, ch
}

func (b *Broadcaster) Unsubscribe(id uint64) {
	b.mu.Lock()
	if sub, ok := b.subscribers[id]; ok {
		close(sub.ch)
		delete(b.subscribers, id)
	}
	b.mu.Unlock()
}

// Broadcast notifies every subscriber of the changed collection. Slow
// subscribers are skipped; they will coalesce the change into whatever
// signal is already buffered.
func (b *Broadcaster) Broadcast(c Collection) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subscribers {
		if sub.collection != c {
			continue
		}
		select {
		case sub.ch <- c:
		default:
		}
	}
}

func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close closes all subscriber channels, causing open streams to exit
// gracefully.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, sub := range b.subscribers {
		close(sub.ch)
		delete(b.subscribers, id)
	}
}
