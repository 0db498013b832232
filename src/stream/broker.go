// Package stream fans refresh events out to SSE subscribers.
package stream

import (
	"sync"

	"unify-server/src/models"
)

// Event is one SSE message: a named event plus its JSON-serializable payload.
type Event struct {
	Name string
	Data interface{}
}

const subscriberBuffer = 16

// Broker tracks subscribers and the last known status per source. New
// subscribers get the retained statuses replayed so a page load sees the
// current refresh state without waiting for the next event. Slow subscribers
// have events dropped rather than blocking broadcasters.
type Broker struct {
	mu          sync.Mutex
	subscribers map[chan Event]struct{}
	lastStatus  map[models.Source]models.StreamStatus
}

func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[chan Event]struct{}),
		lastStatus:  make(map[models.Source]models.StreamStatus),
	}
}

// Subscribe registers a new subscriber and replays retained statuses onto its
// channel. The returned cancel func must be called when the client is gone.
func (b *Broker) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	for _, status := range b.lastStatus {
		select {
		case ch <- Event{Name: "status", Data: status}:
		default:
		}
	}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subscribers[ch]; ok {
			delete(b.subscribers, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// BroadcastStatus pushes a refresh state change and retains it for replay.
func (b *Broker) BroadcastStatus(status models.StreamStatus) {
	b.mu.Lock()
	b.lastStatus[status.Source] = status
	b.send(Event{Name: "status", Data: status})
	b.mu.Unlock()
}

// BroadcastUpdate pushes fresh source data. A data update implies the source
// is ready, so the retained status is advanced too.
func (b *Broker) BroadcastUpdate(update models.StreamUpdate) {
	b.mu.Lock()
	b.lastStatus[update.Source] = models.StreamStatus{Source: update.Source, State: models.StreamReady}
	b.send(Event{Name: "update", Data: update})
	b.mu.Unlock()
}

// send delivers to every subscriber without blocking. Callers hold b.mu.
func (b *Broker) send(ev Event) {
	for ch := range b.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}

// SubscriberCount reports active subscribers.
func (b *Broker) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}
