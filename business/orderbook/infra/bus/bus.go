// Package bus implements the in-process fan-out broadcast the merge
// engine publishes summaries onto and RPC subscribers read from. Go's
// standard library has no equivalent of tokio's broadcast channel, so
// this is hand-rolled: one bounded channel per subscriber, a
// non-blocking publish, and explicit Lagged(k) notification when a
// slow subscriber's channel fills up and publish has to drop rather
// than block.
package bus

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/ordermesh/orderbook-aggregator/business/orderbook/domain"
)

// Lagged reports that a subscriber missed Skipped summaries because its
// channel was full. It is delivered ahead of the next summary that
// fits, and delivery then continues from that newest summary.
type Lagged struct {
	Skipped uint64
}

func (l *Lagged) Error() string {
	return fmt.Sprintf("subscriber lagged, skipped %d summaries", l.Skipped)
}

// Item is one value delivered to a subscriber: either a summary or a
// Lagged notification, never both.
type Item struct {
	Summary domain.Summary
	Err     error
}

type subscriber struct {
	ch      chan Item
	dropped uint64
}

// Bus is a bounded-capacity fan-out broadcast of domain.Summary values.
type Bus struct {
	mu          sync.Mutex
	capacity    int
	subscribers map[string]*subscriber
	closed      bool
}

// New creates a bus where every subscriber channel is buffered to
// capacity.
func New(capacity int) *Bus {
	return &Bus{
		capacity:    capacity,
		subscribers: make(map[string]*subscriber),
	}
}

// Subscribe registers a new listener and returns its receive channel
// and an unsubscribe function. The channel is closed once unsubscribe
// is called or the bus itself is closed.
func (b *Bus) Subscribe() (id string, ch <-chan Item, unsubscribe func()) {
	id = uuid.NewString()
	sub := &subscriber{ch: make(chan Item, b.capacity)}

	b.mu.Lock()
	if !b.closed {
		b.subscribers[id] = sub
	} else {
		close(sub.ch)
	}
	b.mu.Unlock()

	return id, sub.ch, func() { b.unsubscribe(id) }
}

func (b *Bus) unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if sub, ok := b.subscribers[id]; ok {
		delete(b.subscribers, id)
		close(sub.ch)
	}
}

// Publish fans summary out to every subscriber without blocking. A
// subscriber whose channel is full has its drop counter incremented
// instead; the next time that subscriber's channel has room, it
// receives a Lagged notification (not the summaries it missed) and
// normal delivery resumes from there.
func (b *Bus) Publish(summary domain.Summary) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subscribers {
		if sub.dropped > 0 {
			select {
			case sub.ch <- Item{Err: &Lagged{Skipped: sub.dropped}}:
				sub.dropped = 0
			default:
				sub.dropped++
				continue
			}
		}

		select {
		case sub.ch <- Item{Summary: summary}:
		default:
			sub.dropped++
		}
	}
}

// Close closes every subscriber channel and marks the bus closed; any
// further Subscribe call returns an already-closed channel.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for id, sub := range b.subscribers {
		close(sub.ch)
		delete(b.subscribers, id)
	}
}
