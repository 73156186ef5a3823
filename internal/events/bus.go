// Package events carries in-process change notifications from the mutating
// managers to live aggregation consumers, so a report view can re-derive
// itself as soon as any record it depends on changes.
//
// The bus is intentionally not durable; it exists for control flow inside
// the single app process.
package events

import (
	"context"
	"sync"
	"sync/atomic"
)

// Kind identifies which table a change touched.
type Kind string

const (
	KindPicker  Kind = "picker"
	KindOrchard Kind = "orchard"
	KindWorkday Kind = "workday"
	KindShift   Kind = "shift"
	KindCount   Kind = "count"
	KindWeek    Kind = "week"
	KindBulk    Kind = "bulk" // import/wipe: everything may have changed
)

// Change describes one mutation. WorkdayID and WeekID are set when the
// change can be attributed to a day or week, letting consumers skip
// re-aggregation of unrelated views.
type Change struct {
	Kind      Kind
	ID        string
	WorkdayID string
	WeekID    string
}

// Bus is a small in-process change bus.
//
// Publish blocks until every subscriber has accepted the event or the
// context is canceled; Close closes all subscription channels.
type Bus struct {
	mu        sync.RWMutex
	subs      map[uint64]chan Change
	nextID    atomic.Uint64
	isClosed  atomic.Bool
	closeOnce sync.Once
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[uint64]chan Change)}
}

// Subscribe registers a subscription with the given channel buffer. The
// returned cancel function removes the subscription and closes the channel.
func (b *Bus) Subscribe(buffer int) (<-chan Change, func()) {
	ch := make(chan Change, buffer)

	if b.isClosed.Load() {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID.Add(1)

	b.mu.Lock()
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			if _, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(ch)
			}
			b.mu.Unlock()
		})
	}
	return ch, cancel
}

// SubscriberCount returns the number of active subscriptions. Intended for
// tests and diagnostics.
func (b *Bus) SubscriberCount() int {
	if b == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Publish delivers a change to all subscribers. A nil bus is a valid no-op
// publisher, so the managers can run without live consumers attached.
func (b *Bus) Publish(ctx context.Context, c Change) error {
	if b == nil || b.isClosed.Load() {
		return nil
	}

	b.mu.RLock()
	targets := make([]chan Change, 0, len(b.subs))
	for _, ch := range b.subs {
		targets = append(targets, ch)
	}
	b.mu.RUnlock()

	for _, ch := range targets {
		select {
		case ch <- c:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Close closes the bus and all subscription channels.
func (b *Bus) Close() {
	b.closeOnce.Do(func() {
		b.isClosed.Store(true)

		b.mu.Lock()
		for id, ch := range b.subs {
			delete(b.subs, id)
			close(ch)
		}
		b.mu.Unlock()
	})
}
