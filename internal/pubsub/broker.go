package pubsub

import (
	"context"
	"sync"
)

const bufferSize = 64

// Broker fans events out to all current subscribers. Publishing never blocks;
// a subscriber that falls more than bufferSize events behind loses events.
type Broker[T any] struct {
	subs     map[chan Event[T]]struct{}
	mu       sync.RWMutex
	done     chan struct{}
	doneOnce sync.Once
}

func NewBroker[T any]() *Broker[T] {
	return &Broker[T]{
		subs: make(map[chan Event[T]]struct{}),
		done: make(chan struct{}),
	}
}

// Subscribe returns a channel of events. The subscription ends when ctx is
// canceled or the broker shuts down.
func (b *Broker[T]) Subscribe(ctx context.Context) <-chan Event[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event[T], bufferSize)

	select {
	case <-b.done:
		close(ch)
		return ch
	default:
	}

	b.subs[ch] = struct{}{}

	go func() {
		select {
		case <-ctx.Done():
		case <-b.done:
		}
		b.mu.Lock()
		delete(b.subs, ch)
		close(ch)
		b.mu.Unlock()
	}()

	return ch
}

func (b *Broker[T]) Publish(typ EventType, payload T) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	select {
	case <-b.done:
		return
	default:
	}

	event := Event[T]{Type: typ, Payload: payload}
	for ch := range b.subs {
		select {
		case ch <- event:
		default: // drop rather than block the publisher
		}
	}
}

// Shutdown ends all subscriptions.
func (b *Broker[T]) Shutdown() {
	b.doneOnce.Do(func() {
		close(b.done)
	})
}

// SubscriberCount reports how many subscriptions are active.
func (b *Broker[T]) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
