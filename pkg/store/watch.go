package store

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/aretw0/bubbly/pkg/core"
)

// Watch returns a channel receiving every change published after the call. The channel is
// closed when ctx is done or the store is closed. A watcher that falls behind by more than
// the event buffer loses changes; Dropped counts them in State.
func (s *Store) Watch(ctx context.Context) <-chan core.Change {
	return s.broker.subscribe(ctx)
}

type broker struct {
	mu      sync.Mutex
	subs    map[int]chan core.Change
	next    int
	buffer  int
	closed  bool
	done    chan struct{}
	dropped atomic.Uint64
}

func newBroker(buffer int) *broker {
	return &broker{
		subs:   make(map[int]chan core.Change),
		buffer: buffer,
		done:   make(chan struct{}),
	}
}

func (b *broker) subscribe(ctx context.Context) <-chan core.Change {
	ch := make(chan core.Change, b.buffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch
	}
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			b.unsubscribe(id)
		case <-b.done:
		}
	}()
	return ch
}

func (b *broker) unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

func (b *broker) publish(c core.Change) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- c:
		default:
			b.dropped.Add(1)
		}
	}
}

func (b *broker) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.done)
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}

func (b *broker) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
