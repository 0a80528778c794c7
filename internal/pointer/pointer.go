// Package pointer publishes raw pointer samples to any number of
// subscribers.
//
// Two independent streams exist: move (pointer position changes) and down
// (button presses). Samples are delivered in real-time order with no
// buffering or replay; a subscriber only sees samples published after it
// subscribed.
package pointer

import (
	"sync"
	"time"

	"github.com/jmylchreest/gitisland/internal/geometry"
)

// Sample is one pointer observation in screen space (bottom-left origin).
type Sample struct {
	Point geometry.Point
	At    time.Time
}

// Handler receives samples.
type Handler func(Sample)

// Source is the subscription side of a pointer stream. The returned cancel
// function unsubscribes; calling it more than once is a no-op.
type Source interface {
	OnMove(h Handler) (cancel func())
	OnDown(h Handler) (cancel func())
}

// Broadcaster fans samples out to subscribers. Publishing delivers
// synchronously, in subscription order, on the publisher's goroutine.
type Broadcaster struct {
	mu     sync.RWMutex
	nextID uint64
	move   map[uint64]Handler
	down   map[uint64]Handler
	order  []uint64
}

// NewBroadcaster creates an empty Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		move: make(map[uint64]Handler),
		down: make(map[uint64]Handler),
	}
}

// OnMove subscribes h to move samples.
func (b *Broadcaster) OnMove(h Handler) func() {
	return b.subscribe(b.move, h)
}

// OnDown subscribes h to down samples.
func (b *Broadcaster) OnDown(h Handler) func() {
	return b.subscribe(b.down, h)
}

func (b *Broadcaster) subscribe(set map[uint64]Handler, h Handler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	set[id] = h
	b.order = append(b.order, id)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(set, id)
			for i, v := range b.order {
				if v == id {
					b.order = append(b.order[:i], b.order[i+1:]...)
					break
				}
			}
			b.mu.Unlock()
		})
	}
}

// PublishMove delivers s to every move subscriber.
func (b *Broadcaster) PublishMove(s Sample) {
	for _, h := range b.snapshot(b.move) {
		h(s)
	}
}

// PublishDown delivers s to every down subscriber.
func (b *Broadcaster) PublishDown(s Sample) {
	for _, h := range b.snapshot(b.down) {
		h(s)
	}
}

// snapshot copies the handlers so they run without the lock held and may
// unsubscribe themselves.
func (b *Broadcaster) snapshot(set map[uint64]Handler) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	handlers := make([]Handler, 0, len(set))
	for _, id := range b.order {
		if h, ok := set[id]; ok {
			handlers = append(handlers, h)
		}
	}
	return handlers
}

// Subscribers returns the number of live move and down subscriptions.
func (b *Broadcaster) Subscribers() (move, down int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.move), len(b.down)
}
