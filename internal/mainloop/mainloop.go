// Package mainloop provides the single execution context on which all
// interaction and animation state is mutated.
//
// Pointer sources, timer callbacks, D-Bus method calls and network fetches
// run on their own goroutines and must Post their results onto a
// Dispatcher before touching shared state.
package mainloop

import (
	"context"
	"log/slog"
	"sync"
)

// Dispatcher schedules work on the UI execution context. Post never blocks
// waiting for fn to run.
type Dispatcher interface {
	Post(fn func())
}

// DispatcherFunc adapts a plain function (for example glib.IdleAdd) to
// the Dispatcher interface.
type DispatcherFunc func(fn func())

// Post calls f(fn).
func (f DispatcherFunc) Post(fn func()) {
	f(fn)
}

// Immediate runs posted work synchronously on the caller's goroutine. It is
// meant for tests driven by a fake clock, where every callback already
// arrives on the test goroutine.
type Immediate struct{}

// Post runs fn immediately.
func (Immediate) Post(fn func()) {
	fn()
}

// Loop is a serial executor: work posted from any goroutine runs one item
// at a time, in posting order, on the loop goroutine.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	done    chan struct{}
	logger  *slog.Logger
	running bool
}

// NewLoop creates a Loop. Call Run to start executing posted work.
func NewLoop(logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Post enqueues fn. It is safe to call from any goroutine, including the
// loop goroutine itself.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run executes posted work until ctx is cancelled. Work still queued when
// ctx ends is discarded.
func (l *Loop) Run(ctx context.Context) {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return
	}
	l.running = true
	l.mu.Unlock()

	defer close(l.done)
	l.logger.Debug("main loop started")

	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("main loop stopped")
			return
		case <-l.wake:
		}

		for {
			l.mu.Lock()
			if len(l.queue) == 0 {
				l.mu.Unlock()
				break
			}
			fn := l.queue[0]
			l.queue[0] = nil
			l.queue = l.queue[1:]
			l.mu.Unlock()

			fn()

			if ctx.Err() != nil {
				break
			}
		}
	}
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
