// Package anim provides the two timer primitives the island is animated
// with: a one-shot cancellable task and a fixed-period loop with a total
// duration.
//
// Both run their callbacks on a mainloop.Dispatcher and use a generation
// counter, so a timer that fires after it was cancelled or rescheduled is
// dropped instead of running stale work.
package anim

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/gitisland/internal/clock"
	"github.com/jmylchreest/gitisland/internal/mainloop"
)

// Deferred owns at most one pending delayed call.
type Deferred struct {
	mu         sync.Mutex
	clock      clock.Clock
	dispatcher mainloop.Dispatcher
	logger     *slog.Logger
	name       string

	gen     uint64
	timer   *clock.Timer
	pending bool
}

// NewDeferred creates an idle Deferred. name is only used in log output.
func NewDeferred(c clock.Clock, d mainloop.Dispatcher, logger *slog.Logger, name string) *Deferred {
	if logger == nil {
		logger = slog.Default()
	}
	return &Deferred{clock: c, dispatcher: d, logger: logger, name: name}
}

// Schedule cancels any pending call and arms fn to run after delay.
func (d *Deferred) Schedule(delay time.Duration, fn func()) {
	d.mu.Lock()
	d.gen++
	gen := d.gen
	d.timer.Stop()
	d.pending = true
	d.mu.Unlock()

	// The timer handle is stored after AfterFunc returns; a fake clock may
	// fire a zero delay synchronously, which the generation check tolerates.
	t := d.clock.AfterFunc(delay, func() {
		d.dispatcher.Post(func() { d.fire(gen, fn) })
	})

	d.mu.Lock()
	if d.gen == gen && d.pending {
		d.timer = t
	}
	d.mu.Unlock()
}

func (d *Deferred) fire(gen uint64, fn func()) {
	d.mu.Lock()
	if gen != d.gen || !d.pending {
		d.mu.Unlock()
		d.logger.Debug("dropped stale timer", "timer", d.name)
		return
	}
	d.pending = false
	d.timer = nil
	d.mu.Unlock()

	fn()
}

// Cancel drops the pending call, if any. Cancelling an idle Deferred is a
// no-op.
func (d *Deferred) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.pending {
		return
	}
	d.gen++
	d.pending = false
	d.timer.Stop()
	d.timer = nil
}

// Pending reports whether a call is armed and has not run yet.
func (d *Deferred) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}
