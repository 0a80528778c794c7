package pointer

import (
	"sync"
	"time"

	"github.com/jmylchreest/gitisland/internal/clock"
)

// DefaultThrottleWindow bounds move handling to about 20 samples per second.
const DefaultThrottleWindow = 50 * time.Millisecond

// Throttler coalesces a sample stream to at most one delivery per window,
// always delivering the most recent sample.
//
// The first sample after a quiet period is delivered at once and opens a
// window. Samples arriving inside the window overwrite a single pending
// slot; when the window closes the pending sample, if any, is delivered and
// a new window opens.
type Throttler struct {
	mu      sync.Mutex
	clock   clock.Clock
	window  time.Duration
	deliver Handler

	timer   *clock.Timer
	pending *Sample
	stopped bool
}

// Throttle creates a Throttler delivering to h.
func Throttle(c clock.Clock, window time.Duration, h Handler) *Throttler {
	if window <= 0 {
		window = DefaultThrottleWindow
	}
	return &Throttler{clock: c, window: window, deliver: h}
}

// Push offers a sample.
func (t *Throttler) Push(s Sample) {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	if t.timer != nil {
		t.pending = &s
		t.mu.Unlock()
		return
	}
	t.openWindowLocked()
	t.mu.Unlock()

	t.deliver(s)
}

func (t *Throttler) openWindowLocked() {
	t.timer = t.clock.AfterFunc(t.window, t.closeWindow)
}

func (t *Throttler) closeWindow() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	s := t.pending
	t.pending = nil
	if s == nil {
		t.timer = nil
		t.mu.Unlock()
		return
	}
	t.openWindowLocked()
	t.mu.Unlock()

	t.deliver(*s)
}

// Stop cancels the open window and drops any pending sample. Further
// pushes are ignored.
func (t *Throttler) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	t.pending = nil
	t.timer.Stop()
	t.timer = nil
}
