package anim

import (
	"sync"
	"time"

	"github.com/jmylchreest/gitisland/internal/clock"
	"github.com/jmylchreest/gitisland/internal/mainloop"
)

// Loading animation timing.
const (
	DefaultPeriod = 30 * time.Millisecond
	DefaultTotal  = 3 * time.Second
)

// TickFunc is called on every tick with the tick time and the time elapsed
// since Start.
type TickFunc func(now time.Time, elapsed time.Duration)

// Loop ticks every period until total has elapsed.
//
// The first tick whose elapsed time reaches total stops the loop and calls
// the done callback instead of the tick callback. A Loop stopped manually
// never calls done.
type Loop struct {
	mu         sync.Mutex
	clock      clock.Clock
	dispatcher mainloop.Dispatcher
	period     time.Duration
	total      time.Duration

	gen     uint64
	running bool
	started time.Time
	timer   *clock.Timer
	onTick  TickFunc
	onDone  func()
}

// NewLoop creates a stopped Loop.
func NewLoop(c clock.Clock, d mainloop.Dispatcher, period, total time.Duration) *Loop {
	if period <= 0 {
		period = DefaultPeriod
	}
	if total <= 0 {
		total = DefaultTotal
	}
	return &Loop{clock: c, dispatcher: d, period: period, total: total}
}

// Start begins ticking. A running loop is restarted from zero; its done
// callback is not called.
func (l *Loop) Start(onTick TickFunc, onDone func()) {
	l.mu.Lock()
	l.stopLocked()
	l.gen++
	l.running = true
	l.started = l.clock.Now()
	l.onTick = onTick
	l.onDone = onDone
	gen := l.gen
	l.mu.Unlock()

	l.arm(gen)
}

func (l *Loop) arm(gen uint64) {
	t := l.clock.AfterFunc(l.period, func() {
		l.dispatcher.Post(func() { l.tick(gen) })
	})

	l.mu.Lock()
	if l.gen == gen && l.running {
		l.timer = t
	}
	l.mu.Unlock()
}

func (l *Loop) tick(gen uint64) {
	l.mu.Lock()
	if gen != l.gen || !l.running {
		l.mu.Unlock()
		return
	}
	now := l.clock.Now()
	elapsed := now.Sub(l.started)

	if elapsed >= l.total {
		done := l.onDone
		l.stopLocked()
		l.mu.Unlock()
		if done != nil {
			done()
		}
		return
	}

	onTick := l.onTick
	l.mu.Unlock()

	if onTick != nil {
		onTick(now, elapsed)
	}

	// onTick may have stopped or restarted the loop.
	l.mu.Lock()
	again := gen == l.gen && l.running
	l.mu.Unlock()
	if again {
		l.arm(gen)
	}
}

// Stop halts the loop and forgets its callbacks. It is idempotent.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopLocked()
}

func (l *Loop) stopLocked() {
	if !l.running {
		return
	}
	l.gen++
	l.running = false
	l.timer.Stop()
	l.timer = nil
	l.onTick = nil
	l.onDone = nil
}

// Running reports whether the loop is ticking.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}
