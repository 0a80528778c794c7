// Package reveal runs the one-time loading animation over the activity
// grid: random cells flash and fade for a few seconds before the grid
// settles to its data colours.
//
// The animation plays only the first time a grid is ever shown. A FlagStore
// remembers that across restarts.
package reveal

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jmylchreest/gitisland/internal/activity"
	"github.com/jmylchreest/gitisland/internal/anim"
	"github.com/jmylchreest/gitisland/internal/clock"
	"github.com/jmylchreest/gitisland/internal/mainloop"
	"github.com/jmylchreest/gitisland/internal/store"
)

// DefaultFade is how long an illuminated cell takes to fade out.
const DefaultFade = 800 * time.Millisecond

// Phase is the animation phase of the grid.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAnimating
	PhaseSettled
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAnimating:
		return "animating"
	case PhaseSettled:
		return "settled"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Option configures a Reveal.
type Option func(*Reveal)

// WithClock sets the time source.
func WithClock(c clock.Clock) Option { return func(r *Reveal) { r.clock = c } }

// WithDispatcher sets the execution context ticks run on.
func WithDispatcher(d mainloop.Dispatcher) Option { return func(r *Reveal) { r.dispatcher = d } }

// WithRand sets the random source used to pick cells.
func WithRand(rng *rand.Rand) Option { return func(r *Reveal) { r.rng = rng } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reveal) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithTiming overrides the tick period, total duration and fade window.
// Zero values keep the defaults.
func WithTiming(period, total, fade time.Duration) Option {
	return func(r *Reveal) {
		if period > 0 {
			r.period = period
		}
		if total > 0 {
			r.total = total
		}
		if fade > 0 {
			r.fade = fade
		}
	}
}

// Disabled skips the animation without consulting the flag store.
func Disabled() Option { return func(r *Reveal) { r.disabled = true } }

// Reveal owns the animation state for one grid view.
type Reveal struct {
	flag       store.FlagStore
	clock      clock.Clock
	dispatcher mainloop.Dispatcher
	rng        *rand.Rand
	logger     *slog.Logger
	period     time.Duration
	total      time.Duration
	fade       time.Duration
	disabled   bool
	loop       *anim.Loop

	mu        sync.Mutex
	gated     bool // flag consulted; later reveals never animate
	grid      *activity.Grid
	boxes     *BoxSet
	phase     Phase
	startedAt time.Time
	settled   []func()
	onTick    []func()
}

// New creates an idle Reveal.
func New(flag store.FlagStore, opts ...Option) *Reveal {
	r := &Reveal{
		flag:       flag,
		clock:      clock.Real(),
		dispatcher: mainloop.Immediate{},
		logger:     slog.Default(),
		period:     anim.DefaultPeriod,
		total:      anim.DefaultTotal,
		fade:       DefaultFade,
		boxes:      NewBoxSet(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.rng == nil {
		r.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	r.loop = anim.NewLoop(r.clock, r.dispatcher, r.period, r.total)
	return r
}

// OnSettled registers fn to run when an animation finishes.
func (r *Reveal) OnSettled(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settled = append(r.settled, fn)
}

// OnTick registers fn to run after every animation tick, so a host can
// redraw.
func (r *Reveal) OnTick(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onTick = append(r.onTick, fn)
}

// Show displays grid. The first grid ever shown animates; every other one
// settles immediately. It returns the resulting phase.
func (r *Reveal) Show(grid *activity.Grid) Phase {
	r.loop.Stop()

	r.mu.Lock()
	r.grid = grid
	r.boxes.Clear()
	animate := grid.Len() > 0 && r.shouldAnimateLocked()
	if !animate {
		r.phase = PhaseSettled
		r.mu.Unlock()
		return PhaseSettled
	}
	r.phase = PhaseAnimating
	r.startedAt = r.clock.Now()
	r.mu.Unlock()

	r.logger.Debug("starting reveal animation", "cells", grid.Len(), "duration", r.total)
	r.loop.Start(func(now time.Time, _ time.Duration) { r.Tick(now) }, r.finish)
	return PhaseAnimating
}

// shouldAnimateLocked reads the flag once per process and marks it when
// the animation is about to play.
func (r *Reveal) shouldAnimateLocked() bool {
	if r.gated {
		return false
	}
	r.gated = true

	if r.disabled {
		return false
	}

	shown, err := r.flag.AnimationShown()
	if err != nil {
		r.logger.Warn("failed to read animation flag, skipping animation", "error", err)
		return false
	}
	if shown {
		return false
	}

	if err := r.flag.MarkAnimationShown(); err != nil {
		r.logger.Warn("failed to persist animation flag", "error", err)
	}
	return true
}

// Tick advances the animation to now. It is driven by the loop but may be
// called directly.
func (r *Reveal) Tick(now time.Time) {
	r.mu.Lock()
	if r.phase != PhaseAnimating {
		r.mu.Unlock()
		return
	}
	if now.Sub(r.startedAt) >= r.total {
		r.mu.Unlock()
		r.finish()
		return
	}

	if n := len(r.grid.Weeks); n > 0 {
		week := r.rng.IntN(n)
		if days := len(r.grid.Weeks[week].Days); days > 0 {
			r.boxes.Add(activity.Cell{Week: week, Day: r.rng.IntN(days)}, now)
		}
	}
	r.boxes.Decay(now, r.fade)
	listeners := r.onTick
	r.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

func (r *Reveal) finish() {
	r.loop.Stop()

	r.mu.Lock()
	if r.phase != PhaseAnimating {
		r.mu.Unlock()
		return
	}
	r.phase = PhaseSettled
	r.boxes.Clear()
	listeners := r.settled
	r.mu.Unlock()

	r.logger.Debug("reveal animation settled")
	r.dispatcher.Post(func() {
		for _, fn := range listeners {
			fn()
		}
	})
}

// Hide stops any animation and forgets the grid.
func (r *Reveal) Hide() {
	r.loop.Stop()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.boxes.Clear()
	r.grid = nil
	r.phase = PhaseIdle
}

// ResetGate lets the next Show consult the flag store again, for when the
// flag was cleared while running.
func (r *Reveal) ResetGate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gated = false
}

// Phase returns the current phase.
func (r *Reveal) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// Grid returns the grid being shown, or nil.
func (r *Reveal) Grid() *activity.Grid {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.grid
}

// Boxes returns a snapshot of the fading cells.
func (r *Reveal) Boxes() []Box {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.boxes.Snapshot()
}

// CellColor returns the fill for the cell at c holding day. While
// animating, fading cells are grey and every other cell is empty; once
// settled the day's level colour is used.
func (r *Reveal) CellColor(day activity.Day, c activity.Cell) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PhaseAnimating {
		return day.Color()
	}
	if b, ok := r.boxes.Get(c); ok {
		return Grey(Brightness(b.Intensity))
	}
	return activity.EmptyColor
}
