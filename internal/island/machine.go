package island

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/jmylchreest/gitisland/internal/anim"
	"github.com/jmylchreest/gitisland/internal/clock"
	"github.com/jmylchreest/gitisland/internal/geometry"
	"github.com/jmylchreest/gitisland/internal/mainloop"
	"github.com/jmylchreest/gitisland/internal/pointer"
)

// DefaultHoverDelay is how long the pointer must rest on the notch before
// the island opens.
const DefaultHoverDelay = time.Second

// Option configures a Machine.
type Option func(*Machine)

// WithClock sets the time source. The default is clock.Real().
func WithClock(c clock.Clock) Option {
	return func(m *Machine) { m.clock = c }
}

// WithDispatcher sets the execution context every mutation runs on. The
// default runs work inline on the calling goroutine.
func WithDispatcher(d mainloop.Dispatcher) Option {
	return func(m *Machine) { m.dispatcher = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithHoverDelay overrides DefaultHoverDelay.
func WithHoverDelay(d time.Duration) Option {
	return func(m *Machine) {
		if d > 0 {
			m.hoverDelay = d
		}
	}
}

// WithThrottleWindow overrides pointer.DefaultThrottleWindow for move
// samples.
func WithThrottleWindow(d time.Duration) Option {
	return func(m *Machine) {
		if d > 0 {
			m.throttleWindow = d
		}
	}
}

// WithOpenedSize overrides geometry.OpenedSize.
func WithOpenedSize(s geometry.Size) Option {
	return func(m *Machine) {
		if s.W > 0 && s.H > 0 {
			m.openedSize = s
		}
	}
}

// Machine owns the island Status and the hovering signal.
//
// Pointer samples arrive on whatever goroutine the Source publishes from;
// they are throttled and then posted to the dispatcher, so HandleMove,
// HandleDown, Open and Close always run on one context. Status, IsHovering
// and HoverPending may be read from any goroutine.
type Machine struct {
	geom           geometry.Geometry
	clock          clock.Clock
	dispatcher     mainloop.Dispatcher
	logger         *slog.Logger
	hoverDelay     time.Duration
	throttleWindow time.Duration
	openedSize     geometry.Size

	hoverTask *anim.Deferred
	throttle  *pointer.Throttler
	cancels   []func()

	mu        sync.Mutex
	status    Status
	hovering  bool
	listeners []func(Change)
	closed    bool
}

// NewMachine creates a closed Machine and subscribes it to src.
func NewMachine(geom geometry.Geometry, src pointer.Source, opts ...Option) *Machine {
	m := &Machine{
		geom:           geom,
		clock:          clock.Real(),
		dispatcher:     mainloop.Immediate{},
		logger:         slog.Default(),
		hoverDelay:     DefaultHoverDelay,
		throttleWindow: pointer.DefaultThrottleWindow,
		openedSize:     geometry.OpenedSize,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.hoverTask = anim.NewDeferred(m.clock, m.dispatcher, m.logger, "hover-open")
	m.throttle = pointer.Throttle(m.clock, m.throttleWindow, func(s pointer.Sample) {
		m.dispatcher.Post(func() { m.HandleMove(s.Point) })
	})

	if src != nil {
		m.cancels = append(m.cancels,
			src.OnMove(m.throttle.Push),
			src.OnDown(func(s pointer.Sample) {
				m.dispatcher.Post(func() { m.HandleDown(s.Point) })
			}),
		)
	}
	return m
}

// Geometry returns the geometry the machine hit-tests against.
func (m *Machine) Geometry() geometry.Geometry { return m.geom }

// OpenedSize returns the panel size used for hit-testing.
func (m *Machine) OpenedSize() geometry.Size { return m.openedSize }

// Clock returns the machine's time source.
func (m *Machine) Clock() clock.Clock { return m.clock }

// Dispatcher returns the machine's execution context.
func (m *Machine) Dispatcher() mainloop.Dispatcher { return m.dispatcher }

// Logger returns the machine's logger.
func (m *Machine) Logger() *slog.Logger { return m.logger }

// Status returns the current status.
func (m *Machine) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// IsHovering reports whether the last handled move sample was over the
// notch, or over the panel while opened.
func (m *Machine) IsHovering() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hovering
}

// HoverPending reports whether a hover-open is scheduled.
func (m *Machine) HoverPending() bool {
	return m.hoverTask.Pending()
}

// HitRect returns the window-local hit region for the current status.
func (m *Machine) HitRect() geometry.Rect {
	return m.geom.HitRect(m.Status() == StatusOpened, m.openedSize)
}

// OnStatusChange registers fn to be called after every transition.
func (m *Machine) OnStatusChange(fn func(Change)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// HandleMove applies one rate-limited move sample.
func (m *Machine) HandleMove(p geometry.Point) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	hovering := m.geom.PointInNotch(p) ||
		(m.status == StatusOpened && m.geom.PointInOpenedPanel(p, m.openedSize))
	if hovering == m.hovering {
		m.mu.Unlock()
		return
	}
	m.hovering = hovering
	status := m.status
	m.mu.Unlock()

	m.logger.Debug("hover changed", "hovering", hovering, "status", status)

	if !hovering {
		m.hoverTask.Cancel()
		return
	}
	if status == StatusClosed {
		m.hoverTask.Schedule(m.hoverDelay, m.hoverElapsed)
	}
}

func (m *Machine) hoverElapsed() {
	m.mu.Lock()
	ready := m.hovering && m.status == StatusClosed && !m.closed
	m.mu.Unlock()

	if !ready {
		m.logger.Debug("hover-open skipped, precondition changed")
		return
	}
	m.transition(StatusOpened, ReasonHover)
}

// HandleDown applies one button-press sample.
func (m *Machine) HandleDown(p geometry.Point) {
	m.mu.Lock()
	status := m.status
	closed := m.closed
	m.mu.Unlock()

	if closed {
		return
	}
	switch {
	case status == StatusOpened && m.geom.PointOutsidePanel(p, m.openedSize):
		m.transition(StatusClosed, ReasonClick)
	case status == StatusClosed && m.geom.PointInNotch(p):
		m.transition(StatusOpened, ReasonClick)
	}
}

// Open opens the island. It is a no-op when already opened.
func (m *Machine) Open(reason Reason) bool {
	return m.transition(StatusOpened, reason)
}

// Close closes the island. It is a no-op when already closed.
func (m *Machine) Close(reason Reason) bool {
	return m.transition(StatusClosed, reason)
}

// Toggle flips the status.
func (m *Machine) Toggle(reason Reason) bool {
	if m.Status() == StatusOpened {
		return m.Close(reason)
	}
	return m.Open(reason)
}

func (m *Machine) transition(to Status, reason Reason) bool {
	m.mu.Lock()
	if m.closed || m.status == to {
		m.mu.Unlock()
		return false
	}
	change := Change{
		Old:         m.status,
		New:         to,
		Reason:      reason,
		HitRect:     m.geom.HitRect(to == StatusOpened, m.openedSize),
		Interactive: to == StatusOpened,
	}
	m.status = to
	listeners := slices.Clone(m.listeners)
	m.mu.Unlock()

	if to == StatusOpened {
		m.hoverTask.Cancel()
	}

	m.logger.Info("island status changed", "from", change.Old, "to", change.New, "reason", reason)

	for _, fn := range listeners {
		fn(change)
	}
	return true
}

// Shutdown unsubscribes from the pointer source and cancels pending timers.
// The machine ignores all input afterwards.
func (m *Machine) Shutdown() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	cancels := m.cancels
	m.cancels = nil
	m.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	m.throttle.Stop()
	m.hoverTask.Cancel()
}
