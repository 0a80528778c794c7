package daemon

import (
	"context"
	"crypto/rand"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/gitisland/internal/activity"
	"github.com/jmylchreest/gitisland/internal/clock"
	"github.com/jmylchreest/gitisland/internal/mainloop"
	"github.com/jmylchreest/gitisland/internal/reveal"
)

// DefaultFetchTimeout bounds one activity fetch.
const DefaultFetchTimeout = 15 * time.Second

// SessionState is the data state of one panel opening.
type SessionState int

const (
	// SessionIdle means the panel is closed.
	SessionIdle SessionState = iota
	// SessionLoading means a fetch is in flight.
	SessionLoading
	// SessionLoaded means the grid is on screen.
	SessionLoaded
	// SessionFailed means the fetch failed; the panel shows the error
	// until it is closed.
	SessionFailed
)

// String returns the string representation of SessionState.
func (s SessionState) String() string {
	switch s {
	case SessionIdle:
		return "idle"
	case SessionLoading:
		return "loading"
	case SessionLoaded:
		return "loaded"
	case SessionFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Session is one opening of the panel. Every open fetches afresh.
type Session struct {
	ID        ulid.ULID
	State     SessionState
	Grid      *activity.Grid
	Err       error
	StartedAt time.Time
}

// OpenRecorder stores per-open statistics. store.FileFlagStore
// implements it.
type OpenRecorder interface {
	RecordOpen(sessionID string) error
}

// PanelConfig configures a Panel.
type PanelConfig struct {
	Identity   string
	Timeout    time.Duration
	Labels     activity.LabelPolicy
	Clock      clock.Clock
	Dispatcher mainloop.Dispatcher
	Logger     *slog.Logger
	Recorder   OpenRecorder // optional
}

// Panel runs the data side of the opened island: it fetches the grid
// when the island opens, hands it to the reveal animation, and drops
// everything when it closes.
type Panel struct {
	reveal     *reveal.Reveal
	clock      clock.Clock
	dispatcher mainloop.Dispatcher
	logger     *slog.Logger
	recorder   OpenRecorder

	mu        sync.Mutex
	provider  activity.Provider
	identity  string
	timeout   time.Duration
	labels    activity.LabelPolicy
	current   Session
	cancel    context.CancelFunc
	listeners []func(Session)
	failures  []func(error)
}

// NewPanel creates an idle Panel.
func NewPanel(provider activity.Provider, rv *reveal.Reveal, cfg PanelConfig) *Panel {
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.Dispatcher == nil {
		cfg.Dispatcher = mainloop.Immediate{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultFetchTimeout
	}
	return &Panel{
		reveal:     rv,
		clock:      cfg.Clock,
		dispatcher: cfg.Dispatcher,
		logger:     cfg.Logger,
		recorder:   cfg.Recorder,
		provider:   provider,
		identity:   cfg.Identity,
		timeout:    cfg.Timeout,
		labels:     cfg.Labels,
	}
}

// OnChange registers fn to run on the UI context after every session
// update.
func (p *Panel) OnChange(fn func(Session)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

// OnFailure registers fn to run when a fetch fails.
func (p *Panel) OnFailure(fn func(error)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures = append(p.failures, fn)
}

// SetSource replaces the provider and identity used by later sessions.
func (p *Panel) SetSource(provider activity.Provider, identity string, timeout time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.provider = provider
	p.identity = identity
	if timeout > 0 {
		p.timeout = timeout
	}
}

// SetLabelPolicy changes how month labels are placed.
func (p *Panel) SetLabelPolicy(policy activity.LabelPolicy) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.labels = policy
}

// Session returns a snapshot of the current session.
func (p *Panel) Session() Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Begin starts a new session and its fetch. Any previous session is
// abandoned. Must run on the UI context.
func (p *Panel) Begin() Session {
	now := p.clock.Now()
	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		id = ulid.Make()
	}

	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	p.cancel = cancel
	p.current = Session{ID: id, State: SessionLoading, StartedAt: now}
	provider, identity := p.provider, p.identity
	session := p.current
	p.mu.Unlock()

	p.logger.Debug("panel session started", "session", id, "identity", identity)
	if p.recorder != nil {
		if err := p.recorder.RecordOpen(id.String()); err != nil {
			p.logger.Warn("failed to record open", "error", err)
		}
	}
	p.notify(session)

	go func() {
		grid, err := provider.Fetch(ctx, identity)
		p.dispatcher.Post(func() { p.complete(id, grid, err) })
	}()
	return session
}

func (p *Panel) complete(id ulid.ULID, grid *activity.Grid, err error) {
	p.mu.Lock()
	if p.current.ID != id || p.current.State != SessionLoading {
		p.mu.Unlock()
		p.logger.Debug("dropped stale fetch result", "session", id)
		return
	}
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}

	if err == nil {
		if verr := grid.Validate(); verr != nil {
			err = &activity.FetchError{Identity: p.identity, Op: "validate", Cause: verr}
		}
	}

	if err != nil {
		p.current.State = SessionFailed
		p.current.Err = err
		session := p.current
		failures := p.failures
		p.mu.Unlock()

		if errors.Is(err, context.DeadlineExceeded) {
			p.logger.Warn("activity fetch timed out", "session", id, "error", err)
		} else {
			p.logger.Warn("activity fetch failed", "session", id, "error", err)
		}
		for _, fn := range failures {
			fn(err)
		}
		p.notify(session)
		return
	}

	p.current.State = SessionLoaded
	p.current.Grid = grid
	session := p.current
	p.mu.Unlock()

	phase := p.reveal.Show(grid)
	p.logger.Debug("activity loaded", "session", id, "total", grid.Total, "weeks", len(grid.Weeks), "phase", phase)
	p.notify(session)
}

// End abandons the current session: the fetch is cancelled and the grid
// and animation are dropped. Must run on the UI context.
func (p *Panel) End() {
	p.mu.Lock()
	if p.current.State == SessionIdle {
		p.mu.Unlock()
		return
	}
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	id := p.current.ID
	p.current = Session{}
	p.mu.Unlock()

	p.reveal.Hide()
	p.logger.Debug("panel session ended", "session", id)
	p.notify(Session{})
}

// MonthLabels returns the header labels for the loaded grid.
func (p *Panel) MonthLabels() []activity.MonthLabel {
	p.mu.Lock()
	grid, policy := p.current.Grid, p.labels
	p.mu.Unlock()
	if grid == nil {
		return nil
	}
	return activity.MonthLabels(grid, policy)
}

func (p *Panel) notify(s Session) {
	p.mu.Lock()
	listeners := p.listeners
	p.mu.Unlock()
	for _, fn := range listeners {
		fn(s)
	}
}
