package daemon

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/jmylchreest/gitisland/internal/activity"
	"github.com/jmylchreest/gitisland/internal/audio"
	"github.com/jmylchreest/gitisland/internal/clock"
	"github.com/jmylchreest/gitisland/internal/config"
	"github.com/jmylchreest/gitisland/internal/dbus"
	"github.com/jmylchreest/gitisland/internal/geometry"
	"github.com/jmylchreest/gitisland/internal/island"
	"github.com/jmylchreest/gitisland/internal/mainloop"
	"github.com/jmylchreest/gitisland/internal/pointer"
	"github.com/jmylchreest/gitisland/internal/reveal"
	"github.com/jmylchreest/gitisland/internal/store"
)

// Options configures an App. Config, Geometry and Source are required.
type Options struct {
	Config     *config.Config
	ConfigPath string // watched for hot reload when WatchConfig is set
	Geometry   geometry.Geometry
	Source     pointer.Source
	Host       island.Host // nil runs headless
	Dispatcher mainloop.Dispatcher
	Clock      clock.Clock
	Flag       store.FlagStore   // nil uses the shared state file
	Provider   activity.Provider // nil selects from Config.Activity
	Notifier   *InternalNotifier // optional
	Rand       *rand.Rand        // optional, for reproducible animations
	Logger     *slog.Logger

	WatchConfig bool
	WatchFlag   bool
}

// App is one running island.
type App struct {
	logger     *slog.Logger
	clock      clock.Clock
	dispatcher mainloop.Dispatcher
	flag       store.FlagStore
	notifier   *InternalNotifier

	host       *trackedHost
	machine    *island.Machine
	visibility *island.Visibility
	reveal     *reveal.Reveal
	panel      *Panel
	audio      *audio.Manager

	configWatcher *ConfigWatcher
	flagWatcher   *store.FileWatcher

	mu     sync.RWMutex
	config *config.Config
}

// New wires an App from opts. Nothing runs until Start.
func New(opts Options) (*App, error) {
	if opts.Config == nil {
		return nil, errors.New("daemon: config is required")
	}
	if opts.Source == nil {
		return nil, errors.New("daemon: pointer source is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Dispatcher == nil {
		opts.Dispatcher = mainloop.Immediate{}
	}
	if opts.Flag == nil {
		fs, err := store.NewFileFlagStore("")
		if err != nil {
			return nil, fmt.Errorf("failed to open state store: %w", err)
		}
		opts.Flag = fs
	}

	cfg := opts.Config
	logger := opts.Logger

	geom := opts.Geometry
	geom.Padding = geometry.HitPadding{
		ClosedX:     cfg.HitTest.ClosedPadX,
		ClosedY:     cfg.HitTest.ClosedPadY,
		OpenedSlack: cfg.HitTest.OpenedSlack,
	}

	a := &App{
		logger:     logger,
		clock:      opts.Clock,
		dispatcher: opts.Dispatcher,
		flag:       opts.Flag,
		notifier:   opts.Notifier,
		host:       &trackedHost{host: opts.Host},
		config:     cfg,
	}

	a.machine = island.NewMachine(geom, opts.Source,
		island.WithClock(opts.Clock),
		island.WithDispatcher(opts.Dispatcher),
		island.WithLogger(logger.With("component", "island")),
		island.WithHoverDelay(cfg.Island.HoverDelay.Duration()),
		island.WithThrottleWindow(cfg.Island.Throttle.Duration()),
		island.WithOpenedSize(geometry.Size{
			W: float64(cfg.Island.OpenedWidth),
			H: float64(cfg.Island.OpenedHeight),
		}),
	)
	a.visibility = island.Bind(a.machine, a.host,
		island.WithHideDelay(cfg.Island.HideDelay.Duration()))

	revealOpts := []reveal.Option{
		reveal.WithClock(opts.Clock),
		reveal.WithDispatcher(opts.Dispatcher),
		reveal.WithLogger(logger.With("component", "reveal")),
		reveal.WithTiming(cfg.Reveal.Period.Duration(), cfg.Reveal.Duration.Duration(), cfg.Reveal.Fade.Duration()),
	}
	if opts.Rand != nil {
		revealOpts = append(revealOpts, reveal.WithRand(opts.Rand))
	}
	if !cfg.Reveal.Enabled {
		revealOpts = append(revealOpts, reveal.Disabled())
	}
	a.reveal = reveal.New(opts.Flag, revealOpts...)

	provider := opts.Provider
	if provider == nil {
		var name string
		provider, name = NewProvider(cfg.Activity, logger)
		logger.Info("activity provider selected", "provider", name, "username", cfg.Activity.Username)
	}
	policy, err := activity.ParseLabelPolicy(cfg.Labels.Policy)
	if err != nil {
		return nil, err
	}
	recorder, _ := opts.Flag.(OpenRecorder)
	a.panel = NewPanel(provider, a.reveal, PanelConfig{
		Identity:   cfg.Activity.Username,
		Timeout:    cfg.Activity.Timeout.Duration(),
		Labels:     policy,
		Clock:      opts.Clock,
		Dispatcher: opts.Dispatcher,
		Logger:     logger.With("component", "panel"),
		Recorder:   recorder,
	})
	a.panel.OnFailure(a.notifier.NotifyFetchError)

	a.audio = audio.NewManager(cfg.Audio, logger.With("component", "audio"))

	a.machine.OnStatusChange(a.handleStatusChange)

	if opts.WatchConfig {
		a.configWatcher = NewConfigWatcher(opts.ConfigPath, logger)
		a.configWatcher.SetReloadCallback(func(c *config.Config) {
			a.dispatcher.Post(func() { a.applyConfig(c) })
		})
		a.configWatcher.SetErrorCallback(a.notifier.NotifyConfigError)
	}
	if fs, ok := opts.Flag.(*store.FileFlagStore); ok && opts.WatchFlag {
		w, err := store.NewFileWatcher(fs.Path(), func() { a.dispatcher.Post(a.checkFlag) }, logger)
		if err != nil {
			logger.Warn("state file watching unavailable", "error", err)
		} else {
			a.flagWatcher = w
		}
	}

	return a, nil
}

// Start begins the background watchers and preloads audio.
func (a *App) Start() error {
	a.audio.Start()

	if a.configWatcher != nil {
		if err := a.configWatcher.Start(a.Config()); err != nil {
			a.logger.Warn("config hot reload disabled", "error", err)
		}
	}
	if a.flagWatcher != nil {
		if err := a.flagWatcher.Start(); err != nil {
			a.logger.Warn("state file watching disabled", "error", err)
		}
	}

	a.logger.Info("island ready",
		"notch", a.machine.Geometry().NotchRect,
		"physical_notch", a.machine.Geometry().HasPhysicalNotch,
	)
	return nil
}

// Stop tears everything down. Pending timers are cancelled.
func (a *App) Stop() {
	if a.configWatcher != nil {
		a.configWatcher.Stop()
	}
	if a.flagWatcher != nil {
		_ = a.flagWatcher.Stop()
	}
	a.panel.End()
	a.visibility.Stop()
	a.machine.Shutdown()
	a.audio.Stop()
	a.logger.Debug("island stopped")
}

// Machine returns the interaction machine.
func (a *App) Machine() *island.Machine { return a.machine }

// Panel returns the activity panel.
func (a *App) Panel() *Panel { return a.panel }

// Reveal returns the reveal animation.
func (a *App) Reveal() *reveal.Reveal { return a.reveal }

// Visible reports whether the host currently shows the island.
func (a *App) Visible() bool { return a.host.Visible() }

// Config returns the active configuration.
func (a *App) Config() *config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.config
}

// OnStatusChange registers fn for every island transition.
func (a *App) OnStatusChange(fn func(island.Change)) {
	a.machine.OnStatusChange(fn)
}

func (a *App) handleStatusChange(c island.Change) {
	switch c.New {
	case island.StatusOpened:
		a.panel.Begin()
		go func() {
			if err := a.audio.PlayOpen(); err != nil {
				a.logger.Warn("failed to play open sound", "error", err)
				a.notifier.NotifyAudioError(err)
			}
		}()
	case island.StatusClosed:
		a.panel.End()
	}
}

// applyConfig applies the parts of a reloaded configuration that can
// change at runtime. Geometry and timing changes need a restart.
func (a *App) applyConfig(c *config.Config) {
	a.mu.Lock()
	old := a.config
	a.config = c
	a.mu.Unlock()

	a.audio.UpdateConfig(c.Audio)

	if c.Activity != old.Activity {
		provider, name := NewProvider(c.Activity, a.logger)
		a.panel.SetSource(provider, c.Activity.Username, c.Activity.Timeout.Duration())
		a.logger.Info("activity provider updated", "provider", name, "username", c.Activity.Username)
	}
	if c.Labels != old.Labels {
		if policy, err := activity.ParseLabelPolicy(c.Labels.Policy); err == nil {
			a.panel.SetLabelPolicy(policy)
		}
	}
	if c.Island != old.Island || c.HitTest != old.HitTest || c.Reveal != old.Reveal || c.Display != old.Display {
		a.logger.Info("some configuration changes take effect after restart",
			"sections", "island, hit_test, reveal, display")
	}

	a.notifier.NotifyConfigReloaded()
}

// checkFlag re-arms the reveal when the first-run flag was cleared from
// outside, for example by "gitisland reset-animation".
func (a *App) checkFlag() {
	shown, err := a.flag.AnimationShown()
	if err != nil {
		a.logger.Debug("failed to read state file", "error", err)
		return
	}
	if !shown {
		a.reveal.ResetGate()
		a.logger.Info("loading animation re-armed")
	}
}

// call runs fn on the UI context and waits for its result. It must not be
// called from the UI context when the dispatcher queues work.
func call[T any](d mainloop.Dispatcher, fn func() T) T {
	done := make(chan T, 1)
	d.Post(func() { done <- fn() })
	return <-done
}

// Open opens the panel. It reports whether the status changed.
func (a *App) Open() bool {
	return call(a.dispatcher, func() bool { return a.machine.Open(island.ReasonExternal) })
}

// Close closes the panel.
func (a *App) Close() bool {
	return call(a.dispatcher, func() bool { return a.machine.Close(island.ReasonExternal) })
}

// Toggle flips the panel.
func (a *App) Toggle() bool {
	return call(a.dispatcher, func() bool { return a.machine.Toggle(island.ReasonExternal) })
}

// Status returns a snapshot for the control interface.
func (a *App) Status() dbus.Status {
	session := a.panel.Session()
	s := dbus.Status{
		Status:   a.machine.Status().String(),
		Hovering: a.machine.IsHovering(),
		Visible:  a.host.Visible(),
		Session:  session.State.String(),
		Phase:    a.reveal.Phase().String(),
		Username: a.Config().Activity.Username,
	}
	if session.State != SessionIdle {
		s.SessionID = session.ID.String()
	}
	if session.Grid != nil {
		s.Total = session.Grid.Total
	}
	if session.Err != nil {
		s.Error = session.Err.Error()
	}
	return s
}

// ResetAnimation clears the first-run flag and re-arms the reveal.
func (a *App) ResetAnimation() error {
	if r, ok := a.flag.(interface{ ResetAnimation() error }); ok {
		if err := r.ResetAnimation(); err != nil {
			return fmt.Errorf("failed to reset animation flag: %w", err)
		}
	}
	a.dispatcher.Post(a.reveal.ResetGate)
	return nil
}

// trackedHost remembers the last visibility pushed to the host.
type trackedHost struct {
	host island.Host

	mu      sync.Mutex
	visible bool
}

func (h *trackedHost) ApplyHitRegion(rect geometry.Rect, interactive bool) {
	if h.host != nil {
		h.host.ApplyHitRegion(rect, interactive)
	}
}

func (h *trackedHost) SetVisible(visible bool) {
	h.mu.Lock()
	h.visible = visible
	h.mu.Unlock()
	if h.host != nil {
		h.host.SetVisible(visible)
	}
}

func (h *trackedHost) Visible() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.visible
}
