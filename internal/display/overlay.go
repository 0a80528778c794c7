package display

import (
	"errors"
	"log/slog"

	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/gitisland/internal/clock"
	"github.com/jmylchreest/gitisland/internal/config"
	"github.com/jmylchreest/gitisland/internal/daemon"
	"github.com/jmylchreest/gitisland/internal/geometry"
	"github.com/jmylchreest/gitisland/internal/island"
	"github.com/jmylchreest/gitisland/internal/mainloop"
	"github.com/jmylchreest/gitisland/internal/pointer"
)

// Dispatcher posts work to the GTK main loop.
func Dispatcher() mainloop.Dispatcher {
	return mainloop.DispatcherFunc(func(fn func()) {
		glib.IdleAdd(fn)
	})
}

// Overlay is the island's layer-shell window. It implements island.Host
// and feeds pointer events into a pointer.Broadcaster.
//
// Wayland offers no global pointer monitor, so the surface itself is the
// hit region: closed, it covers the padded notch; opened, it covers the
// whole overlay frame so that clicks beside the panel still arrive.
type Overlay struct {
	logger  *slog.Logger
	clock   clock.Clock
	cfg     config.DisplayConfig
	monitor *gdk.Monitor
	metrics geometry.DisplayMetrics
	geom    geometry.Geometry
	source  *pointer.Broadcaster

	window *gtk.Window
	island *gtk.Box
	notch  *gtk.Box
	panel  *panelView

	placement Placement
	presented bool // the surface is mapped once and never unmapped
}

// NewOverlay creates the window on the configured monitor. The window is
// not shown until the island asks for it.
func NewOverlay(app *gtk.Application, cfg config.DisplayConfig, windowHeight float64, logger *slog.Logger) (*Overlay, error) {
	if logger == nil {
		logger = slog.Default()
	}

	display := gdk.DisplayGetDefault()
	if display == nil {
		return nil, &DisplayError{Message: "no display available"}
	}
	monitor := selectMonitor(display, cfg.Monitor, logger)
	if monitor == nil {
		return nil, &DisplayError{Message: "no monitor available"}
	}

	bounds := monitor.Geometry()
	metrics := Metrics(monitor.Connector(), bounds.Width(), bounds.Height(), cfg)
	geom, err := geometry.FromDisplay(metrics, windowHeight)
	switch {
	case errors.Is(err, geometry.ErrNoCutout):
		logger.Info("monitor has no notch, island stays visible", "monitor", metrics.Name)
	case err != nil:
		return nil, &DisplayError{Message: "failed to compute geometry", Cause: err}
	}

	o := &Overlay{
		logger:  logger,
		clock:   clock.Real(),
		cfg:     cfg,
		monitor: monitor,
		metrics: metrics,
		geom:    geom,
		source:  pointer.NewBroadcaster(),
	}
	o.buildWindow(app)

	logger.Debug("overlay created",
		"monitor", metrics.Name,
		"builtin", metrics.Builtin,
		"width", bounds.Width(),
		"height", bounds.Height(),
		"notch", geom.NotchRect,
	)
	return o, nil
}

// Geometry returns the geometry computed for the monitor.
func (o *Overlay) Geometry() geometry.Geometry { return o.geom }

// Metrics returns the monitor description.
func (o *Overlay) Metrics() geometry.DisplayMetrics { return o.metrics }

// Source returns the pointer stream of this window.
func (o *Overlay) Source() pointer.Source { return o.source }

func (o *Overlay) buildWindow(app *gtk.Application) {
	o.window = gtk.NewWindow()
	o.window.SetApplication(app)
	o.window.SetDecorated(false)
	o.window.SetResizable(false)
	o.window.AddCSSClass("island-window")

	layer := layershell.LayerShellLayerOverlay
	if o.cfg.Layer == "top" {
		layer = layershell.LayerShellLayerTop
	}

	layershell.InitForWindow(o.window)
	layershell.SetLayer(o.window, layer)
	layershell.SetExclusiveZone(o.window, 0)
	layershell.SetKeyboardMode(o.window, layershell.LayerShellKeyboardModeNone)
	layershell.SetNamespace(o.window, o.cfg.Namespace)
	layershell.SetMonitor(o.window, o.monitor)
	layershell.SetAnchor(o.window, layershell.LayerShellEdgeTop, true)
	layershell.SetAnchor(o.window, layershell.LayerShellEdgeLeft, true)

	o.island = gtk.NewBox(gtk.OrientationVertical, 0)
	o.island.AddCSSClass("island")
	o.island.SetHAlign(gtk.AlignStart)
	o.island.SetVAlign(gtk.AlignStart)

	o.notch = gtk.NewBox(gtk.OrientationHorizontal, 0)
	o.notch.AddCSSClass("island-notch")
	o.island.Append(o.notch)

	o.panel = newPanelView()
	o.panel.Root().SetVisible(false)
	o.island.Append(o.panel.Root())

	o.window.SetChild(o.island)

	motion := gtk.NewEventControllerMotion()
	motion.ConnectEnter(func(x, y float64) { o.publishMove(x, y) })
	motion.ConnectMotion(func(x, y float64) { o.publishMove(x, y) })
	motion.ConnectLeave(o.publishLeave)
	o.window.AddController(motion)

	click := gtk.NewGestureClick()
	click.SetButton(0)
	click.ConnectPressed(func(nPress int, x, y float64) { o.publishDown(x, y) })
	o.window.AddController(click)
}

func (o *Overlay) publishMove(x, y float64) {
	o.source.PublishMove(pointer.Sample{
		Point: o.placement.ToScreen(x, y, o.geom),
		At:    o.clock.Now(),
	})
}

func (o *Overlay) publishDown(x, y float64) {
	o.source.PublishDown(pointer.Sample{
		Point: o.placement.ToScreen(x, y, o.geom),
		At:    o.clock.Now(),
	})
}

// publishLeave reports a position below the overlay frame: the pointer is
// no longer over anything the island owns.
func (o *Overlay) publishLeave() {
	frame := o.geom.WindowFrame()
	o.source.PublishMove(pointer.Sample{
		Point: geometry.Point{X: frame.MidX(), Y: frame.MinY() - 1},
		At:    o.clock.Now(),
	})
}

// ApplyHitRegion moves and resizes the surface to cover rect. Interactive
// regions expand the surface to the whole frame and position the island
// inside it.
func (o *Overlay) ApplyHitRegion(rect geometry.Rect, interactive bool) {
	target := PlacementFor(rect, o.geom)

	o.placement = target
	if interactive {
		o.placement = FramePlacement(o.geom)
	}

	layershell.SetMargin(o.window, layershell.LayerShellEdgeLeft, o.placement.Left)
	layershell.SetMargin(o.window, layershell.LayerShellEdgeTop, o.placement.Top)
	o.window.SetDefaultSize(o.placement.Width, o.placement.Height)
	o.window.SetSizeRequest(o.placement.Width, o.placement.Height)

	o.island.SetMarginStart(target.Left - o.placement.Left)
	o.island.SetMarginTop(target.Top - o.placement.Top)
	o.island.SetSizeRequest(target.Width, target.Height)
	o.notch.SetVisible(!interactive)
	o.panel.Root().SetVisible(interactive)

	o.logger.Debug("hit region applied",
		"left", o.placement.Left,
		"top", o.placement.Top,
		"width", o.placement.Width,
		"height", o.placement.Height,
		"interactive", interactive,
	)
}

// SetVisible shows or hides the island. The surface stays mapped so it
// keeps receiving pointer events over the notch; hiding only clears the
// drawing.
func (o *Overlay) SetVisible(visible bool) {
	if !o.presented {
		o.window.Present()
		o.presented = true
	}
	if visible {
		o.island.SetOpacity(1)
	} else {
		o.island.SetOpacity(0)
	}
}

// Attach renders app's panel state into the window and keeps it in sync.
// Must run on the GTK main thread.
func (o *Overlay) Attach(app *daemon.App) {
	render := func() { o.panel.render(app) }

	app.Panel().OnChange(func(daemon.Session) { render() })
	app.Reveal().OnTick(render)
	app.Reveal().OnSettled(render)
	render()
}

// Close destroys the window.
func (o *Overlay) Close() {
	if o.window != nil {
		o.window.Destroy()
		o.window = nil
	}
}

var _ island.Host = (*Overlay)(nil)
