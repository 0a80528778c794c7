// Package tui is a terminal preview of the island. The terminal stands in
// for the overlay window: mouse motion over it becomes pointer samples and
// the panel is drawn below the window sketch.
package tui

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/gitisland/internal/activity"
	"github.com/jmylchreest/gitisland/internal/clock"
	"github.com/jmylchreest/gitisland/internal/config"
	"github.com/jmylchreest/gitisland/internal/daemon"
	"github.com/jmylchreest/gitisland/internal/geometry"
	"github.com/jmylchreest/gitisland/internal/island"
	"github.com/jmylchreest/gitisland/internal/pointer"
	"github.com/jmylchreest/gitisland/internal/store"
)

// headerLines is the number of lines above the canvas.
const headerLines = 1

// Options configures the preview.
type Options struct {
	Config     *config.Config
	ConfigPath string        // watched for hot reload when set
	Screen     geometry.Size // simulated display, in points
	Notch      geometry.Size // zero means the display has no cutout
	Provider   activity.Provider
	Flag       store.FlagStore
	Clock      clock.Clock
	Logger     *slog.Logger
}

// Metrics describes the simulated display.
func (o Options) Metrics() geometry.DisplayMetrics {
	m := geometry.DisplayMetrics{
		Name:    "preview",
		Frame:   geometry.Rect{W: o.Screen.W, H: o.Screen.H},
		Builtin: true,
	}
	if o.Notch.W > 0 && o.Notch.H > 0 {
		m.SafeAreaTop = o.Notch.H
		aux := (o.Screen.W - o.Notch.W + 4) / 2
		m.AuxTopLeftWidth, m.AuxTopRightWidth = aux, aux
	}
	return m
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	headerStyle = lipgloss.NewStyle().Bold(true)
	panelStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)

	canvasStyles = map[cellKind]lipgloss.Style{
		kindEmpty:   lipgloss.NewStyle(),
		kindHit:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		kindNotch:   lipgloss.NewStyle().Foreground(lipgloss.Color("0")),
		kindPanel:   lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		kindPointer: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
	}
)

// Model is the preview's bubbletea model.
type Model struct {
	app    *daemon.App
	source *pointer.Broadcaster
	queue  *queue
	clock  clock.Clock

	keys    KeyMap
	help    help.Model
	spinner spinner.Model

	width  int
	height int
	ready  bool

	pointerCol int
	pointerRow int
	statusMsg  string
}

// New wires a preview island. The island does not run until Start.
func New(opts Options) (Model, error) {
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	if opts.Screen.W <= 0 || opts.Screen.H <= 0 {
		opts.Screen = geometry.Size{W: 1512, H: 982}
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	geom, err := geometry.FromDisplay(opts.Metrics(), float64(opts.Config.Island.WindowHeight))
	if err != nil {
		opts.Logger.Info("preview display has no notch, island stays visible")
	}

	m := Model{
		source:     pointer.NewBroadcaster(),
		queue:      &queue{},
		clock:      opts.Clock,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot)),
		pointerCol: -1,
		pointerRow: -1,
	}

	m.app, err = daemon.New(daemon.Options{
		Config:      opts.Config,
		ConfigPath:  opts.ConfigPath,
		Geometry:    geom,
		Source:      m.source,
		Dispatcher:  m.queue,
		Clock:       opts.Clock,
		Flag:        opts.Flag,
		Provider:    opts.Provider,
		Logger:      opts.Logger,
		WatchConfig: opts.ConfigPath != "",
		WatchFlag:   true,
	})
	if err != nil {
		return Model{}, err
	}
	return m, nil
}

// App returns the island behind the preview.
func (m Model) App() *daemon.App { return m.app }

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case drainMsg:
		m.queue.drain()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) canvas() canvas {
	return canvas{
		geom: m.app.Machine().Geometry(),
		cols: max(m.width, 1),
		rows: canvasRows(m.height),
	}
}

// canvasRows gives the window sketch a third of the terminal, leaving room
// for the panel below it.
func canvasRows(height int) int {
	return min(max(height/3, 4), 24)
}

func (m Model) handleMouse(msg tea.MouseMsg) Model {
	if !m.ready {
		return m
	}
	row := msg.Y - headerLines
	sample := pointer.Sample{
		Point: m.canvas().Point(msg.X, row),
		At:    m.clock.Now(),
	}
	m.pointerCol, m.pointerRow = msg.X, row

	switch msg.Action {
	case tea.MouseActionMotion:
		m.source.PublishMove(sample)
	case tea.MouseActionPress:
		m.source.PublishMove(sample)
		if msg.Button == tea.MouseButtonLeft {
			m.source.PublishDown(sample)
		}
	}
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	machine := m.app.Machine()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Open):
		machine.Open(island.ReasonExternal)
	case key.Matches(msg, m.keys.Close):
		machine.Close(island.ReasonExternal)
	case key.Matches(msg, m.keys.Toggle):
		machine.Toggle(island.ReasonExternal)
	case key.Matches(msg, m.keys.ResetAnimation):
		if err := m.app.ResetAnimation(); err != nil {
			m.statusMsg = errorStyle.Render(err.Error())
		} else {
			m.statusMsg = "reveal re-armed for the next open"
		}
	}
	return m, nil
}

// View renders the TUI.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	machine := m.app.Machine()
	geom := machine.Geometry()
	opened := machine.Status() == island.StatusOpened

	s := scene{
		visible:    m.app.Visible(),
		opened:     opened,
		hit:        hitRectOnScreen(geom, machine.HitRect()),
		panel:      geom.OpenedPanelRect(machine.OpenedSize()),
		pointerCol: m.pointerCol,
		pointerRow: m.pointerRow,
	}

	var b strings.Builder
	b.WriteString(m.titleLine())
	b.WriteByte('\n')
	b.WriteString(m.canvas().Render(s, canvasStyles))
	b.WriteByte('\n')
	if opened {
		b.WriteString(m.viewPanel())
		b.WriteByte('\n')
	}
	if m.statusMsg != "" {
		b.WriteString(m.statusMsg)
		b.WriteByte('\n')
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) titleLine() string {
	machine := m.app.Machine()
	parts := []string{
		machine.Status().String(),
		"phase " + m.app.Reveal().Phase().String(),
	}
	if machine.IsHovering() {
		parts = append(parts, "hovering")
	}
	if !m.app.Visible() {
		parts = append(parts, "hidden")
	}
	return titleStyle.Render("gitisland preview") + " " + dimStyle.Render(strings.Join(parts, " · "))
}

func (m Model) viewPanel() string {
	panel := m.app.Panel()
	session := panel.Session()
	user := m.app.Config().Activity.Username

	var body string
	switch session.State {
	case daemon.SessionLoading:
		body = m.spinner.View() + " Loading " + user + "…"
	case daemon.SessionFailed:
		body = headerStyle.Render(user) + "\n" + errorStyle.Render(session.Err.Error())
	case daemon.SessionLoaded:
		grid := session.Grid
		body = headerStyle.Render(activity.Summary(grid)) + "\n" +
			renderGrid(grid, panel.MonthLabels(), m.app.Reveal().CellColor) + "\n" +
			dimStyle.Render(fmt.Sprintf("updated %s", activity.FetchedAgo(grid, m.clock.Now())))
	default:
		body = dimStyle.Render("closed")
	}
	return panelStyle.Render(body)
}

// Run starts the preview and blocks until the user quits.
func Run(opts Options) error {
	m, err := New(opts)
	if err != nil {
		return err
	}
	if err := m.app.Start(); err != nil {
		return err
	}
	defer m.app.Stop()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	m.queue.setWake(p.Send)

	_, err = p.Run()
	return err
}
