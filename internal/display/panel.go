package display

import (
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/gitisland/internal/activity"
	"github.com/jmylchreest/gitisland/internal/daemon"
	"github.com/jmylchreest/gitisland/internal/theme"
)

const (
	cellSize    = 10
	cellSpacing = 3
)

// panelView draws the opened island: a summary header, the contribution
// grid with month labels, and a footer. Loading and failure replace the
// grid with a spinner or an error line.
type panelView struct {
	root     *gtk.Box
	header   *gtk.Label
	spinner  *gtk.Spinner
	errLabel *gtk.Label
	gridBox  *gtk.Box
	footer   *gtk.Label

	grid    *gtk.Grid
	shown   *activity.Grid
	cells   [][]*gtk.Box
	classes [][]string
}

func newPanelView() *panelView {
	v := &panelView{}

	v.root = gtk.NewBox(gtk.OrientationVertical, 6)
	v.root.AddCSSClass("island-panel")
	v.root.SetHAlign(gtk.AlignCenter)

	v.header = gtk.NewLabel("")
	v.header.AddCSSClass("panel-header")
	v.header.SetXAlign(0)
	v.root.Append(v.header)

	v.spinner = gtk.NewSpinner()
	v.spinner.SetVisible(false)
	v.root.Append(v.spinner)

	v.errLabel = gtk.NewLabel("")
	v.errLabel.AddCSSClass("panel-error")
	v.errLabel.SetWrap(true)
	v.errLabel.SetVisible(false)
	v.root.Append(v.errLabel)

	v.gridBox = gtk.NewBox(gtk.OrientationVertical, 0)
	v.root.Append(v.gridBox)

	v.footer = gtk.NewLabel("")
	v.footer.AddCSSClass("panel-footer")
	v.footer.SetXAlign(1)
	v.root.Append(v.footer)

	return v
}

// Root returns the panel's top-level widget.
func (v *panelView) Root() *gtk.Box { return v.root }

// render brings the widgets in line with the app's session and reveal
// state. Must run on the GTK main thread.
func (v *panelView) render(app *daemon.App) {
	s := app.Panel().Session()

	v.spinner.SetVisible(s.State == daemon.SessionLoading)
	if s.State == daemon.SessionLoading {
		v.spinner.Start()
	} else {
		v.spinner.Stop()
	}

	v.errLabel.SetVisible(s.State == daemon.SessionFailed)
	v.gridBox.SetVisible(s.State == daemon.SessionLoaded)
	v.footer.SetVisible(s.State == daemon.SessionLoaded)

	switch s.State {
	case daemon.SessionIdle:
		v.header.SetText("")
		v.clear()
	case daemon.SessionLoading:
		v.header.SetText("Loading " + app.Config().Activity.Username + "…")
	case daemon.SessionFailed:
		v.header.SetText(app.Config().Activity.Username)
		if s.Err != nil {
			v.errLabel.SetText(s.Err.Error())
		}
	case daemon.SessionLoaded:
		if v.shown != s.Grid {
			v.build(s.Grid, app.Panel().MonthLabels())
		}
		v.header.SetText(activity.Summary(s.Grid))
		v.footer.SetText("updated " + activity.FetchedAgo(s.Grid, app.Machine().Clock().Now()))
		v.paint(app)
	}
}

// build creates one widget per day plus the month label row.
func (v *panelView) build(g *activity.Grid, labels []activity.MonthLabel) {
	v.clear()

	grid := gtk.NewGrid()
	grid.SetRowSpacing(cellSpacing)
	grid.SetColumnSpacing(cellSpacing)

	for i, label := range labels {
		span := len(g.Weeks) - label.Week
		if i+1 < len(labels) {
			span = labels[i+1].Week - label.Week
		}
		l := gtk.NewLabel(label.Name)
		l.AddCSSClass("month-label")
		l.SetXAlign(0)
		grid.Attach(l, label.Week, 0, max(span, 1), 1)
	}

	v.cells = make([][]*gtk.Box, len(g.Weeks))
	v.classes = make([][]string, len(g.Weeks))
	for w, week := range g.Weeks {
		v.cells[w] = make([]*gtk.Box, len(week.Days))
		v.classes[w] = make([]string, len(week.Days))
		for d, day := range week.Days {
			cell := gtk.NewBox(gtk.OrientationHorizontal, 0)
			cell.AddCSSClass("cell")
			cell.SetSizeRequest(cellSize, cellSize)
			cell.SetTooltipText(activity.Tooltip(day))
			grid.Attach(cell, w, d+1, 1, 1)
			v.cells[w][d] = cell
		}
	}

	v.gridBox.Append(grid)
	v.grid = grid
	v.shown = g
}

// paint updates each cell's colour class. Only changed cells are touched.
func (v *panelView) paint(app *daemon.App) {
	if v.shown == nil {
		return
	}
	rv := app.Reveal()
	for w, week := range v.shown.Weeks {
		for d, day := range week.Days {
			class := theme.ColorClass(rv.CellColor(day, activity.Cell{Week: w, Day: d}))
			if v.classes[w][d] == class {
				continue
			}
			if v.classes[w][d] != "" {
				v.cells[w][d].RemoveCSSClass(v.classes[w][d])
			}
			v.cells[w][d].AddCSSClass(class)
			v.classes[w][d] = class
		}
	}
}

func (v *panelView) clear() {
	if v.grid != nil {
		v.gridBox.Remove(v.grid)
	}
	v.grid = nil
	v.shown = nil
	v.cells = nil
	v.classes = nil
}
