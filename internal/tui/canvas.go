package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/gitisland/internal/geometry"
)

// canvas maps terminal cells onto the overlay window: cols span the screen
// width and rows span the window height, top row first.
type canvas struct {
	geom       geometry.Geometry
	cols, rows int
}

// Point returns the screen point at the centre of a terminal cell. Rows
// past the bottom of the canvas continue the same scale below the window.
func (c canvas) Point(col, row int) geometry.Point {
	sx := c.geom.ScreenRect.W / float64(max(c.cols, 1))
	sy := c.geom.WindowHeight / float64(max(c.rows, 1))
	fromTop := geometry.Point{
		X: (float64(col) + 0.5) * sx,
		Y: (float64(row) + 0.5) * sy,
	}
	p := geometry.FlipY(fromTop, c.geom.ScreenRect.H)
	return geometry.Point{X: p.X + c.geom.ScreenRect.X, Y: p.Y + c.geom.ScreenRect.Y}
}

type cellKind int

const (
	kindEmpty cellKind = iota
	kindHit
	kindNotch
	kindPanel
	kindPointer
)

var cellGlyphs = map[cellKind]string{
	kindEmpty:   " ",
	kindHit:     "·",
	kindNotch:   "█",
	kindPanel:   "▒",
	kindPointer: "+",
}

// scene is what the canvas draws.
type scene struct {
	visible    bool
	opened     bool
	hit        geometry.Rect // screen space
	panel      geometry.Rect // screen space
	pointerCol int
	pointerRow int
}

func (c canvas) kindAt(col, row int, s scene) cellKind {
	if col == s.pointerCol && row == s.pointerRow {
		return kindPointer
	}
	p := c.Point(col, row)
	switch {
	case s.opened && s.panel.Contains(p):
		return kindPanel
	case s.visible && c.geom.NotchRect.Contains(p):
		return kindNotch
	case s.hit.Contains(p):
		return kindHit
	default:
		return kindEmpty
	}
}

// Render draws the canvas, one styled run per stretch of equal cells.
func (c canvas) Render(s scene, styles map[cellKind]lipgloss.Style) string {
	var b strings.Builder
	for row := 0; row < c.rows; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		run, n := kindEmpty, 0
		flush := func() {
			if n > 0 {
				b.WriteString(styles[run].Render(strings.Repeat(cellGlyphs[run], n)))
			}
		}
		for col := 0; col < c.cols; col++ {
			k := c.kindAt(col, row, s)
			if k != run {
				flush()
				run, n = k, 0
			}
			n++
		}
		flush()
	}
	return b.String()
}

// hitRectOnScreen converts a window-local hit rect to screen space.
func hitRectOnScreen(g geometry.Geometry, r geometry.Rect) geometry.Rect {
	frame := g.WindowFrame()
	return geometry.Rect{X: frame.X + r.X, Y: frame.Y + r.Y, W: r.W, H: r.H}
}
