package display

import (
	"math"
	"strings"

	"github.com/jmylchreest/gitisland/internal/config"
	"github.com/jmylchreest/gitisland/internal/geometry"
)

// Placement is the layer surface's position and size in pixels, measured
// from the top-left corner of the monitor.
type Placement struct {
	Left, Top     int
	Width, Height int
}

// PlacementFor converts a window-local hit rect (bottom-left origin) into
// the surface placement that covers exactly that rect, clipped to the
// overlay window.
func PlacementFor(rect geometry.Rect, g geometry.Geometry) Placement {
	wh := g.WindowHeight
	top := math.Max(0, wh-rect.MaxY())
	bottom := math.Min(wh, wh-rect.MinY())
	left := math.Max(0, rect.MinX())
	right := math.Min(g.ScreenRect.W, rect.MaxX())

	p := Placement{
		Left: int(math.Floor(left)),
		Top:  int(math.Floor(top)),
	}
	p.Width = max(0, int(math.Ceil(right))-p.Left)
	p.Height = max(0, int(math.Ceil(bottom))-p.Top)
	return p
}

// FramePlacement covers the whole overlay window.
func FramePlacement(g geometry.Geometry) Placement {
	return Placement{
		Width:  int(math.Ceil(g.ScreenRect.W)),
		Height: int(math.Ceil(g.WindowHeight)),
	}
}

// ToScreen maps a surface-local point (top-left origin) to screen space.
func (p Placement) ToScreen(x, y float64, g geometry.Geometry) geometry.Point {
	return geometry.Point{
		X: g.ScreenRect.X + float64(p.Left) + x,
		Y: g.ScreenRect.MaxY() - (float64(p.Top) + y),
	}
}

// builtinPrefixes are connector names used for internal panels.
var builtinPrefixes = []string{"eDP", "LVDS", "DSI"}

// IsBuiltinConnector reports whether a connector name belongs to a laptop
// panel.
func IsBuiltinConnector(connector string) bool {
	for _, prefix := range builtinPrefixes {
		if strings.HasPrefix(connector, prefix) {
			return true
		}
	}
	return false
}

// Metrics describes a monitor of the given logical size. Linux reports no
// cutout, so a notch exists only when configured.
func Metrics(connector string, width, height int, cfg config.DisplayConfig) geometry.DisplayMetrics {
	m := geometry.DisplayMetrics{
		Name:    connector,
		Frame:   geometry.Rect{W: float64(width), H: float64(height)},
		Builtin: IsBuiltinConnector(connector),
	}
	if cfg.NotchWidth > 0 && cfg.NotchHeight > 0 {
		m.SafeAreaTop = float64(cfg.NotchHeight)
		aux := (float64(width-cfg.NotchWidth) + 4) / 2
		m.AuxTopLeftWidth = aux
		m.AuxTopRightWidth = aux
	}
	return m
}
