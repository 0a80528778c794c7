// Package geometry maps display metrics to the rectangles the island reacts
// to and answers point-in-region questions.
//
// Every rectangle in a Geometry lives in screen space with a bottom-left
// origin. Hosts that report top-left coordinates convert with FlipY before
// asking any question. HitRect is the only function that returns
// window-local coordinates, because that is what a host window consumes.
package geometry

import "errors"

// ErrNoCutout is reported when the target display has no physical notch.
// It is never fatal: a fallback notch size is used instead.
var ErrNoCutout = errors.New("display has no physical cutout")

// Default sizes, in points.
var (
	// OpenedSize is the size of the expanded panel.
	OpenedSize = Size{W: 400, H: 175}

	// FallbackNotchSize is used when the display reports no safe-area inset.
	FallbackNotchSize = Size{W: 224, H: 38}
)

const (
	// DefaultWindowHeight is the vertical extent of the overlay window.
	DefaultWindowHeight = 750

	// fallbackNotchWidth is used when a safe-area inset exists but the
	// auxiliary areas either side of the notch are not reported.
	fallbackNotchWidth = 180
)

// Point is a position in points.
type Point struct {
	X, Y float64
}

// Size is a width and height in points.
type Size struct {
	W, H float64
}

// Rect is an axis-aligned rectangle. Origin is its bottom-left corner.
type Rect struct {
	X, Y, W, H float64
}

// MinX returns the left edge.
func (r Rect) MinX() float64 { return r.X }

// MaxX returns the right edge.
func (r Rect) MaxX() float64 { return r.X + r.W }

// MinY returns the bottom edge.
func (r Rect) MinY() float64 { return r.Y }

// MaxY returns the top edge.
func (r Rect) MaxY() float64 { return r.Y + r.H }

// MidX returns the horizontal centre.
func (r Rect) MidX() float64 { return r.X + r.W/2 }

// Size returns the rectangle's size.
func (r Rect) Size() Size { return Size{W: r.W, H: r.H} }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Contains reports whether p lies inside r. The left and bottom edges are
// inclusive, the right and top edges exclusive, so adjacent rectangles never
// both claim a point.
func (r Rect) Contains(p Point) bool {
	if r.Empty() {
		return false
	}
	return p.X >= r.MinX() && p.X < r.MaxX() && p.Y >= r.MinY() && p.Y < r.MaxY()
}

// Inset returns r shrunk by dx on the left and right and dy on the top and
// bottom. Negative values grow the rectangle.
func (r Rect) Inset(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W - 2*dx, H: r.H - 2*dy}
}

// FlipY converts a point between top-left and bottom-left origin spaces of
// the given height. The conversion is its own inverse.
func FlipY(p Point, height float64) Point {
	return Point{X: p.X, Y: height - p.Y}
}

// HitPadding controls how far the exported hit region extends beyond the
// visible shapes.
type HitPadding struct {
	ClosedX     float64 // each side of the notch, horizontally
	ClosedY     float64 // above and below the notch
	OpenedSlack float64 // total extra width around the opened panel
}

// DefaultHitPadding matches the shipped discoverability margins.
var DefaultHitPadding = HitPadding{ClosedX: 10, ClosedY: 5, OpenedSlack: 52}

// Geometry is computed once per session from display metrics and never
// mutated afterwards.
type Geometry struct {
	NotchRect        Rect    // physical cutout, screen space
	ScreenRect       Rect    // full display bounds, screen space
	WindowHeight     float64 // overlay window height, anchored to the screen top
	HasPhysicalNotch bool
	Padding          HitPadding
}

// New builds a Geometry with the default hit padding.
func New(notch, screen Rect, windowHeight float64, hasPhysicalNotch bool) Geometry {
	return Geometry{
		NotchRect:        notch,
		ScreenRect:       screen,
		WindowHeight:     windowHeight,
		HasPhysicalNotch: hasPhysicalNotch,
		Padding:          DefaultHitPadding,
	}
}

// PointInNotch reports whether p lies within the notch rectangle. No margin
// is applied.
func (g Geometry) PointInNotch(p Point) bool {
	return g.NotchRect.Contains(p)
}

// OpenedPanelRect returns the panel rectangle of the given size, centred
// horizontally on the screen (and so under the notch) with its top edge at
// the top of the window.
func (g Geometry) OpenedPanelRect(size Size) Rect {
	top := g.ScreenRect.MaxY()
	return Rect{
		X: g.ScreenRect.MidX() - size.W/2,
		Y: top - size.H,
		W: size.W,
		H: size.H,
	}
}

// PointInOpenedPanel reports whether p lies within the opened panel.
func (g Geometry) PointInOpenedPanel(p Point, size Size) bool {
	return g.OpenedPanelRect(size).Contains(p)
}

// PointOutsidePanel is the negation of PointInOpenedPanel; it detects
// click-away.
func (g Geometry) PointOutsidePanel(p Point, size Size) bool {
	return !g.PointInOpenedPanel(p, size)
}

// WindowFrame returns the overlay window's frame in screen space: full
// screen width, WindowHeight tall, anchored at the top of the screen.
func (g Geometry) WindowFrame() Rect {
	return Rect{
		X: g.ScreenRect.X,
		Y: g.ScreenRect.MaxY() - g.WindowHeight,
		W: g.ScreenRect.W,
		H: g.WindowHeight,
	}
}
