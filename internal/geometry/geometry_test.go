package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// macbookDisplay mimics a 1512x982 built-in display with a 185x32 notch.
func macbookDisplay() DisplayMetrics {
	return DisplayMetrics{
		Name:             "Built-in Retina Display",
		Frame:            Rect{X: 0, Y: 0, W: 1512, H: 982},
		Builtin:          true,
		SafeAreaTop:      32,
		AuxTopLeftWidth:  665.5,
		AuxTopRightWidth: 665.5,
	}
}

func testGeometry(t *testing.T) Geometry {
	t.Helper()
	g, err := FromDisplay(macbookDisplay(), DefaultWindowHeight)
	require.NoError(t, err)
	return g
}

func TestRect_ContainsEdges(t *testing.T) {
	r := Rect{X: 10, Y: 20, W: 100, H: 50}

	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"bottom-left corner", Point{10, 20}, true},
		{"centre", Point{60, 45}, true},
		{"right edge excluded", Point{110, 45}, false},
		{"top edge excluded", Point{60, 70}, false},
		{"left of rect", Point{9.9, 45}, false},
		{"below rect", Point{60, 19.9}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Contains(tt.p))
		})
	}

	assert.False(t, Rect{}.Contains(Point{}), "empty rect contains nothing")
}

func TestNotchSize(t *testing.T) {
	size, err := NotchSize(macbookDisplay())
	require.NoError(t, err)
	assert.Equal(t, Size{W: 185, H: 32}, size)

	noAux := macbookDisplay()
	noAux.AuxTopRightWidth = 0
	size, err = NotchSize(noAux)
	require.NoError(t, err)
	assert.Equal(t, Size{W: 180, H: 32}, size)

	external := DisplayMetrics{Frame: Rect{W: 2560, H: 1440}}
	size, err = NotchSize(external)
	assert.ErrorIs(t, err, ErrNoCutout)
	assert.Equal(t, FallbackNotchSize, size)
}

func TestFromDisplay_NotchCentredAtTop(t *testing.T) {
	g := testGeometry(t)

	assert.True(t, g.HasPhysicalNotch)
	assert.InDelta(t, (1512-185)/2.0, g.NotchRect.X, 1e-9)
	assert.InDelta(t, 982-32, g.NotchRect.Y, 1e-9)
	assert.Equal(t, g.ScreenRect.MaxY(), g.NotchRect.MaxY())
	assert.InDelta(t, g.ScreenRect.MidX(), g.NotchRect.MidX(), 1e-9)
}

func TestFromDisplay_NoCutoutFallsBack(t *testing.T) {
	g, err := FromDisplay(DisplayMetrics{Frame: Rect{W: 1920, H: 1080}}, 0)
	assert.ErrorIs(t, err, ErrNoCutout)
	assert.False(t, g.HasPhysicalNotch)
	assert.Equal(t, FallbackNotchSize, g.NotchRect.Size())
	assert.Equal(t, float64(DefaultWindowHeight), g.WindowHeight)
}

func TestPointInNotch_NoMargin(t *testing.T) {
	g := testGeometry(t)
	n := g.NotchRect

	assert.True(t, g.PointInNotch(Point{n.MidX(), n.MinY() + 1}))
	assert.False(t, g.PointInNotch(Point{n.MinX() - 1, n.MinY() + 1}))
	assert.False(t, g.PointInNotch(Point{n.MidX(), n.MinY() - 1}))
}

func TestOpenedPanel(t *testing.T) {
	g := testGeometry(t)
	panel := g.OpenedPanelRect(OpenedSize)

	assert.Equal(t, g.ScreenRect.MaxY(), panel.MaxY(), "anchored at the window top")
	assert.InDelta(t, g.NotchRect.MidX(), panel.MidX(), 1e-9, "centred under the notch")

	inside := Point{panel.MidX(), panel.MinY() + 1}
	below := Point{panel.MidX(), panel.MinY() - 1}
	assert.True(t, g.PointInOpenedPanel(inside, OpenedSize))
	assert.False(t, g.PointOutsidePanel(inside, OpenedSize))
	assert.True(t, g.PointOutsidePanel(below, OpenedSize))
}

func TestHitRect(t *testing.T) {
	g := testGeometry(t)

	closed := g.HitRect(false, OpenedSize)
	assert.Equal(t, Rect{
		X: (1512-185)/2.0 - 10,
		Y: 750 - 32 - 5,
		W: 185 + 20,
		H: 32 + 10,
	}, closed)

	opened := g.HitRect(true, OpenedSize)
	assert.Equal(t, Rect{
		X: (1512 - 452) / 2.0,
		Y: 750 - 175,
		W: 452,
		H: 175,
	}, opened)
	assert.Equal(t, g.WindowHeight, opened.MaxY())
}

func TestWindowFrame(t *testing.T) {
	g := testGeometry(t)
	frame := g.WindowFrame()
	assert.Equal(t, Rect{X: 0, Y: 982 - 750, W: 1512, H: 750}, frame)
}

func TestSelectDisplay(t *testing.T) {
	external := DisplayMetrics{Name: "external", Frame: Rect{W: 2560, H: 1440}}
	builtin := macbookDisplay()

	d, ok := SelectDisplay([]DisplayMetrics{external, builtin})
	require.True(t, ok)
	assert.Equal(t, builtin.Name, d.Name)

	d, ok = SelectDisplay([]DisplayMetrics{external})
	require.True(t, ok)
	assert.Equal(t, "external", d.Name)

	_, ok = SelectDisplay(nil)
	assert.False(t, ok)
}

func TestFlipY(t *testing.T) {
	p := Point{X: 5, Y: 10}
	flipped := FlipY(p, 100)
	assert.Equal(t, Point{X: 5, Y: 90}, flipped)
	assert.Equal(t, p, FlipY(flipped, 100))
}
