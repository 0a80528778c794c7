package display

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/gitisland/internal/config"
	"github.com/jmylchreest/gitisland/internal/geometry"
)

func testGeometry() geometry.Geometry {
	return geometry.New(
		geometry.Rect{X: 663.5, Y: 950, W: 185, H: 32},
		geometry.Rect{X: 0, Y: 0, W: 1512, H: 982},
		750,
		true,
	)
}

func TestPlacementFor(t *testing.T) {
	g := testGeometry()

	closed := PlacementFor(g.HitRect(false, geometry.OpenedSize), g)
	assert.Equal(t, Placement{Left: 653, Top: 0, Width: 206, Height: 37}, closed,
		"padding above the window top is clipped")

	opened := PlacementFor(g.HitRect(true, geometry.OpenedSize), g)
	assert.Equal(t, Placement{Left: 530, Top: 0, Width: 452, Height: 175}, opened)

	assert.Equal(t, Placement{Width: 1512, Height: 750}, FramePlacement(g))
}

func TestPlacement_ToScreen(t *testing.T) {
	g := testGeometry()
	p := Placement{Left: 653, Top: 0, Width: 206, Height: 37}

	pt := p.ToScreen(103, 16, g)
	assert.Equal(t, geometry.Point{X: 756, Y: 966}, pt)
	assert.True(t, g.PointInNotch(pt))

	corner := FramePlacement(g).ToScreen(0, 0, g)
	assert.Equal(t, geometry.Point{X: 0, Y: 982}, corner)
}

func TestIsBuiltinConnector(t *testing.T) {
	for connector, want := range map[string]bool{
		"eDP-1":      true,
		"LVDS-1":     true,
		"DSI-1":      true,
		"HDMI-A-1":   false,
		"DP-2":       false,
		"":           false,
		"Virtual-1":  false,
		"eDP-2-test": true,
	} {
		assert.Equal(t, want, IsBuiltinConnector(connector), connector)
	}
}

func TestMetrics(t *testing.T) {
	m := Metrics("HDMI-A-1", 1920, 1080, config.DisplayConfig{})
	assert.False(t, m.Builtin)
	assert.False(t, m.HasPhysicalNotch())

	_, err := geometry.FromDisplay(m, 750)
	assert.True(t, errors.Is(err, geometry.ErrNoCutout))

	m = Metrics("eDP-1", 1512, 982, config.DisplayConfig{NotchWidth: 185, NotchHeight: 32})
	assert.True(t, m.Builtin)
	require.True(t, m.HasPhysicalNotch())

	size, err := geometry.NotchSize(m)
	require.NoError(t, err)
	assert.Equal(t, geometry.Size{W: 185, H: 32}, size)
}

func TestDisplayError(t *testing.T) {
	cause := errors.New("wayland socket missing")
	err := &DisplayError{Message: "no display available", Cause: cause}
	assert.Equal(t, "no display available: wayland socket missing", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "plain", (&DisplayError{Message: "plain"}).Error())
}
