package geometry

// DisplayMetrics describes one display as reported by the host.
type DisplayMetrics struct {
	Name    string
	Frame   Rect // screen space, bottom-left origin
	Builtin bool

	// SafeAreaTop is the height of the top safe-area inset; zero means the
	// display has no cutout.
	SafeAreaTop float64

	// AuxTopLeftWidth and AuxTopRightWidth are the widths of the usable
	// menu-bar areas left and right of the cutout. Zero means unknown.
	AuxTopLeftWidth  float64
	AuxTopRightWidth float64
}

// HasPhysicalNotch reports whether the display reports a cutout.
func (m DisplayMetrics) HasPhysicalNotch() bool {
	return m.SafeAreaTop > 0
}

// NotchSize derives the cutout size from the display metrics. Displays
// without a cutout get FallbackNotchSize together with ErrNoCutout.
func NotchSize(m DisplayMetrics) (Size, error) {
	if m.SafeAreaTop <= 0 {
		return FallbackNotchSize, ErrNoCutout
	}

	height := m.SafeAreaTop
	if m.AuxTopLeftWidth <= 0 || m.AuxTopRightWidth <= 0 {
		return Size{W: fallbackNotchWidth, H: height}, nil
	}

	width := m.Frame.W - m.AuxTopLeftWidth - m.AuxTopRightWidth + 4
	return Size{W: width, H: height}, nil
}

// SelectDisplay picks the target display: the built-in one when present,
// otherwise the first (main) display.
func SelectDisplay(displays []DisplayMetrics) (DisplayMetrics, bool) {
	if len(displays) == 0 {
		return DisplayMetrics{}, false
	}
	for _, d := range displays {
		if d.Builtin {
			return d, true
		}
	}
	return displays[0], true
}

// FromDisplay computes the session geometry for a display. The returned
// error is ErrNoCutout when the fallback notch size was used; the Geometry
// is valid either way.
func FromDisplay(m DisplayMetrics, windowHeight float64) (Geometry, error) {
	if windowHeight <= 0 {
		windowHeight = DefaultWindowHeight
	}

	size, err := NotchSize(m)
	screen := m.Frame
	notch := Rect{
		X: screen.X + (screen.W-size.W)/2,
		Y: screen.MaxY() - size.H,
		W: size.W,
		H: size.H,
	}

	return New(notch, screen, windowHeight, m.HasPhysicalNotch()), err
}
