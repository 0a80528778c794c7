package geometry

// HitRect returns the window-local region (bottom-left origin) that should
// receive pointer events. Closed exposes the notch padded for
// discoverability; opened exposes the panel plus horizontal slack, anchored
// at the window top.
func (g Geometry) HitRect(opened bool, openedSize Size) Rect {
	screenWidth := g.ScreenRect.W

	if opened {
		width := openedSize.W + g.Padding.OpenedSlack
		return Rect{
			X: (screenWidth - width) / 2,
			Y: g.WindowHeight - openedSize.H,
			W: width,
			H: openedSize.H,
		}
	}

	notch := g.NotchRect
	return Rect{
		X: (screenWidth-notch.W)/2 - g.Padding.ClosedX,
		Y: g.WindowHeight - notch.H - g.Padding.ClosedY,
		W: notch.W + 2*g.Padding.ClosedX,
		H: notch.H + 2*g.Padding.ClosedY,
	}
}
