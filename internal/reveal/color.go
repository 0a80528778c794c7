package reveal

import (
	"fmt"
	"math"
)

// Brightness maps a fade intensity to a greyscale brightness. Each band
// interpolates linearly:
//
//	(0.7, 1.0]  -> 0.85 .. 1.0
//	(0.4, 0.7]  -> 0.5  .. 0.85
//	(0.15, 0.4] -> 0.25 .. 0.5
//	[0, 0.15]   -> 0.09 .. 0.25
func Brightness(intensity float64) float64 {
	intensity = min(max(intensity, 0), 1)
	switch {
	case intensity > 0.7:
		return 0.85 + 0.15*(intensity-0.7)/0.3
	case intensity > 0.4:
		return 0.5 + 0.35*(intensity-0.4)/0.3
	case intensity > 0.15:
		return 0.25 + 0.25*(intensity-0.15)/0.25
	default:
		return 0.09 + 0.16*intensity/0.15
	}
}

// Grey formats a brightness in [0,1] as a "#rrggbb" grey.
func Grey(brightness float64) string {
	v := int(math.Round(min(max(brightness, 0), 1) * 255))
	return fmt.Sprintf("#%02x%02x%02x", v, v, v)
}
