package theme

import (
	"fmt"
	"strings"

	"github.com/jmylchreest/gitisland/internal/activity"
)

// ColorClass is the CSS class that fills a cell with color ("#rrggbb").
func ColorClass(color string) string {
	return "c-" + strings.ToLower(strings.TrimPrefix(color, "#"))
}

// ColorRules returns one rule per level colour and per grey the reveal
// animation can produce.
func ColorRules() string {
	var b strings.Builder
	for _, color := range activity.LevelColors {
		writeRule(&b, color)
	}
	for v := 0; v < 256; v++ {
		writeRule(&b, fmt.Sprintf("#%02x%02x%02x", v, v, v))
	}
	return b.String()
}

func writeRule(b *strings.Builder, color string) {
	fmt.Fprintf(b, ".cell.%s { background-color: %s; }\n", ColorClass(color), color)
}
