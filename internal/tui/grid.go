package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/gitisland/internal/activity"
)

const cellGlyph = "■"

// renderGrid draws the contribution grid two columns per week with the
// month labels above it. color picks each cell's fill.
func renderGrid(g *activity.Grid, labels []activity.MonthLabel, color func(activity.Day, activity.Cell) string) string {
	if g == nil || len(g.Weeks) == 0 {
		return ""
	}

	header := []rune(strings.Repeat(" ", 2*len(g.Weeks)))
	end := 0
	for _, l := range labels {
		at := 2 * l.Week
		name := []rune(l.Name)
		if at < end || at+len(name) > len(header) {
			continue
		}
		copy(header[at:], name)
		end = at + len(name) + 1
	}

	lines := []string{strings.TrimRight(string(header), " ")}
	for d := 0; d < activity.DaysPerWeek; d++ {
		var b strings.Builder
		for w, week := range g.Weeks {
			if d >= len(week.Days) {
				b.WriteString("  ")
				continue
			}
			fill := color(week.Days[d], activity.Cell{Week: w, Day: d})
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(fill)).Render(cellGlyph))
			b.WriteByte(' ')
		}
		lines = append(lines, strings.TrimRight(b.String(), " "))
	}
	return strings.Join(lines, "\n")
}
