package activity

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// Tooltip is the hover text for one cell, e.g. "13 6 Sep".
func Tooltip(d Day) string {
	return fmt.Sprintf("%d %s", d.Count, d.Date.Format("2 Jan"))
}

// Summary is the panel header line.
func Summary(g *Grid) string {
	if g == nil {
		return ""
	}
	noun := "contributions"
	if g.Total == 1 {
		noun = "contribution"
	}
	return fmt.Sprintf("%s %s in the last %d weeks", humanize.Comma(int64(g.Total)), noun, len(g.Weeks))
}

// FetchedAgo describes when g was fetched relative to now.
func FetchedAgo(g *Grid, now time.Time) string {
	if g == nil || g.FetchedAt.IsZero() {
		return "never"
	}
	return humanize.RelTime(g.FetchedAt, now, "ago", "from now")
}
