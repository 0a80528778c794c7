// Package activity models a contribution-activity grid and the providers
// that fetch it.
package activity

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DateLayout is the calendar-day format used by providers and output.
const DateLayout = "2006-01-02"

// DaysPerWeek is the number of cells in a full week column.
const DaysPerWeek = 7

// DefaultWeeks is how many trailing weeks are shown.
const DefaultWeeks = 22

// MaxLevel is the highest contribution level.
const MaxLevel = 4

// Level fill colours, indexed by level.
var LevelColors = [MaxLevel + 1]string{
	"#161b22", // none
	"#0e4429",
	"#006d32",
	"#26a641",
	"#39d353",
}

// EmptyColor is the fill of a cell with no contributions.
var EmptyColor = LevelColors[0]

// Day is one cell of the grid.
type Day struct {
	Date  time.Time `json:"date" yaml:"date"`
	Count int       `json:"count" yaml:"count"`
	Level int       `json:"level" yaml:"level"`
}

// Color returns the fill colour for the day's level.
func (d Day) Color() string {
	if d.Level < 0 || d.Level > MaxLevel {
		return EmptyColor
	}
	return LevelColors[d.Level]
}

// Week is one column of the grid, Sunday first.
type Week struct {
	Days []Day `json:"days" yaml:"days"`
}

// Grid is the week-major, day-minor activity matrix for one identity.
type Grid struct {
	Username  string    `json:"username" yaml:"username"`
	Total     int       `json:"total" yaml:"total"`
	Weeks     []Week    `json:"weeks" yaml:"weeks"`
	FetchedAt time.Time `json:"fetched_at" yaml:"fetched_at"`
}

// Cell addresses one day in a grid.
type Cell struct {
	Week int
	Day  int
}

// Day returns the day at c and whether c is inside the grid.
func (g *Grid) Day(c Cell) (Day, bool) {
	if g == nil || c.Week < 0 || c.Week >= len(g.Weeks) {
		return Day{}, false
	}
	days := g.Weeks[c.Week].Days
	if c.Day < 0 || c.Day >= len(days) {
		return Day{}, false
	}
	return days[c.Day], true
}

// Len returns the number of cells in the grid.
func (g *Grid) Len() int {
	if g == nil {
		return 0
	}
	n := 0
	for _, w := range g.Weeks {
		n += len(w.Days)
	}
	return n
}

// Validate checks the data contract. Only the first and last weeks may be
// partial: the calendar starts and ends mid-week.
func (g *Grid) Validate() error {
	if g == nil {
		return errors.New("nil grid")
	}
	for i, w := range g.Weeks {
		if len(w.Days) == 0 || len(w.Days) > DaysPerWeek {
			return fmt.Errorf("week %d: %d days", i, len(w.Days))
		}
		if len(w.Days) < DaysPerWeek && i != 0 && i != len(g.Weeks)-1 {
			return fmt.Errorf("week %d: partial week inside the grid", i)
		}
		for j, d := range w.Days {
			if d.Count < 0 {
				return fmt.Errorf("week %d day %d: negative count %d", i, j, d.Count)
			}
			if d.Level < 0 || d.Level > MaxLevel {
				return fmt.Errorf("week %d day %d: level %d out of range", i, j, d.Level)
			}
		}
	}
	return nil
}

// Provider fetches the activity grid for an identity.
type Provider interface {
	Fetch(ctx context.Context, identity string) (*Grid, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, identity string) (*Grid, error)

// Fetch calls f.
func (f ProviderFunc) Fetch(ctx context.Context, identity string) (*Grid, error) {
	return f(ctx, identity)
}

// ErrUserNotFound is returned when the remote service has no such user.
var ErrUserNotFound = errors.New("user not found")

// FetchError is returned by providers when a fetch fails.
type FetchError struct {
	Identity string
	Op       string
	Cause    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch activity for %q: %s: %v", e.Identity, e.Op, e.Cause)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// trimWeeks keeps the last n weeks.
func trimWeeks(weeks []Week, n int) []Week {
	if n > 0 && len(weeks) > n {
		return weeks[len(weeks)-n:]
	}
	return weeks
}
