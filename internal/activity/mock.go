package activity

import (
	"context"
	"time"
)

// mockStart is the Sunday the recorded calendar begins on.
var mockStart = time.Date(2025, time.August, 17, 0, 0, 0, 0, time.UTC)

type recordedDay struct{ count, level int }

// mockActivity is a real calendar recorded on 2026-01-17. Days not listed
// had no contributions.
var mockActivity = map[string]recordedDay{
	"2025-08-24": {50, 4},
	"2025-08-31": {1, 1},
	"2025-09-06": {13, 2},
	"2025-09-07": {3, 1},
	"2025-09-22": {2, 1},
	"2025-11-02": {3, 1},
	"2025-11-03": {1, 1},
	"2025-11-04": {10, 1},
	"2025-11-05": {5, 1},
	"2025-11-11": {2, 1},
	"2025-11-12": {7, 1},
	"2025-11-13": {32, 4},
	"2025-11-14": {7, 1},
	"2025-11-15": {2, 1},
	"2025-11-16": {2, 1},
	"2025-11-17": {7, 1},
	"2025-11-18": {3, 1},
	"2025-11-19": {4, 1},
	"2025-11-22": {5, 1},
	"2025-11-25": {1, 1},
	"2025-11-28": {21, 3},
	"2025-11-29": {8, 1},
	"2025-11-30": {25, 3},
	"2025-12-02": {14, 2},
	"2025-12-21": {11, 2},
	"2025-12-22": {13, 2},
	"2025-12-23": {12, 2},
	"2025-12-24": {10, 1},
	"2025-12-25": {22, 3},
	"2025-12-26": {21, 3},
	"2025-12-27": {22, 3},
	"2025-12-28": {1, 1},
	"2025-12-29": {3, 1},
	"2025-12-31": {6, 1},
	"2026-01-01": {13, 2},
	"2026-01-02": {12, 2},
	"2026-01-03": {3, 1},
	"2026-01-04": {26, 3},
	"2026-01-05": {13, 2},
	"2026-01-06": {13, 2},
	"2026-01-07": {37, 4},
	"2026-01-08": {40, 4},
	"2026-01-09": {21, 3},
	"2026-01-10": {16, 2},
	"2026-01-11": {10, 1},
	"2026-01-12": {2, 1},
	"2026-01-13": {2, 1},
	"2026-01-14": {9, 1},
	"2026-01-15": {26, 3},
	"2026-01-16": {23, 3},
	"2026-01-17": {10, 1},
}

// Mock serves a fixed recorded calendar. It is used when no token is
// configured and in previews.
type Mock struct {
	now func() time.Time
}

// NewMock creates a Mock provider.
func NewMock() *Mock {
	return &Mock{now: time.Now}
}

// Fetch implements Provider. It honours cancellation but never fails
// otherwise.
func (m *Mock) Fetch(ctx context.Context, identity string) (*Grid, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{Identity: identity, Op: "request", Cause: err}
	}
	return MockGrid(identity, m.now()), nil
}

// MockGrid builds the recorded calendar for identity.
func MockGrid(identity string, fetchedAt time.Time) *Grid {
	grid := &Grid{Username: identity, FetchedAt: fetchedAt}
	for w := range DefaultWeeks {
		days := make([]Day, 0, DaysPerWeek)
		for d := range DaysPerWeek {
			date := mockStart.AddDate(0, 0, w*DaysPerWeek+d)
			rec := mockActivity[date.Format(DateLayout)]
			grid.Total += rec.count
			days = append(days, Day{Date: date, Count: rec.count, Level: rec.level})
		}
		grid.Weeks = append(grid.Weeks, Week{Days: days})
	}
	return grid
}
