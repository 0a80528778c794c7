package activity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var recordedAt = time.Date(2026, 1, 17, 12, 0, 0, 0, time.UTC)

func date(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestMockGrid(t *testing.T) {
	g := MockGrid("octocat", recordedAt)

	require.NoError(t, g.Validate())
	assert.Equal(t, "octocat", g.Username)
	assert.Len(t, g.Weeks, DefaultWeeks)
	assert.Equal(t, DefaultWeeks*DaysPerWeek, g.Len())
	assert.Equal(t, 625, g.Total)

	first, ok := g.Day(Cell{Week: 0, Day: 0})
	require.True(t, ok)
	assert.Equal(t, date("2025-08-17"), first.Date)
	assert.Equal(t, time.Sunday, first.Date.Weekday())

	last, ok := g.Day(Cell{Week: 21, Day: 6})
	require.True(t, ok)
	assert.Equal(t, date("2026-01-17"), last.Date)
	assert.Equal(t, 10, last.Count)
	assert.Equal(t, 1, last.Level)

	big, _ := g.Day(Cell{Week: 1, Day: 0})
	assert.Equal(t, 50, big.Count)
	assert.Equal(t, "#39d353", big.Color())

	_, ok = g.Day(Cell{Week: 22, Day: 0})
	assert.False(t, ok)
	_, ok = g.Day(Cell{Week: 0, Day: 7})
	assert.False(t, ok)
}

func TestMock_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMock().Fetch(ctx, "octocat")

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "octocat", fe.Identity)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGrid_Validate(t *testing.T) {
	full := func(start string) Week {
		w := Week{}
		for i := range DaysPerWeek {
			w.Days = append(w.Days, Day{Date: date(start).AddDate(0, 0, i)})
		}
		return w
	}

	tests := []struct {
		name    string
		grid    *Grid
		wantErr bool
	}{
		{"nil", nil, true},
		{"empty", &Grid{}, false},
		{"full weeks", &Grid{Weeks: []Week{full("2026-01-04"), full("2026-01-11")}}, false},
		{"partial last", &Grid{Weeks: []Week{full("2026-01-04"), {Days: []Day{{Date: date("2026-01-11")}}}}}, false},
		{"partial middle", &Grid{Weeks: []Week{full("2025-12-28"), {Days: []Day{{}}}, full("2026-01-11")}}, true},
		{"empty week", &Grid{Weeks: []Week{{}}}, true},
		{"negative count", &Grid{Weeks: []Week{{Days: []Day{{Count: -1}}}}}, true},
		{"level too high", &Grid{Weeks: []Week{{Days: []Day{{Level: 5}}}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.grid.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDay_Color(t *testing.T) {
	assert.Equal(t, "#161b22", Day{Level: 0}.Color())
	assert.Equal(t, "#0e4429", Day{Level: 1}.Color())
	assert.Equal(t, "#006d32", Day{Level: 2}.Color())
	assert.Equal(t, "#26a641", Day{Level: 3}.Color())
	assert.Equal(t, "#39d353", Day{Level: 4}.Color())
	assert.Equal(t, EmptyColor, Day{Level: 9}.Color())
}

func TestFetchError(t *testing.T) {
	err := &FetchError{Identity: "octocat", Op: "query", Cause: ErrUserNotFound}

	assert.Equal(t, `fetch activity for "octocat": query: user not found`, err.Error())
	assert.True(t, errors.Is(err, ErrUserNotFound))
}

func TestMonthLabels(t *testing.T) {
	g := MockGrid("octocat", recordedAt)

	t.Run("shifted", func(t *testing.T) {
		assert.Equal(t, []MonthLabel{
			{Week: 4, Name: "Sep"},
			{Week: 8, Name: "Oct"},
			{Week: 12, Name: "Nov"},
			{Week: 17, Name: "Dec"},
			{Week: 21, Name: "Jan"},
		}, MonthLabels(g, LabelPolicyShifted))
	})

	t.Run("first of month", func(t *testing.T) {
		assert.Equal(t, []MonthLabel{
			{Week: 2, Name: "Sep"},
			{Week: 6, Name: "Oct"},
			{Week: 10, Name: "Nov"},
			{Week: 15, Name: "Dec"},
			{Week: 19, Name: "Jan"},
		}, MonthLabels(g, LabelPolicyFirstOfMonth))
	})

	t.Run("shifted label past the end is dropped", func(t *testing.T) {
		short := &Grid{Weeks: g.Weeks[:4]}
		assert.Empty(t, MonthLabels(short, LabelPolicyShifted), "week 3 is September, label would land on column 4")
	})

	t.Run("nil grid", func(t *testing.T) {
		assert.Nil(t, MonthLabels(nil, LabelPolicyShifted))
	})
}

func TestParseLabelPolicy(t *testing.T) {
	p, err := ParseLabelPolicy("")
	require.NoError(t, err)
	assert.Equal(t, LabelPolicyShifted, p)

	p, err = ParseLabelPolicy("first-of-month")
	require.NoError(t, err)
	assert.Equal(t, LabelPolicyFirstOfMonth, p)
	assert.Equal(t, "first-of-month", p.String())

	_, err = ParseLabelPolicy("weekly")
	assert.Error(t, err)
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "13 6 Sep", Tooltip(Day{Date: date("2025-09-06"), Count: 13}))

	g := MockGrid("octocat", recordedAt)
	assert.Equal(t, "625 contributions in the last 22 weeks", Summary(g))

	g.Total = 1234
	assert.Equal(t, "1,234 contributions in the last 22 weeks", Summary(g))

	assert.Equal(t, "2 hours ago", FetchedAgo(g, recordedAt.Add(2*time.Hour)))
	assert.Equal(t, "never", FetchedAgo(&Grid{}, recordedAt))
}
