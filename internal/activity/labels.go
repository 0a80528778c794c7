package activity

import (
	"fmt"
	"time"
)

// LabelPolicy decides which week column carries each month label.
type LabelPolicy int

const (
	// LabelPolicyShifted labels the column after the first week that lies
	// entirely inside a month. August is never labelled, and a label that
	// would fall past the last column is dropped.
	LabelPolicyShifted LabelPolicy = iota

	// LabelPolicyFirstOfMonth labels the column containing the 1st.
	LabelPolicyFirstOfMonth
)

func (p LabelPolicy) String() string {
	switch p {
	case LabelPolicyShifted:
		return "shifted"
	case LabelPolicyFirstOfMonth:
		return "first-of-month"
	default:
		return fmt.Sprintf("LabelPolicy(%d)", int(p))
	}
}

// ParseLabelPolicy parses the config spelling of a policy.
func ParseLabelPolicy(s string) (LabelPolicy, error) {
	switch s {
	case "", "shifted":
		return LabelPolicyShifted, nil
	case "first-of-month":
		return LabelPolicyFirstOfMonth, nil
	default:
		return 0, fmt.Errorf("unknown label policy %q", s)
	}
}

// MonthLabel places a short month name over a week column.
type MonthLabel struct {
	Week int
	Name string
}

// MonthLabels computes the header labels for g.
func MonthLabels(g *Grid, policy LabelPolicy) []MonthLabel {
	if g == nil {
		return nil
	}
	if policy == LabelPolicyFirstOfMonth {
		return firstOfMonthLabels(g)
	}
	return shiftedLabels(g)
}

func shiftedLabels(g *Grid) []MonthLabel {
	var labels []MonthLabel
	seen := make(map[time.Month]bool)

	for i, w := range g.Weeks {
		if len(w.Days) != DaysPerWeek {
			continue
		}
		month, ok := singleMonth(w)
		if !ok || month == time.August || seen[month] {
			continue
		}
		seen[month] = true
		if i+1 < len(g.Weeks) {
			labels = append(labels, MonthLabel{Week: i + 1, Name: w.Days[0].Date.Format("Jan")})
		}
	}
	return labels
}

func firstOfMonthLabels(g *Grid) []MonthLabel {
	var labels []MonthLabel
	for i, w := range g.Weeks {
		for _, d := range w.Days {
			if d.Date.Day() == 1 {
				labels = append(labels, MonthLabel{Week: i, Name: d.Date.Format("Jan")})
				break
			}
		}
	}
	return labels
}

func singleMonth(w Week) (time.Month, bool) {
	month := w.Days[0].Date.Month()
	for _, d := range w.Days[1:] {
		if d.Date.Month() != month {
			return 0, false
		}
	}
	return month, true
}
