package reveal

import (
	"slices"
	"time"

	"github.com/jmylchreest/gitisland/internal/activity"
)

// Box is one cell currently fading in the loading animation.
type Box struct {
	Cell      activity.Cell
	Intensity float64 // 1 at insertion, decays to 0
	StartedAt time.Time
}

// BoxSet holds at most one Box per cell.
type BoxSet struct {
	boxes map[activity.Cell]Box
}

// NewBoxSet creates an empty set.
func NewBoxSet() *BoxSet {
	return &BoxSet{boxes: make(map[activity.Cell]Box)}
}

// Add inserts a full-intensity box for c unless c is already fading.
func (s *BoxSet) Add(c activity.Cell, now time.Time) bool {
	if _, ok := s.boxes[c]; ok {
		return false
	}
	s.boxes[c] = Box{Cell: c, Intensity: 1, StartedAt: now}
	return true
}

// Decay recomputes every intensity as 1 - age/fade and drops boxes that
// have reached zero.
func (s *BoxSet) Decay(now time.Time, fade time.Duration) {
	for c, b := range s.boxes {
		age := now.Sub(b.StartedAt)
		intensity := max(0, 1-age.Seconds()/fade.Seconds())
		if intensity <= 0 {
			delete(s.boxes, c)
			continue
		}
		b.Intensity = intensity
		s.boxes[c] = b
	}
}

// Get returns the box for c, if present.
func (s *BoxSet) Get(c activity.Cell) (Box, bool) {
	b, ok := s.boxes[c]
	return b, ok
}

// Len returns the number of boxes.
func (s *BoxSet) Len() int { return len(s.boxes) }

// Clear removes every box.
func (s *BoxSet) Clear() { clear(s.boxes) }

// Snapshot returns the boxes ordered by week, then day.
func (s *BoxSet) Snapshot() []Box {
	out := make([]Box, 0, len(s.boxes))
	for _, b := range s.boxes {
		out = append(out, b)
	}
	slices.SortFunc(out, func(a, b Box) int {
		if a.Cell.Week != b.Cell.Week {
			return a.Cell.Week - b.Cell.Week
		}
		return a.Cell.Day - b.Cell.Day
	})
	return out
}
