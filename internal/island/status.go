// Package island implements the notch island interaction state machine:
// hover debounce, click-to-open, click-away-to-close, and the visibility
// and hit-region updates that follow each status change.
package island

import (
	"fmt"

	"github.com/jmylchreest/gitisland/internal/geometry"
)

// Status is the open/closed state of the island.
type Status int

const (
	StatusClosed Status = iota
	StatusOpened
)

func (s Status) String() string {
	switch s {
	case StatusClosed:
		return "closed"
	case StatusOpened:
		return "opened"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Reason records what caused a transition.
type Reason string

const (
	ReasonClick    Reason = "click"
	ReasonHover    Reason = "hover"
	ReasonExternal Reason = "external"
)

// Change describes one status transition.
type Change struct {
	Old    Status
	New    Status
	Reason Reason

	// HitRect is the window-local region that should receive pointer input
	// in the new status.
	HitRect geometry.Rect

	// Interactive is false while closed: the window must let the pointer
	// through everywhere outside the hit region.
	Interactive bool
}
