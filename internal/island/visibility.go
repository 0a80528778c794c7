package island

import (
	"time"

	"github.com/jmylchreest/gitisland/internal/anim"
	"github.com/jmylchreest/gitisland/internal/geometry"
)

// Hide delay bounds. The collapse transition needs at least the minimum to
// finish before the view is hidden.
const (
	DefaultHideDelay = 350 * time.Millisecond
	MinHideDelay     = 350 * time.Millisecond
	MaxHideDelay     = 500 * time.Millisecond
)

// Host is the window the island is drawn in.
type Host interface {
	// ApplyHitRegion restricts pointer input to rect (window-local,
	// bottom-left origin). When interactive is false the window must be
	// transparent to the pointer everywhere else.
	ApplyHitRegion(rect geometry.Rect, interactive bool)

	// SetVisible shows or hides the island view.
	SetVisible(visible bool)
}

// Visibility keeps a Host in step with a Machine: it pushes the hit region
// on every change, shows the view on open and hides it a short delay after
// close.
type Visibility struct {
	machine *Machine
	host    Host
	delay   time.Duration
	hide    *anim.Deferred
}

// VisibilityOption configures Bind.
type VisibilityOption func(*Visibility)

// WithHideDelay sets the close-to-hide delay, clamped to
// [MinHideDelay, MaxHideDelay].
func WithHideDelay(d time.Duration) VisibilityOption {
	return func(v *Visibility) {
		v.delay = min(max(d, MinHideDelay), MaxHideDelay)
	}
}

// Bind attaches host to m and applies the current state immediately. A
// display without a physical notch keeps the island visible at all times.
func Bind(m *Machine, host Host, opts ...VisibilityOption) *Visibility {
	v := &Visibility{
		machine: m,
		host:    host,
		delay:   DefaultHideDelay,
	}
	for _, opt := range opts {
		opt(v)
	}
	v.hide = anim.NewDeferred(m.clock, m.dispatcher, m.logger, "close-hide")

	status := m.Status()
	host.ApplyHitRegion(m.HitRect(), status == StatusOpened)
	host.SetVisible(status == StatusOpened || !m.geom.HasPhysicalNotch)

	m.OnStatusChange(v.handle)
	return v
}

// HidePending reports whether a hide is scheduled.
func (v *Visibility) HidePending() bool {
	return v.hide.Pending()
}

func (v *Visibility) handle(c Change) {
	v.host.ApplyHitRegion(c.HitRect, c.Interactive)

	switch c.New {
	case StatusOpened:
		v.hide.Cancel()
		v.host.SetVisible(true)
	case StatusClosed:
		if !v.machine.geom.HasPhysicalNotch {
			return
		}
		v.hide.Schedule(v.delay, func() {
			// Cancellation alone is not trusted to win against a reopen.
			if v.machine.Status() != StatusClosed {
				return
			}
			v.host.SetVisible(false)
		})
	}
}

// Stop cancels any pending hide.
func (v *Visibility) Stop() {
	v.hide.Cancel()
}
