// Package clock provides an injectable time source so timer-driven code
// (hover debounce, hide delays, animation loops) can be driven
// deterministically in tests.
//
// Production code uses Real(). Tests use Fake() and move time with Advance;
// AfterFunc callbacks registered on a fake clock run synchronously inside
// Advance, in deadline order.
package clock

import "time"

// Clock abstracts the subset of the time package used by gitisland.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc waits for d, then calls f. The returned Timer can cancel
	// the pending call.
	AfterFunc(d time.Duration, f func()) *Timer
}

// Timer is a handle to a pending AfterFunc call.
type Timer struct {
	stopFunc func() bool
}

// Stop prevents the timer from firing. It returns false if the timer has
// already fired or been stopped. Calling Stop more than once is safe.
func (t *Timer) Stop() bool {
	if t == nil || t.stopFunc == nil {
		return false
	}
	return t.stopFunc()
}
