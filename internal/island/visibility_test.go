package island

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/gitisland/internal/geometry"
)

type recordingHost struct {
	visible     []bool
	regions     []geometry.Rect
	interactive []bool
}

func (r *recordingHost) ApplyHitRegion(rect geometry.Rect, interactive bool) {
	r.regions = append(r.regions, rect)
	r.interactive = append(r.interactive, interactive)
}

func (r *recordingHost) SetVisible(v bool) {
	r.visible = append(r.visible, v)
}

func (r *recordingHost) lastVisible() bool {
	return r.visible[len(r.visible)-1]
}

func TestBind_InitialState(t *testing.T) {
	h := newHarness(t, true)
	host := &recordingHost{}
	Bind(h.machine, host)

	require.Len(t, host.regions, 1)
	assert.Equal(t, geometry.Rect{X: 653.5, Y: 713, W: 205, H: 42}, host.regions[0])
	assert.Equal(t, []bool{false}, host.interactive)
	assert.Equal(t, []bool{false}, host.visible)
}

func TestVisibility_ClickAwayHidesAfterDelay(t *testing.T) {
	h := newHarness(t, true)
	host := &recordingHost{}
	v := Bind(h.machine, host)

	h.down(inNotch)
	assert.True(t, host.lastVisible())
	assert.Equal(t, []bool{false, true}, host.interactive)

	h.down(outside)
	assert.Equal(t, StatusClosed, h.machine.Status(), "close is immediate")
	assert.True(t, v.HidePending())
	assert.True(t, host.lastVisible())

	h.clock.Advance(349 * time.Millisecond)
	assert.True(t, host.lastVisible())

	h.clock.Advance(time.Millisecond)
	assert.False(t, host.lastVisible())
	assert.False(t, v.HidePending())
}

func TestVisibility_ReopenCancelsHide(t *testing.T) {
	h := newHarness(t, true)
	host := &recordingHost{}
	v := Bind(h.machine, host)

	h.down(inNotch)
	h.down(outside)
	h.clock.Advance(100 * time.Millisecond)
	h.down(inNotch)

	assert.False(t, v.HidePending())
	h.clock.Advance(time.Second)

	assert.Equal(t, StatusOpened, h.machine.Status())
	assert.Equal(t, []bool{false, true, true}, host.visible)
}

func TestVisibility_OneHidePerClose(t *testing.T) {
	h := newHarness(t, true)
	host := &recordingHost{}
	Bind(h.machine, host)

	for range 3 {
		h.machine.Open(ReasonExternal)
		h.machine.Close(ReasonExternal)
		h.clock.Advance(time.Second)
	}

	hides := 0
	for _, v := range host.visible[1:] {
		if !v {
			hides++
		}
	}
	assert.Equal(t, 3, hides)
}

func TestVisibility_NoPhysicalNotchStaysVisible(t *testing.T) {
	h := newHarness(t, false)
	host := &recordingHost{}
	v := Bind(h.machine, host)

	assert.Equal(t, []bool{true}, host.visible)

	h.machine.Open(ReasonExternal)
	h.machine.Close(ReasonExternal)
	assert.False(t, v.HidePending())

	h.clock.Advance(time.Second)
	for _, visible := range host.visible {
		assert.True(t, visible)
	}
}

func TestWithHideDelay_Clamps(t *testing.T) {
	h := newHarness(t, true)

	v := Bind(h.machine, &recordingHost{}, WithHideDelay(time.Second))
	assert.Equal(t, MaxHideDelay, v.delay)

	v = Bind(h.machine, &recordingHost{}, WithHideDelay(time.Millisecond))
	assert.Equal(t, MinHideDelay, v.delay)

	v = Bind(h.machine, &recordingHost{}, WithHideDelay(420*time.Millisecond))
	assert.Equal(t, 420*time.Millisecond, v.delay)
}
