package reveal

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/gitisland/internal/activity"
	"github.com/jmylchreest/gitisland/internal/clock"
	"github.com/jmylchreest/gitisland/internal/mainloop"
	"github.com/jmylchreest/gitisland/internal/store"
)

var epoch = time.Date(2026, 1, 17, 9, 0, 0, 0, time.UTC)

func newReveal(c clock.Clock, flag store.FlagStore, opts ...Option) *Reveal {
	base := []Option{
		WithClock(c),
		WithDispatcher(mainloop.Immediate{}),
		WithRand(rand.New(rand.NewPCG(1, 2))),
	}
	return New(flag, append(base, opts...)...)
}

func grid() *activity.Grid {
	return activity.MockGrid("octocat", epoch)
}

func TestReveal_FirstShowAnimatesOnce(t *testing.T) {
	c := clock.Fake(epoch)
	flag := store.NewMemoryFlagStore(false)
	r := newReveal(c, flag)

	assert.Equal(t, PhaseIdle, r.Phase())
	assert.Equal(t, PhaseAnimating, r.Show(grid()))
	assert.Equal(t, 1, flag.Writes())

	c.Advance(3 * time.Second)
	assert.Equal(t, PhaseSettled, r.Phase())

	r.Hide()
	assert.Equal(t, PhaseSettled, r.Show(grid()), "later reveals never animate")
	assert.Equal(t, 1, flag.Writes())
}

func TestReveal_AlreadyShown(t *testing.T) {
	c := clock.Fake(epoch)
	flag := store.NewMemoryFlagStore(true)
	r := newReveal(c, flag)

	assert.Equal(t, PhaseSettled, r.Show(grid()))
	assert.Zero(t, flag.Writes())
	assert.Zero(t, c.Pending())
}

func TestReveal_FlagReadErrorSkipsAnimation(t *testing.T) {
	c := clock.Fake(epoch)
	flag := store.NewMemoryFlagStore(false)
	flag.ReadErr = errors.New("disk gone")
	r := newReveal(c, flag)

	assert.Equal(t, PhaseSettled, r.Show(grid()))
	assert.Zero(t, flag.Writes())
}

func TestReveal_FlagWriteErrorStillAnimates(t *testing.T) {
	c := clock.Fake(epoch)
	flag := store.NewMemoryFlagStore(false)
	flag.WriteErr = errors.New("read-only")
	r := newReveal(c, flag)

	assert.Equal(t, PhaseAnimating, r.Show(grid()))
}

func TestReveal_DisabledAndEmpty(t *testing.T) {
	c := clock.Fake(epoch)

	flag := store.NewMemoryFlagStore(false)
	r := newReveal(c, flag, Disabled())
	assert.Equal(t, PhaseSettled, r.Show(grid()))
	assert.Zero(t, flag.Writes())

	flag = store.NewMemoryFlagStore(false)
	r = newReveal(c, flag)
	assert.Equal(t, PhaseSettled, r.Show(&activity.Grid{}))
	assert.Zero(t, flag.Writes(), "an empty grid does not use up the first reveal")
	assert.Equal(t, PhaseAnimating, r.Show(grid()))
}

type trace struct {
	startedAt time.Time
	intensity float64
}

func TestReveal_BoxInvariants(t *testing.T) {
	c := clock.Fake(epoch)
	r := newReveal(c, store.NewMemoryFlagStore(false))
	r.Show(grid())

	seen := make(map[activity.Cell]trace)
	maxBoxes := 0
	for range 100 {
		c.Advance(30 * time.Millisecond)

		boxes := r.Boxes()
		maxBoxes = max(maxBoxes, len(boxes))
		cells := make(map[activity.Cell]bool, len(boxes))
		for _, b := range boxes {
			require.False(t, cells[b.Cell], "duplicate cell %v", b.Cell)
			cells[b.Cell] = true

			require.GreaterOrEqual(t, b.Intensity, 0.0)
			require.LessOrEqual(t, b.Intensity, 1.0)

			if prev, ok := seen[b.Cell]; ok && prev.startedAt.Equal(b.StartedAt) {
				require.LessOrEqual(t, b.Intensity, prev.intensity, "intensity must not increase")
			}
			seen[b.Cell] = trace{startedAt: b.StartedAt, intensity: b.Intensity}
		}
	}

	assert.Positive(t, maxBoxes)
	// A box lives for less than the fade window: at most one insert per tick.
	assert.LessOrEqual(t, maxBoxes, int(DefaultFade/(30*time.Millisecond))+1)
}

func TestReveal_TerminatesWithinOneTick(t *testing.T) {
	c := clock.Fake(epoch)
	r := newReveal(c, store.NewMemoryFlagStore(false))

	settled := 0
	r.OnSettled(func() { settled++ })
	ticks := 0
	r.OnTick(func() { ticks++ })

	r.Show(grid())
	c.Advance(2970 * time.Millisecond)
	assert.Equal(t, PhaseAnimating, r.Phase())
	assert.Zero(t, settled)

	c.Advance(30 * time.Millisecond)
	assert.Equal(t, PhaseSettled, r.Phase())
	assert.Equal(t, 1, settled)
	assert.Equal(t, 99, ticks)
	assert.Empty(t, r.Boxes())
	assert.Zero(t, c.Pending())

	c.Advance(time.Second)
	assert.Equal(t, 1, settled)
}

func TestReveal_DirectTickPastTotalSettles(t *testing.T) {
	c := clock.Fake(epoch)
	r := newReveal(c, store.NewMemoryFlagStore(false))

	settled := false
	r.OnSettled(func() { settled = true })
	r.Show(grid())

	r.Tick(epoch.Add(5 * time.Second))
	assert.Equal(t, PhaseSettled, r.Phase())
	assert.True(t, settled)
	assert.Zero(t, c.Pending())
}

func TestReveal_HideStopsAnimation(t *testing.T) {
	c := clock.Fake(epoch)
	r := newReveal(c, store.NewMemoryFlagStore(false))

	settled := false
	r.OnSettled(func() { settled = true })
	r.Show(grid())
	c.Advance(time.Second)
	require.NotEmpty(t, r.Boxes())

	r.Hide()
	assert.Equal(t, PhaseIdle, r.Phase())
	assert.Empty(t, r.Boxes())
	assert.Nil(t, r.Grid())

	c.Advance(5 * time.Second)
	assert.False(t, settled)
	assert.Zero(t, c.Pending())
}

func TestReveal_ResetGate(t *testing.T) {
	c := clock.Fake(epoch)
	flag := store.NewMemoryFlagStore(false)
	r := newReveal(c, flag)

	r.Show(grid())
	c.Advance(3 * time.Second)

	// Flag still set: the gate reopens but the store says no.
	r.ResetGate()
	assert.Equal(t, PhaseSettled, r.Show(grid()))

	fresh := newReveal(c, store.NewMemoryFlagStore(false))
	assert.Equal(t, PhaseAnimating, fresh.Show(grid()))
}

func TestReveal_CellColor(t *testing.T) {
	c := clock.Fake(epoch)
	r := newReveal(c, store.NewMemoryFlagStore(false))
	g := grid()
	busy := activity.Cell{Week: 1, Day: 0}
	day, _ := g.Day(busy)

	r.Show(g)
	c.Advance(30 * time.Millisecond)

	boxes := r.Boxes()
	require.Len(t, boxes, 1)
	lit := boxes[0].Cell
	litDay, _ := g.Day(lit)
	assert.Equal(t, Grey(Brightness(boxes[0].Intensity)), r.CellColor(litDay, lit))
	assert.Equal(t, "#ffffff", r.CellColor(litDay, lit))

	if lit != busy {
		assert.Equal(t, activity.EmptyColor, r.CellColor(day, busy))
	}

	c.Advance(3 * time.Second)
	assert.Equal(t, "#39d353", r.CellColor(day, busy))
}

func TestBrightness(t *testing.T) {
	tests := []struct {
		intensity float64
		want      float64
	}{
		{1.0, 1.0},
		{0.85, 0.925},
		{0.7, 0.85},
		{0.55, 0.675},
		{0.4, 0.5},
		{0.275, 0.375},
		{0.15, 0.25},
		{0.075, 0.17},
		{0, 0.09},
		{-1, 0.09},
		{2, 1.0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Brightness(tt.intensity), 1e-9, "intensity %v", tt.intensity)
	}
}

func TestBrightness_Monotonic(t *testing.T) {
	prev := Brightness(0)
	for i := 1; i <= 1000; i++ {
		b := Brightness(float64(i) / 1000)
		assert.GreaterOrEqual(t, b, prev)
		prev = b
	}
}

func TestGrey(t *testing.T) {
	assert.Equal(t, "#ffffff", Grey(1))
	assert.Equal(t, "#000000", Grey(0))
	assert.Equal(t, "#171717", Grey(0.09))
}

func TestBoxSet(t *testing.T) {
	s := NewBoxSet()
	cell := activity.Cell{Week: 3, Day: 2}

	assert.True(t, s.Add(cell, epoch))
	assert.False(t, s.Add(cell, epoch.Add(time.Millisecond)), "no duplicate fade curves")

	s.Decay(epoch.Add(400*time.Millisecond), DefaultFade)
	b, ok := s.Get(cell)
	require.True(t, ok)
	assert.InDelta(t, 0.5, b.Intensity, 1e-9)
	assert.Equal(t, epoch, b.StartedAt)

	s.Decay(epoch.Add(DefaultFade), DefaultFade)
	assert.Zero(t, s.Len())
}
