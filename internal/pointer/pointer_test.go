package pointer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jmylchreest/gitisland/internal/clock"
	"github.com/jmylchreest/gitisland/internal/geometry"
)

var epoch = time.Date(2026, 1, 17, 9, 0, 0, 0, time.UTC)

func at(x float64) Sample {
	return Sample{Point: geometry.Point{X: x}}
}

func TestBroadcaster_FanOut(t *testing.T) {
	b := NewBroadcaster()

	var first, second []float64
	b.OnMove(func(s Sample) { first = append(first, s.Point.X) })
	cancel := b.OnMove(func(s Sample) { second = append(second, s.Point.X) })

	b.PublishMove(at(1))
	cancel()
	cancel()
	b.PublishMove(at(2))

	assert.Equal(t, []float64{1, 2}, first)
	assert.Equal(t, []float64{1}, second)
}

func TestBroadcaster_StreamsAreIndependent(t *testing.T) {
	b := NewBroadcaster()

	var moves, downs int
	b.OnMove(func(Sample) { moves++ })
	b.OnDown(func(Sample) { downs++ })

	b.PublishDown(at(0))
	b.PublishDown(at(0))
	b.PublishMove(at(0))

	assert.Equal(t, 1, moves)
	assert.Equal(t, 2, downs)

	m, d := b.Subscribers()
	assert.Equal(t, 1, m)
	assert.Equal(t, 1, d)
}

func TestBroadcaster_NoReplay(t *testing.T) {
	b := NewBroadcaster()
	b.PublishMove(at(1))

	var got []float64
	b.OnMove(func(s Sample) { got = append(got, s.Point.X) })
	b.PublishMove(at(2))

	assert.Equal(t, []float64{2}, got)
}

func TestThrottler_LatestWins(t *testing.T) {
	c := clock.Fake(epoch)
	var got []float64
	th := Throttle(c, 50*time.Millisecond, func(s Sample) { got = append(got, s.Point.X) })

	th.Push(at(1)) // delivered immediately
	c.Advance(10 * time.Millisecond)
	th.Push(at(2))
	c.Advance(10 * time.Millisecond)
	th.Push(at(3))
	assert.Equal(t, []float64{1}, got)

	c.Advance(30 * time.Millisecond) // window closes at 50ms
	assert.Equal(t, []float64{1, 3}, got)

	c.Advance(50 * time.Millisecond) // quiet window closes without delivery
	assert.Equal(t, []float64{1, 3}, got)

	th.Push(at(4))
	assert.Equal(t, []float64{1, 3, 4}, got)
}

func TestThrottler_RateBound(t *testing.T) {
	c := clock.Fake(epoch)
	delivered := 0
	th := Throttle(c, DefaultThrottleWindow, func(Sample) { delivered++ })

	// 1kHz input for one second.
	for i := range 1000 {
		th.Push(at(float64(i)))
		c.Advance(time.Millisecond)
	}

	assert.LessOrEqual(t, delivered, 21)
	assert.GreaterOrEqual(t, delivered, 19)
}

func TestThrottler_Stop(t *testing.T) {
	c := clock.Fake(epoch)
	var got []float64
	th := Throttle(c, 50*time.Millisecond, func(s Sample) { got = append(got, s.Point.X) })

	th.Push(at(1))
	th.Push(at(2))
	th.Stop()
	c.Advance(time.Second)
	th.Push(at(3))

	assert.Equal(t, []float64{1}, got)
	assert.Equal(t, 0, c.Pending())
}
