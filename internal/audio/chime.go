package audio

import (
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/generators"
)

type note struct {
	freq float64
	dur  time.Duration
}

// chimeNotes is a rising fifth, A5 then E6.
var chimeNotes = []note{
	{freq: 880, dur: 90 * time.Millisecond},
	{freq: 1318.51, dur: 160 * time.Millisecond},
}

const chimeGap = 15 * time.Millisecond

// Chime synthesizes the built-in open sound at sr.
func Chime(sr beep.SampleRate) (beep.Streamer, error) {
	parts := make([]beep.Streamer, 0, 2*len(chimeNotes))
	for _, n := range chimeNotes {
		tone, err := generators.SineTone(sr, n.freq)
		if err != nil {
			return nil, err
		}
		length := sr.N(n.dur)
		parts = append(parts,
			&decay{Streamer: beep.Take(length, tone), total: length, peak: 0.35},
			beep.Silence(sr.N(chimeGap)),
		)
	}
	return beep.Seq(parts...), nil
}

// ChimeLength returns the number of samples Chime produces at sr.
func ChimeLength(sr beep.SampleRate) int {
	n := 0
	for _, note := range chimeNotes {
		n += sr.N(note.dur) + sr.N(chimeGap)
	}
	return n
}

// decay scales a streamer by a linear ramp from peak down to zero.
type decay struct {
	beep.Streamer
	total int
	pos   int
	peak  float64
}

func (d *decay) Stream(samples [][2]float64) (int, bool) {
	n, ok := d.Streamer.Stream(samples)
	for i := range samples[:n] {
		gain := d.peak * (1 - float64(d.pos)/float64(d.total))
		samples[i][0] *= gain
		samples[i][1] *= gain
		d.pos++
	}
	return n, ok
}
