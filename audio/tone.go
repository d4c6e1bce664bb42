package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
)

// Buzzer beeps five times, one second apart.
func Buzzer(sr beep.SampleRate) beep.Streamer {
	var parts []beep.Streamer
	for i := 0; i < 5; i++ {
		parts = append(parts,
			Tone(sr, 880, 400*time.Millisecond),
			beep.Silence(sr.N(600*time.Millisecond)),
		)
	}
	return beep.Seq(parts...)
}

// Tone is a sine wave of freq Hz lasting d.
func Tone(sr beep.SampleRate, freq float64, d time.Duration) beep.Streamer {
	total := sr.N(d)
	step := 2 * math.Pi * freq / float64(sr)
	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if pos >= total {
			return 0, false
		}
		n := 0
		for n < len(samples) && pos < total {
			v := 0.3 * math.Sin(step*float64(pos))
			samples[n] = [2]float64{v, v}
			n++
			pos++
		}
		return n, true
	})
}
