package beepdrv

import "github.com/gopxl/beep"

// lowPass is a one-pole filter; alpha 1 passes the input through, smaller values darken it
type lowPass struct {
	beep.Streamer
	alpha float64
	prev  [2]float64
}

func (f *lowPass) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = f.Streamer.Stream(samples)
	a := f.alpha
	if a > 1 {
		a = 1
	}
	if a < 0.01 {
		a = 0.01
	}
	for i := 0; i < n; i++ {
		for c := 0; c < 2; c++ {
			f.prev[c] += a * (samples[i][c] - f.prev[c])
			samples[i][c] = f.prev[c]
		}
	}
	return n, ok
}
