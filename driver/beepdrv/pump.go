package beepdrv

import (
	"context"
	"time"

	"github.com/gopxl/beep/speaker"
)

// Pump pulls the mixer in real time without an audio device, so streams still end and
// release their channels in headless runs
func (d *Driver) Pump(ctx context.Context, chunk time.Duration) {
	buf := make([][2]float64, d.rate.N(chunk))
	ticker := time.NewTicker(chunk)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.Pull(buf)
		}
	}
}

// Pull renders len(buf) samples from the mixer
func (d *Driver) Pull(buf [][2]float64) int {
	speaker.Lock()
	defer speaker.Unlock()
	n, _ := d.mixer.Stream(buf)
	return n
}
