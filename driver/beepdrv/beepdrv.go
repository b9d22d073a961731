// Package beepdrv is a software audio driver that renders channels as beep streamers
// Each channel is gain-scaled and low-pass filtered according to the parameters written to it
package beepdrv

import (
	"errors"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/sndfx/core"
	"github.com/lixenwraith/sndfx/driver"
	fx "github.com/lixenwraith/sndfx/effects"
)

// EFXVersion is the extension version this driver reports
const EFXVersion = "1.0.0"

// ErrNoFreeChannel is returned through the handle when every channel of the requested kind is busy
var ErrNoFreeChannel = errors.New("no free channel")

// Notifier receives channel termination from the audio goroutine
type Notifier interface {
	OnChannelStopped(id uint32) error
}

// Driver implements driver.Driver on top of a beep.Mixer
// Parameter writes and mixer changes take the speaker lock, which the audio callback also holds
type Driver struct {
	rate   beep.SampleRate
	mono   int
	stereo int
	mixer  *beep.Mixer
	log    logrus.FieldLogger

	mu       sync.Mutex
	channels []*channel // index is channel id; 0 unused
	notifier Notifier

	lastErr atomic.Int32
}

// channel is one playing voice
type channel struct {
	id     uint32
	ctrl   *beep.Ctrl
	volume *effects.Volume
	filter *lowPass
	params fx.ChannelParams
}

// New creates a driver with the given mono and stereo channel counts
func New(rate beep.SampleRate, mono, stereo int, log logrus.FieldLogger) *Driver {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Driver{
		rate:     rate,
		mono:     mono,
		stereo:   stereo,
		mixer:    &beep.Mixer{},
		log:      log.WithField("component", "beepdrv"),
		channels: make([]*channel, mono+stereo+1),
	}
}

// SetNotifier registers the receiver of channel termination callbacks
func (d *Driver) SetNotifier(n Notifier) {
	d.mu.Lock()
	d.notifier = n
	d.mu.Unlock()
}

// Mixer is the root streamer; hand it to speaker.Play or pull from it with Pump
func (d *Driver) Mixer() beep.Streamer {
	return d.mixer
}

// SampleRate is the rate streams are expected at
func (d *Driver) SampleRate() beep.SampleRate {
	return d.rate
}

// Start opens the system audio device and plays the mixer on it
func (d *Driver) Start(buffer time.Duration) error {
	if err := speaker.Init(d.rate, d.rate.N(buffer)); err != nil {
		return err
	}
	speaker.Play(d.mixer)
	return nil
}

// Caps implements driver.Driver
func (d *Driver) Caps() (driver.Caps, error) {
	return driver.Caps{
		EFX:           true,
		EFXVersion:    EFXVersion,
		MaxAuxSends:   fx.AuxSends,
		MonoSources:   d.mono,
		StereoSources: d.stereo,
	}, nil
}

// Play starts stream on a free channel
// The handle resolves from a separate goroutine once the stream is in the mixer, as a hardware
// driver would report the assignment asynchronously
func (d *Driver) Play(stream beep.Streamer, stereo bool) *driver.Handle {
	h := driver.NewHandle()

	d.mu.Lock()
	id := d.allocate(stereo)
	if id == 0 {
		d.mu.Unlock()
		h.Fail(ErrNoFreeChannel)
		return h
	}

	ch := &channel{id: id, params: fx.DefaultChannelParams()}
	ch.filter = &lowPass{Streamer: stream, alpha: 1}
	ch.volume = &effects.Volume{Streamer: ch.filter, Base: 2}
	ch.ctrl = &beep.Ctrl{Streamer: beep.Seq(ch.volume, beep.Callback(func() {
		// Runs on the audio goroutine with the speaker lock held
		go d.finish(ch)
	}))}
	d.channels[id] = ch
	d.mu.Unlock()

	speaker.Lock()
	d.mixer.Add(ch.ctrl)
	speaker.Unlock()

	core.Go(d.log, func() { h.Resolve(id) })
	return h
}

// allocate returns the lowest free id of the requested kind, 0 if none
func (d *Driver) allocate(stereo bool) uint32 {
	lo, hi := 1, d.mono
	if stereo {
		lo, hi = d.mono+1, d.mono+d.stereo
	}
	for id := lo; id <= hi; id++ {
		if d.channels[id] == nil {
			return uint32(id)
		}
	}
	return 0
}

// Stop silences a channel immediately and releases it
func (d *Driver) Stop(id uint32) {
	d.mu.Lock()
	ch := d.lookup(id)
	d.mu.Unlock()
	if ch == nil {
		return
	}

	speaker.Lock()
	ch.ctrl.Streamer = nil
	speaker.Unlock()
	d.finish(ch)
}

func (d *Driver) finish(ch *channel) {
	d.mu.Lock()
	if d.channels[ch.id] != ch {
		d.mu.Unlock()
		return
	}
	d.channels[ch.id] = nil
	n := d.notifier
	d.mu.Unlock()

	if n != nil {
		if err := n.OnChannelStopped(ch.id); err != nil {
			d.log.WithError(err).WithField("channel", ch.id).Warn("stop notification failed")
		}
	}
}

func (d *Driver) lookup(id uint32) *channel {
	if id == 0 || int(id) >= len(d.channels) {
		return nil
	}
	return d.channels[id]
}

// SetChannelParams implements driver.Driver
// An unknown or idle channel leaves AL_INVALID_NAME in the error state
func (d *Driver) SetChannelParams(id uint32, p fx.ChannelParams) error {
	d.mu.Lock()
	ch := d.lookup(id)
	d.mu.Unlock()
	if ch == nil {
		d.lastErr.Store(driver.InvalidName)
		return nil
	}

	speaker.Lock()
	defer speaker.Unlock()

	gain := float64(p.Direct.Gain)
	ch.volume.Silent = gain <= 0
	if gain > 0 {
		ch.volume.Volume = math.Log2(gain)
	}
	ch.filter.alpha = float64(p.Direct.GainHF) * airFactor(p.AirAbsorption)
	ch.params = p
	return nil
}

// Params returns what was last written to a channel
func (d *Driver) Params(id uint32) (fx.ChannelParams, bool) {
	d.mu.Lock()
	ch := d.lookup(id)
	d.mu.Unlock()
	if ch == nil {
		return fx.ChannelParams{}, false
	}

	speaker.Lock()
	defer speaker.Unlock()
	return ch.params, true
}

// Active counts busy channels
func (d *Driver) Active() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, ch := range d.channels {
		if ch != nil {
			n++
		}
	}
	return n
}

// LastError implements driver.Driver; reading clears the error state
func (d *Driver) LastError() error {
	if code := d.lastErr.Swap(driver.NoError); code != driver.NoError {
		return driver.NewFault(int(code))
	}
	return nil
}

// airFactor maps the air absorption factor onto extra high-frequency loss
func airFactor(air float32) float64 {
	return 1 / (1 + float64(air)/fx.AirAbsorptionMax)
}
