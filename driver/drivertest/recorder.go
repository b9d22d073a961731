// Package drivertest provides an in-memory driver that records parameter writes
// and flags concurrent writes to the same channel
package drivertest

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/sndfx/driver"
	"github.com/lixenwraith/sndfx/effects"
)

// Recorder implements driver.Driver for tests
type Recorder struct {
	caps    driver.Caps
	capsErr error

	// WriteDelay widens the window in which overlapping writes are detected
	WriteDelay time.Duration

	inflight []atomic.Bool
	writes   []atomic.Int64
	races    atomic.Int64
	failNext atomic.Int32
	lastErr  atomic.Int32

	mu   sync.Mutex
	last map[uint32]effects.ChannelParams
}

// New returns a recorder reporting full EFX support and the given channel count
func New(channels int) *Recorder {
	return NewWithCaps(driver.Caps{
		EFX:           true,
		EFXVersion:    "1.0.0",
		MaxAuxSends:   effects.AuxSends,
		MonoSources:   channels,
		StereoSources: 0,
	}, nil)
}

// NewWithCaps returns a recorder with explicit capabilities and probe error
func NewWithCaps(caps driver.Caps, err error) *Recorder {
	n := caps.MaxChannels() + 1
	return &Recorder{
		caps:     caps,
		capsErr:  err,
		inflight: make([]atomic.Bool, n),
		writes:   make([]atomic.Int64, n),
		last:     make(map[uint32]effects.ChannelParams),
	}
}

func (r *Recorder) Caps() (driver.Caps, error) {
	return r.caps, r.capsErr
}

func (r *Recorder) SetChannelParams(id uint32, p effects.ChannelParams) error {
	if int(id) >= len(r.inflight) || id == 0 {
		r.lastErr.Store(driver.InvalidName)
		return nil
	}

	if r.inflight[id].Swap(true) {
		r.races.Add(1)
	}
	if r.WriteDelay > 0 {
		time.Sleep(r.WriteDelay)
	}

	r.mu.Lock()
	r.last[id] = p
	r.mu.Unlock()

	if code := r.failNext.Swap(0); code != 0 {
		r.lastErr.Store(code)
	}

	r.writes[id].Add(1)
	r.inflight[id].Store(false)
	return nil
}

func (r *Recorder) LastError() error {
	if code := r.lastErr.Swap(driver.NoError); code != driver.NoError {
		return driver.NewFault(int(code))
	}
	return nil
}

// FailNext makes the next parameter write leave code in the error state
func (r *Recorder) FailNext(code int) {
	r.failNext.Store(int32(code))
}

// Races returns how many overlapping writes to one channel were observed
func (r *Recorder) Races() int64 {
	return r.races.Load()
}

// Writes returns the number of completed writes for a channel
func (r *Recorder) Writes(id uint32) int64 {
	if int(id) >= len(r.writes) {
		return 0
	}
	return r.writes[id].Load()
}

// TotalWrites sums writes across all channels
func (r *Recorder) TotalWrites() int64 {
	var n int64
	for i := range r.writes {
		n += r.writes[i].Load()
	}
	return n
}

// Last returns the most recent parameters written to a channel
func (r *Recorder) Last(id uint32) (effects.ChannelParams, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.last[id]
	return p, ok
}
