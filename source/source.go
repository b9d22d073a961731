package source

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/sndfx/core"
	"github.com/lixenwraith/sndfx/driver"
	"github.com/lixenwraith/sndfx/effects"
	"github.com/lixenwraith/sndfx/world"
)

// Source mirrors one driver channel
//
// Lifecycle: Unattached -> Attached -> (Disabled | Detached)
// Attach/Detach/Disable come from the owner goroutine, Update/Commit from workers or the
// driver's audio goroutine. The sound reference and disabled flag are atomics so a detach is a
// single pointer clear; filter state is guarded by mu. Commit holds the slot lock across the
// driver writes and the error check; the table hands every occupant of a channel id the same
// slot lock, so a stale occupant never overlaps its successor.
type Source struct {
	id  uint32
	log logrus.FieldLogger

	sound    atomic.Pointer[soundRef]
	disabled atomic.Bool
	slot     atomic.Pointer[sync.Mutex]

	// Only the scheduler goroutine touches the stagger counter
	counter uint32

	mu     sync.Mutex
	pos    mgl64.Vec3
	aux    [effects.AuxSends]effects.LowPassBand
	direct effects.LowPassBand
	air    effects.ScalarParam
}

// New creates an unattached source for channel id (1-based)
func New(id uint32, log logrus.FieldLogger) *Source {
	if log == nil {
		log = discardLogger
	}
	s := &Source{
		id:     id,
		direct: effects.NewLowPassBand(),
		air:    effects.NewAirAbsorption(),
	}
	for i := range s.aux {
		s.aux[i] = effects.NewSendBand()
	}
	s.slot.Store(new(sync.Mutex))
	s.log = log.WithField("channel", id)
	return s
}

func (s *Source) ID() uint32 { return s.id }

// Attach records the sound and captures its position; a later Attach replaces the sound
func (s *Source) Attach(sound Sound) {
	if sound == nil {
		return
	}
	s.sound.Store(&soundRef{sound})
	s.capture()
}

// Detach clears the sound reference; an in-flight update keeps computing on its own copy
func (s *Source) Detach() {
	s.sound.Store(nil)
}

// Sound returns the attached sound
func (s *Source) Sound() (Sound, bool) {
	if ref := s.sound.Load(); ref != nil {
		return ref.Sound, true
	}
	return nil, false
}

// Disable is one-way; Update and Commit become no-ops
func (s *Source) Disable() {
	s.disabled.Store(true)
}

func (s *Source) Disabled() bool {
	return s.disabled.Load()
}

// Due advances the stagger counter and reports whether this is a recompute period
// Detached or disabled sources neither count nor become due
func (s *Source) Due(period int) bool {
	if s.disabled.Load() || s.sound.Load() == nil {
		return false
	}
	if period < 1 {
		period = 1
	}
	s.counter++
	return s.counter%uint32(period) == 0
}

// Position returns the last captured emitter position
func (s *Source) Position() mgl64.Vec3 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}

// capture copies the sound position using a local reference to the sound
func (s *Source) capture() {
	ref := s.sound.Load()
	if ref == nil {
		return
	}
	pos := ref.Position()
	s.mu.Lock()
	s.pos = pos
	s.mu.Unlock()
}

// Update re-captures the emitter position and recomputes filter targets from snap
// Failures are logged and leave the previous parameters in place
func (s *Source) Update(snap *world.Snapshot, calc *Calculator) (err error) {
	if s.disabled.Load() {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrRecalculation, core.HandleCrash(nil, r))
			s.log.WithField("source", s.String()).WithError(err).Error("error processing source")
		}
	}()

	s.capture()
	if !snap.Valid() || calc == nil {
		return nil
	}

	res, err := calc.Calculate(snap, s.Position())
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrRecalculation, err)
		s.log.WithField("source", s.String()).WithError(err).Error("error processing source")
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.direct.SetTarget(res.Direct.Gain, res.Direct.GainHF)
	for i := range s.aux {
		s.aux[i].Blend(res.Aux[i].Gain, res.Aux[i].GainHF, calc.BlendStep())
	}
	s.air.Set(res.AirAbsorption)
	return nil
}

// Commit writes the current targets to the driver for this source's channel
// The driver forbids interleaved writes to one channel, so the lock spans the writes and the
// error check that follows them
func (s *Source) Commit(drv driver.Driver) error {
	if s.disabled.Load() || s.sound.Load() == nil {
		return nil
	}

	slot := s.slot.Load()
	slot.Lock()
	defer slot.Unlock()
	// detached while waiting for the previous writer
	if s.sound.Load() == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var p effects.ChannelParams
	for i := range s.aux {
		p.Aux[i] = s.aux[i].Apply()
	}
	p.Direct = s.direct.Apply()
	p.AirAbsorption = s.air.Get()

	if err := drv.SetChannelParams(s.id, p); err != nil {
		return errors.Wrapf(err, "Source.Commit %s", s)
	}
	if err := drv.LastError(); err != nil {
		return errors.Wrapf(err, "Source.Commit %s", s)
	}
	return nil
}

// Params returns the current targets
func (s *Source) Params() effects.ChannelParams {
	s.mu.Lock()
	defer s.mu.Unlock()

	var p effects.ChannelParams
	for i := range s.aux {
		p.Aux[i] = s.aux[i].Target()
	}
	p.Direct = s.direct.Target()
	p.AirAbsorption = s.air.Get()
	return p
}

// Applied returns what the last Commit wrote
func (s *Source) Applied() effects.ChannelParams {
	s.mu.Lock()
	defer s.mu.Unlock()

	var p effects.ChannelParams
	for i := range s.aux {
		p.Aux[i] = s.aux[i].Applied()
	}
	p.Direct = s.direct.Applied()
	p.AirAbsorption = s.air.Get()
	return p
}

func (s *Source) String() string {
	desc := "none"
	if ref := s.sound.Load(); ref != nil {
		desc = ref.String()
	}
	return fmt.Sprintf("Source{channel=%d, sound=%s}", s.id, desc)
}
