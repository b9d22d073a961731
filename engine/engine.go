// Package engine runs environmental effects for every live audio channel
// The owner goroutine publishes world snapshots and reports channel lifecycle; a scheduler
// recomputes due sources on a worker pool and commits the results to the driver
package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/sndfx/config"
	"github.com/lixenwraith/sndfx/driver"
	"github.com/lixenwraith/sndfx/source"
	"github.com/lixenwraith/sndfx/status"
	"github.com/lixenwraith/sndfx/world"
)

// ErrUnavailable is returned by Err when initialization failed; every operation is then a no-op
var ErrUnavailable = errors.New("environmental effects unavailable")

// Engine is the effects context object
// Public methods are safe to call before Initialize and after a failed Initialize; they do nothing
type Engine struct {
	drv  driver.Driver
	host world.Host
	bus  *world.PrecipitationBus

	log   logrus.FieldLogger
	clock Clock
	reg   *status.Registry

	cfg    atomic.Pointer[config.Config]
	calc   atomic.Pointer[source.Calculator]
	policy atomic.Pointer[CategoryPolicy]
	fluids atomic.Pointer[world.FluidRegistry]
	snap   atomic.Pointer[world.Snapshot]

	initOnce  sync.Once
	initErr   error
	available atomic.Bool
	stopOnce  sync.Once

	// Serializes periods so the stagger counters have a single writer
	periodMu sync.Mutex

	caps  driver.Caps
	table *source.Table
	pool  *Pool
	sched *Scheduler

	// Cached metric pointers
	statPeriods   *atomic.Int64
	statSubmitted *atomic.Int64
	statTimeouts  *atomic.Int64
	statFaults    *atomic.Int64
	statRecalc    *atomic.Int64
	statActive    *atomic.Int64
	statElapsed   *status.AtomicDuration
	statMax       *status.AtomicDuration
	statRain      *status.AtomicFloat
	statEFX       *status.AtomicString
}

// Option configures an Engine at construction
type Option func(*Engine)

// WithConfig replaces the default configuration
func WithConfig(cfg *config.Config) Option {
	return func(e *Engine) {
		if cfg != nil {
			e.cfg.Store(cfg)
		}
	}
}

// WithLogger sets the logger; nil keeps the discard logger
func WithLogger(log logrus.FieldLogger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithBus supplies the precipitation bus so mods can override the strength query
func WithBus(bus *world.PrecipitationBus) Option {
	return func(e *Engine) { e.bus = bus }
}

// WithClock replaces the wall clock used for deadlines and timing
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithRegistry publishes metrics into an existing registry
func WithRegistry(reg *status.Registry) Option {
	return func(e *Engine) { e.reg = reg }
}

// New creates an engine bound to a driver and host; call Initialize before use
func New(drv driver.Driver, host world.Host, opts ...Option) *Engine {
	e := &Engine{
		drv:   drv,
		host:  host,
		log:   discardLogger,
		clock: NewTimeProvider(),
	}
	e.cfg.Store(config.Default())
	e.snap.Store(world.Invalid)

	for _, opt := range opts {
		opt(e)
	}

	if e.bus == nil {
		e.bus = world.NewPrecipitationBus()
	}
	if e.reg == nil {
		e.reg = status.NewRegistry()
	}
	e.log = e.log.WithField("component", "engine")

	e.statPeriods = e.reg.Ints.Get("fx.periods")
	e.statSubmitted = e.reg.Ints.Get("fx.submitted")
	e.statTimeouts = e.reg.Ints.Get("fx.timeouts")
	e.statFaults = e.reg.Ints.Get("fx.driver_faults")
	e.statRecalc = e.reg.Ints.Get("fx.recalc_faults")
	e.statActive = e.reg.Ints.Get("fx.active")
	e.statElapsed = e.reg.Durations.Get("fx.period_time")
	e.statMax = e.reg.Durations.Get("fx.period_max")
	e.statRain = e.reg.Floats.Get("fx.precipitation")
	e.statEFX = e.reg.Strings.Get("fx.efx_version")

	e.apply(e.cfg.Load())
	return e
}

// Initialize probes the driver and starts the scheduler; only the first call does work
// Failure disables the engine for its lifetime and is logged once
func (e *Engine) Initialize() bool {
	e.initOnce.Do(func() {
		if err := e.initialize(); err != nil {
			e.initErr = err
			e.log.WithError(err).Warn("environmental effects disabled")
			return
		}
		e.available.Store(true)
		e.log.WithFields(logrus.Fields{
			"channels": e.table.Len(),
			"workers":  e.pool.Workers(),
			"efx":      e.caps.EFXVersion,
		}).Info("environmental effects initialized")
	})
	return e.available.Load()
}

func (e *Engine) initialize() error {
	cfg := e.cfg.Load()
	if !cfg.Enabled {
		return fmt.Errorf("%w: disabled by configuration", ErrUnavailable)
	}
	if e.drv == nil {
		return fmt.Errorf("%w: no audio driver", ErrUnavailable)
	}

	caps, err := e.drv.Caps()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if !caps.EFX {
		return fmt.Errorf("%w: %w", ErrUnavailable, driver.ErrNoEFX)
	}

	constraint, err := cfg.EFXConstraint()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	version, err := semver.NewVersion(caps.EFXVersion)
	if err != nil {
		return fmt.Errorf("%w: EFX version %q: %w", ErrUnavailable, caps.EFXVersion, err)
	}
	if !constraint.Check(version) {
		return fmt.Errorf("%w: EFX %s does not satisfy %q", ErrUnavailable, version, cfg.RequiredEFX)
	}
	if caps.MaxAuxSends < cfg.AuxSends {
		return fmt.Errorf("%w: driver offers %d aux sends, need %d", ErrUnavailable, caps.MaxAuxSends, cfg.AuxSends)
	}
	if caps.MaxChannels() <= 0 {
		return fmt.Errorf("%w: driver reports no channels", ErrUnavailable)
	}

	e.caps = caps
	e.statEFX.Store(caps.EFXVersion)
	e.table = source.NewTable(caps.MaxChannels())
	e.pool = NewPool(Workers(cfg), cfg.QueueDepth, e.log)
	e.sched = NewScheduler(e.clock, e.interval, e.RunPeriod, e.log)
	e.sched.Start()
	return nil
}

// Workers sizes the pool below one goroutine per core to leave room for the audio threads
func Workers(cfg *config.Config) int {
	if cfg.MaxWorkers > 0 {
		return cfg.MaxWorkers
	}
	return max(runtime.NumCPU()/max(cfg.WorkerDivisor, 1), 1)
}

// Available reports whether Initialize succeeded and Shutdown has not run
func (e *Engine) Available() bool {
	return e.available.Load()
}

// Err returns the initialization failure, nil if none
func (e *Engine) Err() error {
	return e.initErr
}

// Bus exposes the precipitation query bus
func (e *Engine) Bus() *world.PrecipitationBus {
	return e.bus
}

// Registry exposes the engine metrics
func (e *Engine) Registry() *status.Registry {
	return e.reg
}

// Config returns the active configuration
func (e *Engine) Config() *config.Config {
	return e.cfg.Load()
}

// Snapshot returns the most recently published snapshot
func (e *Engine) Snapshot() *world.Snapshot {
	return e.snap.Load()
}

// Tick captures the listener's environment; call from the goroutine that owns world state
func (e *Engine) Tick() {
	if !e.available.Load() {
		return
	}
	b := world.Builder{Host: e.host, Bus: e.bus, Fluids: e.fluids.Load()}
	snap := b.Build()
	e.snap.Store(snap)
	e.statRain.Set(float64(snap.PrecipitationStrength()))
}

// OnChannelStarted binds a sound to the channel its handle resolves to
// Waits at most attach_timeout for the driver to assign the channel
func (e *Engine) OnChannelStarted(sound source.Sound, h *driver.Handle) error {
	if !e.available.Load() || sound == nil || h == nil {
		return nil
	}

	id, err := h.Wait(e.cfg.Load().AttachTimeout.D())
	if err != nil {
		e.log.WithField("sound", sound.String()).WithError(err).Warn("channel handle not resolved")
		return err
	}

	s := source.New(id, e.log.WithField("component", "source"))
	s.Attach(sound)
	if e.policy.Load().Exempt(sound.Category()) {
		s.Disable()
	}
	if err := e.table.Store(s); err != nil {
		e.log.WithField("sound", sound.String()).WithError(err).Error("channel outside source table")
		return err
	}
	e.statActive.Store(int64(e.table.Active()))

	if !s.Disabled() {
		snap, calc := e.snap.Load(), e.calc.Load()
		e.pool.TrySubmit(func() { e.process(s, snap, calc) })
	}
	return nil
}

// OnChannelStopped detaches and clears the channel's slot
func (e *Engine) OnChannelStopped(id uint32) error {
	if !e.available.Load() {
		return nil
	}
	prev, err := e.table.Clear(id)
	if err != nil {
		e.log.WithError(err).Error("stop for unknown channel")
		return err
	}
	if prev != nil {
		prev.Detach()
	}
	e.statActive.Store(int64(e.table.Active()))
	return nil
}

// CommitChannel writes a channel's current parameters; drivers call this from their audio thread
func (e *Engine) CommitChannel(id uint32) error {
	if !e.available.Load() {
		return nil
	}
	s, err := e.table.Get(id)
	if err != nil || s == nil {
		return err
	}
	if err := s.Commit(e.drv); err != nil {
		e.statFaults.Add(1)
		e.log.WithField("source", s.String()).Errorf("%+v", err)
		return err
	}
	return nil
}

// Sources visits the occupied slots in channel order
func (e *Engine) Sources(fn func(*source.Source) bool) {
	if !e.available.Load() {
		return
	}
	e.table.Range(fn)
}

// Reload swaps in a new configuration; it takes effect from the next period
// An invalid configuration is rejected and the current one stays active.
// Pool size and table capacity are fixed at Initialize
func (e *Engine) Reload(cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: nil", config.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		e.log.WithError(err).Warn("configuration reload rejected")
		return err
	}
	e.cfg.Store(cfg)
	e.apply(cfg)
	e.log.WithFields(logrus.Fields{
		"period":  cfg.Period,
		"stagger": cfg.StaggerPeriod,
		"enabled": cfg.Enabled,
	}).Info("configuration reloaded")
	return nil
}

func (e *Engine) apply(cfg *config.Config) {
	e.calc.Store(source.NewCalculator(cfg))
	e.policy.Store(NewCategoryPolicy(cfg.IgnoredCategories))
	e.fluids.Store(world.NewFluidRegistry(cfg.Fluids))
}

func (e *Engine) interval() time.Duration {
	return e.cfg.Load().Period.D()
}

// RunPeriod performs one scheduling period: submit every due source, then wait for the pool
// to drain or the quiescence timeout. Calls are serialized with the scheduler's own periods
func (e *Engine) RunPeriod() {
	if !e.available.Load() {
		return
	}
	e.periodMu.Lock()
	defer e.periodMu.Unlock()

	start := e.clock.Now()
	cfg := e.cfg.Load()
	period := e.statPeriods.Add(1)

	if cfg.Enabled {
		snap, calc := e.snap.Load(), e.calc.Load()
		e.table.Range(func(s *source.Source) bool {
			if !s.Due(cfg.StaggerPeriod) {
				return true
			}
			if e.pool.Submit(func() { e.process(s, snap, calc) }) {
				e.statSubmitted.Add(1)
			}
			return true
		})

		if !e.pool.AwaitQuiescence(cfg.QuiescenceTimeout.D()) {
			e.statTimeouts.Add(1)
			e.log.WithFields(logrus.Fields{
				"period":  period,
				"pending": e.pool.Pending(),
			}).Error("quiescence timeout")
		}
	}

	elapsed := e.clock.Now().Sub(start)
	e.statElapsed.Set(elapsed)
	e.statMax.SetMax(elapsed)
	e.statActive.Store(int64(e.table.Active()))
}

// process is one unit of pool work: recompute, then commit on success
func (e *Engine) process(s *source.Source, snap *world.Snapshot, calc *source.Calculator) {
	if err := s.Update(snap, calc); err != nil {
		e.statRecalc.Add(1)
		return
	}
	if err := s.Commit(e.drv); err != nil {
		e.statFaults.Add(1)
		e.log.WithField("source", s.String()).Errorf("%+v", err)
	}
}

// Diagnostic renders a one-line summary from atomics only
func (e *Engine) Diagnostic() string {
	if !e.available.Load() {
		return "SndFX: unavailable"
	}
	return fmt.Sprintf("SndFX: %d/%d active, %d queued, %.2fms (t/o %d)",
		e.statActive.Load(),
		e.table.Len(),
		e.pool.Queued(),
		float64(e.statElapsed.Get())/float64(time.Millisecond),
		e.statTimeouts.Load(),
	)
}

// Periods returns the number of periods the scheduler has completed, including after Shutdown
func (e *Engine) Periods() uint64 {
	if e.sched == nil {
		return 0
	}
	return e.sched.Periods()
}

// Shutdown stops the scheduler and drains the pool, giving up when ctx ends
func (e *Engine) Shutdown(ctx context.Context) error {
	if !e.available.Load() {
		return nil
	}

	var err error
	e.stopOnce.Do(func() {
		e.available.Store(false)
		done := make(chan error, 1)
		go func() {
			e.sched.Stop()
			done <- e.pool.Close()
		}()
		select {
		case err = <-done:
		case <-ctx.Done():
			err = ctx.Err()
		}
		if err != nil {
			e.log.WithError(err).Warn("environmental effects stopped before draining")
			return
		}
		e.log.Info("environmental effects stopped")
	})
	return err
}
