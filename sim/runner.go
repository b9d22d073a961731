package sim

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/sndfx/driver/beepdrv"
	"github.com/lixenwraith/sndfx/engine"
)

// Runner is the owner goroutine of a simulation
// It moves the scene, publishes snapshots and keeps every emitter playing
type Runner struct {
	scene *Scene
	eng   *engine.Engine
	drv   *beepdrv.Driver
	log   logrus.FieldLogger

	mu      sync.Mutex
	stopped []uint32 // channels released by the driver, drained each step

	playing map[uint32]*Emitter
	steps   uint64
}

// NewRunner wires the driver's stop notifications through the runner to the engine
func NewRunner(scene *Scene, eng *engine.Engine, drv *beepdrv.Driver, log logrus.FieldLogger) *Runner {
	if log == nil {
		log = logrus.StandardLogger()
	}
	r := &Runner{
		scene:   scene,
		eng:     eng,
		drv:     drv,
		log:     log.WithField("component", "sim"),
		playing: make(map[uint32]*Emitter),
	}
	drv.SetNotifier(r)
	return r
}

// OnChannelStopped implements beepdrv.Notifier; called from driver goroutines
func (r *Runner) OnChannelStopped(id uint32) error {
	r.mu.Lock()
	r.stopped = append(r.stopped, id)
	r.mu.Unlock()
	return r.eng.OnChannelStopped(id)
}

// Step advances the simulation by dt
func (r *Runner) Step(dt time.Duration) {
	r.steps++
	r.scene.Step(dt)
	r.eng.Tick()

	r.mu.Lock()
	done := r.stopped
	r.stopped = nil
	r.mu.Unlock()
	for _, id := range done {
		if e := r.playing[id]; e != nil {
			e.playing, e.channel = false, 0
			delete(r.playing, id)
		}
	}

	for _, e := range r.scene.Emitters() {
		if !e.playing {
			r.start(e)
		}
	}
}

func (r *Runner) start(e *Emitter) {
	length := time.Duration(300+int(r.steps*37%1200)) * time.Millisecond
	tone, err := Tone(r.drv.SampleRate(), e.Pitch, length)
	if err != nil {
		r.log.WithError(err).WithField("sound", e.String()).Warn("tone generation failed")
		return
	}

	h := r.drv.Play(tone, e.Stereo)
	id, err := h.Wait(r.eng.Config().AttachTimeout.D())
	if err != nil {
		r.log.WithError(err).WithField("sound", e.String()).Debug("no channel")
		return
	}
	e.playing, e.channel = true, id
	r.playing[id] = e

	if err := r.eng.OnChannelStarted(e, h); err != nil {
		r.log.WithError(err).WithField("sound", e.String()).Warn("attach failed")
	}
}

// Playing counts emitters currently holding a channel
func (r *Runner) Playing() int { return len(r.playing) }

// Run steps the simulation every tick until ctx ends, then releases all channels
func (r *Runner) Run(ctx context.Context, tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	defer r.Close()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			r.Step(now.Sub(last))
			last = now
		}
	}
}

// Close stops every playing channel
func (r *Runner) Close() {
	for id := range r.playing {
		r.drv.Stop(id)
	}
}
