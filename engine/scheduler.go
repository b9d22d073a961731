package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/sndfx/core"
)

// Scheduler fires a callback on a fixed period without busy-waiting
// The interval is re-read every period so configuration reloads take effect on the next deadline
type Scheduler struct {
	clock    Clock
	log      logrus.FieldLogger
	interval func() time.Duration
	onPeriod func()

	nextDeadline time.Time // Next period deadline for drift correction
	periods      atomic.Uint64

	// Control channels
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	running  atomic.Bool
}

// NewScheduler creates a scheduler; call Start to begin firing
func NewScheduler(clock Clock, interval func() time.Duration, onPeriod func(), log logrus.FieldLogger) *Scheduler {
	if clock == nil {
		clock = NewTimeProvider()
	}
	if log == nil {
		log = discardLogger
	}
	return &Scheduler{
		clock:    clock,
		log:      log.WithField("component", "scheduler"),
		interval: interval,
		onPeriod: onPeriod,
		stopChan: make(chan struct{}),
	}
}

// Start begins the scheduler loop
func (s *Scheduler) Start() {
	if s.running.CompareAndSwap(false, true) {
		s.wg.Add(1)
		core.Go(s.log, s.loop)
	}
}

// Stop halts the loop and waits for an in-progress period to finish
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		if s.running.Load() {
			s.wg.Wait()
		}
	})
}

// Periods returns how many periods have completed
func (s *Scheduler) Periods() uint64 {
	return s.periods.Load()
}

func (s *Scheduler) loop() {
	defer s.wg.Done()

	interval := s.interval()
	s.nextDeadline = s.clock.Now().Add(interval)

	timer := time.NewTimer(0)
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	defer timer.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		default:
		}

		now := s.clock.Now()
		if !now.Before(s.nextDeadline) {
			s.onPeriod()
			s.periods.Add(1)

			interval = s.interval()
			s.nextDeadline = s.nextDeadline.Add(interval)

			// Give up on catching up after a long stall
			maxBehind := interval * 2
			if now.Sub(s.nextDeadline) > maxBehind {
				s.nextDeadline = now.Add(interval)
			}
		}

		sleep := s.nextDeadline.Sub(s.clock.Now())
		if sleep <= 0 {
			continue
		}
		timer.Reset(sleep)
		select {
		case <-timer.C:
		case <-s.stopChan:
			return
		}
	}
}
