package engine

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduler_FiresPeriodically(t *testing.T) {
	var n atomic.Int32
	s := NewScheduler(nil, func() time.Duration { return 2 * time.Millisecond }, func() { n.Add(1) }, nil)
	s.Start()

	deadline := time.Now().Add(2 * time.Second)
	for n.Load() < 10 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	s.Stop()

	if n.Load() < 10 {
		t.Fatalf("fired %d times", n.Load())
	}
	if uint64(n.Load()) != s.Periods() {
		t.Errorf("Periods = %d, callback count %d", s.Periods(), n.Load())
	}

	after := n.Load()
	time.Sleep(10 * time.Millisecond)
	if n.Load() != after {
		t.Error("fired after Stop")
	}
}

func TestScheduler_StopIdempotent(t *testing.T) {
	s := NewScheduler(nil, func() time.Duration { return time.Millisecond }, func() {}, nil)
	s.Start()
	s.Start()
	s.Stop()
	s.Stop()
}

func TestScheduler_StopBeforeStart(t *testing.T) {
	s := NewScheduler(nil, func() time.Duration { return time.Millisecond }, func() {}, nil)
	s.Stop()
}

func TestScheduler_FollowsMockClock(t *testing.T) {
	clock := NewMockTimeProvider(time.Unix(0, 0))
	var n atomic.Int32
	s := NewScheduler(clock, func() time.Duration { return time.Millisecond }, func() { n.Add(1) }, nil)
	s.Start()
	defer s.Stop()

	time.Sleep(10 * time.Millisecond)
	if n.Load() != 0 {
		t.Fatalf("fired %d times with the clock frozen", n.Load())
	}

	clock.Advance(time.Millisecond)
	deadline := time.Now().Add(time.Second)
	for n.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if n.Load() != 1 {
		t.Errorf("fired %d times after one interval", n.Load())
	}
}

func TestScheduler_WaitsForFirstDeadline(t *testing.T) {
	var n atomic.Int32
	s := NewScheduler(nil, func() time.Duration { return time.Hour }, func() { n.Add(1) }, nil)
	s.Start()
	time.Sleep(5 * time.Millisecond)
	s.Stop()
	if n.Load() != 0 {
		t.Errorf("fired %d times before the first deadline", n.Load())
	}
}
