package status

import (
	"math"
	"sync/atomic"
	"time"
)

// AtomicFloat provides atomic float64 operations using bit conversion
// Zero value is ready to use (represents 0.0)
type AtomicFloat struct {
	bits atomic.Uint64
}

func (f *AtomicFloat) Set(val float64) {
	f.bits.Store(math.Float64bits(val))
}

func (f *AtomicFloat) Get() float64 {
	return math.Float64frombits(f.bits.Load())
}

// Add atomically adds delta and returns the new value
func (f *AtomicFloat) Add(delta float64) float64 {
	for {
		old := f.bits.Load()
		newVal := math.Float64frombits(old) + delta
		if f.bits.CompareAndSwap(old, math.Float64bits(newVal)) {
			return newVal
		}
	}
}

// AtomicDuration stores a time.Duration
type AtomicDuration struct {
	ns atomic.Int64
}

func (d *AtomicDuration) Set(v time.Duration) { d.ns.Store(int64(v)) }
func (d *AtomicDuration) Get() time.Duration  { return time.Duration(d.ns.Load()) }

// SetMax raises the stored value to v if v is larger
func (d *AtomicDuration) SetMax(v time.Duration) {
	for {
		old := d.ns.Load()
		if int64(v) <= old || d.ns.CompareAndSwap(old, int64(v)) {
			return
		}
	}
}

// MaxStringLen bounds stored strings so overlay lines stay short
const MaxStringLen = 64

// AtomicString provides atomic string access with fixed max length
type AtomicString struct {
	ptr atomic.Pointer[string]
}

func (s *AtomicString) Store(val string) {
	if len(val) > MaxStringLen {
		val = val[:MaxStringLen]
	}
	s.ptr.Store(&val)
}

func (s *AtomicString) Load() string {
	if p := s.ptr.Load(); p != nil {
		return *p
	}
	return ""
}
