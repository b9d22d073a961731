package status

import (
	"fmt"
	"sort"
	"sync/atomic"
)

// Registry is the central metrics facade
// Components cache pointers during construction; hot loops write directly to the atomics
type Registry struct {
	Ints      *MetricMap[atomic.Int64]
	Floats    *MetricMap[AtomicFloat]
	Durations *MetricMap[AtomicDuration]
	Strings   *MetricMap[AtomicString]
}

func NewRegistry() *Registry {
	return &Registry{
		Ints:      NewMetricMap[atomic.Int64](),
		Floats:    NewMetricMap[AtomicFloat](),
		Durations: NewMetricMap[AtomicDuration](),
		Strings:   NewMetricMap[AtomicString](),
	}
}

// Lines renders every metric as "key: value", sorted by key, for debug overlays
func (r *Registry) Lines() []string {
	var lines []string
	r.Ints.Range(func(k string, v *atomic.Int64) {
		lines = append(lines, fmt.Sprintf("%s: %d", k, v.Load()))
	})
	r.Floats.Range(func(k string, v *AtomicFloat) {
		lines = append(lines, fmt.Sprintf("%s: %.3f", k, v.Get()))
	})
	r.Durations.Range(func(k string, v *AtomicDuration) {
		lines = append(lines, fmt.Sprintf("%s: %s", k, v.Get()))
	})
	r.Strings.Range(func(k string, v *AtomicString) {
		lines = append(lines, fmt.Sprintf("%s: %s", k, v.Load()))
	})
	sort.Strings(lines)
	return lines
}
