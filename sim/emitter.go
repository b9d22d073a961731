package sim

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/sndfx/source"
)

// Emitter is a moving sound source
// Position is read by engine workers, so movement goes through mu
type Emitter struct {
	Name     string
	Cat      source.Category
	Pitch    float64 // Hz
	Stereo   bool
	mu       sync.Mutex
	pos, vel mgl64.Vec3

	// Owner goroutine only
	playing bool
	channel uint32
}

func (e *Emitter) Position() mgl64.Vec3 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pos
}

func (e *Emitter) Category() source.Category { return e.Cat }

func (e *Emitter) String() string {
	p := e.Position()
	return fmt.Sprintf("%s(%s)@%.1f,%.1f,%.1f", e.Name, e.Cat, p[0], p[1], p[2])
}

// Channel is the driver channel the emitter is playing on, 0 when idle
func (e *Emitter) Channel() uint32 { return e.channel }

func (e *Emitter) place(pos, vel mgl64.Vec3) {
	e.mu.Lock()
	e.pos, e.vel = pos, vel
	e.mu.Unlock()
}

func (e *Emitter) motion() (pos, vel mgl64.Vec3) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pos, e.vel
}
