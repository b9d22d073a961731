package sim

import (
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/sndfx/source"
	"github.com/lixenwraith/sndfx/vmath"
	"github.com/lixenwraith/sndfx/world"
)

// EyeHeight is the listener's eye offset above its feet
const EyeHeight = 1.62

// SceneConfig describes the generated level
type SceneConfig struct {
	Cols, Rows int     // floor plan size
	Height     int     // wall height in blocks, floor included
	Braid      float64 // loopiness of the maze
	Seed       int64
	Emitters   int
	Rain       float32
	Flooded    bool    // flood a stretch of the listener's route
	Speed      float64 // listener walking speed, blocks per second
}

// DefaultSceneConfig is a small braided maze with a flooded corridor
func DefaultSceneConfig() SceneConfig {
	return SceneConfig{
		Cols: 31, Rows: 21, Height: 5, Braid: 0.3, Seed: 1,
		Emitters: 12, Rain: 0.6, Flooded: true, Speed: 3,
	}
}

var categoryCycle = []source.Category{
	source.CategoryHostile, source.CategoryBlocks, source.CategoryNeutral,
	source.CategoryAmbient, source.CategoryPlayers, source.CategoryMusic,
}

// Scene is the running level; it implements world.Host for the owner goroutine
type Scene struct {
	grid   *Grid
	layout *Layout
	route  []Spot
	speed  float64
	rng    *rand.Rand
	inGame atomic.Bool

	mu       sync.Mutex
	listener mgl64.Vec3
	yaw      float32
	leg      float64 // fractional index along route
	forward  bool

	emitters []*Emitter
}

// NewScene carves and populates a level
func NewScene(cfg SceneConfig) *Scene {
	rng := rand.New(rand.NewSource(cfg.Seed))
	layout := Carve(cfg.Cols, cfg.Rows, cfg.Braid, rng)
	height := max(cfg.Height, 3)

	g := NewGrid(layout.Cols, height+1, layout.Rows)
	g.Fill(world.BlockPos{}, world.BlockPos{X: layout.Cols - 1, Z: layout.Rows - 1}, Stone)
	for z := 0; z < layout.Rows; z++ {
		for x := 0; x < layout.Cols; x++ {
			if !layout.Open[z][x] {
				g.Fill(world.BlockPos{X: x, Y: 1, Z: z}, world.BlockPos{X: x, Y: height - 1, Z: z}, Stone)
			}
		}
	}
	// roof over the western half, open sky over the rest
	g.Fill(world.BlockPos{Y: height}, world.BlockPos{X: layout.Cols / 2, Y: height, Z: layout.Rows - 1}, Stone)
	g.SetRain(cfg.Rain)

	s := &Scene{
		grid:    g,
		layout:  layout,
		route:   layout.Route(),
		speed:   cfg.Speed,
		rng:     rng,
		forward: true,
	}
	s.inGame.Store(true)

	if cfg.Flooded && len(s.route) > 6 {
		mid := len(s.route) / 2
		for _, sp := range s.route[mid-2 : mid+2] {
			g.Fill(world.BlockPos{X: sp.X, Y: 1, Z: sp.Z}, world.BlockPos{X: sp.X, Y: 3, Z: sp.Z}, Water)
		}
	}

	s.listener = spotCenter(layout.Start)
	for i := 0; i < cfg.Emitters; i++ {
		s.emitters = append(s.emitters, s.spawn(i))
	}
	return s
}

func spotCenter(sp Spot) mgl64.Vec3 {
	return mgl64.Vec3{float64(sp.X) + 0.5, 1, float64(sp.Z) + 0.5}
}

func (s *Scene) spawn(i int) *Emitter {
	var open []Spot
	for z := 1; z < s.layout.Rows-1; z++ {
		for x := 1; x < s.layout.Cols-1; x++ {
			if s.layout.Open[z][x] {
				open = append(open, Spot{x, z})
			}
		}
	}
	sp := open[s.rng.Intn(len(open))]
	angle := s.rng.Float64() * 360
	vel := mgl64.Vec3{
		float64(vmath.Cos(vmath.ToRadians(angle))),
		0,
		float64(vmath.Sin(vmath.ToRadians(angle))),
	}.Mul(0.5 + s.rng.Float64())

	e := &Emitter{
		Name:   fmt.Sprintf("emitter%02d", i),
		Cat:    categoryCycle[i%len(categoryCycle)],
		Pitch:  220 * float64(1+i%4),
		Stereo: i%len(categoryCycle) == len(categoryCycle)-1,
	}
	e.place(spotCenter(sp).Add(mgl64.Vec3{0, 0.5, 0}), vel)
	return e
}

// Grid is the level geometry
func (s *Scene) Grid() *Grid { return s.grid }

// Layout is the floor plan
func (s *Scene) Layout() *Layout { return s.layout }

// Emitters lists the sound sources
func (s *Scene) Emitters() []*Emitter { return s.emitters }

// SetInGame toggles whether a listener exists
func (s *Scene) SetInGame(v bool) { s.inGame.Store(v) }

// InGame implements world.Host
func (s *Scene) InGame() bool { return s.inGame.Load() }

// Listener implements world.Host
func (s *Scene) Listener() world.ListenerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return world.ListenerState{
		Position:    s.listener,
		EyePosition: s.listener.Add(mgl64.Vec3{0, EyeHeight, 0}),
		Yaw:         s.yaw,
		World:       s.grid,
	}
}

// Step advances the listener along its patrol and moves every emitter by dt
func (s *Scene) Step(dt time.Duration) {
	sec := dt.Seconds()
	s.walk(sec)
	for _, e := range s.emitters {
		s.drift(e, sec)
	}
}

// walk moves the listener back and forth along the route
func (s *Scene) walk(sec float64) {
	if len(s.route) < 2 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	last := float64(len(s.route) - 1)
	delta := s.speed * sec
	if !s.forward {
		delta = -delta
	}
	s.leg += delta
	switch {
	case s.leg >= last:
		s.leg, s.forward = last, false
	case s.leg <= 0:
		s.leg, s.forward = 0, true
	}

	i := min(int(s.leg), len(s.route)-2)
	a, b := spotCenter(s.route[i]), spotCenter(s.route[i+1])
	pos := a.Add(b.Sub(a).Mul(s.leg - float64(i)))
	if dir := pos.Sub(s.listener); dir.Len() > 1e-6 {
		s.yaw = vmath.WrapDegrees(-vmath.ToDegrees(float32(vmath.Atan2(dir[0], dir[2]))))
	}
	s.listener = pos
}

// drift moves an emitter and bounces it off solid cells
func (s *Scene) drift(e *Emitter, sec float64) {
	pos, vel := e.motion()
	next := pos.Add(vel.Mul(sec))
	if hit, ok := s.grid.Trace(pos, next, world.BlockCollider, world.FluidNone); ok {
		if hit.Normal.Len() == 0 {
			vel = vel.Mul(-1)
		} else {
			vel = vmath.Reflect(vel, hit.Normal)
		}
		next = pos
	}
	e.place(next, vel)
}
