// Package sim is a small voxel world that drives the effects engine end to end
// It provides the world collaborators, moving emitters and a listener patrolling a carved maze
package sim

import (
	"math"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/sndfx/vmath"
	"github.com/lixenwraith/sndfx/world"
)

// Cell is the content of one voxel
type Cell uint8

const (
	Air Cell = iota
	Stone
	Water
	Lava
)

func (c Cell) Fluid() (world.FluidID, bool) {
	switch c {
	case Water:
		return "water", true
	case Lava:
		return "lava", true
	}
	return "", false
}

// Grid is a bounded voxel volume; everything outside is air
// Cells are written during setup only, so traces need no locking
type Grid struct {
	w, h, d int
	cells   []Cell
	rain    atomic.Uint32 // float32 bits
}

// NewGrid allocates a w x h x d volume of air
func NewGrid(w, h, d int) *Grid {
	return &Grid{w: w, h: h, d: d, cells: make([]Cell, w*h*d)}
}

// Size returns the dimensions
func (g *Grid) Size() (w, h, d int) { return g.w, g.h, g.d }

func (g *Grid) index(p world.BlockPos) (int, bool) {
	if p.X < 0 || p.Y < 0 || p.Z < 0 || p.X >= g.w || p.Y >= g.h || p.Z >= g.d {
		return 0, false
	}
	return (p.Y*g.d+p.Z)*g.w + p.X, true
}

// At returns the cell at p
func (g *Grid) At(p world.BlockPos) Cell {
	if i, ok := g.index(p); ok {
		return g.cells[i]
	}
	return Air
}

// Set writes a cell; out of range writes are dropped
func (g *Grid) Set(p world.BlockPos, c Cell) {
	if i, ok := g.index(p); ok {
		g.cells[i] = c
	}
}

// Fill sets every cell in the inclusive box a..b
func (g *Grid) Fill(a, b world.BlockPos, c Cell) {
	for y := min(a.Y, b.Y); y <= max(a.Y, b.Y); y++ {
		for z := min(a.Z, b.Z); z <= max(a.Z, b.Z); z++ {
			for x := min(a.X, b.X); x <= max(a.X, b.X); x++ {
				g.Set(world.BlockPos{X: x, Y: y, Z: z}, c)
			}
		}
	}
}

// SetRain sets precipitation strength in [0, 1]; zero stops the rain
func (g *Grid) SetRain(strength float32) {
	g.rain.Store(math.Float32bits(vmath.Clamp01(strength)))
}

func (g *Grid) RainStrength() float32 { return math.Float32frombits(g.rain.Load()) }
func (g *Grid) IsRaining() bool       { return g.RainStrength() > 0 }

// FluidAt implements world.World
func (g *Grid) FluidAt(p world.BlockPos) (world.FluidID, bool) {
	return g.At(p).Fluid()
}

func (g *Grid) blocks(p world.BlockPos, fm world.FluidMode) bool {
	switch c := g.At(p); c {
	case Stone:
		return true
	case Water, Lava:
		return fm != world.FluidNone
	}
	return false
}

// Trace walks the voxels crossed by src->dst (Amanatides-Woo) and reports the first blocking one
// Every cell is a full cube, so the block modes do not differ
func (g *Grid) Trace(src, dst mgl64.Vec3, _ world.BlockMode, fm world.FluidMode) (world.Hit, bool) {
	d := dst.Sub(src)
	length := d.Len()
	if length == 0 || !vmath.IsValid(d) {
		return world.Hit{}, false
	}
	dir := d.Mul(1 / length)

	start := world.BlockPosOf(src)
	cell := [3]int{start.X, start.Y, start.Z}
	var step [3]int
	var tMax, tDelta [3]float64
	for i := 0; i < 3; i++ {
		switch {
		case dir[i] > 0:
			step[i] = 1
			tMax[i] = (float64(cell[i]+1) - src[i]) / dir[i]
			tDelta[i] = 1 / dir[i]
		case dir[i] < 0:
			step[i] = -1
			tMax[i] = (src[i] - float64(cell[i])) / -dir[i]
			tDelta[i] = -1 / dir[i]
		default:
			tMax[i] = math.Inf(1)
			tDelta[i] = math.Inf(1)
		}
	}

	var normal mgl64.Vec3
	t := 0.0
	for t <= length {
		p := world.BlockPos{X: cell[0], Y: cell[1], Z: cell[2]}
		if g.blocks(p, fm) {
			return world.Hit{Pos: src.Add(dir.Mul(t)), Block: p, Normal: normal}, true
		}

		axis := 0
		if tMax[1] < tMax[axis] {
			axis = 1
		}
		if tMax[2] < tMax[axis] {
			axis = 2
		}
		t = tMax[axis]
		cell[axis] += step[axis]
		tMax[axis] += tDelta[axis]
		normal = mgl64.Vec3{}
		normal[axis] = -float64(step[axis])
	}
	return world.Hit{}, false
}
