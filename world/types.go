// Package world captures the listener's environment once per tick and exposes the
// collaborator interfaces the engine uses to query the game world
package world

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/sndfx/vmath"
)

// BlockPos is an integer cell coordinate
type BlockPos struct {
	X, Y, Z int
}

// BlockPosOf floors each component, so -0.5 lands in cell -1
func BlockPosOf(v mgl64.Vec3) BlockPos {
	return BlockPos{vmath.Floor(v[0]), vmath.Floor(v[1]), vmath.Floor(v[2])}
}

// Center returns the midpoint of the cell
func (p BlockPos) Center() mgl64.Vec3 {
	return mgl64.Vec3{float64(p.X) + 0.5, float64(p.Y) + 0.5, float64(p.Z) + 0.5}
}

func (p BlockPos) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p.X, p.Y, p.Z)
}

// FluidID names a fluid type such as "water"
type FluidID string

// BlockMode selects which block shape a ray collides with
type BlockMode int

const (
	BlockCollider BlockMode = iota
	BlockOutline
	BlockVisual
)

// FluidMode selects whether rays stop at fluids
type FluidMode int

const (
	FluidNone FluidMode = iota
	FluidSourceOnly
	FluidAny
)

// Hit is the first blocking intersection of a ray
type Hit struct {
	Pos    mgl64.Vec3
	Block  BlockPos
	Normal mgl64.Vec3
}

// Tracer answers ray queries against world geometry
// Implementations must be safe for concurrent calls
type Tracer interface {
	Trace(src, dst mgl64.Vec3, bm BlockMode, fm FluidMode) (Hit, bool)
}

// World is the environment the listener is in
type World interface {
	Tracer
	IsRaining() bool
	RainStrength() float32
	FluidAt(pos BlockPos) (FluidID, bool)
}

// ListenerState is the listener as reported by the host
type ListenerState struct {
	Position    mgl64.Vec3
	EyePosition mgl64.Vec3
	Pitch, Yaw  float32
	World       World
}

// Host is the owner-thread view of the running game
type Host interface {
	InGame() bool
	Listener() ListenerState
}
