package world

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/sndfx/vmath"
)

// Snapshot is the listener's environment captured once per tick
// Immutable after Build; any number of workers may read it concurrently
type Snapshot struct {
	valid                 bool
	world                 World
	listenerPosition      mgl64.Vec3
	listenerEyePosition   mgl64.Vec3
	listenerBlockPos      BlockPos
	listenerEyeBlockPos   BlockPos
	look                  mgl64.Vec3
	isPrecipitating       bool
	precipitationStrength float32
	auralDampening        float32
}

// Invalid is the snapshot used when no listener is active
var Invalid = &Snapshot{}

func (s *Snapshot) Valid() bool                     { return s != nil && s.valid }
func (s *Snapshot) World() World                    { return s.world }
func (s *Snapshot) ListenerPosition() mgl64.Vec3    { return s.listenerPosition }
func (s *Snapshot) ListenerEyePosition() mgl64.Vec3 { return s.listenerEyePosition }
func (s *Snapshot) ListenerBlockPos() BlockPos      { return s.listenerBlockPos }
func (s *Snapshot) ListenerEyeBlockPos() BlockPos   { return s.listenerEyeBlockPos }
func (s *Snapshot) Look() mgl64.Vec3                { return s.look }
func (s *Snapshot) IsPrecipitating() bool           { return s.isPrecipitating }
func (s *Snapshot) PrecipitationStrength() float32  { return s.precipitationStrength }
func (s *Snapshot) AuralDampening() float32         { return s.auralDampening }

// Trace casts against block outlines and stops only at fluid sources
func (s *Snapshot) Trace(src, dst mgl64.Vec3) (Hit, bool) {
	return s.TraceMode(src, dst, BlockOutline, FluidSourceOnly)
}

// TraceMode casts with explicit modes; an invalid snapshot never hits
func (s *Snapshot) TraceMode(src, dst mgl64.Vec3, bm BlockMode, fm FluidMode) (Hit, bool) {
	if !s.Valid() || s.world == nil {
		return Hit{}, false
	}
	return s.world.Trace(src, dst, bm, fm)
}

// Builder assembles snapshots on the thread that owns world state
type Builder struct {
	Host   Host
	Bus    *PrecipitationBus
	Fluids *FluidRegistry
}

// Build queries the host exactly once per field and never blocks on I/O
func (b *Builder) Build() *Snapshot {
	if b.Host == nil || !b.Host.InGame() {
		return Invalid
	}

	ls := b.Host.Listener()
	if ls.World == nil {
		return Invalid
	}

	s := &Snapshot{
		valid:               true,
		world:               ls.World,
		listenerPosition:    ls.Position,
		listenerEyePosition: ls.EyePosition,
		listenerBlockPos:    BlockPosOf(ls.Position),
		listenerEyeBlockPos: BlockPosOf(ls.EyePosition),
		look:                vmath.VectorForRotation(ls.Pitch, ls.Yaw),
		isPrecipitating:     ls.World.IsRaining(),
	}

	if fluid, ok := ls.World.FluidAt(s.listenerEyeBlockPos); ok {
		s.auralDampening = b.Fluids.Coefficient(fluid)
	}

	q := &PrecipitationQuery{World: ls.World}
	if b.Bus != nil {
		b.Bus.Post(q)
	} else {
		q.Strength = ls.World.RainStrength()
	}
	s.precipitationStrength = vmath.Clamp01(q.Strength)

	return s
}
