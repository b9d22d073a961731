package source

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/sndfx/config"
	"github.com/lixenwraith/sndfx/effects"
	"github.com/lixenwraith/sndfx/vmath"
	"github.com/lixenwraith/sndfx/world"
)

const (
	// Closer than this the listener is treated as standing on the emitter
	minTraceDistance = 1e-3
	// Nudge off a surface before tracing back toward the listener
	surfaceOffset = 0.01
	// Step past a cell that a resumed trace starts inside of
	occlusionStep = 0.5
)

// Calculator turns a snapshot and an emitter position into filter targets
// Immutable; built from a config and replaced wholesale on reload
type Calculator struct {
	occlusion           bool
	occlusionAbsorption float32
	maxOcclusionHits    int
	reverbRays          int
	reverbDistance      float64
	blendStep           float32
	rainAirAbsorption   float32
	fluidAirAbsorption  float32
	airAbsorptionRange  float64
}

// NewCalculator captures the tuning constants from cfg
func NewCalculator(cfg *config.Config) *Calculator {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Calculator{
		occlusion:           cfg.Occlusion,
		occlusionAbsorption: cfg.OcclusionAbsorption,
		maxOcclusionHits:    cfg.MaxOcclusionHits,
		reverbRays:          cfg.ReverbRays,
		reverbDistance:      cfg.ReverbDistance,
		blendStep:           cfg.BlendStep,
		rainAirAbsorption:   cfg.RainAirAbsorption,
		fluidAirAbsorption:  cfg.FluidAirAbsorption,
		airAbsorptionRange:  cfg.AirAbsorptionRange,
	}
}

// BlendStep is the fraction of the distance aux targets move per recompute
func (c *Calculator) BlendStep() float32 { return c.blendStep }

// Calculate computes the parameters for an emitter at pos
// The result is a fresh value; nothing is published until the caller stores it
func (c *Calculator) Calculate(snap *world.Snapshot, pos mgl64.Vec3) (effects.ChannelParams, error) {
	p := effects.DefaultChannelParams()
	if !snap.Valid() {
		return p, nil
	}
	if !vmath.IsValid(pos) {
		return p, ErrInvalidPosition
	}

	eye := snap.ListenerEyePosition()
	dist := pos.Sub(eye).Len()
	damp := snap.AuralDampening()

	var occlusion float32
	if c.occlusion && dist > minTraceDistance {
		occlusion = c.occlusionBetween(snap, eye, pos)
	}

	cutoff, gain := float32(1), float32(1)
	if occlusion > 0 {
		cutoff = float32(vmath.Exp(-float64(occlusion)))
		gain = float32(vmath.Pow(float64(cutoff), 0.1))
	}
	cutoff *= 1 - damp
	p.Direct = effects.BandParams{Gain: vmath.Clamp01(gain), GainHF: vmath.Clamp01(cutoff)}

	p.AirAbsorption = c.airAbsorption(snap, dist, damp)

	sends := c.reverb(snap, eye, pos)
	for i := range p.Aux {
		p.Aux[i] = effects.BandParams{Gain: sends[i], GainHF: p.Direct.GainHF}
	}
	return p, nil
}

// occlusionBetween walks eye to emitter counting distinct blocking cells
func (c *Calculator) occlusionBetween(snap *world.Snapshot, eye, pos mgl64.Vec3) float32 {
	dir := pos.Sub(eye).Normalize()
	target := world.BlockPosOf(pos)
	from := eye
	hits := 0
	var last world.BlockPos
	for steps := 0; hits < c.maxOcclusionHits && steps < c.maxOcclusionHits*4; steps++ {
		hit, ok := snap.Trace(from, pos)
		if !ok || hit.Block == target {
			break
		}
		if hits == 0 || hit.Block != last {
			hits++
			last = hit.Block
		}
		from = hit.Pos.Add(dir.Mul(occlusionStep))
		if pos.Sub(from).Dot(dir) <= 0 {
			break
		}
	}
	return float32(hits) * c.occlusionAbsorption
}

// airAbsorption is the default plus rain and fluid terms scaled by distance
func (c *Calculator) airAbsorption(snap *world.Snapshot, dist float64, damp float32) float32 {
	weight := float32(1)
	if c.airAbsorptionRange > 0 {
		weight = float32(vmath.Clamp01(dist / c.airAbsorptionRange))
	}
	extra := snap.PrecipitationStrength()*c.rainAirAbsorption + damp*c.fluidAirAbsorption
	v := effects.AirAbsorptionDefault + weight*extra
	return vmath.Clamp(v, effects.AirAbsorptionMin, effects.AirAbsorptionMax)
}

// reverb fans rays out of the emitter and buckets reflected energy by path length
// Short paths feed send 0, the longest feed send 3; rays escaping to the sky add nothing
func (c *Calculator) reverb(snap *world.Snapshot, eye, pos mgl64.Vec3) [effects.AuxSends]float32 {
	var sends [effects.AuxSends]float32
	if c.reverbRays <= 0 || c.reverbDistance <= 0 {
		return sends
	}

	var energy [effects.AuxSends]float64
	bucket := c.reverbDistance / 2
	for i := 0; i < c.reverbRays; i++ {
		dir := vmath.FibonacciDirection(i, c.reverbRays)
		hit, ok := snap.TraceMode(pos, pos.Add(dir.Mul(c.reverbDistance)), world.BlockCollider, world.FluidNone)
		if !ok {
			continue
		}

		e := 1.0
		off := hit.Pos.Add(hit.Normal.Mul(surfaceOffset))
		if _, blocked := snap.TraceMode(off, eye, world.BlockCollider, world.FluidNone); !blocked {
			e = 2
		}

		path := hit.Pos.Sub(pos).Len() + hit.Pos.Sub(eye).Len()
		k := vmath.Clamp(int(path/bucket), 0, effects.AuxSends-1)
		energy[k] += e
	}

	for k := range sends {
		sends[k] = float32(vmath.Clamp01(energy[k] / float64(c.reverbRays) * 2))
	}
	return sends
}
