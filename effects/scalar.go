package effects

import "github.com/lixenwraith/sndfx/vmath"

// ScalarParam is a bounded per-source float property such as air absorption
type ScalarParam struct {
	Param int
	Def   float32
	Min   float32
	Max   float32
	value float32
}

// NewScalarParam starts at the default value
func NewScalarParam(param int, def, lo, hi float32) ScalarParam {
	return ScalarParam{Param: param, Def: def, Min: lo, Max: hi, value: def}
}

// NewAirAbsorption returns the EFX air absorption factor with its published bounds
func NewAirAbsorption() ScalarParam {
	return NewScalarParam(ParamAirAbsorption, AirAbsorptionDefault, AirAbsorptionMin, AirAbsorptionMax)
}

// Set clamps v into [Min, Max]
func (p *ScalarParam) Set(v float32) {
	p.value = vmath.Clamp(v, p.Min, p.Max)
}

func (p *ScalarParam) Get() float32 { return p.value }

func (p *ScalarParam) Reset() { p.value = p.Def }
