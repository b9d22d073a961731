package world

// FluidRegistry maps fluids to the dampening coefficient applied while the listener's
// eyes are inside them. Immutable after construction.
type FluidRegistry struct {
	coef map[FluidID]float32
}

// NewFluidRegistry copies coefficients, clamping each to [0, 1]
func NewFluidRegistry(coef map[string]float32) *FluidRegistry {
	r := &FluidRegistry{coef: make(map[FluidID]float32, len(coef))}
	for name, c := range coef {
		r.coef[FluidID(name)] = min(1, max(c, 0))
	}
	return r
}

// Coefficient returns the dampening for id, 0 for unknown fluids
func (r *FluidRegistry) Coefficient(id FluidID) float32 {
	if r == nil {
		return 0
	}
	return r.coef[id]
}
