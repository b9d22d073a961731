package effects

import (
	"fmt"

	"github.com/lixenwraith/sndfx/vmath"
)

// BandParams is one low-pass stage as written to the driver
// Gain scales the whole band, GainHF scales the high frequencies (the cutoff)
type BandParams struct {
	Gain   float32
	GainHF float32
}

// Unity is a pass-through band
var Unity = BandParams{Gain: LowpassDefaultGain, GainHF: LowpassDefaultGainHF}

// IsUnity reports whether the band leaves the signal untouched
func (b BandParams) IsUnity() bool {
	return b.Gain == LowpassMaxGain && b.GainHF == LowpassMaxGainHF
}

func (b BandParams) String() string {
	return fmt.Sprintf("g=%.3f hf=%.3f", b.Gain, b.GainHF)
}

// LowPassBand holds the target a band is moving toward and the value last applied to the driver
// Not safe for concurrent use; the owning source serializes access
type LowPassBand struct {
	target  BandParams
	applied BandParams
}

// NewLowPassBand returns a band at unity for both target and applied values
func NewLowPassBand() LowPassBand {
	return LowPassBand{target: Unity, applied: Unity}
}

// NewSendBand returns an auxiliary send band that starts silent with an open cutoff
func NewSendBand() LowPassBand {
	silent := BandParams{Gain: LowpassMinGain, GainHF: LowpassDefaultGainHF}
	return LowPassBand{target: silent, applied: silent}
}

// SetTarget replaces the target, clamping into the EFX ranges
func (b *LowPassBand) SetTarget(gain, gainHF float32) {
	b.target = BandParams{
		Gain:   vmath.Clamp(gain, LowpassMinGain, LowpassMaxGain),
		GainHF: vmath.Clamp(gainHF, LowpassMinGainHF, LowpassMaxGainHF),
	}
}

// Blend moves the target toward the computed value by a fixed step in (0, 1]
func (b *LowPassBand) Blend(gain, gainHF, step float32) {
	step = vmath.Clamp01(step)
	b.SetTarget(
		approach(b.target.Gain, gain, step),
		approach(b.target.GainHF, gainHF, step),
	)
}

// Target returns the value that will be written on the next apply
func (b *LowPassBand) Target() BandParams {
	return b.target
}

// Applied returns the value most recently written to the driver
func (b *LowPassBand) Applied() BandParams {
	return b.applied
}

// Apply marks the target as written and returns it
func (b *LowPassBand) Apply() BandParams {
	b.applied = b.target
	return b.applied
}

func approach(from, to, step float32) float32 {
	v := vmath.Lerp(from, to, step)
	if vmath.Abs(to-v) < snapEpsilon {
		return to
	}
	return v
}
