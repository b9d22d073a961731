package effects

import (
	"fmt"
	"strings"
)

// ChannelParams is the full parameter set written to one driver channel per commit
type ChannelParams struct {
	Aux           [AuxSends]BandParams
	Direct        BandParams
	AirAbsorption float32
}

// DefaultChannelParams is what a freshly attached source carries before its first update
func DefaultChannelParams() ChannelParams {
	p := ChannelParams{Direct: Unity, AirAbsorption: AirAbsorptionDefault}
	for i := range p.Aux {
		p.Aux[i] = BandParams{Gain: LowpassMinGain, GainHF: LowpassDefaultGainHF}
	}
	return p
}

func (p ChannelParams) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "direct[%s] air=%.2f", p.Direct, p.AirAbsorption)
	for i, b := range p.Aux {
		fmt.Fprintf(&sb, " aux%d[%s]", i, b)
	}
	return sb.String()
}
