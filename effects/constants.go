package effects

// EFX parameter ids and ranges, values as published by the OpenAL EFX extension
const (
	ParamLowpassGain         = 0x0001
	ParamLowpassGainHF       = 0x0002
	ParamDirectFilter        = 0x20005
	ParamAuxiliarySendFilter = 0x20006
	ParamAirAbsorption       = 0x20007
)

const (
	LowpassMinGain     = float32(0)
	LowpassMaxGain     = float32(1)
	LowpassDefaultGain = float32(1)

	LowpassMinGainHF     = float32(0)
	LowpassMaxGainHF     = float32(1)
	LowpassDefaultGainHF = float32(1)

	AirAbsorptionMin     = float32(0)
	AirAbsorptionMax     = float32(10)
	AirAbsorptionDefault = float32(0)
)

// AuxSends is the number of auxiliary effect slots each channel feeds
const AuxSends = 4

// snapEpsilon is how close a blended value must get before it lands on its target
const snapEpsilon = float32(1e-3)
