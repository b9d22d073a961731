package vmath

import (
	"math"
)

// Sine LUT: 2^12 samples over one full turn
const (
	SinBits  = 12
	SinMask  = ^(-1 << SinBits)
	SinCount = SinMask + 1
)

// Atan2 LUT: 2^7 x 2^7 grid over the first quadrant [0,1]x[0,1]
const (
	Atan2Bits  = 7
	Atan2Bits2 = Atan2Bits << 1
	Atan2Mask  = ^(-1 << Atan2Bits2)
	Atan2Count = Atan2Mask + 1
	Atan2Dim   = 1 << Atan2Bits
)

const (
	radFull       = float32(math.Pi * 2)
	radToIndex    = SinCount / radFull
	degToIndex    = SinCount / float32(360)
	cosToSin      = float32(math.Pi / 2)
	atan2DimMinus = float32(Atan2Dim - 1)
)

var (
	sinTable   [SinCount]float32
	atan2Table [Atan2Count]float32
)

func init() {
	// Sample at bin centers
	for i := 0; i < SinCount; i++ {
		sinTable[i] = float32(math.Sin((float64(i) + 0.5) / SinCount * 2 * math.Pi))
	}

	// Cardinals are pinned to exact values so 0/90/180/270 degrees carry no seam error
	cardinals := [4]float32{0, 1, 0, -1}
	for q, deg := range [4]int{0, 90, 180, 270} {
		sinTable[(deg*SinCount/360)&SinMask] = cardinals[q]
	}

	for i := 0; i < Atan2Dim; i++ {
		for j := 0; j < Atan2Dim; j++ {
			x0 := float64(i) / Atan2Dim
			y0 := float64(j) / Atan2Dim
			atan2Table[j*Atan2Dim+i] = float32(math.Atan2(y0, x0))
		}
	}
}

// Sin returns the table sine of rad; any finite angle is accepted, wrapping is implicit in the mask
func Sin[F Float](rad F) F {
	return F(sinTable[int(float32(rad)*radToIndex)&SinMask])
}

// Cos reads the sine table a quarter turn ahead
func Cos[F Float](rad F) F {
	return F(sinTable[int((float32(rad)+cosToSin)*radToIndex)&SinMask])
}

// Tan is Sin/Cos from the table; cardinal poles yield ±Inf
func Tan[F Float](rad F) F {
	return Sin(rad) / Cos(rad)
}

// SinDeg returns the table sine of an angle given in degrees
func SinDeg[F Float](deg F) F {
	return F(sinTable[int(float32(deg)*degToIndex)&SinMask])
}

// Atan2 folds all four quadrants onto the first-quadrant table
// Result is in (-π, π]; Atan2(0, 0) is 0
func Atan2[F Float](y, x F) F {
	fy, fx := float32(y), float32(x)
	if fx == 0 && fy == 0 {
		return 0
	}

	var add, mul float32
	if fx < 0 {
		if fy < 0 {
			fx, fy = -fx, -fy
			mul = 1
		} else {
			fx = -fx
			mul = -1
		}
		add = -math.Pi
	} else {
		if fy < 0 {
			fy = -fy
			mul = -1
		} else {
			mul = 1
		}
		add = 0
	}

	invDiv := atan2DimMinus / max(fx, fy)
	xi := int(fx * invDiv)
	yi := int(fy * invDiv)

	return F((atan2Table[yi*Atan2Dim+xi] + add) * mul)
}
