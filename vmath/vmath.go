package vmath

import (
	"cmp"
	"math"
)

// Float is the set of float types the table functions accept
type Float interface {
	~float32 | ~float64
}

const (
	Phi   = 1.61803399 // Golden ratio
	Angle = Phi * math.Pi * 2
	Pi32  = float32(math.Pi)
	E32   = float32(math.E)

	radToDeg = 180.0 / math.Pi
	degToRad = math.Pi / 180.0
)

// --- Conversion ---

func ToRadians[F Float](deg F) F { return deg * degToRad }
func ToDegrees[F Float](rad F) F { return rad * radToDeg }

// WrapDegrees folds an angle into [-180, 180)
func WrapDegrees[F Float](deg F) F {
	d := F(math.Mod(float64(deg), 360))
	if d >= 180 {
		d -= 360
	}
	if d < -180 {
		d += 360
	}
	return d
}

// --- Arithmetic ---

func Abs[F Float](v F) F {
	if v < 0 {
		return -v
	}
	return v
}

// Floor truncates then steps down when truncation overshot a negative value
func Floor[F Float](v F) int {
	i := int(v)
	if v < F(i) {
		return i - 1
	}
	return i
}

func Sqrt[F Float](v F) F {
	return F(math.Sqrt(float64(v)))
}

func Clamp[T cmp.Ordered](v, lo, hi T) T {
	return min(hi, max(v, lo))
}

// Clamp01 clamps to [0, 1]
func Clamp01[F Float](v F) F {
	return min(1, max(v, 0))
}

// Lerp moves from a toward b by t, t is not clamped
func Lerp[F Float](a, b, t F) F {
	return a + (b-a)*t
}

// --- Fast Approximations ---

// Log approximates ln(v); below 0.03 the approximation diverges so math.Log is used
func Log(v float64) float64 {
	if v < 0.03 {
		return math.Log(v)
	}
	return 6 * (v - 1) / (v + 1 + 4*math.Sqrt(v))
}

// powBias is the IEEE-754 bit pattern of 1.0 minus the Schraudolph correction term
const powBias = 4606921280493453312

// Pow approximates a^b by scaling the exponent bits of a
func Pow(a, b float64) float64 {
	bits := int64(math.Float64bits(a))
	bits = int64(b*float64(bits-powBias)) + powBias
	return math.Float64frombits(uint64(bits))
}

// Exp approximates e^v by writing the high word of a float64 directly (Schraudolph 1999)
func Exp(v float64) float64 {
	hi := int64(1512775*v + (1072693248 - 60801))
	return math.Float64frombits(uint64(hi) << 32)
}
