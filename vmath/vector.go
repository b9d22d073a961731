package vmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// VectorForRotation returns the unit look vector for pitch/yaw in degrees
// Yaw 0 faces +Z, positive pitch looks down
func VectorForRotation(pitch, yaw float32) mgl64.Vec3 {
	yr := -yaw*float32(degToRad) - Pi32
	pr := -pitch * float32(degToRad)
	f := Cos(yr)
	f1 := Sin(yr)
	f2 := -Cos(pr)
	f3 := Sin(pr)
	return mgl64.Vec3{float64(f1 * f2), float64(f3), float64(f * f2)}
}

// Reflect mirrors v about a surface normal
func Reflect(v, normal mgl64.Vec3) mgl64.Vec3 {
	dot2 := v.Dot(normal) * 2
	return v.Sub(normal.Mul(dot2))
}

// IsValid reports whether no component is NaN
func IsValid(v mgl64.Vec3) bool {
	return !(math.IsNaN(v[0]) || math.IsNaN(v[1]) || math.IsNaN(v[2]))
}

// FibonacciDirection returns the i-th of n roughly evenly spread unit vectors on a sphere
// Longitude steps by the golden angle so consecutive rays never bunch up
func FibonacciDirection(i, n int) mgl64.Vec3 {
	if n <= 0 {
		return mgl64.Vec3{0, 1, 0}
	}
	y := 1 - (float64(i)+0.5)*2/float64(n)
	r := math.Sqrt(max(0, 1-y*y))
	theta := float32(math.Mod(Angle*float64(i), 2*math.Pi))
	return mgl64.Vec3{float64(Cos(theta)) * r, y, float64(Sin(theta)) * r}
}
