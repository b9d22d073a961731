package vmath

import (
	"math"
	"testing"
)

// one table bin in radians; truncation toward zero can put negative angles one bin further off
const sinStep = 2 * math.Pi / SinCount

func TestSin_MatchesMathWithinResolution(t *testing.T) {
	tol := 2 * sinStep
	for theta := -100.0; theta <= 100.0; theta += 0.0137 {
		got := float64(Sin(theta))
		want := math.Sin(theta)
		if math.Abs(got-want) > tol {
			t.Fatalf("Sin(%v) = %v, want %v ± %v", theta, got, want, tol)
		}
	}
}

func TestSin_Periodic(t *testing.T) {
	tol := 2 * sinStep
	for theta := -100.0; theta <= 100.0; theta += 0.0311 {
		a := float64(Sin(theta))
		b := float64(Sin(theta + 2*math.Pi))
		if math.Abs(a-b) > tol {
			t.Fatalf("Sin(%v)=%v but Sin(θ+2π)=%v", theta, a, b)
		}
	}
}

func TestSin_Cardinals(t *testing.T) {
	if got := Sin(float32(0)); got != 0 {
		t.Errorf("Sin(0) = %v, want exactly 0", got)
	}
	if got := Sin(float32(math.Pi / 2)); math.Abs(float64(got)-1) > 1e-5 {
		t.Errorf("Sin(π/2) = %v, want ≈1", got)
	}
	if got := Cos(float32(0)); math.Abs(float64(got)-1) > 1e-5 {
		t.Errorf("Cos(0) = %v, want ≈1", got)
	}

	// Pinned table entries
	tests := []struct {
		idx  int
		want float32
	}{
		{0, 0},
		{SinCount / 4, 1},
		{SinCount / 2, 0},
		{3 * SinCount / 4, -1},
	}
	for _, tt := range tests {
		if sinTable[tt.idx] != tt.want {
			t.Errorf("sinTable[%d] = %v, want %v", tt.idx, sinTable[tt.idx], tt.want)
		}
	}
}

func TestSinDeg_Cardinals(t *testing.T) {
	if got := SinDeg(float32(90)); got != 1 {
		t.Errorf("SinDeg(90) = %v, want 1", got)
	}
	if got := SinDeg(float32(270)); got != -1 {
		t.Errorf("SinDeg(270) = %v, want -1", got)
	}
}

func TestCos_MatchesMath(t *testing.T) {
	tol := 2 * sinStep
	for theta := -50.0; theta <= 50.0; theta += 0.021 {
		if d := math.Abs(float64(Cos(theta)) - math.Cos(theta)); d > tol {
			t.Fatalf("Cos(%v) off by %v", theta, d)
		}
	}
}

func TestTan_Generic(t *testing.T) {
	got := Tan(0.5)
	if math.Abs(got-math.Tan(0.5)) > 0.01 {
		t.Errorf("Tan(0.5) = %v, want ≈%v", got, math.Tan(0.5))
	}
}

func TestAtan2_Quadrants(t *testing.T) {
	const tol = 0.015
	tests := []struct {
		name string
		y, x float64
	}{
		{"q1", 1, 2},
		{"q2", 1, -2},
		{"q3", -1, -2},
		{"q4", -1, 2},
		{"q1 steep", 5, 0.3},
		{"q3 steep", -5, -0.3},
		{"+x axis", 0, 3},
		{"-x axis", 0, -3},
		{"+y axis", 3, 0},
		{"-y axis", -3, 0},
		{"diagonal", 1, 1},
		{"tiny", 1e-4, 2e-4},
		{"large", 1e5, -3e5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Atan2(tt.y, tt.x)
			want := math.Atan2(tt.y, tt.x)
			if math.Abs(got-want) > tol {
				t.Errorf("Atan2(%v, %v) = %v, want %v", tt.y, tt.x, got, want)
			}
		})
	}
}

func TestAtan2_Origin(t *testing.T) {
	if got := Atan2(float32(0), float32(0)); got != 0 {
		t.Errorf("Atan2(0, 0) = %v, want 0", got)
	}
}

func TestAtan2_Sweep(t *testing.T) {
	const tol = 0.015
	for a := -math.Pi + 0.001; a < math.Pi; a += 0.013 {
		y, x := math.Sin(a)*7, math.Cos(a)*7
		if d := math.Abs(Atan2(y, x) - a); d > tol {
			t.Fatalf("Atan2 at angle %v off by %v", a, d)
		}
	}
}

func BenchmarkSin(b *testing.B) {
	var acc float32
	for i := 0; i < b.N; i++ {
		acc += Sin(float32(i) * 0.001)
	}
	_ = acc
}

func BenchmarkMathSin(b *testing.B) {
	var acc float64
	for i := 0; i < b.N; i++ {
		acc += math.Sin(float64(i) * 0.001)
	}
	_ = acc
}

func BenchmarkAtan2(b *testing.B) {
	var acc float32
	for i := 0; i < b.N; i++ {
		acc += Atan2(float32(i%97)-48, float32(i%89)-44)
	}
	_ = acc
}
