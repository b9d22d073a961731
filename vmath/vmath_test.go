package vmath

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestFloor(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{-0.5, -1},
		{0.5, 0},
		{-2.0, -2},
		{2.0, 2},
		{-2.0001, -3},
		{0, 0},
		{7.999, 7},
	}
	for _, tt := range tests {
		if got := Floor(tt.in); got != tt.want {
			t.Errorf("Floor(%v) = %d, want %d", tt.in, got, tt.want)
		}
		if got := Floor(float32(tt.in)); got != tt.want {
			t.Errorf("Floor(float32 %v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(5, 0, 3); got != 3 {
		t.Errorf("Clamp(5,0,3) = %d", got)
	}
	if got := Clamp(-1.5, -1.0, 1.0); got != -1 {
		t.Errorf("Clamp(-1.5,-1,1) = %v", got)
	}
	if got := Clamp01(float32(1.2)); got != 1 {
		t.Errorf("Clamp01(1.2) = %v", got)
	}
	if got := Clamp01(-0.2); got != 0 {
		t.Errorf("Clamp01(-0.2) = %v", got)
	}
	if got := Clamp01(0.25); got != 0.25 {
		t.Errorf("Clamp01(0.25) = %v", got)
	}
}

func TestAngleConversion(t *testing.T) {
	if got := ToRadians(180.0); math.Abs(got-math.Pi) > 1e-12 {
		t.Errorf("ToRadians(180) = %v", got)
	}
	if got := ToDegrees(float32(math.Pi)); math.Abs(float64(got)-180) > 1e-4 {
		t.Errorf("ToDegrees(π) = %v", got)
	}
	tests := []struct{ in, want float64 }{
		{190, -170},
		{-190, 170},
		{180, -180},
		{720, 0},
		{45, 45},
	}
	for _, tt := range tests {
		if got := WrapDegrees(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("WrapDegrees(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestAbs(t *testing.T) {
	if Abs(-3.5) != 3.5 || Abs(float32(2)) != 2 {
		t.Error("Abs returned wrong magnitude")
	}
}

func TestLog_Approximation(t *testing.T) {
	// Exact fallback below the cutoff
	if got, want := Log(0.01), math.Log(0.01); got != want {
		t.Errorf("Log(0.01) = %v, want exact %v", got, want)
	}
	for _, v := range []float64{0.1, 0.5, 1, 2, 4} {
		got := Log(v)
		want := math.Log(v)
		if math.Abs(got-want) > 0.05*math.Max(1, math.Abs(want)) {
			t.Errorf("Log(%v) = %v, want ≈%v", v, got, want)
		}
	}
	if Log(1) != 0 {
		t.Error("Log(1) must be 0")
	}
}

func TestExp_Approximation(t *testing.T) {
	for _, v := range []float64{-5, -1, -0.1, 0, 0.5, 2} {
		got := Exp(v)
		want := math.Exp(v)
		if math.Abs(got-want)/want > 0.05 {
			t.Errorf("Exp(%v) = %v, want ≈%v", v, got, want)
		}
	}
}

func TestPow_Approximation(t *testing.T) {
	tests := []struct{ a, b float64 }{
		{0.5, 0.1},
		{0.9, 0.1},
		{2, 2},
		{3, 0.5},
	}
	for _, tt := range tests {
		got := Pow(tt.a, tt.b)
		want := math.Pow(tt.a, tt.b)
		if math.Abs(got-want)/want > 0.1 {
			t.Errorf("Pow(%v, %v) = %v, want ≈%v", tt.a, tt.b, got, want)
		}
	}
}

func TestVectorForRotation(t *testing.T) {
	tests := []struct {
		name       string
		pitch, yaw float32
		want       mgl64.Vec3
	}{
		{"south", 0, 0, mgl64.Vec3{0, 0, 1}},
		{"west", 0, 90, mgl64.Vec3{-1, 0, 0}},
		{"down", 90, 0, mgl64.Vec3{0, -1, 0}},
	}
	// the table truncates toward zero, so a cardinal can land one bin off
	tol := 2 * 2 * math.Pi / SinCount
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VectorForRotation(tt.pitch, tt.yaw)
			if math.Abs(got[0]-tt.want[0]) > tol || math.Abs(got[1]-tt.want[1]) > tol || math.Abs(got[2]-tt.want[2]) > tol {
				t.Errorf("VectorForRotation(%v, %v) = %v, want %v", tt.pitch, tt.yaw, got, tt.want)
			}
		})
	}
}

func TestReflect(t *testing.T) {
	got := Reflect(mgl64.Vec3{1, -1, 0}, mgl64.Vec3{0, 1, 0})
	if !got.ApproxEqual(mgl64.Vec3{1, 1, 0}) {
		t.Errorf("Reflect = %v", got)
	}
}

func TestIsValid(t *testing.T) {
	if !IsValid(mgl64.Vec3{1, 2, 3}) {
		t.Error("finite vector reported invalid")
	}
	if IsValid(mgl64.Vec3{0, math.NaN(), 0}) {
		t.Error("NaN vector reported valid")
	}
}

func TestFibonacciDirection_UnitLength(t *testing.T) {
	const n = 32
	var sum mgl64.Vec3
	for i := 0; i < n; i++ {
		d := FibonacciDirection(i, n)
		if l := d.Len(); math.Abs(l-1) > 0.01 {
			t.Fatalf("direction %d has length %v", i, l)
		}
		sum = sum.Add(d)
	}
	// An even spread roughly cancels out
	if sum.Len() > 2 {
		t.Errorf("directions bunched: resultant %v", sum)
	}
}
