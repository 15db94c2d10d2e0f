package tracking

import (
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Clamp01 limits v to [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Lerp interpolates from a to b. The fraction is clamped to [0,1].
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*Clamp01(t)
}

// InverseLerp returns where v lies between a and b as a fraction clamped to
// [0,1]. Returns 0 when a == b.
func InverseLerp(a, b, v float64) float64 {
	if a == b {
		return 0
	}
	return Clamp01((v - a) / (b - a))
}

// LerpVec2 interpolates two planar vectors with a clamped fraction.
func LerpVec2(a, b r2.Vec, t float64) r2.Vec {
	return r2.Add(a, r2.Scale(Clamp01(t), r2.Sub(b, a)))
}

// LerpVec3 interpolates two world-space vectors with a clamped fraction.
func LerpVec3(a, b r3.Vec, t float64) r3.Vec {
	return r3.Add(a, r3.Scale(Clamp01(t), r3.Sub(b, a)))
}
