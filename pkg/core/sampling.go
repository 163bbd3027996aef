package core

import (
	"math"
)

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
	Get3D() Vec3
}

// SampleOnUnitSphere generates a uniform random direction on the unit sphere
func SampleOnUnitSphere(sample Vec2) Vec3 {
	a := 2.0 * math.Pi * sample.X // azimuth ∈ [0, 2π)
	z := -1.0 + 2.0*sample.Y      // z ∈ [-1, 1)
	r := math.Sqrt(math.Max(0, 1.0-z*z))
	return NewVec3(r*math.Cos(a), r*math.Sin(a), z)
}

// SampleHemisphere generates a uniform random direction in the hemisphere around normal
func SampleHemisphere(normal Vec3, sample Vec2) Vec3 {
	onSphere := SampleOnUnitSphere(sample)
	if onSphere.Dot(normal) > 0 {
		return onSphere
	}
	return onSphere.Negate()
}

// SampleJitter maps a 2D sample to a sub-pixel offset in [-0.5, 0.5)²
func SampleJitter(sample Vec2) Vec2 {
	return NewVec2(sample.X-0.5, sample.Y-0.5)
}
