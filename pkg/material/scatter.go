package material

import (
	"github.com/df07/go-realtime-pathtracer/pkg/core"
)

// Scatter picks a lobe with one uniform draw and returns the next path segment.
// The mirror lobe reflects the incoming direction about the normal; the diffuse
// lobe aims at normal + a uniform unit vector. The diffuse direction is not
// normalized; only a degenerate (near-zero) direction is replaced by the normal.
func (m Material) Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) ScatterResult {
	if sampler.Get1D() < m.Shininess {
		return ScatterResult{
			Scattered:   core.NewRay(hit.Point, Reflect(rayIn.Direction, hit.Normal)),
			Attenuation: m.Color,
			Specular:    true,
		}
	}

	direction := hit.Normal.Add(core.SampleOnUnitSphere(sampler.Get2D()))
	if direction.NearZero() {
		direction = hit.Normal
	}

	return ScatterResult{
		Scattered:   core.NewRay(hit.Point, direction),
		Attenuation: m.Color,
	}
}

// Reflect calculates the reflection of a vector v off a surface with normal n
func Reflect(v, n core.Vec3) core.Vec3 {
	// r = v - 2*dot(v,n)*n
	return v.Subtract(n.Multiply(2 * v.Dot(n)))
}
