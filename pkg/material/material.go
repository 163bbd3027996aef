package material

import (
	"github.com/df07/go-realtime-pathtracer/pkg/core"
)

// Material is a two-lobe surface: a perfect mirror chosen with probability
// Shininess, otherwise a diffuse bounce. Emission scales Color into emitted
// radiance. Values outside [0, 1] are not rejected and propagate arithmetically.
type Material struct {
	Color     core.Vec3 // Linear albedo, also the emitted color
	Shininess float64   // Probability of mirror reflection
	Emission  float64   // Emitted radiance multiplier
}

// NewMatte creates a purely diffuse, non-emissive material
func NewMatte(color core.Vec3) Material {
	return Material{Color: color}
}

// NewMirror creates a perfect mirror
func NewMirror(color core.Vec3) Material {
	return Material{Color: color, Shininess: 1}
}

// NewMetal creates a material that mirrors with the given probability
func NewMetal(color core.Vec3, shininess float64) Material {
	return Material{Color: color, Shininess: shininess}
}

// NewEmissive creates a diffuse material that emits Color*emission
func NewEmissive(color core.Vec3, emission float64) Material {
	return Material{Color: color, Emission: emission}
}

// Emit returns the radiance emitted by this material
func (m Material) Emit() core.Vec3 {
	return m.Color.Multiply(m.Emission)
}

// IsEmissive reports whether the material emits any light
func (m Material) IsEmissive() bool {
	return m.Emission != 0 && !m.Color.NearZero()
}
