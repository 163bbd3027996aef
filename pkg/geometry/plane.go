package geometry

import (
	"fmt"
	"math"

	"github.com/df07/go-realtime-pathtracer/pkg/core"
	"github.com/df07/go-realtime-pathtracer/pkg/material"
)

// Plane is an infinite horizontal plane y = Y with outward normal +Y
type Plane struct {
	Y        float64
	Material material.Material
}

// NewPlane creates a new horizontal plane at height y
func NewPlane(y float64, mat material.Material) Plane {
	return Plane{Y: y, Material: mat}
}

var planeNormal = core.NewVec3(0, 1, 0)

// Hit tests if a ray intersects with the plane
func (p Plane) Hit(ray core.Ray, tMin, tMax float64) (material.HitRecord, bool) {
	// Parallel rays, including zero-length directions, never hit
	if ray.Direction.Y == 0 {
		return material.HitRecord{}, false
	}

	t := (p.Y - ray.Origin.Y) / ray.Direction.Y
	if t <= tMin || t >= tMax {
		return material.HitRecord{}, false
	}

	hit := material.HitRecord{
		T:        t,
		Point:    ray.At(t),
		Material: p.Material,
	}
	hit.SetFaceNormal(ray, planeNormal)

	return hit, true
}

// Validate rejects non-finite planes
func (p Plane) Validate() error {
	if math.IsNaN(p.Y) || math.IsInf(p.Y, 0) {
		return fmt.Errorf("plane height %g is not finite", p.Y)
	}
	return validateMaterial(p.Material)
}
