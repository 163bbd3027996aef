package geometry

import (
	"fmt"
	"math"

	"github.com/df07/go-realtime-pathtracer/pkg/core"
	"github.com/df07/go-realtime-pathtracer/pkg/material"
)

// Sphere represents a sphere shape
type Sphere struct {
	Center   core.Vec3
	Radius   float64
	Material material.Material
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64, mat material.Material) Sphere {
	return Sphere{
		Center:   center,
		Radius:   radius,
		Material: mat,
	}
}

// Roots returns both solutions of the ray/sphere quadratic, smaller first.
// ok is false when the ray misses or its direction has zero length.
func (s Sphere) Roots(ray core.Ray) (t0, t1 float64, ok bool) {
	// Vector from ray origin to sphere center
	oc := ray.Origin.Subtract(s.Center)

	// Quadratic equation coefficients: at² + 2·halfB·t + c = 0
	a := ray.Direction.LengthSquared()
	if a == 0 {
		return 0, 0, false
	}
	halfB := oc.Dot(ray.Direction)
	c := oc.LengthSquared() - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return 0, 0, false
	}

	sqrtD := math.Sqrt(discriminant)
	return (-halfB - sqrtD) / a, (-halfB + sqrtD) / a, true
}

// Hit tests if a ray intersects with the sphere
func (s Sphere) Hit(ray core.Ray, tMin, tMax float64) (material.HitRecord, bool) {
	near, far, ok := s.Roots(ray)
	if !ok {
		return material.HitRecord{}, false
	}

	// Try the closer intersection point first
	root := near
	if root <= tMin || root >= tMax {
		root = far
		if root <= tMin || root >= tMax {
			return material.HitRecord{}, false
		}
	}

	hit := material.HitRecord{
		T:        root,
		Point:    ray.At(root),
		Material: s.Material,
	}

	// Outward normal points from center to hit point
	outwardNormal := hit.Point.Subtract(s.Center).Multiply(1.0 / s.Radius)
	hit.SetFaceNormal(ray, outwardNormal)

	return hit, true
}

// Validate rejects spheres the kernel cannot intersect meaningfully
func (s Sphere) Validate() error {
	if !s.Center.IsFinite() {
		return fmt.Errorf("sphere center %v is not finite", s.Center)
	}
	if !(s.Radius > 0) || math.IsInf(s.Radius, 0) {
		return fmt.Errorf("sphere radius must be positive and finite, got %g", s.Radius)
	}
	return validateMaterial(s.Material)
}

func validateMaterial(m material.Material) error {
	if !m.Color.IsFinite() {
		return fmt.Errorf("material color %v is not finite", m.Color)
	}
	if math.IsNaN(m.Shininess) || math.IsInf(m.Shininess, 0) {
		return fmt.Errorf("material shininess %g is not finite", m.Shininess)
	}
	if math.IsNaN(m.Emission) || math.IsInf(m.Emission, 0) {
		return fmt.Errorf("material emission %g is not finite", m.Emission)
	}
	return nil
}
