package geometry

import (
	"fmt"

	"github.com/df07/go-realtime-pathtracer/pkg/core"
	"github.com/df07/go-realtime-pathtracer/pkg/material"
)

// Kind identifies which variant a Primitive holds
type Kind int

const (
	KindSphere Kind = iota
	KindPlane
)

// String returns the name used in scene files
func (k Kind) String() string {
	switch k {
	case KindSphere:
		return "sphere"
	case KindPlane:
		return "plane"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Primitive is a closed tagged variant over the supported shapes. Only the
// field selected by Kind is meaningful.
type Primitive struct {
	Kind   Kind
	Sphere Sphere
	Plane  Plane
}

// NewSpherePrimitive wraps a sphere
func NewSpherePrimitive(center core.Vec3, radius float64, mat material.Material) Primitive {
	return Primitive{Kind: KindSphere, Sphere: NewSphere(center, radius, mat)}
}

// NewPlanePrimitive wraps a horizontal plane
func NewPlanePrimitive(y float64, mat material.Material) Primitive {
	return Primitive{Kind: KindPlane, Plane: NewPlane(y, mat)}
}

// Hit dispatches to the held shape
func (p Primitive) Hit(ray core.Ray, tMin, tMax float64) (material.HitRecord, bool) {
	switch p.Kind {
	case KindSphere:
		return p.Sphere.Hit(ray, tMin, tMax)
	case KindPlane:
		return p.Plane.Hit(ray, tMin, tMax)
	default:
		return material.HitRecord{}, false
	}
}

// Material returns the material of the held shape
func (p Primitive) Material() material.Material {
	if p.Kind == KindPlane {
		return p.Plane.Material
	}
	return p.Sphere.Material
}

// Validate checks the held shape
func (p Primitive) Validate() error {
	switch p.Kind {
	case KindSphere:
		return p.Sphere.Validate()
	case KindPlane:
		return p.Plane.Validate()
	default:
		return fmt.Errorf("unknown primitive kind %d", int(p.Kind))
	}
}
