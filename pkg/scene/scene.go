package scene

import (
	"fmt"

	"github.com/df07/go-realtime-pathtracer/pkg/core"
	"github.com/df07/go-realtime-pathtracer/pkg/geometry"
	"github.com/df07/go-realtime-pathtracer/pkg/material"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Name       string
	Primitives []geometry.Primitive // Intersected exhaustively, in order
	Defaults   Defaults             // Initial view and render settings
}

// Defaults holds the initial camera pose and render settings a scene suggests
type Defaults struct {
	Position   core.Vec3
	Yaw        float64 // degrees
	Pitch      float64 // degrees
	FOV        float64 // vertical field of view, degrees
	Background core.Vec3
	Samples    int
	Bounces    int
}

// DefaultDefaults returns the settings the interactive viewer starts with
func DefaultDefaults() Defaults {
	return Defaults{
		Position: core.NewVec3(0, 1, 2),
		Yaw:      -90,
		Pitch:    0,
		FOV:      90,
		Samples:  50,
		Bounces:  5,
	}
}

// NewScene creates an empty scene with default view settings
func NewScene(name string) *Scene {
	return &Scene{
		Name:       name,
		Primitives: make([]geometry.Primitive, 0),
		Defaults:   DefaultDefaults(),
	}
}

// AddSphere appends a sphere primitive
func (s *Scene) AddSphere(center core.Vec3, radius float64, mat material.Material) {
	s.Primitives = append(s.Primitives, geometry.NewSpherePrimitive(center, radius, mat))
}

// AddPlane appends a horizontal plane primitive
func (s *Scene) AddPlane(y float64, mat material.Material) {
	s.Primitives = append(s.Primitives, geometry.NewPlanePrimitive(y, mat))
}

// Hit returns the nearest intersection among all primitives. Each primitive is
// tested against an upper bound that shrinks to the closest hit found so far,
// so a later primitive only wins when it is strictly nearer.
func (s *Scene) Hit(ray core.Ray, tMin, tMax float64) (material.HitRecord, bool) {
	hit, _, ok := s.HitPrimitive(ray, tMin, tMax)
	return hit, ok
}

// HitPrimitive is Hit that also reports the index of the primitive that was hit
func (s *Scene) HitPrimitive(ray core.Ray, tMin, tMax float64) (material.HitRecord, int, bool) {
	var closest material.HitRecord
	index := -1
	closestSoFar := tMax

	for i, primitive := range s.Primitives {
		if hit, ok := primitive.Hit(ray, tMin, closestSoFar); ok {
			closest = hit
			closestSoFar = hit.T
			index = i
		}
	}

	return closest, index, index >= 0
}

// Validate checks every primitive and the default settings
func (s *Scene) Validate() error {
	for i, primitive := range s.Primitives {
		if err := primitive.Validate(); err != nil {
			return fmt.Errorf("primitive %d (%s): %w", i, primitive.Kind, err)
		}
	}
	if !s.Defaults.Position.IsFinite() {
		return fmt.Errorf("camera position %v is not finite", s.Defaults.Position)
	}
	if !s.Defaults.Background.IsFinite() {
		return fmt.Errorf("background %v is not finite", s.Defaults.Background)
	}
	if s.Defaults.FOV <= 0 || s.Defaults.FOV >= 180 {
		return fmt.Errorf("fov must be in (0, 180), got %g", s.Defaults.FOV)
	}
	if s.Defaults.Samples < 1 {
		return fmt.Errorf("samples must be at least 1, got %d", s.Defaults.Samples)
	}
	if s.Defaults.Bounces < 1 {
		return fmt.Errorf("bounces must be at least 1, got %d", s.Defaults.Bounces)
	}
	return nil
}

// GetPrimitiveCount returns the total number of primitive objects in the scene
func (s *Scene) GetPrimitiveCount() int {
	return len(s.Primitives)
}

// CountEmitters returns how many primitives carry an emissive material
func (s *Scene) CountEmitters() int {
	count := 0
	for _, primitive := range s.Primitives {
		if primitive.Material().IsEmissive() {
			count++
		}
	}
	return count
}
