package scene

import (
	"github.com/df07/go-realtime-pathtracer/pkg/core"
	"github.com/df07/go-realtime-pathtracer/pkg/material"
)

// NewDefaultScene creates a lit scene with matte, mirror and emissive spheres
// over a ground plane, under a pale sky.
func NewDefaultScene() *Scene {
	s := NewScene("default")
	s.Defaults.Background = core.NewVec3(0.5, 0.7, 1.0)

	ground := material.NewMatte(core.NewVec3(0.8, 0.8, 0.0).Multiply(0.6))
	red := material.NewMatte(core.NewVec3(0.65, 0.25, 0.2))
	silver := material.NewMirror(core.NewVec3(0.8, 0.8, 0.8))
	gold := material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.7)
	light := material.NewEmissive(core.NewVec3(1.0, 0.9, 0.8), 4)

	s.AddPlane(-0.5, ground)
	s.AddSphere(core.NewVec3(0, 0, -1), 0.5, red)
	s.AddSphere(core.NewVec3(-1.1, 0, -1.2), 0.5, silver)
	s.AddSphere(core.NewVec3(1.1, 0, -1.2), 0.5, gold)
	s.AddSphere(core.NewVec3(0, 2.5, -2), 0.75, light)

	return s
}

// NewOriginalScene creates the four-sphere layout: a centre sphere, two small
// spheres to the sides and a very large sphere acting as the ground.
func NewOriginalScene() *Scene {
	s := NewScene("original")
	s.Defaults.Position = core.NewVec3(0, 0, 0)
	s.Defaults.Background = core.NewVec3(0.5, 0.7, 1.0)

	s.AddSphere(core.NewVec3(0, 0, -1), 0.5, material.NewMatte(core.NewVec3(0.7, 0.3, 0.3)))
	s.AddSphere(core.NewVec3(-2, 1, -2), 0.3, material.NewMirror(core.NewVec3(0.8, 0.8, 0.8)))
	s.AddSphere(core.NewVec3(2.5, 0.5, -3.5), 0.2, material.NewEmissive(core.NewVec3(1, 0.6, 0.2), 8))
	s.AddSphere(core.NewVec3(0, -100.5, -1), 100, material.NewMatte(core.NewVec3(0.5, 0.5, 0.5)))

	return s
}

// NewEmissiveScene creates a single emitter that fills a narrow view from the
// origin, so every camera ray hits it on the first bounce. Against a black
// background the rendered color equals the emitter's color exactly.
func NewEmissiveScene() *Scene {
	s := NewScene("emissive")
	s.Defaults.Position = core.NewVec3(0, 0, 0)
	s.Defaults.FOV = 30
	s.Defaults.Background = core.NewVec3(0, 0, 0)

	s.AddSphere(core.NewVec3(0, 0, -3), 2.5, material.NewEmissive(core.NewVec3(0.9, 0.4, 0.1), 1))

	return s
}

// NewEmptyScene creates a scene with no primitives; every ray sees the background
func NewEmptyScene() *Scene {
	s := NewScene("empty")
	s.Defaults.Background = core.NewVec3(0.2, 0.4, 0.8)
	return s
}
