package integrator

import (
	"github.com/df07/go-realtime-pathtracer/pkg/core"
	"github.com/df07/go-realtime-pathtracer/pkg/material"
)

// World is anything a path can be traced through. *scene.Scene satisfies it.
type World interface {
	Hit(ray core.Ray, tMin, tMax float64) (material.HitRecord, bool)
}

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// RayColor computes the linear radiance arriving along ray
	RayColor(ray core.Ray, world World, sampler core.Sampler) core.Vec3
}

// PathInfo summarizes how a single path terminated
type PathInfo struct {
	Bounces   int  // Surfaces hit before termination
	Escaped   bool // Whether the path ended by missing every primitive
	Specular  int  // How many bounces chose the mirror lobe
	Truncated bool // Whether the bounce limit ended the path
}
