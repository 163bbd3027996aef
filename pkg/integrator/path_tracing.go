package integrator

import (
	"math"

	"github.com/df07/go-realtime-pathtracer/pkg/core"
)

// HitEpsilon is the lower bound of the hit interval, which keeps a scattered
// ray from re-hitting the surface it starts on
const HitEpsilon = 1e-4

// Config holds the per-frame settings of the path tracer
type Config struct {
	MaxBounces int       // Maximum surfaces a path may hit
	Background core.Vec3 // Radiance of rays that escape the scene
}

// PathTracingIntegrator implements unidirectional path tracing
type PathTracingIntegrator struct {
	config Config
}

// NewPathTracingIntegrator creates a new path tracing integrator
func NewPathTracingIntegrator(config Config) *PathTracingIntegrator {
	return &PathTracingIntegrator{
		config: config,
	}
}

// RayColor computes the color for a single ray using unidirectional path tracing
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, world World, sampler core.Sampler) core.Vec3 {
	color, _ := TraceWithInfo(ray, world, sampler, pt.config.MaxBounces, pt.config.Background)
	return color
}

// Trace follows one path for at most maxBounces surface hits and returns the
// gathered linear radiance. A miss adds the background weighted by the path
// throughput and ends the path; exhausting the bounce limit ends it with no
// further contribution. maxBounces <= 0 yields black.
func Trace(ray core.Ray, world World, sampler core.Sampler, maxBounces int, background core.Vec3) core.Vec3 {
	color, _ := TraceWithInfo(ray, world, sampler, maxBounces, background)
	return color
}

// TraceWithInfo is Trace that also reports how the path terminated
func TraceWithInfo(ray core.Ray, world World, sampler core.Sampler, maxBounces int, background core.Vec3) (core.Vec3, PathInfo) {
	throughput := core.NewVec3(1, 1, 1)
	light := core.Vec3{}
	var info PathInfo

	for bounce := 0; bounce < maxBounces; bounce++ {
		hit, ok := world.Hit(ray, HitEpsilon, math.Inf(1))
		if !ok {
			light = light.Add(throughput.MultiplyVec(background))
			info.Escaped = true
			return light, info
		}

		info.Bounces++
		scatter := hit.Material.Scatter(ray, hit, sampler)
		if scatter.Specular {
			info.Specular++
		}

		light = light.Add(throughput.MultiplyVec(hit.Material.Emit()))
		throughput = throughput.MultiplyVec(scatter.Attenuation)
		ray = scatter.Scattered
	}

	info.Truncated = maxBounces > 0
	return light, info
}
