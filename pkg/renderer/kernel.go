package renderer

import (
	"image/color"

	"github.com/df07/go-realtime-pathtracer/pkg/core"
	"github.com/df07/go-realtime-pathtracer/pkg/integrator"
)

// PixelResult is the outcome of shading one pixel
type PixelResult struct {
	Color  color.RGBA // Display-encoded output
	Linear core.Vec3  // Averaged linear radiance before encoding
	Stats  PixelStats // Per-sample accumulation
}

// Kernel shades individual pixels. It holds only read-only state and may be
// shared by any number of goroutines.
type Kernel struct {
	world integrator.World
}

// NewKernel creates a kernel that traces paths through world
func NewKernel(world integrator.World) *Kernel {
	return &Kernel{world: world}
}

// ShadePixel renders pixel (px, py) of the frame described by cfg
func (k *Kernel) ShadePixel(cfg FrameConfig, px, py int) PixelResult {
	return k.shadePixel(cfg, NewCamera(cfg), px, py)
}

// shadePixel seeds a generator from the pixel center and the frame counter,
// averages cfg.Samples jittered paths and encodes the mean. Zero samples
// leave the accumulator empty, which encodes as black.
func (k *Kernel) shadePixel(cfg FrameConfig, camera Camera, px, py int) PixelResult {
	rng := core.SeedPCG(float32(px)+0.5, float32(py)+0.5, cfg.Frame)
	tracer := integrator.NewPathTracingIntegrator(integrator.Config{
		MaxBounces: cfg.BounceLimit,
		Background: cfg.Background,
	})

	var stats PixelStats
	for s := 0; s < cfg.Samples; s++ {
		jitter := core.SampleJitter(rng.Get2D())
		ray := camera.GetRay(px, py, jitter.X, jitter.Y)
		stats.AddSample(tracer.RayColor(ray, k.world, &rng))
	}

	linear := stats.GetColor()
	return PixelResult{
		Color:  core.EncodeColor(linear),
		Linear: linear,
		Stats:  stats,
	}
}
