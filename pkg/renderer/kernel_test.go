package renderer

import (
	"math"
	"testing"

	"github.com/df07/go-realtime-pathtracer/pkg/core"
	"github.com/df07/go-realtime-pathtracer/pkg/material"
	"github.com/df07/go-realtime-pathtracer/pkg/scene"
)

// frameFor builds a small frame config from a scene's suggested view
func frameFor(s *scene.Scene, width, height int) FrameConfig {
	return FrameConfig{
		BounceLimit: s.Defaults.Bounces,
		Width:       width,
		Height:      height,
		Samples:     s.Defaults.Samples,
		FOV:         s.Defaults.FOV,
		Position:    s.Defaults.Position,
		Yaw:         s.Defaults.Yaw,
		Pitch:       s.Defaults.Pitch,
		Background:  s.Defaults.Background,
	}
}

// coveringScene places a sphere that fills a 30 degree view from the origin
func coveringScene(mat material.Material) (*scene.Scene, FrameConfig) {
	s := scene.NewScene("covering")
	s.AddSphere(core.NewVec3(0, 0, -3), 2.5, mat)
	cfg := FrameConfig{
		BounceLimit: 2,
		Width:       8,
		Height:      6,
		Samples:     16,
		FOV:         30,
		Position:    core.NewVec3(0, 0, 0),
		Yaw:         -90,
		Background:  core.NewVec3(1, 1, 1),
	}
	return s, cfg
}

func assertEveryPixel(t *testing.T, k *Kernel, cfg FrameConfig, expected core.Vec3) {
	t.Helper()
	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			result := k.ShadePixel(cfg, x, y)
			if result.Linear.Subtract(expected).Length() > 1e-9 {
				t.Fatalf("pixel (%d,%d): expected %v, got %v", x, y, expected, result.Linear)
			}
			if result.Color != core.EncodeColor(expected) {
				t.Fatalf("pixel (%d,%d): expected encoded %v, got %v", x, y, core.EncodeColor(expected), result.Color)
			}
		}
	}
}

func TestKernel_MatteSphereUnderWhiteSky(t *testing.T) {
	albedo := core.NewVec3(0.6, 0.3, 0.1)
	s, cfg := coveringScene(material.NewMatte(albedo))
	k := NewKernel(s)

	// Two bounces: the surface, then the sky
	assertEveryPixel(t, k, cfg, albedo)

	// One bounce ends on the surface, which does not emit
	cfg.BounceLimit = 1
	assertEveryPixel(t, k, cfg, core.Vec3{})
}

func TestKernel_EmptySceneIsBackground(t *testing.T) {
	s := scene.NewEmptyScene()
	cfg := frameFor(s, 6, 4)
	cfg.Samples = 4
	assertEveryPixel(t, NewKernel(s), cfg, s.Defaults.Background)
}

func TestKernel_EmitterIndependentOfSampleCount(t *testing.T) {
	s := scene.NewEmissiveScene()
	expected := s.Primitives[0].Material().Color
	k := NewKernel(s)

	for _, samples := range []int{1, 7, 64} {
		cfg := frameFor(s, 8, 6)
		cfg.Samples = samples
		assertEveryPixel(t, k, cfg, expected)
	}
}

func TestKernel_ZeroSamplesIsBlack(t *testing.T) {
	s, cfg := coveringScene(material.NewEmissive(core.NewVec3(1, 1, 1), 3))
	cfg.Samples = 0

	result := NewKernel(s).ShadePixel(cfg, 3, 3)
	if result.Stats.SampleCount != 0 {
		t.Errorf("Expected no samples, got %d", result.Stats.SampleCount)
	}
	if result.Linear != (core.Vec3{}) || result.Color.R != 0 || result.Color.G != 0 || result.Color.B != 0 || result.Color.A != 255 {
		t.Errorf("Expected opaque black, got %v / %v", result.Linear, result.Color)
	}
}

func TestKernel_NegativeEmissionEncodesBlack(t *testing.T) {
	s, cfg := coveringScene(material.NewEmissive(core.NewVec3(1, 1, 1), -1))
	cfg.Background = core.Vec3{}

	result := NewKernel(s).ShadePixel(cfg, 4, 3)
	if result.Linear.X >= 0 {
		t.Errorf("Expected negative linear radiance, got %v", result.Linear)
	}
	if result.Color.R != 0 || result.Color.G != 0 || result.Color.B != 0 {
		t.Errorf("Expected negative radiance to encode as black, got %v", result.Color)
	}
}

func TestKernel_Deterministic(t *testing.T) {
	s := scene.NewOriginalScene()
	cfg := frameFor(s, 16, 12)
	cfg.Samples = 4
	cfg.Frame = 9
	k := NewKernel(s)

	a := k.ShadePixel(cfg, 5, 7)
	b := k.ShadePixel(cfg, 5, 7)
	if a.Linear != b.Linear {
		t.Errorf("Same pixel and frame produced different results: %v vs %v", a.Linear, b.Linear)
	}

	differing := 0
	for frame := uint32(10); frame < 20; frame++ {
		cfg.Frame = frame
		if k.ShadePixel(cfg, 5, 7).Linear != a.Linear {
			differing++
		}
	}
	if differing == 0 {
		t.Error("Expected later frames to produce different noise")
	}
}

func TestKernel_VarianceDecreasesWithSamples(t *testing.T) {
	s := scene.NewOriginalScene()
	k := NewKernel(s)
	const frames = 32

	frameVariance := func(samples int) float64 {
		cfg := frameFor(s, 16, 12)
		cfg.Samples = samples

		total := 0.0
		// Pixels around the image center see the diffuse sphere
		for _, px := range [][2]int{{7, 5}, {8, 6}, {7, 6}} {
			var stats PixelStats
			for frame := uint32(0); frame < frames; frame++ {
				cfg.Frame = frame
				stats.AddSample(k.ShadePixel(cfg, px[0], px[1]).Linear)
			}
			total += stats.Variance()
		}
		return total
	}

	low := frameVariance(1)
	high := frameVariance(256)
	if low <= 0 {
		t.Fatalf("Expected noisy single-sample frames, got variance %g", low)
	}
	if high >= low {
		t.Errorf("Expected variance at 256 samples (%g) below variance at 1 sample (%g)", high, low)
	}
}

func TestKernel_OutputNeverNaN(t *testing.T) {
	s := scene.NewDefaultScene()
	cfg := frameFor(s, 12, 8)
	cfg.Samples = 2
	k := NewKernel(s)

	for y := 0; y < cfg.Height; y++ {
		for x := 0; x < cfg.Width; x++ {
			result := k.ShadePixel(cfg, x, y)
			if !result.Linear.IsFinite() || math.IsNaN(result.Stats.Variance()) {
				t.Fatalf("pixel (%d,%d): non-finite output %v", x, y, result.Linear)
			}
			if result.Color.A != 255 {
				t.Fatalf("pixel (%d,%d): alpha %d", x, y, result.Color.A)
			}
		}
	}
}
