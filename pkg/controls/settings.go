package controls

import (
	"math"

	"github.com/df07/go-realtime-pathtracer/pkg/core"
)

// Range is an inclusive slider range
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Clamp limits v to the range
func (r Range) Clamp(v float64) float64 {
	return max(r.Min, min(r.Max, v))
}

// Limits are the ranges the viewer's sliders allow
type Limits struct {
	Samples     Range `json:"samples"`
	BounceLimit Range `json:"bounceLimit"`
	FOV         Range `json:"fov"`
	MoveSpeed   Range `json:"moveSpeed"`
	MouseSpeed  Range `json:"mouseSpeed"`
	Background  Range `json:"background"`
	Pitch       Range `json:"pitch"`
}

// DefaultLimits returns the slider ranges of the interactive viewer
func DefaultLimits() Limits {
	return Limits{
		Samples:     Range{Min: 1, Max: 1000},
		BounceLimit: Range{Min: 1, Max: 20},
		FOV:         Range{Min: 1, Max: 150},
		MoveSpeed:   Range{Min: 1, Max: 100},
		MouseSpeed:  Range{Min: 1, Max: 100},
		Background:  Range{Min: 0, Max: 1},
		Pitch:       Range{Min: -89, Max: 89},
	}
}

// Settings are the user-adjustable render and navigation parameters
type Settings struct {
	Samples     int       `json:"samples"`
	BounceLimit int       `json:"bounceLimit"`
	FOV         float64   `json:"fov"`
	MoveSpeed   float64   `json:"moveSpeed"`
	MouseSpeed  float64   `json:"mouseSpeed"`
	Background  core.Vec3 `json:"background"`
}

// DefaultSettings returns the settings the viewer starts with
func DefaultSettings() Settings {
	return Settings{
		Samples:     50,
		BounceLimit: 5,
		FOV:         90,
		MoveSpeed:   30,
		MouseSpeed:  20,
		Background:  core.Vec3{},
	}
}

// Clamped returns a copy with every field limited to its slider range.
// NaN values fall back to the default setting.
func (s Settings) Clamped(limits Limits) Settings {
	defaults := DefaultSettings()
	clampFloat := func(r Range, v, fallback float64) float64 {
		if math.IsNaN(v) {
			return fallback
		}
		return r.Clamp(v)
	}

	background := s.Background
	if !background.IsFinite() {
		background = defaults.Background
	}

	return Settings{
		Samples:     int(limits.Samples.Clamp(float64(s.Samples))),
		BounceLimit: int(limits.BounceLimit.Clamp(float64(s.BounceLimit))),
		FOV:         clampFloat(limits.FOV, s.FOV, defaults.FOV),
		MoveSpeed:   clampFloat(limits.MoveSpeed, s.MoveSpeed, defaults.MoveSpeed),
		MouseSpeed:  clampFloat(limits.MouseSpeed, s.MouseSpeed, defaults.MouseSpeed),
		Background:  background.Clamp(limits.Background.Min, limits.Background.Max),
	}
}
