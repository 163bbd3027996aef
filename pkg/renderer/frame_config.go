package renderer

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/df07/go-realtime-pathtracer/pkg/core"
)

// FrameConfigSize is the size in bytes of the packed frame configuration block
const FrameConfigSize = 56

// FrameConfig is the immutable per-frame input shared by every pixel
// invocation of one frame
type FrameConfig struct {
	BounceLimit int       // Maximum surfaces per path
	Frame       uint32    // Frame counter, mixed into every pixel seed
	Width       int       // Image width in pixels
	Height      int       // Image height in pixels
	Samples     int       // Paths traced per pixel
	FOV         float64   // Vertical field of view in degrees
	Position    core.Vec3 // Camera position
	Yaw         float64   // Degrees, -90 looks down -Z
	Pitch       float64   // Degrees
	Background  core.Vec3 // Linear radiance of escaping rays
}

// DefaultFrameConfig returns the settings the interactive viewer starts with
func DefaultFrameConfig() FrameConfig {
	return FrameConfig{
		BounceLimit: 5,
		Frame:       0,
		Width:       400,
		Height:      225,
		Samples:     50,
		FOV:         90,
		Position:    core.NewVec3(0, 1, 2),
		Yaw:         -90,
		Pitch:       0,
	}
}

// Aspect returns width / height
func (c FrameConfig) Aspect() float64 {
	return float64(c.Width) / float64(c.Height)
}

// Validate checks the host-side invariants of a frame
func (c FrameConfig) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("image size must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.Samples < 1 {
		return fmt.Errorf("samples must be at least 1, got %d", c.Samples)
	}
	if c.BounceLimit < 1 {
		return fmt.Errorf("bounce limit must be at least 1, got %d", c.BounceLimit)
	}
	if !(c.FOV > 0 && c.FOV < 180) {
		return fmt.Errorf("fov must be in (0, 180), got %g", c.FOV)
	}
	if math.Abs(c.Pitch) >= 90 {
		return fmt.Errorf("pitch must be in (-90, 90), got %g", c.Pitch)
	}
	if !c.Position.IsFinite() || math.IsNaN(c.Yaw) || math.IsInf(c.Yaw, 0) || math.IsNaN(c.Pitch) || math.IsInf(c.Pitch, 0) {
		return fmt.Errorf("camera pose is not finite")
	}
	if !c.Background.IsFinite() {
		return fmt.Errorf("background %v is not finite", c.Background)
	}
	return nil
}

// MarshalBinary packs the config into the 56-byte little-endian block:
// bounce_limit u32, frame u32, width f32, height f32, samples u32, fov f32,
// pos xyz f32, yaw f32, pitch f32, background rgb f32. Invalid configs are
// rejected rather than packed.
func (c FrameConfig) MarshalBinary() ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("cannot pack frame config: %w", err)
	}

	buf := make([]byte, FrameConfigSize)
	putF32 := func(offset int, v float64) {
		binary.LittleEndian.PutUint32(buf[offset:], math.Float32bits(float32(v)))
	}

	binary.LittleEndian.PutUint32(buf[0:], uint32(c.BounceLimit))
	binary.LittleEndian.PutUint32(buf[4:], c.Frame)
	putF32(8, float64(c.Width))
	putF32(12, float64(c.Height))
	binary.LittleEndian.PutUint32(buf[16:], uint32(c.Samples))
	putF32(20, c.FOV)
	putF32(24, c.Position.X)
	putF32(28, c.Position.Y)
	putF32(32, c.Position.Z)
	putF32(36, c.Yaw)
	putF32(40, c.Pitch)
	putF32(44, c.Background.X)
	putF32(48, c.Background.Y)
	putF32(52, c.Background.Z)

	return buf, nil
}

// UnmarshalBinary decodes a block produced by MarshalBinary and validates
// the result
func (c *FrameConfig) UnmarshalBinary(data []byte) error {
	if len(data) != FrameConfigSize {
		return fmt.Errorf("frame config block must be %d bytes, got %d", FrameConfigSize, len(data))
	}
	getF32 := func(offset int) float64 {
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(data[offset:])))
	}

	c.BounceLimit = int(binary.LittleEndian.Uint32(data[0:]))
	c.Frame = binary.LittleEndian.Uint32(data[4:])
	c.Width = int(getF32(8))
	c.Height = int(getF32(12))
	c.Samples = int(binary.LittleEndian.Uint32(data[16:]))
	c.FOV = getF32(20)
	c.Position = core.NewVec3(getF32(24), getF32(28), getF32(32))
	c.Yaw = getF32(36)
	c.Pitch = getF32(40)
	c.Background = core.NewVec3(getF32(44), getF32(48), getF32(52))

	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid frame config block: %w", err)
	}
	return nil
}
