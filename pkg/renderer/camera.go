package renderer

import (
	"math"

	"github.com/df07/go-realtime-pathtracer/pkg/core"
)

var worldUp = core.NewVec3(0, 1, 0)

// Camera is a pinhole camera derived from a FrameConfig. It is rebuilt every
// frame and never mutated.
type Camera struct {
	Center      core.Vec3 // Eye position
	Forward     core.Vec3 // Unit view direction
	Right       core.Vec3 // Unit vector to the right of the view
	Up          core.Vec3 // Unit vector up in the image
	Pixel00     core.Vec3 // Sample center of the bottom-left pixel
	PixelDeltaU core.Vec3 // Offset to the pixel on the right
	PixelDeltaV core.Vec3 // Offset to the pixel above
	height      int
}

// ForwardFromAngles returns the unit view direction for yaw and pitch in degrees
func ForwardFromAngles(yaw, pitch float64) core.Vec3 {
	y := yaw * math.Pi / 180
	p := pitch * math.Pi / 180
	return core.NewVec3(math.Cos(y)*math.Cos(p), math.Sin(p), math.Sin(y)*math.Cos(p))
}

// NewCamera derives the camera basis and viewport from a frame config.
// The viewport sits one unit in front of the eye and is 2·tan(fov/2) tall.
func NewCamera(cfg FrameConfig) Camera {
	forward := ForwardFromAngles(cfg.Yaw, cfg.Pitch)
	right := forward.Cross(worldUp).Normalize()
	up := right.Cross(forward).Normalize()

	viewportHeight := 2 * math.Tan(cfg.FOV*math.Pi/360)
	viewportWidth := viewportHeight * cfg.Aspect()

	deltaU := right.Multiply(viewportWidth / float64(cfg.Width))
	deltaV := up.Multiply(viewportHeight / float64(cfg.Height))

	// Lower-left corner of the viewport, then half a pixel in
	corner := cfg.Position.Add(forward).
		Subtract(right.Multiply(viewportWidth / 2)).
		Subtract(up.Multiply(viewportHeight / 2))
	pixel00 := corner.Add(deltaU.Add(deltaV).Multiply(0.5))

	return Camera{
		Center:      cfg.Position,
		Forward:     forward,
		Right:       right,
		Up:          up,
		Pixel00:     pixel00,
		PixelDeltaU: deltaU,
		PixelDeltaV: deltaV,
		height:      cfg.Height,
	}
}

// GetRay returns the ray through image pixel (px, py) offset by the jitter
// (jx, jy), each in [-0.5, 0.5). Image row 0 is the top of the picture.
func (c Camera) GetRay(px, py int, jx, jy float64) core.Ray {
	row := float64(c.height-1-py) + jy
	target := c.Pixel00.
		Add(c.PixelDeltaU.Multiply(float64(px) + jx)).
		Add(c.PixelDeltaV.Multiply(row))
	return core.NewRay(c.Center, target.Subtract(c.Center))
}
