package controls

import (
	"math"
	"sync"

	"github.com/df07/go-realtime-pathtracer/pkg/core"
	"github.com/df07/go-realtime-pathtracer/pkg/renderer"
	"github.com/df07/go-realtime-pathtracer/pkg/scene"
)

const (
	moveScale  = 0.001 // World units per move-speed unit per update
	mouseScale = 0.01  // Degrees per mouse-speed unit per dragged pixel
)

var worldUp = core.NewVec3(0, 1, 0)

// Pose is the camera position and orientation in degrees
type Pose struct {
	Position core.Vec3 `json:"position"`
	Yaw      float64   `json:"yaw"`
	Pitch    float64   `json:"pitch"`
}

// DefaultPose returns the viewer's initial pose
func DefaultPose() Pose {
	return Pose{Position: core.NewVec3(0, 1, 2), Yaw: -90}
}

// Forward returns the unit view direction of the pose
func (p Pose) Forward() core.Vec3 {
	return renderer.ForwardFromAngles(p.Yaw, p.Pitch)
}

// Controller holds the interactive state of a viewing session. All methods
// are safe for concurrent use; Snapshot hands the renderer a consistent copy.
type Controller struct {
	mu       sync.Mutex
	limits   Limits
	settings Settings
	pose     Pose
	held     map[Key]bool
	frame    uint32
}

// NewController creates a controller with the default settings and pose
func NewController() *Controller {
	return &Controller{
		limits:   DefaultLimits(),
		settings: DefaultSettings(),
		pose:     DefaultPose(),
		held:     make(map[Key]bool),
	}
}

// NewControllerForScene creates a controller starting from a scene's suggested view
func NewControllerForScene(defaults scene.Defaults) *Controller {
	c := NewController()
	c.ApplySceneDefaults(defaults)
	return c
}

// ApplySceneDefaults resets the pose and render settings to a scene's
// suggestions. Move and mouse speeds are kept.
func (c *Controller) ApplySceneDefaults(defaults scene.Defaults) {
	c.mu.Lock()
	defer c.mu.Unlock()

	settings := c.settings
	settings.Samples = defaults.Samples
	settings.BounceLimit = defaults.Bounces
	settings.FOV = defaults.FOV
	settings.Background = defaults.Background
	c.settings = settings.Clamped(c.limits)
	c.pose = c.clampPose(Pose{Position: defaults.Position, Yaw: defaults.Yaw, Pitch: defaults.Pitch})
}

// Limits returns the slider ranges
func (c *Controller) Limits() Limits {
	return c.limits
}

// Settings returns the current settings
func (c *Controller) Settings() Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// SetSettings replaces the settings, clamped to the slider ranges
func (c *Controller) SetSettings(s Settings) Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings = s.Clamped(c.limits)
	return c.settings
}

// Pose returns the current camera pose
func (c *Controller) Pose() Pose {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pose
}

// SetPose replaces the camera pose. Pitch is clamped; non-finite values are ignored.
func (c *Controller) SetPose(p Pose) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !p.Position.IsFinite() || math.IsNaN(p.Yaw) || math.IsInf(p.Yaw, 0) || math.IsNaN(p.Pitch) {
		return
	}
	c.pose = c.clampPose(p)
}

func (c *Controller) clampPose(p Pose) Pose {
	p.Pitch = c.limits.Pitch.Clamp(p.Pitch)
	return p
}

// Press marks a key as held
func (c *Controller) Press(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.held[key] = true
}

// Release marks a key as no longer held
func (c *Controller) Release(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.held, key)
}

// ReleaseAll clears every held key
func (c *Controller) ReleaseAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.held)
}

// Update moves the camera once for every held key
func (c *Controller) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.update()
}

func (c *Controller) update() {
	if len(c.held) == 0 {
		return
	}

	forward := c.pose.Forward()
	right := forward.Cross(worldUp)
	step := c.settings.MoveSpeed * moveScale

	for _, key := range allKeys {
		if !c.held[key] {
			continue
		}
		switch key {
		case KeyForward:
			c.pose.Position = c.pose.Position.Add(forward.Multiply(step))
		case KeyBackward:
			c.pose.Position = c.pose.Position.Subtract(forward.Multiply(step))
		case KeyLeft:
			c.pose.Position = c.pose.Position.Subtract(right.Multiply(step))
		case KeyRight:
			c.pose.Position = c.pose.Position.Add(right.Multiply(step))
		case KeyUp:
			c.pose.Position = c.pose.Position.Add(worldUp.Multiply(step))
		case KeyDown:
			c.pose.Position = c.pose.Position.Subtract(worldUp.Multiply(step))
		}
	}
}

// Drag turns the camera by a mouse movement of (dx, dy) pixels, screen y down
func (c *Controller) Drag(dx, dy float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pose.Yaw += dx * c.settings.MouseSpeed * mouseScale
	c.pose.Pitch -= dy * c.settings.MouseSpeed * mouseScale
	c.pose = c.clampPose(c.pose)
}

// Frame returns the counter the next snapshot will carry
func (c *Controller) Frame() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frame
}

// SetFrame sets the counter of the next snapshot, for resuming a session
func (c *Controller) SetFrame(frame uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frame = frame
}

// Snapshot returns the configuration of the next frame and advances the
// frame counter
func (c *Controller) Snapshot(width, height int) renderer.FrameConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot(width, height)
}

func (c *Controller) snapshot(width, height int) renderer.FrameConfig {
	cfg := renderer.FrameConfig{
		BounceLimit: c.settings.BounceLimit,
		Frame:       c.frame,
		Width:       width,
		Height:      height,
		Samples:     c.settings.Samples,
		FOV:         c.settings.FOV,
		Position:    c.pose.Position,
		Yaw:         c.pose.Yaw,
		Pitch:       c.pose.Pitch,
		Background:  c.settings.Background,
	}
	c.frame++
	return cfg
}

// NextFrame applies held keys and takes a snapshot in one step, so a frame
// always reflects the movement made before it
func (c *Controller) NextFrame(width, height int) renderer.FrameConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.update()
	return c.snapshot(width, height)
}
