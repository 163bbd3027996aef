package controls

import (
	"math"
	"sync"
	"testing"

	"github.com/df07/go-realtime-pathtracer/pkg/core"
	"github.com/df07/go-realtime-pathtracer/pkg/renderer"
	"github.com/df07/go-realtime-pathtracer/pkg/scene"
)

const tolerance = 1e-9

func vecNear(a, b core.Vec3) bool {
	return a.Subtract(b).Length() < tolerance
}

func TestNewController_Defaults(t *testing.T) {
	c := NewController()
	cfg := c.Snapshot(400, 225)

	if cfg.Samples != 50 || cfg.BounceLimit != 5 || cfg.FOV != 90 {
		t.Errorf("Unexpected render defaults %+v", cfg)
	}
	if !cfg.Position.Equals(core.NewVec3(0, 1, 2)) || cfg.Yaw != -90 || cfg.Pitch != 0 {
		t.Errorf("Unexpected pose %v yaw %f pitch %f", cfg.Position, cfg.Yaw, cfg.Pitch)
	}
	if !cfg.Background.Equals(core.Vec3{}) {
		t.Errorf("Expected black background, got %v", cfg.Background)
	}
	if cfg.Width != 400 || cfg.Height != 225 {
		t.Errorf("Expected 400x225, got %dx%d", cfg.Width, cfg.Height)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default snapshot should be valid: %v", err)
	}

	settings := c.Settings()
	if settings.MoveSpeed != 30 || settings.MouseSpeed != 20 {
		t.Errorf("Unexpected speeds %+v", settings)
	}
}

func TestSettings_Clamped(t *testing.T) {
	limits := DefaultLimits()
	tests := []struct {
		name     string
		input    Settings
		expected Settings
	}{
		{
			name:     "in range unchanged",
			input:    DefaultSettings(),
			expected: DefaultSettings(),
		},
		{
			name:     "below minimum",
			input:    Settings{Samples: 0, BounceLimit: -3, FOV: 0.1, MoveSpeed: 0, MouseSpeed: -5, Background: core.NewVec3(-1, 0.5, 0)},
			expected: Settings{Samples: 1, BounceLimit: 1, FOV: 1, MoveSpeed: 1, MouseSpeed: 1, Background: core.NewVec3(0, 0.5, 0)},
		},
		{
			name:     "above maximum",
			input:    Settings{Samples: 5000, BounceLimit: 50, FOV: 179, MoveSpeed: 500, MouseSpeed: 101, Background: core.NewVec3(2, 1, 3)},
			expected: Settings{Samples: 1000, BounceLimit: 20, FOV: 150, MoveSpeed: 100, MouseSpeed: 100, Background: core.NewVec3(1, 1, 1)},
		},
		{
			name:     "NaN falls back to defaults",
			input:    Settings{Samples: 10, BounceLimit: 2, FOV: math.NaN(), MoveSpeed: math.NaN(), MouseSpeed: 5, Background: core.NewVec3(math.NaN(), 0, 0)},
			expected: Settings{Samples: 10, BounceLimit: 2, FOV: 90, MoveSpeed: 30, MouseSpeed: 5, Background: core.Vec3{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.input.Clamped(limits)
			if got != tt.expected {
				t.Errorf("Expected %+v, got %+v", tt.expected, got)
			}
		})
	}
}

func TestController_KeyMovement(t *testing.T) {
	// Default pose looks down -Z, so right is +X
	step := 30 * moveScale
	start := core.NewVec3(0, 1, 2)

	tests := []struct {
		key      Key
		expected core.Vec3
	}{
		{KeyForward, start.Add(core.NewVec3(0, 0, -step))},
		{KeyBackward, start.Add(core.NewVec3(0, 0, step))},
		{KeyRight, start.Add(core.NewVec3(step, 0, 0))},
		{KeyLeft, start.Add(core.NewVec3(-step, 0, 0))},
		{KeyUp, start.Add(core.NewVec3(0, step, 0))},
		{KeyDown, start.Add(core.NewVec3(0, -step, 0))},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			c := NewController()
			c.Press(tt.key)
			c.Update()
			if got := c.Pose().Position; !vecNear(got, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}

			c.Release(tt.key)
			c.Update()
			if got := c.Pose().Position; !vecNear(got, tt.expected) {
				t.Errorf("Released key should not move camera, got %v", got)
			}
		})
	}
}

func TestController_OpposingKeysCancel(t *testing.T) {
	c := NewController()
	c.Press(KeyForward)
	c.Press(KeyBackward)
	c.Press(KeyUp)
	c.Press(KeyDown)
	for i := 0; i < 10; i++ {
		c.Update()
	}
	if got := c.Pose().Position; !vecNear(got, core.NewVec3(0, 1, 2)) {
		t.Errorf("Expected opposing keys to cancel, got %v", got)
	}

	c.ReleaseAll()
	c.Press(KeyRight)
	c.SetSettings(Settings{Samples: 1, BounceLimit: 1, FOV: 90, MoveSpeed: 100, MouseSpeed: 20})
	c.Update()
	if got := c.Pose().Position; !vecNear(got, core.NewVec3(0.1, 1, 2)) {
		t.Errorf("Expected move speed 100 to step 0.1, got %v", got)
	}
}

func TestController_Drag(t *testing.T) {
	tests := []struct {
		name          string
		dx, dy        float64
		expectedYaw   float64
		expectedPitch float64
	}{
		{"right", 10, 0, -88, 0},
		{"up", 0, -10, -90, 2},
		{"down", 0, 25, -90, -5},
		{"clamped up", 0, -1000, -90, 89},
		{"clamped down", 0, 1000, -90, -89},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController()
			c.Drag(tt.dx, tt.dy)
			pose := c.Pose()
			if math.Abs(pose.Yaw-tt.expectedYaw) > tolerance || math.Abs(pose.Pitch-tt.expectedPitch) > tolerance {
				t.Errorf("Expected yaw %f pitch %f, got yaw %f pitch %f",
					tt.expectedYaw, tt.expectedPitch, pose.Yaw, pose.Pitch)
			}
		})
	}
}

func TestController_SnapshotAdvancesFrame(t *testing.T) {
	c := NewController()
	for i := uint32(0); i < 4; i++ {
		if cfg := c.Snapshot(8, 8); cfg.Frame != i {
			t.Fatalf("Expected frame %d, got %d", i, cfg.Frame)
		}
	}
	if c.Frame() != 4 {
		t.Errorf("Expected next frame 4, got %d", c.Frame())
	}

	c.SetFrame(4)
	c.Press(KeyForward)
	cfg := c.NextFrame(8, 8)
	if cfg.Frame != 4 {
		t.Errorf("Expected frame 4, got %d", cfg.Frame)
	}
	if !vecNear(cfg.Position, core.NewVec3(0, 1, 2-30*moveScale)) {
		t.Errorf("NextFrame should apply held keys first, got %v", cfg.Position)
	}
}

func TestController_ImplementsFrameSource(t *testing.T) {
	var _ renderer.FrameSource = NewController()
}

func TestController_SceneDefaults(t *testing.T) {
	s := scene.NewEmissiveScene()
	c := NewControllerForScene(s.Defaults)
	cfg := c.Snapshot(10, 10)

	if cfg.FOV != s.Defaults.FOV || !cfg.Position.Equals(s.Defaults.Position) || cfg.Yaw != s.Defaults.Yaw {
		t.Errorf("Scene view not applied: %+v", cfg)
	}
	if cfg.Samples != s.Defaults.Samples || cfg.BounceLimit != s.Defaults.Bounces {
		t.Errorf("Scene render settings not applied: %+v", cfg)
	}
	if !cfg.Background.Equals(s.Defaults.Background) {
		t.Errorf("Expected background %v, got %v", s.Defaults.Background, cfg.Background)
	}

	defaults := scene.DefaultDefaults()
	defaults.Pitch = 120
	defaults.Background = core.NewVec3(3, 0.5, -1)
	c.ApplySceneDefaults(defaults)
	if pose := c.Pose(); pose.Pitch != 89 {
		t.Errorf("Expected pitch clamped to 89, got %f", pose.Pitch)
	}
	if bg := c.Settings().Background; !bg.Equals(core.NewVec3(1, 0.5, 0)) {
		t.Errorf("Expected clamped background, got %v", bg)
	}
}

func TestController_SetPoseIgnoresNonFinite(t *testing.T) {
	c := NewController()
	c.SetPose(Pose{Position: core.NewVec3(math.Inf(1), 0, 0)})
	if !c.Pose().Position.Equals(core.NewVec3(0, 1, 2)) {
		t.Errorf("Non-finite pose should be ignored, got %v", c.Pose())
	}

	c.SetPose(Pose{Position: core.NewVec3(1, 2, 3), Yaw: 45, Pitch: -95})
	if pose := c.Pose(); !pose.Position.Equals(core.NewVec3(1, 2, 3)) || pose.Yaw != 45 || pose.Pitch != -89 {
		t.Errorf("Unexpected pose %+v", pose)
	}
}

func TestController_ConcurrentAccess(t *testing.T) {
	c := NewController()
	c.Press(KeyForward)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.NextFrame(4, 4)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Drag(0.1, 0)
				c.SetSettings(c.Settings())
			}
		}()
	}
	wg.Wait()

	if c.Frame() != 400 {
		t.Errorf("Expected 400 frames, got %d", c.Frame())
	}
}

func TestParseKeys(t *testing.T) {
	tests := []struct {
		input    string
		expected []Key
		wantErr  bool
	}{
		{"", nil, false},
		{"w", []Key{KeyForward}, false},
		{"W, d ,Space", []Key{KeyForward, KeyRight, KeyUp}, false},
		{"shift,a,s", []Key{KeyDown, KeyLeft, KeyBackward}, false},
		{"q", nil, true},
		{"w,,d", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			keys, err := ParseKeys(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error %t, got %v", tt.wantErr, err)
			}
			if len(keys) != len(tt.expected) {
				t.Fatalf("Expected %v, got %v", tt.expected, keys)
			}
			for i := range keys {
				if keys[i] != tt.expected[i] {
					t.Errorf("key %d: expected %q, got %q", i, tt.expected[i], keys[i])
				}
			}
		})
	}
}
