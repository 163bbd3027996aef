package scene

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/df07/go-realtime-pathtracer/pkg/core"
	"github.com/df07/go-realtime-pathtracer/pkg/material"
)

// ColorCfg accepts either a JSON array of three linear components or a color
// string understood by core.ParseColor ("r,g,b", "#rrggbb" or a color name).
type ColorCfg struct {
	core.Vec3
}

// UnmarshalJSON decodes either representation
func (c *ColorCfg) UnmarshalJSON(data []byte) error {
	var components []float64
	if err := json.Unmarshal(data, &components); err == nil {
		if len(components) != 3 {
			return fmt.Errorf("color array must have 3 components, got %d", len(components))
		}
		c.Vec3 = core.NewVec3(components[0], components[1], components[2])
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("color must be an array or a string: %w", err)
	}
	parsed, err := core.ParseColor(s)
	if err != nil {
		return err
	}
	c.Vec3 = parsed
	return nil
}

// Vec3Cfg is a JSON [x, y, z] triple
type Vec3Cfg [3]float64

// Vec3 converts the triple
func (v Vec3Cfg) Vec3() core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}

// MaterialCfg describes a named material
type MaterialCfg struct {
	Color     ColorCfg `json:"color"`
	Shininess float64  `json:"shininess,omitempty"`
	Emission  float64  `json:"emission,omitempty"`
}

// Build constructs the runtime material
func (m MaterialCfg) Build() material.Material {
	return material.Material{Color: m.Color.Vec3, Shininess: m.Shininess, Emission: m.Emission}
}

// PrimitiveCfg describes one sphere or plane. Material refers to a key of
// Config.Materials.
type PrimitiveCfg struct {
	Type     string   `json:"type"`
	Center   *Vec3Cfg `json:"center,omitempty"`
	Radius   float64  `json:"radius,omitempty"`
	Y        float64  `json:"y,omitempty"`
	Material string   `json:"material"`
}

// CameraCfg describes the initial view
type CameraCfg struct {
	Position *Vec3Cfg `json:"position,omitempty"`
	Yaw      *float64 `json:"yaw,omitempty"`
	Pitch    *float64 `json:"pitch,omitempty"`
	FOV      float64  `json:"fov,omitempty"`
}

// Config is the on-disk scene description
type Config struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Group       string                 `json:"group,omitempty"`
	Camera      CameraCfg              `json:"camera"`
	Background  *ColorCfg              `json:"background,omitempty"`
	Samples     int                    `json:"samples,omitempty"`
	Bounces     int                    `json:"bounces,omitempty"`
	Materials   map[string]MaterialCfg `json:"materials"`
	Primitives  []PrimitiveCfg         `json:"primitives"`
}

// Build validates the config and constructs a scene. Omitted settings take
// the values of DefaultDefaults.
func (c Config) Build() (*Scene, error) {
	s := NewScene(c.Name)

	if c.Camera.Position != nil {
		s.Defaults.Position = c.Camera.Position.Vec3()
	}
	if c.Camera.Yaw != nil {
		s.Defaults.Yaw = *c.Camera.Yaw
	}
	if c.Camera.Pitch != nil {
		s.Defaults.Pitch = *c.Camera.Pitch
	}
	if c.Camera.FOV > 0 {
		s.Defaults.FOV = c.Camera.FOV
	}
	if c.Background != nil {
		s.Defaults.Background = c.Background.Vec3
	}
	if c.Samples > 0 {
		s.Defaults.Samples = c.Samples
	}
	if c.Bounces > 0 {
		s.Defaults.Bounces = c.Bounces
	}

	for i, p := range c.Primitives {
		matCfg, ok := c.Materials[p.Material]
		if !ok {
			return nil, fmt.Errorf("primitive %d: unknown material %q", i, p.Material)
		}
		mat := matCfg.Build()

		switch p.Type {
		case "sphere":
			if p.Center == nil {
				return nil, fmt.Errorf("primitive %d: sphere needs a center", i)
			}
			s.AddSphere(p.Center.Vec3(), p.Radius, mat)
		case "plane":
			s.AddPlane(p.Y, mat)
		default:
			return nil, fmt.Errorf("primitive %d: unknown type %q", i, p.Type)
		}
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Parse decodes and builds a scene from JSON. fallbackName is used when the
// document has no name.
func Parse(data []byte, fallbackName string) (*Scene, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid scene JSON: %w", err)
	}
	if cfg.Name == "" {
		cfg.Name = fallbackName
	}
	return cfg.Build()
}

// LoadFile reads and builds a JSON scene file
func LoadFile(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}
	s, err := Parse(data, fileSceneName(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
