package scene

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-realtime-pathtracer/pkg/core"
	"github.com/df07/go-realtime-pathtracer/pkg/geometry"
)

const validSceneJSON = `{
  "name": "Test Scene",
  "camera": {"position": [1, 2, 3], "yaw": 0, "pitch": 10, "fov": 45},
  "background": [0.1, 0.2, 0.3],
  "samples": 8,
  "bounces": 3,
  "materials": {
    "white": {"color": "white"},
    "lamp": {"color": "#ff0000", "emission": 2},
    "chrome": {"color": "1,1,1", "shininess": 1}
  },
  "primitives": [
    {"type": "plane", "y": -1, "material": "white"},
    {"type": "sphere", "center": [0, 0, -2], "radius": 0.5, "material": "lamp"},
    {"type": "sphere", "center": [1, 0, -2], "radius": 0.25, "material": "chrome"}
  ]
}`

func TestParse_ValidScene(t *testing.T) {
	s, err := Parse([]byte(validSceneJSON), "fallback")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if s.Name != "Test Scene" {
		t.Errorf("Expected name from document, got %q", s.Name)
	}
	if !s.Defaults.Position.Equals(core.NewVec3(1, 2, 3)) {
		t.Errorf("Expected position (1,2,3), got %v", s.Defaults.Position)
	}
	if s.Defaults.Yaw != 0 || s.Defaults.Pitch != 10 || s.Defaults.FOV != 45 {
		t.Errorf("Unexpected camera defaults %+v", s.Defaults)
	}
	if !s.Defaults.Background.Equals(core.NewVec3(0.1, 0.2, 0.3)) {
		t.Errorf("Expected linear background, got %v", s.Defaults.Background)
	}
	if s.Defaults.Samples != 8 || s.Defaults.Bounces != 3 {
		t.Errorf("Expected samples 8 bounces 3, got %d %d", s.Defaults.Samples, s.Defaults.Bounces)
	}
	if len(s.Primitives) != 3 {
		t.Fatalf("Expected 3 primitives, got %d", len(s.Primitives))
	}
	if s.Primitives[0].Kind != geometry.KindPlane || s.Primitives[1].Kind != geometry.KindSphere {
		t.Errorf("Primitive kinds out of order: %v, %v", s.Primitives[0].Kind, s.Primitives[1].Kind)
	}

	lamp := s.Primitives[1].Material()
	if !lamp.Color.Equals(core.NewVec3(1, 0, 0)) || lamp.Emission != 2 {
		t.Errorf("Unexpected lamp material %+v", lamp)
	}
	chrome := s.Primitives[2].Material()
	if chrome.Shininess != 1 {
		t.Errorf("Expected chrome shininess 1, got %f", chrome.Shininess)
	}
}

func TestParse_DefaultsWhenOmitted(t *testing.T) {
	doc := `{"materials": {"m": {"color": [0.5, 0.5, 0.5]}},
	         "primitives": [{"type": "sphere", "center": [0, 0, -1], "radius": 0.5, "material": "m"}]}`

	s, err := Parse([]byte(doc), "minimal")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := DefaultDefaults()
	if s.Defaults != expected {
		t.Errorf("Expected defaults %+v, got %+v", expected, s.Defaults)
	}
	if s.Name != "minimal" {
		t.Errorf("Expected fallback name, got %q", s.Name)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		errPart string
	}{
		{"malformed JSON", `{"primitives": [`, "invalid scene JSON"},
		{"unknown material", `{"primitives": [{"type": "plane", "material": "nope"}]}`, "unknown material"},
		{"unknown type", `{"materials": {"m": {"color": "red"}}, "primitives": [{"type": "cube", "material": "m"}]}`, "unknown type"},
		{"sphere without center", `{"materials": {"m": {"color": "red"}}, "primitives": [{"type": "sphere", "radius": 1, "material": "m"}]}`, "needs a center"},
		{"zero radius", `{"materials": {"m": {"color": "red"}}, "primitives": [{"type": "sphere", "center": [0,0,0], "material": "m"}]}`, "radius"},
		{"bad color name", `{"materials": {"m": {"color": "notacolor"}}, "primitives": []}`, "unknown color name"},
		{"short color array", `{"materials": {"m": {"color": [1, 2]}}, "primitives": []}`, "3 components"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), "test")
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errPart) {
				t.Errorf("Expected error containing %q, got %v", tt.errPart, err)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "my-scene.json")
	if err := os.WriteFile(path, []byte(validSceneJSON), 0644); err != nil {
		t.Fatalf("Failed to write scene: %v", err)
	}

	s, err := LoadFile(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if hit, ok := s.Hit(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), 1e-4, math.Inf(1)); !ok || math.Abs(hit.T-1.5) > 1e-9 {
		t.Errorf("Expected loaded scene to be hit at t=1.5, got ok=%t t=%f", ok, hit.T)
	}

	viaCreate, err := Create("file:" + path)
	if err != nil {
		t.Fatalf("Create with file prefix failed: %v", err)
	}
	if len(viaCreate.Primitives) != len(s.Primitives) {
		t.Errorf("Expected %d primitives via Create, got %d", len(s.Primitives), len(viaCreate.Primitives))
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestRepositoryScenesLoad(t *testing.T) {
	scenes, err := ListFileScenesIn(filepath.Join("..", "..", "scenes"))
	if err != nil {
		t.Fatalf("Failed to list scenes: %v", err)
	}
	if len(scenes) == 0 {
		t.Skip("no scene files found")
	}
	for _, info := range scenes {
		t.Run(info.Name, func(t *testing.T) {
			if _, err := Create(info.ID); err != nil {
				t.Errorf("Scene file %s failed to load: %v", info.FilePath, err)
			}
		})
	}
}
