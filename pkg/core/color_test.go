package core

import (
	"math"
	"testing"
)

func TestClampRadiance(t *testing.T) {
	tests := []struct {
		name     string
		input    Vec3
		expected Vec3
	}{
		{"in range", NewVec3(0.25, 0.5, 0.75), NewVec3(0.25, 0.5, 0.75)},
		{"above one", NewVec3(1.5, 7, 1), NewVec3(1, 1, 1)},
		{"negative", NewVec3(-0.2, 0, -5), NewVec3(0, 0, 0)},
		{"NaN and Inf", NewVec3(math.NaN(), math.Inf(1), math.Inf(-1)), NewVec3(0, 1, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ClampRadiance(tt.input)
			if !result.Equals(tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestToSRGB_Gamma(t *testing.T) {
	result := ToSRGB(NewVec3(0.5, 0, 1))
	expected := math.Pow(0.5, 1/2.2)
	if math.Abs(result.X-expected) > 1e-12 {
		t.Errorf("Expected %f, got %f", expected, result.X)
	}
	if result.Y != 0 || result.Z != 1 {
		t.Errorf("Expected endpoints to be preserved, got %v", result)
	}
}

func TestToLinear_RoundTrip(t *testing.T) {
	linear := NewVec3(0.1, 0.4, 0.9)
	result := ToLinear(ToSRGB(linear))
	if result.Subtract(linear).Length() > 1e-12 {
		t.Errorf("Expected %v after round trip, got %v", linear, result)
	}
}

func TestEncodeColor(t *testing.T) {
	tests := []struct {
		name    string
		linear  Vec3
		r, g, b uint8
	}{
		{"black", NewVec3(0, 0, 0), 0, 0, 0},
		{"white", NewVec3(1, 1, 1), 255, 255, 255},
		{"overexposed clamps", NewVec3(4, 2, 1.0001), 255, 255, 255},
		{"NaN becomes black", NewVec3(math.NaN(), 0, 0), 0, 0, 0},
		{"negative becomes black", NewVec3(-1, -1, -1), 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := EncodeColor(tt.linear)
			if c.R != tt.r || c.G != tt.g || c.B != tt.b {
				t.Errorf("Expected (%d,%d,%d), got (%d,%d,%d)", tt.r, tt.g, tt.b, c.R, c.G, c.B)
			}
			if c.A != 255 {
				t.Errorf("Expected opaque alpha, got %d", c.A)
			}
		})
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    Vec3
		expectError bool
	}{
		{"linear triple", "0.5, 0.7, 1", NewVec3(0.5, 0.7, 1), false},
		{"named white", "white", NewVec3(1, 1, 1), false},
		{"named black uppercase", "Black", NewVec3(0, 0, 0), false},
		{"hex red", "#ff0000", NewVec3(1, 0, 0), false},
		{"unknown name", "not-a-color", Vec3{}, true},
		{"short hex", "#fff", Vec3{}, true},
		{"bad triple", "1,2", Vec3{}, true},
		{"empty", "  ", Vec3{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseColor(tt.input)
			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error for %q, got %v", tt.input, result)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error for %q: %v", tt.input, err)
			}
			if result.Subtract(tt.expected).Length() > 1e-9 {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestParseColor_NamedIsDecodedToLinear(t *testing.T) {
	// skyblue is rgb(135, 206, 235) in display encoding
	result, err := ParseColor("skyblue")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	expectedR := math.Pow(135.0/255.0, 2.2)
	if math.Abs(result.X-expectedR) > 1e-9 {
		t.Errorf("Expected linear red %f, got %f", expectedR, result.X)
	}
}
