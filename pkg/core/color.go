package core

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// DisplayGamma is the exponent of the display encoding applied to linear radiance
const DisplayGamma = 2.2

// ClampRadiance maps linear radiance into the displayable [0, 1] range.
// NaN components become 0 so a degenerate path never poisons a pixel.
func ClampRadiance(v Vec3) Vec3 {
	clampComponent := func(c float64) float64 {
		if math.IsNaN(c) {
			return 0
		}
		return max(0, min(1, c))
	}
	return Vec3{X: clampComponent(v.X), Y: clampComponent(v.Y), Z: clampComponent(v.Z)}
}

// ToSRGB gamma-encodes clamped linear radiance with pow(x, 1/2.2)
func ToSRGB(linear Vec3) Vec3 {
	return ClampRadiance(linear).GammaCorrect(DisplayGamma)
}

// ToLinear decodes a display-encoded color back to linear light
func ToLinear(encoded Vec3) Vec3 {
	return encoded.Clamp(0, 1).GammaCorrect(1.0 / DisplayGamma)
}

// EncodeColor converts linear radiance to an opaque 8-bit RGBA pixel
func EncodeColor(linear Vec3) color.RGBA {
	encoded := ToSRGB(linear)
	return color.RGBA{
		R: uint8(255 * encoded.X),
		G: uint8(255 * encoded.Y),
		B: uint8(255 * encoded.Z),
		A: 255,
	}
}

// ParseColor parses a linear RGB color. Accepted forms are "r,g,b" with
// linear components, "#rrggbb", or an SVG color name such as "skyblue".
// Hex and named colors are display-encoded and get decoded to linear light.
func ParseColor(s string) (Vec3, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Vec3{}, fmt.Errorf("empty color")
	}

	if strings.Contains(s, ",") {
		return ParseVec3(s)
	}

	if strings.HasPrefix(s, "#") {
		hex := strings.TrimPrefix(s, "#")
		if len(hex) != 6 {
			return Vec3{}, fmt.Errorf("invalid hex color %q", s)
		}
		rgb, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return Vec3{}, fmt.Errorf("invalid hex color %q: %w", s, err)
		}
		return rgbaToLinear(color.RGBA{R: uint8(rgb >> 16), G: uint8(rgb >> 8), B: uint8(rgb), A: 255}), nil
	}

	named, ok := colornames.Map[strings.ToLower(s)]
	if !ok {
		return Vec3{}, fmt.Errorf("unknown color name %q", s)
	}
	return rgbaToLinear(named), nil
}

// ParseVec3 parses three comma-separated floats
func ParseVec3(s string) (Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return Vec3{}, fmt.Errorf("expected 3 comma-separated values, got %q", s)
	}

	var values [3]float64
	for i, part := range parts {
		value, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return Vec3{}, fmt.Errorf("invalid component %q: %w", part, err)
		}
		if !isFinite(value) {
			return Vec3{}, fmt.Errorf("component %q is not finite", part)
		}
		values[i] = value
	}
	return NewVec3(values[0], values[1], values[2]), nil
}

func rgbaToLinear(c color.RGBA) Vec3 {
	return ToLinear(NewVec3(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255))
}
