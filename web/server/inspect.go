package server

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/df07/go-realtime-pathtracer/pkg/core"
	"github.com/df07/go-realtime-pathtracer/pkg/geometry"
	"github.com/df07/go-realtime-pathtracer/pkg/integrator"
	"github.com/df07/go-realtime-pathtracer/pkg/material"
	"github.com/df07/go-realtime-pathtracer/pkg/renderer"
	"github.com/df07/go-realtime-pathtracer/pkg/scene"
)

// InspectResponse represents the JSON response for pixel inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	Primitive    int                    `json:"primitive"` // Index into the scene, -1 on a miss
	MaterialType string                 `json:"materialType"`
	GeometryType string                 `json:"geometryType"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	FrontFace    bool                   `json:"frontFace"`
	Properties   map[string]interface{} `json:"properties"`
	Pixel        PixelInfo              `json:"pixel"`
	Paths        PathSummary            `json:"paths"`
}

// PixelInfo is the shaded value of the inspected pixel
type PixelInfo struct {
	Color    string     `json:"color"` // Display-encoded, #rrggbb
	Linear   [3]float64 `json:"linear"`
	Variance float64    `json:"variance"`
}

// PathSummary describes how the pixel's paths terminated
type PathSummary struct {
	Samples        int     `json:"samples"`
	AverageBounces float64 `json:"averageBounces"`
	Escaped        int     `json:"escaped"`
	Truncated      int     `json:"truncated"`
	SpecularShare  float64 `json:"specularShare"` // Fraction of bounces that took the mirror lobe
}

// extractMaterialInfo classifies a material and lists its parameters
func (s *Server) extractMaterialInfo(mat material.Material) (string, map[string]interface{}) {
	properties := map[string]interface{}{
		"color":     toArray(mat.Color),
		"hex":       hexColor(mat.Color),
		"shininess": mat.Shininess,
		"emission":  mat.Emission,
	}

	switch {
	case mat.IsEmissive():
		return "emissive", properties
	case mat.Shininess >= 1:
		return "mirror", properties
	case mat.Shininess > 0:
		return "metal", properties
	default:
		return "matte", properties
	}
}

// extractGeometryInfo lists the parameters of a primitive
func (s *Server) extractGeometryInfo(primitive geometry.Primitive) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch primitive.Kind {
	case geometry.KindSphere:
		properties["center"] = toArray(primitive.Sphere.Center)
		properties["radius"] = primitive.Sphere.Radius
	case geometry.KindPlane:
		properties["y"] = primitive.Plane.Y
	}
	return primitive.Kind.String(), properties
}

// InspectResult contains the first surface hit through a pixel center
type InspectResult struct {
	Hit       bool
	HitRecord material.HitRecord
	Index     int
}

// inspectPixel casts an unjittered ray through the center of a pixel
func inspectPixel(sceneObj *scene.Scene, cfg renderer.FrameConfig, pixelX, pixelY int) InspectResult {
	ray := renderer.NewCamera(cfg).GetRay(pixelX, pixelY, 0, 0)
	hit, index, ok := sceneObj.HitPrimitive(ray, integrator.HitEpsilon, math.Inf(1))
	return InspectResult{Hit: ok, HitRecord: hit, Index: index}
}

// summarizePaths retraces the pixel's samples with the kernel's seeding and
// records how each path ended
func summarizePaths(sceneObj *scene.Scene, cfg renderer.FrameConfig, pixelX, pixelY int) PathSummary {
	camera := renderer.NewCamera(cfg)
	rng := core.SeedPCG(float32(pixelX)+0.5, float32(pixelY)+0.5, cfg.Frame)

	summary := PathSummary{Samples: cfg.Samples}
	bounces, specular := 0, 0
	for i := 0; i < cfg.Samples; i++ {
		jitter := core.SampleJitter(rng.Get2D())
		ray := camera.GetRay(pixelX, pixelY, jitter.X, jitter.Y)
		_, info := integrator.TraceWithInfo(ray, sceneObj, &rng, cfg.BounceLimit, cfg.Background)

		bounces += info.Bounces
		specular += info.Specular
		if info.Escaped {
			summary.Escaped++
		}
		if info.Truncated {
			summary.Truncated++
		}
	}

	if cfg.Samples > 0 {
		summary.AverageBounces = float64(bounces) / float64(cfg.Samples)
	}
	if bounces > 0 {
		summary.SpecularShare = float64(specular) / float64(bounces)
	}
	return summary
}

// handleInspect handles pixel inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseFrameRequest(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid scene parameters: "+err.Error())
		return
	}

	// Parse pixel coordinates
	pixelX, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid x coordinate")
		return
	}
	pixelY, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid y coordinate")
		return
	}

	// Validate pixel coordinates
	if pixelX < 0 || pixelX >= req.Width || pixelY < 0 || pixelY >= req.Height {
		writeJSONError(w, http.StatusBadRequest, "Pixel coordinates out of bounds")
		return
	}

	cfg := req.Controller.NextFrame(req.Width, req.Height)
	pixel := renderer.NewKernel(req.Scene).ShadePixel(cfg, pixelX, pixelY)

	response := InspectResponse{
		Primitive: -1,
		Pixel: PixelInfo{
			Color:    fmt.Sprintf("#%02x%02x%02x", pixel.Color.R, pixel.Color.G, pixel.Color.B),
			Linear:   toArray(pixel.Linear),
			Variance: pixel.Stats.Variance(),
		},
		Paths: summarizePaths(req.Scene, cfg, pixelX, pixelY),
	}

	result := inspectPixel(req.Scene, cfg, pixelX, pixelY)
	if result.Hit {
		materialType, materialProps := s.extractMaterialInfo(result.HitRecord.Material)
		geometryType, geometryProps := s.extractGeometryInfo(req.Scene.Primitives[result.Index])

		response.Hit = true
		response.Primitive = result.Index
		response.MaterialType = materialType
		response.GeometryType = geometryType
		response.Point = toArray(result.HitRecord.Point)
		response.Normal = toArray(result.HitRecord.Normal)
		response.Distance = result.HitRecord.T
		response.FrontFace = result.HitRecord.FrontFace
		response.Properties = map[string]interface{}{
			"material": materialProps,
			"geometry": geometryProps,
		}
	}

	writeJSON(w, http.StatusOK, response)
}

func toArray(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// hexColor display-encodes a linear color
func hexColor(v core.Vec3) string {
	c := core.EncodeColor(v)
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
