package server

import (
	"fmt"
	"math"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/geometry"
	"github.com/df07/go-bvh-pathtracer/pkg/material"
	"github.com/df07/go-bvh-pathtracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	MaterialType string                 `json:"materialType"`
	GeometryType string                 `json:"geometryType"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	FrontFace    bool                   `json:"frontFace"`
	Properties   map[string]interface{} `json:"properties"`
}

// InspectResult contains information about the object hit by an inspection ray
type InspectResult struct {
	Hit       bool
	HitRecord *core.HitRecord
	Shape     core.Hittable // Top-level scene object that was hit; nil if unknown
}

func vec3Array(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func hexColor(c core.Vec3) string {
	c = c.Clamp(0, 1)
	return fmt.Sprintf("#%02x%02x%02x", int(c.X*255), int(c.Y*255), int(c.Z*255))
}

// extractMaterialInfo describes a material, evaluating textures at the hit point
func extractMaterialInfo(mat core.Material, hit *core.HitRecord) (string, map[string]interface{}) {
	properties := make(map[string]interface{})
	textureColor := func(t core.Texture) core.Vec3 {
		return t.Evaluate(hit.UV, hit.Point)
	}

	switch m := mat.(type) {
	case *material.Lambertian:
		albedo := textureColor(m.Albedo)
		properties["albedo"] = vec3Array(albedo)
		properties["color"] = hexColor(albedo)
		return "lambertian", properties

	case *material.Metal:
		albedo := textureColor(m.Albedo)
		properties["albedo"] = vec3Array(albedo)
		properties["color"] = hexColor(albedo)
		properties["fuzz"] = m.Fuzz
		return "metal", properties

	case *material.Dielectric:
		properties["refractiveIndex"] = m.RefractiveIndex
		properties["color"] = "#ffffff"
		return "dielectric", properties

	case *material.DiffuseLight:
		emission := textureColor(m.Emit)
		properties["emission"] = vec3Array(emission)
		properties["color"] = hexColor(emission)
		return "diffuse_light", properties

	case *material.Isotropic:
		albedo := textureColor(m.Albedo)
		properties["albedo"] = vec3Array(albedo)
		properties["color"] = hexColor(albedo)
		return "isotropic", properties

	case nil:
		return "none", properties

	default:
		return "unknown", properties
	}
}

// extractGeometryInfo describes a scene object, looking through instance wrappers
func extractGeometryInfo(shape core.Hittable) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch geom := shape.(type) {
	case *geometry.Sphere:
		properties["center"] = vec3Array(geom.Center)
		properties["radius"] = geom.Radius
		return "sphere", properties

	case *geometry.AARect:
		properties["axis"] = geom.Axis
		properties["a"] = [2]float64{geom.A0, geom.A1}
		properties["b"] = [2]float64{geom.B0, geom.B1}
		properties["k"] = geom.K
		return "rect", properties

	case *geometry.Box:
		properties["min"] = vec3Array(geom.Min)
		properties["max"] = vec3Array(geom.Max)
		return "box", properties

	case *geometry.Triangle:
		properties["vertices"] = [3][3]float64{vec3Array(geom.V0), vec3Array(geom.V1), vec3Array(geom.V2)}
		return "triangle", properties

	case *geometry.TriangleMesh:
		properties["triangleCount"] = geom.TriangleCount()
		if bbox, ok := geom.BoundingBox(); ok {
			properties["boundingBox"] = map[string]interface{}{
				"min": vec3Array(bbox.Min),
				"max": vec3Array(bbox.Max),
			}
		}
		return "triangle_mesh", properties

	case *geometry.ConstantMedium:
		boundaryType, boundaryProps := extractGeometryInfo(geom.Boundary)
		properties["boundary"] = map[string]interface{}{
			"type":       boundaryType,
			"properties": boundaryProps,
		}
		return "constant_medium", properties

	case *geometry.BVH:
		stats := geom.Stats()
		properties["primitives"] = stats.Primitives
		properties["nodes"] = stats.Nodes
		properties["leaves"] = stats.Leaves
		properties["maxDepth"] = stats.MaxDepth
		return "bvh", properties

	case *geometry.Translate:
		innerType, innerProps := extractGeometryInfo(geom.Object)
		properties["offset"] = vec3Array(geom.Offset)
		properties["object"] = map[string]interface{}{"type": innerType, "properties": innerProps}
		return "translate", properties

	case *geometry.RotateY:
		innerType, innerProps := extractGeometryInfo(geom.Object)
		properties["object"] = map[string]interface{}{"type": innerType, "properties": innerProps}
		return "rotate_y", properties

	case *geometry.FlipFace:
		innerType, innerProps := extractGeometryInfo(geom.Object)
		properties["object"] = map[string]interface{}{"type": innerType, "properties": innerProps}
		return "flip_face", properties

	default:
		return "unknown", properties
	}
}

// inspectPixel casts a ray through the center of pixel (pixelX, pixelY),
// counted from the top-left corner, and returns the first object hit
func inspectPixel(sceneObj *scene.Scene, width, height, pixelX, pixelY int) InspectResult {
	u := (float64(pixelX) + 0.5) / float64(max(width-1, 1))
	v := (float64(height-1-pixelY) + 0.5) / float64(max(height-1, 1))

	// Media and thin lenses consume samples; a fixed seed keeps inspection repeatable
	sampler := core.NewSeededSampler(0)
	ray := sceneObj.Camera.GetRay(u, v, sampler)

	hit, isHit := sceneObj.World().Hit(ray, 0.001, math.Inf(1), sampler)
	if !isHit {
		return InspectResult{Hit: false}
	}

	// The BVH returns only the hit record; find the top-level object that
	// produced the same intersection
	for _, shape := range sceneObj.Shapes {
		if shapeHit, ok := shape.Hit(ray, 0.001, hit.T+0.001, core.NewSeededSampler(0)); ok && shapeHit.T == hit.T {
			return InspectResult{Hit: true, HitRecord: hit, Shape: shape}
		}
	}
	return InspectResult{Hit: true, HitRecord: hit}
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(c echo.Context) error {
	req, err := parseRenderRequest(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid scene parameters: " + err.Error()})
	}

	opts := scene.DefaultOptions()
	opts.Seed = req.Seed
	sceneObj, err := s.createScene(req.Scene, opts)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	width := req.Width
	height := int(float64(width) / sceneObj.CameraConfig.AspectRatio)

	pixelX, err := parseIntParam(c, "x", -1, 0, width-1)
	if err != nil || pixelX < 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid x coordinate"})
	}
	pixelY, err := parseIntParam(c, "y", -1, 0, height-1)
	if err != nil || pixelY < 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid y coordinate"})
	}

	result := inspectPixel(sceneObj, width, height, pixelX, pixelY)
	if !result.Hit {
		return c.JSON(http.StatusOK, InspectResponse{Hit: false})
	}

	materialType, materialProps := extractMaterialInfo(result.HitRecord.Material, result.HitRecord)
	geometryType, geometryProps := extractGeometryInfo(result.Shape)

	return c.JSON(http.StatusOK, InspectResponse{
		Hit:          true,
		MaterialType: materialType,
		GeometryType: geometryType,
		Point:        vec3Array(result.HitRecord.Point),
		Normal:       vec3Array(result.HitRecord.Normal),
		Distance:     result.HitRecord.T,
		FrontFace:    result.HitRecord.FrontFace,
		Properties: map[string]interface{}{
			"material": materialProps,
			"geometry": geometryProps,
		},
	})
}
