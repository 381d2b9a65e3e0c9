package scene

import (
	"fmt"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/geometry"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Name           string
	Camera         *geometry.Camera
	CameraConfig   geometry.CameraConfig
	Shapes         []core.Hittable // Objects in the scene
	Lights         []core.Hittable // Importance sampling targets; need not be in Shapes
	Background     core.Vec3       // Radiance returned for rays that escape
	SamplingConfig SamplingConfig

	BVH       *geometry.BVH          // Built by Preprocess
	LightList *geometry.HittableList // Built by Preprocess; nil when there are no lights
}

// SamplingConfig contains per-pixel sampling configuration
type SamplingConfig struct {
	SamplesPerPixel int // Number of rays per pixel
	MaxDepth        int // Maximum ray bounce depth
}

// DefaultSamplingConfig returns 100 samples per pixel and 50 bounces
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		SamplesPerPixel: 100,
		MaxDepth:        50,
	}
}

// Options are inputs shared by the built-in scene constructors
type Options struct {
	Seed        int64  // Seed for scenes with random layouts
	TexturePath string // Image used by textured scenes
	MeshPath    string // glTF file for the mesh scene; empty uses a built-in mesh
}

// DefaultOptions returns the options used when none are given
func DefaultOptions() Options {
	return Options{
		Seed:        42,
		TexturePath: "earthmap.jpg",
	}
}

// Preprocess builds the acceleration structure and the light collection.
// It must run before the scene is rendered.
func (s *Scene) Preprocess() error {
	bvh, err := geometry.NewBVH(s.Shapes)
	if err != nil {
		return fmt.Errorf("scene %q: %w", s.Name, err)
	}
	s.BVH = bvh

	s.LightList = nil
	if len(s.Lights) > 0 {
		s.LightList = geometry.NewHittableList(s.Lights...)
	}

	if s.Camera == nil {
		s.Camera = geometry.NewCamera(s.CameraConfig)
	}
	return nil
}

// World returns the hittable rays are traced against
func (s *Scene) World() core.Hittable {
	return s.BVH
}

// LightTarget returns the light collection as a hittable, or nil when the
// scene has no lights
func (s *Scene) LightTarget() core.Hittable {
	if s.LightList == nil {
		return nil
	}
	return s.LightList
}

// GetPrimitiveCount returns the total number of primitive objects in the scene
func (s *Scene) GetPrimitiveCount() int {
	count := 0
	for _, shape := range s.Shapes {
		count += countPrimitives(shape)
	}
	return count
}

// countPrimitives counts primitives in a single shape, looking through
// aggregates and instance wrappers
func countPrimitives(shape core.Hittable) int {
	switch obj := shape.(type) {
	case *geometry.TriangleMesh:
		return obj.TriangleCount()
	case *geometry.BVH:
		total := 0
		for _, p := range obj.Primitives {
			total += countPrimitives(p)
		}
		return total
	case *geometry.HittableList:
		total := 0
		for _, o := range obj.Objects {
			total += countPrimitives(o)
		}
		return total
	case *geometry.Translate:
		return countPrimitives(obj.Object)
	case *geometry.RotateY:
		return countPrimitives(obj.Object)
	case *geometry.FlipFace:
		return countPrimitives(obj.Object)
	default:
		return 1
	}
}

// newScene fills in the fields every built-in scene shares
func newScene(name string, cameraConfig geometry.CameraConfig, background core.Vec3) *Scene {
	return &Scene{
		Name:           name,
		Camera:         geometry.NewCamera(cameraConfig),
		CameraConfig:   cameraConfig,
		Background:     background,
		SamplingConfig: DefaultSamplingConfig(),
	}
}
