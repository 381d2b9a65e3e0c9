package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
)

func TestCamera_PinholeCenterRay(t *testing.T) {
	camera := NewCamera(CameraConfig{
		LookFrom:    core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        90,
		AspectRatio: 2,
	})

	ray := camera.GetRay(0.5, 0.5, nil)
	if ray.Origin != core.NewVec3(0, 0, 0) {
		t.Errorf("Expected origin at LookFrom, got %v", ray.Origin)
	}
	if !vecNear(ray.Direction.Normalize(), core.NewVec3(0, 0, -1), 1e-9) {
		t.Errorf("Expected center ray toward -Z, got %v", ray.Direction)
	}

	// 90° vertical fov at unit focus distance: the top edge is at y = 1
	top := camera.GetRay(0.5, 1, nil)
	if !vecNear(top.Direction, core.NewVec3(0, 1, -1), 1e-9) {
		t.Errorf("Expected top-center ray (0,1,-1), got %v", top.Direction)
	}
	// Aspect ratio 2 doubles the horizontal extent
	left := camera.GetRay(0, 0.5, nil)
	if !vecNear(left.Direction, core.NewVec3(-2, 0, -1), 1e-9) {
		t.Errorf("Expected left-center ray (-2,0,-1), got %v", left.Direction)
	}
}

func TestCamera_ThinLensFocusPlane(t *testing.T) {
	config := CameraConfig{
		LookFrom:      core.NewVec3(0, 0, 5),
		LookAt:        core.NewVec3(0, 0, 0),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          40,
		AspectRatio:   1,
		Aperture:      0.5,
		FocusDistance: 5,
	}
	camera := NewCamera(config)
	sampler := core.NewSeededSampler(42)

	// Every lens sample for the center pixel converges on the focus point
	for i := 0; i < 100; i++ {
		ray := camera.GetRay(0.5, 0.5, sampler)
		if ray.Origin.Subtract(config.LookFrom).Length() > config.Aperture/2+1e-9 {
			t.Fatalf("Ray origin %v outside the lens", ray.Origin)
		}
		if math.Abs(ray.Origin.Z-5) > 1e-9 {
			t.Fatalf("Expected lens in the z=5 plane, got %v", ray.Origin)
		}
		if focus := ray.At(1); !vecNear(focus, core.NewVec3(0, 0, 0), 1e-9) {
			t.Fatalf("Expected ray through the focus point, got %v", focus)
		}
	}
}

func TestCamera_DefaultFocusDistance(t *testing.T) {
	camera := NewCamera(CameraConfig{
		LookFrom:    core.NewVec3(0, 0, 3),
		LookAt:      core.NewVec3(0, 0, 0),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        60,
		AspectRatio: 1,
	})

	ray := camera.GetRay(0.5, 0.5, nil)
	if !vecNear(ray.At(1), core.NewVec3(0, 0, 0), 1e-9) {
		t.Errorf("Expected the focal plane through LookAt, got %v", ray.At(1))
	}
}
