package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
)

func TestNewConstantMedium_InvalidDensity(t *testing.T) {
	boundary := NewSphere(core.NewVec3(0, 0, 0), 1, nil)

	for _, density := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := NewConstantMedium(boundary, density, nil); !errors.Is(err, ErrInvalidDensity) {
			t.Errorf("Expected ErrInvalidDensity for density %f, got %v", density, err)
		}
	}
}

func TestConstantMedium_DenseScattersAtBoundary(t *testing.T) {
	phase := &testMaterial{id: 1}
	medium, err := NewConstantMedium(NewSphere(core.NewVec3(0, 0, 0), 1, nil), 1e6, phase)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	sampler := core.NewSeededSampler(42)
	ray := core.NewRay(core.NewVec3(0, 0, -5), core.NewVec3(0, 0, 1))

	hit, ok := medium.Hit(ray, 0.001, math.Inf(1), sampler)
	if !ok {
		t.Fatal("Expected a dense medium to scatter")
	}
	if math.Abs(hit.T-4) > 0.01 {
		t.Errorf("Expected scatter just past the boundary at t≈4, got %f", hit.T)
	}
	if hit.Material != phase || !hit.FrontFace {
		t.Errorf("Expected phase material and front face, got %v / %t", hit.Material, hit.FrontFace)
	}
}

func TestConstantMedium_ThinPassesThrough(t *testing.T) {
	medium, err := NewConstantMedium(NewSphere(core.NewVec3(0, 0, 0), 1, nil), 1e-9, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	sampler := core.NewSeededSampler(42)
	ray := core.NewRay(core.NewVec3(0, 0, -5), core.NewVec3(0, 0, 1))

	for i := 0; i < 100; i++ {
		if hit, ok := medium.Hit(ray, 0.001, math.Inf(1), sampler); ok {
			t.Fatalf("Expected a near-vacuum to pass rays through, scattered at t=%f", hit.T)
		}
	}
}

func TestConstantMedium_MissesBoundary(t *testing.T) {
	medium, _ := NewConstantMedium(NewSphere(core.NewVec3(0, 0, 0), 1, nil), 10, nil)
	ray := core.NewRay(core.NewVec3(0, 5, -5), core.NewVec3(0, 0, 1))

	if _, ok := medium.Hit(ray, 0.001, math.Inf(1), core.NewSeededSampler(1)); ok {
		t.Error("Expected no scatter for a ray missing the boundary")
	}
}
