package pdf

import (
	"math"
	"testing"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/geometry"
)

// constantPDF always returns the same density and direction
type constantPDF struct {
	value     float64
	direction core.Vec3
}

func (c constantPDF) Value(direction core.Vec3) float64      { return c.value }
func (c constantPDF) Generate(sampler core.Sampler) core.Vec3 { return c.direction }

func TestCosinePDF_Value(t *testing.T) {
	p := NewCosinePDF(core.NewVec3(0, 1, 0))

	tests := []struct {
		name      string
		direction core.Vec3
		expected  float64
	}{
		{"normal incidence", core.NewVec3(0, 1, 0), 1 / math.Pi},
		{"unnormalized normal", core.NewVec3(0, 5, 0), 1 / math.Pi},
		{"45 degrees", core.NewVec3(1, 1, 0), math.Sqrt(0.5) / math.Pi},
		{"grazing", core.NewVec3(1, 0, 0), 0},
		{"below surface", core.NewVec3(0, -1, 0), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Value(tt.direction); math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("Expected %f, got %f", tt.expected, got)
			}
		})
	}
}

func TestCosinePDF_GenerateInHemisphere(t *testing.T) {
	normal := core.NewVec3(1, 1, 0).Normalize()
	p := NewCosinePDF(normal)
	sampler := core.NewSeededSampler(42)

	for i := 0; i < 1000; i++ {
		d := p.Generate(sampler)
		if d.Dot(normal) < -1e-12 {
			t.Fatalf("Generated direction %v below the surface", d)
		}
		if p.Value(d) < 0 {
			t.Fatalf("Negative density for generated direction %v", d)
		}
	}
}

func TestMixturePDF_ExactHalfWeights(t *testing.T) {
	p := constantPDF{value: 0.2, direction: core.NewVec3(1, 0, 0)}
	q := constantPDF{value: 1.4, direction: core.NewVec3(0, 1, 0)}
	m := NewMixturePDF(p, q)

	if got := m.Value(core.NewVec3(0, 0, 1)); math.Abs(got-0.8) > 1e-12 {
		t.Errorf("Expected 0.5·p + 0.5·q = 0.8, got %f", got)
	}

	sampler := core.NewSeededSampler(42)
	fromP := 0
	const n = 10000
	for i := 0; i < n; i++ {
		if m.Generate(sampler) == p.direction {
			fromP++
		}
	}
	if ratio := float64(fromP) / n; math.Abs(ratio-0.5) > 0.02 {
		t.Errorf("Expected each PDF chosen half the time, got ratio %f", ratio)
	}
}

func TestHittablePDF_Sphere(t *testing.T) {
	light := geometry.NewSphere(core.NewVec3(0, 0, -5), 1, nil)
	p := NewHittablePDF(light, core.NewVec3(0, 0, 0))

	expected := 1 / (2 * math.Pi * (1 - math.Sqrt(1-1.0/25.0)))
	if got := p.Value(core.NewVec3(0, 0, -1)); math.Abs(got-expected) > 1e-9 {
		t.Errorf("Expected %f, got %f", expected, got)
	}

	sampler := core.NewSeededSampler(7)
	for i := 0; i < 100; i++ {
		if p.Value(p.Generate(sampler)) <= 0 {
			t.Fatal("Expected generated directions to hit the light")
		}
	}
}

func TestHittablePDF_NonLightDefaults(t *testing.T) {
	box := geometry.NewBox(core.NewVec3(0, 0, 0), core.NewVec3(1, 1, 1), nil)
	p := NewHittablePDF(box, core.NewVec3(5, 5, 5))

	if got := p.Value(core.NewVec3(-1, -1, -1)); got != 0 {
		t.Errorf("Expected zero density for a non-light hittable, got %f", got)
	}
	if got := p.Generate(core.NewSeededSampler(1)); got != core.NewVec3(1, 0, 0) {
		t.Errorf("Expected default +X direction, got %v", got)
	}
}
