package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
)

func TestTriangle_Hit(t *testing.T) {
	tri := NewTriangle(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), nil)

	hit, ok := tri.Hit(core.NewRay(core.NewVec3(0.25, 0.25, 1), core.NewVec3(0, 0, -1)), 0.001, math.Inf(1), nil)
	if !ok {
		t.Fatal("Expected hit")
	}
	if math.Abs(hit.T-1) > 1e-9 {
		t.Errorf("Expected t=1, got %f", hit.T)
	}
	if math.Abs(hit.UV.X-0.25) > 1e-9 || math.Abs(hit.UV.Y-0.25) > 1e-9 {
		t.Errorf("Expected barycentric uv (0.25,0.25), got %v", hit.UV)
	}
	if !hit.FrontFace || !vecNear(hit.Normal, core.NewVec3(0, 0, 1), 1e-9) {
		t.Errorf("Expected front face with normal +Z, got %t %v", hit.FrontFace, hit.Normal)
	}

	if _, ok := tri.Hit(core.NewRay(core.NewVec3(1, 1, 1), core.NewVec3(0, 0, -1)), 0.001, math.Inf(1), nil); ok {
		t.Error("Expected miss outside the triangle")
	}
	if _, ok := tri.Hit(core.NewRay(core.NewVec3(0.25, 0.25, 0), core.NewVec3(1, 0, 0)), 0.001, math.Inf(1), nil); ok {
		t.Error("Expected miss for a ray in the triangle's plane")
	}
}

func TestTriangle_FlatBoxIsHittable(t *testing.T) {
	tri := NewTriangle(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 0, 1), nil)
	box, _ := tri.BoundingBox()

	if !box.Hit(core.NewRay(core.NewVec3(0.2, 5, 0.2), core.NewVec3(0, -1, 0)), 0.001, math.Inf(1)) {
		t.Error("Expected padded box of an axis-aligned triangle to be hit")
	}
}

func TestTriangle_PDFValueAndRandom(t *testing.T) {
	tri := NewTriangle(core.NewVec3(-1, 2, -1), core.NewVec3(1, 2, -1), core.NewVec3(0, 2, 1), nil)
	origin := core.NewVec3(0, 0, 0)
	sampler := core.NewSeededSampler(9)

	if math.Abs(tri.Area()-2) > 1e-9 {
		t.Fatalf("Expected area 2, got %f", tri.Area())
	}
	if got, want := tri.PDFValue(origin, core.NewVec3(0, 1, 0)), 4.0/2.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("Expected pdf %f straight up, got %f", want, got)
	}
	for i := 0; i < 100; i++ {
		if tri.PDFValue(origin, tri.Random(origin, sampler)) <= 0 {
			t.Fatal("Expected sampled direction to hit the triangle")
		}
	}
}

func TestNewTriangleMesh_Errors(t *testing.T) {
	vertices := []core.Vec3{{X: 0}, {X: 1}, {Y: 1}}

	tests := []struct {
		name    string
		faces   []int
		options *TriangleMeshOptions
	}{
		{"no faces", nil, nil},
		{"partial face", []int{0, 1}, nil},
		{"index out of range", []int{0, 1, 3}, nil},
		{"negative index", []int{0, -1, 2}, nil},
		{"material count mismatch", []int{0, 1, 2}, &TriangleMeshOptions{Materials: []core.Material{nil, nil}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTriangleMesh(vertices, tt.faces, nil, tt.options); !errors.Is(err, ErrInvalidMesh) {
				t.Errorf("Expected ErrInvalidMesh, got %v", err)
			}
		})
	}
}

func TestTriangleMesh_Hit(t *testing.T) {
	// Tetrahedron with its base on y=0
	vertices := []core.Vec3{
		core.NewVec3(-1, 0, -1),
		core.NewVec3(1, 0, -1),
		core.NewVec3(0, 0, 1),
		core.NewVec3(0, 2, 0),
	}
	faces := []int{0, 2, 1, 0, 1, 3, 1, 2, 3, 2, 0, 3}

	mesh, err := NewTriangleMesh(vertices, faces, &testMaterial{id: 7}, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if mesh.TriangleCount() != 4 {
		t.Errorf("Expected 4 triangles, got %d", mesh.TriangleCount())
	}

	hit, ok := mesh.Hit(core.NewRay(core.NewVec3(0, -5, 0), core.NewVec3(0, 1, 0)), 0.001, math.Inf(1), nil)
	if !ok {
		t.Fatal("Expected hit on the base")
	}
	if math.Abs(hit.T-5) > 1e-9 {
		t.Errorf("Expected t=5 at the base, got %f", hit.T)
	}

	box, _ := mesh.BoundingBox()
	if !box.Contains(core.NewVec3(0, 2, 0), 0) || !box.Contains(core.NewVec3(-1, 0, -1), 0) {
		t.Errorf("Mesh box %v does not contain its vertices", box)
	}
}
