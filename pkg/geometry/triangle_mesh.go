package geometry

import (
	"errors"
	"fmt"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
)

// ErrInvalidMesh is returned for malformed vertex/index data
var ErrInvalidMesh = errors.New("invalid triangle mesh")

// TriangleMesh is a collection of triangles with its own BVH, so a mesh is a
// single primitive in the scene hierarchy
type TriangleMesh struct {
	triangles []*Triangle
	bvh       *BVH
}

// TriangleMeshOptions contains optional parameters for triangle mesh creation
type TriangleMeshOptions struct {
	Materials []core.Material // Optional per-triangle materials
}

// NewTriangleMesh creates a mesh from vertices and face indices, where each
// group of 3 indices forms a triangle. options may be nil.
func NewTriangleMesh(vertices []core.Vec3, faces []int, material core.Material, options *TriangleMeshOptions) (*TriangleMesh, error) {
	if len(faces) == 0 || len(faces)%3 != 0 {
		return nil, fmt.Errorf("%w: %d face indices is not a positive multiple of 3", ErrInvalidMesh, len(faces))
	}

	numTriangles := len(faces) / 3
	if options != nil && options.Materials != nil && len(options.Materials) != numTriangles {
		return nil, fmt.Errorf("%w: %d materials for %d triangles", ErrInvalidMesh, len(options.Materials), numTriangles)
	}

	triangles := make([]*Triangle, numTriangles)
	primitives := make([]core.Hittable, numTriangles)
	for i := 0; i < numTriangles; i++ {
		i0, i1, i2 := faces[i*3], faces[i*3+1], faces[i*3+2]
		for _, index := range []int{i0, i1, i2} {
			if index < 0 || index >= len(vertices) {
				return nil, fmt.Errorf("%w: face %d index %d out of range [0, %d)", ErrInvalidMesh, i, index, len(vertices))
			}
		}

		triangleMaterial := material
		if options != nil && options.Materials != nil {
			triangleMaterial = options.Materials[i]
		}

		triangles[i] = NewTriangle(vertices[i0], vertices[i1], vertices[i2], triangleMaterial)
		primitives[i] = triangles[i]
	}

	bvh, err := NewBVH(primitives)
	if err != nil {
		return nil, fmt.Errorf("triangle mesh: %w", err)
	}

	return &TriangleMesh{triangles: triangles, bvh: bvh}, nil
}

// Hit tests if a ray intersects with any triangle in the mesh
func (tm *TriangleMesh) Hit(ray core.Ray, tMin, tMax float64, sampler core.Sampler) (*core.HitRecord, bool) {
	return tm.bvh.Hit(ray, tMin, tMax, sampler)
}

// BoundingBox returns the axis-aligned bounding box for the entire mesh
func (tm *TriangleMesh) BoundingBox() (core.AABB, bool) {
	return tm.bvh.BoundingBox()
}

// TriangleCount returns the number of triangles in this mesh
func (tm *TriangleMesh) TriangleCount() int {
	return len(tm.triangles)
}
