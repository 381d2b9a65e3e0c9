package geometry

import (
	"github.com/df07/go-bvh-pathtracer/pkg/core"
)

// testMaterial is a distinguishable absorber used to identify which primitive was hit
type testMaterial struct {
	id int
}

func (m *testMaterial) Scatter(rayIn core.Ray, hit *core.HitRecord, sampler core.Sampler) (core.ScatterRecord, bool) {
	return core.ScatterRecord{}, false
}

// unboundedHittable never reports a bounding box
type unboundedHittable struct{}

func (unboundedHittable) Hit(ray core.Ray, tMin, tMax float64, sampler core.Sampler) (*core.HitRecord, bool) {
	return nil, false
}

func (unboundedHittable) BoundingBox() (core.AABB, bool) {
	return core.AABB{}, false
}

func vecNear(a, b core.Vec3, tolerance float64) bool {
	return a.Subtract(b).Length() <= tolerance
}
