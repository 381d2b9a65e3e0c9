package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
)

// ErrInvalidDensity is returned when a medium is constructed with a non-positive density
var ErrInvalidDensity = errors.New("medium density must be positive")

// ConstantMedium is a homogeneous participating medium filling a closed boundary.
// Rays scatter inside it with probability proportional to the distance travelled.
type ConstantMedium struct {
	Boundary      core.Hittable
	PhaseFunction core.Material
	negInvDensity float64
}

// NewConstantMedium fills boundary with a medium of the given density.
// phase is the material scattered rays pick up, normally an isotropic one.
func NewConstantMedium(boundary core.Hittable, density float64, phase core.Material) (*ConstantMedium, error) {
	if !(density > 0) || math.IsInf(density, 0) {
		return nil, fmt.Errorf("constant medium: %w (got %g)", ErrInvalidDensity, density)
	}
	return &ConstantMedium{
		Boundary:      boundary,
		PhaseFunction: phase,
		negInvDensity: -1 / density,
	}, nil
}

// Hit finds where the ray enters and leaves the boundary and samples a scattering
// distance in between. The boundary must be convex for this to be exact.
func (m *ConstantMedium) Hit(ray core.Ray, tMin, tMax float64, sampler core.Sampler) (*core.HitRecord, bool) {
	enter, ok := m.Boundary.Hit(ray, math.Inf(-1), math.Inf(1), sampler)
	if !ok {
		return nil, false
	}
	exit, ok := m.Boundary.Hit(ray, enter.T+0.0001, math.Inf(1), sampler)
	if !ok {
		return nil, false
	}

	t1 := math.Max(enter.T, tMin)
	t2 := math.Min(exit.T, tMax)
	if t1 >= t2 {
		return nil, false
	}
	if t1 < 0 {
		t1 = 0
	}

	rayLength := ray.Direction.Length()
	distanceInsideBoundary := (t2 - t1) * rayLength
	hitDistance := m.negInvDensity * math.Log(sampler.Get1D())
	if hitDistance > distanceInsideBoundary {
		return nil, false
	}

	t := t1 + hitDistance/rayLength
	return &core.HitRecord{
		T:         t,
		Point:     ray.At(t),
		Normal:    core.NewVec3(1, 0, 0), // arbitrary
		FrontFace: true,
		Material:  m.PhaseFunction,
	}, true
}

// BoundingBox returns the boundary's box
func (m *ConstantMedium) BoundingBox() (core.AABB, bool) {
	return m.Boundary.BoundingBox()
}
