package geometry

import (
	"math"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
)

// rectThickness pads the flat axis of a rectangle's bounding box so the slab
// test never sees a zero-width interval
const rectThickness = 0.0001

// AARect is an axis-aligned rectangle lying in the plane axis = K.
// A and B are the two in-plane axes in increasing order, e.g. X and Y for
// a rectangle perpendicular to Z.
type AARect struct {
	Axis     int // axis of the normal: 0 (YZ), 1 (XZ) or 2 (XY)
	A0, A1   float64
	B0, B1   float64
	K        float64
	Material core.Material
}

// NewXYRect creates a rectangle in the plane z = k
func NewXYRect(x0, x1, y0, y1, k float64, material core.Material) *AARect {
	return &AARect{Axis: 2, A0: x0, A1: x1, B0: y0, B1: y1, K: k, Material: material}
}

// NewXZRect creates a rectangle in the plane y = k
func NewXZRect(x0, x1, z0, z1, k float64, material core.Material) *AARect {
	return &AARect{Axis: 1, A0: x0, A1: x1, B0: z0, B1: z1, K: k, Material: material}
}

// NewYZRect creates a rectangle in the plane x = k
func NewYZRect(y0, y1, z0, z1, k float64, material core.Material) *AARect {
	return &AARect{Axis: 0, A0: y0, A1: y1, B0: z0, B1: z1, K: k, Material: material}
}

// inPlaneAxes returns the indices of the two in-plane axes
func (r *AARect) inPlaneAxes() (int, int) {
	switch r.Axis {
	case 0:
		return 1, 2
	case 1:
		return 0, 2
	default:
		return 0, 1
	}
}

// compose builds a world point from in-plane coordinates a, b and the normal coordinate k
func (r *AARect) compose(a, b, k float64) core.Vec3 {
	switch r.Axis {
	case 0:
		return core.NewVec3(k, a, b)
	case 1:
		return core.NewVec3(a, k, b)
	default:
		return core.NewVec3(a, b, k)
	}
}

// Normal returns the rectangle's outward normal (+axis)
func (r *AARect) Normal() core.Vec3 {
	return r.compose(0, 0, 1)
}

// Area returns the area of the rectangle
func (r *AARect) Area() float64 {
	return (r.A1 - r.A0) * (r.B1 - r.B0)
}

// Hit tests if a ray intersects with the rectangle
func (r *AARect) Hit(ray core.Ray, tMin, tMax float64, _ core.Sampler) (*core.HitRecord, bool) {
	axisA, axisB := r.inPlaneAxes()

	denominator := ray.Direction.Axis(r.Axis)
	if math.Abs(denominator) < 1e-12 {
		return nil, false
	}

	t := (r.K - ray.Origin.Axis(r.Axis)) / denominator
	if t < tMin || t > tMax {
		return nil, false
	}

	a := ray.Origin.Axis(axisA) + t*ray.Direction.Axis(axisA)
	b := ray.Origin.Axis(axisB) + t*ray.Direction.Axis(axisB)
	if a < r.A0 || a > r.A1 || b < r.B0 || b > r.B1 {
		return nil, false
	}

	hitRecord := &core.HitRecord{
		T:        t,
		Point:    ray.At(t),
		Material: r.Material,
		UV:       core.NewVec2((a-r.A0)/(r.A1-r.A0), (b-r.B0)/(r.B1-r.B0)),
	}
	hitRecord.SetFaceNormal(ray, r.Normal())

	return hitRecord, true
}

// BoundingBox returns the rectangle's box, padded along the normal axis
func (r *AARect) BoundingBox() (core.AABB, bool) {
	return core.NewAABB(
		r.compose(r.A0, r.B0, r.K-rectThickness),
		r.compose(r.A1, r.B1, r.K+rectThickness),
	), true
}

// PDFValue converts the uniform area density of the rectangle to solid angle
// as seen from origin: distance² / (|cosθ| · area)
func (r *AARect) PDFValue(origin, direction core.Vec3) float64 {
	hit, ok := r.Hit(core.NewRay(origin, direction), 0.001, math.Inf(1), nil)
	if !ok {
		return 0
	}

	lengthSquared := direction.LengthSquared()
	distanceSquared := hit.T * hit.T * lengthSquared
	cosine := math.Abs(direction.Dot(r.Normal())) / math.Sqrt(lengthSquared)
	if cosine == 0 {
		return 0
	}

	return distanceSquared / (cosine * r.Area())
}

// Random returns the direction from origin to a uniformly chosen point on the rectangle
func (r *AARect) Random(origin core.Vec3, sampler core.Sampler) core.Vec3 {
	sample := sampler.Get2D()
	point := r.compose(
		r.A0+sample.X*(r.A1-r.A0),
		r.B0+sample.Y*(r.B1-r.B0),
		r.K,
	)
	return point.Subtract(origin)
}
