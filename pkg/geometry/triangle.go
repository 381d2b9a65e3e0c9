package geometry

import (
	"math"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
)

// triangleBoxPadding keeps axis-aligned triangles from producing flat boxes
const triangleBoxPadding = 0.0001

// Triangle represents a single triangle defined by three vertices
type Triangle struct {
	V0, V1, V2 core.Vec3     // The three vertices
	Material   core.Material // Material of the triangle
	normal     core.Vec3     // Cached normal vector
	area       float64
	bbox       core.AABB
}

// NewTriangle creates a new triangle from three vertices
func NewTriangle(v0, v1, v2 core.Vec3, material core.Material) *Triangle {
	cross := v1.Subtract(v0).Cross(v2.Subtract(v0))
	padding := core.NewVec3(triangleBoxPadding, triangleBoxPadding, triangleBoxPadding)
	box := core.NewAABBFromPoints(v0, v1, v2)

	return &Triangle{
		V0:       v0,
		V1:       v1,
		V2:       v2,
		Material: material,
		normal:   cross.Normalize(),
		area:     0.5 * cross.Length(),
		bbox:     core.NewAABB(box.Min.Subtract(padding), box.Max.Add(padding)),
	}
}

// Hit tests if a ray intersects with the triangle using the Möller-Trumbore algorithm.
// UV holds the barycentric coordinates of the hit relative to V1 and V2.
func (t *Triangle) Hit(ray core.Ray, tMin, tMax float64, _ core.Sampler) (*core.HitRecord, bool) {
	const epsilon = 1e-8

	edge1 := t.V1.Subtract(t.V0)
	edge2 := t.V2.Subtract(t.V0)

	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)

	// Ray lies in the plane of the triangle
	if a > -epsilon && a < epsilon {
		return nil, false
	}

	f := 1.0 / a
	s := ray.Origin.Subtract(t.V0)
	u := f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return nil, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return nil, false
	}

	tHit := f * edge2.Dot(q)
	if tHit < tMin || tHit > tMax {
		return nil, false
	}

	hitRecord := &core.HitRecord{
		T:        tHit,
		Point:    ray.At(tHit),
		Material: t.Material,
		UV:       core.NewVec2(u, v),
	}
	hitRecord.SetFaceNormal(ray, t.normal)

	return hitRecord, true
}

// BoundingBox returns the padded axis-aligned bounding box for this triangle
func (t *Triangle) BoundingBox() (core.AABB, bool) {
	return t.bbox, true
}

// Normal returns the triangle's geometric normal (right-handed winding)
func (t *Triangle) Normal() core.Vec3 {
	return t.normal
}

// Area returns the area of the triangle
func (t *Triangle) Area() float64 {
	return t.area
}

// PDFValue converts the triangle's uniform area density to solid angle from origin
func (t *Triangle) PDFValue(origin, direction core.Vec3) float64 {
	hit, ok := t.Hit(core.NewRay(origin, direction), 0.001, math.Inf(1), nil)
	if !ok || t.area == 0 {
		return 0
	}

	lengthSquared := direction.LengthSquared()
	distanceSquared := hit.T * hit.T * lengthSquared
	cosine := math.Abs(direction.Dot(t.normal)) / math.Sqrt(lengthSquared)
	if cosine == 0 {
		return 0
	}
	return distanceSquared / (cosine * t.area)
}

// Random returns the direction from origin to a uniformly chosen point on the triangle
func (t *Triangle) Random(origin core.Vec3, sampler core.Sampler) core.Vec3 {
	sample := sampler.Get2D()
	su := math.Sqrt(sample.X)
	b0 := 1 - su
	b1 := sample.Y * su

	point := t.V0.Multiply(b0).Add(t.V1.Multiply(b1)).Add(t.V2.Multiply(1 - b0 - b1))
	return point.Subtract(origin)
}
