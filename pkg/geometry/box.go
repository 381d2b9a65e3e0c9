package geometry

import (
	"github.com/df07/go-bvh-pathtracer/pkg/core"
)

// Box represents an axis-aligned box made up of 6 rectangles
type Box struct {
	Min, Max core.Vec3
	Material core.Material
	sides    *HittableList
}

// NewBox creates a box spanning the corners p0 and p1
func NewBox(p0, p1 core.Vec3, material core.Material) *Box {
	boxMin, boxMax := p0.Min(p1), p0.Max(p1)

	// Faces on the min side are flipped so their outward normal points away from the box
	sides := NewHittableList(
		NewXYRect(boxMin.X, boxMax.X, boxMin.Y, boxMax.Y, boxMax.Z, material),
		NewFlipFace(NewXYRect(boxMin.X, boxMax.X, boxMin.Y, boxMax.Y, boxMin.Z, material)),
		NewXZRect(boxMin.X, boxMax.X, boxMin.Z, boxMax.Z, boxMax.Y, material),
		NewFlipFace(NewXZRect(boxMin.X, boxMax.X, boxMin.Z, boxMax.Z, boxMin.Y, material)),
		NewYZRect(boxMin.Y, boxMax.Y, boxMin.Z, boxMax.Z, boxMax.X, material),
		NewFlipFace(NewYZRect(boxMin.Y, boxMax.Y, boxMin.Z, boxMax.Z, boxMin.X, material)),
	)

	return &Box{
		Min:      boxMin,
		Max:      boxMax,
		Material: material,
		sides:    sides,
	}
}

// Hit tests if a ray intersects with any face of the box
func (b *Box) Hit(ray core.Ray, tMin, tMax float64, sampler core.Sampler) (*core.HitRecord, bool) {
	return b.sides.Hit(ray, tMin, tMax, sampler)
}

// BoundingBox returns the axis-aligned bounding box for this box
func (b *Box) BoundingBox() (core.AABB, bool) {
	return core.NewAABB(b.Min, b.Max), true
}
