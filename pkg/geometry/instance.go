package geometry

import (
	"math"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
)

// Translate moves a hittable by a fixed offset without copying its geometry
type Translate struct {
	Object core.Hittable
	Offset core.Vec3
}

// NewTranslate wraps object so it appears displaced by offset
func NewTranslate(object core.Hittable, offset core.Vec3) *Translate {
	return &Translate{Object: object, Offset: offset}
}

// Hit intersects the ray, moved into object space, with the wrapped object
func (tr *Translate) Hit(ray core.Ray, tMin, tMax float64, sampler core.Sampler) (*core.HitRecord, bool) {
	moved := core.NewRay(ray.Origin.Subtract(tr.Offset), ray.Direction)

	hit, ok := tr.Object.Hit(moved, tMin, tMax, sampler)
	if !ok {
		return nil, false
	}

	hit.Point = hit.Point.Add(tr.Offset)
	return hit, true
}

// BoundingBox returns the wrapped object's box shifted by the offset
func (tr *Translate) BoundingBox() (core.AABB, bool) {
	box, ok := tr.Object.BoundingBox()
	if !ok {
		return core.AABB{}, false
	}
	return box.Translate(tr.Offset), true
}

// PDFValue forwards the light density query into object space
func (tr *Translate) PDFValue(origin, direction core.Vec3) float64 {
	return core.PDFValue(tr.Object, origin.Subtract(tr.Offset), direction)
}

// Random forwards light sampling into object space
func (tr *Translate) Random(origin core.Vec3, sampler core.Sampler) core.Vec3 {
	return core.RandomDirection(tr.Object, origin.Subtract(tr.Offset), sampler)
}

// RotateY rotates a hittable about the world Y axis
type RotateY struct {
	Object   core.Hittable
	sinTheta float64
	cosTheta float64
	bbox     core.AABB
	hasBox   bool
}

// NewRotateY wraps object rotated by angle degrees about +Y
func NewRotateY(object core.Hittable, angle float64) *RotateY {
	radians := angle * math.Pi / 180
	r := &RotateY{
		Object:   object,
		sinTheta: math.Sin(radians),
		cosTheta: math.Cos(radians),
	}

	box, ok := object.BoundingBox()
	r.hasBox = ok
	if !ok {
		return r
	}

	// The rotated bound is the box around all eight rotated corners
	rotated := box.Corners()
	for i, corner := range rotated {
		rotated[i] = r.toWorld(corner)
	}
	r.bbox = core.NewAABBFromPoints(rotated[:]...)

	return r
}

// toObject rotates a world vector by -θ
func (r *RotateY) toObject(v core.Vec3) core.Vec3 {
	return core.NewVec3(
		r.cosTheta*v.X-r.sinTheta*v.Z,
		v.Y,
		r.sinTheta*v.X+r.cosTheta*v.Z,
	)
}

// toWorld rotates an object-space vector by +θ
func (r *RotateY) toWorld(v core.Vec3) core.Vec3 {
	return core.NewVec3(
		r.cosTheta*v.X+r.sinTheta*v.Z,
		v.Y,
		-r.sinTheta*v.X+r.cosTheta*v.Z,
	)
}

// Hit intersects the ray, rotated into object space, with the wrapped object
func (r *RotateY) Hit(ray core.Ray, tMin, tMax float64, sampler core.Sampler) (*core.HitRecord, bool) {
	rotated := core.NewRay(r.toObject(ray.Origin), r.toObject(ray.Direction))

	hit, ok := r.Object.Hit(rotated, tMin, tMax, sampler)
	if !ok {
		return nil, false
	}

	// Rotation preserves the dot product, so the face orientation is unchanged
	hit.Point = r.toWorld(hit.Point)
	hit.Normal = r.toWorld(hit.Normal)
	return hit, true
}

// BoundingBox returns the box around the rotated object's box
func (r *RotateY) BoundingBox() (core.AABB, bool) {
	return r.bbox, r.hasBox
}

// PDFValue forwards the light density query into object space
func (r *RotateY) PDFValue(origin, direction core.Vec3) float64 {
	return core.PDFValue(r.Object, r.toObject(origin), r.toObject(direction))
}

// Random samples in object space and rotates the result back
func (r *RotateY) Random(origin core.Vec3, sampler core.Sampler) core.Vec3 {
	return r.toWorld(core.RandomDirection(r.Object, r.toObject(origin), sampler))
}

// FlipFace inverts the front-face flag of the wrapped hittable's hits.
// Used to make one-sided emitters face the other way.
type FlipFace struct {
	Object core.Hittable
}

// NewFlipFace wraps object with its faces flipped
func NewFlipFace(object core.Hittable) *FlipFace {
	return &FlipFace{Object: object}
}

// Hit forwards to the wrapped object and flips the front-face flag
func (f *FlipFace) Hit(ray core.Ray, tMin, tMax float64, sampler core.Sampler) (*core.HitRecord, bool) {
	hit, ok := f.Object.Hit(ray, tMin, tMax, sampler)
	if !ok {
		return nil, false
	}
	hit.FrontFace = !hit.FrontFace
	return hit, true
}

// BoundingBox returns the wrapped object's box
func (f *FlipFace) BoundingBox() (core.AABB, bool) {
	return f.Object.BoundingBox()
}

// PDFValue forwards to the wrapped object
func (f *FlipFace) PDFValue(origin, direction core.Vec3) float64 {
	return core.PDFValue(f.Object, origin, direction)
}

// Random forwards to the wrapped object
func (f *FlipFace) Random(origin core.Vec3, sampler core.Sampler) core.Vec3 {
	return core.RandomDirection(f.Object, origin, sampler)
}
