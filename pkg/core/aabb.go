package core

import "math"

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min Vec3 // Minimum corner
	Max Vec3 // Maximum corner
}

// NewAABB creates a new AABB from min and max points
func NewAABB(min, max Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// EmptyAABB returns the identity box for Union: min = +inf, max = -inf on every axis
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: NewVec3(inf, inf, inf),
		Max: NewVec3(-inf, -inf, -inf),
	}
}

// NewAABBFromPoints creates an AABB that bounds all given points
func NewAABBFromPoints(points ...Vec3) AABB {
	box := EmptyAABB()
	for _, p := range points {
		box.Min = box.Min.Min(p)
		box.Max = box.Max.Max(p)
	}
	return box
}

// IsEmpty reports whether the box bounds nothing (min > max on some axis)
func (aabb AABB) IsEmpty() bool {
	return aabb.Min.X > aabb.Max.X || aabb.Min.Y > aabb.Max.Y || aabb.Min.Z > aabb.Max.Z
}

// Union returns an AABB that bounds both this AABB and another.
// An empty operand is skipped so its infinities never leak into the result.
func (aabb AABB) Union(other AABB) AABB {
	if aabb.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return aabb
	}
	return AABB{Min: aabb.Min.Min(other.Min), Max: aabb.Max.Max(other.Max)}
}

// SurroundingBox returns the union of two boxes
func SurroundingBox(a, b AABB) AABB {
	return a.Union(b)
}

// Translate returns the box shifted by offset
func (aabb AABB) Translate(offset Vec3) AABB {
	if aabb.IsEmpty() {
		return aabb
	}
	return AABB{Min: aabb.Min.Add(offset), Max: aabb.Max.Add(offset)}
}

// Center returns the center point of the AABB
func (aabb AABB) Center() Vec3 {
	return aabb.Min.Add(aabb.Max).Multiply(0.5)
}

// Size returns the extent of the AABB along each axis
func (aabb AABB) Size() Vec3 {
	return aabb.Max.Subtract(aabb.Min)
}

// LongestAxis returns the axis (0=X, 1=Y, 2=Z) with the largest extent
func (aabb AABB) LongestAxis() int {
	size := aabb.Size()
	if size.X >= size.Y && size.X >= size.Z {
		return 0
	}
	if size.Y >= size.Z {
		return 1
	}
	return 2
}

// SortKey returns min+max along the axis, a center proxy used to order boxes
func (aabb AABB) SortKey(axis int) float64 {
	return aabb.Min.Axis(axis) + aabb.Max.Axis(axis)
}

// Contains reports whether the point lies inside the box, within tolerance
func (aabb AABB) Contains(p Vec3, tolerance float64) bool {
	return p.X >= aabb.Min.X-tolerance && p.X <= aabb.Max.X+tolerance &&
		p.Y >= aabb.Min.Y-tolerance && p.Y <= aabb.Max.Y+tolerance &&
		p.Z >= aabb.Min.Z-tolerance && p.Z <= aabb.Max.Z+tolerance
}

// Corners returns the eight corner points of the box
func (aabb AABB) Corners() [8]Vec3 {
	var corners [8]Vec3
	for i := 0; i < 8; i++ {
		corners[i] = NewVec3(
			pick(i&1 != 0, aabb.Max.X, aabb.Min.X),
			pick(i&2 != 0, aabb.Max.Y, aabb.Min.Y),
			pick(i&4 != 0, aabb.Max.Z, aabb.Min.Z),
		)
	}
	return corners
}

func pick(cond bool, a, b float64) float64 {
	if cond {
		return a
	}
	return b
}

// bound returns Min for 0 and Max for 1
func (aabb AABB) bound(i int) Vec3 {
	if i == 0 {
		return aabb.Min
	}
	return aabb.Max
}

// Hit tests if a ray intersects this AABB within [tMin, tMax] using the slab method.
// The ray's sign bits select the near and far planes per axis. A direction
// component of zero gives an infinite reciprocal; the resulting NaN (origin on
// a slab plane) fails every comparison and leaves the interval untouched.
func (aabb AABB) Hit(ray Ray, tMin, tMax float64) bool {
	for axis := 0; axis < 3; axis++ {
		sign := ray.Sign[axis]
		origin := ray.Origin.Axis(axis)
		inv := ray.InvDirection.Axis(axis)

		t0 := (aabb.bound(sign).Axis(axis) - origin) * inv
		t1 := (aabb.bound(1-sign).Axis(axis) - origin) * inv

		if t0 > tMin {
			tMin = t0
		}
		if t1 < tMax {
			tMax = t1
		}
		if tMax <= tMin {
			return false
		}
	}
	return true
}
