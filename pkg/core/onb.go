package core

import "math"

// Onb is an orthonormal basis with W aligned to a given normal
type Onb struct {
	U, V, W Vec3
}

// NewOnbFromW builds a basis around n. The helper axis is world X unless n
// is nearly parallel to it, in which case world up is used.
func NewOnbFromW(n Vec3) Onb {
	w := n.Normalize()
	helper := NewVec3(1, 0, 0)
	if math.Abs(w.X) > 0.9 {
		helper = NewVec3(0, 1, 0)
	}
	v := w.Cross(helper).Normalize()
	u := w.Cross(v)
	return Onb{U: u, V: v, W: w}
}

// Local maps a vector expressed in basis coordinates to world space
func (o Onb) Local(a Vec3) Vec3 {
	return o.U.Multiply(a.X).Add(o.V.Multiply(a.Y)).Add(o.W.Multiply(a.Z))
}
