// Package pdf provides the direction sampling strategies used by the path
// tracer. Each PDF is built per bounce from the hit point and discarded.
package pdf

import (
	"math"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
)

// CosinePDF samples directions around a normal with density cosθ/π
type CosinePDF struct {
	uvw core.Onb
}

// NewCosinePDF creates a cosine-weighted PDF around normal w
func NewCosinePDF(w core.Vec3) *CosinePDF {
	return &CosinePDF{uvw: core.NewOnbFromW(w)}
}

// Value returns max(cosθ, 0)/π for the given direction
func (p *CosinePDF) Value(direction core.Vec3) float64 {
	cosine := direction.Normalize().Dot(p.uvw.W)
	if cosine <= 0 {
		return 0
	}
	return cosine / math.Pi
}

// Generate returns a cosine-weighted direction in the hemisphere around W
func (p *CosinePDF) Generate(sampler core.Sampler) core.Vec3 {
	return p.uvw.Local(core.RandomCosineDirection(sampler.Get2D()))
}

// HittablePDF samples directions from an origin toward a hittable light.
// Hittables that are not light sources have zero density.
type HittablePDF struct {
	Origin core.Vec3
	Target core.Hittable
}

// NewHittablePDF creates a PDF sampling target as seen from origin
func NewHittablePDF(target core.Hittable, origin core.Vec3) *HittablePDF {
	return &HittablePDF{Origin: origin, Target: target}
}

// Value returns the target's solid-angle density for direction
func (p *HittablePDF) Value(direction core.Vec3) float64 {
	return core.PDFValue(p.Target, p.Origin, direction)
}

// Generate returns a direction from the origin toward the target
func (p *HittablePDF) Generate(sampler core.Sampler) core.Vec3 {
	return core.RandomDirection(p.Target, p.Origin, sampler)
}

// MixturePDF combines two PDFs with equal weight
type MixturePDF struct {
	P, Q core.PDF
}

// NewMixturePDF creates a 50/50 mixture of p and q
func NewMixturePDF(p, q core.PDF) *MixturePDF {
	return &MixturePDF{P: p, Q: q}
}

// Value returns 0.5·p(d) + 0.5·q(d)
func (m *MixturePDF) Value(direction core.Vec3) float64 {
	return 0.5*m.P.Value(direction) + 0.5*m.Q.Value(direction)
}

// Generate picks one of the two PDFs with a fair coin and samples it
func (m *MixturePDF) Generate(sampler core.Sampler) core.Vec3 {
	if sampler.Get1D() < 0.5 {
		return m.P.Generate(sampler)
	}
	return m.Q.Generate(sampler)
}
