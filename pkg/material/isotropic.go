package material

import (
	"github.com/df07/go-bvh-pathtracer/pkg/core"
)

// Isotropic is the phase function of a participating medium: it scatters
// uniformly over the sphere of directions
type Isotropic struct {
	Albedo core.Texture
}

// NewIsotropic creates an isotropic phase function with a solid color
func NewIsotropic(albedo core.Vec3) *Isotropic {
	return &Isotropic{Albedo: NewSolidColor(albedo)}
}

// Scatter returns a uniformly random direction from the scattering point
func (i *Isotropic) Scatter(rayIn core.Ray, hit *core.HitRecord, sampler core.Sampler) (core.ScatterRecord, bool) {
	return core.ScatterRecord{
		Kind:        core.ScatterIsotropic,
		Attenuation: i.Albedo.Evaluate(hit.UV, hit.Point),
		Ray:         core.NewRay(hit.Point, core.SampleOnUnitSphere(sampler.Get2D())),
	}, true
}
