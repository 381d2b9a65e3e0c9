package integrator

import (
	"math"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/pdf"
	"github.com/df07/go-bvh-pathtracer/pkg/scene"
)

// shadowAcneEpsilon is the minimum hit distance for secondary rays
const shadowAcneEpsilon = 0.001

// PathTracingIntegrator implements recursive unidirectional path tracing with
// a 50/50 mixture of light sampling and material sampling on diffuse bounces
type PathTracingIntegrator struct {
	config scene.SamplingConfig
}

// NewPathTracingIntegrator creates a new path tracing integrator
func NewPathTracingIntegrator(config scene.SamplingConfig) *PathTracingIntegrator {
	return &PathTracingIntegrator{
		config: config,
	}
}

// RayColor computes the color for a single camera ray, bounded by MaxDepth bounces
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, sc *scene.Scene, sampler core.Sampler) core.Vec3 {
	return Radiance(ray, sc.Background, sc.World(), sc.LightTarget(), pt.config.MaxDepth, sampler)
}

// Radiance estimates the light arriving along ray. Depth 0 returns black and
// a ray that escapes the world returns background. lights may be nil, in
// which case diffuse bounces sample only the material's density.
//
// A diffuse bounce whose mixture density is zero or not finite contributes
// only its emission. The division by the density can still overflow for
// densities that are tiny but positive, so callers must filter NaN and
// infinite samples.
func Radiance(ray core.Ray, background core.Vec3, world, lights core.Hittable, depth int, sampler core.Sampler) core.Vec3 {
	// If we've exceeded the ray bounce limit, no more light is gathered
	if depth <= 0 {
		return core.Vec3{}
	}

	hit, isHit := world.Hit(ray, shadowAcneEpsilon, math.Inf(1), sampler)
	if !isHit {
		return background
	}

	emitted := core.Emitted(hit.Material, ray, hit)

	if hit.Material == nil {
		return emitted
	}
	scatter, didScatter := hit.Material.Scatter(ray, hit, sampler)
	if !didScatter {
		return emitted
	}

	switch scatter.Kind {
	case core.ScatterSpecular:
		incoming := Radiance(scatter.Ray, background, world, lights, depth-1, sampler)
		return scatter.Attenuation.MultiplyVec(incoming)

	case core.ScatterIsotropic:
		incoming := Radiance(scatter.Ray, background, world, lights, depth-1, sampler)
		return emitted.Add(scatter.Attenuation.MultiplyVec(incoming))

	default:
		return emitted.Add(diffuseRadiance(ray, hit, scatter, background, world, lights, depth, sampler))
	}
}

// diffuseRadiance importance samples the next direction from a mixture of the
// light collection and the material's own density
func diffuseRadiance(ray core.Ray, hit *core.HitRecord, scatter core.ScatterRecord, background core.Vec3, world, lights core.Hittable, depth int, sampler core.Sampler) core.Vec3 {
	var sampling core.PDF = scatter.PDF
	if lights != nil {
		sampling = pdf.NewMixturePDF(pdf.NewHittablePDF(lights, hit.Point), scatter.PDF)
	}

	scattered := core.NewRay(hit.Point, sampling.Generate(sampler))
	pdfValue := sampling.Value(scattered.Direction)
	if !(pdfValue > 0) || math.IsInf(pdfValue, 0) {
		return core.Vec3{}
	}

	scatteringPDF := core.ScatteringPDF(hit.Material, ray, hit, scattered)
	incoming := Radiance(scattered, background, world, lights, depth-1, sampler)

	return scatter.Attenuation.MultiplyVec(incoming).Multiply(scatteringPDF / pdfValue)
}
