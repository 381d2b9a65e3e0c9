package core

// Logger interface for raytracer logging
type Logger interface {
	Printf(format string, args ...interface{})
}

// HitRecord contains information about a ray-object intersection.
// Material is borrowed from the primitive that produced the hit.
type HitRecord struct {
	Point     Vec3     // Point of intersection
	Normal    Vec3     // Surface normal, always facing against the incoming ray
	T         float64  // Parameter t along the ray
	UV        Vec2     // Surface coordinates
	Material  Material // Material of the hit object
	FrontFace bool     // Whether the ray hit the outward-facing side
}

// SetFaceNormal sets the normal vector and determines front/back face
func (h *HitRecord) SetFaceNormal(ray Ray, outwardNormal Vec3) {
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Negate()
	}
}

// Hittable is anything a ray can intersect: primitives, instances, media and
// acceleration structures. The sampler is only consumed by hittables with
// stochastic intersection (participating media); others ignore it.
type Hittable interface {
	Hit(ray Ray, tMin, tMax float64, sampler Sampler) (*HitRecord, bool)
	// BoundingBox returns false when the hittable has no finite bounds
	BoundingBox() (AABB, bool)
}

// LightSource is implemented by hittables that can be importance sampled as lights
type LightSource interface {
	// PDFValue is the solid-angle density of sampling direction from origin
	PDFValue(origin, direction Vec3) float64
	// Random returns a direction from origin toward the hittable
	Random(origin Vec3, sampler Sampler) Vec3
}

// PDFValue returns the light sampling density of h, or 0 when h is not a LightSource
func PDFValue(h Hittable, origin, direction Vec3) float64 {
	if ls, ok := h.(LightSource); ok {
		return ls.PDFValue(origin, direction)
	}
	return 0
}

// RandomDirection returns a direction toward h, or +X when h is not a LightSource
func RandomDirection(h Hittable, origin Vec3, sampler Sampler) Vec3 {
	if ls, ok := h.(LightSource); ok {
		return ls.Random(origin, sampler)
	}
	return NewVec3(1, 0, 0)
}

// ScatterKind distinguishes how a material scattered an incoming ray
type ScatterKind int

const (
	// ScatterDiffuse is a stochastic bounce integrated with a density (PDF set)
	ScatterDiffuse ScatterKind = iota
	// ScatterSpecular is a deterministic delta bounce (Ray set, no density)
	ScatterSpecular
	// ScatterIsotropic is a uniform-sphere bounce inside a medium (Ray set)
	ScatterIsotropic
)

func (k ScatterKind) String() string {
	switch k {
	case ScatterDiffuse:
		return "diffuse"
	case ScatterSpecular:
		return "specular"
	case ScatterIsotropic:
		return "isotropic"
	default:
		return "unknown"
	}
}

// ScatterRecord is the outcome of a material scattering an incoming ray
type ScatterRecord struct {
	Kind        ScatterKind
	Attenuation Vec3
	PDF         PDF // set for ScatterDiffuse
	Ray         Ray // set for ScatterSpecular and ScatterIsotropic
}

// Material decides whether and how light bounces off a surface.
// Scatter returns false for pure absorbers and light sources.
type Material interface {
	Scatter(rayIn Ray, hit *HitRecord, sampler Sampler) (ScatterRecord, bool)
}

// Emitter is implemented by materials that emit light
type Emitter interface {
	Emitted(rayIn Ray, hit *HitRecord) Vec3
}

// ScatteringPDFProvider is implemented by materials with a ScatterDiffuse density
type ScatteringPDFProvider interface {
	ScatteringPDF(rayIn Ray, hit *HitRecord, scattered Ray) float64
}

// Emitted returns the material's emission, or black for non-emitters
func Emitted(m Material, rayIn Ray, hit *HitRecord) Vec3 {
	if emitter, ok := m.(Emitter); ok {
		return emitter.Emitted(rayIn, hit)
	}
	return Vec3{}
}

// ScatteringPDF returns the material's scattering density, or 0 when it has none
func ScatteringPDF(m Material, rayIn Ray, hit *HitRecord, scattered Ray) float64 {
	if p, ok := m.(ScatteringPDFProvider); ok {
		return p.ScatteringPDF(rayIn, hit, scattered)
	}
	return 0
}

// PDF is a direction sampling strategy paired with its density
type PDF interface {
	Value(direction Vec3) float64
	Generate(sampler Sampler) Vec3
}

// Texture provides spatially-varying colors for materials
type Texture interface {
	// Evaluate returns color at given UV coordinates and 3D point
	Evaluate(uv Vec2, point Vec3) Vec3
}
