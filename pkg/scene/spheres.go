package scene

import (
	"fmt"
	"math/rand"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/geometry"
	"github.com/df07/go-bvh-pathtracer/pkg/loaders"
	"github.com/df07/go-bvh-pathtracer/pkg/material"
)

var (
	skyBackground = core.NewVec3(0.70, 0.80, 1.00)
	worldUp       = core.NewVec3(0, 1, 0)
)

const wideAspectRatio = 16.0 / 9.0

// wideCamera is the 16:9 pinhole camera used by the outdoor sphere scenes
func wideCamera(lookFrom, lookAt core.Vec3, vfov float64) geometry.CameraConfig {
	return geometry.CameraConfig{
		LookFrom:    lookFrom,
		LookAt:      lookAt,
		Up:          worldUp,
		VFov:        vfov,
		AspectRatio: wideAspectRatio,
	}
}

// skyLight is a sampling target 20 units above the camera. Outdoor scenes
// use it to bias bounces toward the bright sky.
func skyLight(lookFrom core.Vec3, emission float64) *geometry.Sphere {
	light := material.NewDiffuseLight(core.NewVec3(emission, emission, emission))
	return geometry.NewSphere(lookFrom.Add(core.NewVec3(0, 20, 0)), 2.5, light)
}

func newPerlin(seed int64) *material.Perlin {
	return material.NewPerlin(rand.New(rand.NewSource(seed)))
}

func randomColor(random *rand.Rand) core.Vec3 {
	return core.NewVec3(random.Float64(), random.Float64(), random.Float64())
}

// NewRandomSpheresScene creates the classic field of small random spheres
// around three large ones on a checkered ground
func NewRandomSpheresScene(opts Options) (*Scene, error) {
	lookFrom := core.NewVec3(13, 2, 3)
	cameraConfig := wideCamera(lookFrom, core.NewVec3(0, 0, 0), 20)
	cameraConfig.Aperture = 0.1
	cameraConfig.FocusDistance = 10

	s := newScene("random-spheres", cameraConfig, skyBackground)
	random := rand.New(rand.NewSource(opts.Seed))

	light := skyLight(lookFrom, 7)
	s.Lights = append(s.Lights, light)

	small := []core.Hittable{light}
	reference := core.NewVec3(4, 0.2, 0)
	for a := -11; a <= 11; a++ {
		for b := -11; b <= 11; b++ {
			chooseMat := random.Float64()
			center := core.NewVec3(float64(a)+0.9*random.Float64(), 0.2, float64(b)+0.9*random.Float64())
			if center.Subtract(reference).LengthSquared() <= 0.9*0.9 {
				continue
			}

			var mat core.Material
			switch {
			case chooseMat < 0.8:
				mat = material.NewLambertian(randomColor(random).MultiplyVec(randomColor(random)))
			case chooseMat < 0.95:
				albedo := randomColor(random).Multiply(0.5).Add(core.NewVec3(0.5, 0.5, 0.5))
				mat = material.NewMetal(albedo, 0.5*random.Float64())
			default:
				mat = material.NewDielectric(1.5)
			}
			small = append(small, geometry.NewSphere(center, 0.2, mat))
		}
	}

	smallBVH, err := geometry.NewBVH(small)
	if err != nil {
		return nil, fmt.Errorf("random spheres: %w", err)
	}

	ground := material.NewTexturedLambertian(material.NewCheckerColors(
		core.NewVec3(0.2, 0.3, 0.1),
		core.NewVec3(0.9, 0.9, 0.9),
	))

	s.Shapes = append(s.Shapes,
		smallBVH,
		geometry.NewSphere(core.NewVec3(0, -1000, 0), 1000, ground),
		geometry.NewSphere(core.NewVec3(0, 1, 0), 1, material.NewDielectric(1.5)),
		geometry.NewSphere(core.NewVec3(-4, 1, 0), 1, material.NewLambertian(core.NewVec3(0.4, 0.2, 0.1))),
		geometry.NewSphere(core.NewVec3(4, 1, 0), 1, material.NewMetal(core.NewVec3(0.7, 0.6, 0.5), 0)),
	)
	return s, nil
}

// NewThreeSpheresScene creates diffuse, hollow glass and metal spheres on a
// large ground sphere
func NewThreeSpheresScene(opts Options) (*Scene, error) {
	lookFrom := core.NewVec3(-2, 1.25, 1)
	s := newScene("three-spheres", wideCamera(lookFrom, core.NewVec3(0, 0, -1), 45), skyBackground)
	s.Lights = append(s.Lights, skyLight(lookFrom, 5))

	glass := material.NewDielectric(1.5)
	s.Shapes = append(s.Shapes,
		geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, material.NewLambertian(core.NewVec3(0.8, 0.8, 0))),
		geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))),
		geometry.NewSphere(core.NewVec3(-1, 0, -1), 0.5, glass),
		// Negative radius flips the normals, making the glass sphere hollow
		geometry.NewSphere(core.NewVec3(-1, 0, -1), -0.45, glass),
		geometry.NewSphere(core.NewVec3(1, 0, -1), 0.5, material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0)),
	)
	return s, nil
}

// NewPerlinSpheresScene creates two marble-textured spheres
func NewPerlinSpheresScene(opts Options) (*Scene, error) {
	mat := material.NewTexturedLambertian(material.NewNoiseTexture(newPerlin(opts.Seed), 4))
	return twoSpheresScene("perlin-spheres", mat), nil
}

// NewCheckerSpheresScene creates two checker-textured spheres
func NewCheckerSpheresScene(opts Options) (*Scene, error) {
	mat := material.NewTexturedLambertian(material.NewCheckerColors(
		core.NewVec3(0.2, 0.3, 0.1),
		core.NewVec3(0.9, 0.9, 0.9),
	))
	return twoSpheresScene("checker-spheres", mat), nil
}

func twoSpheresScene(name string, mat core.Material) *Scene {
	lookFrom := core.NewVec3(13, 2, 3)
	s := newScene(name, wideCamera(lookFrom, core.NewVec3(0, 0, 0), 20), skyBackground)
	s.Lights = append(s.Lights, skyLight(lookFrom, 7))
	s.Shapes = append(s.Shapes,
		geometry.NewSphere(core.NewVec3(0, -1000, 0), 1000, mat),
		geometry.NewSphere(core.NewVec3(0, 2, 0), 2, mat),
	)
	return s
}

// NewEarthScene creates a single sphere wrapped in the image at opts.TexturePath
func NewEarthScene(opts Options) (*Scene, error) {
	lookFrom := core.NewVec3(13, 2, 3)
	s := newScene("earth", wideCamera(lookFrom, core.NewVec3(0, 0, 0), 20), skyBackground)
	s.Lights = append(s.Lights, skyLight(lookFrom, 7))

	earth := material.NewTexturedLambertian(loadTexture(opts.TexturePath))
	s.Shapes = append(s.Shapes, geometry.NewSphere(core.NewVec3(0, 0, 0), 2, earth))
	return s, nil
}

// loadTexture loads an image texture. A missing or unreadable file yields an
// empty texture, which renders cyan.
func loadTexture(path string) *material.ImageTexture {
	if path == "" {
		return &material.ImageTexture{}
	}
	texture, err := loaders.LoadImageTexture(path)
	if err != nil {
		return &material.ImageTexture{}
	}
	return texture
}
