package scene

import (
	"fmt"
	"math/rand"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/geometry"
	"github.com/df07/go-bvh-pathtracer/pkg/material"
)

const (
	groundBoxesPerSide = 20
	clusterSpheres     = 1000
)

// NewFinalScene creates the showcase scene: a field of random-height boxes,
// glass, metal, smoke, a textured globe, marble and a rotated sphere cluster
func NewFinalScene(opts Options) (*Scene, error) {
	s := newScene("final", cornellCamera(core.NewVec3(478, 278, -600)), core.Vec3{})
	random := rand.New(rand.NewSource(opts.Seed))

	groundMat := material.NewLambertian(core.NewVec3(0.48, 0.83, 0.53))
	boxes := make([]core.Hittable, 0, groundBoxesPerSide*groundBoxesPerSide)
	const w = 100.0
	for i := 0; i < groundBoxesPerSide; i++ {
		for j := 0; j < groundBoxesPerSide; j++ {
			x0 := -1000 + float64(i)*w
			z0 := -1000 + float64(j)*w
			y1 := 1 + 100*random.Float64()
			boxes = append(boxes, geometry.NewBox(core.NewVec3(x0, 0, z0), core.NewVec3(x0+w, y1, z0+w), groundMat))
		}
	}
	ground, err := geometry.NewBVH(boxes)
	if err != nil {
		return nil, fmt.Errorf("final scene ground: %w", err)
	}
	s.Shapes = append(s.Shapes, ground)

	s.ceilingLight(123, 423, 147, 412, 7)

	s.Shapes = append(s.Shapes,
		geometry.NewSphere(core.NewVec3(400, 400, 200), 50, material.NewLambertian(core.NewVec3(0.7, 0.3, 0.1))),
		geometry.NewSphere(core.NewVec3(260, 150, 45), 50, material.NewDielectric(1.5)),
		geometry.NewSphere(core.NewVec3(0, 150, 145), 50, material.NewMetal(core.NewVec3(0.8, 0.8, 0.9), 1.0)),
	)

	// Glass shell filled with blue subsurface fog
	boundary := geometry.NewSphere(core.NewVec3(360, 150, 145), 70, material.NewDielectric(1.5))
	fog, err := geometry.NewConstantMedium(boundary, 0.2, material.NewIsotropic(core.NewVec3(0.2, 0.4, 0.9)))
	if err != nil {
		return nil, fmt.Errorf("final scene fog: %w", err)
	}
	// Thin haze filling the whole scene
	hazeBoundary := geometry.NewSphere(core.Vec3{}, 5000, material.NewDielectric(1.5))
	haze, err := geometry.NewConstantMedium(hazeBoundary, 0.0001, material.NewIsotropic(core.NewVec3(1, 1, 1)))
	if err != nil {
		return nil, fmt.Errorf("final scene haze: %w", err)
	}
	s.Shapes = append(s.Shapes, boundary, fog, haze)

	s.Shapes = append(s.Shapes,
		geometry.NewSphere(core.NewVec3(400, 200, 400), 100, material.NewTexturedLambertian(loadTexture(opts.TexturePath))),
		geometry.NewSphere(core.NewVec3(220, 280, 300), 80, material.NewTexturedLambertian(material.NewNoiseTexture(newPerlin(opts.Seed), 0.1))),
	)

	white := material.NewLambertian(core.NewVec3(0.73, 0.73, 0.73))
	cluster := make([]core.Hittable, clusterSpheres)
	for i := range cluster {
		cluster[i] = geometry.NewSphere(randomColor(random).Multiply(165), 10, white)
	}
	clusterBVH, err := geometry.NewBVH(cluster)
	if err != nil {
		return nil, fmt.Errorf("final scene cluster: %w", err)
	}
	s.Shapes = append(s.Shapes, geometry.NewTranslate(geometry.NewRotateY(clusterBVH, 15), core.NewVec3(-100, 270, 395)))
	return s, nil
}
