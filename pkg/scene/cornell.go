package scene

import (
	"fmt"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/geometry"
	"github.com/df07/go-bvh-pathtracer/pkg/material"
)

// Cornell box dimensions (standard 555x555x555 units)
const boxSize = 555.0

func cornellCamera(lookFrom core.Vec3) geometry.CameraConfig {
	return geometry.CameraConfig{
		LookFrom:      lookFrom,
		LookAt:        core.NewVec3(278, 278, 0),
		Up:            worldUp,
		VFov:          40,
		AspectRatio:   1.0,
		FocusDistance: 10,
	}
}

// ceilingLight adds a downward-facing XZ area light just below the ceiling.
// The scene geometry holds a flipped copy so its emitting side faces the room.
func (s *Scene) ceilingLight(x0, x1, z0, z1 float64, emission float64) {
	light := material.NewDiffuseLight(core.NewVec3(emission, emission, emission))
	s.Lights = append(s.Lights, geometry.NewXZRect(x0, x1, z0, z1, boxSize-1, light))
	s.Shapes = append(s.Shapes, geometry.NewFlipFace(geometry.NewXZRect(x0, x1, z0, z1, boxSize-1, light)))
}

// NewCornellScene creates the Cornell box with a tall mirror block and a glass sphere
func NewCornellScene(opts Options) (*Scene, error) {
	return newCornellBox(false)
}

// NewCornellSmokeScene creates the Cornell box with both blocks replaced by
// dark and light smoke under a larger, dimmer light
func NewCornellSmokeScene(opts Options) (*Scene, error) {
	return newCornellBox(true)
}

func newCornellBox(smoke bool) (*Scene, error) {
	name := "cornell"
	if smoke {
		name = "cornell-smoke"
	}
	s := newScene(name, cornellCamera(core.NewVec3(278, 278, -800)), core.Vec3{})

	red := material.NewLambertian(core.NewVec3(0.65, 0.05, 0.05))
	white := material.NewLambertian(core.NewVec3(0.73, 0.73, 0.73))
	green := material.NewLambertian(core.NewVec3(0.12, 0.45, 0.15))

	s.Shapes = append(s.Shapes,
		geometry.NewYZRect(0, boxSize, 0, boxSize, boxSize, green),
		geometry.NewYZRect(0, boxSize, 0, boxSize, 0, red),
		geometry.NewXZRect(0, boxSize, 0, boxSize, 0, white),
		geometry.NewXZRect(0, boxSize, 0, boxSize, boxSize, white),
		geometry.NewXYRect(0, boxSize, 0, boxSize, boxSize, white),
	)

	if smoke {
		s.ceilingLight(113, 443, 127, 432, 7)
	} else {
		s.ceilingLight(213, 343, 227, 332, 15)
	}

	aluminum := material.NewMetal(core.NewVec3(0.8, 0.85, 0.88), 0)
	tall := geometry.NewTranslate(
		geometry.NewRotateY(geometry.NewBox(core.Vec3{}, core.NewVec3(165, 330, 165), aluminum), 15),
		core.NewVec3(265, 0, 295),
	)

	if !smoke {
		s.Shapes = append(s.Shapes,
			tall,
			geometry.NewSphere(core.NewVec3(190, 90, 190), 90, material.NewDielectric(1.5)),
		)
		return s, nil
	}

	short := geometry.NewTranslate(
		geometry.NewRotateY(geometry.NewBox(core.Vec3{}, core.NewVec3(165, 165, 165), white), -18),
		core.NewVec3(130, 0, 65),
	)

	darkSmoke, err := geometry.NewConstantMedium(tall, 0.01, material.NewIsotropic(core.Vec3{}))
	if err != nil {
		return nil, fmt.Errorf("cornell smoke: %w", err)
	}
	lightSmoke, err := geometry.NewConstantMedium(short, 0.01, material.NewIsotropic(core.NewVec3(1, 1, 1)))
	if err != nil {
		return nil, fmt.Errorf("cornell smoke: %w", err)
	}
	s.Shapes = append(s.Shapes, darkSmoke, lightSmoke)
	return s, nil
}

// NewSimpleLightScene creates two marble spheres lit by a single rectangle light
func NewSimpleLightScene(opts Options) (*Scene, error) {
	cameraConfig := wideCamera(core.NewVec3(26, 3, 6), core.NewVec3(0, 2, 0), 20)
	cameraConfig.FocusDistance = 10
	s := newScene("simple-light", cameraConfig, core.Vec3{})

	perlin := newPerlin(opts.Seed)
	marble := material.NewTexturedLambertian(material.NewNoiseTexture(perlin, 4))
	light := geometry.NewXYRect(3, 5, 1, 3, -2, material.NewDiffuseLight(core.NewVec3(7, 7, 7)))

	s.Shapes = append(s.Shapes,
		geometry.NewSphere(core.NewVec3(0, -1000, 0), 1000, marble),
		geometry.NewSphere(core.NewVec3(0, 2, 0), 2, marble),
		light,
	)
	s.Lights = append(s.Lights, light)
	return s, nil
}
