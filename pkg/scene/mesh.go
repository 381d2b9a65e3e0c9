package scene

import (
	"fmt"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/geometry"
	"github.com/df07/go-bvh-pathtracer/pkg/loaders"
	"github.com/df07/go-bvh-pathtracer/pkg/material"
)

// tetrahedron is the mesh shown when no glTF file is given
var (
	tetrahedronVertices = []core.Vec3{
		core.NewVec3(1, 1, 1),
		core.NewVec3(-1, -1, 1),
		core.NewVec3(-1, 1, -1),
		core.NewVec3(1, -1, -1),
	}
	tetrahedronFaces = []int{0, 2, 1, 0, 1, 3, 0, 3, 2, 1, 2, 3}
)

// NewMeshScene shows the PLY or glTF mesh at opts.MeshPath, or a tetrahedron when
// no path is set, on a checkered ground under an open sky
func NewMeshScene(opts Options) (*Scene, error) {
	mat := meshMaterial()

	var (
		mesh *geometry.TriangleMesh
		err  error
	)
	if opts.MeshPath != "" {
		mesh, err = loaders.LoadMesh(opts.MeshPath, mat)
	} else {
		mesh, err = geometry.NewTriangleMesh(tetrahedronVertices, tetrahedronFaces, mat, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("mesh scene: %w", err)
	}

	return newMeshShowcase("mesh", mesh)
}

func meshMaterial() core.Material {
	return material.NewLambertian(core.NewVec3(0.8, 0.3, 0.3))
}

// newMeshShowcase frames the camera on the mesh bounds and adds a ground
func newMeshShowcase(name string, mesh *geometry.TriangleMesh) (*Scene, error) {
	box, ok := mesh.BoundingBox()
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, geometry.ErrMissingBoundingBox)
	}
	center := box.Center()
	radius := max(box.Size().Length()/2, 1e-3)

	lookFrom := center.Add(core.NewVec3(2, 1, 3).Normalize().Multiply(4 * radius))
	s := newScene(name, wideCamera(lookFrom, center, 30), skyBackground)
	s.Lights = append(s.Lights, skyLight(lookFrom, 7))

	groundRadius := 1000 * radius
	ground := material.NewTexturedLambertian(material.NewCheckerColors(
		core.NewVec3(0.2, 0.3, 0.1),
		core.NewVec3(0.9, 0.9, 0.9),
	))
	s.Shapes = append(s.Shapes,
		mesh,
		geometry.NewSphere(core.NewVec3(center.X, box.Min.Y-groundRadius, center.Z), groundRadius, ground),
	)
	return s, nil
}
