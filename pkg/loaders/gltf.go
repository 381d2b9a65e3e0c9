package loaders

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/geometry"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"
)

// ErrNoTriangles is returned when a glTF document holds no triangle geometry
var ErrNoTriangles = errors.New("gltf document contains no triangles")

// maxNodeDepth bounds the node hierarchy walk so malformed cyclic documents terminate
const maxNodeDepth = 64

// MeshData is triangle geometry flattened into world space. Every group of
// three entries in Faces indexes one triangle in Vertices.
type MeshData struct {
	Vertices []core.Vec3
	Faces    []int
}

// TriangleCount returns the number of triangles
func (m *MeshData) TriangleCount() int {
	return len(m.Faces) / 3
}

// LoadGLTF reads a .gltf or .glb file and flattens its default scene
func LoadGLTF(path string) (*MeshData, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	data, err := ReadGLTFMesh(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}

// LoadGLTFMesh loads a glTF file as a single triangle mesh with one material
func LoadGLTFMesh(path string, mat core.Material) (*geometry.TriangleMesh, error) {
	data, err := LoadGLTF(path)
	if err != nil {
		return nil, err
	}
	return geometry.NewTriangleMesh(data.Vertices, data.Faces, mat, nil)
}

// ReadGLTFMesh collects the triangle primitives of a decoded document. Node
// transforms are applied when the document has a scene; otherwise each mesh
// is read untransformed.
func ReadGLTFMesh(doc *gltf.Document) (*MeshData, error) {
	data := &MeshData{}

	roots, ok := sceneRoots(doc)
	if ok {
		for _, root := range roots {
			if err := readNode(doc, root, mgl64.Ident4(), 0, data); err != nil {
				return nil, err
			}
		}
	} else {
		for i := range doc.Meshes {
			if err := readMesh(doc, i, mgl64.Ident4(), data); err != nil {
				return nil, err
			}
		}
	}

	if len(data.Faces) == 0 {
		return nil, ErrNoTriangles
	}
	return data, nil
}

// sceneRoots returns the root nodes of the document's default scene
func sceneRoots(doc *gltf.Document) ([]int, bool) {
	if len(doc.Scenes) == 0 {
		return nil, false
	}
	index := 0
	if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
		index = *doc.Scene
	}
	return doc.Scenes[index].Nodes, true
}

func readNode(doc *gltf.Document, nodeIndex int, parent mgl64.Mat4, depth int, data *MeshData) error {
	if depth > maxNodeDepth {
		return fmt.Errorf("node %d: hierarchy deeper than %d", nodeIndex, maxNodeDepth)
	}
	if nodeIndex < 0 || nodeIndex >= len(doc.Nodes) {
		return fmt.Errorf("node index %d out of range", nodeIndex)
	}

	node := doc.Nodes[nodeIndex]
	transform := parent.Mul4(nodeTransform(node))

	if node.Mesh != nil {
		if err := readMesh(doc, *node.Mesh, transform, data); err != nil {
			return fmt.Errorf("node %d: %w", nodeIndex, err)
		}
	}
	for _, child := range node.Children {
		if err := readNode(doc, child, transform, depth+1, data); err != nil {
			return err
		}
	}
	return nil
}

// nodeTransform returns the node's local matrix. glTF stores either a
// column-major matrix or a translation/rotation/scale triple.
func nodeTransform(node *gltf.Node) mgl64.Mat4 {
	if node.Matrix != ([16]float64{}) {
		return mgl64.Mat4(node.Matrix)
	}

	t := node.Translation
	scale := node.Scale
	if scale == ([3]float64{}) {
		scale = [3]float64{1, 1, 1}
	}
	rotation := mgl64.QuatIdent()
	if r := node.Rotation; r != ([4]float64{}) {
		rotation = mgl64.Quat{W: r[3], V: mgl64.Vec3{r[0], r[1], r[2]}}.Normalize()
	}

	return mgl64.Translate3D(t[0], t[1], t[2]).
		Mul4(rotation.Mat4()).
		Mul4(mgl64.Scale3D(scale[0], scale[1], scale[2]))
}

func readMesh(doc *gltf.Document, meshIndex int, transform mgl64.Mat4, data *MeshData) error {
	if meshIndex < 0 || meshIndex >= len(doc.Meshes) {
		return fmt.Errorf("mesh index %d out of range", meshIndex)
	}
	mesh := doc.Meshes[meshIndex]

	for p, prim := range mesh.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			continue
		}
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}

		positions, err := readPositions(doc, posIdx)
		if err != nil {
			return fmt.Errorf("mesh %q primitive %d: read positions: %w", mesh.Name, p, err)
		}

		var indices []int
		if prim.Indices != nil {
			indices, err = readIndices(doc, *prim.Indices)
			if err != nil {
				return fmt.Errorf("mesh %q primitive %d: read indices: %w", mesh.Name, p, err)
			}
		} else {
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}

		base := len(data.Vertices)
		for _, pos := range positions {
			world := transform.Mul4x1(pos.Vec4(1))
			data.Vertices = append(data.Vertices, core.NewVec3(world.X(), world.Y(), world.Z()))
		}
		for i := 0; i+2 < len(indices); i += 3 {
			for _, index := range indices[i : i+3] {
				if index >= len(positions) {
					return fmt.Errorf("mesh %q primitive %d: index %d out of range [0, %d)", mesh.Name, p, index, len(positions))
				}
				data.Faces = append(data.Faces, base+index)
			}
		}
	}
	return nil
}

// accessorBytes returns the buffer bytes behind an accessor and its element stride
func accessorBytes(doc *gltf.Document, accessorIdx int, elementSize int) ([]byte, int, int, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, 0, 0, fmt.Errorf("accessor index %d out of range", accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.BufferView == nil {
		return nil, 0, 0, fmt.Errorf("accessor %d has no buffer view", accessorIdx)
	}

	viewIdx := *accessor.BufferView
	if viewIdx < 0 || viewIdx >= len(doc.BufferViews) {
		return nil, 0, 0, fmt.Errorf("accessor %d: buffer view index %d out of range", accessorIdx, viewIdx)
	}
	view := doc.BufferViews[viewIdx]
	if view.Buffer < 0 || view.Buffer >= len(doc.Buffers) {
		return nil, 0, 0, fmt.Errorf("buffer view %d: buffer index %d out of range", viewIdx, view.Buffer)
	}
	buffer := doc.Buffers[view.Buffer]
	if buffer.Data == nil {
		return nil, 0, 0, fmt.Errorf("buffer %d has no data", view.Buffer)
	}

	stride := view.ByteStride
	if stride == 0 {
		stride = elementSize
	}
	if stride < elementSize {
		return nil, 0, 0, fmt.Errorf("buffer view %d: stride %d shorter than element size %d", viewIdx, stride, elementSize)
	}
	if accessor.Count < 0 {
		return nil, 0, 0, fmt.Errorf("accessor %d: negative count %d", accessorIdx, accessor.Count)
	}
	start := view.ByteOffset + accessor.ByteOffset
	if start < 0 || start > len(buffer.Data) {
		return nil, 0, 0, fmt.Errorf("accessor %d starts outside buffer (offset %d, length %d)", accessorIdx, start, len(buffer.Data))
	}
	if accessor.Count > 0 {
		end := start + (accessor.Count-1)*stride + elementSize
		if end > len(buffer.Data) {
			return nil, 0, 0, fmt.Errorf("accessor %d reads past end of buffer (%d > %d)", accessorIdx, end, len(buffer.Data))
		}
	}
	return buffer.Data[start:], stride, accessor.Count, nil
}

func readPositions(doc *gltf.Document, accessorIdx int) ([]mgl64.Vec3, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec3 || accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("expected float VEC3, got %v/%v", accessor.Type, accessor.ComponentType)
	}

	buf, stride, count, err := accessorBytes(doc, accessorIdx, 12)
	if err != nil {
		return nil, err
	}

	result := make([]mgl64.Vec3, count)
	for i := 0; i < count; i++ {
		offset := i * stride
		for j := 0; j < 3; j++ {
			bits := binary.LittleEndian.Uint32(buf[offset+j*4:])
			result[i][j] = float64(math.Float32frombits(bits))
		}
	}
	return result, nil
}

func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("expected SCALAR indices, got %v", accessor.Type)
	}

	var size int
	switch accessor.ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("unsupported index component type %v", accessor.ComponentType)
	}

	buf, stride, count, err := accessorBytes(doc, accessorIdx, size)
	if err != nil {
		return nil, err
	}

	result := make([]int, count)
	for i := 0; i < count; i++ {
		offset := i * stride
		switch size {
		case 1:
			result[i] = int(buf[offset])
		case 2:
			result[i] = int(binary.LittleEndian.Uint16(buf[offset:]))
		case 4:
			result[i] = int(binary.LittleEndian.Uint32(buf[offset:]))
		}
	}
	return result, nil
}
