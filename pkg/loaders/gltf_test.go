package loaders

import (
	"encoding/binary"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/qmuntal/gltf"
)

func intPtr(i int) *int { return &i }

// quadDocument builds a document holding a unit quad in the XY plane made of
// two triangles, with uint16 indices
func quadDocument() *gltf.Document {
	positions := [][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}
	indices := []uint16{0, 1, 2, 0, 2, 3}

	var data []byte
	for _, p := range positions {
		for _, c := range p {
			data = binary.LittleEndian.AppendUint32(data, math.Float32bits(c))
		}
	}
	posLen := len(data)
	for _, i := range indices {
		data = binary.LittleEndian.AppendUint16(data, i)
	}

	return &gltf.Document{
		Buffers: []*gltf.Buffer{{ByteLength: len(data), Data: data}},
		BufferViews: []*gltf.BufferView{
			{Buffer: 0, ByteOffset: 0, ByteLength: posLen},
			{Buffer: 0, ByteOffset: posLen, ByteLength: len(data) - posLen},
		},
		Accessors: []*gltf.Accessor{
			{BufferView: intPtr(0), ComponentType: gltf.ComponentFloat, Count: len(positions), Type: gltf.AccessorVec3},
			{BufferView: intPtr(1), ComponentType: gltf.ComponentUshort, Count: len(indices), Type: gltf.AccessorScalar},
		},
		Meshes: []*gltf.Mesh{{
			Name: "quad",
			Primitives: []*gltf.Primitive{{
				Attributes: map[string]int{gltf.POSITION: 0},
				Indices:    intPtr(1),
			}},
		}},
	}
}

func TestReadGLTFMesh_NoScene(t *testing.T) {
	data, err := ReadGLTFMesh(quadDocument())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if data.TriangleCount() != 2 {
		t.Errorf("Expected 2 triangles, got %d", data.TriangleCount())
	}
	if len(data.Vertices) != 4 {
		t.Errorf("Expected 4 vertices, got %d", len(data.Vertices))
	}
	want := []int{0, 1, 2, 0, 2, 3}
	for i, f := range want {
		if data.Faces[i] != f {
			t.Errorf("Face index %d: expected %d, got %d", i, f, data.Faces[i])
		}
	}
	if data.Vertices[2] != core.NewVec3(1, 1, 0) {
		t.Errorf("Expected vertex 2 at (1,1,0), got %v", data.Vertices[2])
	}
}

func TestReadGLTFMesh_NodeTranslation(t *testing.T) {
	doc := quadDocument()
	doc.Nodes = []*gltf.Node{
		{Translation: [3]float64{0, 0, 5}, Children: []int{1}},
		{Mesh: intPtr(0), Translation: [3]float64{2, 0, 0}},
	}
	doc.Scenes = []*gltf.Scene{{Nodes: []int{0}}}
	doc.Scene = intPtr(0)

	data, err := ReadGLTFMesh(doc)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	expected := core.NewVec3(2, 0, 5)
	if data.Vertices[0].Subtract(expected).Length() > 1e-9 {
		t.Errorf("Expected first vertex at %v, got %v", expected, data.Vertices[0])
	}
}

func TestReadGLTFMesh_NodeScaleAndMatrix(t *testing.T) {
	doc := quadDocument()
	doc.Nodes = []*gltf.Node{
		{Mesh: intPtr(0), Scale: [3]float64{3, 3, 3}},
		// Column-major translation by (0, 10, 0)
		{Mesh: intPtr(0), Matrix: [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 10, 0, 1}},
	}
	doc.Scenes = []*gltf.Scene{{Nodes: []int{0, 1}}}

	data, err := ReadGLTFMesh(doc)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if data.TriangleCount() != 4 {
		t.Fatalf("Expected 4 triangles, got %d", data.TriangleCount())
	}
	if got := data.Vertices[2]; got.Subtract(core.NewVec3(3, 3, 0)).Length() > 1e-9 {
		t.Errorf("Expected scaled vertex (3,3,0), got %v", got)
	}
	if got := data.Vertices[6]; got.Subtract(core.NewVec3(1, 11, 0)).Length() > 1e-9 {
		t.Errorf("Expected translated vertex (1,11,0), got %v", got)
	}
	// Second instance indexes its own vertex block
	if data.Faces[6] != 4 {
		t.Errorf("Expected second instance faces to start at 4, got %d", data.Faces[6])
	}
}

func TestReadGLTFMesh_Errors(t *testing.T) {
	t.Run("no triangles", func(t *testing.T) {
		doc := quadDocument()
		doc.Meshes[0].Primitives[0].Mode = gltf.PrimitiveLines
		_, err := ReadGLTFMesh(doc)
		if !errors.Is(err, ErrNoTriangles) {
			t.Errorf("Expected ErrNoTriangles, got %v", err)
		}
	})

	t.Run("index out of range", func(t *testing.T) {
		doc := quadDocument()
		data := doc.Buffers[0].Data
		// Overwrite the last index with 9
		binary.LittleEndian.PutUint16(data[len(data)-2:], 9)
		if _, err := ReadGLTFMesh(doc); err == nil {
			t.Error("Expected error for out of range index")
		}
	})

	t.Run("truncated buffer", func(t *testing.T) {
		doc := quadDocument()
		doc.Accessors[0].Count = 100
		if _, err := ReadGLTFMesh(doc); err == nil {
			t.Error("Expected error for accessor past end of buffer")
		}
	})

	t.Run("buffer view out of range", func(t *testing.T) {
		doc := quadDocument()
		doc.Accessors[0].BufferView = intPtr(5)
		if _, err := ReadGLTFMesh(doc); err == nil {
			t.Error("Expected error for missing buffer view")
		}
	})

	t.Run("buffer out of range", func(t *testing.T) {
		doc := quadDocument()
		doc.BufferViews[1].Buffer = 3
		if _, err := ReadGLTFMesh(doc); err == nil {
			t.Error("Expected error for missing buffer")
		}
	})

	t.Run("position accessor out of range", func(t *testing.T) {
		doc := quadDocument()
		doc.Meshes[0].Primitives[0].Attributes[gltf.POSITION] = 9
		if _, err := ReadGLTFMesh(doc); err == nil {
			t.Error("Expected error for missing position accessor")
		}
	})

	t.Run("empty accessor past end of buffer", func(t *testing.T) {
		doc := quadDocument()
		doc.Accessors[0].Count = 0
		doc.Accessors[0].ByteOffset = 1000
		if _, err := ReadGLTFMesh(doc); err == nil {
			t.Error("Expected error for accessor offset past end of buffer")
		}
	})

	t.Run("stride shorter than element", func(t *testing.T) {
		doc := quadDocument()
		doc.BufferViews[0].ByteStride = 4
		if _, err := ReadGLTFMesh(doc); err == nil {
			t.Error("Expected error for undersized stride")
		}
	})

	t.Run("cyclic nodes", func(t *testing.T) {
		doc := quadDocument()
		doc.Nodes = []*gltf.Node{{Children: []int{1}}, {Children: []int{0}}}
		doc.Scenes = []*gltf.Scene{{Nodes: []int{0}}}
		if _, err := ReadGLTFMesh(doc); err == nil {
			t.Error("Expected error for cyclic node hierarchy")
		}
	})
}

func TestLoadGLTFMesh_BinaryFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quad.glb")
	if err := gltf.SaveBinary(quadDocument(), path); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	mesh, err := LoadGLTFMesh(path, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if mesh.TriangleCount() != 2 {
		t.Errorf("Expected 2 triangles, got %d", mesh.TriangleCount())
	}

	ray := core.NewRay(core.NewVec3(0.25, 0.5, 1), core.NewVec3(0, 0, -1))
	hit, ok := mesh.Hit(ray, 0.001, math.Inf(1), nil)
	if !ok {
		t.Fatal("Expected ray to hit the loaded quad")
	}
	if math.Abs(hit.T-1) > 1e-6 {
		t.Errorf("Expected hit at t=1, got %f", hit.T)
	}
}

func TestLoadGLTF_MissingFile(t *testing.T) {
	if _, err := LoadGLTF(filepath.Join(t.TempDir(), "missing.glb")); err == nil {
		t.Error("Expected error for missing file")
	}
}
