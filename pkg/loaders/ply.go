package loaders

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/geometry"
)

// ErrUnsupportedMeshFormat is returned for mesh files with an unknown extension
var ErrUnsupportedMeshFormat = errors.New("unsupported mesh format")

// PLYHeader represents the parsed header information from a PLY file
type PLYHeader struct {
	Format   string // "binary_little_endian", "binary_big_endian", or "ascii"
	Version  string // Usually "1.0"
	Elements []PLYElement
}

// PLYElement is one element block declared in the header, such as vertex or face
type PLYElement struct {
	Name       string
	Count      int
	Properties []PLYProperty
}

// PLYProperty represents a property definition in the PLY header
type PLYProperty struct {
	Name     string
	Type     string // Scalar type, or the item type of a list
	IsList   bool
	ListType string // For list properties, the type of the count
}

// LoadMesh loads a triangle mesh from a .ply, .gltf or .glb file
func LoadMesh(path string, mat core.Material) (*geometry.TriangleMesh, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ply":
		return LoadPLYMesh(path, mat)
	case ".gltf", ".glb":
		return LoadGLTFMesh(path, mat)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMeshFormat, path)
	}
}

// LoadPLY reads the vertex positions and faces of a PLY file
func LoadPLY(path string) (*MeshData, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PLY file: %w", err)
	}
	defer file.Close()

	data, err := ReadPLY(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}

// LoadPLYMesh loads a PLY file as a single triangle mesh with one material
func LoadPLYMesh(path string, mat core.Material) (*geometry.TriangleMesh, error) {
	data, err := LoadPLY(path)
	if err != nil {
		return nil, err
	}
	return geometry.NewTriangleMesh(data.Vertices, data.Faces, mat, nil)
}

// ReadPLY decodes ascii and binary PLY data. Polygons with more than three
// vertices are split into triangle fans; elements other than vertex and face
// are skipped.
func ReadPLY(r io.Reader) (*MeshData, error) {
	reader := bufio.NewReaderSize(r, 1<<20)

	header, err := parsePLYHeader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PLY header: %w", err)
	}

	var source plyValueReader
	switch header.Format {
	case "ascii":
		source = &plyASCIIReader{reader: reader}
	case "binary_little_endian":
		source = &plyBinaryReader{reader: reader, order: binary.LittleEndian}
	case "binary_big_endian":
		source = &plyBinaryReader{reader: reader, order: binary.BigEndian}
	default:
		return nil, fmt.Errorf("unsupported PLY format: %s", header.Format)
	}

	data := &MeshData{}
	for _, element := range header.Elements {
		switch element.Name {
		case "vertex":
			err = readPLYVertices(source, element, data)
		case "face":
			err = readPLYFaces(source, element, data)
		default:
			err = skipPLYElement(source, element)
		}
		if err != nil {
			return nil, err
		}
	}

	if len(data.Faces) == 0 {
		return nil, ErrNoTriangles
	}
	for _, index := range data.Faces {
		if index < 0 || index >= len(data.Vertices) {
			return nil, fmt.Errorf("face index %d out of range for %d vertices", index, len(data.Vertices))
		}
	}
	return data, nil
}

// parsePLYHeader parses the header up to and including end_header
func parsePLYHeader(reader *bufio.Reader) (*PLYHeader, error) {
	header := &PLYHeader{}

	magic, err := reader.ReadString('\n')
	if err != nil || strings.TrimSpace(magic) != "ply" {
		return nil, errors.New("missing ply magic number")
	}

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("error reading header: %w", err)
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "end_header":
			if header.Format == "" {
				return nil, errors.New("header has no format line")
			}
			return header, nil
		case "format":
			if len(parts) < 3 {
				return nil, fmt.Errorf("invalid format line: %q", strings.TrimSpace(line))
			}
			header.Format = parts[1]
			header.Version = parts[2]
		case "comment", "obj_info":
		case "element":
			if len(parts) < 3 {
				return nil, fmt.Errorf("invalid element line: %q", strings.TrimSpace(line))
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil || count < 0 {
				return nil, fmt.Errorf("invalid element count: %s", parts[2])
			}
			header.Elements = append(header.Elements, PLYElement{Name: parts[1], Count: count})
		case "property":
			if len(header.Elements) == 0 {
				return nil, errors.New("property declared before any element")
			}
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return nil, err
			}
			element := &header.Elements[len(header.Elements)-1]
			element.Properties = append(element.Properties, prop)
		default:
			return nil, fmt.Errorf("unknown header keyword: %s", parts[0])
		}
	}
}

// parsePLYProperty parses the fields after the property keyword
func parsePLYProperty(parts []string) (PLYProperty, error) {
	if len(parts) >= 4 && parts[0] == "list" {
		prop := PLYProperty{Name: parts[3], Type: parts[2], IsList: true, ListType: parts[1]}
		if plyTypeSize(prop.ListType) == 0 || plyTypeSize(prop.Type) == 0 {
			return PLYProperty{}, fmt.Errorf("unknown type in list property %s", prop.Name)
		}
		return prop, nil
	}
	if len(parts) != 2 || parts[0] == "list" {
		return PLYProperty{}, fmt.Errorf("invalid property definition: %q", strings.Join(parts, " "))
	}
	if plyTypeSize(parts[0]) == 0 {
		return PLYProperty{}, fmt.Errorf("unknown type %s for property %s", parts[0], parts[1])
	}
	return PLYProperty{Name: parts[1], Type: parts[0]}, nil
}

// plyTypeSize returns the byte size of a scalar type, 0 when unknown
func plyTypeSize(dataType string) int {
	switch dataType {
	case "char", "uchar", "int8", "uint8":
		return 1
	case "short", "ushort", "int16", "uint16":
		return 2
	case "int", "uint", "float", "int32", "uint32", "float32":
		return 4
	case "double", "float64":
		return 8
	default:
		return 0
	}
}

// maxPLYPrealloc bounds slice capacity taken from header counts; larger
// meshes grow by append as the body is read
const maxPLYPrealloc = 1 << 16

func readPLYVertices(source plyValueReader, element PLYElement, data *MeshData) error {
	position := [3]int{-1, -1, -1}
	for i, prop := range element.Properties {
		switch prop.Name {
		case "x":
			position[0] = i
		case "y":
			position[1] = i
		case "z":
			position[2] = i
		}
	}
	for _, index := range position {
		if index < 0 || element.Properties[index].IsList {
			return errors.New("vertex element needs scalar x, y and z properties")
		}
	}

	data.Vertices = make([]core.Vec3, 0, min(element.Count, maxPLYPrealloc))
	values := make([]float64, len(element.Properties))
	for v := 0; v < element.Count; v++ {
		for i, prop := range element.Properties {
			if prop.IsList {
				if err := skipPLYList(source, prop); err != nil {
					return fmt.Errorf("vertex %d: %w", v, err)
				}
				continue
			}
			value, err := source.read(prop.Type)
			if err != nil {
				return fmt.Errorf("vertex %d: %w", v, err)
			}
			values[i] = value
		}
		data.Vertices = append(data.Vertices, core.NewVec3(values[position[0]], values[position[1]], values[position[2]]))
	}
	return nil
}

func readPLYFaces(source plyValueReader, element PLYElement, data *MeshData) error {
	data.Faces = make([]int, 0, 3*min(element.Count, maxPLYPrealloc))
	var polygon []int
	for f := 0; f < element.Count; f++ {
		for _, prop := range element.Properties {
			if !prop.IsList || (prop.Name != "vertex_indices" && prop.Name != "vertex_index") {
				if err := skipPLYProperty(source, prop); err != nil {
					return fmt.Errorf("face %d: %w", f, err)
				}
				continue
			}

			count, err := source.read(prop.ListType)
			if err != nil {
				return fmt.Errorf("face %d: %w", f, err)
			}
			polygon = polygon[:0]
			for i := 0; i < int(count); i++ {
				index, err := source.read(prop.Type)
				if err != nil {
					return fmt.Errorf("face %d: %w", f, err)
				}
				polygon = append(polygon, int(index))
			}
			for i := 1; i+1 < len(polygon); i++ {
				data.Faces = append(data.Faces, polygon[0], polygon[i], polygon[i+1])
			}
		}
	}
	return nil
}

func skipPLYElement(source plyValueReader, element PLYElement) error {
	for i := 0; i < element.Count; i++ {
		for _, prop := range element.Properties {
			if err := skipPLYProperty(source, prop); err != nil {
				return fmt.Errorf("%s %d: %w", element.Name, i, err)
			}
		}
	}
	return nil
}

func skipPLYProperty(source plyValueReader, prop PLYProperty) error {
	if prop.IsList {
		return skipPLYList(source, prop)
	}
	_, err := source.read(prop.Type)
	return err
}

func skipPLYList(source plyValueReader, prop PLYProperty) error {
	count, err := source.read(prop.ListType)
	if err != nil {
		return err
	}
	for i := 0; i < int(count); i++ {
		if _, err := source.read(prop.Type); err != nil {
			return err
		}
	}
	return nil
}

// plyValueReader reads one scalar of the given PLY type from the body
type plyValueReader interface {
	read(dataType string) (float64, error)
}

type plyASCIIReader struct {
	reader *bufio.Reader
	fields []string
}

func (r *plyASCIIReader) read(dataType string) (float64, error) {
	for len(r.fields) == 0 {
		line, err := r.reader.ReadString('\n')
		r.fields = strings.Fields(line)
		if len(r.fields) == 0 && err != nil {
			return 0, fmt.Errorf("unexpected end of data: %w", io.ErrUnexpectedEOF)
		}
	}
	field := r.fields[0]
	r.fields = r.fields[1:]

	value, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q", dataType, field)
	}
	return value, nil
}

type plyBinaryReader struct {
	reader *bufio.Reader
	order  binary.ByteOrder
	buf    [8]byte
}

func (r *plyBinaryReader) read(dataType string) (float64, error) {
	size := plyTypeSize(dataType)
	b := r.buf[:size]
	if _, err := io.ReadFull(r.reader, b); err != nil {
		return 0, fmt.Errorf("unexpected end of data: %w", io.ErrUnexpectedEOF)
	}

	switch dataType {
	case "char", "int8":
		return float64(int8(b[0])), nil
	case "uchar", "uint8":
		return float64(b[0]), nil
	case "short", "int16":
		return float64(int16(r.order.Uint16(b))), nil
	case "ushort", "uint16":
		return float64(r.order.Uint16(b)), nil
	case "int", "int32":
		return float64(int32(r.order.Uint32(b))), nil
	case "uint", "uint32":
		return float64(r.order.Uint32(b)), nil
	case "float", "float32":
		return float64(math.Float32frombits(r.order.Uint32(b))), nil
	default:
		return math.Float64frombits(r.order.Uint64(b)), nil
	}
}
