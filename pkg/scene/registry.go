package scene

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/df07/go-bvh-pathtracer/pkg/loaders"
)

// ErrUnknownScene is returned when a scene ID matches no built-in scene or mesh file
var ErrUnknownScene = errors.New("unknown scene")

const (
	builtinGroup = "Built-in Scenes"
	gltfGroup    = "glTF Meshes"
	gltfPrefix   = "gltf:"
)

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`                 // Unique identifier
	Name        string `json:"name"`               // Display name
	Description string `json:"description"`        // Optional description
	Group       string `json:"group"`              // Grouping category
	Type        string `json:"type"`               // "builtin" or "gltf"
	FilePath    string `json:"filePath,omitempty"` // Mesh file (gltf type only)
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

// ScenesResponse represents the complete response for /api/scenes
type ScenesResponse struct {
	Groups []SceneGroup `json:"groups"`
}

// Constructor builds a scene before preprocessing
type Constructor func(opts Options) (*Scene, error)

type builtinScene struct {
	info   SceneInfo
	create Constructor
}

func builtin(id, description string, create Constructor) builtinScene {
	return builtinScene{
		info: SceneInfo{
			ID:          id,
			Name:        titleCase(id),
			Description: description,
			Group:       builtinGroup,
			Type:        "builtin",
		},
		create: create,
	}
}

var builtinScenes = []builtinScene{
	builtin("random-spheres", "Field of random diffuse, metal and glass spheres", NewRandomSpheresScene),
	builtin("three-spheres", "Diffuse, hollow glass and metal spheres", NewThreeSpheresScene),
	builtin("perlin-spheres", "Two spheres with Perlin marble texture", NewPerlinSpheresScene),
	builtin("checker-spheres", "Two spheres with a 3D checker texture", NewCheckerSpheresScene),
	builtin("earth", "Image-textured globe", NewEarthScene),
	builtin("simple-light", "Marble spheres lit by a rectangle light", NewSimpleLightScene),
	builtin("cornell", "Cornell box with a mirror block and a glass sphere", NewCornellScene),
	builtin("cornell-smoke", "Cornell box with blocks of smoke", NewCornellSmokeScene),
	builtin("final", "Boxes, media, textures and instanced sphere cluster", NewFinalScene),
	builtin("mesh", "Triangle mesh from a glTF file, or a tetrahedron", NewMeshScene),
}

// BuiltinScenes returns the built-in scenes in display order
func BuiltinScenes() []SceneInfo {
	infos := make([]SceneInfo, len(builtinScenes))
	for i, b := range builtinScenes {
		infos[i] = b.info
	}
	return infos
}

// ListGLTFScenes scans dir for .gltf and .glb files. A missing directory
// yields an empty list.
func ListGLTFScenes(dir string) ([]SceneInfo, error) {
	if dir == "" {
		return []SceneInfo{}, nil
	}
	if _, err := os.Stat(dir); err != nil {
		return []SceneInfo{}, nil
	}

	var scenes []SceneInfo
	for _, pattern := range []string{"*.gltf", "*.glb"} {
		files, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
		}
		for _, filePath := range files {
			base := filepath.Base(filePath)
			name := strings.TrimSuffix(base, filepath.Ext(base))
			scenes = append(scenes, SceneInfo{
				ID:          gltfPrefix + name,
				Name:        titleCase(name),
				Description: base,
				Group:       gltfGroup,
				Type:        "gltf",
				FilePath:    filePath,
			})
		}
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].Name < scenes[j].Name
	})
	return scenes, nil
}

// ListAllScenes returns built-in scenes and the meshes found in scenesDir,
// grouped by category with built-in scenes first
func ListAllScenes(scenesDir string) (ScenesResponse, error) {
	var response ScenesResponse

	gltfScenes, err := ListGLTFScenes(scenesDir)
	if err != nil {
		return response, fmt.Errorf("failed to list glTF scenes: %w", err)
	}

	allScenes := append(BuiltinScenes(), gltfScenes...)

	groupMap := make(map[string][]SceneInfo)
	for _, info := range allScenes {
		groupMap[info.Group] = append(groupMap[info.Group], info)
	}

	var groupNames []string
	for groupName := range groupMap {
		if groupName != builtinGroup {
			groupNames = append(groupNames, groupName)
		}
	}
	sort.Strings(groupNames)

	if builtInGroup, exists := groupMap[builtinGroup]; exists {
		response.Groups = append(response.Groups, SceneGroup{Name: builtinGroup, Scenes: builtInGroup})
	}
	for _, groupName := range groupNames {
		response.Groups = append(response.Groups, SceneGroup{Name: groupName, Scenes: groupMap[groupName]})
	}

	return response, nil
}

// New builds and preprocesses the scene with the given ID. IDs of the form
// "gltf:<name>" load <name>.glb or <name>.gltf from scenesDir.
func New(id string, opts Options, scenesDir string) (*Scene, error) {
	s, err := construct(id, opts, scenesDir)
	if err != nil {
		return nil, err
	}
	if err := s.Preprocess(); err != nil {
		return nil, err
	}
	return s, nil
}

func construct(id string, opts Options, scenesDir string) (*Scene, error) {
	for _, b := range builtinScenes {
		if b.info.ID == id {
			return b.create(opts)
		}
	}

	if name, ok := strings.CutPrefix(id, gltfPrefix); ok {
		infos, err := ListGLTFScenes(scenesDir)
		if err != nil {
			return nil, err
		}
		for _, info := range infos {
			if info.ID == id {
				mesh, err := loaders.LoadGLTFMesh(info.FilePath, meshMaterial())
				if err != nil {
					return nil, fmt.Errorf("scene %q: %w", id, err)
				}
				return newMeshShowcase(name, mesh)
			}
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownScene, id)
}

// titleCase converts a filename-style string to title case
// e.g., "cornell-smoke" -> "Cornell Smoke"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}

	return strings.Join(words, " ")
}
