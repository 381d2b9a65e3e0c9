package main

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-bvh-pathtracer/pkg/scene"
)

// testLogger collects log output
type testLogger struct {
	buf bytes.Buffer
}

func (l *testLogger) Printf(format string, args ...interface{}) {
	fmt.Fprintf(&l.buf, format, args...)
}

func TestCreateScene(t *testing.T) {
	tests := []struct {
		name        string
		sceneType   string
		expectError bool
	}{
		{"random spheres", "random-spheres", false},
		{"three spheres", "three-spheres", false},
		{"cornell", "cornell", false},
		{"cornell smoke", "cornell-smoke", false},
		{"simple light", "simple-light", false},
		{"mesh", "mesh", false},

		{"unknown scene", "nonexistent", true},
		{"missing mesh file", "gltf:nonexistent", true},
		{"empty scene name", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, err := createScene(tt.sceneType, scene.DefaultOptions(), t.TempDir())

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error for scene type '%s', but got none", tt.sceneType)
				}
				if sc != nil {
					t.Errorf("Expected nil scene for invalid scene type '%s'", tt.sceneType)
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error for scene type '%s': %v", tt.sceneType, err)
			}
			if sc.BVH == nil || sc.Camera == nil {
				t.Errorf("Expected scene '%s' to be preprocessed", tt.sceneType)
			}
			if sc.CameraConfig.AspectRatio <= 0 {
				t.Errorf("Scene aspect ratio should be positive, got %f", sc.CameraConfig.AspectRatio)
			}
			if len(sc.Shapes) == 0 {
				t.Errorf("Scene '%s' has no shapes", tt.sceneType)
			}
		})
	}
}

func TestRenderCommand(t *testing.T) {
	output := filepath.Join(t.TempDir(), "out", "render.png")
	logger := &testLogger{}

	cmd := newRootCmd(logger)
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{
		"render",
		"--scene", "three-spheres",
		"--width", "24",
		"--samples", "2",
		"--depth", "3",
		"--workers", "2",
		"--output", output,
	})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Render command failed: %v", err)
	}
	if !strings.Contains(stdout.String(), "Render saved as "+output) {
		t.Errorf("Expected saved message, got %q", stdout.String())
	}
	if !strings.Contains(logger.buf.String(), "Rendering 24x13") {
		t.Errorf("Expected render size in log, got %q", logger.buf.String())
	}

	file, err := os.Open(output)
	if err != nil {
		t.Fatalf("Expected output file: %v", err)
	}
	defer file.Close()
	img, err := png.Decode(file)
	if err != nil {
		t.Fatalf("Failed to decode output: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 24 || b.Dy() != 13 {
		t.Errorf("Expected 24x13 image, got %v", b)
	}
}

func TestRenderCommand_UnknownScene(t *testing.T) {
	cmd := newRootCmd(&testLogger{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"render", "--scene", "nope", "--output", filepath.Join(t.TempDir(), "x.png")})

	if err := cmd.Execute(); err == nil {
		t.Error("Expected error for unknown scene")
	}
}

func TestScenesCommand(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "duck.gltf"), []byte("{}"), 0644); err != nil {
		t.Fatalf("Failed to create mesh file: %v", err)
	}

	cmd := newRootCmd(&testLogger{})
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"scenes", "--scenes-dir", dir})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Scenes command failed: %v", err)
	}

	out := stdout.String()
	for _, want := range []string{"Built-in Scenes:", "cornell-smoke", "glTF Meshes:", "gltf:duck"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderCommand_MeshFlagFormats(t *testing.T) {
	flag := newRenderCmd(&testLogger{}).Flags().Lookup("mesh")
	if flag == nil {
		t.Fatal("Expected a mesh flag")
	}
	for _, format := range []string{"PLY", "glTF"} {
		if !strings.Contains(flag.Usage, format) {
			t.Errorf("Expected mesh flag usage to mention %s, got %q", format, flag.Usage)
		}
	}
}
