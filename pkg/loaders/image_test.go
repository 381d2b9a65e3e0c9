package loaders

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
)

func encodeTestPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})   // top-left red
	img.Set(1, 0, color.RGBA{0, 255, 0, 255})   // top-right green
	img.Set(0, 1, color.RGBA{0, 0, 255, 255})   // bottom-left blue
	img.Set(1, 1, color.RGBA{255, 255, 255, 255})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeImageTexture(t *testing.T) {
	texture, err := DecodeImageTexture(bytes.NewReader(encodeTestPNG(t)))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if texture.Width != 2 || texture.Height != 2 {
		t.Fatalf("Expected 2x2 texture, got %dx%d", texture.Width, texture.Height)
	}

	tests := []struct {
		name     string
		uv       core.Vec2
		expected core.Vec3
	}{
		{"bottom-left", core.NewVec2(0.1, 0.1), core.NewVec3(0, 0, 1)},
		{"top-left", core.NewVec2(0.1, 0.9), core.NewVec3(1, 0, 0)},
		{"top-right", core.NewVec2(0.9, 0.9), core.NewVec3(0, 1, 0)},
		{"bottom-right", core.NewVec2(0.9, 0.1), core.NewVec3(1, 1, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := texture.Evaluate(tt.uv, core.Vec3{})
			if got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestLoadImageTexture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.png")
	if err := os.WriteFile(path, encodeTestPNG(t), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	texture, err := LoadImageTexture(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(texture.Pixels) != 4 {
		t.Errorf("Expected 4 pixels, got %d", len(texture.Pixels))
	}

	if _, err := LoadImageTexture(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("Expected error for missing file")
	}
	if _, err := DecodeImageTexture(bytes.NewReader([]byte("not an image"))); err == nil {
		t.Error("Expected error for invalid image data")
	}
}
