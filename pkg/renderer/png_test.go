package renderer

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestSavePNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.SetRGBA(2, 1, color.RGBA{10, 20, 30, 255})

	path := filepath.Join(t.TempDir(), "nested", "render.png")
	if err := SavePNG(path, img); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open output: %v", err)
	}
	defer file.Close()

	decoded, err := png.Decode(file)
	if err != nil {
		t.Fatalf("Failed to decode output: %v", err)
	}
	if decoded.Bounds().Dx() != 3 || decoded.Bounds().Dy() != 2 {
		t.Errorf("Expected 3x2 image, got %v", decoded.Bounds())
	}
	r, g, b, _ := decoded.At(2, 1).RGBA()
	if r>>8 != 10 || g>>8 != 20 || b>>8 != 30 {
		t.Errorf("Expected pixel (10,20,30), got (%d,%d,%d)", r>>8, g>>8, b>>8)
	}
}

func TestDefaultRenderConfig(t *testing.T) {
	config := DefaultRenderConfig()
	if config.Width != 800 {
		t.Errorf("Expected width 800, got %d", config.Width)
	}
	if config.NumWorkers <= 0 {
		t.Errorf("Expected positive worker count, got %d", config.NumWorkers)
	}
}
