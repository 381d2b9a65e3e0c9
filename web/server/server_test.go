package server

import (
	"bufio"
	"encoding/json"
	"image/png"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-bvh-pathtracer/pkg/scene"
)

func newTestServer(t *testing.T) (*Server, *recordingLogger) {
	t.Helper()
	logger := &recordingLogger{}
	return NewServer(0, t.TempDir(), logger), logger
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

// sseEvent is one parsed Server-Sent Event
type sseEvent struct {
	name string
	data string
}

func parseSSE(t *testing.T, body string) []sseEvent {
	t.Helper()
	var events []sseEvent
	var current sseEvent
	scanner := bufio.NewScanner(strings.NewReader(body))
	scanner.Buffer(make([]byte, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			current.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			current.data = strings.TrimPrefix(line, "data: ")
		case line == "" && current.name != "":
			events = append(events, current)
			current = sseEvent{}
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("Failed to read SSE stream: %v", err)
	}
	return events
}

func TestHandleHealth(t *testing.T) {
	s, logger := newTestServer(t)
	rec := get(t, s, "/api/health")

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("Expected status ok, got %q", body["status"])
	}

	if len(logger.lines) != 1 || !strings.HasPrefix(logger.lines[0], "GET /api/health 200") {
		t.Errorf("Expected one request log line, got %q", logger.lines)
	}
}

func TestHandleScenes(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "teapot.glb"), nil, 0644); err != nil {
		t.Fatalf("Failed to create mesh file: %v", err)
	}
	s := NewServer(0, dir, &recordingLogger{})

	rec := get(t, s, "/api/scenes")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response scene.ScenesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(response.Groups) != 2 {
		t.Fatalf("Expected 2 scene groups, got %d", len(response.Groups))
	}
	if got := len(response.Groups[0].Scenes); got != len(scene.BuiltinScenes()) {
		t.Errorf("Expected %d built-in scenes, got %d", len(scene.BuiltinScenes()), got)
	}
	meshes := response.Groups[1].Scenes
	if len(meshes) != 1 || meshes[0].ID != "gltf:teapot" {
		t.Errorf("Expected discovered mesh gltf:teapot, got %+v", meshes)
	}
}

func TestHandleSceneConfig(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/api/scene-config?scene=cornell")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	var body struct {
		Scene    string `json:"scene"`
		Lights   int    `json:"lights"`
		Defaults struct {
			SamplesPerPixel int `json:"samplesPerPixel"`
			MaxDepth        int `json:"maxDepth"`
		} `json:"defaults"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body.Scene != "cornell" || body.Lights != 1 {
		t.Errorf("Expected cornell with 1 light, got %q with %d", body.Scene, body.Lights)
	}
	if body.Defaults.SamplesPerPixel != 100 || body.Defaults.MaxDepth != 50 {
		t.Errorf("Expected default sampling 100/50, got %d/%d", body.Defaults.SamplesPerPixel, body.Defaults.MaxDepth)
	}

	if rec := get(t, s, "/api/scene-config?scene=nope"); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for unknown scene, got %d", rec.Code)
	}
}

func TestHandleImage(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/api/image?scene=cornell&width=16&samples=1&depth=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Expected image/png, got %q", ct)
	}
	if got := rec.Header().Get("X-Render-Samples"); got != "256" {
		t.Errorf("Expected 256 kept samples, got %q", got)
	}

	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatalf("Failed to decode PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 16 {
		t.Errorf("Expected 16x16 image, got %v", b)
	}
}

func TestHandleImage_Errors(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name   string
		target string
		status int
	}{
		{"unknown scene", "/api/image?scene=nope&width=16", http.StatusNotFound},
		{"width too small", "/api/image?scene=cornell&width=4", http.StatusBadRequest},
		{"bad samples", "/api/image?scene=cornell&samples=many", http.StatusBadRequest},
		{"bad seed", "/api/image?scene=cornell&seed=x", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := get(t, s, tt.target); rec.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, rec.Code)
			}
		})
	}
}

func TestHandleRender_StreamsProgress(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/api/render?scene=cornell&width=16&samples=1&depth=2")
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Expected text/event-stream, got %q", ct)
	}

	events := parseSSE(t, rec.Body.String())
	counts := make(map[string]int)
	for _, e := range events {
		counts[e.name]++
	}
	if counts["progress"] != 16 {
		t.Errorf("Expected 16 progress events, got %d", counts["progress"])
	}
	if counts["console"] == 0 {
		t.Error("Expected console events from the render log")
	}
	if counts["error"] != 0 {
		t.Errorf("Expected no error events, got %d", counts["error"])
	}

	last := events[len(events)-1]
	if last.name != "complete" {
		t.Fatalf("Expected final event 'complete', got %q", last.name)
	}
	var result RenderResult
	if err := json.Unmarshal([]byte(last.data), &result); err != nil {
		t.Fatalf("Failed to decode result: %v", err)
	}
	if result.Width != 16 || result.Height != 16 {
		t.Errorf("Expected 16x16 result, got %dx%d", result.Width, result.Height)
	}
	if result.Stats.TotalPixels != 256 || result.Stats.SamplesPerPixel != 1 {
		t.Errorf("Unexpected stats: %+v", result.Stats)
	}
	if result.ImageData == "" {
		t.Error("Expected image data")
	}
}

func TestHandleRender_InvalidRequest(t *testing.T) {
	s, _ := newTestServer(t)

	for _, target := range []string{
		"/api/render?width=99999",
		"/api/render?scene=nope&width=16",
	} {
		events := parseSSE(t, get(t, s, target).Body.String())
		if len(events) != 1 || events[0].name != "error" {
			t.Errorf("%s: expected a single error event, got %+v", target, events)
		}
	}
}

func TestHandleInspect(t *testing.T) {
	s, _ := newTestServer(t)

	// Left edge, vertical center: the camera looks down +Z, so the left of
	// the image is the green wall at x=555
	rec := get(t, s, "/api/inspect?scene=cornell&width=16&x=1&y=8")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var response InspectResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !response.Hit {
		t.Fatal("Expected inspection ray to hit")
	}
	if response.GeometryType != "rect" || response.MaterialType != "lambertian" {
		t.Errorf("Expected lambertian rect, got %s %s", response.MaterialType, response.GeometryType)
	}
	if math.Abs(response.Point[0]-555) > 1e-6 {
		t.Errorf("Expected hit on x=555, got %v", response.Point)
	}
	if response.Normal[0] != -1 {
		t.Errorf("Expected normal facing the camera side (-X), got %v", response.Normal)
	}
}

func TestHandleInspect_OutOfBounds(t *testing.T) {
	s, _ := newTestServer(t)

	for _, target := range []string{
		"/api/inspect?scene=cornell&width=16&x=16&y=0",
		"/api/inspect?scene=cornell&width=16&x=0",
		"/api/inspect?scene=nope&width=16&x=0&y=0",
	} {
		if rec := get(t, s, target); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected status 400, got %d", target, rec.Code)
		}
	}
}
