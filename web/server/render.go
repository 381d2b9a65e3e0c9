package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/renderer"
	"github.com/df07/go-bvh-pathtracer/pkg/scene"
)

const (
	defaultScene = "cornell"
	defaultWidth = 400
	defaultSeed  = 42
)

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene   string `json:"scene"`   // Scene ID (e.g., "cornell")
	Width   int    `json:"width"`   // Image width; height follows the scene aspect ratio
	Samples int    `json:"samples"` // Samples per pixel; 0 keeps the scene default
	Depth   int    `json:"depth"`   // Maximum bounce depth; 0 keeps the scene default
	Seed    int64  `json:"seed"`    // Seed for the scene layout and the samplers
}

// ProgressUpdate is sent via SSE after each scanline
type ProgressUpdate struct {
	Row       int     `json:"row"`
	RowsDone  int     `json:"rowsDone"`
	TotalRows int     `json:"totalRows"`
	LineMs    float64 `json:"lineMs"`
	EtaMs     int64   `json:"etaMs"`
	ElapsedMs int64   `json:"elapsedMs"`
	Discarded int     `json:"discarded"`
}

// Stats represents render statistics
type Stats struct {
	TotalPixels      int   `json:"totalPixels"`
	TotalSamples     int   `json:"totalSamples"`
	DiscardedSamples int   `json:"discardedSamples"`
	SamplesPerPixel  int   `json:"samplesPerPixel"`
	Primitives       int   `json:"primitives"`
	DurationMs       int64 `json:"durationMs"`
}

// RenderResult is the final SSE event of a render
type RenderResult struct {
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	ImageData string `json:"imageData"` // Base64 encoded PNG
	Stats     Stats  `json:"stats"`
}

// parseRenderRequest parses and validates the query parameters of a render
func parseRenderRequest(c echo.Context) (*RenderRequest, error) {
	req := &RenderRequest{Scene: c.QueryParam("scene")}
	if req.Scene == "" {
		req.Scene = defaultScene
	}

	var err error
	if req.Width, err = parseIntParam(c, "width", defaultWidth, minWidth, maxWidth); err != nil {
		return nil, err
	}
	if req.Samples, err = parseIntParam(c, "samples", 0, 1, maxSamples); err != nil {
		return nil, err
	}
	if req.Depth, err = parseIntParam(c, "depth", 0, 1, maxDepth); err != nil {
		return nil, err
	}
	if req.Seed, err = parseInt64Param(c, "seed", defaultSeed); err != nil {
		return nil, err
	}
	return req, nil
}

// setupRaytracer builds the scene and raytracer for a request
func (s *Server) setupRaytracer(req *RenderRequest, logger core.Logger) (*renderer.Raytracer, *scene.Scene, error) {
	opts := scene.DefaultOptions()
	opts.Seed = req.Seed

	sceneObj, err := s.createScene(req.Scene, opts)
	if err != nil {
		return nil, nil, err
	}
	if req.Samples > 0 {
		sceneObj.SamplingConfig.SamplesPerPixel = req.Samples
	}
	if req.Depth > 0 {
		sceneObj.SamplingConfig.MaxDepth = req.Depth
	}

	config := renderer.RenderConfig{Width: req.Width, Seed: req.Seed}
	rt, err := renderer.NewRaytracer(sceneObj, nil, config, logger)
	if err != nil {
		return nil, nil, err
	}
	return rt, sceneObj, nil
}

// renderStats converts renderer statistics for the client
func renderStats(stats renderer.RenderStats, sceneObj *scene.Scene) Stats {
	return Stats{
		TotalPixels:      stats.TotalPixels,
		TotalSamples:     stats.TotalSamples,
		DiscardedSamples: stats.DiscardedSamples,
		SamplesPerPixel:  stats.SamplesPerPixel,
		Primitives:       sceneObj.GetPrimitiveCount(),
		DurationMs:       stats.Duration.Milliseconds(),
	}
}

// handleRender renders a scene and streams console output, per-scanline
// progress and the finished image via SSE
func (s *Server) handleRender(c echo.Context) error {
	s.setSSEHeaders(c.Response())
	c.Response().WriteHeader(http.StatusOK)

	req, err := parseRenderRequest(c)
	if err != nil {
		return s.sendSSEError(c, fmt.Sprintf("Invalid request: %v", err))
	}

	consoleChan := make(chan ConsoleMessage, 256)
	webLogger := NewWebLogger(fmt.Sprintf("render-%d", time.Now().UnixNano()), consoleChan, s.logger)

	rt, sceneObj, err := s.setupRaytracer(req, webLogger)
	if err != nil {
		return s.sendSSEError(c, err.Error())
	}
	_, height := rt.Size()

	// Progress is reported on the handler goroutine, so events can be
	// written directly
	var streamErr error
	rt.OnProgress = func(p renderer.Progress) {
		if streamErr != nil {
			return
		}
		if streamErr = s.flushConsole(c, consoleChan); streamErr != nil {
			return
		}
		streamErr = s.sendSSEJSON(c, "progress", ProgressUpdate{
			Row:       p.Row,
			RowsDone:  height - p.RowsLeft,
			TotalRows: height,
			LineMs:    float64(p.LineTime.Microseconds()) / 1000,
			EtaMs:     p.ETA.Milliseconds(),
			ElapsedMs: p.Elapsed.Milliseconds(),
			Discarded: p.DiscardedSoFar,
		})
	}

	img, stats, err := rt.Render(c.Request().Context())
	if err != nil {
		return s.sendSSEError(c, fmt.Sprintf("Render error: %v", err))
	}
	if streamErr != nil {
		return streamErr
	}
	if err := s.flushConsole(c, consoleChan); err != nil {
		return err
	}

	imageData, err := imageToBase64PNG(img)
	if err != nil {
		return s.sendSSEError(c, fmt.Sprintf("failed to encode image: %v", err))
	}
	bounds := img.Bounds()
	return s.sendSSEJSON(c, "complete", RenderResult{
		Width:     bounds.Dx(),
		Height:    bounds.Dy(),
		ImageData: imageData,
		Stats:     renderStats(stats, sceneObj),
	})
}

// handleImage renders a scene and returns the PNG directly
func (s *Server) handleImage(c echo.Context) error {
	req, err := parseRenderRequest(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	rt, sceneObj, err := s.setupRaytracer(req, nil)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, scene.ErrUnknownScene) {
			status = http.StatusNotFound
		}
		return c.JSON(status, map[string]string{"error": err.Error()})
	}

	img, stats, err := rt.Render(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	var buf bytes.Buffer
	if err := renderer.EncodePNG(&buf, img); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	header := c.Response().Header()
	header.Set("X-Render-Samples", strconv.Itoa(stats.TotalSamples))
	header.Set("X-Render-Discarded", strconv.Itoa(stats.DiscardedSamples))
	header.Set("X-Render-Primitives", strconv.Itoa(sceneObj.GetPrimitiveCount()))
	header.Set("X-Render-Duration-Ms", strconv.FormatInt(stats.Duration.Milliseconds(), 10))
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(r *echo.Response) {
	r.Header().Set(echo.HeaderContentType, "text/event-stream")
	r.Header().Set("Cache-Control", "no-cache")
	r.Header().Set("Connection", "keep-alive")
}

// flushConsole forwards queued console messages without blocking
func (s *Server) flushConsole(c echo.Context, consoleChan <-chan ConsoleMessage) error {
	for {
		select {
		case msg := <-consoleChan:
			if err := s.sendSSEJSON(c, "console", msg); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// sendSSEJSON sends a JSON-encoded SSE event
func (s *Server) sendSSEJSON(c echo.Context, event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.sendSSEEvent(c, event, string(data))
}

// sendSSEError sends an error via SSE
func (s *Server) sendSSEError(c echo.Context, message string) error {
	return s.sendSSEEvent(c, "error", message)
}

// sendSSEEvent sends a generic SSE event and flushes it to the client
func (s *Server) sendSSEEvent(c echo.Context, event, data string) error {
	if _, err := fmt.Fprintf(c.Response(), "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	c.Response().Flush()
	return nil
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := renderer.EncodePNG(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
