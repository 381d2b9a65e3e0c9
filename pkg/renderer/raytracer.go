package renderer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/integrator"
	"github.com/df07/go-bvh-pathtracer/pkg/scene"
)

// ErrSceneNotPreprocessed is returned when a scene without a BVH is rendered
var ErrSceneNotPreprocessed = errors.New("scene has not been preprocessed")

// Raytracer renders a scene scanline by scanline. The pixels of each
// scanline are split into chunks rendered concurrently; the scene is shared
// read-only and every chunk owns its sampler.
type Raytracer struct {
	scene      *scene.Scene
	integrator integrator.Integrator
	config     RenderConfig
	sampling   scene.SamplingConfig
	width      int
	height     int
	logger     core.Logger

	// OnProgress, when set, is called after each scanline from the render goroutine
	OnProgress func(Progress)
}

// NewRaytracer creates a raytracer for a preprocessed scene. The image height
// follows the camera aspect ratio. A nil integrator uses path tracing with the
// scene's sampling config; a nil logger discards output.
func NewRaytracer(sc *scene.Scene, integ integrator.Integrator, config RenderConfig, logger core.Logger) (*Raytracer, error) {
	if sc == nil || sc.BVH == nil || sc.Camera == nil {
		return nil, ErrSceneNotPreprocessed
	}
	if config.Width <= 0 {
		return nil, fmt.Errorf("invalid image width %d", config.Width)
	}
	if sc.SamplingConfig.SamplesPerPixel <= 0 {
		return nil, fmt.Errorf("invalid samples per pixel %d", sc.SamplingConfig.SamplesPerPixel)
	}

	aspect := sc.CameraConfig.AspectRatio
	if aspect <= 0 {
		return nil, fmt.Errorf("invalid camera aspect ratio %g", aspect)
	}
	height := int(float64(config.Width) / aspect)
	if height <= 0 {
		return nil, fmt.Errorf("image height is zero for width %d and aspect ratio %g", config.Width, aspect)
	}

	if integ == nil {
		integ = integrator.NewPathTracingIntegrator(sc.SamplingConfig)
	}
	if config.NumWorkers <= 0 {
		config.NumWorkers = LogicalCPUCount()
	}
	if logger == nil {
		logger = discardLogger{}
	}

	return &Raytracer{
		scene:      sc,
		integrator: integ,
		config:     config,
		sampling:   sc.SamplingConfig,
		width:      config.Width,
		height:     height,
		logger:     logger,
	}, nil
}

// Size returns the output image dimensions
func (rt *Raytracer) Size() (width, height int) {
	return rt.width, rt.height
}

// chunkSeed derives the sampler seed of one chunk of one scanline
func chunkSeed(seed int64, row, chunk int) int64 {
	return seed ^ int64(row)<<32 ^ int64(chunk)
}

// Render traces every pixel and returns the gamma-corrected image. Scanlines
// are rendered from the bottom of the image up; cancelling ctx stops the
// render after the current scanline.
func (rt *Raytracer) Render(ctx context.Context) (*image.RGBA, RenderStats, error) {
	img := image.NewRGBA(image.Rect(0, 0, rt.width, rt.height))
	stats := RenderStats{SamplesPerPixel: rt.sampling.SamplesPerPixel}

	start := time.Now()
	progress := newProgressReporter(rt.logger, start)

	chunkSize := (rt.width + rt.config.NumWorkers - 1) / rt.config.NumWorkers
	numChunks := (rt.width + chunkSize - 1) / chunkSize
	chunkStats := make([]RenderStats, numChunks)

	for j := rt.height - 1; j >= 0; j-- {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		lineStart := time.Now()

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(rt.config.NumWorkers)
		for c := 0; c < numChunks; c++ {
			c := c
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				x0 := c * chunkSize
				x1 := min(x0+chunkSize, rt.width)
				sampler := core.NewSeededSampler(chunkSeed(rt.config.Seed, j, c))
				chunkStats[c] = rt.renderSpan(img, j, x0, x1, sampler)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, stats, err
		}

		for _, cs := range chunkStats {
			stats.add(cs)
		}

		p := progress.rowDone(j, j, time.Since(lineStart), stats.DiscardedSamples, time.Now())
		if rt.OnProgress != nil {
			rt.OnProgress(p)
		}
	}

	stats.Duration = time.Since(start)
	rt.logger.Printf("Total render time: %.3f [s]\n", stats.Duration.Seconds())
	if stats.DiscardedSamples > 0 {
		rt.logger.Printf("Discarded %d non-finite samples\n", stats.DiscardedSamples)
	}
	return img, stats, nil
}

// renderSpan renders pixels [x0, x1) of scanline j (counted from the bottom)
func (rt *Raytracer) renderSpan(img *image.RGBA, j, x0, x1 int, sampler core.Sampler) RenderStats {
	var stats RenderStats
	du := float64(max(rt.width-1, 1))
	dv := float64(max(rt.height-1, 1))

	for i := x0; i < x1; i++ {
		var ps PixelStats
		for s := 0; s < rt.sampling.SamplesPerPixel; s++ {
			u := (float64(i) + sampler.Get1D()) / du
			v := (float64(j) + sampler.Get1D()) / dv
			ray := rt.scene.Camera.GetRay(u, v, sampler)
			ps.AddSample(rt.integrator.RayColor(ray, rt.scene, sampler))
		}

		img.SetRGBA(i, rt.height-1-j, vec3ToColor(ps.GetColor()))
		stats.TotalPixels++
		stats.TotalSamples += ps.SampleCount
		stats.DiscardedSamples += ps.Discarded
	}
	return stats
}

// vec3ToColor applies gamma 2 correction and quantizes to 8 bits per channel
func vec3ToColor(c core.Vec3) color.RGBA {
	c = c.Clamp(0.0, 1.0).Sqrt()
	return color.RGBA{
		R: uint8(255 * c.X),
		G: uint8(255 * c.Y),
		B: uint8(255 * c.Z),
		A: 255,
	}
}
