package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
	"github.com/df07/go-bvh-pathtracer/pkg/renderer"
	"github.com/df07/go-bvh-pathtracer/pkg/scene"
	"github.com/df07/go-bvh-pathtracer/web/server"
)

// renderOptions holds the flags of the render command
type renderOptions struct {
	sceneID   string
	width     int
	samples   int
	depth     int
	workers   int
	seed      int64
	output    string
	mesh      string
	texture   string
	scenesDir string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(renderer.NewDefaultLogger()).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(logger core.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "pathtracer",
		Short:         "Monte Carlo path tracer with BVH acceleration",
		SilenceUsage:  true,
	}
	root.AddCommand(newRenderCmd(logger), newScenesCmd(), newServeCmd(logger))
	return root
}

func newRenderCmd(logger core.Logger) *cobra.Command {
	defaults := scene.DefaultOptions()
	sampling := scene.DefaultSamplingConfig()
	config := renderer.DefaultRenderConfig()
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a scene to a PNG file",
		Long: "Render a scene to a PNG file.\n\n" +
			"Output defaults to output/<scene>/render_<timestamp>.png",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filename, err := runRender(cmd.Context(), opts, logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Render saved as %s\n", filename)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.sceneID, "scene", "s", "random-spheres", "Scene ID (see the scenes command)")
	flags.IntVarP(&opts.width, "width", "w", config.Width, "Image width; height follows the camera aspect ratio")
	flags.IntVar(&opts.samples, "samples", sampling.SamplesPerPixel, "Samples per pixel")
	flags.IntVar(&opts.depth, "depth", sampling.MaxDepth, "Maximum bounce depth")
	flags.IntVar(&opts.workers, "workers", 0, "Concurrent chunks per scanline (0 = all logical CPUs)")
	flags.Int64Var(&opts.seed, "seed", defaults.Seed, "Seed for random scene layouts and samplers")
	flags.StringVarP(&opts.output, "output", "o", "", "Output PNG path")
	flags.StringVar(&opts.mesh, "mesh", "", "PLY or glTF file for the mesh scene")
	flags.StringVar(&opts.texture, "texture", defaults.TexturePath, "Image for textured scenes")
	flags.StringVar(&opts.scenesDir, "scenes-dir", "scenes", "Directory searched for gltf:<name> scenes")
	return cmd
}

func newScenesCmd() *cobra.Command {
	var scenesDir string
	cmd := &cobra.Command{
		Use:   "scenes",
		Short: "List available scenes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listScenes(cmd.OutOrStdout(), scenesDir)
		},
	}
	cmd.Flags().StringVar(&scenesDir, "scenes-dir", "scenes", "Directory searched for glTF meshes")
	return cmd
}

func newServeCmd(logger core.Logger) *cobra.Command {
	var port int
	var scenesDir string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logSystemInfo(logger)
			return server.NewServer(port, scenesDir, logger).Start()
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to serve on")
	cmd.Flags().StringVar(&scenesDir, "scenes-dir", "scenes", "Directory searched for glTF meshes")
	return cmd
}

// createScene builds and preprocesses the scene with the given ID
func createScene(sceneID string, opts scene.Options, scenesDir string) (*scene.Scene, error) {
	if sceneID == "" {
		return nil, errors.New("scene ID is required")
	}
	return scene.New(sceneID, opts, scenesDir)
}

// runRender renders the configured scene and returns the written file name
func runRender(ctx context.Context, opts *renderOptions, logger core.Logger) (string, error) {
	logSystemInfo(logger)

	sceneOpts := scene.DefaultOptions()
	sceneOpts.Seed = opts.seed
	sceneOpts.MeshPath = opts.mesh
	sceneOpts.TexturePath = opts.texture

	selectedScene, err := createScene(opts.sceneID, sceneOpts, opts.scenesDir)
	if err != nil {
		return "", err
	}
	selectedScene.SamplingConfig = scene.SamplingConfig{
		SamplesPerPixel: opts.samples,
		MaxDepth:        opts.depth,
	}
	logger.Printf("Scene %s: %d primitives, %d lights\n",
		selectedScene.Name, selectedScene.GetPrimitiveCount(), len(selectedScene.Lights))

	config := renderer.RenderConfig{
		Width:      opts.width,
		NumWorkers: opts.workers,
		Seed:       opts.seed,
	}
	raytracer, err := renderer.NewRaytracer(selectedScene, nil, config, logger)
	if err != nil {
		return "", err
	}

	width, height := raytracer.Size()
	logger.Printf("Rendering %dx%d at %d samples per pixel, depth %d\n",
		width, height, opts.samples, opts.depth)

	img, stats, err := raytracer.Render(ctx)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", opts.sceneID, err)
	}
	logger.Printf("Rendered %d pixels with %d samples in %v\n",
		stats.TotalPixels, stats.TotalSamples, stats.Duration.Round(time.Millisecond))

	filename := opts.output
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		dir := strings.ReplaceAll(opts.sceneID, ":", "_")
		filename = filepath.Join("output", dir, fmt.Sprintf("render_%s.png", timestamp))
	}
	if err := renderer.SavePNG(filename, img); err != nil {
		return "", err
	}
	return filename, nil
}

// listScenes prints every scene grouped by category
func listScenes(w io.Writer, scenesDir string) error {
	response, err := scene.ListAllScenes(scenesDir)
	if err != nil {
		return err
	}
	for _, group := range response.Groups {
		fmt.Fprintf(w, "%s:\n", group.Name)
		for _, info := range group.Scenes {
			fmt.Fprintf(w, "  %-18s %s\n", info.ID, info.Description)
		}
	}
	return nil
}

func logSystemInfo(logger core.Logger) {
	info, err := renderer.GetSystemInfo()
	if err != nil {
		logger.Printf("System: %d logical cores (%v)\n", info.LogicalCores, err)
		return
	}
	logger.Printf("System: %s\n", info)
}
