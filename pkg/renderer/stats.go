package renderer

import (
	"time"

	"github.com/df07/go-bvh-pathtracer/pkg/core"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	TotalPixels      int           // Total number of pixels rendered
	TotalSamples     int           // Samples kept in pixel averages
	DiscardedSamples int           // NaN or infinite samples dropped
	SamplesPerPixel  int           // Samples attempted per pixel
	Duration         time.Duration // Wall time of the render
}

// add merges the counts of another chunk
func (rs *RenderStats) add(other RenderStats) {
	rs.TotalPixels += other.TotalPixels
	rs.TotalSamples += other.TotalSamples
	rs.DiscardedSamples += other.DiscardedSamples
}

// PixelStats accumulates the samples of a single pixel
type PixelStats struct {
	ColorAccum  core.Vec3 // RGB accumulator for final result
	SampleCount int       // Number of samples kept
	Discarded   int       // Number of samples rejected
}

// AddSample adds a color sample to the pixel. Samples with a NaN or infinite
// component are discarded and false is returned.
func (ps *PixelStats) AddSample(color core.Vec3) bool {
	if !color.IsFinite() {
		ps.Discarded++
		return false
	}
	ps.ColorAccum = ps.ColorAccum.Add(color)
	ps.SampleCount++
	return true
}

// GetColor returns the average of the kept samples, black when none were kept
func (ps *PixelStats) GetColor() core.Vec3 {
	return ps.ColorAccum.Multiply(1.0 / float64(max(ps.SampleCount, 1)))
}
