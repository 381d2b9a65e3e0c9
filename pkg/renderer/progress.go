package renderer

import (
	"time"

	"github.com/charmbracelet/harmonica"
	"github.com/df07/go-bvh-pathtracer/pkg/core"
)

// Spring parameters for smoothing the per-scanline time. One update per
// scanline at progressFPS with critical damping settles in a few dozen lines.
const (
	progressFPS       = 60
	progressFrequency = 6.0
	progressDamping   = 1.0
)

// Progress describes the state of a render after a scanline completes
type Progress struct {
	Row            int           // Scanline just finished (counting from the bottom)
	RowsLeft       int           // Scanlines still to render
	LineTime       time.Duration // Time spent on this scanline
	SmoothedLine   time.Duration // Smoothed time per scanline
	ETA            time.Duration // Estimated time remaining
	Elapsed        time.Duration // Time since the render started
	DiscardedSoFar int           // Samples discarded so far
}

// progressReporter turns scanline completions into ETA estimates and log lines
type progressReporter struct {
	logger   core.Logger
	start    time.Time
	spring   harmonica.Spring
	smoothed float64 // seconds per line
	velocity float64
	primed   bool
}

func newProgressReporter(logger core.Logger, start time.Time) *progressReporter {
	return &progressReporter{
		logger: logger,
		start:  start,
		spring: harmonica.NewSpring(harmonica.FPS(progressFPS), progressFrequency, progressDamping),
	}
}

// rowDone records a finished scanline and logs it
func (p *progressReporter) rowDone(row, rowsLeft int, lineTime time.Duration, discarded int, now time.Time) Progress {
	seconds := lineTime.Seconds()
	if !p.primed {
		p.smoothed = seconds
		p.primed = true
	} else {
		p.smoothed, p.velocity = p.spring.Update(p.smoothed, p.velocity, seconds)
	}
	smoothed := max(p.smoothed, 0)

	progress := Progress{
		Row:            row,
		RowsLeft:       rowsLeft,
		LineTime:       lineTime,
		SmoothedLine:   time.Duration(smoothed * float64(time.Second)),
		ETA:            time.Duration(smoothed * float64(rowsLeft) * float64(time.Second)),
		Elapsed:        now.Sub(p.start),
		DiscardedSoFar: discarded,
	}

	p.logger.Printf("# %4d | Line %10.3f [ms] | ETA %9.2f [s] | ELA %9.2f [s]\n",
		row,
		float64(lineTime.Microseconds())/1000,
		progress.ETA.Seconds(),
		progress.Elapsed.Seconds(),
	)
	return progress
}
