package renderer

import (
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
)

// RenderConfig contains image and scheduling configuration
type RenderConfig struct {
	Width      int   // Image width; height follows the camera aspect ratio
	NumWorkers int   // Concurrent pixel chunks per scanline (0 = logical CPU count)
	Seed       int64 // Base seed for the per-chunk samplers
}

// DefaultRenderConfig returns an 800 pixel wide render on every logical CPU
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		Width:      800,
		NumWorkers: LogicalCPUCount(),
		Seed:       42,
	}
}

// LogicalCPUCount returns the number of logical CPUs reported by the host,
// falling back to the Go runtime's count
func LogicalCPUCount() int {
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// SystemInfo describes the host a render runs on
type SystemInfo struct {
	CPUModel      string
	LogicalCores  int
	TotalMemoryGB float64
}

// GetSystemInfo queries CPU and memory information
func GetSystemInfo() (SystemInfo, error) {
	info := SystemInfo{LogicalCores: LogicalCPUCount()}

	cpuInfo, err := cpu.Info()
	if err != nil {
		return info, fmt.Errorf("cpu info: %w", err)
	}
	if len(cpuInfo) > 0 {
		info.CPUModel = cpuInfo[0].ModelName
	}

	memInfo, err := mem.VirtualMemory()
	if err != nil {
		return info, fmt.Errorf("memory info: %w", err)
	}
	info.TotalMemoryGB = float64(memInfo.Total) / (1024 * 1024 * 1024)

	return info, nil
}

// String formats the info for a log line
func (s SystemInfo) String() string {
	model := s.CPUModel
	if model == "" {
		model = "unknown CPU"
	}
	return fmt.Sprintf("%s, %d logical cores, %.1f GB RAM", model, s.LogicalCores, s.TotalMemoryGB)
}
