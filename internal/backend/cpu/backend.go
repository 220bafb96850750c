// Package cpu implements the two convolution engines on the CPU:
// the direct six-loop convolution and the matrix multiply that consumes
// im2col matrices.
package cpu

import (
	"github.com/born-ml/convcheck/internal/parallel"
)

// CPUBackend runs convolution kernels on flat float64 tensors.
type CPUBackend struct {
	parallel parallel.Config
}

// New creates a CPU backend that spreads independent loops across all CPUs.
func New() *CPUBackend {
	return NewWithConfig(parallel.DefaultConfig())
}

// NewWithConfig creates a CPU backend with an explicit parallelism setting.
// parallel.Sequential() gives a single-threaded backend.
func NewWithConfig(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{
		parallel: cfg,
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Parallel returns the backend's parallelism setting.
func (cpu *CPUBackend) Parallel() parallel.Config {
	return cpu.parallel
}
