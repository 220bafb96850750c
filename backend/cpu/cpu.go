// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/born-ml/convcheck/internal/backend/cpu"
	"github.com/born-ml/convcheck/internal/parallel"
	"github.com/born-ml/convcheck/internal/tensor"
)

// Backend represents the CPU backend implementation.
type Backend = internalcpu.CPUBackend

// MatMulStrategy selects how MatMulTransB multiplies.
type MatMulStrategy = internalcpu.MatMulStrategy

// Matrix multiply strategies.
const (
	MatMulNaive = internalcpu.MatMulNaive
	MatMulBLAS  = internalcpu.MatMulBLAS
)

// New creates a CPU backend that uses all CPUs.
//
// Example:
//
//	backend := cpu.New()
//	out, err := backend.MatMulTransB(filterMatrix, inputMatrix, cpu.MatMulBLAS)
func New() *Backend {
	return internalcpu.New()
}

// Sequential creates a CPU backend that runs every loop on the calling goroutine.
func Sequential() *Backend {
	return internalcpu.NewWithConfig(parallel.Sequential())
}

// OutputSize returns the output height and width of an unpadded convolution.
func OutputSize(h, w, r, s, stride int) (outH, outW int, err error) {
	return tensor.ConvOutputSize(h, w, r, s, stride)
}
