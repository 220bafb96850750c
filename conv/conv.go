// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package conv

import (
	"context"

	"github.com/born-ml/convcheck/internal/backend/cpu"
	"github.com/born-ml/convcheck/internal/compare"
	"github.com/born-ml/convcheck/internal/config"
	"github.com/born-ml/convcheck/internal/pipeline"
	"github.com/born-ml/convcheck/internal/tensor"
)

// Config describes one run. See DefaultConfig for the reference values.
type Config = config.Config

// Dims is the full dimension tuple N, C, H, W, M, R, S, U, E, F.
type Dims = config.Dims

// Result is the outcome of Run.
type Result = pipeline.Result

// Report is the element-wise comparison of the two methods.
type Report = compare.Report

// Stage identifies a step of the run, passed to WithStageHook callbacks.
type Stage = pipeline.Stage

// Option configures Run.
type Option = pipeline.Option

// Matrix multiply strategies for Config.MatMul.
const (
	MatMulNaive = cpu.MatMulNaive
	MatMulBLAS  = cpu.MatMulBLAS
)

// DefaultTolerance is the absolute tolerance used by DefaultConfig.
const DefaultTolerance = compare.DefaultTolerance

// Configuration errors.
var (
	ErrInvalidDimensions = config.ErrInvalidDimensions
	ErrInvalidOption     = config.ErrInvalidOption
)

// DefaultConfig returns N=8, C=4, H=W=32, M=32, R=S=5, U=2 (E=F=14).
func DefaultConfig() Config {
	return config.DefaultConfig()
}

// LoadConfig reads a YAML configuration file over DefaultConfig.
func LoadConfig(path string) (Config, error) {
	return config.Load(path)
}

// WithStageHook registers fn to be called as each stage starts.
func WithStageHook(fn func(Stage)) Option {
	return pipeline.WithStageHook(fn)
}

// WithTensors checks the given input map [N, C, H, W] and filter weights
// [M, C, R, S] instead of generated ones.
func WithTensors(input, filter *tensor.Dense) Option {
	return pipeline.WithTensors(input, filter)
}

// Run executes a full check for cfg.
func Run(ctx context.Context, cfg Config, opts ...Option) (*Result, error) {
	return pipeline.Run(ctx, cfg, opts...)
}
