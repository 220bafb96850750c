// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package conv_test

import (
	"context"
	"errors"
	"testing"

	"github.com/born-ml/convcheck/conv"
	"github.com/born-ml/convcheck/tensor"
)

// TestRun verifies both methods agree through the public API.
func TestRun(t *testing.T) {
	cfg := conv.DefaultConfig()
	cfg.BatchSize, cfg.NumFilters = 2, 8
	cfg.MatMul = conv.MatMulBLAS

	var stages []conv.Stage
	res, err := conv.Run(context.Background(), cfg, conv.WithStageHook(func(s conv.Stage) {
		stages = append(stages, s)
	}))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !res.Match() {
		t.Errorf("methods disagree: %d mismatches, max |diff| %g", res.Report.Mismatches, res.Report.MaxAbsDiff)
	}
	if res.Dims.E != 14 || res.Dims.F != 14 {
		t.Errorf("output size = %dx%d, want 14x14", res.Dims.F, res.Dims.E)
	}
	if res.Report.Tolerance != conv.DefaultTolerance {
		t.Errorf("tolerance = %g, want %g", res.Report.Tolerance, conv.DefaultTolerance)
	}
	if len(stages) != 5 {
		t.Errorf("got %d stage callbacks, want 5", len(stages))
	}
}

// TestRun_Invalid verifies configuration errors are exposed as sentinels.
func TestRun_Invalid(t *testing.T) {
	cfg := conv.DefaultConfig()
	cfg.Stride = 4

	if _, err := conv.Run(context.Background(), cfg); !errors.Is(err, conv.ErrInvalidDimensions) {
		t.Errorf("Run error = %v, want ErrInvalidDimensions", err)
	}

	cfg = conv.DefaultConfig()
	cfg.MatMul = "winograd"
	if _, err := conv.Run(context.Background(), cfg); !errors.Is(err, conv.ErrInvalidOption) {
		t.Errorf("Run error = %v, want ErrInvalidOption", err)
	}
}

// TestRun_WithTensors verifies caller-supplied tensors are checked.
func TestRun_WithTensors(t *testing.T) {
	cfg := conv.DefaultConfig()
	cfg.BatchSize, cfg.Channels, cfg.InputSize = 1, 1, 3
	cfg.NumFilters, cfg.FilterSize, cfg.Stride = 1, 2, 1

	input, err := tensor.FromSlice([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9}, tensor.Shape{1, 1, 3, 3})
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	filter, err := tensor.FromSlice([]float64{1, 0, 0, 1}, tensor.Shape{1, 1, 2, 2})
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}

	res, err := conv.Run(context.Background(), cfg, conv.WithTensors(input, filter))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !res.Match() || res.Report.MaxAbsDiff != 0 {
		t.Errorf("methods disagree on integer data: %+v", res.Report)
	}
}
