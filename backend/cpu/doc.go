// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go CPU convolution engines.
//
// # Overview
//
// This package exposes two ways of computing the same convolution:
//   - Conv2DDirect: six nested loops over [N, C, H, W] x [M, C, R, S]
//   - MatMulTransB: one matrix multiply over im2col matrices
//
// MatMulTransB supports a naive triple loop (MatMulNaive) and gonum's DGEMM
// (MatMulBLAS).
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/convcheck/backend/cpu"
//	    "github.com/born-ml/convcheck/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//	    out, err := backend.Conv2DDirect(input, filter, 2)
//	    ...
//	}
//
// # Thread Safety
//
// A Backend holds no mutable state and is safe for concurrent use.
// Independent output elements are computed in parallel unless the backend
// was built with Sequential.
package cpu
