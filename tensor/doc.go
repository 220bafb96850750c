// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor exposes the flat float64 tensors used by convcheck.
//
// # Overview
//
// A Dense tensor is a single contiguous []float64 arena addressed through
// row-major strides. There are no nested slices: a [N, C, H, W] tensor is one
// allocation, and element (n, c, h, w) lives at
//
//	((n*C + c)*H + h)*W + w
//
// Tensors are created fully populated by the operation that returns them and
// are read-only from then on.
//
// # Basic Usage
//
//	import "github.com/born-ml/convcheck/tensor"
//
//	func main() {
//	    x, err := tensor.FromSlice([]float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(x.At(1, 2)) // 6
//	}
package tensor
