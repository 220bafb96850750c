// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/convcheck/internal/tensor"
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// Dense is a contiguous row-major float64 tensor.
type Dense = tensor.Dense

// ErrShape is wrapped by every error caused by a shape that breaks an operation's contract.
var ErrShape = tensor.ErrShape

// New creates a zero-filled tensor with the given shape.
func New(shape Shape) (*Dense, error) {
	return tensor.New(shape)
}

// FromSlice wraps data as a tensor of the given shape without copying it.
func FromSlice(data []float64, shape Shape) (*Dense, error) {
	return tensor.FromSlice(data, shape)
}
