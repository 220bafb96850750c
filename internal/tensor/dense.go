// Package tensor provides the flat, row-major float64 tensors used by the convolution engines.
package tensor

import (
	"math"

	"github.com/pkg/errors"
)

// Float64Size is the byte size of one element.
const Float64Size = 8

// MaxElements is the largest element count whose byte size fits in an int.
const MaxElements = math.MaxInt / Float64Size

// Dense is a contiguous row-major float64 tensor.
//
// All elements live in a single arena; multi-dimensional access is computed
// from the shape's strides. A Dense is fully populated by the operation that
// creates it and is treated as read-only afterwards.
type Dense struct {
	shape  Shape
	stride []int
	data   []float64
}

// New creates a zero-filled tensor with the given shape.
func New(shape Shape) (*Dense, error) {
	if err := shape.Validate(); err != nil {
		return nil, errors.WithMessage(err, "tensor.New")
	}
	if n := shape.NumElements(); n > MaxElements {
		return nil, errors.Wrapf(ErrShape, "tensor.New: %d elements of shape %s exceed %d", n, shape, MaxElements)
	}
	return &Dense{
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		data:   make([]float64, shape.NumElements()),
	}, nil
}

// FromSlice wraps data as a tensor of the given shape. The slice is not copied.
func FromSlice(data []float64, shape Shape) (*Dense, error) {
	if err := shape.Validate(); err != nil {
		return nil, errors.WithMessage(err, "tensor.FromSlice")
	}
	if len(data) != shape.NumElements() {
		return nil, errors.Wrapf(ErrShape, "tensor.FromSlice: %d values do not fill shape %s (%d elements)",
			len(data), shape, shape.NumElements())
	}
	return &Dense{
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		data:   data,
	}, nil
}

// Shape returns the tensor's shape.
func (d *Dense) Shape() Shape {
	return d.shape
}

// Strides returns the tensor's row-major strides.
func (d *Dense) Strides() []int {
	return d.stride
}

// Data returns the underlying arena.
// Callers must not modify it once the producing operation has returned.
func (d *Dense) Data() []float64 {
	return d.data
}

// NumElements returns the total number of elements.
func (d *Dense) NumElements() int {
	return len(d.data)
}

// ByteSize returns the memory used by the elements.
func (d *Dense) ByteSize() int {
	return len(d.data) * Float64Size
}

// Offset returns the flat position of a multi-dimensional index.
// Panics if the number of indices does not match the rank or an index is out of range.
func (d *Dense) Offset(idx ...int) int {
	if len(idx) != len(d.shape) {
		panic(errors.Errorf("tensor: %d indices for %dD tensor %s", len(idx), len(d.shape), d.shape))
	}
	off := 0
	for i, v := range idx {
		if v < 0 || v >= d.shape[i] {
			panic(errors.Errorf("tensor: index %d out of range [0, %d) on axis %d", v, d.shape[i], i))
		}
		off += v * d.stride[i]
	}
	return off
}

// At returns the element at the given multi-dimensional index.
func (d *Dense) At(idx ...int) float64 {
	return d.data[d.Offset(idx...)]
}

// Row returns row i of a 2D tensor as a sub-slice of the arena.
func (d *Dense) Row(i int) []float64 {
	if len(d.shape) != 2 {
		panic(errors.Errorf("tensor: Row on %dD tensor %s", len(d.shape), d.shape))
	}
	cols := d.shape[1]
	return d.data[i*cols : (i+1)*cols]
}
