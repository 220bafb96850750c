package tensor

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// ErrShape is returned when a tensor shape does not satisfy an operation's contract.
var ErrShape = errors.New("invalid shape")

// Shape represents the dimensions of a tensor.
type Shape []int

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1 // Scalar has 1 element
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Rank returns the number of dimensions.
func (s Shape) Rank() int {
	return len(s)
}

// Validate checks if the shape is valid: all dimensions > 0 and an element
// count that fits in an int.
func (s Shape) Validate() error {
	n := 1
	for i, dim := range s {
		if dim <= 0 {
			return errors.Wrapf(ErrShape, "dimension at index %d is %d (must be > 0)", i, dim)
		}
		if dim > math.MaxInt/n {
			return errors.Wrapf(ErrShape, "shape %s: element count overflows int at index %d", s, i)
		}
		n *= dim
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides for the shape.
// Strides define memory layout: stride[i] = product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// String formats the shape as "[2 3 4]".
func (s Shape) String() string {
	return fmt.Sprint([]int(s))
}

// RequireRank returns an ErrShape-wrapped error if the shape does not have the given rank.
// name identifies the operand in the error message.
func (s Shape) RequireRank(name string, rank int) error {
	if s.Rank() != rank {
		return errors.Wrapf(ErrShape, "%s must be %dD, got %dD %s", name, rank, s.Rank(), s)
	}
	return nil
}
