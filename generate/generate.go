// Package generate provides the random tensor generator used by convcheck.
//
// This package wraps the internal generator and provides a public API for
// producing reproducible input maps and filter weights.
//
// Example usage:
//
//	import (
//	    "github.com/born-ml/convcheck/conv"
//	    "github.com/born-ml/convcheck/generate"
//	)
//
//	dims, err := conv.DefaultConfig().Dims()
//	g := generate.New(42)
//	input, err := g.InputMap(dims)
//	filter, err := g.FilterWeights(dims)
package generate

import (
	"github.com/born-ml/convcheck/internal/generate"
)

// Generator draws elements sign*magnitude, magnitude uniform in [0, 1) and
// sign ±1, from a seeded Mersenne Twister.
//
// Methods:
//   - Signed(shape): tensor of any shape
//   - InputMap(dims): [N, C, H, W]
//   - FilterWeights(dims): [M, C, R, S]
type Generator = generate.Generator

// New creates a generator. The same seed always yields the same tensors;
// a negative seed picks a random one.
func New(seed int64) *Generator {
	return generate.New(seed)
}
