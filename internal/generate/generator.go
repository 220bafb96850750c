// Package generate produces the pseudo-random input maps and filter weights
// fed to both convolution engines.
package generate

import (
	"math/rand"

	"github.com/pkg/errors"
	"github.com/seehuhn/mt19937"

	"github.com/born-ml/convcheck/internal/config"
	"github.com/born-ml/convcheck/internal/tensor"
)

// Generator draws signed uniform values from a seeded Mersenne Twister.
// A Generator is not safe for concurrent use.
type Generator struct {
	rng *rand.Rand
}

// New creates a generator. Two generators with the same seed produce the
// same sequence of tensors. A negative seed picks a random one.
func New(seed int64) *Generator {
	if seed < 0 {
		seed = rand.Int63() //nolint:gosec // User requested random seed
	}
	src := mt19937.New()
	src.Seed(seed)
	return &Generator{rng: rand.New(src)} //nolint:gosec // Intentional deterministic seed for reproducibility
}

// Signed returns a tensor of the given shape whose elements are sign*magnitude,
// magnitude uniform in [0, 1) and sign +1 or -1 with equal probability,
// both drawn independently per element. Elements are filled in row-major order.
func (g *Generator) Signed(shape tensor.Shape) (*tensor.Dense, error) {
	t, err := tensor.New(shape)
	if err != nil {
		return nil, errors.WithMessage(err, "generate")
	}
	data := t.Data()
	for i := range data {
		magnitude := g.rng.Float64()
		if g.rng.Intn(2) == 0 {
			magnitude = -magnitude
		}
		data[i] = magnitude
	}
	return t, nil
}

// InputMap returns a random [N, C, H, W] tensor.
func (g *Generator) InputMap(d config.Dims) (*tensor.Dense, error) {
	return g.Signed(tensor.Shape{d.N, d.C, d.H, d.W})
}

// FilterWeights returns a random [M, C, R, S] tensor.
func (g *Generator) FilterWeights(d config.Dims) (*tensor.Dense, error) {
	return g.Signed(tensor.Shape{d.M, d.C, d.R, d.S})
}
