package cpu

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"

	"github.com/born-ml/convcheck/internal/parallel"
	"github.com/born-ml/convcheck/internal/tensor"
)

// MatMulStrategy selects how MatMulTransB multiplies.
type MatMulStrategy string

// Supported multiplication strategies.
const (
	// MatMulNaive is a triple loop, rows of the result spread over the parallel config.
	MatMulNaive MatMulStrategy = "naive"
	// MatMulBLAS delegates to gonum's pure Go DGEMM.
	MatMulBLAS MatMulStrategy = "blas"
)

// ErrUnknownStrategy is returned for a MatMulStrategy that is not one of the constants above.
var ErrUnknownStrategy = errors.New("unknown matmul strategy")

// Strategies lists every supported strategy.
func Strategies() []MatMulStrategy {
	return []MatMulStrategy{MatMulNaive, MatMulBLAS}
}

// Validate returns ErrUnknownStrategy if s is not supported.
func (s MatMulStrategy) Validate() error {
	switch s {
	case MatMulNaive, MatMulBLAS:
		return nil
	default:
		return errors.Wrapf(ErrUnknownStrategy, "%q (want one of %v)", string(s), Strategies())
	}
}

// MatMulTransB multiplies a by the transpose of b.
//
//	a: [M, K], b: [P, K] -> result: [M, P]
//	result[m][p] = Σ_k a[m][k] * b[p][k]
//
// With a as the im2col filter matrix and b as the im2col input matrix this is
// the whole convolution: one dot product per (filter, receptive field) pair.
func (cpu *CPUBackend) MatMulTransB(a, b *tensor.Dense, strategy MatMulStrategy) (*tensor.Dense, error) {
	aShape := a.Shape()
	bShape := b.Shape()

	if err := aShape.RequireRank("matmul: lhs", 2); err != nil {
		return nil, err
	}
	if err := bShape.RequireRank("matmul: rhs", 2); err != nil {
		return nil, err
	}
	if err := strategy.Validate(); err != nil {
		return nil, errors.WithMessage(err, "matmul")
	}

	m, k := aShape[0], aShape[1]
	p, kAlt := bShape[0], bShape[1]
	if k != kAlt {
		return nil, errors.Wrapf(tensor.ErrShape, "matmul: shape mismatch %s x %s^T", aShape, bShape)
	}

	result, err := tensor.New(tensor.Shape{m, p})
	if err != nil {
		return nil, errors.WithMessage(err, "matmul: failed to create result tensor")
	}

	switch strategy {
	case MatMulBLAS:
		matmulTransBBLAS(result.Data(), a.Data(), b.Data(), m, k, p)
	default:
		matmulTransBNaive(result.Data(), a.Data(), b.Data(), m, k, p, cpu.parallel)
	}
	return result, nil
}

// matmulTransBNaive computes c[i,j] = sum_k a[i,k] * b[j,k].
// Both operands are walked along contiguous rows.
func matmulTransBNaive(c, a, b []float64, m, k, p int, cfg parallel.Config) {
	parallel.For(m, func(i int) {
		aRow := a[i*k : (i+1)*k]
		cRow := c[i*p : (i+1)*p]
		for j := 0; j < p; j++ {
			bRow := b[j*k : (j+1)*k]
			sum := 0.0
			for kIdx, av := range aRow {
				sum += av * bRow[kIdx]
			}
			cRow[j] = sum
		}
	}, cfg)
}

func matmulTransBBLAS(c, a, b []float64, m, k, p int) {
	blas64.Gemm(blas.NoTrans, blas.Trans, 1,
		blas64.General{Rows: m, Cols: k, Stride: k, Data: a},
		blas64.General{Rows: p, Cols: k, Stride: k, Data: b},
		0,
		blas64.General{Rows: m, Cols: p, Stride: p, Data: c},
	)
}
