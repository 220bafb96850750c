package cpu

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/convcheck/internal/tensor"
)

func TestMatMulTransB_Known(t *testing.T) {
	backend := New()

	// a: [2, 3], b: [2, 3] -> a @ b^T: [2, 2]
	a := mustDense(t, []float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	b := mustDense(t, []float64{1, 0, -1, 2, 1, 0}, tensor.Shape{2, 3})

	for _, strategy := range Strategies() {
		t.Run(string(strategy), func(t *testing.T) {
			out, err := backend.MatMulTransB(a, b, strategy)
			require.NoError(t, err)
			require.Equal(t, tensor.Shape{2, 2}, out.Shape())
			// [1-3, 2+2], [4-6, 8+5]
			assert.Equal(t, []float64{-2, 4, -2, 13}, out.Data())
		})
	}
}

func TestMatMulTransB_StrategiesAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(3)) //nolint:gosec // Deterministic test data
	m, k, p := 17, 100, 61
	aData := make([]float64, m*k)
	bData := make([]float64, p*k)
	for i := range aData {
		aData[i] = rng.Float64()*2 - 1
	}
	for i := range bData {
		bData[i] = rng.Float64()*2 - 1
	}
	a := mustDense(t, aData, tensor.Shape{m, k})
	b := mustDense(t, bData, tensor.Shape{p, k})

	backend := New()
	naive, err := backend.MatMulTransB(a, b, MatMulNaive)
	require.NoError(t, err)
	blasOut, err := backend.MatMulTransB(a, b, MatMulBLAS)
	require.NoError(t, err)

	require.Equal(t, tensor.Shape{m, p}, naive.Shape())
	require.Equal(t, tensor.Shape{m, p}, blasOut.Shape())
	for i := range naive.Data() {
		assert.LessOrEqual(t, math.Abs(naive.Data()[i]-blasOut.Data()[i]), 1e-13, "element %d", i)
	}
}

func TestMatMulTransB_Errors(t *testing.T) {
	backend := New()
	a := mustDense(t, seq(6), tensor.Shape{2, 3})

	_, err := backend.MatMulTransB(a, mustDense(t, seq(4), tensor.Shape{2, 2}), MatMulNaive)
	require.Error(t, err)
	assert.True(t, errors.Is(err, tensor.ErrShape))
	assert.Contains(t, err.Error(), "shape mismatch")

	_, err = backend.MatMulTransB(a, mustDense(t, seq(6), tensor.Shape{1, 2, 3}), MatMulNaive)
	require.Error(t, err)
	assert.True(t, errors.Is(err, tensor.ErrShape))

	_, err = backend.MatMulTransB(a, a, MatMulStrategy("strassen"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownStrategy))
}

func TestMatMulStrategy_Validate(t *testing.T) {
	for _, s := range Strategies() {
		assert.NoError(t, s.Validate())
	}
	assert.Error(t, MatMulStrategy("").Validate())
}

func BenchmarkMatMulTransB(b *testing.B) {
	// Reference configuration: filter matrix [32, 100], input matrix [1568, 100].
	m, k, p := 32, 100, 1568
	aData, bData := make([]float64, m*k), make([]float64, p*k)
	for i := range aData {
		aData[i] = float64(i%7) - 3
	}
	for i := range bData {
		bData[i] = float64(i%5) - 2
	}
	lhs, _ := tensor.FromSlice(aData, tensor.Shape{m, k})
	rhs, _ := tensor.FromSlice(bData, tensor.Shape{p, k})
	backend := New()

	for _, strategy := range Strategies() {
		b.Run(string(strategy), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_, _ = backend.MatMulTransB(lhs, rhs, strategy)
			}
		})
	}
}
