package im2col

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/convcheck/internal/backend/cpu"
	"github.com/born-ml/convcheck/internal/tensor"
)

func mustDense(t *testing.T, data []float64, shape tensor.Shape) *tensor.Dense {
	t.Helper()
	d, err := tensor.FromSlice(data, shape)
	require.NoError(t, err)
	return d
}

func TestLayout_IsBijection(t *testing.T) {
	l := Layout{Batch: 2, Channels: 3, KernelH: 2, KernelW: 4, OutH: 3, OutW: 5}

	cols := make(map[int]bool)
	for k := 0; k < l.Channels; k++ {
		for i := 0; i < l.KernelH; i++ {
			for j := 0; j < l.KernelW; j++ {
				c := l.Column(k, i, j)
				require.GreaterOrEqual(t, c, 0)
				require.Less(t, c, l.Cols())
				require.False(t, cols[c], "column %d used twice", c)
				cols[c] = true
			}
		}
	}
	assert.Len(t, cols, l.Cols())

	rows := make(map[int]bool)
	for n := 0; n < l.Batch; n++ {
		for y := 0; y < l.OutW; y++ {
			for x := 0; x < l.OutH; x++ {
				r := l.Row(n, y, x)
				require.GreaterOrEqual(t, r, 0)
				require.Less(t, r, l.Rows())
				require.False(t, rows[r], "row %d used twice", r)
				rows[r] = true
			}
		}
	}
	assert.Len(t, rows, l.Rows())
}

func TestLayout_RowOrder(t *testing.T) {
	l := Layout{Batch: 2, OutH: 3, OutW: 4}

	// n, then y, then x innermost.
	assert.Equal(t, 0, l.Row(0, 0, 0))
	assert.Equal(t, 1, l.Row(0, 0, 1))
	assert.Equal(t, 3, l.Row(0, 1, 0))
	assert.Equal(t, 12, l.Row(1, 0, 0))
}

func TestLayout_ColumnOrder(t *testing.T) {
	l := Layout{Channels: 4, KernelH: 5, KernelW: 5}

	// Channel-major: R*S*k + i*S + j.
	assert.Equal(t, 0, l.Column(0, 0, 0))
	assert.Equal(t, 1, l.Column(0, 0, 1))
	assert.Equal(t, 5, l.Column(0, 1, 0))
	assert.Equal(t, 25, l.Column(1, 0, 0))
	assert.Equal(t, 99, l.Column(3, 4, 4))
}

// TestKnownScenario reproduces the 3x3 input / 2x2 diagonal filter case by matrix multiply.
func TestKnownScenario(t *testing.T) {
	input := mustDense(t, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}, tensor.Shape{1, 1, 3, 3})
	filter := mustDense(t, []float64{1, 0, 0, 1}, tensor.Shape{1, 1, 2, 2})

	l, err := NewLayout(input.Shape(), filter.Shape(), 1)
	require.NoError(t, err)
	assert.Equal(t, Layout{Batch: 1, Channels: 1, KernelH: 2, KernelW: 2, OutH: 2, OutW: 2}, l)

	inputMatrix, err := InputMatrix(input, l, 1)
	require.NoError(t, err)
	require.Equal(t, tensor.Shape{4, 4}, inputMatrix.Shape())
	// Row (n, y, x): patch at in[x+i][y+j], y outer.
	assert.Equal(t, []float64{
		1, 2, 4, 5, // y=0, x=0
		4, 5, 7, 8, // y=0, x=1
		2, 3, 5, 6, // y=1, x=0
		5, 6, 8, 9, // y=1, x=1
	}, inputMatrix.Data())

	filterMatrix, err := FilterMatrix(filter)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{1, 4}, filterMatrix.Shape())
	assert.Equal(t, []float64{1, 0, 0, 1}, filterMatrix.Data())

	out, err := cpu.New().MatMulTransB(filterMatrix, inputMatrix, cpu.MatMulNaive)
	require.NoError(t, err)
	// out[m][row(n,y,x)] = naive[n][m][x][y]: [6, 12, 8, 14].
	assert.Equal(t, []float64{6, 12, 8, 14}, out.Data())
}

func TestShapes(t *testing.T) {
	tests := []struct {
		n, c, h, m, r, u int
	}{
		{8, 4, 32, 32, 5, 2},
		{1, 1, 1, 1, 1, 1},
		{2, 3, 7, 4, 3, 2},
		{3, 2, 10, 5, 4, 3},
	}

	for _, tt := range tests {
		input, err := tensor.New(tensor.Shape{tt.n, tt.c, tt.h, tt.h})
		require.NoError(t, err)
		filter, err := tensor.New(tensor.Shape{tt.m, tt.c, tt.r, tt.r})
		require.NoError(t, err)

		l, err := NewLayout(input.Shape(), filter.Shape(), tt.u)
		require.NoError(t, err)
		e := (tt.h-tt.r)/tt.u + 1
		k := tt.c * tt.r * tt.r

		inputMatrix, err := InputMatrix(input, l, tt.u)
		require.NoError(t, err)
		assert.Equal(t, tensor.Shape{tt.n * e * e, k}, inputMatrix.Shape())

		filterMatrix, err := FilterMatrix(filter)
		require.NoError(t, err)
		assert.Equal(t, tensor.Shape{tt.m, k}, filterMatrix.Shape())
	}
}

// TestFilterMatrix_UsesLayoutColumns places each filter weight by Layout.Column.
func TestFilterMatrix_UsesLayoutColumns(t *testing.T) {
	m, c, r, s := 2, 3, 2, 2
	data := make([]float64, m*c*r*s)
	for i := range data {
		data[i] = float64(i)
	}
	filter := mustDense(t, data, tensor.Shape{m, c, r, s})

	fm, err := FilterMatrix(filter)
	require.NoError(t, err)

	l := Layout{Channels: c, KernelH: r, KernelW: s}
	for f := 0; f < m; f++ {
		for k := 0; k < c; k++ {
			for i := 0; i < r; i++ {
				for j := 0; j < s; j++ {
					assert.Equal(t, filter.At(f, k, i, j), fm.At(f, l.Column(k, i, j)))
				}
			}
		}
	}
}

func TestInputMatrix_Errors(t *testing.T) {
	input := mustDense(t, make([]float64, 2*2*5*5), tensor.Shape{2, 2, 5, 5})

	_, err := InputMatrix(input, Layout{Batch: 2, Channels: 3, KernelH: 2, KernelW: 2, OutH: 4, OutW: 4}, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, tensor.ErrShape))

	// 3 outputs of a 3-wide kernel at stride 2 need 7 rows.
	_, err = InputMatrix(input, Layout{Batch: 2, Channels: 2, KernelH: 3, KernelW: 3, OutH: 3, OutW: 3}, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overrun")

	_, err = NewLayout(tensor.Shape{2, 2, 5, 5}, tensor.Shape{1, 3, 2, 2}, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, tensor.ErrShape))
}
