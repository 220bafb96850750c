package cpu

import (
	"github.com/pkg/errors"

	"github.com/born-ml/convcheck/internal/parallel"
	"github.com/born-ml/convcheck/internal/tensor"
)

// Conv2DDirect computes a 2D convolution with the direct (six nested loops) method.
//
// Input shape: [N, C, H, W]
// Filter shape: [M, C, R, S]
// Output shape: [N, M, outH, outW]
//
//	out[n][m][x][y] = Σ_i Σ_j Σ_k in[n][k][stride*x+i][stride*y+j] * filter[m][k][i][j]
//
// x walks the height axis and y the width axis, matching the receptive-field
// convention of the im2col input matrix.
//
// Every (n, m) output map is independent; the backend's parallel config decides
// whether they run concurrently. Each output element is accumulated by a
// single goroutine in a fixed order, so the result does not depend on parallelism.
func (cpu *CPUBackend) Conv2DDirect(input, filter *tensor.Dense, stride int) (*tensor.Dense, error) {
	inputShape := input.Shape()
	filterShape := filter.Shape()

	if err := inputShape.RequireRank("conv2d: input", 4); err != nil {
		return nil, err
	}
	if err := filterShape.RequireRank("conv2d: filter", 4); err != nil {
		return nil, err
	}

	N, C, H, W := inputShape[0], inputShape[1], inputShape[2], inputShape[3]
	M, CF, R, S := filterShape[0], filterShape[1], filterShape[2], filterShape[3]

	if C != CF {
		return nil, errors.Wrapf(tensor.ErrShape, "conv2d: input channels %d != filter channels %d", C, CF)
	}

	outH, outW, err := tensor.ConvOutputSize(H, W, R, S, stride)
	if err != nil {
		return nil, errors.WithMessage(err, "conv2d")
	}

	output, err := tensor.New(tensor.Shape{N, M, outH, outW})
	if err != nil {
		return nil, errors.WithMessage(err, "conv2d: failed to create output tensor")
	}

	conv2dDirect(output.Data(), input.Data(), filter.Data(), N, C, H, W, M, R, S, outH, outW, stride, cpu.parallel)
	return output, nil
}

func conv2dDirect(out, in, w []float64, N, C, H, W, M, R, S, outH, outW, stride int, cfg parallel.Config) {
	planeIn := H * W
	planeOut := outH * outW
	filterSize := C * R * S

	parallel.ForBatch(N, M, func(n, m int) {
		inBase := n * C * planeIn
		wBase := m * filterSize
		outBase := (n*M + m) * planeOut

		for x := 0; x < outH; x++ {
			for y := 0; y < outW; y++ {
				sum := 0.0
				for i := 0; i < R; i++ {
					row := (stride*x + i) * W
					for j := 0; j < S; j++ {
						col := stride*y + j
						for k := 0; k < C; k++ {
							sum += in[inBase+k*planeIn+row+col] * w[wBase+k*R*S+i*S+j]
						}
					}
				}
				out[outBase+x*outW+y] = sum
			}
		}
	}, cfg)
}
