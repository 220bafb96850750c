package im2col

import (
	"github.com/pkg/errors"

	"github.com/born-ml/convcheck/internal/tensor"
)

// NewLayout derives the layout of a convolution of input [N, C, H, W] with
// filter [M, C, R, S] at the given stride.
func NewLayout(input, filter tensor.Shape, stride int) (Layout, error) {
	if err := input.RequireRank("im2col: input", 4); err != nil {
		return Layout{}, err
	}
	if err := filter.RequireRank("im2col: filter", 4); err != nil {
		return Layout{}, err
	}
	if input[1] != filter[1] {
		return Layout{}, errors.Wrapf(tensor.ErrShape, "im2col: input channels %d != filter channels %d",
			input[1], filter[1])
	}
	outH, outW, err := tensor.ConvOutputSize(input[2], input[3], filter[2], filter[3], stride)
	if err != nil {
		return Layout{}, errors.WithMessage(err, "im2col")
	}
	return Layout{
		Batch:    input[0],
		Channels: input[1],
		KernelH:  filter[2],
		KernelW:  filter[3],
		OutH:     outH,
		OutW:     outW,
	}, nil
}

// FilterMatrix flattens filter [M, C, R, S] into [M, C*R*S].
// Column order follows Layout.Column.
func FilterMatrix(filter *tensor.Dense) (*tensor.Dense, error) {
	shape := filter.Shape()
	if err := shape.RequireRank("im2col: filter", 4); err != nil {
		return nil, err
	}
	M, C, R, S := shape[0], shape[1], shape[2], shape[3]
	l := Layout{Channels: C, KernelH: R, KernelW: S}

	out, err := tensor.New(tensor.Shape{M, l.Cols()})
	if err != nil {
		return nil, errors.WithMessage(err, "im2col: failed to create filter matrix")
	}

	src := filter.Data()
	dst := out.Data()
	cols := l.Cols()
	for m := 0; m < M; m++ {
		row := dst[m*cols : (m+1)*cols]
		for i := 0; i < R; i++ {
			for j := 0; j < S; j++ {
				for k := 0; k < C; k++ {
					row[l.Column(k, i, j)] = src[((m*C+k)*R+i)*S+j]
				}
			}
		}
	}
	return out, nil
}

// InputMatrix flattens input [N, C, H, W] into [N*OutH*OutW, C*R*S].
//
// Each row is the receptive field of one output element, rows ordered by
// Layout.Row and columns by Layout.Column, so row p dotted with row m of
// FilterMatrix is output element p of filter m.
func InputMatrix(input *tensor.Dense, l Layout, stride int) (*tensor.Dense, error) {
	shape := input.Shape()
	if err := shape.RequireRank("im2col: input", 4); err != nil {
		return nil, err
	}
	N, C, H, W := shape[0], shape[1], shape[2], shape[3]
	if N != l.Batch || C != l.Channels {
		return nil, errors.Wrapf(tensor.ErrShape, "im2col: input %s does not match layout N=%d C=%d",
			shape, l.Batch, l.Channels)
	}
	if stride*(l.OutH-1)+l.KernelH > H || stride*(l.OutW-1)+l.KernelW > W {
		return nil, errors.Wrapf(tensor.ErrShape, "im2col: %dx%d outputs at stride %d overrun input %dx%d",
			l.OutH, l.OutW, stride, H, W)
	}

	out, err := tensor.New(tensor.Shape{l.Rows(), l.Cols()})
	if err != nil {
		return nil, errors.WithMessage(err, "im2col: failed to create input matrix")
	}

	src := input.Data()
	dst := out.Data()
	cols := l.Cols()
	for n := 0; n < N; n++ {
		for y := 0; y < l.OutW; y++ {
			for x := 0; x < l.OutH; x++ {
				row := dst[l.Row(n, y, x)*cols:][:cols]
				for i := 0; i < l.KernelH; i++ {
					h := stride*x + i
					for j := 0; j < l.KernelW; j++ {
						w := stride*y + j
						for k := 0; k < C; k++ {
							row[l.Column(k, i, j)] = src[((n*C+k)*H+h)*W+w]
						}
					}
				}
			}
		}
	}
	return out, nil
}
