package tensor

import (
	"github.com/pkg/errors"
)

// ConvOutputSize returns the spatial output size of an unpadded strided convolution:
//
//	outH = (H - R) / stride + 1
//	outW = (W - S) / stride + 1
//
// Trailing rows or columns that do not fit a full window are dropped (floor).
func ConvOutputSize(h, w, r, s, stride int) (outH, outW int, err error) {
	if stride <= 0 {
		return 0, 0, errors.Wrapf(ErrShape, "conv: stride must be positive, got %d", stride)
	}
	if r > h || s > w {
		return 0, 0, errors.Wrapf(ErrShape, "conv: filter %dx%d larger than input %dx%d", r, s, h, w)
	}
	return (h-r)/stride + 1, (w-s)/stride + 1, nil
}
