package tensor

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvOutputSize(t *testing.T) {
	tests := []struct {
		h, r, stride int
		want         int
	}{
		{32, 5, 2, 14},
		{3, 2, 1, 2},
		{4, 2, 2, 2},
		{5, 2, 2, 2}, // floor: the last row is dropped
		{7, 7, 3, 1},
	}
	for _, tt := range tests {
		outH, outW, err := ConvOutputSize(tt.h, tt.h, tt.r, tt.r, tt.stride)
		require.NoError(t, err)
		assert.Equal(t, tt.want, outH, "H=%d R=%d U=%d", tt.h, tt.r, tt.stride)
		assert.Equal(t, tt.want, outW)
	}
}

func TestConvOutputSize_Errors(t *testing.T) {
	_, _, err := ConvOutputSize(5, 5, 2, 2, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShape))
	assert.Contains(t, err.Error(), "stride must be positive")

	_, _, err = ConvOutputSize(3, 3, 4, 2, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShape))
	assert.Contains(t, err.Error(), "larger than input")
}
