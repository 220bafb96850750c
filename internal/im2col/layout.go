// Package im2col reshapes 4D convolution operands into 2D matrices so the
// convolution reduces to a single matrix multiply.
//
// Every matrix built here, and the reconciliation of the direct engine's
// output, goes through one Layout. Two transforms that disagree on the column
// or row enumeration still produce matrices of the right shape, just with the
// wrong numbers in them, so the enumeration is defined exactly once.
package im2col

// Layout is the canonical enumeration of im2col rows and columns.
//
// Columns enumerate the receptive field of one output element:
//
//	col(k, i, j) = k*R*S + i*S + j
//
// k is the channel, (i, j) the filter row and column.
//
// Rows enumerate output elements in (n, y, x) nesting order, x innermost:
//
//	row(n, y, x) = (n*OutW + y)*OutH + x
//
// x walks the height axis (OutH values) and y the width axis (OutW values);
// the receptive field of (n, y, x) on channel k is in[n][k][U*x+i][U*y+j].
type Layout struct {
	Batch    int // N
	Channels int // C
	KernelH  int // R
	KernelW  int // S
	OutH     int // output positions along the height axis
	OutW     int // output positions along the width axis
}

// Cols returns the number of matrix columns, C*R*S.
func (l Layout) Cols() int {
	return l.Channels * l.KernelH * l.KernelW
}

// Rows returns the number of input-matrix rows, N*OutH*OutW.
func (l Layout) Rows() int {
	return l.Batch * l.OutH * l.OutW
}

// Column returns the column of channel k, filter row i, filter column j.
func (l Layout) Column(k, i, j int) int {
	return k*l.KernelH*l.KernelW + i*l.KernelW + j
}

// Row returns the row of output element (n, y, x).
func (l Layout) Row(n, y, x int) int {
	return (n*l.OutW+y)*l.OutH + x
}
