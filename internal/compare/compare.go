// Package compare reconciles the direct convolution output with the im2col
// matrix-multiply output and checks that they agree element-wise.
package compare

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/born-ml/convcheck/internal/im2col"
	"github.com/born-ml/convcheck/internal/tensor"
)

// DefaultTolerance is the absolute tolerance between the two methods.
// The accumulation orders differ, so bit-exact equality is not expected.
const DefaultTolerance = 1e-13

// Verdicts printed for a run.
const (
	VerdictMatch    = "The two methods produce the same outputs."
	VerdictMismatch = "The two methods don't produce the same outputs."
)

// Reconcile reshapes the direct output [N, M, OutH, OutW] into the
// matrix-multiply layout [M, N*OutH*OutW].
//
// For each filter m, output element (n, y, x) lands on column l.Row(n, y, x),
// the same position the matrix multiply gives the receptive field of (n, y, x).
func Reconcile(naive *tensor.Dense, l im2col.Layout) (*tensor.Dense, error) {
	shape := naive.Shape()
	if err := shape.RequireRank("reconcile: naive output", 4); err != nil {
		return nil, err
	}
	N, M, outH, outW := shape[0], shape[1], shape[2], shape[3]
	if N != l.Batch || outH != l.OutH || outW != l.OutW {
		return nil, errors.Wrapf(tensor.ErrShape, "reconcile: naive output %s does not match layout N=%d OutH=%d OutW=%d",
			shape, l.Batch, l.OutH, l.OutW)
	}

	out, err := tensor.New(tensor.Shape{M, l.Rows()})
	if err != nil {
		return nil, errors.WithMessage(err, "reconcile: failed to create output")
	}

	src := naive.Data()
	dst := out.Data()
	cols := l.Rows()
	for m := 0; m < M; m++ {
		row := dst[m*cols : (m+1)*cols]
		for n := 0; n < N; n++ {
			for y := 0; y < outW; y++ {
				for x := 0; x < outH; x++ {
					row[l.Row(n, y, x)] = src[((n*M+m)*outH+x)*outW+y]
				}
			}
		}
	}
	return out, nil
}

// Index is a (row, column) position in a 2D matrix.
type Index struct {
	Row, Col int
}

// String formats the index as "[row, col]".
func (i Index) String() string {
	return fmt.Sprintf("[%d, %d]", i.Row, i.Col)
}

// Report is the outcome of an element-wise comparison.
type Report struct {
	Rows       int
	Cols       int
	Tolerance  float64
	Mismatches int     // Elements with |got - want| > Tolerance.
	MaxAbsDiff float64 // Largest |got - want| over all elements.
	First      *Index  // First mismatching element in row-major order, nil if none.
}

// Match reports whether every element is within tolerance.
func (r Report) Match() bool {
	return r.Mismatches == 0
}

// Verdict returns VerdictMatch or VerdictMismatch.
func (r Report) Verdict() string {
	if r.Match() {
		return VerdictMatch
	}
	return VerdictMismatch
}

// Compare checks got against want element-wise with an absolute tolerance.
// The boundary is inclusive: a difference of exactly tol is a match.
// Both matrices must be 2D with identical shapes.
func Compare(got, want *tensor.Dense, tol float64) (Report, error) {
	if err := got.Shape().RequireRank("compare: got", 2); err != nil {
		return Report{}, err
	}
	if !got.Shape().Equal(want.Shape()) {
		return Report{}, errors.Wrapf(tensor.ErrShape, "compare: shape mismatch %s vs %s", got.Shape(), want.Shape())
	}
	if tol < 0 || math.IsNaN(tol) {
		return Report{}, errors.Errorf("compare: tolerance must be non-negative, got %g", tol)
	}

	report := Report{
		Rows:      got.Shape()[0],
		Cols:      got.Shape()[1],
		Tolerance: tol,
	}
	g, w := got.Data(), want.Data()
	for i := range g {
		diff := math.Abs(g[i] - w[i])
		if diff > report.MaxAbsDiff || math.IsNaN(diff) {
			report.MaxAbsDiff = diff
		}
		if scalar.EqualWithinAbs(g[i], w[i], tol) {
			continue
		}
		report.Mismatches++
		if report.First == nil {
			report.First = &Index{Row: i / report.Cols, Col: i % report.Cols}
		}
	}
	return report, nil
}
