// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package conv checks that the direct and the im2col (Toeplitz) convolution
// methods compute the same CNN layer output.
//
// # Overview
//
// A run generates a random batch of input maps [N, C, H, W] and filters
// [M, C, R, S], then:
//  1. convolves them with six nested loops into [N, M, F, E]
//  2. flattens the inputs into [N*E*F, C*R*S] and the filters into [M, C*R*S]
//  3. multiplies the filter matrix by the transposed input matrix into [M, N*E*F]
//  4. reshapes the direct output into [M, N*E*F] and compares element-wise
//
// # Basic Usage
//
//	import "github.com/born-ml/convcheck/conv"
//
//	func main() {
//	    cfg := conv.DefaultConfig()
//	    cfg.MatMul = conv.MatMulBLAS
//
//	    res, err := conv.Run(context.Background(), cfg)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(res.Report.Verdict())
//	}
//
// # Errors
//
// Invalid dimensions are rejected by Run before anything is computed and
// wrap ErrInvalidDimensions. Disagreement between the two methods is not an
// error; it is reported in Result.Report.
package conv
