// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the dense float64 tensors consumed and produced by
// the factorization engine.
//
// # Overview
//
// Tensors are stored row-major. Signal collections use the layout
//
//	[samples, channels, spatial...]
//
// so a set of N univariate time series of length D is a [N, 1, D] tensor and
// N RGB images are [N, 3, H, W].
//
// # Basic Usage
//
//	import "github.com/born-ml/tnmf/tensor"
//
//	func main() {
//	    v, err := tensor.FromSignals([][]float64{
//	        {0, 1, 3, 2, 0},
//	        {1, 3, 2, 0, 0},
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(v.Shape()) // (2, 1, 5)
//	}
//
// # Helpers
//
// Normalize scales slices along a set of axes to unit sum, Shift moves
// values along an axis with zero fill and Flip reverses axes.
package tensor
