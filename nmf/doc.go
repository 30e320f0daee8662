// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nmf provides transform-invariant non-negative matrix factorization.
//
// # Overview
//
// Given non-negative signals V (1-D series or N-d images, possibly
// multi-channel), an Engine learns a small dictionary W of atoms and, for
// every signal, non-negative activations H telling where and how strongly
// each atom is placed:
//
//	R[n] = sum over atoms m and placements p of H[n, m, p] * shift_p(W[m])
//
// Two variants are provided:
//   - Sparse: atoms span the whole signal, one placement (classical NMF)
//   - ShiftInvariant: atoms are smaller than the signal and placed at every shift
//
// and two interchangeable gradient backends:
//   - Contraction: explicit shift matrices, closed-form update terms
//   - Convolution: convolutional reconstruction, update terms by reverse-mode
//     differentiation
//
// # Basic Usage
//
//	v, _ := tensor.FromSignals(series) // [N, 1, D]
//
//	cfg := nmf.DefaultConfig()
//	cfg.AtomShape = tensor.Shape{16}
//	cfg.NumAtoms = 4
//
//	e, err := nmf.NewShiftInvariant(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := e.Fit(ctx, v); err != nil {
//	    log.Fatal(err)
//	}
//	w, h := e.W(), e.H()
//
// Zero-valued Config fields take defaults, but SparsityH and RefitH have
// none: a zero Config runs without sparsity or refit. DefaultConfig sets
// SparsityH to 0.1 and RefitH to true.
//
// # Stopping
//
// Fit runs a fixed number of iterations. Callers that want their own
// stopping rule set Config.Observer and return ErrStop.
package nmf
