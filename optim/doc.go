// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides the update rules used to fit non-negative factors.
//
// # Overview
//
// This package contains:
//   - Multiplicative: the sign-preserving multiplicative update
//   - Optimizer interface for custom update rules
//
// # Basic Usage
//
//	opt := optim.NewMultiplicative(optim.MultiplicativeConfig{Eps: 1e-9})
//
//	// numer and denom are the negative and positive parts of dE/dX.
//	opt.Step(x, numer, denom, 0)
//
// The nmf package applies this rule internally; the package is exported for
// callers that drive their own update loop.
package optim
