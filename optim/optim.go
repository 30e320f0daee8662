// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/born-ml/tnmf/internal/optim"
)

// Optimizer updates a factor in place from the parts of its gradient.
type Optimizer = optim.Optimizer

// Multiplicative is the multiplicative update
// param = param * numer / (denom + penalty + eps).
type Multiplicative = optim.Multiplicative

// MultiplicativeConfig contains configuration for the multiplicative update.
type MultiplicativeConfig = optim.MultiplicativeConfig

// DefaultEps is the denominator stabilizer used when none is configured.
const DefaultEps = optim.DefaultEps

// NewMultiplicative creates a multiplicative update rule.
//
// Example:
//
//	opt := optim.NewMultiplicative(optim.MultiplicativeConfig{})
//	opt.Step(h, numer, denom, sparsity)
func NewMultiplicative(config MultiplicativeConfig) *Multiplicative {
	return optim.NewMultiplicative(config)
}
