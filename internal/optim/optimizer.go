// Package optim implements the update rules applied to the factors of a
// non-negative factorization.
//
// This package provides:
//   - Optimizer interface: base interface for all update rules
//   - Multiplicative: the sign-preserving multiplicative update
//
// Example usage:
//
//	opt := optim.NewMultiplicative(optim.MultiplicativeConfig{Eps: 1e-9})
//
//	for iter := range iterations {
//	    numer, denom := b.GradientH(v, w, h)
//	    opt.Step(h, numer, denom, sparsity)
//	}
package optim

import "github.com/born-ml/tnmf/internal/tensor"

// Optimizer updates a factor in place from the positive and negative parts
// of its gradient.
//
// For the energy 0.5 * ||V - R||^2 the gradient with respect to a factor X
// splits as dE/dX = denom - numer with both parts non-negative.
type Optimizer interface {
	// Step updates param in place.
	//
	// penalty is an additional non-negative weight on the negative part
	// (an L1 penalty on param). Pass 0 for an unregularized step.
	Step(param, numer, denom *tensor.Tensor, penalty float64)

	// Eps returns the stabilizing constant added to denominators.
	Eps() float64
}

func checkOperands(param, numer, denom *tensor.Tensor) {
	if !param.Shape().Equal(numer.Shape()) || !param.Shape().Equal(denom.Shape()) {
		panic("optim: parameter " + param.Shape().String() + ", numerator " + numer.Shape().String() +
			" and denominator " + denom.Shape().String() + " must have the same shape")
	}
}
