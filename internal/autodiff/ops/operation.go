// Package ops defines the differentiable operations of the energy functional.
//
// Each operation records its inputs and output during the forward pass and
// computes input gradients during the backward pass:
//   - AddOp: d(a+b)/da = 1, d(a+b)/db = 1
//   - MulOp: d(a*b)/da = b, d(a*b)/db = a
//   - ScaleOp: d(s*x)/dx = s
//   - SquareOp: d(x^2)/dx = 2x
//   - SumOp: d(sum x)/dx = 1
//   - FlipOp: the gradient is flipped back
//   - ConvOp: adjoint correlations of conv.Forward
package ops

import "github.com/born-ml/tnmf/internal/tensor"

// Operation represents a differentiable operation in the computation graph.
type Operation interface {
	// Backward computes gradients for inputs given the output gradient.
	// Returns a slice of gradients corresponding to each input tensor.
	Backward(outputGrad *tensor.Tensor) []*tensor.Tensor

	// Inputs returns the input tensors for this operation.
	Inputs() []*tensor.Tensor

	// Output returns the output tensor produced by this operation.
	Output() *tensor.Tensor
}
