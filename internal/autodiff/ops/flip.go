package ops

import "github.com/born-ml/tnmf/internal/tensor"

// FlipOp represents reversing a tensor along a set of axes.
// Flipping is its own inverse, so the gradient is flipped the same way.
type FlipOp struct {
	inputs []*tensor.Tensor // [x]
	output *tensor.Tensor
	axes   []int
}

// NewFlipOp creates a new FlipOp.
func NewFlipOp(x, output *tensor.Tensor, axes []int) *FlipOp {
	return &FlipOp{inputs: []*tensor.Tensor{x}, output: output, axes: axes}
}

// Backward flips the output gradient back.
func (op *FlipOp) Backward(outputGrad *tensor.Tensor) []*tensor.Tensor {
	return []*tensor.Tensor{tensor.Flip(outputGrad, op.axes...)}
}

// Inputs returns the input tensors [x].
func (op *FlipOp) Inputs() []*tensor.Tensor { return op.inputs }

// Output returns the flipped tensor.
func (op *FlipOp) Output() *tensor.Tensor { return op.output }
