package ops

import "github.com/born-ml/tnmf/internal/tensor"

// SquareOp represents element-wise squaring: output = x^2.
type SquareOp struct {
	inputs []*tensor.Tensor // [x]
	output *tensor.Tensor
}

// NewSquareOp creates a new SquareOp.
func NewSquareOp(x, output *tensor.Tensor) *SquareOp {
	return &SquareOp{inputs: []*tensor.Tensor{x}, output: output}
}

// Backward returns 2 * x * outputGrad.
func (op *SquareOp) Backward(outputGrad *tensor.Tensor) []*tensor.Tensor {
	return []*tensor.Tensor{tensor.Scale(tensor.Mul(outputGrad, op.inputs[0]), 2)}
}

// Inputs returns the input tensors [x].
func (op *SquareOp) Inputs() []*tensor.Tensor { return op.inputs }

// Output returns the output tensor x^2.
func (op *SquareOp) Output() *tensor.Tensor { return op.output }
