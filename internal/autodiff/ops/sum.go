package ops

import "github.com/born-ml/tnmf/internal/tensor"

// SumOp represents a full reduction to a scalar: output = sum(x).
//
// Every input element contributes 1.0 to the output, so the scalar output
// gradient is broadcast back to the input shape.
type SumOp struct {
	inputs []*tensor.Tensor // [x]
	output *tensor.Tensor
}

// NewSumOp creates a new SumOp.
func NewSumOp(x, output *tensor.Tensor) *SumOp {
	return &SumOp{inputs: []*tensor.Tensor{x}, output: output}
}

// Backward broadcasts the scalar output gradient to the input shape.
func (op *SumOp) Backward(outputGrad *tensor.Tensor) []*tensor.Tensor {
	return []*tensor.Tensor{tensor.Full(op.inputs[0].Shape(), outputGrad.Item())}
}

// Inputs returns the input tensors [x].
func (op *SumOp) Inputs() []*tensor.Tensor { return op.inputs }

// Output returns the scalar output tensor.
func (op *SumOp) Output() *tensor.Tensor { return op.output }
