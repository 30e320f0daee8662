package ops

import "github.com/born-ml/tnmf/internal/tensor"

// AddOp represents element-wise addition: output = a + b.
type AddOp struct {
	inputs []*tensor.Tensor // [a, b]
	output *tensor.Tensor
}

// NewAddOp creates a new AddOp.
func NewAddOp(a, b, output *tensor.Tensor) *AddOp {
	return &AddOp{inputs: []*tensor.Tensor{a, b}, output: output}
}

// Backward passes the output gradient through to both inputs.
func (op *AddOp) Backward(outputGrad *tensor.Tensor) []*tensor.Tensor {
	return []*tensor.Tensor{outputGrad, outputGrad}
}

// Inputs returns the input tensors [a, b].
func (op *AddOp) Inputs() []*tensor.Tensor { return op.inputs }

// Output returns the output tensor a + b.
func (op *AddOp) Output() *tensor.Tensor { return op.output }
