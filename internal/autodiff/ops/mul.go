package ops

import "github.com/born-ml/tnmf/internal/tensor"

// MulOp represents element-wise multiplication: output = a * b.
//
// Backward pass:
//   - grad_a = outputGrad * b
//   - grad_b = outputGrad * a
type MulOp struct {
	inputs []*tensor.Tensor // [a, b]
	output *tensor.Tensor
}

// NewMulOp creates a new MulOp.
func NewMulOp(a, b, output *tensor.Tensor) *MulOp {
	return &MulOp{inputs: []*tensor.Tensor{a, b}, output: output}
}

// Backward computes input gradients for multiplication.
func (op *MulOp) Backward(outputGrad *tensor.Tensor) []*tensor.Tensor {
	a, b := op.inputs[0], op.inputs[1]
	return []*tensor.Tensor{tensor.Mul(outputGrad, b), tensor.Mul(outputGrad, a)}
}

// Inputs returns the input tensors [a, b].
func (op *MulOp) Inputs() []*tensor.Tensor { return op.inputs }

// Output returns the output tensor a * b.
func (op *MulOp) Output() *tensor.Tensor { return op.output }
