package ops

import "github.com/born-ml/tnmf/internal/tensor"

// ScaleOp represents multiplication by a constant: output = s * x.
type ScaleOp struct {
	inputs []*tensor.Tensor // [x]
	output *tensor.Tensor
	scale  float64
}

// NewScaleOp creates a new ScaleOp.
func NewScaleOp(x, output *tensor.Tensor, scale float64) *ScaleOp {
	return &ScaleOp{inputs: []*tensor.Tensor{x}, output: output, scale: scale}
}

// Backward returns s * outputGrad.
func (op *ScaleOp) Backward(outputGrad *tensor.Tensor) []*tensor.Tensor {
	return []*tensor.Tensor{tensor.Scale(outputGrad, op.scale)}
}

// Inputs returns the input tensors [x].
func (op *ScaleOp) Inputs() []*tensor.Tensor { return op.inputs }

// Output returns the output tensor s * x.
func (op *ScaleOp) Output() *tensor.Tensor { return op.output }
