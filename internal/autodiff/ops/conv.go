package ops

import (
	"github.com/born-ml/tnmf/internal/conv"
	"github.com/born-ml/tnmf/internal/parallel"
	"github.com/born-ml/tnmf/internal/tensor"
)

// ConvOp records the reconstruction correlation for autodiff.
//
// Forward: output = conv.Forward(activations, flippedAtoms)
//
// Backward (gradients):
//   - d_activations: transposed correlation of d_output with the atoms
//   - d_atoms:       correlation of the activations with d_output
type ConvOp struct {
	activations *tensor.Tensor
	atoms       *tensor.Tensor
	output      *tensor.Tensor
	plan        *conv.Plan
	par         parallel.Config
}

// NewConvOp creates a new ConvOp.
func NewConvOp(activations, atoms, output *tensor.Tensor, plan *conv.Plan, par parallel.Config) *ConvOp {
	return &ConvOp{
		activations: activations,
		atoms:       atoms,
		output:      output,
		plan:        plan,
		par:         par,
	}
}

// Inputs returns the input tensors [activations, atoms].
func (op *ConvOp) Inputs() []*tensor.Tensor {
	return []*tensor.Tensor{op.activations, op.atoms}
}

// Output returns the reconstructed signal.
func (op *ConvOp) Output() *tensor.Tensor {
	return op.output
}

// Backward computes gradients for both the activation map and the atoms.
func (op *ConvOp) Backward(outputGrad *tensor.Tensor) []*tensor.Tensor {
	gradH := conv.ActivationBackward(op.atoms, outputGrad, op.plan, op.par)
	gradW := conv.KernelBackward(op.activations, outputGrad, op.plan, op.par)
	return []*tensor.Tensor{gradH, gradW}
}
