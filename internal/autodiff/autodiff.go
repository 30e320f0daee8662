// Package autodiff implements the reverse-mode differentiation used by the
// convolution backend to obtain the multiplicative-update terms from the
// reconstruction energy.
//
// Graph evaluates the forward pass of a small set of operations and records
// each of them on a GradientTape; Backward walks the tape in reverse and
// applies the chain rule.
//
// Usage:
//
//	g := autodiff.New(parallel.DefaultConfig())
//	r := g.Conv(h, g.Flip(w, 2), plan)
//	energy := g.Sum(g.Mul(r, v))
//	grads := g.Backward(energy)
//	dW := autodiff.Grad(grads, w)
package autodiff

import (
	"github.com/born-ml/tnmf/internal/autodiff/ops"
	"github.com/born-ml/tnmf/internal/conv"
	"github.com/born-ml/tnmf/internal/parallel"
	"github.com/born-ml/tnmf/internal/tensor"
)

// Graph computes operations and records them for differentiation.
// A Graph is not safe for concurrent use.
type Graph struct {
	tape *GradientTape
	par  parallel.Config
}

// New creates a Graph whose tape is already recording.
func New(par parallel.Config) *Graph {
	g := &Graph{tape: NewGradientTape(), par: par}
	g.tape.StartRecording()
	return g
}

// Tape returns the gradient tape for manual control.
func (g *Graph) Tape() *GradientTape {
	return g.tape
}

// Add returns a + b.
func (g *Graph) Add(a, b *tensor.Tensor) *tensor.Tensor {
	out := tensor.Add(a, b)
	g.tape.Record(ops.NewAddOp(a, b, out))
	return out
}

// Mul returns a * b element-wise.
func (g *Graph) Mul(a, b *tensor.Tensor) *tensor.Tensor {
	out := tensor.Mul(a, b)
	g.tape.Record(ops.NewMulOp(a, b, out))
	return out
}

// Scale returns s * x.
func (g *Graph) Scale(x *tensor.Tensor, s float64) *tensor.Tensor {
	out := tensor.Scale(x, s)
	g.tape.Record(ops.NewScaleOp(x, out, s))
	return out
}

// Square returns x * x element-wise.
func (g *Graph) Square(x *tensor.Tensor) *tensor.Tensor {
	out := tensor.Square(x)
	g.tape.Record(ops.NewSquareOp(x, out))
	return out
}

// Sum reduces x to a scalar tensor.
func (g *Graph) Sum(x *tensor.Tensor) *tensor.Tensor {
	out := tensor.Full(tensor.Shape{}, x.Sum())
	g.tape.Record(ops.NewSumOp(x, out))
	return out
}

// Flip reverses x along the given axes.
func (g *Graph) Flip(x *tensor.Tensor, axes ...int) *tensor.Tensor {
	out := tensor.Flip(x, axes...)
	g.tape.Record(ops.NewFlipOp(x, out, axes))
	return out
}

// Conv correlates the activation map with the flipped atoms (see conv.Forward).
func (g *Graph) Conv(activations, flippedAtoms *tensor.Tensor, plan *conv.Plan) *tensor.Tensor {
	out := conv.Forward(activations, flippedAtoms, plan, g.par)
	g.tape.Record(ops.NewConvOp(activations, flippedAtoms, out, plan, g.par))
	return out
}

// Backward differentiates output with respect to everything on the tape.
func (g *Graph) Backward(output *tensor.Tensor) map[*tensor.Tensor]*tensor.Tensor {
	return g.tape.Backward(output)
}

// Grad returns the gradient recorded for x, or zeros if output does not
// depend on x.
func Grad(grads map[*tensor.Tensor]*tensor.Tensor, x *tensor.Tensor) *tensor.Tensor {
	if grad, ok := grads[x]; ok {
		return grad
	}
	return tensor.Zeros(x.Shape())
}
