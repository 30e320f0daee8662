// Package convolution implements the convolutional backend.
//
// The reconstruction is the convolution of every activation map with its
// atom, summed over atoms. The multiplicative-update terms are the gradients
// of the two energy terms
//
//	energy_neg = sum(R * V)
//	energy_pos = 0.5 * (sum(V^2) + sum(R^2))
//
// obtained by reverse-mode differentiation: d energy_neg is the numerator and
// d energy_pos the denominator. Their difference is the gradient of
// 0.5 * sum((V - R)^2).
package convolution

import (
	"fmt"

	"github.com/born-ml/tnmf/internal/autodiff"
	"github.com/born-ml/tnmf/internal/backend"
	"github.com/born-ml/tnmf/internal/conv"
	"github.com/born-ml/tnmf/internal/parallel"
	"github.com/born-ml/tnmf/internal/tensor"
)

// MaxSpatialDims is the highest number of spatial dimensions the backend
// accepts (1-D series, 2-D images, 3-D volumes).
const MaxSpatialDims = 3

// Backend reconstructs by convolution and differentiates the energy terms.
type Backend struct {
	layout backend.Layout
	par    parallel.Config
}

// Compile-time check that Backend implements backend.Backend.
var _ backend.Backend = (*Backend)(nil)

// New creates a convolution backend.
// Fails with backend.ErrNotImplemented for more than MaxSpatialDims dimensions.
func New(layout backend.Layout, par parallel.Config) (*Backend, error) {
	if k := len(layout.Plan.Sample); k > MaxSpatialDims {
		return nil, fmt.Errorf("%w: convolution over %d spatial dimensions (max %d)",
			backend.ErrNotImplemented, k, MaxSpatialDims)
	}
	return &Backend{layout: layout, par: par}, nil
}

// Name returns "convolution".
func (b *Backend) Name() string {
	return "convolution"
}

// Reconstruct convolves the activation maps with the atoms.
func (b *Backend) Reconstruct(w, h *tensor.Tensor) *tensor.Tensor {
	return conv.Reconstruct(h, w, b.layout.Plan, b.par)
}

// GradientW differentiates both energy terms with respect to W.
func (b *Backend) GradientW(v, w, h *tensor.Tensor) (numer, denom *tensor.Tensor) {
	return b.gradients(v, w, h, w)
}

// GradientH differentiates both energy terms with respect to H.
func (b *Backend) GradientH(v, w, h *tensor.Tensor) (numer, denom *tensor.Tensor) {
	return b.gradients(v, w, h, h)
}

// Energy returns 0.5 * sum((V - R)^2).
func (b *Backend) Energy(v, w, h *tensor.Tensor) float64 {
	return backend.Energy(v, b.Reconstruct(w, h))
}

// EnergyTerms returns the values of energy_neg and energy_pos.
func (b *Backend) EnergyTerms(v, w, h *tensor.Tensor) (neg, pos float64) {
	g := autodiff.New(b.par)
	g.Tape().StopRecording()
	negT, posT := b.energyTerms(g, v, w, h)
	return negT.Item(), posT.Item()
}

func (b *Backend) gradients(v, w, h, wrt *tensor.Tensor) (numer, denom *tensor.Tensor) {
	g := autodiff.New(b.par)
	neg, pos := b.energyTerms(g, v, w, h)
	numer = autodiff.Grad(g.Backward(neg), wrt)
	denom = autodiff.Grad(g.Backward(pos), wrt)
	return numer, denom
}

func (b *Backend) energyTerms(g *autodiff.Graph, v, w, h *tensor.Tensor) (neg, pos *tensor.Tensor) {
	flipped := g.Flip(w, conv.SpatialAxes(w.Rank())...)
	r := g.Conv(h, flipped, b.layout.Plan)
	neg = g.Sum(g.Mul(r, v))
	pos = g.Scale(g.Add(g.Sum(g.Square(v)), g.Sum(g.Square(r))), 0.5)
	return neg, pos
}
