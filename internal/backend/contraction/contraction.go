// Package contraction implements the explicit transform-contraction backend.
//
// With the flattened indices d (signal), h (atom), t (transform), m (atom
// number) and n (sample) it evaluates
//
//	R[d,n]       = sum_t,h,m T[t,d,h] W[h,m] H[t,m,n]
//	numer_H[t,m,n] = sum_d (T.W)[t,d,m] V[d,n]     denom_H: V -> R
//	numer_W[h,m]   = sum_t,d,n T[t,d,h] V[d,n] H[t,m,n]   denom_W: V -> R
//
// where (T.W)[t,d,m] = sum_h T[t,d,h] W[h,m]. Only the non-zero entries of
// each transform are visited.
package contraction

import (
	"fmt"

	"github.com/born-ml/tnmf/internal/backend"
	"github.com/born-ml/tnmf/internal/parallel"
	"github.com/born-ml/tnmf/internal/tensor"
	"github.com/born-ml/tnmf/internal/transform"
)

// Backend contracts an explicit transform set with the dictionary and the
// activations.
type Backend struct {
	layout backend.Layout
	set    *transform.Set
	par    parallel.Config
}

// Compile-time check that Backend implements backend.Backend.
var _ backend.Backend = (*Backend)(nil)

// New creates a contraction backend. The transform set must map atoms of the
// layout's atom dimension onto its signal dimension, with one transform per
// activation position.
func New(layout backend.Layout, set *transform.Set, par parallel.Config) (*Backend, error) {
	d, h := set.Dims()
	if d != layout.SignalDim() || h != layout.AtomDim() {
		return nil, fmt.Errorf("%w: transforms map %d -> %d, layout needs %d -> %d",
			tensor.ErrShapeMismatch, h, d, layout.AtomDim(), layout.SignalDim())
	}
	if set.Len() != layout.Plan.NumPositions() {
		return nil, fmt.Errorf("%w: %d transforms for %d activation positions",
			tensor.ErrShapeMismatch, set.Len(), layout.Plan.NumPositions())
	}
	return &Backend{layout: layout, set: set, par: par}, nil
}

// Name returns "contraction".
func (b *Backend) Name() string {
	return "contraction"
}

// Transforms returns the transform set.
func (b *Backend) Transforms() *transform.Set {
	return b.set
}

// Reconstruct returns R = sum_t,h,m T[t,d,h] W[h,m] H[t,m,n].
func (b *Backend) Reconstruct(w, h *tensor.Tensor) *tensor.Tensor {
	n, m, t := b.layout.Samples, b.layout.Atoms, b.set.Len()
	d, hd := b.layout.SignalDim(), b.layout.AtomDim()

	r := tensor.Zeros(b.layout.SignalShape())
	rData, wData, hData := r.Data(), w.Data(), h.Data()

	parallel.For(n, func(sample int) {
		rn := rData[sample*d : (sample+1)*d]
		for k := 0; k < t; k++ {
			entries := b.set.Entries(k)
			for atom := 0; atom < m; atom++ {
				a := hData[(sample*m+atom)*t+k]
				if a == 0 {
					continue
				}
				wm := wData[atom*hd : (atom+1)*hd]
				for _, e := range entries {
					rn[e.Row] += e.Value * wm[e.Col] * a
				}
			}
		}
	}, b.par)

	return r
}

// GradientH returns sum_d (T.W)[t,d,m] V[d,n] and the same contraction with R.
func (b *Backend) GradientH(v, w, h *tensor.Tensor) (numer, denom *tensor.Tensor) {
	r := b.Reconstruct(w, h)
	return b.contractH(v, w), b.contractH(r, w)
}

// GradientW returns sum_t,d,n T[t,d,h] V[d,n] H[t,m,n] and the same
// contraction with R.
func (b *Backend) GradientW(v, w, h *tensor.Tensor) (numer, denom *tensor.Tensor) {
	r := b.Reconstruct(w, h)
	return b.contractW(v, h), b.contractW(r, h)
}

// Energy returns 0.5 * sum((V - R)^2).
func (b *Backend) Energy(v, w, h *tensor.Tensor) float64 {
	return backend.Energy(v, b.Reconstruct(w, h))
}

// contractH computes out[n,m,t] = sum_(d,h) T[t,d,h] W[m,h] x[n,d].
func (b *Backend) contractH(x, w *tensor.Tensor) *tensor.Tensor {
	n, m, t := b.layout.Samples, b.layout.Atoms, b.set.Len()
	d, hd := b.layout.SignalDim(), b.layout.AtomDim()

	out := tensor.Zeros(b.layout.ActivationShape())
	oData, xData, wData := out.Data(), x.Data(), w.Data()

	parallel.For(n, func(sample int) {
		xn := xData[sample*d : (sample+1)*d]
		for k := 0; k < t; k++ {
			entries := b.set.Entries(k)
			for atom := 0; atom < m; atom++ {
				wm := wData[atom*hd : (atom+1)*hd]
				var sum float64
				for _, e := range entries {
					sum += e.Value * wm[e.Col] * xn[e.Row]
				}
				oData[(sample*m+atom)*t+k] = sum
			}
		}
	}, b.par)

	return out
}

// contractW computes out[m,h] = sum_t sum_d T[t,d,h] sum_n x[n,d] H[n,m,t].
func (b *Backend) contractW(x, h *tensor.Tensor) *tensor.Tensor {
	n, m, t := b.layout.Samples, b.layout.Atoms, b.set.Len()
	d, hd := b.layout.SignalDim(), b.layout.AtomDim()

	out := tensor.Zeros(b.layout.DictionaryShape())
	oData, xData, hData := out.Data(), x.Data(), h.Data()

	parallel.For(m, func(atom int) {
		om := oData[atom*hd : (atom+1)*hd]
		for k := 0; k < t; k++ {
			for _, e := range b.set.Entries(k) {
				var sum float64
				for sample := 0; sample < n; sample++ {
					sum += xData[sample*d+e.Row] * hData[(sample*m+atom)*t+k]
				}
				om[e.Col] += e.Value * sum
			}
		}
	}, b.par)

	return out
}
