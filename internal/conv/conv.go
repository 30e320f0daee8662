// Package conv implements the N-dimensional, multi-channel convolution that
// maps activation maps and atoms to a reconstructed signal, together with the
// two adjoints needed to differentiate it.
//
// Layouts:
//
//	activations H: [N, M, P1..Pk]
//	atoms       W: [M, C, A1..Ak]
//	signal      R: [N, C, S1..Sk]
//
// Forward is a cross-correlation of the (zero-padded) activation map with the
// flipped atoms, which is a true convolution of the activations with the
// atoms:
//
//	R[n,c,x] = sum_m sum_j Hpad[n,m,x+j] * flip(W)[m,c,j]
package conv

import (
	"fmt"

	"github.com/born-ml/tnmf/internal/parallel"
	"github.com/born-ml/tnmf/internal/tensor"
)

// Reconstruct flips the atoms along their spatial axes and correlates them
// with the activation map. The result has the signal shape [N, C, S...].
func Reconstruct(h, w *tensor.Tensor, plan *Plan, par parallel.Config) *tensor.Tensor {
	return Forward(h, tensor.Flip(w, SpatialAxes(w.Rank())...), plan, par)
}

// Forward correlates the activation map h [N, M, P...] with the already
// flipped atoms wf [M, C, A...].
func Forward(h, wf *tensor.Tensor, plan *Plan, par parallel.Config) *tensor.Tensor {
	n, m, c := checkShapes("conv forward", h, wf, plan)
	ns, na, np := plan.Sample.NumElements(), plan.Atom.NumElements(), plan.NumPositions()

	out := tensor.Zeros(append(tensor.Shape{n, c}, plan.Sample...))
	hData, wData, outData := h.Data(), wf.Data(), out.Data()

	parallel.ForBatch(n, c, func(sample, ch int) {
		r := outData[(sample*c+ch)*ns : (sample*c+ch+1)*ns]
		for atom := 0; atom < m; atom++ {
			hm := hData[(sample*m+atom)*np : (sample*m+atom+1)*np]
			wm := wData[(atom*c+ch)*na : (atom*c+ch+1)*na]
			for x := range r {
				var sum float64
				for j, p := range plan.gather[x*na : (x+1)*na] {
					if p >= 0 {
						sum += hm[p] * wm[j]
					}
				}
				r[x] += sum
			}
		}
	}, par)

	return out
}

// ActivationBackward computes the gradient with respect to the activation
// map given the gradient grad [N, C, S...] of the output of Forward.
//
// Each output gradient element is scattered back to every activation position
// that contributed to it (transposed correlation).
func ActivationBackward(wf, grad *tensor.Tensor, plan *Plan, par parallel.Config) *tensor.Tensor {
	m, c := wf.Shape()[0], wf.Shape()[1]
	n := grad.Shape()[0]
	checkSignal("conv activation backward", grad, n, c, plan)
	ns, na, np := plan.Sample.NumElements(), plan.Atom.NumElements(), plan.NumPositions()

	gradH := tensor.Zeros(append(tensor.Shape{n, m}, plan.Positions...))
	gData, wData, ghData := grad.Data(), wf.Data(), gradH.Data()

	parallel.ForBatch(n, m, func(sample, atom int) {
		gh := ghData[(sample*m+atom)*np : (sample*m+atom+1)*np]
		for ch := 0; ch < c; ch++ {
			g := gData[(sample*c+ch)*ns : (sample*c+ch+1)*ns]
			wm := wData[(atom*c+ch)*na : (atom*c+ch+1)*na]
			for x, gv := range g {
				if gv == 0 {
					continue
				}
				for j, p := range plan.gather[x*na : (x+1)*na] {
					if p >= 0 {
						gh[p] += gv * wm[j]
					}
				}
			}
		}
	}, par)

	return gradH
}

// KernelBackward computes the gradient with respect to the flipped atoms
// given the activation map h and the output gradient grad.
func KernelBackward(h, grad *tensor.Tensor, plan *Plan, par parallel.Config) *tensor.Tensor {
	n, m := h.Shape()[0], h.Shape()[1]
	c := grad.Shape()[1]
	checkSignal("conv kernel backward", grad, n, c, plan)
	ns, na, np := plan.Sample.NumElements(), plan.Atom.NumElements(), plan.NumPositions()

	gradW := tensor.Zeros(append(tensor.Shape{m, c}, plan.Atom...))
	gData, hData, gwData := grad.Data(), h.Data(), gradW.Data()

	parallel.ForBatch(m, c, func(atom, ch int) {
		gw := gwData[(atom*c+ch)*na : (atom*c+ch+1)*na]
		for sample := 0; sample < n; sample++ {
			g := gData[(sample*c+ch)*ns : (sample*c+ch+1)*ns]
			hm := hData[(sample*m+atom)*np : (sample*m+atom+1)*np]
			for x, gv := range g {
				if gv == 0 {
					continue
				}
				for j, p := range plan.gather[x*na : (x+1)*na] {
					if p >= 0 {
						gw[j] += gv * hm[p]
					}
				}
			}
		}
	}, par)

	return gradW
}

func checkShapes(op string, h, wf *tensor.Tensor, plan *Plan) (n, m, c int) {
	hs, ws := h.Shape(), wf.Shape()
	k := len(plan.Sample)
	if len(hs) != k+2 || len(ws) != k+2 {
		panic(fmt.Sprintf("%s: activations %v and atoms %v must both have rank %d", op, hs, ws, k+2))
	}
	if hs[1] != ws[0] {
		panic(fmt.Sprintf("%s: activations have %d atoms, dictionary has %d", op, hs[1], ws[0]))
	}
	if !hs[2:].Equal(plan.Positions) {
		panic(fmt.Sprintf("%s: activation map %v, plan expects %v", op, hs[2:], plan.Positions))
	}
	if !ws[2:].Equal(plan.Atom) {
		panic(fmt.Sprintf("%s: atom shape %v, plan expects %v", op, ws[2:], plan.Atom))
	}
	return hs[0], hs[1], ws[1]
}

func checkSignal(op string, grad *tensor.Tensor, n, c int, plan *Plan) {
	want := append(tensor.Shape{n, c}, plan.Sample...)
	if !grad.Shape().Equal(want) {
		panic(fmt.Sprintf("%s: gradient shape %v, want %v", op, grad.Shape(), want))
	}
}
