// Package transform generates the sets of linear maps that place an atom into
// the signal space.
//
// A Set stores its transforms densely as a [t, d, h] tensor, where d is the
// flattened signal size (channels x sample elements) and h the flattened atom
// size (channels x atom elements), together with the non-zero entries of every
// transform for sparse contraction.
package transform

import (
	"fmt"

	"github.com/born-ml/tnmf/internal/conv"
	"github.com/born-ml/tnmf/internal/tensor"
)

// Entry is a non-zero element T[k][Row, Col] of a transform.
type Entry struct {
	Row   int // signal index d
	Col   int // atom index h
	Value float64
}

// Set is an ordered, immutable sequence of transforms.
type Set struct {
	matrices *tensor.Tensor // [t, d, h]
	offsets  [][]int
	entries  [][]Entry
}

// Len returns the number of transforms.
func (s *Set) Len() int {
	return s.matrices.Shape()[0]
}

// Dims returns the signal dimension d and the atom dimension h.
func (s *Set) Dims() (d, h int) {
	shape := s.matrices.Shape()
	return shape[1], shape[2]
}

// Tensor returns a copy of the [t, d, h] transform tensor.
func (s *Set) Tensor() *tensor.Tensor {
	return s.matrices.Clone()
}

// Matrix returns a copy of transform k as a [d, h] matrix.
func (s *Set) Matrix(k int) *tensor.Tensor {
	d, h := s.Dims()
	m := tensor.Zeros(tensor.Shape{d, h})
	copy(m.Data(), s.matrices.Data()[k*d*h:(k+1)*d*h])
	return m
}

// Offset returns the per-dimension shift of transform k.
func (s *Set) Offset(k int) []int {
	return append([]int(nil), s.offsets[k]...)
}

// Entries returns the non-zero entries of transform k in row-major order.
// The returned slice must not be modified.
func (s *Set) Entries(k int) []Entry {
	return s.entries[k]
}

// NumEntries returns the total number of non-zero entries over all transforms.
func (s *Set) NumEntries() int {
	n := 0
	for _, e := range s.entries {
		n += len(e)
	}
	return n
}

func newSet(matrices *tensor.Tensor, offsets [][]int) *Set {
	shape := matrices.Shape()
	t, d, h := shape[0], shape[1], shape[2]
	data := matrices.Data()

	entries := make([][]Entry, t)
	for k := 0; k < t; k++ {
		for row := 0; row < d; row++ {
			for col := 0; col < h; col++ {
				if v := data[(k*d+row)*h+col]; v != 0 {
					entries[k] = append(entries[k], Entry{Row: row, Col: col, Value: v})
				}
			}
		}
	}
	return &Set{matrices: matrices, offsets: offsets, entries: entries}
}

// Identity returns a set holding the single dim x dim identity transform:
// every atom has exactly one placement covering the whole signal.
func Identity(dim int) *Set {
	eye := tensor.Eye(dim)
	matrices, err := eye.Reshape(tensor.Shape{1, dim, dim})
	if err != nil {
		panic(err)
	}
	return newSet(matrices, [][]int{{0}})
}

// Shift returns one transform per atom placement of the given padding
// convention, ordered row-major over the placement grid (the same order as
// the activation map of a conv.Plan).
//
// The transforms are built by laying the atom at the signal origin and
// shifting that pattern along every spatial axis with zero fill; channels are
// placed independently, so each transform is block diagonal over channels.
//
// Example (sample 5, atom 3, conv.Full): offsets 0, 1, 2 and
//
//	T0 = [e0 e1 e2]   T1 = [e1 e2 e3]   T2 = [e2 e3 e4]
//
// where column a of Tk is the unit vector of the signal element the atom
// element a lands on.
func Shift(sample, atom tensor.Shape, channels int, padding conv.Padding) (*Set, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("%w: %d channels", tensor.ErrInvalidShape, channels)
	}
	plan, err := conv.NewPlan(sample, atom, padding)
	if err != nil {
		return nil, err
	}

	k := len(sample)
	ns, na := sample.NumElements(), atom.NumElements()
	d, h := channels*ns, channels*na

	// base[a, x...] = 1 where atom element a sits when the atom is at the origin.
	base := tensor.Zeros(append(tensor.Shape{na}, sample...))
	aIdx := make([]int, k)
	for a := 0; a < na; a++ {
		atom.Unravel(a, aIdx)
		base.Data()[a*ns+sample.Ravel(aIdx)] = 1
	}

	t := plan.NumPositions()
	matrices := tensor.Zeros(tensor.Shape{t, d, h})
	data := matrices.Data()
	offsets := make([][]int, t)
	for pos := 0; pos < t; pos++ {
		offsets[pos] = plan.Offset(pos)
		shifted := base
		for axis, step := range offsets[pos] {
			if step != 0 {
				shifted = tensor.Shift(shifted, step, axis+1)
			}
		}
		// Transpose [a, x] into [x, a] for every channel block.
		sd := shifted.Data()
		for a := 0; a < na; a++ {
			for x := 0; x < ns; x++ {
				v := sd[a*ns+x]
				if v == 0 {
					continue
				}
				for c := 0; c < channels; c++ {
					data[(pos*d+c*ns+x)*h+c*na+a] = v
				}
			}
		}
	}

	return newSet(matrices, offsets), nil
}
