package conv

import (
	"fmt"

	"github.com/born-ml/tnmf/internal/tensor"
)

// Plan holds the index bookkeeping of one (sample shape, atom shape, padding)
// combination: the activation map shape and, for every output element x and
// every flipped-atom element j, the activation position read by the
// correlation.
type Plan struct {
	Sample    tensor.Shape // spatial shape of one signal channel
	Atom      tensor.Shape // spatial shape of one atom channel
	Positions tensor.Shape // spatial shape of the activation map
	Padding   Padding

	pad    []int
	gather []int // [x*|A| + j] -> flat position, or -1 if it falls into the padding
}

// NewPlan validates the shapes and builds the gather table.
//
// Fails with tensor.ErrInvalidShape if the ranks differ, a dimension is not
// positive, or the atom is larger than the sample along any dimension.
func NewPlan(sample, atom tensor.Shape, padding Padding) (*Plan, error) {
	if len(sample) == 0 || len(sample) != len(atom) {
		return nil, fmt.Errorf("%w: atom shape %v does not match sample shape %v",
			tensor.ErrInvalidShape, atom, sample)
	}
	if err := sample.Validate(); err != nil {
		return nil, err
	}
	if err := atom.Validate(); err != nil {
		return nil, err
	}
	for i := range sample {
		if atom[i] > sample[i] {
			return nil, fmt.Errorf("%w: atom size %d exceeds signal size %d along dimension %d",
				tensor.ErrInvalidShape, atom[i], sample[i], i)
		}
	}

	k := len(sample)
	positions := make(tensor.Shape, k)
	pad := make([]int, k)
	for i := range sample {
		switch padding {
		case Full:
			positions[i] = sample[i] - atom[i] + 1
			pad[i] = atom[i] - 1
		case Valid:
			positions[i] = sample[i] + atom[i] - 1
		default:
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedPadding, padding)
		}
	}

	ns, na := sample.NumElements(), atom.NumElements()
	gather := make([]int, ns*na)
	xIdx := make([]int, k)
	jIdx := make([]int, k)
	qIdx := make([]int, k)
	for x := 0; x < ns; x++ {
		sample.Unravel(x, xIdx)
		for j := 0; j < na; j++ {
			atom.Unravel(j, jIdx)
			for i := range qIdx {
				qIdx[i] = xIdx[i] + jIdx[i] - pad[i]
			}
			gather[x*na+j] = positions.Ravel(qIdx)
		}
	}

	return &Plan{
		Sample:    sample.Clone(),
		Atom:      atom.Clone(),
		Positions: positions,
		Padding:   padding,
		pad:       pad,
		gather:    gather,
	}, nil
}

// Offset returns the shift of the atom's origin for the flat activation
// position pos: the atom element a lands on signal element Offset(pos) + a.
func (p *Plan) Offset(pos int) []int {
	idx := make([]int, len(p.Positions))
	p.Positions.Unravel(pos, idx)
	for i := range idx {
		idx[i] += p.pad[i] - (p.Atom[i] - 1)
	}
	return idx
}

// NumPositions returns the number of placements per atom.
func (p *Plan) NumPositions() int {
	return p.Positions.NumElements()
}

// SpatialAxes returns the axes 2..rank-1 of a [batch, channel, spatial...] tensor.
func SpatialAxes(rank int) []int {
	axes := make([]int, 0, rank-2)
	for a := 2; a < rank; a++ {
		axes = append(axes, a)
	}
	return axes
}
