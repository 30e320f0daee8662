package nmf

import (
	"fmt"

	"github.com/born-ml/tnmf/internal/backend"
	"github.com/born-ml/tnmf/internal/conv"
	"github.com/born-ml/tnmf/internal/tensor"
	"github.com/born-ml/tnmf/internal/transform"
)

// Variant supplies the placement policy of a factorization: how large an
// atom is and which transforms place it into the signal. Everything else is
// shared by the Engine.
type Variant interface {
	// Name returns a short identifier such as "sparse".
	Name() string

	// AtomShape returns the spatial atom shape for a signal with the given
	// spatial shape.
	AtomShape(configured, sample tensor.Shape) (tensor.Shape, error)

	// Padding returns the placement convention to use.
	Padding(configured conv.Padding) conv.Padding

	// Transforms builds the transform set of a layout.
	Transforms(layout backend.Layout) (*transform.Set, error)
}

// Sparse is classical (sparse) NMF: every atom spans the whole sample and has
// a single placement, so the reconstruction is R = W H.
type Sparse struct{}

// Name returns "sparse".
func (Sparse) Name() string { return "sparse" }

// AtomShape returns the sample shape.
func (Sparse) AtomShape(_, sample tensor.Shape) (tensor.Shape, error) {
	return sample.Clone(), nil
}

// Padding returns conv.Full, the convention with a single placement.
func (Sparse) Padding(conv.Padding) conv.Padding { return conv.Full }

// Transforms returns the identity.
func (Sparse) Transforms(layout backend.Layout) (*transform.Set, error) {
	return transform.Identity(layout.SignalDim()), nil
}

// ShiftInvariant places every atom at every shift of the configured padding
// convention.
type ShiftInvariant struct{}

// Name returns "shift".
func (ShiftInvariant) Name() string { return "shift" }

// AtomShape requires a configured atom shape with either one value, used for
// every spatial dimension, or one value per dimension.
func (ShiftInvariant) AtomShape(configured, sample tensor.Shape) (tensor.Shape, error) {
	switch len(configured) {
	case 0:
		return nil, fmt.Errorf("%w: shift-invariant factorization needs an atom shape", ErrInvalidConfig)
	case len(sample):
		return configured.Clone(), nil
	case 1:
		atom := make(tensor.Shape, len(sample))
		for i := range atom {
			atom[i] = configured[0]
		}
		return atom, nil
	default:
		return nil, fmt.Errorf("%w: atom shape %v for %d-dimensional samples",
			ErrInvalidConfig, configured, len(sample))
	}
}

// Padding returns the configured convention.
func (ShiftInvariant) Padding(configured conv.Padding) conv.Padding { return configured }

// Transforms returns every shift of the atom within the signal.
func (ShiftInvariant) Transforms(layout backend.Layout) (*transform.Set, error) {
	return transform.Shift(layout.Plan.Sample, layout.Plan.Atom, layout.Channels, layout.Plan.Padding)
}
