// Package backend defines the gradient backends of the factorization engine.
//
// A Backend evaluates the reconstruction R of the signal tensor V from the
// dictionary W and the activations H and supplies the numerator/denominator
// pairs of the multiplicative update
//
//	X <- X * numer / (denom + eps)
//
// Implementations:
//   - contraction: explicit transform-tensor contraction, closed-form gradients
//   - convolution: convolutional reconstruction, gradients by reverse-mode
//     differentiation of the energy terms
package backend

import (
	"errors"
	"fmt"
	"strings"

	"github.com/born-ml/tnmf/internal/conv"
	"github.com/born-ml/tnmf/internal/tensor"
)

// ErrNotImplemented is returned when a backend cannot handle a configuration
// (for example more spatial dimensions than its convolution supports).
var ErrNotImplemented = errors.New("backend: not implemented")

// ErrUnknownKind is returned by ParseKind for unknown backend names.
var ErrUnknownKind = errors.New("backend: unknown kind")

// Backend computes reconstructions and multiplicative-update terms.
//
// All tensors use the layouts described by Layout:
//
//	V, R: [N, C, S...]   W: [M, C, A...]   H: [N, M, P...]
type Backend interface {
	// Name returns a short identifier such as "contraction".
	Name() string

	// Reconstruct returns R for the given dictionary and activations.
	Reconstruct(w, h *tensor.Tensor) *tensor.Tensor

	// GradientW returns the numerator and denominator of the W update.
	GradientW(v, w, h *tensor.Tensor) (numer, denom *tensor.Tensor)

	// GradientH returns the numerator and denominator of the H update.
	GradientH(v, w, h *tensor.Tensor) (numer, denom *tensor.Tensor)

	// Energy returns the reconstruction error 0.5 * sum((V - R)^2).
	Energy(v, w, h *tensor.Tensor) float64
}

// Kind selects a Backend implementation.
type Kind int

// Supported backends.
const (
	Contraction Kind = iota
	Convolution
)

// String returns the backend name accepted by ParseKind.
func (k Kind) String() string {
	switch k {
	case Contraction:
		return "contraction"
	case Convolution:
		return "convolution"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind parses "contraction" or "convolution" (case-insensitive).
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "contraction":
		return Contraction, nil
	case "convolution":
		return Convolution, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Layout describes the tensor shapes of one factorization problem.
type Layout struct {
	Samples  int // N
	Channels int // C
	Atoms    int // M

	Plan *conv.Plan // sample, atom and activation-map shapes plus padding
}

// NewLayout derives the layout from the signal shape [N, C, S...], the
// spatial atom shape and the number of atoms.
func NewLayout(signal, atom tensor.Shape, atoms int, padding conv.Padding) (Layout, error) {
	if len(signal) < 3 {
		return Layout{}, fmt.Errorf("%w: signal tensor must be [samples, channels, spatial...], got %v",
			tensor.ErrInvalidShape, signal)
	}
	if err := signal.Validate(); err != nil {
		return Layout{}, err
	}
	if atoms < 1 {
		return Layout{}, fmt.Errorf("%w: %d atoms", tensor.ErrInvalidShape, atoms)
	}
	plan, err := conv.NewPlan(signal[2:], atom, padding)
	if err != nil {
		return Layout{}, err
	}
	return Layout{
		Samples:  signal[0],
		Channels: signal[1],
		Atoms:    atoms,
		Plan:     plan,
	}, nil
}

// SignalShape returns [N, C, S...].
func (l Layout) SignalShape() tensor.Shape {
	return append(tensor.Shape{l.Samples, l.Channels}, l.Plan.Sample...)
}

// DictionaryShape returns [M, C, A...].
func (l Layout) DictionaryShape() tensor.Shape {
	return append(tensor.Shape{l.Atoms, l.Channels}, l.Plan.Atom...)
}

// ActivationShape returns [N, M, P...].
func (l Layout) ActivationShape() tensor.Shape {
	return append(tensor.Shape{l.Samples, l.Atoms}, l.Plan.Positions...)
}

// SignalDim returns d, the flattened size of one sample (channels x sample elements).
func (l Layout) SignalDim() int {
	return l.Channels * l.Plan.Sample.NumElements()
}

// AtomDim returns h, the flattened size of one atom (channels x atom elements).
func (l Layout) AtomDim() int {
	return l.Channels * l.Plan.Atom.NumElements()
}

// Energy returns 0.5 * sum((v - r)^2).
func Energy(v, r *tensor.Tensor) float64 {
	var e float64
	rd := r.Data()
	for i, x := range v.Data() {
		diff := x - rd[i]
		e += diff * diff
	}
	return 0.5 * e
}
