// Package nmf implements transform-invariant non-negative matrix
// factorization.
//
// An Engine learns a dictionary W of atoms and non-negative activations H so
// that every signal in V is approximated by placing each atom at many
// transforms (shifts), weighted by H:
//
//	R[d,n] = sum_t,h,m T[t,d,h] W[h,m] H[t,m,n]
//
// Tensors use the layouts
//
//	V, R: [samples, channels, spatial...]
//	W:    [atoms, channels, atom spatial...]
//	H:    [samples, atoms, placements...]
//
// Fit alternates multiplicative updates of H and W for a fixed number of
// iterations and optionally re-estimates H without sparsity afterwards.
package nmf

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/born-ml/tnmf/internal/backend"
	"github.com/born-ml/tnmf/internal/backend/contraction"
	"github.com/born-ml/tnmf/internal/backend/convolution"
	"github.com/born-ml/tnmf/internal/conv"
	"github.com/born-ml/tnmf/internal/optim"
	"github.com/born-ml/tnmf/internal/parallel"
	"github.com/born-ml/tnmf/internal/tensor"
	"github.com/born-ml/tnmf/internal/transform"
)

// Engine owns the tensors of one factorization.
//
// An Engine is not safe for concurrent use. Independent fits need
// independent engines.
type Engine struct {
	variant Variant
	cfg     Config
	par     parallel.Config
	opt     optim.Optimizer

	state           State
	layout          backend.Layout
	backend         backend.Backend
	transforms      *transform.Set
	v, w, h         *tensor.Tensor
	iterations      int
	refitIterations int
}

// New creates an engine for the given variant.
// Fails with ErrInvalidConfig if cfg is invalid.
func New(variant Variant, cfg Config) (*Engine, error) {
	if variant == nil {
		return nil, fmt.Errorf("%w: nil variant", ErrInvalidConfig)
	}
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	return &Engine{
		variant: variant,
		cfg:     cfg,
		par:     cfg.parallel(),
		opt:     optim.NewMultiplicative(optim.MultiplicativeConfig{Eps: cfg.Eps}),
	}, nil
}

// NewSparse creates an engine for classical sparse NMF.
func NewSparse(cfg Config) (*Engine, error) {
	return New(Sparse{}, cfg)
}

// NewShiftInvariant creates an engine for shift-invariant NMF.
func NewShiftInvariant(cfg Config) (*Engine, error) {
	return New(ShiftInvariant{}, cfg)
}

// Initialize stores a copy of v, builds the backend for its shape and draws
// random initial factors from the configured seed.
//
// W and H start at 1 - U[0,1), so every entry is in (0, 1]; each atom of W is
// then scaled to unit mass.
func (e *Engine) Initialize(v *tensor.Tensor) error {
	if err := validateInput(v); err != nil {
		return err
	}

	sample := v.Shape()[2:]
	atom, err := e.variant.AtomShape(e.cfg.AtomShape, sample)
	if err != nil {
		return err
	}
	layout, err := backend.NewLayout(v.Shape(), atom, e.cfg.NumAtoms, e.variant.Padding(e.cfg.Padding))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	var transforms *transform.Set
	var b backend.Backend
	switch e.cfg.Backend {
	case backend.Convolution:
		b, err = convolution.New(layout, e.par)
	default:
		transforms, err = e.variant.Transforms(layout)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		b, err = contraction.New(layout, transforms, e.par)
	}
	if err != nil {
		return fmt.Errorf("nmf: %s backend: %w", e.cfg.Backend, err)
	}

	rng := rand.New(rand.NewSource(e.cfg.Seed))
	w := tensor.Zeros(layout.DictionaryShape())
	w.Apply(func(float64) float64 { return 1 - rng.Float64() })
	w, err = tensor.Normalize(w, atomAxes(w)...)
	if err != nil {
		return err
	}
	h := tensor.Zeros(layout.ActivationShape())
	h.Apply(func(float64) float64 { return 1 - rng.Float64() })

	e.layout = layout
	e.backend = b
	e.transforms = transforms
	e.v = v.Clone()
	e.w = w
	e.h = h
	e.iterations = 0
	e.refitIterations = 0
	e.state = Initialized
	return nil
}

// Fit initializes the engine with v and runs the update loop:
// NumIterations rounds of UpdateH(true) and UpdateW, then, if RefitH is set,
// RefitIterations rounds of UpdateH(false).
//
// ctx is checked between iterations. On cancellation the factors of the last
// completed iteration are kept and ctx.Err() is returned wrapped.
func (e *Engine) Fit(ctx context.Context, v *tensor.Tensor) error {
	if err := e.Initialize(v); err != nil {
		return err
	}

	e.state = Iterating
	for i := 0; i < e.cfg.NumIterations; i++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("nmf: fit interrupted after %d iterations: %w", e.iterations, err)
		}
		e.updateH(true)
		e.updateW()
		e.iterations++
		stop, err := e.report(Iterating, e.iterations)
		if err != nil {
			return err
		}
		if stop {
			break
		}
	}

	if e.cfg.RefitH {
		e.state = Refitting
		for i := 0; i < e.cfg.RefitIterations; i++ {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("nmf: refit interrupted after %d iterations: %w", e.refitIterations, err)
			}
			e.updateH(false)
			e.refitIterations++
			stop, err := e.report(Refitting, e.refitIterations)
			if err != nil {
				return err
			}
			if stop {
				break
			}
		}
	}

	e.state = Done
	if e.cfg.Logger != nil {
		e.cfg.Logger.Printf("nmf: %s fit done after %d+%d iterations, energy %.6g",
			e.variant.Name(), e.iterations, e.refitIterations, e.Energy())
	}
	return nil
}

// UpdateH applies one multiplicative update to the activations. With
// sparsity set, the configured SparsityH is added to the denominator.
func (e *Engine) UpdateH(sparsity bool) error {
	if e.state == Uninitialized {
		return ErrNotInitialized
	}
	e.updateH(sparsity)
	return nil
}

// UpdateW applies one multiplicative update to the dictionary and rescales
// every atom to unit mass.
//
// UpdateW also mutates H: H[:, m, :] is multiplied by the mass removed from
// atom m, so the reconstruction does not change by the rescaling.
func (e *Engine) UpdateW() error {
	if e.state == Uninitialized {
		return ErrNotInitialized
	}
	e.updateW()
	return nil
}

func (e *Engine) updateH(sparsity bool) {
	var penalty float64
	if sparsity {
		penalty = e.cfg.SparsityH
	}
	numer, denom := e.backend.GradientH(e.v, e.w, e.h)
	e.opt.Step(e.h, numer, denom, penalty)
}

func (e *Engine) updateW() {
	numer, denom := e.backend.GradientW(e.v, e.w, e.h)
	e.opt.Step(e.w, numer, denom, 0)
	e.renormalize()
}

// renormalize scales every atom of W to unit mass and H[:, m, :] by the mass
// removed from atom m. Atoms with zero mass are left as they are.
func (e *Engine) renormalize() {
	mass, err := tensor.SumAxes(e.w, atomAxes(e.w)...)
	if err != nil {
		panic(err)
	}
	m := e.layout.Atoms
	atomSize := e.w.NumElements() / m
	posSize := e.h.NumElements() / (e.layout.Samples * m)
	wData, hData := e.w.Data(), e.h.Data()

	for atom, s := range mass.Data() {
		if s == 0 {
			continue
		}
		wa := wData[atom*atomSize : (atom+1)*atomSize]
		for i := range wa {
			wa[i] /= s
		}
		for n := 0; n < e.layout.Samples; n++ {
			ha := hData[(n*m+atom)*posSize : (n*m+atom+1)*posSize]
			for i := range ha {
				ha[i] *= s
			}
		}
	}
}

// report logs and notifies the observer. stop is true when the observer
// returned ErrStop.
func (e *Engine) report(phase State, iteration int) (stop bool, err error) {
	logNow := e.cfg.Logger != nil && iteration%e.cfg.LogInterval == 0
	if !logNow && e.cfg.Observer == nil {
		return false, nil
	}

	energy := e.Energy()
	if logNow {
		e.cfg.Logger.Printf("nmf: %s %s iteration %d: energy %.6g", e.variant.Name(), phase, iteration, energy)
	}
	if e.cfg.Observer == nil {
		return false, nil
	}
	if err := e.cfg.Observer(Progress{Phase: phase, Iteration: iteration, Energy: energy}); err != nil {
		if errors.Is(err, ErrStop) {
			return true, nil
		}
		return false, fmt.Errorf("nmf: observer: %w", err)
	}
	return false, nil
}

// State returns the lifecycle state.
func (e *Engine) State() State {
	return e.state
}

// Variant returns the placement policy.
func (e *Engine) Variant() Variant {
	return e.variant
}

// Config returns the configuration with defaults applied.
func (e *Engine) Config() Config {
	return e.cfg
}

// Layout returns the tensor shapes of the current problem.
// The zero Layout is returned before Initialize.
func (e *Engine) Layout() backend.Layout {
	return e.layout
}

// BackendName returns the name of the gradient backend, or "" before
// Initialize.
func (e *Engine) BackendName() string {
	if e.backend == nil {
		return ""
	}
	return e.backend.Name()
}

// Iterations returns the number of completed main-loop iterations.
func (e *Engine) Iterations() int {
	return e.iterations
}

// RefitIterations returns the number of completed refit iterations.
func (e *Engine) RefitIterations() int {
	return e.refitIterations
}

// V returns a copy of the signal tensor, or nil before Initialize.
func (e *Engine) V() *tensor.Tensor {
	return cloneOrNil(e.v)
}

// W returns a copy of the dictionary, or nil before Initialize.
func (e *Engine) W() *tensor.Tensor {
	return cloneOrNil(e.w)
}

// H returns a copy of the activations, or nil before Initialize.
func (e *Engine) H() *tensor.Tensor {
	return cloneOrNil(e.h)
}

// Transforms returns the transform set. The convolution backend never
// needs it, so it is built on first request there.
func (e *Engine) Transforms() (*transform.Set, error) {
	if e.state == Uninitialized {
		return nil, ErrNotInitialized
	}
	if e.transforms == nil {
		set, err := e.variant.Transforms(e.layout)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		e.transforms = set
	}
	return e.transforms, nil
}

// Reconstruction returns R for the current factors, or nil before
// Initialize.
func (e *Engine) Reconstruction() *tensor.Tensor {
	if e.state == Uninitialized {
		return nil
	}
	return e.backend.Reconstruct(e.w, e.h)
}

// Energy returns 0.5 * sum((V - R)^2), or NaN before Initialize.
func (e *Engine) Energy() float64 {
	if e.state == Uninitialized {
		return math.NaN()
	}
	return e.backend.Energy(e.v, e.w, e.h)
}

func validateInput(v *tensor.Tensor) error {
	if v == nil {
		return fmt.Errorf("%w: nil signal tensor", ErrInvalidInput)
	}
	if v.Rank() < 3 {
		return fmt.Errorf("%w: signal tensor must be [samples, channels, spatial...], got %v",
			ErrInvalidInput, v.Shape())
	}
	if !v.IsFinite() {
		return fmt.Errorf("%w: signal tensor contains NaN or Inf", ErrInvalidInput)
	}
	if v.Min() < 0 {
		return fmt.Errorf("%w: signal tensor has negative values (min %g)", ErrInvalidInput, v.Min())
	}
	return nil
}

// atomAxes returns every axis of W but the atom axis.
func atomAxes(w *tensor.Tensor) []int {
	axes := make([]int, w.Rank()-1)
	for i := range axes {
		axes[i] = i + 1
	}
	return axes
}

func cloneOrNil(t *tensor.Tensor) *tensor.Tensor {
	if t == nil {
		return nil
	}
	return t.Clone()
}

// PlacementCount returns the number of placements of an atom within a
// sample under the given convention.
func PlacementCount(sample, atom tensor.Shape, padding conv.Padding) (int, error) {
	plan, err := conv.NewPlan(sample, atom, padding)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return plan.NumPositions(), nil
}
