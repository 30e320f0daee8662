package nmf

import (
	"bytes"
	"context"
	"errors"
	"log"
	"math"
	"math/rand"
	"testing"

	"github.com/born-ml/tnmf/internal/backend"
	"github.com/born-ml/tnmf/internal/conv"
	"github.com/born-ml/tnmf/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomSignal(seed int64, shape tensor.Shape) *tensor.Tensor {
	rng := rand.New(rand.NewSource(seed))
	v := tensor.Zeros(shape)
	v.Apply(func(float64) float64 { return rng.Float64() })
	return v
}

// pulseSignal places a fixed pattern at a few positions of every sample.
func pulseSignal(samples, length int) *tensor.Tensor {
	pattern := []float64{1, 3, 2}
	v := tensor.Zeros(tensor.Shape{samples, 1, length})
	for n := 0; n < samples; n++ {
		for start := n % 3; start+len(pattern) <= length; start += 7 {
			for i, p := range pattern {
				v.Set(p, n, 0, start+i)
			}
		}
	}
	return v
}

func atomMasses(w *tensor.Tensor) []float64 {
	mass, err := tensor.SumAxes(w, atomAxes(w)...)
	if err != nil {
		panic(err)
	}
	return mass.Data()
}

func TestNew_Defaults(t *testing.T) {
	e, err := NewSparse(Config{})
	require.NoError(t, err)

	cfg := e.Config()
	assert.Equal(t, DefaultNumAtoms, cfg.NumAtoms)
	assert.Equal(t, DefaultNumIterations, cfg.NumIterations)
	assert.Equal(t, DefaultRefitIterations, cfg.RefitIterations)
	assert.Equal(t, 1e-9, cfg.Eps)
	assert.Equal(t, conv.Full, cfg.Padding)
	assert.Equal(t, backend.Contraction, cfg.Backend)
	assert.Equal(t, Uninitialized, e.State())
	assert.Equal(t, "sparse", e.Variant().Name())
	assert.Equal(t, "", e.BackendName())
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"negative atoms", Config{NumAtoms: -1}},
		{"negative iterations", Config{NumIterations: -3}},
		{"negative refit iterations", Config{RefitIterations: -1}},
		{"negative sparsity", Config{SparsityH: -0.1}},
		{"negative eps", Config{Eps: -1e-9}},
		{"negative workers", Config{Workers: -2}},
		{"unknown padding", Config{Padding: conv.Padding(7)}},
		{"unknown backend", Config{Backend: backend.Kind(5)}},
		{"zero atom dimension", Config{AtomShape: tensor.Shape{3, 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewShiftInvariant(tt.cfg)
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	_, err := New(nil, Config{})
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestInitialize_InvalidInput(t *testing.T) {
	e, err := NewSparse(DefaultConfig())
	require.NoError(t, err)

	require.ErrorIs(t, e.Initialize(nil), ErrInvalidInput)
	require.ErrorIs(t, e.Initialize(tensor.Zeros(tensor.Shape{4, 10})), ErrInvalidInput)

	neg := tensor.Full(tensor.Shape{2, 1, 4}, 1)
	neg.Set(-0.5, 1, 0, 2)
	require.ErrorIs(t, e.Initialize(neg), ErrInvalidInput)

	nan := tensor.Full(tensor.Shape{2, 1, 4}, 1)
	nan.Set(math.NaN(), 0, 0, 0)
	require.ErrorIs(t, e.Initialize(nan), ErrInvalidInput)

	assert.Equal(t, Uninitialized, e.State())
}

func TestInitialize_AtomLargerThanSignal(t *testing.T) {
	e, err := NewShiftInvariant(Config{AtomShape: tensor.Shape{6}})
	require.NoError(t, err)

	err = e.Initialize(randomSignal(1, tensor.Shape{2, 1, 5}))
	require.ErrorIs(t, err, ErrInvalidConfig)
	require.ErrorIs(t, err, tensor.ErrInvalidShape)
}

func TestInitialize_AtomShapeRequired(t *testing.T) {
	e, err := NewShiftInvariant(Config{})
	require.NoError(t, err)
	require.ErrorIs(t, e.Initialize(randomSignal(1, tensor.Shape{2, 1, 5})), ErrInvalidConfig)

	e, err = NewShiftInvariant(Config{AtomShape: tensor.Shape{2, 2}})
	require.NoError(t, err)
	require.ErrorIs(t, e.Initialize(randomSignal(1, tensor.Shape{2, 1, 4, 4, 4})), ErrInvalidConfig)
}

func TestInitialize_ConvolutionTooManyDims(t *testing.T) {
	e, err := NewShiftInvariant(Config{AtomShape: tensor.Shape{2}, Backend: backend.Convolution})
	require.NoError(t, err)

	err = e.Initialize(randomSignal(1, tensor.Shape{1, 1, 3, 3, 3, 3}))
	require.ErrorIs(t, err, ErrNotImplemented)
}

func TestInitialize_Factors(t *testing.T) {
	e, err := NewShiftInvariant(Config{AtomShape: tensor.Shape{3}, NumAtoms: 4})
	require.NoError(t, err)
	require.NoError(t, e.Initialize(randomSignal(1, tensor.Shape{5, 2, 12})))

	assert.Equal(t, Initialized, e.State())
	assert.Equal(t, "contraction", e.BackendName())
	assert.Equal(t, tensor.Shape{4, 2, 3}, e.W().Shape())
	assert.Equal(t, tensor.Shape{5, 4, 10}, e.H().Shape())
	assert.Greater(t, e.W().Min(), 0.0)
	assert.Greater(t, e.H().Min(), 0.0)
	assert.LessOrEqual(t, e.H().Max(), 1.0)
	for _, s := range atomMasses(e.W()) {
		assert.InDelta(t, 1.0, s, 1e-12)
	}
}

func TestUpdate_NotInitialized(t *testing.T) {
	e, err := NewSparse(DefaultConfig())
	require.NoError(t, err)

	require.ErrorIs(t, e.UpdateH(true), ErrNotInitialized)
	require.ErrorIs(t, e.UpdateW(), ErrNotInitialized)
	_, err = e.Transforms()
	require.ErrorIs(t, err, ErrNotInitialized)
	assert.Nil(t, e.W())
	assert.Nil(t, e.Reconstruction())
	assert.True(t, math.IsNaN(e.Energy()))
}

func TestFit_NonNegativity(t *testing.T) {
	for seed := int64(0); seed < 4; seed++ {
		var e *Engine
		cfg := Config{
			AtomShape:     tensor.Shape{4},
			NumAtoms:      3,
			SparsityH:     0.2,
			RefitH:        true,
			NumIterations: 15,
			Seed:          seed,
			Padding:       conv.Padding(seed % 2),
			Observer: func(p Progress) error {
				assert.GreaterOrEqual(t, e.W().Min(), 0.0, "W at %s %d", p.Phase, p.Iteration)
				assert.GreaterOrEqual(t, e.H().Min(), 0.0, "H at %s %d", p.Phase, p.Iteration)
				return nil
			},
		}
		e, err := NewShiftInvariant(cfg)
		require.NoError(t, err)
		require.NoError(t, e.Fit(context.Background(), randomSignal(seed, tensor.Shape{4, 1, 16})))
		assert.Equal(t, Done, e.State())
	}
}

func TestUpdateW_NormalizesAtoms(t *testing.T) {
	e, err := NewShiftInvariant(Config{AtomShape: tensor.Shape{2, 3}, NumAtoms: 3, Seed: 3})
	require.NoError(t, err)
	require.NoError(t, e.Initialize(randomSignal(5, tensor.Shape{2, 2, 6, 7})))

	for i := 0; i < 5; i++ {
		require.NoError(t, e.UpdateH(true))
		require.NoError(t, e.UpdateW())
		for _, s := range atomMasses(e.W()) {
			assert.InDelta(t, 1.0, s, 1e-9)
		}
	}
}

func TestUpdateW_RenormalizationKeepsReconstruction(t *testing.T) {
	e, err := NewShiftInvariant(Config{AtomShape: tensor.Shape{3}, NumAtoms: 2, Seed: 1})
	require.NoError(t, err)
	require.NoError(t, e.Initialize(randomSignal(2, tensor.Shape{3, 1, 10})))

	// Scale the dictionary away from unit mass; renormalize must move the
	// scale into H without touching R.
	e.w.Apply(func(x float64) float64 { return 4 * x })
	before := e.Reconstruction()
	e.renormalize()

	assert.InDeltaSlice(t, before.Data(), e.Reconstruction().Data(), 1e-12)
	for _, s := range atomMasses(e.W()) {
		assert.InDelta(t, 1.0, s, 1e-12)
	}
}

func TestFit_EnergyNonIncreasing(t *testing.T) {
	for _, kind := range []backend.Kind{backend.Contraction, backend.Convolution} {
		for _, padding := range []conv.Padding{conv.Full, conv.Valid} {
			var energies []float64
			cfg := Config{
				AtomShape:     tensor.Shape{3},
				NumAtoms:      2,
				NumIterations: 30,
				Backend:       kind,
				Padding:       padding,
				Seed:          11,
				Observer: func(p Progress) error {
					energies = append(energies, p.Energy)
					return nil
				},
			}
			e, err := NewShiftInvariant(cfg)
			require.NoError(t, err)
			require.NoError(t, e.Fit(context.Background(), pulseSignal(4, 20)))

			require.Len(t, energies, 30)
			for i := 1; i < len(energies); i++ {
				assert.LessOrEqual(t, energies[i], energies[i-1]*(1+1e-9)+1e-12,
					"%s/%s iteration %d", kind, padding, i+1)
			}
			assert.Less(t, energies[len(energies)-1], energies[0])
		}
	}
}

func TestFit_RefitKeepsDictionary(t *testing.T) {
	var e *Engine
	var wMain, hMain *tensor.Tensor
	cfg := Config{
		AtomShape:       tensor.Shape{3},
		NumAtoms:        2,
		SparsityH:       0.5,
		RefitH:          true,
		NumIterations:   10,
		RefitIterations: 5,
		Seed:            2,
		Observer: func(p Progress) error {
			if p.Phase == Iterating && p.Iteration == 10 {
				wMain, hMain = e.W(), e.H()
			}
			return nil
		},
	}
	e, err := NewShiftInvariant(cfg)
	require.NoError(t, err)
	require.NoError(t, e.Fit(context.Background(), pulseSignal(3, 15)))

	require.NotNil(t, wMain)
	assert.Equal(t, wMain.Data(), e.W().Data())
	assert.NotEqual(t, hMain.Data(), e.H().Data())
	assert.Equal(t, 10, e.Iterations())
	assert.Equal(t, 5, e.RefitIterations())
}

func TestFit_ZeroSignal(t *testing.T) {
	for _, kind := range []backend.Kind{backend.Contraction, backend.Convolution} {
		cfg := DefaultConfig()
		cfg.AtomShape = tensor.Shape{3}
		cfg.NumAtoms = 2
		cfg.NumIterations = 5
		cfg.Backend = kind
		e, err := NewShiftInvariant(cfg)
		require.NoError(t, err)

		require.NoError(t, e.Fit(context.Background(), tensor.Zeros(tensor.Shape{2, 1, 8})))
		assert.True(t, e.W().IsFinite())
		assert.True(t, e.H().IsFinite())
		r := e.Reconstruction()
		assert.True(t, r.IsFinite())
		assert.InDelta(t, 0.0, r.SumSquares(), 1e-12)
		assert.InDelta(t, 0.0, e.Energy(), 1e-12)
	}
}

func TestSparse_IsMatrixProduct(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NumAtoms = 3
	cfg.NumIterations = 20
	e, err := NewSparse(cfg)
	require.NoError(t, err)
	require.NoError(t, e.Fit(context.Background(), randomSignal(4, tensor.Shape{6, 1, 8})))

	set, err := e.Transforms()
	require.NoError(t, err)
	require.Equal(t, 1, set.Len())
	assert.Equal(t, tensor.Eye(8).Data(), set.Matrix(0).Data())

	w, h := e.W(), e.H()
	assert.Equal(t, tensor.Shape{3, 1, 8}, w.Shape())
	assert.Equal(t, tensor.Shape{6, 3, 1}, h.Shape())

	r := e.Reconstruction()
	for n := 0; n < 6; n++ {
		for d := 0; d < 8; d++ {
			var want float64
			for m := 0; m < 3; m++ {
				want += h.At(n, m, 0) * w.At(m, 0, d)
			}
			assert.InDelta(t, want, r.At(n, 0, d), 1e-12)
		}
	}
}

func TestShiftInvariant_Transforms(t *testing.T) {
	e, err := NewShiftInvariant(Config{AtomShape: tensor.Shape{3}, NumAtoms: 1, Backend: backend.Convolution})
	require.NoError(t, err)
	require.NoError(t, e.Initialize(randomSignal(1, tensor.Shape{1, 1, 5})))

	set, err := e.Transforms()
	require.NoError(t, err)
	require.Equal(t, 3, set.Len())
	for k := 0; k < 3; k++ {
		assert.Equal(t, []int{k}, set.Offset(k))
	}
	assert.Equal(t, tensor.Shape{1, 1, 3}, e.H().Shape())

	n, err := PlacementCount(tensor.Shape{5}, tensor.Shape{3}, conv.Valid)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}

func TestFit_BackendsAgree(t *testing.T) {
	fit := func(kind backend.Kind) *Engine {
		e, err := NewShiftInvariant(Config{
			AtomShape:     tensor.Shape{2},
			NumAtoms:      2,
			SparsityH:     0.05,
			RefitH:        true,
			NumIterations: 8,
			Backend:       kind,
			Padding:       conv.Valid,
			Seed:          5,
		})
		require.NoError(t, err)
		require.NoError(t, e.Fit(context.Background(), randomSignal(6, tensor.Shape{3, 2, 5, 4})))
		return e
	}

	a, b := fit(backend.Contraction), fit(backend.Convolution)
	assert.Equal(t, "convolution", b.BackendName())
	assert.InDeltaSlice(t, a.W().Data(), b.W().Data(), 1e-8)
	assert.InDeltaSlice(t, a.H().Data(), b.H().Data(), 1e-8)
}

func TestFit_Deterministic(t *testing.T) {
	v := randomSignal(8, tensor.Shape{4, 1, 12})
	fit := func(workers int) *Engine {
		cfg := DefaultConfig()
		cfg.AtomShape = tensor.Shape{4}
		cfg.NumAtoms = 3
		cfg.NumIterations = 10
		cfg.Seed = 42
		cfg.Workers = workers
		e, err := NewShiftInvariant(cfg)
		require.NoError(t, err)
		require.NoError(t, e.Fit(context.Background(), v))
		return e
	}

	a, b := fit(1), fit(4)
	assert.Equal(t, a.W().Data(), b.W().Data())
	assert.Equal(t, a.H().Data(), b.H().Data())
}

func TestFit_DoesNotMutateInput(t *testing.T) {
	v := randomSignal(3, tensor.Shape{2, 1, 9})
	orig := v.Clone()

	e, err := NewShiftInvariant(Config{AtomShape: tensor.Shape{3}, NumAtoms: 2, NumIterations: 3})
	require.NoError(t, err)
	require.NoError(t, e.Fit(context.Background(), v))

	assert.Equal(t, orig.Data(), v.Data())
	assert.Equal(t, orig.Data(), e.V().Data())
}

func TestFit_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e, err := NewShiftInvariant(Config{AtomShape: tensor.Shape{3}, NumAtoms: 2})
	require.NoError(t, err)

	err = e.Fit(ctx, randomSignal(1, tensor.Shape{2, 1, 9}))
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, e.Iterations())
	assert.Equal(t, Iterating, e.State())
}

func TestFit_ObserverStop(t *testing.T) {
	cfg := Config{
		AtomShape:       tensor.Shape{3},
		NumAtoms:        2,
		RefitH:          true,
		RefitIterations: 4,
		Observer: func(p Progress) error {
			if p.Phase == Iterating && p.Iteration == 3 {
				return ErrStop
			}
			return nil
		},
	}
	e, err := NewShiftInvariant(cfg)
	require.NoError(t, err)
	require.NoError(t, e.Fit(context.Background(), randomSignal(1, tensor.Shape{2, 1, 9})))

	assert.Equal(t, 3, e.Iterations())
	assert.Equal(t, 4, e.RefitIterations())
	assert.Equal(t, Done, e.State())
}

func TestFit_ObserverError(t *testing.T) {
	boom := errors.New("boom")
	e, err := NewShiftInvariant(Config{
		AtomShape: tensor.Shape{3},
		Observer:  func(Progress) error { return boom },
	})
	require.NoError(t, err)

	err = e.Fit(context.Background(), randomSignal(1, tensor.Shape{2, 1, 9}))
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, e.Iterations())
}

func TestFit_Logging(t *testing.T) {
	var buf bytes.Buffer
	e, err := NewShiftInvariant(Config{
		AtomShape:     tensor.Shape{3},
		NumAtoms:      2,
		NumIterations: 4,
		Logger:        log.New(&buf, "", 0),
		LogInterval:   2,
	})
	require.NoError(t, err)
	require.NoError(t, e.Fit(context.Background(), randomSignal(1, tensor.Shape{2, 1, 9})))

	out := buf.String()
	assert.Contains(t, out, "nmf: shift iterating iteration 2: energy")
	assert.Contains(t, out, "nmf: shift iterating iteration 4: energy")
	assert.NotContains(t, out, "iteration 3")
	assert.Contains(t, out, "fit done after 4+0 iterations")
}

func TestUpdateW_RescalesActivationsPerAtom(t *testing.T) {
	e, err := NewShiftInvariant(Config{AtomShape: tensor.Shape{3}, NumAtoms: 2, Seed: 6})
	require.NoError(t, err)
	require.NoError(t, e.Initialize(randomSignal(7, tensor.Shape{3, 1, 10})))
	require.NoError(t, e.UpdateH(false))

	before := e.H()
	require.NoError(t, e.UpdateW())
	after := e.H()
	require.NotEqual(t, before.Data(), after.Data())

	// Every activation of atom m is scaled by the same factor.
	shape := after.Shape()
	for m := 0; m < shape[1]; m++ {
		ratio := after.At(0, m, 0) / before.At(0, m, 0)
		for n := 0; n < shape[0]; n++ {
			for p := 0; p < shape[2]; p++ {
				assert.InDelta(t, ratio, after.At(n, m, p)/before.At(n, m, p), 1e-9)
			}
		}
	}
}
