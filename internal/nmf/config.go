package nmf

import (
	"fmt"
	"log"

	"github.com/born-ml/tnmf/internal/backend"
	"github.com/born-ml/tnmf/internal/conv"
	"github.com/born-ml/tnmf/internal/optim"
	"github.com/born-ml/tnmf/internal/parallel"
	"github.com/born-ml/tnmf/internal/tensor"
)

// Defaults applied to zero-valued Config fields.
const (
	DefaultNumAtoms        = 10
	DefaultNumIterations   = 100
	DefaultRefitIterations = 10
	DefaultLogInterval     = 10
)

// Config holds the parameters of a factorization.
//
// Zero values select the defaults, so Config{AtomShape: tensor.Shape{5}} is a
// complete shift-invariant configuration. SparsityH and RefitH have no
// implicit default; DefaultConfig sets both.
type Config struct {
	// AtomShape is the spatial shape of an atom. A single value is used for
	// every spatial dimension. Ignored by the sparse variant.
	AtomShape tensor.Shape

	NumAtoms        int     // Dictionary size (default: 10)
	SparsityH       float64 // L1 weight on the activations during the main loop
	RefitH          bool    // Re-estimate H without sparsity after the main loop
	NumIterations   int     // Main loop iterations (default: 100)
	RefitIterations int     // Refit iterations (default: 10)
	Eps             float64 // Denominator stabilizer (default: 1e-9)

	Padding conv.Padding // Placement convention (default: conv.Full)
	Backend backend.Kind // Gradient backend (default: backend.Contraction)

	Seed    int64 // Seed of the random initialization
	Workers int   // Worker goroutines; 0 uses one per CPU, 1 runs sequentially

	Logger      *log.Logger // Progress logging; nil disables it
	LogInterval int         // Log every LogInterval iterations (default: 10)

	// Observer is called after every iteration of both phases. Returning
	// ErrStop ends the phase; any other error aborts Fit.
	Observer func(Progress) error
}

// DefaultConfig returns the configuration of a sparse, refitted
// factorization with the default sizes.
func DefaultConfig() Config {
	return Config{
		NumAtoms:        DefaultNumAtoms,
		SparsityH:       0.1,
		RefitH:          true,
		NumIterations:   DefaultNumIterations,
		RefitIterations: DefaultRefitIterations,
		Eps:             optim.DefaultEps,
	}
}

// Progress describes the engine after one iteration.
type Progress struct {
	Phase     State   // Iterating or Refitting
	Iteration int     // 1-based iteration within the phase
	Energy    float64 // 0.5 * sum((V - R)^2)
}

// withDefaults validates c and fills in zero-valued fields.
func (c Config) withDefaults() (Config, error) {
	if c.NumAtoms == 0 {
		c.NumAtoms = DefaultNumAtoms
	}
	if c.NumIterations == 0 {
		c.NumIterations = DefaultNumIterations
	}
	if c.RefitIterations == 0 {
		c.RefitIterations = DefaultRefitIterations
	}
	if c.Eps == 0 {
		c.Eps = optim.DefaultEps
	}
	if c.LogInterval == 0 {
		c.LogInterval = DefaultLogInterval
	}

	switch {
	case c.NumAtoms < 0:
		return c, fmt.Errorf("%w: %d atoms", ErrInvalidConfig, c.NumAtoms)
	case c.NumIterations < 0:
		return c, fmt.Errorf("%w: %d iterations", ErrInvalidConfig, c.NumIterations)
	case c.RefitIterations < 0:
		return c, fmt.Errorf("%w: %d refit iterations", ErrInvalidConfig, c.RefitIterations)
	case c.SparsityH < 0:
		return c, fmt.Errorf("%w: negative sparsity %g", ErrInvalidConfig, c.SparsityH)
	case c.Eps < 0:
		return c, fmt.Errorf("%w: negative eps %g", ErrInvalidConfig, c.Eps)
	case c.Workers < 0:
		return c, fmt.Errorf("%w: %d workers", ErrInvalidConfig, c.Workers)
	case c.LogInterval < 0:
		return c, fmt.Errorf("%w: log interval %d", ErrInvalidConfig, c.LogInterval)
	}
	if c.Padding != conv.Full && c.Padding != conv.Valid {
		return c, fmt.Errorf("%w: %w: %v", ErrInvalidConfig, conv.ErrUnsupportedPadding, c.Padding)
	}
	if c.Backend != backend.Contraction && c.Backend != backend.Convolution {
		return c, fmt.Errorf("%w: %w: %v", ErrInvalidConfig, backend.ErrUnknownKind, c.Backend)
	}
	if err := c.AtomShape.Validate(); err != nil {
		return c, fmt.Errorf("%w: atom shape: %w", ErrInvalidConfig, err)
	}
	return c, nil
}

func (c Config) parallel() parallel.Config {
	if c.Workers == 0 {
		return parallel.DefaultConfig()
	}
	if c.Workers == 1 {
		return parallel.Sequential()
	}
	return parallel.WithWorkers(c.Workers)
}
