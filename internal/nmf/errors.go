package nmf

import (
	"errors"

	"github.com/born-ml/tnmf/internal/backend"
)

// Errors returned by the factorization engine.
var (
	// ErrInvalidConfig is returned for configurations that cannot describe a
	// factorization, such as an atom larger than the signal or a negative
	// iteration count.
	ErrInvalidConfig = errors.New("nmf: invalid configuration")

	// ErrInvalidInput is returned when the signal tensor is not a finite,
	// non-negative [samples, channels, spatial...] tensor.
	ErrInvalidInput = errors.New("nmf: invalid input")

	// ErrNotInitialized is returned by update steps called before Initialize.
	ErrNotInitialized = errors.New("nmf: engine not initialized")

	// ErrStop can be returned by an Observer to end the current phase early.
	ErrStop = errors.New("nmf: stop requested")

	// ErrNotImplemented is returned when the selected backend does not support
	// the problem (for example convolution over too many spatial dimensions).
	ErrNotImplemented = backend.ErrNotImplemented
)
