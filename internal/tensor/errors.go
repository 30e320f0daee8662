package tensor

import "errors"

// Errors returned by tensor constructors and shape-checked operations.
var (
	// ErrInvalidShape is returned when a shape has a non-positive dimension
	// or does not fit the operation (for example an atom larger than its signal).
	ErrInvalidShape = errors.New("tensor: invalid shape")

	// ErrShapeMismatch is returned when two operands have incompatible shapes
	// or a slice length does not match the requested shape.
	ErrShapeMismatch = errors.New("tensor: shape mismatch")
)
