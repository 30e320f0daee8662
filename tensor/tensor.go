// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/tnmf/internal/tensor"
)

// Type aliases for public API

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 1, 100} holds two single-channel series of length 100.
type Shape = tensor.Shape

// Tensor is a dense, row-major float64 tensor.
type Tensor = tensor.Tensor

// Errors returned by tensor constructors and operations.
var (
	ErrInvalidShape  = tensor.ErrInvalidShape
	ErrShapeMismatch = tensor.ErrShapeMismatch
)

// New creates a zero-filled tensor.
func New(shape Shape) (*Tensor, error) {
	return tensor.New(shape)
}

// Zeros creates a zero-filled tensor. Panics if the shape is invalid.
func Zeros(shape Shape) *Tensor {
	return tensor.Zeros(shape)
}

// Full creates a tensor filled with value. Panics if the shape is invalid.
func Full(shape Shape, value float64) *Tensor {
	return tensor.Full(shape, value)
}

// FromSlice creates a tensor from a copy of data.
func FromSlice(data []float64, shape Shape) (*Tensor, error) {
	return tensor.FromSlice(data, shape)
}

// FromSignals stacks equally long 1-D signals into a [N, 1, D] tensor.
func FromSignals(signals [][]float64) (*Tensor, error) {
	return tensor.FromSignals(signals)
}

// Eye creates an n x n identity matrix.
func Eye(n int) *Tensor {
	return tensor.Eye(n)
}

// Normalize returns a copy of t whose values along axes sum to one.
// Slices with zero sum are copied unchanged.
func Normalize(t *Tensor, axes ...int) (*Tensor, error) {
	return tensor.Normalize(t, axes...)
}

// SumAxes sums over axes, keeping them as size-1 dimensions.
func SumAxes(t *Tensor, axes ...int) (*Tensor, error) {
	return tensor.SumAxes(t, axes...)
}

// Shift moves the values of t by step along axis, filling with zeros.
func Shift(t *Tensor, step, axis int) *Tensor {
	return tensor.Shift(t, step, axis)
}

// Flip reverses t along the given axes.
func Flip(t *Tensor, axes ...int) *Tensor {
	return tensor.Flip(t, axes...)
}
