// Package tensor provides the dense float64 tensors used by the factorization
// engine, together with the reductions, normalization and shift helpers the
// transform generator and the backends rely on.
package tensor

import (
	"fmt"
	"math"
)

// Tensor is a dense, row-major, float64 tensor.
//
// Tensors created by Reshape share their data with the source tensor.
//
// Example:
//
//	t := tensor.Zeros(tensor.Shape{3, 4})
//	t.Set(1.5, 1, 2)
//	v := t.At(1, 2) // 1.5
type Tensor struct {
	shape   Shape
	strides []int
	data    []float64
}

// New creates a zero-filled tensor with the given shape.
func New(shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	return &Tensor{
		shape:   shape.Clone(),
		strides: shape.ComputeStrides(),
		data:    make([]float64, shape.NumElements()),
	}, nil
}

// Zeros creates a zero-filled tensor.
// Panics if the shape is invalid.
func Zeros(shape Shape) *Tensor {
	t, err := New(shape)
	if err != nil {
		panic(err)
	}
	return t
}

// Full creates a tensor filled with a specific value.
// Panics if the shape is invalid.
func Full(shape Shape, value float64) *Tensor {
	t := Zeros(shape)
	t.Fill(value)
	return t
}

// FromSlice creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice(data []float64, shape Shape) (*Tensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("%w: shape %v requires %d elements, but got %d",
			ErrShapeMismatch, shape, shape.NumElements(), len(data))
	}
	t, err := New(shape)
	if err != nil {
		return nil, err
	}
	copy(t.data, data)
	return t, nil
}

// FromSignals stacks equally long 1-D signals into a [N, 1, D] tensor,
// the single-channel signal layout used by the factorization engine.
func FromSignals(signals [][]float64) (*Tensor, error) {
	if len(signals) == 0 {
		return nil, fmt.Errorf("%w: no signals", ErrInvalidShape)
	}
	d := len(signals[0])
	t, err := New(Shape{len(signals), 1, d})
	if err != nil {
		return nil, err
	}
	for n, s := range signals {
		if len(s) != d {
			return nil, fmt.Errorf("%w: signal %d has %d values, want %d", ErrShapeMismatch, n, len(s), d)
		}
		copy(t.data[n*d:], s)
	}
	return t, nil
}

// Eye creates an n x n identity matrix.
func Eye(n int) *Tensor {
	t := Zeros(Shape{n, n})
	for i := 0; i < n; i++ {
		t.data[i*n+i] = 1
	}
	return t
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// Rank returns the number of dimensions.
func (t *Tensor) Rank() int {
	return len(t.shape)
}

// Strides returns the tensor's memory strides.
func (t *Tensor) Strides() []int {
	return t.strides
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return len(t.data)
}

// Data returns the tensor's backing slice.
//
// WARNING: Modifications to the returned slice will modify the tensor.
func (t *Tensor) Data() []float64 {
	return t.data
}

// Item returns the value of a single-element tensor.
// Panics if the tensor has more than one element.
func (t *Tensor) Item() float64 {
	if len(t.data) != 1 {
		panic(fmt.Sprintf("Item() only works for single-element tensors, got shape %v", t.shape))
	}
	return t.data[0]
}

// At returns the element at the given indices.
// Panics if indices are out of bounds.
func (t *Tensor) At(indices ...int) float64 {
	return t.data[t.offset(indices)]
}

// Set sets the element at the given indices.
// Panics if indices are out of bounds.
func (t *Tensor) Set(value float64, indices ...int) {
	t.data[t.offset(indices)] = value
}

func (t *Tensor) offset(indices []int) int {
	if len(indices) != len(t.shape) {
		panic(fmt.Sprintf("expected %d indices, got %d", len(t.shape), len(indices)))
	}
	offset := 0
	for i, idx := range indices {
		if idx < 0 || idx >= t.shape[i] {
			panic(fmt.Sprintf("index %d out of bounds for dimension %d (size %d)", idx, i, t.shape[i]))
		}
		offset += idx * t.strides[i]
	}
	return offset
}

// Reshape returns a tensor with a new shape that shares this tensor's data.
func (t *Tensor) Reshape(shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if shape.NumElements() != len(t.data) {
		return nil, fmt.Errorf("%w: cannot reshape %v into %v", ErrShapeMismatch, t.shape, shape)
	}
	return &Tensor{
		shape:   shape.Clone(),
		strides: shape.ComputeStrides(),
		data:    t.data,
	}, nil
}

// Clone creates a deep copy of the tensor.
func (t *Tensor) Clone() *Tensor {
	data := make([]float64, len(t.data))
	copy(data, t.data)
	return &Tensor{
		shape:   t.shape.Clone(),
		strides: t.shape.ComputeStrides(),
		data:    data,
	}
}

// Fill sets every element to value.
func (t *Tensor) Fill(value float64) {
	for i := range t.data {
		t.data[i] = value
	}
}

// Apply replaces every element x with f(x) in place and returns t.
func (t *Tensor) Apply(f func(x float64) float64) *Tensor {
	for i, x := range t.data {
		t.data[i] = f(x)
	}
	return t
}

// Sum returns the sum of all elements.
func (t *Tensor) Sum() float64 {
	var s float64
	for _, x := range t.data {
		s += x
	}
	return s
}

// SumSquares returns the sum of all squared elements.
func (t *Tensor) SumSquares() float64 {
	var s float64
	for _, x := range t.data {
		s += x * x
	}
	return s
}

// Min returns the smallest element.
func (t *Tensor) Min() float64 {
	m := math.Inf(1)
	for _, x := range t.data {
		m = math.Min(m, x)
	}
	return m
}

// Max returns the largest element.
func (t *Tensor) Max() float64 {
	m := math.Inf(-1)
	for _, x := range t.data {
		m = math.Max(m, x)
	}
	return m
}

// IsFinite reports whether every element is neither NaN nor infinite.
func (t *Tensor) IsFinite() bool {
	for _, x := range t.data {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// String returns a human-readable representation of the tensor.
func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor[float64]%v", t.shape)
}
