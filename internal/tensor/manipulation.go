package tensor

import "fmt"

// Shift moves the contents of t by step positions along axis, filling the
// vacated positions with zeros. Values shifted past the end are dropped.
//
// Example:
//
//	x := [1 2 3 0 0]
//	Shift(x, 1, 0)  // [0 1 2 3 0]
//	Shift(x, -1, 0) // [2 3 0 0 0]
func Shift(t *Tensor, step, axis int) *Tensor {
	if axis < 0 || axis >= len(t.shape) {
		panic(fmt.Sprintf("shift: axis %d out of range for shape %v", axis, t.shape))
	}
	out := Zeros(t.shape)
	size := t.shape[axis]
	stride := t.strides[axis]
	outer := len(t.data) / (size * stride)

	for o := 0; o < outer; o++ {
		base := o * size * stride
		for i := 0; i < size; i++ {
			j := i - step
			if j < 0 || j >= size {
				continue
			}
			copy(out.data[base+i*stride:base+(i+1)*stride], t.data[base+j*stride:base+(j+1)*stride])
		}
	}
	return out
}

// Flip reverses the order of elements along each of the given axes.
func Flip(t *Tensor, axes ...int) *Tensor {
	flip := make([]bool, len(t.shape))
	for _, axis := range axes {
		if axis < 0 || axis >= len(t.shape) {
			panic(fmt.Sprintf("flip: axis %d out of range for shape %v", axis, t.shape))
		}
		flip[axis] = true
	}

	out := Zeros(t.shape)
	idx := make([]int, len(t.shape))
	for src := range t.data {
		t.shape.Unravel(src, idx)
		for d, f := range flip {
			if f {
				idx[d] = t.shape[d] - 1 - idx[d]
			}
		}
		out.data[t.shape.Ravel(idx)] = t.data[src]
	}
	return out
}
