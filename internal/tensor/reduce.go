package tensor

import "fmt"

// SumAxes sums over the given axes and keeps them as size-1 dimensions,
// so the result broadcasts against t.
//
// Example:
//
//	t := Shape{2, 3, 4}
//	SumAxes(t, 1, 2) // shape (2, 1, 1)
func SumAxes(t *Tensor, axes ...int) (*Tensor, error) {
	reduced, err := reducedShape(t.shape, axes)
	if err != nil {
		return nil, err
	}
	out := Zeros(reduced)
	forEachReduced(t.shape, reduced, func(src, dst int) {
		out.data[dst] += t.data[src]
	})
	return out, nil
}

// Normalize returns a copy of t scaled so that the values along the given
// axes sum to one. Slices whose sum is zero are copied unchanged.
//
// Example:
//
//	w := Shape{atoms, channels, width}
//	Normalize(w, 1, 2) // every atom sums to one
func Normalize(t *Tensor, axes ...int) (*Tensor, error) {
	sums, err := SumAxes(t, axes...)
	if err != nil {
		return nil, err
	}
	out := t.Clone()
	forEachReduced(t.shape, sums.shape, func(src, dst int) {
		if s := sums.data[dst]; s != 0 {
			out.data[src] /= s
		}
	})
	return out, nil
}

func reducedShape(shape Shape, axes []int) (Shape, error) {
	reduced := shape.Clone()
	for _, axis := range axes {
		if axis < 0 || axis >= len(shape) {
			return nil, fmt.Errorf("%w: axis %d out of range for shape %v", ErrInvalidShape, axis, shape)
		}
		reduced[axis] = 1
	}
	return reduced, nil
}

// forEachReduced calls f with every flat index of shape and the flat index
// it maps to in reduced (a keepdims reduction of shape).
func forEachReduced(shape, reduced Shape, f func(src, dst int)) {
	if len(shape) == 0 {
		f(0, 0)
		return
	}
	// Reduced axes get stride 0 so they collapse onto the same output element.
	strides := reduced.ComputeStrides()
	for i, dim := range reduced {
		if dim == 1 {
			strides[i] = 0
		}
	}

	idx := make([]int, len(shape))
	dst := 0
	n := shape.NumElements()
	for src := 0; src < n; src++ {
		f(src, dst)
		// Odometer increment of idx, tracking dst incrementally.
		for d := len(shape) - 1; d >= 0; d-- {
			idx[d]++
			dst += strides[d]
			if idx[d] < shape[d] {
				break
			}
			dst -= strides[d] * idx[d]
			idx[d] = 0
		}
	}
}
