package tensor

import "fmt"

// Add returns a + b element-wise.
// Panics if the shapes differ.
func Add(a, b *Tensor) *Tensor {
	return zipWith(a, b, "add", func(x, y float64) float64 { return x + y })
}

// Sub returns a - b element-wise.
// Panics if the shapes differ.
func Sub(a, b *Tensor) *Tensor {
	return zipWith(a, b, "sub", func(x, y float64) float64 { return x - y })
}

// Mul returns a * b element-wise.
// Panics if the shapes differ.
func Mul(a, b *Tensor) *Tensor {
	return zipWith(a, b, "mul", func(x, y float64) float64 { return x * y })
}

// Scale returns s * a.
func Scale(a *Tensor, s float64) *Tensor {
	out := a.Clone()
	for i := range out.data {
		out.data[i] *= s
	}
	return out
}

// Square returns a * a element-wise.
func Square(a *Tensor) *Tensor {
	out := a.Clone()
	for i, x := range out.data {
		out.data[i] = x * x
	}
	return out
}

func zipWith(a, b *Tensor, name string, f func(x, y float64) float64) *Tensor {
	if !a.shape.Equal(b.shape) {
		panic(fmt.Sprintf("%s: shape mismatch %v vs %v", name, a.shape, b.shape))
	}
	out := Zeros(a.shape)
	for i := range out.data {
		out.data[i] = f(a.data[i], b.data[i])
	}
	return out
}
