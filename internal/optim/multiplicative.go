package optim

import "github.com/born-ml/tnmf/internal/tensor"

// Multiplicative implements the multiplicative update of non-negative
// factorizations.
//
// Update rule:
//
//	param = param * numer / (denom + penalty + eps)
//
// A non-negative param stays non-negative as long as numer and denom are
// non-negative, and a zero entry stays zero. eps keeps the quotient finite
// when denom vanishes.
//
// Reference: "Algorithms for Non-negative Matrix Factorization" (Lee & Seung, 2001)
//
// Example:
//
//	opt := optim.NewMultiplicative(optim.MultiplicativeConfig{})
//	numer, denom := b.GradientW(v, w, h)
//	opt.Step(w, numer, denom, 0)
type Multiplicative struct {
	eps float64
}

// MultiplicativeConfig holds configuration for the multiplicative update.
type MultiplicativeConfig struct {
	Eps float64 // Denominator stabilizer (default: 1e-9)
}

// DefaultEps is the denominator stabilizer used when none is configured.
const DefaultEps = 1e-9

// NewMultiplicative creates a multiplicative update rule.
//
// Default hyperparameters:
//   - Eps: 1e-9
func NewMultiplicative(config MultiplicativeConfig) *Multiplicative {
	if config.Eps == 0 {
		config.Eps = DefaultEps
	}
	return &Multiplicative{eps: config.Eps}
}

// Compile-time check that Multiplicative implements Optimizer.
var _ Optimizer = (*Multiplicative)(nil)

// Step performs one multiplicative update of param.
// Panics if the operand shapes differ.
func (m *Multiplicative) Step(param, numer, denom *tensor.Tensor, penalty float64) {
	checkOperands(param, numer, denom)

	pData, nData, dData := param.Data(), numer.Data(), denom.Data()
	offset := penalty + m.eps
	for i, x := range pData {
		if x == 0 {
			continue
		}
		pData[i] = x * nData[i] / (dData[i] + offset)
	}
}

// Eps returns the denominator stabilizer.
func (m *Multiplicative) Eps() float64 {
	return m.eps
}
