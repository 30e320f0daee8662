package backend

import (
	"testing"

	"github.com/born-ml/tnmf/internal/conv"
	"github.com/born-ml/tnmf/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLayout_Shapes(t *testing.T) {
	l, err := NewLayout(tensor.Shape{4, 2, 10}, tensor.Shape{3}, 5, conv.Valid)
	require.NoError(t, err)

	assert.Equal(t, tensor.Shape{4, 2, 10}, l.SignalShape())
	assert.Equal(t, tensor.Shape{5, 2, 3}, l.DictionaryShape())
	assert.Equal(t, tensor.Shape{4, 5, 12}, l.ActivationShape())
	assert.Equal(t, 20, l.SignalDim())
	assert.Equal(t, 6, l.AtomDim())

	img, err := NewLayout(tensor.Shape{1, 1, 8, 6}, tensor.Shape{3, 3}, 2, conv.Full)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{1, 2, 6, 4}, img.ActivationShape())
}

func TestNewLayout_Errors(t *testing.T) {
	_, err := NewLayout(tensor.Shape{4, 10}, tensor.Shape{3}, 2, conv.Full)
	require.ErrorIs(t, err, tensor.ErrInvalidShape)

	_, err = NewLayout(tensor.Shape{4, 1, 10}, tensor.Shape{11}, 2, conv.Full)
	require.ErrorIs(t, err, tensor.ErrInvalidShape)

	_, err = NewLayout(tensor.Shape{4, 1, 10}, tensor.Shape{3}, 0, conv.Full)
	require.ErrorIs(t, err, tensor.ErrInvalidShape)

	_, err = NewLayout(tensor.Shape{4, 1, 10}, tensor.Shape{3, 3}, 2, conv.Full)
	require.ErrorIs(t, err, tensor.ErrInvalidShape)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("Convolution")
	require.NoError(t, err)
	assert.Equal(t, Convolution, k)
	assert.Equal(t, "contraction", Contraction.String())

	_, err = ParseKind("gpu")
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestEnergy(t *testing.T) {
	v, _ := tensor.FromSlice([]float64{1, 2, 3}, tensor.Shape{3})
	r, _ := tensor.FromSlice([]float64{1, 0, 4}, tensor.Shape{3})
	assert.Equal(t, 2.5, Energy(v, r))
}
