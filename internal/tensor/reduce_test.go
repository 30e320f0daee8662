package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSumAxes(t *testing.T) {
	x, _ := FromSlice([]float64{
		1, 2, 3,
		4, 5, 6,
	}, Shape{2, 3})

	rows, err := SumAxes(x, 1)
	require.NoError(t, err)
	assert.True(t, rows.Shape().Equal(Shape{2, 1}))
	assert.Equal(t, []float64{6, 15}, rows.Data())

	cols, err := SumAxes(x, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 7, 9}, cols.Data())

	all, err := SumAxes(x, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{21}, all.Data())

	_, err = SumAxes(x, 2)
	require.ErrorIs(t, err, ErrInvalidShape)
}

func TestNormalize_SumsToOne(t *testing.T) {
	// [atoms=2, channels=2, width=3]
	w, _ := FromSlice([]float64{
		1, 2, 3, 4, 5, 6,
		2, 2, 2, 2, 2, 2,
	}, Shape{2, 2, 3})

	n, err := Normalize(w, 1, 2)
	require.NoError(t, err)

	sums, _ := SumAxes(n, 1, 2)
	assert.InDeltaSlice(t, []float64{1, 1}, sums.Data(), 1e-12)
	assert.InDelta(t, 1.0/21, n.At(0, 0, 0), 1e-12)
	assert.InDelta(t, 1.0/6, n.At(1, 1, 2), 1e-12)

	// Source is untouched.
	assert.Equal(t, 1.0, w.At(0, 0, 0))
}

func TestNormalize_ZeroSliceUnchanged(t *testing.T) {
	w, _ := FromSlice([]float64{0, 0, 1, 3}, Shape{2, 2})

	n, err := Normalize(w, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0.25, 0.75}, n.Data())
}
