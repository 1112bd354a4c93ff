package sparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromTriples(t *testing.T) {
	a := FromTriples(3, 3, Real, []Triple{
		{I: 0, J: 1, V: 2},
		{I: 1, J: 0, V: 1},
		{I: 0, J: 1, V: 3}, // duplicate sums
		{I: 2, J: 2, V: 5},
		{I: 5, J: 0, V: 9}, // out of range, dropped
	})

	assert.Equal(t, 3, a.NNZ())
	assert.Equal(t, 0, a.Ia[0], "Ia[0] = 0")
	assert.Equal(t, a.NNZ(), a.Ia[a.M], "Ia[m] = nnz")
	assert.Equal(t, []int{1}, a.Ja[a.Ia[0]:a.Ia[1]])
	assert.Equal(t, 5.0, a.Val[a.Ia[2]])
	assert.Equal(t, 5.0, at(a, 2, 2))
	assert.Equal(t, 2.0+3.0, at(a, 0, 1), "duplicates sum")
}

func at(a *Matrix, i, j int) float64 {
	for k := a.Ia[i]; k < a.Ia[i+1]; k++ {
		if a.Ja[k] == j {
			if a.Kind == Pattern {
				return 1
			}
			return a.Val[k]
		}
	}
	return 0
}

func TestRowsAreSortedByColumn(t *testing.T) {
	a := FromTriples(2, 4, Real, []Triple{
		{I: 0, J: 3, V: 1}, {I: 0, J: 0, V: 1}, {I: 0, J: 2, V: 1},
	})
	assert.Equal(t, []int{0, 2, 3}, a.Ja[a.Ia[0]:a.Ia[1]])
}

func TestTranspose(t *testing.T) {
	a := FromTriples(2, 3, Real, []Triple{
		{I: 0, J: 1, V: 2}, {I: 1, J: 2, V: 4},
	})
	at_ := a.Transpose()
	assert.Equal(t, 3, at_.M)
	assert.Equal(t, 2, at_.N)
	assert.Equal(t, 2.0, at(at_, 1, 0))
	assert.Equal(t, 4.0, at(at_, 2, 1))
}

func TestSymmetrize(t *testing.T) {
	a := FromTriples(3, 3, Real, []Triple{
		{I: 0, J: 1, V: 4},
		{I: 2, J: 0, V: 6},
	})

	t.Run("Union", func(t *testing.T) {
		s, err := a.Symmetrize(UnionPattern)
		require.NoError(t, err)
		assert.True(t, s.Symmetric)
		assert.Equal(t, at(s, 0, 1), at(s, 1, 0), "both triangles stored with equal values")
		assert.Equal(t, at(s, 0, 2), at(s, 2, 0))
	})

	t.Run("Average", func(t *testing.T) {
		s, err := a.Symmetrize(Average)
		require.NoError(t, err)
		assert.Equal(t, 2.0, at(s, 0, 1), "half of A plus half of At")
		assert.Equal(t, 2.0, at(s, 1, 0))
	})

	t.Run("ShapeMismatch", func(t *testing.T) {
		bad := FromTriples(2, 3, Real, nil)
		_, err := bad.Symmetrize(Average)
		assert.ErrorIs(t, err, ErrShape)
	})
}

func TestRemoveDiagonalAndAdjacency(t *testing.T) {
	a := FromTriples(2, 2, Real, []Triple{
		{I: 0, J: 0, V: 9}, {I: 0, J: 1, V: -3}, {I: 1, J: 1, V: 2},
	})
	nd := a.RemoveDiagonal()
	assert.Equal(t, 1, nd.NNZ())
	assert.Equal(t, -3.0, at(nd, 0, 1))

	adj := a.Adjacency()
	assert.Equal(t, 1, adj.NNZ())
	assert.Equal(t, 3.0, at(adj, 0, 1), "adjacency stores magnitudes")
}

func TestPermute(t *testing.T) {
	a := FromTriples(2, 2, Real, []Triple{
		{I: 0, J: 0, V: 1}, {I: 1, J: 1, V: 2},
	})
	p, err := a.Permute([]int{1, 0}, []int{1, 0})
	require.NoError(t, err)
	assert.Equal(t, 2.0, at(p, 0, 0))
	assert.Equal(t, 1.0, at(p, 1, 1))

	_, err = a.Permute([]int{0}, []int{0, 1})
	assert.ErrorIs(t, err, ErrShape)
}

func TestMultDense(t *testing.T) {
	a := FromTriples(2, 2, Real, []Triple{
		{I: 0, J: 0, V: 2}, {I: 0, J: 1, V: 1}, {I: 1, J: 1, V: 3},
	})

	y, err := a.MultVec([]float64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 6}, y)

	// two-dimensional rows: X = [(1,10), (2,20)]
	yd, err := a.MultDense([]float64{1, 10, 2, 20}, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 40, 6, 60}, yd)

	_, err = a.MultVec([]float64{1})
	assert.ErrorIs(t, err, ErrShape)
}

func TestRowDegrees(t *testing.T) {
	a := FromTriples(3, 3, Real, []Triple{
		{I: 0, J: 0, V: 1}, {I: 0, J: 1, V: 1}, {I: 0, J: 2, V: 1}, {I: 1, J: 0, V: 1},
	})
	assert.Equal(t, []int{2, 1, 0}, a.RowDegrees())
}
