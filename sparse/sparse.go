// Package sparse implements row-compressed sparse matrices used by the
// layout engines: construction from coordinate triples, symmetrization,
// diagonal removal, permutation and sparse-dense products.
//
// A matrix stores triples (Ia, Ja, Val) in compressed-sparse-row form:
// Ia[0] = 0, Ia[m] = nnz, and each row's Ja slice is sorted by column. A
// symmetric matrix stores both triangles with equal values.
package sparse

import (
	"errors"
	"sort"
)

// Kind tags the value domain of a matrix. Real is by far the common case;
// Pattern matrices carry structure only.
type Kind int

const (
	Pattern Kind = iota
	Real
	Integer
	Complex
)

// ErrShape is returned when operand dimensions do not agree.
var ErrShape = errors.New("sparse: dimension mismatch")

// Matrix is an m × n sparse matrix in CSR form.
type Matrix struct {
	M, N int
	Kind Kind
	Ia   []int     // row offsets, len M+1
	Ja   []int     // column indices, len nnz
	Val  []float64 // len nnz for Real/Integer, nil for Pattern
	// CVal holds values of Complex matrices; Val stays nil.
	CVal []complex128

	Symmetric bool
}

// Triple is one coordinate-form entry.
type Triple struct {
	I, J int
	V    float64
}

// NNZ returns the number of stored entries.
func (a *Matrix) NNZ() int { return a.Ia[a.M] }

// New returns an empty m × n matrix of the given kind.
func New(m, n int, kind Kind) *Matrix {
	return &Matrix{M: m, N: n, Kind: kind, Ia: make([]int, m+1)}
}

// FromTriples builds a matrix from coordinate triples. Duplicate (i, j)
// entries are summed; for Pattern matrices duplicates collapse.
func FromTriples(m, n int, kind Kind, ts []Triple) *Matrix {
	type cell struct {
		j int
		v float64
	}
	rows := make([][]cell, m)
	for _, t := range ts {
		if t.I < 0 || t.I >= m || t.J < 0 || t.J >= n {
			continue
		}
		rows[t.I] = append(rows[t.I], cell{j: t.J, v: t.V})
	}

	a := New(m, n, kind)
	for i := range rows {
		sort.Slice(rows[i], func(x, y int) bool { return rows[i][x].j < rows[i][y].j })
		for k := 0; k < len(rows[i]); {
			j := rows[i][k].j
			var sum float64
			for ; k < len(rows[i]) && rows[i][k].j == j; k++ {
				sum += rows[i][k].v
			}
			a.Ja = append(a.Ja, j)
			if kind != Pattern {
				a.Val = append(a.Val, sum)
			}
		}
		a.Ia[i+1] = len(a.Ja)
	}
	return a
}

// Transpose returns Aᵀ.
func (a *Matrix) Transpose() *Matrix {
	t := New(a.N, a.M, a.Kind)
	counts := make([]int, a.N+1)
	for _, j := range a.Ja {
		counts[j+1]++
	}
	for j := 0; j < a.N; j++ {
		counts[j+1] += counts[j]
	}
	copy(t.Ia, counts)
	t.Ja = make([]int, a.NNZ())
	if a.Kind != Pattern {
		t.Val = make([]float64, a.NNZ())
	}
	next := make([]int, a.N)
	copy(next, t.Ia[:a.N])
	for i := 0; i < a.M; i++ {
		for k := a.Ia[i]; k < a.Ia[i+1]; k++ {
			j := a.Ja[k]
			p := next[j]
			next[j]++
			t.Ja[p] = i
			if a.Kind != Pattern {
				t.Val[p] = a.Val[k]
			}
		}
	}
	return t
}

// SymmetrizeMode selects how Symmetrize combines A with its transpose.
type SymmetrizeMode int

const (
	// UnionPattern keeps the structural union A ∪ Aᵀ; values of entries
	// present in both triangles are summed.
	UnionPattern SymmetrizeMode = iota
	// Average stores ½(A + Aᵀ).
	Average
)

// Symmetrize returns a symmetric matrix derived from a square matrix.
func (a *Matrix) Symmetrize(mode SymmetrizeMode) (*Matrix, error) {
	if a.M != a.N {
		return nil, ErrShape
	}
	var ts []Triple
	scale := 1.0
	if mode == Average {
		scale = 0.5
	}
	for i := 0; i < a.M; i++ {
		for k := a.Ia[i]; k < a.Ia[i+1]; k++ {
			v := 1.0
			if a.Kind != Pattern {
				v = a.Val[k]
			}
			ts = append(ts, Triple{I: i, J: a.Ja[k], V: v * scale})
			if i != a.Ja[k] {
				ts = append(ts, Triple{I: a.Ja[k], J: i, V: v * scale})
			} else {
				// keep the diagonal at full weight under averaging
				if mode == Average {
					ts = append(ts, Triple{I: i, J: i, V: v * scale})
				}
			}
		}
	}
	kind := a.Kind
	if kind == Pattern {
		// summation of duplicates is meaningless for patterns
		kind = Pattern
	}
	s := FromTriples(a.M, a.N, kind, ts)
	s.Symmetric = true
	return s, nil
}

// RemoveDiagonal returns a copy of the matrix without diagonal entries.
func (a *Matrix) RemoveDiagonal() *Matrix {
	out := New(a.M, a.N, a.Kind)
	out.Symmetric = a.Symmetric
	for i := 0; i < a.M; i++ {
		for k := a.Ia[i]; k < a.Ia[i+1]; k++ {
			if a.Ja[k] == i {
				continue
			}
			out.Ja = append(out.Ja, a.Ja[k])
			if a.Kind != Pattern {
				out.Val = append(out.Val, a.Val[k])
			}
		}
		out.Ia[i+1] = len(out.Ja)
	}
	return out
}

// Adjacency extracts the weighted adjacency structure: off-diagonal
// entries with their absolute values, as a Real matrix.
func (a *Matrix) Adjacency() *Matrix {
	out := New(a.M, a.N, Real)
	out.Symmetric = a.Symmetric
	for i := 0; i < a.M; i++ {
		for k := a.Ia[i]; k < a.Ia[i+1]; k++ {
			if a.Ja[k] == i {
				continue
			}
			v := 1.0
			if a.Kind != Pattern {
				v = a.Val[k]
				if v < 0 {
					v = -v
				}
			}
			out.Ja = append(out.Ja, a.Ja[k])
			out.Val = append(out.Val, v)
		}
		out.Ia[i+1] = len(out.Ja)
	}
	return out
}

// SymmetrizeReal returns a real symmetric adjacency: the union pattern of
// a square matrix with averaged values.
func (a *Matrix) SymmetrizeReal() (*Matrix, error) {
	adj := a.Adjacency()
	return adj.Symmetrize(Average)
}

// Permute returns P A Q where P reorders rows by rowPerm (new index i holds
// old row rowPerm[i]) and Q reorders columns likewise.
func (a *Matrix) Permute(rowPerm, colPerm []int) (*Matrix, error) {
	if len(rowPerm) != a.M || len(colPerm) != a.N {
		return nil, ErrShape
	}
	colNew := make([]int, a.N)
	for newJ, oldJ := range colPerm {
		colNew[oldJ] = newJ
	}
	var ts []Triple
	for newI, oldI := range rowPerm {
		for k := a.Ia[oldI]; k < a.Ia[oldI+1]; k++ {
			v := 1.0
			if a.Kind != Pattern {
				v = a.Val[k]
			}
			ts = append(ts, Triple{I: newI, J: colNew[a.Ja[k]], V: v})
		}
	}
	out := FromTriples(a.M, a.N, a.Kind, ts)
	out.Symmetric = a.Symmetric
	return out, nil
}

// MultVec computes y = A x for a dense vector x.
func (a *Matrix) MultVec(x []float64) ([]float64, error) {
	if len(x) != a.N {
		return nil, ErrShape
	}
	y := make([]float64, a.M)
	for i := 0; i < a.M; i++ {
		var sum float64
		for k := a.Ia[i]; k < a.Ia[i+1]; k++ {
			v := 1.0
			if a.Kind != Pattern {
				v = a.Val[k]
			}
			sum += v * x[a.Ja[k]]
		}
		y[i] = sum
	}
	return y, nil
}

// MultDense computes Y = A X for a dense row-major matrix X of width dim:
// X[j*dim:(j+1)*dim] is the j-th row. The result has the same layout.
func (a *Matrix) MultDense(x []float64, dim int) ([]float64, error) {
	if len(x) != a.N*dim {
		return nil, ErrShape
	}
	y := make([]float64, a.M*dim)
	for i := 0; i < a.M; i++ {
		for k := a.Ia[i]; k < a.Ia[i+1]; k++ {
			v := 1.0
			if a.Kind != Pattern {
				v = a.Val[k]
			}
			j := a.Ja[k]
			for d := 0; d < dim; d++ {
				y[i*dim+d] += v * x[j*dim+d]
			}
		}
	}
	return y, nil
}

// RowDegrees returns the number of off-diagonal entries per row.
func (a *Matrix) RowDegrees() []int {
	deg := make([]int, a.M)
	for i := 0; i < a.M; i++ {
		for k := a.Ia[i]; k < a.Ia[i+1]; k++ {
			if a.Ja[k] != i {
				deg[i]++
			}
		}
	}
	return deg
}
