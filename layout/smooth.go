package layout

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/hverr/gviz/geom"
	"github.com/hverr/gviz/sparse"
	"github.com/hverr/gviz/spatial"
)

// stressMajorization improves the layout by minimizing the weighted stress
// over graph distances, solving the majorized linear systems with gonum's
// dense Cholesky. Graph distances come from unweighted BFS, capped so the
// dense solve stays tractable.
const stressMaxNodes = 600

func stressMajorization(a *sparse.Matrix, x []geom.Point, iterations int) {
	n := a.M
	if n < 3 || n > stressMaxNodes {
		return
	}
	d := bfsDistances(a)

	// weighted Laplacian Lw with w_ij = 1/d_ij^2
	lw := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		var diag float64
		for j := 0; j < n; j++ {
			if i == j || d[i][j] == 0 {
				continue
			}
			w := 1 / (d[i][j] * d[i][j])
			lw.Set(i, j, -w)
			diag += w
		}
		lw.Set(i, i, diag)
	}
	// anchor the translational null space
	for j := 0; j < n; j++ {
		lw.Set(0, j, 0)
	}
	lw.Set(0, 0, 1)

	bx := mat.NewVecDense(n, nil)
	by := mat.NewVecDense(n, nil)
	var xv, yv mat.VecDense
	for iter := 0; iter < iterations; iter++ {
		// majorization right-hand side
		for i := 0; i < n; i++ {
			var sx, sy float64
			for j := 0; j < n; j++ {
				if i == j || d[i][j] == 0 {
					continue
				}
				dist := x[i].Dist(x[j])
				if dist == 0 {
					continue
				}
				w := 1 / (d[i][j] * d[i][j])
				s := w * d[i][j] / dist
				sx += s * (x[i].X - x[j].X)
				sy += s * (x[i].Y - x[j].Y)
			}
			bx.SetVec(i, sx)
			by.SetVec(i, sy)
		}
		bx.SetVec(0, x[0].X)
		by.SetVec(0, x[0].Y)

		if err := xv.SolveVec(lw, bx); err != nil {
			return
		}
		if err := yv.SolveVec(lw, by); err != nil {
			return
		}
		for i := 0; i < n; i++ {
			x[i] = geom.Pt(xv.AtVec(i), yv.AtVec(i))
		}
	}
}

// bfsDistances returns all-pairs unweighted graph distances; unreachable
// pairs stay 0 and are skipped by the stress model.
func bfsDistances(a *sparse.Matrix) [][]float64 {
	n := a.M
	d := make([][]float64, n)
	queue := make([]int, 0, n)
	for s := 0; s < n; s++ {
		d[s] = make([]float64, n)
		seen := make([]bool, n)
		seen[s] = true
		queue = append(queue[:0], s)
		for len(queue) > 0 {
			u := queue[0]
			queue = queue[1:]
			for k := a.Ia[u]; k < a.Ia[u+1]; k++ {
				v := a.Ja[k]
				if v == u || seen[v] {
					continue
				}
				seen[v] = true
				d[s][v] = d[s][u] + 1
				queue = append(queue, v)
			}
		}
	}
	return d
}

// springSmoothing pulls every node toward the barycenter of its neighbors
// at the natural edge length.
func springSmoothing(a *sparse.Matrix, x []geom.Point, k float64, iterations int) {
	for iter := 0; iter < iterations; iter++ {
		for i := 0; i < a.M; i++ {
			var sum geom.Point
			var cnt int
			for kk := a.Ia[i]; kk < a.Ia[i+1]; kk++ {
				j := a.Ja[kk]
				if j == i {
					continue
				}
				d := x[j].Sub(x[i])
				l := d.Len()
				if l == 0 {
					continue
				}
				sum = sum.Add(x[j].Sub(d.Scale(k / l)))
				cnt++
			}
			if cnt > 0 {
				x[i] = x[i].Add(sum.Scale(1 / float64(cnt)).Sub(x[i]).Scale(0.5))
			}
		}
	}
}

// triangleSmoothing moves each node toward the centroid of its neighbors in
// the relative-neighborhood graph of the current positions.
func triangleSmoothing(x []geom.Point, iterations int) {
	if len(x) < 3 {
		return
	}
	for iter := 0; iter < iterations; iter++ {
		tr := spatial.Delaunay(x)
		edges := spatial.RelativeNeighborhood(x, tr)
		sum := make([]geom.Point, len(x))
		cnt := make([]int, len(x))
		for _, e := range edges {
			sum[e[0]] = sum[e[0]].Add(x[e[1]])
			sum[e[1]] = sum[e[1]].Add(x[e[0]])
			cnt[e[0]]++
			cnt[e[1]]++
		}
		for i := range x {
			if cnt[i] > 0 {
				target := sum[i].Scale(1 / float64(cnt[i]))
				x[i] = x[i].Add(target.Sub(x[i]).Scale(0.3))
			}
		}
	}
}

// smooth dispatches the configured post-pass.
func smooth(a *sparse.Matrix, ctrl *Control, k float64, x []geom.Point) {
	switch ctrl.Smoothing {
	case SmoothStressMajorization:
		stressMajorization(a, x, 30)
	case SmoothSpring:
		springSmoothing(a, x, k, 30)
	case SmoothTriangle:
		triangleSmoothing(x, 10)
	}
}

// avgEdgeLength is exported within the package for scaling decisions.
func avgEdgeLength(a *sparse.Matrix, x []geom.Point) float64 {
	l := meanEdgeLength(a, x)
	if l == 0 || math.IsNaN(l) {
		return 1
	}
	return l
}
