package layout

import (
	"math/rand"

	"github.com/hverr/gviz/geom"
	"github.com/hverr/gviz/sparse"
)

// level is one rung of the multilevel stack: the coarsened adjacency, the
// prolongation mapping its coordinates back to the finer level, and the
// coordinates solved at this level.
type level struct {
	a *sparse.Matrix
	// prolong maps coarse coordinates to the finer level: fine = prolong × coarse.
	prolong *sparse.Matrix
	x       []geom.Point
}

// coarsen contracts a maximal independent edge set (a maximal matching) of
// a and returns the coarser adjacency plus the prolongation matrix. Returns
// nil when no meaningful contraction happened.
func coarsen(a *sparse.Matrix, rng *rand.Rand) (*sparse.Matrix, *sparse.Matrix) {
	n := a.M
	match := make([]int, n)
	for i := range match {
		match[i] = -1
	}
	// visit vertices in random order for matching quality
	order := rng.Perm(n)
	for _, i := range order {
		if match[i] >= 0 {
			continue
		}
		for k := a.Ia[i]; k < a.Ia[i+1]; k++ {
			j := a.Ja[k]
			if j != i && match[j] < 0 {
				match[i], match[j] = j, i
				break
			}
		}
	}

	// assign coarse indices: one per matched pair, one per unmatched vertex
	coarseOf := make([]int, n)
	nc := 0
	for i := 0; i < n; i++ {
		if match[i] >= 0 && match[i] < i {
			coarseOf[i] = coarseOf[match[i]]
			continue
		}
		coarseOf[i] = nc
		nc++
	}
	if nc >= n {
		return nil, nil
	}

	var ats []sparse.Triple
	for i := 0; i < n; i++ {
		for k := a.Ia[i]; k < a.Ia[i+1]; k++ {
			j := a.Ja[k]
			ci, cj := coarseOf[i], coarseOf[j]
			if ci == cj {
				continue
			}
			v := 1.0
			if a.Kind != sparse.Pattern {
				v = a.Val[k]
			}
			ats = append(ats, sparse.Triple{I: ci, J: cj, V: v})
		}
	}
	ac := sparse.FromTriples(nc, nc, sparse.Real, ats)
	ac.Symmetric = true

	var pts []sparse.Triple
	for i := 0; i < n; i++ {
		pts = append(pts, sparse.Triple{I: i, J: coarseOf[i], V: 1})
	}
	prolong := sparse.FromTriples(n, nc, sparse.Real, pts)
	return ac, prolong
}

// Multilevel runs the multi-level spring-electrical engine on a symmetric
// adjacency and returns node coordinates. Provided initial coordinates are
// honored when ctrl.RandomStart is false and init has matching length.
func Multilevel(a *sparse.Matrix, ctrl *Control, init []geom.Point) []geom.Point {
	rng := rand.New(rand.NewSource(ctrl.Seed))
	n := a.M
	x := make([]geom.Point, n)
	if !ctrl.RandomStart && len(init) == n {
		copy(x, init)
	} else {
		randomPositions(x, rng)
	}
	if n <= 1 {
		return x
	}
	if !ctrl.RandomStart && len(init) == n {
		// refine the provided placement directly, skipping the multilevel
		// stack so the given shape survives
		k := ctrl.K
		if k <= 0 {
			k = meanEdgeLength(a, x)
		}
		springElectrical(a, ctrl, k, x)
		return x
	}

	// build the coarsening stack G0 ⊃ G1 ⊃ …
	levels := []*level{{a: a, x: x}}
	for levels[len(levels)-1].a.M > ctrl.CoarsenThreshold {
		cur := levels[len(levels)-1]
		ac, prolong := coarsen(cur.a, rng)
		if ac == nil {
			break
		}
		cur.prolong = prolong
		levels = append(levels, &level{a: ac, x: make([]geom.Point, ac.M)})
	}

	// coarsest level: random start, K from the mean edge length if unset
	coarsest := levels[len(levels)-1]
	randomPositions(coarsest.x, rng)
	k := ctrl.K
	if k <= 0 {
		k = meanEdgeLength(coarsest.a, coarsest.x)
	}
	springElectrical(coarsest.a, ctrl, k, coarsest.x)

	// prolongate to finer levels, halving K and jittering to break symmetry
	for li := len(levels) - 2; li >= 0; li-- {
		fine := levels[li]
		coarseX := levels[li+1].x
		flat := make([]float64, 2*len(coarseX))
		for i, p := range coarseX {
			flat[2*i], flat[2*i+1] = p.X, p.Y
		}
		fineFlat, _ := fine.prolong.MultDense(flat, 2)
		for i := range fine.x {
			fine.x[i] = geom.Pt(fineFlat[2*i], fineFlat[2*i+1])
		}
		k /= 2
		if k <= 0 {
			k = 1
		}
		jitter(fine.x, 0.01*k, rng)
		springElectrical(fine.a, ctrl, k, fine.x)
	}
	return levels[0].x
}
