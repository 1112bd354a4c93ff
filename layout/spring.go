package layout

import (
	"math"
	"math/rand"
	"time"

	"github.com/hverr/gviz/geom"
	"github.com/hverr/gviz/sparse"
	"github.com/hverr/gviz/spatial"
)

// springElectrical runs the spring-electrical inner loop on one level.
// A must be a symmetric real adjacency without diagonal; x is mutated in
// place. K is the natural edge length for this level.
func springElectrical(a *sparse.Matrix, ctrl *Control, k float64, x []geom.Point) {
	n := a.M
	if n == 0 || ctrl.MaxIter <= 0 {
		return
	}
	p := ctrl.P
	kp := math.Pow(k, 1-p)
	// attractive force scale C^((2-p)/3)/K with C = 0.2
	crk := math.Pow(0.2, (2-p)/3) / k

	step := ctrl.Step * k
	tol := ctrl.Tol * k
	fnormPrev := math.Inf(1)
	force := make([]geom.Point, n)

	opt := newOnedOptimizer(ctrl.MaxQuadTreeDepth)
	useTree := n >= ctrl.QuadTreeCutoff

	for iter := 0; iter < ctrl.MaxIter && step > tol; iter++ {
		if useTree {
			depth := opt.get()
			buildStart := time.Now()
			qt := spatial.NewQuadTree(x, nil, depth)
			buildTime := time.Since(buildStart).Seconds()

			queryStart := time.Now()
			qt.RepulsiveForces(ctrl.Theta, p, k, force)
			queryTime := time.Since(queryStart).Seconds()

			opt.train(depth, buildTime+0.85*queryTime+3.3*float64(depth))
		} else {
			allPairsRepulsion(x, p, kp, force)
		}

		// attractive forces along edges: |d|/K * d
		for i := 0; i < n; i++ {
			xi := x[i]
			for kk := a.Ia[i]; kk < a.Ia[i+1]; kk++ {
				j := a.Ja[kk]
				if j == i {
					continue
				}
				d := x[j].Sub(xi)
				force[i] = force[i].Add(d.Scale(crk * d.Len()))
			}
		}

		var fnorm float64
		for i := 0; i < n; i++ {
			f := force[i]
			l := f.Len()
			fnorm += l * l
			if l > 0 {
				x[i] = x[i].Add(f.Scale(step / l))
			}
		}
		fnorm = math.Sqrt(fnorm)

		step = updateStep(ctrl, step, fnorm, fnormPrev)
		fnormPrev = fnorm
	}
}

// updateStep implements plain and adaptive cooling. Adaptive cooling cools
// while the total force grows, holds the step on a < 5% drop and lengthens
// it otherwise.
func updateStep(ctrl *Control, step, fnorm, fnormPrev float64) float64 {
	if !ctrl.AdaptiveCooling {
		return ctrl.Cool * step
	}
	switch {
	case fnorm >= fnormPrev:
		return ctrl.Cool * step
	case fnorm > 0.95*fnormPrev:
		return step
	default:
		return 0.99 * step / ctrl.Cool
	}
}

// allPairsRepulsion is the exact quadratic fallback for small levels.
func allPairsRepulsion(x []geom.Point, p, kp float64, force []geom.Point) {
	for i := range force {
		force[i] = geom.Point{}
	}
	for i := range x {
		for j := range x {
			if i == j {
				continue
			}
			d := x[i].Sub(x[j])
			dist := d.Len()
			if dist == 0 {
				continue
			}
			force[i] = force[i].Add(d.Scale(kp / math.Pow(dist, 1-p)))
		}
	}
}

// randomPositions fills x with positions in the unit square.
func randomPositions(x []geom.Point, rng *rand.Rand) {
	for i := range x {
		x[i] = geom.Pt(rng.Float64(), rng.Float64())
	}
}

// jitter perturbs positions slightly to break symmetries introduced by
// prolongation.
func jitter(x []geom.Point, scale float64, rng *rand.Rand) {
	for i := range x {
		x[i].X += scale * (rng.Float64() - 0.5)
		x[i].Y += scale * (rng.Float64() - 0.5)
	}
}

// meanEdgeLength returns the average distance over the entries of a.
func meanEdgeLength(a *sparse.Matrix, x []geom.Point) float64 {
	var sum float64
	var cnt int
	for i := 0; i < a.M; i++ {
		for k := a.Ia[i]; k < a.Ia[i+1]; k++ {
			j := a.Ja[k]
			if j == i {
				continue
			}
			sum += x[i].Dist(x[j])
			cnt++
		}
	}
	if cnt == 0 {
		return 1
	}
	return sum / float64(cnt)
}
