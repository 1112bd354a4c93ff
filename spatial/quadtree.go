// Package spatial provides the spatial acceleration structures behind the
// force-directed layout engines: a Barnes–Hut quad tree, Delaunay
// triangulation and the derived relative-neighborhood graph.
package spatial

import (
	"math"

	"github.com/hverr/gviz/geom"
)

// DefaultMaxDepth bounds quad-tree subdivision unless a caller tunes it.
const DefaultMaxDepth = 10

// maxLeafPoints is the subdivision threshold: a leaf holding more points
// splits unless it sits at maximum depth.
const maxLeafPoints = 1

// QuadTree is a 2-D Barnes–Hut tree over weighted points. Child references
// are indices into one growable node buffer; a leaf keeps a small inline
// point list.
type QuadTree struct {
	nodes    []qnode
	maxDepth int
}

type qnode struct {
	center geom.Point // center of the bounding square
	half   float64    // half-width of the square
	depth  int

	count    int
	weight   float64    // total point weight
	centroid geom.Point // weighted centroid of contained points

	children [4]int32 // node indices, -1 when absent
	pts      []qpoint // leaf points, nil for interior nodes
	split    bool

	force geom.Point // Barnes–Hut per-cell force accumulator
}

type qpoint struct {
	id     int
	pos    geom.Point
	weight float64
}

// Supernode is one entry of a supernode query: a far cell summarized by its
// centroid and total weight.
type Supernode struct {
	Centroid geom.Point
	Weight   float64
	Dist     float64
}

// NewQuadTree builds a tree over the given positions and weights. A nil
// weights slice means unit weights. maxDepth <= 0 selects
// [DefaultMaxDepth].
func NewQuadTree(positions []geom.Point, weights []float64, maxDepth int) *QuadTree {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	bb := geom.BoundingBox(positions)
	half := math.Max(bb.Width(), bb.Height())/2 + 1e-9
	t := &QuadTree{maxDepth: maxDepth}
	t.nodes = append(t.nodes, qnode{center: bb.Center(), half: half, children: noChildren})
	for i, p := range positions {
		w := 1.0
		if weights != nil {
			w = weights[i]
		}
		t.insert(0, qpoint{id: i, pos: p, weight: w})
	}
	return t
}

var noChildren = [4]int32{-1, -1, -1, -1}

// Len returns the number of points in the tree.
func (t *QuadTree) Len() int { return t.nodes[0].count }

// insert descends into the quadrant of the point's position relative to
// each cell center, subdividing leaves that would exceed the per-leaf
// budget, and appending to the inline list once maximum depth is reached.
// Count and weighted centroid update along the descent.
func (t *QuadTree) insert(ni int32, p qpoint) {
	for {
		nd := &t.nodes[ni]
		nd.centroid = nd.centroid.Scale(nd.weight).Add(p.pos.Scale(p.weight)).Scale(1 / (nd.weight + p.weight))
		nd.weight += p.weight
		nd.count++

		if !nd.split {
			if len(nd.pts) < maxLeafPoints || nd.depth >= t.maxDepth {
				nd.pts = append(nd.pts, p)
				return
			}
			// subdivide: push existing points down
			old := nd.pts
			nd.pts = nil
			nd.split = true
			for _, q := range old {
				ci := t.childFor(ni, q.pos)
				t.descendInsert(ci, q)
			}
		}
		ni = t.childFor(ni, p.pos)
	}
}

// descendInsert inserts without revisiting ancestor accumulators.
func (t *QuadTree) descendInsert(ni int32, p qpoint) {
	t.insert(ni, p)
}

// childFor returns the child cell of node ni containing pos, creating it on
// demand.
func (t *QuadTree) childFor(ni int32, pos geom.Point) int32 {
	nd := &t.nodes[ni]
	q := 0
	if pos.X > nd.center.X {
		q |= 1
	}
	if pos.Y > nd.center.Y {
		q |= 2
	}
	if nd.children[q] >= 0 {
		return nd.children[q]
	}
	h := nd.half / 2
	cx, cy := nd.center.X-h, nd.center.Y-h
	if q&1 != 0 {
		cx = nd.center.X + h
	}
	if q&2 != 0 {
		cy = nd.center.Y + h
	}
	child := qnode{center: geom.Pt(cx, cy), half: h, depth: nd.depth + 1, children: noChildren}
	t.nodes = append(t.nodes, child)
	ci := int32(len(t.nodes) - 1)
	t.nodes[ni].children[q] = ci
	return ci
}

// QuerySupernodes returns, for the target x, the far cells usable whole
// under the Barnes–Hut criterion width/distance <= theta, plus the nearby
// individual points that had to be expanded.
func (t *QuadTree) QuerySupernodes(x geom.Point, theta float64) ([]Supernode, []int) {
	var supers []Supernode
	var near []int
	var visit func(ni int32)
	visit = func(ni int32) {
		nd := &t.nodes[ni]
		if nd.count == 0 {
			return
		}
		dist := x.Dist(nd.centroid)
		if dist > 0 && 2*nd.half/dist <= theta {
			supers = append(supers, Supernode{Centroid: nd.centroid, Weight: nd.weight, Dist: dist})
			return
		}
		if !nd.split {
			for _, p := range nd.pts {
				near = append(near, p.id)
			}
			return
		}
		for _, ci := range nd.children {
			if ci >= 0 {
				visit(ci)
			}
		}
	}
	visit(0)
	return supers, near
}

// RepulsiveForces approximates, for every point i, the spring-electrical
// repulsion sum over j != i of K^(1-p) (xi - xj)/|xi - xj|^(1-p) using the
// dual tree recursion: two well-separated cells interact through their
// centroids, otherwise the larger cell is expanded; leaf pairs interact
// pointwise. Cell-level contributions are propagated to points by weight
// fraction in a second pass. The force array is zeroed first; interacting
// the tree with itself is the normal entry point.
func (t *QuadTree) RepulsiveForces(theta, p, K float64, force []geom.Point) {
	for i := range force {
		force[i] = geom.Point{}
	}
	for i := range t.nodes {
		t.nodes[i].force = geom.Point{}
	}
	kp := math.Pow(K, 1-p)
	t.interact(0, 0, theta, p, kp, force)
	t.propagate(0, geom.Point{}, force)
}

// cellForce is the repulsion exerted on a point at xi by mass weight at
// centroid: weight * K^(1-p) * d / |d|^(1-p), so the magnitude is
// weight * K^(1-p) / |d|^(-p), which is 1/|d| for the default p = -1.
// Coincident positions yield no force; the caller's jitter breaks such
// ties.
func cellForce(xi, centroid geom.Point, weight, p, kp float64) geom.Point {
	d := xi.Sub(centroid)
	dist := d.Len()
	if dist == 0 {
		return geom.Point{}
	}
	return d.Scale(weight * kp / math.Pow(dist, 1-p))
}

func (t *QuadTree) interact(ai, bi int32, theta, p, kp float64, force []geom.Point) {
	a := &t.nodes[ai]
	b := &t.nodes[bi]
	if a.count == 0 || b.count == 0 {
		return
	}

	if ai == bi {
		// self interaction: within a leaf every pair contributes directly;
		// a split cell interacts each unordered child pair exactly once
		if !a.split {
			for i, pa := range a.pts {
				for _, pb := range a.pts[i+1:] {
					force[pa.id] = force[pa.id].Add(cellForce(pa.pos, pb.pos, pb.weight, p, kp))
					force[pb.id] = force[pb.id].Add(cellForce(pb.pos, pa.pos, pa.weight, p, kp))
				}
			}
			return
		}
		for i, ci := range a.children {
			if ci < 0 {
				continue
			}
			t.interact(ci, ci, theta, p, kp, force)
			for _, cj := range a.children[i+1:] {
				if cj >= 0 {
					t.interact(ci, cj, theta, p, kp, force)
				}
			}
		}
		return
	}

	dist := a.centroid.Dist(b.centroid)
	wide := math.Max(a.half, b.half) * 2
	if dist > 0 && wide/dist <= theta {
		// supernode-supernode contribution, held at cell level scaled by
		// the receiving cell's mass so the weight-fraction propagation
		// hands each point its own share
		a.force = a.force.Add(cellForce(a.centroid, b.centroid, b.weight, p, kp).Scale(a.weight))
		b.force = b.force.Add(cellForce(b.centroid, a.centroid, a.weight, p, kp).Scale(b.weight))
		return
	}

	if !a.split && !b.split {
		for _, pa := range a.pts {
			for _, pb := range b.pts {
				force[pa.id] = force[pa.id].Add(cellForce(pa.pos, pb.pos, pb.weight, p, kp))
				force[pb.id] = force[pb.id].Add(cellForce(pb.pos, pa.pos, pa.weight, p, kp))
			}
		}
		return
	}

	// expand the larger cell
	if a.split && (!b.split || a.half >= b.half) {
		for _, ci := range a.children {
			if ci >= 0 {
				t.interact(ci, bi, theta, p, kp, force)
			}
		}
		return
	}
	for _, ci := range b.children {
		if ci >= 0 {
			t.interact(ai, ci, theta, p, kp, force)
		}
	}
}

// propagate pushes accumulated cell forces down to points, splitting by
// weight fraction.
func (t *QuadTree) propagate(ni int32, inherited geom.Point, force []geom.Point) {
	nd := &t.nodes[ni]
	if nd.count == 0 {
		return
	}
	total := inherited.Add(nd.force)
	if !nd.split {
		for _, p := range nd.pts {
			force[p.id] = force[p.id].Add(total.Scale(p.weight / nd.weight))
		}
		return
	}
	for _, ci := range nd.children {
		if ci >= 0 {
			t.propagate(ci, total.Scale(t.nodes[ci].weight/nd.weight), force)
		}
	}
}

// Nearest returns the id of the point closest to x. The first phase
// greedily descends toward the child with the nearest centroid to obtain an
// upper bound; the second phase prunes cells whose center distance minus
// sqrt(2) times their width cannot beat the bound.
func (t *QuadTree) Nearest(x geom.Point) int {
	if t.Len() == 0 {
		return -1
	}
	best := -1
	bestDist := math.Inf(1)

	// coarse phase: greedy descent
	ni := int32(0)
	for t.nodes[ni].split {
		var pick int32 = -1
		pickDist := math.Inf(1)
		for _, ci := range t.nodes[ni].children {
			if ci < 0 || t.nodes[ci].count == 0 {
				continue
			}
			d := x.Dist(t.nodes[ci].centroid)
			if d < pickDist {
				pickDist = d
				pick = ci
			}
		}
		if pick < 0 {
			break
		}
		ni = pick
	}
	for _, p := range t.nodes[ni].pts {
		if d := x.Dist(p.pos); d < bestDist {
			bestDist = d
			best = p.id
		}
	}

	// pruning phase
	var visit func(ni int32)
	visit = func(ni int32) {
		nd := &t.nodes[ni]
		if nd.count == 0 {
			return
		}
		if x.Dist(nd.center)-math.Sqrt2*2*nd.half > bestDist {
			return
		}
		if !nd.split {
			for _, p := range nd.pts {
				if d := x.Dist(p.pos); d < bestDist {
					bestDist = d
					best = p.id
				}
			}
			return
		}
		for _, ci := range nd.children {
			if ci >= 0 {
				visit(ci)
			}
		}
	}
	visit(0)
	return best
}
