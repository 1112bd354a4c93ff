package spatial

import (
	"math"
	"sort"

	"github.com/hverr/gviz/geom"
)

// Triangle is one face of a triangulation. V holds point indices in CCW
// order; N holds the indices of the neighbor triangles opposite each vertex,
// -1 on the hull.
type Triangle struct {
	V [3]int
	N [3]int
}

// Triangulation is the result of Delaunay: the unique edges and the faces
// with neighbor adjacency. Degenerate inputs (fewer than three points, or
// all points collinear) yield edges only.
type Triangulation struct {
	Edges     [][2]int
	Triangles []Triangle
}

// Delaunay triangulates n planar points by incremental insertion with
// cavity re-triangulation. For n <= 2 it returns the single edge or
// nothing; collinear inputs are sorted along the non-constant axis and
// chained by nearest neighbor.
func Delaunay(pts []geom.Point) *Triangulation {
	tr := &Triangulation{}
	switch len(pts) {
	case 0, 1:
		return tr
	case 2:
		tr.Edges = [][2]int{{0, 1}}
		return tr
	}
	if collinear(pts) {
		tr.Edges = collinearChain(pts)
		return tr
	}

	// super-triangle enclosing all points
	bb := geom.BoundingBox(pts)
	c := bb.Center()
	r := math.Max(bb.Width(), bb.Height()) * 16
	super := []geom.Point{
		{X: c.X - 2*r, Y: c.Y - r},
		{X: c.X + 2*r, Y: c.Y - r},
		{X: c.X, Y: c.Y + 2*r},
	}
	all := append(append([]geom.Point{}, pts...), super...)
	s0, s1, s2 := len(pts), len(pts)+1, len(pts)+2

	type tri struct {
		v    [3]int
		dead bool
	}
	tris := []tri{{v: [3]int{s0, s1, s2}}}

	inCircumcircle := func(t tri, p geom.Point) bool {
		a, b, cc := all[t.v[0]], all[t.v[1]], all[t.v[2]]
		ax, ay := a.X-p.X, a.Y-p.Y
		bx, by := b.X-p.X, b.Y-p.Y
		cx, cy := cc.X-p.X, cc.Y-p.Y
		det := (ax*ax+ay*ay)*(bx*cy-cx*by) -
			(bx*bx+by*by)*(ax*cy-cx*ay) +
			(cx*cx+cy*cy)*(ax*by-bx*ay)
		// orientation of (a, b, c) flips the sign test
		orient := (b.X-a.X)*(cc.Y-a.Y) - (cc.X-a.X)*(b.Y-a.Y)
		if orient < 0 {
			return det < 0
		}
		return det > 0
	}

	for pi := range pts {
		p := all[pi]
		// the cavity is the union of triangles whose circumcircle contains p
		type edge struct{ a, b int }
		boundary := map[edge]int{}
		for ti := range tris {
			if tris[ti].dead || !inCircumcircle(tris[ti], p) {
				continue
			}
			tris[ti].dead = true
			v := tris[ti].v
			for k := 0; k < 3; k++ {
				a, b := v[k], v[(k+1)%3]
				key := edge{a: min(a, b), b: max(a, b)}
				boundary[key]++
			}
		}
		for e, count := range boundary {
			if count != 1 {
				continue // interior cavity edge
			}
			v := [3]int{e.a, e.b, pi}
			pa, pb, pc := all[v[0]], all[v[1]], all[v[2]]
			if (pb.X-pa.X)*(pc.Y-pa.Y)-(pc.X-pa.X)*(pb.Y-pa.Y) < 0 {
				v[0], v[1] = v[1], v[0] // keep every face counter-clockwise
			}
			tris = append(tris, tri{v: v})
		}
	}

	// collect real triangles and build neighbor adjacency
	edgeOwner := map[[2]int][]int{}
	for _, t := range tris {
		if t.dead || t.v[0] >= len(pts) || t.v[1] >= len(pts) || t.v[2] >= len(pts) {
			continue
		}
		idx := len(tr.Triangles)
		tr.Triangles = append(tr.Triangles, Triangle{V: t.v, N: [3]int{-1, -1, -1}})
		for k := 0; k < 3; k++ {
			a, b := t.v[(k+1)%3], t.v[(k+2)%3]
			key := [2]int{min(a, b), max(a, b)}
			edgeOwner[key] = append(edgeOwner[key], idx)
		}
	}
	for key, owners := range edgeOwner {
		tr.Edges = append(tr.Edges, key)
		if len(owners) == 2 {
			linkNeighbors(tr.Triangles, owners[0], owners[1], key)
			linkNeighbors(tr.Triangles, owners[1], owners[0], key)
		}
	}
	sort.Slice(tr.Edges, func(i, j int) bool {
		if tr.Edges[i][0] != tr.Edges[j][0] {
			return tr.Edges[i][0] < tr.Edges[j][0]
		}
		return tr.Edges[i][1] < tr.Edges[j][1]
	})
	return tr
}

// linkNeighbors records other as the neighbor of ti opposite the vertex not
// on the shared edge.
func linkNeighbors(tris []Triangle, ti, other int, shared [2]int) {
	for k := 0; k < 3; k++ {
		v := tris[ti].V[k]
		if v != shared[0] && v != shared[1] {
			tris[ti].N[k] = other
			return
		}
	}
}

func collinear(pts []geom.Point) bool {
	a, b := pts[0], pts[1]
	for _, p := range pts[2:] {
		if math.Abs(b.Sub(a).Cross(p.Sub(a))) > 1e-12 {
			return false
		}
	}
	return true
}

// collinearChain sorts the points along the non-constant axis and connects
// consecutive neighbors.
func collinearChain(pts []geom.Point) [][2]int {
	order := make([]int, len(pts))
	for i := range order {
		order[i] = i
	}
	bb := geom.BoundingBox(pts)
	byX := bb.Width() >= bb.Height()
	sort.Slice(order, func(i, j int) bool {
		a, b := pts[order[i]], pts[order[j]]
		if byX {
			return a.X < b.X
		}
		return a.Y < b.Y
	})
	edges := make([][2]int, 0, len(pts)-1)
	for i := 1; i < len(order); i++ {
		a, b := order[i-1], order[i]
		edges = append(edges, [2]int{min(a, b), max(a, b)})
	}
	return edges
}
