package route

import (
	"errors"

	"github.com/hverr/gviz/geom"
)

// Path is a box corridor: a monotone ordered sequence of axis-aligned
// boxes, consecutive ones sharing a non-degenerate edge, with an endpoint
// inside the first and last box.
type Path struct {
	Boxes []geom.Box
	Start Endpoint
	End   Endpoint
}

// Endpoint is one end of a corridor route.
type Endpoint struct {
	Point geom.Point
	// Theta is the required tangent angle in radians; meaningful only when
	// Constrained is set.
	Theta       float64
	Constrained bool
}

// ErrBadCorridor is returned for corridors violating the Path invariants.
var ErrBadCorridor = errors.New("route: invalid box corridor")

// check validates the corridor invariants.
func (p *Path) check() error {
	if len(p.Boxes) == 0 {
		return ErrBadCorridor
	}
	for i := 1; i < len(p.Boxes); i++ {
		a, b := p.Boxes[i-1], p.Boxes[i]
		// consecutive boxes must meet in a non-degenerate edge or area
		lo := maxf(a.LL.Y, b.LL.Y)
		hi := minf(a.UR.Y, b.UR.Y)
		overlapX := minf(a.UR.X, b.UR.X) - maxf(a.LL.X, b.LL.X)
		if hi < lo || overlapX < 0 || (hi <= lo && overlapX <= 0) {
			return ErrBadCorridor
		}
	}
	if !p.Boxes[0].Contains(p.Start.Point) || !p.Boxes[len(p.Boxes)-1].Contains(p.End.Point) {
		return ErrBadCorridor
	}
	return nil
}

// union is the feasible region formed by the box boundaries: a point is
// inside when some box contains it. The small tolerance keeps paths that
// run along shared box edges feasible.
type union struct {
	boxes []geom.Box
}

func (u union) contains(p geom.Point) bool {
	for _, b := range u.boxes {
		if b.Expand(1e-6, 1e-6).Contains(p) {
			return true
		}
	}
	return false
}

// segmentInside samples the segment against the union.
func (u union) segmentInside(a, b geom.Point) bool {
	const samples = 24
	for i := 0; i <= samples; i++ {
		t := float64(i) / samples
		if !u.contains(a.Add(b.Sub(a).Scale(t))) {
			return false
		}
	}
	return true
}

// FitSpline routes a spline through the corridor: a shortest polyline
// inside the corridor polygon between the endpoints, smoothed into cubic
// Bezier pieces that stay inside the polygon, subdividing control points
// until every piece fits. It also records, per box, the x-extent the spline
// occupies so callers can shrink boxes for subsequent edges.
func (p *Path) FitSpline() (geom.Bezier, []geom.Box, error) {
	if err := p.check(); err != nil {
		return geom.Bezier{}, nil, err
	}
	u := union{boxes: p.Boxes}

	polyline := shortestInUnion(u, p.Start.Point, p.End.Point)
	if len(polyline) < 2 {
		return geom.Bezier{}, nil, ErrBadCorridor
	}

	bz := fitPieces(polyline, u, 0)

	// per-box occupied x-extent from sampled spline points
	used := make([]geom.Box, len(p.Boxes))
	for i := range used {
		used[i] = geom.Box{LL: geom.Pt(1e18, 1e18), UR: geom.Pt(-1e18, -1e18)}
	}
	for s := 0; s < bz.Segments(); s++ {
		for t := 0.0; t <= 1.0; t += 0.05 {
			pt := bz.Eval(s, t)
			for i, b := range p.Boxes {
				if b.Contains(pt) {
					used[i] = used[i].Union(geom.Box{LL: pt, UR: pt})
					break
				}
			}
		}
	}
	return bz, used, nil
}

// shortestInUnion computes the shortest path between two points of the
// corridor: Dijkstra over the box corners plus the endpoints, with segment
// feasibility checked against the union.
func shortestInUnion(u union, start, end geom.Point) []geom.Point {
	verts := []geom.Point{start, end}
	for _, b := range u.boxes {
		verts = append(verts,
			b.LL, b.UR, geom.Pt(b.LL.X, b.UR.Y), geom.Pt(b.UR.X, b.LL.Y))
	}
	n := len(verts)

	const inf = 1e18
	dist := make([]float64, n)
	prev := make([]int, n)
	done := make([]bool, n)
	for i := range dist {
		dist[i] = inf
		prev[i] = -1
	}
	dist[0] = 0
	for {
		ui := -1
		best := inf
		for i := 0; i < n; i++ {
			if !done[i] && dist[i] < best {
				best = dist[i]
				ui = i
			}
		}
		if ui < 0 || ui == 1 {
			break
		}
		done[ui] = true
		for vv := 0; vv < n; vv++ {
			if done[vv] || verts[ui] == verts[vv] || !u.segmentInside(verts[ui], verts[vv]) {
				continue
			}
			nd := dist[ui] + verts[ui].Dist(verts[vv])
			if nd < dist[vv] {
				dist[vv] = nd
				prev[vv] = ui
			}
		}
	}
	if dist[1] >= inf {
		return nil
	}
	var path []geom.Point
	for at := 1; at >= 0; at = prev[at] {
		path = append(path, verts[at])
		if at == 0 {
			break
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

const maxFitDepth = 8

// fitPieces fits one cubic to the polyline; if any sampled point of the
// cubic escapes the corridor the polyline is split and each half fitted
// recursively, increasing control-point subdivision until every piece stays
// inside.
func fitPieces(polyline []geom.Point, u union, depth int) geom.Bezier {
	if len(polyline) == 2 && polyline[0] == polyline[1] {
		return geom.PolylineToBezier(polyline)
	}
	cubic := singleCubic(polyline)
	if cubicInside(cubic, u) {
		return cubic
	}
	if depth >= maxFitDepth {
		// out of subdivision budget: fall back to the polyline itself
		return geom.PolylineToBezier(polyline)
	}
	mid := len(polyline) / 2
	if mid == 0 || mid >= len(polyline)-1 {
		// a single segment that escapes cannot be split further by vertex;
		// split it at its midpoint instead
		if len(polyline) == 2 {
			m := polyline[0].Add(polyline[1]).Scale(0.5)
			left := fitPieces([]geom.Point{polyline[0], m}, u, depth+1)
			right := fitPieces([]geom.Point{m, polyline[1]}, u, depth+1)
			return joinBeziers(left, right)
		}
		return geom.PolylineToBezier(polyline)
	}
	left := fitPieces(polyline[:mid+1], u, depth+1)
	right := fitPieces(polyline[mid:], u, depth+1)
	return joinBeziers(left, right)
}

// singleCubic builds one cubic whose tangents follow the polyline's first
// and last segments.
func singleCubic(polyline []geom.Point) geom.Bezier {
	a := polyline[0]
	b := polyline[len(polyline)-1]
	d := a.Dist(b) / 3
	t0 := polyline[1].Sub(a).Unit()
	t1 := polyline[len(polyline)-2].Sub(b).Unit()
	return geom.Bezier{Points: []geom.Point{a, a.Add(t0.Scale(d)), b.Add(t1.Scale(d)), b}}
}

func cubicInside(bz geom.Bezier, u union) bool {
	for s := 0; s < bz.Segments(); s++ {
		for t := 0.0; t <= 1.0; t += 0.05 {
			if !u.contains(bz.Eval(s, t)) {
				return false
			}
		}
	}
	return true
}

func joinBeziers(a, b geom.Bezier) geom.Bezier {
	if len(a.Points) == 0 {
		return b
	}
	if len(b.Points) == 0 {
		return a
	}
	pts := append(append([]geom.Point{}, a.Points...), b.Points[1:]...)
	return geom.Bezier{Points: pts}
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
