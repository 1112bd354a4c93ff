package route

import (
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/hverr/gviz/geom"
	"github.com/hverr/gviz/graph"
	"github.com/hverr/gviz/internal/emit"
)

// Edges routes every edge of the laid-out graph. Straight polylines are the
// default; the graph attribute splines=true (or "spline") requests smoothed
// obstacle-avoiding splines. Routing failures degrade to a straight segment
// with a warning and do not stop the pass.
func Edges(g *graph.Graph) {
	wantSplines := false
	switch strings.ToLower(g.Root().GetStr(graph.KindGraph, "splines", "")) {
	case "true", "spline", "splines", "1":
		wantSplines = true
	}

	obstacles := Obstacles(g)
	vis := NewVisibility(obstacles)
	obstacleOf := map[*graph.Node]int{}
	for i, o := range obstacles {
		obstacleOf[o.Node] = i
	}

	loops := map[*graph.Node]int{}
	routed := map[*graph.Edge]bool{}

	for _, e := range g.Edges() {
		if routed[e] {
			continue
		}
		if e.IsLoop() {
			routeSelfLoop(g, e, loops)
			routed[e] = true
			continue
		}
		primary := e.Primary()
		if routed[primary] {
			copyBundleSpline(g, primary, e)
			routed[e] = true
			continue
		}

		routeEdge(g, vis, obstacleOf, primary, wantSplines)
		routed[primary] = true
		if e != primary {
			copyBundleSpline(g, primary, e)
			routed[e] = true
		}
	}

	// second pass: siblings of primaries routed later in sequence order
	for _, e := range g.Edges() {
		if !routed[e] {
			copyBundleSpline(g, e.Primary(), e)
		}
	}
}

// routeEdge computes one edge's geometry through the visibility
// configuration. Endpoints falling inside an obstacle remove that obstacle
// from the barrier set.
func routeEdge(g *graph.Graph, vis *Visibility, obstacleOf map[*graph.Node]int, e *graph.Edge, wantSplines bool) {
	tailPt := attachPoint(g, e.Tail(), e.TailPort)
	headPt := attachPoint(g, e.Head(), e.HeadPort)

	skip := map[int]bool{}
	if i, ok := obstacleOf[e.Tail()]; ok {
		skip[i] = true
	}
	if i, ok := obstacleOf[e.Head()]; ok {
		skip[i] = true
	}
	for i, o := range vis.obstacles {
		if !skip[i] && (o.Contains(tailPt) || o.Contains(headPt)) {
			skip[i] = true
		}
	}

	polyline, ok := vis.ShortestPath(tailPt, headPt, skip)
	if !ok {
		emit.Oncef(log.Fields{"tail": e.Tail().Name(), "head": e.Head().Name()},
			"some edges are unroutable through the obstacle field, drawing them straight")
		polyline = []geom.Point{tailPt, headPt}
	}

	// clip the ends to the node boundaries
	polyline[0] = boundaryPoint(g, e.Tail(), polyline[min(1, len(polyline)-1)])
	polyline[len(polyline)-1] = boundaryPoint(g, e.Head(), polyline[max(0, len(polyline)-2)])

	var bz geom.Bezier
	if wantSplines && len(polyline) > 2 {
		bz = smoothPolyline(polyline, vis, skip)
	} else {
		bz = geom.PolylineToBezier(polyline)
	}
	sp := polyline[0]
	ep := polyline[len(polyline)-1]
	bz.SP = &sp
	bz.EP = &ep
	e.Spline = &bz
}

// smoothPolyline replaces polyline corners with cubic pieces, keeping each
// piece outside every active obstacle; a piece that cannot be kept clear
// falls back to its straight segments.
func smoothPolyline(polyline []geom.Point, vis *Visibility, skip map[int]bool) geom.Bezier {
	cubic := singleCubic(polyline)
	if splineClear(cubic, vis, skip) {
		return cubic
	}
	if len(polyline) <= 2 {
		return geom.PolylineToBezier(polyline)
	}
	mid := len(polyline) / 2
	left := smoothPolyline(polyline[:mid+1], vis, skip)
	right := smoothPolyline(polyline[mid:], vis, skip)
	return joinBeziers(left, right)
}

func splineClear(bz geom.Bezier, vis *Visibility, skip map[int]bool) bool {
	for s := 0; s < bz.Segments(); s++ {
		for t := 0.0; t <= 1.0; t += 0.1 {
			p := bz.Eval(s, t)
			for i, o := range vis.obstacles {
				if !skip[i] && interiorPoint(o, p) {
					return false
				}
			}
		}
	}
	return true
}

// copyBundleSpline reuses the primary edge's spline for a parallel sibling,
// shifted slightly so the bundle stays visible.
func copyBundleSpline(g *graph.Graph, primary, e *graph.Edge) {
	if primary == e || primary.Spline == nil {
		return
	}
	cp := *primary.Spline
	cp.Points = append([]geom.Point{}, primary.Spline.Points...)
	if primary.Spline.SP != nil {
		sp := *primary.Spline.SP
		cp.SP = &sp
	}
	if primary.Spline.EP != nil {
		ep := *primary.Spline.EP
		cp.EP = &ep
	}
	// offset interior control points perpendicular to the chord
	if len(cp.Points) > 2 {
		chord := cp.Points[len(cp.Points)-1].Sub(cp.Points[0])
		perp := geom.Pt(-chord.Y, chord.X).Unit().Scale(4 * float64(e.BundleIndex()))
		for i := 1; i < len(cp.Points)-1; i++ {
			cp.Points[i] = cp.Points[i].Add(perp)
		}
	}
	e.Spline = &cp
}

// routeSelfLoop fans the node's self-edges around it at stepped offsets.
// Both endpoints lie on the node boundary and each arc clears half the node
// diameter.
func routeSelfLoop(g *graph.Graph, e *graph.Edge, loops map[*graph.Node]int) {
	n := e.Tail()
	idx := loops[n]
	loops[n] = idx + 1

	c, _ := n.Pos(g)
	w, h := n.Size(g)
	reach := w/2 + (w/2+18)*float64(idx+1)*0.75

	start := geom.Pt(c.X+w/2, c.Y+h/6)
	end := geom.Pt(c.X+w/2, c.Y-h/6)
	ctl1 := geom.Pt(c.X+reach, c.Y+h/2+float64(idx)*6)
	ctl2 := geom.Pt(c.X+reach, c.Y-h/2-float64(idx)*6)

	bz := geom.Bezier{Points: []geom.Point{start, ctl1, ctl2, end}}
	sp, ep := start, end
	bz.SP = &sp
	bz.EP = &ep
	e.Spline = &bz

	// per-arc label position sits beyond the arc's widest point
	if v, ok := e.Get(g, "label"); ok && v.IsSet() {
		e.Set("lp", graph.StringValue(geom.Pt(c.X+reach+8, c.Y).String()))
	}
}
