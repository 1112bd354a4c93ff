// Package route computes edge geometry: obstacle-avoiding polylines through
// the visibility graph of node polygons, splines fitted inside box
// corridors, self-loop fans and parallel-edge bundles.
package route

import (
	"math"

	"github.com/hverr/gviz/geom"
	"github.com/hverr/gviz/graph"
	"github.com/hverr/gviz/overlap"
)

// Obstacle is a clockwise polygon approximating a node's drawable region,
// expanded by the routing margin.
type Obstacle struct {
	Verts []geom.Point
	Node  *graph.Node
}

// Contains reports whether p lies inside the obstacle.
func (o *Obstacle) Contains(p geom.Point) bool {
	return geom.PointInPolygon(o.Verts, p)
}

// Obstacles builds one obstacle per positioned node of g, honoring shape
// (rectangle for record/box shapes, explicit polygon side counts, 8-gon for
// ellipses) and the esep margin: additive padding in points under a "+"
// prefix, multiplicative scaling otherwise.
func Obstacles(g *graph.Graph) []*Obstacle {
	margin := overlap.ParseSep(g.Root().GetStr(graph.KindGraph, "esep", ""), overlap.Margin{X: 2, Y: 2, Add: true})
	var out []*Obstacle
	for _, n := range g.Nodes() {
		p, ok := n.Pos(g)
		if !ok {
			continue
		}
		w, h := n.Size(g)
		b := margin.Grow(geom.Rect(p.X-w/2, p.Y-h/2, p.X+w/2, p.Y+h/2))

		var verts []geom.Point
		switch shape := n.GetStr(g, "shape", "ellipse"); shape {
		case "box", "rect", "rectangle", "record", "Mrecord", "square":
			verts = rectVerts(b)
		case "polygon":
			sides := 4
			if v, ok := n.Get(g, "sides"); ok {
				if s := v.Int(4); s >= 3 {
					sides = s
				}
			}
			verts = ngonVerts(b, sides)
		case "point", "circle", "ellipse", "oval", "doublecircle":
			verts = ngonVerts(b, 8)
		default:
			// unknown shapes fall back to their bounding box
			verts = rectVerts(b)
		}
		out = append(out, &Obstacle{Verts: verts, Node: n})
	}
	return out
}

// rectVerts emits the box corners in clockwise order, the winding the
// shortest-path engine consumes.
func rectVerts(b geom.Box) []geom.Point {
	return []geom.Point{
		b.LL,
		{X: b.LL.X, Y: b.UR.Y},
		b.UR,
		{X: b.UR.X, Y: b.LL.Y},
	}
}

// ngonVerts circumscribes a regular n-gon to the ellipse inscribed in b so
// the polygon fully covers the ellipse plus margin. Vertices are clockwise.
func ngonVerts(b geom.Box, n int) []geom.Point {
	c := b.Center()
	rx, ry := b.Width()/2, b.Height()/2
	// circumscribed: scale the circumradius by 1/cos(pi/n)
	scale := 1 / math.Cos(math.Pi/float64(n))
	verts := make([]geom.Point, n)
	for i := 0; i < n; i++ {
		// negative angle step yields clockwise order
		phi := -2 * math.Pi * float64(i) / float64(n)
		verts[i] = geom.Pt(c.X+rx*scale*math.Cos(phi), c.Y+ry*scale*math.Sin(phi))
	}
	return verts
}

// portOffset converts a compass direction into an offset from the node
// center to its boundary.
func portOffset(port string, w, h float64) geom.Point {
	switch port {
	case "n":
		return geom.Pt(0, h/2)
	case "s":
		return geom.Pt(0, -h/2)
	case "e":
		return geom.Pt(w/2, 0)
	case "w":
		return geom.Pt(-w/2, 0)
	case "ne":
		return geom.Pt(w/2, h/2)
	case "nw":
		return geom.Pt(-w/2, h/2)
	case "se":
		return geom.Pt(w/2, -h/2)
	case "sw":
		return geom.Pt(-w/2, -h/2)
	default:
		return geom.Point{}
	}
}

// attachPoint returns the endpoint for an edge at node n, its center offset
// by the port's compass direction.
func attachPoint(g *graph.Graph, n *graph.Node, port string) geom.Point {
	p, _ := n.Pos(g)
	if port == "" {
		return p
	}
	// ports are name[:compass]; only the compass part moves the point
	compass := port
	if i := lastColon(port); i >= 0 {
		compass = port[i+1:]
	}
	w, h := n.Size(g)
	return p.Add(portOffset(compass, w, h))
}

func lastColon(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == ':' {
			return i
		}
	}
	return -1
}

// boundaryPoint moves from the node center toward target until it exits the
// node's box, returning the crossing point.
func boundaryPoint(g *graph.Graph, n *graph.Node, target geom.Point) geom.Point {
	c, _ := n.Pos(g)
	w, h := n.Size(g)
	d := target.Sub(c)
	if d.Len() == 0 {
		return geom.Pt(c.X+w/2, c.Y)
	}
	tx, ty := math.Inf(1), math.Inf(1)
	if d.X != 0 {
		tx = (w / 2) / math.Abs(d.X)
	}
	if d.Y != 0 {
		ty = (h / 2) / math.Abs(d.Y)
	}
	t := math.Min(tx, ty)
	if t > 1 {
		t = 1
	}
	return c.Add(d.Scale(t))
}
