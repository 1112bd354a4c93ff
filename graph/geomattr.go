package graph

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hverr/gviz/geom"
)

// Geometry attribute plumbing. Coordinates live in the "pos" attribute in
// points; node sizes live in "width"/"height" in inches.

const pointsPerInch = 72

// Default node size in inches.
const (
	defaultNodeWidth  = 0.75
	defaultNodeHeight = 0.5
)

// Pos returns the node's position from its pos attribute.
func (n *Node) Pos(g *Graph) (geom.Point, bool) {
	v, ok := n.Get(g, "pos")
	if !ok {
		return geom.Point{}, false
	}
	return parsePoint(v.String())
}

// SetPos pins the node's position.
func (n *Node) SetPos(p geom.Point) {
	n.Set("pos", StringValue(fmt.Sprintf("%g,%g", p.X, p.Y)))
}

// Size returns the node's bounding size in points.
func (n *Node) Size(g *Graph) (w, h float64) {
	wv, _ := n.Get(g, "width")
	hv, _ := n.Get(g, "height")
	return wv.Float(defaultNodeWidth) * pointsPerInch, hv.Float(defaultNodeHeight) * pointsPerInch
}

// Box returns the node's bounding box in points around its position. Nodes
// without a position report ok = false.
func (n *Node) Box(g *Graph) (geom.Box, bool) {
	p, ok := n.Pos(g)
	if !ok {
		return geom.Box{}, false
	}
	w, h := n.Size(g)
	return geom.Rect(p.X-w/2, p.Y-h/2, p.X+w/2, p.Y+h/2), true
}

func parsePoint(s string) (geom.Point, bool) {
	parts := strings.Split(strings.TrimSuffix(s, "!"), ",")
	if len(parts) < 2 {
		return geom.Point{}, false
	}
	x, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	y, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return geom.Point{}, false
	}
	return geom.Pt(x, y), true
}

// Pinned reports whether the node's position is user-pinned (a pos value
// ending in "!").
func (n *Node) Pinned(g *Graph) bool {
	v, ok := n.Get(g, "pos")
	return ok && strings.HasSuffix(v.String(), "!")
}

// BoundingBox returns the bounding box of all positioned nodes of g,
// including node extents and routed edge splines.
func (g *Graph) BoundingBox() geom.Box {
	var bb geom.Box
	first := true
	for _, n := range g.Nodes() {
		box, ok := n.Box(g)
		if !ok {
			continue
		}
		if first {
			bb = box
			first = false
		} else {
			bb = bb.Union(box)
		}
	}
	for _, e := range g.Edges() {
		if e.Spline == nil {
			continue
		}
		sb := geom.BoundingBox(e.Spline.Points)
		if first {
			bb = sb
			first = false
		} else {
			bb = bb.Union(sb)
		}
	}
	return bb
}
