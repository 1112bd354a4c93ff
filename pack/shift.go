package pack

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hverr/gviz/geom"
	"github.com/hverr/gviz/graph"
)

// Graphs lays the given component subgraphs into one canvas: their bounding
// boxes are packed per the root's packmode/pack attributes (with sortv
// overriding the size ordering) and every component is shifted by its
// translation. Node positions, edge splines, label positions and cluster
// bounding boxes all move together, so intra-component geometry is
// preserved exactly.
func Graphs(root *graph.Graph, comps []*graph.Graph) {
	if len(comps) <= 1 {
		return
	}
	o := ParseOptions(root)

	boxes := make([]geom.Box, len(comps))
	for i, c := range comps {
		boxes[i] = c.BoundingBox()
	}

	// sortv assigns explicit packing order
	if hasSortv(comps) {
		o.UserOrder = true
		order := make([]int, len(comps))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			return sortvOf(comps[order[a]]) < sortvOf(comps[order[b]])
		})
		reordered := make([]*graph.Graph, len(comps))
		rboxes := make([]geom.Box, len(comps))
		for k, i := range order {
			reordered[k] = comps[i]
			rboxes[k] = boxes[i]
		}
		comps, boxes = reordered, rboxes
	}

	var shifts []geom.Point
	switch o.Mode {
	case ModeCluster, ModeNode:
		cells := make([][]geom.Box, len(comps))
		for i, c := range comps {
			cells[i] = granularBoxes(c, o.Mode)
		}
		shifts = placePolyomino(boxes, cells, o)
	default:
		shifts = PlaceBoxes(boxes, o)
	}

	for i, c := range comps {
		Shift(c, shifts[i])
	}
}

func hasSortv(comps []*graph.Graph) bool {
	for _, c := range comps {
		if _, ok := c.Get(graph.KindGraph, "sortv"); ok {
			return true
		}
	}
	return false
}

func sortvOf(c *graph.Graph) int {
	v, _ := c.Get(graph.KindGraph, "sortv")
	return v.Int(0)
}

// granularBoxes rasterization input: per-cluster boxes for ModeCluster,
// per-node boxes for ModeNode.
func granularBoxes(c *graph.Graph, mode Mode) []geom.Box {
	var out []geom.Box
	if mode == ModeCluster {
		for _, cl := range topLevelClusters(c) {
			out = append(out, cl.BoundingBox())
		}
		if len(out) > 0 {
			return out
		}
	}
	for _, n := range c.Nodes() {
		if b, ok := n.Box(c); ok {
			out = append(out, b)
		}
	}
	return out
}

// Shift translates everything the component owns: node positions, all
// spline control and attachment points, label positions, and the bb
// attribute of contained clusters.
func Shift(c *graph.Graph, d geom.Point) {
	if d == (geom.Point{}) {
		return
	}
	for _, n := range c.Nodes() {
		if p, ok := n.Pos(c); ok {
			n.SetPos(p.Add(d))
		}
	}
	for _, e := range c.Edges() {
		if e.Spline != nil {
			e.Spline.Translate(d)
		}
		shiftPointAttr(c, e, "lp", d)
	}
	var walk func(sub *graph.Graph)
	walk = func(sub *graph.Graph) {
		shiftBoxAttr(sub, d)
		for _, child := range sub.Subgraphs() {
			walk(child)
		}
	}
	for _, sub := range c.Subgraphs() {
		walk(sub)
	}
}

func shiftPointAttr(g *graph.Graph, e *graph.Edge, name string, d geom.Point) {
	v, ok := e.Get(g, name)
	if !ok {
		return
	}
	parts := strings.Split(v.String(), ",")
	if len(parts) != 2 {
		return
	}
	var x, y float64
	if _, err := fmt.Sscanf(v.String(), "%f,%f", &x, &y); err != nil {
		return
	}
	e.Set(name, graph.StringValue(fmt.Sprintf("%g,%g", x+d.X, y+d.Y)))
}

func shiftBoxAttr(sub *graph.Graph, d geom.Point) {
	v, ok := sub.Get(graph.KindGraph, "bb")
	if !ok {
		return
	}
	var x0, y0, x1, y1 float64
	if _, err := fmt.Sscanf(v.String(), "%f,%f,%f,%f", &x0, &y0, &x1, &y1); err != nil {
		return
	}
	sub.Set(graph.KindGraph, "bb", graph.StringValue(
		fmt.Sprintf("%g,%g,%g,%g", x0+d.X, y0+d.Y, x1+d.X, y1+d.Y)))
}
