package layout

import (
	"sort"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/hverr/gviz/geom"
	"github.com/hverr/gviz/graph"
	"github.com/hverr/gviz/sparse"
)

// Layout places the nodes of g with the multi-level spring-electrical
// engine, applies the configured smoothing, scales coordinates to drawing
// units and honors the normalize and ratio graph attributes. Positions are
// written to each node's pos attribute; pinned nodes keep theirs.
func Layout(g *graph.Graph, ctrl *Control) error {
	nodes := g.Nodes()
	n := len(nodes)
	if n == 0 {
		return nil
	}
	index := make(map[*graph.Node]int, n)
	for i, nd := range nodes {
		index[nd] = i
	}

	var ts []sparse.Triple
	for _, e := range g.Edges() {
		if e.IsLoop() {
			continue
		}
		i, j := index[e.Tail()], index[e.Head()]
		ts = append(ts, sparse.Triple{I: i, J: j, V: 1})
	}
	a, err := sparse.FromTriples(n, n, sparse.Real, ts).SymmetrizeReal()
	if err != nil {
		return err
	}

	c := *ctrl
	if c.P == -1 && powerLaw(a) {
		// peaked degree distributions lay out better with stronger
		// short-range repulsion
		c.P = -1.8
		log.WithFields(log.Fields{"graph": g.Name()}).Debug("power-law degree distribution, tuning repulsion exponent to -1.8")
	}

	init := make([]geom.Point, n)
	anyPinned := false
	for i, nd := range nodes {
		if p, ok := nd.Pos(g); ok {
			init[i] = p
			if nd.Pinned(g) {
				anyPinned = true
			}
		}
	}
	if anyPinned {
		c.RandomStart = false
	}

	x := Multilevel(a, &c, init)

	k := c.K
	if k <= 0 {
		k = avgEdgeLength(a, x)
	}
	smooth(a, &c, k, x)

	// scale to drawing units: mean edge length becomes the requested
	// initial scaling, or one inch
	target := c.InitialScaling
	if target <= 0 {
		target = 72
	}
	if avg := avgEdgeLength(a, x); avg > 0 {
		s := target / avg
		for i := range x {
			x[i] = x[i].Scale(s)
		}
	}

	applyNormalizeAttr(g, x, nodes, index)
	applyRatioAttr(g, x)

	for i, nd := range nodes {
		if nd.Pinned(g) {
			continue
		}
		nd.SetPos(x[i])
	}
	return nil
}

// powerLaw detects a highly peaked degree distribution: most nodes at
// degree one with a heavy tail.
func powerLaw(a *sparse.Matrix) bool {
	degs := a.RowDegrees()
	if len(degs) < 8 {
		return false
	}
	fs := make([]float64, len(degs))
	for i, d := range degs {
		fs[i] = float64(d)
	}
	sort.Float64s(fs)
	median := stat.Quantile(0.5, stat.Empirical, fs, nil)
	mean := stat.Mean(fs, nil)
	return median <= 1 && fs[len(fs)-1] > 4*mean
}

// applyNormalizeAttr rotates the layout per the normalize attribute: true
// means angle zero, a number is the angle in degrees.
func applyNormalizeAttr(g *graph.Graph, x []geom.Point, nodes []*graph.Node, index map[*graph.Node]int) {
	v, ok := g.Get(graph.KindGraph, "normalize")
	if !ok {
		return
	}
	raw := strings.TrimSpace(v.String())
	var angle float64
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		angle = f
	} else if !v.Bool() {
		return
	}

	first := 0
	second := -1
	if len(nodes) > 0 {
		for _, e := range nodes[0].OutEdges(g.Root()) {
			if !e.IsLoop() {
				second = index[e.Head()]
				break
			}
		}
	}
	Normalize(x, first, second, angle)
}

// applyRatioAttr implements the ratio attribute: "fill", "expand" or a
// numeric h/w target.
func applyRatioAttr(g *graph.Graph, x []geom.Point) {
	v, ok := g.Get(graph.KindGraph, "ratio")
	if !ok {
		return
	}
	raw := strings.TrimSpace(strings.ToLower(v.String()))
	bb := geom.BoundingBox(x)
	switch raw {
	case "fill":
		w := sizeAttr(g, "size", bb.Width(), 0)
		h := sizeAttr(g, "size", bb.Height(), 1)
		ApplyRatio(x, RatioFill, w, h, 0)
	case "expand":
		w := sizeAttr(g, "size", bb.Width(), 0)
		h := sizeAttr(g, "size", bb.Height(), 1)
		ApplyRatio(x, RatioExpand, w, h, 0)
	default:
		if ratio, err := strconv.ParseFloat(raw, 64); err == nil && ratio > 0 {
			ApplyRatio(x, RatioValue, 0, 0, ratio)
		}
	}
}

// sizeAttr reads one dimension of the "size" graph attribute (inches),
// falling back to def points.
func sizeAttr(g *graph.Graph, name string, def float64, dim int) float64 {
	v, ok := g.Get(graph.KindGraph, name)
	if !ok {
		return def
	}
	parts := strings.Split(v.String(), ",")
	if dim >= len(parts) {
		if len(parts) == 1 && dim == 1 {
			parts = append(parts, parts[0])
		} else {
			return def
		}
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(parts[dim]), 64)
	if err != nil {
		return def
	}
	return f * 72
}
