package gviz_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/teleivo/assertive/assert"
	"github.com/teleivo/assertive/require"

	"github.com/hverr/gviz"
	"github.com/hverr/gviz/geom"
	"github.com/hverr/gviz/graph"
)

func TestPipeline(t *testing.T) {
	t.Run("TwoNodeDigraph", func(t *testing.T) {
		g, err := gviz.Parse(strings.NewReader("digraph { a -> b }"))
		require.NoError(t, err, "Parse")
		defer g.Close()

		require.NoError(t, gviz.Layout(g), "Layout")

		a, b := g.Node("a"), g.Node("b")
		pa, ok := a.Pos(g)
		assert.True(t, ok)
		pb, ok := b.Pos(g)
		assert.True(t, ok)
		assert.True(t, pa.Dist(pb) > 0, "nodes are separated")

		e := g.Edge(a, b, "")
		require.NotNil(t, e.Spline)
		start := e.Spline.Points[0]
		end := e.Spline.Points[len(e.Spline.Points)-1]
		assert.True(t, start.Dist(pa) <= boundaryReach(g, a)+1e-6,
			"edge start %v lies on a's boundary (center %v)", start, pa)
		assert.True(t, end.Dist(pb) <= boundaryReach(g, b)+1e-6,
			"edge end %v lies on b's boundary (center %v)", end, pb)
		assert.True(t, start.Dist(pa) > 1, "edge start is not the node center")
	})

	t.Run("StrictTriangleAspect", func(t *testing.T) {
		g, err := gviz.Parse(strings.NewReader("strict graph { a -- b -- c -- a }"))
		require.NoError(t, err, "Parse")
		defer g.Close()

		assert.EqualValues(t, g.NumNodes(), 3, "three nodes")
		assert.EqualValues(t, g.NumEdges(), 3, "three edges")

		require.NoError(t, gviz.Layout(g), "Layout")
		var pts []geom.Point
		for _, n := range g.Nodes() {
			p, _ := n.Pos(g)
			pts = append(pts, p)
		}
		bb := geom.BoundingBox(pts)
		ratio := bb.Height() / bb.Width()
		assert.True(t, ratio > 0.5 && ratio < 2, "aspect ratio %f outside [0.5, 2]", ratio)
	})

	t.Run("DisconnectedPairsPack", func(t *testing.T) {
		g, err := gviz.Parse(strings.NewReader("digraph{a;b;c;d; a->b;c->d}"))
		require.NoError(t, err, "Parse")
		defer g.Close()

		require.NoError(t, gviz.Layout(g), "Layout")

		// the two component subgraphs exist and their boxes are disjoint
		c0, c1 := g.Subgraph("_cc_0"), g.Subgraph("_cc_1")
		require.NotNil(t, c0)
		require.NotNil(t, c1)
		assert.EqualValues(t, c0.NumNodes(), 2, "first component size")
		assert.EqualValues(t, c1.NumNodes(), 2, "second component size")
		assert.True(t, !c0.BoundingBox().Overlaps(c1.BoundingBox()),
			"component bounding boxes overlap: %v vs %v", c0.BoundingBox(), c1.BoundingBox())
	})

	t.Run("SelfLoop", func(t *testing.T) {
		g, err := gviz.Parse(strings.NewReader("digraph { a -> a }"))
		require.NoError(t, err, "Parse")
		defer g.Close()

		require.NoError(t, gviz.Layout(g), "Layout")

		a := g.Node("a")
		e := g.Edge(a, a, "")
		require.NotNil(t, e)
		require.NotNil(t, e.Spline)

		w, h := a.Size(g)
		var length float64
		for s := 0; s < e.Spline.Segments(); s++ {
			prev := e.Spline.Eval(s, 0)
			for tt := 0.05; tt <= 1.0; tt += 0.05 {
				cur := e.Spline.Eval(s, tt)
				length += prev.Dist(cur)
				prev = cur
			}
		}
		assert.True(t, length > (w+h)/4, "self loop length %f too short", length)
	})

	t.Run("K4OverlapFree", func(t *testing.T) {
		g, err := gviz.Parse(strings.NewReader("digraph{a;b;c;d; a->b;a->c;a->d;b->c;b->d;c->d}"))
		require.NoError(t, err, "Parse")
		defer g.Close()
		g.Set(graph.KindGraph, "overlap", graph.StringValue("voronoi"))

		require.NoError(t, gviz.Layout(g), "Layout")

		nodes := g.Nodes()
		for i := range nodes {
			bi, ok := nodes[i].Box(g)
			require.True(t, ok)
			for j := i + 1; j < len(nodes); j++ {
				bj, _ := nodes[j].Box(g)
				assert.True(t, !bi.Overlaps(bj), "nodes %s and %s overlap", nodes[i].Name(), nodes[j].Name())
			}
		}
	})

	t.Run("DrawImageMap", func(t *testing.T) {
		in := `digraph { a [href="https://example.org"]; a -> b }`
		var buf bytes.Buffer
		err := gviz.ParseAndDraw(strings.NewReader(in), "cmapx", &buf)
		require.NoError(t, err, "ParseAndDraw")
		assert.True(t, strings.Contains(buf.String(), "example.org"), "anchor emitted, got %q", buf.String())
	})

	t.Run("UnknownFormatPropagates", func(t *testing.T) {
		err := gviz.ParseAndDraw(strings.NewReader("digraph { a }"), "nonesuch", &bytes.Buffer{})
		require.NotNil(t, err)
		assert.True(t, strings.Contains(err.Error(), "no plugin"), "got %v", err)
	})
}

// boundaryReach is the farthest distance from the node center to its box
// boundary.
func boundaryReach(g *graph.Graph, n *graph.Node) float64 {
	w, h := n.Size(g)
	return geom.Pt(w/2, h/2).Len()
}
