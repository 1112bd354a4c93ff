package pack

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hverr/gviz/geom"
	"github.com/hverr/gviz/graph"
)

func TestComponents(t *testing.T) {
	t.Run("TwoDisconnectedPairs", func(t *testing.T) {
		g := graph.Open("", graph.Directed)
		defer g.Close()
		a, b := g.AddNode("a"), g.AddNode("b")
		c, d := g.AddNode("c"), g.AddNode("d")
		g.AddEdge(a, b, "")
		g.AddEdge(c, d, "")

		comps := Components(g)
		require.Len(t, comps, 2)
		assert.Equal(t, 2, comps[0].NumNodes())
		assert.Equal(t, 2, comps[1].NumNodes())
		assert.Equal(t, 1, comps[0].NumEdges())
		assert.Equal(t, 1, comps[1].NumEdges())

		// components share the root's records
		assert.Same(t, a, comps[0].Node("a"))
	})

	t.Run("ConnectedGraphIsOneComponent", func(t *testing.T) {
		g := graph.Open("", graph.Directed)
		defer g.Close()
		a, b, c := g.AddNode("a"), g.AddNode("b"), g.AddNode("c")
		g.AddEdge(a, b, "")
		g.AddEdge(b, c, "")

		comps := Components(g)
		require.Len(t, comps, 1)
		assert.Same(t, g, comps[0])
	})

	t.Run("DirectionIsIgnored", func(t *testing.T) {
		g := graph.Open("", graph.Directed)
		defer g.Close()
		a, b, c := g.AddNode("a"), g.AddNode("b"), g.AddNode("c")
		g.AddEdge(b, a, "")
		g.AddEdge(b, c, "")
		comps := Components(g)
		assert.Len(t, comps, 1)
	})

	t.Run("PinnedNodesFormOneComponent", func(t *testing.T) {
		g := graph.Open("", graph.Directed)
		defer g.Close()
		for i := 0; i < 4; i++ {
			n := g.AddNode(fmt.Sprintf("n%d", i))
			if i < 2 {
				n.Set("pin", graph.BoolValue(true))
			}
		}
		comps := Components(g)
		// two pinned nodes in one component, two isolated nodes each alone
		require.Len(t, comps, 3)
		assert.Equal(t, 2, comps[0].NumNodes())
	})
}

func TestClusterComponents(t *testing.T) {
	g := graph.Open("", graph.Directed)
	defer g.Close()
	cl := g.OpenSubgraph("cluster_0")
	a := cl.AddNode("a")
	b := cl.AddNode("b")
	c := g.AddNode("c")
	d := g.AddNode("d")
	g.AddEdge(a, c, "")
	_ = b // b is only connected through the cluster
	_ = d

	comps := ClusterComponents(g)
	require.Len(t, comps, 2)

	// the cluster keeps a, b and c together even though b has no edges
	first := comps[0]
	assert.NotNil(t, first.Node("a"))
	assert.NotNil(t, first.Node("b"))
	assert.NotNil(t, first.Node("c"))
	assert.Nil(t, first.Node("d"))

	// the intersecting cluster is projected into the component
	assert.NotNil(t, first.Subgraph("cluster_0"))
}

func TestPlaceBoxesDisjoint(t *testing.T) {
	boxes := []geom.Box{
		geom.Rect(0, 0, 100, 50),
		geom.Rect(0, 0, 80, 80),
		geom.Rect(0, 0, 30, 30),
		geom.Rect(0, 0, 120, 20),
	}
	for _, mode := range []Mode{ModeGraph, ModeArray, ModeAspect} {
		t.Run(fmt.Sprintf("Mode%d", mode), func(t *testing.T) {
			shifts := PlaceBoxes(boxes, Options{Mode: mode, Margin: 8, HAlign: 'c', VAlign: 'm', Ratio: 1})
			require.Len(t, shifts, len(boxes))

			placed := make([]geom.Box, len(boxes))
			for i, b := range boxes {
				placed[i] = b.Translate(shifts[i])
			}
			for i := range placed {
				for j := i + 1; j < len(placed); j++ {
					assert.False(t, placed[i].Overlaps(placed[j]),
						"boxes %d and %d overlap: %v vs %v", i, j, placed[i], placed[j])
				}
			}
		})
	}
}

func TestArrayPackingGrid(t *testing.T) {
	boxes := []geom.Box{
		geom.Rect(0, 0, 10, 10),
		geom.Rect(0, 0, 10, 10),
		geom.Rect(0, 0, 10, 10),
		geom.Rect(0, 0, 10, 10),
	}
	shifts := placeArray(boxes, Options{Mode: ModeArray, Margin: 5, Size: 2, HAlign: 'c', VAlign: 'm', UserOrder: true})

	placed := make([]geom.Box, len(boxes))
	for i, b := range boxes {
		placed[i] = b.Translate(shifts[i])
	}
	// user order: 2 columns, row-major, 15-point pitch
	assert.InDelta(t, 15, placed[1].LL.X-placed[0].LL.X, 1e-9)
	assert.InDelta(t, placed[0].LL.X, placed[2].LL.X, 1e-9)
	assert.InDelta(t, 15, placed[0].LL.Y-placed[2].LL.Y, 1e-9, "second row sits below the first")
}

func TestComputeStep(t *testing.T) {
	boxes := []geom.Box{geom.Rect(0, 0, 100, 100), geom.Rect(0, 0, 200, 50)}
	step := computeStep(boxes, 0)
	require.Greater(t, step, 0.0)

	// the step should keep polyomino sizes near the budget: cells per box
	// stay within an order of magnitude of the target
	for _, b := range boxes {
		cells := (b.Width()/step + 1) * (b.Height()/step + 1)
		assert.Less(t, cells, 1000.0)
		assert.Greater(t, cells, 10.0)
	}
}

func TestSpiralCoversPlane(t *testing.T) {
	offs := spiral(25)
	require.Len(t, offs, 25)
	assert.Equal(t, [2]int{0, 0}, offs[0], "first placement is centered")
	seen := map[[2]int]bool{}
	for _, o := range offs {
		assert.False(t, seen[o], "spiral revisits %v", o)
		seen[o] = true
	}
	// the 3x3 neighborhood is covered within the first 9 steps
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			assert.True(t, seen[[2]int{dx, dy}])
		}
	}
}

func TestGraphsPackingPreservesIntraComponentGeometry(t *testing.T) {
	g := graph.Open("", graph.Directed)
	defer g.Close()
	a, b := g.AddNode("a"), g.AddNode("b")
	c, d := g.AddNode("c"), g.AddNode("d")
	e1 := g.AddEdge(a, b, "")
	g.AddEdge(c, d, "")

	a.SetPos(geom.Pt(0, 0))
	b.SetPos(geom.Pt(100, 0))
	c.SetPos(geom.Pt(10, 10))
	d.SetPos(geom.Pt(10, 90))
	e1.Spline = &geom.Bezier{Points: []geom.Point{{X: 0, Y: 0}, {X: 33, Y: 0}, {X: 66, Y: 0}, {X: 100, Y: 0}}}

	before := map[string]geom.Point{}
	for _, n := range g.Nodes() {
		p, _ := n.Pos(g)
		before[n.Name()] = p
	}

	comps := Components(g)
	require.Len(t, comps, 2)
	Graphs(g, comps)

	// relative positions within each component are exactly preserved
	posOf := func(name string) geom.Point {
		p, ok := g.Node(name).Pos(g)
		require.True(t, ok)
		return p
	}
	assert.Equal(t, before["b"].Sub(before["a"]), posOf("b").Sub(posOf("a")))
	assert.Equal(t, before["d"].Sub(before["c"]), posOf("d").Sub(posOf("c")))

	// splines moved with their component
	shift := posOf("a").Sub(before["a"])
	assert.Equal(t, before["a"].Add(shift), e1.Spline.Points[0])

	// the packed bounding boxes are disjoint
	bb1 := comps[0].BoundingBox()
	bb2 := comps[1].BoundingBox()
	assert.False(t, bb1.Overlaps(bb2))
}

func TestParseOptions(t *testing.T) {
	g := graph.Open("", graph.Directed)
	defer g.Close()

	o := ParseOptions(g)
	assert.Equal(t, ModeGraph, o.Mode)
	assert.InDelta(t, 8.0, o.Margin, 1e-9)

	g.Set(graph.KindGraph, "packmode", graph.StringValue("array_ct3"))
	g.Set(graph.KindGraph, "pack", graph.StringValue("20"))
	o = ParseOptions(g)
	assert.Equal(t, ModeArray, o.Mode)
	assert.True(t, o.ColumnMajor)
	assert.Equal(t, byte('t'), o.VAlign)
	assert.Equal(t, 3, o.Size)
	assert.InDelta(t, 20.0, o.Margin, 1e-9)

	g.Set(graph.KindGraph, "packmode", graph.StringValue("clust"))
	assert.Equal(t, ModeCluster, ParseOptions(g).Mode)
}

func TestSortvOverridesOrder(t *testing.T) {
	g := graph.Open("", graph.Directed)
	defer g.Close()
	a := g.AddNode("a")
	b := g.AddNode("b")
	a.SetPos(geom.Pt(0, 0))
	b.SetPos(geom.Pt(500, 0))

	comps := Components(g)
	require.Len(t, comps, 2)
	comps[0].Set(graph.KindGraph, "sortv", graph.IntValue(2))
	comps[1].Set(graph.KindGraph, "sortv", graph.IntValue(1))

	Graphs(g, comps)
	// b's component has the lower sortv, so it is placed first, centered on
	// the origin, ahead of a's component
	pa, _ := a.Pos(g)
	pb, _ := b.Pos(g)
	assert.NotEqual(t, pa, pb)
	assert.Equal(t, geom.Pt(0, 0), pb, "the lowest sortv is placed first")
}
