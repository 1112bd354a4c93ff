package overlap

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hverr/gviz/geom"
	"github.com/hverr/gviz/graph"
)

func TestParseSep(t *testing.T) {
	tests := map[string]struct {
		in   string
		want Margin
	}{
		"Empty":          {in: "", want: DefaultSep},
		"AdditiveBoth":   {in: "+8", want: Margin{X: 8, Y: 8, Add: true}},
		"AdditiveXY":     {in: "+4,2", want: Margin{X: 4, Y: 2, Add: true}},
		"Multiplicative": {in: "1.5", want: Margin{X: 1.5, Y: 1.5}},
		"MultiplicXY":    {in: "1.1,2", want: Margin{X: 1.1, Y: 2}},
		"Malformed":      {in: "+x", want: DefaultSep},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.want, ParseSep(test.in, DefaultSep))
		})
	}
}

func TestMarginGrow(t *testing.T) {
	b := geom.Rect(0, 0, 10, 10)

	add := Margin{X: 2, Y: 3, Add: true}.Grow(b)
	assert.Equal(t, geom.Rect(-2, -3, 12, 13), add)

	mul := Margin{X: 2, Y: 1}.Grow(b)
	assert.InDelta(t, 20.0, mul.Width(), 1e-9)
	assert.InDelta(t, 10.0, mul.Height(), 1e-9)
	assert.Equal(t, b.Center(), mul.Center())
}

// clusteredGraph positions n nodes nearly on top of each other so every
// pair overlaps.
func clusteredGraph(t *testing.T, n int) *graph.Graph {
	t.Helper()
	g := graph.Open("", graph.Directed)
	for i := 0; i < n; i++ {
		nd := g.AddNode(fmt.Sprintf("n%d", i))
		nd.SetPos(geom.Pt(float64(i)*2, float64(i%3)*1.5))
	}
	return g
}

func overlapCount(g *graph.Graph) int {
	sites := collect(g, ParseSep("", DefaultSep))
	return countOverlaps(sites)
}

func TestRemovalModesTerminateOverlapFree(t *testing.T) {
	for _, mode := range []string{"voronoi", "scale", "nscale", "prism", "vpsc", "ortho"} {
		t.Run(mode, func(t *testing.T) {
			g := clusteredGraph(t, 9)
			defer g.Close()
			require.Greater(t, overlapCount(g), 0, "fixture must start overlapped")

			RemoveMode(g, mode)
			assert.Equal(t, 0, overlapCount(g), "mode %s leaves overlaps", mode)
		})
	}
}

func TestNoneLeavesCoordinates(t *testing.T) {
	g := clusteredGraph(t, 5)
	defer g.Close()

	var before []geom.Point
	for _, n := range g.Nodes() {
		p, _ := n.Pos(g)
		before = append(before, p)
	}
	RemoveMode(g, "none")
	for i, n := range g.Nodes() {
		p, _ := n.Pos(g)
		assert.Equal(t, before[i], p)
	}
}

func TestCompressReturnsScaleAtMostOne(t *testing.T) {
	// widely spread nodes: compress may shrink but never expand
	g := graph.Open("", graph.Directed)
	defer g.Close()
	for i := 0; i < 4; i++ {
		nd := g.AddNode(fmt.Sprintf("n%d", i))
		nd.SetPos(geom.Pt(float64(i)*500, 0))
	}

	var before []geom.Point
	for _, n := range g.Nodes() {
		p, _ := n.Pos(g)
		before = append(before, p)
	}
	RemoveMode(g, "compress")
	for i, n := range g.Nodes() {
		p, _ := n.Pos(g)
		assert.LessOrEqual(t, p.Len(), before[i].Len()+1e-9, "compress only shrinks")
	}
	assert.Equal(t, 0, overlapCount(g))
}

func TestNscaleIsMinimalScale(t *testing.T) {
	sites := []site{
		{pos: geom.Pt(0, 0), hw: 10, hh: 10},
		{pos: geom.Pt(10, 0), hw: 10, hh: 10},
	}
	nscaleRemoval(sites, false)
	// required scale along x: (10+10)/10 = 2
	assert.InDelta(t, 20.0, sites[1].pos.X-sites[0].pos.X, 1e-9)
	assert.Equal(t, 0, countOverlaps(sites))
}

func TestVoronoiHandlesCoincidentSites(t *testing.T) {
	g := graph.Open("", graph.Directed)
	defer g.Close()
	for i := 0; i < 4; i++ {
		nd := g.AddNode(fmt.Sprintf("n%d", i))
		nd.SetPos(geom.Pt(0, 0)) // fully degenerate input
	}
	RemoveMode(g, "voronoi")
	assert.Equal(t, 0, overlapCount(g))
}

func TestUnknownModeFallsBackToScale(t *testing.T) {
	g := clusteredGraph(t, 6)
	defer g.Close()
	RemoveMode(g, "frobnicate")
	assert.Equal(t, 0, overlapCount(g))
}
