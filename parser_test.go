package gviz_test

import (
	"strings"
	"testing"

	"github.com/teleivo/assertive/assert"
	"github.com/teleivo/assertive/require"

	"github.com/hverr/gviz"
	"github.com/hverr/gviz/graph"
)

func TestParser(t *testing.T) {
	t.Run("Header", func(t *testing.T) {
		tests := map[string]struct {
			in       string
			name     string
			directed bool
			strict   bool
		}{
			"EmptyDirectedGraph":   {in: "digraph {}", directed: true},
			"EmptyUndirectedGraph": {in: "graph {}"},
			"StrictNamedDigraph":   {in: "strict digraph deps {}", name: "deps", directed: true, strict: true},
			"QuotedName":           {in: `graph "my graph" {}`, name: "my graph"},
		}

		for name, test := range tests {
			t.Run(name, func(t *testing.T) {
				g, err := gviz.Parse(strings.NewReader(test.in))
				require.NoError(t, err, "Parse(%q)", test.in)

				assert.EqualValues(t, g.Name(), test.name, "graph name for %q", test.in)
				assert.EqualValues(t, g.IsDirected(), test.directed, "directedness for %q", test.in)
				assert.EqualValues(t, g.IsStrict(), test.strict, "strictness for %q", test.in)
				assert.True(t, g.IsMain())
			})
		}
	})

	t.Run("NodesAndEdges", func(t *testing.T) {
		g, err := gviz.Parse(strings.NewReader("digraph { a -> b; c; a -> c }"))
		require.NoError(t, err, "Parse")

		assert.EqualValues(t, g.NumNodes(), 3, "number of nodes")
		assert.EqualValues(t, g.NumEdges(), 2, "number of edges")

		names := make([]string, 0, 3)
		for _, n := range g.Nodes() {
			names = append(names, n.Name())
		}
		assert.EqualValues(t, names, []string{"a", "b", "c"}, "nodes iterate in creation order")
	})

	t.Run("EdgeChainExpandsCartesianProduct", func(t *testing.T) {
		g, err := gviz.Parse(strings.NewReader("digraph { a -> {b c} -> d }"))
		require.NoError(t, err, "Parse")

		assert.EqualValues(t, g.NumNodes(), 4, "number of nodes")
		// a->b, a->c, b->d, c->d
		assert.EqualValues(t, g.NumEdges(), 4, "number of edges")

		a, b, c, d := g.Node("a"), g.Node("b"), g.Node("c"), g.Node("d")
		require.NotNil(t, a)
		assert.True(t, g.Edge(a, b, "") != nil)
		assert.True(t, g.Edge(a, c, "") != nil)
		assert.True(t, g.Edge(b, d, "") != nil)
		assert.True(t, g.Edge(c, d, "") != nil)
	})

	t.Run("StrictMergesParallelEdges", func(t *testing.T) {
		g, err := gviz.Parse(strings.NewReader("strict digraph { a -> b; a -> b }"))
		require.NoError(t, err, "Parse")
		assert.EqualValues(t, g.NumEdges(), 1, "strict graph merges parallel edges")

		g, err = gviz.Parse(strings.NewReader("digraph { a -> b; a -> b }"))
		require.NoError(t, err, "Parse")
		assert.EqualValues(t, g.NumEdges(), 2, "non-strict graph keeps parallel edges")
	})

	t.Run("UndirectedEndpointsCanonicalized", func(t *testing.T) {
		g, err := gviz.Parse(strings.NewReader("strict graph { b -- a; a -- b }"))
		require.NoError(t, err, "Parse")
		assert.EqualValues(t, g.NumEdges(), 1, "undirected edges canonicalize before merging")
	})

	t.Run("Attributes", func(t *testing.T) {
		in := `digraph {
			rankdir = LR
			node [shape=box, width=2]
			a [label="start"]
			a -> b [weight=3]
		}`
		g, err := gviz.Parse(strings.NewReader(in))
		require.NoError(t, err, "Parse")

		assert.EqualValues(t, g.GetStr(graph.KindGraph, "rankdir", ""), "LR", "graph attribute")

		a := g.Node("a")
		assert.EqualValues(t, a.GetStr(g, "label", ""), "start", "local node attribute")
		assert.EqualValues(t, a.GetStr(g, "shape", ""), "box", "node default from attr statement")
		b := g.Node("b")
		assert.EqualValues(t, b.GetStr(g, "shape", ""), "box", "default applies to later nodes")

		e := g.Edge(a, b, "")
		require.NotNil(t, e)
		assert.EqualValues(t, e.GetStr(g, "weight", ""), "3", "edge attribute")
	})

	t.Run("SubgraphsAndDefaults", func(t *testing.T) {
		in := `digraph {
			node [color=red]
			subgraph cluster_a {
				node [color=blue]
				inner
			}
			outer
		}`
		g, err := gviz.Parse(strings.NewReader(in))
		require.NoError(t, err, "Parse")

		sub := g.Subgraph("cluster_a")
		require.NotNil(t, sub)
		assert.True(t, sub.IsCluster())

		inner := g.Node("inner")
		require.NotNil(t, inner)
		assert.True(t, sub.Contains(inner))

		// membership propagates to every ancestor up to the root
		assert.True(t, g.Contains(inner))

		// defaults are scoped to the subgraph's view
		assert.EqualValues(t, inner.GetStr(sub, "color", ""), "blue", "subgraph default")
		assert.EqualValues(t, g.Node("outer").GetStr(g, "color", ""), "red", "root default")
	})

	t.Run("Ports", func(t *testing.T) {
		g, err := gviz.Parse(strings.NewReader("digraph { a:out:se -> b:n }"))
		require.NoError(t, err, "Parse")

		e := g.Edge(g.Node("a"), g.Node("b"), "")
		require.NotNil(t, e)
		assert.EqualValues(t, e.TailPort, "out:se", "tail port with compass")
		assert.EqualValues(t, e.HeadPort, "n", "head compass port")
	})

	t.Run("HTMLLabelAttribute", func(t *testing.T) {
		in := `digraph { A[label=<<TABLE BORDER="1" CELLBORDER="1"><TR><TD>x</TD><TD>y</TD></TR></TABLE>>] }`
		g, err := gviz.Parse(strings.NewReader(in))
		require.NoError(t, err, "Parse")

		v, ok := g.Node("A").Get(g, "label")
		assert.True(t, ok)
		assert.True(t, v.IsHTML())
	})

	t.Run("MalformedHTMLLabelIsDiscardedOnly", func(t *testing.T) {
		in := `digraph { A[label=<<NOSUCH>x</NOSUCH>>]; B }`
		g, err := gviz.Parse(strings.NewReader(in))
		require.NoError(t, err, "a bad label must not fail the graph parse")

		_, ok := g.Node("A").Get(g, "label")
		assert.True(t, !ok)
		require.NotNil(t, g.Node("B"))
	})

	t.Run("SyntaxErrors", func(t *testing.T) {
		tests := map[string]string{
			"MissingBrace":      "digraph { a -> b",
			"NotAGraph":         "foo { }",
			"WrongEdgeOp":       "graph { a -> b }",
			"DanglingEdgeOp":    "digraph { a -> }",
			"EqualWithoutValue": "digraph { a = }",
		}
		for name, in := range tests {
			t.Run(name, func(t *testing.T) {
				g, err := gviz.Parse(strings.NewReader(in))
				require.NotNil(t, err)
				assert.True(t, g == nil)
			})
		}
	})

	t.Run("ErrorsCarryPositionAndRecentTokens", func(t *testing.T) {
		p, err := gviz.NewParser(strings.NewReader("digraph {\n a -> ;\n}"))
		require.NoError(t, err, "NewParser")
		_, err = p.Parse()
		require.NotNil(t, err)
		perr, ok := err.(gviz.Error)
		assert.True(t, ok, "expected gviz.Error, got %T", err)
		if ok {
			assert.EqualValues(t, perr.Pos.Line, 2, "error line")
			assert.True(t, strings.Contains(perr.Near, "->"))
		}
	})
}

func TestRoundTrip(t *testing.T) {
	tests := map[string]string{
		"SimpleDigraph": "digraph { a -> b }",
		"StrictCycle":   "strict graph { a -- b -- c -- a }",
		"Attributes":    `digraph g { node [shape=box]; a [label="start here"]; a -> b [weight=2] }`,
		"Subgraph":      "digraph { subgraph cluster_x { a; b }; a -> b }",
		"ParallelEdges": "digraph { a -> b; a -> b }",
	}

	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			g, err := gviz.Parse(strings.NewReader(in))
			require.NoError(t, err, "Parse(%q)", in)

			first := g.String()
			g2, err := gviz.Parse(strings.NewReader(first))
			require.NoError(t, err, "reparse of %q", first)

			assert.EqualValues(t, g2.NumNodes(), g.NumNodes(), "node count after round trip")
			assert.EqualValues(t, g2.NumEdges(), g.NumEdges(), "edge count after round trip")
			assert.EqualValues(t, g2.String(), first, "canonical form is a fixed point")

			for _, n := range g.Nodes() {
				n2 := g2.Node(n.Name())
				require.NotNil(t, n2)
				assert.EqualValues(t, n2.GetStr(g2, "label", ""), n.GetStr(g, "label", ""), "label of %s", n.Name())
			}
		})
	}
}
