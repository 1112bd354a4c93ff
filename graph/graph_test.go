package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAndFindNodes(t *testing.T) {
	g := Open("test", Directed)
	defer g.Close()

	a := g.AddNode("a")
	b := g.AddNode("b")
	require.NotNil(t, a)
	require.NotSame(t, a, b)

	// AddNode is idempotent per name
	assert.Same(t, a, g.AddNode("a"))
	assert.Equal(t, 2, g.NumNodes())

	assert.Same(t, a, g.FindNodeByID(a.ID()))
	assert.Same(t, b, g.FindNodeByID(b.ID()))
	assert.Nil(t, g.FindNodeByID(999999), "id outside the observed range short-circuits")

	require.True(t, g.DelNode(a))
	assert.Nil(t, g.FindNodeByID(a.ID()), "deleted node is absent")
	assert.False(t, g.DelNode(a), "deleting a non-member is not fatal")
	assert.Equal(t, 1, g.NumNodes())
}

func TestNodeIterationOrderIsCreationOrder(t *testing.T) {
	g := Open("", Directed)
	defer g.Close()

	names := []string{"z", "m", "a", "q", "b"}
	for _, n := range names {
		g.AddNode(n)
	}
	g.DelNode(g.Node("m"))
	want := []string{"z", "a", "q", "b"}

	var got []string
	for _, n := range g.Nodes() {
		got = append(got, n.Name())
	}
	assert.Equal(t, want, got)

	// order is stable across repeated iteration
	got = got[:0]
	for _, n := range g.Nodes() {
		got = append(got, n.Name())
	}
	assert.Equal(t, want, got)
}

func TestNodesetRehashAndTombstones(t *testing.T) {
	g := Open("", Directed)
	defer g.Close()

	var nodes []*Node
	for i := 0; i < 500; i++ {
		nodes = append(nodes, g.AddNode(nodeName(i)))
	}
	for i := 0; i < 500; i += 2 {
		require.True(t, g.DelNode(nodes[i]))
	}
	for i := 0; i < 500; i++ {
		if i%2 == 0 {
			assert.Nil(t, g.FindNodeByID(nodes[i].ID()))
		} else {
			assert.Same(t, nodes[i], g.FindNodeByID(nodes[i].ID()))
		}
	}
}

func nodeName(i int) string {
	return string(rune('a'+i%26)) + string(rune('0'+(i/26)%10)) + string(rune('0'+i/260))
}

func TestEdges(t *testing.T) {
	t.Run("StrictMergesByEndpointAndKey", func(t *testing.T) {
		g := Open("", StrictDirected)
		defer g.Close()
		a, b := g.AddNode("a"), g.AddNode("b")

		e1 := g.AddEdge(a, b, "")
		e2 := g.AddEdge(a, b, "")
		assert.Same(t, e1, e2)

		e3 := g.AddEdge(a, b, "k")
		assert.NotSame(t, e1, e3, "a distinct key makes a distinct edge")
		assert.Equal(t, 2, g.NumEdges())
	})

	t.Run("NonStrictKeepsParallelBundles", func(t *testing.T) {
		g := Open("", Directed)
		defer g.Close()
		a, b := g.AddNode("a"), g.AddNode("b")

		e1 := g.AddEdge(a, b, "")
		e2 := g.AddEdge(a, b, "")
		e3 := g.AddEdge(a, b, "")
		assert.Equal(t, 3, g.NumEdges())
		assert.Same(t, e1, e2.Primary())
		assert.Same(t, e1, e3.Primary())
		assert.Equal(t, 0, e1.BundleIndex())
		assert.Equal(t, 1, e2.BundleIndex())
		assert.Equal(t, 2, e3.BundleIndex())
	})

	t.Run("UndirectedCanonicalizesEndpoints", func(t *testing.T) {
		g := Open("", Undirected)
		defer g.Close()
		a, b := g.AddNode("a"), g.AddNode("b")

		e := g.AddEdge(b, a, "")
		assert.Same(t, a, e.Tail(), "smaller id becomes the tail")
		assert.Same(t, e, g.Edge(a, b, ""))
		assert.Same(t, e, g.Edge(b, a, ""))
	})

	t.Run("DelEdgeUnlinksIncidence", func(t *testing.T) {
		g := Open("", Directed)
		defer g.Close()
		a, b := g.AddNode("a"), g.AddNode("b")
		e := g.AddEdge(a, b, "")

		require.True(t, g.DelEdge(e))
		assert.False(t, g.DelEdge(e))
		assert.Empty(t, a.OutEdges(g))
		assert.Empty(t, b.InEdges(g))
	})

	t.Run("IncidenceOrder", func(t *testing.T) {
		g := Open("", Directed)
		defer g.Close()
		a, b, c := g.AddNode("a"), g.AddNode("b"), g.AddNode("c")
		e1 := g.AddEdge(a, b, "")
		e2 := g.AddEdge(a, c, "")
		e3 := g.AddEdge(c, a, "")

		assert.Equal(t, []*Edge{e1, e2}, a.OutEdges(g))
		assert.Equal(t, []*Edge{e3}, a.InEdges(g))
		assert.Equal(t, []*Edge{e1, e2, e3}, a.Edges(g))
		assert.Equal(t, 3, a.Degree(g))
	})
}

func TestSubgraphs(t *testing.T) {
	g := Open("", Directed)
	defer g.Close()

	outer := g.OpenSubgraph("outer")
	inner := outer.OpenSubgraph("inner")
	n := inner.AddNode("x")

	// the node is in every ancestor up to the root, sharing one record
	assert.True(t, inner.Contains(n))
	assert.True(t, outer.Contains(n))
	assert.True(t, g.Contains(n))
	assert.Same(t, n, g.Node("x"))
	assert.Same(t, g, inner.Root())

	// deleting from an inner scope leaves the ancestors alone
	inner.DelNode(n)
	assert.False(t, inner.Contains(n))
	assert.True(t, g.Contains(n))

	// deleting from the root removes it everywhere
	outer2 := g.OpenSubgraph("outer")
	assert.Same(t, outer, outer2, "subgraphs are looked up by name")

	m := inner.AddNode("y")
	g.DelNode(m)
	assert.False(t, inner.Contains(m))
	assert.Nil(t, g.Node("y"))

	// anonymous subgraphs get implicit local names
	anon := g.OpenSubgraph("")
	assert.NotEmpty(t, anon.Name())
}

func TestAttributes(t *testing.T) {
	t.Run("DefaultsAndLocals", func(t *testing.T) {
		g := Open("", Directed)
		defer g.Close()

		g.DeclareAttr(KindNode, "shape", StringValue("ellipse"))
		a := g.AddNode("a")
		assert.Equal(t, "ellipse", a.GetStr(g, "shape", ""))

		a.Set("shape", StringValue("box"))
		assert.Equal(t, "box", a.GetStr(g, "shape", ""))

		b := g.AddNode("b")
		assert.Equal(t, "ellipse", b.GetStr(g, "shape", ""), "later nodes read the default")
	})

	t.Run("SubgraphDefaultOnlyAffectsItsView", func(t *testing.T) {
		g := Open("", Directed)
		defer g.Close()
		g.DeclareAttr(KindNode, "color", StringValue("red"))
		sub := g.OpenSubgraph("s")
		sub.DeclareAttr(KindNode, "color", StringValue("blue"))

		n := sub.AddNode("n")
		assert.Equal(t, "blue", n.GetStr(sub, "color", ""))
		assert.Equal(t, "red", n.GetStr(g, "color", ""))
	})

	t.Run("LayoutOnNonRootIsNoOp", func(t *testing.T) {
		g := Open("", Directed)
		defer g.Close()
		sub := g.OpenSubgraph("s")

		sub.Set(KindGraph, "layout", StringValue("dot"))
		_, ok := sub.Get(KindGraph, "layout")
		assert.False(t, ok)

		g.Set(KindGraph, "layout", StringValue("sfdp"))
		assert.Equal(t, "sfdp", g.GetStr(KindGraph, "layout", ""))
	})

	t.Run("TypedValues", func(t *testing.T) {
		assert.True(t, StringValue("true").Bool())
		assert.True(t, StringValue("1").Bool())
		assert.False(t, StringValue("false").Bool())
		assert.Equal(t, 2.5, StringValue("2.5").Float(0))
		assert.Equal(t, 7, StringValue("oops").Int(7))
		assert.True(t, HTMLValue("<B>x</B>").IsHTML())
	})

	t.Run("InternerRefCounts", func(t *testing.T) {
		g := Open("", Directed)
		defer g.Close()
		a := g.AddNode("a")
		b := g.AddNode("b")

		a.Set("label", StringValue("shared"))
		b.Set("label", StringValue("shared"))
		assert.Equal(t, 1, g.interner.len(), "equal strings share storage")

		a.Set("label", StringValue("other"))
		assert.Equal(t, 2, g.interner.len())
		b.Set("label", StringValue("other2"))
		assert.Equal(t, 2, g.interner.len(), "the shared entry is freed after last use")

		// the html flag is part of the identity
		a.Set("label", HTMLValue("other"))
		b.Set("label", StringValue("other"))
		assert.Equal(t, 2, g.interner.len())
	})
}

type recordingObserver struct {
	BaseObserver
	events []string
}

func (r *recordingObserver) NodeAdded(n *Node)   { r.events = append(r.events, "node+"+n.Name()) }
func (r *recordingObserver) NodeDeleted(n *Node) { r.events = append(r.events, "node-"+n.Name()) }
func (r *recordingObserver) EdgeAdded(e *Edge)   { r.events = append(r.events, "edge+") }
func (r *recordingObserver) AttrUpdated(o any, s *Symbol) {
	r.events = append(r.events, "attr:"+s.Name)
}

func TestObservers(t *testing.T) {
	g := Open("", Directed)
	defer g.Close()

	rec := &recordingObserver{}
	g.Observe(rec)

	a := g.AddNode("a")
	b := g.AddNode("b")
	g.AddEdge(a, b, "")
	a.Set("color", StringValue("red"))
	g.DelNode(b)

	assert.Equal(t, []string{"node+a", "node+b", "edge+", "attr:color", "node-b"}, rec.events)

	// an unobserved listener receives no further notifications
	rec2 := &recordingObserver{}
	g.Observe(rec2)
	g.Unobserve(rec)
	g.AddNode("c")
	assert.Equal(t, []string{"node+c"}, rec2.events)
	assert.NotContains(t, rec.events, "node+c")
}

func TestClose(t *testing.T) {
	g := Open("", Directed)
	a, b := g.AddNode("a"), g.AddNode("b")
	g.AddEdge(a, b, "")
	sub := g.OpenSubgraph("s")
	sub.AddNode("c")

	require.NoError(t, g.Close())
	assert.ErrorIs(t, g.Close(), ErrClosed)
}
