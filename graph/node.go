package graph

import (
	"sort"
)

// Node is a vertex of a graph. The primary record lives at the root graph;
// subgraphs containing the node reference the same record.
type Node struct {
	id    uint64
	seq   uint64
	name  string
	root  *Graph
	attrs Attrs

	// incident edges per direction, in edge sequence order, maintained at the
	// root. Subgraph-scoped iteration filters against subgraph membership.
	out []*Edge
	in  []*Edge
}

// ID returns the node's id, unique within its root graph.
func (n *Node) ID() uint64 { return n.id }

// Seq returns the node's creation sequence number, the basis of all stable
// iteration order.
func (n *Node) Seq() uint64 { return n.seq }

// Name returns the node's name.
func (n *Node) Name() string { return n.name }

// Root returns the main graph owning the node record.
func (n *Node) Root() *Graph { return n.root }

// Degree returns the number of edges incident to n within g, counting
// self-loops twice.
func (n *Node) Degree(g *Graph) int {
	var d int
	for _, e := range n.out {
		if _, ok := g.edges.get(e.key()); ok {
			d++
			if e.tail == e.head {
				d++
			}
		}
	}
	for _, e := range n.in {
		if e.tail != e.head {
			if _, ok := g.edges.get(e.key()); ok {
				d++
			}
		}
	}
	return d
}

// AddNode returns the node named name in g, creating it if absent. Creation
// in a subgraph also inserts the node into every ancestor up to the root;
// the record is shared by reference. Observers fire before the node is
// returned.
func (g *Graph) AddNode(name string) *Node {
	if n, ok := g.nodes.get(name); ok {
		return n
	}
	// reuse the root record if some other subgraph already owns the name
	r := g.root
	n, existed := r.nodes.get(name)
	if !existed {
		n = &Node{
			id:   g.allocID(),
			seq:  g.allocSeq(KindNode),
			name: name,
			root: r,
		}
		n.attrs = newAttrs(r.dicts[KindNode])
		r.nodes.insert(name, n)
		r.nodeIDs.insert(n)
	}
	for _, anc := range g.ancestors() {
		if anc == r {
			continue
		}
		anc.nodes.insert(name, n)
	}
	if !existed {
		for _, o := range g.observers() {
			o.NodeAdded(n)
		}
	}
	return n
}

// Node returns the node named name in g, or nil if g does not contain it.
func (g *Graph) Node(name string) *Node {
	n, ok := g.nodes.get(name)
	if !ok {
		return nil
	}
	return n
}

// FindNodeByID returns the node with the given id in expected O(1), or nil.
// An id outside the observed [min, max] id range short-circuits to nil.
func (g *Graph) FindNodeByID(id uint64) *Node {
	n := g.root.nodeIDs.find(id)
	if n == nil {
		return nil
	}
	if _, ok := g.nodes.get(n.name); !ok {
		return nil
	}
	return n
}

// Contains reports whether g contains the node.
func (g *Graph) Contains(n *Node) bool {
	got, ok := g.nodes.get(n.name)
	return ok && got == n
}

// DelNode removes the node from g and every subgraph of g. On the root it
// additionally deletes all incident edges, fires delete observers and
// releases the node's attribute values. Deleting a non-member returns false.
func (g *Graph) DelNode(n *Node) bool {
	if _, ok := g.nodes.get(n.name); !ok {
		return false
	}
	for _, sub := range g.Subgraphs() {
		sub.DelNode(n)
	}
	if !g.IsMain() {
		return g.nodes.remove(n.name)
	}
	for _, e := range n.Edges(g) {
		g.DelEdge(e)
	}
	for _, o := range g.observers() {
		o.NodeDeleted(n)
	}
	g.nodes.remove(n.name)
	g.nodeIDs.remove(n.id)
	n.attrs.release(g.interner)
	return true
}

// Nodes returns the nodes of g in sequence-number order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, g.nodes.len())
	for _, n := range g.nodes.all() {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// OutEdges returns the edges leaving n within g, in edge sequence order. For
// undirected graphs these are the edges whose canonical tail is n.
func (n *Node) OutEdges(g *Graph) []*Edge {
	return n.filterEdges(g, n.out)
}

// InEdges returns the edges entering n within g, in edge sequence order.
func (n *Node) InEdges(g *Graph) []*Edge {
	return n.filterEdges(g, n.in)
}

// Edges returns all edges incident to n within g: out-edges first, then
// in-edges, each in sequence order. A self-loop appears once.
func (n *Node) Edges(g *Graph) []*Edge {
	out := n.OutEdges(g)
	for _, e := range n.InEdges(g) {
		if e.tail != e.head {
			out = append(out, e)
		}
	}
	return out
}

func (n *Node) filterEdges(g *Graph, list []*Edge) []*Edge {
	out := make([]*Edge, 0, len(list))
	for _, e := range list {
		if _, ok := g.edges.get(e.key()); ok {
			out = append(out, e)
		}
	}
	return out
}
