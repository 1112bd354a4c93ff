package graph

import (
	"sort"
	"strconv"
	"strings"

	"github.com/hverr/gviz/geom"
)

// Edge connects a tail node to a head node, optionally disambiguated from
// parallel edges by a string key. For undirected graphs the endpoint pair is
// canonicalized so that the node with the smaller id is the tail.
type Edge struct {
	id    uint64
	seq   uint64
	name  string // user key, may be empty
	tail  *Node
	head  *Node
	root  *Graph
	attrs Attrs

	// TailPort and HeadPort carry the port and compass identifiers from the
	// source text, empty when unset.
	TailPort string
	HeadPort string

	// Spline holds the routed geometry, nil before routing.
	Spline *geom.Bezier

	// sibling links parallel edges to the primary edge of their bundle.
	sibling *Edge
}

// ID returns the edge's id, unique within its root graph.
func (e *Edge) ID() uint64 { return e.id }

// Seq returns the edge's creation sequence number.
func (e *Edge) Seq() uint64 { return e.seq }

// Key returns the user-supplied key of the edge, empty if none was given.
func (e *Edge) Key() string { return e.name }

// Tail returns the tail node. For undirected graphs this is the canonical
// smaller endpoint.
func (e *Edge) Tail() *Node { return e.tail }

// Head returns the head node.
func (e *Edge) Head() *Node { return e.head }

// IsLoop reports whether the edge is a self-loop.
func (e *Edge) IsLoop() bool { return e.tail == e.head }

// Primary returns the representative edge of the parallel bundle containing
// e, which is e itself for the first-created edge between its endpoints.
func (e *Edge) Primary() *Edge {
	cur := e
	for cur.sibling != nil {
		cur = cur.sibling
	}
	return cur
}

// BundleIndex returns e's distance from the primary edge along the sibling
// chain: 0 for the primary itself.
func (e *Edge) BundleIndex() int {
	var idx int
	for cur := e; cur.sibling != nil; cur = cur.sibling {
		idx++
	}
	return idx
}

// key is the internal dictionary key of the edge: endpoints plus key plus
// id for non-strict parallel edges.
func (e *Edge) key() string {
	var sb strings.Builder
	sb.WriteString(strconv.FormatUint(e.tail.id, 16))
	sb.WriteByte('>')
	sb.WriteString(strconv.FormatUint(e.head.id, 16))
	sb.WriteByte('|')
	sb.WriteString(e.name)
	if !e.root.desc.Strict {
		sb.WriteByte('#')
		sb.WriteString(strconv.FormatUint(e.id, 16))
	}
	return sb.String()
}

func edgeLookupKey(g *Graph, tail, head *Node, key string) string {
	var sb strings.Builder
	sb.WriteString(strconv.FormatUint(tail.id, 16))
	sb.WriteByte('>')
	sb.WriteString(strconv.FormatUint(head.id, 16))
	sb.WriteByte('|')
	sb.WriteString(key)
	return sb.String()
}

// AddEdge returns an edge from tail to head in g, creating it if needed.
// In a strict graph at most one edge exists per (tail, head, key); a second
// request returns the existing edge. Non-strict graphs always create.
// Adding to a subgraph also adds the edge, and both endpoints, to every
// ancestor up to the root.
func (g *Graph) AddEdge(tail, head *Node, key string) *Edge {
	if !g.desc.Directed && head.id < tail.id {
		tail, head = head, tail
	}
	r := g.root
	if r.desc.Strict {
		if e, ok := r.edges.get(edgeLookupKey(r, tail, head, key)); ok {
			for _, anc := range g.ancestors() {
				anc.edges.insert(e.key(), e)
			}
			return e
		}
	}

	e := &Edge{
		id:   g.allocID(),
		seq:  g.allocSeq(KindEdge),
		name: key,
		tail: tail,
		head: head,
		root: r,
	}
	e.attrs = newAttrs(r.dicts[KindEdge])

	// link into the parallel bundle: the newest edge chains to the most
	// recently added one, so Primary walks to the first
	for _, other := range tail.out {
		if other.head == head && other != e {
			e.sibling = other
		}
	}

	tail.out = append(tail.out, e)
	head.in = append(head.in, e)
	for _, anc := range g.ancestors() {
		anc.AddNode(tail.name)
		anc.AddNode(head.name)
		anc.edges.insert(e.key(), e)
	}
	for _, o := range g.observers() {
		o.EdgeAdded(e)
	}
	return e
}

// IncludeEdge inserts an existing edge record of the root graph into the
// subgraph g and all of its ancestors, together with both endpoints. The
// components engine uses it to build subgraph views without duplicating
// records.
func (g *Graph) IncludeEdge(e *Edge) {
	for _, anc := range g.ancestors() {
		anc.AddNode(e.tail.name)
		anc.AddNode(e.head.name)
		anc.edges.insert(e.key(), e)
	}
}

// Edge returns the first edge from tail to head within g with the given
// key, or nil.
func (g *Graph) Edge(tail, head *Node, key string) *Edge {
	if !g.desc.Directed && head.id < tail.id {
		tail, head = head, tail
	}
	if g.root.desc.Strict {
		e, ok := g.edges.get(edgeLookupKey(g, tail, head, key))
		if !ok {
			return nil
		}
		return e
	}
	for _, e := range tail.out {
		if e.head == head && e.name == key {
			if _, ok := g.edges.get(e.key()); ok {
				return e
			}
		}
	}
	return nil
}

// DelEdge removes the edge from g and all subgraphs of g. On the root it
// also fires delete observers, unlinks the incidence lists and releases the
// edge's attribute values. Deleting a non-member returns false.
func (g *Graph) DelEdge(e *Edge) bool {
	if _, ok := g.edges.get(e.key()); !ok {
		return false
	}
	for _, sub := range g.Subgraphs() {
		sub.DelEdge(e)
	}
	if !g.IsMain() {
		return g.edges.remove(e.key())
	}
	for _, o := range g.observers() {
		o.EdgeDeleted(e)
	}
	g.edges.remove(e.key())
	e.tail.out = removeEdge(e.tail.out, e)
	e.head.in = removeEdge(e.head.in, e)
	e.attrs.release(g.interner)
	return true
}

// Edges returns the edges of g in sequence-number order.
func (g *Graph) Edges() []*Edge {
	out := make([]*Edge, 0, g.edges.len())
	for _, e := range g.edges.all() {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

func removeEdge(list []*Edge, e *Edge) []*Edge {
	for i, other := range list {
		if other == e {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
