// Package graph implements the in-memory graph model: directed or undirected
// graphs with nested subgraphs, nodes and edges carrying dynamic typed
// attributes, observer callbacks on mutation, and a canonical serializer.
//
// A main graph owns the id space, the sequence counters, the string interner
// and the primary node and edge records. Subgraphs hold views onto the records
// of their root; a node added to a subgraph is added to every ancestor up to
// the root and all of them share one record.
package graph

import (
	"errors"
	"fmt"
)

// Desc describes the variant of a graph. The zero value is a non-strict
// undirected subgraph descriptor; use [Directed], [StrictDirected] and
// friends for main graphs.
type Desc struct {
	Directed bool
	Strict   bool
	Main     bool
}

var (
	Directed         = Desc{Directed: true, Main: true}
	StrictDirected   = Desc{Directed: true, Strict: true, Main: true}
	Undirected       = Desc{Main: true}
	StrictUndirected = Desc{Strict: true, Main: true}
)

// ErrClosed is returned when operating on a graph that has been closed.
var ErrClosed = errors.New("graph: use of closed graph")

// Kind selects one of the three attribute dictionaries of a graph.
type Kind int

const (
	KindGraph Kind = iota
	KindNode
	KindEdge
)

func (k Kind) String() string {
	switch k {
	case KindGraph:
		return "graph"
	case KindNode:
		return "node"
	case KindEdge:
		return "edge"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Graph is a main graph or a subgraph. The zero value is not usable; create
// main graphs with [Open] and subgraphs with [Graph.OpenSubgraph].
type Graph struct {
	name   string
	desc   Desc
	root   *Graph
	parent *Graph // nil for a main graph

	seq uint64 // this graph's own sequence number in its parent

	nodes    *ordmap[*Node]
	edges    *ordmap[*Edge]
	subgs    *ordmap[*Graph]
	nodeIDs  *nodeset // root only: id -> *Node fast path
	attrs    Attrs    // this graph's own attribute values
	dicts    [3]*dict // attribute dictionaries, root holds the authoritative ones
	obs      []Observer
	interner *interner

	// root-only id/sequence allocation
	nextID  uint64
	nextSeq [3]uint64

	anonCount int
	closed    bool
}

// Open creates a new main graph with the given name and descriptor. The Main
// flag of desc is forced on.
func Open(name string, desc Desc) *Graph {
	desc.Main = true
	g := &Graph{
		name:     name,
		desc:     desc,
		nodes:    newOrdmap[*Node](),
		edges:    newOrdmap[*Edge](),
		subgs:    newOrdmap[*Graph](),
		nodeIDs:  newNodeset(),
		interner: newInterner(),
		nextID:   1,
	}
	g.root = g
	for k := range g.dicts {
		g.dicts[k] = newDict()
	}
	return g
}

// Name returns the name of the graph. Anonymous subgraphs carry a generated
// local name of the form "%N".
func (g *Graph) Name() string { return g.name }

// IsDirected reports whether edges of the graph are directed.
func (g *Graph) IsDirected() bool { return g.desc.Directed }

// IsStrict reports whether the graph merges parallel edges.
func (g *Graph) IsStrict() bool { return g.desc.Strict }

// IsMain reports whether the graph is a root graph rather than a subgraph.
func (g *Graph) IsMain() bool { return g.desc.Main }

// Root returns the enclosing main graph, which is g itself for a main graph.
func (g *Graph) Root() *Graph { return g.root }

// Parent returns the parent graph, or nil for a main graph.
func (g *Graph) Parent() *Graph { return g.parent }

// OpenSubgraph returns the subgraph of g with the given name, creating it if
// needed. An empty name yields a fresh anonymous subgraph with an implicit
// local name.
func (g *Graph) OpenSubgraph(name string) *Graph {
	if name != "" {
		if sub, ok := g.subgs.get(name); ok {
			return sub
		}
	} else {
		g.root.anonCount++
		name = fmt.Sprintf("%%%d", g.root.anonCount)
	}

	sub := &Graph{
		name:   name,
		desc:   Desc{Directed: g.desc.Directed, Strict: g.desc.Strict},
		root:   g.root,
		parent: g,
		seq:    g.root.allocSeq(KindGraph),
		nodes:  newOrdmap[*Node](),
		edges:  newOrdmap[*Edge](),
		subgs:  newOrdmap[*Graph](),
	}
	for k := range sub.dicts {
		sub.dicts[k] = newDictView(g.dicts[k])
	}
	g.subgs.insert(name, sub)
	for _, o := range g.observers() {
		o.SubgraphAdded(sub)
	}
	return sub
}

// Subgraph returns the named subgraph of g, or nil if it does not exist. It
// does not search nested subgraphs.
func (g *Graph) Subgraph(name string) *Graph {
	sub, ok := g.subgs.get(name)
	if !ok {
		return nil
	}
	return sub
}

// Subgraphs returns the direct subgraphs of g in creation order.
func (g *Graph) Subgraphs() []*Graph {
	out := make([]*Graph, 0, g.subgs.len())
	for _, sub := range g.subgs.all() {
		out = append(out, sub)
	}
	return out
}

// NumNodes returns the number of nodes contained in g.
func (g *Graph) NumNodes() int { return g.nodes.len() }

// NumEdges returns the number of edges contained in g.
func (g *Graph) NumEdges() int { return g.edges.len() }

// IsCluster reports whether the graph is a cluster subgraph: its name begins
// with "cluster" or its cluster attribute is true.
func (g *Graph) IsCluster() bool {
	if g.IsMain() {
		return false
	}
	if len(g.name) >= 7 && g.name[:7] == "cluster" {
		return true
	}
	v, ok := g.Get(KindGraph, "cluster")
	return ok && v.Bool()
}

// Close releases the graph. Closing a main graph releases every contained
// object in reverse dependency order: subgraphs first, then edges, then
// nodes. Closing a subgraph detaches it from its parent; the shared node and
// edge records stay alive at the root.
func (g *Graph) Close() error {
	if g.closed {
		return ErrClosed
	}
	for _, sub := range g.Subgraphs() {
		_ = sub.Close()
	}
	if g.IsMain() {
		for _, e := range g.Edges() {
			g.DelEdge(e)
		}
		for _, n := range g.Nodes() {
			g.DelNode(n)
		}
	} else {
		g.parent.subgs.remove(g.name)
	}
	g.closed = true
	return nil
}

// allocID hands out a fresh 64-bit object id from the root's id space.
func (g *Graph) allocID() uint64 {
	r := g.root
	id := r.nextID
	r.nextID++
	return id
}

// maxSeq bounds the 28-bit sequence counter of each object kind.
const maxSeq = 1<<28 - 1

func (g *Graph) allocSeq(kind Kind) uint64 {
	r := g.root
	if r.nextSeq[kind] >= maxSeq {
		panic(fmt.Sprintf("graph: sequence space for %s objects exhausted", kind))
	}
	r.nextSeq[kind]++
	return r.nextSeq[kind]
}

// ancestors yields g and its parents up to and including the root, innermost
// first.
func (g *Graph) ancestors() []*Graph {
	var out []*Graph
	for cur := g; cur != nil; cur = cur.parent {
		out = append(out, cur)
	}
	return out
}
