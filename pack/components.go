// Package pack decomposes a graph into connected components, lays out each
// independently, and packs the component drawings into one canvas using
// polyomino, array or grid strategies.
package pack

import (
	"fmt"

	"github.com/hverr/gviz/graph"
)

// Components splits g into connected components, ignoring edge direction.
// Nodes carrying a true pin attribute are grouped into one pre-existing
// component regardless of connectivity. Each component is returned as a
// subgraph of g named "_cc_N" holding its nodes and edges; a graph that
// forms a single component is returned as g itself, not as a subgraph.
func Components(g *graph.Graph) []*graph.Graph {
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return nil
	}
	compOf := map[*graph.Node]int{}
	next := 0

	// pinned nodes form component 0 when present
	pinned := false
	for _, n := range nodes {
		if v, ok := n.Get(g, "pin"); ok && v.Bool() {
			compOf[n] = 0
			pinned = true
		}
	}
	if pinned {
		next = 1
	}

	for _, n := range nodes {
		if _, seen := compOf[n]; seen {
			continue
		}
		id := next
		next++
		// iterative DFS over the edge-incidence structure
		stack := []*graph.Node{n}
		compOf[n] = id
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, e := range cur.Edges(g) {
				for _, nb := range []*graph.Node{e.Tail(), e.Head()} {
					if _, seen := compOf[nb]; !seen {
						compOf[nb] = id
						stack = append(stack, nb)
					}
				}
			}
		}
	}

	return buildComponentSubgraphs(g, nodes, compOf, next)
}

// ClusterComponents is the cluster-aware decomposition: every top-level
// cluster collapses into a single derived node before component finding, so
// a cluster never straddles two components. The projection back into g
// includes the clusters intersecting each component.
func ClusterComponents(g *graph.Graph) []*graph.Graph {
	clusters := topLevelClusters(g)
	clusterOf := map[*graph.Node]*graph.Graph{}
	for _, cl := range clusters {
		for _, n := range cl.Nodes() {
			clusterOf[n] = cl
		}
	}

	// derived vertices: one per cluster, one per free node
	type dvert struct {
		cluster *graph.Graph
		node    *graph.Node
	}
	derivedOf := map[any]int{}
	var dverts []dvert
	intern := func(n *graph.Node) int {
		var key any = n
		if cl := clusterOf[n]; cl != nil {
			key = cl
		}
		if i, ok := derivedOf[key]; ok {
			return i
		}
		i := len(dverts)
		derivedOf[key] = i
		if cl := clusterOf[n]; cl != nil {
			dverts = append(dverts, dvert{cluster: cl})
		} else {
			dverts = append(dverts, dvert{node: n})
		}
		return i
	}

	nodes := g.Nodes()
	adj := map[int][]int{}
	for _, n := range nodes {
		intern(n)
	}
	for _, e := range g.Edges() {
		a, b := intern(e.Tail()), intern(e.Head())
		if a != b {
			adj[a] = append(adj[a], b)
			adj[b] = append(adj[b], a)
		}
	}

	// standard component finding on the derived graph
	compOfD := make([]int, len(dverts))
	for i := range compOfD {
		compOfD[i] = -1
	}
	next := 0
	for i := range dverts {
		if compOfD[i] >= 0 {
			continue
		}
		stack := []int{i}
		compOfD[i] = next
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, nb := range adj[cur] {
				if compOfD[nb] < 0 {
					compOfD[nb] = next
					stack = append(stack, nb)
				}
			}
		}
		next++
	}

	compOf := map[*graph.Node]int{}
	for _, n := range nodes {
		var key any = n
		if cl := clusterOf[n]; cl != nil {
			key = cl
		}
		compOf[n] = compOfD[derivedOf[key]]
	}
	comps := buildComponentSubgraphs(g, nodes, compOf, next)

	// project intersecting clusters into each component as pseudo-subgraphs
	for ci, comp := range comps {
		for _, cl := range clusters {
			if compOfD[derivedOf[cl]] != ci {
				continue
			}
			pseudo := comp.OpenSubgraph(cl.Name())
			for _, n := range cl.Nodes() {
				pseudo.AddNode(n.Name())
			}
		}
	}
	return comps
}

func buildComponentSubgraphs(g *graph.Graph, nodes []*graph.Node, compOf map[*graph.Node]int, count int) []*graph.Graph {
	if count <= 1 {
		return []*graph.Graph{g}
	}
	comps := make([]*graph.Graph, count)
	for i := range comps {
		comps[i] = g.OpenSubgraph(fmt.Sprintf("_cc_%d", i))
	}
	for _, n := range nodes {
		comps[compOf[n]].AddNode(n.Name())
	}
	for _, e := range g.Edges() {
		comps[compOf[e.Tail()]].IncludeEdge(e)
	}
	return comps
}

// topLevelClusters returns the outermost cluster subgraphs of g.
func topLevelClusters(g *graph.Graph) []*graph.Graph {
	var out []*graph.Graph
	var walk func(sub *graph.Graph)
	walk = func(sub *graph.Graph) {
		if sub.IsCluster() {
			out = append(out, sub)
			return
		}
		for _, child := range sub.Subgraphs() {
			walk(child)
		}
	}
	for _, child := range g.Subgraphs() {
		walk(child)
	}
	return out
}
