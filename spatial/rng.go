package spatial

import (
	"math"

	"github.com/hverr/gviz/geom"
)

// RelativeNeighborhood filters a Delaunay triangulation down to the
// relative-neighborhood graph: edge (u, v) is removed if some common
// neighbor w satisfies max(d(u, w), d(v, w)) < d(u, v).
func RelativeNeighborhood(pts []geom.Point, tr *Triangulation) [][2]int {
	adj := make([]map[int]bool, len(pts))
	for i := range adj {
		adj[i] = map[int]bool{}
	}
	for _, e := range tr.Edges {
		adj[e[0]][e[1]] = true
		adj[e[1]][e[0]] = true
	}

	var out [][2]int
	for _, e := range tr.Edges {
		u, v := e[0], e[1]
		duv := pts[u].Dist(pts[v])
		blocked := false
		for w := range adj[u] {
			if w == v || !adj[v][w] {
				continue
			}
			if math.Max(pts[u].Dist(pts[w]), pts[v].Dist(pts[w])) < duv {
				blocked = true
				break
			}
		}
		if !blocked {
			out = append(out, e)
		}
	}
	return out
}
