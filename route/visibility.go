package route

import (
	"container/heap"
	"math"

	"github.com/hverr/gviz/geom"
)

// Visibility is a reusable configuration over one obstacle list. It is
// built once per routing pass; per-edge queries add the two endpoints and
// run a shortest-path search.
type Visibility struct {
	obstacles []*Obstacle
	verts     []geom.Point
	owner     []int // obstacle index per vertex
}

// NewVisibility collects the obstacle vertices into a shared configuration.
func NewVisibility(obstacles []*Obstacle) *Visibility {
	v := &Visibility{obstacles: obstacles}
	for oi, o := range obstacles {
		for _, p := range o.Verts {
			v.verts = append(v.verts, p)
			v.owner = append(v.owner, oi)
		}
	}
	return v
}

// ShortestPath returns the shortest obstacle-avoiding polyline from start
// to end. Obstacles listed in skip (by index) are removed from the barrier
// set, which is how endpoints inside their own node polygon stay routable.
// The second result is false when no path exists.
func (v *Visibility) ShortestPath(start, end geom.Point, skip map[int]bool) ([]geom.Point, bool) {
	// assemble the vertex set: obstacle corners of active obstacles plus
	// the two endpoints
	type vert struct {
		p     geom.Point
		owner int
	}
	verts := []vert{{p: start, owner: -1}, {p: end, owner: -1}}
	for i, p := range v.verts {
		if skip[v.owner[i]] {
			continue
		}
		verts = append(verts, vert{p: p, owner: v.owner[i]})
	}
	n := len(verts)

	sees := func(a, b vert) bool {
		if a.p == b.p {
			return false
		}
		mid := a.p.Add(b.p).Scale(0.5)
		for oi, o := range v.obstacles {
			if skip[oi] {
				continue
			}
			// segments between two corners of the same obstacle may run
			// along its boundary; interior midpoints are still barred
			nv := len(o.Verts)
			for k := 0; k < nv; k++ {
				c, d := o.Verts[k], o.Verts[(k+1)%nv]
				if c == a.p || c == b.p || d == a.p || d == b.p {
					continue
				}
				if geom.SegSegIntersect(a.p, b.p, c, d) {
					return false
				}
			}
			if interiorPoint(o, mid) {
				return false
			}
		}
		return true
	}

	// Dijkstra over the implicit visibility graph
	dist := make([]float64, n)
	prev := make([]int, n)
	done := make([]bool, n)
	for i := range dist {
		dist[i] = math.Inf(1)
		prev[i] = -1
	}
	dist[0] = 0
	pq := &pointQueue{{idx: 0, d: 0}}
	for pq.Len() > 0 {
		cur := heap.Pop(pq).(pqItem)
		if done[cur.idx] {
			continue
		}
		done[cur.idx] = true
		if cur.idx == 1 {
			break
		}
		for j := 0; j < n; j++ {
			if done[j] || !sees(verts[cur.idx], verts[j]) {
				continue
			}
			nd := cur.d + verts[cur.idx].p.Dist(verts[j].p)
			if nd < dist[j] {
				dist[j] = nd
				prev[j] = cur.idx
				heap.Push(pq, pqItem{idx: j, d: nd})
			}
		}
	}
	if math.IsInf(dist[1], 1) {
		return nil, false
	}

	var path []geom.Point
	for at := 1; at >= 0; at = prev[at] {
		path = append(path, verts[at].p)
		if at == 0 {
			break
		}
	}
	// reverse into start → end order
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, true
}

// interiorPoint reports containment strictly inside the obstacle, so paths
// hugging the boundary survive.
func interiorPoint(o *Obstacle, p geom.Point) bool {
	if !o.Contains(p) {
		return false
	}
	for i := 0; i < len(o.Verts); i++ {
		a, b := o.Verts[i], o.Verts[(i+1)%len(o.Verts)]
		// points on an edge count as boundary, not interior
		if math.Abs(b.Sub(a).Cross(p.Sub(a))) < 1e-9 &&
			p.X >= math.Min(a.X, b.X)-1e-9 && p.X <= math.Max(a.X, b.X)+1e-9 &&
			p.Y >= math.Min(a.Y, b.Y)-1e-9 && p.Y <= math.Max(a.Y, b.Y)+1e-9 {
			return false
		}
	}
	return true
}

type pqItem struct {
	idx int
	d   float64
}

type pointQueue []pqItem

func (q pointQueue) Len() int           { return len(q) }
func (q pointQueue) Less(i, j int) bool { return q[i].d < q[j].d }
func (q pointQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *pointQueue) Push(x any)        { *q = append(*q, x.(pqItem)) }
func (q *pointQueue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]
	return it
}
