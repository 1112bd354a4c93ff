package overlap

import (
	"math"

	"github.com/hverr/gviz/geom"
	"github.com/hverr/gviz/spatial"
)

// prismRemoval is force-directed overlap removal over the proximity graph:
// each node is a rigid box of half-size (w/2 + margin, h/2 + margin); every
// Delaunay neighbor pair that overlaps in the rigid-box metric is pushed
// apart along its edge until the layout is overlap-free.
func prismRemoval(sites []site) {
	const maxRounds = 100
	for round := 0; round < maxRounds; round++ {
		if countOverlaps(sites) == 0 {
			return
		}
		pts := make([]geom.Point, len(sites))
		for i, s := range sites {
			pts[i] = s.pos
		}
		tr := spatial.Delaunay(pts)
		edges := tr.Edges
		if len(edges) == 0 {
			break
		}

		disp := make([]geom.Point, len(sites))
		for _, e := range edges {
			i, j := e[0], e[1]
			a, b := &sites[i], &sites[j]
			d := b.pos.Sub(a.pos)
			dist := d.Len()
			if dist == 0 {
				d = geom.Pt(1e-3, 1e-3)
				dist = d.Len()
			}
			// desired separation in the rigid-box metric along this edge
			tx := (a.hw + b.hw) / math.Max(math.Abs(d.X), 1e-9)
			ty := (a.hh + b.hh) / math.Max(math.Abs(d.Y), 1e-9)
			t := math.Min(tx, ty)
			if t <= 1 {
				continue // neighbors already clear of each other
			}
			want := math.Min(t, 1.5) // bounded expansion per round
			push := d.Scale((want - 1) / 2)
			disp[i] = disp[i].Sub(push)
			disp[j] = disp[j].Add(push)
		}
		moved := false
		for i := range sites {
			if disp[i].Len() > 1e-9 {
				sites[i].pos = sites[i].pos.Add(disp[i])
				moved = true
			}
		}
		if !moved {
			break
		}
	}
	// proximity edges cannot separate nodes that never become neighbors;
	// let the scale fallback clear any remainder
	if countOverlaps(sites) > 0 {
		scaleRemoval(sites)
	}
}
