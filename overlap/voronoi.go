package overlap

import (
	"math"

	"github.com/hverr/gviz/geom"
)

// voronoiRemoval iterates Voronoi-centroid relaxation: each overlapping
// node moves to the centroid of its Voronoi polygon clipped to an expanding
// rectangle. The rectangle grows by 5% whenever a round makes no progress;
// iteration stops at zero overlap or when the overlap count stalls past the
// budget.
func voronoiRemoval(sites []site) {
	nudgeDegenerate(sites)

	bb := sitesBounds(sites)
	// clip rectangle starts slightly beyond the current layout
	clip := bb.Expand(bb.Width()*0.05+1, bb.Height()*0.05+1)

	const budget = 100
	stalled := 0
	prev := countOverlaps(sites)
	for iter := 0; iter < budget && prev > 0; iter++ {
		moved := false
		for i := range sites {
			if !overlapsAny(sites, i) {
				continue
			}
			cell := voronoiCell(sites, i, clip)
			if len(cell) < 3 {
				continue
			}
			c := polygonCentroid(cell)
			if c.Dist(sites[i].pos) > 1e-9 {
				sites[i].pos = c
				moved = true
			}
		}
		cur := countOverlaps(sites)
		if cur >= prev || !moved {
			stalled++
			clip = clip.Expand(clip.Width()*0.05, clip.Height()*0.05)
		} else {
			stalled = 0
		}
		if stalled > 10 {
			break
		}
		prev = cur
	}

	if prev > 0 {
		// finish with the scale fallback so the caller still gets an
		// overlap-free drawing
		scaleRemoval(sites)
	}
}

// nudgeDegenerate moves coincident and collinear-duplicate sites apart
// along the dominant axis so the Voronoi diagram is defined.
func nudgeDegenerate(sites []site) {
	bb := sitesBounds(sites)
	dx, dy := 0.001*(bb.Width()+1), 0.0
	if bb.Height() > bb.Width() {
		dx, dy = 0.0, 0.001*(bb.Height()+1)
	}
	seen := map[[2]float64]int{}
	for i := range sites {
		key := [2]float64{sites[i].pos.X, sites[i].pos.Y}
		if cnt, dup := seen[key]; dup {
			sites[i].pos.X += dx * float64(cnt)
			sites[i].pos.Y += dy * float64(cnt)
			seen[key] = cnt + 1
		} else {
			seen[key] = 1
		}
	}
}

func overlapsAny(sites []site, i int) bool {
	for j := range sites {
		if j != i && sites[i].box().Overlaps(sites[j].box()) {
			return true
		}
	}
	return false
}

func sitesBounds(sites []site) geom.Box {
	pts := make([]geom.Point, len(sites))
	for i, s := range sites {
		pts[i] = s.pos
	}
	return geom.BoundingBox(pts)
}

// voronoiCell clips the rectangle against the perpendicular-bisector
// half-planes of every other site, yielding site i's Voronoi polygon.
func voronoiCell(sites []site, i int, clip geom.Box) []geom.Point {
	cell := []geom.Point{clip.LL, {X: clip.UR.X, Y: clip.LL.Y}, clip.UR, {X: clip.LL.X, Y: clip.UR.Y}}
	p := sites[i].pos
	for j := range sites {
		if j == i {
			continue
		}
		q := sites[j].pos
		mid := p.Add(q).Scale(0.5)
		nrm := q.Sub(p) // half-plane: points x with (x - mid)·nrm <= 0 stay
		cell = clipHalfPlane(cell, mid, nrm)
		if len(cell) == 0 {
			return cell
		}
	}
	return cell
}

// clipHalfPlane is one Sutherland–Hodgman pass against (x-mid)·nrm <= 0.
func clipHalfPlane(poly []geom.Point, mid, nrm geom.Point) []geom.Point {
	var out []geom.Point
	n := len(poly)
	for i := 0; i < n; i++ {
		a, b := poly[i], poly[(i+1)%n]
		da := a.Sub(mid).Dot(nrm)
		db := b.Sub(mid).Dot(nrm)
		if da <= 0 {
			out = append(out, a)
		}
		if (da < 0) != (db < 0) && da != db {
			t := da / (da - db)
			out = append(out, a.Add(b.Sub(a).Scale(t)))
		}
	}
	return out
}

func polygonCentroid(poly []geom.Point) geom.Point {
	var cx, cy, area float64
	n := len(poly)
	for i := 0; i < n; i++ {
		a, b := poly[i], poly[(i+1)%n]
		cross := a.Cross(b)
		cx += (a.X + b.X) * cross
		cy += (a.Y + b.Y) * cross
		area += cross
	}
	if math.Abs(area) < 1e-12 {
		return poly[0]
	}
	area /= 2
	return geom.Pt(cx/(6*area), cy/(6*area))
}
