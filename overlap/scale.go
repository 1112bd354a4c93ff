package overlap

import "math"

// scaleRemoval repeatedly multiplies all coordinates by 1.05 until no two
// boxes overlap.
func scaleRemoval(sites []site) {
	const factor = 1.05
	const maxRounds = 500
	for round := 0; round < maxRounds && countOverlaps(sites) > 0; round++ {
		for i := range sites {
			sites[i].pos = sites[i].pos.Scale(factor)
		}
	}
}

// nscaleRemoval finds the minimum positive uniform scale at which no pair
// overlaps and applies it. With compress set, the scale is capped at 1 so
// the layout can only shrink toward the densest non-overlapping form.
func nscaleRemoval(sites []site, compress bool) {
	required := 0.0
	for i := range sites {
		for j := i + 1; j < len(sites); j++ {
			a, b := &sites[i], &sites[j]
			dx := math.Abs(a.pos.X - b.pos.X)
			dy := math.Abs(a.pos.Y - b.pos.Y)
			needX := a.hw + b.hw
			needY := a.hh + b.hh
			// the pair separates once either axis distance reaches its need
			sx, sy := math.Inf(1), math.Inf(1)
			if dx > 0 {
				sx = needX / dx
			}
			if dy > 0 {
				sy = needY / dy
			}
			s := math.Min(sx, sy)
			if math.IsInf(s, 1) {
				continue // coincident centers cannot be separated by scaling
			}
			if s > required {
				required = s
			}
		}
	}
	if required == 0 {
		return
	}
	if compress && required > 1 {
		required = 1
	}
	if !compress && required < 1 {
		// already overlap-free: nscale never shrinks
		return
	}
	for i := range sites {
		sites[i].pos = sites[i].pos.Scale(required)
	}
}
