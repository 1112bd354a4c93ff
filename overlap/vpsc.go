package overlap

import (
	"sort"
)

// vpscRemoval solves a variable-placement problem per axis: minimize the
// squared displacement from the current positions subject to separation
// constraints between overlapping neighbors. The solver merges violated
// constraints into rigid blocks whose position is the weighted mean of
// their members' desired positions.
func vpscRemoval(sites []site) {
	for pass := 0; pass < 10; pass++ {
		solveAxis(sites, true)
		solveAxis(sites, false)
		if countOverlaps(sites) == 0 {
			return
		}
	}
	scaleRemoval(sites)
}

type separation struct {
	left, right int
	gap         float64
}

// solveAxis generates constraints from the axis ordering and projects the
// positions onto them.
func solveAxis(sites []site, xAxis bool) {
	n := len(sites)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	coord := func(i int) float64 {
		if xAxis {
			return sites[i].pos.X
		}
		return sites[i].pos.Y
	}
	sort.Slice(order, func(a, b int) bool { return coord(order[a]) < coord(order[b]) })

	// constrain consecutive-in-order pairs that overlap in the other axis
	var cons []separation
	for ai := 0; ai < n; ai++ {
		i := order[ai]
		for bi := ai + 1; bi < n; bi++ {
			j := order[bi]
			var otherOverlap bool
			var gap float64
			if xAxis {
				otherOverlap = absf(sites[i].pos.Y-sites[j].pos.Y) < sites[i].hh+sites[j].hh
				gap = sites[i].hw + sites[j].hw
			} else {
				otherOverlap = absf(sites[i].pos.X-sites[j].pos.X) < sites[i].hw+sites[j].hw
				gap = sites[i].hh + sites[j].hh
			}
			if otherOverlap {
				cons = append(cons, separation{left: i, right: j, gap: gap})
				break // nearest constrained successor suffices per start
			}
		}
	}
	if len(cons) == 0 {
		return
	}

	pos := projectSeparations(n, coord, cons)
	for i := range sites {
		if xAxis {
			sites[i].pos.X = pos[i]
		} else {
			sites[i].pos.Y = pos[i]
		}
	}
}

// projectSeparations solves min Σ (p_i - d_i)² s.t. p_right - p_left >= gap
// by iterated block merging: a violated constraint welds its endpoints'
// blocks together at the optimal offset.
func projectSeparations(n int, desired func(int) float64, cons []separation) []float64 {
	// block structure: each variable has an offset within its block
	blockOf := make([]int, n)
	offset := make([]float64, n)
	members := make([][]int, n)
	blockPos := make([]float64, n)
	for i := 0; i < n; i++ {
		blockOf[i] = i
		members[i] = []int{i}
		blockPos[i] = desired(i)
	}

	refit := func(b int) {
		var sum float64
		for _, v := range members[b] {
			sum += desired(v) - offset[v]
		}
		blockPos[b] = sum / float64(len(members[b]))
	}

	const maxPasses = 200
	for pass := 0; pass < maxPasses; pass++ {
		violated := false
		for _, c := range cons {
			bl, br := blockOf[c.left], blockOf[c.right]
			pl := blockPos[bl] + offset[c.left]
			pr := blockPos[br] + offset[c.right]
			if pr-pl >= c.gap-1e-9 {
				continue
			}
			violated = true
			if bl == br {
				// cycle inside one block: the constraint graph is
				// infeasible as ordered, skip it
				continue
			}
			// weld: right block joins left block at the required offset
			base := offset[c.left] + c.gap - offset[c.right]
			for _, v := range members[br] {
				offset[v] += base
				blockOf[v] = bl
			}
			members[bl] = append(members[bl], members[br]...)
			members[br] = nil
			refit(bl)
		}
		if !violated {
			break
		}
	}

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = blockPos[blockOf[i]] + offset[i]
	}
	return out
}

// orthoRemoval projects coordinates onto axis-aligned separation
// constraints derived purely from the initial ordering, first in x then in
// y.
func orthoRemoval(sites []site) {
	solveAxis(sites, true)
	solveAxis(sites, false)
	if countOverlaps(sites) > 0 {
		solveAxis(sites, true)
		solveAxis(sites, false)
	}
	if countOverlaps(sites) > 0 {
		scaleRemoval(sites)
	}
}

func absf(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
