package layout

// onedOptimizer settles on the quad-tree depth minimizing the observed
// per-iteration cost. It probes neighboring depths while interest remains
// and sticks with the best seen.
type onedOptimizer struct {
	depth     int
	low, high int
	cost      []float64
	tried     []bool
}

func newOnedOptimizer(maxDepth int) *onedOptimizer {
	o := &onedOptimizer{
		depth: maxDepth,
		low:   0,
		high:  maxDepth,
		cost:  make([]float64, maxDepth+1),
		tried: make([]bool, maxDepth+1),
	}
	return o
}

func (o *onedOptimizer) get() int { return o.depth }

// train records the cost of the depth just used and moves toward the
// cheaper neighbor.
func (o *onedOptimizer) train(depth int, cost float64) {
	if depth < o.low || depth > o.high {
		return
	}
	o.cost[depth] = cost
	o.tried[depth] = true

	best := depth
	for d := o.low; d <= o.high; d++ {
		if o.tried[d] && o.cost[d] < o.cost[best] {
			best = d
		}
	}
	// probe an untried neighbor of the best depth before settling
	switch {
	case best > o.low && !o.tried[best-1]:
		o.depth = best - 1
	case best < o.high && !o.tried[best+1]:
		o.depth = best + 1
	default:
		o.depth = best
	}
}
