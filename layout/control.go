// Package layout implements the force-directed layout engines: multi-level
// spring-electrical placement with Barnes–Hut acceleration, optional
// stress-majorization and proximity-graph smoothing, and the normalization
// and aspect-ratio post-passes.
package layout

// Smoothing selects the optional post-pass applied after the
// spring-electrical iterations.
type Smoothing int

const (
	SmoothNone Smoothing = iota
	SmoothStressMajorization
	SmoothSpring
	SmoothTriangle // uses the relative-neighborhood graph
)

// Control carries the spring-electrical parameters. Zero values are not
// meaningful; start from [DefaultControl].
type Control struct {
	// P is the repulsion exponent: repulsive force between nodes is
	// proportional to K^(1-P)/d^(1-P). Graphs with a highly peaked degree
	// distribution are auto-tuned to -1.8.
	P float64
	// K is the natural edge length. Non-positive requests auto-setting from
	// the mean edge length of the coarsest level.
	K float64
	// Cool is the cooling factor applied to the step length.
	Cool float64
	// Step is the initial step length as a fraction of K.
	Step float64
	// Tol terminates the iteration once step < Tol*K.
	Tol float64
	// MaxIter bounds the iterations per level.
	MaxIter int
	// Theta is the Barnes-Hut opening criterion.
	Theta float64
	// QuadTreeCutoff is the node count from which repulsive forces use the
	// quad tree instead of the all-pairs sum.
	QuadTreeCutoff int
	// MaxQuadTreeDepth seeds the per-iteration depth self-tuning.
	MaxQuadTreeDepth int
	// AdaptiveCooling enables the force-norm driven step update.
	AdaptiveCooling bool
	// RandomStart discards provided coordinates in favor of random initial
	// positions in the unit square.
	RandomStart bool
	// CoarsenThreshold stops coarsening once a level has at most this many
	// nodes.
	CoarsenThreshold int
	// Smoothing is the post-pass mode.
	Smoothing Smoothing
	// InitialScaling is the average edge length, in points, the final
	// coordinates are scaled to; non-positive means 72 (one inch).
	InitialScaling float64

	// Seed fixes the random source so identical inputs lay out identically.
	Seed int64
}

// DefaultControl returns the standard parameter set.
func DefaultControl() *Control {
	return &Control{
		P:                -1,
		K:                -1,
		Cool:             0.90,
		Step:             0.1,
		Tol:              0.001,
		MaxIter:          500,
		Theta:            0.6,
		QuadTreeCutoff:   45,
		MaxQuadTreeDepth: 10,
		AdaptiveCooling:  true,
		RandomStart:      true,
		CoarsenThreshold: 2,
		Smoothing:        SmoothNone,
		InitialScaling:   0,
		Seed:             42,
	}
}
