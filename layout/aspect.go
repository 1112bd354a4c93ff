package layout

import (
	"math"

	"github.com/hverr/gviz/geom"
)

// Normalize aligns the layout with the requested angle: the first node
// moves to the origin and the layout rotates so the first outgoing edge
// points at angle degrees. first and second are the endpoint indices of
// that edge; second < 0 leaves the rotation alone.
func Normalize(x []geom.Point, first, second int, angle float64) {
	if len(x) == 0 || first < 0 || first >= len(x) {
		return
	}
	origin := x[first]
	for i := range x {
		x[i] = x[i].Sub(origin)
	}
	if second < 0 || second >= len(x) || second == first {
		return
	}
	d := x[second]
	if d.Len() == 0 {
		return
	}
	phi := angle*math.Pi/180 - math.Atan2(d.Y, d.X)
	for i := range x {
		x[i] = x[i].Rotate(phi)
	}
}

// RatioMode selects the aspect-ratio post-process.
type RatioMode int

const (
	RatioNone RatioMode = iota
	// RatioFill stretches each axis independently to the target size.
	RatioFill
	// RatioExpand upscales uniformly when both axis scales exceed one.
	RatioExpand
	// RatioValue scales the smaller dimension to meet a target h/w ratio.
	RatioValue
)

// ApplyRatio post-processes the layout's aspect. The layout is translated
// to start at the origin first. For RatioFill and RatioExpand, targetW and
// targetH give the desired size; for RatioValue, ratio gives the desired
// h/w.
func ApplyRatio(x []geom.Point, mode RatioMode, targetW, targetH, ratio float64) {
	if len(x) == 0 || mode == RatioNone {
		return
	}
	bb := geom.BoundingBox(x)
	for i := range x {
		x[i] = x[i].Sub(bb.LL)
	}
	w, h := bb.Width(), bb.Height()
	if w == 0 || h == 0 {
		return
	}

	switch mode {
	case RatioFill:
		sx, sy := targetW/w, targetH/h
		scaleAxes(x, sx, sy)
	case RatioExpand:
		sx, sy := targetW/w, targetH/h
		if sx > 1 && sy > 1 {
			s := math.Min(sx, sy)
			scaleAxes(x, s, s)
		}
	case RatioValue:
		cur := h / w
		if cur < ratio {
			// too wide: grow height
			scaleAxes(x, 1, ratio/cur)
		} else if cur > ratio {
			scaleAxes(x, cur/ratio, 1)
		}
	}
}

func scaleAxes(x []geom.Point, sx, sy float64) {
	for i := range x {
		x[i].X *= sx
		x[i].Y *= sy
	}
}
