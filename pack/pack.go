package pack

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/hverr/gviz/geom"
	"github.com/hverr/gviz/graph"
)

// Mode selects the packing strategy.
type Mode int

const (
	// ModeNode packs at per-node polyomino granularity.
	ModeNode Mode = iota
	// ModeCluster packs like ModeGraph but rasterizes each top-level
	// cluster of a component as its own polyomino cells.
	ModeCluster
	// ModeGraph treats each component's bounding rectangle as a polyomino
	// on a grid and places the polyominoes in spiral order.
	ModeGraph
	// ModeArray packs bounding rectangles on a grid.
	ModeArray
	// ModeAspect packs to approximate a target aspect ratio.
	ModeAspect
)

// Options control a packing run.
type Options struct {
	Mode   Mode
	Margin float64 // inter-component margin in points

	// Array options: column-major flag, major count (0 = auto), and cell
	// alignment characters from the packmode flags.
	ColumnMajor bool
	Size        int
	HAlign      byte // 'l', 'c', 'r'
	VAlign      byte // 't', 'm', 'b'
	UserOrder   bool // honor sortv instead of size order

	// Aspect target for ModeAspect (h/w), 1 when unset.
	Ratio float64
}

// ParseOptions reads packmode and pack attributes of g. The packmode
// grammar is mode[_flags][N]: "node", "clust", "graph", "array_cN",
// "aspect[N]".
func ParseOptions(g *graph.Graph) Options {
	o := Options{Mode: ModeGraph, Margin: 8, HAlign: 'c', VAlign: 'm', Ratio: 1}

	if v, ok := g.Get(graph.KindGraph, "pack"); ok {
		if n := v.Int(-1); n > 0 {
			o.Margin = float64(n)
		}
	}

	spec := strings.ToLower(g.GetStr(graph.KindGraph, "packmode", ""))
	if spec == "" {
		return o
	}
	name := spec
	var flags string
	if i := strings.IndexByte(spec, '_'); i >= 0 {
		name = spec[:i]
		flags = spec[i+1:]
	}
	// a trailing number is the array major count or aspect ratio
	digits := strings.TrimLeftFunc(flags, func(r rune) bool { return r < '0' || r > '9' })
	flags = strings.TrimRightFunc(flags, func(r rune) bool { return r >= '0' && r <= '9' })

	switch {
	case strings.HasPrefix(name, "node"):
		o.Mode = ModeNode
	case strings.HasPrefix(name, "clust"):
		o.Mode = ModeCluster
	case strings.HasPrefix(name, "graph"):
		o.Mode = ModeGraph
	case strings.HasPrefix(name, "array"):
		o.Mode = ModeArray
	case strings.HasPrefix(name, "aspect"):
		o.Mode = ModeAspect
		if f, err := strconv.ParseFloat(strings.TrimPrefix(name, "aspect"), 64); err == nil && f > 0 {
			o.Ratio = f
		}
	}
	for _, f := range flags {
		switch f {
		case 'c':
			o.ColumnMajor = true
		case 'u':
			o.UserOrder = true
		case 't', 'b':
			o.VAlign = byte(f)
		case 'm':
			o.VAlign = 'm'
		case 'l', 'r':
			o.HAlign = byte(f)
		}
	}
	if n, err := strconv.Atoi(digits); err == nil && n > 0 {
		o.Size = n
	}
	return o
}

// PlaceBoxes computes one translation per box so the translated boxes are
// pairwise disjoint. Intra-box geometry is preserved by construction: the
// result is a pure translation per component.
func PlaceBoxes(boxes []geom.Box, o Options) []geom.Point {
	switch o.Mode {
	case ModeArray:
		return placeArray(boxes, o)
	case ModeAspect:
		ao := o
		ao.Mode = ModeArray
		if ao.Size == 0 {
			ao.Size = aspectColumns(boxes, o.Ratio)
		}
		return placeArray(boxes, ao)
	default:
		return placePolyomino(boxes, nil, o)
	}
}

// aspectColumns picks a column count approximating the target h/w ratio.
func aspectColumns(boxes []geom.Box, ratio float64) int {
	var area float64
	var maxW float64
	for _, b := range boxes {
		area += b.Width() * b.Height()
		maxW = math.Max(maxW, b.Width())
	}
	if area == 0 || ratio <= 0 {
		return int(math.Ceil(math.Sqrt(float64(len(boxes)))))
	}
	w := math.Sqrt(area / ratio)
	w = math.Max(w, maxW)
	cols := int(math.Max(1, math.Round(w/math.Max(maxW, 1))))
	return cols
}

// placeArray packs the rectangles on a grid: each row is as tall as its
// tallest entry, each column as wide as its widest, with the configured
// within-cell alignment.
func placeArray(boxes []geom.Box, o Options) []geom.Point {
	n := len(boxes)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	if !o.UserOrder {
		sort.SliceStable(order, func(a, b int) bool {
			ba, bb := boxes[order[a]], boxes[order[b]]
			return ba.Height()+ba.Width() > bb.Height()+bb.Width()
		})
	}

	major := o.Size
	if major <= 0 {
		major = int(math.Ceil(math.Sqrt(float64(n))))
	}
	rows := (n + major - 1) / major
	cols := major
	if o.ColumnMajor {
		rows, cols = major, (n+major-1)/major
	}

	cell := func(k int) (r, c int) {
		if o.ColumnMajor {
			return k % rows, k / rows
		}
		return k / cols, k % cols
	}

	rowH := make([]float64, rows)
	colW := make([]float64, cols)
	for k, i := range order {
		r, c := cell(k)
		rowH[r] = math.Max(rowH[r], boxes[i].Height())
		colW[c] = math.Max(colW[c], boxes[i].Width())
	}

	// prefix offsets, rows growing downward from the top row
	xOff := make([]float64, cols)
	for c := 1; c < cols; c++ {
		xOff[c] = xOff[c-1] + colW[c-1] + o.Margin
	}
	yOff := make([]float64, rows)
	for r := 1; r < rows; r++ {
		yOff[r] = yOff[r-1] + rowH[r-1] + o.Margin
	}

	out := make([]geom.Point, n)
	for k, i := range order {
		r, c := cell(k)
		b := boxes[i]
		x := xOff[c]
		switch o.HAlign {
		case 'r':
			x += colW[c] - b.Width()
		case 'c':
			x += (colW[c] - b.Width()) / 2
		}
		// top-aligned rows stack downward; flip y so earlier rows sit higher
		y := -(yOff[r] + rowH[r])
		switch o.VAlign {
		case 'b':
			// bottom of the cell
		case 'm':
			y += (rowH[r] - b.Height()) / 2
		case 't':
			y += rowH[r] - b.Height()
		}
		out[i] = geom.Pt(x-b.LL.X, y-b.LL.Y)
	}
	return out
}

// placePolyomino packs boxes as polyominoes on a grid whose cell size
// minimizes total area, placing each in spiral order around the origin with
// the first placement centered. cells optionally rasterizes finer
// granularity (clusters, nodes) per component; nil means one rectangle per
// component.
func placePolyomino(boxes []geom.Box, cells [][]geom.Box, o Options) []geom.Point {
	n := len(boxes)
	step := computeStep(boxes, o.Margin)

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	if !o.UserOrder {
		sort.SliceStable(order, func(a, b int) bool {
			ba, bb := boxes[order[a]], boxes[order[b]]
			return ba.Height()+ba.Width() > bb.Height()+bb.Width()
		})
	}

	occupied := map[[2]int]bool{}
	out := make([]geom.Point, n)
	for k, i := range order {
		rects := []geom.Box{boxes[i]}
		if cells != nil && len(cells[i]) > 0 {
			rects = cells[i]
		}
		poly := rasterize(rects, boxes[i], step, o.Margin)

		var d geom.Point
		if k == 0 {
			// first placement straddles the origin
			c := boxes[i].Center()
			d = geom.Pt(-c.X, -c.Y)
			place(occupied, poly, cellOf(boxes[i].LL.Add(d), step))
			out[i] = d
			continue
		}
		base := cellOf(boxes[i].LL, step)
		for _, off := range spiral(4 * (len(occupied) + len(poly) + 4)) {
			if fits(occupied, poly, off) {
				place(occupied, poly, off)
				d = geom.Pt(float64(off[0]-base[0])*step, float64(off[1]-base[1])*step)
				break
			}
		}
		out[i] = d
	}
	return out
}

// computeStep solves the quadratic a·x² + b·x + c = 0 in x = 1/l so the
// expected polyomino covering stays near the target cell budget per
// component.
func computeStep(boxes []geom.Box, margin float64) float64 {
	const targetCells = 100 // max average polyomino size
	var a, b float64
	ng := float64(len(boxes))
	for _, bx := range boxes {
		w, h := bx.Width()+2*margin, bx.Height()+2*margin
		a += w * h
		b += w + h
	}
	c := ng - targetCells*ng
	d := b*b - 4*a*c
	if a == 0 || d < 0 {
		return math.Max(1, b/math.Max(1, -c))
	}
	x := (-b + math.Sqrt(d)) / (2 * a)
	if x <= 0 {
		return 1
	}
	return 1 / x
}

// rasterize returns the grid cells covered by the rectangles, relative to
// the bounding box's lower-left cell.
func rasterize(rects []geom.Box, bound geom.Box, step, margin float64) [][2]int {
	base := cellOf(bound.LL, step)
	seen := map[[2]int]bool{}
	var out [][2]int
	for _, r := range rects {
		g := r.Expand(margin, margin)
		lo := cellOf(g.LL, step)
		hi := cellOf(g.UR, step)
		for cx := lo[0]; cx <= hi[0]; cx++ {
			for cy := lo[1]; cy <= hi[1]; cy++ {
				key := [2]int{cx - base[0], cy - base[1]}
				if !seen[key] {
					seen[key] = true
					out = append(out, key)
				}
			}
		}
	}
	return out
}

func cellOf(p geom.Point, step float64) [2]int {
	return [2]int{int(math.Floor(p.X / step)), int(math.Floor(p.Y / step))}
}

func fits(occupied map[[2]int]bool, poly [][2]int, at [2]int) bool {
	for _, c := range poly {
		if occupied[[2]int{c[0] + at[0], c[1] + at[1]}] {
			return false
		}
	}
	return true
}

func place(occupied map[[2]int]bool, poly [][2]int, at [2]int) {
	for _, c := range poly {
		occupied[[2]int{c[0] + at[0], c[1] + at[1]}] = true
	}
}

// spiral yields grid offsets in a counterclockwise spiral around the
// origin.
func spiral(limit int) [][2]int {
	out := [][2]int{{0, 0}}
	x, y := 0, 0
	dx, dy := 1, 0
	steps, stepCount, turns := 1, 0, 0
	for len(out) < limit {
		x += dx
		y += dy
		out = append(out, [2]int{x, y})
		stepCount++
		if stepCount == steps {
			stepCount = 0
			dx, dy = -dy, dx
			turns++
			if turns%2 == 0 {
				steps++
			}
		}
	}
	return out
}
