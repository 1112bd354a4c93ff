// Package geom provides the planar primitives shared by the layout,
// routing and rendering packages: points, rectangles, polylines and
// cubic Bezier splines.
package geom

import (
	"fmt"
	"math"
)

// Point is a position in layout space. Units are points (1/72 inch)
// unless a caller states otherwise.
type Point struct {
	X, Y float64
}

func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point     { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point     { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Scale(s float64) Point { return Point{p.X * s, p.Y * s} }
func (p Point) Dot(q Point) float64   { return p.X*q.X + p.Y*q.Y }
func (p Point) Cross(q Point) float64 { return p.X*q.Y - p.Y*q.X }
func (p Point) Len() float64          { return math.Hypot(p.X, p.Y) }
func (p Point) Dist(q Point) float64  { return p.Sub(q).Len() }
func (p Point) Rotate(phi float64) Point {
	sin, cos := math.Sincos(phi)
	return Point{p.X*cos - p.Y*sin, p.X*sin + p.Y*cos}
}

// Unit returns p scaled to length one. The zero point is returned
// unchanged.
func (p Point) Unit() Point {
	l := p.Len()
	if l == 0 {
		return p
	}
	return p.Scale(1 / l)
}

func (p Point) String() string {
	return fmt.Sprintf("%g,%g", p.X, p.Y)
}

// Box is an axis-aligned rectangle with LL the lower-left and UR the
// upper-right corner. A box with UR < LL is empty.
type Box struct {
	LL, UR Point
}

func Rect(x0, y0, x1, y1 float64) Box {
	return Box{LL: Point{x0, y0}, UR: Point{x1, y1}}
}

func (b Box) Width() float64  { return b.UR.X - b.LL.X }
func (b Box) Height() float64 { return b.UR.Y - b.LL.Y }

func (b Box) Center() Point {
	return Point{(b.LL.X + b.UR.X) / 2, (b.LL.Y + b.UR.Y) / 2}
}

func (b Box) Contains(p Point) bool {
	return p.X >= b.LL.X && p.X <= b.UR.X && p.Y >= b.LL.Y && p.Y <= b.UR.Y
}

// Overlaps reports whether the two boxes share interior area. Boxes
// that merely touch do not overlap.
func (b Box) Overlaps(c Box) bool {
	return b.LL.X < c.UR.X && c.LL.X < b.UR.X && b.LL.Y < c.UR.Y && c.LL.Y < b.UR.Y
}

// Union returns the smallest box containing both b and c.
func (b Box) Union(c Box) Box {
	return Box{
		LL: Point{math.Min(b.LL.X, c.LL.X), math.Min(b.LL.Y, c.LL.Y)},
		UR: Point{math.Max(b.UR.X, c.UR.X), math.Max(b.UR.Y, c.UR.Y)},
	}
}

func (b Box) Translate(d Point) Box {
	return Box{LL: b.LL.Add(d), UR: b.UR.Add(d)}
}

// Expand grows the box by dx horizontally and dy vertically on each
// side. Negative values shrink it.
func (b Box) Expand(dx, dy float64) Box {
	return Box{LL: Point{b.LL.X - dx, b.LL.Y - dy}, UR: Point{b.UR.X + dx, b.UR.Y + dy}}
}

// BoundingBox returns the smallest box containing all given points.
// It returns the empty box for an empty slice.
func BoundingBox(pts []Point) Box {
	if len(pts) == 0 {
		return Box{}
	}
	b := Box{LL: pts[0], UR: pts[0]}
	for _, p := range pts[1:] {
		b.LL.X = math.Min(b.LL.X, p.X)
		b.LL.Y = math.Min(b.LL.Y, p.Y)
		b.UR.X = math.Max(b.UR.X, p.X)
		b.UR.Y = math.Max(b.UR.Y, p.Y)
	}
	return b
}

// Bezier is a piecewise cubic spline: 3k+1 control points describe k
// cubic segments sharing endpoints. SP and EP, when set, are the
// arrowhead attachment points preceding the first and following the
// last segment.
type Bezier struct {
	Points []Point
	SP, EP *Point
}

// Eval returns the point of the i-th cubic segment at parameter t in
// [0,1].
func (bz Bezier) Eval(i int, t float64) Point {
	p0, p1, p2, p3 := bz.Points[3*i], bz.Points[3*i+1], bz.Points[3*i+2], bz.Points[3*i+3]
	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	c := 3 * u * t * t
	d := t * t * t
	return Point{
		X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
		Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
	}
}

// Segments returns the number of cubic segments.
func (bz Bezier) Segments() int {
	if len(bz.Points) < 4 {
		return 0
	}
	return (len(bz.Points) - 1) / 3
}

// Translate shifts every control point, including the arrowhead
// attachment points.
func (bz *Bezier) Translate(d Point) {
	for i := range bz.Points {
		bz.Points[i] = bz.Points[i].Add(d)
	}
	if bz.SP != nil {
		*bz.SP = bz.SP.Add(d)
	}
	if bz.EP != nil {
		*bz.EP = bz.EP.Add(d)
	}
}

// PolylineToBezier promotes a polyline to a spline whose segments are
// the straight lines between consecutive vertices.
func PolylineToBezier(pts []Point) Bezier {
	if len(pts) == 0 {
		return Bezier{}
	}
	out := make([]Point, 0, 3*(len(pts)-1)+1)
	out = append(out, pts[0])
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		third := b.Sub(a).Scale(1.0 / 3.0)
		out = append(out, a.Add(third), b.Sub(third), b)
	}
	return Bezier{Points: out}
}

// SegSegIntersect reports whether segments ab and cd properly
// intersect or touch.
func SegSegIntersect(a, b, c, d Point) bool {
	d1 := direction(c, d, a)
	d2 := direction(c, d, b)
	d3 := direction(a, b, c)
	d4 := direction(a, b, d)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return d1 == 0 && onSegment(c, d, a) ||
		d2 == 0 && onSegment(c, d, b) ||
		d3 == 0 && onSegment(a, b, c) ||
		d4 == 0 && onSegment(a, b, d)
}

func direction(a, b, c Point) float64 {
	return c.Sub(a).Cross(b.Sub(a))
}

func onSegment(a, b, p Point) bool {
	return math.Min(a.X, b.X) <= p.X && p.X <= math.Max(a.X, b.X) &&
		math.Min(a.Y, b.Y) <= p.Y && p.Y <= math.Max(a.Y, b.Y)
}

// PointInPolygon reports whether p lies inside the polygon given by
// verts, using the even-odd rule. Points on the boundary count as
// inside.
func PointInPolygon(verts []Point, p Point) bool {
	in := false
	n := len(verts)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := verts[i], verts[j]
		if onSegment(a, b, p) && direction(a, b, p) == 0 {
			return true
		}
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			in = !in
		}
	}
	return in
}

// PolygonArea returns the signed area of the polygon; negative for
// clockwise vertex order.
func PolygonArea(verts []Point) float64 {
	var sum float64
	n := len(verts)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += verts[i].Cross(verts[j])
	}
	return sum / 2
}
